// verify_spinner - 转盘引擎无界面验证程序
// 用手动时钟逐帧推进一次旋转，检查落点、最少圈数、错峰停止与音效节流
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/decker502/reelspin/pkg/config"
	"github.com/decker502/reelspin/pkg/game"
	"github.com/decker502/reelspin/pkg/spinner"
	"github.com/hajimehoshi/ebiten/v2"
)

// ========== 验证报告结构 ==========

type ValidationReport struct {
	TestName string
	Passed   bool
	Message  string
}

var validationReports []ValidationReport

func addReport(testName string, passed bool, message string) {
	validationReports = append(validationReports, ValidationReport{
		TestName: testName,
		Passed:   passed,
		Message:  message,
	})
	status := "✗ FAIL"
	if passed {
		status = "✓ PASS"
	}
	log.Printf("%s | %-20s | %s", status, testName, message)
}

// ========== 无界面资源 ==========

// blankLoader 提供空白图集与计数音效，不依赖显示与声卡
type blankLoader struct {
	displaySize int
	clip        *countingClip
}

func (l *blankLoader) LoadSymbolSheet(path string, sides int) (*ebiten.Image, error) {
	return ebiten.NewImage(l.displaySize, l.displaySize*sides), nil
}

func (l *blankLoader) LoadTickClip(path string) (spinner.ClipPlayer, error) {
	return l.clip, nil
}

type countingClip struct {
	plays []time.Duration
	clock *game.ManualClock
	start time.Time
}

func (c *countingClip) Available() bool { return true }

func (c *countingClip) Play() error {
	c.plays = append(c.plays, c.clock.Now().Sub(c.start))
	return nil
}

func parseTargets(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid target %q: %w", part, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func main() {
	configPath := flag.String("config", "data/spinner.yaml", "转盘配置文件路径")
	targetsFlag := flag.String("targets", "0,3,5", "每列目标符号，逗号分隔")
	durationMs := flag.Int("duration", 3000, "第一列旋转时长（毫秒）")
	frameMs := flag.Int("frame", 16, "每帧间隔（毫秒）")
	flag.Parse()

	cfg, err := config.LoadSpinnerConfig(*configPath)
	if err != nil {
		log.Printf("[Verify] Config unavailable (%v), using defaults", err)
		cfg = config.DefaultSpinnerConfig()
	}

	targets, err := parseTargets(*targetsFlag)
	if err != nil {
		log.Fatal(err)
	}
	cfg.Spinner.Columns = len(targets)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := game.NewManualClock(start)
	scheduler := game.NewFrameScheduler()
	clip := &countingClip{clock: clock, start: start}

	engine, err := spinner.NewEngine(cfg.Spinner, spinner.Deps{
		Scheduler: scheduler,
		Clock:     clock,
		Loader:    &blankLoader{displaySize: cfg.Tuning.DisplaySize, clip: clip},
		Tuning:    cfg.Tuning,
	})
	if err != nil {
		log.Fatalf("创建引擎失败: %v", err)
	}
	defer engine.Destroy()

	select {
	case <-engine.Ready():
	case <-time.After(5 * time.Second):
		log.Fatal("图集加载超时")
	}
	// 等待音效就绪
	time.Sleep(50 * time.Millisecond)

	base := time.Duration(*durationMs) * time.Millisecond
	handle, err := engine.SpinTo(spinner.SpinRequest{Targets: targets, BaseDuration: base})
	if err != nil {
		log.Fatalf("SpinTo 失败: %v", err)
	}

	sides := cfg.Spinner.SideNumber
	minTravel := float64(cfg.Tuning.MinSpins * sides)
	for i, c := range engine.Columns() {
		addReport(fmt.Sprintf("最少圈数 #%d", i), c.Travel() >= minTravel,
			fmt.Sprintf("行程 %.1f 格（至少 %.0f）", c.Travel(), minTravel))
	}

	step := time.Duration(*frameMs) * time.Millisecond
	settledAt := make([]time.Duration, len(targets))
	frames := 0
	maxAngle := 0.0
	for frames < 100000 {
		now := clock.Advance(step)
		scheduler.RunFrame(now)
		frames++

		for i, c := range engine.Columns() {
			if !c.Animating && settledAt[i] == 0 {
				settledAt[i] = now.Sub(start)
			}
		}
		l, r := engine.PointerAngles()
		maxAngle = math.Max(maxAngle, math.Max(math.Abs(l), math.Abs(r)))

		select {
		case <-handle.Done():
		default:
			continue
		}
		break
	}

	addReport("完成", handle.Outcome() == spinner.SpinSettled,
		fmt.Sprintf("%d 帧 / %v，结局 %v", frames, time.Duration(frames)*step, handle.Outcome()))

	symbols := engine.Symbols()
	for i, want := range targets {
		addReport(fmt.Sprintf("落点 #%d", i), symbols[i] == want,
			fmt.Sprintf("停在 %d（目标 %d）", symbols[i], want))
	}

	for i := 1; i < len(settledAt); i++ {
		gap := settledAt[i] - settledAt[i-1]
		ok := gap >= cfg.Tuning.Stagger()-step && gap <= cfg.Tuning.Stagger()+step
		addReport(fmt.Sprintf("错峰 #%d", i), ok,
			fmt.Sprintf("比前一列晚 %v（间隔 %v）", gap, cfg.Tuning.Stagger()))
	}

	throttled := true
	for i := 1; i < len(clip.plays); i++ {
		if clip.plays[i]-clip.plays[i-1] < cfg.Tuning.TickInterval() {
			throttled = false
		}
	}
	addReport("音效节流", throttled, fmt.Sprintf("播放 %d 次，最小间隔 %v", len(clip.plays), cfg.Tuning.TickInterval()))

	l, r := engine.PointerAngles()
	addReport("指针", maxAngle <= cfg.Tuning.PointerMaxAngle && l == 0 && r == 0,
		fmt.Sprintf("最大偏转 %.1f°，停止后 %.1f° / %.1f°", maxAngle, l, r))

	if _, err := engine.SpinTo(spinner.SpinRequest{Targets: targets[:len(targets)-1], BaseDuration: base}); errors.Is(err, spinner.ErrTargetCount) {
		addReport("参数校验", true, err.Error())
	} else {
		addReport("参数校验", false, fmt.Sprintf("期望 ErrTargetCount，实际 %v", err))
	}

	failed := 0
	for _, r := range validationReports {
		if !r.Passed {
			failed++
		}
	}
	fmt.Printf("\n%d/%d checks passed\n", len(validationReports)-failed, len(validationReports))
	if failed > 0 {
		os.Exit(1)
	}
}
