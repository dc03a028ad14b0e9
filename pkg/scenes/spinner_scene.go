package scenes

import (
	"errors"
	"fmt"
	"image/color"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/decker502/reelspin/pkg/config"
	"github.com/decker502/reelspin/pkg/game"
	"github.com/decker502/reelspin/pkg/spinner"
	"github.com/decker502/reelspin/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

// RoundPhase 房间回合阶段
type RoundPhase int

const (
	// PhaseBetting 下注中，等待开奖
	PhaseBetting RoundPhase = iota
	// PhaseRolling 转盘旋转中
	PhaseRolling
	// PhaseResult 展示开奖结果
	PhaseResult
)

// String 返回阶段名称
func (p RoundPhase) String() string {
	switch p {
	case PhaseBetting:
		return "betting"
	case PhaseRolling:
		return "rolling"
	case PhaseResult:
		return "result"
	default:
		return "unknown"
	}
}

var (
	backgroundColor = color.RGBA{R: 24, G: 18, B: 12, A: 255}
	labelColor      = color.RGBA{R: 212, G: 175, B: 55, A: 255}
)

// labelGap 文字与转盘之间的距离
const labelGap = 24

// SpinnerScene 演示房间：下注 → 开奖（旋转）→ 展示结果 → 下注，循环进行
//
// 场景持有转盘引擎的挂载节点，并按「左指针、画布、右指针」水平排列绘制。
// 场景关闭时释放该房间的全部引擎。
type SpinnerScene struct {
	registry *spinner.Registry
	opts     config.SpinnerOptions
	round    config.RoundSettings
	clock    game.Clock
	rng      *rand.Rand

	engine *spinner.Engine
	nodes  []spinner.Node

	phase      RoundPhase
	phaseStart time.Time
	handle     *spinner.SpinHandle
	targets    []int
	result     []int
	rounds     int
	waiting    bool // 图集尚未就绪，已记录过日志

	face text.Face
}

// NewSpinnerScene 创建演示场景并挂载房间的转盘
//
// 参数：
//   - registry: 引擎注册表（场景关闭时通过它释放房间）
//   - opts: 转盘参数，opts.RoomID 即房间号
//   - round: 回合节奏
//   - clock: 时钟（与帧调度器使用同一个）
//   - rng: 开奖结果的随机源（可为 nil）
func NewSpinnerScene(registry *spinner.Registry, opts config.SpinnerOptions, round config.RoundSettings,
	clock game.Clock, rng *rand.Rand) (*SpinnerScene, error) {
	engine, err := registry.Acquire(opts.RoomID, opts)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x10bb))
	}

	s := &SpinnerScene{
		registry:   registry,
		opts:       opts,
		round:      round,
		clock:      clock,
		rng:        rng,
		engine:     engine,
		phase:      PhaseBetting,
		phaseStart: clock.Now(),
		face:       text.NewGoXFace(basicfont.Face7x13),
	}
	engine.Attach(s)

	log.Printf("[SpinnerScene] Room %s opened (%d columns)", opts.RoomID, opts.Columns)
	return s, nil
}

// AppendChild 实现 spinner.Container
func (s *SpinnerScene) AppendChild(n spinner.Node) {
	s.nodes = append(s.nodes, n)
}

// Update 处理输入并推进回合
func (s *SpinnerScene) Update(deltaTime float64) {
	if pressed, _, _ := utils.IsJustTouchedOrClicked(); pressed || utils.IsAnyKeyJustPressed(ebiten.KeySpace, ebiten.KeyEnter) {
		s.RequestRoll()
	}
	s.advance(s.clock.Now())
}

// RequestRoll 立即开奖（仅在下注或展示结果阶段有效）
//
// 返回：
//   - bool: 是否开始了新的旋转
func (s *SpinnerScene) RequestRoll() bool {
	if s.phase == PhaseRolling {
		return false
	}
	return s.startRoll(s.clock.Now())
}

// advance 按时间推进回合状态机
func (s *SpinnerScene) advance(now time.Time) {
	elapsed := now.Sub(s.phaseStart)

	switch s.phase {
	case PhaseBetting:
		if elapsed >= s.round.ResultHold() {
			s.startRoll(now)
		}

	case PhaseRolling:
		select {
		case <-s.handle.Done():
		default:
			return
		}
		if s.handle.Outcome() != spinner.SpinSettled {
			// 被抢占或引擎销毁：本局作废
			log.Printf("[SpinnerScene] Round %d in room %s ended with %v", s.rounds, s.opts.RoomID, s.handle.Outcome())
			s.setPhase(PhaseBetting, now)
			return
		}
		s.result = s.engine.Symbols()
		s.setPhase(PhaseResult, now)
		log.Printf("[SpinnerScene] Round %d in room %s result: %s", s.rounds, s.opts.RoomID, s.resultText())

	case PhaseResult:
		if elapsed >= s.round.ResultHold() {
			s.setPhase(PhaseBetting, now)
		}
	}
}

// startRoll 生成随机结果并开始旋转；引擎未就绪时留在当前阶段
func (s *SpinnerScene) startRoll(now time.Time) bool {
	targets := make([]int, s.opts.Columns)
	for i := range targets {
		targets[i] = s.rng.IntN(s.opts.SideNumber)
	}

	h, err := s.engine.SpinTo(spinner.SpinRequest{Targets: targets, BaseDuration: s.round.BaseDuration()})
	if err != nil {
		if errors.Is(err, spinner.ErrNotReady) {
			if !s.waiting {
				log.Printf("[SpinnerScene] Room %s waiting for symbol sheet", s.opts.RoomID)
				s.waiting = true
			}
			return false
		}
		log.Printf("[SpinnerScene] Error: failed to start round in room %s: %v", s.opts.RoomID, err)
		return false
	}

	s.waiting = false
	s.rounds++
	s.handle = h
	s.targets = targets
	s.result = nil
	s.setPhase(PhaseRolling, now)
	return true
}

func (s *SpinnerScene) setPhase(p RoundPhase, now time.Time) {
	s.phase = p
	s.phaseStart = now
}

// Draw 居中绘制转盘与状态文字
func (s *SpinnerScene) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	b := screen.Bounds()
	totalW, maxH := 0, 0
	for _, n := range s.nodes {
		w, h := n.Size()
		totalW += w
		maxH = max(maxH, h)
	}

	x := float64(b.Dx()-totalW) / 2
	y := float64(b.Dy()-maxH) / 2
	for _, n := range s.nodes {
		w, _ := n.Size()
		n.DrawAt(screen, x, y)
		x += float64(w)
	}

	s.drawLabel(screen, s.statusText(), y-labelGap)
	s.drawLabel(screen, s.hintText(), y+float64(maxH)+labelGap)
}

func (s *SpinnerScene) drawLabel(screen *ebiten.Image, str string, y float64) {
	w, _ := text.Measure(str, s.face, 0)
	op := &text.DrawOptions{}
	op.GeoM.Translate((float64(screen.Bounds().Dx())-w)/2, y)
	op.ColorScale.ScaleWithColor(labelColor)
	text.Draw(screen, str, s.face, op)
}

func (s *SpinnerScene) statusText() string {
	switch s.phase {
	case PhaseRolling:
		return fmt.Sprintf("ROOM %s  ROUND %d  ROLLING...", s.opts.RoomID, s.rounds)
	case PhaseResult:
		return fmt.Sprintf("ROOM %s  ROUND %d  %s", s.opts.RoomID, s.rounds, s.resultText())
	default:
		return fmt.Sprintf("ROOM %s  PLACE YOUR BETS", s.opts.RoomID)
	}
}

func (s *SpinnerScene) hintText() string {
	if s.phase == PhaseRolling {
		return ""
	}
	if utils.IsMobile() {
		return "TAP TO ROLL"
	}
	return "PRESS SPACE TO ROLL"
}

// resultText 把结果索引转换为符号名称
func (s *SpinnerScene) resultText() string {
	names := make([]string, len(s.result))
	for i, idx := range s.result {
		names[i] = SymbolName(idx)
	}
	return strings.Join(names, " ")
}

// SymbolName 返回符号索引对应的名称；超出默认符号表时返回序号
func SymbolName(idx int) string {
	if idx >= 0 && idx < len(config.SymbolNames) {
		return config.SymbolNames[idx]
	}
	return fmt.Sprintf("#%d", idx)
}

// Phase 当前阶段
func (s *SpinnerScene) Phase() RoundPhase {
	return s.phase
}

// Targets 本局开奖结果（旋转开始时决定）
func (s *SpinnerScene) Targets() []int {
	return s.targets
}

// Result 本局转盘实际停下的符号（展示阶段有效）
func (s *SpinnerScene) Result() []int {
	return s.result
}

// Rounds 已开始的回合数
func (s *SpinnerScene) Rounds() int {
	return s.rounds
}

// Close 实现 game.Closer：释放房间内的全部引擎
func (s *SpinnerScene) Close() {
	n := s.registry.ReleaseRoom(s.opts.RoomID)
	s.nodes = nil
	log.Printf("[SpinnerScene] Room %s closed, released %d spinner(s)", s.opts.RoomID, n)
}
