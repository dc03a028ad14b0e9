package spinner

import (
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/decker502/reelspin/pkg/config"
	"github.com/decker502/reelspin/pkg/game"
	"github.com/hajimehoshi/ebiten/v2"
)

const frameStep = 16 * time.Millisecond

var testStart = time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC)

// fakeClip 记录播放次数的音效
type fakeClip struct {
	mu          sync.Mutex
	unavailable bool
	err         error
	panics      bool
	plays       int
}

func (c *fakeClip) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.unavailable
}

func (c *fakeClip) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.panics {
		panic("audio device gone")
	}
	if c.err != nil {
		return c.err
	}
	c.plays++
	return nil
}

func (c *fakeClip) Plays() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plays
}

// fakeLoader 直接返回内存中的图集与音效
type fakeLoader struct {
	sheetErr error
	clip     *fakeClip
	clipErr  error
}

func (l *fakeLoader) LoadSymbolSheet(path string, sides int) (*ebiten.Image, error) {
	if l.sheetErr != nil {
		return nil, l.sheetErr
	}
	size := config.DefaultSpinnerTuning().DisplaySize
	return ebiten.NewImage(size, size*sides), nil
}

func (l *fakeLoader) LoadTickClip(path string) (ClipPlayer, error) {
	if l.clipErr != nil {
		return nil, l.clipErr
	}
	if l.clip == nil {
		return nil, errors.New("no clip")
	}
	return l.clip, nil
}

// rig 一套可手动推进的测试环境
type rig struct {
	t         *testing.T
	engine    *Engine
	scheduler *game.FrameScheduler
	clock     *game.ManualClock
	clip      *fakeClip
}

func testOptions(columns int) config.SpinnerOptions {
	return config.SpinnerOptions{
		RoomID:     "room-1",
		Columns:    columns,
		SidesPath:  "assets/images/sides.png",
		SideNumber: 6,
		AudioPath:  "assets/sounds/spin.mp3",
	}
}

func testDeps(scheduler *game.FrameScheduler, clock *game.ManualClock, loader AssetLoader) Deps {
	return Deps{
		Scheduler: scheduler,
		Clock:     clock,
		Loader:    loader,
		Tuning:    config.DefaultSpinnerTuning(),
		Rand:      rand.New(rand.NewPCG(1, 2)),
	}
}

// newRig 创建引擎并等待图集与音效加载完成
func newRig(t *testing.T, opts config.SpinnerOptions) *rig {
	t.Helper()
	clip := &fakeClip{}
	scheduler := game.NewFrameScheduler()
	clock := game.NewManualClock(testStart)

	e, err := NewEngine(opts, testDeps(scheduler, clock, &fakeLoader{clip: clip}))
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	t.Cleanup(e.Destroy)

	waitReady(t, e)
	if opts.AudioPath != "" {
		waitFor(t, func() bool {
			e.mu.Lock()
			defer e.mu.Unlock()
			return e.throttle.HasPlayer()
		})
	}
	return &rig{t: t, engine: e, scheduler: scheduler, clock: clock, clip: clip}
}

func waitReady(t *testing.T, e *Engine) {
	t.Helper()
	select {
	case <-e.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not become ready")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

// step 推进一帧
func (r *rig) step() {
	r.scheduler.RunFrame(r.clock.Advance(frameStep))
}

// runUntilDone 逐帧推进直到句柄完成，返回经过的帧数
func (r *rig) runUntilDone(h *SpinHandle, maxFrames int) int {
	r.t.Helper()
	for i := 1; i <= maxFrames; i++ {
		r.step()
		select {
		case <-h.Done():
			return i
		default:
		}
	}
	r.t.Fatalf("spin did not finish within %d frames", maxFrames)
	return 0
}

func isDone(h *SpinHandle) bool {
	select {
	case <-h.Done():
		return true
	default:
		return false
	}
}
