package spinner

import (
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/decker502/reelspin/pkg/config"
	"github.com/decker502/reelspin/pkg/game"
	"github.com/hajimehoshi/ebiten/v2"
)

// Scheduler 帧调度器（由 game.FrameScheduler 实现）
type Scheduler interface {
	RequestFrame(cb game.FrameCallback) game.FrameID
	CancelFrame(id game.FrameID)
}

// AssetLoader 加载转盘所需的图集与音效
type AssetLoader interface {
	// LoadSymbolSheet 返回按显示尺寸排列好的符号图集
	LoadSymbolSheet(path string, sides int) (*ebiten.Image, error)
	// LoadTickClip 返回滚动音效
	LoadTickClip(path string) (ClipPlayer, error)
}

// Deps 引擎的外部依赖
type Deps struct {
	Scheduler Scheduler
	Clock     game.Clock
	Loader    AssetLoader
	Tuning    config.SpinnerTuning
	// Rand 指针抖动的随机源（可为 nil）
	Rand *rand.Rand
}

// SpinRequest 一次旋转请求
type SpinRequest struct {
	// Targets 每列的目标符号索引，长度必须等于列数
	Targets []int
	// BaseDuration 第一列的旋转时长；第 i 列额外延后 i*Stagger
	BaseDuration time.Duration
}

// Engine 多列转盘动画引擎
//
// 状态机：Idle → Animating → Settled。所有可变状态由 mu 保护：
// 帧回调在游戏主循环中执行，SpinTo / Destroy 可以来自任意 goroutine。
type Engine struct {
	opts      config.SpinnerOptions
	tuning    config.SpinnerTuning
	scheduler Scheduler
	clock     game.Clock

	ready     chan struct{}
	left      *Pointer
	right     *Pointer
	drawWidth int

	mu         sync.Mutex
	columns    []ColumnState
	sheet      *ebiten.Image
	surface    *ebiten.Image
	mask       *ebiten.Image
	loadErr    error
	throttle   *TickThrottle
	rng        *rand.Rand
	frameID    game.FrameID
	handle     *SpinHandle
	generation uint64
	dirty      bool
	destroyed  bool
	ticks      int
	tickSounds int
}

// NewEngine 创建引擎并在后台加载图集与音效
//
// 图集加载完成前引擎处于惰性状态：不绘制，SpinTo 返回 ErrNotReady。
// 音效加载失败只记录日志，引擎以静音模式运行。
func NewEngine(opts config.SpinnerOptions, deps Deps) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid spinner options: %w", err)
	}
	if err := deps.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("invalid spinner tuning: %w", err)
	}
	if deps.Scheduler == nil || deps.Clock == nil || deps.Loader == nil {
		return nil, fmt.Errorf("spinner: scheduler, clock and loader are required")
	}

	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	}

	size := deps.Tuning.DisplaySize
	e := &Engine{
		opts:      opts,
		tuning:    deps.Tuning,
		scheduler: deps.Scheduler,
		clock:     deps.Clock,
		ready:     make(chan struct{}),
		left:      newPointer(PointerLeft, size),
		right:     newPointer(PointerRight, size),
		drawWidth: size * opts.Columns,
		columns:   make([]ColumnState, opts.Columns),
		surface:   ebiten.NewImage(size*opts.Columns, size),
		throttle:  NewTickThrottle(deps.Tuning.TickInterval()),
		rng:       rng,
	}

	go e.loadSheet(deps.Loader)
	if opts.AudioPath != "" {
		go e.loadTickClip(deps.Loader)
	}

	log.Printf("[Spinner] Created engine for room %s (%d columns x %d sides)",
		opts.RoomID, opts.Columns, opts.SideNumber)
	return e, nil
}

// loadSheet 加载符号图集；成功后绘制一次静态画面
func (e *Engine) loadSheet(loader AssetLoader) {
	sheet, err := loader.LoadSymbolSheet(e.opts.SidesPath, e.opts.SideNumber)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return
	}
	if err != nil {
		e.loadErr = err
		log.Printf("[Spinner] Error: failed to load symbol sheet for room %s, engine stays inert: %v",
			e.opts.RoomID, err)
		return
	}

	e.sheet = sheet
	e.dirty = true
	close(e.ready)
}

// loadTickClip 加载滚动音效；失败时静音运行
func (e *Engine) loadTickClip(loader AssetLoader) {
	clip, err := loader.LoadTickClip(e.opts.AudioPath)
	if err != nil {
		log.Printf("[Spinner] Warning: tick sound unavailable, running silent: %v", err)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.destroyed {
		e.throttle.SetPlayer(clip)
	}
}

// Ready 图集加载完成时关闭的通道；加载失败时永不关闭
func (e *Engine) Ready() <-chan struct{} {
	return e.ready
}

// LoadErr 图集加载错误（未加载完成或成功时为 nil）
func (e *Engine) LoadErr() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadErr
}

// Options 构造参数
func (e *Engine) Options() config.SpinnerOptions {
	return e.opts
}

// SpinTo 让每一列旋转到指定符号
//
// 若上一次旋转尚未结束，会取消其待执行的帧并立即以 SpinSuperseded 完成旧句柄，
// 然后从各列当前位置开始新的旋转。
//
// 返回：
//   - *SpinHandle: 所有列停下（或被抢占、销毁）时完成
//   - error: 参数非法、引擎未就绪或已销毁
func (e *Engine) SpinTo(req SpinRequest) (*SpinHandle, error) {
	if err := e.validate(req); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return nil, ErrDestroyed
	}
	if e.sheet == nil {
		return nil, ErrNotReady
	}

	e.cancelFrameLocked()
	if e.handle != nil {
		e.handle.resolve(SpinSuperseded)
		log.Printf("[Spinner] Spin #%d in room %s superseded", e.handle.ID(), e.opts.RoomID)
		e.handle = nil
	}

	e.generation++
	now := e.clock.Now()
	for i := range e.columns {
		duration := req.BaseDuration + time.Duration(i)*e.tuning.Stagger()
		e.columns[i].plan(req.Targets[i], e.opts.SideNumber, e.tuning.MinSpins, now, duration)
	}

	e.handle = newSpinHandle(e.generation)
	e.scheduleLocked()

	log.Printf("[Spinner] Spin #%d in room %s: targets=%v base=%v",
		e.generation, e.opts.RoomID, req.Targets, req.BaseDuration)
	return e.handle, nil
}

// validate 检查请求参数
func (e *Engine) validate(req SpinRequest) error {
	if len(req.Targets) != e.opts.Columns {
		return fmt.Errorf("%w: got %d, want %d", ErrTargetCount, len(req.Targets), e.opts.Columns)
	}
	for i, t := range req.Targets {
		if t < 0 || t >= e.opts.SideNumber {
			return fmt.Errorf("%w: column %d target %d not in [0, %d)", ErrTargetOutOfRange, i, t, e.opts.SideNumber)
		}
	}
	if req.BaseDuration < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeDuration, req.BaseDuration)
	}
	return nil
}

// scheduleLocked 注册下一帧；回调携带当前代号，过期回调直接忽略
func (e *Engine) scheduleLocked() {
	gen := e.generation
	e.frameID = e.scheduler.RequestFrame(func(now time.Time) {
		e.tick(gen, now)
	})
}

func (e *Engine) cancelFrameLocked() {
	if e.frameID != 0 {
		e.scheduler.CancelFrame(e.frameID)
		e.frameID = 0
	}
}

// tick 一帧：推进物理、音效、指针，决定是否继续调度
func (e *Engine) tick(gen uint64, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed || gen != e.generation {
		return
	}
	e.frameID = 0
	e.ticks++

	animating := false
	crossed := false
	maxVelocity := 0.0
	for i := range e.columns {
		col := &e.columns[i]
		if col.advance(now) {
			crossed = true
		}
		if col.Animating {
			animating = true
		}
		maxVelocity = math.Max(maxVelocity, col.Velocity)
	}

	// 所有列共享一次音效请求
	if crossed && e.throttle.Fire(now) {
		e.tickSounds++
	}

	e.updatePointersLocked(maxVelocity)
	e.dirty = true

	if animating {
		e.scheduleLocked()
		return
	}

	if e.handle != nil {
		e.handle.resolve(SpinSettled)
		log.Printf("[Spinner] Spin #%d in room %s settled on %v",
			e.handle.ID(), e.opts.RoomID, e.symbolsLocked())
		e.handle = nil
	}
}

// updatePointersLocked 按最大速度让指针抖动
func (e *Engine) updatePointersLocked(speed float64) {
	angleRange := math.Min(speed*e.tuning.PointerJitterScale, e.tuning.PointerMaxAngle)
	if angleRange > e.tuning.PointerRestThreshold {
		e.left.setAngle((e.rng.Float64() - 0.5) * angleRange * 2)
		e.right.setAngle((e.rng.Float64() - 0.5) * angleRange * 2)
		return
	}
	e.left.setAngle(0)
	e.right.setAngle(0)
}

// Destroy 销毁引擎
//
// 同步取消待执行的帧、以 SpinCanceled 完成未结束的句柄，然后释放画布与音效。
// 重复调用无效。
func (e *Engine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return
	}
	e.destroyed = true
	e.cancelFrameLocked()
	e.generation++

	if e.handle != nil {
		e.handle.resolve(SpinCanceled)
		e.handle = nil
	}

	e.throttle.SetPlayer(nil)
	if e.surface != nil {
		e.surface.Deallocate()
		e.surface = nil
	}
	if e.mask != nil {
		e.mask.Deallocate()
		e.mask = nil
	}
	e.sheet = nil

	log.Printf("[Spinner] Destroyed engine for room %s", e.opts.RoomID)
}

// Destroyed 是否已销毁
func (e *Engine) Destroyed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.destroyed
}

// Animating 是否有列仍在运动
func (e *Engine) Animating() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range e.columns {
		if c.Animating {
			return true
		}
	}
	return false
}

// Columns 返回各列状态的快照
func (e *Engine) Columns() []ColumnState {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ColumnState, len(e.columns))
	copy(out, e.columns)
	return out
}

// Symbols 返回各列当前的符号索引
func (e *Engine) Symbols() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.symbolsLocked()
}

func (e *Engine) symbolsLocked() []int {
	out := make([]int, len(e.columns))
	for i, c := range e.columns {
		out[i] = c.Symbol(e.opts.SideNumber)
	}
	return out
}

// PointerAngles 左右指针当前角度（度）
func (e *Engine) PointerAngles() (left, right float64) {
	return e.left.Angle(), e.right.Angle()
}

// Stats 返回累计帧数与实际播放的音效次数
func (e *Engine) Stats() (ticks, tickSounds int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticks, e.tickSounds
}
