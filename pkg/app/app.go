// Package app 提供转盘演示应用的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来：加载配置、创建音频上下文与资源管理器、
// 帧调度器和引擎注册表，并把演示场景交给场景管理器。
package app

import (
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/decker502/reelspin/pkg/config"
	"github.com/decker502/reelspin/pkg/game"
	"github.com/decker502/reelspin/pkg/scenes"
	"github.com/decker502/reelspin/pkg/spinner"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	// WindowWidth 逻辑屏幕宽度
	WindowWidth = 960
	// WindowHeight 逻辑屏幕高度
	WindowHeight = 540

	// sampleRate 音频上下文采样率
	sampleRate = 48000
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// ConfigPath 转盘配置文件路径（如 "data/spinner.yaml"）
	ConfigPath string
	// RoomID 覆盖配置文件中的房间号，为空则使用配置文件
	RoomID string
	// Assets 资源文件系统，为 nil 时使用当前目录
	Assets fs.FS
}

// App 是演示应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager *game.SceneManager
	scheduler    *game.FrameScheduler
	clock        game.Clock
	registry     *spinner.Registry
	verbose      bool

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化演示应用
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	spinnerConfig, err := config.LoadSpinnerConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("转盘配置加载失败: %w", err)
	}
	if cfg.RoomID != "" {
		spinnerConfig.Spinner.RoomID = cfg.RoomID
	}
	log.Printf("[Config] Loaded %s: room=%s columns=%d sides=%d",
		cfg.ConfigPath, spinnerConfig.Spinner.RoomID, spinnerConfig.Spinner.Columns, spinnerConfig.Spinner.SideNumber)

	assets := cfg.Assets
	if assets == nil {
		assets = os.DirFS(".")
	}

	// 初始化音频上下文
	audioContext := audio.NewContext(sampleRate)
	resourceManager := game.NewResourceManager(assets, sampleRate)
	audioManager := game.NewAudioManager(audioContext, spinnerConfig.Audio)
	log.Printf("[App] AudioManager initialized (enabled=%v volume=%.2f)",
		spinnerConfig.Audio.SoundEnabled, spinnerConfig.Audio.SoundVolume)

	scheduler := game.NewFrameScheduler()
	clock := game.NewSystemClock()
	registry := spinner.NewRegistry(spinner.FactoryFor(spinner.Deps{
		Scheduler: scheduler,
		Clock:     clock,
		Loader:    spinner.NewResourceLoader(resourceManager, audioManager, spinnerConfig.Tuning),
		Tuning:    spinnerConfig.Tuning,
	}))

	scene, err := scenes.NewSpinnerScene(registry, spinnerConfig.Spinner, spinnerConfig.Round, clock, nil)
	if err != nil {
		registry.Close()
		return nil, fmt.Errorf("演示场景创建失败: %w", err)
	}

	sceneManager := game.NewSceneManager()
	sceneManager.SwitchTo(scene)

	return &App{
		sceneManager: sceneManager,
		scheduler:    scheduler,
		clock:        clock,
		registry:     registry,
		verbose:      cfg.Verbose,
	}, nil
}

// Update 更新逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(WindowWidth, WindowHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
		} else {
			ebiten.SetFullscreen(true)
		}
	}

	// 先执行上一帧注册的动画回调，再更新场景（场景中新发起的旋转从下一帧开始）
	a.scheduler.RunFrame(a.clock.Now())

	deltaTime := 1.0 / float64(ebiten.TPS())
	a.sceneManager.Update(deltaTime)
	return nil
}

// Draw 绘制画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return WindowWidth, WindowHeight
}

// Close 关闭当前场景并销毁所有引擎
func (a *App) Close() {
	a.sceneManager.Close()
	a.registry.Close()
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
