package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SymbolNames 默认转盘的六个图标（与符号图集从上到下的顺序一致）
//
// 索引即 SpinTo 的目标值：0=葫芦 1=螃蟹 2=鱼 3=金钱 4=虾 5=鸡
var SymbolNames = []string{"GOURD", "CRAB", "FISH", "COIN", "PRAWN", "ROOSTER"}

// SpinnerOptions 转盘实例的构造参数
//
// 创建后不可修改；Registry 以 (房间号, 全部字段) 作为实例身份。
// 字段顺序决定序列化结果，修改顺序会改变已有实例的身份键。
type SpinnerOptions struct {
	// RoomID 所属房间号
	RoomID string `yaml:"roomId"`
	// Columns 列数（转轮数量）
	Columns int `yaml:"columns"`
	// SidesPath 符号图集路径（竖直排列，每个符号一格）
	SidesPath string `yaml:"sidesPath"`
	// SideNumber 一圈有多少个符号
	SideNumber int `yaml:"sideNumber"`
	// AudioPath 滚动音效路径（可选，为空时静音运行）
	AudioPath string `yaml:"audioPath,omitempty"`
}

// 配置校验错误
var (
	ErrInvalidColumns    = errors.New("columns must be >= 1")
	ErrInvalidSideNumber = errors.New("sideNumber must be >= 2")
	ErrMissingSidesPath  = errors.New("sidesPath is required")
)

// Validate 校验构造参数
func (o SpinnerOptions) Validate() error {
	if o.Columns < 1 {
		return fmt.Errorf("%w (got %d)", ErrInvalidColumns, o.Columns)
	}
	if o.SideNumber < 2 {
		return fmt.Errorf("%w (got %d)", ErrInvalidSideNumber, o.SideNumber)
	}
	if o.SidesPath == "" {
		return ErrMissingSidesPath
	}
	return nil
}

// IdentityKey 计算 Registry 使用的实例身份键
//
// 格式：<roomID>_<options 的 YAML 序列化>。
// yaml.v3 按结构体字段声明顺序输出，相同参数总是得到相同的键。
func IdentityKey(roomID string, opts SpinnerOptions) (string, error) {
	data, err := yaml.Marshal(opts)
	if err != nil {
		return "", fmt.Errorf("failed to serialize spinner options: %w", err)
	}
	return roomID + "_" + string(data), nil
}

// SpinnerTuning 转盘的动画调校参数
//
// 默认值取自线上版本的手感；同一个 Registry 内的所有实例共享一份调校参数。
type SpinnerTuning struct {
	// MinSpins 每次旋转至少转过的整圈数
	MinSpins int `yaml:"minSpins"`
	// StaggerMs 相邻两列的停止间隔（毫秒）
	StaggerMs int `yaml:"staggerMs"`
	// TickIntervalMs 两次滚动音效之间的最小间隔（毫秒）
	TickIntervalMs int `yaml:"tickIntervalMs"`
	// SideSize 图集中每个符号的边长（像素）
	SideSize int `yaml:"sideSize"`
	// DisplaySize 绘制到画布上的符号边长（像素）
	DisplaySize int `yaml:"displaySize"`
	// BlurPerVelocity 速度到模糊半径的系数
	BlurPerVelocity float64 `yaml:"blurPerVelocity"`
	// MaxBlur 模糊半径上限（像素）
	MaxBlur float64 `yaml:"maxBlur"`
	// PointerJitterScale 速度到指针抖动角度的系数
	PointerJitterScale float64 `yaml:"pointerJitterScale"`
	// PointerMaxAngle 指针抖动角度上限（度）
	PointerMaxAngle float64 `yaml:"pointerMaxAngle"`
	// PointerRestThreshold 低于该角度范围时指针归零
	PointerRestThreshold float64 `yaml:"pointerRestThreshold"`
}

// DefaultSpinnerTuning 返回默认调校参数
func DefaultSpinnerTuning() SpinnerTuning {
	return SpinnerTuning{
		MinSpins:             15,
		StaggerMs:            200,
		TickIntervalMs:       45,
		SideSize:             416,
		DisplaySize:          220,
		BlurPerVelocity:      6,
		MaxBlur:              8,
		PointerJitterScale:   50,
		PointerMaxAngle:      50,
		PointerRestThreshold: 0.1,
	}
}

// Stagger 列间停止间隔
func (t SpinnerTuning) Stagger() time.Duration {
	return time.Duration(t.StaggerMs) * time.Millisecond
}

// TickInterval 音效最小间隔
func (t SpinnerTuning) TickInterval() time.Duration {
	return time.Duration(t.TickIntervalMs) * time.Millisecond
}

// Validate 校验调校参数
func (t SpinnerTuning) Validate() error {
	if t.MinSpins < 1 {
		return fmt.Errorf("minSpins must be >= 1, got %d", t.MinSpins)
	}
	if t.StaggerMs < 0 {
		return fmt.Errorf("staggerMs must be >= 0, got %d", t.StaggerMs)
	}
	if t.TickIntervalMs < 0 {
		return fmt.Errorf("tickIntervalMs must be >= 0, got %d", t.TickIntervalMs)
	}
	if t.SideSize <= 0 || t.DisplaySize <= 0 {
		return fmt.Errorf("sideSize and displaySize must be > 0, got %d/%d", t.SideSize, t.DisplaySize)
	}
	if t.MaxBlur < 0 || t.PointerMaxAngle < 0 {
		return fmt.Errorf("maxBlur and pointerMaxAngle must be >= 0")
	}
	return nil
}

// AudioSettings 音效设置
type AudioSettings struct {
	SoundEnabled bool    `yaml:"soundEnabled"` // 音效开关
	SoundVolume  float64 `yaml:"soundVolume"`  // 音效音量 0.0 ~ 1.0
}

// RoundSettings 演示场景的回合节奏
type RoundSettings struct {
	// BaseDurationMs 第一列的旋转时长（毫秒）
	BaseDurationMs int `yaml:"baseDurationMs"`
	// ResultHoldMs 开奖结果停留时长（毫秒），之后回到下注阶段
	ResultHoldMs int `yaml:"resultHoldMs"`
}

// SpinnerConfig 转盘配置文件的顶层结构
//
// 配置文件位置: data/spinner.yaml
type SpinnerConfig struct {
	Spinner SpinnerOptions `yaml:"spinner"`
	Tuning  SpinnerTuning  `yaml:"tuning"`
	Audio   AudioSettings  `yaml:"audio"`
	Round   RoundSettings  `yaml:"round"`
}

// DefaultSpinnerConfig 返回默认配置（3 列、6 面，与线上房间一致）
func DefaultSpinnerConfig() *SpinnerConfig {
	return &SpinnerConfig{
		Spinner: SpinnerOptions{
			RoomID:     "lobby",
			Columns:    3,
			SidesPath:  "assets/images/sides.png",
			SideNumber: len(SymbolNames),
			AudioPath:  "assets/sounds/spin.mp3",
		},
		Tuning: DefaultSpinnerTuning(),
		Audio: AudioSettings{
			SoundEnabled: true,
			SoundVolume:  0.8,
		},
		Round: RoundSettings{
			BaseDurationMs: 6000,
			ResultHoldMs:   2000,
		},
	}
}

// ParseSpinnerConfig 解析 YAML 配置内容
//
// 未出现在文件中的字段保留默认值。
func ParseSpinnerConfig(data []byte) (*SpinnerConfig, error) {
	cfg := DefaultSpinnerConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse spinner config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid spinner config: %w", err)
	}
	return cfg, nil
}

// LoadSpinnerConfig 加载转盘配置
//
// 参数:
//   - path: 配置文件路径（如 "data/spinner.yaml"）
//
// 返回:
//   - *SpinnerConfig: 加载成功后的配置结构
//   - error: 读取、解析或校验失败时返回错误
func LoadSpinnerConfig(path string) (*SpinnerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spinner config: %w", err)
	}
	return ParseSpinnerConfig(data)
}

// Validate 校验整份配置
func (c *SpinnerConfig) Validate() error {
	if err := c.Spinner.Validate(); err != nil {
		return fmt.Errorf("spinner: %w", err)
	}
	if err := c.Tuning.Validate(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	if c.Audio.SoundVolume < 0 || c.Audio.SoundVolume > 1 {
		return fmt.Errorf("audio: soundVolume must be in [0, 1], got %.2f", c.Audio.SoundVolume)
	}
	if c.Round.BaseDurationMs < 0 || c.Round.ResultHoldMs < 0 {
		return fmt.Errorf("round: durations must be >= 0")
	}
	return nil
}

// BaseDuration 第一列的旋转时长
func (r RoundSettings) BaseDuration() time.Duration {
	return time.Duration(r.BaseDurationMs) * time.Millisecond
}

// ResultHold 开奖结果停留时长
func (r RoundSettings) ResultHold() time.Duration {
	return time.Duration(r.ResultHoldMs) * time.Millisecond
}
