package game

import (
	"errors"
	"fmt"
	"sync"

	"github.com/decker502/reelspin/pkg/config"
	"github.com/hajimehoshi/ebiten/v2/audio"
)

// ErrAudioUnavailable 音频设备未就绪（例如平台尚未允许播放）或音效被关闭
var ErrAudioUnavailable = errors.New("audio unavailable")

// AudioManager 音效管理器
// 职责：
//   - 持有全局唯一的 audio.Context
//   - 应用音效开关与音量设置
//   - 将解码后的 PCM 包装为可重复触发的 ClipPlayer
//
// 设计原则：
//   - 音效是非必要的增强：任何播放失败都只返回错误，不会 panic
//   - audioContext 为 nil 时进入静音模式，所有播放请求返回 ErrAudioUnavailable
type AudioManager struct {
	audioContext *audio.Context // 全局音频上下文（可为 nil，静音模式）

	mu       sync.RWMutex
	settings config.AudioSettings // 当前音效设置
}

// NewAudioManager 创建新的音效管理器
//
// 参数：
//   - ctx: 全局音频上下文，可为 nil（静音模式）
//   - settings: 初始音效设置
//
// 返回：
//   - *AudioManager: 音效管理器实例
func NewAudioManager(ctx *audio.Context, settings config.AudioSettings) *AudioManager {
	return &AudioManager{
		audioContext: ctx,
		settings:     settings,
	}
}

// Available 音频子系统当前是否可以播放
func (am *AudioManager) Available() bool {
	if am.audioContext == nil {
		return false
	}
	am.mu.RLock()
	enabled := am.settings.SoundEnabled
	am.mu.RUnlock()
	return enabled && am.audioContext.IsReady()
}

// SetSoundEnabled 设置音效开关
func (am *AudioManager) SetSoundEnabled(enabled bool) {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.settings.SoundEnabled = enabled
}

// SetSoundVolume 设置音效音量（限制在 0.0 ~ 1.0）
func (am *AudioManager) SetSoundVolume(volume float64) {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.settings.SoundVolume = clampVolume(volume)
}

// GetSettings 获取当前音效设置的副本
func (am *AudioManager) GetSettings() config.AudioSettings {
	am.mu.RLock()
	defer am.mu.RUnlock()
	return am.settings
}

// NewClipPlayer 将 PCM 数据包装为 ClipPlayer
//
// 参数：
//   - name: 音效名称（仅用于日志）
//   - pcm: 16 位小端双声道 PCM，采样率需与 audio.Context 一致
func (am *AudioManager) NewClipPlayer(name string, pcm []byte) *ClipPlayer {
	return &ClipPlayer{manager: am, name: name, pcm: pcm}
}

// ClipPlayer 可重复触发的短音效
//
// 每次 Play 都从 PCM 创建一个新的 audio.Player，多次触发可以叠加播放，
// 与 Web Audio 的 AudioBufferSourceNode 用法一致。
type ClipPlayer struct {
	manager *AudioManager
	name    string
	pcm     []byte
}

// Available 音频子系统当前是否可以播放
func (cp *ClipPlayer) Available() bool {
	return cp.manager.Available() && len(cp.pcm) > 0
}

// Play 开始播放一次音效
//
// 返回：
//   - error: 音频不可用或播放启动失败时返回错误（调用方可以忽略）
func (cp *ClipPlayer) Play() (err error) {
	if !cp.Available() {
		return ErrAudioUnavailable
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to start clip %s: %v", cp.name, r)
		}
	}()

	player := cp.manager.audioContext.NewPlayerFromBytes(cp.pcm)
	player.SetVolume(cp.manager.GetSettings().SoundVolume)
	player.Play()
	return nil
}

// clampVolume 将音量值限制在 0.0 ~ 1.0 范围内
func clampVolume(volume float64) float64 {
	if volume < 0.0 {
		return 0.0
	}
	if volume > 1.0 {
		return 1.0
	}
	return volume
}
