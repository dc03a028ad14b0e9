package spinner

import (
	"fmt"
	"time"
)

// ClipPlayer 可重复触发的短音效
type ClipPlayer interface {
	// Available 音频子系统当前是否可以播放
	Available() bool
	// Play 开始播放一次；失败时返回错误
	Play() error
}

// TickThrottle 滚动音效节流器
//
// 高速旋转时每帧都可能跨格，直接播放会把音效叠成噪音；
// 两次成功播放之间至少间隔 interval，期间的请求直接丢弃。
// 没有音效、音频不可用、播放失败都静默忽略，不影响动画。
type TickThrottle struct {
	interval time.Duration
	last     time.Time
	player   ClipPlayer
}

// NewTickThrottle 创建节流器
func NewTickThrottle(interval time.Duration) *TickThrottle {
	return &TickThrottle{interval: interval}
}

// SetPlayer 设置（或清除）音效
func (t *TickThrottle) SetPlayer(p ClipPlayer) {
	t.player = p
}

// HasPlayer 是否已加载音效
func (t *TickThrottle) HasPlayer() bool {
	return t.player != nil
}

// Fire 尝试在 now 时刻播放一次音效
//
// 返回：
//   - bool: 是否真正开始播放
func (t *TickThrottle) Fire(now time.Time) bool {
	if t.player == nil || !t.player.Available() {
		return false
	}
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		return false
	}
	if err := t.play(); err != nil {
		return false
	}
	t.last = now
	return true
}

func (t *TickThrottle) play() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tick playback panicked: %v", r)
		}
	}()
	return t.player.Play()
}
