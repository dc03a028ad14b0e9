package game

import (
	"sync"
	"time"
)

// Clock 时间源
// 帧调度、动画插值和音效节流都通过 Clock 读取时间，测试中可替换为 ManualClock
type Clock interface {
	Now() time.Time
}

// SystemClock 系统单调时钟
type SystemClock struct{}

// NewSystemClock 创建系统时钟
func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

// Now 返回带单调读数的当前时间
func (c *SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock 可手动推进的时钟，用于测试和离线验证
type ManualClock struct {
	mu          sync.RWMutex
	currentTime time.Time
}

// NewManualClock 以给定时间创建手动时钟
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{currentTime: start}
}

// Now 返回当前模拟时间
func (c *ManualClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentTime
}

// Advance 推进模拟时间并返回推进后的时间
func (c *ManualClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = c.currentTime.Add(d)
	return c.currentTime
}
