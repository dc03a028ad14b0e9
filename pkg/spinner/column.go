package spinner

import (
	"math"
	"time"

	"github.com/decker502/reelspin/pkg/utils"
)

// ColumnState 单列转轮的运动状态
//
// 位置以「符号格」为单位，不取模；旋转过程中单调递增。
// 不在动画中时满足 CurrentPos == TargetPos 且 Velocity == 0。
type ColumnState struct {
	CurrentPos float64       // 当前连续位置
	LastIntPos int           // 上一帧位置的整数部分（用于检测跨格）
	TargetPos  float64       // 本次旋转的目标位置
	StartPos   float64       // 本次旋转的起始位置
	StartTime  time.Time     // 本次旋转的开始时间
	Duration   time.Duration // 本次旋转的持续时间
	Animating  bool          // 是否仍在运动
	Velocity   float64       // 上一帧的位移量，驱动模糊和指针抖动
}

// plan 为一次旋转计算起止位置
//
// 起始位置先按一圈取模，避免多次旋转后浮点数无限增大；
// 目标 = 不小于起点的整圈边界 + minSpins 圈 + 目标索引，
// 因此行程至少为 minSpins*sides。
func (c *ColumnState) plan(target, sides, minSpins int, now time.Time, duration time.Duration) {
	n := float64(sides)
	start := math.Mod(c.CurrentPos, n)
	if start < 0 {
		start += n
	}

	c.CurrentPos = start
	c.StartPos = start
	c.StartTime = now
	c.Duration = duration
	c.LastIntPos = int(math.Floor(start))

	base := math.Ceil(start/n) * n
	c.TargetPos = base + float64(minSpins*sides+target)
	c.Animating = true
}

// advance 推进到 now 时刻
//
// 返回：
//   - bool: 本帧是否跨过了整数格（用于触发音效）
func (c *ColumnState) advance(now time.Time) bool {
	if !c.Animating {
		c.Velocity = 0
		return false
	}

	p := utils.Progress(float64(now.Sub(c.StartTime)), float64(c.Duration))
	if p < 1 {
		prev := c.CurrentPos
		c.CurrentPos = utils.Lerp(c.StartPos, c.TargetPos, utils.EaseInOutQuint(p))
		c.Velocity = math.Abs(c.CurrentPos - prev)
	} else {
		c.CurrentPos = c.TargetPos
		c.Animating = false
		c.Velocity = 0
	}

	cur := int(math.Floor(c.CurrentPos))
	if cur != c.LastIntPos {
		c.LastIntPos = cur
		return true
	}
	return false
}

// Symbol 返回当前停留（或正在经过）的符号索引
func (c ColumnState) Symbol(sides int) int {
	idx := int(math.Floor(c.CurrentPos)) % sides
	if idx < 0 {
		idx += sides
	}
	return idx
}

// Travel 本次旋转的总行程（格）
func (c ColumnState) Travel() float64 {
	return c.TargetPos - c.StartPos
}
