package spinner

import (
	"context"
	"sync"
	"sync/atomic"
)

// SpinOutcome 一次旋转的结局
type SpinOutcome int32

const (
	// SpinPending 仍在旋转
	SpinPending SpinOutcome = iota
	// SpinSettled 所有列已停在目标符号
	SpinSettled
	// SpinSuperseded 被新的 SpinTo 抢占，列不会停在本次的目标上
	SpinSuperseded
	// SpinCanceled 引擎被销毁
	SpinCanceled
)

// String 返回结局名称
func (o SpinOutcome) String() string {
	switch o {
	case SpinPending:
		return "pending"
	case SpinSettled:
		return "settled"
	case SpinSuperseded:
		return "superseded"
	case SpinCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// SpinHandle 一次 SpinTo 的完成信号
//
// 只有两个阶段：未完成 / 已完成。完成恰好发生一次，之后 Done() 永远处于关闭状态。
type SpinHandle struct {
	id      uint64
	done    chan struct{}
	once    sync.Once
	outcome atomic.Int32
}

func newSpinHandle(id uint64) *SpinHandle {
	return &SpinHandle{id: id, done: make(chan struct{})}
}

// ID 旋转序号（同一引擎内递增）
func (h *SpinHandle) ID() uint64 {
	return h.id
}

// Done 完成时关闭的通道
func (h *SpinHandle) Done() <-chan struct{} {
	return h.done
}

// Outcome 当前结局；未完成时为 SpinPending
func (h *SpinHandle) Outcome() SpinOutcome {
	return SpinOutcome(h.outcome.Load())
}

// Wait 阻塞直到旋转完成或 ctx 结束
//
// 返回：
//   - SpinOutcome: 旋转结局（ctx 先结束时为 SpinPending）
//   - error: ctx 的错误
func (h *SpinHandle) Wait(ctx context.Context) (SpinOutcome, error) {
	select {
	case <-h.done:
		return h.Outcome(), nil
	case <-ctx.Done():
		return SpinPending, ctx.Err()
	}
}

// resolve 以给定结局完成句柄；重复调用无效
func (h *SpinHandle) resolve(o SpinOutcome) bool {
	resolved := false
	h.once.Do(func() {
		h.outcome.Store(int32(o))
		close(h.done)
		resolved = true
	})
	return resolved
}
