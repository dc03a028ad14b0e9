package game

import (
	"sync"
	"time"
)

// FrameID 帧回调句柄，0 表示无效句柄
type FrameID uint64

// FrameCallback 帧回调，参数为本帧的时间戳
type FrameCallback func(now time.Time)

type frameRequest struct {
	id       FrameID
	callback FrameCallback
	canceled bool
}

// FrameScheduler 按显示刷新节奏执行一次性帧回调
//
// 语义与浏览器的 requestAnimationFrame 一致：
//   - RequestFrame 注册的回调只执行一次，在下一次 RunFrame 时执行
//   - 回调执行期间注册的新回调推迟到再下一帧
//   - CancelFrame 可以取消尚未执行的回调（包括同一帧中排在后面的回调）
//
// RunFrame 由游戏主循环（ebiten.Game.Update）每帧调用一次；
// RequestFrame / CancelFrame 可以在任意 goroutine 调用。
type FrameScheduler struct {
	mu      sync.Mutex
	nextID  FrameID
	queue   []*frameRequest
	pending map[FrameID]*frameRequest
}

// NewFrameScheduler 创建帧调度器
func NewFrameScheduler() *FrameScheduler {
	return &FrameScheduler{
		pending: make(map[FrameID]*frameRequest),
	}
}

// RequestFrame 注册下一帧执行的回调
//
// 返回：
//   - FrameID: 用于 CancelFrame 的句柄（总是非零）
func (s *FrameScheduler) RequestFrame(cb FrameCallback) FrameID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	req := &frameRequest{id: s.nextID, callback: cb}
	s.queue = append(s.queue, req)
	s.pending[req.id] = req
	return req.id
}

// CancelFrame 取消尚未执行的回调；句柄无效或已执行时什么也不做
func (s *FrameScheduler) CancelFrame(id FrameID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req, ok := s.pending[id]; ok {
		req.canceled = true
		delete(s.pending, id)
	}
}

// RunFrame 执行本帧之前注册的所有回调
//
// 回调在调度器锁之外执行，回调内部可以再次调用 RequestFrame / CancelFrame。
//
// 返回：
//   - int: 实际执行的回调数量
func (s *FrameScheduler) RunFrame(now time.Time) int {
	s.mu.Lock()
	batch := s.queue
	s.queue = nil
	s.mu.Unlock()

	ran := 0
	for _, req := range batch {
		s.mu.Lock()
		if req.canceled {
			s.mu.Unlock()
			continue
		}
		delete(s.pending, req.id)
		s.mu.Unlock()

		req.callback(now)
		ran++
	}
	return ran
}

// Pending 返回等待执行的回调数量
func (s *FrameScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
