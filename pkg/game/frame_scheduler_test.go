package game

import (
	"testing"
	"time"
)

// TestFrameSchedulerRunsOnce 验证回调只在下一帧执行一次
func TestFrameSchedulerRunsOnce(t *testing.T) {
	s := NewFrameScheduler()
	calls := 0
	id := s.RequestFrame(func(now time.Time) { calls++ })
	if id == 0 {
		t.Fatal("RequestFrame should return a non-zero id")
	}
	if s.Pending() != 1 {
		t.Errorf("expected 1 pending callback, got %d", s.Pending())
	}

	if ran := s.RunFrame(time.Now()); ran != 1 {
		t.Errorf("expected 1 callback to run, got %d", ran)
	}
	s.RunFrame(time.Now())

	if calls != 1 {
		t.Errorf("expected callback to run exactly once, got %d", calls)
	}
	if s.Pending() != 0 {
		t.Errorf("expected no pending callbacks, got %d", s.Pending())
	}
}

// TestFrameSchedulerPassesTimestamp 验证回调收到本帧时间戳
func TestFrameSchedulerPassesTimestamp(t *testing.T) {
	s := NewFrameScheduler()
	frameTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var got time.Time
	s.RequestFrame(func(now time.Time) { got = now })
	s.RunFrame(frameTime)
	if !got.Equal(frameTime) {
		t.Errorf("expected timestamp %v, got %v", frameTime, got)
	}
}

// TestFrameSchedulerCancel 验证取消的回调不会执行
func TestFrameSchedulerCancel(t *testing.T) {
	s := NewFrameScheduler()
	called := false
	id := s.RequestFrame(func(now time.Time) { called = true })
	s.CancelFrame(id)
	s.CancelFrame(id)     // 重复取消无副作用
	s.CancelFrame(999999) // 无效句柄无副作用

	if ran := s.RunFrame(time.Now()); ran != 0 {
		t.Errorf("expected 0 callbacks to run, got %d", ran)
	}
	if called {
		t.Error("canceled callback should not run")
	}
}

// TestFrameSchedulerRequestDuringFrame 验证帧内注册的回调推迟到下一帧
func TestFrameSchedulerRequestDuringFrame(t *testing.T) {
	s := NewFrameScheduler()
	frames := 0
	var loop FrameCallback
	loop = func(now time.Time) {
		frames++
		if frames < 3 {
			s.RequestFrame(loop)
		}
	}
	s.RequestFrame(loop)

	for i := 1; i <= 5; i++ {
		s.RunFrame(time.Now())
		want := i
		if want > 3 {
			want = 3
		}
		if frames != want {
			t.Fatalf("after frame %d expected %d callbacks, got %d", i, want, frames)
		}
	}
}

// TestFrameSchedulerCancelLaterInSameFrame 验证回调可以取消同一帧中排在后面的回调
func TestFrameSchedulerCancelLaterInSameFrame(t *testing.T) {
	s := NewFrameScheduler()
	secondCalled := false
	var second FrameID
	s.RequestFrame(func(now time.Time) { s.CancelFrame(second) })
	second = s.RequestFrame(func(now time.Time) { secondCalled = true })

	if ran := s.RunFrame(time.Now()); ran != 1 {
		t.Errorf("expected 1 callback to run, got %d", ran)
	}
	if secondCalled {
		t.Error("callback canceled earlier in the same frame should not run")
	}
}

// TestManualClockAdvance 验证手动时钟推进
func TestManualClockAdvance(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewManualClock(start)
	if !c.Now().Equal(start) {
		t.Errorf("expected %v, got %v", start, c.Now())
	}
	got := c.Advance(16 * time.Millisecond)
	if want := start.Add(16 * time.Millisecond); !got.Equal(want) || !c.Now().Equal(want) {
		t.Errorf("expected %v after advance, got %v", want, got)
	}
}
