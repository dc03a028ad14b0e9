package spinner

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/decker502/reelspin/pkg/config"
	"github.com/decker502/reelspin/pkg/game"
)

// countingFactory 统计工厂调用次数
func countingFactory(calls *atomic.Int32) EngineFactory {
	deps := testDeps(game.NewFrameScheduler(), game.NewManualClock(testStart), &fakeLoader{clip: &fakeClip{}})
	inner := FactoryFor(deps)
	return func(opts config.SpinnerOptions) (*Engine, error) {
		calls.Add(1)
		return inner(opts)
	}
}

func TestRegistryAcquire(t *testing.T) {
	var calls atomic.Int32
	r := NewRegistry(countingFactory(&calls))
	defer r.Close()

	opts := testOptions(3)

	t.Run("相同参数返回同一实例", func(t *testing.T) {
		a, err := r.Acquire("room-1", opts)
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		b, err := r.Acquire("room-1", opts)
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		if a != b {
			t.Error("expected the same engine for identical keys")
		}
		if calls.Load() != 1 {
			t.Errorf("expected 1 factory call, got %d", calls.Load())
		}
	})

	t.Run("不同房间创建新实例", func(t *testing.T) {
		a, _ := r.Acquire("room-1", opts)
		b, err := r.Acquire("room-2", opts)
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		if a == b {
			t.Error("expected distinct engines for distinct rooms")
		}
	})

	t.Run("不同参数创建新实例", func(t *testing.T) {
		a, _ := r.Acquire("room-1", opts)
		other := opts
		other.Columns = 5
		b, err := r.Acquire("room-1", other)
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		if a == b {
			t.Error("expected distinct engines for distinct options")
		}
	})

	if r.Len() != 3 {
		t.Errorf("expected 3 live engines, got %d", r.Len())
	}
}

func TestRegistryConcurrentAcquire(t *testing.T) {
	var calls atomic.Int32
	r := NewRegistry(countingFactory(&calls))
	defer r.Close()

	opts := testOptions(3)
	const workers = 16
	engines := make([]*Engine, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := r.Acquire("room-1", opts)
			if err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			engines[i] = e
		}(i)
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("expected exactly 1 factory call, got %d", calls.Load())
	}
	for i := 1; i < workers; i++ {
		if engines[i] != engines[0] {
			t.Fatal("concurrent Acquire returned different engines")
		}
	}
}

func TestRegistryRelease(t *testing.T) {
	var calls atomic.Int32
	r := NewRegistry(countingFactory(&calls))
	defer r.Close()

	opts := testOptions(3)
	e, err := r.Acquire("room-1", opts)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if !r.Release("room-1", opts) {
		t.Fatal("expected Release to find the engine")
	}
	if !e.Destroyed() {
		t.Error("released engine should be destroyed")
	}
	if r.Release("room-1", opts) {
		t.Error("second Release should report nothing to release")
	}

	fresh, err := r.Acquire("room-1", opts)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if fresh == e {
		t.Error("Acquire after Release should create a new engine")
	}
}

func TestRegistryReleaseRoom(t *testing.T) {
	var calls atomic.Int32
	r := NewRegistry(countingFactory(&calls))

	three := testOptions(3)
	five := testOptions(5)
	a, _ := r.Acquire("room-1", three)
	b, _ := r.Acquire("room-1", five)
	c, _ := r.Acquire("room-2", three)

	if n := r.ReleaseRoom("room-1"); n != 2 {
		t.Errorf("expected 2 engines released, got %d", n)
	}
	if !a.Destroyed() || !b.Destroyed() {
		t.Error("room-1 engines should be destroyed")
	}
	if c.Destroyed() {
		t.Error("room-2 engine should survive")
	}
	if n := r.ReleaseRoom("room-1"); n != 0 {
		t.Errorf("expected nothing left in room-1, got %d", n)
	}

	r.Close()
	if !c.Destroyed() || r.Len() != 0 {
		t.Error("Close should destroy every engine")
	}
}

func TestRegistryFactoryError(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry(func(opts config.SpinnerOptions) (*Engine, error) {
		return nil, boom
	})

	if _, err := r.Acquire("room-1", testOptions(3)); !errors.Is(err, boom) {
		t.Errorf("expected factory error, got %v", err)
	}
	if r.Len() != 0 {
		t.Error("failed Acquire must not register anything")
	}
}
