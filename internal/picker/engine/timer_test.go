package engine_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/cory-johannsen/randpick/internal/picker/engine"
)

func TestSpinTimer_Fires(t *testing.T) {
	var called atomic.Int32
	engine.NewSpinTimer(20*time.Millisecond, func() {
		called.Add(1)
	})
	time.Sleep(60 * time.Millisecond)
	if called.Load() != 1 {
		t.Fatalf("expected callback called once, got %d", called.Load())
	}
}

func TestSpinTimer_Stop_PreventsCallback(t *testing.T) {
	var called atomic.Int32
	st := engine.NewSpinTimer(50*time.Millisecond, func() {
		called.Add(1)
	})
	st.Stop()
	time.Sleep(80 * time.Millisecond)
	if called.Load() != 0 {
		t.Fatalf("expected callback not called, got %d", called.Load())
	}
}

func TestSpinTimer_StopIdempotent(t *testing.T) {
	st := engine.NewSpinTimer(50*time.Millisecond, func() {})
	st.Stop()
	st.Stop()
	st.Stop()
}

func TestTickTimer_FiresBoundedCount(t *testing.T) {
	var calls atomic.Int32
	var last atomic.Int32
	engine.NewTickTimer(5*time.Millisecond, 4, func(i int) {
		calls.Add(1)
		last.Store(int32(i))
	})
	time.Sleep(100 * time.Millisecond)
	if calls.Load() != 4 {
		t.Fatalf("expected 4 ticks, got %d", calls.Load())
	}
	if last.Load() != 4 {
		t.Fatalf("expected last tick index 4, got %d", last.Load())
	}
}

func TestTickTimer_Stop(t *testing.T) {
	var calls atomic.Int32
	tt := engine.NewTickTimer(30*time.Millisecond, 10, func(int) {
		calls.Add(1)
	})
	tt.Stop()
	tt.Stop()
	time.Sleep(80 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatalf("expected no ticks after Stop, got %d", calls.Load())
	}
}

func TestRealScheduler_Every(t *testing.T) {
	var calls atomic.Int32
	engine.RealScheduler{}.Every(2*time.Millisecond, 3, func(int) { calls.Add(1) })
	time.Sleep(60 * time.Millisecond)
	if calls.Load() != 3 {
		t.Fatalf("expected 3 ticks, got %d", calls.Load())
	}
}
