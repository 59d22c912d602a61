package engine

import (
	"sync"
	"time"
)

// Timer is a cancellable handle on a scheduled callback.
type Timer interface {
	// Stop prevents any further callbacks. Safe to call multiple times.
	Stop()
}

// Scheduler creates the two kinds of timers an engine uses. Engines hold at
// most one pending Timer at a time.
type Scheduler interface {
	// AfterFunc calls fn once after d unless stopped first.
	AfterFunc(d time.Duration, fn func()) Timer
	// Every calls fn(i) for i = 1..n, one call per interval d, then stops itself.
	Every(d time.Duration, n int, fn func(i int)) Timer
}

// RealScheduler schedules callbacks on the wall clock. Callbacks run on their
// own goroutines.
type RealScheduler struct{}

// AfterFunc implements Scheduler.
//
// Precondition: d > 0; fn must not be nil.
func (RealScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return NewSpinTimer(d, fn)
}

// Every implements Scheduler.
//
// Precondition: d > 0; n > 0; fn must not be nil.
func (RealScheduler) Every(d time.Duration, n int, fn func(i int)) Timer {
	return NewTickTimer(d, n, fn)
}

// SpinTimer fires a callback once after a fixed delay unless stopped.
// It is safe for concurrent use.
type SpinTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewSpinTimer creates and starts a timer that calls onFire after duration.
// onFire is called in a separate goroutine.
//
// Postcondition: onFire will be called once unless Stop is called first.
func NewSpinTimer(duration time.Duration, onFire func()) *SpinTimer {
	st := &SpinTimer{}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.timer = time.AfterFunc(duration, func() {
		st.mu.Lock()
		stopped := st.stopped
		st.stopped = true
		st.mu.Unlock()
		if !stopped {
			onFire()
		}
	})
	return st
}

// Stop prevents the callback from firing if it has not started yet.
func (st *SpinTimer) Stop() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.stopped = true
	st.timer.Stop()
}

// TickTimer calls a callback a bounded number of times at a fixed interval,
// then cancels itself.
type TickTimer struct {
	done chan struct{}
	once sync.Once
}

// NewTickTimer starts a ticker goroutine that calls onTick(1)..onTick(count).
//
// Precondition: interval > 0; count > 0.
// Postcondition: The goroutine exits after the last tick or when Stop is called.
func NewTickTimer(interval time.Duration, count int, onTick func(i int)) *TickTimer {
	tt := &TickTimer{done: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for i := 1; i <= count; i++ {
			select {
			case <-ticker.C:
				select {
				case <-tt.done:
					return
				default:
				}
				onTick(i)
			case <-tt.done:
				return
			}
		}
	}()
	return tt
}

// Stop ends the tick loop. Safe to call multiple times.
func (tt *TickTimer) Stop() {
	tt.once.Do(func() { close(tt.done) })
}
