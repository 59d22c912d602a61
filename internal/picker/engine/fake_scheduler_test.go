package engine_test

import (
	"sort"
	"sync"
	"time"

	"github.com/cory-johannsen/randpick/internal/picker/engine"
)

// manualScheduler is a Scheduler driven by Advance instead of the wall clock.
// Callbacks run synchronously inside Advance.
type manualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	pending []*manualTimer
}

type manualTimer struct {
	s        *manualScheduler
	due      time.Duration
	interval time.Duration
	left     int
	fired    int
	fn       func(i int)
	stopped  bool
}

func (t *manualTimer) Stop() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.stopped = true
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) engine.Timer {
	return s.add(d, 1, func(int) { fn() })
}

func (s *manualScheduler) Every(d time.Duration, n int, fn func(i int)) engine.Timer {
	return s.add(d, n, fn)
}

func (s *manualScheduler) add(d time.Duration, n int, fn func(int)) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, due: s.now + d, interval: d, left: n, fn: fn}
	s.pending = append(s.pending, t)
	return t
}

// Active returns the number of timers that can still fire.
func (s *manualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if !t.stopped && t.left > 0 {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing due callbacks in time order.
func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()
	for {
		s.mu.Lock()
		live := make([]*manualTimer, 0, len(s.pending))
		for _, t := range s.pending {
			if !t.stopped && t.left > 0 {
				live = append(live, t)
			}
		}
		s.pending = live
		sort.SliceStable(live, func(i, j int) bool { return live[i].due < live[j].due })
		if len(live) == 0 || live[0].due > target {
			s.now = target
			s.mu.Unlock()
			return
		}
		t := live[0]
		s.now = t.due
		t.left--
		t.fired++
		i := t.fired
		t.due += t.interval
		s.mu.Unlock()
		t.fn(i)
	}
}
