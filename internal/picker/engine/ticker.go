package engine

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/randpick/internal/picker"
	"github.com/cory-johannsen/randpick/internal/picker/history"
	"github.com/cory-johannsen/randpick/internal/picker/rng"
)

const (
	// DefaultTicks is the number of shuffle steps in one roll.
	DefaultTicks = 20
	// DefaultTickInterval is the delay between shuffle steps.
	DefaultTickInterval = 50 * time.Millisecond
	// MinTickInterval and MaxTickInterval bound the user-adjustable speed.
	MinTickInterval = 20 * time.Millisecond
	MaxTickInterval = 200 * time.Millisecond
)

// TickConfig tunes a tick engine.
type TickConfig struct {
	// Tool names the engine in logs and results, e.g. "number" or "letter".
	Tool     string
	Ticks    int
	Interval time.Duration
	Sound    bool
}

// Notifier receives one call per animation tick while sound is enabled.
// Implementations must not block.
type Notifier interface {
	Notify(tool string, tick int)
}

// TickState is a snapshot of a tick engine.
//
// Invariant: Winner != nil iff Phase == Resolved.
type TickState[T any] struct {
	Phase Phase
	// Current is the value on display; it changes every tick.
	Current    T
	HasCurrent bool
	// Tick counts the draws made in the current or last roll.
	Tick   int
	Winner *T
}

// Ticker reveals a winner by drawing from a pool snapshot once per tick; the
// last draw is committed. It is safe for concurrent use.
type Ticker[T any] struct {
	mu       sync.Mutex
	cfg      TickConfig
	poolFn   func() []T
	src      rng.Source
	sched    Scheduler
	ledger   *history.Ledger[T]
	notifier Notifier
	logger   *zap.Logger

	state     TickState[T]
	pool      []T
	timer     Timer
	gen       uint64
	onTick    []func(tick int, v T)
	onResolve []func(v T)
}

// NewTicker creates an idle tick engine. poolFn computes the effective pool and
// is called once per roll, at trigger time.
//
// Precondition: poolFn, src, sched, ledger and logger must be non-nil;
// cfg.Ticks > 0; cfg.Interval within [MinTickInterval, MaxTickInterval].
// notifier may be nil.
func NewTicker[T any](cfg TickConfig, poolFn func() []T, src rng.Source, sched Scheduler, ledger *history.Ledger[T], notifier Notifier, logger *zap.Logger) *Ticker[T] {
	return &Ticker[T]{
		cfg:      cfg,
		poolFn:   poolFn,
		src:      src,
		sched:    sched,
		ledger:   ledger,
		notifier: notifier,
		logger:   logger.With(zap.String("tool", cfg.Tool)),
	}
}

// Tool returns the configured tool name.
func (t *Ticker[T]) Tool() string { return t.cfg.Tool }

// OnTick registers fn to receive every transient draw, outside the engine lock.
func (t *Ticker[T]) OnTick(fn func(tick int, v T)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTick = append(t.onTick, fn)
}

// OnResolve registers fn to receive every committed winner, outside the engine lock.
func (t *Ticker[T]) OnResolve(fn func(v T)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onResolve = append(t.onResolve, fn)
}

// Roll snapshots the effective pool and starts the tick loop.
//
// Postcondition: On success Phase == Animating. Returns ErrInvalidState while
// animating and ErrEmptyPool when the pool is empty; state is unchanged on error.
func (t *Ticker[T]) Roll() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Phase == Animating {
		return fmt.Errorf("roll requested while animating: %w", picker.ErrInvalidState)
	}
	p := t.poolFn()
	if len(p) == 0 {
		return fmt.Errorf("roll %s: %w", t.cfg.Tool, picker.ErrEmptyPool)
	}

	t.pool = p
	t.state.Phase = Animating
	t.state.Winner = nil
	t.state.Tick = 0

	t.gen++
	gen := t.gen
	t.timer = t.sched.Every(t.cfg.Interval, t.cfg.Ticks, func(i int) { t.tick(gen, i) })

	t.logger.Debug("roll started",
		zap.Int("pool", len(p)),
		zap.Int("ticks", t.cfg.Ticks),
		zap.Duration("interval", t.cfg.Interval),
	)
	return nil
}

func (t *Ticker[T]) tick(gen uint64, i int) {
	t.mu.Lock()
	if gen != t.gen || t.state.Phase != Animating {
		t.mu.Unlock()
		return
	}
	v := t.pool[t.src.Intn(len(t.pool))]
	t.state.Current = v
	t.state.HasCurrent = true
	t.state.Tick = i
	last := i >= t.cfg.Ticks
	if last {
		w := v
		t.state.Phase = Resolved
		t.state.Winner = &w
		t.timer = nil
		t.pool = nil
		t.ledger.Record(v)
	}
	sound := t.cfg.Sound
	onTick := slices.Clone(t.onTick)
	onResolve := slices.Clone(t.onResolve)
	t.mu.Unlock()

	if sound && t.notifier != nil {
		t.notifier.Notify(t.cfg.Tool, i)
	}
	for _, fn := range onTick {
		fn(i, v)
	}
	if !last {
		return
	}
	t.logger.Info("roll resolved", zap.Any("winner", v), zap.Int("ticks", i))
	for _, fn := range onResolve {
		fn(v)
	}
}

// Reset cancels any pending roll and returns to Idle. The displayed value is kept.
func (t *Ticker[T]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
	t.state.Phase = Idle
	t.state.Winner = nil
	t.state.Tick = 0
	t.pool = nil
}

// Close cancels any pending roll. Call it when the owning session ends.
func (t *Ticker[T]) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
	if t.state.Phase == Animating {
		t.state.Phase = Idle
	}
}

func (t *Ticker[T]) cancelLocked() {
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// State returns a snapshot of the engine.
func (t *Ticker[T]) State() TickState[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.state
	if s.Winner != nil {
		w := *s.Winner
		s.Winner = &w
	}
	return s
}

// Animating reports whether a roll is in progress.
func (t *Ticker[T]) Animating() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Phase == Animating
}

// ResultText returns the committed winner formatted with %v, or false before resolution.
func (t *Ticker[T]) ResultText() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Winner == nil {
		return "", false
	}
	return fmt.Sprint(*t.state.Winner), true
}

// History returns the engine's ledger.
func (t *Ticker[T]) History() *history.Ledger[T] { return t.ledger }

// Settings returns the current interval and sound flag.
func (t *Ticker[T]) Settings() (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg.Interval, t.cfg.Sound
}

// SetInterval changes the tick interval for subsequent rolls.
//
// Postcondition: Returns ErrValidation outside [MinTickInterval,
// MaxTickInterval] and ErrInvalidState while animating; unchanged on error.
func (t *Ticker[T]) SetInterval(d time.Duration) error {
	if d < MinTickInterval || d > MaxTickInterval {
		return fmt.Errorf("tick interval %s outside [%s, %s]: %w", d, MinTickInterval, MaxTickInterval, picker.ErrValidation)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Phase == Animating {
		return fmt.Errorf("speed locked while animating: %w", picker.ErrInvalidState)
	}
	t.cfg.Interval = d
	return nil
}

// ToggleSound flips the tick notification flag and returns the new value.
func (t *Ticker[T]) ToggleSound() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cfg.Sound = !t.cfg.Sound
	return t.cfg.Sound
}
