package engine

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/randpick/internal/picker"
	"github.com/cory-johannsen/randpick/internal/picker/candidate"
	"github.com/cory-johannsen/randpick/internal/picker/history"
	"github.com/cory-johannsen/randpick/internal/picker/rng"
	"github.com/cory-johannsen/randpick/internal/picker/wheel"
)

const (
	// DefaultSpinDuration is how long the wheel animates before resolving.
	DefaultSpinDuration = 5000 * time.Millisecond
	// DefaultExtraRevolutions is the number of full turns added to every spin.
	DefaultExtraRevolutions = 5
)

// WheelConfig tunes a wheel engine.
type WheelConfig struct {
	// Tool names the engine in logs and results, e.g. "wheel" or "team".
	Tool             string
	SpinDuration     time.Duration
	ExtraRevolutions int
}

// SpinState is a snapshot of a wheel engine.
//
// Invariant: Winner != nil iff Phase == Resolved.
type SpinState struct {
	Phase Phase
	// Rotation is the cumulative clockwise rotation in degrees. It never
	// decreases except through Reset.
	Rotation float64
	Winner   *candidate.Candidate
}

// Wheel spins a candidate wheel and resolves the segment under the top pointer.
// It is safe for concurrent use.
type Wheel struct {
	mu     sync.Mutex
	cfg    WheelConfig
	set    *candidate.Set
	src    rng.Source
	sched  Scheduler
	ledger *history.Ledger[string]
	logger *zap.Logger

	state     SpinState
	spinning  []candidate.Candidate
	timer     Timer
	gen       uint64
	listeners []func(candidate.Candidate)
}

// NewWheel creates an idle wheel engine over set.
//
// Precondition: set, src, sched, ledger and logger must be non-nil;
// cfg.SpinDuration > 0; cfg.ExtraRevolutions >= 0.
func NewWheel(cfg WheelConfig, set *candidate.Set, src rng.Source, sched Scheduler, ledger *history.Ledger[string], logger *zap.Logger) *Wheel {
	return &Wheel{
		cfg:    cfg,
		set:    set,
		src:    src,
		sched:  sched,
		ledger: ledger,
		logger: logger.With(zap.String("tool", cfg.Tool)),
	}
}

// Tool returns the configured tool name.
func (w *Wheel) Tool() string { return w.cfg.Tool }

// OnResolve registers fn to be called, outside the engine lock, with every
// resolved winner.
func (w *Wheel) OnResolve(fn func(candidate.Candidate)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// Spin starts a spin: it adds ExtraRevolutions full turns plus a uniform
// offset in [0, 360) to the rotation and schedules resolution after SpinDuration.
//
// Postcondition: On success Phase == Animating and the previous winner is
// cleared. Returns ErrInvalidState while already animating and ErrEmptyPool
// when there are no candidates; state is unchanged on error.
func (w *Wheel) Spin() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.Phase == Animating {
		return fmt.Errorf("spin requested while animating: %w", picker.ErrInvalidState)
	}
	if w.set.Len() == 0 {
		return fmt.Errorf("spin %s: %w", w.cfg.Tool, picker.ErrEmptyPool)
	}

	offset := w.src.Float64() * 360
	w.state.Rotation += 360*float64(w.cfg.ExtraRevolutions) + offset
	w.state.Phase = Animating
	w.state.Winner = nil
	w.spinning = w.set.List()

	w.gen++
	gen := w.gen
	w.timer = w.sched.AfterFunc(w.cfg.SpinDuration, func() { w.resolve(gen) })

	w.logger.Debug("spin started",
		zap.Float64("offset", offset),
		zap.Float64("rotation", w.state.Rotation),
		zap.Int("candidates", len(w.spinning)),
	)
	return nil
}

func (w *Wheel) resolve(gen uint64) {
	w.mu.Lock()
	if gen != w.gen || w.state.Phase != Animating {
		w.mu.Unlock()
		return
	}
	idx := wheel.WinningIndex(w.state.Rotation, len(w.spinning))
	winner := w.spinning[idx]
	w.state.Phase = Resolved
	w.state.Winner = &winner
	w.timer = nil
	w.spinning = nil
	w.ledger.Record(winner.Label)
	rotation := w.state.Rotation
	listeners := slices.Clone(w.listeners)
	w.mu.Unlock()

	w.logger.Info("spin resolved",
		zap.String("winner", winner.Label),
		zap.Int("index", idx),
		zap.Float64("rotation", rotation),
		zap.Float64("resting_angle", wheel.RestingAngle(rotation)),
	)
	for _, fn := range listeners {
		fn(winner)
	}
}

// Reset cancels any pending spin, zeroes the rotation and clears the winner.
//
// Postcondition: Phase == Idle; Rotation == 0; Winner == nil; no callback from
// an earlier spin will mutate state.
func (w *Wheel) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelLocked()
	w.state = SpinState{}
	w.spinning = nil
}

// Close cancels any pending spin without otherwise touching state. Call it
// when the owning session ends.
func (w *Wheel) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelLocked()
	if w.state.Phase == Animating {
		w.state.Phase = Idle
	}
}

func (w *Wheel) cancelLocked() {
	w.gen++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// State returns a snapshot of the engine.
func (w *Wheel) State() SpinState {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.state
	if s.Winner != nil {
		c := *s.Winner
		s.Winner = &c
	}
	return s
}

// ResultText returns the resolved winner's label, or false before resolution.
func (w *Wheel) ResultText() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Winner == nil {
		return "", false
	}
	return w.state.Winner.Label, true
}

// History returns the engine's ledger.
func (w *Wheel) History() *history.Ledger[string] { return w.ledger }

// Candidates returns the current candidates in display order.
func (w *Wheel) Candidates() []candidate.Candidate {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.set.List()
}

// Segments returns the wheel layout for the current candidates.
func (w *Wheel) Segments() []wheel.Segment {
	return wheel.Layout(w.Candidates())
}

// Fixed reports whether the candidate list is a fixed roster.
func (w *Wheel) Fixed() bool { return w.set.Fixed() }

// Add appends a candidate. Rejected with ErrInvalidState while animating.
func (w *Wheel) Add(label string) (candidate.Candidate, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.mutableLocked(); err != nil {
		return candidate.Candidate{}, err
	}
	return w.set.Add(label)
}

// Edit relabels a candidate. Rejected with ErrInvalidState while animating.
func (w *Wheel) Edit(id, label string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.mutableLocked(); err != nil {
		return err
	}
	return w.set.Edit(id, label)
}

// Remove deletes a candidate. Rejected with ErrInvalidState while animating.
func (w *Wheel) Remove(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.mutableLocked(); err != nil {
		return err
	}
	return w.set.Remove(id)
}

func (w *Wheel) mutableLocked() error {
	if w.state.Phase == Animating {
		return fmt.Errorf("candidates locked while animating: %w", picker.ErrInvalidState)
	}
	return nil
}
