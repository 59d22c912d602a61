// Package tool assembles the four selection tools a session works with. Every
// Kit is independent: no state is shared between kits.
package tool

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/randpick/internal/config"
	"github.com/cory-johannsen/randpick/internal/picker/candidate"
	"github.com/cory-johannsen/randpick/internal/picker/engine"
	"github.com/cory-johannsen/randpick/internal/picker/history"
	"github.com/cory-johannsen/randpick/internal/picker/pool"
	"github.com/cory-johannsen/randpick/internal/picker/rng"
	"github.com/cory-johannsen/randpick/internal/picker/sink"
)

// Tool names.
const (
	Wheel  = "wheel"
	Team   = "team"
	Number = "number"
	Letter = "letter"
)

// Names lists the tools in menu order.
var Names = []string{Wheel, Team, Number, Letter}

// Options carries the collaborators a Kit is built from.
type Options struct {
	Config config.PickerConfig
	// Roster backs the team tool; nil selects the built-in roster.
	Roster    *candidate.Roster
	Source    rng.Source
	Scheduler engine.Scheduler
	// Notifier receives tick notifications from the number and letter tools. May be nil.
	Notifier engine.Notifier
}

// Kit holds one instance of each tool.
type Kit struct {
	Wheel  *engine.Wheel
	Team   *engine.Wheel
	Number *NumberTool
	Letter *LetterTool
	// TeamTitle is the roster's display title.
	TeamTitle string
}

// New builds a Kit.
//
// Precondition: opts.Source, opts.Scheduler and logger must be non-nil;
// opts.Config must pass config validation.
// Postcondition: Returns a Kit whose tools are all Idle, or a non-nil error
// when the default wheel items are invalid.
func New(opts Options, logger *zap.Logger) (*Kit, error) {
	cfg := opts.Config
	items, err := candidate.NewSet(cfg.WheelMinItems, cfg.WheelMaxItems, cfg.DefaultItems...)
	if err != nil {
		return nil, fmt.Errorf("default wheel items: %w", err)
	}
	roster := opts.Roster
	if roster == nil {
		roster = candidate.DefaultRoster()
	}

	spin := func(name string) engine.WheelConfig {
		return engine.WheelConfig{
			Tool:             name,
			SpinDuration:     cfg.SpinDuration,
			ExtraRevolutions: cfg.ExtraRevolutions,
		}
	}
	tick := func(name string) engine.TickConfig {
		return engine.TickConfig{
			Tool:     name,
			Ticks:    cfg.TickCount,
			Interval: cfg.TickInterval,
			Sound:    true,
		}
	}

	k := &Kit{
		Wheel: engine.NewWheel(spin(Wheel), items, opts.Source, opts.Scheduler,
			history.NewLedger[string](0), logger),
		Team: engine.NewWheel(spin(Team), roster.Set(), opts.Source, opts.Scheduler,
			history.NewLedger[string](0), logger),
		Number:    &NumberTool{filter: pool.DefaultNumberFilter()},
		Letter:    &LetterTool{filter: pool.DefaultLetterFilter()},
		TeamTitle: roster.Title,
	}
	k.Number.Ticker = engine.NewTicker(tick(Number), k.Number.Pool, opts.Source, opts.Scheduler,
		history.NewLedger[int](cfg.NumberHistoryCap), opts.Notifier, logger)
	k.Letter.Ticker = engine.NewTicker(tick(Letter), k.Letter.Pool, opts.Source, opts.Scheduler,
		history.NewLedger[string](cfg.NumberHistoryCap), opts.Notifier, logger)
	return k, nil
}

// Resulter returns the engine behind name for the result sinks.
//
// Postcondition: Returns false for an unknown name.
func (k *Kit) Resulter(name string) (sink.Resulter, bool) {
	switch name {
	case Wheel:
		return k.Wheel, true
	case Team:
		return k.Team, true
	case Number:
		return k.Number, true
	case Letter:
		return k.Letter, true
	}
	return nil, false
}

// Close cancels every pending animation. The Kit must not be used afterwards.
func (k *Kit) Close() {
	k.Wheel.Close()
	k.Team.Close()
	k.Number.Close()
	k.Letter.Close()
}

// NewSource returns the randomness source selected by cfg: a seeded PCG when
// cfg.Seed is non-zero, otherwise crypto/rand. Draws are logged at debug.
func NewSource(cfg config.PickerConfig, logger *zap.Logger) rng.Source {
	var src rng.Source
	if cfg.Seed != 0 {
		src = rng.NewSeededSource(cfg.Seed)
	} else {
		src = rng.NewCryptoSource()
	}
	return rng.NewLoggedSource(src, logger)
}

// LoadRoster reads cfg.RosterFile, or returns the built-in roster when unset.
func LoadRoster(cfg config.PickerConfig) (*candidate.Roster, error) {
	if cfg.RosterFile == "" {
		return candidate.DefaultRoster(), nil
	}
	r, err := candidate.LoadRoster(cfg.RosterFile)
	if err != nil {
		return nil, fmt.Errorf("loading team roster: %w", err)
	}
	return r, nil
}
