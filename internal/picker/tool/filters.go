package tool

import (
	"fmt"
	"sync"

	"github.com/cory-johannsen/randpick/internal/picker"
	"github.com/cory-johannsen/randpick/internal/picker/engine"
	"github.com/cory-johannsen/randpick/internal/picker/pool"
)

// NumberTool pairs a number filter with the tick engine that draws from it.
type NumberTool struct {
	*engine.Ticker[int]

	mu     sync.Mutex
	filter pool.NumberFilter
}

// Filter returns a copy of the current filter.
func (n *NumberTool) Filter() pool.NumberFilter {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.filter
}

// Pool returns the effective pool for the current filter.
func (n *NumberTool) Pool() []int {
	return pool.Numbers(n.Filter())
}

// Update applies fn to a copy of the filter and commits it when fn succeeds.
//
// Postcondition: Returns ErrInvalidState while a roll is animating; the filter
// is unchanged whenever an error is returned.
func (n *NumberTool) Update(fn func(f *pool.NumberFilter) error) error {
	if n.Animating() {
		return fmt.Errorf("filters locked while animating: %w", picker.ErrInvalidState)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	f := n.filter
	if err := fn(&f); err != nil {
		return err
	}
	n.filter = f
	return nil
}

// SetExclude replaces the exclusion list.
func (n *NumberTool) SetExclude(s string) error {
	return n.Update(func(f *pool.NumberFilter) error {
		f.Exclude = s
		return nil
	})
}

// LetterTool pairs a letter filter with the tick engine that draws from it.
type LetterTool struct {
	*engine.Ticker[string]

	mu     sync.Mutex
	filter pool.LetterFilter
}

// Filter returns a copy of the current filter.
func (l *LetterTool) Filter() pool.LetterFilter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter
}

// Pool returns the effective pool for the current filter.
func (l *LetterTool) Pool() []string {
	return pool.Letters(l.Filter())
}

// Update applies fn to the filter. It has the same locking contract as
// NumberTool.Update.
func (l *LetterTool) Update(fn func(f *pool.LetterFilter)) error {
	if l.Animating() {
		return fmt.Errorf("filters locked while animating: %w", picker.ErrInvalidState)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(&l.filter)
	return nil
}

// ToggleUpper flips inclusion of A-Z and returns the new value.
func (l *LetterTool) ToggleUpper() (bool, error) {
	var on bool
	err := l.Update(func(f *pool.LetterFilter) {
		f.IncludeUpper = !f.IncludeUpper
		on = f.IncludeUpper
	})
	return on, err
}

// ToggleLower flips inclusion of a-z and returns the new value.
func (l *LetterTool) ToggleLower() (bool, error) {
	var on bool
	err := l.Update(func(f *pool.LetterFilter) {
		f.IncludeLower = !f.IncludeLower
		on = f.IncludeLower
	})
	return on, err
}

// SetExclude replaces the excluded characters.
func (l *LetterTool) SetExclude(s string) error {
	return l.Update(func(f *pool.LetterFilter) { f.Exclude = s })
}
