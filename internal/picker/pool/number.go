// Package pool derives effective candidate pools for the number and letter
// tools from closed filter records.
package pool

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/randpick/internal/picker"
)

// MaxSpan bounds the number of values a number range may cover.
const MaxSpan = 1_000_000

// QuickRanges are the preset upper bounds offered alongside the range editor.
var QuickRanges = []int{10, 50, 100}

// Parity restricts numbers to even or odd values.
type Parity int

const (
	ParityAny Parity = iota
	ParityEven
	ParityOdd
)

// String returns the parity name.
func (p Parity) String() string {
	switch p {
	case ParityEven:
		return "even"
	case ParityOdd:
		return "odd"
	default:
		return "any"
	}
}

// NumberFilter is the configuration record for the random-number tool.
//
// Invariant (after Validate succeeds): 0 <= Min < Max and Max-Min+1 <= MaxSpan.
type NumberFilter struct {
	Min     int
	Max     int
	Exclude string // comma-separated integers, free text
	Parity  Parity
}

// DefaultNumberFilter returns the 1..100 range with no exclusions.
func DefaultNumberFilter() NumberFilter {
	return NumberFilter{Min: 1, Max: 100}
}

// Validate checks the range invariant.
func (f NumberFilter) Validate() error {
	switch {
	case f.Min < 0:
		return fmt.Errorf("min %d must not be negative: %w", f.Min, picker.ErrValidation)
	case f.Min >= f.Max:
		return fmt.Errorf("min %d must be below max %d: %w", f.Min, f.Max, picker.ErrValidation)
	case f.Max-f.Min+1 > MaxSpan:
		return fmt.Errorf("range %d-%d exceeds %d values: %w", f.Min, f.Max, MaxSpan, picker.ErrValidation)
	case f.Parity < ParityAny || f.Parity > ParityOdd:
		return fmt.Errorf("unknown parity %d: %w", f.Parity, picker.ErrValidation)
	}
	return nil
}

// Numbers returns the effective pool for f: every integer in [Min, Max] that is
// not excluded and matches the parity constraint, ascending. The result is
// empty when nothing survives or when the range is inverted or wider than MaxSpan.
func Numbers(f NumberFilter) []int {
	if f.Max < f.Min || f.Max-f.Min+1 > MaxSpan {
		return nil
	}
	excluded := ParseExcludedNumbers(f.Exclude)
	out := make([]int, 0, f.Max-f.Min+1)
	for n := f.Min; n <= f.Max; n++ {
		if _, ok := excluded[n]; ok {
			continue
		}
		if !f.Parity.admits(n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (p Parity) admits(n int) bool {
	switch p {
	case ParityEven:
		return n%2 == 0
	case ParityOdd:
		return n%2 != 0
	default:
		return true
	}
}

// ParseExcludedNumbers splits a comma-separated list into a set. Tokens are
// trimmed; tokens that are not integers are ignored.
func ParseExcludedNumbers(s string) map[int]struct{} {
	out := make(map[int]struct{})
	for _, tok := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			continue
		}
		out[n] = struct{}{}
	}
	return out
}

// IncrementMin raises Min by one unless that would reach Max.
func (f *NumberFilter) IncrementMin() error { return f.stepMin(1) }

// DecrementMin lowers Min by one unless that would go below zero.
func (f *NumberFilter) DecrementMin() error { return f.stepMin(-1) }

// IncrementMax raises Max by one unless that would exceed MaxSpan.
func (f *NumberFilter) IncrementMax() error { return f.stepMax(1) }

// DecrementMax lowers Max by one unless that would reach Min.
func (f *NumberFilter) DecrementMax() error { return f.stepMax(-1) }

func (f *NumberFilter) stepMin(delta int) error {
	v := f.Min + delta
	if v < 0 {
		return fmt.Errorf("min %d must not be negative: %w", v, picker.ErrValidation)
	}
	if v >= f.Max {
		return fmt.Errorf("min %d must be below max %d: %w", v, f.Max, picker.ErrValidation)
	}
	if f.Max-v+1 > MaxSpan {
		return fmt.Errorf("range %d-%d exceeds %d values: %w", v, f.Max, MaxSpan, picker.ErrValidation)
	}
	f.Min = v
	return nil
}

func (f *NumberFilter) stepMax(delta int) error {
	v := f.Max + delta
	if v <= f.Min {
		return fmt.Errorf("max %d must be above min %d: %w", v, f.Min, picker.ErrValidation)
	}
	if v-f.Min+1 > MaxSpan {
		return fmt.Errorf("range %d-%d exceeds %d values: %w", f.Min, v, MaxSpan, picker.ErrValidation)
	}
	f.Max = v
	return nil
}

// SetMin commits a typed lower bound. A value at or above Max is pulled down to
// Max-1 so the ordering holds.
//
// Postcondition: On success Validate() == nil; on error f is unchanged.
func (f *NumberFilter) SetMin(v int) error {
	if v < 0 {
		return fmt.Errorf("min %d must not be negative: %w", v, picker.ErrValidation)
	}
	if v >= f.Max {
		v = f.Max - 1
	}
	if f.Max-v+1 > MaxSpan {
		return fmt.Errorf("range %d-%d exceeds %d values: %w", v, f.Max, MaxSpan, picker.ErrValidation)
	}
	f.Min = v
	return nil
}

// SetMax commits a typed upper bound. A value at or below Min is pushed up to
// Min+1 so the ordering holds.
//
// Postcondition: On success Validate() == nil; on error f is unchanged.
func (f *NumberFilter) SetMax(v int) error {
	if v <= f.Min {
		v = f.Min + 1
	}
	if v-f.Min+1 > MaxSpan {
		return fmt.Errorf("range %d-%d exceeds %d values: %w", f.Min, v, MaxSpan, picker.ErrValidation)
	}
	f.Max = v
	return nil
}

// QuickRange sets Max to one of the QuickRanges presets. Min is left alone, so
// a preset at or below Min is rejected.
func (f *NumberFilter) QuickRange(upper int) error {
	known := false
	for _, q := range QuickRanges {
		if q == upper {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("quick range %d not offered: %w", upper, picker.ErrValidation)
	}
	if upper <= f.Min {
		return fmt.Errorf("max %d must be above min %d: %w", upper, f.Min, picker.ErrValidation)
	}
	f.Max = upper
	return nil
}

// ToggleEven switches the even-only constraint. Enabling it while odd-only is
// active is rejected.
func (f *NumberFilter) ToggleEven() error { return f.toggle(ParityEven, ParityOdd) }

// ToggleOdd switches the odd-only constraint. Enabling it while even-only is
// active is rejected.
func (f *NumberFilter) ToggleOdd() error { return f.toggle(ParityOdd, ParityEven) }

func (f *NumberFilter) toggle(want, other Parity) error {
	switch f.Parity {
	case want:
		f.Parity = ParityAny
	case other:
		return fmt.Errorf("only-%s is active; disable it before enabling only-%s: %w", other, want, picker.ErrValidation)
	default:
		f.Parity = want
	}
	return nil
}
