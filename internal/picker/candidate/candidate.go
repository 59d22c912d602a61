// Package candidate maintains the ordered list of selectable outcomes for the
// wheel-style tools.
package candidate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"

	"github.com/cory-johannsen/randpick/internal/picker"
)

// MaxLabelWidth is the widest label, in terminal display cells, a wheel item may carry.
const MaxLabelWidth = 20

// Palette is the fixed fill-color cycle for user-added candidates.
var Palette = []string{
	"#F4A261", "#2A9D8F", "#E9C46A", "#264653",
	"#E76F51", "#219EBC", "#8ECAE6", "#023047",
}

// Candidate is one selectable outcome.
type Candidate struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
	Color string `yaml:"color"`
}

// Set is an ordered, bounded list of candidates.
//
// Invariant: MinItems <= Len() <= MaxItems for mutable sets.
// A Set is not safe for concurrent use; the owning engine serializes access.
type Set struct {
	items    []Candidate
	minItems int
	maxItems int
	fixed    bool
}

// NewSet builds a mutable set seeded with labels.
//
// Precondition: 0 < minItems <= maxItems.
// Postcondition: Returns a Set holding every label in order, or ErrValidation
// when a label is invalid or the count falls outside [minItems, maxItems].
func NewSet(minItems, maxItems int, labels ...string) (*Set, error) {
	if minItems <= 0 || minItems > maxItems {
		return nil, fmt.Errorf("bounds [%d, %d]: %w", minItems, maxItems, picker.ErrValidation)
	}
	s := &Set{minItems: minItems, maxItems: maxItems}
	for _, l := range labels {
		if _, err := s.Add(l); err != nil {
			return nil, err
		}
	}
	if len(s.items) < minItems {
		return nil, fmt.Errorf("set needs at least %d items, got %d: %w", minItems, len(s.items), picker.ErrValidation)
	}
	return s, nil
}

// NewRoster builds a fixed set from pre-colored candidates. Every mutation on
// the returned set fails with ErrValidation.
//
// Precondition: len(items) >= 1.
func NewRoster(items []Candidate) *Set {
	cp := make([]Candidate, len(items))
	copy(cp, items)
	for i := range cp {
		if cp[i].ID == "" {
			cp[i].ID = uuid.New().String()
		}
	}
	return &Set{items: cp, minItems: len(cp), maxItems: len(cp), fixed: true}
}

// Fixed reports whether the set rejects mutation.
func (s *Set) Fixed() bool { return s.fixed }

// Len returns the number of candidates.
func (s *Set) Len() int { return len(s.items) }

// MaxItems returns the capacity of the set.
func (s *Set) MaxItems() int { return s.maxItems }

// List returns a copy of the candidates in display order.
func (s *Set) List() []Candidate {
	out := make([]Candidate, len(s.items))
	copy(out, s.items)
	return out
}

// Add appends a candidate labelled label, colored palette[Len() mod len(Palette)].
//
// Postcondition: Returns the new Candidate, or ErrValidation when the set is
// fixed, full, or the trimmed label is empty or too wide. On error the set is unchanged.
func (s *Set) Add(label string) (Candidate, error) {
	if s.fixed {
		return Candidate{}, fmt.Errorf("roster is fixed: %w", picker.ErrValidation)
	}
	if len(s.items) >= s.maxItems {
		return Candidate{}, fmt.Errorf("at capacity (%d items): %w", s.maxItems, picker.ErrValidation)
	}
	label, err := normalizeLabel(label)
	if err != nil {
		return Candidate{}, err
	}
	c := Candidate{
		ID:    uuid.New().String(),
		Label: label,
		Color: Palette[len(s.items)%len(Palette)],
	}
	s.items = append(s.items, c)
	return c, nil
}

// Edit replaces the label of the candidate with the given id. The color is kept.
//
// Postcondition: Returns ErrNotFound if id is absent, ErrValidation if label is
// empty after trimming; the set is unchanged on error.
func (s *Set) Edit(id, label string) error {
	if s.fixed {
		return fmt.Errorf("roster is fixed: %w", picker.ErrValidation)
	}
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("candidate %q: %w", id, picker.ErrNotFound)
	}
	label, err := normalizeLabel(label)
	if err != nil {
		return err
	}
	s.items[i].Label = label
	return nil
}

// Remove deletes the candidate with the given id.
//
// Postcondition: Returns ErrValidation when removal would leave fewer than the
// minimum, ErrNotFound if id is absent; the set is unchanged on error.
func (s *Set) Remove(id string) error {
	if s.fixed {
		return fmt.Errorf("roster is fixed: %w", picker.ErrValidation)
	}
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("candidate %q: %w", id, picker.ErrNotFound)
	}
	if len(s.items) <= s.minItems {
		return fmt.Errorf("at least %d items required: %w", s.minItems, picker.ErrValidation)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *Set) indexOf(id string) int {
	for i, c := range s.items {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func normalizeLabel(label string) (string, error) {
	if !utf8.ValidString(label) {
		return "", fmt.Errorf("label %q is not valid UTF-8: %w", label, picker.ErrValidation)
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return "", fmt.Errorf("label must not be empty: %w", picker.ErrValidation)
	}
	if w := runewidth.StringWidth(label); w > MaxLabelWidth {
		return "", fmt.Errorf("label %q is %d cells wide, max %d: %w", label, w, MaxLabelWidth, picker.ErrValidation)
	}
	return label, nil
}
