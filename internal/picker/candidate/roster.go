package candidate

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed rosters/nfl.yaml
var defaultRoster []byte

// DefaultRoster returns the built-in 32-team NFL roster.
//
// Postcondition: Returns a fresh Roster on every call.
func DefaultRoster() *Roster {
	r, err := ParseRoster(defaultRoster)
	if err != nil {
		panic(fmt.Sprintf("built-in roster: %v", err))
	}
	return r
}

// Roster is a named, fixed list of candidates loaded from YAML.
type Roster struct {
	Name       string      `yaml:"name"`
	Title      string      `yaml:"title"`
	Candidates []Candidate `yaml:"candidates"`
}

// LoadRoster reads and parses the roster file at path.
//
// Precondition: path must name a readable YAML file.
// Postcondition: Returns a Roster with at least one candidate, each with a
// non-empty label, or a non-nil error.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseRoster(data)
}

// ParseRoster parses roster YAML.
//
// Postcondition: Returns a Roster with at least one labelled candidate or a non-nil error.
func ParseRoster(data []byte) (*Roster, error) {
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing roster: %w", err)
	}
	if r.Name == "" {
		return nil, fmt.Errorf("roster name must not be empty")
	}
	if len(r.Candidates) == 0 {
		return nil, fmt.Errorf("roster %q has no candidates", r.Name)
	}
	for i, c := range r.Candidates {
		if c.Label == "" {
			return nil, fmt.Errorf("roster %q candidate %d has an empty label", r.Name, i)
		}
	}
	return &r, nil
}

// Set returns a fixed Set over the roster's candidates.
func (r *Roster) Set() *Set {
	return NewRoster(r.Candidates)
}
