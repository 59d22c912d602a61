package pool

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// LetterFilter is the configuration record for the random-letter tool.
//
// Both case flags may be off; the pool is then empty and selection refuses to start.
type LetterFilter struct {
	IncludeUpper bool
	IncludeLower bool
	Exclude      string // any characters; matched case-insensitively
}

// DefaultLetterFilter returns upper-case letters only with no exclusions.
func DefaultLetterFilter() LetterFilter {
	return LetterFilter{IncludeUpper: true}
}

// Letters returns the effective pool for f: A-Z when IncludeUpper, followed by
// a-z when IncludeLower, minus every letter whose upper-case form appears in
// the upper-cased Exclude string.
func Letters(f LetterFilter) []string {
	upper := cases.Upper(language.Und)
	excluded := upper.String(f.Exclude)

	var candidates string
	if f.IncludeUpper {
		candidates += alphabet
	}
	if f.IncludeLower {
		candidates += strings.ToLower(alphabet)
	}

	out := make([]string, 0, len(candidates))
	for _, r := range candidates {
		l := string(r)
		if strings.Contains(excluded, upper.String(l)) {
			continue
		}
		out = append(out, l)
	}
	return out
}
