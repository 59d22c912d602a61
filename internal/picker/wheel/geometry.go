// Package wheel maps an ordered candidate list onto a circular wheel and maps a
// resting rotation back to the candidate under the fixed top pointer.
//
// Coordinates use a 100x100 SVG viewbox: center (50, 50), radius 50, y down,
// angles in radians measured clockwise from the positive x axis.
package wheel

import (
	"math"

	"github.com/cory-johannsen/randpick/internal/picker/candidate"
)

const (
	// ViewBox is the side length of the square drawing area.
	ViewBox = 100.0
	// Radius is the wheel radius in viewbox units.
	Radius = ViewBox / 2
	// LabelDistance is how far from the center a label anchor sits: 0.35 of
	// the viewbox side, measured along the segment bisector.
	LabelDistance = 0.35 * ViewBox
)

// Segment is the derived drawing data for one candidate.
type Segment struct {
	CandidateID   string
	Label         string
	Color         string
	StartAngle    float64 // radians
	EndAngle      float64 // radians
	LabelX        float64
	LabelY        float64
	LabelRotation float64 // degrees; radially aligned text
}

// Arc returns the angular size of the segment in radians.
func (s Segment) Arc() float64 { return s.EndAngle - s.StartAngle }

// MidAngle returns the bisecting angle in radians.
func (s Segment) MidAngle() float64 { return (s.StartAngle + s.EndAngle) / 2 }

// Layout computes one segment per candidate, in list order. Segment i spans
// [i·2π/n − π/2, (i+1)·2π/n − π/2], so segment 0 starts at the top.
//
// Postcondition: len(result) == len(cands); arcs sum to 2π; angles increase
// monotonically. Layout is pure: the same input always yields the same output.
func Layout(cands []candidate.Candidate) []Segment {
	n := len(cands)
	if n == 0 {
		return nil
	}
	size := 2 * math.Pi / float64(n)
	out := make([]Segment, n)
	for i, c := range cands {
		start := float64(i)*size - math.Pi/2
		end := float64(i+1)*size - math.Pi/2
		mid := (start + end) / 2
		out[i] = Segment{
			CandidateID:   c.ID,
			Label:         c.Label,
			Color:         c.Color,
			StartAngle:    start,
			EndAngle:      end,
			LabelX:        Radius + LabelDistance*math.Cos(mid),
			LabelY:        Radius + LabelDistance*math.Sin(mid),
			LabelRotation: mid * 180 / math.Pi,
		}
	}
	return out
}

// RestingAngle reduces a cumulative rotation in degrees to [0, 360).
func RestingAngle(rotation float64) float64 {
	a := math.Mod(rotation, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// WinningIndex returns the index of the segment under the top pointer after
// the wheel has turned clockwise by rotation degrees:
//
//	(n − 1 − floor(RestingAngle(rotation) / (360/n))) mod n
//
// Precondition: n > 0.
// Postcondition: 0 <= result < n.
func WinningIndex(rotation float64, n int) int {
	if n <= 0 {
		panic("wheel: WinningIndex called with n <= 0")
	}
	width := 360 / float64(n)
	k := int(math.Floor(RestingAngle(rotation) / width))
	return ((n-1-k)%n + n) % n
}
