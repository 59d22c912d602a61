package wheel

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	"github.com/cory-johannsen/randpick/internal/picker/candidate"
)

// WedgePath returns the SVG path data for a segment: a line from the center to
// the start of the arc, the arc itself, and back.
func WedgePath(s Segment) string {
	sx := Radius + Radius*math.Cos(s.StartAngle)
	sy := Radius + Radius*math.Sin(s.StartAngle)
	ex := Radius + Radius*math.Cos(s.EndAngle)
	ey := Radius + Radius*math.Sin(s.EndAngle)
	large := 0
	if s.Arc() > math.Pi {
		large = 1
	}
	return fmt.Sprintf("M %g %g L %.4f %.4f A %g %g 0 %d 1 %.4f %.4f Z",
		Radius, Radius, sx, sy, Radius, Radius, large, ex, ey)
}

// RenderSVG writes a standalone SVG document of the wheel turned clockwise by
// rotation degrees. Labels are upper-cased and HTML-escaped.
func RenderSVG(w io.Writer, cands []candidate.Candidate, rotation float64) error {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %g %g">`+"\n", ViewBox, ViewBox)
	fmt.Fprintf(&b, `  <g transform="rotate(%.4f, %g, %g)">`+"\n", RestingAngle(rotation), Radius, Radius)
	for _, s := range Layout(cands) {
		fmt.Fprintf(&b, `    <path d="%s" fill="%s"/>`+"\n", WedgePath(s), html.EscapeString(s.Color))
		fmt.Fprintf(&b,
			`    <text x="%.4f" y="%.4f" fill="#000000" font-size="4" font-weight="bold" text-anchor="middle" dominant-baseline="middle" transform="rotate(%.4f, %.4f, %.4f)">%s</text>`+"\n",
			s.LabelX, s.LabelY, s.LabelRotation, s.LabelX, s.LabelY, html.EscapeString(strings.ToUpper(s.Label)))
	}
	b.WriteString("  </g>\n")
	fmt.Fprintf(&b, `  <polygon points="%g,0 %g,0 %g,8" fill="#E63946"/>`+"\n", Radius-3, Radius+3, Radius)
	b.WriteString("</svg>\n")
	_, err := io.WriteString(w, b.String())
	return err
}
