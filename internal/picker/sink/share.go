package sink

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Payload is a share request.
type Payload struct {
	Title string
	Text  string
}

// ShareTarget is a platform share capability.
type ShareTarget interface {
	// Available reports whether sharing is possible right now.
	Available() bool
	Share(p Payload) error
}

// Sharer offers results to a ShareTarget.
type Sharer struct {
	target ShareTarget
	logger *zap.Logger
}

// NewSharer creates a Sharer. A nil target is treated as unavailable.
//
// Precondition: logger must be non-nil.
func NewSharer(target ShareTarget, logger *zap.Logger) *Sharer {
	return &Sharer{target: target, logger: logger}
}

// Deliver shares r's current result.
//
// Postcondition: Returns true only when a payload was handed to an available
// target without error. Unavailable targets and missing results are no-ops.
func (s *Sharer) Deliver(tool string, r Resulter) bool {
	if s.target == nil || !s.target.Available() {
		return false
	}
	value, ok := r.ResultText()
	if !ok {
		return false
	}
	tmpl, ok := TemplateFor(tool)
	if !ok {
		s.logger.Warn("share skipped: unknown tool", zap.String("tool", tool))
		return false
	}
	if err := s.target.Share(tmpl.Payload(value)); err != nil {
		s.logger.Warn("share failed", zap.String("tool", tool), zap.Error(err))
		return false
	}
	return true
}

// WriterTarget shares by printing the payload to a writer, such as a session
// connection.
type WriterTarget struct {
	W io.Writer
	// Enabled gates Available.
	Enabled bool
}

// Available implements ShareTarget.
func (t WriterTarget) Available() bool { return t.Enabled && t.W != nil }

// Share implements ShareTarget.
func (t WriterTarget) Share(p Payload) error {
	_, err := fmt.Fprintf(t.W, "%s\r\n%s\r\n", p.Title, p.Text)
	return err
}
