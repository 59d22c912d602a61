package sink

import (
	"encoding/base64"
	"io"

	"go.uber.org/zap"
)

// OSC52 returns the terminal escape that asks the client to place text on its
// system clipboard.
func OSC52(text string) string {
	return "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\a"
}

// Clipboard copies raw results to the client terminal's clipboard.
type Clipboard struct {
	w      io.Writer
	logger *zap.Logger
}

// NewClipboard creates a Clipboard writing escapes to w.
//
// Precondition: w and logger must be non-nil.
func NewClipboard(w io.Writer, logger *zap.Logger) *Clipboard {
	return &Clipboard{w: w, logger: logger}
}

// Deliver copies r's result verbatim, with no prefix.
//
// Postcondition: Returns false when there is no result or the write failed.
func (c *Clipboard) Deliver(r Resulter) bool {
	value, ok := r.ResultText()
	if !ok {
		return false
	}
	if _, err := io.WriteString(c.w, OSC52(value)); err != nil {
		c.logger.Warn("clipboard write failed", zap.Error(err))
		return false
	}
	return true
}
