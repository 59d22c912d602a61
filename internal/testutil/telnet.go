// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"bytes"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"github.com/cory-johannsen/randpick/internal/frontend/telnet"
)

// DefaultWait bounds every Command read.
const DefaultWait = 5 * time.Second

// TelnetClient drives a picker session from a test. Bytes read past a match
// are kept for the next read, so consecutive reads never lose output.
type TelnetClient struct {
	t       *testing.T
	conn    net.Conn
	pending []byte
}

// NewTelnetClient dials addr and closes the connection when the test ends.
//
// Postcondition: Returns a connected client or fails the test.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, DefaultWait)
	if err != nil {
		t.Fatalf("dialing %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &TelnetClient{t: t, conn: conn}
}

// ReadUntil returns raw output up to and including the first occurrence of
// want, failing the test if it does not arrive within timeout. want is
// matched against the raw stream, escapes included.
func (c *TelnetClient) ReadUntil(want string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	buf := make([]byte, 4096)
	for {
		if i := bytes.Index(c.pending, []byte(want)); i >= 0 {
			end := i + len(want)
			out := string(c.pending[:end])
			c.pending = append(c.pending[:0:0], c.pending[end:]...)
			return out
		}
		n, err := c.conn.Read(buf)
		c.pending = append(c.pending, buf[:n]...)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				c.t.Fatalf("timed out waiting for %q; have %q", want, Plain(string(c.pending)))
			}
			c.t.Fatalf("waiting for %q: %v; have %q", want, err, Plain(string(c.pending)))
		}
	}
}

// Send writes text and a CRLF.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(DefaultWait))
	if _, err := c.conn.Write([]byte(text + "\r\n")); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Command sends text and returns the plain output up to and including want.
func (c *TelnetClient) Command(text, want string) string {
	c.t.Helper()
	c.Send(text)
	return Plain(c.ReadUntil(want, DefaultWait))
}

// Close closes the connection early.
func (c *TelnetClient) Close() {
	_ = c.conn.Close()
}

// Plain removes Telnet negotiation and ANSI styling from session output.
func Plain(raw string) string {
	return telnet.StripANSI(string(telnet.FilterIAC([]byte(raw))))
}
