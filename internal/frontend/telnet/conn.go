package telnet

import (
	"bufio"
	"net"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Telnet command and option bytes (RFC 854, RFC 857, RFC 858, RFC 1184).
const (
	SE   byte = 240
	NOP  byte = 241
	GA   byte = 249
	SB   byte = 250
	WILL byte = 251
	WONT byte = 252
	DO   byte = 253
	DONT byte = 254
	IAC  byte = 255

	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptLinemode        byte = 34
)

const (
	backspace = 0x08
	del       = 0x7f
)

// decodeState tracks where a decoder is inside a Telnet command sequence.
type decodeState int

const (
	stateData decodeState = iota
	stateCommand
	stateOption
	stateSub
	stateSubCommand
)

// decoder strips Telnet command sequences from a byte stream one byte at a
// time, so a sequence split across reads is still removed.
type decoder struct {
	state decodeState
}

// feed consumes b and reports the data byte it yields, if any.
func (d *decoder) feed(b byte) (byte, bool) {
	switch d.state {
	case stateCommand:
		switch b {
		case IAC:
			d.state = stateData
			return IAC, true
		case WILL, WONT, DO, DONT:
			d.state = stateOption
		case SB:
			d.state = stateSub
		default:
			d.state = stateData
		}
	case stateOption:
		d.state = stateData
	case stateSub:
		if b == IAC {
			d.state = stateSubCommand
		}
	case stateSubCommand:
		if b == SE {
			d.state = stateData
		} else {
			d.state = stateSub
		}
	default:
		if b == IAC {
			d.state = stateCommand
			return 0, false
		}
		return b, true
	}
	return 0, false
}

// FilterIAC removes Telnet command sequences from input. An escaped IAC IAC
// pair yields a single 0xFF.
//
// Postcondition: Returns only the data bytes of input, in order.
func FilterIAC(input []byte) []byte {
	var d decoder
	out := make([]byte, 0, len(input))
	for _, b := range input {
		if v, ok := d.feed(b); ok {
			out = append(out, v)
		}
	}
	return out
}

// Conn is one client's Telnet connection. Reads are line oriented with
// command sequences stripped; writes are serialized so timer-driven output
// never interleaves with command replies.
type Conn struct {
	id  string
	raw net.Conn
	in  *bufio.Reader
	dec decoder

	wmu          sync.Mutex
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps raw and assigns it a fresh session ID.
//
// Precondition: raw must be an open connection.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		id:           uuid.NewString(),
		raw:          raw,
		in:           bufio.NewReader(raw),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// ID returns the session ID.
func (c *Conn) ID() string { return c.id }

// RemoteAddr returns the client's address.
func (c *Conn) RemoteAddr() net.Addr { return c.raw.RemoteAddr() }

// Close closes the connection. Safe to call from any goroutine.
func (c *Conn) Close() error { return c.raw.Close() }

// Negotiate offers to suppress go-ahead so clients send whole lines without
// waiting for GA.
func (c *Conn) Negotiate() error {
	_, err := c.Write([]byte{IAC, WILL, OptSuppressGoAhead})
	return err
}

// ReadLine returns the next line of input without its terminator. CR, LF and
// CRLF all end a line; backspace and DEL erase the previous character; other
// control bytes except tab are dropped.
//
// Postcondition: On error the partial line read so far is returned with it.
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
	line := make([]byte, 0, 64)
	for {
		raw, err := c.in.ReadByte()
		if err != nil {
			return string(line), err
		}
		b, ok := c.dec.feed(raw)
		if !ok {
			continue
		}
		switch {
		case b == '\n':
			return string(line), nil
		case b == '\r':
			if next, err := c.in.Peek(1); err == nil && next[0] == '\n' {
				_, _ = c.in.ReadByte()
			}
			return string(line), nil
		case b == backspace || b == del:
			_, size := utf8.DecodeLastRune(line)
			line = line[:len(line)-size]
		case b < ' ' && b != '\t':
		default:
			line = append(line, b)
		}
	}
}

// Write sends p as is. Conn therefore satisfies io.Writer.
func (c *Conn) Write(p []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.raw.Write(p)
}

// WriteString sends s as is.
func (c *Conn) WriteString(s string) error {
	_, err := c.Write([]byte(s))
	return err
}

// WriteLine sends text followed by CRLF.
func (c *Conn) WriteLine(text string) error {
	return c.WriteString(text + "\r\n")
}

// WritePrompt sends prompt without a line terminator.
func (c *Conn) WritePrompt(prompt string) error {
	return c.WriteString(prompt)
}

// WriteTransient overwrites the current terminal line with text and leaves
// the cursor there, so the next transient write replaces it.
func (c *Conn) WriteTransient(text string) error {
	return c.WriteString("\r" + EraseLine + text)
}

// Bell rings the terminal bell.
func (c *Conn) Bell() error {
	return c.WriteString("\a")
}
