package telnet

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFilterIAC(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  []byte
	}{
		{"plain text", []byte("spin"), []byte("spin")},
		{"will", []byte{IAC, WILL, OptEcho, 'h', 'i'}, []byte("hi")},
		{"wont", []byte{IAC, WONT, OptSuppressGoAhead, 'o', 'k'}, []byte("ok")},
		{"do mid-stream", []byte{'a', IAC, DO, OptLinemode, 'b'}, []byte("ab")},
		{"dont only", []byte{IAC, DONT, OptEcho}, []byte{}},
		{"subnegotiation", []byte{IAC, SB, 24, 0, 'x', 't', 'e', 'r', 'm', IAC, SE, 'z'}, []byte("z")},
		{"escaped IAC inside subnegotiation", []byte{IAC, SB, 24, IAC, IAC, 1, IAC, SE, 'q'}, []byte("q")},
		{"escaped IAC", []byte{'a', IAC, IAC, 'b'}, []byte{'a', IAC, 'b'}},
		{"nop", []byte{'x', IAC, NOP, 'y'}, []byte("xy")},
		{"truncated command", []byte{'r', 'o', 'l', 'l', IAC}, []byte("roll")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FilterIAC(tc.input))
		})
	}
}

// Property: escaping data and interleaving option negotiations never changes
// what FilterIAC recovers.
func TestPropertyFilterIAC_RecoversEscapedData(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOf(rapid.Byte()).Draw(t, "data")
		var wire []byte
		for i, b := range data {
			if rapid.Bool().Draw(t, "negotiate") {
				verb := rapid.SampledFrom([]byte{WILL, WONT, DO, DONT}).Draw(t, "verb")
				wire = append(wire, IAC, verb, byte(i))
			}
			if b == IAC {
				wire = append(wire, IAC)
			}
			wire = append(wire, b)
		}
		got := FilterIAC(wire)
		if len(data) == 0 {
			assert.Empty(t, got)
			return
		}
		assert.Equal(t, data, got)
	})
}

// Property: output is never longer than input.
func TestPropertyFilterIAC_NeverGrows(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.SliceOf(rapid.Byte()).Draw(t, "input")
		assert.LessOrEqual(t, len(FilterIAC(input)), len(input))
	})
}

// pipeConn returns a Conn on one end of an in-memory pipe and the raw client end.
func pipeConn(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	c := NewConn(server, time.Second, time.Second)
	t.Cleanup(func() {
		_ = client.Close()
		_ = c.Close()
	})
	return c, client
}

func TestConn_ReadLine(t *testing.T) {
	tests := []struct {
		name string
		wire []byte
		want []string
	}{
		{"crlf", []byte("spin\r\n"), []string{"spin"}},
		{"bare lf", []byte("roll\n"), []string{"roll"}},
		{"bare cr", []byte("go\rshow\n"), []string{"go", "show"}},
		{"negotiation stripped", []byte{IAC, DO, OptSuppressGoAhead, 's', 'p', 'i', 'n', '\r', '\n'}, []string{"spin"}},
		{"backspace edits", []byte("rox\bll\r\n"), []string{"roll"}},
		{"delete edits", []byte("spun\x7f\x7fin\r\n"), []string{"spin"}},
		{"delete erases whole rune", []byte("Caf\xc3\xa9\x7fe\r\n"), []string{"Cafe"}},
		{"backspace over wide rune", []byte("\xe6\x97\xa5\xe6\x9c\xac\b\r\n"), []string{"\xe6\x97\xa5"}},
		{"erase on empty line", []byte("\x7f\bok\r\n"), []string{"ok"}},
		{"controls dropped, tab kept", []byte("add\x01\tPizza\r\n"), []string{"add\tPizza"}},
		{"two lines", []byte("min 5\r\nmax 9\r\n"), []string{"min 5", "max 9"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, client := pipeConn(t)
			go func() { _, _ = client.Write(tc.wire) }()
			for _, want := range tc.want {
				line, err := c.ReadLine()
				require.NoError(t, err)
				assert.Equal(t, want, line)
			}
		})
	}
}

func TestConn_ReadLineSplitNegotiation(t *testing.T) {
	c, client := pipeConn(t)
	go func() {
		_, _ = client.Write([]byte{'a', IAC})
		_, _ = client.Write([]byte{WILL})
		_, _ = client.Write([]byte{OptEcho, 'b', '\n'})
	}()
	line, err := c.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "ab", line)
}

func TestConn_ReadLineReturnsPartialOnEOF(t *testing.T) {
	c, client := pipeConn(t)
	go func() {
		_, _ = client.Write([]byte("reset"))
		_ = client.Close()
	}()
	line, err := c.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "reset", line)
}

func TestConn_Writes(t *testing.T) {
	c, client := pipeConn(t)
	want := "Result: 7\r\n" + "> " + "\r" + EraseLine + "42" + "\a"

	got := make(chan string, 1)
	go func() {
		buf := make([]byte, len(want))
		_, err := io.ReadFull(client, buf)
		if err != nil {
			got <- err.Error()
			return
		}
		got <- string(buf)
	}()

	require.NoError(t, c.WriteLine("Result: 7"))
	require.NoError(t, c.WritePrompt("> "))
	require.NoError(t, c.WriteTransient("42"))
	require.NoError(t, c.Bell())
	assert.Equal(t, want, <-got)
}

func TestConn_Negotiate(t *testing.T) {
	c, client := pipeConn(t)
	got := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 3)
		_, _ = io.ReadFull(client, buf)
		got <- buf
	}()
	require.NoError(t, c.Negotiate())
	assert.Equal(t, []byte{IAC, WILL, OptSuppressGoAhead}, <-got)
}

func TestConn_IDsAreUnique(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	assert.NotEqual(t, NewConn(a, 0, 0).ID(), NewConn(b, 0, 0).ID())
}
