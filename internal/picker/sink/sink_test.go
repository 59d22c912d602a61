package sink_test

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/randpick/internal/picker/sink"
)

type staticResult struct {
	value string
	ok    bool
}

func (s staticResult) ResultText() (string, bool) { return s.value, s.ok }

func TestDownloader_PerToolContent(t *testing.T) {
	cases := map[string]string{
		"wheel":  "Winner: Pizza",
		"team":   "Selected Team: Pizza",
		"number": "Number: Pizza",
		"letter": "Letter: Pizza",
	}
	dir := t.TempDir()
	d := sink.NewDownloader(dir, zaptest.NewLogger(t))
	for tool, want := range cases {
		t.Run(tool, func(t *testing.T) {
			path, ok := d.Deliver(tool, staticResult{"Pizza", true})
			require.True(t, ok)
			assert.Equal(t, filepath.Join(dir, tool+"-result.txt"), path)
			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, want, string(got))
		})
	}
}

func TestDownloader_NoResultIsNoOp(t *testing.T) {
	dir := t.TempDir()
	d := sink.NewDownloader(dir, zaptest.NewLogger(t))
	_, ok := d.Deliver("wheel", staticResult{})
	assert.False(t, ok)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownloader_UnknownTool(t *testing.T) {
	d := sink.NewDownloader(t.TempDir(), zaptest.NewLogger(t))
	_, ok := d.Deliver("dice", staticResult{"4", true})
	assert.False(t, ok)
}

func TestDownloader_WriteFailureSwallowed(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	d := sink.NewDownloader(file, zaptest.NewLogger(t))
	_, ok := d.Deliver("number", staticResult{"42", true})
	assert.False(t, ok)
}

func TestDownloader_WriteFileRejectsPaths(t *testing.T) {
	d := sink.NewDownloader(t.TempDir(), zaptest.NewLogger(t))
	_, err := d.WriteFile("../escape.txt", func(io.Writer) error { return nil })
	assert.Error(t, err)
}

func TestDownloader_WriteFileRemovesPartial(t *testing.T) {
	dir := t.TempDir()
	d := sink.NewDownloader(dir, zaptest.NewLogger(t))
	_, err := d.WriteFile("wheel.svg", func(w io.Writer) error {
		_, _ = io.WriteString(w, "<svg")
		return errors.New("boom")
	})
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "wheel.svg"))
	assert.True(t, os.IsNotExist(statErr))
}

type fakeTarget struct {
	available bool
	err       error
	got       []sink.Payload
}

func (f *fakeTarget) Available() bool { return f.available }

func (f *fakeTarget) Share(p sink.Payload) error {
	f.got = append(f.got, p)
	return f.err
}

func TestSharer_Payloads(t *testing.T) {
	cases := map[string]sink.Payload{
		"wheel":  {Title: "Spin Wheel Result", Text: "The winner is: No!"},
		"team":   {Title: "NFL Team Picker Result", Text: "The selected team is: No!"},
		"number": {Title: "Random Number Result", Text: "The number is: No!"},
		"letter": {Title: "Random Letter Result", Text: "The letter is: No!"},
	}
	for tool, want := range cases {
		t.Run(tool, func(t *testing.T) {
			target := &fakeTarget{available: true}
			s := sink.NewSharer(target, zaptest.NewLogger(t))
			assert.True(t, s.Deliver(tool, staticResult{"No", true}))
			assert.Equal(t, []sink.Payload{want}, target.got)
		})
	}
}

func TestSharer_UnavailableIsNoOp(t *testing.T) {
	target := &fakeTarget{available: false}
	s := sink.NewSharer(target, zaptest.NewLogger(t))
	assert.False(t, s.Deliver("wheel", staticResult{"Yes", true}))
	assert.Empty(t, target.got)

	assert.False(t, sink.NewSharer(nil, zaptest.NewLogger(t)).Deliver("wheel", staticResult{"Yes", true}))
}

func TestSharer_FailureSwallowed(t *testing.T) {
	target := &fakeTarget{available: true, err: errors.New("cancelled")}
	s := sink.NewSharer(target, zaptest.NewLogger(t))
	assert.False(t, s.Deliver("letter", staticResult{"Q", true}))
}

func TestWriterTarget(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, sink.WriterTarget{W: &buf}.Available())
	target := sink.WriterTarget{W: &buf, Enabled: true}
	require.True(t, target.Available())
	require.NoError(t, target.Share(sink.Payload{Title: "T", Text: "x"}))
	assert.Equal(t, "T\r\nx\r\n", buf.String())
}

func TestClipboard_OSC52RawValue(t *testing.T) {
	var buf bytes.Buffer
	c := sink.NewClipboard(&buf, zaptest.NewLogger(t))
	require.True(t, c.Deliver(staticResult{"Green Bay Packers", true}))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\x1b]52;c;"))
	require.True(t, strings.HasSuffix(out, "\a"))
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSuffix(strings.TrimPrefix(out, "\x1b]52;c;"), "\a"))
	require.NoError(t, err)
	assert.Equal(t, "Green Bay Packers", string(decoded))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestClipboard_FailuresSwallowed(t *testing.T) {
	c := sink.NewClipboard(failingWriter{}, zaptest.NewLogger(t))
	assert.False(t, c.Deliver(staticResult{"A", true}))
	assert.False(t, sink.NewClipboard(&bytes.Buffer{}, zaptest.NewLogger(t)).Deliver(staticResult{}))
}

func TestTools(t *testing.T) {
	assert.Equal(t, []string{"letter", "number", "team", "wheel"}, sink.Tools())
}
