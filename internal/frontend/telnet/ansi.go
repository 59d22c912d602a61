package telnet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

const csi = "\033["

// SGR styles used by the picker screens.
const (
	Reset = csi + "0m"
	Bold  = csi + "1m"
	Dim   = csi + "2m"

	Red    = csi + "31m"
	Green  = csi + "32m"
	Yellow = csi + "33m"
	Cyan   = csi + "36m"

	BrightGreen  = csi + "92m"
	BrightYellow = csi + "93m"
	BrightCyan   = csi + "96m"
	BrightWhite  = csi + "97m"

	// EraseLine clears the whole current line without moving the cursor.
	EraseLine = csi + "2K"
)

// Colorize wraps text in style and a trailing Reset.
func Colorize(style, text string) string {
	return style + text + Reset
}

// Colorf is Colorize over a formatted string.
func Colorf(style, format string, args ...any) string {
	return Colorize(style, fmt.Sprintf(format, args...))
}

// StripANSI removes CSI escape sequences, leaving the printable text. A
// sequence runs from ESC [ to its final byte in '@'..'~'; an unterminated
// sequence is kept verbatim.
func StripANSI(s string) string {
	if !strings.Contains(s, csi) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for {
		i := strings.Index(s, csi)
		if i < 0 {
			break
		}
		end := strings.IndexFunc(s[i+len(csi):], func(r rune) bool { return r >= '@' && r <= '~' })
		if end < 0 {
			break
		}
		b.WriteString(s[:i])
		s = s[i+len(csi)+end+1:]
	}
	b.WriteString(s)
	return b.String()
}

// Width returns the number of terminal cells s occupies once escapes are
// removed.
func Width(s string) int {
	return runewidth.StringWidth(StripANSI(s))
}

// PadRight pads s with spaces to width cells. Wider text is returned as is.
func PadRight(s string, width int) string {
	if w := Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// TrueColor returns the 24-bit foreground escape for a "#RRGGBB" color, or
// "" when hex is malformed.
func TrueColor(hex string) string {
	return rgb(38, hex)
}

// TrueColorBg is the background counterpart of TrueColor.
func TrueColorBg(hex string) string {
	return rgb(48, hex)
}

func rgb(plane int, hex string) string {
	if len(hex) != 7 || hex[0] != '#' {
		return ""
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s%d;2;%d;%d;%dm", csi, plane, uint8(v>>16), uint8(v>>8), uint8(v))
}

// Swatch renders a two-cell block of color, or two blanks when hex is
// malformed.
func Swatch(hex string) string {
	bg := TrueColorBg(hex)
	if bg == "" {
		return "  "
	}
	return Colorize(bg, "  ")
}
