// Package sink delivers a resolved result outside the engine: to a file, to a
// share target, or to the terminal clipboard. Delivery never fails loudly;
// errors are logged and reported to the caller as "not delivered".
package sink

import (
	"fmt"
	"sort"
)

// Resulter is implemented by every selection engine.
type Resulter interface {
	// ResultText returns the committed winner, or false when there is none.
	ResultText() (string, bool)
}

// Template holds the per-tool texts used by the sinks.
type Template struct {
	// DownloadPrefix precedes the value in the downloaded file, e.g. "Winner: ".
	DownloadPrefix string
	ShareTitle     string
	// ShareFormat is a fmt format with one %s verb for the value.
	ShareFormat string
}

var templates = map[string]Template{
	"wheel": {
		DownloadPrefix: "Winner: ",
		ShareTitle:     "Spin Wheel Result",
		ShareFormat:    "The winner is: %s!",
	},
	"team": {
		DownloadPrefix: "Selected Team: ",
		ShareTitle:     "NFL Team Picker Result",
		ShareFormat:    "The selected team is: %s!",
	},
	"number": {
		DownloadPrefix: "Number: ",
		ShareTitle:     "Random Number Result",
		ShareFormat:    "The number is: %s!",
	},
	"letter": {
		DownloadPrefix: "Letter: ",
		ShareTitle:     "Random Letter Result",
		ShareFormat:    "The letter is: %s!",
	},
}

// TemplateFor returns the texts for tool.
//
// Postcondition: Returns false when tool is unknown.
func TemplateFor(tool string) (Template, bool) {
	t, ok := templates[tool]
	return t, ok
}

// Tools returns the names that have templates, sorted.
func Tools() []string {
	out := make([]string, 0, len(templates))
	for name := range templates {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// FileName returns the download file name for tool.
func FileName(tool string) string {
	return tool + "-result.txt"
}

// DownloadContent returns the file body for value.
func (t Template) DownloadContent(value string) string {
	return t.DownloadPrefix + value
}

// Payload returns the share payload for value.
func (t Template) Payload(value string) Payload {
	return Payload{Title: t.ShareTitle, Text: fmt.Sprintf(t.ShareFormat, value)}
}
