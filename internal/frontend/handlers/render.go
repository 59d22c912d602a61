package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cory-johannsen/randpick/internal/frontend/command"
	"github.com/cory-johannsen/randpick/internal/frontend/telnet"
	"github.com/cory-johannsen/randpick/internal/picker"
	"github.com/cory-johannsen/randpick/internal/picker/candidate"
	"github.com/cory-johannsen/randpick/internal/picker/engine"
	"github.com/cory-johannsen/randpick/internal/picker/history"
	"github.com/cory-johannsen/randpick/internal/picker/pool"
	"github.com/cory-johannsen/randpick/internal/picker/wheel"
)

// maxPoolPreview bounds how many pool values RenderNumbers and RenderLetters list.
const maxPoolPreview = 30

// RenderWheel formats a wheel or team tool as colored Telnet text.
func RenderWheel(title string, cands []candidate.Candidate, st engine.SpinState) string {
	var b strings.Builder

	b.WriteString("\r\n")
	b.WriteString(telnet.Colorize(telnet.Bold+telnet.BrightYellow, title))
	b.WriteString("\r\n")
	for i, c := range cands {
		b.WriteString(fmt.Sprintf("  %s%2d.%s %s %s\r\n",
			telnet.Dim, i+1, telnet.Reset,
			telnet.Swatch(c.Color),
			telnet.Colorize(telnet.TrueColor(c.Color), c.Label)))
	}
	b.WriteString(telnet.Colorf(telnet.Dim, "Rotation: %.1f° (resting at %.1f°)",
		st.Rotation, wheel.RestingAngle(st.Rotation)))
	b.WriteString("\r\n")
	b.WriteString(renderPhase(st.Phase, winnerLabel(st.Winner)))
	return b.String()
}

func winnerLabel(c *candidate.Candidate) *string {
	if c == nil {
		return nil
	}
	return &c.Label
}

// RenderNumbers formats the number tool: filter, pool preview and state.
func RenderNumbers(f pool.NumberFilter, nums []int, interval time.Duration, sound bool, st engine.TickState[int]) string {
	var b strings.Builder
	b.WriteString("\r\n")
	b.WriteString(telnet.Colorize(telnet.Bold+telnet.BrightYellow, "Random Number Generator"))
	b.WriteString("\r\n")
	b.WriteString(fmt.Sprintf("  Range: %s%d%s to %s%d%s",
		telnet.BrightCyan, f.Min, telnet.Reset, telnet.BrightCyan, f.Max, telnet.Reset))
	if f.Parity != pool.ParityAny {
		b.WriteString(fmt.Sprintf("  (%s only)", f.Parity))
	}
	b.WriteString("\r\n")
	if f.Exclude != "" {
		b.WriteString(fmt.Sprintf("  Excluding: %s\r\n", f.Exclude))
	}
	strs := make([]string, 0, min(len(nums), maxPoolPreview))
	for _, n := range nums[:min(len(nums), maxPoolPreview)] {
		strs = append(strs, fmt.Sprint(n))
	}
	b.WriteString(renderPool(strs, len(nums)))
	b.WriteString(renderTickSettings(interval, sound))
	b.WriteString(renderTickState(st))
	return b.String()
}

// RenderLetters formats the letter tool: filter, pool preview and state.
func RenderLetters(f pool.LetterFilter, letters []string, interval time.Duration, sound bool, st engine.TickState[string]) string {
	var b strings.Builder
	b.WriteString("\r\n")
	b.WriteString(telnet.Colorize(telnet.Bold+telnet.BrightYellow, "Random Letter Generator"))
	b.WriteString("\r\n")
	b.WriteString(fmt.Sprintf("  Upper-case: %s  Lower-case: %s\r\n", onOff(f.IncludeUpper), onOff(f.IncludeLower)))
	if f.Exclude != "" {
		b.WriteString(fmt.Sprintf("  Excluding: %s\r\n", f.Exclude))
	}
	b.WriteString(renderPool(letters[:min(len(letters), maxPoolPreview)], len(letters)))
	b.WriteString(renderTickSettings(interval, sound))
	b.WriteString(renderTickState(st))
	return b.String()
}

func renderPool(preview []string, total int) string {
	if total == 0 {
		return telnet.Colorize(telnet.Red, "  Nothing left to pick from. Loosen the filters.") + "\r\n"
	}
	more := ""
	if total > len(preview) {
		more = fmt.Sprintf(" … (+%d)", total-len(preview))
	}
	return fmt.Sprintf("  Pool (%d): %s%s%s%s\r\n", total, telnet.Dim, strings.Join(preview, " "), more, telnet.Reset)
}

func renderTickSettings(interval time.Duration, sound bool) string {
	return fmt.Sprintf("  Speed: %s  Sound: %s\r\n", interval, onOff(sound))
}

func renderTickState[T any](st engine.TickState[T]) string {
	if st.Phase == engine.Resolved && st.Winner != nil {
		v := fmt.Sprint(*st.Winner)
		return renderPhase(st.Phase, &v)
	}
	if st.Phase == engine.Animating && st.HasCurrent {
		return telnet.Colorf(telnet.Yellow, "Rolling... %v (%d)", st.Current, st.Tick) + "\r\n"
	}
	return renderPhase(st.Phase, nil)
}

func renderPhase(p engine.Phase, winner *string) string {
	switch p {
	case engine.Animating:
		return telnet.Colorize(telnet.Yellow, "Selecting...") + "\r\n"
	case engine.Resolved:
		if winner != nil {
			return RenderWinner(*winner)
		}
	}
	return telnet.Colorize(telnet.Dim, "Ready. Type 'spin' to pick.") + "\r\n"
}

// RenderWinner formats a resolved winner.
func RenderWinner(v string) string {
	return telnet.Colorize(telnet.Bold+telnet.BrightGreen, "Result: "+v) + "\r\n"
}

// RenderHistory formats a ledger, newest first.
func RenderHistory[T any](entries []history.Entry[T]) string {
	if len(entries) == 0 {
		return telnet.Colorize(telnet.Dim, "No results yet.") + "\r\n"
	}
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.Cyan, "History:"))
	b.WriteString("\r\n")
	for i, e := range entries {
		b.WriteString(fmt.Sprintf("  %s%2d.%s %s %s%s%s\r\n",
			telnet.Dim, i+1, telnet.Reset,
			telnet.PadRight(fmt.Sprint(e.Value), candidate.MaxLabelWidth),
			telnet.Dim, e.Timestamp(), telnet.Reset))
	}
	return b.String()
}

// RenderHelp lists the commands usable with tool, grouped by category.
func RenderHelp(reg *command.Registry, tool string) string {
	order := []string{
		command.CategorySelection, command.CategoryItems, command.CategoryFilters,
		command.CategoryResults, command.CategorySystem,
	}
	byCat := make(map[string][]*command.Command)
	for _, c := range reg.ForTool(tool) {
		byCat[c.Category] = append(byCat[c.Category], c)
	}

	var b strings.Builder
	b.WriteString(telnet.Colorf(telnet.BrightWhite, "Commands for %s:", tool))
	b.WriteString("\r\n")
	for _, cat := range order {
		cmds := byCat[cat]
		if len(cmds) == 0 {
			continue
		}
		b.WriteString(telnet.Colorize(telnet.Cyan, "  "+cat))
		b.WriteString("\r\n")
		for _, c := range cmds {
			b.WriteString("    ")
			b.WriteString(telnet.Colorize(telnet.Green, telnet.PadRight(c.Usage, 32)))
			b.WriteString(c.Help)
			b.WriteString("\r\n")
		}
	}
	return b.String()
}

// RenderError formats err for the user without the sentinel suffix.
func RenderError(err error) string {
	return telnet.Colorize(telnet.Red, describe(err))
}

func describe(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{picker.ErrValidation, picker.ErrNotFound, picker.ErrEmptyPool, picker.ErrInvalidState} {
		if errors.Is(err, sentinel) {
			msg = strings.TrimSuffix(msg, ": "+sentinel.Error())
			break
		}
	}
	if msg == "" {
		return "Invalid input."
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}

func onOff(b bool) string {
	if b {
		return telnet.Colorize(telnet.Green, "on")
	}
	return telnet.Colorize(telnet.Red, "off")
}
