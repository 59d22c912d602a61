// Package command provides the command registry, parser, and built-in command
// definitions for picker sessions.
package command

import "slices"

// Categories for organizing commands.
const (
	CategorySelection = "selection"
	CategoryItems     = "items"
	CategoryFilters   = "filters"
	CategoryResults   = "results"
	CategorySystem    = "system"
)

// Handler identifiers mapping commands to session actions.
const (
	HandlerHelp     = "help"
	HandlerQuit     = "quit"
	HandlerUse      = "use"
	HandlerShow     = "show"
	HandlerSelect   = "select"
	HandlerReset    = "reset"
	HandlerHistory  = "history"
	HandlerClear    = "clear"
	HandlerAdd      = "add"
	HandlerEdit     = "edit"
	HandlerRemove   = "remove"
	HandlerMin      = "min"
	HandlerMax      = "max"
	HandlerStep     = "step"
	HandlerRange    = "range"
	HandlerExclude  = "exclude"
	HandlerParity   = "parity"
	HandlerCase     = "case"
	HandlerSpeed    = "speed"
	HandlerSound    = "sound"
	HandlerCopy     = "copy"
	HandlerShare    = "share"
	HandlerDownload = "download"
	HandlerSVG      = "svg"
)

// Tool groups used by Command.Tools.
var (
	spinTools = []string{"wheel", "team"}
	tickTools = []string{"number", "letter"}
)

// Command defines a user-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument syntax, e.g. "edit <n> <label>".
	Usage string
	// Help is the short help text displayed to users.
	Help string
	// Category groups the command in help output.
	Category string
	// Handler maps to the session action.
	Handler string
	// Tools restricts the command to the named tools; empty means every tool.
	Tools []string
}

// AppliesTo reports whether the command may be used while tool is active.
func (c *Command) AppliesTo(tool string) bool {
	return len(c.Tools) == 0 || slices.Contains(c.Tools, tool)
}

// BuiltinCommands returns all built-in commands.
func BuiltinCommands() []Command {
	return []Command{
		// Selection
		{Name: "spin", Aliases: []string{"roll", "go", "generate"}, Usage: "spin", Help: "Start a selection", Category: CategorySelection, Handler: HandlerSelect},
		{Name: "reset", Usage: "reset", Help: "Cancel any selection and clear the result", Category: CategorySelection, Handler: HandlerReset},
		{Name: "history", Aliases: []string{"hist"}, Usage: "history", Help: "List previous results, newest first", Category: CategorySelection, Handler: HandlerHistory},
		{Name: "clear", Usage: "clear", Help: "Clear the result history", Category: CategorySelection, Handler: HandlerClear},

		// Wheel items
		{Name: "add", Usage: "add <label>", Help: "Add a wheel item", Category: CategoryItems, Handler: HandlerAdd, Tools: []string{"wheel"}},
		{Name: "edit", Usage: "edit <n> <label>", Help: "Rename wheel item n", Category: CategoryItems, Handler: HandlerEdit, Tools: []string{"wheel"}},
		{Name: "remove", Aliases: []string{"rm"}, Usage: "remove <n>", Help: "Remove wheel item n", Category: CategoryItems, Handler: HandlerRemove, Tools: []string{"wheel"}},

		// Filters
		{Name: "min", Usage: "min <value>", Help: "Set the lowest number", Category: CategoryFilters, Handler: HandlerMin, Tools: []string{"number"}},
		{Name: "max", Usage: "max <value>", Help: "Set the highest number", Category: CategoryFilters, Handler: HandlerMax, Tools: []string{"number"}},
		{Name: "min+", Usage: "min+", Help: "Raise the lowest number by one", Category: CategoryFilters, Handler: HandlerStep, Tools: []string{"number"}},
		{Name: "min-", Usage: "min-", Help: "Lower the lowest number by one", Category: CategoryFilters, Handler: HandlerStep, Tools: []string{"number"}},
		{Name: "max+", Usage: "max+", Help: "Raise the highest number by one", Category: CategoryFilters, Handler: HandlerStep, Tools: []string{"number"}},
		{Name: "max-", Usage: "max-", Help: "Lower the highest number by one", Category: CategoryFilters, Handler: HandlerStep, Tools: []string{"number"}},
		{Name: "range", Usage: "range <10|50|100>", Help: "Set the highest number to a preset", Category: CategoryFilters, Handler: HandlerRange, Tools: []string{"number"}},
		{Name: "exclude", Aliases: []string{"x"}, Usage: "exclude <list>", Help: "Exclude numbers (comma separated) or letters; no argument clears", Category: CategoryFilters, Handler: HandlerExclude, Tools: tickTools},
		{Name: "even", Usage: "even", Help: "Toggle even numbers only", Category: CategoryFilters, Handler: HandlerParity, Tools: []string{"number"}},
		{Name: "odd", Usage: "odd", Help: "Toggle odd numbers only", Category: CategoryFilters, Handler: HandlerParity, Tools: []string{"number"}},
		{Name: "upper", Usage: "upper", Help: "Toggle upper-case letters", Category: CategoryFilters, Handler: HandlerCase, Tools: []string{"letter"}},
		{Name: "lower", Usage: "lower", Help: "Toggle lower-case letters", Category: CategoryFilters, Handler: HandlerCase, Tools: []string{"letter"}},
		{Name: "speed", Usage: "speed <ms>", Help: "Set the shuffle interval (20-200 ms)", Category: CategoryFilters, Handler: HandlerSpeed, Tools: tickTools},
		{Name: "sound", Usage: "sound", Help: "Toggle the tick bell", Category: CategoryFilters, Handler: HandlerSound, Tools: tickTools},

		// Results
		{Name: "copy", Usage: "copy", Help: "Copy the result to your clipboard", Category: CategoryResults, Handler: HandlerCopy},
		{Name: "share", Usage: "share", Help: "Share the result", Category: CategoryResults, Handler: HandlerShare},
		{Name: "download", Aliases: []string{"save"}, Usage: "download", Help: "Save the result to a text file", Category: CategoryResults, Handler: HandlerDownload},
		{Name: "svg", Usage: "svg", Help: "Save the wheel as an SVG image", Category: CategoryResults, Handler: HandlerSVG, Tools: spinTools},

		// System
		{Name: "use", Aliases: []string{"tool"}, Usage: "use <wheel|team|number|letter>", Help: "Switch tools", Category: CategorySystem, Handler: HandlerUse},
		{Name: "show", Aliases: []string{"look", "l"}, Usage: "show", Help: "Show the current tool", Category: CategorySystem, Handler: HandlerShow},
		{Name: "help", Aliases: []string{"?"}, Usage: "help", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Usage: "quit", Help: "Disconnect", Category: CategorySystem, Handler: HandlerQuit},
	}
}
