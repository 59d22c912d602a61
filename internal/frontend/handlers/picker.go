// Package handlers provides Telnet session handling and command processing.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/randpick/internal/config"
	"github.com/cory-johannsen/randpick/internal/frontend/command"
	"github.com/cory-johannsen/randpick/internal/frontend/telnet"
	"github.com/cory-johannsen/randpick/internal/observability"
	"github.com/cory-johannsen/randpick/internal/picker"
	"github.com/cory-johannsen/randpick/internal/picker/candidate"
	"github.com/cory-johannsen/randpick/internal/picker/engine"
	"github.com/cory-johannsen/randpick/internal/picker/pool"
	"github.com/cory-johannsen/randpick/internal/picker/rng"
	"github.com/cory-johannsen/randpick/internal/picker/sink"
	"github.com/cory-johannsen/randpick/internal/picker/tool"
	"github.com/cory-johannsen/randpick/internal/picker/wheel"
)

const welcomeBanner = "\r\n" + telnet.Bold + telnet.BrightCyan +
	"  ~ randpick ~" + telnet.Reset + "\r\n" +
	telnet.BrightYellow + "  Spin wheels, pick teams, draw numbers and letters." + telnet.Reset + "\r\n\r\n" +
	"  Type " + telnet.Green + "use <wheel|team|number|letter>" + telnet.Reset + " to pick a tool.\r\n" +
	"  Type " + telnet.Green + "help" + telnet.Reset + " for commands, " + telnet.Green + "quit" + telnet.Reset + " to disconnect.\r\n"

const prompt = "> "

// PickerHandler implements telnet.SessionHandler. Every session gets its own
// tool.Kit; nothing is shared between sessions except the export directory.
type PickerHandler struct {
	cfg       config.PickerConfig
	roster    *candidate.Roster
	registry  *command.Registry
	scheduler engine.Scheduler
	newSource func() rng.Source
	logger    *zap.Logger
}

// NewPickerHandler creates a PickerHandler.
//
// Precondition: roster, scheduler, newSource and logger must be non-nil; cfg
// must pass config validation.
// Postcondition: Returns a handler ready to serve sessions.
func NewPickerHandler(
	cfg config.PickerConfig,
	roster *candidate.Roster,
	scheduler engine.Scheduler,
	newSource func() rng.Source,
	logger *zap.Logger,
) *PickerHandler {
	return &PickerHandler{
		cfg:       cfg,
		roster:    roster,
		registry:  command.DefaultRegistry(),
		scheduler: scheduler,
		newSource: newSource,
		logger:    logger,
	}
}

// bellNotifier rings the client bell on every tick.
type bellNotifier struct {
	conn *telnet.Conn
}

func (b bellNotifier) Notify(string, int) { _ = b.conn.Bell() }

// session is the per-connection state.
type session struct {
	h      *PickerHandler
	conn   *telnet.Conn
	kit    *tool.Kit
	logger *zap.Logger

	// active is written only by the command loop; engine callbacks read it
	// through activeTool.
	mu     sync.Mutex
	active string

	download  *sink.Downloader
	share     *sink.Sharer
	clipboard *sink.Clipboard
}

// HandleSession implements telnet.SessionHandler. It shows the welcome banner
// and processes picker commands until the client quits or ctx is cancelled.
//
// Postcondition: Returns nil on clean quit, or an error if the session ended
// abnormally. Every pending animation is cancelled on return.
func (h *PickerHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := time.Now()
	logger := observability.SessionLogger(h.logger, conn.ID(), conn.RemoteAddr().String())

	kit, err := tool.New(tool.Options{
		Config:    h.cfg,
		Roster:    h.roster,
		Source:    h.newSource(),
		Scheduler: h.scheduler,
		Notifier:  bellNotifier{conn: conn},
	}, logger)
	if err != nil {
		return fmt.Errorf("building tool kit: %w", err)
	}
	defer kit.Close()

	s := &session{
		h:         h,
		conn:      conn,
		kit:       kit,
		active:    tool.Wheel,
		logger:    logger,
		download:  sink.NewDownloader(filepath.Join(h.cfg.ExportDir, conn.ID()), logger),
		share:     sink.NewSharer(sink.WriterTarget{W: conn, Enabled: h.cfg.ShareEnabled}, logger),
		clipboard: sink.NewClipboard(conn, logger),
	}
	s.subscribe()

	// unblock ReadLine when the server shuts down
	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
		_ = conn.Close()
	})
	defer stop()

	if err := conn.WriteString(welcomeBanner); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}
	s.show()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, prompt)); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}

		line, err := conn.ReadLine()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading input: %w", err)
		}

		parsed := command.Parse(line)
		if parsed.Command == "" {
			continue
		}
		if quit := s.dispatch(parsed); quit {
			_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Goodbye!"))
			logger.Info("client quit", zap.Duration("session_duration", time.Since(start)))
			return nil
		}
	}
}

// subscribe wires engine events to the connection. Callbacks run on timer
// goroutines, so each one writes whole lines.
func (s *session) subscribe() {
	announce := func(name string) func(string) {
		return func(v string) {
			if s.activeTool() != name {
				return
			}
			_ = s.conn.WriteString("\r" + telnet.EraseLine + RenderWinner(v) + telnet.Colorize(telnet.BrightWhite, prompt))
		}
	}
	wheelDone := announce(tool.Wheel)
	teamDone := announce(tool.Team)
	s.kit.Wheel.OnResolve(func(c candidate.Candidate) { wheelDone(c.Label) })
	s.kit.Team.OnResolve(func(c candidate.Candidate) { teamDone(c.Label) })

	numberDone := announce(tool.Number)
	s.kit.Number.OnTick(func(_ int, v int) { s.transient(tool.Number, strconv.Itoa(v)) })
	s.kit.Number.OnResolve(func(v int) { numberDone(strconv.Itoa(v)) })

	letterDone := announce(tool.Letter)
	s.kit.Letter.OnTick(func(_ int, v string) { s.transient(tool.Letter, v) })
	s.kit.Letter.OnResolve(letterDone)
}

func (s *session) transient(name, v string) {
	if s.activeTool() != name {
		return
	}
	_ = s.conn.WriteTransient(telnet.Colorize(telnet.Yellow, "Rolling... "+v))
}

func (s *session) activeTool() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *session) println(text string) {
	_ = s.conn.WriteLine(text)
}

// dispatch runs one command and reports whether the session should end.
func (s *session) dispatch(p command.ParseResult) bool {
	cmd, ok := s.h.registry.Resolve(p.Command)
	if !ok {
		s.println(telnet.Colorf(telnet.Red, "Unknown command: %s. Type 'help' for available commands.", p.Command))
		return false
	}
	if !cmd.AppliesTo(s.active) {
		s.println(telnet.Colorf(telnet.Red, "'%s' does not apply to the %s tool.", cmd.Name, s.active))
		return false
	}

	switch cmd.Handler {
	case command.HandlerQuit:
		return true
	case command.HandlerHelp:
		_ = s.conn.WriteString(RenderHelp(s.h.registry, s.active))
	case command.HandlerUse:
		s.use(p.Args)
	case command.HandlerShow:
		s.show()
	case command.HandlerSelect:
		s.selectWinner()
	case command.HandlerReset:
		s.reset()
	case command.HandlerHistory:
		s.history()
	case command.HandlerClear:
		s.clearHistory()
	case command.HandlerAdd:
		s.report(s.addItem(p.RawArgs))
	case command.HandlerEdit:
		s.report(s.editItem(p))
	case command.HandlerRemove:
		s.report(s.removeItem(p.Args))
	case command.HandlerMin, command.HandlerMax:
		s.report(s.setBound(cmd.Name, p.Args))
	case command.HandlerStep:
		s.report(s.step(cmd.Name))
	case command.HandlerRange:
		s.report(s.quickRange(p.Args))
	case command.HandlerExclude:
		s.report(s.exclude(p.RawArgs))
	case command.HandlerParity:
		s.report(s.parity(cmd.Name))
	case command.HandlerCase:
		s.report(s.letterCase(cmd.Name))
	case command.HandlerSpeed:
		s.report(s.speed(p.Args))
	case command.HandlerSound:
		s.sound()
	case command.HandlerCopy:
		s.copyResult()
	case command.HandlerShare:
		s.shareResult()
	case command.HandlerDownload:
		s.downloadResult()
	case command.HandlerSVG:
		if err := s.saveSVG(); err != nil {
			s.println(RenderError(err))
		}
	default:
		s.logger.Error("command has no handler", zap.String("command", cmd.Name), zap.String("handler", cmd.Handler))
	}
	return false
}

// report shows err inline, or the refreshed tool when err is nil.
func (s *session) report(err error) {
	if err != nil {
		s.println(RenderError(err))
		return
	}
	s.show()
}

func (s *session) use(args []string) {
	if len(args) != 1 {
		s.println(telnet.Colorize(telnet.Red, "Usage: use <wheel|team|number|letter>"))
		return
	}
	name := strings.ToLower(args[0])
	if _, ok := s.kit.Resulter(name); !ok {
		s.println(telnet.Colorf(telnet.Red, "Unknown tool: %s.", name))
		return
	}
	s.mu.Lock()
	s.active = name
	s.mu.Unlock()
	s.show()
}

func (s *session) show() {
	var out string
	switch s.active {
	case tool.Wheel:
		out = RenderWheel("Spin Wheel", s.kit.Wheel.Candidates(), s.kit.Wheel.State())
	case tool.Team:
		out = RenderWheel(s.kit.TeamTitle, s.kit.Team.Candidates(), s.kit.Team.State())
	case tool.Number:
		interval, sound := s.kit.Number.Settings()
		f := s.kit.Number.Filter()
		out = RenderNumbers(f, pool.Numbers(f), interval, sound, s.kit.Number.State())
	case tool.Letter:
		interval, sound := s.kit.Letter.Settings()
		f := s.kit.Letter.Filter()
		out = RenderLetters(f, pool.Letters(f), interval, sound, s.kit.Letter.State())
	}
	_ = s.conn.WriteString(out)
}

func (s *session) spinner() *engine.Wheel {
	if s.active == tool.Team {
		return s.kit.Team
	}
	return s.kit.Wheel
}

// selectWinner starts the active tool. Re-entrant requests and empty pools
// are silent no-ops.
func (s *session) selectWinner() {
	var err error
	switch s.active {
	case tool.Wheel, tool.Team:
		err = s.spinner().Spin()
		if err == nil {
			s.println(telnet.Colorize(telnet.Yellow, "Spinning..."))
		}
	case tool.Number:
		err = s.kit.Number.Roll()
	case tool.Letter:
		err = s.kit.Letter.Roll()
	}
	switch {
	case err == nil:
	case errors.Is(err, picker.ErrInvalidState), errors.Is(err, picker.ErrEmptyPool):
		s.logger.Debug("selection refused", zap.String("tool", s.active), zap.Error(err))
	default:
		s.println(RenderError(err))
	}
}

func (s *session) reset() {
	switch s.active {
	case tool.Wheel, tool.Team:
		s.spinner().Reset()
	case tool.Number:
		s.kit.Number.Reset()
	case tool.Letter:
		s.kit.Letter.Reset()
	}
	s.show()
}

func (s *session) history() {
	var out string
	switch s.active {
	case tool.Wheel, tool.Team:
		out = RenderHistory(s.spinner().History().Entries())
	case tool.Number:
		out = RenderHistory(s.kit.Number.History().Entries())
	case tool.Letter:
		out = RenderHistory(s.kit.Letter.History().Entries())
	}
	_ = s.conn.WriteString(out)
}

func (s *session) clearHistory() {
	switch s.active {
	case tool.Wheel, tool.Team:
		s.spinner().History().Clear()
	case tool.Number:
		s.kit.Number.History().Clear()
	case tool.Letter:
		s.kit.Letter.History().Clear()
	}
	s.println(telnet.Colorize(telnet.Dim, "History cleared."))
}

func (s *session) addItem(label string) error {
	_, err := s.kit.Wheel.Add(label)
	return err
}

// itemID maps a 1-based position to a candidate id.
func (s *session) itemID(arg string) (string, error) {
	n, err := strconv.Atoi(arg)
	cands := s.kit.Wheel.Candidates()
	if err != nil || n < 1 || n > len(cands) {
		return "", fmt.Errorf("no item %q; use a number from 1 to %d: %w", arg, len(cands), picker.ErrNotFound)
	}
	return cands[n-1].ID, nil
}

func (s *session) editItem(p command.ParseResult) error {
	idx, label, ok := p.SplitIndexed()
	if !ok {
		return fmt.Errorf("usage: edit <n> <label>: %w", picker.ErrValidation)
	}
	id, err := s.itemID(idx)
	if err != nil {
		return err
	}
	return s.kit.Wheel.Edit(id, label)
}

func (s *session) removeItem(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: remove <n>: %w", picker.ErrValidation)
	}
	id, err := s.itemID(args[0])
	if err != nil {
		return err
	}
	return s.kit.Wheel.Remove(id)
}

func intArg(args []string, usage string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: %s: %w", usage, picker.ErrValidation)
	}
	v, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number: %w", args[0], picker.ErrValidation)
	}
	return v, nil
}

func (s *session) setBound(name string, args []string) error {
	v, err := intArg(args, name+" <value>")
	if err != nil {
		return err
	}
	return s.kit.Number.Update(func(f *pool.NumberFilter) error {
		if name == "min" {
			return f.SetMin(v)
		}
		return f.SetMax(v)
	})
}

func (s *session) step(name string) error {
	return s.kit.Number.Update(func(f *pool.NumberFilter) error {
		switch name {
		case "min+":
			return f.IncrementMin()
		case "min-":
			return f.DecrementMin()
		case "max+":
			return f.IncrementMax()
		default:
			return f.DecrementMax()
		}
	})
}

func (s *session) quickRange(args []string) error {
	v, err := intArg(args, "range <10|50|100>")
	if err != nil {
		return err
	}
	return s.kit.Number.Update(func(f *pool.NumberFilter) error { return f.QuickRange(v) })
}

func (s *session) exclude(text string) error {
	if s.active == tool.Number {
		return s.kit.Number.SetExclude(text)
	}
	return s.kit.Letter.SetExclude(text)
}

func (s *session) parity(name string) error {
	return s.kit.Number.Update(func(f *pool.NumberFilter) error {
		if name == "even" {
			return f.ToggleEven()
		}
		return f.ToggleOdd()
	})
}

func (s *session) letterCase(name string) error {
	var err error
	if name == "upper" {
		_, err = s.kit.Letter.ToggleUpper()
	} else {
		_, err = s.kit.Letter.ToggleLower()
	}
	return err
}

func (s *session) ticker() interface {
	SetInterval(time.Duration) error
	ToggleSound() bool
} {
	if s.active == tool.Number {
		return s.kit.Number
	}
	return s.kit.Letter
}

func (s *session) speed(args []string) error {
	ms, err := intArg(args, "speed <ms>")
	if err != nil {
		return err
	}
	return s.ticker().SetInterval(time.Duration(ms) * time.Millisecond)
}

func (s *session) sound() {
	on := s.ticker().ToggleSound()
	s.println("Sound " + onOff(on) + ".")
}

func (s *session) resulter() sink.Resulter {
	r, _ := s.kit.Resulter(s.active)
	return r
}

func (s *session) copyResult() {
	if s.clipboard.Deliver(s.resulter()) {
		s.println(telnet.Colorize(telnet.Dim, "Copied to clipboard."))
		return
	}
	s.println(telnet.Colorize(telnet.Dim, "Nothing to copy yet."))
}

func (s *session) shareResult() {
	if !s.share.Deliver(s.active, s.resulter()) {
		s.println(telnet.Colorize(telnet.Dim, "Nothing shared."))
	}
}

func (s *session) downloadResult() {
	path, ok := s.download.Deliver(s.active, s.resulter())
	if !ok {
		s.println(telnet.Colorize(telnet.Dim, "Nothing saved."))
		return
	}
	s.println(telnet.Colorf(telnet.Green, "Saved %s.", path))
}

func (s *session) saveSVG() error {
	w := s.spinner()
	cands := w.Candidates()
	rotation := w.State().Rotation
	path, err := s.download.WriteFile(s.active+".svg", func(out io.Writer) error {
		return wheel.RenderSVG(out, cands, rotation)
	})
	if err != nil {
		s.logger.Warn("svg export failed", zap.Error(err))
		return fmt.Errorf("could not save the wheel image")
	}
	s.println(telnet.Colorf(telnet.Green, "Saved %s.", path))
	return nil
}
