// Package repl is the interactive terminal dashboard: a readline prompt
// driving a dashboard.Controller, with slash commands, search as you
// type, and line-by-line add and edit forms.
package repl

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/notexe/reminder-dash/internal/config"
	"github.com/notexe/reminder-dash/internal/dashboard"
	"github.com/notexe/reminder-dash/internal/ui"
)

// lineReader is the part of *readline.Instance the REPL uses.
type lineReader interface {
	Readline() (string, error)
	ReadlineWithDefault(what string) (string, error)
	SetPrompt(prompt string)
	Stdout() io.Writer
	Close() error
}

type REPL struct {
	ctrl      *dashboard.Controller
	svc       dashboard.Service
	config    *config.Config
	formatter *ui.Formatter
	log       logrus.FieldLogger

	rl        lineReader
	newReader func(listen listener) (lineReader, error)

	searches chan string

	mu        sync.Mutex
	inForm    bool
	drawn     uint64
	lastFrame string
	lastNote  string
}

func NewREPL(ctrl *dashboard.Controller, svc dashboard.Service, cfg *config.Config, log logrus.FieldLogger) (*REPL, error) {
	width := cfg.UI.Width
	if width <= 0 {
		width = ui.TerminalWidth()
	}

	r := &REPL{
		ctrl:   ctrl,
		svc:    svc,
		config: cfg,
		formatter: ui.NewFormatter(ui.Options{
			Colored: cfg.UI.ColoredOutput,
			ShowIDs: cfg.UI.ShowIDs,
			Width:   width,
		}),
		log:       log.WithField("component", "repl"),
		newReader: setupReadline,
		searches:  make(chan string, 64),
	}

	rl, err := r.newReader(r.listen)
	if err != nil {
		return nil, fmt.Errorf("failed to setup readline: %w", err)
	}
	r.rl = rl
	r.rl.SetPrompt(r.formatter.FormatPrompt())
	return r, nil
}

// Start runs the dashboard until /quit, Ctrl+C or Ctrl+D.
func (r *REPL) Start(ctx context.Context) error {
	defer r.rl.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go r.searchLoop(ctx)

	r.displayWelcome()
	r.ctrl.OnChange(r.onChange)
	r.ctrl.Start(ctx)

	for {
		input, err := r.readInput()
		if err != nil {
			if isEOF(err) {
				r.println("\nGoodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if input == "" {
			continue
		}

		isCommand, command, args := parseCommand(input)
		if !isCommand {
			r.search(input)
			continue
		}

		if command == "/quit" || command == "/exit" || command == "/q" {
			r.println("\nGoodbye!")
			return nil
		}

		if err := r.handleCommand(ctx, command, args); err != nil {
			r.displayError(err)
		}
	}
}

// search queues a search term. Terms are applied in order by searchLoop
// so the controller sees the keystrokes as typed.
func (r *REPL) search(term string) {
	select {
	case r.searches <- strings.TrimSpace(term):
	default:
		r.log.Warn("search queue full, dropping keystroke")
	}
}

func (r *REPL) searchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case term := <-r.searches:
			r.ctrl.SetSearch(term)
		}
	}
}

// onChange draws controller snapshots. Older snapshots and snapshots
// that change nothing visible are dropped. A snapshot that only changes
// the notification prints just the notification.
func (r *REPL) onChange(v dashboard.View) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v.Version <= r.drawn || r.inForm {
		return
	}
	if v.Status == dashboard.StatusLoading && r.lastFrame != "" {
		return
	}
	r.drawn = v.Version

	note := r.formatter.FormatNotification(v.Notification)
	frame := r.formatter.FormatView(withoutNotification(v))

	switch {
	case frame != r.lastFrame:
		r.write(r.formatter.FormatView(v))
	case note != "" && note != r.lastNote:
		r.write(note)
	}
	r.lastFrame = frame
	r.lastNote = note
}

// redraw prints the current snapshot unconditionally.
func (r *REPL) redraw() {
	v := r.ctrl.View()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.drawn = v.Version
	r.lastFrame = r.formatter.FormatView(withoutNotification(v))
	r.lastNote = r.formatter.FormatNotification(v.Notification)
	r.write(r.formatter.FormatView(v))
}

func withoutNotification(v dashboard.View) dashboard.View {
	v.Notification = dashboard.Notification{}
	return v
}

// enterForm suspends live search and redraws until leaveForm.
func (r *REPL) enterForm() {
	r.mu.Lock()
	r.inForm = true
	r.mu.Unlock()
}

func (r *REPL) leaveForm() {
	r.mu.Lock()
	r.inForm = false
	r.mu.Unlock()

	r.rl.SetPrompt(r.formatter.FormatPrompt())
	r.redraw()
}

func (r *REPL) live() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.inForm
}
