package repl

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/notexe/reminder-dash/internal/reminder"
	"github.com/notexe/reminder-dash/internal/ui"
)

func (r *REPL) handleCommand(ctx context.Context, command, args string) error {
	switch command {
	case "/help", "/h":
		r.displayHelp()
		return nil

	case "/search", "/find":
		r.search(args)
		return nil

	case "/priority", "/pri":
		return r.handlePriority(args)

	case "/tab", "/t":
		return r.handleTab(args)

	case "/page":
		n, err := strconv.Atoi(args)
		if err != nil {
			return fmt.Errorf("usage: /page <number>")
		}
		r.ctrl.SetPage(n)
		return nil

	case "/next", "/n":
		r.ctrl.NextPage()
		return nil

	case "/prev", "/p":
		r.ctrl.PrevPage()
		return nil

	case "/refresh", "/r":
		r.ctrl.Refresh()
		return nil

	case "/add", "/a", "/new":
		return r.addForm(ctx)

	case "/edit", "/e":
		id, err := parseID(args)
		if err != nil {
			return fmt.Errorf("usage: /edit <id>: %w", err)
		}
		return r.editForm(ctx, id)

	case "/done", "/d", "/complete":
		id, err := parseID(args)
		if err != nil {
			return fmt.Errorf("usage: /done <id>: %w", err)
		}
		// failures surface as a notification
		_ = r.ctrl.Complete(ctx, id)
		return nil

	case "/rm", "/delete", "/del":
		id, err := parseID(args)
		if err != nil {
			return fmt.Errorf("usage: /rm <id>: %w", err)
		}
		return r.confirmDelete(ctx, id)

	case "/show", "/s":
		id, err := parseID(args)
		if err != nil {
			return fmt.Errorf("usage: /show <id>: %w", err)
		}
		return r.show(ctx, id)

	case "/dismiss":
		r.ctrl.DismissNotification()
		return nil

	default:
		return fmt.Errorf("unknown command: %s (type /help for available commands)", command)
	}
}

func (r *REPL) handlePriority(args string) error {
	if args == "" {
		choice, err := r.choose(ui.PrioritySelector(r.ctrl.View().Query.Priority, r.config.UI.ColoredOutput))
		if err != nil {
			return err
		}
		args = choice
	}

	if strings.EqualFold(args, "all") {
		r.ctrl.SetPriority("")
		return nil
	}
	p, err := reminder.ParsePriority(args)
	if err != nil {
		return err
	}
	r.ctrl.SetPriority(p)
	return nil
}

func (r *REPL) handleTab(args string) error {
	if args == "" {
		choice, err := r.choose(ui.TabSelector(r.ctrl.View().Query.Tab, r.config.UI.ColoredOutput))
		if err != nil {
			return err
		}
		args = choice
	}

	tab, err := reminder.ParseTab(args)
	if err != nil {
		return err
	}
	r.ctrl.SetTab(tab)
	return nil
}

// choose runs a selector with readline closed, then restores readline.
func (r *REPL) choose(s *ui.Selector) (string, error) {
	r.enterForm()
	r.rl.Close()

	choice, err := s.Run()

	if rl, rlErr := r.newReader(r.listen); rlErr == nil {
		r.rl = rl
	} else {
		r.log.WithError(rlErr).Error("failed to restore readline")
	}
	r.leaveForm()

	if errors.Is(err, ui.ErrCancelled) {
		return "", errors.New("selection cancelled")
	}
	return choice, err
}

func (r *REPL) show(ctx context.Context, id int64) error {
	rem, ok := r.ctrl.Lookup(id)
	if !ok {
		got, err := r.svc.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load reminder %d: %w", id, err)
		}
		rem = *got
	}
	r.println(r.formatter.FormatBox(fmt.Sprintf("Reminder #%d", rem.ID), r.formatter.FormatDetail(rem)))
	return nil
}
