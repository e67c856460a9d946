package repl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/notexe/reminder-dash/internal/reminder"
)

// inputLayout is how due dates are shown for editing.
const inputLayout = "2006-01-02 15:04"

type submitFunc func(ctx context.Context, d reminder.Draft) error

func (r *REPL) addForm(ctx context.Context) error {
	r.ctrl.OpenAdd()
	d := r.ctrl.View().Dialogs.Draft
	return r.runForm(ctx, "New reminder", d, r.ctrl.SubmitAdd, r.ctrl.CloseAdd)
}

func (r *REPL) editForm(ctx context.Context, id int64) error {
	if err := r.ctrl.OpenEdit(id); err != nil {
		return err
	}
	d := r.ctrl.View().Dialogs.Draft
	return r.runForm(ctx, fmt.Sprintf("Edit reminder #%d", id), d, r.ctrl.SubmitEdit, r.ctrl.CloseEdit)
}

// runForm prompts for every field and submits until the submission
// succeeds or the user gives up. Validation errors are shown under the
// offending fields on the next pass.
func (r *REPL) runForm(ctx context.Context, title string, d reminder.Draft, submit submitFunc, closeForm func()) error {
	r.enterForm()
	defer r.leaveForm()

	r.println(r.formatter.FormatBox(title, "Edit each field and press Enter. Ctrl+C cancels."))

	var errs reminder.FieldErrors
	for {
		next, err := r.promptDraft(d, errs)
		if err != nil {
			closeForm()
			if isEOF(err) {
				r.displaySystem("Cancelled.")
				return nil
			}
			return err
		}
		d = next

		err = submit(ctx, d)
		if err == nil {
			return nil
		}

		var fe reminder.FieldErrors
		if errors.As(err, &fe) {
			errs = fe
			continue
		}

		r.displayError(err)
		retry, cerr := r.confirm("Try again?")
		if cerr != nil || !retry {
			closeForm()
			return nil
		}
		errs = nil
	}
}

// promptDraft asks for each field of d, pre-filled with its current value.
func (r *REPL) promptDraft(d reminder.Draft, errs reminder.FieldErrors) (reminder.Draft, error) {
	var err error

	if d.Title, err = r.prompt("Title", d.Title, errs.For("title")); err != nil {
		return d, err
	}
	if d.Description, err = r.prompt("Description", d.Description, errs.For("description")); err != nil {
		return d, err
	}

	due := ""
	if !d.DueDate.IsZero() {
		due = d.DueDate.Format(inputLayout)
	}
	problem := errs.For("dueDate")
	for {
		line, err := r.prompt("Due (YYYY-MM-DD HH:MM)", due, problem)
		if err != nil {
			return d, err
		}
		if line == "" {
			d.DueDate = reminder.Timestamp{}
			break
		}
		ts, perr := reminder.ParseInput(line)
		if perr == nil {
			d.DueDate = ts
			break
		}
		due, problem = line, "Enter a date like 2025-01-15 09:00."
	}

	pri := strings.ToLower(string(d.Priority))
	problem = errs.For("priority")
	for {
		line, err := r.prompt("Priority (low/medium/high)", pri, problem)
		if err != nil {
			return d, err
		}
		p, perr := reminder.ParsePriority(line)
		if perr == nil {
			d.Priority = p
			break
		}
		pri, problem = line, perr.Error()
	}

	return d, nil
}

// prompt reads one field. problem, when set, is printed above it.
func (r *REPL) prompt(label, value, problem string) (string, error) {
	if problem != "" {
		r.println(r.formatter.FormatFieldError(problem))
	}
	r.rl.SetPrompt(r.formatter.FormatFieldPrompt(label))
	line, err := r.rl.ReadlineWithDefault(value)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (r *REPL) confirm(question string) (bool, error) {
	r.rl.SetPrompt(r.formatter.FormatFieldPrompt(question + " [y/N]"))
	line, err := r.rl.Readline()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// confirmDelete asks before deleting. Declining makes no service call.
func (r *REPL) confirmDelete(ctx context.Context, id int64) error {
	name := fmt.Sprintf("reminder #%d", id)
	if rem, ok := r.ctrl.Lookup(id); ok {
		name = fmt.Sprintf("%q", rem.Title)
	}

	r.enterForm()
	defer r.leaveForm()

	r.ctrl.RequestDelete(id)
	yes, err := r.confirm("Delete " + name + "?")
	if err != nil || !yes {
		r.ctrl.CancelDelete()
		r.displaySystem("Nothing deleted.")
		return nil
	}

	if err := r.ctrl.ConfirmDelete(ctx); err != nil {
		// the notification reports the failure; nothing to retry from here
		r.ctrl.CancelDelete()
	}
	return nil
}
