package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"golang.org/x/term"

	"github.com/notexe/reminder-dash/internal/reminder"
)

// TerminalWidth returns the width of stdout, or DefaultWidth when stdout
// is not a terminal.
func TerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	return w
}

// RenderMarkdown formats markdown for the terminal. On renderer failure
// the input is returned unchanged.
func (f *Formatter) RenderMarkdown(md string) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}

	style := glamour.WithStandardStyle(styles.AsciiStyle)
	if f.colored {
		style = glamour.WithAutoStyle()
	}
	renderer, err := glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(f.width-cardIndent),
	)
	if err != nil {
		return md
	}

	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(rendered, "\n")
}

// FormatDetail renders a single reminder in full, with its description
// as markdown.
func (f *Formatter) FormatDetail(r reminder.Reminder) string {
	field := func(label, value string) string {
		return f.render(DimStyle, fmt.Sprintf("%-9s ", label)) + value
	}

	status := "Active"
	if r.Completed {
		status = "Completed"
	}

	lines := []string{
		f.render(HeaderStyle, r.Title),
		field("ID", fmt.Sprintf("%d", r.ID)),
		field("Priority", f.FormatPriority(r.Priority)),
		field("Status", status),
		field("Due", r.DueDate.Format(dueLayout)),
		field("When", f.FormatWhen(r)),
	}
	if !r.CreatedAt.IsZero() {
		lines = append(lines, field("Created", r.CreatedAt.Format(dueLayout)))
	}
	if !r.UpdatedAt.IsZero() {
		lines = append(lines, field("Updated", r.UpdatedAt.Format(dueLayout)))
	}
	if desc := f.RenderMarkdown(r.Description); desc != "" {
		lines = append(lines, "", desc)
	}
	return strings.Join(lines, "\n")
}
