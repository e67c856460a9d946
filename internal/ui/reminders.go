package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/notexe/reminder-dash/internal/dashboard"
	"github.com/notexe/reminder-dash/internal/reminder"
)

const (
	cardIndent   = 2
	dueLayout    = "Mon Jan 2, 15:04"
	doneLayout   = "Jan 2"
	maxDescLines = 3
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	doneStyle  = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Strikethrough(true)
	tabOnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("81")).
			Bold(true).
			Padding(0, 1)
	tabOffStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
	groupStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)
)

// FormatPriority renders the priority badge, e.g. "▲ High".
func (f *Formatter) FormatPriority(p reminder.Priority) string {
	pr := p.Present()
	badge := pr.Icon + " " + pr.Label
	if !f.colored {
		return badge
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(pr.Color)).Bold(true).Render(badge)
}

// FormatWhen describes the due date relative to now, or the completion
// date for completed reminders.
func (f *Formatter) FormatWhen(r reminder.Reminder) string {
	if r.Completed {
		if r.UpdatedAt.IsZero() {
			return f.render(SuccessStyle, "Completed")
		}
		return f.render(SuccessStyle, "Completed on "+r.UpdatedAt.Format(doneLayout))
	}
	if r.DueDate.IsZero() {
		return f.render(DimStyle, "no due date")
	}

	now := f.now()
	text := fmt.Sprintf("due %s (%s)", r.DueDate.Format(dueLayout), humanize.RelTime(r.DueDate.Time, now, "ago", "from now"))
	if r.DueDate.Before(now) {
		return f.render(ErrorStyle, text)
	}
	return f.render(StatusStyle, text)
}

// FormatCard renders one reminder as a few lines: a checkbox and title,
// the wrapped description, then the priority and due date.
func (f *Formatter) FormatCard(r reminder.Reminder) string {
	box := "○"
	if r.Completed {
		box = f.render(SuccessStyle, "✓")
	}

	id := ""
	if f.showIDs {
		id = f.render(DimStyle, fmt.Sprintf("#%d ", r.ID))
	}

	title := r.Title
	if f.colored {
		if r.Completed {
			title = doneStyle.Render(title)
		} else {
			title = titleStyle.Render(title)
		}
	}

	lines := []string{box + " " + id + title}
	if desc := strings.TrimSpace(r.Description); desc != "" {
		lines = append(lines, indent.String(f.render(DimStyle, f.wrapDescription(desc)), cardIndent))
	}
	lines = append(lines, strings.Repeat(" ", cardIndent)+f.FormatPriority(r.Priority)+f.render(DimStyle, " · ")+f.FormatWhen(r))
	return strings.Join(lines, "\n")
}

// wrapDescription wraps to the card width and keeps at most maxDescLines.
func (f *Formatter) wrapDescription(desc string) string {
	width := f.width - cardIndent
	if width < 10 {
		width = 10
	}
	lines := strings.Split(wordwrap.String(strings.Join(strings.Fields(desc), " "), width), "\n")
	if len(lines) > maxDescLines {
		lines = lines[:maxDescLines]
		lines[maxDescLines-1] = truncate.StringWithTail(lines[maxDescLines-1]+" …", uint(width), "…")
	}
	return strings.Join(lines, "\n")
}

// FormatTabs renders the active/completed switch with the current tab
// highlighted.
func (f *Formatter) FormatTabs(current reminder.Tab) string {
	tabs := []struct {
		tab   reminder.Tab
		label string
	}{
		{reminder.TabActive, "Active"},
		{reminder.TabCompleted, "Completed"},
	}

	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		switch {
		case f.colored && t.tab == current:
			parts = append(parts, tabOnStyle.Render(t.label))
		case f.colored:
			parts = append(parts, tabOffStyle.Render(t.label))
		case t.tab == current:
			parts = append(parts, "["+t.label+"]")
		default:
			parts = append(parts, " "+t.label+" ")
		}
	}
	return strings.Join(parts, " ")
}

// FormatGroupHeader renders a classifier bucket name.
func (f *Formatter) FormatGroupHeader(name string, n int) string {
	return f.render(groupStyle, strings.ToUpper(name)) + f.render(DimStyle, fmt.Sprintf(" (%d)", n))
}

// FormatPagination renders "Page 2 of 5 · 41 reminders".
func (f *Formatter) FormatPagination(page, totalPages, total int) string {
	noun := "reminders"
	if total == 1 {
		noun = "reminder"
	}
	return f.render(DimStyle, fmt.Sprintf("Page %d of %d · %d %s", page, totalPages, total, noun))
}

// FormatNotification renders the notification slot, or "" when hidden.
func (f *Formatter) FormatNotification(n dashboard.Notification) string {
	if !n.Visible {
		return ""
	}
	switch n.Severity {
	case dashboard.SeveritySuccess:
		return f.render(SuccessStyle, "✓ "+n.Message)
	case dashboard.SeverityWarning:
		return f.render(WarningStyle, "! "+n.Message)
	default:
		return f.render(ErrorStyle, "✗ "+n.Message)
	}
}

// FormatEmpty renders the empty-state message.
func (f *Formatter) FormatEmpty(e dashboard.EmptyState) string {
	switch e {
	case dashboard.EmptyNoData:
		return f.render(HeaderStyle, "No Reminders Yet!") + "\n" +
			f.render(StatusStyle, "Type /add to create your first reminder.")
	case dashboard.EmptyNoMatches:
		return f.render(HeaderStyle, "No matching reminders.") + "\n" +
			f.render(StatusStyle, "Try another search, priority or tab.")
	}
	return ""
}

func (f *Formatter) formatFilters(q dashboard.QueryState) string {
	var parts []string
	if q.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", q.Search))
	}
	if q.Priority != "" {
		parts = append(parts, "priority "+f.FormatPriority(q.Priority))
	}
	if len(parts) == 0 {
		return ""
	}
	return f.render(DimStyle, "Filtered by ") + strings.Join(parts, f.render(DimStyle, ", "))
}

// FormatView renders a full dashboard snapshot.
func (f *Formatter) FormatView(v dashboard.View) string {
	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	header := f.render(HeaderStyle, "Dashboard")
	if v.Layout == dashboard.LayoutTabs {
		header += "  " + f.FormatTabs(v.Query.Tab)
	}
	line(header)
	if filters := f.formatFilters(v.Query); filters != "" {
		line(filters)
	}
	line("")

	switch {
	case v.Status == dashboard.StatusError:
		line(f.render(ErrorStyle, v.Error))
		line(f.render(StatusStyle, "Type /refresh to retry."))
	case v.Status == dashboard.StatusLoading && len(v.Items) == 0:
		line(f.render(StatusStyle, "Loading reminders..."))
	case v.Empty != dashboard.EmptyNone:
		line(f.FormatEmpty(v.Empty))
	case v.Layout == dashboard.LayoutGrouped:
		for i, g := range v.Groups {
			if i > 0 {
				line("")
			}
			line(f.FormatGroupHeader(g.Name, len(g.Items)))
			for _, r := range g.Items {
				line(f.FormatCard(r))
			}
		}
	default:
		for i, r := range v.Items {
			if i > 0 {
				line("")
			}
			line(f.FormatCard(r))
		}
	}

	if v.Status != dashboard.StatusError && v.TotalPages > 0 {
		line("")
		line(f.FormatPagination(v.Query.Page, v.TotalPages, v.Total))
	}
	if v.Status == dashboard.StatusLoading && len(v.Items) > 0 {
		line(f.render(StatusStyle, "Refreshing..."))
	}
	if n := f.FormatNotification(v.Notification); n != "" {
		line("")
		line(n)
	}

	return strings.TrimRight(b.String(), "\n")
}
