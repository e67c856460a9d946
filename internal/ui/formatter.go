package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	SystemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("183")). // Soft purple
			Italic(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // Medium gray
			Italic(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")). // Soft blue border
			Padding(0, 1)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")). // Green
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")). // Yellow
			Bold(true)

	AccentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("147")) // Light purple
)

// DefaultWidth is used when the terminal size is unknown.
const DefaultWidth = 80

// Options configures a Formatter.
type Options struct {
	Colored bool
	ShowIDs bool
	// Width is the render width in columns; 0 means DefaultWidth.
	Width int
	// Now is used for relative due dates; nil means time.Now.
	Now func() time.Time
}

type Formatter struct {
	colored bool
	showIDs bool
	width   int
	now     func() time.Time
}

func NewFormatter(opts Options) *Formatter {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Formatter{
		colored: opts.Colored,
		showIDs: opts.ShowIDs,
		width:   opts.Width,
		now:     opts.Now,
	}
}

// Colored reports whether output carries ANSI styling.
func (f *Formatter) Colored() bool {
	return f.colored
}

// Now is the formatter's clock.
func (f *Formatter) Now() time.Time {
	return f.now()
}

func (f *Formatter) render(s lipgloss.Style, text string) string {
	if !f.colored {
		return text
	}
	return s.Render(text)
}

func (f *Formatter) FormatError(err error) string {
	return f.render(ErrorStyle, "Error: ") + err.Error()
}

func (f *Formatter) FormatInfo(info string) string {
	return f.render(InfoStyle, info)
}

func (f *Formatter) FormatSystem(msg string) string {
	return f.render(SystemStyle, msg)
}

func (f *Formatter) FormatStatus(msg string) string {
	return f.render(StatusStyle, msg)
}

func (f *Formatter) FormatSuccess(msg string) string {
	return f.render(SuccessStyle, msg)
}

// FormatFieldError renders a validation message under a form field.
func (f *Formatter) FormatFieldError(msg string) string {
	return "  " + f.render(ErrorStyle, "↳ "+msg)
}

func (f *Formatter) FormatWelcome(baseURL string) string {
	if f.colored {
		titleStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

		subtitleStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

		labelStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

		valueStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

		body := strings.Join([]string{
			titleStyle.Render("Reminders • Dashboard"),
			labelStyle.Render("API: ") + valueStyle.Render(baseURL),
			"",
			subtitleStyle.Render("Type /help for commands"),
		}, "\n")

		return "\n" + BoxStyle.Render(body) + "\n"
	}

	lines := []string{
		"",
		"Reminders • Dashboard",
		fmt.Sprintf("API: %s", baseURL),
		"Type /help for commands",
		"",
	}
	return strings.Join(lines, "\n")
}

type helpEntry struct {
	cmd, desc string
}

var helpSections = []struct {
	title   string
	entries []helpEntry
}{
	{"Browse", []helpEntry{
		{"/search <text>", "Filter by title (empty clears)"},
		{"/priority [low|medium|high|all]", "Filter by priority, or pick one"},
		{"/tab [active|completed]", "Switch tab, or pick one"},
		{"/page <n>", "Go to page n"},
		{"/next, /prev", "Next or previous page"},
		{"/refresh", "Reload the current page"},
	}},
	{"Reminders", []helpEntry{
		{"/add", "Create a reminder"},
		{"/edit <id>", "Edit a reminder"},
		{"/done <id>", "Mark a reminder complete"},
		{"/rm <id>", "Delete a reminder"},
		{"/show <id>", "Show a reminder in full"},
	}},
	{"General", []helpEntry{
		{"/dismiss", "Hide the notification"},
		{"/help", "Show this help"},
		{"/quit", "Exit"},
	}},
}

func (f *Formatter) FormatHelp() string {
	if f.colored {
		cmdStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

		descStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

		sectionStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("147")).
			Bold(true)

		dimStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

		lines := []string{"", HeaderStyle.Render("Commands")}
		for _, s := range helpSections {
			lines = append(lines, "", sectionStyle.Render(s.title))
			for _, e := range s.entries {
				lines = append(lines, "  "+cmdStyle.Render(e.cmd)+" "+descStyle.Render(e.desc))
			}
		}
		lines = append(lines,
			"",
			HeaderStyle.Render("Tips"),
			dimStyle.Render("  Type without a leading / to search as you type"),
			dimStyle.Render("  Ctrl+C or Ctrl+D to exit"),
			"",
		)
		return strings.Join(lines, "\n")
	}

	lines := []string{"", "Commands:"}
	for _, s := range helpSections {
		for _, e := range s.entries {
			lines = append(lines, fmt.Sprintf("  %-34s - %s", e.cmd, e.desc))
		}
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// FormatPrompt returns a styled input prompt
func (f *Formatter) FormatPrompt() string {
	if f.colored {
		promptStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("62"))
		arrowStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")).
			Bold(true)
		return promptStyle.Render("reminders") + arrowStyle.Render(" > ")
	}
	return "reminders > "
}

// FormatFieldPrompt is the prompt for one form field.
func (f *Formatter) FormatFieldPrompt(label string) string {
	return f.render(AccentStyle, label) + f.render(DimStyle, ": ")
}

// FormatBox wraps content in a styled box
func (f *Formatter) FormatBox(title, content string) string {
	if f.colored {
		return HeaderStyle.Render(title) + "\n" + BoxStyle.Render(content)
	}
	return title + "\n" + content
}
