package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/notexe/reminder-dash/internal/reminder"
)

// ErrCancelled is returned when the user aborts a selection.
var ErrCancelled = errors.New("cancelled")

// SelectorOption represents a single option in the selector
type SelectorOption struct {
	Label       string
	Description string
	// Value is returned for the option; Label is used when empty.
	Value string
}

func (o SelectorOption) value() string {
	if o.Value != "" {
		return o.Value
	}
	return o.Label
}

// Selector provides an interactive arrow-key navigable menu
type Selector struct {
	question string
	options  []SelectorOption
	selected int
	colored  bool

	in  *os.File
	out io.Writer

	cursorStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	optionStyle   lipgloss.Style
	dimStyle      lipgloss.Style
	questionStyle lipgloss.Style
	hintStyle     lipgloss.Style
}

// NewSelector creates a new interactive selector on stdin/stdout.
func NewSelector(question string, options []SelectorOption, colored bool) *Selector {
	return &Selector{
		question: question,
		options:  options,
		colored:  colored,
		in:       os.Stdin,
		out:      os.Stdout,

		cursorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
		selectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true),
		optionStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		dimStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		questionStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true),
		hintStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
	}
}

// PrioritySelector offers the three priorities plus "All". current is
// preselected.
func PrioritySelector(current reminder.Priority, colored bool) *Selector {
	options := []SelectorOption{{Label: "All", Description: "no priority filter", Value: "all"}}
	for _, p := range reminder.Priorities {
		pr := p.Present()
		options = append(options, SelectorOption{Label: pr.Icon + " " + pr.Label, Value: string(p)})
	}

	s := NewSelector("Filter by priority", options, colored)
	s.preselect(string(current))
	return s
}

// TabSelector offers the active and completed tabs.
func TabSelector(current reminder.Tab, colored bool) *Selector {
	s := NewSelector("Show reminders", []SelectorOption{
		{Label: "Active", Value: string(reminder.TabActive)},
		{Label: "Completed", Value: string(reminder.TabCompleted)},
	}, colored)
	s.preselect(string(current))
	return s
}

func (s *Selector) preselect(value string) {
	for i, o := range s.options {
		if o.value() == value {
			s.selected = i
			return
		}
	}
}

// Run displays the selector and returns the value of the chosen option.
func (s *Selector) Run() (string, error) {
	if len(s.options) == 0 {
		return "", errors.New("no options")
	}

	fd := int(s.in.Fd())
	if !term.IsTerminal(fd) {
		return s.runSimple(s.in)
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return s.runSimple(s.in)
	}
	defer func() {
		term.Restore(fd, oldState)
		fmt.Fprint(s.out, "\033[?25h") // Show cursor
	}()

	fmt.Fprint(s.out, "\033[?25l") // Hide cursor

	totalLines := len(s.options) + 3
	s.printMenu()

	reader := bufio.NewReader(s.in)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return "", err
		}

		selected := false
		switch b {
		case 13, 10, ' ': // Enter, Space
			selected = true
		case 3, 'q': // Ctrl+C
			s.clearMenu(totalLines)
			return "", ErrCancelled
		case 'j':
			s.moveDown()
		case 'k':
			s.moveUp()
		case 27: // Escape sequence
			b2, _ := reader.ReadByte()
			if b2 == '[' {
				b3, _ := reader.ReadByte()
				switch b3 {
				case 'A':
					s.moveUp()
				case 'B':
					s.moveDown()
				}
			}
		default:
			if b >= '1' && b <= '9' {
				if idx := int(b - '1'); idx < len(s.options) {
					s.selected = idx
					selected = true
				}
			}
		}

		s.clearMenu(totalLines)
		if selected {
			return s.options[s.selected].value(), nil
		}
		s.printMenu()
	}
}

func (s *Selector) printMenu() {
	var sb strings.Builder

	if s.colored {
		sb.WriteString(s.questionStyle.Render(s.question))
	} else {
		sb.WriteString(s.question)
	}
	sb.WriteString("\r\n")

	hint := "[j/k or arrows] move  [enter] select  [q] cancel"
	if s.colored {
		sb.WriteString(s.hintStyle.Render(hint))
	} else {
		sb.WriteString(hint)
	}
	sb.WriteString("\r\n\r\n")

	for i, opt := range s.options {
		cursor := "  "
		if i == s.selected {
			cursor = "> "
		}

		label := opt.Label
		if opt.Description != "" {
			label += " - " + opt.Description
		}

		switch {
		case !s.colored:
			sb.WriteString(cursor + label)
		case i == s.selected:
			sb.WriteString(s.cursorStyle.Render(cursor))
			sb.WriteString(s.selectedStyle.Render(label))
		default:
			sb.WriteString(s.dimStyle.Render(cursor))
			sb.WriteString(s.optionStyle.Render(label))
		}
		sb.WriteString("\r\n")
	}

	fmt.Fprint(s.out, sb.String())
}

func (s *Selector) clearMenu(lines int) {
	for i := 0; i < lines; i++ {
		fmt.Fprint(s.out, "\033[A\033[2K\r")
	}
}

// runSimple is the numbered-list fallback for non-terminals. Blank input
// keeps the preselected option.
func (s *Selector) runSimple(in io.Reader) (string, error) {
	fmt.Fprintln(s.out, s.question)
	for i, opt := range s.options {
		label := opt.Label
		if opt.Description != "" {
			label += " - " + opt.Description
		}
		fmt.Fprintf(s.out, "  [%d] %s\n", i+1, label)
	}
	fmt.Fprint(s.out, "Enter number: ")

	input, err := bufio.NewReader(in).ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		if err != nil && err != io.EOF {
			return "", err
		}
		return s.options[s.selected].value(), nil
	}

	var idx int
	if _, scanErr := fmt.Sscanf(input, "%d", &idx); scanErr != nil || idx < 1 || idx > len(s.options) {
		return "", fmt.Errorf("invalid choice %q", input)
	}
	return s.options[idx-1].value(), nil
}

func (s *Selector) moveUp() {
	if s.selected > 0 {
		s.selected--
	} else {
		s.selected = len(s.options) - 1
	}
}

func (s *Selector) moveDown() {
	if s.selected < len(s.options)-1 {
		s.selected++
	} else {
		s.selected = 0
	}
}
