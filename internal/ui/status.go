package ui

import (
	"fmt"
	"io"
)

// StatusLine is a single overwritable line on a terminal, used for
// progress through batch operations. A disabled line writes nothing.
type StatusLine struct {
	formatter *Formatter
	out       io.Writer
	enabled   bool
	shown     bool
}

func NewStatusLine(formatter *Formatter, out io.Writer, enabled bool) *StatusLine {
	return &StatusLine{formatter: formatter, out: out, enabled: enabled}
}

// Step shows "[i/n] msg", replacing the previous status.
func (s *StatusLine) Step(i, n int, msg string) {
	s.Show(fmt.Sprintf("[%d/%d] %s", i, n, msg))
}

func (s *StatusLine) Show(message string) {
	if !s.enabled {
		return
	}
	fmt.Fprint(s.out, "\r\033[K"+s.formatter.FormatStatus(message))
	s.shown = true
}

// Clear erases the line if anything is on it.
func (s *StatusLine) Clear() {
	if !s.enabled || !s.shown {
		return
	}
	fmt.Fprint(s.out, "\r\033[K")
	s.shown = false
}
