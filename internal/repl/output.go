package repl

import (
	"fmt"
)

// write prints s and a newline above the prompt. r.mu must be held.
func (r *REPL) write(s string) {
	fmt.Fprintln(r.rl.Stdout(), s)
}

func (r *REPL) println(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.write(s)
}

func (r *REPL) displayError(err error) {
	r.println(r.formatter.FormatError(err))
}

func (r *REPL) displayWelcome() {
	r.println(r.formatter.FormatWelcome(r.config.API.BaseURL))
}

func (r *REPL) displayHelp() {
	r.println(r.formatter.FormatHelp())
}

func (r *REPL) displayInfo(msg string) {
	r.println(r.formatter.FormatInfo(msg))
}

func (r *REPL) displaySystem(msg string) {
	r.println(r.formatter.FormatSystem(msg))
}
