package repl

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
)

// listener is called by readline on every key press.
type listener func(line []rune, pos int, key rune) ([]rune, int, bool)

func (r *REPL) readInput() (string, error) {
	line, err := r.rl.Readline()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

func parseCommand(input string) (bool, string, string) {
	if !strings.HasPrefix(input, "/") {
		return false, "", ""
	}

	parts := strings.SplitN(input, " ", 2)
	command := strings.ToLower(parts[0])

	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	return true, command, args
}

func parseID(args string) (int64, error) {
	if args == "" {
		return 0, errors.New("missing reminder id")
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.Fields(args)[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid reminder id %q", args)
	}
	return id, nil
}

// listen feeds the prompt line to the search as it is typed. Slash
// commands and keys that do not edit the line are ignored.
func (r *REPL) listen(line []rune, _ int, key rune) ([]rune, int, bool) {
	switch key {
	case 0, readline.CharEnter, readline.CharCtrlJ, readline.CharInterrupt, readline.CharTab:
		return nil, 0, false
	}
	if !r.live() {
		return nil, 0, false
	}

	text := strings.TrimSpace(string(line))
	if strings.HasPrefix(text, "/") {
		return nil, 0, false
	}
	r.search(text)
	return nil, 0, false
}

func setupReadline(listen listener) (lineReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:              "reminders > ",
		HistoryFile:         "",
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
		Listener:            readline.FuncListener(listen),
	})
	if err != nil {
		return nil, err
	}
	return rl, nil
}

func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func isEOF(err error) bool {
	return err == io.EOF || err == readline.ErrInterrupt
}
