package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

const linePrompt = "sheet> "

// runLineREPL is the plain front end: one line in, one answer out, with
// history kept across sessions.
func runLineREPL(sess *session, out io.Writer) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetWordCompleter(func(input string, pos int) (string, []string, string) {
		head := input[:pos]
		start := strings.LastIndexAny(head, " (=,+-*/<>&|") + 1
		return head[:start], completions(head[start:]), input[pos:]
	})

	historyFile := filepath.Join(os.TempDir(), ".vibesheet_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintf(out, "vibesheet %s\n", versionString())
	fmt.Fprintln(out, "Type ':help' for commands, ':quit' or Ctrl+D to exit")

	for {
		input, err := line.Prompt(linePrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(out, "^C")
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out, "\nGoodbye!")
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		output, isErr, quit := runLine(sess, input)
		if quit {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
		if isErr {
			fmt.Fprintln(out, errorStyle.Render("✗ "+output))
		} else {
			fmt.Fprintln(out, resultStyle.Render("→ "+output))
		}
	}
}

// runLine answers one input line of the plain REPL.
func runLine(sess *session, input string) (output string, isErr, quit bool) {
	if !strings.HasPrefix(input, ":") {
		output, isErr = sess.execute(input)
		return output, isErr, false
	}
	switch cmd := strings.Fields(input)[0]; cmd {
	case ":quit", ":q":
		return "", false, true
	case ":help", ":h":
		var lines []string
		for _, h := range replHelp {
			lines = append(lines, fmt.Sprintf("%-10s  %s", h.key, h.desc))
		}
		return strings.Join(lines, "\n"), false, false
	case ":grid", ":g":
		return "\n" + sess.renderGrid(), false, false
	default:
		output, isErr, handled := sess.command(input)
		if !handled {
			return fmt.Sprintf("Unknown command: %s", cmd), true, false
		}
		return output, isErr, false
	}
}
