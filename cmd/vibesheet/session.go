package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mgomes/vibesheet/formula"
)

// session is the sheet behind both REPL front ends. Every input line is one
// of: a cell assignment "A0 = text", a cell name, a ":" command, or an
// expression evaluated against the sheet.
type session struct {
	sheet *formula.Sheet
}

func newSession() (*session, error) {
	sheet, err := newSheet()
	if err != nil {
		return nil, err
	}
	return &session{sheet: sheet}, nil
}

// execute runs one non-command input line.
func (s *session) execute(input string) (string, bool) {
	if name, text, ok := s.splitAssignment(input); ok {
		return s.assign(name, text)
	}
	if cell, err := s.sheet.CellByName(input); err == nil {
		return s.describe(cell), false
	}
	res := s.sheet.Eval(input)
	if !res.IsSuccess() {
		if f := formula.Parse(input); f.Failed() {
			return f.ParseError().Error(), true
		}
		return res.Err(), true
	}
	return res.String(), false
}

// splitAssignment recognizes "A0 = text". An "==" comparison is never an
// assignment.
func (s *session) splitAssignment(input string) (string, string, bool) {
	idx := strings.Index(input, "=")
	if idx <= 0 || strings.HasPrefix(input[idx:], "==") || input[idx-1] == '!' ||
		input[idx-1] == '<' || input[idx-1] == '>' {
		return "", "", false
	}
	name := strings.TrimSpace(input[:idx])
	if _, err := s.sheet.CellByName(name); err != nil {
		return "", "", false
	}
	return name, strings.TrimSpace(input[idx+1:]), true
}

func (s *session) assign(name, text string) (string, bool) {
	cell, err := s.sheet.CellByName(name)
	if err != nil {
		return err.Error(), true
	}
	if err := s.sheet.Set(cell, text); err != nil {
		return err.Error(), true
	}
	v, ok := s.sheet.ValueAt(cell)
	if !ok {
		return cell.String() + " cleared", false
	}
	if v.Kind() == formula.KindFormula && v.Formula().Failed() {
		return v.Formula().ParseError().Error(), true
	}
	res := s.sheet.ResultAt(cell)
	return cell.String() + " = " + res.String(), !res.IsSuccess()
}

func (s *session) describe(cell formula.Cell) string {
	text := s.sheet.Text(cell)
	if text == "" {
		return cell.String() + " is empty"
	}
	display := s.sheet.Display(cell)
	if display == text {
		return cell.String() + ": " + text
	}
	return fmt.Sprintf("%s: %s → %s", cell, text, display)
}

// command runs the sheet-level ":" commands shared by both front ends.
// handled is false for commands the caller owns.
func (s *session) command(input string) (output string, isErr, handled bool) {
	parts := strings.Fields(input)
	switch parts[0] {
	case ":copy", ":cp":
		if len(parts) != 3 {
			return "usage: :copy <from> <to>", true, true
		}
		src, err := s.sheet.CellByName(parts[1])
		if err != nil {
			return err.Error(), true, true
		}
		dst, err := s.sheet.CellByName(parts[2])
		if err != nil {
			return err.Error(), true, true
		}
		if err := s.sheet.Paste(src, dst); err != nil {
			return err.Error(), true, true
		}
		return s.describe(dst), false, true
	case ":clear", ":c":
		if len(parts) != 2 {
			return "usage: :clear <cell>", true, true
		}
		cell, err := s.sheet.CellByName(parts[1])
		if err != nil {
			return err.Error(), true, true
		}
		if err := s.sheet.Clear(cell); err != nil {
			return err.Error(), true, true
		}
		return cell.String() + " cleared", false, true
	case ":cells":
		var lines []string
		for cell := range s.sheet.Cells() {
			lines = append(lines, s.describe(cell))
		}
		if len(lines) == 0 {
			return "Sheet is empty", false, true
		}
		return strings.Join(lines, "\n"), false, true
	}
	return "", false, false
}

// completions lists cell commands, keywords and builtins that extend word.
func completions(word string) []string {
	candidates := append([]string{"if", "then", "else", "true", "false"}, formula.BuiltinNames()...)
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, word) {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// renderGrid draws the used part of the sheet, from A0 to the furthest
// non-empty row and column.
func (s *session) renderGrid() string {
	lastRow, lastCol := -1, -1
	for cell := range s.sheet.Cells() {
		lastRow = max(lastRow, cell.Row)
		lastCol = max(lastCol, cell.Column)
	}
	if lastRow < 0 {
		return mutedStyle.Render("Sheet is empty")
	}

	headers := []string{""}
	for col := 0; col <= lastCol; col++ {
		headers = append(headers, formula.ColumnName(col))
	}
	rows := make([][]string, 0, lastRow+1)
	for row := 0; row <= lastRow; row++ {
		line := []string{fmt.Sprint(row)}
		for col := 0; col <= lastCol; col++ {
			line = append(line, s.sheet.Display(formula.Cell{Row: row, Column: col}))
		}
		rows = append(rows, line)
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col == 0 {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		String()
}
