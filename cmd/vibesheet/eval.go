package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fsnotify/fsnotify"
	"github.com/mgomes/vibesheet/formula"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval [flags] workbook.yaml",
	Short: "Evaluate a workbook and print its cells.",
	Long: `Load every cell of a YAML workbook into a fresh sheet and print what each
cell displays. With --watch the workbook is evaluated again whenever it changes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		cells := GetStringArray(cmd, "cell")
		if !GetFlag(cmd, "watch") {
			return evalWorkbook(out, args[0], cells)
		}
		return watchWorkbook(cmd.Context(), args[0], func() {
			if err := evalWorkbook(out, args[0], cells); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
		})
	},
}

// evalWorkbook prints a table of the requested cells, or of every non-empty
// cell when none are named.
func evalWorkbook(out io.Writer, path string, only []string) error {
	wb, err := readWorkbook(path)
	if err != nil {
		return err
	}
	sheet, err := newSheet()
	if err != nil {
		return err
	}
	if err := wb.load(sheet); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	var cells []formula.Cell
	if len(only) == 0 {
		for cell := range sheet.Cells() {
			cells = append(cells, cell)
		}
	} else {
		for _, name := range only {
			cell, err := sheet.CellByName(name)
			if err != nil {
				return err
			}
			cells = append(cells, cell)
		}
	}
	fmt.Fprintln(out, renderCellTable(sheet, cells))
	return nil
}

func renderCellTable(sheet *formula.Sheet, cells []formula.Cell) string {
	failed := make(map[int]bool)
	rows := make([][]string, 0, len(cells))
	for i, cell := range cells {
		input := sheet.Text(cell)
		value := input
		if v, ok := sheet.ValueAt(cell); ok && v.Kind() == formula.KindFormula {
			res := sheet.ResultAt(cell)
			value = res.String()
			failed[i] = !res.IsSuccess()
		}
		rows = append(rows, []string{cell.String(), input, value})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers("Cell", "Input", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 2 && failed[row]:
				return errorStyle.Padding(0, 1)
			case col == 0:
				return helpKeyStyle.Padding(0, 1)
			default:
				return lipgloss.NewStyle().Padding(0, 1)
			}
		}).
		String()
}

// watchWorkbook calls run once, then again after each write to path, until
// ctx is done.
func watchWorkbook(ctx context.Context, path string, run func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve workbook path: %w", err)
	}
	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	log.WithField("path", abs).Debug("watching workbook")

	run()

	const debounce = 100 * time.Millisecond
	var lastChange time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if time.Since(lastChange) < debounce {
				continue
			}
			lastChange = time.Now()
			log.WithField("path", abs).Debug("workbook changed")
			run()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watcher error")
		}
	}
}

func init() {
	evalCmd.Flags().StringArray("cell", nil, "only print this cell (repeatable)")
	evalCmd.Flags().Bool("watch", false, "re-evaluate whenever the workbook changes")
	rootCmd.AddCommand(evalCmd)
}
