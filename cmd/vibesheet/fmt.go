package main

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/mgomes/vibesheet/formula"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] path...",
	Short: "Rewrite workbook formulas in canonical form.",
	Long: `Rewrite every formula of the given workbooks (or of every .yaml/.yml file
below the given directories) the way the parser renders it. Formulas that
do not parse are left untouched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmtWorkbooks(cmd.OutOrStdout(), args, GetFlag(cmd, "write"), GetFlag(cmd, "check"))
	},
}

func fmtWorkbooks(out io.Writer, targets []string, write, check bool) error {
	files, err := collectWorkbooks(targets)
	if err != nil {
		return err
	}

	changedCount := 0
	for _, path := range files {
		original, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		formatted, err := formatWorkbook(original)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		changed := !bytes.Equal(formatted, original)
		if changed {
			changedCount++
		}

		switch {
		case write && changed:
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("stat %s: %w", path, err)
			}
			if err := os.WriteFile(path, formatted, info.Mode().Perm()); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			log.WithField("path", path).Debug("formatted workbook")
		case check && changed:
			fmt.Fprintln(out, path)
		case !write && !check:
			out.Write(formatted)
		}
	}

	if check && changedCount > 0 {
		return fmt.Errorf("vibesheet fmt: %d file(s) need formatting", changedCount)
	}
	return nil
}

// formatWorkbook canonicalizes the formulas of one workbook document. A
// document without formula changes is returned byte for byte.
func formatWorkbook(source []byte) ([]byte, error) {
	wb, err := parseWorkbook(source)
	if err != nil {
		return nil, err
	}
	changed := false
	for _, c := range wb.Cells {
		if !formula.IsFormulaText(c.Input) {
			continue
		}
		f := formula.Parse(c.Input)
		if f.Failed() {
			log.WithField("cell", c.Name).Debugf("skipping formula that does not parse: %s", f.ParseError().Msg)
			continue
		}
		canonical := "=" + f.Expr().String()
		if canonical != c.Input {
			c.node.Value = canonical
			changed = true
		}
	}
	if !changed {
		return source, nil
	}
	return wb.encode()
}

func collectWorkbooks(targets []string) ([]string, error) {
	seen := make(map[string]struct{})
	files := make([]string, 0)
	addFile := func(path string) {
		if ext := filepath.Ext(path); ext != ".yaml" && ext != ".yml" {
			return
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return
		}
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		files = append(files, abs)
	}

	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", target, err)
		}
		if !info.IsDir() {
			addFile(target)
			continue
		}
		err = filepath.WalkDir(target, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if entry.IsDir() {
				return nil
			}
			addFile(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", target, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

func init() {
	fmtCmd.Flags().BoolP("write", "w", false, "write result to the workbook instead of stdout")
	fmtCmd.Flags().Bool("check", false, "fail if any workbook needs formatting")
	rootCmd.AddCommand(fmtCmd)
}
