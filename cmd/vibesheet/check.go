package main

import (
	"fmt"
	"io"

	"github.com/mgomes/vibesheet/formula"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check formula...",
	Short: "Parse formulas and report syntax errors.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkFormulas(cmd.OutOrStdout(), args)
	},
}

// checkFormulas prints the canonical form of every formula that parses and
// the positioned error of every one that does not.
func checkFormulas(out io.Writer, texts []string) error {
	failures := 0
	for _, text := range texts {
		f := formula.Parse(text)
		if perr := f.ParseError(); perr != nil {
			failures++
			fmt.Fprintln(out, errorStyle.Render("✗ "+f.Text()))
			fmt.Fprintln(out, perr.Error())
			continue
		}
		fmt.Fprintln(out, resultStyle.Render("✓ ="+f.Expr().String()))
	}
	if failures > 0 {
		return fmt.Errorf("check: %d of %d formula(s) failed to parse", failures, len(texts))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
