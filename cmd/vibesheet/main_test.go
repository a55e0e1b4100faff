package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	want := map[string]bool{"eval": false, "check": false, "fmt": false, "repl": false, "version": false}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("subcommand %q not registered", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"version", "--config", writeFile(t, "vibesheet.yaml", "rows: 10\n")})
	defer func() {
		rootCmd.SetArgs(nil)
		settings = Defaults()
		log.SetOutput(os.Stderr)
	}()

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "vibesheet ") {
		t.Fatalf("unexpected version output: %q", out.String())
	}
	if settings.Rows != 10 {
		t.Fatalf("expected config file to be applied, got %d rows", settings.Rows)
	}
}

func TestCheckFormulas(t *testing.T) {
	var out bytes.Buffer
	if err := checkFormulas(&out, []string{"=A0+1", "sum(A0:B2)"}); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out.String(), "=A0 + 1") || !strings.Contains(out.String(), "=sum(A0:B2)") {
		t.Fatalf("unexpected check output: %q", out.String())
	}
}

func TestCheckFormulasReportsParseErrors(t *testing.T) {
	var out bytes.Buffer
	err := checkFormulas(&out, []string{"=1 +", "=2"})
	if err == nil {
		t.Fatalf("expected check failure")
	}
	if !strings.Contains(err.Error(), "1 of 2 formula(s) failed") {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "parse error at column") {
		t.Fatalf("expected positioned parse error, got %q", out.String())
	}
}

func TestEvalWorkbookPrintsEveryCell(t *testing.T) {
	path := writeFile(t, "book.yaml", `cells:
  A0: "1"
  B0: "=A0 * 2"
  C0: "=C0"
`)
	var out bytes.Buffer
	if err := evalWorkbook(&out, path, nil); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Cell", "Input", "Value", "A0", "=A0 * 2", "Circular dependency"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
}

func TestEvalWorkbookSelectedCells(t *testing.T) {
	path := writeFile(t, "book.yaml", `cells:
  A0: 2
  A1: 3
  A2: "=sum(A0:A1)"
`)
	var out bytes.Buffer
	if err := evalWorkbook(&out, path, []string{"A2"}); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "=sum(A0:A1)") || !strings.Contains(got, " 5 ") {
		t.Fatalf("unexpected output:\n%s", got)
	}
	if strings.Contains(got, "│ A0 ") {
		t.Fatalf("only the selected cell should be listed:\n%s", got)
	}
}

func TestEvalWorkbookRejectsUnknownCell(t *testing.T) {
	path := writeFile(t, "book.yaml", "cells:\n  ZZZ9999: 1\n")
	err := evalWorkbook(&bytes.Buffer{}, path, nil)
	if err == nil || !strings.Contains(err.Error(), "cell ZZZ9999") {
		t.Fatalf("expected unknown cell error, got %v", err)
	}
}

func TestParseWorkbookErrors(t *testing.T) {
	cases := map[string]string{
		"- 1\n":                      "workbook must be a mapping",
		"cells: [1]\n":               "cells must be a mapping",
		"cells:\n  A0: [1]\n":        "must hold a scalar",
		"cells:\n  A0: 1\n  a0: 2\n": "already defined",
	}
	for source, want := range cases {
		_, err := parseWorkbook([]byte(source))
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Fatalf("%q: expected %q, got %v", source, want, err)
		}
	}
}

func TestFmtWorkbookCanonicalizesFormulas(t *testing.T) {
	path := writeFile(t, "book.yaml", "# totals\ncells:\n  A0: 1\n  B0: \"=A0*2\"\n  C0: \"=1 +\"\n")
	if err := fmtWorkbooks(&bytes.Buffer{}, []string{path}, true, false); err != nil {
		t.Fatalf("fmt -w failed: %v", err)
	}
	updated, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read formatted file: %v", err)
	}
	got := string(updated)
	if !strings.Contains(got, "=A0 * 2") || !strings.Contains(got, "=1 +") || !strings.Contains(got, "# totals") {
		t.Fatalf("unexpected formatted workbook:\n%s", got)
	}
	if err := fmtWorkbooks(&bytes.Buffer{}, []string{path}, false, true); err != nil {
		t.Fatalf("expected no formatting diffs after write, got %v", err)
	}
}

func TestFmtWorkbookCheckDetectsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "book.yml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}
	if err := os.WriteFile(path, []byte("cells:\n  A0: \"=(1+2)*3\"\n"), 0o644); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("=1+1"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	var out bytes.Buffer
	err := fmtWorkbooks(&out, []string{dir}, false, true)
	if err == nil || !strings.Contains(err.Error(), "1 file(s) need formatting") {
		t.Fatalf("unexpected check error: %v", err)
	}
	if !strings.Contains(out.String(), "book.yml") {
		t.Fatalf("expected changed file to be listed, got %q", out.String())
	}
}

func TestFmtWorkbookLeavesFormattedSourceAlone(t *testing.T) {
	source := []byte("cells:\n    A0:   1   # odd spacing\n")
	got, err := formatWorkbook(source)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if !bytes.Equal(got, source) {
		t.Fatalf("expected unchanged source, got %q", got)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
