package formula

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewSheetDefaultsAndValidation(t *testing.T) {
	s, err := NewSheet(Config{})
	if err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	if s.RowCount() != defaultRows || s.ColumnCount() != defaultColumns {
		t.Fatalf("unexpected default size %dx%d", s.RowCount(), s.ColumnCount())
	}
	if _, err := NewSheet(Config{Rows: -1}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSetClassifiesInput(t *testing.T) {
	s, _ := newTestSheet(t, Config{})
	set(t, s, "A0", "42")
	set(t, s, "A1", "TRUE")
	set(t, s, "A2", "hello")
	set(t, s, "A3", "=A0 * 2")
	set(t, s, "A4", "=1 +")

	cases := []struct {
		name    string
		kind    Kind
		display string
	}{
		{"A0", KindDouble, "42"},
		{"A1", KindBoolean, "true"},
		{"A2", KindString, "hello"},
		{"A3", KindFormula, "84"},
		{"A4", KindFormula, "Parsing error"},
	}
	for _, tc := range cases {
		cell := cellAt(t, s, tc.name)
		v, ok := s.ValueAt(cell)
		if !ok || v.Kind() != tc.kind {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.kind, v.Kind())
		}
		if got := s.Display(cell); got != tc.display {
			t.Fatalf("%s: expected display %q, got %q", tc.name, tc.display, got)
		}
	}
	if got := s.Text(cellAt(t, s, "A3")); got != "=A0 * 2" {
		t.Fatalf("unexpected formula text %q", got)
	}

	set(t, s, "A0", "")
	if _, ok := s.ValueAt(cellAt(t, s, "A0")); ok {
		t.Fatalf("expected A0 to be cleared")
	}
	if got := s.Display(cellAt(t, s, "A3")); got != "Cell A0 is uninitialized" {
		t.Fatalf("unexpected display %q", got)
	}
}

func TestSetOutOfBounds(t *testing.T) {
	s, _ := newTestSheet(t, Config{Rows: 2, Columns: 2})
	if err := s.Set(Cell{Row: 2, Column: 0}, "1"); !errors.Is(err, ErrCellOutOfBounds) {
		t.Fatalf("expected ErrCellOutOfBounds, got %v", err)
	}
	if _, err := s.CellByName("C0"); !errors.Is(err, ErrUnknownCell) {
		t.Fatalf("expected ErrUnknownCell, got %v", err)
	}
	if err := s.SetValue(Cell{}, NewRange(RangeValue{})); !errors.Is(err, ErrRangeNotStorable) {
		t.Fatalf("expected ErrRangeNotStorable, got %v", err)
	}
}

func TestResultAtPropagatesChanges(t *testing.T) {
	s, _ := newTestSheet(t, Config{})
	set(t, s, "A0", "1")
	set(t, s, "B0", "=A0 + 1")
	set(t, s, "C0", "=B0 * 10")
	expectDouble(t, s.ResultAt(cellAt(t, s, "C0")), 20)

	set(t, s, "A0", "4")
	expectDouble(t, s.ResultAt(cellAt(t, s, "C0")), 50)
}

func TestResultAtForEmptyAndLiteralCells(t *testing.T) {
	s, _ := newTestSheet(t, Config{})
	expectFailure(t, s.ResultAt(cellAt(t, s, "B3")), "Cell B3 is uninitialized")
	set(t, s, "B3", "7")
	expectDouble(t, s.ResultAt(cellAt(t, s, "B3")), 7)
}

func TestSelfReferenceIsCircular(t *testing.T) {
	s, _ := newTestSheet(t, Config{})
	set(t, s, "A0", "=A0 + 1")
	expectFailure(t, s.ResultAt(cellAt(t, s, "A0")), "Circular dependency")
}

func TestCycleMarksEveryMember(t *testing.T) {
	s, hook := newTestSheet(t, Config{})
	set(t, s, "A0", "=C0")
	set(t, s, "B0", "=A0")
	set(t, s, "C0", "=B0")
	set(t, s, "D0", "=C0")

	for _, name := range []string{"A0", "B0", "C0", "D0"} {
		expectFailure(t, s.ResultAt(cellAt(t, s, name)), "Circular dependency")
	}

	found := false
	for _, entry := range hook.AllEntries() {
		if entry.Message == "circular dependency detected" && entry.Level == logrus.DebugLevel {
			found = true
			chain, _ := entry.Data["chain"].(string)
			if strings.Count(chain, "->") != 3 {
				t.Fatalf("unexpected cycle chain %q", chain)
			}
		}
	}
	if !found {
		t.Fatalf("expected a cycle to be logged")
	}

	set(t, s, "C0", "42")
	for _, name := range []string{"A0", "B0", "C0", "D0"} {
		expectDouble(t, s.ResultAt(cellAt(t, s, name)), 42)
	}
}

func TestClearingCycleMemberLeavesOtherCyclesAlone(t *testing.T) {
	s, _ := newTestSheet(t, Config{})
	set(t, s, "A0", "=C0")
	set(t, s, "B0", "=A0")
	set(t, s, "C0", "=B0")
	set(t, s, "D0", "=C0")
	set(t, s, "E0", "=F0")
	set(t, s, "F0", "=E0")

	if err := s.Clear(cellAt(t, s, "C0")); err != nil {
		t.Fatalf("clear: %v", err)
	}
	for _, name := range []string{"A0", "B0", "D0"} {
		expectFailure(t, s.ResultAt(cellAt(t, s, name)), "Cell C0 is uninitialized")
	}
	for _, name := range []string{"E0", "F0"} {
		expectFailure(t, s.ResultAt(cellAt(t, s, name)), "Circular dependency")
	}
}

func TestCycleInsideRangeFold(t *testing.T) {
	s, _ := newTestSheet(t, Config{})
	set(t, s, "A0", "1")
	set(t, s, "B0", "=sum(A0:C0)")
	set(t, s, "C0", "2")
	expectFailure(t, s.ResultAt(cellAt(t, s, "B0")), "Circular dependency")
}

func TestDependencyDepthLimit(t *testing.T) {
	s, _ := newTestSheet(t, Config{Rows: 10, Columns: 1, MaxDepth: 5, Lazy: true})
	for row := 0; row < 9; row++ {
		if err := s.Set(Cell{Row: row, Column: 0}, "=A"+strconv.Itoa(row+1)); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	set(t, s, "A9", "1")
	expectFailure(t, s.ResultAt(cellAt(t, s, "A0")), "Dependency chain too deep (limit 5)")
	expectDouble(t, s.ResultAt(cellAt(t, s, "A5")), 1)
}

func TestLongChainWithinLimit(t *testing.T) {
	const rows = 2000
	s, _ := newTestSheet(t, Config{Rows: rows, Columns: 1, MaxDepth: rows, Lazy: true})
	for row := 0; row < rows-1; row++ {
		if err := s.Set(Cell{Row: row, Column: 0}, "=A"+strconv.Itoa(row+1)+" + 1"); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	set(t, s, "A1999", "0")
	expectDouble(t, s.ResultAt(Cell{}), rows-1)
}

func TestRecalculateAgreesWithFreshReadsNearDepthLimit(t *testing.T) {
	const rows = 20
	s, _ := newTestSheet(t, Config{Rows: rows, Columns: 1, MaxDepth: 10, Lazy: true})
	for row := 0; row < rows-1; row++ {
		if err := s.Set(Cell{Row: row, Column: 0}, "=A"+strconv.Itoa(row+1)+" + 1"); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	set(t, s, "A19", "0")
	s.Recalculate()

	for row := 0; row < rows-1; row++ {
		cell := Cell{Row: row, Column: 0}
		stored, ok := mustValue(t, s, cell.String()).Formula().Result()
		if !ok {
			t.Fatalf("%s: expected a stored result", cell)
		}
		if fresh := s.ResultAt(cell); stored.String() != fresh.String() {
			t.Fatalf("%s: stored %q, fresh %q", cell, stored, fresh)
		}
	}
	expectDouble(t, s.ResultAt(cellAt(t, s, "A9")), 10)
	expectFailure(t, s.ResultAt(cellAt(t, s, "A8")), "Dependency chain too deep (limit 10)")
}

func TestDepthLimitWithSharedDependencies(t *testing.T) {
	const rows = 30
	s, _ := newTestSheet(t, Config{Rows: rows, Columns: 1, MaxDepth: 10, Lazy: true})
	for row := 0; row < rows-1; row++ {
		next := "A" + strconv.Itoa(row+1)
		if err := s.Set(Cell{Row: row, Column: 0}, "="+next+" + "+next); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	set(t, s, "A29", "1")
	s.Recalculate()

	expectFailure(t, s.ResultAt(Cell{}), "Dependency chain too deep (limit 10)")
	expectFailure(t, s.ResultAt(cellAt(t, s, "A18")), "Dependency chain too deep (limit 10)")
	expectDouble(t, s.ResultAt(cellAt(t, s, "A19")), 1024)
	res, _ := mustValue(t, s, "A19").Formula().Result()
	expectDouble(t, res, 1024)
}

func TestRangeFormulaCellIsNotAValue(t *testing.T) {
	s, _ := newTestSheet(t, Config{})
	set(t, s, "A0", "1")
	set(t, s, "B1", "2")
	set(t, s, "B5", "=A0:B1")
	set(t, s, "C0", "=B5")
	set(t, s, "C1", "=sum(B5:B5)")

	const msg = "Expected a cell value and got RANGE"
	expectFailure(t, s.ResultAt(cellAt(t, s, "B5")), msg)
	expectFailure(t, s.ResultAt(cellAt(t, s, "C0")), msg)
	expectFailure(t, s.ResultAt(cellAt(t, s, "C1")), msg)
	expectFailure(t, s.Eval("=B5"), msg)
}

func TestRecalculateStoresResults(t *testing.T) {
	s, hook := newTestSheet(t, Config{})
	set(t, s, "A0", "2")
	set(t, s, "B0", "=A0 * 3")

	f := mustValue(t, s, "B0").Formula()
	res, ok := f.Result()
	if !ok {
		t.Fatalf("expected a stored result after write")
	}
	expectDouble(t, res, 6)

	last := hook.LastEntry()
	if last == nil || last.Message != "recalculated sheet" {
		t.Fatalf("expected recalculation log, got %+v", last)
	}
	if last.Data["formulas"] != 1 {
		t.Fatalf("unexpected formula count %v", last.Data["formulas"])
	}
}

func TestLazySheetLeavesStoredResultsStale(t *testing.T) {
	s, _ := newTestSheet(t, Config{Lazy: true})
	set(t, s, "A0", "2")
	set(t, s, "B0", "=A0 * 3")

	f := mustValue(t, s, "B0").Formula()
	if _, ok := f.Result(); ok {
		t.Fatalf("expected no stored result before a read")
	}
	expectDouble(t, s.ResultAt(cellAt(t, s, "B0")), 6)

	set(t, s, "A0", "5")
	res, _ := f.Result()
	expectDouble(t, res, 6)
	expectDouble(t, s.ResultAt(cellAt(t, s, "B0")), 15)

	s.Recalculate()
	res, _ = f.Result()
	expectDouble(t, res, 15)
}

func TestPasteShiftsFormulas(t *testing.T) {
	s, _ := newTestSheet(t, Config{})
	set(t, s, "A0", "1")
	set(t, s, "A1", "2")
	set(t, s, "B0", "=A0 * 10")

	if err := s.Paste(cellAt(t, s, "B0"), cellAt(t, s, "B1")); err != nil {
		t.Fatalf("paste: %v", err)
	}
	if got := s.Text(cellAt(t, s, "B1")); got != "=A1 * 10" {
		t.Fatalf("unexpected pasted text %q", got)
	}
	expectDouble(t, s.ResultAt(cellAt(t, s, "B1")), 20)

	if err := s.Paste(cellAt(t, s, "A1"), cellAt(t, s, "C5")); err != nil {
		t.Fatalf("paste literal: %v", err)
	}
	expectDouble(t, s.ResultAt(cellAt(t, s, "C5")), 2)

	err := s.Paste(cellAt(t, s, "B1"), cellAt(t, s, "A1"))
	if !errors.Is(err, ErrShiftOutOfBounds) {
		t.Fatalf("expected ErrShiftOutOfBounds, got %v", err)
	}
	if got := s.Text(cellAt(t, s, "A1")); got != "2" {
		t.Fatalf("failed paste must not touch the target, got %q", got)
	}
}

func TestCellsYieldsRowMajor(t *testing.T) {
	s, _ := newTestSheet(t, Config{})
	set(t, s, "B1", "b")
	set(t, s, "A0", "a")
	set(t, s, "C0", "c")

	var names []string
	for cell := range s.Cells() {
		names = append(names, cell.String())
	}
	if got := strings.Join(names, ","); got != "A0,C0,B1" {
		t.Fatalf("unexpected order %s", got)
	}
}

func mustValue(t *testing.T, s *Sheet, name string) Value {
	t.Helper()
	v, ok := s.ValueAt(cellAt(t, s, name))
	if !ok {
		t.Fatalf("%s is empty", name)
	}
	return v
}
