package formula

import (
	"regexp"
	"strconv"
)

var referencePattern = regexp.MustCompile(`^(\$)?([a-zA-Z]+)(\$)?(\d+)$`)

// Reference names a single cell, e.g. A10 or $A$10. The coordinate is bound
// lazily by Resolve and never rebound afterwards.
type Reference struct {
	Name           string
	ColumnAbsolute bool
	RowAbsolute    bool

	cell  Cell
	bound bool
}

// NewReference records a name and its absolute markers. It does not bind.
func NewReference(name string) *Reference {
	ref := &Reference{Name: name}
	if m := referencePattern.FindStringSubmatch(name); m != nil {
		ref.ColumnAbsolute = m[1] != ""
		ref.RowAbsolute = m[3] != ""
	}
	return ref
}

// newBoundReference builds an already resolved reference, rendering its name
// from the grid's column naming.
func newBoundReference(cell Cell, columnAbsolute, rowAbsolute bool, g Grid) *Reference {
	name := ""
	if columnAbsolute {
		name += "$"
	}
	name += g.ColumnName(cell.Column)
	if rowAbsolute {
		name += "$"
	}
	name += strconv.Itoa(cell.Row)
	return &Reference{
		Name:           name,
		ColumnAbsolute: columnAbsolute,
		RowAbsolute:    rowAbsolute,
		cell:           cell,
		bound:          true,
	}
}

// Resolve tries to bind the reference against g and reports whether it is
// bound. A failed attempt leaves the reference untouched, so it can be
// retried; a successful one is final.
func (r *Reference) Resolve(g Grid) bool {
	if r.bound {
		return true
	}
	m := referencePattern.FindStringSubmatch(r.Name)
	if m == nil {
		return false
	}
	column, ok := g.FindColumn(m[2])
	if !ok || column < 0 || column >= g.ColumnCount() {
		return false
	}
	row, err := strconv.Atoi(m[4])
	if err != nil || row >= g.RowCount() {
		return false
	}
	r.cell = Cell{Row: row, Column: column}
	r.bound = true
	return true
}

// Cell returns the bound coordinate; ok is false while unresolved.
func (r *Reference) Cell() (Cell, bool) {
	return r.cell, r.bound
}

func (r *Reference) String() string {
	return r.Name
}

func unresolved(r *Reference) Result {
	return Failuref("Reference %s unresolved", r.Name)
}
