package formula

import (
	"strconv"
	"strings"
)

// Cell addresses one grid slot by zero-based row and column.
type Cell struct {
	Row    int
	Column int
}

func (c Cell) String() string {
	return ColumnName(c.Column) + strconv.Itoa(c.Row)
}

// Grid is what the engine needs from the host that owns the cells.
type Grid interface {
	RowCount() int
	ColumnCount() int
	// FindColumn maps a column name to its index; ok is false when the
	// name does not denote a column of this grid.
	FindColumn(name string) (int, bool)
	ColumnName(index int) string
	// ValueAt returns the stored value; ok is false for an empty cell.
	ValueAt(cell Cell) (Value, bool)
}

// Resolver is a Grid that can also produce the freshly computed Result of a
// cell. Evaluation re-enters the dependency logic only through ResultAt.
type Resolver interface {
	Grid
	ResultAt(cell Cell) Result
}

// ColumnName renders a zero-based column index as letters: A..Z, AA..AZ, ...
func ColumnName(index int) string {
	if index < 0 {
		return ""
	}
	var buf []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		buf = append(buf, byte('A'+(n-1)%26))
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// ColumnIndex is the inverse of ColumnName. Letters are case-insensitive.
func ColumnIndex(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	n := 0
	for _, r := range strings.ToUpper(name) {
		if r < 'A' || r > 'Z' {
			return 0, false
		}
		n = n*26 + int(r-'A'+1)
		if n > maxColumnIndex {
			return 0, false
		}
	}
	return n - 1, true
}

const maxColumnIndex = 1 << 24
