package formula

import (
	"iter"
	"math"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindBoolean Kind = iota + 1
	KindDouble
	KindString
	KindFormula
	KindRange
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "BOOLEAN"
	case KindDouble:
		return "DOUBLE"
	case KindString:
		return "STRING"
	case KindFormula:
		return "FORMULA"
	case KindRange:
		return "RANGE"
	default:
		return "UNKNOWN"
	}
}

// Value is the tagged union stored in cells and produced by evaluation.
type Value struct {
	kind Kind
	data any
}

// RangeValue is the evaluation-time form of a range: two bound, ordered
// corners. It never lives in a grid cell.
type RangeValue struct {
	First Cell
	Last  Cell
}

// All yields the cells of the range row by row, left to right within a row.
func (r RangeValue) All() iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		for row := r.First.Row; row <= r.Last.Row; row++ {
			for col := r.First.Column; col <= r.Last.Column; col++ {
				if !yield(Cell{Row: row, Column: col}) {
					return
				}
			}
		}
	}
}

// Size is the number of cells the range covers.
func (r RangeValue) Size() int {
	return (r.Last.Row - r.First.Row + 1) * (r.Last.Column - r.First.Column + 1)
}

func NewBoolean(b bool) Value          { return Value{kind: KindBoolean, data: b} }
func NewDouble(f float64) Value        { return Value{kind: KindDouble, data: f} }
func NewString(s string) Value         { return Value{kind: KindString, data: s} }
func NewFormulaValue(f *Formula) Value { return Value{kind: KindFormula, data: f} }
func NewRange(r RangeValue) Value      { return Value{kind: KindRange, data: r} }

func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether v is the zero Value, which stands for an empty cell.
func (v Value) IsZero() bool { return v.kind == 0 }

func (v Value) Bool() bool {
	b, _ := v.data.(bool)
	return b
}

func (v Value) Double() float64 {
	f, _ := v.data.(float64)
	return f
}

func (v Value) Str() string {
	s, _ := v.data.(string)
	return s
}

func (v Value) Formula() *Formula {
	f, _ := v.data.(*Formula)
	return f
}

func (v Value) Range() RangeValue {
	r, _ := v.data.(RangeValue)
	return r
}

// String renders the value the way a cell displays it.
func (v Value) String() string {
	switch v.kind {
	case KindBoolean:
		return strconv.FormatBool(v.Bool())
	case KindDouble:
		return formatDouble(v.Double())
	case KindString:
		return v.Str()
	case KindFormula:
		return v.Formula().Text()
	case KindRange:
		r := v.Range()
		return r.First.String() + ":" + r.Last.String()
	default:
		return ""
	}
}

func formatDouble(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}
