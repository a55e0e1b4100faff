package formula

import (
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config sizes a Sheet and bounds its evaluation.
type Config struct {
	Rows     int
	Columns  int
	MaxDepth int
	// Lazy skips recalculating every formula after each write. Reads still
	// compute fresh results, so only Formula.Result goes stale.
	Lazy   bool
	Logger logrus.FieldLogger
}

const (
	defaultRows     = 100
	defaultColumns  = 26
	defaultMaxDepth = 1000
)

// Sheet is an in-memory, array-backed grid of cells. It is not safe for
// concurrent use; callers serialize writes.
type Sheet struct {
	config Config
	cells  []Value
	log    logrus.FieldLogger
}

// NewSheet validates cfg, fills in defaults and returns an empty sheet.
func NewSheet(cfg Config) (*Sheet, error) {
	if cfg.Rows < 0 || cfg.Columns < 0 || cfg.MaxDepth < 0 {
		return nil, fmt.Errorf("%w: negative size (rows %d, columns %d, max depth %d)", ErrInvalidConfig, cfg.Rows, cfg.Columns, cfg.MaxDepth)
	}
	if cfg.Rows == 0 {
		cfg.Rows = defaultRows
	}
	if cfg.Columns == 0 {
		cfg.Columns = defaultColumns
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = defaultMaxDepth
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Sheet{
		config: cfg,
		cells:  make([]Value, cfg.Rows*cfg.Columns),
		log:    cfg.Logger,
	}, nil
}

// MustNewSheet is NewSheet for configs known to be valid.
func MustNewSheet(cfg Config) *Sheet {
	s, err := NewSheet(cfg)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Sheet) RowCount() int    { return s.config.Rows }
func (s *Sheet) ColumnCount() int { return s.config.Columns }

func (s *Sheet) FindColumn(name string) (int, bool) {
	idx, ok := ColumnIndex(name)
	if !ok || idx >= s.config.Columns {
		return 0, false
	}
	return idx, true
}

func (s *Sheet) ColumnName(index int) string {
	return ColumnName(index)
}

func (s *Sheet) index(cell Cell) (int, error) {
	if cell.Row < 0 || cell.Row >= s.config.Rows || cell.Column < 0 || cell.Column >= s.config.Columns {
		return 0, fmt.Errorf("%w: %s", ErrCellOutOfBounds, cell)
	}
	return cell.Row*s.config.Columns + cell.Column, nil
}

func (s *Sheet) ValueAt(cell Cell) (Value, bool) {
	idx, err := s.index(cell)
	if err != nil {
		return Value{}, false
	}
	v := s.cells[idx]
	return v, !v.IsZero()
}

// CellByName resolves a name such as "B3" or "$B$3" to a coordinate.
func (s *Sheet) CellByName(name string) (Cell, error) {
	ref := NewReference(strings.TrimSpace(name))
	if !ref.Resolve(s) {
		return Cell{}, fmt.Errorf("%w: %q", ErrUnknownCell, name)
	}
	cell, _ := ref.Cell()
	return cell, nil
}

// Set interprets raw cell input. Text starting with '=' becomes a formula;
// empty text clears the cell; true/false and numbers become literals; any
// other text is stored as a string.
func (s *Sheet) Set(cell Cell, text string) error {
	switch {
	case text == "":
		return s.Clear(cell)
	case IsFormulaText(text):
		f := Parse(text)
		if perr := f.ParseError(); perr != nil {
			s.log.WithFields(logrus.Fields{"cell": cell.String(), "text": text}).Debugf("formula parse failed: %s", perr.Msg)
		}
		return s.SetValue(cell, NewFormulaValue(f))
	default:
		return s.SetValue(cell, literalValue(text))
	}
}

func literalValue(text string) Value {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true":
		return NewBoolean(true)
	case "false":
		return NewBoolean(false)
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
		return NewDouble(f)
	}
	return NewString(text)
}

// SetValue stores v, replacing whatever the cell held.
func (s *Sheet) SetValue(cell Cell, v Value) error {
	idx, err := s.index(cell)
	if err != nil {
		return err
	}
	switch v.Kind() {
	case KindRange:
		return fmt.Errorf("%w: %s", ErrRangeNotStorable, cell)
	case KindFormula:
		if v.Formula() == nil {
			return fmt.Errorf("set %s: nil formula", cell)
		}
		v.Formula().Bind(s)
	}
	s.cells[idx] = v
	s.afterWrite()
	return nil
}

// Clear empties the cell.
func (s *Sheet) Clear(cell Cell) error {
	idx, err := s.index(cell)
	if err != nil {
		return err
	}
	s.cells[idx] = Value{}
	s.afterWrite()
	return nil
}

func (s *Sheet) afterWrite() {
	if !s.config.Lazy {
		s.Recalculate()
	}
}

// Text returns what the user typed into the cell, suitable for editing.
func (s *Sheet) Text(cell Cell) string {
	v, ok := s.ValueAt(cell)
	if !ok {
		return ""
	}
	return v.String()
}

// Display is what the cell shows: a literal's value, or a formula's freshly
// computed value or error message.
func (s *Sheet) Display(cell Cell) string {
	v, ok := s.ValueAt(cell)
	if !ok {
		return ""
	}
	if v.Kind() != KindFormula {
		return v.String()
	}
	return s.ResultAt(cell).String()
}

// ResultAt recomputes cell and everything it depends on from scratch.
func (s *Sheet) ResultAt(cell Cell) (result Result) {
	p := s.newPass()
	defer p.recoverInto(cell, &result)
	return p.ResultAt(cell)
}

// Eval computes a formula that is not stored in any cell against the current
// contents of the sheet.
func (s *Sheet) Eval(text string) (result Result) {
	f := Parse(text)
	if f.Failed() {
		return Failure(parsingErrorMessage)
	}
	f.Bind(s)
	p := s.newPass()
	defer p.recoverInto(Cell{Row: -1, Column: -1}, &result)
	return Evaluate(f.Expr(), p)
}

// Paste copies the content of src into dst. Formulas are shifted by the
// distance between the two cells.
func (s *Sheet) Paste(src, dst Cell) error {
	if _, err := s.index(src); err != nil {
		return err
	}
	if _, err := s.index(dst); err != nil {
		return err
	}
	v, ok := s.ValueAt(src)
	if !ok {
		return s.Clear(dst)
	}
	if v.Kind() != KindFormula {
		return s.SetValue(dst, v)
	}
	shifted, err := v.Formula().Shift(dst.Row-src.Row, dst.Column-src.Column, s)
	if err != nil {
		return fmt.Errorf("paste %s to %s: %w", src, dst, err)
	}
	return s.SetValue(dst, NewFormulaValue(shifted))
}

// Cells yields every non-empty cell in row-major order.
func (s *Sheet) Cells() iter.Seq2[Cell, Value] {
	return func(yield func(Cell, Value) bool) {
		for idx, v := range s.cells {
			if v.IsZero() {
				continue
			}
			cell := Cell{Row: idx / s.config.Columns, Column: idx % s.config.Columns}
			if !yield(cell, v) {
				return
			}
		}
	}
}
