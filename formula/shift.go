package formula

import "fmt"

// Shift returns a new Formula whose relative references are moved by
// rowShift rows and colShift columns; axes marked absolute with '$' stay put.
// References that cannot be resolved against g are copied unchanged. Moving
// any reference off the grid fails with ErrShiftOutOfBounds.
func (f *Formula) Shift(rowShift, colShift int, g Grid) (*Formula, error) {
	if f.parseErr != nil {
		return &Formula{text: f.text, parseErr: f.parseErr, cached: f.cached, hasCached: true}, nil
	}
	f.Bind(g)

	sh := &shifter{rows: rowShift, cols: colShift, grid: g}
	expr, err := sh.shift(f.expr)
	if err != nil {
		return nil, err
	}
	return &Formula{
		text:   "=" + expr.String(),
		expr:   expr,
		refs:   sh.refs,
		ranges: sh.ranges,
	}, nil
}

type shifter struct {
	rows, cols int
	grid       Grid

	refs   []*Reference
	ranges []*RangeExpr
}

func (sh *shifter) shift(expr Expr) (Expr, error) {
	switch e := expr.(type) {
	case *NumberLiteral, *StringLiteral, *BoolLiteral:
		return e, nil
	case *BinaryExpr:
		left, err := sh.shift(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := sh.shift(e.Right)
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Left: left, Operator: e.Operator, Right: right, position: e.position}, nil
	case *IfExpr:
		cond, err := sh.shift(e.Condition)
		if err != nil {
			return nil, err
		}
		cons, err := sh.shift(e.Consequence)
		if err != nil {
			return nil, err
		}
		alt, err := sh.shift(e.Alternative)
		if err != nil {
			return nil, err
		}
		return &IfExpr{Condition: cond, Consequence: cons, Alternative: alt, position: e.position}, nil
	case *CallExpr:
		args := make([]Expr, len(e.Args))
		for i, arg := range e.Args {
			shifted, err := sh.shift(arg)
			if err != nil {
				return nil, err
			}
			args[i] = shifted
		}
		return &CallExpr{Name: e.Name, Args: args, position: e.position}, nil
	case *RefExpr:
		ref, err := sh.shiftReference(e.Ref)
		if err != nil {
			return nil, err
		}
		return &RefExpr{Ref: ref, position: e.position}, nil
	case *RangeExpr:
		first, err := sh.shiftReference(e.First)
		if err != nil {
			return nil, err
		}
		last, err := sh.shiftReference(e.Last)
		if err != nil {
			return nil, err
		}
		rng := &RangeExpr{First: first, Last: last, position: e.position}
		sh.ranges = append(sh.ranges, rng)
		return rng, nil
	default:
		panic(fmt.Sprintf("formula: unhandled expression %T", expr))
	}
}

func (sh *shifter) shiftReference(ref *Reference) (*Reference, error) {
	cell, ok := ref.Cell()
	if !ok {
		copied := &Reference{Name: ref.Name, ColumnAbsolute: ref.ColumnAbsolute, RowAbsolute: ref.RowAbsolute}
		sh.refs = append(sh.refs, copied)
		return copied, nil
	}
	if !ref.RowAbsolute {
		cell.Row += sh.rows
	}
	if !ref.ColumnAbsolute {
		cell.Column += sh.cols
	}
	if cell.Row < 0 || cell.Row >= sh.grid.RowCount() || cell.Column < 0 || cell.Column >= sh.grid.ColumnCount() {
		return nil, fmt.Errorf("%w: %s moved by (%d, %d)", ErrShiftOutOfBounds, ref.Name, sh.rows, sh.cols)
	}
	shifted := newBoundReference(cell, ref.ColumnAbsolute, ref.RowAbsolute, sh.grid)
	sh.refs = append(sh.refs, shifted)
	return shifted, nil
}
