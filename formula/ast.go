package formula

import (
	"strconv"
	"strings"
)

// Expr is a node of a parsed formula. The node set is closed: every consumer
// switches over exactly the types declared in this file.
type Expr interface {
	Pos() Position
	String() string
	exprNode()
}

type NumberLiteral struct {
	Value    float64
	Literal  string
	position Position
}

func (e *NumberLiteral) exprNode()     {}
func (e *NumberLiteral) Pos() Position { return e.position }
func (e *NumberLiteral) String() string {
	if e.Literal != "" {
		return e.Literal
	}
	return strconv.FormatFloat(e.Value, 'g', -1, 64)
}

type StringLiteral struct {
	Value    string
	position Position
}

func (e *StringLiteral) exprNode()     {}
func (e *StringLiteral) Pos() Position { return e.position }
func (e *StringLiteral) String() string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range e.Value {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

type BoolLiteral struct {
	Value    bool
	position Position
}

func (e *BoolLiteral) exprNode()     {}
func (e *BoolLiteral) Pos() Position { return e.position }
func (e *BoolLiteral) String() string {
	return strconv.FormatBool(e.Value)
}

type BinaryExpr struct {
	Left     Expr
	Operator TokenType
	Right    Expr
	position Position
}

func (e *BinaryExpr) exprNode()     {}
func (e *BinaryExpr) Pos() Position { return e.position }
func (e *BinaryExpr) String() string {
	prec := precedences[e.Operator]
	return operandString(e.Left, prec, false) + " " + string(e.Operator) + " " + operandString(e.Right, prec, true)
}

// operandString parenthesizes an operand only where reparsing the rendered
// text would otherwise build a different tree.
func operandString(operand Expr, parent int, right bool) string {
	switch op := operand.(type) {
	case *BinaryExpr:
		prec := precedences[op.Operator]
		if prec < parent || (right && prec == parent) {
			return "(" + op.String() + ")"
		}
	case *IfExpr:
		return "(" + op.String() + ")"
	}
	return operand.String()
}

type IfExpr struct {
	Condition   Expr
	Consequence Expr
	Alternative Expr
	position    Position
}

func (e *IfExpr) exprNode()     {}
func (e *IfExpr) Pos() Position { return e.position }
func (e *IfExpr) String() string {
	return "if " + e.Condition.String() + " then " + e.Consequence.String() + " else " + e.Alternative.String()
}

type CallExpr struct {
	Name     string
	Args     []Expr
	position Position
}

func (e *CallExpr) exprNode()     {}
func (e *CallExpr) Pos() Position { return e.position }
func (e *CallExpr) String() string {
	parts := make([]string, len(e.Args))
	for i, arg := range e.Args {
		parts[i] = arg.String()
	}
	return e.Name + "(" + strings.Join(parts, ", ") + ")"
}

// RefExpr is a bare reference to a single cell.
type RefExpr struct {
	Ref      *Reference
	position Position
}

func (e *RefExpr) exprNode()      {}
func (e *RefExpr) Pos() Position  { return e.position }
func (e *RefExpr) String() string { return e.Ref.Name }

// RangeExpr spans First through Last. Ordering is checked when evaluated.
type RangeExpr struct {
	First    *Reference
	Last     *Reference
	position Position
}

func (e *RangeExpr) exprNode()      {}
func (e *RangeExpr) Pos() Position  { return e.position }
func (e *RangeExpr) String() string { return e.First.Name + ":" + e.Last.Name }
