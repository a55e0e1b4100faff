package formula

import "fmt"

// Evaluate walks expr and computes its Result against r. It never panics on
// well-formed trees; every semantic problem comes back as a failure.
func Evaluate(expr Expr, r Resolver) Result {
	switch e := expr.(type) {
	case *NumberLiteral:
		return Success(NewDouble(e.Value))
	case *StringLiteral:
		return Success(NewString(e.Value))
	case *BoolLiteral:
		return Success(NewBoolean(e.Value))
	case *BinaryExpr:
		return evalBinary(e, r)
	case *IfExpr:
		return evalIf(e, r)
	case *CallExpr:
		return evalCall(e, r)
	case *RefExpr:
		return evalReference(e.Ref, r)
	case *RangeExpr:
		return evalRange(e, r)
	case nil:
		return Failure(parsingErrorMessage)
	default:
		panic(fmt.Sprintf("formula: unhandled expression %T", expr))
	}
}

// evalBinary evaluates the left operand before the right one and stops at the
// first operand that fails, so a failing left side hides the right side.
func evalBinary(e *BinaryExpr, r Resolver) Result {
	kind, ok := operandKind(e.Operator)
	if !ok {
		return Failuref("Unknown operator: %s", e.Operator)
	}
	return Evaluate(e.Left, r).Typecheck(kind).FlatMap(func(l Value) Result {
		return Evaluate(e.Right, r).Typecheck(kind).Map(func(rv Value) Value {
			switch e.Operator {
			case tokenAnd:
				return NewBoolean(l.Bool() && rv.Bool())
			case tokenOr:
				return NewBoolean(l.Bool() || rv.Bool())
			case tokenPlus, tokenMinus, tokenAsterisk, tokenSlash:
				return NewDouble(arithmetic(e.Operator, l.Double(), rv.Double()))
			default:
				return NewBoolean(compare(e.Operator, l.Double(), rv.Double()))
			}
		})
	})
}

func operandKind(op TokenType) (Kind, bool) {
	switch op {
	case tokenPlus, tokenMinus, tokenAsterisk, tokenSlash:
		return KindDouble, true
	case tokenEQ, tokenNotEQ, tokenLT, tokenLTE, tokenGT, tokenGTE:
		return KindDouble, true
	case tokenAnd, tokenOr:
		return KindBoolean, true
	default:
		return 0, false
	}
}

// arithmetic follows IEEE-754, so division by zero yields an infinity or NaN.
func arithmetic(op TokenType, l, r float64) float64 {
	switch op {
	case tokenPlus:
		return l + r
	case tokenMinus:
		return l - r
	case tokenAsterisk:
		return l * r
	default:
		return l / r
	}
}

func compare(op TokenType, l, r float64) bool {
	switch op {
	case tokenEQ:
		return l == r
	case tokenNotEQ:
		return l != r
	case tokenLT:
		return l < r
	case tokenLTE:
		return l <= r
	case tokenGT:
		return l > r
	default:
		return l >= r
	}
}

// evalIf only evaluates the branch the condition selects.
func evalIf(e *IfExpr, r Resolver) Result {
	return Evaluate(e.Condition, r).Typecheck(KindBoolean).FlatMap(func(cond Value) Result {
		if cond.Bool() {
			return Evaluate(e.Consequence, r)
		}
		return Evaluate(e.Alternative, r)
	})
}

func evalCall(e *CallExpr, r Resolver) Result {
	fn, ok := lookupBuiltin(e.Name)
	if !ok {
		return Failuref("Unknown function: %s", e.Name)
	}
	if len(e.Args) != len(fn.params) {
		return Failuref("Wrong number of arguments for function: %s", e.Name)
	}
	args := make([]Value, len(e.Args))
	for i, arg := range e.Args {
		res := Evaluate(arg, r).Typecheck(fn.params[i])
		if !res.IsSuccess() {
			return res
		}
		args[i] = res.Value()
	}
	return fn.call(args, r)
}

func evalReference(ref *Reference, r Resolver) Result {
	if !ref.Resolve(r) {
		return unresolved(ref)
	}
	cell, _ := ref.Cell()
	return r.ResultAt(cell)
}

func evalRange(e *RangeExpr, r Resolver) Result {
	if !e.First.Resolve(r) {
		return unresolved(e.First)
	}
	if !e.Last.Resolve(r) {
		return unresolved(e.Last)
	}
	first, _ := e.First.Cell()
	last, _ := e.Last.Cell()
	if first.Row > last.Row || first.Column > last.Column {
		return Failuref("Incorrect range: %s", e.String())
	}
	return Success(NewRange(RangeValue{First: first, Last: last}))
}
