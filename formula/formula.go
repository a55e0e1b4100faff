package formula

import "strings"

const parsingErrorMessage = "Parsing error"

// Formula is the stored form of a formula cell: its text, the parsed
// expression with every reference and range it mentions, and the last
// computed Result. A Formula whose text failed to parse keeps the failure
// forever and is never evaluated.
type Formula struct {
	text     string
	expr     Expr
	refs     []*Reference
	ranges   []*RangeExpr
	parseErr *ParseError

	cached    Result
	hasCached bool
}

// IsFormulaText reports whether raw cell input denotes a formula.
func IsFormulaText(text string) bool {
	return strings.HasPrefix(text, "=")
}

// Parse builds a Formula from cell input. A leading '=' is optional here.
// Parse never fails: malformed text yields a Formula carrying a ParseError.
func Parse(text string) *Formula {
	body := strings.TrimPrefix(text, "=")
	f := &Formula{text: "=" + body}

	p := newParser(body)
	expr, err := p.ParseExpression()
	if err != nil {
		f.parseErr = err
		f.cached = Failure(parsingErrorMessage)
		f.hasCached = true
		return f
	}
	f.expr = expr
	f.refs = p.refs
	f.ranges = p.ranges
	return f
}

// Text returns the formula as typed, including the leading '='.
func (f *Formula) Text() string { return f.text }

// Expr returns the parsed expression, or nil when parsing failed.
func (f *Formula) Expr() Expr { return f.expr }

// References lists every reference in source order, range endpoints
// included.
func (f *Formula) References() []*Reference { return f.refs }

// Ranges lists every range in source order.
func (f *Formula) Ranges() []*RangeExpr { return f.ranges }

// ParseError returns the parse failure, or nil.
func (f *Formula) ParseError() *ParseError { return f.parseErr }

func (f *Formula) Failed() bool { return f.parseErr != nil }

// Result returns the last computed result without recomputing. ok is false if
// the formula has never been evaluated.
func (f *Formula) Result() (Result, bool) {
	return f.cached, f.hasCached
}

func (f *Formula) setResult(r Result) {
	if f.parseErr != nil {
		return
	}
	f.cached = r
	f.hasCached = true
}

// Bind resolves every reference it can against g. Unresolvable ones stay
// unresolved and are retried when evaluated.
func (f *Formula) Bind(g Grid) {
	for _, ref := range f.refs {
		ref.Resolve(g)
	}
}

// Evaluate computes the formula against r and caches the outcome.
func (f *Formula) Evaluate(r Resolver) Result {
	if f.parseErr != nil {
		return Failure(parsingErrorMessage)
	}
	result := Evaluate(f.expr, r)
	f.setResult(result)
	return result
}
