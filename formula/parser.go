package formula

import (
	"strconv"
)

const (
	lowestPrec = iota
	precOr
	precAnd
	precComparison
	precSum
	precProduct
)

var precedences = map[TokenType]int{
	tokenOr:       precOr,
	tokenAnd:      precAnd,
	tokenEQ:       precComparison,
	tokenNotEQ:    precComparison,
	tokenLT:       precComparison,
	tokenLTE:      precComparison,
	tokenGT:       precComparison,
	tokenGTE:      precComparison,
	tokenPlus:     precSum,
	tokenMinus:    precSum,
	tokenAsterisk: precProduct,
	tokenSlash:    precProduct,
}

type parser struct {
	l *lexer

	curToken  Token
	peekToken Token

	err *ParseError

	refs   []*Reference
	ranges []*RangeExpr
}

func newParser(input string) *parser {
	p := &parser{l: newLexer(input)}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// ParseExpression parses the whole input as one expression. Parsing stops at
// the first error; the returned expression is nil in that case.
func (p *parser) ParseExpression() (Expr, *ParseError) {
	expr := p.parseOr()
	if p.err != nil {
		return nil, p.err
	}
	if p.curToken.Type != tokenEOF {
		p.errorUnexpected(p.curToken)
		return nil, p.err
	}
	return expr, nil
}

// parseLevel drives one left-associative precedence level: it parses an
// operand with next and folds operators of level prec into BinaryExpr nodes.
func (p *parser) parseLevel(prec int, next func() Expr) Expr {
	left := next()
	if left == nil {
		return nil
	}
	for precedences[p.curToken.Type] == prec {
		op := p.curToken
		p.nextToken()
		right := next()
		if right == nil {
			return nil
		}
		left = &BinaryExpr{Left: left, Operator: op.Type, Right: right, position: op.Pos}
	}
	return left
}

func (p *parser) parseOr() Expr {
	return p.parseLevel(precOr, p.parseAnd)
}

func (p *parser) parseAnd() Expr {
	return p.parseLevel(precAnd, p.parseComparison)
}

func (p *parser) parseComparison() Expr {
	return p.parseLevel(precComparison, p.parseSum)
}

func (p *parser) parseSum() Expr {
	return p.parseLevel(precSum, p.parseProduct)
}

func (p *parser) parseProduct() Expr {
	return p.parseLevel(precProduct, p.parseFactor)
}

func (p *parser) parseFactor() Expr {
	if p.err != nil {
		return nil
	}
	tok := p.curToken
	switch tok.Type {
	case tokenTrue, tokenFalse:
		p.nextToken()
		return &BoolLiteral{Value: tok.Type == tokenTrue, position: tok.Pos}
	case tokenNumber:
		value, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.addParseError(tok.Pos, "invalid number literal "+tok.Literal)
			return nil
		}
		p.nextToken()
		return &NumberLiteral{Value: value, Literal: tok.Literal, position: tok.Pos}
	case tokenString:
		p.nextToken()
		return &StringLiteral{Value: tok.Literal, position: tok.Pos}
	case tokenIdent:
		return p.parseIdentifier()
	case tokenIf:
		return p.parseIfExpression()
	case tokenLParen:
		return p.parseGroupedExpression()
	case tokenIllegal:
		p.addParseError(tok.Pos, tok.Literal)
		return nil
	default:
		p.errorUnexpected(tok)
		return nil
	}
}

func (p *parser) parseIdentifier() Expr {
	tok := p.curToken
	switch p.peekToken.Type {
	case tokenColon:
		p.nextToken()
		if !p.expectPeek(tokenIdent) {
			return nil
		}
		first := p.newReference(tok.Literal)
		last := p.newReference(p.curToken.Literal)
		p.nextToken()
		rng := &RangeExpr{First: first, Last: last, position: tok.Pos}
		p.ranges = append(p.ranges, rng)
		return rng
	case tokenLParen:
		p.nextToken()
		return p.parseCallExpression(tok)
	default:
		p.nextToken()
		return &RefExpr{Ref: p.newReference(tok.Literal), position: tok.Pos}
	}
}

func (p *parser) newReference(name string) *Reference {
	ref := NewReference(name)
	p.refs = append(p.refs, ref)
	return ref
}

// parseCallExpression expects curToken to be the opening parenthesis.
func (p *parser) parseCallExpression(name Token) Expr {
	call := &CallExpr{Name: name.Literal, Args: []Expr{}, position: name.Pos}
	p.nextToken()
	if p.curToken.Type == tokenRParen {
		p.nextToken()
		return call
	}

	for {
		arg := p.parseOr()
		if arg == nil {
			return nil
		}
		call.Args = append(call.Args, arg)
		if p.curToken.Type != tokenComma {
			break
		}
		p.nextToken()
	}

	if !p.expectCurrent(tokenRParen) {
		return nil
	}
	return call
}

func (p *parser) parseIfExpression() Expr {
	pos := p.curToken.Pos
	p.nextToken()
	condition := p.parseOr()
	if condition == nil || !p.expectCurrent(tokenThen) {
		return nil
	}
	consequence := p.parseOr()
	if consequence == nil || !p.expectCurrent(tokenElse) {
		return nil
	}
	alternative := p.parseOr()
	if alternative == nil {
		return nil
	}
	return &IfExpr{Condition: condition, Consequence: consequence, Alternative: alternative, position: pos}
}

func (p *parser) parseGroupedExpression() Expr {
	p.nextToken()
	expr := p.parseOr()
	if expr == nil || !p.expectCurrent(tokenRParen) {
		return nil
	}
	return expr
}

// expectPeek advances onto the peek token when it has type tt.
func (p *parser) expectPeek(tt TokenType) bool {
	if p.peekToken.Type == tt {
		p.nextToken()
		return true
	}
	p.errorExpected(p.peekToken, tt)
	return false
}

// expectCurrent consumes the current token when it has type tt.
func (p *parser) expectCurrent(tt TokenType) bool {
	if p.curToken.Type == tt {
		p.nextToken()
		return true
	}
	p.errorExpected(p.curToken, tt)
	return false
}
