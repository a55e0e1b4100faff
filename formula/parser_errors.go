package formula

import (
	"fmt"
	"strings"
)

// ParseError describes why a formula's text could not be parsed. The cell
// itself only ever shows parsingErrorMessage; the detail is kept for
// diagnostics.
type ParseError struct {
	Pos    Position
	Msg    string
	Source string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "parse error at column %d: %s", e.Pos.Column, e.Msg)
	if frame := formatCodeFrame(e.Source, e.Pos); frame != "" {
		b.WriteString("\n")
		b.WriteString(frame)
	}
	return b.String()
}

func (p *parser) errorExpected(tok Token, expected TokenType) {
	p.addParseError(tok.Pos, fmt.Sprintf("expected %s, got %s", tokenLabel(expected), tokenLabel(tok.Type)))
}

func (p *parser) errorUnexpected(tok Token) {
	if tok.Type == tokenIllegal {
		p.addParseError(tok.Pos, tok.Literal)
		return
	}
	p.addParseError(tok.Pos, fmt.Sprintf("unexpected token %s", tokenLabel(tok.Type)))
}

// addParseError keeps only the first error; the parse is abandoned there.
func (p *parser) addParseError(pos Position, msg string) {
	if p.err != nil {
		return
	}
	p.err = &ParseError{Pos: pos, Msg: msg, Source: p.l.input}
}

func formatCodeFrame(source string, pos Position) string {
	if source == "" || strings.Contains(source, "\n") {
		return ""
	}

	runes := []rune(source)
	column := pos.Column
	if column <= 0 {
		column = 1
	}
	if column > len(runes)+1 {
		column = len(runes) + 1
	}

	return fmt.Sprintf("  | %s\n  | %s^", source, strings.Repeat(" ", column-1))
}

func tokenLabel(tt TokenType) string {
	switch tt {
	case tokenIllegal:
		return "invalid token"
	case tokenEOF:
		return "end of input"
	case tokenIdent:
		return "identifier"
	case tokenNumber:
		return "number"
	case tokenString:
		return "string"
	case tokenIf:
		return "'if'"
	case tokenThen:
		return "'then'"
	case tokenElse:
		return "'else'"
	case tokenTrue:
		return "'true'"
	case tokenFalse:
		return "'false'"
	default:
		return fmt.Sprintf("%q", string(tt))
	}
}
