package formula

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// eof is what the lexer holds once the input is exhausted. It lies outside
// the rune range so a NUL in the input is still lexed as a character.
const eof rune = -1

type lexer struct {
	input string

	offset int
	width  int
	column int

	ch rune
}

func newLexer(input string) *lexer {
	l := &lexer{input: input}
	l.readRune()
	return l
}

func (l *lexer) readRune() {
	if l.offset >= len(l.input) {
		l.width = 0
		l.ch = eof
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.offset:])
	l.width = w
	l.offset += w
	l.column++
	l.ch = r
}

func (l *lexer) peekRune() rune {
	if l.offset >= len(l.input) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])
	return r
}

// NextToken returns the next token. Once the input is exhausted every call
// returns an EOF token.
func (l *lexer) NextToken() Token {
	l.skipWhitespace()

	tok := Token{Pos: Position{Column: l.column}}

	switch l.ch {
	case eof:
		tok.Type = tokenEOF
		tok.Literal = ""
	case '+':
		tok = l.makeToken(tokenPlus, "+")
		l.readRune()
	case '-':
		tok = l.makeToken(tokenMinus, "-")
		l.readRune()
	case '*':
		tok = l.makeToken(tokenAsterisk, "*")
		l.readRune()
	case '/':
		tok = l.makeToken(tokenSlash, "/")
		l.readRune()
	case '(':
		tok = l.makeToken(tokenLParen, "(")
		l.readRune()
	case ')':
		tok = l.makeToken(tokenRParen, ")")
		l.readRune()
	case ',':
		tok = l.makeToken(tokenComma, ",")
		l.readRune()
	case ':':
		tok = l.makeToken(tokenColon, ":")
		l.readRune()
	case '<':
		tok = l.readOperator('=', tokenLTE, tokenLT)
	case '>':
		tok = l.readOperator('=', tokenGTE, tokenGT)
	case '=':
		tok = l.readOperator('=', tokenEQ, tokenIllegal)
	case '!':
		tok = l.readOperator('=', tokenNotEQ, tokenIllegal)
	case '&':
		tok = l.readOperator('&', tokenAnd, tokenIllegal)
	case '|':
		tok = l.readOperator('|', tokenOr, tokenIllegal)
	case '"':
		literal, err := l.readString()
		if err != "" {
			tok.Type = tokenIllegal
			tok.Literal = err
		} else {
			tok.Type = tokenString
			tok.Literal = literal
		}
	default:
		switch {
		case isIdentifierStart(l.ch):
			literal := l.readIdentifier()
			tok.Type = lookupIdent(literal)
			tok.Literal = literal
		case isDigit(l.ch):
			tok.Type = tokenNumber
			tok.Literal = l.readNumber()
		default:
			tok = l.makeToken(tokenIllegal, "unexpected character "+printableRune(l.ch))
			l.readRune()
		}
	}

	return tok
}

// readOperator lexes a two-rune operator whose second rune is next, falling
// back to single when the second rune is missing.
func (l *lexer) readOperator(next rune, double, single TokenType) Token {
	first := l.ch
	if l.peekRune() == next {
		tok := l.makeToken(double, string(first)+string(next))
		l.readRune()
		l.readRune()
		return tok
	}
	literal := string(first)
	if single == tokenIllegal {
		literal = "unexpected character " + literal
	}
	tok := l.makeToken(single, literal)
	l.readRune()
	return tok
}

func (l *lexer) currentOffset() int {
	return l.offset - l.width
}

func (l *lexer) makeToken(tt TokenType, literal string) Token {
	return Token{Type: tt, Literal: literal, Pos: Position{Column: l.column}}
}

func (l *lexer) skipWhitespace() {
	for unicode.IsSpace(l.ch) {
		l.readRune()
	}
}

func (l *lexer) readIdentifier() string {
	start := l.currentOffset()
	for isIdentifierRune(l.peekRune()) {
		l.readRune()
	}
	literal := l.input[start:l.offset]
	l.readRune()
	return literal
}

func (l *lexer) readNumber() string {
	start := l.currentOffset()
	hasDot := false
	for {
		r := l.peekRune()
		switch {
		case isDigit(r):
			l.readRune()
		case r == '.' && !hasDot:
			hasDot = true
			l.readRune()
		default:
			literal := l.input[start:l.offset]
			l.readRune()
			return literal
		}
	}
}

// readString consumes a double-quoted literal. A backslash keeps the rune that
// follows it verbatim and is itself dropped.
func (l *lexer) readString() (string, string) {
	var sb strings.Builder

	for {
		l.readRune()
		switch l.ch {
		case eof:
			return "", "unterminated string"
		case '"':
			l.readRune()
			return sb.String(), ""
		case '\\':
			l.readRune()
			if l.ch == eof {
				return "", "unterminated string"
			}
			sb.WriteRune(l.ch)
		default:
			sb.WriteRune(l.ch)
		}
	}
}

func printableRune(r rune) string {
	if unicode.IsPrint(r) {
		return string(r)
	}
	return strconv.QuoteRune(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '$'
}

func isIdentifierRune(r rune) bool {
	return unicode.IsLetter(r) || isDigit(r) || r == '$'
}

func lookupIdent(ident string) TokenType {
	switch ident {
	case "if":
		return tokenIf
	case "then":
		return tokenThen
	case "else":
		return tokenElse
	case "true":
		return tokenTrue
	case "false":
		return tokenFalse
	}
	return tokenIdent
}
