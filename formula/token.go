package formula

// TokenType identifies the lexical category of a token.
type TokenType string

const (
	tokenIllegal TokenType = "ILLEGAL"
	tokenEOF     TokenType = "EOF"

	tokenIdent  TokenType = "IDENT"
	tokenNumber TokenType = "NUMBER"
	tokenString TokenType = "STRING"

	tokenPlus     TokenType = "+"
	tokenMinus    TokenType = "-"
	tokenAsterisk TokenType = "*"
	tokenSlash    TokenType = "/"
	tokenLT       TokenType = "<"
	tokenGT       TokenType = ">"
	tokenLTE      TokenType = "<="
	tokenGTE      TokenType = ">="
	tokenEQ       TokenType = "=="
	tokenNotEQ    TokenType = "!="
	tokenAnd      TokenType = "&&"
	tokenOr       TokenType = "||"

	tokenComma  TokenType = ","
	tokenColon  TokenType = ":"
	tokenLParen TokenType = "("
	tokenRParen TokenType = ")"

	tokenIf    TokenType = "IF"
	tokenThen  TokenType = "THEN"
	tokenElse  TokenType = "ELSE"
	tokenTrue  TokenType = "TRUE"
	tokenFalse TokenType = "FALSE"
)

// Token captures lexical information for the parser.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// Position identifies a rune column (1-based) in the formula text.
type Position struct {
	Column int
}
