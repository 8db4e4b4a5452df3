// Package token defines the lexical tokens of the address language (adl)
// and the fixed tables the lexer uses to recognize them.
package token

import "fmt"

// Kind classifies a Token. It is a string so that tokens print
// legibly without a lookup table.
type Kind string

const (
	// literals and identifiers
	IDENTIFIER Kind = "IDENTIFIER"
	INT        Kind = "INT"
	FLOAT      Kind = "FLOAT"
	STRING     Kind = "STRING"
	EOF        Kind = "EOF"

	// punctuation
	LPAREN    Kind = "("
	RPAREN    Kind = ")"
	LBRACE    Kind = "{"
	RBRACE    Kind = "}"
	LBRACKET  Kind = "["
	RBRACKET  Kind = "]"
	COMMA     Kind = ","
	SEMICOLON Kind = ";"
	COLON     Kind = ":"
	BANG      Kind = "!"
	PIPE      Kind = "|" // separates the true/false branches of a one-line predicate
	DOT       Kind = "."
	AT        Kind = "@"

	// operators
	ASSIGN       Kind = "="
	PLUS         Kind = "+"
	MINUS        Kind = "-"
	STAR         Kind = "*"
	SLASH        Kind = "/"
	PERCENT      Kind = "%"
	EQUAL_EQUAL  Kind = "=="
	NOT_EQUAL    Kind = "!="
	LESS         Kind = "<"
	LESS_EQUAL   Kind = "<="
	GREATER      Kind = ">"
	GREATER_EQUAL Kind = ">="
	APOSTROPHE   Kind = "'"  // dereference
	SEND         Kind = "=>" // value flows into an address
	EXCHANGE     Kind = "<=>"
	ELLIPSIS     Kind = "..."
	DOUBLE_COLON Kind = "::"

	// keywords
	CONST  Kind = "CONST"
	LET    Kind = "LET"
	NULL   Kind = "NULL"
	TRUE   Kind = "TRUE"
	FALSE  Kind = "FALSE"
	DEL    Kind = "DEL"
	LOOP   Kind = "L"  // 'L' loop form
	PRED   Kind = "P"  // 'P' predicate form
	SUBPRG Kind = "SP" // subprogram call form
	MDEREF Kind = "D"  // 'D{e,n}' multiple-dereference form
	RETURN Kind = "RETURN"
	OR     Kind = "OR"
	AND    Kind = "AND"
	NOT    Kind = "NOT"
)

// Keywords maps reserved identifier spellings to their Kind. Lexing an
// identifier that matches one of these entries produces a keyword
// token instead of IDENTIFIER. Matching is case-sensitive.
var Keywords = map[string]Kind{
	"const":  CONST,
	"let":    LET,
	"null":   NULL,
	"true":   TRUE,
	"false":  FALSE,
	"del":    DEL,
	"L":      LOOP,
	"P":      PRED,
	"SP":     SUBPRG,
	"D":      MDEREF,
	"return": RETURN,
	"or":     OR,
	"and":    AND,
	"not":    NOT,
}

// Location identifies a single character position in source text. Row
// and column are 1-based. PrevColumn records the column the lexer had
// reached on the previous line when it last crossed a newline, so that a
// caller stepping backwards across a newline can restore the correct
// column instead of landing on column 0.
type Location struct {
	Row        int
	Column     int
	PrevColumn int
}

// Equal reports whether two locations denote the same source position.
func (l Location) Equal(other Location) bool {
	return l.Row == other.Row && l.Column == other.Column
}

// LessEqual reports whether l does not come after other in reading
// order (row-major, then column).
func (l Location) LessEqual(other Location) bool {
	if l.Row != other.Row {
		return l.Row < other.Row
	}
	return l.Column <= other.Column
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Row, l.Column)
}

// Token is a single lexical unit together with the literal value the
// lexer parsed out of it, if any.
type Token struct {
	Kind    Kind
	Lexeme  string
	Literal any // int64, float64, or string; nil otherwise
}

// New constructs a Token with no literal payload.
func New(kind Kind, lexeme string) Token {
	return Token{Kind: kind, Lexeme: lexeme}
}

// NewLiteral constructs a Token carrying a parsed literal value.
func NewLiteral(kind Kind, lexeme string, literal any) Token {
	return Token{Kind: kind, Lexeme: lexeme, Literal: literal}
}

func (t Token) String() string {
	return fmt.Sprintf("Token{%s %q}", t.Kind, t.Lexeme)
}
