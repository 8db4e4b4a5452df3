package parser

import (
	"fmt"

	"adl/token"
)

// ErrorKind classifies the ways parsing can fail.
type ErrorKind int

const (
	UnexpectedToken ErrorKind = iota
	UnrecognisedToken
	EmbeddedLexError
)

// SyntaxError is the structured failure the parser reports. Cause carries
// the underlying lexer.Error when Kind is EmbeddedLexError.
type SyntaxError struct {
	Kind    ErrorKind
	Loc     token.Location
	Message string
	Cause   error
}

func (e SyntaxError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("💥 parse error at %s: %s: %v", e.Loc, e.Message, e.Cause)
	}
	return fmt.Sprintf("💥 parse error at %s: %s", e.Loc, e.Message)
}

func (e SyntaxError) Unwrap() error { return e.Cause }
