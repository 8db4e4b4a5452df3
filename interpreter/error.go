package interpreter

import (
	"fmt"

	"adl/token"
)

// RuntimeError is the tree-walking interpreter's failure type, distinct
// from vm.RuntimeError even though both follow spec.md §7's "RuntimeError"
// name for their respective backend — they live in different packages and
// carry a source location instead of a program counter.
type RuntimeError struct {
	Loc     token.Location
	Message string
}

func newRuntimeError(loc token.Location, message string) RuntimeError {
	return RuntimeError{Loc: loc, Message: message}
}

func (e RuntimeError) Error() string {
	return fmt.Sprintf("💥 runtime error at %s: %s", e.Loc, e.Message)
}
