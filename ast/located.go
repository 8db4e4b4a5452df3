// Package ast defines the abstract syntax tree for the address language:
// programs, lines, statements, and expressions, each reachable from a
// program's root Algorithm node. Every node family follows the visitor
// pattern used throughout this tree: a node's Accept method dispatches to
// the matching Visit method on whatever Visitor implementation is passed in
// (an interpreter, a code generator, a printer), so the main traversal
// dispatches through Accept rather than a type switch on the node.
package ast

import "adl/token"

// Located pairs an AST node of any kind with the source span (left and
// right locations) that produced it. The parser attaches one of these to
// every expression, statement, and line it builds, so that later stages
// (error reporting) can recover exact source
// positions without threading location state through every recursive call.
type Located[T any] struct {
	Node  T
	Left  token.Location
	Right token.Location
}

// New wraps a node with its source span.
func New[T any](node T, left, right token.Location) Located[T] {
	return Located[T]{Node: node, Left: left, Right: right}
}

// Algorithm is the root of a parsed program: an ordered sequence of lines.
type Algorithm struct {
	Lines []Located[FileLine]
}

// FileLine is a single syntactic line: zero or more labels followed by
// one one-line statement or a semicolon-separated run of simple statements.
type FileLine struct {
	Labels     []string
	Statements Located[Statements]
}
