// expressions.go contains the Expression AST nodes. An expression always
// evaluates to a Value when run, whether by the code generator's emitted
// bytecode or by the tree-walking interpreter.

package ast

import "adl/token"

// NullLiteral is the `null` literal.
type NullLiteral struct{}

func (n NullLiteral) Accept(v ExpressionVisitor) any {
	return v.VisitNullLiteral(n)
}

// IntLiteral is a 64-bit signed integer literal.
type IntLiteral struct {
	Value int64
}

func (i IntLiteral) Accept(v ExpressionVisitor) any {
	return v.VisitIntLiteral(i)
}

// FloatLiteral is a 64-bit floating point literal.
type FloatLiteral struct {
	Value float64
}

func (f FloatLiteral) Accept(v ExpressionVisitor) any {
	return v.VisitFloatLiteral(f)
}

// BoolLiteral is `true` or `false`.
type BoolLiteral struct {
	Value bool
}

func (b BoolLiteral) Accept(v ExpressionVisitor) any {
	return v.VisitBoolLiteral(b)
}

// StringLiteral is a `"…"` literal with no escape processing.
type StringLiteral struct {
	Value string
}

func (s StringLiteral) Accept(v ExpressionVisitor) any {
	return v.VisitStringLiteral(s)
}

// Var is a reference to a previously bound address by name.
type Var struct {
	Name token.Token // an IDENTIFIER token
}

func (vr Var) Accept(v ExpressionVisitor) any {
	return v.VisitVar(vr)
}

// ListLiteral is `[e1, …, en]`. The code generator lowers it to a chain
// of two-cell (next, value) heap records; the interpreter builds the
// same shape directly against its own heap.
type ListLiteral struct {
	Elements []Located[Expression]
}

func (l ListLiteral) Accept(v ExpressionVisitor) any {
	return v.VisitListLiteral(l)
}

// Call is `f{args}`: an invocation of a host builtin by name.
type Call struct {
	Callee token.Token // an IDENTIFIER token naming the builtin
	Args   []Located[Expression]
}

func (c Call) Accept(v ExpressionVisitor) any {
	return v.VisitCall(c)
}

// UnaryOp covers the four unary forms: dereference (`'e`), multiple
// dereference (`D{e,n}`), logical not, and numeric negation. Level is
// non-nil only when Operator.Kind == token.MDEREF.
type UnaryOp struct {
	Operator token.Token
	Right    Located[Expression]
	Level    *Located[Expression]
}

func (u UnaryOp) Accept(v ExpressionVisitor) any {
	return v.VisitUnaryOp(u)
}

// BinaryOp covers every two-operand operator: the four arithmetic
// operators, modulo, the two logical connectives, and the four
// comparisons. Operator.Kind discriminates which.
type BinaryOp struct {
	Left     Located[Expression]
	Operator token.Token
	Right    Located[Expression]
}

func (b BinaryOp) Accept(v ExpressionVisitor) any {
	return v.VisitBinaryOp(b)
}
