package ast

// Expression is the interface every expression node implements. Binary and
// unary operators, literals, variable references, list literals, and calls
// all satisfy it.
type Expression interface {
	Accept(v ExpressionVisitor) any
}

// ExpressionVisitor defines one Visit method per Expression variant.
type ExpressionVisitor interface {
	VisitNullLiteral(n NullLiteral) any
	VisitIntLiteral(i IntLiteral) any
	VisitFloatLiteral(f FloatLiteral) any
	VisitBoolLiteral(b BoolLiteral) any
	VisitStringLiteral(s StringLiteral) any
	VisitVar(v Var) any
	VisitListLiteral(l ListLiteral) any
	VisitCall(c Call) any
	VisitUnaryOp(u UnaryOp) any
	VisitBinaryOp(b BinaryOp) any
}

// Statements is the sum type for a line's statement payload: either a
// single one-line form (a loop, a predicate, a subprogram call, …) or a
// semicolon-separated run of simple statements.
type Statements interface {
	Accept(v StatementsVisitor) any
}

// StatementsVisitor dispatches on which of the two Statements shapes a
// line carries.
type StatementsVisitor interface {
	VisitOneLineStatements(o OneLineStatements) any
	VisitSimpleStatements(s SimpleStatements) any
}

// OneLineStatement is the interface for the one-line statement forms:
// subprogram calls, loops, predicates, exit, return, and unconditional
// jumps. A line carrying one of these has no other statements.
type OneLineStatement interface {
	Accept(v OneLineVisitor) any
}

// OneLineVisitor defines one Visit method per OneLineStatement variant.
type OneLineVisitor interface {
	VisitSubProgram(s SubProgram) any
	VisitLoop(l Loop) any
	VisitPredicate(p Predicate) any
	VisitExit(e Exit) any
	VisitReturn(r Return) any
	VisitUnconditionalJump(u UnconditionalJump) any
}

// SimpleStatement is the interface for statements that may appear in a
// semicolon-separated run on a single line.
type SimpleStatement interface {
	Accept(v SimpleVisitor) any
}

// SimpleVisitor defines one Visit method per SimpleStatement variant.
type SimpleVisitor interface {
	VisitAssign(a Assign) any
	VisitSend(s Send) any
	VisitExchange(e Exchange) any
	VisitDel(d Del) any
	VisitExpressionStmt(e ExpressionStmt) any
	VisitImport(i Import) any
}
