// statements.go contains the per-line statement AST: the Statements sum
// (a single one-line form, or a semicolon-separated run of simple
// statements), the one-line forms, and the simple statement forms.

package ast

import "adl/token"

// OneLineStatements wraps a line whose entire body is one one-line form
// (a loop, a predicate, a subprogram call, exit, return, or an
// unconditional jump).
type OneLineStatements struct {
	Stmt Located[OneLineStatement]
}

func (o OneLineStatements) Accept(v StatementsVisitor) any {
	return v.VisitOneLineStatements(o)
}

// SimpleStatements wraps a line whose body is a semicolon-separated run
// of simple statements.
type SimpleStatements struct {
	Stmts []Located[SimpleStatement]
}

func (s SimpleStatements) Accept(v StatementsVisitor) any {
	return v.VisitSimpleStatements(s)
}

// SubProgram is a one-line subprogram call: `SP name{args}`, optionally
// redirecting control to label_to after the call returns.
type SubProgram struct {
	Name    token.Token
	Args    []Located[Expression]
	LabelTo *string
}

func (s SubProgram) Accept(v OneLineVisitor) any {
	return v.VisitSubProgram(s)
}

// Loop is the one-line counted/conditional loop form:
// `L{initial, step, last_or_cond => iterator} label_until [@ label_to]`.
// LastOrCond is either an integer bound or a boolean predicate; which one
// determines whether the code generator emits an implicit "iterator <
// bound" comparison or uses the condition as-is.
type Loop struct {
	Initial    Located[Expression]
	Step       Located[Expression]
	LastOrCond Located[Expression]
	Iterator   token.Token
	LabelUntil string
	LabelTo    *string
}

func (l Loop) Accept(v OneLineVisitor) any {
	return v.VisitLoop(l)
}

// Predicate is the one-line form `P{cond} if_true | if_false`: cond is
// evaluated, and whichever of if_true/if_false corresponds to its truth
// value is evaluated and left on the stack (the interpreter evaluates it
// and discards the result).
type Predicate struct {
	Cond    Located[Expression]
	IfTrue  Located[Expression]
	IfFalse Located[Expression]
}

func (p Predicate) Accept(v OneLineVisitor) any {
	return v.VisitPredicate(p)
}

// Exit halts execution (`!`).
type Exit struct{}

func (e Exit) Accept(v OneLineVisitor) any {
	return v.VisitExit(e)
}

// Return pops the current scope and resumes the caller at the saved
// program counter.
type Return struct{}

func (r Return) Accept(v OneLineVisitor) any {
	return v.VisitReturn(r)
}

// UnconditionalJump transfers control to a bare label line.
type UnconditionalJump struct {
	Label string
}

func (u UnconditionalJump) Accept(v OneLineVisitor) any {
	return v.VisitUnconditionalJump(u)
}

// Assign is `lhs = rhs`. Lhs determines the lowering: a bare Var binds a
// name; a Dereference or MultipleDereference unary op writes through an
// address.
type Assign struct {
	Lhs Located[Expression]
	Rhs Located[Expression]
}

func (a Assign) Accept(v SimpleVisitor) any {
	return v.VisitAssign(a)
}

// Send is `rhs => lhs`: rhs is evaluated and written at the address lhs
// denotes.
type Send struct {
	Lhs Located[Expression]
	Rhs Located[Expression]
}

func (s Send) Accept(v SimpleVisitor) any {
	return v.VisitSend(s)
}

// Exchange is `lhs <=> rhs`: the values at the two addresses are swapped.
type Exchange struct {
	Lhs Located[Expression]
	Rhs Located[Expression]
}

func (e Exchange) Accept(v SimpleVisitor) any {
	return v.VisitExchange(e)
}

// Del is `del e`: the address e denotes is freed.
type Del struct {
	Rhs Located[Expression]
}

func (d Del) Accept(v SimpleVisitor) any {
	return v.VisitDel(d)
}

// ExpressionStmt evaluates an expression purely for its side effects,
// discarding the result.
type ExpressionStmt struct {
	Expr Located[Expression]
}

func (e ExpressionStmt) Accept(v SimpleVisitor) any {
	return v.VisitExpressionStmt(e)
}

// Import is parsed but ignored by both backends; the surface syntax
// reserves it for a module system that is out of scope here.
type Import struct {
	Path string
}

func (i Import) Accept(v SimpleVisitor) any {
	return v.VisitImport(i)
}
