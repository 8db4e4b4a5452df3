// Package codegen compiles a parsed Algorithm into a linear sequence of
// bytecode instructions. Compilation is a single pass over the line
// stream: each line's labels and statement are emitted in order, with
// forward references (jump targets, subprogram call targets) recorded as
// pending fixups and resolved once the whole program has been walked.
//
// The compiler is a visitor, in the same spirit as a tree-walking
// interpreter: it implements ast.ExpressionVisitor, ast.OneLineVisitor,
// ast.SimpleVisitor, and ast.StatementsVisitor, and each Visit method
// both emits bytecode and (via Go panics, recovered at the top level)
// reports a structured Error when the AST shape it receives cannot be
// compiled.
package codegen

import (
	"fmt"

	"adl/ast"
	"adl/bytecode"
	"adl/token"
	"adl/value"
)

// ErrorKind classifies the ways compilation can fail.
type ErrorKind int

const (
	UndefinedLabel ErrorKind = iota
	DuplicateLabel
	MalformedSubprogram
	UnsupportedAssignTarget
	UnexpandedVariant
	Unimplemented
)

// Error is the structured failure the compiler reports.
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e Error) Error() string {
	return fmt.Sprintf("💥 codegen error: %s", e.Detail)
}

type fixup struct {
	index int
	label string
}

type compiler struct {
	lines []ast.Located[ast.FileLine]
	out   []bytecode.Instruction

	labels  map[string]int
	pending []fixup

	cursor      int
	loopCounter int
	callCounter int
	listCounter int
}

// Compile lowers an Algorithm to bytecode. It never partially returns a
// program on error: either compilation succeeds and every fixup resolves,
// or it returns a non-nil Error (or, for a handful of cases the reference
// leaves genuinely undecided — see DESIGN.md — a panic value that is not
// an Error propagates, which would be a programming error in this
// package rather than a malformed-input error).
func Compile(program ast.Algorithm) (result []bytecode.Instruction, err error) {
	c := &compiler{
		lines:  program.Lines,
		labels: make(map[string]int),
	}

	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(Error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()

	for c.cursor < len(c.lines) {
		before := c.cursor
		c.compileCurrentLine()
		if c.cursor == before {
			c.cursor++
		}
	}

	for _, fx := range c.pending {
		target, ok := c.labels[fx.label]
		if !ok {
			panic(Error{Kind: UndefinedLabel, Detail: fmt.Sprintf("undefined label %q", fx.label)})
		}
		c.out[fx.index].Target = target
	}

	return c.out, nil
}

func (c *compiler) emit(instr bytecode.Instruction) int {
	c.out = append(c.out, instr)
	return len(c.out) - 1
}

func (c *compiler) addFixup(index int, label string) {
	c.pending = append(c.pending, fixup{index: index, label: label})
}

// isParameterDeclarationLine reports whether a line's body is exactly a
// run of `null => name` sends — the syntactic shape a subprogram
// declaration's parameter list takes. Such a line is scanned statically
// by the call site to learn parameter names and never executed itself;
// see DESIGN.md for why running it would clobber the bound arguments.
func isParameterDeclarationLine(line ast.FileLine) bool {
	simple, ok := line.Statements.Node.(ast.SimpleStatements)
	if !ok || len(simple.Stmts) == 0 {
		return false
	}
	for _, s := range simple.Stmts {
		send, ok := s.Node.(ast.Send)
		if !ok {
			return false
		}
		if _, ok := send.Lhs.Node.(ast.Var); !ok {
			return false
		}
		if _, ok := send.Rhs.Node.(ast.NullLiteral); !ok {
			return false
		}
	}
	return true
}

func parameterNames(line ast.FileLine) []string {
	simple := line.Statements.Node.(ast.SimpleStatements)
	names := make([]string, len(simple.Stmts))
	for i, s := range simple.Stmts {
		names[i] = s.Node.(ast.Send).Lhs.Node.(ast.Var).Name.Lexeme
	}
	return names
}

func (c *compiler) compileCurrentLine() {
	line := c.lines[c.cursor].Node

	for _, lbl := range line.Labels {
		if _, dup := c.labels[lbl]; dup {
			panic(Error{Kind: DuplicateLabel, Detail: fmt.Sprintf("label %q declared more than once", lbl)})
		}
		c.labels[lbl] = len(c.out)
		c.emit(bytecode.LabelMarker(lbl))
	}

	if isParameterDeclarationLine(line) {
		return
	}

	line.Statements.Node.Accept(c)
}

// findSubProgram locates the line declaring name's parameters, per the
// contract that a subprogram's first line is labelled with its name and
// its body is a `null => p` chain.
func (c *compiler) findSubProgram(name string) (ast.FileLine, bool) {
	for _, located := range c.lines {
		for _, lbl := range located.Node.Labels {
			if lbl == name {
				return located.Node, true
			}
		}
	}
	return ast.FileLine{}, false
}

// --- ast.StatementsVisitor ---

func (c *compiler) VisitOneLineStatements(o ast.OneLineStatements) any {
	return o.Stmt.Node.Accept(c)
}

func (c *compiler) VisitSimpleStatements(s ast.SimpleStatements) any {
	for _, stmt := range s.Stmts {
		stmt.Node.Accept(c)
	}
	return nil
}

// --- ast.OneLineVisitor ---

func (c *compiler) VisitExit(ast.Exit) any {
	c.emit(bytecode.Simple(bytecode.Halt))
	return nil
}

func (c *compiler) VisitReturn(ast.Return) any {
	c.emit(bytecode.Simple(bytecode.Return))
	return nil
}

func (c *compiler) VisitUnconditionalJump(u ast.UnconditionalJump) any {
	idx := c.emit(bytecode.JumpTo(0))
	c.addFixup(idx, u.Label)
	return nil
}

func (c *compiler) VisitPredicate(p ast.Predicate) any {
	p.Cond.Node.Accept(c)
	patchA := c.emit(bytecode.JumpIfFalseTo(0))
	p.IfTrue.Node.Accept(c)
	patchB := c.emit(bytecode.JumpTo(0))
	c.out[patchA].Target = len(c.out)
	p.IfFalse.Node.Accept(c)
	c.out[patchB].Target = len(c.out)
	return nil
}

func isComparisonOrLogicalShaped(e ast.Expression) bool {
	switch n := e.(type) {
	case ast.BinaryOp:
		switch n.Operator.Kind {
		case token.EQUAL_EQUAL, token.NOT_EQUAL, token.GREATER, token.LESS, token.AND, token.OR:
			return true
		}
	case ast.BoolLiteral:
		return true
	case ast.UnaryOp:
		return n.Operator.Kind == token.NOT
	}
	return false
}

func (c *compiler) VisitLoop(l ast.Loop) any {
	iterName := l.Iterator.Lexeme

	l.Initial.Node.Accept(c)
	c.emit(bytecode.StoreName(iterName))
	c.emit(bytecode.LoadName(iterName))
	c.emit(bytecode.Simple(bytecode.Store))

	startLabel := fmt.Sprintf("$loop_start_%d", c.loopCounter)
	c.labels[startLabel] = len(c.out)
	c.emit(bytecode.LabelMarker(startLabel))

	if isComparisonOrLogicalShaped(l.LastOrCond.Node) {
		l.LastOrCond.Node.Accept(c)
	} else {
		c.emit(bytecode.LoadName(iterName))
		c.emit(bytecode.Simple(bytecode.Deref))
		l.LastOrCond.Node.Accept(c)
		c.emit(bytecode.Simple(bytecode.Less))
	}

	patchE := c.emit(bytecode.JumpIfFalseTo(0))

	c.cursor++
	c.compileLinesUntilLabel(l.LabelUntil)

	l.Step.Node.Accept(c)
	c.emit(bytecode.LoadName(iterName))
	c.emit(bytecode.Simple(bytecode.Deref))
	c.emit(bytecode.Simple(bytecode.Add))
	c.emit(bytecode.LoadName(iterName))
	c.emit(bytecode.Simple(bytecode.Store))
	c.emit(bytecode.JumpTo(c.labels[startLabel]))

	loopEnd := len(c.out)
	if l.LabelTo != nil {
		c.addFixup(patchE, *l.LabelTo)
	} else {
		c.out[patchE].Target = loopEnd
	}

	c.loopCounter++
	return nil
}

func (c *compiler) compileLinesUntilLabel(stopLabel string) {
	for c.cursor < len(c.lines) {
		line := c.lines[c.cursor].Node
		for _, lbl := range line.Labels {
			if lbl == stopLabel {
				return
			}
		}
		before := c.cursor
		c.compileCurrentLine()
		if c.cursor == before {
			c.cursor++
		}
	}
	panic(Error{Kind: UndefinedLabel, Detail: fmt.Sprintf("label_until %q was never reached", stopLabel)})
}

func (c *compiler) VisitSubProgram(s ast.SubProgram) any {
	name := s.Name.Lexeme
	decl, ok := c.findSubProgram(name)
	if !ok || !isParameterDeclarationLine(decl) {
		panic(Error{Kind: MalformedSubprogram, Detail: fmt.Sprintf("subprogram %q has no null=>param declaration line", name)})
	}
	params := parameterNames(decl)
	if len(params) != len(s.Args) {
		panic(Error{Kind: MalformedSubprogram, Detail: fmt.Sprintf("subprogram %q expects %d argument(s), got %d", name, len(params), len(s.Args))})
	}

	for _, arg := range s.Args {
		arg.Node.Accept(c)
	}

	c.emit(bytecode.Simple(bytecode.PushScope))
	for i := len(params) - 1; i >= 0; i-- {
		c.emit(bytecode.BindAddrOf(params[i]))
	}

	callIdx := c.emit(bytecode.CallSubProgramAt(0, len(s.Args)))
	c.addFixup(callIdx, name)

	// No PopScope is emitted here: Return (executed inside the callee,
	// see VisitReturn) already pops the scope PushScope opened above.
	// Emitting a second pop here would land on the caller's own scope
	// and eventually underflow past the global one.
	returnLabel := fmt.Sprintf("$call_return_%d", c.callCounter)
	c.callCounter++
	c.labels[returnLabel] = len(c.out)
	c.emit(bytecode.LabelMarker(returnLabel))

	if s.LabelTo != nil {
		idx := c.emit(bytecode.JumpTo(0))
		c.addFixup(idx, *s.LabelTo)
	}
	return nil
}

// --- ast.SimpleVisitor ---

func (c *compiler) VisitAssign(a ast.Assign) any {
	a.Rhs.Node.Accept(c)

	switch lhs := a.Lhs.Node.(type) {
	case ast.Var:
		c.emit(bytecode.BindAddrOf(lhs.Name.Lexeme))
	case ast.UnaryOp:
		switch lhs.Operator.Kind {
		case token.APOSTROPHE:
			lhs.Right.Node.Accept(c)
			c.emit(bytecode.Simple(bytecode.Store))
		case token.MDEREF:
			lhs.Right.Node.Accept(c)
			lhs.Level.Node.Accept(c)
			c.emit(bytecode.Const(value.Int(1)))
			c.emit(bytecode.Simple(bytecode.Sub))
			c.emit(bytecode.Simple(bytecode.MulDeref))
			c.emit(bytecode.Simple(bytecode.Store))
		default:
			panic(Error{Kind: UnsupportedAssignTarget, Detail: "assignment target must be a variable or a dereference"})
		}
	default:
		panic(Error{Kind: UnsupportedAssignTarget, Detail: "assignment target must be a variable or a dereference"})
	}
	return nil
}

func (c *compiler) VisitSend(s ast.Send) any {
	s.Rhs.Node.Accept(c)
	s.Lhs.Node.Accept(c)
	c.emit(bytecode.Simple(bytecode.Store))
	return nil
}

func (c *compiler) VisitExchange(ast.Exchange) any {
	panic(Error{Kind: Unimplemented, Detail: "exchange (<=>) is not yet lowered by the code generator"})
}

func (c *compiler) VisitDel(d ast.Del) any {
	d.Rhs.Node.Accept(c)
	c.emit(bytecode.Simple(bytecode.FreeAddr))
	return nil
}

func (c *compiler) VisitExpressionStmt(e ast.ExpressionStmt) any {
	e.Expr.Node.Accept(c)
	c.emit(bytecode.Simple(bytecode.Pop))
	return nil
}

func (c *compiler) VisitImport(ast.Import) any {
	return nil
}

// --- ast.ExpressionVisitor ---

func (c *compiler) VisitNullLiteral(ast.NullLiteral) any {
	c.emit(bytecode.Const(value.Null))
	return nil
}

func (c *compiler) VisitIntLiteral(i ast.IntLiteral) any {
	c.emit(bytecode.Const(value.Int(i.Value)))
	return nil
}

func (c *compiler) VisitFloatLiteral(f ast.FloatLiteral) any {
	c.emit(bytecode.Const(value.Float(f.Value)))
	return nil
}

func (c *compiler) VisitBoolLiteral(b ast.BoolLiteral) any {
	c.emit(bytecode.Const(value.Bool(b.Value)))
	return nil
}

func (c *compiler) VisitStringLiteral(s ast.StringLiteral) any {
	c.emit(bytecode.Const(value.String(s.Value)))
	return nil
}

func (c *compiler) VisitVar(v ast.Var) any {
	c.emit(bytecode.LoadName(v.Name.Lexeme))
	return nil
}

func (c *compiler) VisitCall(call ast.Call) any {
	for _, arg := range call.Args {
		arg.Node.Accept(c)
	}
	c.emit(bytecode.CallFunction(call.Callee.Lexeme, len(call.Args)))
	return nil
}

func (c *compiler) VisitUnaryOp(u ast.UnaryOp) any {
	switch u.Operator.Kind {
	case token.APOSTROPHE:
		u.Right.Node.Accept(c)
		c.emit(bytecode.Simple(bytecode.Deref))
	case token.MDEREF:
		u.Right.Node.Accept(c)
		u.Level.Node.Accept(c)
		c.emit(bytecode.Simple(bytecode.MulDeref))
	case token.NOT:
		u.Right.Node.Accept(c)
		c.emit(bytecode.Simple(bytecode.Not))
	case token.MINUS:
		u.Right.Node.Accept(c)
		c.emit(bytecode.Simple(bytecode.Negate))
	default:
		panic(Error{Kind: UnexpandedVariant, Detail: fmt.Sprintf("unhandled unary operator %s", u.Operator.Kind)})
	}
	return nil
}

func binaryOp(kind token.Kind) (bytecode.Op, bool) {
	switch kind {
	case token.PLUS:
		return bytecode.Add, true
	case token.MINUS:
		return bytecode.Sub, true
	case token.STAR:
		return bytecode.Mul, true
	case token.SLASH:
		return bytecode.Div, true
	case token.PERCENT:
		return bytecode.Mod, true
	case token.AND:
		return bytecode.And, true
	case token.OR:
		return bytecode.Or, true
	case token.EQUAL_EQUAL:
		return bytecode.Equal, true
	case token.NOT_EQUAL:
		return bytecode.NotEqual, true
	case token.GREATER:
		return bytecode.Greater, true
	case token.LESS:
		return bytecode.Less, true
	default:
		return 0, false
	}
}

func (c *compiler) VisitBinaryOp(b ast.BinaryOp) any {
	b.Left.Node.Accept(c)
	b.Right.Node.Accept(c)
	op, ok := binaryOp(b.Operator.Kind)
	if !ok {
		panic(Error{Kind: UnexpandedVariant, Detail: fmt.Sprintf("unhandled binary operator %s", b.Operator.Kind)})
	}
	c.emit(bytecode.Simple(op))
	return nil
}

// VisitListLiteral lowers `[e1, …, en]` to a chain of two-cell (next,
// value) heap records, built tail-first so that each cell's next pointer
// is already known by the time the cell is allocated. The two addresses
// AllocMany hands back are stashed under compiler-synthesised scope
// names (never reachable from source, since identifiers cannot start
// with '$') purely so they can be recalled in whichever order Store
// needs them — no new VM operation is required for this.
func (c *compiler) VisitListLiteral(l ast.ListLiteral) any {
	if len(l.Elements) == 0 {
		c.emit(bytecode.Const(value.Null))
		return nil
	}

	tailIsNull := true
	tailVar := ""

	for i := len(l.Elements) - 1; i >= 0; i-- {
		valueVar := fmt.Sprintf("$list_value_%d_%d", c.listCounter, i)
		nextVar := fmt.Sprintf("$list_next_%d_%d", c.listCounter, i)

		c.emit(bytecode.AllocN(2))
		c.emit(bytecode.BindAddrOf(nextVar))
		c.emit(bytecode.BindAddrOf(valueVar))

		l.Elements[i].Node.Accept(c)
		c.emit(bytecode.LoadName(valueVar))
		c.emit(bytecode.Simple(bytecode.Store))

		if tailIsNull {
			c.emit(bytecode.Const(value.Null))
			tailIsNull = false
		} else {
			c.emit(bytecode.LoadName(tailVar))
		}
		c.emit(bytecode.LoadName(nextVar))
		c.emit(bytecode.Simple(bytecode.Store))

		tailVar = nextVar
	}

	c.emit(bytecode.LoadName(tailVar))
	c.listCounter++
	return nil
}
