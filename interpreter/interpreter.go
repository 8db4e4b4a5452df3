// Package interpreter is the tree-walking alternate backend (spec.md
// §4.6): it executes an ast.Algorithm directly, over a runtime context
// isomorphic to the VM's heap + scope stack, without ever lowering to
// bytecode. Grounded on informatter-nilan/interpreter's visitor-based
// TreeWalkInterpreter + Environment, generalized from Nilan's nested
// block scoping to adl's flat scope stack, line-indexed labels, and
// address-centric heap.
package interpreter

import (
	"fmt"

	"adl/ast"
	"adl/token"
	"adl/value"
)

// signalKind is the control-flow outcome of executing one statement.
// Continue/FullStop/LocalStop/JumpTo per spec.md §4.6 — LocalStop names
// the Return case specifically (it pops a scope besides carrying a
// target line), while JumpTo covers unconditional jumps and loop
// bookkeeping; both move lineIndex the same way.
type signalKind int

const (
	sigContinue signalKind = iota
	sigJumpTo
	sigLocalStop
	sigFullStop
)

type stepResult struct {
	sig  signalKind
	line int
	err  error
}

type evalResult struct {
	value value.Value
	err   error
}

// activeLoop is the runtime state of one in-progress Loop, pushed when
// its condition first holds and popped once it no longer does (or once
// control leaves its body via some other jump).
type activeLoop struct {
	bodyStart, bodyEnd int
	iterAddr           int64
	step               ast.Located[ast.Expression]
	loop               ast.Loop
}

// Interpreter holds all runtime state for one execution of an Algorithm.
type Interpreter struct {
	lines       []ast.Located[ast.FileLine]
	labels      map[string]int
	lineIndex   int
	currentLoc  token.Location
	scopes      []map[string]int64
	heap        *heap
	callStack   []int
	activeLoops []activeLoop
	builtins    map[string]value.Builtin
}

// New constructs an Interpreter with a single global scope, matching the
// VM's invariant that scope depth never drops below 1.
func New() *Interpreter {
	return &Interpreter{
		scopes:   []map[string]int64{make(map[string]int64)},
		heap:     newHeap(),
		builtins: make(map[string]value.Builtin),
	}
}

// RegisterBuiltin wires a host function into the interpreter's builtin
// table, the same closure-over-the-instance shape as vm.RegisterBuiltin.
func (in *Interpreter) RegisterBuiltin(name string, fn func(in *Interpreter, args []value.Value) (value.Value, error)) {
	in.builtins[name] = value.Builtin{
		Name: name,
		Call: func(args []value.Value) (value.Value, error) { return fn(in, args) },
	}
}

// ScopeLookup resolves name in the current (innermost) scope.
func (in *Interpreter) ScopeLookup(name string) (int64, bool) {
	addr, ok := in.currentScope()[name]
	return addr, ok
}

// HeapGet reads the value resident at addr, or Null if nothing is there.
func (in *Interpreter) HeapGet(addr int64) value.Value { return in.heap.get(addr) }

// ScopeDepth reports the number of scopes currently on the scope stack.
func (in *Interpreter) ScopeDepth() int { return len(in.scopes) }

func (in *Interpreter) currentScope() map[string]int64 {
	return in.scopes[len(in.scopes)-1]
}

// Run executes algo from its first line until Exit, falling off the end
// of the program, or a RuntimeError.
func (in *Interpreter) Run(algo ast.Algorithm) error {
	in.lines = algo.Lines
	in.labels = make(map[string]int, len(algo.Lines))
	for idx, located := range in.lines {
		for _, lbl := range located.Node.Labels {
			if _, dup := in.labels[lbl]; dup {
				return newRuntimeError(located.Left, fmt.Sprintf("label %q declared more than once", lbl))
			}
			in.labels[lbl] = idx
		}
	}

	in.lineIndex = 0
	for in.lineIndex < len(in.lines) {
		line := in.lines[in.lineIndex]

		if isParameterDeclarationLine(line.Node) {
			// scanned only by a subprogram call, never executed directly
			in.lineIndex++
			continue
		}

		in.currentLoc = line.Left
		r, ok := line.Node.Statements.Node.Accept(in).(stepResult)
		if !ok {
			return newRuntimeError(line.Left, "statement dispatch produced no result")
		}
		if r.err != nil {
			return r.err
		}

		switch r.sig {
		case sigFullStop:
			return nil
		case sigJumpTo, sigLocalStop:
			in.lineIndex = r.line
			in.pruneLoopsNotContaining(in.lineIndex)
		default:
			next := in.lineIndex + 1
			if n := len(in.activeLoops); n > 0 {
				top := in.activeLoops[n-1]
				if next == top.bodyEnd {
					cont, target, err := in.loopEpilogue(top)
					if err != nil {
						return err
					}
					if cont {
						in.lineIndex = top.bodyStart
					} else {
						in.activeLoops = in.activeLoops[:n-1]
						in.lineIndex = target
					}
					continue
				}
			}
			in.lineIndex = next
		}
	}
	return nil
}

// pruneLoopsNotContaining discards active loops whose body no longer
// contains line, the tree-walking analogue of a jump simply never
// reaching a loop's synthesized step-and-recheck bytecode.
func (in *Interpreter) pruneLoopsNotContaining(line int) {
	for len(in.activeLoops) > 0 {
		top := in.activeLoops[len(in.activeLoops)-1]
		if line >= top.bodyStart && line < top.bodyEnd {
			break
		}
		in.activeLoops = in.activeLoops[:len(in.activeLoops)-1]
	}
}

func (in *Interpreter) findLabelFrom(start int, label string) (int, bool) {
	for idx := start; idx < len(in.lines); idx++ {
		for _, lbl := range in.lines[idx].Node.Labels {
			if lbl == label {
				return idx, true
			}
		}
	}
	return 0, false
}

func (in *Interpreter) resolveLabel(label string) (int, error) {
	idx, ok := in.labels[label]
	if !ok {
		return 0, newRuntimeError(in.currentLoc, fmt.Sprintf("undefined label %q", label))
	}
	return idx, nil
}

// isParameterDeclarationLine reports whether a line's body is exactly a
// run of `null => name` sends — a subprogram's parameter declaration,
// scanned for names but never executed. Mirrors codegen's helper of the
// same name and contract.
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

func (in *Interpreter) findSubProgramDecl(name string) (ast.FileLine, int, bool) {
	for idx, located := range in.lines {
		for _, lbl := range located.Node.Labels {
			if lbl == name {
				return located.Node, idx, true
			}
		}
	}
	return ast.FileLine{}, 0, false
}

// isComparisonOrLogicalShaped mirrors codegen's helper: Loop's
// LastOrCond is used as-is when it already reads as a boolean
// expression, otherwise it is treated as a numeric bound compared
// against the iterator.
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

func (in *Interpreter) evalLoopCondition(l ast.Loop, iterAddr int64) (bool, error) {
	var condVal value.Value
	var err error
	if isComparisonOrLogicalShaped(l.LastOrCond.Node) {
		condVal, err = in.evalLocated(l.LastOrCond)
		if err != nil {
			return false, err
		}
	} else {
		bound, berr := in.evalLocated(l.LastOrCond)
		if berr != nil {
			return false, berr
		}
		iterVal := in.heap.get(iterAddr)
		var verr error
		condVal, verr = value.Lt(iterVal, bound)
		if verr != nil {
			return false, newRuntimeError(in.currentLoc, verr.Error())
		}
	}
	if condVal.Kind() != value.BoolKind {
		return false, newRuntimeError(in.currentLoc, fmt.Sprintf("loop condition must be a Bool, got %s", condVal.Kind()))
	}
	return condVal.AsBool(), nil
}

func (in *Interpreter) loopEpilogue(top activeLoop) (cont bool, target int, err error) {
	stepVal, err := in.evalLocated(top.step)
	if err != nil {
		return false, 0, err
	}
	iterVal := in.heap.get(top.iterAddr)
	newVal, verr := value.Add(iterVal, stepVal)
	if verr != nil {
		return false, 0, newRuntimeError(in.currentLoc, verr.Error())
	}
	in.heap.set(top.iterAddr, newVal)

	cont, err = in.evalLoopCondition(top.loop, top.iterAddr)
	if err != nil {
		return false, 0, err
	}
	if cont {
		return true, top.bodyStart, nil
	}
	if top.loop.LabelTo != nil {
		t, lerr := in.resolveLabel(*top.loop.LabelTo)
		if lerr != nil {
			return false, 0, lerr
		}
		return false, t, nil
	}
	return false, top.bodyEnd, nil
}

// mulDeref implements MulDeref's three regimes, shared by plain
// dereference expressions and by VisitAssign's MDEREF-as-assignment-target
// case (spec.md §4.5, generalized from bytecode to direct evaluation).
func (in *Interpreter) mulDeref(addr int64, n int64) (value.Value, error) {
	switch {
	case n == 0:
		return value.Int(addr), nil
	case n > 0:
		for i := int64(1); i < n; i++ {
			v := in.heap.get(addr)
			if v.Kind() != value.IntKind {
				return value.Value{}, newRuntimeError(in.currentLoc, fmt.Sprintf("expected an address (Int), got %s %s", v.Kind(), v.Repr()))
			}
			addr = v.AsInt()
		}
		return in.heap.get(addr), nil
	default:
		targets := []value.Value{value.Int(addr)}
		var found []int64
		for i := int64(0); i < -n; i++ {
			found = in.heap.predecessorsOf(targets)
			if len(found) == 0 {
				break
			}
			targets = make([]value.Value, len(found))
			for j, a := range found {
				targets[j] = value.Int(a)
			}
		}
		if len(found) == 0 {
			return value.Null, nil
		}
		return value.Int(in.buildList(found)), nil
	}
}

// buildList mirrors vm.buildList / codegen.VisitListLiteral's two-cell
// (value, next) allocation order, so a list built here is structurally
// identical to one built from a literal or by the VM's negative MulDeref.
func (in *Interpreter) buildList(elements []int64) int64 {
	tailIsNull := true
	var tailAddr int64
	for i := len(elements) - 1; i >= 0; i-- {
		pair := in.heap.allocMany(2)
		valueAddr, nextAddr := pair[0], pair[1]
		in.heap.set(valueAddr, value.Int(elements[i]))
		if tailIsNull {
			in.heap.set(nextAddr, value.Null)
			tailIsNull = false
		} else {
			in.heap.set(nextAddr, value.Int(tailAddr))
		}
		tailAddr = nextAddr
	}
	return tailAddr
}

func (in *Interpreter) requireAddr(v value.Value) (int64, error) {
	if v.Kind() != value.IntKind {
		return 0, newRuntimeError(in.currentLoc, fmt.Sprintf("expected an address (Int), got %s %s", v.Kind(), v.Repr()))
	}
	return v.AsInt(), nil
}

func (in *Interpreter) varAddress(name string) int64 {
	scope := in.currentScope()
	if addr, ok := scope[name]; ok {
		return addr
	}
	addr := in.heap.alloc()
	scope[name] = addr
	return addr
}

func (in *Interpreter) evalLocated(e ast.Located[ast.Expression]) (value.Value, error) {
	in.currentLoc = e.Left
	return in.eval(e.Node)
}

func (in *Interpreter) eval(expr ast.Expression) (value.Value, error) {
	r, ok := expr.Accept(in).(evalResult)
	if !ok {
		return value.Value{}, newRuntimeError(in.currentLoc, "expression dispatch produced no result")
	}
	return r.value, r.err
}

// --- ast.ExpressionVisitor ---

func (in *Interpreter) VisitNullLiteral(ast.NullLiteral) any {
	return evalResult{value: value.Null}
}

func (in *Interpreter) VisitIntLiteral(i ast.IntLiteral) any {
	return evalResult{value: value.Int(i.Value)}
}

func (in *Interpreter) VisitFloatLiteral(f ast.FloatLiteral) any {
	return evalResult{value: value.Float(f.Value)}
}

func (in *Interpreter) VisitBoolLiteral(b ast.BoolLiteral) any {
	return evalResult{value: value.Bool(b.Value)}
}

func (in *Interpreter) VisitStringLiteral(s ast.StringLiteral) any {
	return evalResult{value: value.String(s.Value)}
}

func (in *Interpreter) VisitVar(v ast.Var) any {
	return evalResult{value: value.Int(in.varAddress(v.Name.Lexeme))}
}

func (in *Interpreter) VisitListLiteral(l ast.ListLiteral) any {
	if len(l.Elements) == 0 {
		return evalResult{value: value.Null}
	}
	tailIsNull := true
	var tailAddr int64
	for i := len(l.Elements) - 1; i >= 0; i-- {
		v, err := in.evalLocated(l.Elements[i])
		if err != nil {
			return evalResult{err: err}
		}
		pair := in.heap.allocMany(2)
		valueAddr, nextAddr := pair[0], pair[1]
		in.heap.set(valueAddr, v)
		if tailIsNull {
			in.heap.set(nextAddr, value.Null)
			tailIsNull = false
		} else {
			in.heap.set(nextAddr, value.Int(tailAddr))
		}
		tailAddr = nextAddr
	}
	return evalResult{value: value.Int(tailAddr)}
}

func (in *Interpreter) VisitCall(c ast.Call) any {
	args := make([]value.Value, len(c.Args))
	for i, a := range c.Args {
		v, err := in.evalLocated(a)
		if err != nil {
			return evalResult{err: err}
		}
		args[i] = v
	}
	fn, ok := in.builtins[c.Callee.Lexeme]
	if !ok {
		return evalResult{err: newRuntimeError(in.currentLoc, fmt.Sprintf("undefined builtin %q", c.Callee.Lexeme))}
	}
	result, err := fn.Call(args)
	if err != nil {
		return evalResult{err: newRuntimeError(in.currentLoc, err.Error())}
	}
	return evalResult{value: result}
}

func (in *Interpreter) VisitUnaryOp(u ast.UnaryOp) any {
	switch u.Operator.Kind {
	case token.APOSTROPHE:
		addrVal, err := in.evalLocated(u.Right)
		if err != nil {
			return evalResult{err: err}
		}
		addr, err := in.requireAddr(addrVal)
		if err != nil {
			return evalResult{err: err}
		}
		return evalResult{value: in.heap.get(addr)}
	case token.MDEREF:
		addrVal, err := in.evalLocated(u.Right)
		if err != nil {
			return evalResult{err: err}
		}
		addr, err := in.requireAddr(addrVal)
		if err != nil {
			return evalResult{err: err}
		}
		levelVal, err := in.evalLocated(*u.Level)
		if err != nil {
			return evalResult{err: err}
		}
		if levelVal.Kind() != value.IntKind {
			return evalResult{err: newRuntimeError(in.currentLoc, "multiple-dereference level must be an Int")}
		}
		result, err := in.mulDeref(addr, levelVal.AsInt())
		if err != nil {
			return evalResult{err: err}
		}
		return evalResult{value: result}
	case token.NOT:
		v, err := in.evalLocated(u.Right)
		if err != nil {
			return evalResult{err: err}
		}
		r, verr := value.Not(v)
		if verr != nil {
			return evalResult{err: newRuntimeError(in.currentLoc, verr.Error())}
		}
		return evalResult{value: r}
	case token.MINUS:
		v, err := in.evalLocated(u.Right)
		if err != nil {
			return evalResult{err: err}
		}
		r, verr := value.Negate(v)
		if verr != nil {
			return evalResult{err: newRuntimeError(in.currentLoc, verr.Error())}
		}
		return evalResult{value: r}
	default:
		return evalResult{err: newRuntimeError(in.currentLoc, fmt.Sprintf("unhandled unary operator %s", u.Operator.Kind))}
	}
}

func (in *Interpreter) VisitBinaryOp(b ast.BinaryOp) any {
	l, err := in.evalLocated(b.Left)
	if err != nil {
		return evalResult{err: err}
	}
	r, err := in.evalLocated(b.Right)
	if err != nil {
		return evalResult{err: err}
	}

	var result value.Value
	var verr error
	switch b.Operator.Kind {
	case token.PLUS:
		result, verr = value.Add(l, r)
	case token.MINUS:
		result, verr = value.Sub(l, r)
	case token.STAR:
		result, verr = value.Mul(l, r)
	case token.SLASH:
		result, verr = value.Div(l, r)
	case token.PERCENT:
		result, verr = value.Mod(l, r)
	case token.AND:
		result, verr = value.And(l, r)
	case token.OR:
		result, verr = value.Or(l, r)
	case token.EQUAL_EQUAL:
		result, verr = value.Eq(l, r)
	case token.NOT_EQUAL:
		result, verr = value.Ne(l, r)
	case token.GREATER:
		result, verr = value.Gt(l, r)
	case token.LESS:
		result, verr = value.Lt(l, r)
	default:
		return evalResult{err: newRuntimeError(in.currentLoc, fmt.Sprintf("unhandled binary operator %s", b.Operator.Kind))}
	}
	if verr != nil {
		return evalResult{err: newRuntimeError(in.currentLoc, verr.Error())}
	}
	return evalResult{value: result}
}

// --- ast.StatementsVisitor ---

func (in *Interpreter) VisitOneLineStatements(o ast.OneLineStatements) any {
	in.currentLoc = o.Stmt.Left
	return o.Stmt.Node.Accept(in)
}

func (in *Interpreter) VisitSimpleStatements(s ast.SimpleStatements) any {
	for _, stmt := range s.Stmts {
		in.currentLoc = stmt.Left
		r, ok := stmt.Node.Accept(in).(stepResult)
		if !ok {
			return stepResult{err: newRuntimeError(in.currentLoc, "statement dispatch produced no result")}
		}
		if r.err != nil {
			return r
		}
	}
	return stepResult{}
}

// --- ast.OneLineVisitor ---

func (in *Interpreter) VisitSubProgram(s ast.SubProgram) any {
	args := make([]value.Value, len(s.Args))
	for i, a := range s.Args {
		v, err := in.evalLocated(a)
		if err != nil {
			return stepResult{err: err}
		}
		args[i] = v
	}

	decl, declIndex, ok := in.findSubProgramDecl(s.Name.Lexeme)
	if !ok || !isParameterDeclarationLine(decl) {
		return stepResult{err: newRuntimeError(in.currentLoc, fmt.Sprintf("subprogram %q has no null=>param declaration line", s.Name.Lexeme))}
	}
	params := parameterNames(decl)
	if len(params) != len(args) {
		return stepResult{err: newRuntimeError(in.currentLoc, fmt.Sprintf("subprogram %q expects %d argument(s), got %d", s.Name.Lexeme, len(params), len(args)))}
	}

	returnTarget := in.lineIndex + 1
	if s.LabelTo != nil {
		t, err := in.resolveLabel(*s.LabelTo)
		if err != nil {
			return stepResult{err: err}
		}
		returnTarget = t
	}

	in.scopes = append(in.scopes, make(map[string]int64))
	for i, p := range params {
		addr, err := in.requireAddr(args[i])
		if err != nil {
			return stepResult{err: err}
		}
		in.currentScope()[p] = addr
	}
	in.callStack = append(in.callStack, returnTarget)

	return stepResult{sig: sigJumpTo, line: declIndex + 1}
}

func (in *Interpreter) VisitLoop(l ast.Loop) any {
	bodyStart := in.lineIndex + 1
	bodyEnd, ok := in.findLabelFrom(bodyStart, l.LabelUntil)
	if !ok {
		return stepResult{err: newRuntimeError(in.currentLoc, fmt.Sprintf("label_until %q was never reached", l.LabelUntil))}
	}

	initVal, err := in.evalLocated(l.Initial)
	if err != nil {
		return stepResult{err: err}
	}
	iterAddr := in.heap.alloc()
	in.currentScope()[l.Iterator.Lexeme] = iterAddr
	in.heap.set(iterAddr, initVal)

	cont, err := in.evalLoopCondition(l, iterAddr)
	if err != nil {
		return stepResult{err: err}
	}
	if !cont {
		target := bodyEnd
		if l.LabelTo != nil {
			t, lerr := in.resolveLabel(*l.LabelTo)
			if lerr != nil {
				return stepResult{err: lerr}
			}
			target = t
		}
		return stepResult{sig: sigJumpTo, line: target}
	}

	in.activeLoops = append(in.activeLoops, activeLoop{
		bodyStart: bodyStart,
		bodyEnd:   bodyEnd,
		iterAddr:  iterAddr,
		step:      l.Step,
		loop:      l,
	})
	return stepResult{sig: sigJumpTo, line: bodyStart}
}

func (in *Interpreter) VisitPredicate(p ast.Predicate) any {
	cond, err := in.evalLocated(p.Cond)
	if err != nil {
		return stepResult{err: err}
	}
	if cond.Kind() != value.BoolKind {
		return stepResult{err: newRuntimeError(in.currentLoc, fmt.Sprintf("predicate condition must be a Bool, got %s", cond.Kind()))}
	}
	branch := p.IfFalse
	if cond.AsBool() {
		branch = p.IfTrue
	}
	if _, err := in.evalLocated(branch); err != nil {
		return stepResult{err: err}
	}
	return stepResult{}
}

func (in *Interpreter) VisitExit(ast.Exit) any {
	return stepResult{sig: sigFullStop}
}

func (in *Interpreter) VisitReturn(ast.Return) any {
	if len(in.scopes) <= 1 {
		return stepResult{err: newRuntimeError(in.currentLoc, "return popped past the global scope")}
	}
	in.scopes = in.scopes[:len(in.scopes)-1]
	if len(in.callStack) == 0 {
		return stepResult{err: newRuntimeError(in.currentLoc, "return with no matching subprogram call")}
	}
	ret := in.callStack[len(in.callStack)-1]
	in.callStack = in.callStack[:len(in.callStack)-1]
	return stepResult{sig: sigLocalStop, line: ret}
}

func (in *Interpreter) VisitUnconditionalJump(u ast.UnconditionalJump) any {
	target, err := in.resolveLabel(u.Label)
	if err != nil {
		return stepResult{err: err}
	}
	return stepResult{sig: sigJumpTo, line: target}
}

// --- ast.SimpleVisitor ---

func (in *Interpreter) VisitAssign(a ast.Assign) any {
	v, err := in.evalLocated(a.Rhs)
	if err != nil {
		return stepResult{err: err}
	}

	switch lhs := a.Lhs.Node.(type) {
	case ast.Var:
		addr, err := in.requireAddr(v)
		if err != nil {
			return stepResult{err: err}
		}
		in.currentScope()[lhs.Name.Lexeme] = addr
	case ast.UnaryOp:
		switch lhs.Operator.Kind {
		case token.APOSTROPHE:
			addrVal, err := in.evalLocated(lhs.Right)
			if err != nil {
				return stepResult{err: err}
			}
			addr, err := in.requireAddr(addrVal)
			if err != nil {
				return stepResult{err: err}
			}
			in.heap.set(addr, v)
		case token.MDEREF:
			addrVal, err := in.evalLocated(lhs.Right)
			if err != nil {
				return stepResult{err: err}
			}
			addr, err := in.requireAddr(addrVal)
			if err != nil {
				return stepResult{err: err}
			}
			levelVal, err := in.evalLocated(*lhs.Level)
			if err != nil {
				return stepResult{err: err}
			}
			if levelVal.Kind() != value.IntKind {
				return stepResult{err: newRuntimeError(in.currentLoc, "multiple-dereference level must be an Int")}
			}
			target, err := in.mulDeref(addr, levelVal.AsInt()-1)
			if err != nil {
				return stepResult{err: err}
			}
			taddr, err := in.requireAddr(target)
			if err != nil {
				return stepResult{err: err}
			}
			in.heap.set(taddr, v)
		default:
			return stepResult{err: newRuntimeError(in.currentLoc, "assignment target must be a variable or a dereference")}
		}
	default:
		return stepResult{err: newRuntimeError(in.currentLoc, "assignment target must be a variable or a dereference")}
	}
	return stepResult{}
}

func (in *Interpreter) VisitSend(s ast.Send) any {
	v, err := in.evalLocated(s.Rhs)
	if err != nil {
		return stepResult{err: err}
	}
	addrVal, err := in.evalLocated(s.Lhs)
	if err != nil {
		return stepResult{err: err}
	}
	addr, err := in.requireAddr(addrVal)
	if err != nil {
		return stepResult{err: err}
	}
	in.heap.set(addr, v)
	return stepResult{}
}

func (in *Interpreter) VisitExchange(e ast.Exchange) any {
	lhsAddrVal, err := in.evalLocated(e.Lhs)
	if err != nil {
		return stepResult{err: err}
	}
	lhsAddr, err := in.requireAddr(lhsAddrVal)
	if err != nil {
		return stepResult{err: err}
	}
	rhsAddrVal, err := in.evalLocated(e.Rhs)
	if err != nil {
		return stepResult{err: err}
	}
	rhsAddr, err := in.requireAddr(rhsAddrVal)
	if err != nil {
		return stepResult{err: err}
	}
	lv := in.heap.get(lhsAddr)
	rv := in.heap.get(rhsAddr)
	in.heap.set(lhsAddr, rv)
	in.heap.set(rhsAddr, lv)
	return stepResult{}
}

func (in *Interpreter) VisitDel(d ast.Del) any {
	addrVal, err := in.evalLocated(d.Rhs)
	if err != nil {
		return stepResult{err: err}
	}
	addr, err := in.requireAddr(addrVal)
	if err != nil {
		return stepResult{err: err}
	}
	in.heap.release(addr)
	return stepResult{}
}

func (in *Interpreter) VisitExpressionStmt(e ast.ExpressionStmt) any {
	if _, err := in.evalLocated(e.Expr); err != nil {
		return stepResult{err: err}
	}
	return stepResult{}
}

func (in *Interpreter) VisitImport(ast.Import) any {
	return stepResult{}
}
