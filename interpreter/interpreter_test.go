package interpreter

import (
	"testing"

	"adl/ast"
	"adl/codegen"
	"adl/token"
	"adl/value"
	"adl/vm"
)

func exprLine(stmt ast.OneLineStatement, labels ...string) ast.Located[ast.FileLine] {
	return ast.Located[ast.FileLine]{Node: ast.FileLine{
		Labels: labels,
		Statements: ast.Located[ast.Statements]{Node: ast.OneLineStatements{
			Stmt: ast.Located[ast.OneLineStatement]{Node: stmt},
		}},
	}}
}

func simpleLine(stmts []ast.SimpleStatement, labels ...string) ast.Located[ast.FileLine] {
	located := make([]ast.Located[ast.SimpleStatement], len(stmts))
	for i, s := range stmts {
		located[i] = ast.Located[ast.SimpleStatement]{Node: s}
	}
	return ast.Located[ast.FileLine]{Node: ast.FileLine{
		Labels: labels,
		Statements: ast.Located[ast.Statements]{Node: ast.SimpleStatements{Stmts: located}},
	}}
}

func e(expr ast.Expression) ast.Located[ast.Expression] {
	return ast.Located[ast.Expression]{Node: expr}
}

func v(name string) ast.Var {
	return ast.Var{Name: token.New(token.IDENTIFIER, name)}
}

func run(t *testing.T, lines ...ast.Located[ast.FileLine]) *Interpreter {
	t.Helper()
	in := New()
	if err := in.Run(ast.Algorithm{Lines: lines}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	return in
}

func mustAddr(t *testing.T, in *Interpreter, name string) int64 {
	t.Helper()
	addr, ok := in.ScopeLookup(name)
	if !ok {
		t.Fatalf("%q was never bound", name)
	}
	return addr
}

func TestAssignVarRebindsToRhsAddress(t *testing.T) {
	in := run(t, simpleLine([]ast.SimpleStatement{
		ast.Assign{Lhs: e(v("x")), Rhs: e(ast.IntLiteral{Value: 10})},
	}))
	addr, ok := in.ScopeLookup("x")
	if !ok || addr != 10 {
		t.Errorf("x's bound address = %v,%v, want 10 (Assign rebinds, it does not store)", addr, ok)
	}
}

// TestAssignRebindInterpreterMatchesVM is a cross-backend oracle: the
// same program is compiled and run under the VM and walked directly
// under the interpreter, and both must agree on which addresses "a"
// and "b" end up bound to and on what's resident there (spec.md §4.6).
func TestAssignRebindInterpreterMatchesVM(t *testing.T) {
	algo := ast.Algorithm{Lines: []ast.Located[ast.FileLine]{
		simpleLine([]ast.SimpleStatement{
			ast.Send{Lhs: e(v("a")), Rhs: e(ast.IntLiteral{Value: 5})},
			ast.Assign{Lhs: e(v("b")), Rhs: e(v("a"))},
			ast.Assign{
				Lhs: e(ast.UnaryOp{Operator: token.New(token.APOSTROPHE, "'"), Right: e(v("b"))}),
				Rhs: e(ast.IntLiteral{Value: 7}),
			},
		}),
	}}

	instrs, err := codegen.Compile(algo)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	m := vm.New(instrs)
	if err := m.Run(); err != nil {
		t.Fatalf("VM Run returned error: %v", err)
	}

	in := New()
	if err := in.Run(algo); err != nil {
		t.Fatalf("interpreter Run returned error: %v", err)
	}

	vmA, ok := m.ScopeLookup("a")
	if !ok {
		t.Fatal("VM never bound a")
	}
	vmB, ok := m.ScopeLookup("b")
	if !ok {
		t.Fatal("VM never bound b")
	}
	inA, ok := in.ScopeLookup("a")
	if !ok {
		t.Fatal("interpreter never bound a")
	}
	inB, ok := in.ScopeLookup("b")
	if !ok {
		t.Fatal("interpreter never bound b")
	}

	if vmA != vmB {
		t.Fatalf("VM: a and b should alias the same address, got %d and %d", vmA, vmB)
	}
	if inA != inB {
		t.Fatalf("interpreter: a and b should alias the same address, got %d and %d", inA, inB)
	}
	if got := m.HeapGet(vmA); got.Kind() != value.IntKind || got.AsInt() != 7 {
		t.Errorf("VM heap[a] = %v, want Int(7)", got)
	}
	if got := in.HeapGet(inA); got.Kind() != value.IntKind || got.AsInt() != 7 {
		t.Errorf("interpreter heap[a] = %v, want Int(7)", got)
	}
}

func TestBinaryArithmeticAndBuiltinCall(t *testing.T) {
	in := New()
	in.RegisterBuiltin("double", func(_ *Interpreter, args []value.Value) (value.Value, error) {
		return value.Int(args[0].AsInt() * 2), nil
	})
	algo := ast.Algorithm{Lines: []ast.Located[ast.FileLine]{
		simpleLine([]ast.SimpleStatement{
			ast.Assign{Lhs: e(v("x")), Rhs: e(ast.Call{
				Callee: token.New(token.IDENTIFIER, "double"),
				Args:   []ast.Located[ast.Expression]{e(ast.BinaryOp{Left: e(ast.IntLiteral{Value: 3}), Operator: token.New(token.PLUS, "+"), Right: e(ast.IntLiteral{Value: 4})})},
			})},
		}),
	}}
	if err := in.Run(algo); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	addr, ok := in.ScopeLookup("x")
	if !ok || addr != 14 {
		t.Errorf("x's bound address = %v,%v, want 14", addr, ok)
	}
}

func TestDereferenceAssignWritesThroughAddress(t *testing.T) {
	in := run(t,
		simpleLine([]ast.SimpleStatement{
			ast.Assign{Lhs: e(v("p")), Rhs: e(v("p"))},
		}),
		simpleLine([]ast.SimpleStatement{
			ast.Assign{
				Lhs: e(ast.UnaryOp{Operator: token.New(token.APOSTROPHE, "'"), Right: e(v("p"))}),
				Rhs: e(ast.IntLiteral{Value: 99}),
			},
		}),
	)
	got := in.HeapGet(mustAddr(t, in, "p"))
	if got.Kind() != value.IntKind || got.AsInt() != 99 {
		t.Errorf("*p = %v, want Int(99)", got)
	}
}

func TestSendWritesRhsAtLhsAddress(t *testing.T) {
	in := run(t, simpleLine([]ast.SimpleStatement{
		ast.Send{Lhs: e(v("x")), Rhs: e(ast.IntLiteral{Value: 7})},
	}))
	got := in.HeapGet(mustAddr(t, in, "x"))
	if got.Kind() != value.IntKind || got.AsInt() != 7 {
		t.Errorf("x = %v, want Int(7)", got)
	}
}

func TestExchangeSwapsTwoAddresses(t *testing.T) {
	in := run(t,
		simpleLine([]ast.SimpleStatement{
			ast.Send{Lhs: e(v("a")), Rhs: e(ast.IntLiteral{Value: 1})},
			ast.Send{Lhs: e(v("b")), Rhs: e(ast.IntLiteral{Value: 2})},
			ast.Exchange{Lhs: e(v("a")), Rhs: e(v("b"))},
		}),
	)
	a := in.HeapGet(mustAddr(t, in, "a"))
	b := in.HeapGet(mustAddr(t, in, "b"))
	if a.AsInt() != 2 || b.AsInt() != 1 {
		t.Errorf("a,b = %v,%v, want 2,1", a, b)
	}
}

func TestDelReleasesAddress(t *testing.T) {
	in := run(t, simpleLine([]ast.SimpleStatement{
		ast.Assign{Lhs: e(v("x")), Rhs: e(ast.IntLiteral{Value: 1})},
		ast.Del{Rhs: e(v("x"))},
	}))
	addr := mustAddr(t, in, "x")
	if !in.heap.isFree(addr) {
		t.Errorf("address %d was not released", addr)
	}
}

func TestPredicateBranchSideEffectsViaBuiltin(t *testing.T) {
	in := New()
	var picked int64
	in.RegisterBuiltin("mark", func(_ *Interpreter, args []value.Value) (value.Value, error) {
		picked = args[0].AsInt()
		return value.Null, nil
	})
	algo := ast.Algorithm{Lines: []ast.Located[ast.FileLine]{
		exprLine(ast.Predicate{
			Cond: e(ast.BinaryOp{Left: e(ast.IntLiteral{Value: 9}), Operator: token.New(token.GREATER, ">"), Right: e(ast.IntLiteral{Value: 1})}),
			IfTrue: e(ast.Call{Callee: token.New(token.IDENTIFIER, "mark"), Args: []ast.Located[ast.Expression]{e(ast.IntLiteral{Value: 1})}}),
			IfFalse: e(ast.Call{Callee: token.New(token.IDENTIFIER, "mark"), Args: []ast.Located[ast.Expression]{e(ast.IntLiteral{Value: 0})}}),
		}),
	}}
	if err := in.Run(algo); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if picked != 1 {
		t.Errorf("picked = %d, want 1 (if_true branch)", picked)
	}
}

func TestUnconditionalJumpSkipsLines(t *testing.T) {
	in := New()
	algo := ast.Algorithm{Lines: []ast.Located[ast.FileLine]{
		exprLine(ast.UnconditionalJump{Label: "done"}),
		simpleLine([]ast.SimpleStatement{
			ast.Assign{Lhs: e(v("x")), Rhs: e(ast.IntLiteral{Value: 1})},
		}),
		exprLine(ast.Exit{}, "done"),
	}}
	if err := in.Run(algo); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if _, ok := in.ScopeLookup("x"); ok {
		t.Errorf("x should never have been bound, the jump skips its line")
	}
}

func TestDuplicateLabelIsAnError(t *testing.T) {
	in := New()
	algo := ast.Algorithm{Lines: []ast.Located[ast.FileLine]{
		exprLine(ast.Exit{}, "dup"),
		exprLine(ast.Exit{}, "dup"),
	}}
	if err := in.Run(algo); err == nil {
		t.Fatal("expected a duplicate-label error")
	}
}

func TestLoopSumsCountedRange(t *testing.T) {
	in := New()
	deref := func(name string) ast.Located[ast.Expression] {
		return e(ast.UnaryOp{Operator: token.New(token.APOSTROPHE, "'"), Right: e(v(name))})
	}
	algo := ast.Algorithm{Lines: []ast.Located[ast.FileLine]{
		simpleLine([]ast.SimpleStatement{
			ast.Send{Lhs: e(v("sum")), Rhs: e(ast.IntLiteral{Value: 0})},
		}),
		exprLine(ast.Loop{
			Initial:    e(ast.IntLiteral{Value: 0}),
			Step:       e(ast.IntLiteral{Value: 1}),
			LastOrCond: e(ast.IntLiteral{Value: 5}),
			Iterator:   token.New(token.IDENTIFIER, "i"),
			LabelUntil: "done",
		}),
		simpleLine([]ast.SimpleStatement{
			ast.Assign{
				Lhs: deref("sum"),
				Rhs: e(ast.BinaryOp{Left: deref("sum"), Operator: token.New(token.PLUS, "+"), Right: deref("i")}),
			},
		}),
		exprLine(ast.Exit{}, "done"),
	}}
	if err := in.Run(algo); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	got := in.HeapGet(mustAddr(t, in, "sum"))
	if got.Kind() != value.IntKind || got.AsInt() != 10 {
		t.Errorf("sum = %v, want Int(10) (0+1+2+3+4)", got)
	}
}

func TestLoopNeverEnteredWhenConditionStartsFalse(t *testing.T) {
	in := New()
	algo := ast.Algorithm{Lines: []ast.Located[ast.FileLine]{
		exprLine(ast.Loop{
			Initial:    e(ast.IntLiteral{Value: 5}),
			Step:       e(ast.IntLiteral{Value: 1}),
			LastOrCond: e(ast.IntLiteral{Value: 5}),
			Iterator:   token.New(token.IDENTIFIER, "i"),
			LabelUntil: "done",
		}),
		simpleLine([]ast.SimpleStatement{
			ast.Assign{Lhs: e(v("touched")), Rhs: e(ast.IntLiteral{Value: 1})},
		}),
		exprLine(ast.Exit{}, "done"),
	}}
	if err := in.Run(algo); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if _, ok := in.ScopeLookup("touched"); ok {
		t.Errorf("loop body should never have run (5 < 5 is false from the start)")
	}
}

func TestSubProgramCallPassesAddressAndReturns(t *testing.T) {
	in := New()
	algo := ast.Algorithm{Lines: []ast.Located[ast.FileLine]{
		simpleLine([]ast.SimpleStatement{
			ast.Send{Lhs: e(v("x")), Rhs: e(ast.IntLiteral{Value: 5})},
		}),
		exprLine(ast.SubProgram{
			Name: token.New(token.IDENTIFIER, "dbl"),
			Args: []ast.Located[ast.Expression]{e(v("x"))},
		}),
		exprLine(ast.Exit{}),
		simpleLine([]ast.SimpleStatement{
			ast.Send{Lhs: e(v("p")), Rhs: e(ast.NullLiteral{})},
		}, "dbl"),
		simpleLine([]ast.SimpleStatement{
			ast.Assign{
				Lhs: e(ast.UnaryOp{Operator: token.New(token.APOSTROPHE, "'"), Right: e(v("p"))}),
				Rhs: e(ast.BinaryOp{
					Left:     e(ast.UnaryOp{Operator: token.New(token.APOSTROPHE, "'"), Right: e(v("p"))}),
					Operator: token.New(token.STAR, "*"),
					Right:    e(ast.IntLiteral{Value: 2}),
				}),
			},
		}),
		exprLine(ast.Return{}),
	}}
	if err := in.Run(algo); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if in.ScopeDepth() != 1 {
		t.Errorf("scope depth = %d, want 1 after return", in.ScopeDepth())
	}
	got := in.HeapGet(mustAddr(t, in, "x"))
	if got.Kind() != value.IntKind || got.AsInt() != 10 {
		t.Errorf("x = %v, want Int(10) (doubled through the shared address)", got)
	}
}

func TestSubProgramArityMismatchIsAnError(t *testing.T) {
	in := New()
	algo := ast.Algorithm{Lines: []ast.Located[ast.FileLine]{
		exprLine(ast.SubProgram{Name: token.New(token.IDENTIFIER, "get"), Args: nil}),
		simpleLine([]ast.SimpleStatement{
			ast.Send{Lhs: e(v("p")), Rhs: e(ast.NullLiteral{})},
		}, "get"),
		exprLine(ast.Return{}),
	}}
	if err := in.Run(algo); err == nil {
		t.Fatal("expected an arity-mismatch error")
	}
}

func TestListLiteralBuildsTwoCellChain(t *testing.T) {
	in := run(t, simpleLine([]ast.SimpleStatement{
		ast.Assign{Lhs: e(v("head")), Rhs: e(ast.ListLiteral{Elements: []ast.Located[ast.Expression]{
			e(ast.IntLiteral{Value: 10}),
			e(ast.IntLiteral{Value: 20}),
			e(ast.IntLiteral{Value: 30}),
		}})},
	}))
	headAddr := mustAddr(t, in, "head")

	var got []int64
	cursor := value.Int(headAddr)
	for cursor.Kind() == value.IntKind {
		elem := in.HeapGet(cursor.AsInt() - 1)
		if elem.Kind() != value.IntKind {
			t.Fatalf("list element = %v, want Int", elem)
		}
		got = append(got, elem.AsInt())
		cursor = in.HeapGet(cursor.AsInt())
	}
	want := []int64{10, 20, 30}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestMulDerefPositiveFollowsChain(t *testing.T) {
	in := New()
	a := in.heap.alloc()
	b := in.heap.alloc()
	in.heap.set(a, value.Int(b))
	in.heap.set(b, value.Int(99))

	got, err := in.mulDeref(a, 2)
	if err != nil {
		t.Fatalf("mulDeref returned error: %v", err)
	}
	if got.Kind() != value.IntKind || got.AsInt() != 99 {
		t.Errorf("D{a,2} = %v, want Int(99)", got)
	}
}

func TestMulDerefNegativeFindsPredecessors(t *testing.T) {
	in := New()
	target := in.heap.alloc()
	in.heap.set(target, value.Int(42))
	first := in.heap.alloc()
	in.heap.set(first, value.Int(target))
	second := in.heap.alloc()
	in.heap.set(second, value.Int(target))

	result, err := in.mulDeref(target, -1)
	if err != nil {
		t.Fatalf("mulDeref returned error: %v", err)
	}
	if result.Kind() != value.IntKind {
		t.Fatalf("D{target,-1} = %v, want Int head address", result)
	}

	seen := map[int64]bool{}
	cursor := result
	for cursor.Kind() == value.IntKind {
		elemAddr := in.HeapGet(cursor.AsInt() - 1).AsInt()
		seen[elemAddr] = true
		cursor = in.HeapGet(cursor.AsInt())
	}
	if !seen[first] || !seen[second] {
		t.Errorf("predecessors %v, want both %d and %d", seen, first, second)
	}
}

func TestMulDerefNegativeWithNoMatchesIsNull(t *testing.T) {
	in := New()
	lonely := in.heap.alloc()

	got, err := in.mulDeref(lonely, -1)
	if err != nil {
		t.Fatalf("mulDeref returned error: %v", err)
	}
	if got.Kind() != value.NullKind {
		t.Errorf("D{lonely,-1} = %v, want Null", got)
	}
}

func TestExitHaltsBeforeLaterLines(t *testing.T) {
	in := run(t,
		exprLine(ast.Exit{}),
		simpleLine([]ast.SimpleStatement{
			ast.Assign{Lhs: e(v("x")), Rhs: e(ast.IntLiteral{Value: 1})},
		}),
	)
	if _, ok := in.ScopeLookup("x"); ok {
		t.Errorf("x should never have been bound, Exit halts the program first")
	}
}

func TestUndefinedLabelJumpIsAnError(t *testing.T) {
	in := New()
	algo := ast.Algorithm{Lines: []ast.Located[ast.FileLine]{
		exprLine(ast.UnconditionalJump{Label: "nowhere"}),
	}}
	if err := in.Run(algo); err == nil {
		t.Fatal("expected an undefined-label error")
	}
}
