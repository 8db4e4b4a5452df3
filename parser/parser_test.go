package parser

import (
	"encoding/json"
	"testing"

	"adl/ast"
	"adl/token"
)

func parseOneLine(t *testing.T, src string) ast.FileLine {
	t.Helper()
	algo, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", src, err)
	}
	if len(algo.Lines) != 1 {
		t.Fatalf("Parse(%q) = %d lines, want 1: %#v", src, len(algo.Lines), algo.Lines)
	}
	return algo.Lines[0].Node
}

func oneLineStmt(t *testing.T, line ast.FileLine) ast.OneLineStatement {
	t.Helper()
	ols, ok := line.Statements.Node.(ast.OneLineStatements)
	if !ok {
		t.Fatalf("line statements = %T, want OneLineStatements", line.Statements.Node)
	}
	return ols.Stmt.Node
}

func simpleStmts(t *testing.T, line ast.FileLine) []ast.SimpleStatement {
	t.Helper()
	ss, ok := line.Statements.Node.(ast.SimpleStatements)
	if !ok {
		t.Fatalf("line statements = %T, want SimpleStatements", line.Statements.Node)
	}
	out := make([]ast.SimpleStatement, len(ss.Stmts))
	for i, s := range ss.Stmts {
		out[i] = s.Node
	}
	return out
}

func TestParseLabels(t *testing.T) {
	line := parseOneLine(t, "outer: inner: return")
	if len(line.Labels) != 2 || line.Labels[0] != "outer" || line.Labels[1] != "inner" {
		t.Fatalf("labels = %v, want [outer inner]", line.Labels)
	}
	if _, ok := oneLineStmt(t, line).(ast.Return); !ok {
		t.Fatalf("stmt = %T, want Return", oneLineStmt(t, line))
	}
}

func TestParseAssign(t *testing.T) {
	line := parseOneLine(t, "x = 10")
	stmts := simpleStmts(t, line)
	assign, ok := stmts[0].(ast.Assign)
	if !ok {
		t.Fatalf("stmt = %T, want Assign", stmts[0])
	}
	v, ok := assign.Lhs.Node.(ast.Var)
	if !ok || v.Name.Lexeme != "x" {
		t.Errorf("lhs = %#v, want Var{x}", assign.Lhs.Node)
	}
	lit, ok := assign.Rhs.Node.(ast.IntLiteral)
	if !ok || lit.Value != 10 {
		t.Errorf("rhs = %#v, want IntLiteral{10}", assign.Rhs.Node)
	}
}

func TestParseLetConstPrefixesAreInert(t *testing.T) {
	letLine := parseOneLine(t, "let x = 1")
	constLine := parseOneLine(t, "const y = 2")
	if _, ok := simpleStmts(t, letLine)[0].(ast.Assign); !ok {
		t.Errorf("let x = 1 did not parse to a plain Assign")
	}
	if _, ok := simpleStmts(t, constLine)[0].(ast.Assign); !ok {
		t.Errorf("const y = 2 did not parse to a plain Assign")
	}
}

func TestParseSend(t *testing.T) {
	// `rhs => lhs`: the value flows into the address named after '=>'.
	line := parseOneLine(t, "10 => x")
	send, ok := simpleStmts(t, line)[0].(ast.Send)
	if !ok {
		t.Fatalf("stmt = %T, want Send", simpleStmts(t, line)[0])
	}
	if lit, ok := send.Rhs.Node.(ast.IntLiteral); !ok || lit.Value != 10 {
		t.Errorf("Send.Rhs = %#v, want IntLiteral{10}", send.Rhs.Node)
	}
	if v, ok := send.Lhs.Node.(ast.Var); !ok || v.Name.Lexeme != "x" {
		t.Errorf("Send.Lhs = %#v, want Var{x}", send.Lhs.Node)
	}
}

func TestParseExchange(t *testing.T) {
	line := parseOneLine(t, "a <=> b")
	exch, ok := simpleStmts(t, line)[0].(ast.Exchange)
	if !ok {
		t.Fatalf("stmt = %T, want Exchange", simpleStmts(t, line)[0])
	}
	lv, _ := exch.Lhs.Node.(ast.Var)
	rv, _ := exch.Rhs.Node.(ast.Var)
	if lv.Name.Lexeme != "a" || rv.Name.Lexeme != "b" {
		t.Errorf("Exchange = %#v <=> %#v, want a <=> b", exch.Lhs.Node, exch.Rhs.Node)
	}
}

func TestParseDel(t *testing.T) {
	line := parseOneLine(t, "del x")
	del, ok := simpleStmts(t, line)[0].(ast.Del)
	if !ok {
		t.Fatalf("stmt = %T, want Del", simpleStmts(t, line)[0])
	}
	if v, ok := del.Rhs.Node.(ast.Var); !ok || v.Name.Lexeme != "x" {
		t.Errorf("Del.Rhs = %#v, want Var{x}", del.Rhs.Node)
	}
}

func TestParseImport(t *testing.T) {
	line := parseOneLine(t, "import foo.bar")
	imp, ok := simpleStmts(t, line)[0].(ast.Import)
	if !ok {
		t.Fatalf("stmt = %T, want Import", simpleStmts(t, line)[0])
	}
	if imp.Path != "foo.bar" {
		t.Errorf("Import.Path = %q, want foo.bar", imp.Path)
	}
}

func TestParseSemicolonSeparatedSimpleStatements(t *testing.T) {
	line := parseOneLine(t, "x = 1; del x")
	stmts := simpleStmts(t, line)
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2: %#v", len(stmts), stmts)
	}
	if _, ok := stmts[0].(ast.Assign); !ok {
		t.Errorf("stmts[0] = %T, want Assign", stmts[0])
	}
	if _, ok := stmts[1].(ast.Del); !ok {
		t.Errorf("stmts[1] = %T, want Del", stmts[1])
	}
}

func TestParseBareLabelJump(t *testing.T) {
	line := parseOneLine(t, "done")
	jump, ok := oneLineStmt(t, line).(ast.UnconditionalJump)
	if !ok {
		t.Fatalf("stmt = %T, want UnconditionalJump", oneLineStmt(t, line))
	}
	if jump.Label != "done" {
		t.Errorf("jump label = %q, want done", jump.Label)
	}
}

func TestParseExit(t *testing.T) {
	line := parseOneLine(t, "!")
	if _, ok := oneLineStmt(t, line).(ast.Exit); !ok {
		t.Fatalf("stmt = %T, want Exit", oneLineStmt(t, line))
	}
}

func TestParsePredicate(t *testing.T) {
	line := parseOneLine(t, "P{5 < 3} 1 | 2")
	pred, ok := oneLineStmt(t, line).(ast.Predicate)
	if !ok {
		t.Fatalf("stmt = %T, want Predicate", oneLineStmt(t, line))
	}
	cond, ok := pred.Cond.Node.(ast.BinaryOp)
	if !ok || cond.Operator.Kind != token.LESS {
		t.Errorf("cond = %#v, want a '<' BinaryOp", pred.Cond.Node)
	}
	if lit, ok := pred.IfTrue.Node.(ast.IntLiteral); !ok || lit.Value != 1 {
		t.Errorf("if_true = %#v, want IntLiteral{1}", pred.IfTrue.Node)
	}
	if lit, ok := pred.IfFalse.Node.(ast.IntLiteral); !ok || lit.Value != 2 {
		t.Errorf("if_false = %#v, want IntLiteral{2}", pred.IfFalse.Node)
	}
}

func TestParseLoop(t *testing.T) {
	line := parseOneLine(t, "L{0, 1, 10 => i} done @ onward")
	loop, ok := oneLineStmt(t, line).(ast.Loop)
	if !ok {
		t.Fatalf("stmt = %T, want Loop", oneLineStmt(t, line))
	}
	if loop.Iterator.Lexeme != "i" {
		t.Errorf("iterator = %q, want i", loop.Iterator.Lexeme)
	}
	if loop.LabelUntil != "done" {
		t.Errorf("label_until = %q, want done", loop.LabelUntil)
	}
	if loop.LabelTo == nil || *loop.LabelTo != "onward" {
		t.Errorf("label_to = %v, want onward", loop.LabelTo)
	}
}

func TestParseSubProgramCall(t *testing.T) {
	line := parseOneLine(t, "SP get{5} @ after")
	sp, ok := oneLineStmt(t, line).(ast.SubProgram)
	if !ok {
		t.Fatalf("stmt = %T, want SubProgram", oneLineStmt(t, line))
	}
	if sp.Name.Lexeme != "get" {
		t.Errorf("name = %q, want get", sp.Name.Lexeme)
	}
	if len(sp.Args) != 1 {
		t.Fatalf("args = %v, want 1 element", sp.Args)
	}
	if sp.LabelTo == nil || *sp.LabelTo != "after" {
		t.Errorf("label_to = %v, want after", sp.LabelTo)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	// 1 + 2 * 3 must parse as 1 + (2 * 3), not (1 + 2) * 3.
	line := parseOneLine(t, "x = 1 + 2 * 3")
	assign := simpleStmts(t, line)[0].(ast.Assign)
	add, ok := assign.Rhs.Node.(ast.BinaryOp)
	if !ok || add.Operator.Kind != token.PLUS {
		t.Fatalf("rhs = %#v, want top-level '+' BinaryOp", assign.Rhs.Node)
	}
	if _, ok := add.Left.Node.(ast.IntLiteral); !ok {
		t.Errorf("left operand = %#v, want IntLiteral", add.Left.Node)
	}
	mul, ok := add.Right.Node.(ast.BinaryOp)
	if !ok || mul.Operator.Kind != token.STAR {
		t.Errorf("right operand = %#v, want '*' BinaryOp", add.Right.Node)
	}
}

func TestParseGroupedExpression(t *testing.T) {
	line := parseOneLine(t, "x = (1 + 2) * 3")
	assign := simpleStmts(t, line)[0].(ast.Assign)
	mul, ok := assign.Rhs.Node.(ast.BinaryOp)
	if !ok || mul.Operator.Kind != token.STAR {
		t.Fatalf("rhs = %#v, want top-level '*' BinaryOp", assign.Rhs.Node)
	}
	if _, ok := mul.Left.Node.(ast.BinaryOp); !ok {
		t.Errorf("left operand = %#v, want a grouped '+' BinaryOp", mul.Left.Node)
	}
}

func TestParseUnaryForms(t *testing.T) {
	line := parseOneLine(t, "x = D{y, 2}")
	assign := simpleStmts(t, line)[0].(ast.Assign)
	u, ok := assign.Rhs.Node.(ast.UnaryOp)
	if !ok || u.Operator.Kind != token.MDEREF {
		t.Fatalf("rhs = %#v, want MDEREF UnaryOp", assign.Rhs.Node)
	}
	if u.Level == nil {
		t.Fatal("D{...} UnaryOp.Level is nil, want the level expression")
	}
	if lit, ok := u.Level.Node.(ast.IntLiteral); !ok || lit.Value != 2 {
		t.Errorf("level = %#v, want IntLiteral{2}", u.Level.Node)
	}
}

func TestParseListLiteral(t *testing.T) {
	line := parseOneLine(t, "x = [1, 2, 3]")
	assign := simpleStmts(t, line)[0].(ast.Assign)
	list, ok := assign.Rhs.Node.(ast.ListLiteral)
	if !ok {
		t.Fatalf("rhs = %#v, want ListLiteral", assign.Rhs.Node)
	}
	if len(list.Elements) != 3 {
		t.Fatalf("elements = %v, want 3", list.Elements)
	}
}

func TestParseCall(t *testing.T) {
	line := parseOneLine(t, "x = foo{1, 2}")
	assign := simpleStmts(t, line)[0].(ast.Assign)
	call, ok := assign.Rhs.Node.(ast.Call)
	if !ok {
		t.Fatalf("rhs = %#v, want Call", assign.Rhs.Node)
	}
	if call.Callee.Lexeme != "foo" {
		t.Errorf("callee = %q, want foo", call.Callee.Lexeme)
	}
	if len(call.Args) != 2 {
		t.Errorf("args = %v, want 2 elements", call.Args)
	}
}

func TestParseUnexpectedTokenProducesSyntaxError(t *testing.T) {
	_, err := Parse("x = +")
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	if _, ok := err.(SyntaxError); !ok {
		t.Errorf("expected parser.SyntaxError, got %T: %v", err, err)
	}
}

func TestAlgorithmJSONRoundTrip(t *testing.T) {
	src := "loop_start: L{0, 1, 10 => i} done\nx = D{y, -2}\nSP get{x} @ ret\nret: return\ndone: !"
	algo, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	before, err := json.Marshal(AlgorithmToJSON(algo))
	if err != nil {
		t.Fatalf("marshal original: %v", err)
	}

	decoded, err := DecodeAlgorithm(before)
	if err != nil {
		t.Fatalf("DecodeAlgorithm returned error: %v", err)
	}

	after, err := json.Marshal(AlgorithmToJSON(decoded))
	if err != nil {
		t.Fatalf("marshal decoded: %v", err)
	}

	if string(before) != string(after) {
		t.Errorf("round trip mismatch:\nbefore: %s\nafter:  %s", before, after)
	}
}
