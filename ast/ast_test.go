package ast

import (
	"testing"

	"adl/token"
)

// recorder is a minimal ExpressionVisitor that records which Visit method
// fired, used to assert Accept dispatches to the right one.
type recorder struct {
	visited string
}

func (r *recorder) VisitNullLiteral(NullLiteral) any     { r.visited = "Null"; return nil }
func (r *recorder) VisitIntLiteral(IntLiteral) any       { r.visited = "Int"; return nil }
func (r *recorder) VisitFloatLiteral(FloatLiteral) any   { r.visited = "Float"; return nil }
func (r *recorder) VisitBoolLiteral(BoolLiteral) any     { r.visited = "Bool"; return nil }
func (r *recorder) VisitStringLiteral(StringLiteral) any { r.visited = "String"; return nil }
func (r *recorder) VisitVar(Var) any                     { r.visited = "Var"; return nil }
func (r *recorder) VisitListLiteral(ListLiteral) any     { r.visited = "List"; return nil }
func (r *recorder) VisitCall(Call) any                   { r.visited = "Call"; return nil }
func (r *recorder) VisitUnaryOp(UnaryOp) any             { r.visited = "UnaryOp"; return nil }
func (r *recorder) VisitBinaryOp(BinaryOp) any           { r.visited = "BinaryOp"; return nil }

func TestExpressionAcceptDispatchesToMatchingVisitMethod(t *testing.T) {
	tests := []struct {
		name string
		expr Expression
		want string
	}{
		{"null", NullLiteral{}, "Null"},
		{"int", IntLiteral{Value: 5}, "Int"},
		{"float", FloatLiteral{Value: 1.5}, "Float"},
		{"bool", BoolLiteral{Value: true}, "Bool"},
		{"string", StringLiteral{Value: "hi"}, "String"},
		{"var", Var{Name: token.New(token.IDENTIFIER, "x")}, "Var"},
		{"list", ListLiteral{}, "List"},
		{"call", Call{Callee: token.New(token.IDENTIFIER, "Print")}, "Call"},
		{"unary", UnaryOp{Operator: token.New(token.APOSTROPHE, "'")}, "UnaryOp"},
		{"binary", BinaryOp{Operator: token.New(token.PLUS, "+")}, "BinaryOp"},
	}
	for _, tt := range tests {
		r := &recorder{}
		tt.expr.Accept(r)
		if r.visited != tt.want {
			t.Errorf("%s: Accept dispatched to %q, want %q", tt.name, r.visited, tt.want)
		}
	}
}

func TestLocatedPreservesSpan(t *testing.T) {
	left := token.Location{Row: 1, Column: 1}
	right := token.Location{Row: 1, Column: 5}
	loc := New[Expression](IntLiteral{Value: 42}, left, right)

	if !loc.Left.Equal(left) || !loc.Right.Equal(right) {
		t.Errorf("Located span = %v..%v, want %v..%v", loc.Left, loc.Right, left, right)
	}
	if !loc.Left.LessEqual(loc.Right) {
		t.Errorf("Located span should satisfy Left <= Right, got %v > %v", loc.Left, loc.Right)
	}
}

func TestOneLineStatementVariantsImplementInterface(t *testing.T) {
	var stmts []OneLineStatement = []OneLineStatement{
		SubProgram{Name: token.New(token.IDENTIFIER, "f")},
		Loop{Iterator: token.New(token.IDENTIFIER, "i")},
		Predicate{},
		Exit{},
		Return{},
		UnconditionalJump{Label: "top"},
	}
	if len(stmts) != 6 {
		t.Fatalf("expected 6 one-line statement variants, got %d", len(stmts))
	}
}

func TestSimpleStatementVariantsImplementInterface(t *testing.T) {
	var stmts []SimpleStatement = []SimpleStatement{
		Assign{},
		Send{},
		Exchange{},
		Del{},
		ExpressionStmt{},
		Import{Path: "unused"},
	}
	if len(stmts) != 6 {
		t.Fatalf("expected 6 simple statement variants, got %d", len(stmts))
	}
}
