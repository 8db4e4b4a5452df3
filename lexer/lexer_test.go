package lexer

import (
	"reflect"
	"testing"

	"adl/token"
)

func scanKinds(t *testing.T, input string) []token.Kind {
	t.Helper()
	l := New(input)
	located, err := l.Scan()
	if err != nil {
		t.Fatalf("Scan(%q) returned error: %v", input, err)
	}
	kinds := make([]token.Kind, len(located))
	for i, lt := range located {
		kinds[i] = lt.Tok.Kind
	}
	return kinds
}

func TestKeywordTokenSpans(t *testing.T) {
	tests := []struct {
		input string
		want  []token.Kind
	}{
		{"let", []token.Kind{token.LET, token.EOF}},
		{"L P SP return or and not", []token.Kind{
			token.LOOP, token.PRED, token.SUBPRG, token.RETURN,
			token.OR, token.AND, token.NOT, token.EOF,
		}},
		{"x", []token.Kind{token.IDENTIFIER, token.EOF}},
	}
	for _, tt := range tests {
		got := scanKinds(t, tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("scanKinds(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}

	located, err := New("let").Scan()
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if located[0].Start.Column != 1 || located[0].End.Column != 4 {
		t.Errorf("let span = %v..%v, want columns 1..4", located[0].Start, located[0].End)
	}
}

func TestIntegerAndFloatLiteralSpans(t *testing.T) {
	l := New("42 3.14 7.")
	located, err := l.Scan()
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(located) != 4 {
		t.Fatalf("expected 3 literals + EOF, got %d tokens", len(located))
	}

	if located[0].Tok.Kind != token.INT || located[0].Tok.Literal != int64(42) {
		t.Errorf("located[0] = %+v, want INT 42", located[0].Tok)
	}
	if located[1].Tok.Kind != token.FLOAT || located[1].Tok.Literal != float64(3.14) {
		t.Errorf("located[1] = %+v, want FLOAT 3.14", located[1].Tok)
	}
	if located[2].Tok.Kind != token.FLOAT || located[2].Tok.Literal != float64(7.0) {
		t.Errorf("located[2] = %+v, want FLOAT 7.0", located[2].Tok)
	}

	wantSpans := [][2]int{{1, 3}, {4, 8}, {9, 11}}
	for i, want := range wantSpans {
		if located[i].Start.Column != want[0] || located[i].End.Column != want[1] {
			t.Errorf("located[%d] span = %v..%v, want columns %d..%d", i, located[i].Start, located[i].End, want[0], want[1])
		}
	}
}

func TestUnterminatedStringReportsStartLocation(t *testing.T) {
	l := New(`x "unterminated`)
	_, err := l.Next() // x
	if err != nil {
		t.Fatalf("unexpected error scanning identifier: %v", err)
	}
	_, err = l.Next() // the broken string literal
	lexErr, ok := err.(Error)
	if !ok {
		t.Fatalf("expected lexer.Error, got %T (%v)", err, err)
	}
	if lexErr.Kind != UnterminatedString {
		t.Errorf("Kind = %v, want UnterminatedString", lexErr.Kind)
	}
	if lexErr.Loc.Column != 3 {
		t.Errorf("Loc = %v, want column 3 (the opening quote)", lexErr.Loc)
	}
}

func TestLongestMatchPrefersExchangeOverSendAndAssign(t *testing.T) {
	got := scanKinds(t, "<=>")
	want := []token.Kind{token.EXCHANGE, token.EOF}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("scanKinds(\"<=>\") = %v, want %v", got, want)
	}
}

func TestLongestMatchDoesNotOverreachAcrossUnrelatedChars(t *testing.T) {
	got := scanKinds(t, "< = >")
	want := []token.Kind{token.LESS, token.ASSIGN, token.GREATER, token.EOF}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("scanKinds(\"< = >\") = %v, want %v", got, want)
	}
}

func TestEllipsisAndDoubleColon(t *testing.T) {
	got := scanKinds(t, "... ::")
	want := []token.Kind{token.ELLIPSIS, token.DOUBLE_COLON, token.EOF}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("scanKinds(\"... ::\") = %v, want %v", got, want)
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	got := scanKinds(t, "let # this is a comment\nx")
	want := []token.Kind{token.LET, token.IDENTIFIER, token.EOF}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("scanKinds with comment = %v, want %v", got, want)
	}
}

func TestEOFEmittedExactlyOnce(t *testing.T) {
	l := New("")
	lt, err := l.Next()
	if err != nil {
		t.Fatalf("Next on empty input returned error: %v", err)
	}
	if lt.Tok.Kind != token.EOF {
		t.Fatalf("Next on empty input = %v, want EOF", lt.Tok.Kind)
	}
	if _, err := l.Next(); err != ErrExhausted {
		t.Errorf("second Next() after EOF = %v, want ErrExhausted", err)
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	l := New("$")
	_, err := l.Next()
	lexErr, ok := err.(Error)
	if !ok {
		t.Fatalf("expected lexer.Error, got %T (%v)", err, err)
	}
	if lexErr.Kind != UnexpectedCharacter {
		t.Errorf("Kind = %v, want UnexpectedCharacter", lexErr.Kind)
	}
}
