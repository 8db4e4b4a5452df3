package parser

import (
	"encoding/json"
	"fmt"
	"os"

	"adl/ast"
	"adl/token"
)

const (
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

// astPrinter implements every visitor interface and builds a
// JSON-friendly representation of the AST using maps and slices, one
// "type"-tagged map per node family, the same shape PrintASTJSON's
// teacher counterpart produces for Nilan's tree.
type astPrinter struct{}

func optionalString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func (p astPrinter) VisitNullLiteral(ast.NullLiteral) any {
	return map[string]any{"type": "NullLiteral"}
}

func (p astPrinter) VisitIntLiteral(i ast.IntLiteral) any {
	return map[string]any{"type": "IntLiteral", "value": i.Value}
}

func (p astPrinter) VisitFloatLiteral(f ast.FloatLiteral) any {
	return map[string]any{"type": "FloatLiteral", "value": f.Value}
}

func (p astPrinter) VisitBoolLiteral(b ast.BoolLiteral) any {
	return map[string]any{"type": "BoolLiteral", "value": b.Value}
}

func (p astPrinter) VisitStringLiteral(s ast.StringLiteral) any {
	return map[string]any{"type": "StringLiteral", "value": s.Value}
}

func (p astPrinter) VisitVar(v ast.Var) any {
	return map[string]any{"type": "Var", "name": v.Name.Lexeme}
}

func (p astPrinter) VisitListLiteral(l ast.ListLiteral) any {
	elements := make([]any, 0, len(l.Elements))
	for _, e := range l.Elements {
		elements = append(elements, e.Node.Accept(p))
	}
	return map[string]any{"type": "ListLiteral", "elements": elements}
}

func (p astPrinter) VisitCall(c ast.Call) any {
	args := make([]any, 0, len(c.Args))
	for _, a := range c.Args {
		args = append(args, a.Node.Accept(p))
	}
	return map[string]any{"type": "Call", "callee": c.Callee.Lexeme, "args": args}
}

func (p astPrinter) VisitUnaryOp(u ast.UnaryOp) any {
	out := map[string]any{
		"type":     "UnaryOp",
		"operator": u.Operator.Lexeme,
		"right":    u.Right.Node.Accept(p),
	}
	if u.Level != nil {
		out["level"] = u.Level.Node.Accept(p)
	}
	return out
}

func (p astPrinter) VisitBinaryOp(b ast.BinaryOp) any {
	return map[string]any{
		"type":     "BinaryOp",
		"operator": b.Operator.Lexeme,
		"left":     b.Left.Node.Accept(p),
		"right":    b.Right.Node.Accept(p),
	}
}

func (p astPrinter) VisitOneLineStatements(o ast.OneLineStatements) any {
	return map[string]any{"type": "OneLineStatements", "stmt": o.Stmt.Node.Accept(p)}
}

func (p astPrinter) VisitSimpleStatements(s ast.SimpleStatements) any {
	stmts := make([]any, 0, len(s.Stmts))
	for _, st := range s.Stmts {
		stmts = append(stmts, st.Node.Accept(p))
	}
	return map[string]any{"type": "SimpleStatements", "stmts": stmts}
}

func (p astPrinter) VisitSubProgram(s ast.SubProgram) any {
	args := make([]any, 0, len(s.Args))
	for _, a := range s.Args {
		args = append(args, a.Node.Accept(p))
	}
	return map[string]any{
		"type":     "SubProgram",
		"name":     s.Name.Lexeme,
		"args":     args,
		"label_to": optionalString(s.LabelTo),
	}
}

func (p astPrinter) VisitLoop(l ast.Loop) any {
	return map[string]any{
		"type":         "Loop",
		"initial":      l.Initial.Node.Accept(p),
		"step":         l.Step.Node.Accept(p),
		"last_or_cond": l.LastOrCond.Node.Accept(p),
		"iterator":     l.Iterator.Lexeme,
		"label_until":  l.LabelUntil,
		"label_to":     optionalString(l.LabelTo),
	}
}

func (p astPrinter) VisitPredicate(pr ast.Predicate) any {
	return map[string]any{
		"type":     "Predicate",
		"cond":     pr.Cond.Node.Accept(p),
		"if_true":  pr.IfTrue.Node.Accept(p),
		"if_false": pr.IfFalse.Node.Accept(p),
	}
}

func (p astPrinter) VisitExit(ast.Exit) any {
	return map[string]any{"type": "Exit"}
}

func (p astPrinter) VisitReturn(ast.Return) any {
	return map[string]any{"type": "Return"}
}

func (p astPrinter) VisitUnconditionalJump(u ast.UnconditionalJump) any {
	return map[string]any{"type": "UnconditionalJump", "label": u.Label}
}

func (p astPrinter) VisitAssign(a ast.Assign) any {
	return map[string]any{"type": "Assign", "lhs": a.Lhs.Node.Accept(p), "rhs": a.Rhs.Node.Accept(p)}
}

func (p astPrinter) VisitSend(s ast.Send) any {
	return map[string]any{"type": "Send", "lhs": s.Lhs.Node.Accept(p), "rhs": s.Rhs.Node.Accept(p)}
}

func (p astPrinter) VisitExchange(e ast.Exchange) any {
	return map[string]any{"type": "Exchange", "lhs": e.Lhs.Node.Accept(p), "rhs": e.Rhs.Node.Accept(p)}
}

func (p astPrinter) VisitDel(d ast.Del) any {
	return map[string]any{"type": "Del", "rhs": d.Rhs.Node.Accept(p)}
}

func (p astPrinter) VisitExpressionStmt(e ast.ExpressionStmt) any {
	return map[string]any{"type": "ExpressionStmt", "expr": e.Expr.Node.Accept(p)}
}

func (p astPrinter) VisitImport(i ast.Import) any {
	return map[string]any{"type": "Import", "path": i.Path}
}

func fileLineToJSON(line ast.FileLine, p astPrinter) any {
	return map[string]any{
		"labels":     line.Labels,
		"statements": line.Statements.Node.Accept(p),
	}
}

// AlgorithmToJSON converts a parsed Algorithm into a JSON-friendly tree.
func AlgorithmToJSON(a ast.Algorithm) any {
	p := astPrinter{}
	lines := make([]any, 0, len(a.Lines))
	for _, l := range a.Lines {
		lines = append(lines, fileLineToJSON(l.Node, p))
	}
	return map[string]any{"lines": lines}
}

// PrintASTJSON converts an Algorithm into a prettified JSON string,
// echoing it to stdout banner-wrapped in the teacher's yellow-ANSI style.
func PrintASTJSON(a ast.Algorithm) (string, error) {
	bytes, err := json.MarshalIndent(AlgorithmToJSON(a), "", "  ")
	if err != nil {
		return "", err
	}
	jsonStr := string(bytes)
	fmt.Println(colorYellow + "----- AST JSON -----")
	fmt.Println(colorYellow + jsonStr)
	fmt.Println(colorYellow + "-----" + colorReset)
	fmt.Println("")
	return jsonStr, nil
}

// WriteASTJSONToFile writes the prettified AST JSON to the given file path.
func WriteASTJSONToFile(a ast.Algorithm, path string) error {
	s, err := PrintASTJSON(a)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating AST file: %s", err.Error())
	}
	defer f.Close()
	if _, err := f.Write([]byte(s)); err != nil {
		return fmt.Errorf("error writing AST to file: %s", err.Error())
	}
	return nil
}

// --- decoding: the round trip half the teacher's printer never needed ---
//
// Locations are not carried through the JSON form (nothing downstream of
// a decoded tree needs source spans), so every Located[T] reconstructed
// here carries a zero-value Left/Right.

func noLoc[T any](node T) ast.Located[T] {
	return ast.New(node, token.Location{}, token.Location{})
}

// operatorToken rebuilds the token an operator's lexeme denotes. Symbol
// operators (`+`, `<`, `'`, …) have a Kind identical to their lexeme;
// keyword operators (`or`, `and`, `not`, the `D` of MDEREF) are resolved
// through token.Keywords instead.
func operatorToken(lexeme string) token.Token {
	if kind, ok := token.Keywords[lexeme]; ok {
		return token.New(kind, lexeme)
	}
	return token.New(token.Kind(lexeme), lexeme)
}

func asMap(v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %T", v)
	}
	return m, nil
}

func nodeType(m map[string]any) (string, error) {
	t, ok := m["type"].(string)
	if !ok {
		return "", fmt.Errorf("missing or non-string \"type\" field in %v", m)
	}
	return t, nil
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

// DecodeAlgorithm parses the JSON produced by AlgorithmToJSON/PrintASTJSON
// back into an Algorithm.
func DecodeAlgorithm(data []byte) (ast.Algorithm, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return ast.Algorithm{}, err
	}
	lines := asSlice(raw["lines"])
	out := make([]ast.Located[ast.FileLine], 0, len(lines))
	for _, l := range lines {
		lm, err := asMap(l)
		if err != nil {
			return ast.Algorithm{}, err
		}
		line, err := decodeFileLine(lm)
		if err != nil {
			return ast.Algorithm{}, err
		}
		out = append(out, noLoc(line))
	}
	return ast.Algorithm{Lines: out}, nil
}

func decodeFileLine(m map[string]any) (ast.FileLine, error) {
	var labels []string
	for _, l := range asSlice(m["labels"]) {
		if s, ok := l.(string); ok {
			labels = append(labels, s)
		}
	}
	stmtsMap, err := asMap(m["statements"])
	if err != nil {
		return ast.FileLine{}, fmt.Errorf("file line statements: %w", err)
	}
	stmts, err := decodeStatements(stmtsMap)
	if err != nil {
		return ast.FileLine{}, err
	}
	return ast.FileLine{Labels: labels, Statements: noLoc(stmts)}, nil
}

func decodeStatements(m map[string]any) (ast.Statements, error) {
	t, err := nodeType(m)
	if err != nil {
		return nil, err
	}
	switch t {
	case "OneLineStatements":
		stmtMap, err := asMap(m["stmt"])
		if err != nil {
			return nil, err
		}
		stmt, err := decodeOneLine(stmtMap)
		if err != nil {
			return nil, err
		}
		return ast.OneLineStatements{Stmt: noLoc(stmt)}, nil
	case "SimpleStatements":
		var stmts []ast.Located[ast.SimpleStatement]
		for _, s := range asSlice(m["stmts"]) {
			sm, err := asMap(s)
			if err != nil {
				return nil, err
			}
			stmt, err := decodeSimple(sm)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, noLoc(stmt))
		}
		return ast.SimpleStatements{Stmts: stmts}, nil
	default:
		return nil, fmt.Errorf("unknown Statements type %q", t)
	}
}

func decodeOneLine(m map[string]any) (ast.OneLineStatement, error) {
	t, err := nodeType(m)
	if err != nil {
		return nil, err
	}
	switch t {
	case "SubProgram":
		args, err := decodeExprList(m["args"])
		if err != nil {
			return nil, err
		}
		name, _ := m["name"].(string)
		return ast.SubProgram{
			Name:    token.New(token.IDENTIFIER, name),
			Args:    args,
			LabelTo: decodeOptionalString(m["label_to"]),
		}, nil
	case "Loop":
		initial, err := decodeExprField(m["initial"])
		if err != nil {
			return nil, err
		}
		step, err := decodeExprField(m["step"])
		if err != nil {
			return nil, err
		}
		lastOrCond, err := decodeExprField(m["last_or_cond"])
		if err != nil {
			return nil, err
		}
		iterator, _ := m["iterator"].(string)
		labelUntil, _ := m["label_until"].(string)
		return ast.Loop{
			Initial:    noLoc(initial),
			Step:       noLoc(step),
			LastOrCond: noLoc(lastOrCond),
			Iterator:   token.New(token.IDENTIFIER, iterator),
			LabelUntil: labelUntil,
			LabelTo:    decodeOptionalString(m["label_to"]),
		}, nil
	case "Predicate":
		cond, err := decodeExprField(m["cond"])
		if err != nil {
			return nil, err
		}
		ifTrue, err := decodeExprField(m["if_true"])
		if err != nil {
			return nil, err
		}
		ifFalse, err := decodeExprField(m["if_false"])
		if err != nil {
			return nil, err
		}
		return ast.Predicate{Cond: noLoc(cond), IfTrue: noLoc(ifTrue), IfFalse: noLoc(ifFalse)}, nil
	case "Exit":
		return ast.Exit{}, nil
	case "Return":
		return ast.Return{}, nil
	case "UnconditionalJump":
		label, _ := m["label"].(string)
		return ast.UnconditionalJump{Label: label}, nil
	default:
		return nil, fmt.Errorf("unknown OneLineStatement type %q", t)
	}
}

func decodeSimple(m map[string]any) (ast.SimpleStatement, error) {
	t, err := nodeType(m)
	if err != nil {
		return nil, err
	}
	switch t {
	case "Assign":
		lhs, err := decodeExprField(m["lhs"])
		if err != nil {
			return nil, err
		}
		rhs, err := decodeExprField(m["rhs"])
		if err != nil {
			return nil, err
		}
		return ast.Assign{Lhs: noLoc(lhs), Rhs: noLoc(rhs)}, nil
	case "Send":
		lhs, err := decodeExprField(m["lhs"])
		if err != nil {
			return nil, err
		}
		rhs, err := decodeExprField(m["rhs"])
		if err != nil {
			return nil, err
		}
		return ast.Send{Lhs: noLoc(lhs), Rhs: noLoc(rhs)}, nil
	case "Exchange":
		lhs, err := decodeExprField(m["lhs"])
		if err != nil {
			return nil, err
		}
		rhs, err := decodeExprField(m["rhs"])
		if err != nil {
			return nil, err
		}
		return ast.Exchange{Lhs: noLoc(lhs), Rhs: noLoc(rhs)}, nil
	case "Del":
		rhs, err := decodeExprField(m["rhs"])
		if err != nil {
			return nil, err
		}
		return ast.Del{Rhs: noLoc(rhs)}, nil
	case "ExpressionStmt":
		expr, err := decodeExprField(m["expr"])
		if err != nil {
			return nil, err
		}
		return ast.ExpressionStmt{Expr: noLoc(expr)}, nil
	case "Import":
		path, _ := m["path"].(string)
		return ast.Import{Path: path}, nil
	default:
		return nil, fmt.Errorf("unknown SimpleStatement type %q", t)
	}
}

func decodeExprField(v any) (ast.Expression, error) {
	m, err := asMap(v)
	if err != nil {
		return nil, fmt.Errorf("expression field: %w", err)
	}
	return decodeExpr(m)
}

func decodeExprList(v any) ([]ast.Located[ast.Expression], error) {
	var out []ast.Located[ast.Expression]
	for _, e := range asSlice(v) {
		em, err := asMap(e)
		if err != nil {
			return nil, err
		}
		expr, err := decodeExpr(em)
		if err != nil {
			return nil, err
		}
		out = append(out, noLoc(expr))
	}
	return out, nil
}

func decodeOptionalString(v any) *string {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func decodeExpr(m map[string]any) (ast.Expression, error) {
	t, err := nodeType(m)
	if err != nil {
		return nil, err
	}
	switch t {
	case "NullLiteral":
		return ast.NullLiteral{}, nil
	case "IntLiteral":
		return ast.IntLiteral{Value: int64(m["value"].(float64))}, nil
	case "FloatLiteral":
		return ast.FloatLiteral{Value: m["value"].(float64)}, nil
	case "BoolLiteral":
		return ast.BoolLiteral{Value: m["value"].(bool)}, nil
	case "StringLiteral":
		return ast.StringLiteral{Value: m["value"].(string)}, nil
	case "Var":
		name, _ := m["name"].(string)
		return ast.Var{Name: token.New(token.IDENTIFIER, name)}, nil
	case "ListLiteral":
		elems, err := decodeExprList(m["elements"])
		if err != nil {
			return nil, err
		}
		return ast.ListLiteral{Elements: elems}, nil
	case "Call":
		args, err := decodeExprList(m["args"])
		if err != nil {
			return nil, err
		}
		callee, _ := m["callee"].(string)
		return ast.Call{Callee: token.New(token.IDENTIFIER, callee), Args: args}, nil
	case "UnaryOp":
		right, err := decodeExprField(m["right"])
		if err != nil {
			return nil, err
		}
		op, _ := m["operator"].(string)
		u := ast.UnaryOp{Operator: operatorToken(op), Right: noLoc(right)}
		if lv, ok := m["level"]; ok {
			level, err := decodeExprField(lv)
			if err != nil {
				return nil, err
			}
			located := noLoc(level)
			u.Level = &located
		}
		return u, nil
	case "BinaryOp":
		left, err := decodeExprField(m["left"])
		if err != nil {
			return nil, err
		}
		right, err := decodeExprField(m["right"])
		if err != nil {
			return nil, err
		}
		op, _ := m["operator"].(string)
		return ast.BinaryOp{Left: noLoc(left), Operator: operatorToken(op), Right: noLoc(right)}, nil
	default:
		return nil, fmt.Errorf("unknown Expression type %q", t)
	}
}
