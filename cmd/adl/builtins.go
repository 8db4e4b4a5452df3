package main

import (
	"fmt"

	"adl/interpreter"
	"adl/value"
	"adl/vm"
)

// printValue renders a value for Print's output. Strings print raw (no
// quoting); every other kind uses its Repr, which already renders Null
// as "null" — the same rendering informatter-nilan's VisitPrintStmt
// gives its own PrintStmt, generalized here to a builtin call instead
// of a dedicated grammar production (spec.md §1 places the concrete
// builtin library out of core scope; the CLI is what supplies one).
func printValue(v value.Value) {
	if v.Kind() == value.StringKind {
		fmt.Println(v.AsString())
		return
	}
	fmt.Println(v.Repr())
}

func registerVMBuiltins(m *vm.VM) {
	m.RegisterBuiltin("Print", func(_ *vm.VM, args []value.Value) (value.Value, error) {
		for _, a := range args {
			printValue(a)
		}
		return value.Null, nil
	})
}

func registerInterpreterBuiltins(in *interpreter.Interpreter) {
	in.RegisterBuiltin("Print", func(_ *interpreter.Interpreter, args []value.Value) (value.Value, error) {
		for _, a := range args {
			printValue(a)
		}
		return value.Null, nil
	})
}
