// Package value defines the dynamically tagged runtime value that both the
// VM and the tree-walking interpreter operate on. Factoring it into its
// own package lets the two backends share exactly the same arithmetic,
// comparison, and type-error semantics instead of each re-deriving them.
package value

import (
	"fmt"
	"math"
)

// Kind discriminates the variant a Value holds.
type Kind int

const (
	NullKind Kind = iota
	IntKind
	FloatKind
	BoolKind
	StringKind
	FunctionKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "Null"
	case IntKind:
		return "Int"
	case FloatKind:
		return "Float"
	case BoolKind:
		return "Bool"
	case StringKind:
		return "String"
	case FunctionKind:
		return "Function"
	default:
		return "Unknown"
	}
}

// Builtin is a host-provided callable. The VM and interpreter each close
// over their own execution state when registering one, so this package
// never needs to know about either.
type Builtin struct {
	Name string
	Call func(args []Value) (Value, error)
}

// Value is the tagged union every adl runtime value is built from. An
// Int doubles as a heap address wherever addresses are needed — the
// language has no separate pointer type.
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	s    string
	fn   Builtin
}

// Null is the single Null value.
var Null = Value{kind: NullKind}

// Int wraps a 64-bit signed integer.
func Int(i int64) Value { return Value{kind: IntKind, i: i} }

// Float wraps a 64-bit float.
func Float(f float64) Value { return Value{kind: FloatKind, f: f} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: BoolKind, b: b} }

// String wraps a string.
func String(s string) Value { return Value{kind: StringKind, s: s} }

// Function wraps a host builtin.
func Function(fn Builtin) Value { return Value{kind: FunctionKind, fn: fn} }

func (v Value) Kind() Kind { return v.kind }

// AsInt returns the underlying int64. Callers must check Kind() first.
func (v Value) AsInt() int64 { return v.i }

// AsFloat returns the underlying float64. Callers must check Kind() first.
func (v Value) AsFloat() float64 { return v.f }

// AsBool returns the underlying bool. Callers must check Kind() first.
func (v Value) AsBool() bool { return v.b }

// AsString returns the underlying string. Callers must check Kind() first.
func (v Value) AsString() string { return v.s }

// AsFunction returns the underlying builtin. Callers must check Kind() first.
func (v Value) AsFunction() Builtin { return v.fn }

// IsTruthy reports whether v counts as true in a predicate/condition
// position. Only Bool values are valid there; callers needing strict
// boolean semantics should check Kind() == BoolKind themselves and use
// this only for display/debug purposes.
func (v Value) IsTruthy() bool {
	switch v.kind {
	case BoolKind:
		return v.b
	case NullKind:
		return false
	default:
		return true
	}
}

// Equal implements value equality. Float equality is bit-identity, not
// IEEE equality, so that NaN compares equal to itself and -0/+0 compare
// unequal — this matches the reference's "bit-identity" rule rather than
// leaving NaN propagation to silently make every comparison false.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case NullKind:
		return true
	case IntKind:
		return v.i == other.i
	case FloatKind:
		return math.Float64bits(v.f) == math.Float64bits(other.f)
	case BoolKind:
		return v.b == other.b
	case StringKind:
		return v.s == other.s
	case FunctionKind:
		return v.fn.Name == other.fn.Name
	default:
		return false
	}
}

// Repr renders v for error messages and the bytecode textual format.
func (v Value) Repr() string {
	switch v.kind {
	case NullKind:
		return "null"
	case IntKind:
		return fmt.Sprintf("%d", v.i)
	case FloatKind:
		return fmt.Sprintf("%g", v.f)
	case BoolKind:
		return fmt.Sprintf("%t", v.b)
	case StringKind:
		return fmt.Sprintf("%q", v.s)
	case FunctionKind:
		return fmt.Sprintf("<function %s>", v.fn.Name)
	default:
		return "<unknown>"
	}
}

func (v Value) String() string { return v.Repr() }
