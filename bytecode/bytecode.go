// Package bytecode defines the linear instruction set the code generator
// emits and the VM executes, plus a textual serialiser/parser for saving
// and reloading a compiled program.
package bytecode

import (
	"fmt"

	"adl/value"
)

// Op discriminates an Instruction's variant.
type Op int

const (
	Halt Op = iota
	Return
	Constant
	Not
	And
	Or
	Negate
	Add
	Sub
	Mul
	Div
	Mod
	Equal
	NotEqual
	Greater
	Less
	Pop
	Dup
	Swap
	Label
	Jump
	JumpIfFalse
	Deref
	MulDeref
	StoreVar
	LoadVar
	Store
	Alloc
	AllocMany
	StoreAddr
	BindAddr
	FreeAddr
	CallBuiltin
	CallSubProgram
	PushScope
	PopScope
)

// Instruction is the ISA's single tagged-struct representation: every
// variant carries the same struct shape, with only the fields its Op
// actually uses populated. This mirrors the teacher's opcode-definition
// table (one shape, operand widths looked up by opcode) but trades the
// fixed-width byte encoding for named fields, since several adl
// instructions carry string operands (label and variable names) that
// cannot fit a uint16 constant-pool index.
type Instruction struct {
	Op     Op
	Value  value.Value // Constant
	Name   string      // LoadVar, StoreVar, BindAddr, Label, CallBuiltin
	Target int         // Jump, JumpIfFalse, CallSubProgram
	Arity  int         // CallBuiltin, CallSubProgram
	N      int         // AllocMany
}

func Const(v value.Value) Instruction { return Instruction{Op: Constant, Value: v} }
func LoadName(name string) Instruction { return Instruction{Op: LoadVar, Name: name} }
func StoreName(name string) Instruction { return Instruction{Op: StoreVar, Name: name} }
func BindAddrOf(name string) Instruction { return Instruction{Op: BindAddr, Name: name} }
func LabelMarker(name string) Instruction { return Instruction{Op: Label, Name: name} }
func JumpTo(target int) Instruction { return Instruction{Op: Jump, Target: target} }
func JumpIfFalseTo(target int) Instruction { return Instruction{Op: JumpIfFalse, Target: target} }
func CallFunction(name string, arity int) Instruction { return Instruction{Op: CallBuiltin, Name: name, Arity: arity} }
func CallSubProgramAt(target, arity int) Instruction { return Instruction{Op: CallSubProgram, Target: target, Arity: arity} }
func AllocN(n int) Instruction { return Instruction{Op: AllocMany, N: n} }
func Simple(op Op) Instruction { return Instruction{Op: op} }

// Mnemonic returns the textual opcode name used by the serialiser, the
// same spellings as the reference's format_bytecode_instruction table.
func (op Op) Mnemonic() string {
	switch op {
	case Halt:
		return "HALT"
	case Return:
		return "RETURN_VALUE"
	case Constant:
		return "LOAD_CONST"
	case Not:
		return "UNARY_NOT"
	case And:
		return "BINARY_AND"
	case Or:
		return "BINARY_OR"
	case Negate:
		return "UNARY_NEGATIVE"
	case Add:
		return "BINARY_ADD"
	case Sub:
		return "BINARY_SUBTRACT"
	case Mul:
		return "BINARY_MULTIPLY"
	case Div:
		return "BINARY_DIVIDE"
	case Mod:
		return "BINARY_MODULO"
	case Equal:
		return "COMPARE_OP"
	case NotEqual:
		return "COMPARE_OP"
	case Greater:
		return "COMPARE_OP"
	case Less:
		return "COMPARE_OP"
	case Pop:
		return "POP_TOP"
	case Dup:
		return "DUP"
	case Swap:
		return "SWAP"
	case Label:
		return "LABEL"
	case Jump:
		return "JUMP"
	case JumpIfFalse:
		return "JUMP_IF_FALSE"
	case Deref:
		return "DEREFERENCE"
	case MulDeref:
		return "MULTIPLE_DEREFERENCE"
	case StoreVar:
		return "STORE_NAME"
	case LoadVar:
		return "LOAD_NAME"
	case Store:
		return "STORE"
	case Alloc:
		return "ALLOC"
	case AllocMany:
		return "ALLOC_MANY"
	case StoreAddr:
		return "STORE_ADDR"
	case BindAddr:
		return "BIND_ADDR"
	case FreeAddr:
		return "FREE_ADDR"
	case CallBuiltin:
		return "CALL_FUNCTION"
	case CallSubProgram:
		return "CALL_SUBPROGRAM"
	case PushScope:
		return "PUSH_SCOPE"
	case PopScope:
		return "POP_SCOPE"
	default:
		return fmt.Sprintf("UNKNOWN_OP(%d)", op)
	}
}
