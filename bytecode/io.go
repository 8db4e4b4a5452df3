package bytecode

import (
	"fmt"
	"strconv"
	"strings"

	"adl/value"
)

// DeserializeError is returned by Parse on malformed input.
type DeserializeError struct {
	Line   int
	Detail string
}

func (e DeserializeError) Error() string {
	return fmt.Sprintf("💥 bytecode parse error at line %d: %s", e.Line, e.Detail)
}

func compareSuffix(op Op) string {
	switch op {
	case Equal:
		return "EQ"
	case NotEqual:
		return "NE"
	case Greater:
		return "GT"
	case Less:
		return "LT"
	default:
		return ""
	}
}

func formatOne(offset int, instr Instruction) string {
	mnemonic := instr.Op.Mnemonic()
	switch instr.Op {
	case Constant:
		var operand string
		switch instr.Value.Kind() {
		case value.StringKind:
			operand = fmt.Sprintf("'%s'", instr.Value.AsString())
		case value.FloatKind:
			operand = strconv.FormatFloat(instr.Value.AsFloat(), 'g', -1, 64)
			if !strings.ContainsAny(operand, ".eEIN") {
				operand += ".0"
			}
		default:
			operand = instr.Value.Repr()
		}
		return fmt.Sprintf("%-5d %-23s %s\n", offset, mnemonic, operand)
	case LoadVar, StoreVar, BindAddr, Label:
		return fmt.Sprintf("%-5d %-23s %s\n", offset, mnemonic, instr.Name)
	case Equal, NotEqual, Greater, Less:
		return fmt.Sprintf("%-5d %-23s %s\n", offset, mnemonic, compareSuffix(instr.Op))
	case CallBuiltin:
		return fmt.Sprintf("%-5d %-23s %s (%d)\n", offset, mnemonic, instr.Name, instr.Arity)
	case CallSubProgram:
		return fmt.Sprintf("%-5d %-23s %d (%d)\n", offset, mnemonic, instr.Target, instr.Arity)
	case Jump, JumpIfFalse:
		return fmt.Sprintf("%-5d %-23s %d\n", offset, mnemonic, instr.Target)
	case AllocMany:
		return fmt.Sprintf("%-5d %-23s %d\n", offset, mnemonic, instr.N)
	default:
		return fmt.Sprintf("%-5d %s\n", offset, mnemonic)
	}
}

// Serialize renders a program as one instruction per line, matching the
// reference textual layout exactly (index, mnemonic, operand).
func Serialize(program []Instruction) string {
	var b strings.Builder
	for i, instr := range program {
		b.WriteString(formatOne(i, instr))
	}
	return b.String()
}

func parseConstantOperand(raw string) value.Value {
	if strings.HasPrefix(raw, "'") && strings.HasSuffix(raw, "'") && len(raw) >= 2 {
		return value.String(strings.Trim(raw, "'"))
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return value.Int(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return value.Float(f)
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return value.Bool(b)
	}
	return value.String(strings.Trim(raw, "'"))
}

// Parse is the inverse of Serialize. Blank lines are ignored; unknown
// mnemonics yield a DeserializeError.
func Parse(text string) ([]Instruction, error) {
	var program []Instruction
	for lineNo, line := range strings.Split(text, "\n") {
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		// parts[0] is the offset, echoed by the serialiser but not
		// consulted on parse — instruction order defines position.
		if len(parts) < 2 {
			return nil, DeserializeError{Line: lineNo + 1, Detail: "missing mnemonic"}
		}
		mnemonic := parts[1]
		rest := parts[2:]

		instr, err := parseInstruction(mnemonic, rest)
		if err != nil {
			return nil, DeserializeError{Line: lineNo + 1, Detail: err.Error()}
		}
		program = append(program, instr)
	}
	return program, nil
}

func parseInstruction(mnemonic string, rest []string) (Instruction, error) {
	need := func(n int) error {
		if len(rest) < n {
			return fmt.Errorf("%s expects %d operand(s), got %d", mnemonic, n, len(rest))
		}
		return nil
	}
	trimParens := func(s string) (int, error) {
		return strconv.Atoi(strings.Trim(s, "()"))
	}

	switch mnemonic {
	case "HALT":
		return Simple(Halt), nil
	case "RETURN_VALUE":
		return Simple(Return), nil
	case "LOAD_CONST":
		if err := need(1); err != nil {
			return Instruction{}, err
		}
		return Const(parseConstantOperand(strings.Join(rest, " "))), nil
	case "UNARY_NOT":
		return Simple(Not), nil
	case "BINARY_AND":
		return Simple(And), nil
	case "BINARY_OR":
		return Simple(Or), nil
	case "UNARY_NEGATIVE":
		return Simple(Negate), nil
	case "BINARY_ADD":
		return Simple(Add), nil
	case "BINARY_SUBTRACT":
		return Simple(Sub), nil
	case "BINARY_MULTIPLY":
		return Simple(Mul), nil
	case "BINARY_DIVIDE":
		return Simple(Div), nil
	case "BINARY_MODULO":
		return Simple(Mod), nil
	case "COMPARE_OP":
		if err := need(1); err != nil {
			return Instruction{}, err
		}
		switch rest[0] {
		case "EQ":
			return Simple(Equal), nil
		case "NE":
			return Simple(NotEqual), nil
		case "GT":
			return Simple(Greater), nil
		case "LT":
			return Simple(Less), nil
		default:
			return Instruction{}, fmt.Errorf("invalid compare operation %q", rest[0])
		}
	case "POP_TOP":
		return Simple(Pop), nil
	case "DUP":
		return Simple(Dup), nil
	case "SWAP":
		return Simple(Swap), nil
	case "LABEL":
		if err := need(1); err != nil {
			return Instruction{}, err
		}
		return LabelMarker(rest[0]), nil
	case "JUMP":
		if err := need(1); err != nil {
			return Instruction{}, err
		}
		target, err := strconv.Atoi(rest[0])
		if err != nil {
			return Instruction{}, err
		}
		return JumpTo(target), nil
	case "JUMP_IF_FALSE":
		if err := need(1); err != nil {
			return Instruction{}, err
		}
		target, err := strconv.Atoi(rest[0])
		if err != nil {
			return Instruction{}, err
		}
		return JumpIfFalseTo(target), nil
	case "DEREFERENCE":
		return Simple(Deref), nil
	case "MULTIPLE_DEREFERENCE":
		return Simple(MulDeref), nil
	case "LOAD_NAME":
		if err := need(1); err != nil {
			return Instruction{}, err
		}
		return LoadName(rest[0]), nil
	case "STORE_NAME":
		if err := need(1); err != nil {
			return Instruction{}, err
		}
		return StoreName(rest[0]), nil
	case "STORE":
		return Simple(Store), nil
	case "ALLOC":
		return Simple(Alloc), nil
	case "ALLOC_MANY":
		if err := need(1); err != nil {
			return Instruction{}, err
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			return Instruction{}, err
		}
		return AllocN(n), nil
	case "STORE_ADDR":
		return Simple(StoreAddr), nil
	case "BIND_ADDR":
		if err := need(1); err != nil {
			return Instruction{}, err
		}
		return BindAddrOf(rest[0]), nil
	case "FREE_ADDR":
		return Simple(FreeAddr), nil
	case "CALL_FUNCTION":
		if err := need(2); err != nil {
			return Instruction{}, err
		}
		arity, err := trimParens(rest[1])
		if err != nil {
			return Instruction{}, err
		}
		return CallFunction(rest[0], arity), nil
	case "CALL_SUBPROGRAM":
		if err := need(2); err != nil {
			return Instruction{}, err
		}
		target, err := strconv.Atoi(rest[0])
		if err != nil {
			return Instruction{}, err
		}
		arity, err := trimParens(rest[1])
		if err != nil {
			return Instruction{}, err
		}
		return CallSubProgramAt(target, arity), nil
	case "PUSH_SCOPE":
		return Simple(PushScope), nil
	case "POP_SCOPE":
		return Simple(PopScope), nil
	default:
		return Instruction{}, fmt.Errorf("unknown bytecode instruction %q", mnemonic)
	}
}
