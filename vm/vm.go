// Package vm executes adl bytecode: a stack machine generalized from the
// teacher's constant-only fetch/decode loop (informatter-nilan/vm/vm.go)
// to adl's address-centric memory model — a scope chain of name→address
// maps, a heap of address→Value with a free list, a call stack of saved
// program counters, and a table of host-registered builtins.
package vm

import (
	"fmt"

	"adl/bytecode"
	"adl/value"
)

// VM holds all runtime state for one execution of a bytecode program.
type VM struct {
	code      []bytecode.Instruction
	pc        int
	stack     operandStack
	scopes    []map[string]int64
	heap      *heap
	callStack []int
	builtins  map[string]value.Builtin
}

// New constructs a VM ready to run code, starting in the single global
// scope per spec.md's invariant that scope depth never drops below 1.
func New(code []bytecode.Instruction) *VM {
	return &VM{
		code:     code,
		scopes:   []map[string]int64{make(map[string]int64)},
		heap:     newHeap(),
		builtins: make(map[string]value.Builtin),
	}
}

// RegisterBuiltin wires a host function into the VM's builtin table.
// value.Builtin.Call has no VM parameter (value cannot import vm without
// a cycle), so fn is captured in a closure over this VM instance instead.
func (vm *VM) RegisterBuiltin(name string, fn func(vm *VM, args []value.Value) (value.Value, error)) {
	vm.builtins[name] = value.Builtin{
		Name: name,
		Call: func(args []value.Value) (value.Value, error) { return fn(vm, args) },
	}
}

// StackTop reports the value on top of the operand stack, if any.
func (vm *VM) StackTop() (value.Value, bool) { return vm.stack.peek() }

// ScopeLookup resolves name in the current (innermost) scope.
func (vm *VM) ScopeLookup(name string) (int64, bool) {
	addr, ok := vm.currentScope()[name]
	return addr, ok
}

// HeapGet reads the value resident at addr, or Null if nothing is there.
func (vm *VM) HeapGet(addr int64) value.Value { return vm.heap.get(addr) }

// ScopeDepth reports the number of scopes currently on the scope stack.
func (vm *VM) ScopeDepth() int { return len(vm.scopes) }

func (vm *VM) currentScope() map[string]int64 {
	return vm.scopes[len(vm.scopes)-1]
}

// Run executes from pc 0 until Halt or until control falls off the end of
// the instruction stream, or returns a structured RuntimeError.
func (vm *VM) Run() error {
	for {
		if vm.pc == len(vm.code) {
			return nil
		}
		if vm.pc < 0 || vm.pc > len(vm.code) {
			return invalidOperation(vm.pc, "program counter ran past the end of the instruction stream")
		}
		instr := vm.code[vm.pc]
		pc := vm.pc
		vm.pc++

		switch instr.Op {
		case bytecode.Halt:
			return nil
		case bytecode.Label:
			// inert at run time

		case bytecode.Constant:
			vm.stack.push(instr.Value)
		case bytecode.Pop:
			if _, ok := vm.stack.pop(); !ok {
				return underflow(pc, "POP_TOP")
			}
		case bytecode.Dup:
			v, ok := vm.stack.peek()
			if !ok {
				return underflow(pc, "DUP")
			}
			vm.stack.push(v)
		case bytecode.Swap:
			b, ok := vm.stack.pop()
			if !ok {
				return underflow(pc, "SWAP")
			}
			a, ok := vm.stack.pop()
			if !ok {
				return underflow(pc, "SWAP")
			}
			vm.stack.push(b)
			vm.stack.push(a)

		case bytecode.Not:
			v, ok := vm.stack.pop()
			if !ok {
				return underflow(pc, "UNARY_NOT")
			}
			r, err := value.Not(v)
			if err != nil {
				return wrappedValueError(pc, err)
			}
			vm.stack.push(r)
		case bytecode.Negate:
			v, ok := vm.stack.pop()
			if !ok {
				return underflow(pc, "UNARY_NEGATIVE")
			}
			r, err := value.Negate(v)
			if err != nil {
				return wrappedValueError(pc, err)
			}
			vm.stack.push(r)

		case bytecode.Add, bytecode.Sub, bytecode.Mul, bytecode.Div, bytecode.Mod,
			bytecode.And, bytecode.Or, bytecode.Equal, bytecode.NotEqual, bytecode.Greater, bytecode.Less:
			if err := vm.binaryOp(pc, instr.Op); err != nil {
				return err
			}

		case bytecode.Jump:
			vm.pc = instr.Target
		case bytecode.JumpIfFalse:
			v, ok := vm.stack.pop()
			if !ok {
				return underflow(pc, "JUMP_IF_FALSE")
			}
			if v.Kind() != value.BoolKind {
				return invalidOperation(pc, fmt.Sprintf("JUMP_IF_FALSE requires a Bool, got %s", v.Kind()))
			}
			if !v.AsBool() {
				vm.pc = instr.Target
			}

		case bytecode.LoadVar:
			addr, ok := vm.currentScope()[instr.Name]
			if !ok {
				addr = vm.heap.alloc()
				vm.currentScope()[instr.Name] = addr
			}
			vm.stack.push(value.Int(addr))
		case bytecode.StoreVar:
			addr := vm.heap.alloc()
			vm.currentScope()[instr.Name] = addr
		case bytecode.BindAddr:
			v, ok := vm.stack.pop()
			if !ok {
				return underflow(pc, "BIND_ADDR")
			}
			if v.Kind() != value.IntKind {
				return invalidAddress(pc, v)
			}
			vm.currentScope()[instr.Name] = v.AsInt()

		case bytecode.Alloc:
			vm.stack.push(value.Int(vm.heap.alloc()))
		case bytecode.AllocMany:
			for _, addr := range vm.heap.allocMany(instr.N) {
				vm.stack.push(value.Int(addr))
			}
		case bytecode.StoreAddr:
			v, ok := vm.stack.pop()
			if !ok {
				return underflow(pc, "STORE_ADDR")
			}
			addr := vm.heap.alloc()
			vm.heap.set(addr, v)
			vm.stack.push(value.Int(addr))
		case bytecode.Store:
			addrVal, ok := vm.stack.pop()
			if !ok {
				return underflow(pc, "STORE")
			}
			if addrVal.Kind() != value.IntKind {
				return invalidAddress(pc, addrVal)
			}
			v, ok := vm.stack.pop()
			if !ok {
				return underflow(pc, "STORE")
			}
			vm.heap.set(addrVal.AsInt(), v)
		case bytecode.Deref:
			addrVal, ok := vm.stack.pop()
			if !ok {
				return underflow(pc, "DEREFERENCE")
			}
			if addrVal.Kind() != value.IntKind {
				return invalidAddress(pc, addrVal)
			}
			vm.stack.push(vm.heap.get(addrVal.AsInt()))
		case bytecode.MulDeref:
			if err := vm.mulDeref(pc); err != nil {
				return err
			}
		case bytecode.FreeAddr:
			addrVal, ok := vm.stack.pop()
			if !ok {
				return underflow(pc, "FREE_ADDR")
			}
			if addrVal.Kind() != value.IntKind {
				return invalidAddress(pc, addrVal)
			}
			vm.heap.release(addrVal.AsInt())

		case bytecode.CallBuiltin:
			if err := vm.callBuiltin(pc, instr); err != nil {
				return err
			}
		case bytecode.CallSubProgram:
			vm.callStack = append(vm.callStack, vm.pc)
			vm.pc = instr.Target
		case bytecode.Return:
			if len(vm.scopes) <= 1 {
				return invalidOperation(pc, "RETURN_VALUE popped past the global scope")
			}
			vm.scopes = vm.scopes[:len(vm.scopes)-1]
			if len(vm.callStack) == 0 {
				return underflow(pc, "RETURN_VALUE")
			}
			ret := vm.callStack[len(vm.callStack)-1]
			vm.callStack = vm.callStack[:len(vm.callStack)-1]
			vm.pc = ret

		case bytecode.PushScope:
			vm.scopes = append(vm.scopes, make(map[string]int64))
		case bytecode.PopScope:
			if len(vm.scopes) <= 1 {
				return invalidOperation(pc, "POP_SCOPE on the global scope")
			}
			vm.scopes = vm.scopes[:len(vm.scopes)-1]

		default:
			return invalidOperation(pc, fmt.Sprintf("unknown opcode %v", instr.Op))
		}
	}
}

func (vm *VM) binaryOp(pc int, op bytecode.Op) error {
	r, ok := vm.stack.pop()
	if !ok {
		return underflow(pc, op.Mnemonic())
	}
	l, ok := vm.stack.pop()
	if !ok {
		return underflow(pc, op.Mnemonic())
	}

	var result value.Value
	var err error
	switch op {
	case bytecode.Add:
		result, err = value.Add(l, r)
	case bytecode.Sub:
		result, err = value.Sub(l, r)
	case bytecode.Mul:
		result, err = value.Mul(l, r)
	case bytecode.Div:
		result, err = value.Div(l, r)
	case bytecode.Mod:
		result, err = value.Mod(l, r)
	case bytecode.And:
		result, err = value.And(l, r)
	case bytecode.Or:
		result, err = value.Or(l, r)
	case bytecode.Equal:
		result, err = value.Eq(l, r)
	case bytecode.NotEqual:
		result, err = value.Ne(l, r)
	case bytecode.Greater:
		result, err = value.Gt(l, r)
	case bytecode.Less:
		result, err = value.Lt(l, r)
	}
	if err != nil {
		return wrappedValueError(pc, err)
	}
	vm.stack.push(result)
	return nil
}

func (vm *VM) callBuiltin(pc int, instr bytecode.Instruction) error {
	fn, ok := vm.builtins[instr.Name]
	if !ok {
		return undefinedFunction(pc, instr.Name)
	}
	args := make([]value.Value, instr.Arity)
	for i := instr.Arity - 1; i >= 0; i-- {
		v, ok := vm.stack.pop()
		if !ok {
			return underflow(pc, "CALL_FUNCTION")
		}
		args[i] = v
	}
	result, err := fn.Call(args)
	if err != nil {
		return wrappedValueError(pc, err)
	}
	vm.stack.push(result)
	return nil
}

// mulDeref implements MulDeref's three regimes (spec.md §4.5): n == 0
// returns the address unchanged, n > 0 follows n forward links and
// returns the final value, n < 0 performs a predecessor search that
// collects every matching address at each step.
func (vm *VM) mulDeref(pc int) error {
	nVal, ok := vm.stack.pop()
	if !ok {
		return underflow(pc, "MULTIPLE_DEREFERENCE")
	}
	if nVal.Kind() != value.IntKind {
		return invalidOperation(pc, "MULTIPLE_DEREFERENCE level must be an Int")
	}
	n := nVal.AsInt()

	addrVal, ok := vm.stack.pop()
	if !ok {
		return underflow(pc, "MULTIPLE_DEREFERENCE")
	}
	if addrVal.Kind() != value.IntKind {
		return invalidAddress(pc, addrVal)
	}
	addr := addrVal.AsInt()

	switch {
	case n == 0:
		vm.stack.push(value.Int(addr))
	case n > 0:
		for i := int64(1); i < n; i++ {
			v := vm.heap.get(addr)
			if v.Kind() != value.IntKind {
				return invalidAddress(pc, v)
			}
			addr = v.AsInt()
		}
		vm.stack.push(vm.heap.get(addr))
	default:
		targets := []value.Value{value.Int(addr)}
		var found []int64
		for i := int64(0); i < -n; i++ {
			found = vm.heap.predecessorsOf(targets)
			if len(found) == 0 {
				break
			}
			targets = make([]value.Value, len(found))
			for j, a := range found {
				targets[j] = value.Int(a)
			}
		}
		if len(found) == 0 {
			vm.stack.push(value.Null)
			return nil
		}
		vm.stack.push(value.Int(vm.buildList(found)))
	}
	return nil
}

// buildList materialises elements (already-known address values) into
// the same two-cell (value, next) chain codegen.VisitListLiteral builds
// for list literals, processed tail-first so the returned head is the
// first element's next-cell address.
func (vm *VM) buildList(elements []int64) int64 {
	tailIsNull := true
	var tailAddr int64
	for i := len(elements) - 1; i >= 0; i-- {
		pair := vm.heap.allocMany(2)
		valueAddr, nextAddr := pair[0], pair[1]
		vm.heap.set(valueAddr, value.Int(elements[i]))
		if tailIsNull {
			vm.heap.set(nextAddr, value.Null)
			tailIsNull = false
		} else {
			vm.heap.set(nextAddr, value.Int(tailAddr))
		}
		tailAddr = nextAddr
	}
	return tailAddr
}
