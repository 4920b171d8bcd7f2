// Package vm executes the flat Instruction stream internal/compiler
// produces (spec §4.10). Grounded on the teacher's vm/vm.go for the
// overall shape (an operand stack plus an explicit instruction
// pointer loop, one switch arm per opcode) — generalized from its
// byte-packed fetch/decode to this instruction set's typed
// Instruction struct, and from its slot-indexed locals to named scope
// maps (spec §4.9/§4.10's named-variable model).
package vm

import (
	"math"
	"strconv"
	"strings"

	"github.com/zephyrlang/zr/internal/compiler"
	"github.com/zephyrlang/zr/internal/stdlib"
	"github.com/zephyrlang/zr/internal/value"
)

// VM is a single-threaded stack machine: one operand stack, one stack
// of scope maps (the innermost is the active block), and a call-frame
// stack recording where Return should resume.
type VM struct {
	bc         *compiler.Bytecode
	heap       *value.Heap
	stack      []value.Value
	scopes     []map[string]value.Value
	frames     []frame
	ip         int
	mainCalled bool
}

func New() *VM {
	return &VM{heap: value.NewHeap()}
}

func (vm *VM) Heap() *value.Heap { return vm.heap }

// Display renders v the way std::io's print/println do, for a caller
// (the REPL, `zr run`'s final-expression echo) that wants to show a
// result without going through a stdlib call.
func (vm *VM) Display(v value.Value) string {
	return stdlib.Display(v, vm.heap)
}

func (vm *VM) push(v value.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() (value.Value, error) {
	n := len(vm.stack)
	if n == 0 {
		return nil, vmError("operand stack underflow")
	}
	v := vm.stack[n-1]
	vm.stack = vm.stack[:n-1]
	return v, nil
}

// skipFunctionBodies implements spec §4.9's VM startup rule: every
// registered function body is compiled in place as a contiguous
// region with no jump-over, so execution must hop past each one
// before falling into top-level code.
func (vm *VM) skipFunctionBodies() {
	for {
		moved := false
		for _, r := range vm.bc.Functions {
			if vm.ip >= r.Start && vm.ip < r.End {
				vm.ip = r.End
				moved = true
			}
		}
		if !moved {
			break
		}
	}
}

func (vm *VM) storeVar(name string, v value.Value) {
	for i := len(vm.scopes) - 1; i >= 0; i-- {
		if _, ok := vm.scopes[i][name]; ok {
			vm.scopes[i][name] = v
			return
		}
	}
	vm.scopes[len(vm.scopes)-1][name] = v
}

func (vm *VM) loadVar(name string) (value.Value, bool) {
	for i := len(vm.scopes) - 1; i >= 0; i-- {
		if v, ok := vm.scopes[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Run executes bc from the start and returns whatever value is on the
// stack when Halt fires (Void if nothing is, which is the ordinary
// case since every statement-position call pops its own result).
func (vm *VM) Run(bc *compiler.Bytecode) (value.Value, error) {
	vm.bc = bc
	vm.ip = 0
	vm.stack = nil
	vm.frames = nil
	vm.scopes = []map[string]value.Value{{}}
	vm.mainCalled = false
	vm.skipFunctionBodies()

	for vm.ip < len(bc.Instructions) {
		ins := bc.Instructions[vm.ip]
		jumped := false

		switch ins.Op {
		case compiler.OpHalt:
			// spec §4.10: on reaching Halt, call `main` with zero
			// parameters if it exists and hasn't run yet. Returning
			// from it re-lands on this same Halt instruction, so the
			// second time through mainCalled is already true.
			if fr, ok := vm.bc.Functions["main"]; ok && !vm.mainCalled {
				vm.mainCalled = true
				vm.frames = append(vm.frames, frame{returnIP: vm.ip, scopeBase: len(vm.scopes)})
				vm.ip = fr.Start
				jumped = true
				break
			}
			if len(vm.stack) == 0 {
				return value.Void{}, nil
			}
			return vm.pop()

		case compiler.OpNop:
			// no-op

		case compiler.OpLoadConst:
			if sc, ok := ins.Const.(value.StrConst); ok {
				vm.push(value.Str{ID: vm.heap.Alloc(sc.S)})
			} else {
				vm.push(ins.Const)
			}

		case compiler.OpLoadVar:
			v, ok := vm.loadVar(ins.Name)
			if !ok {
				return nil, vmError("undefined variable '%s'", ins.Name)
			}
			vm.push(v)

		case compiler.OpStoreVar:
			v, err := vm.pop()
			if err != nil {
				return nil, err
			}
			vm.storeVar(ins.Name, v)

		case compiler.OpPop:
			if _, err := vm.pop(); err != nil {
				return nil, err
			}

		case compiler.OpDup:
			if len(vm.stack) == 0 {
				return nil, vmError("operand stack underflow")
			}
			vm.push(vm.stack[len(vm.stack)-1])

		case compiler.OpAdd, compiler.OpSub, compiler.OpMul, compiler.OpDiv, compiler.OpMod:
			b, err := vm.pop()
			if err != nil {
				return nil, err
			}
			a, err := vm.pop()
			if err != nil {
				return nil, err
			}
			res, err := vm.binaryOp(ins.Op, a, b)
			if err != nil {
				return nil, err
			}
			vm.push(res)

		case compiler.OpNeg:
			a, err := vm.pop()
			if err != nil {
				return nil, err
			}
			switch x := a.(type) {
			case value.Int:
				vm.push(value.Int{Width: x.Width, Signed: x.Signed, V: -x.V})
			case value.Float:
				vm.push(value.Float{Width: x.Width, V: -x.V})
			default:
				return nil, vmError("cannot negate a %s", a.TypeName())
			}

		case compiler.OpNot:
			a, err := vm.pop()
			if err != nil {
				return nil, err
			}
			b, ok := value.Truthy(a)
			if !ok {
				return nil, vmError("cannot negate a %s", a.TypeName())
			}
			vm.push(value.Bool{V: !b})

		case compiler.OpEq, compiler.OpNeq:
			b, err := vm.pop()
			if err != nil {
				return nil, err
			}
			a, err := vm.pop()
			if err != nil {
				return nil, err
			}
			eq := valuesEqual(a, b, vm.heap)
			if ins.Op == compiler.OpNeq {
				eq = !eq
			}
			vm.push(value.Bool{V: eq})

		case compiler.OpLt, compiler.OpLte, compiler.OpGt, compiler.OpGte:
			b, err := vm.pop()
			if err != nil {
				return nil, err
			}
			a, err := vm.pop()
			if err != nil {
				return nil, err
			}
			cmp, err := compareValues(a, b, vm.heap)
			if err != nil {
				return nil, err
			}
			var res bool
			switch ins.Op {
			case compiler.OpLt:
				res = cmp < 0
			case compiler.OpLte:
				res = cmp <= 0
			case compiler.OpGt:
				res = cmp > 0
			case compiler.OpGte:
				res = cmp >= 0
			}
			vm.push(value.Bool{V: res})

		case compiler.OpAnd:
			b, err := vm.pop()
			if err != nil {
				return nil, err
			}
			a, err := vm.pop()
			if err != nil {
				return nil, err
			}
			ab, _ := value.Truthy(a)
			bb, _ := value.Truthy(b)
			vm.push(value.Bool{V: ab && bb})

		case compiler.OpOr:
			b, err := vm.pop()
			if err != nil {
				return nil, err
			}
			a, err := vm.pop()
			if err != nil {
				return nil, err
			}
			ab, _ := value.Truthy(a)
			bb, _ := value.Truthy(b)
			vm.push(value.Bool{V: ab || bb})

		case compiler.OpJump:
			vm.ip = ins.Int
			jumped = true

		case compiler.OpJumpIfFalse:
			a, err := vm.pop()
			if err != nil {
				return nil, err
			}
			b, ok := value.Truthy(a)
			if !ok {
				return nil, vmError("if/while condition did not evaluate to bool")
			}
			if !b {
				vm.ip = ins.Int
				jumped = true
			}

		case compiler.OpCall:
			args, err := vm.popArgs(ins.Int)
			if err != nil {
				return nil, err
			}
			didJump, err := vm.invoke(ins.Name, args)
			if err != nil {
				return nil, err
			}
			jumped = didJump

		case compiler.OpMethodCall:
			args, err := vm.popArgs(ins.Int + 1)
			if err != nil {
				return nil, err
			}
			didJump, err := vm.invoke(ins.Name, args)
			if err != nil {
				return nil, err
			}
			jumped = didJump

		case compiler.OpReturn:
			retVal, err := vm.pop()
			if err != nil {
				return nil, err
			}
			if len(vm.frames) == 0 {
				return retVal, nil
			}
			fr := vm.frames[len(vm.frames)-1]
			vm.frames = vm.frames[:len(vm.frames)-1]
			vm.scopes = vm.scopes[:fr.scopeBase]
			vm.ip = fr.returnIP
			vm.push(retVal)
			jumped = true

		case compiler.OpAlloc, compiler.OpMove, compiler.OpBorrowShared,
			compiler.OpBorrowMut, compiler.OpDrop, compiler.OpEndBorrow:
			// Informational: spec §4.10 makes ownership/borrow enforcement
			// a compile-time concern only, already checked by internal/sema
			// before code reaches this VM.

		case compiler.OpMakeList, compiler.OpMakeVec:
			elems, err := vm.popArgs(ins.Int)
			if err != nil {
				return nil, err
			}
			id := vm.heap.Alloc(elems)
			if ins.Op == compiler.OpMakeList {
				vm.push(value.Arr{ID: id, Size: len(elems)})
			} else {
				vm.push(value.Vec{ID: id})
			}

		case compiler.OpMakeObject:
			n := ins.Int
			pairs, err := vm.popArgs(2 * n)
			if err != nil {
				return nil, err
			}
			data := &value.ObjectData{Fields: map[string]value.Value{}}
			for i := 0; i < n; i++ {
				key, err := vm.fieldName(pairs[2*i])
				if err != nil {
					return nil, err
				}
				data.Set(key, pairs[2*i+1])
			}
			vm.push(value.Obj{ID: vm.heap.Alloc(data)})

		case compiler.OpGetField:
			objV, err := vm.pop()
			if err != nil {
				return nil, err
			}
			data, err := vm.objectDataOf(objV)
			if err != nil {
				return nil, err
			}
			v, ok := data.Get(ins.Name)
			if !ok {
				return nil, vmError("no field '%s' on %s", ins.Name, objV.TypeName())
			}
			vm.push(v)

		case compiler.OpSetField:
			v, err := vm.pop()
			if err != nil {
				return nil, err
			}
			objV, err := vm.pop()
			if err != nil {
				return nil, err
			}
			data, err := vm.objectDataOf(objV)
			if err != nil {
				return nil, err
			}
			data.Set(ins.Name, v)
			vm.push(v)

		case compiler.OpGetIndex:
			idxV, err := vm.pop()
			if err != nil {
				return nil, err
			}
			containerV, err := vm.pop()
			if err != nil {
				return nil, err
			}
			elems, err := vm.elemsOf(containerV)
			if err != nil {
				return nil, err
			}
			idx, ok := asVMInt(idxV)
			if !ok {
				return nil, vmError("index must be an integer")
			}
			if idx < 0 || int(idx) >= len(elems) {
				return nil, vmError("index %d out of bounds (length %d)", idx, len(elems))
			}
			vm.push(elems[idx])

		case compiler.OpSetIndex:
			v, err := vm.pop()
			if err != nil {
				return nil, err
			}
			idxV, err := vm.pop()
			if err != nil {
				return nil, err
			}
			containerV, err := vm.pop()
			if err != nil {
				return nil, err
			}
			elems, err := vm.elemsOf(containerV)
			if err != nil {
				return nil, err
			}
			idx, ok := asVMInt(idxV)
			if !ok {
				return nil, vmError("index must be an integer")
			}
			if idx < 0 || int(idx) >= len(elems) {
				return nil, vmError("index %d out of bounds (length %d)", idx, len(elems))
			}
			elems[idx] = v
			vm.push(v)

		case compiler.OpEnterScope:
			vm.scopes = append(vm.scopes, map[string]value.Value{})

		case compiler.OpExitScope:
			if len(vm.scopes) <= 1 {
				return nil, vmError("scope underflow")
			}
			vm.scopes = vm.scopes[:len(vm.scopes)-1]

		case compiler.OpStrContains:
			b, err := vm.pop()
			if err != nil {
				return nil, err
			}
			a, err := vm.pop()
			if err != nil {
				return nil, err
			}
			haystack, _ := asVMStr(a, vm.heap)
			needle, _ := asVMStr(b, vm.heap)
			vm.push(value.Bool{V: strings.Contains(haystack, needle)})

		case compiler.OpCast:
			a, err := vm.pop()
			if err != nil {
				return nil, err
			}
			res, err := vm.castValue(a, ins.Name)
			if err != nil {
				return nil, err
			}
			vm.push(res)

		case compiler.OpMakeClosure:
			id := vm.heap.Alloc(ins.Name)
			vm.push(value.Closure{ID: id, FuncName: ins.Name, ParamCount: ins.Int})

		default:
			return nil, vmError("unhandled opcode %s", ins.Op)
		}

		if !jumped {
			vm.ip++
		}
	}
	if len(vm.stack) == 0 {
		return value.Void{}, nil
	}
	return vm.pop()
}

// popArgs pops n values and returns them in source (push) order: the
// compiler pushes arguments left to right, so the top of the stack is
// the last one and a straight descending pop must land back into
// index n-1, n-2, ... 0 to undo that.
func (vm *VM) popArgs(n int) ([]value.Value, error) {
	args := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		v, err := vm.pop()
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// pushArgsForCall re-pushes args in the convention a compiled
// function body expects: its first StoreVar must pop args[0], so
// args[0] needs to end up on top, meaning it must be pushed last.
func (vm *VM) pushArgsForCall(args []value.Value) {
	for i := len(args) - 1; i >= 0; i-- {
		vm.push(args[i])
	}
}

// invoke resolves name against the function table, then a local
// variable holding a Closure, then the stdlib table — spec §4.9/§4.10
// give Call a single flat name, so this is the fallback chain that
// actually performs the dispatch the compiler only describes. It
// reports whether it changed vm.ip (a real function call) so the
// caller's main loop can skip its default ip++.
func (vm *VM) invoke(name string, args []value.Value) (bool, error) {
	if name == "main" {
		vm.mainCalled = true
	}
	if fr, ok := vm.bc.Functions[name]; ok {
		vm.pushArgsForCall(args)
		vm.frames = append(vm.frames, frame{returnIP: vm.ip + 1, scopeBase: len(vm.scopes)})
		vm.ip = fr.Start
		return true, nil
	}
	if closureName, ok := vm.lookupClosure(name); ok {
		return vm.invoke(closureName, args)
	}
	if stdlib.IsStdlibFunction(name) {
		result, err := stdlib.Dispatch(name, args, vm.heap)
		if err != nil {
			return false, err
		}
		vm.push(result)
		return false, nil
	}
	return false, vmError("unknown function '%s'", name)
}

func (vm *VM) lookupClosure(name string) (string, bool) {
	v, ok := vm.loadVar(name)
	if !ok {
		return "", false
	}
	cl, ok := v.(value.Closure)
	if !ok {
		return "", false
	}
	return cl.FuncName, true
}

func (vm *VM) fieldName(v value.Value) (string, error) {
	if s, ok := asVMStr(v, vm.heap); ok {
		return s, nil
	}
	return "", vmError("expected a field name, got %s", v.TypeName())
}

func (vm *VM) objectDataOf(v value.Value) (*value.ObjectData, error) {
	obj, ok := v.(value.Obj)
	if !ok {
		return nil, vmError("expected an object, got %s", v.TypeName())
	}
	data, ok := vm.heap.Get(obj.ID).(*value.ObjectData)
	if !ok {
		return nil, vmError("expected an object, got %s", v.TypeName())
	}
	return data, nil
}

func (vm *VM) elemsOf(v value.Value) ([]value.Value, error) {
	id, ok := value.HeapID(v)
	if !ok {
		return nil, vmError("cannot index into a %s", v.TypeName())
	}
	elems, ok := vm.heap.Get(id).([]value.Value)
	if !ok {
		return nil, vmError("cannot index into a %s", v.TypeName())
	}
	return elems, nil
}

func asVMStr(v value.Value, h *value.Heap) (string, bool) {
	s, ok := v.(value.Str)
	if !ok {
		return "", false
	}
	payload, ok := h.Get(s.ID).(string)
	return payload, ok
}

func asVMInt(v value.Value) (int64, bool) {
	i, ok := v.(value.Int)
	return i.V, ok
}

// binaryOp covers Add/Sub/Mul/Div/Mod. Add additionally concatenates
// when both operands are Str: VisitInterpString's accumulator and any
// plain `"a" + "b"` expression both rely on the same opcode.
func (vm *VM) binaryOp(op compiler.OpCode, a, b value.Value) (value.Value, error) {
	if op == compiler.OpAdd {
		if as, ok := a.(value.Str); ok {
			if bs, ok2 := b.(value.Str); ok2 {
				sa, _ := vm.heap.Get(as.ID).(string)
				sb, _ := vm.heap.Get(bs.ID).(string)
				return value.Str{ID: vm.heap.Alloc(sa + sb)}, nil
			}
		}
	}
	return arith(op, a, b)
}

func arith(op compiler.OpCode, a, b value.Value) (value.Value, error) {
	af, aIsFloat := a.(value.Float)
	bf, bIsFloat := b.(value.Float)
	ai, aIsInt := a.(value.Int)
	bi, bIsInt := b.(value.Int)
	if !(aIsFloat || aIsInt) || !(bIsFloat || bIsInt) {
		return nil, vmError("unsupported operand types for arithmetic: %s and %s", a.TypeName(), b.TypeName())
	}
	if aIsFloat || bIsFloat {
		x := af.V
		if aIsInt {
			x = float64(ai.V)
		}
		y := bf.V
		if bIsInt {
			y = float64(bi.V)
		}
		width := 64
		if aIsFloat {
			width = af.Width
		} else if bIsFloat {
			width = bf.Width
		}
		switch op {
		case compiler.OpAdd:
			return value.Float{Width: width, V: x + y}, nil
		case compiler.OpSub:
			return value.Float{Width: width, V: x - y}, nil
		case compiler.OpMul:
			return value.Float{Width: width, V: x * y}, nil
		case compiler.OpDiv:
			if y == 0 {
				return nil, vmError("division by zero")
			}
			return value.Float{Width: width, V: x / y}, nil
		case compiler.OpMod:
			if y == 0 {
				return nil, vmError("division by zero")
			}
			return value.Float{Width: width, V: math.Mod(x, y)}, nil
		}
		return nil, vmError("unsupported float operator")
	}
	x, y := ai.V, bi.V
	switch op {
	case compiler.OpAdd:
		return value.Int{Width: ai.Width, Signed: ai.Signed, V: x + y}, nil
	case compiler.OpSub:
		return value.Int{Width: ai.Width, Signed: ai.Signed, V: x - y}, nil
	case compiler.OpMul:
		return value.Int{Width: ai.Width, Signed: ai.Signed, V: x * y}, nil
	case compiler.OpDiv:
		if y == 0 {
			return nil, vmError("division by zero")
		}
		return value.Int{Width: ai.Width, Signed: ai.Signed, V: x / y}, nil
	case compiler.OpMod:
		if y == 0 {
			return nil, vmError("division by zero")
		}
		return value.Int{Width: ai.Width, Signed: ai.Signed, V: x % y}, nil
	}
	return nil, vmError("unsupported int operator")
}

func valuesEqual(a, b value.Value, h *value.Heap) bool {
	switch x := a.(type) {
	case value.Int:
		switch y := b.(type) {
		case value.Int:
			return x.V == y.V
		case value.Float:
			return float64(x.V) == y.V
		}
		return false
	case value.Float:
		switch y := b.(type) {
		case value.Float:
			return x.V == y.V
		case value.Int:
			return x.V == float64(y.V)
		}
		return false
	case value.Bool:
		y, ok := b.(value.Bool)
		return ok && x.V == y.V
	case value.Char:
		y, ok := b.(value.Char)
		return ok && x.V == y.V
	case value.Void:
		_, ok := b.(value.Void)
		return ok
	case value.Str:
		y, ok := b.(value.Str)
		if !ok {
			return false
		}
		sa, _ := h.Get(x.ID).(string)
		sb, _ := h.Get(y.ID).(string)
		return sa == sb
	}
	aID, aok := value.HeapID(a)
	bID, bok := value.HeapID(b)
	return aok && bok && aID == bID
}

func compareValues(a, b value.Value, h *value.Heap) (int, error) {
	switch x := a.(type) {
	case value.Int:
		switch y := b.(type) {
		case value.Int:
			return cmpInt(x.V, y.V), nil
		case value.Float:
			return cmpFloat(float64(x.V), y.V), nil
		}
	case value.Float:
		switch y := b.(type) {
		case value.Int:
			return cmpFloat(x.V, float64(y.V)), nil
		case value.Float:
			return cmpFloat(x.V, y.V), nil
		}
	case value.Char:
		if y, ok := b.(value.Char); ok {
			return cmpInt(int64(x.V), int64(y.V)), nil
		}
	case value.Str:
		if y, ok := b.(value.Str); ok {
			sa, _ := h.Get(x.ID).(string)
			sb, _ := h.Get(y.ID).(string)
			switch {
			case sa < sb:
				return -1, nil
			case sa > sb:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}
	return 0, vmError("cannot compare %s and %s", a.TypeName(), b.TypeName())
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// castValue backs the Cast opcode: string casts render through
// stdlib's Display (the same formatting print/println use), primitive
// numeric/bool/char casts truncate or widen in place.
func (vm *VM) castValue(v value.Value, target string) (value.Value, error) {
	switch target {
	case "string":
		return value.Str{ID: vm.heap.Alloc(stdlib.Display(v, vm.heap))}, nil
	case "bool":
		switch x := v.(type) {
		case value.Bool:
			return x, nil
		case value.Int:
			return value.Bool{V: x.V != 0}, nil
		}
		return nil, vmError("cannot cast %s to bool", v.TypeName())
	case "char":
		switch x := v.(type) {
		case value.Char:
			return x, nil
		case value.Int:
			return value.Char{V: rune(x.V)}, nil
		}
		return nil, vmError("cannot cast %s to char", v.TypeName())
	}
	if width, signed, ok := parseIntType(target); ok {
		switch x := v.(type) {
		case value.Int:
			return value.Int{Width: width, Signed: signed, V: x.V}, nil
		case value.Float:
			return value.Int{Width: width, Signed: signed, V: int64(x.V)}, nil
		case value.Char:
			return value.Int{Width: width, Signed: signed, V: int64(x.V)}, nil
		case value.Bool:
			n := int64(0)
			if x.V {
				n = 1
			}
			return value.Int{Width: width, Signed: signed, V: n}, nil
		}
		return nil, vmError("cannot cast %s to %s", v.TypeName(), target)
	}
	if width, ok := parseFloatType(target); ok {
		switch x := v.(type) {
		case value.Float:
			return value.Float{Width: width, V: x.V}, nil
		case value.Int:
			return value.Float{Width: width, V: float64(x.V)}, nil
		}
		return nil, vmError("cannot cast %s to %s", v.TypeName(), target)
	}
	return nil, vmError("unknown cast target %q", target)
}

func parseIntType(s string) (width int, signed bool, ok bool) {
	if len(s) < 2 {
		return 0, false, false
	}
	switch s[0] {
	case 'i':
		signed = true
	case 'u':
		signed = false
	default:
		return 0, false, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil {
		return 0, false, false
	}
	return n, signed, true
}

func parseFloatType(s string) (width int, ok bool) {
	if len(s) < 2 || s[0] != 'f' {
		return 0, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}
