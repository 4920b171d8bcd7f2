package compiler

import (
	"fmt"
	"strings"
)

// Disassemble renders bc as one line per instruction, `<addr>: <op> <operands>`,
// for the REPL's `:bytecode` inspection command. Grounded on the teacher's DiassembleBytecode, which walks its
// byte-packed opcodes the same way; this version reads the typed
// Instruction struct directly instead of decoding a byte stream.
func (b *Bytecode) Disassemble() string {
	var sb strings.Builder
	for i, ins := range b.Instructions {
		fmt.Fprintf(&sb, "%4d: %s", i, ins.Op)
		switch ins.Op {
		case OpLoadConst:
			fmt.Fprintf(&sb, " %v", ins.Const)
		case OpLoadVar, OpStoreVar, OpGetField, OpSetField, OpDrop, OpBorrowShared, OpBorrowMut, OpEndBorrow, OpCast:
			fmt.Fprintf(&sb, " %s", ins.Name)
		case OpMove:
			fmt.Fprintf(&sb, " %s -> %s", ins.Name, ins.To)
		case OpJump, OpJumpIfFalse:
			fmt.Fprintf(&sb, " %d", ins.Int)
		case OpCall, OpMethodCall:
			fmt.Fprintf(&sb, " %s/%d", ins.Name, ins.Int)
		case OpMakeList, OpMakeVec, OpMakeObject:
			fmt.Fprintf(&sb, " %d", ins.Int)
		case OpMakeClosure:
			fmt.Fprintf(&sb, " %s/%d", ins.Name, ins.Int)
		}
		sb.WriteByte('\n')
	}
	for name, r := range b.Functions {
		fmt.Fprintf(&sb, "; func %s: [%d, %d)\n", name, r.Start, r.End)
	}
	return sb.String()
}
