package unit

import (
	"fmt"
	"strings"
)

// Disassemble renders the instruction at ip as text and returns the
// next instruction pointer: a single-entry, single-step disassembler
// the CLI/debugger can drive in a loop,
// generalized from Ngaro's "opcode plus one optional inline operand"
// shape to this spec's multi-operand fixed-width records (so there is
// no variable-width decoding to do — the "next ip" is always ip+1).
func (u *Unit) Disassemble(ip int) (next int, text string) {
	ins, ok := u.At(ip)
	if !ok {
		return ip + 1, "???"
	}
	var b strings.Builder
	b.WriteString(ins.Op.String())
	writeOperand := func(label string, v int32) {
		if v == Discard && label == "out" {
			fmt.Fprintf(&b, " %s=_", label)
			return
		}
		fmt.Fprintf(&b, " %s=%d", label, v)
	}
	switch ins.Op {
	case OpJump, OpJumpIf, OpJumpIfNot:
		writeOperand("target", ins.A)
	case OpStoreImm:
		fmt.Fprintf(&b, " imm=%s out=%d", ins.Imm, ins.Out)
		return ip + 1, b.String()
	default:
		if ins.A != 0 || ins.B != 0 || ins.C != 0 {
			writeOperand("a", ins.A)
			writeOperand("b", ins.B)
			writeOperand("c", ins.C)
		}
	}
	if ins.Out != 0 {
		writeOperand("out", ins.Out)
	}
	return ip + 1, b.String()
}

// DisassembleAll renders every instruction, one line per entry.
func (u *Unit) DisassembleAll() []string {
	lines := make([]string, 0, len(u.Instructions))
	for ip := 0; ip < len(u.Instructions); {
		next, text := u.Disassemble(ip)
		lines = append(lines, fmt.Sprintf("%6d  %s", ip, text))
		ip = next
	}
	return lines
}
