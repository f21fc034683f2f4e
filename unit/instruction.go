package unit

import "github.com/vellum-lang/vellum/value"

// Discard is the sentinel Out address meaning "no result is written",
// per spec.md §4.4.1 ("Output ... either a stack address or discard").
const Discard int32 = -1

// Instruction is one fixed-size record in a Unit's instruction array.
// Operands are stack addresses relative to the current call frame's
// base (spec.md §4.3.4); A/B/C carry up to three address or count
// operands depending on the opcode, Out carries the result address (or
// Discard), and Imm carries an inline/interned constant payload for the
// literal-materializing opcodes. This is a record wide enough for
// multi-operand instructions (see SPEC_FULL.md §4.2), keeping a flat
// "(ip, instruction) O(1) lookup, sequential iteration" contract.
type Instruction struct {
	Op  Opcode
	A   int32
	B   int32
	C   int32
	Out int32
	Imm value.Value
}

// DebugArg is the verbatim source-span text captured for an
// instruction's arguments, for diagnostics (spec.md §4.3.4).
type DebugArg struct {
	IP   int
	Text string
}

// DebugRange maps a half-open instruction range to a source span.
type DebugRange struct {
	StartIP, EndIP int
	Source         string
	Line, Col      int
}
