// Package unit implements the Compiled Unit (spec.md §4.2): the
// immutable artifact produced by the compiler pipeline and consumed by
// the virtual machine — instruction array, function table, constant
// pools, drop sets, and debug map.
package unit

// Opcode tags a VM instruction. Families follow the table in spec.md
// §4.4.2 exactly, using an iota block plus an opcode->name table,
// widened to this instruction set's full family breadth.
type Opcode uint16

const (
	OpNop Opcode = iota

	// Stack management
	OpAllocate
	OpCopy
	OpMove
	OpSwap
	OpDropSet

	// Literals
	OpStoreImm
	OpStringSlot
	OpBytesSlot

	// Construction
	OpVec
	OpTuple
	OpTupleN
	OpObject
	OpRangeVariant
	OpStruct
	OpConstConstruct

	// Arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem

	// Bitwise / Shift
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr

	// Compare / logical
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
	OpIs
	OpIsNot
	OpAsType
	OpLogAnd
	OpLogOr

	// Assign
	OpAssignArith
	OpAssignBitwise
	OpAssignShift

	// Control flow
	OpJump
	OpJumpIf
	OpJumpIfNot
	OpIterNext
	OpPanic

	// Calls
	OpCall
	OpCallOffset
	OpCallAssociated
	OpCallFn
	OpLoadFn
	OpLoadInstanceFn
	OpClosure

	// Return
	OpReturn
	OpReturnUnit

	// Await / Select
	OpAwait
	OpSelect

	// Indexing
	OpIndexGet
	OpIndexSet
	OpTupleIndexGet
	OpTupleIndexSet
	OpObjectIndexGet
	OpObjectIndexSet

	// Pattern match
	OpEqChar
	OpEqUnsigned
	OpEqSigned
	OpEqBool
	OpEqString
	OpEqBytes
	OpMatchType
	OpMatchSequence
	OpMatchObject

	// Strings
	OpStringConcat
	OpFormat

	// Coroutine
	OpYield

	// Try
	OpTry

	opcodeCount
)

var opcodeNames = [...]string{
	"nop",
	"allocate", "copy", "move", "swap", "drop-set",
	"store-imm", "string-slot", "bytes-slot",
	"vec", "tuple", "tuple-n", "object", "range", "struct", "const-construct",
	"add", "sub", "mul", "div", "rem",
	"bitand", "bitor", "bitxor", "shl", "shr",
	"eq", "neq", "lt", "le", "gt", "ge", "is", "is-not", "as", "and", "or",
	"assign-arith", "assign-bitwise", "assign-shift",
	"jump", "jump-if", "jump-if-not", "iter-next", "panic",
	"call", "call-offset", "call-associated", "call-fn", "load-fn", "load-instance-fn", "closure",
	"return", "return-unit",
	"await", "select",
	"index-get", "index-set", "tuple-index-get", "tuple-index-set", "object-index-get", "object-index-set",
	"eq-char", "eq-unsigned", "eq-signed", "eq-bool", "eq-string", "eq-bytes",
	"match-type", "match-sequence", "match-object",
	"string-concat", "format",
	"yield",
	"try",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return "invalid"
}

// CallConvention selects how a function is invoked (spec.md §4.4.3).
type CallConvention byte

const (
	ConvImmediate CallConvention = iota
	ConvAsync
	ConvGenerator
	ConvStream
)

func (c CallConvention) String() string {
	switch c {
	case ConvImmediate:
		return "immediate"
	case ConvAsync:
		return "async"
	case ConvGenerator:
		return "generator"
	case ConvStream:
		return "stream"
	default:
		return "invalid"
	}
}
