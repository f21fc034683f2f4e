package vm

// Compound-assignment opcodes (AssignArith/AssignBitwise/AssignShift)
// pack which arithmetic/bitwise/shift operator to apply into the C
// operand as a small integer code, since there is no spare operand slot
// to carry an operator string. Only the plain-address target form is
// supported (spec.md's tuple-field and named-field assignment targets
// are deferred; see DESIGN.md).

func arithAssignOpStr(code int32) string {
	switch code {
	case 0:
		return "+"
	case 1:
		return "-"
	case 2:
		return "*"
	case 3:
		return "/"
	case 4:
		return "%"
	default:
		return "?"
	}
}

func arithAssignProtocol(code int32) Protocol {
	switch code {
	case 0:
		return ProtoAdd
	case 1:
		return ProtoSub
	case 2:
		return ProtoMul
	case 3:
		return ProtoDiv
	case 4:
		return ProtoRem
	default:
		return 0
	}
}

func bitwiseAssignOpStr(code int32) string {
	switch code {
	case 0:
		return "&"
	case 1:
		return "|"
	case 2:
		return "^"
	default:
		return "?"
	}
}

func bitwiseAssignProtocol(code int32) Protocol {
	switch code {
	case 0:
		return ProtoBitAnd
	case 1:
		return ProtoBitOr
	case 2:
		return ProtoBitXor
	default:
		return 0
	}
}
