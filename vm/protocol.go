package vm

import (
	"github.com/vellum-lang/vellum/unit"
	"github.com/vellum-lang/vellum/value"
)

// Protocol is a named operation dispatched via (type-hash, protocol-hash)
// per spec.md §4.4.4 / GLOSSARY. There is a single flat dispatch table,
// no vtable inheritance, a flat port-handler-style lookup (checked
// before a built-in default) — protocol dispatch here is the same
// "host/unit override first, built-in rule
// second" shape, generalized from 64 I/O ports to a (type, protocol)
// keyspace.
type Protocol value.Hash

var (
	ProtoPartialEq  = protocolHash("PARTIAL_EQ")
	ProtoEq         = protocolHash("EQ")
	ProtoPartialCmp = protocolHash("PARTIAL_CMP")
	ProtoCmp        = protocolHash("CMP")
	ProtoHash       = protocolHash("HASH")
	ProtoDisplay    = protocolHash("DISPLAY")
	ProtoDebug      = protocolHash("DEBUG")
	ProtoAdd        = protocolHash("ADD")
	ProtoSub        = protocolHash("SUB")
	ProtoMul        = protocolHash("MUL")
	ProtoDiv        = protocolHash("DIV")
	ProtoRem        = protocolHash("REM")
	ProtoBitAnd     = protocolHash("BIT_AND")
	ProtoBitOr      = protocolHash("BIT_OR")
	ProtoBitXor     = protocolHash("BIT_XOR")
	ProtoShl        = protocolHash("SHL")
	ProtoShr        = protocolHash("SHR")
	ProtoIndexGet   = protocolHash("INDEX_GET")
	ProtoIndexSet   = protocolHash("INDEX_SET")
	ProtoIterNext   = protocolHash("ITER_NEXT")
	ProtoTry        = protocolHash("TRY")
)

func protocolHash(name string) Protocol {
	return Protocol(value.HashPath(value.SaltProtocol, "protocol", name))
}

// NativeFn is a host (or unit-registered "native") function: it
// receives its arguments as a slice taken off the VM stack by the
// caller and returns a single result, which the caller writes to the
// call's output slot.
type NativeFn func(m *Instance, args []value.Value) (value.Value, error)

// protocolTarget names the implementation a protocol lookup resolved
// to: either a unit-defined function (script-authored protocol impl)
// or a host native. Exactly one field is set.
type protocolTarget struct {
	entry  *unit.FuncEntry
	native NativeFn
}

// resolveProtocol resolves a protocol call on a non-inline receiver:
// the unit's function table is checked first (script-defined protocol
// impls), then the host Context's native table, matching spec.md
// §4.4.4 step 2 ("look it up in the unit then the context").
func (m *Instance) resolveProtocol(typeHash value.Hash, proto Protocol) (protocolTarget, bool) {
	if entry, ok := m.u.AssociatedFunction(typeHash, value.Hash(proto)); ok {
		return protocolTarget{entry: entry}, true
	}
	key := associatedKey{typeHash, value.Hash(proto)}
	if fn, ok := m.ctx.associated[key]; ok {
		return protocolTarget{native: fn}, true
	}
	return protocolTarget{}, false
}

type associatedKey struct {
	typeHash value.Hash
	proto    value.Hash
}
