package unit

import "github.com/vellum-lang/vellum/value"

// FuncKind tags which entry shape a function-table slot carries
// (spec.md §4.2 "Function table").
type FuncKind byte

const (
	FuncOffset FuncKind = iota
	FuncUnitStructCtor
	FuncTupleStructCtor
)

// OffsetFunc describes a script function body lowered into the
// instruction array.
type OffsetFunc struct {
	EntryIP    int
	Conv       CallConvention
	Arity      int
	CaptureLen int // >0 for closures; the env slots appended after args
}

// TupleCtor describes a tuple-struct constructor entry.
type TupleCtor struct {
	RTTISlot int32
	Arity    int
}

// FuncEntry is one function-table slot, keyed by type/function hash in
// the owning Unit.
type FuncEntry struct {
	Kind     FuncKind
	Offset   OffsetFunc
	RTTISlot int32 // valid for FuncUnitStructCtor
	Tuple    TupleCtor
	Name     string // fully-qualified path, for diagnostics
}

// FuncTable maps a type/function hash to its FuncEntry.
type FuncTable map[value.Hash]*FuncEntry

// AssociatedKey identifies a unit-defined protocol implementation for a
// type (spec.md §4.4.4 step 2: "look it up in the unit then the
// context"). A flat lookup table keyed by a single integer, generalized
// from a single integer key to a (type, protocol) pair.
type AssociatedKey struct {
	TypeHash value.Hash
	Protocol value.Hash
}

// AssociatedFunction looks up a unit-defined protocol implementation
// for typeHash, returning the function-table entry to invoke.
func (u *Unit) AssociatedFunction(typeHash, proto value.Hash) (*FuncEntry, bool) {
	fnHash, ok := u.Associated[AssociatedKey{TypeHash: typeHash, Protocol: proto}]
	if !ok {
		return nil, false
	}
	entry, ok := u.Functions[fnHash]
	return entry, ok
}
