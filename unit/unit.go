package unit

import "github.com/vellum-lang/vellum/value"

// Unit is the immutable compiled artifact consumed by the virtual
// machine (spec.md §4.2): instruction array, function table, constant
// pools, drop sets, and debug map. Once the compiler returns a Unit,
// its fields must not be mutated; the VM and any number of concurrent VM instances
// share one Unit by pointer.
type Unit struct {
	Instructions []Instruction
	Functions    FuncTable
	Associated   map[AssociatedKey]value.Hash
	Pools        Pools
	DropSets     [][]int32 // indexed by the operand of a `Drop set` instruction
	Debug        []DebugRange
	DebugArgs    []DebugArg

	// EntryPoints maps an exported path to its function hash, for
	// vm.Execute/vm.Call path lookups (spec.md §6).
	EntryPoints map[string]uint64
}

// New returns an empty Unit, ready for a Builder to populate during
// lowering.
func New() *Unit {
	return &Unit{
		Functions:   make(FuncTable),
		Associated:  make(map[AssociatedKey]value.Hash),
		EntryPoints: make(map[string]uint64),
	}
}

// Len returns the number of instructions in the unit.
func (u *Unit) Len() int { return len(u.Instructions) }

// At returns the instruction at ip and whether ip was in range.
func (u *Unit) At(ip int) (Instruction, bool) {
	if ip < 0 || ip >= len(u.Instructions) {
		return Instruction{}, false
	}
	return u.Instructions[ip], true
}

// DebugSpanFor returns the debug range covering ip, if any.
func (u *Unit) DebugSpanFor(ip int) (DebugRange, bool) {
	for _, r := range u.Debug {
		if ip >= r.StartIP && ip < r.EndIP {
			return r, true
		}
	}
	return DebugRange{}, false
}
