package vm

import (
	"github.com/vellum-lang/vellum/unit"
	"github.com/vellum-lang/vellum/value"
)

// funcHandle is the payload of a KindFunction value (spec.md §4.4.3):
// a callable reference to either a unit-defined function/closure or a
// host native, produced by LoadFn/LoadInstanceFn/Closure.
type funcHandle struct {
	entry  *unit.FuncEntry
	native NativeFn
	env    []value.Value // closure environment, appended after explicit args
}

// DropPayload releases a closure's captured environment.
func (f *funcHandle) DropPayload() {
	for _, v := range f.env {
		value.Drop(v)
	}
}

// loadFn builds a function value from a unit function-table entry.
func loadFn(entry *unit.FuncEntry) value.Value {
	return value.NewFunction(&funcHandle{entry: entry})
}

// closureOf builds a function value capturing env.
func closureOf(entry *unit.FuncEntry, env []value.Value) value.Value {
	return value.NewFunction(&funcHandle{entry: entry, env: env})
}
