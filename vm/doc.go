// Package vm implements the Virtual Machine (spec.md §4.4): a
// register/stack-addressed bytecode interpreter that executes a Unit
// against a Context of host-registered functions and types.
//
// An Instance owns one execution stack and one call-frame stack; a Unit
// and a Context are immutable and may be shared by any number of
// concurrent Instances, the same "image is data, instance is state"
// split an Image/Instance pair makes for a register machine,
// generalized from a single flat Cell array to this package's
// (Instructions, Functions, Pools) triple.
//
// Construction follows a functional-options shape: vm.New takes a
// *unit.Unit, a *Context, and a list of Option values.
package vm
