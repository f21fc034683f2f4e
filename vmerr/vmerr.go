// Package vmerr defines the typed error families that cross the
// embedding boundary from the virtual machine and the unit loader,
// usually wrapped with call-site context via github.com/pkg/errors so a
// host can both switch on Kind() and print a human-readable message.
// Not every VM failure is one of these kinds (some are plain errors),
// and compiler failures are compile.Diagnostics.
package vmerr

import "fmt"

// Kind classifies an error into one of the testable families from the
// specification's error handling design.
type Kind int

const (
	// Link
	KindLink Kind = iota
	// Type/dispatch
	KindDispatch
	// Runtime data
	KindRuntime
	// Safety
	KindSafety
	// Control
	KindControl
)

func (k Kind) String() string {
	switch k {
	case KindLink:
		return "link"
	case KindDispatch:
		return "dispatch"
	case KindRuntime:
		return "runtime"
	case KindSafety:
		return "safety"
	case KindControl:
		return "control"
	default:
		return "unknown"
	}
}

// Classified is implemented by every error value exported from this
// package so callers can recover the Kind without a type switch over
// every concrete type.
type Classified interface {
	error
	Kind() Kind
}

// Lex/parse and resolve/compile error families (unterminated literals,
// bad escapes, import/visibility failures) are not declared here: the
// compile package's surface grammar is lexed by text/scanner directly
// (no hand-rolled lexer states of its own to raise them) and has no
// module/import/visibility system to raise resolve errors either — see
// DESIGN.md's "compile" entry for that scope decision. Parse/lowering
// failures surface as compile.Diagnostics instead.

// --- Link ---------------------------------------------------------------

type MissingFunction struct{ Hash uint64 }

func (e MissingFunction) Error() string { return fmt.Sprintf("missing function %#x", e.Hash) }
func (MissingFunction) Kind() Kind       { return KindLink }

type MissingRTTI struct{ Hash uint64 }

func (e MissingRTTI) Error() string { return fmt.Sprintf("missing RTTI for type %#x", e.Hash) }
func (MissingRTTI) Kind() Kind       { return KindLink }

type MissingConstConstructor struct{ Hash uint64 }

func (e MissingConstConstructor) Error() string {
	return fmt.Sprintf("missing const constructor for type %#x", e.Hash)
}
func (MissingConstConstructor) Kind() Kind { return KindLink }

type MissingStaticSlot struct {
	Pool string
	Slot int
}

func (e MissingStaticSlot) Error() string {
	return fmt.Sprintf("missing static %s slot %d", e.Pool, e.Slot)
}
func (MissingStaticSlot) Kind() Kind { return KindLink }

// --- Type/dispatch --------------------------------------------------

type UnsupportedBinaryOperation struct {
	Op       string
	Lhs, Rhs string
}

func (e UnsupportedBinaryOperation) Error() string {
	return fmt.Sprintf("unsupported binary operation `%s` between %s and %s", e.Op, e.Lhs, e.Rhs)
}
func (UnsupportedBinaryOperation) Kind() Kind { return KindDispatch }

type UnsupportedUnaryOperation struct {
	Op  string
	Val string
}

func (e UnsupportedUnaryOperation) Error() string {
	return fmt.Sprintf("unsupported unary operation `%s` on %s", e.Op, e.Val)
}
func (UnsupportedUnaryOperation) Kind() Kind { return KindDispatch }

type UnsupportedIndexGet struct{ Target string }

func (e UnsupportedIndexGet) Error() string { return fmt.Sprintf("%s does not support index get", e.Target) }
func (UnsupportedIndexGet) Kind() Kind       { return KindDispatch }

type UnsupportedIndexSet struct{ Target string }

func (e UnsupportedIndexSet) Error() string { return fmt.Sprintf("%s does not support index set", e.Target) }
func (UnsupportedIndexSet) Kind() Kind       { return KindDispatch }

type UnsupportedCall struct{ Target string }

func (e UnsupportedCall) Error() string { return fmt.Sprintf("%s is not callable", e.Target) }
func (UnsupportedCall) Kind() Kind       { return KindDispatch }

type MissingInstanceFunction struct {
	Type     string
	Protocol string
}

func (e MissingInstanceFunction) Error() string {
	return fmt.Sprintf("%s has no %s implementation", e.Type, e.Protocol)
}
func (MissingInstanceFunction) Kind() Kind { return KindDispatch }

type MissingField struct {
	Type  string
	Field string
}

func (e MissingField) Error() string { return fmt.Sprintf("%s has no field %q", e.Type, e.Field) }
func (MissingField) Kind() Kind       { return KindDispatch }

// --- Runtime data -----------------------------------------------------

type OutOfRangeIndex struct {
	Index, Len int
}

func (e OutOfRangeIndex) Error() string {
	return fmt.Sprintf("index %d out of range (length %d)", e.Index, e.Len)
}
func (OutOfRangeIndex) Kind() Kind { return KindRuntime }

type BadArgumentCount struct{ Want, Got int }

func (e BadArgumentCount) Error() string {
	return fmt.Sprintf("bad argument count: want %d, got %d", e.Want, e.Got)
}
func (BadArgumentCount) Kind() Kind { return KindRuntime }

type BadEnvironmentCount struct{ Want, Got int }

func (e BadEnvironmentCount) Error() string {
	return fmt.Sprintf("bad closure environment count: want %d, got %d", e.Want, e.Got)
}
func (BadEnvironmentCount) Kind() Kind { return KindRuntime }

type ObjectIndexMissing struct{ Key string }

func (e ObjectIndexMissing) Error() string { return fmt.Sprintf("object has no key %q", e.Key) }
func (ObjectIndexMissing) Kind() Kind       { return KindRuntime }

type IllegalFloatComparison struct{}

func (IllegalFloatComparison) Error() string { return "illegal float comparison (NaN operand)" }
func (IllegalFloatComparison) Kind() Kind     { return KindRuntime }

type IntegerOverflow struct{ Op string }

func (e IntegerOverflow) Error() string { return fmt.Sprintf("integer overflow in `%s`", e.Op) }
func (IntegerOverflow) Kind() Kind       { return KindRuntime }

type IntegerUnderflow struct{ Op string }

func (e IntegerUnderflow) Error() string { return fmt.Sprintf("integer underflow in `%s`", e.Op) }
func (IntegerUnderflow) Kind() Kind       { return KindRuntime }

type DivideByZero struct{ Op string }

func (e DivideByZero) Error() string { return fmt.Sprintf("division by zero in `%s`", e.Op) }
func (DivideByZero) Kind() Kind       { return KindRuntime }

type ShiftOverflow struct{ Amount, Width int }

func (e ShiftOverflow) Error() string {
	return fmt.Sprintf("shift amount %d exceeds width %d", e.Amount, e.Width)
}
func (ShiftOverflow) Kind() Kind { return KindRuntime }

// --- Safety -------------------------------------------------------------

type BorrowConflict struct {
	Type string
	Want string // "shared" or "exclusive"
}

func (e BorrowConflict) Error() string {
	return fmt.Sprintf("borrow conflict on %s: cannot take %s borrow", e.Type, e.Want)
}
func (BorrowConflict) Kind() Kind { return KindSafety }

// --- Control --------------------------------------------------------

// Panic is a program-requested panic (the `Panic reason` instruction).
type Panic struct{ Reason string }

func (e Panic) Error() string { return fmt.Sprintf("panicked: %s", e.Reason) }
func (Panic) Kind() Kind       { return KindControl }

// BudgetExhausted signals a resumable Halt::Limited outcome. It is
// deliberately not always propagated as a Go error upward (callers that
// drive a VM check for it explicitly), but it satisfies the error
// interface so it composes with the rest of this package.
type BudgetExhausted struct{}

func (BudgetExhausted) Error() string { return "instruction budget exhausted" }
func (BudgetExhausted) Kind() Kind     { return KindControl }

// IPOutOfBounds indicates unit corruption: a fatal, non-recoverable
// condition (the instruction pointer left the bounds of the unit's
// instruction array).
type IPOutOfBounds struct {
	IP, Len int
}

func (e IPOutOfBounds) Error() string {
	return fmt.Sprintf("ip %d out of bounds (unit has %d instructions): unit corruption", e.IP, e.Len)
}
func (IPOutOfBounds) Kind() Kind { return KindControl }

// IncompatibleUnitVersion is returned by unit.Decode when the on-disk
// format version does not match what this build can read.
type IncompatibleUnitVersion struct{ Want, Got uint32 }

func (e IncompatibleUnitVersion) Error() string {
	return fmt.Sprintf("incompatible unit version: want %d, got %d", e.Want, e.Got)
}
func (IncompatibleUnitVersion) Kind() Kind { return KindLink }
