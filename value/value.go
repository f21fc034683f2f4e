// Package value implements the tagged Value handle and the reference
// counted object model: any-objects, dynamic struct/enum instances, and
// the container family (Vec, Deque, Tuple, Object, Range). A Value is a
// small, cheap-to-copy handle; reference counted variants share one
// heap cell across clones and free it when the last handle drops.
package value

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/vellum-lang/vellum/vmerr"
)

// Kind tags the variant a Value carries.
type Kind byte

const (
	KindUnit Kind = iota
	KindBool
	KindChar
	KindInt
	KindUint
	KindFloat
	KindByte
	KindTypeHash
	KindOrdering
	KindStringSlot
	KindBytesSlot
	KindString // owned, runtime-constructed string (e.g. StringConcat's result); not pool-interned
	KindAnyObject
	KindDynamic
	KindVec
	KindDeque
	KindTuple
	KindObject
	KindRange
	KindFuture
	KindGenerator
	KindStream
	KindFunction
	KindFormatSpec
)

func (k Kind) String() string {
	names := [...]string{
		"unit", "bool", "char", "int", "uint", "float", "byte", "type", "ordering",
		"string-slot", "bytes-slot", "string", "any", "dynamic", "vec", "deque", "tuple", "object",
		"range", "future", "generator", "stream", "function", "format",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "invalid"
}

// IsInline reports whether values of this kind never carry a heap cell.
func (k Kind) IsInline() bool {
	return k <= KindOrdering
}

// IsInterned reports whether values of this kind index into a Unit's
// constant pools instead of carrying inline data or a heap cell.
func (k Kind) IsInterned() bool {
	return k == KindStringSlot || k == KindBytesSlot
}

// Ordering mirrors a three-way comparison result.
type Ordering int8

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

// refCell is the single heap allocation backing every reference-counted
// Value variant. Clones bump strong; Drop decrements it and frees the
// payload at zero, mirroring a Push/Pop/Drop stack discipline
// generalized from a flat Cell to a heap object with a lifetime.
type refCell struct {
	strong int32
	kind   Kind
	data   any
	borrow *borrowState // non-nil only for KindAnyObject
}

// Value is the VM's operand: a tagged handle, copyable by value. Inline
// variants (unit..ordering) store their payload in bits directly.
// Interned variants index into unit constant pools via slot. Reference
// counted variants point at a shared refCell.
type Value struct {
	kind Kind
	bits uint64 // inline scalar payload (bool/char/int/uint/float/byte/type-hash/ordering)
	slot int32  // interned pool slot
	cell *refCell
}

// --- inline constructors ------------------------------------------------

// Unit returns the unit value.
func Unit() Value { return Value{kind: KindUnit} }

// Bool constructs a boolean value.
func Bool(b bool) Value {
	var n uint64
	if b {
		n = 1
	}
	return Value{kind: KindBool, bits: n}
}

// Char constructs a unicode scalar value.
func Char(r rune) Value { return Value{kind: KindChar, bits: uint64(uint32(r))} }

// Int constructs a signed 64-bit integer value.
func Int(n int64) Value { return Value{kind: KindInt, bits: uint64(n)} }

// Uint constructs an unsigned 64-bit integer value.
func Uint(n uint64) Value { return Value{kind: KindUint, bits: n} }

// Float constructs a 64-bit floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, bits: math.Float64bits(f)} }

// Byte constructs a single byte value.
func Byte(b byte) Value { return Value{kind: KindByte, bits: uint64(b)} }

// TypeHashValue constructs a value naming a type by its hash.
func TypeHashValue(h Hash) Value { return Value{kind: KindTypeHash, bits: uint64(h)} }

// FromOrdering constructs an ordering value.
func FromOrdering(o Ordering) Value { return Value{kind: KindOrdering, bits: uint64(int64(o))} }

// StringSlot constructs a value referencing an interned string pool slot.
func StringSlot(slot int32) Value { return Value{kind: KindStringSlot, slot: slot} }

// BytesSlot constructs a value referencing an interned byte-string pool slot.
func BytesSlot(slot int32) Value { return Value{kind: KindBytesSlot, slot: slot} }

// --- reference counted constructors -------------------------------------

// newCell allocates a fresh refCell with strong count 1.
func newCell(kind Kind, data any) *refCell {
	return &refCell{strong: 1, kind: kind, data: data}
}

func fromCell(kind Kind, cell *refCell) Value { return Value{kind: kind, cell: cell} }

// AnyObject wraps a host value behind a borrow-checked reference counted
// cell. typeHash identifies the registered host type.
func AnyObject(typeHash Hash, payload any) Value {
	c := newCell(KindAnyObject, &anyObjectData{typeHash: typeHash, payload: payload})
	c.borrow = new(borrowState)
	return fromCell(KindAnyObject, c)
}

type anyObjectData struct {
	typeHash Hash
	payload  any
}

// Dynamic wraps a script-defined struct/enum-variant instance.
func Dynamic(rtti *RTTI, fields []Value) Value {
	return fromCell(KindDynamic, newCell(KindDynamic, &DynamicData{RTTI: rtti, Fields: fields}))
}

// DynamicData is the payload of a KindDynamic cell.
type DynamicData struct {
	RTTI   *RTTI
	Fields []Value
}

// VecValue wraps a Vec container in a Value.
func VecValue(v *Vec) Value { return fromCell(KindVec, newCell(KindVec, v)) }

// DequeValue wraps a Deque container in a Value.
func DequeValue(d *Deque) Value { return fromCell(KindDeque, newCell(KindDeque, d)) }

// TupleValue wraps a Tuple container in a Value.
func TupleValue(t Tuple) Value { return fromCell(KindTuple, newCell(KindTuple, t)) }

// ObjectValue wraps an Object container in a Value.
func ObjectValue(o *Object) Value { return fromCell(KindObject, newCell(KindObject, o)) }

// RangeValue wraps a Range in a Value.
func RangeValue(r Range) Value { return fromCell(KindRange, newCell(KindRange, r)) }

// --- accessors ------------------------------------------------------

// Kind returns the value's variant tag.
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the boolean payload of a KindBool value.
func (v Value) AsBool() bool { return v.bits != 0 }

// AsChar returns the rune payload of a KindChar value.
func (v Value) AsChar() rune { return rune(uint32(v.bits)) }

// AsInt returns the signed integer payload of a KindInt value.
func (v Value) AsInt() int64 { return int64(v.bits) }

// AsUint returns the unsigned integer payload of a KindUint value.
func (v Value) AsUint() uint64 { return v.bits }

// AsFloat returns the float payload of a KindFloat value.
func (v Value) AsFloat() float64 { return math.Float64frombits(v.bits) }

// AsByte returns the byte payload of a KindByte value.
func (v Value) AsByte() byte { return byte(v.bits) }

// AsTypeHash returns the type-hash payload of a KindTypeHash value.
func (v Value) AsTypeHash() Hash { return Hash(v.bits) }

// AsOrdering returns the ordering payload of a KindOrdering value.
func (v Value) AsOrdering() Ordering { return Ordering(int64(v.bits)) }

// Slot returns the interned pool slot of a KindStringSlot/KindBytesSlot value.
func (v Value) Slot() int32 { return v.slot }

// AsAnyObject returns the type hash and payload pointer of a KindAnyObject value.
func (v Value) AsAnyObject() (Hash, any) {
	d := v.cell.data.(*anyObjectData)
	return d.typeHash, d.payload
}

// AsDynamic returns the dynamic struct/variant payload.
func (v Value) AsDynamic() *DynamicData { return v.cell.data.(*DynamicData) }

// AsVec returns the underlying Vec container.
func (v Value) AsVec() *Vec { return v.cell.data.(*Vec) }

// AsDeque returns the underlying Deque container.
func (v Value) AsDeque() *Deque { return v.cell.data.(*Deque) }

// AsTuple returns the underlying Tuple container.
func (v Value) AsTuple() Tuple { return v.cell.data.(Tuple) }

// AsObject returns the underlying Object container.
func (v Value) AsObject() *Object { return v.cell.data.(*Object) }

// AsRange returns the underlying Range.
func (v Value) AsRange() Range { return v.cell.data.(Range) }

// TypeHashOf returns the dynamic type identity of v, used for protocol
// dispatch lookups (associated_function(type_hash(receiver), ...)).
func (v Value) TypeHashOf() Hash {
	switch v.kind {
	case KindAnyObject:
		h, _ := v.AsAnyObject()
		return h
	case KindDynamic:
		return v.AsDynamic().RTTI.TypeHash
	default:
		return HashPath(SaltType, "core", v.kind.String())
	}
}

// --- clone / drop --------------------------------------------------

// Clone duplicates the handle v. For reference counted variants this
// bumps the strong count instead of copying the payload; inline and
// interned variants are already trivially copyable.
func (v Value) Clone() Value {
	if v.cell != nil {
		v.cell.strong++
	}
	return v
}

// Drop releases one reference to v. When the strong count of a
// reference counted variant reaches zero its payload is released.
// Container payloads holding further Values must themselves be walked
// so nested handles are dropped too (see Vec.dropAll, Object.dropAll, etc).
// Cyclic graphs through object/vec/tuple fields are not collected; see
// spec.md §9.
func Drop(v Value) {
	if v.cell == nil {
		return
	}
	v.cell.strong--
	if v.cell.strong > 0 {
		return
	}
	switch d := v.cell.data.(type) {
	case *Vec:
		d.dropAll()
	case *Deque:
		d.dropAll()
	case Tuple:
		for _, e := range d {
			Drop(e)
		}
	case *Object:
		d.dropAll()
	case *DynamicData:
		for _, f := range d.Fields {
			Drop(f)
		}
	case Dropper:
		// Future/generator/stream/function payloads are owned by
		// package vm; they implement Dropper to release their captured
		// VM snapshot without value importing vm.
		d.DropPayload()
	}
	v.cell.data = nil
}

// Dropper is implemented by container payloads owned by other packages
// (package vm's suspended-snapshot payloads) that need a release hook
// run when their refcounted cell reaches zero.
type Dropper interface {
	DropPayload()
}

// String implements a debug-oriented Stringer; display/debug formatting
// proper is dispatched through the formatting protocol in package vm
// for non-inline values, since it may call into script/host code.
func (v Value) String() string {
	switch v.kind {
	case KindUnit:
		return "()"
	case KindBool:
		return fmt.Sprintf("%t", v.AsBool())
	case KindChar:
		return fmt.Sprintf("%q", v.AsChar())
	case KindInt:
		return fmt.Sprintf("%d", v.AsInt())
	case KindUint:
		return fmt.Sprintf("%du", v.AsUint())
	case KindFloat:
		return fmt.Sprintf("%g", v.AsFloat())
	case KindByte:
		return fmt.Sprintf("0x%02x", v.AsByte())
	case KindTypeHash:
		return fmt.Sprintf("type(%#x)", uint64(v.AsTypeHash()))
	case KindOrdering:
		return fmt.Sprintf("ordering(%d)", v.AsOrdering())
	case KindStringSlot:
		return fmt.Sprintf("$str[%d]", v.slot)
	case KindBytesSlot:
		return fmt.Sprintf("$bytes[%d]", v.slot)
	case KindString:
		return fmt.Sprintf("%q", v.AsString())
	default:
		return fmt.Sprintf("<%s>", v.kind)
	}
}

// InlineEq implements the built-in equality rule for two values whose
// shapes are both inline-compatible, per spec.md §4.4.4 step 1. It
// returns (equal, ok); ok is false when the values are not of a
// compatible inline shape and dispatch must fall through to the
// protocol table.
func InlineEq(a, b Value) (equal bool, ok bool) {
	if a.kind.IsInline() && b.kind.IsInline() && a.kind == b.kind {
		if a.kind == KindFloat {
			fa, fb := a.AsFloat(), b.AsFloat()
			if math.IsNaN(fa) || math.IsNaN(fb) {
				return false, true
			}
			return fa == fb, true
		}
		return a.bits == b.bits, true
	}
	if a.kind.IsInterned() && b.kind.IsInterned() && a.kind == b.kind {
		return a.slot == b.slot, true
	}
	if a.kind == KindString && b.kind == KindString {
		return a.AsString() == b.AsString(), true
	}
	return false, false
}

// InlineCmp implements the built-in partial-cmp rule for inline-shaped
// operands. err is non-nil (IllegalFloatComparison) for NaN operands.
func InlineCmp(a, b Value) (ord Ordering, ok bool, err error) {
	if a.kind == KindString && b.kind == KindString {
		sa, sb := a.AsString(), b.AsString()
		switch {
		case sa < sb:
			return Less, true, nil
		case sa > sb:
			return Greater, true, nil
		default:
			return Equal, true, nil
		}
	}
	if !a.kind.IsInline() || !b.kind.IsInline() || a.kind != b.kind {
		return 0, false, nil
	}
	switch a.kind {
	case KindInt:
		return cmpInt(a.AsInt(), b.AsInt()), true, nil
	case KindUint:
		return cmpUint(a.AsUint(), b.AsUint()), true, nil
	case KindByte:
		return cmpUint(uint64(a.AsByte()), uint64(b.AsByte())), true, nil
	case KindChar:
		return cmpInt(int64(a.AsChar()), int64(b.AsChar())), true, nil
	case KindFloat:
		fa, fb := a.AsFloat(), b.AsFloat()
		if math.IsNaN(fa) || math.IsNaN(fb) {
			return 0, true, errors.WithStack(vmerr.IllegalFloatComparison{})
		}
		switch {
		case fa < fb:
			return Less, true, nil
		case fa > fb:
			return Greater, true, nil
		default:
			return Equal, true, nil
		}
	case KindBool:
		return cmpInt(b2i(a.AsBool()), b2i(b.AsBool())), true, nil
	default:
		return 0, false, nil
	}
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func cmpInt(a, b int64) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

func cmpUint(a, b uint64) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}
