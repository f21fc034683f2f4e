package unit

import "github.com/vellum-lang/vellum/value"

// Pools holds the Unit's constant tables, indexed by the slot numbers
// baked into instructions at compile time (spec.md §4.2 "Constant
// pools"). All pools are append-only during a build and immutable once
// the Unit is sealed.
type Pools struct {
	Strings     []string
	ByteStrings [][]byte
	Numbers     []value.Value
	RTTI        []*value.RTTI
	ObjectKeys  [][]string // ordered field-name lists for object literals
}

// String returns the interned string at slot, or an error via the
// caller (package vm raises vmerr.MissingStaticSlot on out-of-range).
func (p *Pools) String(slot int32) (string, bool) {
	if slot < 0 || int(slot) >= len(p.Strings) {
		return "", false
	}
	return p.Strings[slot], true
}

// Bytes returns the interned byte string at slot.
func (p *Pools) Bytes(slot int32) ([]byte, bool) {
	if slot < 0 || int(slot) >= len(p.ByteStrings) {
		return nil, false
	}
	return p.ByteStrings[slot], true
}

// Number returns the interned numeric constant at slot.
func (p *Pools) Number(slot int32) (value.Value, bool) {
	if slot < 0 || int(slot) >= len(p.Numbers) {
		return value.Value{}, false
	}
	return p.Numbers[slot], true
}

// RTTIAt returns the RTTI record at slot.
func (p *Pools) RTTIAt(slot int32) (*value.RTTI, bool) {
	if slot < 0 || int(slot) >= len(p.RTTI) {
		return nil, false
	}
	return p.RTTI[slot], true
}

// ObjectKeysAt returns the ordered field-name list at slot, used by
// `Object slot` literal construction.
func (p *Pools) ObjectKeysAt(slot int32) ([]string, bool) {
	if slot < 0 || int(slot) >= len(p.ObjectKeys) {
		return nil, false
	}
	return p.ObjectKeys[slot], true
}

// Builder accumulates pool entries during compilation, deduplicating
// strings the way a constant pool normally does; byte strings and
// numbers are appended without deduplication.
type Builder struct {
	pools       Pools
	stringIndex map[string]int32
}

// NewBuilder returns an empty pool builder.
func NewBuilder() *Builder {
	return &Builder{stringIndex: make(map[string]int32)}
}

// InternString returns the slot for s, adding it if not already present.
func (b *Builder) InternString(s string) int32 {
	if slot, ok := b.stringIndex[s]; ok {
		return slot
	}
	slot := int32(len(b.pools.Strings))
	b.pools.Strings = append(b.pools.Strings, s)
	b.stringIndex[s] = slot
	return slot
}

// InternBytes adds a byte string constant and returns its slot.
func (b *Builder) InternBytes(bs []byte) int32 {
	slot := int32(len(b.pools.ByteStrings))
	b.pools.ByteStrings = append(b.pools.ByteStrings, bs)
	return slot
}

// InternNumber adds a numeric constant and returns its slot.
func (b *Builder) InternNumber(v value.Value) int32 {
	slot := int32(len(b.pools.Numbers))
	b.pools.Numbers = append(b.pools.Numbers, v)
	return slot
}

// InternRTTI adds an RTTI record and returns its slot.
func (b *Builder) InternRTTI(r *value.RTTI) int32 {
	slot := int32(len(b.pools.RTTI))
	b.pools.RTTI = append(b.pools.RTTI, r)
	return slot
}

// InternObjectKeys adds an ordered field-name list and returns its slot.
func (b *Builder) InternObjectKeys(keys []string) int32 {
	slot := int32(len(b.pools.ObjectKeys))
	b.pools.ObjectKeys = append(b.pools.ObjectKeys, keys)
	return slot
}

// Pools returns the accumulated pools.
func (b *Builder) Pools() Pools { return b.pools }
