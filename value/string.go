package value

// NewString wraps a runtime-constructed string (the result of
// StringConcat/Format, or a native function's return) in a refcounted
// Value. Unlike StringSlot, it does not reference a Unit's constant
// pool, so it survives independently of any one Unit.
func NewString(s string) Value { return fromCell(KindString, newCell(KindString, s)) }

// AsString returns the Go string payload of a KindString value.
func (v Value) AsString() string { return v.cell.data.(string) }
