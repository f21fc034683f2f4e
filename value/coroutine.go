package value

// The future/generator/stream/function/format-spec container kinds wrap
// payloads owned by package vm (a suspended VM snapshot, a native
// closure, a format spec). Keeping the payload type as `any` here lets
// package value stay independent of package vm while still giving these
// kinds the same refcounted-handle lifetime as every other container.

// NewFuture wraps an async call's suspended snapshot in a Value.
func NewFuture(payload any) Value { return fromCell(KindFuture, newCell(KindFuture, payload)) }

// NewGenerator wraps a generator's suspended snapshot in a Value.
func NewGenerator(payload any) Value { return fromCell(KindGenerator, newCell(KindGenerator, payload)) }

// NewStream wraps a stream's suspended snapshot in a Value.
func NewStream(payload any) Value { return fromCell(KindStream, newCell(KindStream, payload)) }

// NewFunction wraps a function handle (offset function, native function,
// or closure) in a Value.
func NewFunction(payload any) Value { return fromCell(KindFunction, newCell(KindFunction, payload)) }

// NewFormatSpec wraps a format specifier in a Value.
func NewFormatSpec(payload any) Value { return fromCell(KindFormatSpec, newCell(KindFormatSpec, payload)) }

// Payload returns the opaque payload of any reference counted Value,
// for kinds package vm owns (future/generator/stream/function/format).
func (v Value) Payload() any {
	if v.cell == nil {
		return nil
	}
	return v.cell.data
}

// SetPayload replaces the opaque payload in place, used when a
// generator/future/stream snapshot advances and the handle's contents
// change without changing its identity (clones still observe the same
// cell, matching "handle sharing" semantics for in-flight coroutines).
func (v Value) SetPayload(p any) {
	if v.cell != nil {
		v.cell.data = p
	}
}
