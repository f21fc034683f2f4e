package vm

import "github.com/vellum-lang/vellum/value"

// doSelect implements the Select opcode: poll n contiguous future/
// generator/stream handles starting at the absolute address addr,
// returning the index and value of whichever completes a step first
// (spec.md §4.4.2). index is -1 when no handle in the range is live.
//
// This VM has no real concurrent I/O driving a coroutine's internal
// suspension — every handle's body only ever blocks on another Await/
// Yield it performs itself, never on external readiness. So unlike a
// true async runtime, nothing here can observe one handle as "not yet
// ready" while another is: the first live handle in address order is
// simply driven one step and that step's outcome is what Select
// reports, a deterministic degenerate case of the {Yielded, Complete}
// outcome applying uniformly regardless of which branch happens to be
// polled first.
func (m *Instance) doSelect(addr int32, n int) (index int, result value.Value, err error) {
	for i := 0; i < n; i++ {
		a := addr + int32(i)
		h := m.at(a)
		if h.Kind() != value.KindFuture && h.Kind() != value.KindGenerator && h.Kind() != value.KindStream {
			continue
		}
		cs, ok := h.Payload().(*coroutineState)
		if !ok || cs.done {
			continue
		}
		out := cs.drive(value.Unit())
		if out.err != nil {
			return 0, value.Value{}, out.err
		}
		if out.kind == outcomeReturn {
			// setAt drops the handle currently occupying the slot (h
			// itself) before installing the zero value.
			m.setAt(a, value.Value{})
		}
		return i, out.value, nil
	}
	return -1, value.Unit(), nil
}
