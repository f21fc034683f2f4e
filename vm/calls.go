package vm

import (
	"github.com/pkg/errors"

	"github.com/vellum-lang/vellum/unit"
	"github.com/vellum-lang/vellum/value"
	"github.com/vellum-lang/vellum/vmerr"
)

// lookupFunction resolves a function hash against the unit's own
// function table first, then the host context's natives — the same
// "unit, then context" order spec.md §4.4.4 gives protocol dispatch,
// applied here to direct calls (`Call hash`).
func (m *Instance) lookupFunction(hash value.Hash) (*unit.FuncEntry, NativeFn, bool) {
	if entry, ok := m.u.Functions[hash]; ok {
		return entry, nil, true
	}
	if fn, ok := m.ctx.natives[hash]; ok {
		return nil, fn, true
	}
	return nil, nil, false
}

// collectArgs takes ownership of n contiguous values starting at the
// absolute address addr, zeroing the source slots so the temporaries
// the compiler built for the call are not double-dropped — the "Move"
// discipline spec.md §4.4.2 gives stack-management operands applied to
// call argument ranges (spec.md §5: "the call reads exactly those
// addresses").
func (m *Instance) collectArgs(addr int32, n int) []value.Value {
	if n == 0 {
		return nil
	}
	args := make([]value.Value, n)
	for i := 0; i < n; i++ {
		a := addr + int32(i)
		m.ensureStack(int(a))
		args[i] = m.stack[a]
		m.stack[a] = value.Value{}
	}
	return args
}

func cloneAll(vs []value.Value) []value.Value {
	if vs == nil {
		return nil
	}
	out := make([]value.Value, len(vs))
	for i, v := range vs {
		out[i] = v.Clone()
	}
	return out
}

// callNative invokes a host native function with its argument slice.
func (m *Instance) callNative(fn NativeFn, args []value.Value) (value.Value, error) {
	return fn(m, args)
}

// constructEntry builds a struct/tuple-struct value for the non-offset
// function-table entry kinds (spec.md §4.2 "Function table").
func (m *Instance) constructEntry(entry *unit.FuncEntry, args []value.Value) (value.Value, error) {
	switch entry.Kind {
	case unit.FuncUnitStructCtor:
		rtti, ok := m.u.Pools.RTTIAt(entry.RTTISlot)
		if !ok {
			return value.Value{}, errors.WithStack(vmerr.MissingRTTI{Hash: uint64(entry.RTTISlot)})
		}
		return value.Dynamic(rtti, nil), nil
	case unit.FuncTupleStructCtor:
		rtti, ok := m.u.Pools.RTTIAt(entry.Tuple.RTTISlot)
		if !ok {
			return value.Value{}, errors.WithStack(vmerr.MissingRTTI{Hash: uint64(entry.Tuple.RTTISlot)})
		}
		if len(args) != entry.Tuple.Arity {
			return value.Value{}, errors.WithStack(vmerr.BadArgumentCount{Want: entry.Tuple.Arity, Got: len(args)})
		}
		return value.Dynamic(rtti, args), nil
	default:
		return value.Value{}, errors.Errorf("%s: not a constructible function entry", entry.Name)
	}
}

// doCall dispatches a resolved FuncEntry per its calling convention
// (spec.md §4.4.3). explicitArgs are the call's own arguments (already
// owned); env is a closure's captured environment (already owned,
// cloned copies), appended after explicitArgs. For FuncOffset/
// ConvImmediate this pushes a new frame and execution continues in the
// current runLoop (no Go-level recursion); for Async/Generator/Stream
// it spawns a child Instance sharing this instance's Unit/Context and
// wraps it in the matching coroutine Value, without running it.
func (m *Instance) doCall(entry *unit.FuncEntry, explicitArgs, env []value.Value, out int32, nextIP int) error {
	if entry.Kind != unit.FuncOffset {
		v, err := m.constructEntry(entry, explicitArgs)
		if err != nil {
			return err
		}
		m.setAt(out, v)
		m.ip = nextIP
		return nil
	}
	of := entry.Offset
	if len(explicitArgs) != of.Arity {
		return errors.WithStack(vmerr.BadArgumentCount{Want: of.Arity, Got: len(explicitArgs)})
	}
	if len(env) != of.CaptureLen {
		return errors.WithStack(vmerr.BadEnvironmentCount{Want: of.CaptureLen, Got: len(env)})
	}
	args := explicitArgs
	if len(env) > 0 {
		args = make([]value.Value, 0, len(explicitArgs)+len(env))
		args = append(args, explicitArgs...)
		args = append(args, env...)
	}
	switch of.Conv {
	case unit.ConvImmediate:
		m.pushFrame(of.EntryIP, args, false, out, nextIP)
		return nil
	case unit.ConvAsync, unit.ConvGenerator, unit.ConvStream:
		child, err := New(m.u, m.ctx)
		if err != nil {
			return err
		}
		child.pushFrame(of.EntryIP, args, true, unit.Discard, 0)
		cs := &coroutineState{m: child, conv: of.Conv}
		var v value.Value
		switch of.Conv {
		case unit.ConvAsync:
			v = value.NewFuture(cs)
		case unit.ConvGenerator:
			v = value.NewGenerator(cs)
		case unit.ConvStream:
			v = value.NewStream(cs)
		}
		m.setAt(out, v)
		m.ip = nextIP
		return nil
	default:
		return errors.Errorf("unknown calling convention %v", of.Conv)
	}
}

// callEntrySync invokes entry to completion synchronously on this
// instance, for protocol-dispatch call sites (arithmetic/compare/index
// overloads) that need a Value back immediately. Only immediate
// convention is supported here; async/generator/stream protocol
// implementations are rejected, since a protocol call site has no way
// to return an unresolved future to its caller mid-expression.
func (m *Instance) callEntrySync(entry *unit.FuncEntry, args []value.Value) (value.Value, error) {
	if entry.Kind != unit.FuncOffset {
		return m.constructEntry(entry, args)
	}
	if entry.Offset.Conv != unit.ConvImmediate {
		return value.Value{}, errors.Errorf("%s: only an immediate-convention function may implement a protocol", entry.Name)
	}
	if len(args) != entry.Offset.Arity {
		return value.Value{}, errors.WithStack(vmerr.BadArgumentCount{Want: entry.Offset.Arity, Got: len(args)})
	}
	savedIP := m.ip
	m.pushFrame(entry.Offset.EntryIP, args, true, unit.Discard, savedIP)
	out := m.runLoop()
	m.ip = savedIP
	if out.err != nil {
		return value.Value{}, out.err
	}
	return out.value, nil
}

// invokeProtocol calls a resolved protocol target (native or unit
// function) synchronously and returns its result.
func (m *Instance) invokeProtocol(t protocolTarget, args []value.Value) (value.Value, error) {
	if t.native != nil {
		return m.callNative(t.native, args)
	}
	return m.callEntrySync(t.entry, args)
}
