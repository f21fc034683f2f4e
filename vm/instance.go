package vm

import (
	"io"

	"github.com/vellum-lang/vellum/unit"
	"github.com/vellum-lang/vellum/value"
)

const defaultStackSize = 256

// Option configures an Instance during New, a functional-options
// pattern generalized to this package's register stack.
type Option func(*Instance) error

// WithStackSize preallocates n stack slots.
func WithStackSize(n int) Option {
	return func(m *Instance) error { m.stack = make([]value.Value, n); return nil }
}

// WithFrameDepth preallocates room for n nested call frames.
func WithFrameDepth(n int) Option {
	return func(m *Instance) error { m.frames = make([]Frame, 0, n); return nil }
}

// WithBudget installs an initial instruction budget (spec.md §4.4.7);
// an Instance with no budget option runs unlimited.
func WithBudget(n int64) Option {
	return func(m *Instance) error { m.budget = NewBudget(n); return nil }
}

// WithTrace installs a per-instance opcode trace writer, overriding any
// writer installed on the Context.
func WithTrace(w io.Writer) Option {
	return func(m *Instance) error { m.trace = w; return nil }
}

// Instance is one virtual machine execution state: an operand stack
// addressed by frame-relative slot, a call-frame stack, and an
// instruction pointer, running against a shared Unit and Context.
// Multiple Instances may run the same Unit/Context concurrently; none
// of an Instance's own state is shared.
type Instance struct {
	u      *unit.Unit
	ctx    *Context
	stack  []value.Value
	frames []Frame
	ip     int
	top    int // bump allocator: next free absolute stack slot
	budget Budget
	trace  io.Writer

	// pendingOut is the absolute address a suspended Yield writes its
	// resumed value into, or unit.Discard if the
	// instance has not yet suspended (fresh coroutine body).
	pendingOut int32
}

// New creates an Instance bound to u and ctx, applying opts in order.
func New(u *unit.Unit, ctx *Context, opts ...Option) (*Instance, error) {
	m := &Instance{
		u:          u,
		ctx:        ctx,
		budget:     NoLimit(),
		pendingOut: unit.Discard,
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	if m.stack == nil {
		m.stack = make([]value.Value, defaultStackSize)
	}
	if m.frames == nil {
		m.frames = make([]Frame, 0, 64)
	}
	if m.trace == nil {
		m.trace = ctx.trace
	}
	return m, nil
}

// Unit returns the Unit this instance executes.
func (m *Instance) Unit() *unit.Unit { return m.u }

// Context returns the Context this instance runs against.
func (m *Instance) Context() *Context { return m.ctx }

// ensureStack grows the stack so index idx is addressable. Newly
// exposed slots default to the Unit value, matching a fresh Allocate.
func (m *Instance) ensureStack(idx int) {
	if idx < len(m.stack) {
		return
	}
	grown := make([]value.Value, idx+1, (idx+1)*2)
	copy(grown, m.stack)
	m.stack = grown
}

// at reads the value at an absolute stack address.
func (m *Instance) at(addr int32) value.Value {
	m.ensureStack(int(addr))
	return m.stack[addr]
}

// setAt writes v at an absolute stack address, dropping whatever value
// previously occupied that slot.
func (m *Instance) setAt(addr int32, v value.Value) {
	m.ensureStack(int(addr))
	value.Drop(m.stack[addr])
	m.stack[addr] = v
}

// curFrame returns the active call frame. Execute/Call always push an
// isolated frame before running, so this is only invalid before the
// first frame is pushed.
func (m *Instance) curFrame() *Frame {
	return &m.frames[len(m.frames)-1]
}

// resolve turns a frame-relative operand into an absolute stack
// address (spec.md §4.3.4: "operands are stack addresses relative to
// the current call frame's base").
func (m *Instance) resolve(rel int32) int32 {
	return int32(m.curFrame().Base) + rel
}

// operand reads a frame-relative operand.
func (m *Instance) operand(rel int32) value.Value {
	return m.at(m.resolve(rel))
}

// setOperand writes a frame-relative operand, or drops v when out is
// the Discard sentinel.
func (m *Instance) setOperand(out int32, v value.Value) {
	if out == unit.Discard {
		value.Drop(v)
		return
	}
	m.setAt(m.resolve(out), v)
}

// take reads a frame-relative operand and zeroes its slot, transferring
// ownership to the caller without a Clone — the "Move" stack-management
// discipline spec.md §4.4.2 gives operands that consume their source
// (Return, Move, call argument ranges).
func (m *Instance) take(rel int32) value.Value { return m.takeAbs(m.resolve(rel)) }

// takeAbs is take for an already-resolved absolute address.
func (m *Instance) takeAbs(addr int32) value.Value {
	m.ensureStack(int(addr))
	v := m.stack[addr]
	m.stack[addr] = value.Value{}
	return v
}

// setAbsOut writes v at an absolute address, or drops it when addr is
// the Discard sentinel. Used for Frame.Out, which is resolved to an
// absolute address at call time (spec.md §4.4.1's "output destination").
func (m *Instance) setAbsOut(addr int32, v value.Value) {
	if addr == unit.Discard {
		value.Drop(v)
		return
	}
	m.setAt(addr, v)
}

// resolveOut turns a frame-relative Out operand into an absolute
// address, passing the unit.Discard sentinel through unresolved.
func (m *Instance) resolveOut(out int32) int32 {
	if out == unit.Discard {
		return unit.Discard
	}
	return m.resolve(out)
}

// pushFrame reserves a fresh region of the stack starting at the
// current top, copies args into it, and transfers control to entryIP.
// isolated marks a frame installed by the host (Execute/Call) or a
// coroutine body's own top-level frame; popping one signals completion
// rather than resuming a caller (spec.md §4.4.1).
func (m *Instance) pushFrame(entryIP int, args []value.Value, isolated bool, out int32, returnIP int) {
	base := m.top
	for i, a := range args {
		m.setAt(int32(base+i), a)
	}
	m.frames = append(m.frames, Frame{
		ReturnIP:  returnIP,
		CallerTop: m.top,
		Base:      base,
		Isolated:  isolated,
		Out:       out,
	})
	m.top = base + len(args)
	m.ip = entryIP
}

// popFrame pops the active frame, returning (v, true) when it was
// isolated (the caller must stop running), or writes v to the popped
// frame's output destination and restores the caller's ip/top,
// returning (zero, false) to signal "keep running".
func (m *Instance) popFrame(v value.Value) (value.Value, bool) {
	frame := m.frames[len(m.frames)-1]
	m.frames = m.frames[:len(m.frames)-1]
	m.top = frame.CallerTop
	if frame.Isolated {
		return v, true
	}
	m.ip = frame.ReturnIP
	m.setAbsOut(frame.Out, v)
	return value.Value{}, false
}
