package vm

import (
	"github.com/pkg/errors"

	"github.com/vellum-lang/vellum/unit"
	"github.com/vellum-lang/vellum/value"
)

// coroutineState is the payload of a Future/Generator/Stream value: a
// suspended VM snapshot, grounded on original_source/crates/rune/src/
// runtime/vm.rs's VmExecution and crates/rune/src/runtime/generator.rs.
// Rather than literally snapshotting and restoring one shared stack (as
// the Rust original's single-VM-per-execution model does), each
// coroutine body runs on its own child *Instance sharing this VM's Unit
// and Context — "suspended" simply means that child Instance's runLoop
// has returned control without popping its isolated frame.
type coroutineState struct {
	m    *Instance
	conv unit.CallConvention
	done bool
}

// DropPayload releases a coroutine's captured state without running it
// further (spec.md §4.4.5 "Cancellation": dropping a future/generator/
// stream handle drops its inner VM snapshot, releasing all captured
// values).
func (c *coroutineState) DropPayload() {
	if c.done || c.m == nil {
		return
	}
	for i := range c.m.stack {
		value.Drop(c.m.stack[i])
		c.m.stack[i] = value.Value{}
	}
	c.done = true
}

// resumeOutcome mirrors the VM surface's {Yielded(v), Complete(v),
// Halted(Limited)} resume outcomes (spec.md §5), plus an error case for
// an unrecoverable panic/corruption that unwound to the coroutine's own
// isolated frame.
type resumeOutcome struct {
	kind  outcomeKind
	value value.Value
	err   error
}

// drive feeds input at the previous suspension point (if any) and runs
// the coroutine body until its next Yield/Await, completion, or budget
// exhaustion.
func (c *coroutineState) drive(input value.Value) resumeOutcome {
	if c.done {
		return resumeOutcome{err: errors.New("resume called on a completed or dropped coroutine")}
	}
	if c.m.pendingOut != unit.Discard {
		c.m.setAbsOut(c.m.pendingOut, input)
		c.m.pendingOut = unit.Discard
	} else {
		value.Drop(input)
	}
	out := c.m.runLoop()
	if out.kind == outcomeReturn || out.err != nil {
		c.done = true
	}
	return resumeOutcome{kind: out.kind, value: out.value, err: out.err}
}

// driveFutureToCompletion feeds unit into the body and runs it one
// step, up to its next Yield or its Complete(v), and returns that. For
// an async body with no Yield this is its terminal Complete(v); it is
// used by Await. Generators/streams are driven by the host through an
// explicit resume() method instead (see execute.go), but a bare Await
// on one still gets a defined outcome: the first Yield/Complete.
func (c *coroutineState) driveFutureToCompletion() resumeOutcome {
	return c.drive(value.Unit())
}
