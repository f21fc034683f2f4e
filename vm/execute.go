package vm

import (
	"github.com/pkg/errors"

	"github.com/vellum-lang/vellum/unit"
	"github.com/vellum-lang/vellum/value"
	"github.com/vellum-lang/vellum/vmerr"
)

// Execution is a resumable handle on one entry-point invocation (spec.md
// §6 "Execute an entry point"): a single Instance parked at its own
// isolated top-level frame, driven forward by Complete (sync, run to
// the end) or Resume (feed a value into the last Yield, one step at a
// time).
type Execution struct {
	m *Instance
}

// Outcome mirrors the VM surface's {Yielded(v), Complete(v),
// Halted(Limited)} resume outcome (spec.md §5).
type Outcome struct {
	Yielded  bool
	Complete bool
	Limited  bool
	Value    value.Value
}

func lookupEntry(u *unit.Unit, path string) (value.Hash, bool) {
	ep, ok := u.EntryPoints[path]
	return value.Hash(ep), ok
}

// Execute begins running the function at path with args, returning an
// Execution the caller drives with Complete or Resume (spec.md §6).
// args is consumed (ownership transferred into the new frame).
func Execute(u *unit.Unit, ctx *Context, path string, args []value.Value, opts ...Option) (*Execution, error) {
	hash, ok := lookupEntry(u, path)
	if !ok {
		return nil, errors.WithStack(vmerr.MissingFunction{Hash: uint64(value.HashPath(value.SaltFunction, path))})
	}
	entry, ok := u.Functions[hash]
	if !ok {
		return nil, errors.WithStack(vmerr.MissingFunction{Hash: uint64(hash)})
	}
	if entry.Kind != unit.FuncOffset {
		return nil, errors.Errorf("%s is not an executable function", path)
	}
	if len(args) != entry.Offset.Arity {
		return nil, errors.WithStack(vmerr.BadArgumentCount{Want: entry.Offset.Arity, Got: len(args)})
	}
	m, err := New(u, ctx, opts...)
	if err != nil {
		return nil, err
	}
	m.pushFrame(entry.Offset.EntryIP, args, true, unit.Discard, 0)
	return &Execution{m: m}, nil
}

func toOutcome(out runOutcome) Outcome {
	switch out.kind {
	case outcomeReturn:
		return Outcome{Complete: true, Value: out.value}
	case outcomeYield:
		return Outcome{Yielded: true, Value: out.value}
	default:
		return Outcome{Limited: true}
	}
}

// Complete drives e synchronously to its terminal Complete(v), feeding
// unit into every intermediate Yield, matching spec.md §6's sync
// `complete()` call.
func (e *Execution) Complete() (value.Value, error) {
	for {
		out := e.m.runLoop()
		if out.err != nil {
			return value.Value{}, out.err
		}
		if out.kind == outcomeYield {
			e.m.setAbsOut(e.m.pendingOut, value.Unit())
			e.m.pendingOut = unit.Discard
			continue
		}
		return toOutcome(out).valueOrBudget()
	}
}

// Resume feeds v into the execution's last suspension point and runs it
// one step, matching spec.md §6's async `resume().await` and §5's
// {Yielded, Complete, Halted} outcome set.
func (e *Execution) Resume(v value.Value) (Outcome, error) {
	if e.m.pendingOut != unit.Discard {
		e.m.setAbsOut(e.m.pendingOut, v)
		e.m.pendingOut = unit.Discard
	} else {
		value.Drop(v)
	}
	out := e.m.runLoop()
	if out.kind == outcomeLimited {
		return toOutcome(out), nil
	}
	if out.err != nil {
		return Outcome{}, out.err
	}
	return toOutcome(out), nil
}

func (o Outcome) valueOrBudget() (value.Value, error) {
	if o.Limited {
		return value.Value{}, errors.WithStack(vmerr.BudgetExhausted{})
	}
	return o.Value, nil
}

// Call invokes path to completion synchronously and returns its result,
// matching spec.md §6's `vm.call(path, args) → Value`. args is consumed.
func Call(u *unit.Unit, ctx *Context, path string, args []value.Value, opts ...Option) (value.Value, error) {
	exec, err := Execute(u, ctx, path, args, opts...)
	if err != nil {
		return value.Value{}, err
	}
	v, err := exec.Complete()
	if err != nil {
		return value.Value{}, err
	}
	return v, nil
}
