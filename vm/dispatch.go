package vm

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"

	"github.com/vellum-lang/vellum/unit"
	"github.com/vellum-lang/vellum/value"
	"github.com/vellum-lang/vellum/vmerr"
)

// outcomeKind tags why runLoop returned control to its caller.
type outcomeKind int

const (
	outcomeReturn  outcomeKind = iota // an isolated frame popped: execution is complete
	outcomeYield                      // a Yield was reached: the body is suspended, resumable
	outcomeLimited                    // the instruction budget ran out mid-execution
)

// runOutcome is runLoop's result: exactly one of a completion value, a
// yielded value, or an error (budget exhaustion is reported as both a
// kind and a BudgetExhausted error, so callers that only check err
// still see a typed reason).
type runOutcome struct {
	kind  outcomeKind
	value value.Value
	err   error
}

// runLoop is the flat instruction dispatch loop (spec.md §4.4): it runs
// from the current ip until the active isolated frame pops (Return),
// a Yield suspends the body, the budget is exhausted, or an error
// propagates. Calls.go's doCall pushes ordinary frames without
// recursing into runLoop (spec.md §4.4.3's "Immediate" convention
// keeps everything in this one loop); only callEntrySync's protocol
// dispatch call sites recurse into a nested runLoop, and only because
// that call site needs a value back before it can continue its own
// instruction.
func (m *Instance) runLoop() runOutcome {
	for {
		if m.budget.spend() {
			return runOutcome{kind: outcomeLimited, err: errors.WithStack(vmerr.BudgetExhausted{})}
		}
		ins, ok := m.u.At(m.ip)
		if !ok {
			return runOutcome{err: errors.WithStack(vmerr.IPOutOfBounds{IP: m.ip, Len: m.u.Len()})}
		}
		if m.trace != nil {
			_, text := m.u.Disassemble(m.ip)
			fmt.Fprintf(m.trace, "%6d  %s\n", m.ip, text)
		}
		nextIP := m.ip + 1

		switch ins.Op {

		// --- stack management -------------------------------------

		case unit.OpNop:
			m.ip = nextIP

		case unit.OpAllocate:
			for i := 0; i < int(ins.A); i++ {
				m.ensureStack(m.top)
				m.stack[m.top] = value.Value{}
				m.top++
			}
			m.ip = nextIP

		case unit.OpCopy:
			m.setOperand(ins.Out, m.operand(ins.A).Clone())
			m.ip = nextIP

		case unit.OpMove:
			m.setOperand(ins.Out, m.take(ins.A))
			m.ip = nextIP

		case unit.OpSwap:
			ra, rb := m.resolve(ins.A), m.resolve(ins.B)
			m.ensureStack(int(ra))
			m.ensureStack(int(rb))
			m.stack[ra], m.stack[rb] = m.stack[rb], m.stack[ra]
			m.ip = nextIP

		case unit.OpDropSet:
			for _, rel := range m.u.DropSets[ins.A] {
				value.Drop(m.take(rel))
			}
			m.ip = nextIP

		// --- literals ------------------------------------------------

		case unit.OpStoreImm:
			m.setOperand(ins.Out, ins.Imm.Clone())
			m.ip = nextIP

		case unit.OpStringSlot:
			m.setOperand(ins.Out, value.StringSlot(ins.A))
			m.ip = nextIP

		case unit.OpBytesSlot:
			m.setOperand(ins.Out, value.BytesSlot(ins.A))
			m.ip = nextIP

		// --- construction ----------------------------------------------

		case unit.OpVec:
			items := m.collectArgs(m.resolve(ins.A), int(ins.B))
			m.setOperand(ins.Out, value.VecValue(value.NewVecFromSlice(items)))
			m.ip = nextIP

		case unit.OpTuple, unit.OpTupleN:
			items := m.collectArgs(m.resolve(ins.A), int(ins.B))
			m.setOperand(ins.Out, value.TupleValue(value.Tuple(items)))
			m.ip = nextIP

		case unit.OpObject:
			keys, kok := m.u.Pools.ObjectKeysAt(ins.C)
			if !kok {
				return runOutcome{err: errors.WithStack(vmerr.MissingStaticSlot{Pool: "object-keys", Slot: int(ins.C)})}
			}
			vals := m.collectArgs(m.resolve(ins.A), int(ins.B))
			obj := value.NewObject()
			for i, k := range keys {
				if i < len(vals) {
					obj.Set(k, vals[i])
				}
			}
			m.setOperand(ins.Out, value.ObjectValue(obj))
			m.ip = nextIP

		case unit.OpRangeVariant:
			var r value.Range
			r.Variant = value.RangeVariant(ins.C)
			if r.HasStart() {
				r.Start = m.take(ins.A)
			}
			if r.HasEnd() {
				r.End = m.take(ins.B)
			}
			m.setOperand(ins.Out, value.RangeValue(r))
			m.ip = nextIP

		case unit.OpStruct:
			rtti, rok := m.u.Pools.RTTIAt(ins.C)
			if !rok {
				return runOutcome{err: errors.WithStack(vmerr.MissingRTTI{Hash: uint64(ins.C)})}
			}
			fields := m.collectArgs(m.resolve(ins.A), int(ins.B))
			m.setOperand(ins.Out, value.Dynamic(rtti, fields))
			m.ip = nextIP

		case unit.OpConstConstruct:
			hash := value.Hash(ins.Imm.AsTypeHash())
			info, cok := m.ctx.anyTypes[hash]
			if !cok || info.Constructor == nil {
				return runOutcome{err: errors.WithStack(vmerr.MissingConstConstructor{Hash: uint64(hash)})}
			}
			args := m.collectArgs(m.resolve(ins.A), int(ins.B))
			res, err := info.Constructor(args)
			if err != nil {
				return runOutcome{err: err}
			}
			m.setOperand(ins.Out, res)
			m.ip = nextIP

		// --- arithmetic / bitwise / shift ----------------------------

		case unit.OpAdd, unit.OpSub, unit.OpMul, unit.OpDiv, unit.OpRem:
			a, b := m.take(ins.A), m.take(ins.B)
			res, handled, err := arith(arithAssignOpStr(arithCode(ins.Op)), a, b)
			if err != nil {
				return runOutcome{err: err}
			}
			if !handled {
				target, found := m.resolveProtocol(a.TypeHashOf(), arithAssignProtocol(arithCode(ins.Op)))
				if !found {
					return runOutcome{err: errors.WithStack(vmerr.UnsupportedBinaryOperation{
						Op: arithAssignOpStr(arithCode(ins.Op)), Lhs: a.Kind().String(), Rhs: b.Kind().String(),
					})}
				}
				res, err = m.invokeProtocol(target, []value.Value{a, b})
				if err != nil {
					return runOutcome{err: err}
				}
			}
			m.setOperand(ins.Out, res)
			m.ip = nextIP

		case unit.OpBitAnd, unit.OpBitOr, unit.OpBitXor:
			a, b := m.take(ins.A), m.take(ins.B)
			res, handled, err := bitwise(bitwiseAssignOpStr(bitwiseCode(ins.Op)), a, b)
			if err != nil {
				return runOutcome{err: err}
			}
			if !handled {
				target, found := m.resolveProtocol(a.TypeHashOf(), bitwiseAssignProtocol(bitwiseCode(ins.Op)))
				if !found {
					return runOutcome{err: errors.WithStack(vmerr.UnsupportedBinaryOperation{
						Op: bitwiseAssignOpStr(bitwiseCode(ins.Op)), Lhs: a.Kind().String(), Rhs: b.Kind().String(),
					})}
				}
				res, err = m.invokeProtocol(target, []value.Value{a, b})
				if err != nil {
					return runOutcome{err: err}
				}
			}
			m.setOperand(ins.Out, res)
			m.ip = nextIP

		case unit.OpShl, unit.OpShr:
			left := ins.Op == unit.OpShl
			a, amt := m.take(ins.A), m.take(ins.B)
			res, handled, err := shift(left, a, amt)
			if err != nil {
				return runOutcome{err: err}
			}
			if !handled {
				proto := ProtoShl
				op := "<<"
				if !left {
					proto, op = ProtoShr, ">>"
				}
				target, found := m.resolveProtocol(a.TypeHashOf(), proto)
				if !found {
					return runOutcome{err: errors.WithStack(vmerr.UnsupportedBinaryOperation{Op: op, Lhs: a.Kind().String(), Rhs: amt.Kind().String()})}
				}
				res, err = m.invokeProtocol(target, []value.Value{a, amt})
				if err != nil {
					return runOutcome{err: err}
				}
			}
			m.setOperand(ins.Out, res)
			m.ip = nextIP

		// --- compare / logical -----------------------------------------

		case unit.OpEq, unit.OpNeq:
			a, b := m.take(ins.A), m.take(ins.B)
			eq, err := m.equalValues(a, b)
			if err != nil {
				return runOutcome{err: err}
			}
			if ins.Op == unit.OpNeq {
				eq = !eq
			}
			m.setOperand(ins.Out, value.Bool(eq))
			m.ip = nextIP

		case unit.OpLt, unit.OpLe, unit.OpGt, unit.OpGe:
			a, b := m.take(ins.A), m.take(ins.B)
			ord, err := m.compareValues(a, b)
			if err != nil {
				return runOutcome{err: err}
			}
			var result bool
			switch ins.Op {
			case unit.OpLt:
				result = ord == value.Less
			case unit.OpLe:
				result = ord != value.Greater
			case unit.OpGt:
				result = ord == value.Greater
			case unit.OpGe:
				result = ord != value.Less
			}
			m.setOperand(ins.Out, value.Bool(result))
			m.ip = nextIP

		case unit.OpIs, unit.OpIsNot:
			v := m.take(ins.A)
			matched := v.TypeHashOf() == ins.Imm.AsTypeHash()
			value.Drop(v)
			if ins.Op == unit.OpIsNot {
				matched = !matched
			}
			m.setOperand(ins.Out, value.Bool(matched))
			m.ip = nextIP

		case unit.OpAsType:
			v := m.take(ins.A)
			if v.TypeHashOf() == ins.Imm.AsTypeHash() {
				m.setOperand(ins.Out, someOf(v))
			} else {
				value.Drop(v)
				m.setOperand(ins.Out, noneOf())
			}
			m.ip = nextIP

		case unit.OpLogAnd:
			a, b := m.take(ins.A), m.take(ins.B)
			m.setOperand(ins.Out, value.Bool(a.AsBool() && b.AsBool()))
			m.ip = nextIP

		case unit.OpLogOr:
			a, b := m.take(ins.A), m.take(ins.B)
			m.setOperand(ins.Out, value.Bool(a.AsBool() || b.AsBool()))
			m.ip = nextIP

		// --- assign ------------------------------------------------------

		case unit.OpAssignArith:
			target := m.resolve(ins.A)
			lhs := m.takeAbs(target)
			rhs := m.take(ins.B)
			opName := arithAssignOpStr(ins.C)
			res, handled, err := arith(opName, lhs, rhs)
			if err != nil {
				return runOutcome{err: err}
			}
			if !handled {
				t, found := m.resolveProtocol(lhs.TypeHashOf(), arithAssignProtocol(ins.C))
				if !found {
					return runOutcome{err: errors.WithStack(vmerr.UnsupportedBinaryOperation{Op: opName, Lhs: lhs.Kind().String(), Rhs: rhs.Kind().String()})}
				}
				res, err = m.invokeProtocol(t, []value.Value{lhs, rhs})
				if err != nil {
					return runOutcome{err: err}
				}
			}
			m.setAbsOut(target, res)
			m.ip = nextIP

		case unit.OpAssignBitwise:
			target := m.resolve(ins.A)
			lhs := m.takeAbs(target)
			rhs := m.take(ins.B)
			opName := bitwiseAssignOpStr(ins.C)
			res, handled, err := bitwise(opName, lhs, rhs)
			if err != nil {
				return runOutcome{err: err}
			}
			if !handled {
				t, found := m.resolveProtocol(lhs.TypeHashOf(), bitwiseAssignProtocol(ins.C))
				if !found {
					return runOutcome{err: errors.WithStack(vmerr.UnsupportedBinaryOperation{Op: opName, Lhs: lhs.Kind().String(), Rhs: rhs.Kind().String()})}
				}
				res, err = m.invokeProtocol(t, []value.Value{lhs, rhs})
				if err != nil {
					return runOutcome{err: err}
				}
			}
			m.setAbsOut(target, res)
			m.ip = nextIP

		case unit.OpAssignShift:
			target := m.resolve(ins.A)
			lhs := m.takeAbs(target)
			rhs := m.take(ins.B)
			left := ins.C == 0
			res, handled, err := shift(left, lhs, rhs)
			if err != nil {
				return runOutcome{err: err}
			}
			if !handled {
				proto := ProtoShl
				if !left {
					proto = ProtoShr
				}
				t, found := m.resolveProtocol(lhs.TypeHashOf(), proto)
				if !found {
					op := "<<="
					if !left {
						op = ">>="
					}
					return runOutcome{err: errors.WithStack(vmerr.UnsupportedBinaryOperation{Op: op, Lhs: lhs.Kind().String(), Rhs: rhs.Kind().String()})}
				}
				res, err = m.invokeProtocol(t, []value.Value{lhs, rhs})
				if err != nil {
					return runOutcome{err: err}
				}
			}
			m.setAbsOut(target, res)
			m.ip = nextIP

		// --- control flow --------------------------------------------

		case unit.OpJump:
			m.ip = int(ins.A)

		case unit.OpJumpIf:
			cond := m.take(ins.B)
			if cond.AsBool() {
				m.ip = int(ins.A)
			} else {
				m.ip = nextIP
			}

		case unit.OpJumpIfNot:
			cond := m.take(ins.B)
			if !cond.AsBool() {
				m.ip = int(ins.A)
			} else {
				m.ip = nextIP
			}

		case unit.OpIterNext:
			it := m.operand(ins.A)
			target, found := m.resolveProtocol(it.TypeHashOf(), ProtoIterNext)
			if !found {
				return runOutcome{err: errors.WithStack(vmerr.MissingInstanceFunction{Type: it.Kind().String(), Protocol: "ITER_NEXT"})}
			}
			res, err := m.invokeProtocol(target, []value.Value{it.Clone()})
			if err != nil {
				return runOutcome{err: err}
			}
			m.setOperand(ins.Out, res)
			m.ip = nextIP

		case unit.OpPanic:
			v := m.take(ins.A)
			reason, serr := m.stringOf(v)
			if serr != nil {
				reason = v.String()
			}
			value.Drop(v)
			return runOutcome{err: errors.WithStack(vmerr.Panic{Reason: reason})}

		// --- calls -------------------------------------------------------

		case unit.OpCall:
			hash := value.Hash(ins.Imm.AsTypeHash())
			entry, native, found := m.lookupFunction(hash)
			args := m.collectArgs(m.resolve(ins.A), int(ins.B))
			out := m.resolveOut(ins.Out)
			if !found {
				return runOutcome{err: errors.WithStack(vmerr.MissingFunction{Hash: uint64(hash)})}
			}
			if native != nil {
				res, err := m.callNative(native, args)
				if err != nil {
					return runOutcome{err: err}
				}
				m.setAbsOut(out, res)
				m.ip = nextIP
			} else if err := m.doCall(entry, args, nil, out, nextIP); err != nil {
				return runOutcome{err: err}
			}

		case unit.OpCallOffset:
			entryIP := int(ins.Imm.AsInt())
			n := int(ins.B)
			args := m.collectArgs(m.resolve(ins.A), n)
			entry := &unit.FuncEntry{Kind: unit.FuncOffset, Offset: unit.OffsetFunc{EntryIP: entryIP, Conv: unit.ConvImmediate, Arity: n}}
			if err := m.doCall(entry, args, nil, m.resolveOut(ins.Out), nextIP); err != nil {
				return runOutcome{err: err}
			}

		case unit.OpCallAssociated:
			recv := m.operand(ins.A)
			methodHash := value.Hash(ins.Imm.AsTypeHash())
			target, found := m.resolveProtocol(recv.TypeHashOf(), Protocol(methodHash))
			if !found {
				return runOutcome{err: errors.WithStack(vmerr.MissingInstanceFunction{Type: recv.Kind().String(), Protocol: m.ctx.NameOf(methodHash)})}
			}
			args := m.collectArgs(m.resolve(ins.B), int(ins.C))
			full := append([]value.Value{recv.Clone()}, args...)
			res, err := m.invokeProtocol(target, full)
			if err != nil {
				return runOutcome{err: err}
			}
			m.setOperand(ins.Out, res)
			m.ip = nextIP

		case unit.OpLoadFn:
			hash := value.Hash(ins.Imm.AsTypeHash())
			entry, native, found := m.lookupFunction(hash)
			if !found {
				return runOutcome{err: errors.WithStack(vmerr.MissingFunction{Hash: uint64(hash)})}
			}
			var fv value.Value
			if native != nil {
				fv = value.NewFunction(&funcHandle{native: native})
			} else {
				fv = loadFn(entry)
			}
			m.setOperand(ins.Out, fv)
			m.ip = nextIP

		case unit.OpLoadInstanceFn:
			recv := m.operand(ins.A)
			hash := value.Hash(ins.Imm.AsTypeHash())
			target, found := m.resolveProtocol(recv.TypeHashOf(), Protocol(hash))
			if !found {
				return runOutcome{err: errors.WithStack(vmerr.MissingInstanceFunction{Type: recv.Kind().String(), Protocol: m.ctx.NameOf(hash)})}
			}
			var fv value.Value
			if target.native != nil {
				fv = value.NewFunction(&funcHandle{native: target.native, env: []value.Value{recv.Clone()}})
			} else {
				fv = closureOf(target.entry, []value.Value{recv.Clone()})
			}
			m.setOperand(ins.Out, fv)
			m.ip = nextIP

		case unit.OpClosure:
			hash := value.Hash(ins.Imm.AsTypeHash())
			entry, _, found := m.lookupFunction(hash)
			if !found {
				return runOutcome{err: errors.WithStack(vmerr.MissingFunction{Hash: uint64(hash)})}
			}
			env := m.collectArgs(m.resolve(ins.A), int(ins.B))
			m.setOperand(ins.Out, closureOf(entry, env))
			m.ip = nextIP

		case unit.OpCallFn:
			fv := m.take(ins.A)
			if fv.Kind() != value.KindFunction {
				return runOutcome{err: errors.WithStack(vmerr.UnsupportedCall{Target: fv.Kind().String()})}
			}
			fh := fv.Payload().(*funcHandle)
			args := m.collectArgs(m.resolve(ins.B), int(ins.C))
			out := m.resolveOut(ins.Out)
			env := cloneAll(fh.env)
			native := fh.native
			entry := fh.entry
			value.Drop(fv)
			if native != nil {
				full := append(env, args...)
				res, err := m.callNative(native, full)
				if err != nil {
					return runOutcome{err: err}
				}
				m.setAbsOut(out, res)
				m.ip = nextIP
			} else if err := m.doCall(entry, args, env, out, nextIP); err != nil {
				return runOutcome{err: err}
			}

		// --- return --------------------------------------------------

		case unit.OpReturn:
			v := m.take(ins.A)
			res, done := m.popFrame(v)
			if done {
				return runOutcome{kind: outcomeReturn, value: res}
			}

		case unit.OpReturnUnit:
			res, done := m.popFrame(value.Unit())
			if done {
				return runOutcome{kind: outcomeReturn, value: res}
			}

		// --- await / select --------------------------------------------

		case unit.OpAwait:
			fv := m.take(ins.A)
			cs, cok := fv.Payload().(*coroutineState)
			if !cok {
				return runOutcome{err: errors.WithStack(vmerr.UnsupportedCall{Target: fv.Kind().String()})}
			}
			res := cs.driveFutureToCompletion()
			value.Drop(fv)
			if res.err != nil {
				return runOutcome{err: res.err}
			}
			m.setOperand(ins.Out, res.value)
			m.ip = nextIP

		case unit.OpSelect:
			idx, v, err := m.doSelect(m.resolve(ins.A), int(ins.B))
			if err != nil {
				return runOutcome{err: err}
			}
			if idx < 0 {
				m.setOperand(ins.Out, value.Unit())
			} else {
				m.setOperand(ins.Out, value.TupleValue(value.Tuple{value.Int(int64(idx)), v}))
			}
			m.ip = nextIP

		// --- indexing ------------------------------------------------

		case unit.OpIndexGet:
			res, err := m.indexGet(ins.A, ins.B)
			if err != nil {
				return runOutcome{err: err}
			}
			m.setOperand(ins.Out, res)
			m.ip = nextIP

		case unit.OpIndexSet:
			if err := m.indexSet(ins.A, ins.B, ins.C); err != nil {
				return runOutcome{err: err}
			}
			m.setOperand(ins.Out, value.Unit())
			m.ip = nextIP

		case unit.OpTupleIndexGet:
			res, err := m.tupleIndexGet(ins.A, ins.B)
			if err != nil {
				return runOutcome{err: err}
			}
			m.setOperand(ins.Out, res)
			m.ip = nextIP

		case unit.OpTupleIndexSet:
			if err := m.tupleIndexSet(ins.A, ins.B, ins.C); err != nil {
				return runOutcome{err: err}
			}
			m.setOperand(ins.Out, value.Unit())
			m.ip = nextIP

		case unit.OpObjectIndexGet:
			res, err := m.objectIndexGet(ins.A, ins.B)
			if err != nil {
				return runOutcome{err: err}
			}
			m.setOperand(ins.Out, res)
			m.ip = nextIP

		case unit.OpObjectIndexSet:
			if err := m.objectIndexSet(ins.A, ins.B, ins.C); err != nil {
				return runOutcome{err: err}
			}
			m.setOperand(ins.Out, value.Unit())
			m.ip = nextIP

		// --- pattern match ---------------------------------------------

		case unit.OpEqChar:
			v := m.operand(ins.A)
			m.setOperand(ins.Out, value.Bool(v.Kind() == value.KindChar && v.AsChar() == ins.Imm.AsChar()))
			m.ip = nextIP

		case unit.OpEqUnsigned:
			v := m.operand(ins.A)
			m.setOperand(ins.Out, value.Bool(v.Kind() == value.KindUint && v.AsUint() == ins.Imm.AsUint()))
			m.ip = nextIP

		case unit.OpEqSigned:
			v := m.operand(ins.A)
			m.setOperand(ins.Out, value.Bool(v.Kind() == value.KindInt && v.AsInt() == ins.Imm.AsInt()))
			m.ip = nextIP

		case unit.OpEqBool:
			v := m.operand(ins.A)
			m.setOperand(ins.Out, value.Bool(v.Kind() == value.KindBool && v.AsBool() == ins.Imm.AsBool()))
			m.ip = nextIP

		case unit.OpEqString:
			v := m.operand(ins.A)
			vs, err1 := m.stringOf(v)
			is, err2 := m.stringOf(ins.Imm)
			m.setOperand(ins.Out, value.Bool(err1 == nil && err2 == nil && vs == is))
			m.ip = nextIP

		case unit.OpEqBytes:
			v := m.operand(ins.A)
			vb, err1 := m.bytesOf(v)
			ib, err2 := m.bytesOf(ins.Imm)
			m.setOperand(ins.Out, value.Bool(err1 == nil && err2 == nil && bytes.Equal(vb, ib)))
			m.ip = nextIP

		case unit.OpMatchType:
			v := m.operand(ins.A)
			m.setOperand(ins.Out, value.Bool(v.TypeHashOf() == ins.Imm.AsTypeHash()))
			m.ip = nextIP

		case unit.OpMatchSequence:
			v := m.operand(ins.A)
			n := -1
			switch v.Kind() {
			case value.KindVec:
				n = v.AsVec().Len()
			case value.KindDeque:
				n = v.AsDeque().Len()
			case value.KindTuple:
				n = len(v.AsTuple())
			}
			matched := n >= 0 && (n == int(ins.B) || (ins.C != 0 && n >= int(ins.B)))
			m.setOperand(ins.Out, value.Bool(matched))
			m.ip = nextIP

		case unit.OpMatchObject:
			v := m.operand(ins.A)
			matched := false
			if v.Kind() == value.KindObject {
				if keys, kok := m.u.Pools.ObjectKeysAt(ins.B); kok {
					matched = true
					obj := v.AsObject()
					for _, k := range keys {
						if _, has := obj.Get(k); !has {
							matched = false
							break
						}
					}
				}
			}
			m.setOperand(ins.Out, value.Bool(matched))
			m.ip = nextIP

		// --- strings ------------------------------------------------

		case unit.OpStringConcat:
			a, b := m.take(ins.A), m.take(ins.B)
			sa, err := m.stringOf(a)
			value.Drop(a)
			if err != nil {
				value.Drop(b)
				return runOutcome{err: err}
			}
			sb, err := m.stringOf(b)
			value.Drop(b)
			if err != nil {
				return runOutcome{err: err}
			}
			m.setOperand(ins.Out, value.NewString(sa+sb))
			m.ip = nextIP

		case unit.OpFormat:
			v := m.take(ins.A)
			spec := m.operand(ins.B)
			s, err := m.format(v, spec)
			value.Drop(v)
			if err != nil {
				return runOutcome{err: err}
			}
			m.setOperand(ins.Out, value.NewString(s))
			m.ip = nextIP

		// --- coroutine -------------------------------------------------

		case unit.OpYield:
			v := m.take(ins.A)
			m.pendingOut = m.resolveOut(ins.Out)
			m.ip = nextIP
			return runOutcome{kind: outcomeYield, value: v}

		// --- try ---------------------------------------------------------

		case unit.OpTry:
			v := m.take(ins.A)
			inner, propagate, tok, err := m.tryUnwrap(v)
			if err != nil {
				return runOutcome{err: err}
			}
			if tok {
				m.setOperand(ins.Out, inner)
				m.ip = nextIP
			} else {
				res, done := m.popFrame(propagate)
				if done {
					return runOutcome{kind: outcomeReturn, value: res}
				}
			}

		default:
			return runOutcome{err: errors.Errorf("unimplemented opcode %s", ins.Op)}
		}
	}
}

func arithCode(op unit.Opcode) int32 {
	switch op {
	case unit.OpAdd:
		return 0
	case unit.OpSub:
		return 1
	case unit.OpMul:
		return 2
	case unit.OpDiv:
		return 3
	case unit.OpRem:
		return 4
	default:
		return -1
	}
}

func bitwiseCode(op unit.Opcode) int32 {
	switch op {
	case unit.OpBitAnd:
		return 0
	case unit.OpBitOr:
		return 1
	case unit.OpBitXor:
		return 2
	default:
		return -1
	}
}
