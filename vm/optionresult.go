package vm

import (
	"github.com/pkg/errors"

	"github.com/vellum-lang/vellum/value"
)

// Option/Result propagation (spec.md §4.4.2 "Try") has no dedicated
// value.Kind of its own: this VM models both as an ordinary KindDynamic
// instance carrying a conventional RTTI.Name ("Some"/"None"/"Ok"/"Err")
// and the payload, if any, in Fields[0] — the identical shape a script-
// defined enum variant produces, so host code, script code, and IterNext
// (which returns one of these) all observe one representation.
var (
	someRTTI = &value.RTTI{Name: "Some", Kind: value.TypeTupleStruct}
	noneRTTI = &value.RTTI{Name: "None", Kind: value.TypeUnitStruct}
	okRTTI   = &value.RTTI{Name: "Ok", Kind: value.TypeTupleStruct}
	errRTTI  = &value.RTTI{Name: "Err", Kind: value.TypeTupleStruct}
)

func someOf(v value.Value) value.Value { return value.Dynamic(someRTTI, []value.Value{v}) }
func noneOf() value.Value              { return value.Dynamic(noneRTTI, nil) }
func okOf(v value.Value) value.Value   { return value.Dynamic(okRTTI, []value.Value{v}) }
func errOf(v value.Value) value.Value  { return value.Dynamic(errRTTI, []value.Value{v}) }

// tryUnwrap implements the `?`-propagation rule for OpTry, following
// spec.md §4.4.4's built-in-rule-then-protocol-lookup dispatch order:
// the conventional Ok/Some/Err/None shape is checked first (the built-in
// rule), and only when v isn't one of those is a unit- or
// context-registered TRY protocol implementation consulted. ok is true
// and inner holds the unwrapped payload for an Ok/Some; ok is false and
// propagate holds the exact value OpTry's caller must return (mirroring
// an explicit Return) for an Err/None. A TRY implementation is expected
// to return one of the conventional Ok/Some/Err/None shapes in turn, so
// its result is recursively unwrapped the same way. err is a dispatch
// error when v is not one of these conventional shapes and no TRY
// protocol implementation is registered for its type either.
func (m *Instance) tryUnwrap(v value.Value) (inner value.Value, propagate value.Value, ok bool, err error) {
	if v.Kind() == value.KindDynamic {
		d := v.AsDynamic()
		switch d.RTTI.Name {
		case "Ok", "Some":
			if len(d.Fields) == 0 {
				inner = value.Unit()
			} else {
				inner = d.Fields[0]
				d.Fields[0] = value.Value{}
			}
			value.Drop(v)
			return inner, value.Value{}, true, nil
		case "Err", "None":
			return value.Value{}, v, false, nil
		}
	}
	if target, found := m.resolveProtocol(v.TypeHashOf(), ProtoTry); found {
		res, perr := m.invokeProtocol(target, []value.Value{v})
		if perr != nil {
			return value.Value{}, value.Value{}, false, perr
		}
		return m.tryUnwrap(res)
	}
	value.Drop(v)
	return value.Value{}, value.Value{}, false, errors.Errorf("%s does not implement TRY", v.Kind())
}
