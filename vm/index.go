package vm

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/vellum-lang/vellum/value"
	"github.com/vellum-lang/vellum/vmerr"
)

// scalarIndex reads an integer index operand (Int or Uint) as an int.
func scalarIndex(v value.Value) (int, bool) {
	switch v.Kind() {
	case value.KindInt:
		return int(v.AsInt()), true
	case value.KindUint:
		return int(v.AsUint()), true
	default:
		return 0, false
	}
}

// indexGet implements IndexGet: a[i] for Vec/Deque/Object built-in
// containers, falling back to the INDEX_GET protocol for anything else
// (spec.md §4.4.4).
func (m *Instance) indexGet(targetRel, indexRel int32) (value.Value, error) {
	target := m.operand(targetRel)
	idx := m.take(indexRel)
	switch target.Kind() {
	case value.KindVec:
		if i, ok := scalarIndex(idx); ok {
			v, err := target.AsVec().Get(i)
			if err != nil {
				return value.Value{}, err
			}
			return v.Clone(), nil
		}
	case value.KindDeque:
		if i, ok := scalarIndex(idx); ok {
			v, err := target.AsDeque().Get(i)
			if err != nil {
				return value.Value{}, err
			}
			return v.Clone(), nil
		}
	case value.KindObject:
		if key, err := m.stringOf(idx); err == nil {
			defer value.Drop(idx)
			v, err := target.AsObject().MustGet(key)
			if err != nil {
				return value.Value{}, err
			}
			return v.Clone(), nil
		}
	}
	if tgt, ok := m.resolveProtocol(target.TypeHashOf(), ProtoIndexGet); ok {
		return m.invokeProtocol(tgt, []value.Value{target.Clone(), idx})
	}
	value.Drop(idx)
	return value.Value{}, errors.WithStack(vmerr.UnsupportedIndexGet{Target: target.Kind().String()})
}

// indexSet implements IndexSet: a[i] = v for Vec/Deque/Object, falling
// back to INDEX_SET.
func (m *Instance) indexSet(targetRel, indexRel, valueRel int32) error {
	target := m.operand(targetRel)
	idx := m.take(indexRel)
	val := m.take(valueRel)
	switch target.Kind() {
	case value.KindVec:
		if i, ok := scalarIndex(idx); ok {
			return target.AsVec().Set(i, val)
		}
	case value.KindDeque:
		if i, ok := scalarIndex(idx); ok {
			return target.AsDeque().Set(i, val)
		}
	case value.KindObject:
		if key, err := m.stringOf(idx); err == nil {
			value.Drop(idx)
			target.AsObject().Set(key, val)
			return nil
		}
	}
	if tgt, ok := m.resolveProtocol(target.TypeHashOf(), ProtoIndexSet); ok {
		res, err := m.invokeProtocol(tgt, []value.Value{target.Clone(), idx, val})
		value.Drop(res)
		return err
	}
	value.Drop(idx)
	value.Drop(val)
	return errors.WithStack(vmerr.UnsupportedIndexSet{Target: target.Kind().String()})
}

// tupleIndexGet implements TupleIndexGet: a.N for a tuple or tuple
// struct, where N (field) is a compile-time constant, not a stack
// address.
func (m *Instance) tupleIndexGet(targetRel int32, field int32) (value.Value, error) {
	target := m.operand(targetRel)
	switch target.Kind() {
	case value.KindTuple:
		v, err := target.AsTuple().Get(int(field))
		if err != nil {
			return value.Value{}, err
		}
		return v.Clone(), nil
	case value.KindDynamic:
		d := target.AsDynamic()
		if int(field) < 0 || int(field) >= len(d.Fields) {
			return value.Value{}, errors.WithStack(vmerr.MissingField{Type: d.RTTI.Name, Field: fieldName(field)})
		}
		return d.Fields[field].Clone(), nil
	default:
		return value.Value{}, errors.WithStack(vmerr.UnsupportedIndexGet{Target: target.Kind().String()})
	}
}

// tupleIndexSet implements TupleIndexSet: a.N = v.
func (m *Instance) tupleIndexSet(targetRel int32, field int32, valueRel int32) error {
	target := m.operand(targetRel)
	val := m.take(valueRel)
	switch target.Kind() {
	case value.KindTuple:
		return target.AsTuple().Set(int(field), val)
	case value.KindDynamic:
		d := target.AsDynamic()
		if int(field) < 0 || int(field) >= len(d.Fields) {
			value.Drop(val)
			return errors.WithStack(vmerr.MissingField{Type: d.RTTI.Name, Field: fieldName(field)})
		}
		value.Drop(d.Fields[field])
		d.Fields[field] = val
		return nil
	default:
		value.Drop(val)
		return errors.WithStack(vmerr.UnsupportedIndexSet{Target: target.Kind().String()})
	}
}

// objectIndexGet implements ObjectIndexGet: a.name for an object
// literal or a named-field struct, where nameSlot is the compiled
// field-name's interned string-pool slot.
func (m *Instance) objectIndexGet(targetRel int32, nameSlot int32) (value.Value, error) {
	target := m.operand(targetRel)
	name, ok := m.u.Pools.String(nameSlot)
	if !ok {
		return value.Value{}, errors.WithStack(vmerr.MissingStaticSlot{Pool: "strings", Slot: int(nameSlot)})
	}
	switch target.Kind() {
	case value.KindObject:
		v, err := target.AsObject().MustGet(name)
		if err != nil {
			return value.Value{}, err
		}
		return v.Clone(), nil
	case value.KindDynamic:
		d := target.AsDynamic()
		idx := d.RTTI.FieldIndex(name)
		if idx < 0 {
			return value.Value{}, errors.WithStack(vmerr.MissingField{Type: d.RTTI.Name, Field: name})
		}
		return d.Fields[idx].Clone(), nil
	default:
		return value.Value{}, errors.WithStack(vmerr.UnsupportedIndexGet{Target: target.Kind().String()})
	}
}

// objectIndexSet implements ObjectIndexSet: a.name = v.
func (m *Instance) objectIndexSet(targetRel int32, nameSlot int32, valueRel int32) error {
	target := m.operand(targetRel)
	val := m.take(valueRel)
	name, ok := m.u.Pools.String(nameSlot)
	if !ok {
		value.Drop(val)
		return errors.WithStack(vmerr.MissingStaticSlot{Pool: "strings", Slot: int(nameSlot)})
	}
	switch target.Kind() {
	case value.KindObject:
		target.AsObject().Set(name, val)
		return nil
	case value.KindDynamic:
		d := target.AsDynamic()
		idx := d.RTTI.FieldIndex(name)
		if idx < 0 {
			value.Drop(val)
			return errors.WithStack(vmerr.MissingField{Type: d.RTTI.Name, Field: name})
		}
		value.Drop(d.Fields[idx])
		d.Fields[idx] = val
		return nil
	default:
		value.Drop(val)
		return errors.WithStack(vmerr.UnsupportedIndexSet{Target: target.Kind().String()})
	}
}

func fieldName(i int32) string { return strconv.Itoa(int(i)) }
