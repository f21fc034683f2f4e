package vm

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/vellum-lang/vellum/value"
	"github.com/vellum-lang/vellum/vmerr"
)

// equalValues answers a == b for the Eq/Neq opcodes, consuming both
// operands: the built-in rule (spec.md §4.4.4 step 1) first — inline
// shapes, then the four built-in container shapes compared structurally
// element-by-element (mirroring format.go's render and index.go's
// indexGet/indexSet, which handle these shapes directly rather than
// only through a protocol) — falling through to a unit- or
// context-registered EQ/PARTIAL_EQ protocol implementation only for
// receivers neither of those rules covers (Dynamic/AnyObject).
func (m *Instance) equalValues(a, b value.Value) (bool, error) {
	defer value.Drop(a)
	defer value.Drop(b)
	if eq, ok := value.InlineEq(a, b); ok {
		return eq, nil
	}
	if a.Kind() == b.Kind() {
		switch a.Kind() {
		case value.KindVec:
			return m.equalSeq(a.AsVec().Slice(), b.AsVec().Slice())
		case value.KindDeque:
			return m.equalSeq(dequeItems(a), dequeItems(b))
		case value.KindTuple:
			return m.equalSeq(a.AsTuple(), b.AsTuple())
		case value.KindObject:
			return m.equalObject(a.AsObject(), b.AsObject())
		}
	}
	if a.TypeHashOf() != b.TypeHashOf() {
		return false, nil
	}
	target, ok := m.resolveProtocol(a.TypeHashOf(), ProtoEq)
	if !ok {
		target, ok = m.resolveProtocol(a.TypeHashOf(), ProtoPartialEq)
	}
	if !ok {
		return false, errors.WithStack(vmerr.MissingInstanceFunction{Type: a.Kind().String(), Protocol: "EQ"})
	}
	res, err := m.invokeProtocol(target, []value.Value{a.Clone(), b.Clone()})
	if err != nil {
		return false, err
	}
	defer value.Drop(res)
	return res.AsBool(), nil
}

// equalSeq compares two borrowed element slices pairwise, recursing
// through equalValues so nested containers and nested protocol
// receivers are handled the same way as top-level values. Elements are
// cloned before the recursive call since equalValues consumes its
// operands, while items itself is only borrowed from its owning
// container (the container's own Drop walks and releases it once).
func (m *Instance) equalSeq(a, b []value.Value) (bool, error) {
	if len(a) != len(b) {
		return false, nil
	}
	for i := range a {
		eq, err := m.equalValues(a[i].Clone(), b[i].Clone())
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}
	return true, nil
}

// equalObject compares two objects by key set and per-key value, order
// independent: two objects with the same keys mapped to equal values
// are equal regardless of insertion order.
func (m *Instance) equalObject(a, b *value.Object) (bool, error) {
	if a.Len() != b.Len() {
		return false, nil
	}
	for _, k := range a.Keys() {
		av, _ := a.Get(k)
		bv, ok := b.Get(k)
		if !ok {
			return false, nil
		}
		eq, err := m.equalValues(av.Clone(), bv.Clone())
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}
	return true, nil
}

// compareValues answers a partial-cmp b for the Lt/Le/Gt/Ge opcodes,
// consuming both operands, following the same built-in-then-protocol
// order as equalValues: inline shapes, then the four built-in container
// shapes ordered structurally (lexicographic element-by-element for
// Vec/Deque/Tuple, by sorted key then value for Object), then
// CMP/PARTIAL_CMP.
func (m *Instance) compareValues(a, b value.Value) (value.Ordering, error) {
	defer value.Drop(a)
	defer value.Drop(b)
	if ord, ok, err := value.InlineCmp(a, b); ok || err != nil {
		return ord, err
	}
	if a.Kind() == b.Kind() {
		switch a.Kind() {
		case value.KindVec:
			return m.compareSeq(a.AsVec().Slice(), b.AsVec().Slice())
		case value.KindDeque:
			return m.compareSeq(dequeItems(a), dequeItems(b))
		case value.KindTuple:
			return m.compareSeq(a.AsTuple(), b.AsTuple())
		case value.KindObject:
			return m.compareObject(a.AsObject(), b.AsObject())
		}
	}
	target, ok := m.resolveProtocol(a.TypeHashOf(), ProtoCmp)
	if !ok {
		target, ok = m.resolveProtocol(a.TypeHashOf(), ProtoPartialCmp)
	}
	if !ok {
		return 0, errors.WithStack(vmerr.MissingInstanceFunction{Type: a.Kind().String(), Protocol: "CMP"})
	}
	res, err := m.invokeProtocol(target, []value.Value{a.Clone(), b.Clone()})
	if err != nil {
		return 0, err
	}
	defer value.Drop(res)
	return res.AsOrdering(), nil
}

// compareSeq orders two borrowed element slices lexicographically: the
// first non-equal element decides, and a shorter sequence that is a
// prefix of the other is Less, the same ordering []Value would get
// under a standard lexicographic slice comparison.
func (m *Instance) compareSeq(a, b []value.Value) (value.Ordering, error) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ord, err := m.compareValues(a[i].Clone(), b[i].Clone())
		if err != nil {
			return 0, err
		}
		if ord != value.Equal {
			return ord, nil
		}
	}
	switch {
	case len(a) < len(b):
		return value.Less, nil
	case len(a) > len(b):
		return value.Greater, nil
	default:
		return value.Equal, nil
	}
}

// compareObject orders two objects by their sorted key sets first (a
// missing/extra key decides lexicographically, same as compareSeq over
// the key lists), then by value per shared key in that sorted order.
// Objects have no natural ordering of their own; this gives Vec<Object>
// sorting and binary search a total, deterministic order to rely on.
func (m *Instance) compareObject(a, b *value.Object) (value.Ordering, error) {
	ak, bk := sortedKeys(a), sortedKeys(b)
	n := len(ak)
	if len(bk) < n {
		n = len(bk)
	}
	for i := 0; i < n; i++ {
		switch {
		case ak[i] < bk[i]:
			return value.Less, nil
		case ak[i] > bk[i]:
			return value.Greater, nil
		}
	}
	switch {
	case len(ak) < len(bk):
		return value.Less, nil
	case len(ak) > len(bk):
		return value.Greater, nil
	}
	for _, k := range ak {
		av, _ := a.Get(k)
		bv, _ := b.Get(k)
		ord, err := m.compareValues(av.Clone(), bv.Clone())
		if err != nil {
			return 0, err
		}
		if ord != value.Equal {
			return ord, nil
		}
	}
	return value.Equal, nil
}

func sortedKeys(o *value.Object) []string {
	keys := append([]string{}, o.Keys()...)
	sort.Strings(keys)
	return keys
}

// dequeItems flattens a Deque's two contiguous runs into one borrowed
// slice for element-wise sequence comparison.
func dequeItems(v value.Value) []value.Value {
	front, back := v.AsDeque().AsSlices()
	return append(append([]value.Value{}, front...), back...)
}
