package value

import "github.com/vellum-lang/vellum/vmerr"

// Vec is a growable sequence of Values with O(1) amortized push/pop and
// index access, an amortized-growth stack discipline generalized to a
// standalone container type.
type Vec struct {
	items []Value
}

// NewVecFromSlice builds a Vec taking ownership of items (no clone).
func NewVecFromSlice(items []Value) *Vec { return &Vec{items: items} }

// Len returns the number of elements.
func (v *Vec) Len() int { return len(v.items) }

// Push appends a value.
func (v *Vec) Push(x Value) { v.items = append(v.items, x) }

// Pop removes and returns the last value. ok is false on an empty Vec.
func (v *Vec) Pop() (x Value, ok bool) {
	if len(v.items) == 0 {
		return Value{}, false
	}
	n := len(v.items) - 1
	x = v.items[n]
	v.items = v.items[:n]
	return x, true
}

// Get returns the element at index i.
func (v *Vec) Get(i int) (Value, error) {
	if i < 0 || i >= len(v.items) {
		return Value{}, vmerr.OutOfRangeIndex{Index: i, Len: len(v.items)}
	}
	return v.items[i], nil
}

// Set replaces the element at index i, dropping the value it replaces.
func (v *Vec) Set(i int, x Value) error {
	if i < 0 || i >= len(v.items) {
		return vmerr.OutOfRangeIndex{Index: i, Len: len(v.items)}
	}
	Drop(v.items[i])
	v.items[i] = x
	return nil
}

// Slice returns the backing slice for iteration. Callers must not retain
// it across a mutation of the Vec.
func (v *Vec) Slice() []Value { return v.items }

// Clone performs a deep-handle clone: a new Vec with cloned element
// handles (refcounts bumped, payloads shared).
func (v *Vec) Clone() *Vec {
	items := make([]Value, len(v.items))
	for i, x := range v.items {
		items[i] = x.Clone()
	}
	return &Vec{items: items}
}

func (v *Vec) dropAll() {
	for _, x := range v.items {
		Drop(x)
	}
	v.items = nil
}

// BinarySearch implements spec.md §8 invariant 5: on a Vec sorted by
// cmp, returns (i, true) when items[i] == x, or (i, false) where i is
// the insertion point that preserves sort order.
func (v *Vec) BinarySearch(x Value, cmp func(a, b Value) Ordering) (int, bool) {
	lo, hi := 0, len(v.items)
	for lo < hi {
		mid := (lo + hi) / 2
		switch cmp(v.items[mid], x) {
		case Less:
			lo = mid + 1
		case Greater:
			hi = mid
		default:
			return mid, true
		}
	}
	return lo, false
}

// PartitionPoint returns the index of the first element for which pred
// returns false, assuming items is partitioned by pred.
func (v *Vec) PartitionPoint(pred func(Value) bool) int {
	lo, hi := 0, len(v.items)
	for lo < hi {
		mid := (lo + hi) / 2
		if pred(v.items[mid]) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
