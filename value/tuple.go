package value

import "github.com/vellum-lang/vellum/vmerr"

// Tuple is a fixed-length owned sequence of Values.
type Tuple []Value

// Get returns the element at index i.
func (t Tuple) Get(i int) (Value, error) {
	if i < 0 || i >= len(t) {
		return Value{}, vmerr.OutOfRangeIndex{Index: i, Len: len(t)}
	}
	return t[i], nil
}

// Set replaces the element at index i, dropping the previous occupant.
func (t Tuple) Set(i int, v Value) error {
	if i < 0 || i >= len(t) {
		return vmerr.OutOfRangeIndex{Index: i, Len: len(t)}
	}
	Drop(t[i])
	t[i] = v
	return nil
}

// Clone performs a deep-handle clone.
func (t Tuple) Clone() Tuple {
	nt := make(Tuple, len(t))
	for i, v := range t {
		nt[i] = v.Clone()
	}
	return nt
}
