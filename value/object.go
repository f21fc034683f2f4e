package value

import "github.com/vellum-lang/vellum/vmerr"

// Object is an insertion-ordered string-keyed map, the VM's `object`
// literal container (spec.md §4.1). Insertion order is preserved across
// Set of an existing key (Rust/Python dict semantics: first insertion
// position sticks, value updates in place).
type Object struct {
	keys   []string
	index  map[string]int
	values []Value
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{index: make(map[string]int)}
}

// Len returns the number of entries.
func (o *Object) Len() int { return len(o.keys) }

// Get looks up a key.
func (o *Object) Get(key string) (Value, bool) {
	i, ok := o.index[key]
	if !ok {
		return Value{}, false
	}
	return o.values[i], true
}

// Set inserts or updates a key, dropping any previous value at that key.
func (o *Object) Set(key string, v Value) {
	if i, ok := o.index[key]; ok {
		Drop(o.values[i])
		o.values[i] = v
		return
	}
	o.index[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.values = append(o.values, v)
}

// Remove deletes a key if present, dropping its value and preserving
// the relative order of the remaining keys.
func (o *Object) Remove(key string) bool {
	i, ok := o.index[key]
	if !ok {
		return false
	}
	Drop(o.values[i])
	o.keys = append(o.keys[:i], o.keys[i+1:]...)
	o.values = append(o.values[:i], o.values[i+1:]...)
	delete(o.index, key)
	for k, idx := range o.index {
		if idx > i {
			o.index[k] = idx - 1
		}
	}
	return true
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string { return o.keys }

// MustGet returns the value at key or an ObjectIndexMissing error.
func (o *Object) MustGet(key string) (Value, error) {
	v, ok := o.Get(key)
	if !ok {
		return Value{}, vmerr.ObjectIndexMissing{Key: key}
	}
	return v, nil
}

// Clone performs a deep-handle clone.
func (o *Object) Clone() *Object {
	no := &Object{
		keys:   append([]string(nil), o.keys...),
		index:  make(map[string]int, len(o.index)),
		values: make([]Value, len(o.values)),
	}
	for k, v := range o.index {
		no.index[k] = v
	}
	for i, v := range o.values {
		no.values[i] = v.Clone()
	}
	return no
}

func (o *Object) dropAll() {
	for _, v := range o.values {
		Drop(v)
	}
	o.keys, o.index, o.values = nil, nil, nil
}
