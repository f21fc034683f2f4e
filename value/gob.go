package value

import (
	"bytes"
	"encoding/gob"

	"github.com/pkg/errors"
)

// gobForm is the wire representation of a Value for unit persistence
// (see unit.Encode/Decode). Only inline and interned variants are
// persisted: those are the only shapes that appear in a Unit's constant
// pools (spec.md §4.2) — a compiled constant is never itself a live
// heap-allocated any-object/container, since those only exist once a
// VM is running.
type gobForm struct {
	Kind Kind
	Bits uint64
	Slot int32
}

// GobEncode implements gob.GobEncoder.
func (v Value) GobEncode() ([]byte, error) {
	if v.cell != nil {
		return nil, errors.Errorf("cannot persist a live reference-counted value of kind %s", v.kind)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gobForm{Kind: v.kind, Bits: v.bits, Slot: v.slot}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (v *Value) GobDecode(b []byte) error {
	var gf gobForm
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&gf); err != nil {
		return err
	}
	v.kind, v.bits, v.slot, v.cell = gf.Kind, gf.Bits, gf.Slot, nil
	return nil
}
