package vm

import (
	"github.com/pkg/errors"

	"github.com/vellum-lang/vellum/value"
	"github.com/vellum-lang/vellum/vmerr"
)

// stringOf resolves a string-shaped value — an owned KindString or a
// KindStringSlot referencing this instance's unit — to a Go string, the
// common ground StringConcat/Format/EqString all need regardless of
// which of the two string representations a particular operand is.
func (m *Instance) stringOf(v value.Value) (string, error) {
	switch v.Kind() {
	case value.KindStringSlot:
		s, ok := m.u.Pools.String(v.Slot())
		if !ok {
			return "", errors.WithStack(vmerr.MissingStaticSlot{Pool: "strings", Slot: int(v.Slot())})
		}
		return s, nil
	case value.KindString:
		return v.AsString(), nil
	default:
		return "", errors.Errorf("%s is not a string", v.Kind())
	}
}

// bytesOf resolves a byte-string-shaped value to its []byte payload.
func (m *Instance) bytesOf(v value.Value) ([]byte, error) {
	if v.Kind() != value.KindBytesSlot {
		return nil, errors.Errorf("%s is not a byte string", v.Kind())
	}
	b, ok := m.u.Pools.Bytes(v.Slot())
	if !ok {
		return nil, errors.WithStack(vmerr.MissingStaticSlot{Pool: "bytes", Slot: int(v.Slot())})
	}
	return b, nil
}
