package vm

import (
	"fmt"
	"strings"

	"github.com/vellum-lang/vellum/value"
)

// FormatSpec is the payload of a KindFormatSpec value (spec.md §4.4.2's
// Format opcode): the minimal formatting directives a literal format
// string's `{...}` placeholder carries — enough for width/fill/
// precision and Display-vs-Debug rendering.
type FormatSpec struct {
	Fill      rune
	Width     int
	Precision int
	HasPrec   bool
	Debug     bool // render via the DEBUG protocol instead of DISPLAY
}

// NewFormatSpec wraps a FormatSpec in a Value for a unit's constant
// pool or an ad-hoc literal built by compiled format-string codegen.
func NewFormatSpec(spec FormatSpec) value.Value { return value.NewFormatSpec(spec) }

// format renders v per spec, implementing the Format opcode.
func (m *Instance) format(v value.Value, specVal value.Value) (string, error) {
	spec, _ := specVal.Payload().(FormatSpec)
	s, err := m.render(v, spec.Debug)
	if err != nil {
		return "", err
	}
	if spec.HasPrec && spec.Precision < len(s) {
		s = s[:spec.Precision]
	}
	if spec.Width > len(s) {
		fill := spec.Fill
		if fill == 0 {
			fill = ' '
		}
		s = strings.Repeat(string(fill), spec.Width-len(s)) + s
	}
	return s, nil
}

// render implements the Display/Debug formatting protocol (spec.md
// §4.4.4): built-in rendering for inline and container shapes, falling
// back to a unit- or context-registered DISPLAY/DEBUG protocol
// implementation for dynamic/any-object receivers.
func (m *Instance) render(v value.Value, debug bool) (string, error) {
	switch v.Kind() {
	case value.KindStringSlot, value.KindString:
		s, err := m.stringOf(v)
		if err != nil {
			return "", err
		}
		if debug {
			return fmt.Sprintf("%q", s), nil
		}
		return s, nil
	case value.KindDynamic, value.KindAnyObject:
		proto := ProtoDisplay
		if debug {
			proto = ProtoDebug
		}
		if target, ok := m.resolveProtocol(v.TypeHashOf(), proto); ok {
			out, err := m.invokeProtocol(target, []value.Value{v.Clone()})
			if err != nil {
				return "", err
			}
			defer value.Drop(out)
			return m.stringOf(out)
		}
		return m.renderContainer(v, debug)
	case value.KindVec, value.KindDeque, value.KindTuple, value.KindObject:
		return m.renderContainer(v, debug)
	default:
		return v.String(), nil
	}
}

func (m *Instance) renderContainer(v value.Value, debug bool) (string, error) {
	switch v.Kind() {
	case value.KindVec:
		return m.renderSeq("[", "]", v.AsVec().Slice())
	case value.KindDeque:
		front, back := v.AsDeque().AsSlices()
		items := append(append([]value.Value{}, front...), back...)
		return m.renderSeq("[", "]", items)
	case value.KindTuple:
		return m.renderSeq("(", ")", v.AsTuple())
	case value.KindObject:
		obj := v.AsObject()
		var b strings.Builder
		b.WriteByte('{')
		for i, k := range obj.Keys() {
			if i > 0 {
				b.WriteString(", ")
			}
			fv, _ := obj.Get(k)
			s, err := m.render(fv, true)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "%s: %s", k, s)
		}
		b.WriteByte('}')
		return b.String(), nil
	case value.KindDynamic:
		d := v.AsDynamic()
		var b strings.Builder
		b.WriteString(d.RTTI.Name)
		if len(d.Fields) > 0 {
			b.WriteByte('(')
			for i, f := range d.Fields {
				if i > 0 {
					b.WriteString(", ")
				}
				s, err := m.render(f, true)
				if err != nil {
					return "", err
				}
				b.WriteString(s)
			}
			b.WriteByte(')')
		}
		return b.String(), nil
	case value.KindAnyObject:
		h, _ := v.AsAnyObject()
		return fmt.Sprintf("<%s>", m.ctx.NameOf(h)), nil
	default:
		return v.String(), nil
	}
}

func (m *Instance) renderSeq(openTok, closeTok string, items []value.Value) (string, error) {
	var b strings.Builder
	b.WriteString(openTok)
	for i, it := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		s, err := m.render(it, true)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	b.WriteString(closeTok)
	return b.String(), nil
}
