package value

// RangeVariant tags which endpoint(s) a Range carries, matching
// spec.md §4.1's range family: a..b, a.., ..b, .., a..=b, ..=b.
// Grounded on original_source/crates/rune/src/runtime/range_to.rs for
// the half-open/closed upper-bound variants, generalized to the full
// family a half-open-range-capable language needs.
type RangeVariant byte

const (
	RangeFull      RangeVariant = iota // ..
	RangeFrom                          // a..
	RangeTo                            // ..b
	RangeToInclusive                   // ..=b
	RangeBounded                       // a..b
	RangeInclusive                     // a..=b
)

// Range is the runtime representation of one range-family value. Start
// and End are only meaningful for variants that carry that endpoint.
type Range struct {
	Variant RangeVariant
	Start   Value
	End     Value
}

// HasStart reports whether this variant carries a lower endpoint.
func (r Range) HasStart() bool {
	return r.Variant == RangeFrom || r.Variant == RangeBounded || r.Variant == RangeInclusive
}

// HasEnd reports whether this variant carries an upper endpoint.
func (r Range) HasEnd() bool {
	return r.Variant == RangeTo || r.Variant == RangeToInclusive ||
		r.Variant == RangeBounded || r.Variant == RangeInclusive
}

// EndInclusive reports whether the upper endpoint (if any) is inclusive.
func (r Range) EndInclusive() bool {
	return r.Variant == RangeToInclusive || r.Variant == RangeInclusive
}

// Contains reports whether v falls within the range, per spec.md §4.1
// ("all expose contains(v) by partial-cmp against endpoint(s)"). cmp is
// supplied by the caller (package vm) since comparison of non-inline
// endpoints may require protocol dispatch.
func Contains(r Range, v Value, cmp func(a, b Value) (Ordering, bool, error)) (bool, error) {
	if r.HasStart() {
		ord, ok, err := cmp(v, r.Start)
		if err != nil {
			return false, err
		}
		if ok && ord == Less {
			return false, nil
		}
	}
	if r.HasEnd() {
		ord, ok, err := cmp(v, r.End)
		if err != nil {
			return false, err
		}
		if ok {
			if r.EndInclusive() {
				if ord == Greater {
					return false, nil
				}
			} else if ord != Less {
				return false, nil
			}
		}
	}
	return true, nil
}

// Clone clones a Range's endpoint handles.
func (r Range) Clone() Range {
	nr := r
	if r.HasStart() {
		nr.Start = r.Start.Clone()
	}
	if r.HasEnd() {
		nr.End = r.End.Clone()
	}
	return nr
}
