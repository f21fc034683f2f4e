package value

import "github.com/vellum-lang/vellum/vmerr"

// borrowState is the per-any-object borrow counter described in
// spec.md §3/§4.1 and grounded on original_source's any.rs: a single
// counter distinguishing idle (0), N shared holders (>0), or one
// exclusive holder (-1). Violations are recoverable BorrowConflict
// errors, never undefined behavior.
type borrowState struct {
	n int32
}

// Guard holds a borrow until its Release method is called. Release is
// explicit: nothing releases a Guard automatically, and package vm
// itself takes no borrows, so a caller that takes one is the one that
// releases it (typically with a deferred Release).
type Guard struct {
	state     *borrowState
	exclusive bool
	released  bool
}

// Release ends the borrow. Idempotent: releasing twice is a no-op so a
// deferred Release composes safely with an explicit early release.
func (g *Guard) Release() {
	if g == nil || g.released {
		return
	}
	g.released = true
	if g.exclusive {
		g.state.n = 0
	} else {
		g.state.n--
	}
}

// BorrowShared takes a shared borrow on an any-object Value. Multiple
// shared borrows may coexist; it fails if an exclusive borrow is held.
func BorrowShared(v Value) (*Guard, error) {
	if v.kind != KindAnyObject {
		return nil, nil
	}
	st := v.cell.borrow
	if st.n < 0 {
		return nil, vmerr.BorrowConflict{Type: typeNameOf(v), Want: "shared"}
	}
	st.n++
	return &Guard{state: st, exclusive: false}, nil
}

// BorrowExclusive takes an exclusive borrow on an any-object Value. It
// fails if any borrow, shared or exclusive, is already held.
func BorrowExclusive(v Value) (*Guard, error) {
	if v.kind != KindAnyObject {
		return nil, nil
	}
	st := v.cell.borrow
	if st.n != 0 {
		return nil, vmerr.BorrowConflict{Type: typeNameOf(v), Want: "exclusive"}
	}
	st.n = -1
	return &Guard{state: st, exclusive: true}, nil
}

func typeNameOf(v Value) string {
	if v.kind != KindAnyObject {
		return v.kind.String()
	}
	h, _ := v.AsAnyObject()
	return h.String()
}

// String renders a Hash for error messages; the registry (package vm's
// Context) is the authority for human type names, so this is a fallback.
func (h Hash) String() string { return "0x" + hex(uint64(h)) }

func hex(n uint64) string {
	const digits = "0123456789abcdef"
	if n == 0 {
		return "0"
	}
	var buf [16]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = digits[n&0xf]
		n >>= 4
	}
	return string(buf[i:])
}
