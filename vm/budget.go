package vm

// Budget is a decrementing instruction counter bounding how much work a
// Run/Resume call may perform before yielding control back to the host
// with a resumable Halt::Limited outcome (spec.md §4.4.7), grounded on
// original_source/crates/rune/src/runtime/budget.rs's stackable
// replace/restore guard. Go has no thread-local storage (the Rust
// original keys the budget off a thread-local), so here the budget is
// simply a field on the *Instance that owns the stack being run —
// the same shape an instruction counter field takes elsewhere, just
// writable and decrementing instead of read-only and counting up.
type Budget struct {
	remaining int64
	unlimited bool
}

// NoLimit returns a Budget that never runs out.
func NoLimit() Budget { return Budget{unlimited: true} }

// NewBudget returns a Budget with n instructions remaining.
func NewBudget(n int64) Budget { return Budget{remaining: n} }

// spend reports whether the budget is already exhausted (in which case
// the caller must not execute another instruction) and otherwise
// consumes one unit.
func (b *Budget) spend() (exhausted bool) {
	if b.unlimited {
		return false
	}
	if b.remaining <= 0 {
		return true
	}
	b.remaining--
	return false
}

// Remaining reports how many instructions may still run (0 for an
// already-exhausted limited budget; meaningless for an unlimited one).
func (b Budget) Remaining() int64 { return b.remaining }

// WithBudget installs a new budget on m for the duration of the
// returned restore closure's lifetime — the "stackable guard" of
// spec.md §4.4.7: call restore() to put the previous budget back,
// typically via `defer`.
func (m *Instance) WithBudget(n int64) (restore func()) {
	prev := m.budget
	m.budget = NewBudget(n)
	return func() { m.budget = prev }
}
