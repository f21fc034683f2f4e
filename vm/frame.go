package vm

// Frame is the record saved on a call, per spec.md §4.4.1 GLOSSARY
// ("Frame"): return IP, base address into the shared stack, an
// isolation flag, and where the callee's result should land in the
// caller's window. Isolated frames mark entry points installed by the
// host (vm.Execute/vm.Call); popping one signals execution completion
// rather than resuming a caller.
type Frame struct {
	ReturnIP  int
	CallerTop int
	Base      int
	Isolated  bool
	Out       int32
}
