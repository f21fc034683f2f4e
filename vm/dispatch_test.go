package vm_test

import (
	"testing"

	"github.com/vellum-lang/vellum/unit"
	"github.com/vellum-lang/vellum/value"
	"github.com/vellum-lang/vellum/vm"
)

// buildUnit assembles a single-function Unit out of raw instructions,
// the hand-built equivalent of what compile.Build would emit for a
// one-function script, for exercising the VM without a working
// compiler pipeline.
func buildUnit(arity int, ins ...unit.Instruction) *unit.Unit {
	u := unit.New()
	u.Instructions = ins
	u.Functions[1] = &unit.FuncEntry{
		Kind: unit.FuncOffset,
		Offset: unit.OffsetFunc{
			EntryIP: 0,
			Conv:    unit.ConvImmediate,
			Arity:   arity,
		},
		Name: "main",
	}
	u.EntryPoints["main"] = 1
	return u
}

func mustCtx(t *testing.T) *vm.Context {
	t.Helper()
	ctx, err := vm.NewContext()
	if err != nil {
		t.Fatal(err)
	}
	return ctx
}

func TestCall_Add(t *testing.T) {
	// main(a, b) { return a + b }
	u := buildUnit(2,
		unit.Instruction{Op: unit.OpAdd, A: 0, B: 1, Out: 2},
		unit.Instruction{Op: unit.OpReturn, A: 2},
	)
	ctx := mustCtx(t)
	res, err := vm.Call(u, ctx, "main", []value.Value{value.Int(2), value.Int(3)})
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind() != value.KindInt || res.AsInt() != 5 {
		t.Fatalf("got %v, want Int(5)", res)
	}
}

func TestCall_AddOverflow(t *testing.T) {
	u := buildUnit(2,
		unit.Instruction{Op: unit.OpAdd, A: 0, B: 1, Out: 2},
		unit.Instruction{Op: unit.OpReturn, A: 2},
	)
	ctx := mustCtx(t)
	_, err := vm.Call(u, ctx, "main", []value.Value{
		value.Int(9223372036854775807), value.Int(1),
	})
	if err == nil {
		t.Fatal("expected an IntegerOverflow error")
	}
}

func TestCall_JumpIfNot(t *testing.T) {
	// main(cond) { if cond { return 1 } return 0 }
	u := buildUnit(1,
		unit.Instruction{Op: unit.OpJumpIfNot, A: 3, B: 0},
		unit.Instruction{Op: unit.OpStoreImm, Imm: value.Int(1), Out: 1},
		unit.Instruction{Op: unit.OpReturn, A: 1},
		unit.Instruction{Op: unit.OpStoreImm, Imm: value.Int(0), Out: 1},
		unit.Instruction{Op: unit.OpReturn, A: 1},
	)
	ctx := mustCtx(t)
	res, err := vm.Call(u, ctx, "main", []value.Value{value.Bool(true)})
	if err != nil {
		t.Fatal(err)
	}
	if res.AsInt() != 1 {
		t.Fatalf("true branch: got %v, want 1", res)
	}
	res, err = vm.Call(u, ctx, "main", []value.Value{value.Bool(false)})
	if err != nil {
		t.Fatal(err)
	}
	if res.AsInt() != 0 {
		t.Fatalf("false branch: got %v, want 0", res)
	}
}

func TestCall_NestedCall(t *testing.T) {
	// callee(x) { return x * 2 } at ip 0-2
	// main(x) { return callee(x) + 1 } at ip 3-7
	u := unit.New()
	calleeHash := value.Hash(42)
	u.Functions[calleeHash] = &unit.FuncEntry{
		Kind:   unit.FuncOffset,
		Offset: unit.OffsetFunc{EntryIP: 0, Conv: unit.ConvImmediate, Arity: 1},
		Name:   "callee",
	}
	u.Functions[1] = &unit.FuncEntry{
		Kind:   unit.FuncOffset,
		Offset: unit.OffsetFunc{EntryIP: 3, Conv: unit.ConvImmediate, Arity: 1},
		Name:   "main",
	}
	u.EntryPoints["main"] = 1
	u.Instructions = []unit.Instruction{
		{Op: unit.OpStoreImm, Imm: value.Int(2), Out: 1},
		{Op: unit.OpMul, A: 0, B: 1, Out: 2},
		{Op: unit.OpReturn, A: 2},
		{Op: unit.OpCopy, A: 0, Out: 1},
		{Op: unit.OpCall, Imm: value.TypeHashValue(calleeHash), A: 1, B: 1, Out: 2},
		{Op: unit.OpStoreImm, Imm: value.Int(1), Out: 3},
		{Op: unit.OpAdd, A: 2, B: 3, Out: 4},
		{Op: unit.OpReturn, A: 4},
	}

	ctx := mustCtx(t)
	res, err := vm.Call(u, ctx, "main", []value.Value{value.Int(10)})
	if err != nil {
		t.Fatal(err)
	}
	if res.AsInt() != 21 {
		t.Fatalf("got %v, want 21", res)
	}
}

func TestCall_ProtocolDispatchNative(t *testing.T) {
	// main(a, b) { return a + b }, where a/b are AnyObject handles and
	// ADD is supplied by a host native, exercising resolveProtocol's
	// fallback to the Context (spec.md §4.4.4 step 2).
	pointPath := "test::Point"
	ctx, err := vm.NewContext(
		vm.RegisterAssociatedFunction(pointPath, vm.ProtoAdd, func(m *vm.Instance, args []value.Value) (value.Value, error) {
			_, ap := args[0].AsAnyObject()
			_, bp := args[1].AsAnyObject()
			return value.AnyObject(vm.TypeHashOfPath(pointPath), ap.(int)+bp.(int)), nil
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	u := buildUnit(2,
		unit.Instruction{Op: unit.OpAdd, A: 0, B: 1, Out: 2},
		unit.Instruction{Op: unit.OpReturn, A: 2},
	)
	pointHash := vm.TypeHashOfPath(pointPath)
	a := value.AnyObject(pointHash, 3)
	b := value.AnyObject(pointHash, 4)
	res, err := vm.Call(u, ctx, "main", []value.Value{a, b})
	if err != nil {
		t.Fatal(err)
	}
	_, payload := res.AsAnyObject()
	if payload.(int) != 7 {
		t.Fatalf("got %v, want 7", payload)
	}
}

func TestExecute_YieldResume(t *testing.T) {
	// A generator body: yield 1; yield 2; return 3.
	u := unit.New()
	genHash := value.Hash(7)
	u.Functions[genHash] = &unit.FuncEntry{
		Kind:   unit.FuncOffset,
		Offset: unit.OffsetFunc{EntryIP: 0, Conv: unit.ConvGenerator, Arity: 0},
		Name:   "gen",
	}
	u.EntryPoints["gen"] = uint64(genHash)
	u.Instructions = []unit.Instruction{
		{Op: unit.OpStoreImm, Imm: value.Int(1), Out: 0},
		{Op: unit.OpYield, A: 0, Out: unit.Discard},
		{Op: unit.OpStoreImm, Imm: value.Int(2), Out: 0},
		{Op: unit.OpYield, A: 0, Out: unit.Discard},
		{Op: unit.OpStoreImm, Imm: value.Int(3), Out: 0},
		{Op: unit.OpReturn, A: 0},
	}
	ctx := mustCtx(t)
	exec, err := vm.Execute(u, ctx, "gen", nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := exec.Resume(value.Unit())
	if err != nil {
		t.Fatal(err)
	}
	if !out.Yielded || out.Value.AsInt() != 1 {
		t.Fatalf("step 1: got %+v", out)
	}
	out, err = exec.Resume(value.Unit())
	if err != nil {
		t.Fatal(err)
	}
	if !out.Yielded || out.Value.AsInt() != 2 {
		t.Fatalf("step 2: got %+v", out)
	}
	out, err = exec.Resume(value.Unit())
	if err != nil {
		t.Fatal(err)
	}
	if !out.Complete || out.Value.AsInt() != 3 {
		t.Fatalf("step 3: got %+v", out)
	}
}

func TestCall_BudgetExhausted(t *testing.T) {
	u := buildUnit(0,
		unit.Instruction{Op: unit.OpJump, A: 0},
	)
	ctx := mustCtx(t)
	_, err := vm.Call(u, ctx, "main", nil, vm.WithBudget(5))
	if err == nil {
		t.Fatal("expected a BudgetExhausted error")
	}
}

func TestCall_VecIndex(t *testing.T) {
	// main(v, i) { return v[i] }
	u := buildUnit(2,
		unit.Instruction{Op: unit.OpIndexGet, A: 0, B: 1, Out: 2},
		unit.Instruction{Op: unit.OpReturn, A: 2},
	)
	ctx := mustCtx(t)
	vec := value.VecValue(value.NewVecFromSlice([]value.Value{value.Int(10), value.Int(20), value.Int(30)}))
	res, err := vm.Call(u, ctx, "main", []value.Value{vec, value.Int(1)})
	if err != nil {
		t.Fatal(err)
	}
	if res.AsInt() != 20 {
		t.Fatalf("got %v, want 20", res)
	}
}

func eqUnit() *unit.Unit {
	return buildUnit(2,
		unit.Instruction{Op: unit.OpEq, A: 0, B: 1, Out: 2},
		unit.Instruction{Op: unit.OpReturn, A: 2},
	)
}

func TestCall_VecEq(t *testing.T) {
	ctx := mustCtx(t)
	a := value.VecValue(value.NewVecFromSlice([]value.Value{value.Int(1), value.Int(2), value.Int(3)}))
	b := value.VecValue(value.NewVecFromSlice([]value.Value{value.Int(1), value.Int(2), value.Int(3)}))
	res, err := vm.Call(eqUnit(), ctx, "main", []value.Value{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if !res.AsBool() {
		t.Fatalf("got %v, want true", res)
	}

	c := value.VecValue(value.NewVecFromSlice([]value.Value{value.Int(1), value.Int(2), value.Int(3)}))
	d := value.VecValue(value.NewVecFromSlice([]value.Value{value.Int(1), value.Int(2), value.Int(4)}))
	res, err = vm.Call(eqUnit(), ctx, "main", []value.Value{c, d})
	if err != nil {
		t.Fatal(err)
	}
	if res.AsBool() {
		t.Fatalf("got %v, want false", res)
	}
}

func TestCall_DequeEqAfterRotation(t *testing.T) {
	// A deque holding 0..9 rotated left by 3 equals a deque built from
	// the literal [3,4,5,6,7,8,9,0,1,2] by partial_eq.
	items := make([]value.Value, 10)
	for i := range items {
		items[i] = value.Int(int64(i))
	}
	d := value.NewDequeFromSlice(items)
	d.RotateLeft(3)

	want := []int64{3, 4, 5, 6, 7, 8, 9, 0, 1, 2}
	wantItems := make([]value.Value, len(want))
	for i, n := range want {
		wantItems[i] = value.Int(n)
	}
	wantDeque := value.NewDequeFromSlice(wantItems)

	ctx := mustCtx(t)
	res, err := vm.Call(eqUnit(), ctx, "main", []value.Value{value.DequeValue(d), value.DequeValue(wantDeque)})
	if err != nil {
		t.Fatal(err)
	}
	if !res.AsBool() {
		t.Fatalf("got %v, want true", res)
	}
}

func TestCall_TupleEq(t *testing.T) {
	ctx := mustCtx(t)
	a := value.TupleValue(value.Tuple{value.Int(1), value.Bool(true)})
	b := value.TupleValue(value.Tuple{value.Int(1), value.Bool(true)})
	res, err := vm.Call(eqUnit(), ctx, "main", []value.Value{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if !res.AsBool() {
		t.Fatalf("got %v, want true", res)
	}
}

func TestCall_ObjectEqOrderIndependent(t *testing.T) {
	a := value.NewObject()
	a.Set("x", value.Int(1))
	a.Set("y", value.Int(2))
	b := value.NewObject()
	b.Set("y", value.Int(2))
	b.Set("x", value.Int(1))

	ctx := mustCtx(t)
	res, err := vm.Call(eqUnit(), ctx, "main", []value.Value{value.ObjectValue(a), value.ObjectValue(b)})
	if err != nil {
		t.Fatal(err)
	}
	if !res.AsBool() {
		t.Fatalf("got %v, want true", res)
	}
}

func TestCall_VecLessLexicographic(t *testing.T) {
	u := buildUnit(2,
		unit.Instruction{Op: unit.OpLt, A: 0, B: 1, Out: 2},
		unit.Instruction{Op: unit.OpReturn, A: 2},
	)
	ctx := mustCtx(t)
	a := value.VecValue(value.NewVecFromSlice([]value.Value{value.Int(1), value.Int(2)}))
	b := value.VecValue(value.NewVecFromSlice([]value.Value{value.Int(1), value.Int(2), value.Int(0)}))
	res, err := vm.Call(u, ctx, "main", []value.Value{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if !res.AsBool() {
		t.Fatalf("got %v, want true (shorter prefix is Less)", res)
	}
}

func TestCall_TryProtocolDispatch(t *testing.T) {
	// main(v) { return v? } where v is an AnyObject whose TRY
	// implementation is supplied by a host native (spec.md §4.4.4 step
	// 2), exercising resolveProtocol's fallback for OpTry.
	boxPath := "test::Box"
	boxHash := vm.TypeHashOfPath(boxPath)
	ctx, err := vm.NewContext(
		vm.RegisterAssociatedFunction(boxPath, vm.ProtoTry, func(m *vm.Instance, args []value.Value) (value.Value, error) {
			_, payload := args[0].AsAnyObject()
			return value.Dynamic(&value.RTTI{Name: "Ok", Kind: value.TypeTupleStruct}, []value.Value{value.Int(int64(payload.(int)))}), nil
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	u := buildUnit(1,
		unit.Instruction{Op: unit.OpTry, A: 0, Out: 1},
		unit.Instruction{Op: unit.OpReturn, A: 1},
	)
	boxed := value.AnyObject(boxHash, 9)
	res, err := vm.Call(u, ctx, "main", []value.Value{boxed})
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind() != value.KindInt || res.AsInt() != 9 {
		t.Fatalf("got %v, want Int(9)", res)
	}
}
