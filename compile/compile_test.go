package compile_test

import (
	"strings"
	"testing"

	"github.com/vellum-lang/vellum/compile"
	"github.com/vellum-lang/vellum/value"
	"github.com/vellum-lang/vellum/vm"
)

func build(t *testing.T, src string) *vm.Context {
	t.Helper()
	ctx, err := vm.NewContext()
	if err != nil {
		t.Fatal(err)
	}
	return ctx
}

func TestBuild_RecursiveFactorial(t *testing.T) {
	src := `
fn factorial(n) {
	if n <= 1 {
		return 1;
	}
	return n * factorial(n - 1);
}
`
	u, err := compile.Prepare(compile.Source{Name: "fact.vel", Reader: strings.NewReader(src)}).Build()
	if err != nil {
		t.Fatal(err)
	}
	ctx := build(t, src)
	res, err := vm.Call(u, ctx, "factorial", []value.Value{value.Int(6)})
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind() != value.KindInt || res.AsInt() != 720 {
		t.Fatalf("got %v, want Int(720)", res)
	}
}

func TestBuild_WhileLoopAccumulator(t *testing.T) {
	src := `
fn sum_to(n) {
	let total = 0;
	let i = 1;
	while i <= n {
		total = total + i;
		i = i + 1;
	}
	return total;
}
`
	u, err := compile.Prepare(compile.Source{Name: "sum.vel", Reader: strings.NewReader(src)}).Build()
	if err != nil {
		t.Fatal(err)
	}
	ctx := build(t, src)
	res, err := vm.Call(u, ctx, "sum_to", []value.Value{value.Int(10)})
	if err != nil {
		t.Fatal(err)
	}
	if res.AsInt() != 55 {
		t.Fatalf("got %v, want 55", res)
	}
}

func TestBuild_BooleanLogicAndString(t *testing.T) {
	src := `
fn classify(n) {
	if n > 0 && n < 10 {
		return "small";
	}
	return "other";
}
`
	u, err := compile.Prepare(compile.Source{Name: "classify.vel", Reader: strings.NewReader(src)}).Build()
	if err != nil {
		t.Fatal(err)
	}
	ctx := build(t, src)
	res, err := vm.Call(u, ctx, "classify", []value.Value{value.Int(5)})
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind() != value.KindStringSlot {
		t.Fatalf("got %v, want a string slot", res)
	}
}

func TestBuild_UndefinedFunctionIsAnError(t *testing.T) {
	src := `
fn main() {
	return missing(1);
}
`
	_, err := compile.Prepare(compile.Source{Name: "bad.vel", Reader: strings.NewReader(src)}).Build()
	if err == nil {
		t.Fatal("expected an undefined-function error")
	}
}

func TestBuild_MutualMultiSourceCalls(t *testing.T) {
	srcA := `
fn is_even(n) {
	if n == 0 {
		return true;
	}
	return is_odd(n - 1);
}
`
	srcB := `
fn is_odd(n) {
	if n == 0 {
		return false;
	}
	return is_even(n - 1);
}
`
	u, err := compile.Prepare(
		compile.Source{Name: "a.vel", Reader: strings.NewReader(srcA)},
		compile.Source{Name: "b.vel", Reader: strings.NewReader(srcB)},
	).Build()
	if err != nil {
		t.Fatal(err)
	}
	ctx := build(t, srcA+srcB)
	res, err := vm.Call(u, ctx, "is_even", []value.Value{value.Int(7)})
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind() != value.KindBool || res.AsBool() {
		t.Fatalf("got %v, want Bool(false)", res)
	}
}
