package vm

import (
	"math"
	"math/bits"

	"github.com/pkg/errors"

	"github.com/vellum-lang/vellum/value"
	"github.com/vellum-lang/vellum/vmerr"
)

// arith evaluates a built-in Arith opcode over two inline-shaped
// operands, per spec.md §4.4.2 ("checked on integers, overflow ->
// error; IEEE-754 on floats"). ok is false when the operand kinds are
// not a built-in-handled shape, signalling the caller to fall through
// to protocol dispatch (spec.md §4.4.4 step 1/2/3 ordering).
func arith(op string, a, b value.Value) (result value.Value, ok bool, err error) {
	if a.Kind() != b.Kind() {
		return value.Value{}, false, nil
	}
	switch a.Kind() {
	case value.KindInt:
		n, err := checkedIntOp(op, a.AsInt(), b.AsInt())
		if err != nil {
			return value.Value{}, true, err
		}
		return value.Int(n), true, nil
	case value.KindUint:
		n, err := checkedUintOp(op, a.AsUint(), b.AsUint())
		if err != nil {
			return value.Value{}, true, err
		}
		return value.Uint(n), true, nil
	case value.KindByte:
		n, err := checkedUintOp(op, uint64(a.AsByte()), uint64(b.AsByte()))
		if err != nil {
			return value.Value{}, true, err
		}
		if n > math.MaxUint8 {
			return value.Value{}, true, errors.WithStack(vmerr.IntegerOverflow{Op: op})
		}
		return value.Byte(byte(n)), true, nil
	case value.KindFloat:
		return value.Float(floatOp(op, a.AsFloat(), b.AsFloat())), true, nil
	default:
		return value.Value{}, false, nil
	}
}

func checkedIntOp(op string, a, b int64) (int64, error) {
	switch op {
	case "+":
		sum := a + b
		if (b > 0 && sum < a) || (b < 0 && sum > a) {
			return 0, errors.WithStack(vmerr.IntegerOverflow{Op: op})
		}
		return sum, nil
	case "-":
		diff := a - b
		if (b < 0 && diff < a) || (b > 0 && diff > a) {
			return 0, errors.WithStack(vmerr.IntegerUnderflow{Op: op})
		}
		return diff, nil
	case "*":
		if a == 0 || b == 0 {
			return 0, nil
		}
		p := a * b
		if p/b != a {
			return 0, errors.WithStack(vmerr.IntegerOverflow{Op: op})
		}
		return p, nil
	case "/":
		if b == 0 {
			return 0, errors.WithStack(vmerr.DivideByZero{Op: op})
		}
		if a == math.MinInt64 && b == -1 {
			return 0, errors.WithStack(vmerr.IntegerOverflow{Op: op})
		}
		return a / b, nil
	case "%":
		if b == 0 {
			return 0, errors.WithStack(vmerr.DivideByZero{Op: op})
		}
		if a == math.MinInt64 && b == -1 {
			return 0, nil
		}
		return a % b, nil
	default:
		return 0, errors.Errorf("unknown integer operator %q", op)
	}
}

func checkedUintOp(op string, a, b uint64) (uint64, error) {
	switch op {
	case "+":
		sum := a + b
		if sum < a {
			return 0, errors.WithStack(vmerr.IntegerOverflow{Op: op})
		}
		return sum, nil
	case "-":
		if b > a {
			return 0, errors.WithStack(vmerr.IntegerUnderflow{Op: op})
		}
		return a - b, nil
	case "*":
		if a == 0 || b == 0 {
			return 0, nil
		}
		hi, lo := bits.Mul64(a, b)
		if hi != 0 {
			return 0, errors.WithStack(vmerr.IntegerOverflow{Op: op})
		}
		return lo, nil
	case "/":
		if b == 0 {
			return 0, errors.WithStack(vmerr.DivideByZero{Op: op})
		}
		return a / b, nil
	case "%":
		if b == 0 {
			return 0, errors.WithStack(vmerr.DivideByZero{Op: op})
		}
		return a % b, nil
	default:
		return 0, errors.Errorf("unknown integer operator %q", op)
	}
}

func floatOp(op string, a, b float64) float64 {
	switch op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		return a / b
	case "%":
		return math.Mod(a, b)
	default:
		return math.NaN()
	}
}

// bitwise evaluates a built-in Bitwise opcode over two inline-shaped
// operands (integers and bool), per spec.md §4.4.2.
func bitwise(op string, a, b value.Value) (result value.Value, ok bool, err error) {
	if a.Kind() != b.Kind() {
		return value.Value{}, false, nil
	}
	switch a.Kind() {
	case value.KindBool:
		x, y := a.AsBool(), b.AsBool()
		switch op {
		case "&":
			return value.Bool(x && y), true, nil
		case "|":
			return value.Bool(x || y), true, nil
		case "^":
			return value.Bool(x != y), true, nil
		}
		return value.Value{}, false, nil
	case value.KindInt:
		x, y := a.AsInt(), b.AsInt()
		switch op {
		case "&":
			return value.Int(x & y), true, nil
		case "|":
			return value.Int(x | y), true, nil
		case "^":
			return value.Int(x ^ y), true, nil
		}
		return value.Value{}, false, nil
	case value.KindUint:
		x, y := a.AsUint(), b.AsUint()
		switch op {
		case "&":
			return value.Uint(x & y), true, nil
		case "|":
			return value.Uint(x | y), true, nil
		case "^":
			return value.Uint(x ^ y), true, nil
		}
		return value.Value{}, false, nil
	default:
		return value.Value{}, false, nil
	}
}

// shift evaluates a built-in Shift opcode. The shift amount must fit a
// u32 and not exceed the operand's bit width (spec.md §4.4.2), else
// ShiftOverflow.
func shift(left bool, a, amount value.Value) (result value.Value, ok bool, err error) {
	var width int
	var amt uint64
	switch amount.Kind() {
	case value.KindUint:
		amt = amount.AsUint()
	case value.KindInt:
		if amount.AsInt() < 0 {
			return value.Value{}, true, errors.WithStack(vmerr.ShiftOverflow{Amount: int(amount.AsInt()), Width: 64})
		}
		amt = uint64(amount.AsInt())
	default:
		return value.Value{}, false, nil
	}
	switch a.Kind() {
	case value.KindInt:
		width = 64
		if amt > math.MaxUint32 || int(amt) >= width {
			return value.Value{}, true, errors.WithStack(vmerr.ShiftOverflow{Amount: int(amt), Width: width})
		}
		x := a.AsInt()
		if left {
			return value.Int(x << amt), true, nil
		}
		return value.Int(x >> amt), true, nil
	case value.KindUint:
		width = 64
		if amt > math.MaxUint32 || int(amt) >= width {
			return value.Value{}, true, errors.WithStack(vmerr.ShiftOverflow{Amount: int(amt), Width: width})
		}
		x := a.AsUint()
		if left {
			return value.Uint(x << amt), true, nil
		}
		return value.Uint(x >> amt), true, nil
	case value.KindByte:
		width = 8
		if amt > math.MaxUint32 || int(amt) >= width {
			return value.Value{}, true, errors.WithStack(vmerr.ShiftOverflow{Amount: int(amt), Width: width})
		}
		x := a.AsByte()
		if left {
			return value.Byte(x << amt), true, nil
		}
		return value.Byte(x >> amt), true, nil
	default:
		return value.Value{}, false, nil
	}
}
