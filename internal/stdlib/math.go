package stdlib

import (
	"math"
	"math/rand"

	"github.com/zephyrlang/zr/internal/value"
)

// dispatchMath implements std::math directly against Go's math package
// (spec §6-A); every function returns an f32-width Float since the
// language has no literal suffix to request wider precision for
// stdlib results (internal/typesys.DefaultFloatType). The one exception
// is abs of an integer, which returns an i32 Int.
func dispatchMath(name string, args []value.Value) (value.Value, error) {
	f := func(i int) float64 { v, _ := asFloat(arg(args, i)); return v }
	switch name {
	case "abs":
		if i, ok := asInt(arg(args, 0)); ok {
			if i < 0 {
				i = -i
			}
			return value.Int{Width: 32, Signed: true, V: i}, nil
		}
		return value.Float{Width: 32, V: math.Abs(f(0))}, nil
	case "sqrt":
		return value.Float{Width: 32, V: math.Sqrt(f(0))}, nil
	case "pow":
		return value.Float{Width: 32, V: math.Pow(f(0), f(1))}, nil
	case "sin":
		return value.Float{Width: 32, V: math.Sin(f(0))}, nil
	case "cos":
		return value.Float{Width: 32, V: math.Cos(f(0))}, nil
	case "tan":
		return value.Float{Width: 32, V: math.Tan(f(0))}, nil
	case "floor":
		return value.Float{Width: 32, V: math.Floor(f(0))}, nil
	case "ceil":
		return value.Float{Width: 32, V: math.Ceil(f(0))}, nil
	case "round":
		return value.Float{Width: 32, V: math.Round(f(0))}, nil
	case "min":
		return value.Float{Width: 32, V: math.Min(f(0), f(1))}, nil
	case "max":
		return value.Float{Width: 32, V: math.Max(f(0), f(1))}, nil
	case "clamp":
		v, lo, hi := f(0), f(1), f(2)
		if v < lo {
			v = lo
		}
		if v > hi {
			v = hi
		}
		return value.Float{Width: 32, V: v}, nil
	case "lerp":
		a, b, t := f(0), f(1), f(2)
		return value.Float{Width: 32, V: a + (b-a)*t}, nil
	case "random":
		return value.Float{Width: 32, V: rand.Float64()}, nil
	case "pi":
		return value.Float{Width: 32, V: math.Pi}, nil
	case "e":
		return value.Float{Width: 32, V: math.E}, nil
	case "log":
		return value.Float{Width: 32, V: math.Log(f(0))}, nil
	case "log10":
		return value.Float{Width: 32, V: math.Log10(f(0))}, nil
	case "exp":
		return value.Float{Width: 32, V: math.Exp(f(0))}, nil
	}
	return nil, runtimeErr("unknown math function '%s'", name)
}
