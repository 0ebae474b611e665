package calculator

import (
	"cmp"
	"errors"
	"math"
	"strconv"

	"github.com/spencerparkin/GAVisTool-sub000/scalar"
)

// Float is a number of the float environment.
type Float float64

func (Float) Kind() Kind       { return FloatKind }
func (x Float) String() string { return strconv.FormatFloat(float64(x), 'g', -1, 64) }
func (Float) number()          {}

// FloatEnv is the environment of IEEE 754 double precision numbers.
type FloatEnv struct {
	*Registry
}

// NewFloat creates a float environment.
func NewFloat() *FloatEnv {
	env := &FloatEnv{Registry: NewRegistry()}
	env.SetConst("pi", Float(math.Pi))
	env.SetConst("e", Float(math.E))
	env.SetConst("inf", Float(math.Inf(1)))
	env.defineAll(map[string]Func{
		"sin":   floatFunc(math.Sin),
		"cos":   floatFunc(math.Cos),
		"tan":   floatFunc(math.Tan),
		"asin":  floatFunc(math.Asin),
		"acos":  floatFunc(math.Acos),
		"atan":  floatFunc(math.Atan),
		"sinh":  floatFunc(math.Sinh),
		"cosh":  floatFunc(math.Cosh),
		"tanh":  floatFunc(math.Tanh),
		"exp":   floatFunc(math.Exp),
		"ln":    floatFunc(math.Log),
		"sqrt":  floatFunc(math.Sqrt),
		"abs":   floatFunc(math.Abs),
		"floor": floatFunc(math.Floor),
		"ceil":  floatFunc(math.Ceil),
		"round": floatFunc(math.Round),
		"atan2": floatFunc2(math.Atan2),
		"pow":   floatFunc2(math.Pow),
		"hypot": floatFunc2(math.Hypot),
		"log":   Variadic(1, 2, floatLog),
		"min":   Variadic(1, -1, floatExtreme(-1)),
		"max":   Variadic(1, -1, floatExtreme(1)),
	})
	return env
}

// floatFunc wraps a function of one float. A NaN result from a non-NaN
// argument is a DomainError.
func floatFunc(f func(float64) float64) Func {
	return Typed(func(x Float) (Number, error) {
		r := f(float64(x))
		if math.IsNaN(r) && !math.IsNaN(float64(x)) {
			return nil, &DomainError{X: x.String(), Arg: 1}
		}
		return Float(r), nil
	})
}

func floatFunc2(f func(x, y float64) float64) Func {
	return Typed2(func(x, y Float) (Number, error) {
		r := f(float64(x), float64(y))
		if math.IsNaN(r) && !math.IsNaN(float64(x)) && !math.IsNaN(float64(y)) {
			return nil, &DomainError{X: x.String(), Arg: 1}
		}
		return Float(r), nil
	})
}

// floatLog is the common logarithm of x, or the logarithm in base b.
func floatLog(ctx *Context, args []Number) (Number, error) {
	xs := make([]float64, len(args))
	for i, a := range args {
		x, ok := a.(Float)
		if !ok {
			return nil, typeError("", args...)
		}
		if x <= 0 {
			return nil, &DomainError{X: x.String(), Arg: i + 1}
		}
		xs[i] = float64(x)
	}
	if len(xs) == 1 {
		return Float(math.Log10(xs[0])), nil
	}
	if xs[1] == 1 {
		return nil, &DomainError{X: "1", Arg: 2}
	}
	return Float(math.Log(xs[0]) / math.Log(xs[1])), nil
}

// floatExtreme selects the least (sign -1) or greatest (sign 1) argument.
func floatExtreme(sign int) func(ctx *Context, args []Number) (Number, error) {
	return func(ctx *Context, args []Number) (Number, error) {
		var r Float
		for i, a := range args {
			x, ok := a.(Float)
			if !ok {
				return nil, typeError("", a)
			}
			if i == 0 || cmp.Compare(x, r) == sign {
				r = x
			}
		}
		return r, nil
	}
}

func (env *FloatEnv) Name() string { return "float" }

func (env *FloatEnv) Parse(text string) (Number, error) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, &LexError{Text: text, Scanning: "number"}
	}
	return Float(f), nil
}

func (env *FloatEnv) Format(x Number) string { return x.String() }

func (env *FloatEnv) Unary(op string, x Number) (Number, error) {
	a, ok := x.(Float)
	if !ok {
		return nil, typeError(op, x)
	}
	switch op {
	case "-":
		return -a, nil
	case "+":
		return a, nil
	}
	return nil, typeError(op, x)
}

func (env *FloatEnv) Binary(op string, x, y Number) (Number, error) {
	a, ok := x.(Float)
	b, ok2 := y.(Float)
	if !ok || !ok2 {
		return nil, typeError(op, x, y)
	}
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return nil, &ZeroDivisionError{}
		}
		return a / b, nil
	case "^":
		r := math.Pow(float64(a), float64(b))
		if math.IsNaN(r) && !math.IsNaN(float64(a)) && !math.IsNaN(float64(b)) {
			return nil, &DomainError{X: a.String(), Arg: 1}
		}
		return Float(r), nil
	}
	if r, ok := compare(op, cmp.Compare(a, b)); ok {
		return r, nil
	}
	return nil, typeError(op, x, y)
}

func (env *FloatEnv) Truth(x Number) (bool, error) {
	a, ok := x.(Float)
	if !ok {
		return false, typeError("condition", x)
	}
	return a != 0, nil
}

func (env *FloatEnv) Index(x Number, idx []Number) (Number, error) {
	return nil, typeError("[]", x)
}

func (env *FloatEnv) Compose(rows [][]Number) (Number, error) {
	return nil, noCompose(env)
}

func (env *FloatEnv) FromInt(n int64) Number { return Float(n) }

func (env *FloatEnv) Scalar(x Number) (scalar.Scalar, error) {
	a, ok := x.(Float)
	if !ok {
		return scalar.Scalar{}, typeError("", x)
	}
	s, ok := scalar.Float(float64(a))
	if !ok {
		return scalar.Scalar{}, &DomainError{X: a.String(), Reason: "not finite"}
	}
	return s, nil
}

func (env *FloatEnv) FromScalar(s scalar.Scalar) (Number, error) {
	f, ok := s.Float64()
	if !ok {
		return nil, &DomainError{Reason: "symbolic value " + s.String() + " has no float value"}
	}
	return Float(f), nil
}
