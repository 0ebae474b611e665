package calculator

import (
	"cmp"
	"errors"
	"math"
	"math/cmplx"
	"strconv"
	"strings"

	"github.com/spencerparkin/GAVisTool-sub000/scalar"
)

// Complex is a number of the complex environment.
type Complex complex128

func (Complex) Kind() Kind { return ComplexKind }
func (Complex) number()    {}

// String renders x as a+bi, omitting a zero part and a unit coefficient.
func (x Complex) String() string {
	re, im := real(x), imag(x)
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	if im == 0 {
		return f(re)
	}
	var b strings.Builder
	if re != 0 {
		b.WriteString(f(re))
		if im > 0 || math.IsNaN(im) {
			b.WriteByte('+')
		}
	}
	switch im {
	case 1:
	case -1:
		b.WriteByte('-')
	default:
		b.WriteString(f(im))
	}
	b.WriteByte('i')
	return b.String()
}

// ComplexEnv is the environment of complex numbers in double precision.
// Literals are real; the constant i is the imaginary unit.
type ComplexEnv struct {
	*Registry
}

// NewComplex creates a complex environment.
func NewComplex() *ComplexEnv {
	env := &ComplexEnv{Registry: NewRegistry()}
	env.SetConst("i", Complex(1i))
	env.SetConst("pi", Complex(math.Pi))
	env.SetConst("e", Complex(math.E))
	env.defineAll(map[string]Func{
		"re":   complexReal(func(x complex128) float64 { return real(x) }),
		"im":   complexReal(func(x complex128) float64 { return imag(x) }),
		"abs":  complexReal(cmplx.Abs),
		"arg":  complexReal(cmplx.Phase),
		"conj": complexFunc(cmplx.Conj),
		"exp":  complexFunc(cmplx.Exp),
		"ln":   complexFunc(cmplx.Log),
		"sqrt": complexFunc(cmplx.Sqrt),
		"sin":  complexFunc(cmplx.Sin),
		"cos":  complexFunc(cmplx.Cos),
		"tan":  complexFunc(cmplx.Tan),
		"sinh": complexFunc(cmplx.Sinh),
		"cosh": complexFunc(cmplx.Cosh),
		"pow":  Typed2(func(x, y Complex) (Number, error) { return complexPow(x, y) }),
		"polar": Typed2(func(r, t Complex) (Number, error) {
			if imag(r) != 0 || imag(t) != 0 {
				return nil, &DomainError{Reason: "polar takes real arguments"}
			}
			return Complex(cmplx.Rect(real(r), real(t))), nil
		}),
	})
	return env
}

func complexFunc(f func(complex128) complex128) Func {
	return Typed(func(x Complex) (Number, error) {
		r := f(complex128(x))
		if cmplx.IsNaN(r) && !cmplx.IsNaN(complex128(x)) {
			return nil, &DomainError{X: x.String(), Arg: 1}
		}
		return Complex(r), nil
	})
}

func complexReal(f func(complex128) float64) Func {
	return Typed(func(x Complex) (Number, error) {
		return Complex(complex(f(complex128(x)), 0)), nil
	})
}

func complexPow(x, y Complex) (Number, error) {
	if x == 0 {
		switch {
		case y == 0:
			return Complex(1), nil
		case real(y) < 0:
			return nil, &ZeroDivisionError{}
		}
		return Complex(0), nil
	}
	// Exact small integer powers avoid the rounding of exp(y ln x).
	if imag(y) == 0 && real(y) == math.Trunc(real(y)) && math.Abs(real(y)) <= 64 {
		k := int(real(y))
		r := complex128(1)
		b := complex128(x)
		if k < 0 {
			b, k = 1/b, -k
		}
		for ; k > 0; k >>= 1 {
			if k&1 != 0 {
				r *= b
			}
			b *= b
		}
		return Complex(r), nil
	}
	return Complex(cmplx.Pow(complex128(x), complex128(y))), nil
}

func (env *ComplexEnv) Name() string { return "complex" }

func (env *ComplexEnv) Parse(text string) (Number, error) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, &LexError{Text: text, Scanning: "number"}
	}
	return Complex(complex(f, 0)), nil
}

func (env *ComplexEnv) Format(x Number) string { return x.String() }

func (env *ComplexEnv) Unary(op string, x Number) (Number, error) {
	a, ok := x.(Complex)
	if !ok {
		return nil, typeError(op, x)
	}
	switch op {
	case "-":
		return -a, nil
	case "+":
		return a, nil
	case "~":
		return Complex(cmplx.Conj(complex128(a))), nil
	}
	return nil, typeError(op, x)
}

func (env *ComplexEnv) Binary(op string, x, y Number) (Number, error) {
	a, ok := x.(Complex)
	b, ok2 := y.(Complex)
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
		return complexPow(a, b)
	case "==":
		return Bool(a == b), nil
	case "!=":
		return Bool(a != b), nil
	}
	if isOrdering(op) {
		if imag(a) != 0 || imag(b) != 0 {
			return nil, &TypeError{Op: op, Operands: []Kind{ComplexKind, ComplexKind}, Reason: "complex numbers with imaginary parts are not ordered"}
		}
		r, _ := compare(op, cmp.Compare(real(a), real(b)))
		return r, nil
	}
	return nil, typeError(op, x, y)
}

func (env *ComplexEnv) Truth(x Number) (bool, error) {
	a, ok := x.(Complex)
	if !ok {
		return false, typeError("condition", x)
	}
	return a != 0, nil
}

func (env *ComplexEnv) Index(x Number, idx []Number) (Number, error) {
	return nil, typeError("[]", x)
}

func (env *ComplexEnv) Compose(rows [][]Number) (Number, error) {
	return nil, noCompose(env)
}

func (env *ComplexEnv) FromInt(n int64) Number { return Complex(complex(float64(n), 0)) }

func (env *ComplexEnv) Scalar(x Number) (scalar.Scalar, error) {
	a, ok := x.(Complex)
	if !ok {
		return scalar.Scalar{}, typeError("", x)
	}
	if imag(a) != 0 {
		return scalar.Scalar{}, &DomainError{X: a.String(), Reason: "not real"}
	}
	s, ok := scalar.Float(real(a))
	if !ok {
		return scalar.Scalar{}, &DomainError{X: a.String(), Reason: "not finite"}
	}
	return s, nil
}

func (env *ComplexEnv) FromScalar(s scalar.Scalar) (Number, error) {
	f, ok := s.Float64()
	if !ok {
		return nil, &DomainError{Reason: "symbolic value " + s.String() + " has no complex value"}
	}
	return Complex(complex(f, 0)), nil
}
