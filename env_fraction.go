package calculator

import (
	"math/big"
	"strings"

	"github.com/spencerparkin/GAVisTool-sub000/scalar"
)

// Fraction is a fraction of integers as written, not reduced to lowest terms.
// The denominator is always positive.
type Fraction struct {
	num, den *big.Int
}

// NewFrac creates the fraction num/den. It panics if den is zero.
func NewFrac(num, den *big.Int) Fraction {
	if den.Sign() == 0 {
		panic("calculator: zero denominator")
	}
	n, d := new(big.Int).Set(num), new(big.Int).Set(den)
	if d.Sign() < 0 {
		n.Neg(n)
		d.Neg(d)
	}
	return Fraction{n, d}
}

func frac(n, d int64) Fraction { return NewFrac(big.NewInt(n), big.NewInt(d)) }

// Num returns a copy of the numerator.
func (x Fraction) Num() *big.Int { return new(big.Int).Set(x.n()) }

// Den returns a copy of the denominator.
func (x Fraction) Den() *big.Int { return new(big.Int).Set(x.d()) }

func (x Fraction) n() *big.Int {
	if x.num == nil {
		return new(big.Int)
	}
	return x.num
}

func (x Fraction) d() *big.Int {
	if x.den == nil {
		return big.NewInt(1)
	}
	return x.den
}

// Rat returns the value of x.
func (x Fraction) Rat() *big.Rat { return new(big.Rat).SetFrac(x.n(), x.d()) }

func (Fraction) Kind() Kind { return FractionKind }
func (Fraction) number()    {}

// String renders x as a mixed number, e.g. "1 3/4" or "-1 3/4". Proper
// fractions render as "3/6" and whole numbers as integers.
func (x Fraction) String() string {
	n, d := x.n(), x.d()
	if d.Cmp(big.NewInt(1)) == 0 {
		return n.String()
	}
	q, r := new(big.Int).QuoRem(n, d, new(big.Int))
	if r.Sign() == 0 {
		return q.String()
	}
	var b strings.Builder
	if q.Sign() != 0 {
		b.WriteString(q.String())
		b.WriteByte(' ')
		r.Abs(r)
	}
	b.WriteString(r.String())
	b.WriteByte('/')
	b.WriteString(d.String())
	return b.String()
}

// improper renders x as n/d.
func (x Fraction) improper() string {
	if x.d().Cmp(big.NewInt(1)) == 0 {
		return x.n().String()
	}
	return x.n().String() + "/" + x.d().String()
}

func (x Fraction) reduce() Fraction {
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(x.n()), x.d())
	if g.Sign() == 0 || g.Cmp(big.NewInt(1)) == 0 {
		return x
	}
	return Fraction{new(big.Int).Quo(x.n(), g), new(big.Int).Quo(x.d(), g)}
}

// FractionEnv is the environment of fractions for arithmetic by hand. Sums
// use the least common denominator, products multiply termwise, and nothing
// is reduced unless asked with reduce.
type FractionEnv struct {
	*Registry
	mixed bool
}

// NewFraction creates a fraction environment which displays mixed numbers.
func NewFraction() *FractionEnv {
	env := &FractionEnv{Registry: NewRegistry(), mixed: true}
	env.defineAll(map[string]Func{
		"reduce": Typed(func(x Fraction) (Number, error) { return x.reduce(), nil }),
		"num":    Typed(func(x Fraction) (Number, error) { return Fraction{x.Num(), big.NewInt(1)}, nil }),
		"den":    Typed(func(x Fraction) (Number, error) { return Fraction{x.Den(), big.NewInt(1)}, nil }),
		"whole": Typed(func(x Fraction) (Number, error) {
			return Fraction{new(big.Int).Quo(x.n(), x.d()), big.NewInt(1)}, nil
		}),
		"mixed":    Typed(func(x Fraction) (Number, error) { return String(x.String()), nil }),
		"improper": Typed(func(x Fraction) (Number, error) { return String(x.improper()), nil }),
		"lcd": Typed2(func(x, y Fraction) (Number, error) {
			return Fraction{lcm(x.d(), y.d()), big.NewInt(1)}, nil
		}),
		"abs": Typed(func(x Fraction) (Number, error) { return Fraction{new(big.Int).Abs(x.n()), x.Den()}, nil }),
		"recip": Typed(func(x Fraction) (Number, error) {
			if x.n().Sign() == 0 {
				return nil, &ZeroDivisionError{}
			}
			return NewFrac(x.d(), x.n()), nil
		}),
		// expand scales numerator and denominator by k.
		"expand": Typed2(func(x, k Fraction) (Number, error) {
			if k.d().Cmp(big.NewInt(1)) != 0 || k.n().Sign() == 0 {
				return nil, &DomainError{X: k.String(), Arg: 2}
			}
			return NewFrac(new(big.Int).Mul(x.n(), k.n()), new(big.Int).Mul(x.d(), k.n())), nil
		}),
	})
	return env
}

// SetMixed sets whether improper fractions display as mixed numbers.
func (env *FractionEnv) SetMixed(mixed bool) { env.mixed = mixed }

func lcm(a, b *big.Int) *big.Int {
	g := new(big.Int).GCD(nil, nil, a, b)
	r := new(big.Int).Mul(a, b)
	return r.Quo(r, g)
}

func (env *FractionEnv) Name() string { return "fraction" }

// Parse accepts integers and decimals. A decimal becomes a fraction over a
// power of ten, so "1.5" is 15/10.
func (env *FractionEnv) Parse(text string) (Number, error) {
	lit := text
	exp := 0
	if strings.ContainsAny(lit, "eE") {
		r, ok := new(big.Rat).SetString(lit)
		if !ok {
			return nil, &LexError{Text: text, Scanning: "number"}
		}
		return Fraction{new(big.Int).Set(r.Num()), new(big.Int).Set(r.Denom())}, nil
	}
	if i := strings.IndexByte(lit, '.'); i >= 0 {
		exp = len(lit) - i - 1
		lit = lit[:i] + lit[i+1:]
	}
	n, ok := new(big.Int).SetString(lit, 10)
	if !ok {
		return nil, &LexError{Text: text, Scanning: "number"}
	}
	d := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
	return Fraction{n, d}, nil
}

func (env *FractionEnv) Format(x Number) string {
	if f, ok := x.(Fraction); ok && !env.mixed {
		return f.improper()
	}
	return x.String()
}

func (env *FractionEnv) Unary(op string, x Number) (Number, error) {
	a, ok := x.(Fraction)
	if !ok {
		return nil, typeError(op, x)
	}
	switch op {
	case "-":
		return Fraction{new(big.Int).Neg(a.n()), a.Den()}, nil
	case "+":
		return a, nil
	}
	return nil, typeError(op, x)
}

func (env *FractionEnv) Binary(op string, x, y Number) (Number, error) {
	a, ok := x.(Fraction)
	b, ok2 := y.(Fraction)
	if !ok || !ok2 {
		return nil, typeError(op, x, y)
	}
	switch op {
	case "+", "-":
		d := lcm(a.d(), b.d())
		an := new(big.Int).Mul(a.n(), new(big.Int).Quo(d, a.d()))
		bn := new(big.Int).Mul(b.n(), new(big.Int).Quo(d, b.d()))
		if op == "+" {
			return Fraction{an.Add(an, bn), d}, nil
		}
		return Fraction{an.Sub(an, bn), d}, nil
	case "*":
		return Fraction{new(big.Int).Mul(a.n(), b.n()), new(big.Int).Mul(a.d(), b.d())}, nil
	case "/":
		if b.n().Sign() == 0 {
			return nil, &ZeroDivisionError{}
		}
		return NewFrac(new(big.Int).Mul(a.n(), b.d()), new(big.Int).Mul(a.d(), b.n())), nil
	case "^":
		if b.d().Cmp(big.NewInt(1)) != 0 {
			return nil, &DomainError{X: b.String(), Arg: 2, Reason: "exponent is not an integer"}
		}
		k := b.n()
		if !powFits(a.n().BitLen()+a.d().BitLen(), k) {
			return nil, &LimitError{What: "bits in exact power", Limit: maxPowBits}
		}
		if k.Sign() < 0 {
			if a.n().Sign() == 0 {
				return nil, &ZeroDivisionError{}
			}
			a = NewFrac(a.d(), a.n())
		}
		e := new(big.Int).Abs(k)
		return Fraction{new(big.Int).Exp(a.n(), e, nil), new(big.Int).Exp(a.d(), e, nil)}, nil
	}
	if r, ok := compare(op, a.Rat().Cmp(b.Rat())); ok {
		return r, nil
	}
	return nil, typeError(op, x, y)
}

func (env *FractionEnv) Truth(x Number) (bool, error) {
	a, ok := x.(Fraction)
	if !ok {
		return false, typeError("condition", x)
	}
	return a.n().Sign() != 0, nil
}

func (env *FractionEnv) Index(x Number, idx []Number) (Number, error) {
	return nil, typeError("[]", x)
}

func (env *FractionEnv) Compose(rows [][]Number) (Number, error) {
	return nil, noCompose(env)
}

func (env *FractionEnv) FromInt(n int64) Number { return frac(n, 1) }

func (env *FractionEnv) Scalar(x Number) (scalar.Scalar, error) {
	a, ok := x.(Fraction)
	if !ok {
		return scalar.Scalar{}, typeError("", x)
	}
	return scalar.Rat(a.Rat()), nil
}

func (env *FractionEnv) FromScalar(s scalar.Scalar) (Number, error) {
	r, ok := s.Rat()
	if !ok {
		return nil, &DomainError{Reason: "symbolic value " + s.String() + " has no fraction value"}
	}
	return Fraction{new(big.Int).Set(r.Num()), new(big.Int).Set(r.Denom())}, nil
}
