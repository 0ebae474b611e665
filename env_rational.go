package calculator

import (
	"math/big"
	"strings"

	"github.com/zephyrtronium/bigfloat"

	"github.com/spencerparkin/GAVisTool-sub000/scalar"
)

// Rational is an exact rational number in lowest terms. Rationals are
// immutable.
type Rational struct {
	r *big.Rat
}

// NewRat returns the rational number with the value of r.
func NewRat(r *big.Rat) Rational {
	return Rational{new(big.Rat).Set(r)}
}

// Rat returns a copy of the value of x.
func (x Rational) Rat() *big.Rat { return new(big.Rat).Set(x.rat()) }

func (x Rational) rat() *big.Rat {
	if x.r == nil {
		return new(big.Rat)
	}
	return x.r
}

func (Rational) Kind() Kind       { return RationalKind }
func (x Rational) String() string { return x.rat().RatString() }
func (Rational) number()          {}

// DefaultDigits is the number of significant decimal digits of the rational
// environment's approximations and decimal displays.
const DefaultDigits = 30

// maxPowBits bounds the size of exact powers.
const maxPowBits = 1 << 22

// RationalEnv is the environment of exact rational numbers. Operations which
// cannot be exact, e.g. sqrt(2) or 2^(1/3), are approximated to a fixed
// number of significant digits and the approximation is kept exactly.
type RationalEnv struct {
	*Registry
	digits  int
	decimal bool
}

// NewRational creates a rational environment which approximates irrational
// results to the given number of significant digits. If decimal is true,
// results are displayed as decimals truncated to that many digits after the
// point rather than as fractions.
func NewRational(digits int, decimal bool) *RationalEnv {
	if digits < 1 {
		digits = DefaultDigits
	}
	env := &RationalEnv{Registry: NewRegistry(), digits: digits, decimal: decimal}
	pi, err := env.approx(bigfloat.Pi(env.float()))
	if err != nil {
		panic("calculator: approximating pi: " + err.Error())
	}
	e, err := env.approx(bigfloat.Exp(env.float(), big.NewFloat(1)))
	if err != nil {
		panic("calculator: approximating e: " + err.Error())
	}
	env.SetConst("pi", pi)
	env.SetConst("e", e)
	env.defineAll(map[string]Func{
		"abs":     Typed(func(x Rational) (Number, error) { return Rational{new(big.Rat).Abs(x.rat())}, nil }),
		"floor":   Typed(func(x Rational) (Number, error) { return Rational{new(big.Rat).SetInt(floor(x.rat()))}, nil }),
		"ceil":    Typed(func(x Rational) (Number, error) { return Rational{new(big.Rat).SetInt(ceil(x.rat()))}, nil }),
		"trunc":   Typed(func(x Rational) (Number, error) { return Rational{new(big.Rat).SetInt(trunc(x.rat()))}, nil }),
		"num":     Typed(func(x Rational) (Number, error) { return Rational{new(big.Rat).SetInt(x.rat().Num())}, nil }),
		"den":     Typed(func(x Rational) (Number, error) { return Rational{new(big.Rat).SetInt(x.rat().Denom())}, nil }),
		"round":   Variadic(1, 2, env.round),
		"decimal": Variadic(1, 2, env.decimalFunc),
		"base":    Typed2(ratBase),
		"gcd":     Typed2(ratGCD),
		"lcm":     Typed2(ratLCM),
		"min":     Variadic(1, -1, ratExtreme(-1)),
		"max":     Variadic(1, -1, ratExtreme(1)),
		"pow":     Typed2(func(x, y Rational) (Number, error) { return env.pow(x, y) }),
		"exp":     Typed(env.exp),
		"ln":      Typed(env.ln),
		"log":     Variadic(1, 2, env.log),
		"sqrt":    Typed(env.sqrt),
	})
	return env
}

// Digits returns the number of significant digits of approximations.
func (env *RationalEnv) Digits() int { return env.digits }

// SetDecimal sets whether results are displayed as decimals.
func (env *RationalEnv) SetDecimal(decimal bool) { env.decimal = decimal }

func (env *RationalEnv) prec() uint {
	// log2(10) < 3.33
	return uint(env.digits)*10/3 + 64
}

func (env *RationalEnv) float() *big.Float {
	return new(big.Float).SetPrec(env.prec())
}

// approx rounds f to the environment's significant digits. Infinities and
// values whose exact form would exceed the exact power limit are LimitErrors.
func (env *RationalEnv) approx(f *big.Float) (Rational, error) {
	if f.IsInf() {
		return Rational{}, &LimitError{What: "magnitude of approximation", Limit: maxPowBits}
	}
	if e := f.MantExp(nil); e > maxPowBits || e < -maxPowBits {
		return Rational{}, &LimitError{What: "bits in approximation", Limit: maxPowBits}
	}
	r, ok := new(big.Rat).SetString(f.Text('g', env.digits))
	if !ok {
		return Rational{}, &DomainError{Reason: "approximation " + f.String() + " has no rational value"}
	}
	return Rational{r}, nil
}

// approxPositive is approx for results known to be positive, so that a zero
// from underflow is an error rather than a value.
func (env *RationalEnv) approxPositive(f *big.Float) (Number, error) {
	if f.Sign() == 0 {
		return nil, &LimitError{What: "magnitude of approximation", Limit: maxPowBits}
	}
	return env.approxNumber(f)
}

// approxNumber is approx for results returned as Numbers.
func (env *RationalEnv) approxNumber(f *big.Float) (Number, error) {
	r, err := env.approx(f)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// transcendental applies a bigfloat function, converting its NaN panics into
// domain errors. If positive is set, a zero result is an underflow.
func (env *RationalEnv) transcendental(f func(z, x *big.Float) *big.Float, x Rational, positive bool) (r Number, err error) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if _, ok := p.(big.ErrNaN); !ok {
			panic(p)
		}
		err = &DomainError{X: x.String(), Arg: 1}
	}()
	in := env.float().SetRat(x.rat())
	if positive {
		return env.approxPositive(f(env.float(), in))
	}
	return env.approxNumber(f(env.float(), in))
}

func (env *RationalEnv) exp(x Rational) (Number, error) {
	if x.rat().Sign() == 0 {
		return Rational{big.NewRat(1, 1)}, nil
	}
	return env.transcendental(bigfloat.Exp, x, true)
}

func (env *RationalEnv) ln(x Rational) (Number, error) {
	if x.rat().Sign() <= 0 {
		return nil, &DomainError{X: x.String(), Arg: 1}
	}
	if isOne(x.rat()) {
		return Rational{new(big.Rat)}, nil
	}
	return env.transcendental(bigfloat.Log, x, false)
}

// log is the common logarithm of x, or the logarithm in base b.
func (env *RationalEnv) log(ctx *Context, args []Number) (Number, error) {
	base := Rational{big.NewRat(10, 1)}
	x, ok := args[0].(Rational)
	if len(args) == 2 {
		var ok2 bool
		base, ok2 = args[1].(Rational)
		ok = ok && ok2
	}
	if !ok {
		return nil, typeError("", args...)
	}
	if x.rat().Sign() <= 0 {
		return nil, &DomainError{X: x.String(), Arg: 1}
	}
	if base.rat().Sign() <= 0 || isOne(base.rat()) {
		return nil, &DomainError{X: base.String(), Arg: 2}
	}
	// Exact when x is an integer power of the base.
	for k, p := int64(0), big.NewRat(1, 1); k <= 64 && p.Cmp(x.rat()) <= 0 && base.rat().Cmp(big.NewRat(1, 1)) > 0; k++ {
		if p.Cmp(x.rat()) == 0 {
			return Rational{big.NewRat(k, 1)}, nil
		}
		p.Mul(p, base.rat())
	}
	lx := env.float()
	lb := env.float()
	bigfloat.Log(lx, env.float().SetRat(x.rat()))
	bigfloat.Log(lb, env.float().SetRat(base.rat()))
	return env.approxNumber(lx.Quo(lx, lb))
}

func (env *RationalEnv) sqrt(x Rational) (Number, error) {
	r := x.rat()
	if r.Sign() < 0 {
		return nil, &DomainError{X: x.String(), Arg: 1}
	}
	n := new(big.Int).Sqrt(r.Num())
	d := new(big.Int).Sqrt(r.Denom())
	if new(big.Int).Mul(n, n).Cmp(r.Num()) == 0 && new(big.Int).Mul(d, d).Cmp(r.Denom()) == 0 {
		return Rational{new(big.Rat).SetFrac(n, d)}, nil
	}
	f := env.float().SetRat(r)
	return env.approxNumber(f.Sqrt(f))
}

// pow computes x^y exactly for integer y and approximately otherwise.
func (env *RationalEnv) pow(x, y Rational) (Number, error) {
	a, b := x.rat(), y.rat()
	if b.IsInt() {
		k := b.Num()
		if !powFits(a.Num().BitLen()+a.Denom().BitLen(), k) {
			switch {
			case a.Sign() == 0, isOne(a):
				return env.pow(x, Rational{big.NewRat(int64(k.Sign()), 1)})
			case isOne(new(big.Rat).Neg(a)):
				// -1 to an even power is 1.
				return Rational{big.NewRat(1-2*int64(new(big.Int).Abs(k).Bit(0)), 1)}, nil
			}
			return nil, &LimitError{What: "bits in exact power", Limit: maxPowBits}
		}
		if a.Sign() == 0 && k.Sign() < 0 {
			return nil, &ZeroDivisionError{}
		}
		e := new(big.Int).Abs(k)
		num := new(big.Int).Exp(a.Num(), e, nil)
		den := new(big.Int).Exp(a.Denom(), e, nil)
		if k.Sign() < 0 {
			num, den = den, num
		}
		return Rational{new(big.Rat).SetFrac(num, den)}, nil
	}
	switch a.Sign() {
	case -1:
		return nil, &DomainError{X: x.String(), Arg: 1}
	case 0:
		if b.Sign() < 0 {
			return nil, &ZeroDivisionError{}
		}
		return Rational{new(big.Rat)}, nil
	}
	z := bigfloat.Pow(env.float(), env.float().SetRat(a), env.float().SetRat(b))
	return env.approxPositive(z)
}

func (env *RationalEnv) round(ctx *Context, args []Number) (Number, error) {
	x, d, err := env.digitsArgs(args)
	if err != nil {
		return nil, err
	}
	s := new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(d)), nil))
	r := new(big.Rat).Mul(x.rat(), s)
	half := big.NewRat(int64(r.Sign()), 2)
	r.SetInt(trunc(r.Add(r, half)))
	return Rational{r.Quo(r, s)}, nil
}

func (env *RationalEnv) decimalFunc(ctx *Context, args []Number) (Number, error) {
	x, d, err := env.digitsArgs(args)
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		d = env.digits
	}
	return String(decimalString(x.rat(), d)), nil
}

// digitsArgs decodes (x) or (x, d) with d a small non-negative integer.
func (env *RationalEnv) digitsArgs(args []Number) (Rational, int, error) {
	x, ok := args[0].(Rational)
	if !ok {
		return Rational{}, 0, typeError("", args...)
	}
	if len(args) == 1 {
		return x, 0, nil
	}
	d, ok := intOf(env, args[1])
	if !ok || d < 0 || d > 10000 {
		return Rational{}, 0, &DomainError{X: args[1].String(), Arg: 2}
	}
	return x, d, nil
}

// ratBase renders x in base b as a string.
func ratBase(x, b Rational) (Number, error) {
	if !b.rat().IsInt() || !b.rat().Num().IsInt64() || b.rat().Num().Int64() < 2 || b.rat().Num().Int64() > 36 {
		return nil, &DomainError{X: b.String(), Arg: 2}
	}
	base := int(b.rat().Num().Int64())
	r := x.rat()
	s := r.Num().Text(base)
	if !r.IsInt() {
		s += "/" + r.Denom().Text(base)
	}
	return String(s), nil
}

func ratGCD(x, y Rational) (Number, error) {
	if !x.rat().IsInt() {
		return nil, &DomainError{X: x.String(), Arg: 1}
	}
	if !y.rat().IsInt() {
		return nil, &DomainError{X: y.String(), Arg: 2}
	}
	a := new(big.Int).Abs(x.rat().Num())
	b := new(big.Int).Abs(y.rat().Num())
	return Rational{new(big.Rat).SetInt(new(big.Int).GCD(nil, nil, a, b))}, nil
}

func ratLCM(x, y Rational) (Number, error) {
	g, err := ratGCD(x, y)
	if err != nil {
		return nil, err
	}
	gi := g.(Rational).rat().Num()
	if gi.Sign() == 0 {
		return Rational{new(big.Rat)}, nil
	}
	p := new(big.Int).Mul(x.rat().Num(), y.rat().Num())
	p.Abs(p)
	return Rational{new(big.Rat).SetInt(p.Quo(p, gi))}, nil
}

func ratExtreme(sign int) func(ctx *Context, args []Number) (Number, error) {
	return func(ctx *Context, args []Number) (Number, error) {
		var r Rational
		for i, a := range args {
			x, ok := a.(Rational)
			if !ok {
				return nil, typeError("", a)
			}
			if i == 0 || x.rat().Cmp(r.rat()) == sign {
				r = x
			}
		}
		return r, nil
	}
}

func floor(r *big.Rat) *big.Int {
	// Euclidean division rounds toward negative infinity for positive
	// divisors, and denominators are always positive.
	return new(big.Int).Div(r.Num(), r.Denom())
}

func ceil(r *big.Rat) *big.Int {
	f := floor(new(big.Rat).Neg(r))
	return f.Neg(f)
}

func trunc(r *big.Rat) *big.Int {
	return new(big.Int).Quo(r.Num(), r.Denom())
}

func isOne(r *big.Rat) bool {
	return r.IsInt() && r.Num().IsInt64() && r.Num().Int64() == 1
}

// powFits reports whether raising a value of the given size in bits to the
// power k stays within maxPowBits.
func powFits(bits int, k *big.Int) bool {
	n := new(big.Int).Abs(k)
	n.Mul(n, big.NewInt(int64(bits)))
	return n.Cmp(big.NewInt(maxPowBits)) <= 0
}

// decimalString renders r with at most digits digits after the point. A
// value that does not terminate within that many digits ends in "...".
func decimalString(r *big.Rat, digits int) string {
	s := r.FloatString(digits)
	scaled := new(big.Rat).Mul(r, new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)))
	exact := scaled.IsInt()
	if exact {
		// FloatString rounds, so only trim when the value terminates.
		if strings.Contains(s, ".") {
			s = strings.TrimRight(s, "0")
			s = strings.TrimSuffix(s, ".")
		}
		return s
	}
	// Truncate rather than round the last digit.
	t := new(big.Int).Quo(scaled.Num(), scaled.Denom())
	neg := t.Sign() < 0 || r.Sign() < 0
	t.Abs(t)
	ds := t.String()
	if len(ds) <= digits {
		ds = strings.Repeat("0", digits-len(ds)+1) + ds
	}
	s = ds[:len(ds)-digits]
	if digits > 0 {
		s += "." + ds[len(ds)-digits:]
	}
	if neg {
		s = "-" + s
	}
	return s + "..."
}

func (env *RationalEnv) Name() string { return "rational" }

func (env *RationalEnv) Parse(text string) (Number, error) {
	r, ok := new(big.Rat).SetString(text)
	if !ok {
		return nil, &LexError{Text: text, Scanning: "number"}
	}
	return Rational{r}, nil
}

func (env *RationalEnv) Format(x Number) string {
	r, ok := x.(Rational)
	if !ok || !env.decimal {
		return x.String()
	}
	return decimalString(r.rat(), env.digits)
}

func (env *RationalEnv) Unary(op string, x Number) (Number, error) {
	a, ok := x.(Rational)
	if !ok {
		return nil, typeError(op, x)
	}
	switch op {
	case "-":
		return Rational{new(big.Rat).Neg(a.rat())}, nil
	case "+":
		return a, nil
	}
	return nil, typeError(op, x)
}

func (env *RationalEnv) Binary(op string, x, y Number) (Number, error) {
	a, ok := x.(Rational)
	b, ok2 := y.(Rational)
	if !ok || !ok2 {
		return nil, typeError(op, x, y)
	}
	switch op {
	case "+":
		return Rational{new(big.Rat).Add(a.rat(), b.rat())}, nil
	case "-":
		return Rational{new(big.Rat).Sub(a.rat(), b.rat())}, nil
	case "*":
		return Rational{new(big.Rat).Mul(a.rat(), b.rat())}, nil
	case "/":
		if b.rat().Sign() == 0 {
			return nil, &ZeroDivisionError{}
		}
		return Rational{new(big.Rat).Quo(a.rat(), b.rat())}, nil
	case "^":
		return env.pow(a, b)
	}
	if r, ok := compare(op, a.rat().Cmp(b.rat())); ok {
		return r, nil
	}
	return nil, typeError(op, x, y)
}

func (env *RationalEnv) Truth(x Number) (bool, error) {
	a, ok := x.(Rational)
	if !ok {
		return false, typeError("condition", x)
	}
	return a.rat().Sign() != 0, nil
}

func (env *RationalEnv) Index(x Number, idx []Number) (Number, error) {
	return nil, typeError("[]", x)
}

func (env *RationalEnv) Compose(rows [][]Number) (Number, error) {
	return nil, noCompose(env)
}

func (env *RationalEnv) FromInt(n int64) Number { return Rational{big.NewRat(n, 1)} }

func (env *RationalEnv) Scalar(x Number) (scalar.Scalar, error) {
	a, ok := x.(Rational)
	if !ok {
		return scalar.Scalar{}, typeError("", x)
	}
	return scalar.Rat(a.rat()), nil
}

func (env *RationalEnv) FromScalar(s scalar.Scalar) (Number, error) {
	r, ok := s.Rat()
	if !ok {
		return nil, &DomainError{Reason: "symbolic value " + s.String() + " has no rational value"}
	}
	return Rational{r}, nil
}
