// Package scalar implements the scalar algebra used as coefficients by the
// linear and geometric algebra packages. Scalars are exact rationals or
// symbolic expressions over named symbols.
package scalar

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/njchilds90/gosymbol"
)

// ErrDivideByZero is returned when dividing by a numeric zero.
var ErrDivideByZero = errors.New("scalar: division by zero")

// Scalar is an exact rational or symbolic scalar. The zero value is 0.
type Scalar struct {
	e gosymbol.Expr
}

// Int returns the scalar n.
func Int(n int64) Scalar {
	return Scalar{gosymbol.N(n)}
}

// Rat returns the scalar r exactly, regardless of the size of r.
func Rat(r *big.Rat) Scalar {
	if r.IsInt() {
		return Scalar{bigint(r.Num())}
	}
	return Scalar{gosymbol.MulOf(bigint(r.Num()), gosymbol.PowOf(bigint(r.Denom()), gosymbol.N(-1)))}
}

// Float returns the exact binary value of f. Non-finite values have no
// rational representation and produce ok = false.
func Float(f float64) (s Scalar, ok bool) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return Scalar{}, false
	}
	return Scalar{gosymbol.NFloat(f)}, true
}

// Symbol returns a free symbol.
func Symbol(name string) Scalar {
	return Scalar{gosymbol.S(name)}
}

// FromExpr wraps a gosymbol expression.
func FromExpr(e gosymbol.Expr) Scalar {
	return Scalar{e.Simplify()}
}

var twoPow32 = big.NewInt(1 << 32)

// bigint builds an exact gosymbol number from an integer of any size. gosymbol
// only constructs numbers from int64, so larger values are assembled in base
// 2^32.
func bigint(x *big.Int) gosymbol.Expr {
	if x.IsInt64() {
		return gosymbol.N(x.Int64())
	}
	hi, lo := new(big.Int).QuoRem(x, twoPow32, new(big.Int))
	return gosymbol.AddOf(gosymbol.MulOf(bigint(hi), gosymbol.N(1<<32)), gosymbol.N(lo.Int64()))
}

// Expr returns the underlying gosymbol expression.
func (s Scalar) Expr() gosymbol.Expr {
	if s.e == nil {
		return gosymbol.N(0)
	}
	return s.e
}

func (s Scalar) num() (*gosymbol.Num, bool) {
	n, ok := s.Expr().(*gosymbol.Num)
	return n, ok
}

// Add returns s + t.
func (s Scalar) Add(t Scalar) Scalar {
	return Scalar{gosymbol.AddOf(s.Expr(), t.Expr())}
}

// Sub returns s - t.
func (s Scalar) Sub(t Scalar) Scalar {
	return Scalar{gosymbol.AddOf(s.Expr(), gosymbol.MulOf(gosymbol.N(-1), t.Expr()))}
}

// Mul returns s * t.
func (s Scalar) Mul(t Scalar) Scalar {
	return Scalar{gosymbol.MulOf(s.Expr(), t.Expr())}
}

// Neg returns -s.
func (s Scalar) Neg() Scalar {
	return Scalar{gosymbol.MulOf(gosymbol.N(-1), s.Expr())}
}

// Quo returns s / t.
func (s Scalar) Quo(t Scalar) (Scalar, error) {
	if t.IsZero() {
		return Scalar{}, ErrDivideByZero
	}
	return Scalar{gosymbol.MulOf(s.Expr(), gosymbol.PowOf(t.Expr(), gosymbol.N(-1)))}, nil
}

// Inv returns 1 / s.
func (s Scalar) Inv() (Scalar, error) {
	return Int(1).Quo(s)
}

// IsZero reports whether s is the number zero.
func (s Scalar) IsZero() bool {
	n, ok := s.num()
	return ok && n.IsZero()
}

// IsOne reports whether s is the number one.
func (s Scalar) IsOne() bool {
	n, ok := s.num()
	return ok && n.IsOne()
}

// IsNumeric reports whether s is a number with no free symbols.
func (s Scalar) IsNumeric() bool {
	_, ok := s.num()
	return ok
}

// Rat returns the exact value of a numeric scalar.
func (s Scalar) Rat() (*big.Rat, bool) {
	n, ok := s.num()
	if !ok {
		return nil, false
	}
	return n.Rat(), true
}

// Float64 returns the nearest float64 to a numeric scalar.
func (s Scalar) Float64() (float64, bool) {
	r, ok := s.Rat()
	if !ok {
		return 0, false
	}
	f, _ := r.Float64()
	return f, true
}

// Sign returns the sign of a numeric scalar.
func (s Scalar) Sign() (int, bool) {
	r, ok := s.Rat()
	if !ok {
		return 0, false
	}
	return r.Sign(), true
}

// Equal reports whether s and t are structurally equal after simplification.
// Numeric scalars compare by value.
func (s Scalar) Equal(t Scalar) bool {
	return s.Expr().Equal(t.Expr())
}

// Eval evaluates s numerically. It fails if free symbols remain.
func (s Scalar) Eval() (Scalar, bool) {
	n, ok := s.Expr().Eval()
	if !ok {
		return Scalar{}, false
	}
	return Scalar{n}, true
}

// Diff differentiates s with respect to the named symbol.
func (s Scalar) Diff(name string) Scalar {
	return Scalar{gosymbol.Diff(s.Expr(), name)}
}

// Substitute replaces the named symbol with v.
func (s Scalar) Substitute(name string, v Scalar) Scalar {
	return Scalar{gosymbol.Sub(s.Expr(), name, v.Expr())}
}

// Taylor expands s around name = at up to and including the given order.
func (s Scalar) Taylor(name string, at Scalar, order int) Scalar {
	return Scalar{gosymbol.TaylorSeries(s.Expr(), name, at.Expr(), order)}
}

// maxDenom is the largest denominator rendered as a fraction. Larger
// denominators come from binary floating point values and are rendered as
// decimals.
var maxDenom = big.NewInt(1000000)

// String renders s deterministically.
func (s Scalar) String() string {
	r, ok := s.Rat()
	if !ok {
		return s.Expr().String()
	}
	if r.IsInt() {
		return r.Num().String()
	}
	if r.Denom().Cmp(maxDenom) <= 0 {
		return r.RatString()
	}
	f, _ := r.Float64()
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Factor renders s for use as a factor in a product, parenthesizing sums.
func (s Scalar) Factor() string {
	t := s.String()
	if _, ok := s.Expr().(*gosymbol.Add); ok {
		return "(" + t + ")"
	}
	return t
}

// Negative reports whether s renders with a leading minus sign. For numbers
// this is the sign; symbolic products are negative when their numeric
// coefficient is.
func (s Scalar) Negative() bool {
	if sg, ok := s.Sign(); ok {
		return sg < 0
	}
	return strings.HasPrefix(s.String(), "-")
}
