package ga

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/spencerparkin/GAVisTool-sub000/linalg"
	"github.com/spencerparkin/GAVisTool-sub000/scalar"
)

var (
	// ErrNotInvertible is returned when a multivector has no inverse.
	ErrNotInvertible = errors.New("ga: multivector is not invertible")
	// ErrNotNumeric is returned when an operation needs numeric coefficients
	// but a multivector has symbolic ones.
	ErrNotNumeric = errors.New("ga: symbolic coefficients")
	// ErrNoClosedForm is returned by Exp when the argument does not square to
	// a scalar.
	ErrNoClosedForm = errors.New("ga: exponential has no closed form")
)

// Multivector is a canonical sum of blades: terms are sorted by mask, masks
// are unique, and no coefficient is zero. Two equal multivectors therefore
// always have identical terms.
type Multivector struct {
	alg   *Algebra
	terms []Blade
}

// canonical sorts, merges, and drops zero terms in place.
func canonical(v []Blade) []Blade {
	sort.SliceStable(v, func(i, j int) bool { return v[i].Mask < v[j].Mask })
	out := v[:0]
	for _, b := range v {
		if n := len(out); n > 0 && out[n-1].Mask == b.Mask {
			out[n-1].Coeff = out[n-1].Coeff.Add(b.Coeff)
			continue
		}
		out = append(out, b)
	}
	r := out[:0]
	for _, b := range out {
		if !b.Coeff.IsZero() {
			r = append(r, b)
		}
	}
	if len(r) == 0 {
		return nil
	}
	return r
}

// Algebra returns the algebra of x.
func (x Multivector) Algebra() *Algebra { return x.alg }

// Terms returns a copy of the canonical terms of x.
func (x Multivector) Terms() []Blade {
	return append([]Blade(nil), x.terms...)
}

func (x Multivector) with(terms []Blade) Multivector {
	return Multivector{alg: x.alg, terms: canonical(terms)}
}

func (x Multivector) same(y Multivector) {
	if x.alg != y.alg {
		panic("ga: multivectors from different algebras")
	}
}

// Add returns x + y.
func (x Multivector) Add(y Multivector) Multivector {
	x.same(y)
	v := make([]Blade, 0, len(x.terms)+len(y.terms))
	v = append(v, x.terms...)
	v = append(v, y.terms...)
	return x.with(v)
}

// Sub returns x - y.
func (x Multivector) Sub(y Multivector) Multivector {
	return x.Add(y.Neg())
}

// Scale returns s x.
func (x Multivector) Scale(s scalar.Scalar) Multivector {
	v := make([]Blade, len(x.terms))
	for i, b := range x.terms {
		v[i] = Blade{Mask: b.Mask, Coeff: s.Mul(b.Coeff)}
	}
	return x.with(v)
}

// Neg returns -x.
func (x Multivector) Neg() Multivector {
	return x.Scale(scalar.Int(-1))
}

// mul distributes a blade product over the terms of x and y, keeping only the
// pairs of masks accepted by keep.
func (x Multivector) mul(y Multivector, keep func(a, b uint32) bool) Multivector {
	x.same(y)
	v := make([]Blade, 0, len(x.terms)*len(y.terms))
	for _, a := range x.terms {
		for _, b := range y.terms {
			if keep != nil && !keep(a.Mask, b.Mask) {
				continue
			}
			v = append(v, x.alg.product(a, b))
		}
	}
	return x.with(v)
}

// Mul returns the geometric product x y. Operand order is significant.
func (x Multivector) Mul(y Multivector) Multivector {
	return x.mul(y, nil)
}

// Outer returns the outer product x ∧ y.
func (x Multivector) Outer(y Multivector) Multivector {
	return x.mul(y, func(a, b uint32) bool { return a&b == 0 })
}

// LeftContraction returns x ⌋ y.
func (x Multivector) LeftContraction(y Multivector) Multivector {
	return x.mul(y, func(a, b uint32) bool { return a&^b == 0 })
}

// RightContraction returns x ⌊ y.
func (x Multivector) RightContraction(y Multivector) Multivector {
	return x.mul(y, func(a, b uint32) bool { return b&^a == 0 })
}

// ScalarProduct returns the grade-0 part of x y.
func (x Multivector) ScalarProduct(y Multivector) scalar.Scalar {
	return x.mul(y, func(a, b uint32) bool { return a == b }).ScalarPart()
}

// gradeSign applies a per-grade sign to every term.
func (x Multivector) gradeSign(neg func(k int) bool) Multivector {
	v := make([]Blade, len(x.terms))
	for i, b := range x.terms {
		v[i] = b
		if neg(b.Grade()) {
			v[i].Coeff = b.Coeff.Neg()
		}
	}
	return x.with(v)
}

// Reverse returns the reversion of x, which reverses the order of the vectors
// in every blade.
func (x Multivector) Reverse() Multivector {
	return x.gradeSign(func(k int) bool { return k*(k-1)/2%2 == 1 })
}

// Involute returns the grade involution of x, which negates odd grades.
func (x Multivector) Involute() Multivector {
	return x.gradeSign(func(k int) bool { return k%2 == 1 })
}

// Conjugate returns the Clifford conjugate of x.
func (x Multivector) Conjugate() Multivector {
	return x.gradeSign(func(k int) bool { return k*(k+1)/2%2 == 1 })
}

// Grade returns the grade-k part of x.
func (x Multivector) Grade(k int) Multivector {
	var v []Blade
	for _, b := range x.terms {
		if b.Grade() == k {
			v = append(v, b)
		}
	}
	return Multivector{alg: x.alg, terms: v}
}

// Grades returns the sorted list of grades present in x.
func (x Multivector) Grades() []int {
	var seen [MaxDim + 1]bool
	for _, b := range x.terms {
		seen[b.Grade()] = true
	}
	var r []int
	for k, ok := range seen {
		if ok {
			r = append(r, k)
		}
	}
	return r
}

// ScalarPart returns the grade-0 coefficient of x.
func (x Multivector) ScalarPart() scalar.Scalar {
	if len(x.terms) > 0 && x.terms[0].Mask == 0 {
		return x.terms[0].Coeff
	}
	return scalar.Scalar{}
}

// IsZero reports whether x is zero.
func (x Multivector) IsZero() bool {
	return len(x.terms) == 0
}

// IsScalar reports whether x has no terms of grade above zero.
func (x Multivector) IsScalar() bool {
	return len(x.terms) == 0 || len(x.terms) == 1 && x.terms[0].Mask == 0
}

// Equal reports whether x and y are the same element.
func (x Multivector) Equal(y Multivector) bool {
	if x.alg != y.alg || len(x.terms) != len(y.terms) {
		return false
	}
	for i, b := range x.terms {
		c := y.terms[i]
		if b.Mask != c.Mask || !b.Coeff.Equal(c.Coeff) {
			return false
		}
	}
	return true
}

// Norm2 returns the scalar part of x ~x.
func (x Multivector) Norm2() scalar.Scalar {
	return x.ScalarProduct(x.Reverse())
}

// Norm returns the square root of the magnitude of Norm2.
func (x Multivector) Norm() (float64, error) {
	n, ok := x.Norm2().Float64()
	if !ok {
		return 0, ErrNotNumeric
	}
	return math.Sqrt(math.Abs(n)), nil
}

// Inverse returns y such that x y = 1. Versors and blades are inverted as
// ~x / (x ~x); other multivectors are inverted by solving the linear system
// of left multiplication by x.
func (x Multivector) Inverse() (Multivector, error) {
	r := x.Reverse()
	if s := x.Mul(r); s.IsScalar() {
		d := s.ScalarPart()
		if d.IsZero() {
			return Multivector{}, ErrNotInvertible
		}
		inv, err := d.Inv()
		if err != nil {
			return Multivector{}, ErrNotInvertible
		}
		return r.Scale(inv), nil
	}
	n := 1 << x.alg.Dim()
	m := linalg.New(n, n)
	for j := 0; j < n; j++ {
		col := x.Mul(x.alg.Blade(uint32(j), scalar.Int(1)))
		for _, b := range col.terms {
			m.Set(int(b.Mask), j, b.Coeff)
		}
	}
	one := linalg.New(n, 1)
	one.Set(0, 0, scalar.Int(1))
	sol, err := m.Solve(one)
	if err != nil {
		if errors.Is(err, linalg.ErrSingular) {
			return Multivector{}, ErrNotInvertible
		}
		return Multivector{}, err
	}
	v := make([]Blade, n)
	for i := range v {
		v[i] = Blade{Mask: uint32(i), Coeff: sol.At(i, 0)}
	}
	return x.with(v), nil
}

// Div returns x y⁻¹.
func (x Multivector) Div(y Multivector) (Multivector, error) {
	inv, err := y.Inverse()
	if err != nil {
		return Multivector{}, err
	}
	return x.Mul(inv), nil
}

// Dual returns x I⁻¹, where I is the unit pseudoscalar. Algebras with a null
// basis vector have no dual.
func (x Multivector) Dual() (Multivector, error) {
	inv, err := x.alg.Pseudoscalar().Inverse()
	if err != nil {
		return Multivector{}, err
	}
	return x.Mul(inv), nil
}

// Exp returns the exponential of x when x² is a scalar, in closed form.
func (x Multivector) Exp() (Multivector, error) {
	sq := x.Mul(x)
	if !sq.IsScalar() {
		return Multivector{}, ErrNoClosedForm
	}
	s, ok := sq.ScalarPart().Float64()
	if !ok {
		return Multivector{}, ErrNotNumeric
	}
	var c, k float64
	switch theta := math.Sqrt(math.Abs(s)); {
	case s < 0:
		c, k = math.Cos(theta), math.Sin(theta)/theta
	case s > 0:
		c, k = math.Cosh(theta), math.Sinh(theta)/theta
	default:
		c, k = 1, 1
	}
	cs, ok1 := scalar.Float(c)
	ks, ok2 := scalar.Float(k)
	if !ok1 || !ok2 {
		return Multivector{}, ErrNotNumeric
	}
	return x.alg.Scalar(cs).Add(x.Scale(ks)), nil
}

// String renders x as a sum of terms in canonical order, e.g. "1 + 2*e1 - e1^e2".
func (x Multivector) String() string {
	if len(x.terms) == 0 {
		return "0"
	}
	var b strings.Builder
	for i, t := range x.terms {
		c := t.Coeff
		neg := c.Negative()
		if neg {
			c = c.Neg()
		}
		switch {
		case i == 0 && neg:
			b.WriteByte('-')
		case i > 0 && neg:
			b.WriteString(" - ")
		case i > 0:
			b.WriteString(" + ")
		}
		name := x.alg.BladeName(t.Mask)
		switch {
		case name == "":
			b.WriteString(c.Factor())
		case c.IsOne():
			b.WriteString(name)
		default:
			b.WriteString(c.Factor())
			b.WriteByte('*')
			b.WriteString(name)
		}
	}
	return b.String()
}
