// Package ga implements geometric algebras over diagonal metrics. Elements are
// sums of basis blades with exact or symbolic scalar coefficients.
package ga

import (
	"errors"
	"math/bits"
	"strconv"
	"strings"

	"github.com/spencerparkin/GAVisTool-sub000/scalar"
)

// MaxDim is the largest supported number of basis vectors.
const MaxDim = 16

// Algebra is a geometric algebra with a diagonal signature. Each basis vector
// squares to +1, -1, or 0.
type Algebra struct {
	name    string
	names   []string
	squares []int8
}

// New creates an algebra with the given basis vector names and squares.
func New(name string, names []string, squares []int8) (*Algebra, error) {
	if len(names) != len(squares) {
		return nil, errors.New("ga: " + strconv.Itoa(len(names)) + " names for " + strconv.Itoa(len(squares)) + " basis vectors")
	}
	if len(names) > MaxDim {
		return nil, errors.New("ga: too many basis vectors")
	}
	seen := make(map[string]bool, len(names))
	for i, s := range squares {
		if s < -1 || s > 1 {
			return nil, errors.New("ga: basis vector " + names[i] + " squares to " + strconv.Itoa(int(s)))
		}
		if names[i] == "" || seen[names[i]] {
			return nil, errors.New("ga: invalid or duplicate basis name " + strconv.Quote(names[i]))
		}
		seen[names[i]] = true
	}
	return &Algebra{
		name:    name,
		names:   append([]string(nil), names...),
		squares: append([]int8(nil), squares...),
	}, nil
}

func must(a *Algebra, err error) *Algebra {
	if err != nil {
		panic(err)
	}
	return a
}

// Euclidean creates the n-dimensional Euclidean algebra with basis e1..en.
func Euclidean(n int) *Algebra {
	names := make([]string, n)
	squares := make([]int8, n)
	for i := range names {
		names[i] = "e" + strconv.Itoa(i+1)
		squares[i] = 1
	}
	return must(New("euclidean"+strconv.Itoa(n), names, squares))
}

// Conformal creates the conformal model of 3D Euclidean space. The basis is
// e1, e2, e3, e4, e5 with e4² = 1 and e5² = -1.
func Conformal() *Algebra {
	return must(New("conformal", []string{"e1", "e2", "e3", "e4", "e5"}, []int8{1, 1, 1, 1, -1}))
}

// Spacetime creates the spacetime algebra with signature (+, -, -, -) and
// basis g0..g3.
func Spacetime() *Algebra {
	return must(New("spacetime", []string{"g0", "g1", "g2", "g3"}, []int8{1, -1, -1, -1}))
}

// Name returns the name of the algebra.
func (a *Algebra) Name() string { return a.name }

// Dim returns the number of basis vectors.
func (a *Algebra) Dim() int { return len(a.names) }

// BasisName returns the name of basis vector i.
func (a *Algebra) BasisName(i int) string { return a.names[i] }

// Square returns the square of basis vector i.
func (a *Algebra) Square(i int) int { return int(a.squares[i]) }

// BladeName renders a basis blade mask as its outer product of basis names.
// The scalar blade renders as the empty string.
func (a *Algebra) BladeName(mask uint32) string {
	var b strings.Builder
	for i := range a.names {
		if mask&(1<<i) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('^')
		}
		b.WriteString(a.names[i])
	}
	return b.String()
}

// Basis returns basis vector i.
func (a *Algebra) Basis(i int) Multivector {
	return a.Blade(1<<i, scalar.Int(1))
}

// Pseudoscalar returns the unit blade of highest grade.
func (a *Algebra) Pseudoscalar() Multivector {
	return a.Blade(1<<len(a.names)-1, scalar.Int(1))
}

// Blade returns the single-term multivector c * mask.
func (a *Algebra) Blade(mask uint32, c scalar.Scalar) Multivector {
	return a.Multivector(Blade{Mask: mask, Coeff: c})
}

// Scalar returns the grade-0 multivector s.
func (a *Algebra) Scalar(s scalar.Scalar) Multivector {
	return a.Blade(0, s)
}

// Zero returns the zero multivector.
func (a *Algebra) Zero() Multivector {
	return Multivector{alg: a}
}

// Vector returns the vector with the given coefficients on e1, e2, ...
func (a *Algebra) Vector(coeffs ...scalar.Scalar) (Multivector, error) {
	if len(coeffs) > len(a.names) {
		return Multivector{}, errors.New("ga: " + strconv.Itoa(len(coeffs)) + " coefficients for a " + strconv.Itoa(len(a.names)) + "-dimensional vector")
	}
	terms := make([]Blade, len(coeffs))
	for i, c := range coeffs {
		terms[i] = Blade{Mask: 1 << i, Coeff: c}
	}
	return a.Multivector(terms...), nil
}

// Multivector returns the canonical sum of the given blades.
func (a *Algebra) Multivector(terms ...Blade) Multivector {
	for _, t := range terms {
		if t.Mask >= 1<<len(a.names) {
			panic("ga: blade outside algebra")
		}
	}
	v := make([]Blade, len(terms))
	copy(v, terms)
	return Multivector{alg: a, terms: canonical(v)}
}

// Blade is a weighted basis blade. Bit i of Mask is set when basis vector i
// participates.
type Blade struct {
	Mask  uint32
	Coeff scalar.Scalar
}

// Grade returns the number of basis vectors in the blade.
func (b Blade) Grade() int {
	return bits.OnesCount32(b.Mask)
}

// reorderSign returns the sign produced by sorting the concatenation of the
// basis vectors of a and b into canonical order.
func reorderSign(a, b uint32) int {
	a >>= 1
	n := 0
	for a != 0 {
		n += bits.OnesCount32(a & b)
		a >>= 1
	}
	if n&1 == 0 {
		return 1
	}
	return -1
}

// product multiplies two basis blades geometrically. The result is zero when
// a shared basis vector is null.
func (a *Algebra) product(x, y Blade) Blade {
	sign := reorderSign(x.Mask, y.Mask)
	common := x.Mask & y.Mask
	for i := 0; common != 0; i++ {
		if common&1 != 0 {
			sign *= int(a.squares[i])
		}
		common >>= 1
	}
	c := x.Coeff.Mul(y.Coeff)
	switch sign {
	case 0:
		c = scalar.Scalar{}
	case -1:
		c = c.Neg()
	}
	return Blade{Mask: x.Mask ^ y.Mask, Coeff: c}
}
