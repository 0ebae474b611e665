package ga

import (
	"errors"
	"math"

	"github.com/spencerparkin/GAVisTool-sub000/scalar"
)

// ErrNotVector is returned when a versor factor is not a vector.
var ErrNotVector = errors.New("ga: versor factor is not a vector")

// Versor is an invertible product of vectors. Applying a versor to an element
// reflects or rotates it.
type Versor struct {
	v   Multivector
	inv Multivector
	odd bool
}

// NewVersor creates the versor v1 v2 ... vn from the given vectors.
func NewVersor(vectors ...Multivector) (Versor, error) {
	if len(vectors) == 0 {
		return Versor{}, errors.New("ga: empty versor")
	}
	v := vectors[0].alg.Scalar(scalar.Int(1))
	for _, f := range vectors {
		for _, k := range f.Grades() {
			if k != 1 {
				return Versor{}, ErrNotVector
			}
		}
		v = v.Mul(f)
	}
	inv, err := v.Inverse()
	if err != nil {
		return Versor{}, err
	}
	return Versor{v: v, inv: inv, odd: len(vectors)%2 == 1}, nil
}

// Rotor creates the rotor which rotates by angle radians in the plane of the
// 2-blade b, in the sense that takes the first factor of b toward the second.
func Rotor(b Multivector, angle float64) (Versor, error) {
	for _, k := range b.Grades() {
		if k != 2 {
			return Versor{}, errors.New("ga: rotor plane is not a bivector")
		}
	}
	sq := b.Mul(b)
	if !sq.IsScalar() {
		return Versor{}, errors.New("ga: rotor plane is not a blade")
	}
	s, ok := sq.ScalarPart().Float64()
	if !ok {
		return Versor{}, ErrNotNumeric
	}
	if s >= 0 {
		return Versor{}, errors.New("ga: rotor plane does not square to a negative scalar")
	}
	k, ok := scalar.Float(-angle / 2 / math.Sqrt(-s))
	if !ok {
		return Versor{}, ErrNotNumeric
	}
	r, err := b.Scale(k).Exp()
	if err != nil {
		return Versor{}, err
	}
	return Versor{v: r, inv: r.Reverse()}, nil
}

// Multivector returns the versor as a multivector.
func (v Versor) Multivector() Multivector { return v.v }

// Apply returns the sandwich product V x̂ V⁻¹, where x̂ is the grade involution
// of x for odd versors and x itself otherwise.
func (v Versor) Apply(x Multivector) Multivector {
	if v.odd {
		x = x.Involute()
	}
	return v.v.Mul(x).Mul(v.inv)
}
