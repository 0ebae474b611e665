package ga

import (
	"math"
	"testing"

	"github.com/spencerparkin/GAVisTool-sub000/scalar"
)

func TestBladeNames(t *testing.T) {
	a := Euclidean(3)
	cases := []struct {
		mask uint32
		want string
	}{
		{0, ""},
		{1, "e1"},
		{3, "e1^e2"},
		{5, "e1^e3"},
		{7, "e1^e2^e3"},
	}
	for _, c := range cases {
		if got := a.BladeName(c.mask); got != c.want {
			t.Errorf("mask %b: want %q, got %q", c.mask, c.want, got)
		}
	}
}

func TestProducts(t *testing.T) {
	a := Euclidean(3)
	e1, e2, e3 := a.Basis(0), a.Basis(1), a.Basis(2)
	two := a.Scalar(scalar.Int(2))
	cases := []struct {
		name string
		got  Multivector
		want string
	}{
		{"e1e1", e1.Mul(e1), "1"},
		{"e1e2", e1.Mul(e2), "e1^e2"},
		{"e2e1", e2.Mul(e1), "-e1^e2"},
		{"e3e1", e3.Mul(e1), "-e1^e3"},
		{"e123", e1.Mul(e2).Mul(e3), "e1^e2^e3"},
		{"outer", e1.Outer(e2), "e1^e2"},
		{"outer-self", e1.Outer(e1), "0"},
		{"contract", e1.LeftContraction(e1.Mul(e2)), "e2"},
		{"contract-high", e1.Mul(e2).LeftContraction(e1), "0"},
		{"right", e1.Mul(e2).RightContraction(e2), "e1"},
		{"sum", two.Add(e1).Sub(e2.Mul(e1)), "2 + e1 + e1^e2"},
		{"scale", e1.Scale(scalar.Int(-3)), "-3*e1"},
		{"mixed", e1.Add(e2).Mul(e1.Sub(e2)), "-2*e1^e2"},
		{"reverse", e1.Mul(e2).Add(two).Reverse(), "2 - e1^e2"},
		{"involute", e1.Add(two).Involute(), "2 - e1"},
		{"conjugate", e1.Add(e1.Mul(e2)).Conjugate(), "-e1 - e1^e2"},
		{"grade", two.Add(e1).Add(e1.Mul(e2)).Grade(1), "e1"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if s := c.got.String(); s != c.want {
				t.Errorf("want %s, got %s", c.want, s)
			}
		})
	}
}

func TestAnticommute(t *testing.T) {
	a := Euclidean(4)
	for i := 0; i < a.Dim(); i++ {
		for j := 0; j < a.Dim(); j++ {
			if i == j {
				continue
			}
			x, y := a.Basis(i), a.Basis(j)
			if !x.Mul(y).Equal(y.Mul(x).Neg()) {
				t.Errorf("%v %v does not anticommute", x, y)
			}
		}
	}
}

func TestCanonicalOrder(t *testing.T) {
	a := Euclidean(3)
	b := []Blade{
		{Mask: 4, Coeff: scalar.Int(1)},
		{Mask: 1, Coeff: scalar.Int(2)},
		{Mask: 4, Coeff: scalar.Int(-1)},
		{Mask: 0, Coeff: scalar.Int(5)},
	}
	x := a.Multivector(b...)
	y := a.Multivector(b[3], b[2], b[1], b[0])
	if !x.Equal(y) {
		t.Errorf("%v != %v", x, y)
	}
	if got := x.String(); got != "5 + 2*e1" {
		t.Errorf("want 5 + 2*e1, got %s", got)
	}
	if len(x.Terms()) != 2 {
		t.Errorf("zero term kept: %v", x.Terms())
	}
}

func TestSignature(t *testing.T) {
	a := Conformal()
	e4, e5 := a.Basis(3), a.Basis(4)
	if got := e4.Mul(e4).String(); got != "1" {
		t.Errorf("e4^2 = %s", got)
	}
	if got := e5.Mul(e5).String(); got != "-1" {
		t.Errorf("e5^2 = %s", got)
	}
	z, err := New("null", []string{"n"}, []int8{0})
	if err != nil {
		t.Fatal(err)
	}
	n := z.Basis(0)
	if !n.Mul(n).IsZero() {
		t.Errorf("null vector squares to %v", n.Mul(n))
	}
	if _, err := n.Inverse(); err != ErrNotInvertible {
		t.Errorf("null vector inverse gave %v", err)
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New("bad", []string{"a", "a"}, []int8{1, 1}); err == nil {
		t.Error("duplicate names accepted")
	}
	if _, err := New("bad", []string{"a"}, []int8{2}); err == nil {
		t.Error("square 2 accepted")
	}
	if _, err := New("bad", []string{"a"}, nil); err == nil {
		t.Error("mismatched lengths accepted")
	}
}

func TestInverse(t *testing.T) {
	a := Euclidean(3)
	e1, e2, e3 := a.Basis(0), a.Basis(1), a.Basis(2)
	one := a.Scalar(scalar.Int(1))
	cases := []struct {
		name string
		x    Multivector
	}{
		{"vector", e1.Scale(scalar.Int(2))},
		{"bivector", e1.Mul(e2)},
		{"versor", e1.Add(e2).Mul(e2.Add(e3))},
		{"general", one.Add(e1).Add(e1.Mul(e2).Mul(e3).Scale(scalar.Int(3)))},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			inv, err := c.x.Inverse()
			if err != nil {
				t.Fatal(err)
			}
			if p := c.x.Mul(inv); !p.Equal(one) {
				t.Errorf("x * inverse(x) = %v", p)
			}
			if p := inv.Mul(c.x); !p.Equal(one) {
				t.Errorf("inverse(x) * x = %v", p)
			}
		})
	}
	if got, _ := e1.Scale(scalar.Int(2)).Inverse(); got.String() != "1/2*e1" {
		t.Errorf("inverse of 2e1 = %v", got)
	}
	// (1 + e1)(1 - e1) = 0
	if _, err := one.Add(e1).Inverse(); err != ErrNotInvertible {
		t.Errorf("1 + e1 inverse gave %v", err)
	}
	if _, err := a.Zero().Inverse(); err != ErrNotInvertible {
		t.Errorf("0 inverse gave %v", err)
	}
}

func TestDual(t *testing.T) {
	a := Euclidean(3)
	e1, e2, e3 := a.Basis(0), a.Basis(1), a.Basis(2)
	d, err := e3.Dual()
	if err != nil {
		t.Fatal(err)
	}
	// e3 (e1 e2 e3)⁻¹ = e3 (-e1 e2 e3) = -e1 e2
	if !d.Equal(e1.Mul(e2).Neg()) {
		t.Errorf("dual of e3 = %v", d)
	}
}

func TestNorm(t *testing.T) {
	a := Euclidean(3)
	v, err := a.Vector(scalar.Int(3), scalar.Int(4))
	if err != nil {
		t.Fatal(err)
	}
	if got := v.Norm2().String(); got != "25" {
		t.Errorf("norm2 = %s", got)
	}
	n, err := v.Norm()
	if err != nil || n != 5 {
		t.Errorf("norm = %v, %v", n, err)
	}
	if _, err := a.Vector(scalar.Int(1), scalar.Int(1), scalar.Int(1), scalar.Int(1)); err == nil {
		t.Error("oversized vector accepted")
	}
}

func TestSymbolicCoefficients(t *testing.T) {
	a := Euclidean(2)
	x := a.Basis(0).Scale(scalar.Symbol("x"))
	y := a.Basis(1).Scale(scalar.Symbol("y"))
	if got := x.Add(y).String(); got != "x*e1 + y*e2" {
		t.Errorf("got %s", got)
	}
	if got := x.Mul(x).String(); got != "x*x" {
		t.Errorf("got %s", got)
	}
}

func approx(t *testing.T, x Multivector, want map[uint32]float64) {
	t.Helper()
	got := make(map[uint32]float64)
	for _, b := range x.Terms() {
		f, ok := b.Coeff.Float64()
		if !ok {
			t.Fatalf("symbolic coefficient %v", b.Coeff)
		}
		got[b.Mask] = f
	}
	for m := uint32(0); m < 1<<x.Algebra().Dim(); m++ {
		if math.Abs(got[m]-want[m]) > 1e-12 {
			t.Errorf("coefficient of %q: want %g, got %g", x.Algebra().BladeName(m), want[m], got[m])
		}
	}
}

func TestExp(t *testing.T) {
	a := Euclidean(2)
	b := a.Basis(0).Mul(a.Basis(1))
	k, _ := scalar.Float(math.Pi / 2)
	r, err := b.Scale(k).Exp()
	if err != nil {
		t.Fatal(err)
	}
	approx(t, r, map[uint32]float64{3: 1})
	if _, err := a.Basis(0).Add(b).Exp(); err != nil {
		t.Errorf("e1 + e1^e2 squares to a scalar, got %v", err)
	}
	if _, err := a.Scalar(scalar.Int(1)).Add(a.Basis(0)).Exp(); err != ErrNoClosedForm {
		t.Errorf("want ErrNoClosedForm, got %v", err)
	}
}

func TestVersor(t *testing.T) {
	a := Euclidean(3)
	e1, e2, e3 := a.Basis(0), a.Basis(1), a.Basis(2)
	r, err := NewVersor(e1)
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Apply(e1); !got.Equal(e1.Neg()) {
		t.Errorf("reflect e1 in e1 = %v", got)
	}
	if got := r.Apply(e2); !got.Equal(e2) {
		t.Errorf("reflect e2 in e1 = %v", got)
	}
	two, err := NewVersor(e1, e1.Add(e2))
	if err != nil {
		t.Fatal(err)
	}
	if got := two.Apply(e3); !got.Equal(e3) {
		t.Errorf("rotation moved the axis: %v", got)
	}
	if _, err := NewVersor(e1.Mul(e2)); err != ErrNotVector {
		t.Errorf("want ErrNotVector, got %v", err)
	}
}

func TestRotor(t *testing.T) {
	a := Euclidean(3)
	e1, e2, e3 := a.Basis(0), a.Basis(1), a.Basis(2)
	r, err := Rotor(e1.Mul(e2), math.Pi/2)
	if err != nil {
		t.Fatal(err)
	}
	approx(t, r.Apply(e1), map[uint32]float64{2: 1})
	approx(t, r.Apply(e3), map[uint32]float64{4: 1})
	if _, err := Rotor(e1, 1); err == nil {
		t.Error("rotor in a vector accepted")
	}
}
