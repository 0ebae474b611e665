package scalar

import (
	"math/big"
	"testing"
)

func rat(s string) *big.Rat {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		panic("bad rational " + s)
	}
	return r
}

func TestArithmetic(t *testing.T) {
	third := Rat(rat("1/3"))
	sixth := Rat(rat("1/6"))
	cases := []struct {
		name string
		got  Scalar
		want string
	}{
		{"add", third.Add(sixth), "1/2"},
		{"sub", third.Sub(sixth), "1/6"},
		{"mul", third.Mul(sixth), "1/18"},
		{"neg", third.Neg(), "-1/3"},
		{"int", Int(14), "14"},
		{"zero", Scalar{}, "0"},
		{"cancel", third.Sub(third), "0"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if s := c.got.String(); s != c.want {
				t.Errorf("want %s, got %s", c.want, s)
			}
		})
	}
}

func TestQuo(t *testing.T) {
	a := Rat(rat("-7/5"))
	b := Rat(rat("3/11"))
	q, err := a.Quo(b)
	if err != nil {
		t.Fatal(err)
	}
	if r := q.Mul(b); !r.Equal(a) {
		t.Errorf("(a/b)*b = %v, want %v", r, a)
	}
	if _, err := a.Quo(Scalar{}); err != ErrDivideByZero {
		t.Errorf("division by zero gave %v", err)
	}
	if _, err := Int(0).Inv(); err != ErrDivideByZero {
		t.Errorf("inverse of zero gave %v", err)
	}
}

func TestBigRat(t *testing.T) {
	r := rat("123456789012345678901234567890/7")
	s := Rat(r)
	got, ok := s.Rat()
	if !ok {
		t.Fatal("not numeric")
	}
	if got.Cmp(r) != 0 {
		t.Errorf("want %v, got %v", r.RatString(), got.RatString())
	}
	neg := Rat(new(big.Rat).Neg(r))
	if !neg.Add(s).IsZero() {
		t.Errorf("%v + %v is not zero", neg, s)
	}
}

func TestFloat(t *testing.T) {
	s, ok := Float(0.1)
	if !ok {
		t.Fatal("0.1 not representable")
	}
	if got := s.String(); got != "0.1" {
		t.Errorf("want 0.1, got %s", got)
	}
	h, _ := Float(0.5)
	if got := h.String(); got != "1/2" {
		t.Errorf("want 1/2, got %s", got)
	}
	if _, ok := Float(1 / zero()); ok {
		t.Error("inf converted")
	}
}

func zero() float64 { return 0 }

func TestSymbolic(t *testing.T) {
	x := Symbol("x")
	sq := x.Mul(x)
	if sq.IsNumeric() {
		t.Fatal("x*x is numeric")
	}
	d := sq.Diff("x")
	if got := d.String(); got != "2*x" {
		t.Errorf("d/dx x*x = %s, want 2*x", got)
	}
	v := d.Substitute("x", Int(3))
	if got := v.String(); got != "6" {
		t.Errorf("substitution gave %s, want 6", got)
	}
	if _, ok := x.Eval(); ok {
		t.Error("free symbol evaluated")
	}
}

func TestSign(t *testing.T) {
	cases := []struct {
		s    Scalar
		sign int
		ok   bool
	}{
		{Int(-2), -1, true},
		{Int(0), 0, true},
		{Rat(rat("1/9")), 1, true},
		{Symbol("a"), 0, false},
	}
	for _, c := range cases {
		sign, ok := c.s.Sign()
		if sign != c.sign || ok != c.ok {
			t.Errorf("%v: want %d %t, got %d %t", c.s, c.sign, c.ok, sign, ok)
		}
	}
	if !Int(-3).Negative() || Int(3).Negative() {
		t.Error("Negative wrong for integers")
	}
}
