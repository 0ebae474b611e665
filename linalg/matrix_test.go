package linalg

import (
	"errors"
	"math"
	"testing"

	"github.com/spencerparkin/GAVisTool-sub000/scalar"
)

func ints(rows ...[]int64) *Matrix {
	v := make([][]scalar.Scalar, len(rows))
	for i, row := range rows {
		v[i] = make([]scalar.Scalar, len(row))
		for j, x := range row {
			v[i][j] = scalar.Int(x)
		}
	}
	m, err := FromRows(v)
	if err != nil {
		panic(err)
	}
	return m
}

func TestString(t *testing.T) {
	cases := []struct {
		name string
		m    *Matrix
		want string
	}{
		{"empty", New(0, 0), "[]"},
		{"row", ints([]int64{1, 2, 3}), "[1, 2, 3]"},
		{"square", ints([]int64{1, 2}, []int64{3, 4}), "[1, 2; 3, 4]"},
		{"identity", Identity(2), "[1, 0; 0, 1]"},
		{"transpose", ints([]int64{1, 2, 3}).Transpose(), "[1; 2; 3]"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.m.String(); got != c.want {
				t.Errorf("want %s, got %s", c.want, got)
			}
		})
	}
}

func TestFromRowsRagged(t *testing.T) {
	_, err := FromRows([][]scalar.Scalar{{scalar.Int(1)}, {scalar.Int(1), scalar.Int(2)}})
	var de *DimensionError
	if !errors.As(err, &de) {
		t.Fatalf("want DimensionError, got %v", err)
	}
}

func TestArithmetic(t *testing.T) {
	a := ints([]int64{1, 2}, []int64{3, 4})
	b := ints([]int64{0, 1}, []int64{1, 0})
	sum, err := a.Add(b)
	if err != nil {
		t.Fatal(err)
	}
	if got := sum.String(); got != "[1, 3; 4, 4]" {
		t.Errorf("a+b = %s", got)
	}
	diff, err := a.Sub(b)
	if err != nil {
		t.Fatal(err)
	}
	if got := diff.String(); got != "[1, 1; 2, 4]" {
		t.Errorf("a-b = %s", got)
	}
	prod, err := a.Mul(b)
	if err != nil {
		t.Fatal(err)
	}
	if got := prod.String(); got != "[2, 1; 4, 3]" {
		t.Errorf("ab = %s", got)
	}
	prod, err = b.Mul(a)
	if err != nil {
		t.Fatal(err)
	}
	if got := prod.String(); got != "[3, 4; 1, 2]" {
		t.Errorf("ba = %s", got)
	}
	if got := a.Scale(scalar.Int(2)).String(); got != "[2, 4; 6, 8]" {
		t.Errorf("2a = %s", got)
	}
}

func TestDimensionMismatch(t *testing.T) {
	a := ints([]int64{1, 2, 3})
	b := ints([]int64{1, 2})
	var de *DimensionError
	if _, err := a.Add(b); !errors.As(err, &de) {
		t.Errorf("add: want DimensionError, got %v", err)
	}
	if _, err := a.Mul(b); !errors.As(err, &de) {
		t.Errorf("mul: want DimensionError, got %v", err)
	}
	if _, err := a.Inverse(); !errors.As(err, &de) {
		t.Errorf("inverse: want DimensionError, got %v", err)
	}
	if _, err := a.Det(); !errors.As(err, &de) {
		t.Errorf("det: want DimensionError, got %v", err)
	}
}

func TestInverse(t *testing.T) {
	cases := []struct {
		name string
		m    *Matrix
		want string
	}{
		{"2x2", ints([]int64{1, 2}, []int64{3, 4}), "[-2, 1; 3/2, -1/2]"},
		{"swap", ints([]int64{0, 1}, []int64{1, 0}), "[0, 1; 1, 0]"},
		{"3x3", ints([]int64{2, 0, 0}, []int64{0, 3, 0}, []int64{0, 0, 4}), "[1/2, 0, 0; 0, 1/3, 0; 0, 0, 1/4]"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			inv, err := c.m.Inverse()
			if err != nil {
				t.Fatal(err)
			}
			if got := inv.String(); got != c.want {
				t.Errorf("want %s, got %s", c.want, got)
			}
			p, err := c.m.Mul(inv)
			if err != nil {
				t.Fatal(err)
			}
			if !p.IsIdentity() {
				t.Errorf("m * inverse(m) = %v", p)
			}
		})
	}
}

func TestSingular(t *testing.T) {
	m := ints([]int64{1, 2}, []int64{2, 4})
	if _, err := m.Inverse(); err != ErrSingular {
		t.Errorf("want ErrSingular, got %v", err)
	}
	d, err := m.Det()
	if err != nil {
		t.Fatal(err)
	}
	if !d.IsZero() {
		t.Errorf("det = %v", d)
	}
}

func TestDetTrace(t *testing.T) {
	m := ints([]int64{0, 2, 1}, []int64{1, 1, 0}, []int64{3, 0, 1})
	d, err := m.Det()
	if err != nil {
		t.Fatal(err)
	}
	// 0*(1-0) - 2*(1-0) + 1*(0-3)
	if got := d.String(); got != "-5" {
		t.Errorf("det = %s, want -5", got)
	}
	tr, err := m.Trace()
	if err != nil {
		t.Fatal(err)
	}
	if got := tr.String(); got != "2" {
		t.Errorf("trace = %s, want 2", got)
	}
}

func TestPow(t *testing.T) {
	m := ints([]int64{1, 1}, []int64{0, 1})
	p, err := m.Pow(5)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.String(); got != "[1, 5; 0, 1]" {
		t.Errorf("m^5 = %s", got)
	}
	p, err = m.Pow(-2)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.String(); got != "[1, -2; 0, 1]" {
		t.Errorf("m^-2 = %s", got)
	}
	p, err = m.Pow(0)
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsIdentity() {
		t.Errorf("m^0 = %s", p)
	}
}

func TestPowExponentRange(t *testing.T) {
	m := ints([]int64{2, 0}, []int64{0, 2})
	if _, err := m.Pow(math.MinInt); err != ErrExponentRange {
		t.Errorf("want ErrExponentRange, got %v", err)
	}
	p, err := m.Pow(-1)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.String(); got != "[1/2, 0; 0, 1/2]" {
		t.Errorf("m^-1 = %s", got)
	}
}

func TestSolve(t *testing.T) {
	a := ints([]int64{2, 1}, []int64{1, 3})
	b := ints([]int64{3}, []int64{5})
	x, err := a.Solve(b)
	if err != nil {
		t.Fatal(err)
	}
	if got := x.String(); got != "[4/5; 7/5]" {
		t.Errorf("x = %s", got)
	}
}
