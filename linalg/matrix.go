// Package linalg implements matrices over exact scalars, stored as gosymbol
// matrices and inverted by exact Gauss-Jordan elimination.
package linalg

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/njchilds90/gosymbol"

	"github.com/spencerparkin/GAVisTool-sub000/scalar"
)

// ErrSingular is returned when inverting or solving with a singular matrix.
var ErrSingular = errors.New("linalg: singular matrix")

// ErrExponentRange is returned for a power whose exponent cannot be negated.
var ErrExponentRange = errors.New("linalg: exponent out of range")

// DimensionError is an error indicating operands whose shapes are not
// compatible for an operation.
type DimensionError struct {
	// Op names the operation.
	Op string
	// Rows and Cols give the shapes of the operands. Only the first entry is
	// meaningful for unary operations.
	Rows, Cols [2]int
}

func (err *DimensionError) Error() string {
	a := strconv.Itoa(err.Rows[0]) + "x" + strconv.Itoa(err.Cols[0])
	if err.Rows[1] == 0 && err.Cols[1] == 0 {
		return "linalg: " + err.Op + " of " + a + " matrix"
	}
	b := strconv.Itoa(err.Rows[1]) + "x" + strconv.Itoa(err.Cols[1])
	return "linalg: " + err.Op + " of " + a + " and " + b + " matrices"
}

// Matrix is a rows×cols matrix of scalars backed by a gosymbol matrix.
// Matrices are immutable through their methods; Set is only for
// construction.
type Matrix struct {
	m *gosymbol.Matrix
}

// New creates a rows×cols zero matrix.
func New(rows, cols int) *Matrix {
	if rows < 0 || cols < 0 {
		panic("linalg: negative dimension")
	}
	return &Matrix{gosymbol.NewMatrix(rows, cols)}
}

// Identity creates the n×n identity matrix.
func Identity(n int) *Matrix {
	if n < 0 {
		panic("linalg: negative dimension")
	}
	return &Matrix{gosymbol.Identity(n)}
}

// FromRows creates a matrix from a list of rows, which must all have the same
// length.
func FromRows(rows [][]scalar.Scalar) (*Matrix, error) {
	if len(rows) == 0 {
		return New(0, 0), nil
	}
	cols := len(rows[0])
	m := New(len(rows), cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, &DimensionError{Op: "construction", Rows: [2]int{i + 1, len(rows)}, Cols: [2]int{len(row), cols}}
		}
		for j, v := range row {
			m.m.Set(i, j, v.Expr())
		}
	}
	return m, nil
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.m.Rows() }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.m.Cols() }

// IsSquare reports whether m is square.
func (m *Matrix) IsSquare() bool { return m.Rows() == m.Cols() }

// At returns the entry at row i, column j.
func (m *Matrix) At(i, j int) scalar.Scalar {
	m.check(i, j)
	return scalar.FromExpr(m.m.Get(i, j))
}

// Set sets the entry at row i, column j.
func (m *Matrix) Set(i, j int, v scalar.Scalar) {
	m.check(i, j)
	m.m.Set(i, j, v.Expr())
}

func (m *Matrix) check(i, j int) {
	if i < 0 || i >= m.Rows() || j < 0 || j >= m.Cols() {
		panic("linalg: index (" + strconv.Itoa(i) + ", " + strconv.Itoa(j) + ") out of range")
	}
}

// Row returns row i as a 1×cols matrix.
func (m *Matrix) Row(i int) *Matrix {
	m.check(i, 0)
	r := New(1, m.Cols())
	for j := 0; j < m.Cols(); j++ {
		r.m.Set(0, j, m.m.Get(i, j))
	}
	return r
}

func (m *Matrix) sameShape(op string, n *Matrix) error {
	if m.Rows() != n.Rows() || m.Cols() != n.Cols() {
		return &DimensionError{Op: op, Rows: [2]int{m.Rows(), n.Rows()}, Cols: [2]int{m.Cols(), n.Cols()}}
	}
	return nil
}

// Add returns m + n.
func (m *Matrix) Add(n *Matrix) (*Matrix, error) {
	if err := m.sameShape("addition", n); err != nil {
		return nil, err
	}
	return &Matrix{m.m.MatAdd(n.m)}, nil
}

// Sub returns m - n.
func (m *Matrix) Sub(n *Matrix) (*Matrix, error) {
	if err := m.sameShape("subtraction", n); err != nil {
		return nil, err
	}
	return &Matrix{m.m.MatSub(n.m)}, nil
}

// Mul returns the matrix product m n.
func (m *Matrix) Mul(n *Matrix) (*Matrix, error) {
	if m.Cols() != n.Rows() {
		return nil, &DimensionError{Op: "multiplication", Rows: [2]int{m.Rows(), n.Rows()}, Cols: [2]int{m.Cols(), n.Cols()}}
	}
	return &Matrix{m.m.MatMul(n.m)}, nil
}

// Scale returns s m.
func (m *Matrix) Scale(s scalar.Scalar) *Matrix {
	return &Matrix{m.m.Scale(s.Expr())}
}

// Neg returns -m.
func (m *Matrix) Neg() *Matrix {
	return m.Scale(scalar.Int(-1))
}

// Transpose returns the transpose of m.
func (m *Matrix) Transpose() *Matrix {
	return &Matrix{m.m.Transpose()}
}

func (m *Matrix) square(op string) error {
	if !m.IsSquare() {
		return &DimensionError{Op: op, Rows: [2]int{m.Rows()}, Cols: [2]int{m.Cols()}}
	}
	return nil
}

// Trace returns the sum of the diagonal of a square matrix.
func (m *Matrix) Trace() (scalar.Scalar, error) {
	if err := m.square("trace"); err != nil {
		return scalar.Scalar{}, err
	}
	return scalar.FromExpr(m.m.Trace()), nil
}

// dense is a mutable row-major copy of a matrix used for elimination.
// gosymbol computes determinants and inverses by cofactor expansion, which
// takes factorial time in the dimension.
type dense struct {
	rows, cols int
	data       []scalar.Scalar
}

func (m *Matrix) dense() *dense {
	d := &dense{rows: m.Rows(), cols: m.Cols(), data: make([]scalar.Scalar, m.Rows()*m.Cols())}
	for i := 0; i < d.rows; i++ {
		for j := 0; j < d.cols; j++ {
			d.data[i*d.cols+j] = scalar.FromExpr(m.m.Get(i, j))
		}
	}
	return d
}

func (d *dense) matrix() *Matrix {
	m := New(d.rows, d.cols)
	for i := 0; i < d.rows; i++ {
		for j := 0; j < d.cols; j++ {
			m.m.Set(i, j, d.data[i*d.cols+j].Expr())
		}
	}
	return m
}

// pivot finds a row at or below k with a nonzero entry in column k. Numeric
// entries are preferred to symbolic ones.
func (d *dense) pivot(k int) int {
	sym := -1
	for i := k; i < d.rows; i++ {
		v := d.data[i*d.cols+k]
		if v.IsZero() {
			continue
		}
		if v.IsNumeric() {
			return i
		}
		if sym < 0 {
			sym = i
		}
	}
	return sym
}

func (d *dense) swap(i, j int) {
	if i == j {
		return
	}
	for k := 0; k < d.cols; k++ {
		d.data[i*d.cols+k], d.data[j*d.cols+k] = d.data[j*d.cols+k], d.data[i*d.cols+k]
	}
}

// Det returns the determinant of a square matrix, computed by exact Gaussian
// elimination.
func (m *Matrix) Det() (scalar.Scalar, error) {
	if err := m.square("determinant"); err != nil {
		return scalar.Scalar{}, err
	}
	a := m.dense()
	det := scalar.Int(1)
	n := a.rows
	for k := 0; k < n; k++ {
		p := a.pivot(k)
		if p < 0 {
			return scalar.Int(0), nil
		}
		if p != k {
			a.swap(p, k)
			det = det.Neg()
		}
		pv := a.data[k*n+k]
		det = det.Mul(pv)
		for i := k + 1; i < n; i++ {
			f, err := a.data[i*n+k].Quo(pv)
			if err != nil {
				return scalar.Scalar{}, err
			}
			if f.IsZero() {
				continue
			}
			for j := k; j < n; j++ {
				a.data[i*n+j] = a.data[i*n+j].Sub(f.Mul(a.data[k*n+j]))
			}
		}
	}
	return det, nil
}

// Inverse returns the inverse of a square matrix by Gauss-Jordan elimination.
func (m *Matrix) Inverse() (*Matrix, error) {
	if err := m.square("inverse"); err != nil {
		return nil, err
	}
	return m.Solve(Identity(m.Rows()))
}

// Solve returns x such that m x = b.
func (m *Matrix) Solve(b *Matrix) (*Matrix, error) {
	if err := m.square("solve"); err != nil {
		return nil, err
	}
	if b.Rows() != m.Rows() {
		return nil, &DimensionError{Op: "solve", Rows: [2]int{m.Rows(), b.Rows()}, Cols: [2]int{m.Cols(), b.Cols()}}
	}
	n := m.Rows()
	a := m.dense()
	x := b.dense()
	for k := 0; k < n; k++ {
		p := a.pivot(k)
		if p < 0 {
			return nil, ErrSingular
		}
		a.swap(p, k)
		x.swap(p, k)
		pv := a.data[k*n+k]
		for j := 0; j < n; j++ {
			a.data[k*n+j], _ = a.data[k*n+j].Quo(pv)
		}
		for j := 0; j < x.cols; j++ {
			x.data[k*x.cols+j], _ = x.data[k*x.cols+j].Quo(pv)
		}
		for i := 0; i < n; i++ {
			if i == k {
				continue
			}
			f := a.data[i*n+k]
			if f.IsZero() {
				continue
			}
			for j := 0; j < n; j++ {
				a.data[i*n+j] = a.data[i*n+j].Sub(f.Mul(a.data[k*n+j]))
			}
			for j := 0; j < x.cols; j++ {
				x.data[i*x.cols+j] = x.data[i*x.cols+j].Sub(f.Mul(x.data[k*x.cols+j]))
			}
		}
	}
	return x.matrix(), nil
}

// Pow returns m^k for a square matrix. Negative powers use the inverse.
func (m *Matrix) Pow(k int) (*Matrix, error) {
	if err := m.square("power"); err != nil {
		return nil, err
	}
	if k == math.MinInt {
		return nil, ErrExponentRange
	}
	base := m
	if k < 0 {
		inv, err := m.Inverse()
		if err != nil {
			return nil, err
		}
		base, k = inv, -k
	}
	r := Identity(m.Rows())
	for {
		if k&1 != 0 {
			r, _ = r.Mul(base)
		}
		k >>= 1
		if k == 0 {
			return r, nil
		}
		base, _ = base.Mul(base)
	}
}

// Equal reports whether m and n have the same shape and equal entries.
func (m *Matrix) Equal(n *Matrix) bool {
	if m.sameShape("", n) != nil {
		return false
	}
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			if !m.m.Get(i, j).Equal(n.m.Get(i, j)) {
				return false
			}
		}
	}
	return true
}

// IsIdentity reports whether m is an identity matrix.
func (m *Matrix) IsIdentity() bool {
	return m.IsSquare() && m.Equal(Identity(m.Rows()))
}

// String renders m as "[a, b; c, d]".
func (m *Matrix) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < m.Rows(); i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		for j := 0; j < m.Cols(); j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(m.At(i, j).String())
		}
	}
	b.WriteByte(']')
	return b.String()
}
