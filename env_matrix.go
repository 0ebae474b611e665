package calculator

import (
	"math/big"
	"math/bits"

	"github.com/spencerparkin/GAVisTool-sub000/linalg"
	"github.com/spencerparkin/GAVisTool-sub000/scalar"
)

// Matrix is a matrix with exact entries. Numbers of the matrix environment
// are 1×1 matrices.
type Matrix struct {
	m *linalg.Matrix
}

// NewMat wraps a matrix.
func NewMat(m *linalg.Matrix) Matrix { return Matrix{m} }

// Mat returns the matrix.
func (x Matrix) Mat() *linalg.Matrix { return x.mat() }

func (x Matrix) mat() *linalg.Matrix {
	if x.m == nil {
		return linalg.New(1, 1)
	}
	return x.m
}

func (x Matrix) isScalar() bool { return x.mat().Rows() == 1 && x.mat().Cols() == 1 }

func (Matrix) Kind() Kind { return MatrixKind }
func (Matrix) number()    {}

// String renders a 1×1 matrix as its entry and others as "[a, b; c, d]".
func (x Matrix) String() string {
	if x.isScalar() {
		return x.mat().At(0, 0).String()
	}
	return x.mat().String()
}

// MatrixEnv is the environment of matrices over exact scalars. Bracketed
// literals build matrices; numeric literals are 1×1 and scale other
// matrices.
type MatrixEnv struct {
	*Registry
}

// NewMatrix creates a matrix environment.
func NewMatrix() *MatrixEnv {
	env := &MatrixEnv{Registry: NewRegistry()}
	env.defineAll(map[string]Func{
		"transpose": Typed(func(x Matrix) (Number, error) { return Matrix{x.mat().Transpose()}, nil }),
		"inverse": Typed(func(x Matrix) (Number, error) {
			r, err := x.mat().Inverse()
			return matResult(r, err)
		}),
		"det": Typed(func(x Matrix) (Number, error) {
			s, err := x.mat().Det()
			return scalarResult(s, err)
		}),
		"trace": Typed(func(x Matrix) (Number, error) {
			s, err := x.mat().Trace()
			return scalarResult(s, err)
		}),
		"rows":     Typed(func(x Matrix) (Number, error) { return env.FromInt(int64(x.mat().Rows())), nil }),
		"cols":     Typed(func(x Matrix) (Number, error) { return env.FromInt(int64(x.mat().Cols())), nil }),
		"identity": Monadic(env.identity),
		"zeros":    Variadic(1, 2, env.zeros),
		"solve": Typed2(func(a, b Matrix) (Number, error) {
			r, err := a.mat().Solve(b.mat())
			return matResult(r, err)
		}),
	})
	return env
}

func matResult(m *linalg.Matrix, err error) (Number, error) {
	if err != nil {
		return nil, algebraError(err)
	}
	return Matrix{m}, nil
}

func scalarResult(s scalar.Scalar, err error) (Number, error) {
	if err != nil {
		return nil, algebraError(err)
	}
	return scalarMat(s), nil
}

func scalarMat(s scalar.Scalar) Matrix {
	m := linalg.New(1, 1)
	m.Set(0, 0, s)
	return Matrix{m}
}

// size extracts a matrix dimension from an argument.
func (env *MatrixEnv) size(x Number, arg int) (int, error) {
	n, ok := intOf(env, x)
	if !ok || n < 0 || n > 1<<10 {
		return 0, &DomainError{X: x.String(), Arg: arg}
	}
	return n, nil
}

func (env *MatrixEnv) identity(x Number) (Number, error) {
	n, err := env.size(x, 1)
	if err != nil {
		return nil, err
	}
	return Matrix{linalg.Identity(n)}, nil
}

func (env *MatrixEnv) zeros(ctx *Context, args []Number) (Number, error) {
	r, err := env.size(args[0], 1)
	if err != nil {
		return nil, err
	}
	c := r
	if len(args) == 2 {
		if c, err = env.size(args[1], 2); err != nil {
			return nil, err
		}
	}
	return Matrix{linalg.New(r, c)}, nil
}

func (env *MatrixEnv) Name() string { return "matrix" }

func (env *MatrixEnv) Parse(text string) (Number, error) {
	r, ok := new(big.Rat).SetString(text)
	if !ok {
		return nil, &LexError{Text: text, Scanning: "number"}
	}
	return scalarMat(scalar.Rat(r)), nil
}

func (env *MatrixEnv) Format(x Number) string { return x.String() }

func (env *MatrixEnv) Unary(op string, x Number) (Number, error) {
	a, ok := x.(Matrix)
	if !ok {
		return nil, typeError(op, x)
	}
	switch op {
	case "-":
		return Matrix{a.mat().Neg()}, nil
	case "+":
		return a, nil
	case "~":
		return Matrix{a.mat().Transpose()}, nil
	}
	return nil, typeError(op, x)
}

// maxSymbolicPow bounds the exponent of powers of matrices with symbolic
// entries, whose size cannot be estimated from bit lengths.
const maxSymbolicPow = 64

// matPowLimit estimates the size of m^k from its largest entry and fails if
// the result could exceed the exact power limit. Each factor of the product
// adds at most the entry size plus log2 of the dimension, and inverting
// multiplies entry sizes by up to the dimension.
func matPowLimit(m *linalg.Matrix, k int) error {
	size, symbolic := 0, false
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			r, ok := m.At(i, j).Rat()
			if !ok {
				symbolic = true
				continue
			}
			size = max(size, r.Num().BitLen()+r.Denom().BitLen())
		}
	}
	if symbolic && (k > maxSymbolicPow || k < -maxSymbolicPow) {
		return &LimitError{What: "exponent of symbolic matrix power", Limit: maxSymbolicPow}
	}
	size += bits.Len(uint(m.Rows()))
	if k < 0 {
		size *= max(m.Rows(), 1)
	}
	if !powFits(size, big.NewInt(int64(k))) {
		return &LimitError{What: "bits in exact power", Limit: maxPowBits}
	}
	return nil
}

func (env *MatrixEnv) Binary(op string, x, y Number) (Number, error) {
	a, ok := x.(Matrix)
	b, ok2 := y.(Matrix)
	if !ok || !ok2 {
		return nil, typeError(op, x, y)
	}
	am, bm := a.mat(), b.mat()
	switch op {
	case "+":
		return matResult(am.Add(bm))
	case "-":
		return matResult(am.Sub(bm))
	case "*":
		switch {
		case a.isScalar() && !b.isScalar():
			return Matrix{bm.Scale(am.At(0, 0))}, nil
		case b.isScalar() && !a.isScalar():
			return Matrix{am.Scale(bm.At(0, 0))}, nil
		}
		return matResult(am.Mul(bm))
	case "/":
		if b.isScalar() {
			inv, err := bm.At(0, 0).Inv()
			if err != nil {
				return nil, &ZeroDivisionError{}
			}
			return Matrix{am.Scale(inv)}, nil
		}
		inv, err := bm.Inverse()
		if err != nil {
			return nil, algebraError(err)
		}
		return matResult(am.Mul(inv))
	case "^":
		k, ok := intOf(env, b)
		if !ok {
			return nil, &DomainError{X: b.String(), Arg: 2, Reason: "exponent is not an integer"}
		}
		if a.isScalar() && k < 0 && am.At(0, 0).IsZero() {
			return nil, &ZeroDivisionError{}
		}
		if err := matPowLimit(am, k); err != nil {
			return nil, err
		}
		return matResult(am.Pow(k))
	case "==":
		return Bool(am.Equal(bm)), nil
	case "!=":
		return Bool(!am.Equal(bm)), nil
	}
	if isOrdering(op) {
		if !a.isScalar() || !b.isScalar() {
			return nil, &TypeError{Op: op, Operands: []Kind{MatrixKind, MatrixKind}, Reason: "only 1x1 matrices are ordered"}
		}
		c, ok := am.At(0, 0).Sub(bm.At(0, 0)).Sign()
		if !ok {
			return nil, &DomainError{Reason: "symbolic entries are not ordered"}
		}
		r, _ := compare(op, c)
		return r, nil
	}
	return nil, typeError(op, x, y)
}

// Truth is true for any matrix with a nonzero entry.
func (env *MatrixEnv) Truth(x Number) (bool, error) {
	a, ok := x.(Matrix)
	if !ok {
		return false, typeError("condition", x)
	}
	m := a.mat()
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			if !m.At(i, j).IsZero() {
				return true, nil
			}
		}
	}
	return false, nil
}

// Index selects row i with M[i] or entry (i, j) with M[i, j]. Indices start
// at zero.
func (env *MatrixEnv) Index(x Number, idx []Number) (Number, error) {
	a, ok := x.(Matrix)
	if !ok {
		return nil, typeError("[]", x)
	}
	m := a.mat()
	if len(idx) == 0 || len(idx) > 2 {
		return nil, &IndexError{Index: fmtIndex(idx), Len: -1}
	}
	dims := [2]int{m.Rows(), m.Cols()}
	var at [2]int
	for k, v := range idx {
		i, ok := intOf(env, v)
		if !ok {
			return nil, &IndexError{Index: v.String(), Len: -1}
		}
		if i < 0 || i >= dims[k] {
			return nil, &IndexError{Index: v.String(), Len: dims[k]}
		}
		at[k] = i
	}
	if len(idx) == 1 {
		return Matrix{m.Row(at[0])}, nil
	}
	return scalarMat(m.At(at[0], at[1])), nil
}

// Compose builds a matrix from rows of 1×1 matrices.
func (env *MatrixEnv) Compose(rows [][]Number) (Number, error) {
	ss := make([][]scalar.Scalar, len(rows))
	for i, row := range rows {
		ss[i] = make([]scalar.Scalar, len(row))
		for j, x := range row {
			s, err := env.Scalar(x)
			if err != nil {
				return nil, err
			}
			ss[i][j] = s
		}
	}
	m, err := linalg.FromRows(ss)
	if err != nil {
		return nil, algebraError(err)
	}
	return Matrix{m}, nil
}

func (env *MatrixEnv) FromInt(n int64) Number { return scalarMat(scalar.Int(n)) }

func (env *MatrixEnv) Scalar(x Number) (scalar.Scalar, error) {
	a, ok := x.(Matrix)
	if !ok {
		return scalar.Scalar{}, typeError("", x)
	}
	if !a.isScalar() {
		return scalar.Scalar{}, &TypeError{Operands: []Kind{MatrixKind}, Reason: x.String() + " is not a 1x1 matrix"}
	}
	return a.mat().At(0, 0), nil
}

func (env *MatrixEnv) FromScalar(s scalar.Scalar) (Number, error) {
	return scalarMat(s), nil
}
