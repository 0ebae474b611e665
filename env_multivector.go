package calculator

import (
	"math"
	"math/big"

	"github.com/spencerparkin/GAVisTool-sub000/ga"
	"github.com/spencerparkin/GAVisTool-sub000/scalar"
)

// Multivector is an element of a geometric algebra.
type Multivector struct {
	v ga.Multivector
}

// NewMV wraps an element of a geometric algebra.
func NewMV(v ga.Multivector) Multivector { return Multivector{v} }

// MV returns the algebra element.
func (x Multivector) MV() ga.Multivector { return x.v }

func (Multivector) Kind() Kind { return MultivectorKind }
func (x Multivector) String() string {
	if x.v.Algebra() == nil {
		return "0"
	}
	return x.v.String()
}
func (Multivector) number() {}

// MultivectorEnv is the environment of a geometric algebra with exact
// coefficients. Literals are scalars; the basis vectors are constants.
//
//	a * b   geometric product
//	a ^ b   outer product
//	a . b   left contraction
//	a / b   a b⁻¹
//	~a      reversion
//	a[k]    grade-k part
//	[x, y, z] vector with the given coefficients
type MultivectorEnv struct {
	*Registry
	name string
	alg  *ga.Algebra
}

// NewMultivector creates the environment of the geometric algebra of 3D
// Euclidean space.
func NewMultivector() *MultivectorEnv {
	return newMultivectorEnv("multivector", ga.Euclidean(3))
}

// NewConformal creates the environment of the conformal model of 3D space. In
// addition to the basis e1..e5, it has the null vectors no and ni and the
// function point(x, y, z).
func NewConformal() *MultivectorEnv {
	env := newMultivectorEnv("conformal", ga.Conformal())
	half := scalar.Rat(big.NewRat(1, 2))
	e4, e5 := env.alg.Basis(3), env.alg.Basis(4)
	env.SetConst("no", Multivector{e5.Sub(e4).Scale(half)})
	env.SetConst("ni", Multivector{e4.Add(e5)})
	env.Define("point", Variadic(3, 3, env.point))
	env.Define("sphere", Variadic(4, 4, env.sphere))
	return env
}

// NewAlgebraEnv creates an environment over an arbitrary algebra.
func NewAlgebraEnv(name string, alg *ga.Algebra) *MultivectorEnv {
	return newMultivectorEnv(name, alg)
}

func newMultivectorEnv(name string, alg *ga.Algebra) *MultivectorEnv {
	env := &MultivectorEnv{Registry: NewRegistry(), name: name, alg: alg}
	for i := 0; i < alg.Dim(); i++ {
		env.SetConst(alg.BasisName(i), Multivector{alg.Basis(i)})
	}
	env.SetConst("I", Multivector{alg.Pseudoscalar()})
	pi, _ := scalar.Float(math.Pi)
	e, _ := scalar.Float(math.E)
	env.SetConst("pi", Multivector{alg.Scalar(pi)})
	env.SetConst("e", Multivector{alg.Scalar(e)})
	env.defineAll(map[string]Func{
		"reverse":   env.fn(func(x ga.Multivector) (ga.Multivector, error) { return x.Reverse(), nil }),
		"involute":  env.fn(func(x ga.Multivector) (ga.Multivector, error) { return x.Involute(), nil }),
		"conjugate": env.fn(func(x ga.Multivector) (ga.Multivector, error) { return x.Conjugate(), nil }),
		"inverse":   env.fn(ga.Multivector.Inverse),
		"dual":      env.fn(ga.Multivector.Dual),
		"exp":       env.fn(ga.Multivector.Exp),
		"scalar":    env.fn(func(x ga.Multivector) (ga.Multivector, error) { return alg.Scalar(x.ScalarPart()), nil }),
		"norm2":     env.fn(func(x ga.Multivector) (ga.Multivector, error) { return alg.Scalar(x.Norm2()), nil }),
		"norm": env.fn(func(x ga.Multivector) (ga.Multivector, error) {
			n, err := x.Norm()
			if err != nil {
				return ga.Multivector{}, err
			}
			s, _ := scalar.Float(n)
			return alg.Scalar(s), nil
		}),
		"lc":  env.fn2(func(x, y ga.Multivector) (ga.Multivector, error) { return x.LeftContraction(y), nil }),
		"rc":  env.fn2(func(x, y ga.Multivector) (ga.Multivector, error) { return x.RightContraction(y), nil }),
		"sp":  env.fn2(func(x, y ga.Multivector) (ga.Multivector, error) { return alg.Scalar(x.ScalarProduct(y)), nil }),
		"sym": env.fn2(symmetric),
		"apply": env.fn2(func(v, x ga.Multivector) (ga.Multivector, error) {
			inv, err := v.Inverse()
			if err != nil {
				return ga.Multivector{}, err
			}
			return v.Mul(x).Mul(inv), nil
		}),
		"reflect": env.fn2(func(x, n ga.Multivector) (ga.Multivector, error) {
			v, err := ga.NewVersor(n)
			if err != nil {
				return ga.Multivector{}, err
			}
			return v.Apply(x), nil
		}),
		"grade":  Variadic(2, 2, env.grade),
		"rotor":  Variadic(2, 2, env.rotor),
		"rotate": Variadic(3, 3, env.rotate),
		"versor": Variadic(1, -1, env.versor),
		"vector": Variadic(1, alg.Dim(), env.vector),
		"sqrt":   env.real(math.Sqrt),
		"sin":    env.real(math.Sin),
		"cos":    env.real(math.Cos),
		"tan":    env.real(math.Tan),
		"ln":     env.real(math.Log),
		"abs":    env.real(math.Abs),
		"atan2": Variadic(2, 2, func(ctx *Context, args []Number) (Number, error) {
			y, err := env.real64(args[0], 1)
			if err != nil {
				return nil, err
			}
			x, err := env.real64(args[1], 2)
			if err != nil {
				return nil, err
			}
			return env.fromFloat(math.Atan2(y, x))
		}),
	})
	return env
}

// symmetric is the symmetric part of the geometric product, (x y + y x)/2.
func symmetric(x, y ga.Multivector) (ga.Multivector, error) {
	half := scalar.Rat(big.NewRat(1, 2))
	return x.Mul(y).Add(y.Mul(x)).Scale(half), nil
}

// Algebra returns the algebra of the environment.
func (env *MultivectorEnv) Algebra() *ga.Algebra { return env.alg }

// mv extracts an element of this environment's algebra.
func (env *MultivectorEnv) mv(op string, xs ...Number) ([]ga.Multivector, error) {
	r := make([]ga.Multivector, len(xs))
	for i, x := range xs {
		m, ok := x.(Multivector)
		if !ok {
			return nil, typeError(op, xs...)
		}
		switch m.v.Algebra() {
		case env.alg:
		case nil:
			m.v = env.alg.Zero()
		default:
			return nil, &TypeError{Op: op, Operands: []Kind{MultivectorKind}, Reason: "element of " + m.v.Algebra().Name() + " used in " + env.alg.Name()}
		}
		r[i] = m.v
	}
	return r, nil
}

// fn wraps a unary algebra operation.
func (env *MultivectorEnv) fn(f func(x ga.Multivector) (ga.Multivector, error)) Func {
	return Monadic(func(x Number) (Number, error) {
		v, err := env.mv("", x)
		if err != nil {
			return nil, err
		}
		r, err := f(v[0])
		if err != nil {
			return nil, algebraError(err)
		}
		return Multivector{r}, nil
	})
}

func (env *MultivectorEnv) fn2(f func(x, y ga.Multivector) (ga.Multivector, error)) Func {
	return Dyadic(func(x, y Number) (Number, error) {
		v, err := env.mv("", x, y)
		if err != nil {
			return nil, err
		}
		r, err := f(v[0], v[1])
		if err != nil {
			return nil, algebraError(err)
		}
		return Multivector{r}, nil
	})
}

// real64 extracts the value of a numeric scalar argument.
func (env *MultivectorEnv) real64(x Number, arg int) (float64, error) {
	v, err := env.mv("", x)
	if err != nil {
		return 0, err
	}
	if !v[0].IsScalar() {
		return 0, &DomainError{X: x.String(), Arg: arg, Reason: "not a scalar"}
	}
	f, ok := v[0].ScalarPart().Float64()
	if !ok {
		return 0, &DomainError{X: x.String(), Arg: arg}
	}
	return f, nil
}

func (env *MultivectorEnv) fromFloat(f float64) (Number, error) {
	s, ok := scalar.Float(f)
	if !ok {
		return nil, &DomainError{Reason: "result is not finite"}
	}
	return Multivector{env.alg.Scalar(s)}, nil
}

// real wraps a real function of a scalar.
func (env *MultivectorEnv) real(f func(float64) float64) Func {
	return Monadic(func(x Number) (Number, error) {
		a, err := env.real64(x, 1)
		if err != nil {
			return nil, err
		}
		r := f(a)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, &DomainError{X: x.String(), Arg: 1}
		}
		return env.fromFloat(r)
	})
}

func (env *MultivectorEnv) grade(ctx *Context, args []Number) (Number, error) {
	return env.Index(args[0], args[1:])
}

func (env *MultivectorEnv) rotor(ctx *Context, args []Number) (Number, error) {
	v, err := env.mv("", args[0])
	if err != nil {
		return nil, err
	}
	angle, err := env.real64(args[1], 2)
	if err != nil {
		return nil, err
	}
	r, err := ga.Rotor(v[0], angle)
	if err != nil {
		return nil, algebraError(err)
	}
	return Multivector{r.Multivector()}, nil
}

// rotate rotates x by an angle in the plane of a bivector.
func (env *MultivectorEnv) rotate(ctx *Context, args []Number) (Number, error) {
	v, err := env.mv("", args[0], args[1])
	if err != nil {
		return nil, err
	}
	angle, err := env.real64(args[2], 3)
	if err != nil {
		return nil, err
	}
	r, err := ga.Rotor(v[1], angle)
	if err != nil {
		return nil, algebraError(err)
	}
	return Multivector{r.Apply(v[0])}, nil
}

// versor multiplies vectors into a versor.
func (env *MultivectorEnv) versor(ctx *Context, args []Number) (Number, error) {
	v, err := env.mv("", args...)
	if err != nil {
		return nil, err
	}
	r, err := ga.NewVersor(v...)
	if err != nil {
		return nil, algebraError(err)
	}
	return Multivector{r.Multivector()}, nil
}

func (env *MultivectorEnv) vector(ctx *Context, args []Number) (Number, error) {
	return env.Compose([][]Number{args})
}

// point embeds a Euclidean point in the conformal model as
// x + x²/2 ni + no.
func (env *MultivectorEnv) point(ctx *Context, args []Number) (Number, error) {
	x, err := env.vector(ctx, args)
	if err != nil {
		return nil, err
	}
	p := x.(Multivector).v
	return Multivector{env.embed(p)}, nil
}

// sphere is the dual sphere with center (x, y, z) and radius r, i.e.
// point(x, y, z) - r²/2 ni.
func (env *MultivectorEnv) sphere(ctx *Context, args []Number) (Number, error) {
	c, err := env.vector(ctx, args[:3])
	if err != nil {
		return nil, err
	}
	rs, err := env.mv("", args[3])
	if err != nil {
		return nil, err
	}
	if !rs[0].IsScalar() {
		return nil, &DomainError{X: args[3].String(), Arg: 4, Reason: "not a scalar"}
	}
	r := rs[0].ScalarPart()
	ni, _ := env.Const("ni")
	h := r.Mul(r).Mul(scalar.Rat(big.NewRat(-1, 2)))
	return Multivector{env.embed(c.(Multivector).v).Add(ni.(Multivector).v.Scale(h))}, nil
}

func (env *MultivectorEnv) embed(p ga.Multivector) ga.Multivector {
	no, _ := env.Const("no")
	ni, _ := env.Const("ni")
	h := p.ScalarProduct(p).Mul(scalar.Rat(big.NewRat(1, 2)))
	return p.Add(ni.(Multivector).v.Scale(h)).Add(no.(Multivector).v)
}

func (env *MultivectorEnv) Name() string { return env.name }

func (env *MultivectorEnv) Parse(text string) (Number, error) {
	r, ok := new(big.Rat).SetString(text)
	if !ok {
		return nil, &LexError{Text: text, Scanning: "number"}
	}
	return Multivector{env.alg.Scalar(scalar.Rat(r))}, nil
}

func (env *MultivectorEnv) Format(x Number) string { return x.String() }

func (env *MultivectorEnv) Unary(op string, x Number) (Number, error) {
	v, err := env.mv(op, x)
	if err != nil {
		return nil, err
	}
	switch op {
	case "-":
		return Multivector{v[0].Neg()}, nil
	case "+":
		return Multivector{v[0]}, nil
	case "~":
		return Multivector{v[0].Reverse()}, nil
	}
	return nil, typeError(op, x)
}

func (env *MultivectorEnv) Binary(op string, x, y Number) (Number, error) {
	v, err := env.mv(op, x, y)
	if err != nil {
		return nil, err
	}
	a, b := v[0], v[1]
	switch op {
	case "+":
		return Multivector{a.Add(b)}, nil
	case "-":
		return Multivector{a.Sub(b)}, nil
	case "*":
		return Multivector{a.Mul(b)}, nil
	case "^":
		return Multivector{a.Outer(b)}, nil
	case ".":
		return Multivector{a.LeftContraction(b)}, nil
	case "/":
		r, err := a.Div(b)
		if err != nil {
			return nil, algebraError(err)
		}
		return Multivector{r}, nil
	case "==":
		return Bool(a.Equal(b)), nil
	case "!=":
		return Bool(!a.Equal(b)), nil
	}
	if isOrdering(op) {
		if !a.IsScalar() || !b.IsScalar() {
			return nil, &TypeError{Op: op, Operands: []Kind{MultivectorKind, MultivectorKind}, Reason: "only scalars are ordered"}
		}
		c, ok := a.ScalarPart().Sub(b.ScalarPart()).Sign()
		if !ok {
			return nil, &DomainError{Reason: "symbolic scalars are not ordered"}
		}
		r, _ := compare(op, c)
		return r, nil
	}
	return nil, typeError(op, x, y)
}

func (env *MultivectorEnv) Truth(x Number) (bool, error) {
	v, err := env.mv("condition", x)
	if err != nil {
		return false, err
	}
	if v[0].IsZero() {
		return false, nil
	}
	if !v[0].IsScalar() {
		return false, &TypeError{Op: "condition", Operands: []Kind{MultivectorKind}, Reason: "a non-scalar multivector is not a condition"}
	}
	return true, nil
}

// Index selects a grade part.
func (env *MultivectorEnv) Index(x Number, idx []Number) (Number, error) {
	v, err := env.mv("[]", x)
	if err != nil {
		return nil, err
	}
	if len(idx) != 1 {
		return nil, &IndexError{Index: fmtIndex(idx), Len: -1}
	}
	k, ok := intOf(env, idx[0])
	if !ok {
		return nil, &IndexError{Index: idx[0].String(), Len: -1}
	}
	if k < 0 || k > env.alg.Dim() {
		return nil, &IndexError{Index: idx[0].String(), Len: env.alg.Dim() + 1}
	}
	return Multivector{v[0].Grade(k)}, nil
}

// Compose builds a vector from a single row of scalars.
func (env *MultivectorEnv) Compose(rows [][]Number) (Number, error) {
	if len(rows) != 1 {
		return nil, &DimensionError{Msg: "a vector literal has one row"}
	}
	cs := make([]scalar.Scalar, len(rows[0]))
	for i, x := range rows[0] {
		s, err := env.Scalar(x)
		if err != nil {
			return nil, err
		}
		cs[i] = s
	}
	if len(cs) > env.alg.Dim() {
		return nil, &DimensionError{Msg: "too many coordinates for the vectors of " + env.alg.Name()}
	}
	v, err := env.alg.Vector(cs...)
	if err != nil {
		return nil, algebraError(err)
	}
	return Multivector{v}, nil
}

func (env *MultivectorEnv) FromInt(n int64) Number {
	return Multivector{env.alg.Scalar(scalar.Int(n))}
}

func (env *MultivectorEnv) Scalar(x Number) (scalar.Scalar, error) {
	v, err := env.mv("", x)
	if err != nil {
		return scalar.Scalar{}, err
	}
	if !v[0].IsScalar() {
		return scalar.Scalar{}, &TypeError{Operands: []Kind{MultivectorKind}, Reason: x.String() + " is not a scalar"}
	}
	return v[0].ScalarPart(), nil
}

func (env *MultivectorEnv) FromScalar(s scalar.Scalar) (Number, error) {
	return Multivector{env.alg.Scalar(s)}, nil
}

func fmtIndex(idx []Number) string {
	s := ""
	for i, x := range idx {
		if i > 0 {
			s += ", "
		}
		s += x.String()
	}
	return s
}
