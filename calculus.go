package calculator

import (
	"fmt"
	"math/big"

	"github.com/njchilds90/gosymbol"

	"github.com/spencerparkin/GAVisTool-sub000/scalar"
)

// symbolicFuncs are the functions the calculus builtins understand.
var symbolicFuncs = map[string]func(gosymbol.Expr) gosymbol.Expr{
	"sin":  gosymbol.SinOf,
	"cos":  gosymbol.CosOf,
	"tan":  gosymbol.TanOf,
	"asin": gosymbol.AsinOf,
	"acos": gosymbol.AcosOf,
	"atan": gosymbol.AtanOf,
	"sinh": gosymbol.SinhOf,
	"cosh": gosymbol.CoshOf,
	"tanh": gosymbol.TanhOf,
	"exp":  gosymbol.ExpOf,
	"ln":   gosymbol.LnOf,
	"sqrt": gosymbol.SqrtOf,
	"abs":  gosymbol.AbsOf,
}

// maxTaylorOrder is the highest order taylor expands to.
const maxTaylorOrder = 20

// diff differentiates the expression in a string with respect to a variable.
// With two arguments the result is the derivative as a string; with a third,
// the derivative is evaluated there.
func diff(ctx *Context, args []Number) (r Number, err error) {
	defer recoverSymbolic(&err)
	src, v, err := calculusArgs(args)
	if err != nil {
		return nil, err
	}
	s, err := ctx.symbolic(src, v, len(args) == 3)
	if err != nil {
		return nil, err
	}
	d := s.Diff(v)
	if len(args) == 2 {
		return String(d.String()), nil
	}
	at, err := ctx.env.Scalar(args[2])
	if err != nil {
		return nil, err
	}
	x, ok := d.Substitute(v, at).Eval()
	if !ok {
		return nil, &DomainError{Reason: "derivative " + d.String() + " has free symbols"}
	}
	return ctx.env.FromScalar(x)
}

// taylor expands the expression in a string as a polynomial in a variable
// around a point, up to a given order.
func taylor(ctx *Context, args []Number) (r Number, err error) {
	defer recoverSymbolic(&err)
	src, v, err := calculusArgs(args)
	if err != nil {
		return nil, err
	}
	at, err := ctx.env.Scalar(args[2])
	if err != nil {
		return nil, err
	}
	order, ok := intOf(ctx.env, args[3])
	if !ok || order < 0 || order > maxTaylorOrder {
		return nil, &DomainError{X: ctx.Format(args[3]), Arg: 4}
	}
	s, err := ctx.symbolic(src, v, false)
	if err != nil {
		return nil, err
	}
	return String(s.Taylor(v, at, order).String()), nil
}

func calculusArgs(args []Number) (src, v string, err error) {
	s, ok := args[0].(String)
	t, ok2 := args[1].(String)
	if !ok || !ok2 {
		return "", "", &TypeError{Operands: []Kind{KindOf(args[0]), KindOf(args[1])}, Reason: "expression and variable must be strings"}
	}
	return string(s), string(t), nil
}

// recoverSymbolic converts a panic from the symbolic kernel into a
// DomainError.
func recoverSymbolic(err *error) {
	r := recover()
	if r == nil {
		return
	}
	*err = &DomainError{Reason: fmt.Sprint(r)}
}

// symbolic parses src and converts it to a scalar in which v is a free
// symbol. Variables of the calculator are replaced by their values. Named
// constants are replaced only if numeric is set and otherwise stay symbols,
// as do unbound names.
func (ctx *Context) symbolic(src, v string, numeric bool) (scalar.Scalar, error) {
	e, err := ctx.calc.parse(src)
	if err != nil {
		return scalar.Scalar{}, err
	}
	return ctx.toScalar(e.n, v, numeric)
}

func (ctx *Context) toScalar(n *node, v string, numeric bool) (scalar.Scalar, error) {
	switch n.kind {
	case nodeNum:
		r, ok := new(big.Rat).SetString(n.name)
		if !ok {
			return scalar.Scalar{}, &LexError{Text: n.name, Scanning: "number", Col: n.pos}
		}
		return scalar.Rat(r), nil
	case nodeName:
		if n.name == v {
			return scalar.Symbol(v), nil
		}
		if x, ok := ctx.calc.vars.Get(n.name); ok {
			s, err := ctx.env.Scalar(x)
			return s, blame(err, n.pos, n.name)
		}
		if x, ok := ctx.env.Const(n.name); ok && numeric {
			s, err := ctx.env.Scalar(x)
			return s, blame(err, n.pos, n.name)
		}
		return scalar.Symbol(n.name), nil
	case nodeNeg, nodeNop:
		x, err := ctx.toScalar(n.left, v, numeric)
		if err != nil {
			return x, err
		}
		if n.kind == nodeNeg {
			x = x.Neg()
		}
		return x, nil
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow:
		x, err := ctx.toScalar(n.left, v, numeric)
		if err != nil {
			return x, err
		}
		y, err := ctx.toScalar(n.right, v, numeric)
		if err != nil {
			return y, err
		}
		switch n.kind {
		case nodeAdd:
			return x.Add(y), nil
		case nodeSub:
			return x.Sub(y), nil
		case nodeMul:
			return x.Mul(y), nil
		case nodeDiv:
			q, err := x.Quo(y)
			if err != nil {
				return q, blame(algebraError(err), n.pos, "/")
			}
			return q, nil
		default:
			return scalar.FromExpr(gosymbol.PowOf(x.Expr(), y.Expr())), nil
		}
	case nodeCall:
		f := symbolicFuncs[n.name]
		if f == nil || len(n.kids) != 1 {
			return scalar.Scalar{}, &TypeError{Col: n.pos, Op: n.name, Reason: "no symbolic form"}
		}
		x, err := ctx.toScalar(n.kids[0], v, numeric)
		if err != nil {
			return x, err
		}
		return scalar.FromExpr(f(x.Expr())), nil
	}
	return scalar.Scalar{}, &TypeError{Col: n.pos, Op: n.kind.String(), Reason: "no symbolic form"}
}
