package calculator

import (
	"strings"
)

// Func is a function callable from expressions. Functions are resolved by
// name when a call is evaluated, first in the active environment and then
// among the builtins common to all environments.
type Func interface {
	// Call evaluates the function. args has a length for which CanCall
	// returned true, and every argument is already evaluated. Errors of this
	// package's types returned from Call are given the position of the call
	// and the function's name if they do not already have them.
	Call(ctx *Context, args []Number) (Number, error)

	// CanCall returns whether the function can be called with n arguments.
	// A call with any other number of arguments is an ArityError.
	CanCall(n int) bool
}

type monadic struct {
	f func(x Number) (Number, error)
}

func (m monadic) Call(ctx *Context, args []Number) (Number, error) {
	return m.f(args[0])
}

func (m monadic) CanCall(n int) bool {
	return n == 1
}

// Monadic wraps a function of one argument into a Func.
func Monadic(f func(x Number) (Number, error)) Func {
	return monadic{f}
}

type dyadic struct {
	f func(x, y Number) (Number, error)
}

func (d dyadic) Call(ctx *Context, args []Number) (Number, error) {
	return d.f(args[0], args[1])
}

func (d dyadic) CanCall(n int) bool {
	return n == 2
}

// Dyadic wraps a function of two arguments into a Func.
func Dyadic(f func(x, y Number) (Number, error)) Func {
	return dyadic{f}
}

type niladic struct {
	f func(ctx *Context) (Number, error)
}

func (n niladic) Call(ctx *Context, args []Number) (Number, error) {
	return n.f(ctx)
}

func (n niladic) CanCall(k int) bool {
	return k == 0
}

// Niladic wraps a function of zero arguments into a Func. Niladic functions
// usually inspect the context, e.g. to report the active environment.
func Niladic(f func(ctx *Context) (Number, error)) Func {
	return niladic{f}
}

type variadic struct {
	min, max int
	f        func(ctx *Context, args []Number) (Number, error)
}

func (v variadic) Call(ctx *Context, args []Number) (Number, error) {
	return v.f(ctx, args)
}

func (v variadic) CanCall(n int) bool {
	return n >= v.min && (v.max < 0 || n <= v.max)
}

// Variadic wraps a function of between min and max arguments, inclusive, into
// a Func. A negative max means there is no upper bound.
func Variadic(min, max int, f func(ctx *Context, args []Number) (Number, error)) Func {
	return variadic{min, max, f}
}

// Typed wraps a function of one argument of variant T. Calling it with any
// other variant is a TypeError.
func Typed[T Number](f func(x T) (Number, error)) Func {
	return Monadic(func(x Number) (Number, error) {
		t, ok := As[T](x)
		if !ok {
			return nil, typeError("", x)
		}
		return f(t)
	})
}

// Typed2 wraps a function of two arguments of variant T.
func Typed2[T Number](f func(x, y T) (Number, error)) Func {
	return Dyadic(func(x, y Number) (Number, error) {
		a, ok := As[T](x)
		b, ok2 := As[T](y)
		if !ok || !ok2 {
			return nil, typeError("", x, y)
		}
		return f(a, b)
	})
}

// builtins are the functions available in every environment. Environment
// functions of the same name take precedence.
var builtins map[string]Func

func init() {
	// Assigned in init because exec and the calculus functions refer back to
	// the evaluator, which refers to builtins.
	builtins = map[string]Func{
		"env":    Niladic(envName),
		"vars":   Niladic(dumpVars),
		"clear":  Niladic(clearVars),
		"consts": Niladic(listConsts),
		"funcs":  Niladic(listFuncs),
		"exec":   Variadic(1, 1, execString),
		"kind":   Monadic(kindName),
		"str":    Variadic(1, 1, toString),
		"diff":   Variadic(2, 3, diff),
		"taylor": Variadic(4, 4, taylor),
	}
}

func envName(ctx *Context) (Number, error) {
	return String(ctx.Env().Name()), nil
}

func dumpVars(ctx *Context) (Number, error) {
	vars := ctx.Vars()
	var b strings.Builder
	for i, name := range vars.Names() {
		if i > 0 {
			b.WriteString("; ")
		}
		v, _ := vars.Get(name)
		b.WriteString(name)
		b.WriteString(" = ")
		b.WriteString(ctx.Format(v))
	}
	return String(b.String()), nil
}

func clearVars(ctx *Context) (Number, error) {
	n := ctx.Vars().Clear()
	return ctx.Env().FromInt(int64(n)), nil
}

func listConsts(ctx *Context) (Number, error) {
	return String(strings.Join(ctx.Env().Consts(), ", ")), nil
}

func listFuncs(ctx *Context) (Number, error) {
	return String(strings.Join(ctx.Env().Funcs(), ", ")), nil
}

func execString(ctx *Context, args []Number) (Number, error) {
	s, ok := args[0].(String)
	if !ok {
		return nil, typeError("", args[0])
	}
	return ctx.Exec(string(s))
}

func kindName(x Number) (Number, error) {
	return String(KindOf(x).String()), nil
}

func toString(ctx *Context, args []Number) (Number, error) {
	if s, ok := args[0].(String); ok {
		return s, nil
	}
	return String(ctx.Format(args[0])), nil
}
