package calculator

import (
	"cmp"
	"errors"
	"fmt"
	"sort"

	"github.com/spencerparkin/GAVisTool-sub000/scalar"
)

// Environment is a number system and the operators, constants, and functions
// defined over it. A Calculator evaluates every expression in exactly one
// environment at a time.
//
// Operator methods receive the evaluated operands and return either a result
// or one of the error types of this package. String and Bool operands are
// handled before an environment sees them.
type Environment interface {
	// Name identifies the environment, e.g. "rational".
	Name() string
	// Parse converts the text of a numeric literal to a value.
	Parse(text string) (Number, error)
	// Format renders a value for display.
	Format(x Number) string

	// Unary applies a prefix operator: "-", "+", or "~".
	Unary(op string, x Number) (Number, error)
	// Binary applies an infix operator: "+", "-", "*", "/", "^", ".", "==",
	// "!=", "<", "<=", ">", or ">=".
	Binary(op string, x, y Number) (Number, error)
	// Truth interprets a value as a condition.
	Truth(x Number) (bool, error)
	// Index evaluates x[idx...].
	Index(x Number, idx []Number) (Number, error)
	// Compose builds a value from a bracketed literal [a, b; c, d].
	Compose(rows [][]Number) (Number, error)

	// FromInt converts an integer to the environment's number type.
	FromInt(n int64) Number
	// Scalar converts a value to an exact or symbolic scalar.
	Scalar(x Number) (scalar.Scalar, error)
	// FromScalar converts a scalar back to the environment's number type.
	FromScalar(s scalar.Scalar) (Number, error)

	// Const looks up a named constant.
	Const(name string) (Number, bool)
	// SetConst defines or replaces a named constant.
	SetConst(name string, x Number)
	// Func looks up a function.
	Func(name string) (Func, bool)
	// Define defines or replaces a function. A nil f removes it.
	Define(name string, f Func)
	// Consts lists the names of constants in sorted order.
	Consts() []string
	// Funcs lists the names of functions in sorted order.
	Funcs() []string
	// IterationLimit is the largest number of times a single loop may run.
	IterationLimit() int
}

// DefaultIterationLimit is the iteration limit of new environments.
const DefaultIterationLimit = 100000

// Registry holds the constants and functions of an environment. Environment
// implementations embed it.
type Registry struct {
	consts map[string]Number
	funcs  map[string]Func
	limit  int
}

// NewRegistry creates an empty registry with the default iteration limit.
func NewRegistry() *Registry {
	return &Registry{
		consts: make(map[string]Number),
		funcs:  make(map[string]Func),
		limit:  DefaultIterationLimit,
	}
}

func (r *Registry) Const(name string) (Number, bool) {
	x, ok := r.consts[name]
	return x, ok
}

func (r *Registry) SetConst(name string, x Number) {
	if x == nil {
		delete(r.consts, name)
		return
	}
	r.consts[name] = x
}

func (r *Registry) Func(name string) (Func, bool) {
	f, ok := r.funcs[name]
	return f, ok
}

func (r *Registry) Define(name string, f Func) {
	if f == nil {
		delete(r.funcs, name)
		return
	}
	r.funcs[name] = f
}

// defineAll defines each function of fns.
func (r *Registry) defineAll(fns map[string]Func) {
	for name, f := range fns {
		r.Define(name, f)
	}
}

func (r *Registry) Consts() []string { return sortedKeys(r.consts) }
func (r *Registry) Funcs() []string  { return sortedKeys(r.funcs) }

func (r *Registry) IterationLimit() int { return r.limit }

// SetIterationLimit changes the iteration limit. Values below 1 are treated
// as 1.
func (r *Registry) SetIterationLimit(n int) {
	if n < 1 {
		n = 1
	}
	r.limit = n
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

var environments = map[string]func() Environment{
	"float":       func() Environment { return NewFloat() },
	"rational":    func() Environment { return NewRational(DefaultDigits, false) },
	"complex":     func() Environment { return NewComplex() },
	"fraction":    func() Environment { return NewFraction() },
	"multivector": func() Environment { return NewMultivector() },
	"conformal":   func() Environment { return NewConformal() },
	"matrix":      func() Environment { return NewMatrix() },
}

// ErrUnknownEnvironment is returned by NewEnvironment for unrecognized names.
var ErrUnknownEnvironment = errors.New("calculator: unknown environment")

// NewEnvironment creates an environment by name with default settings.
func NewEnvironment(name string) (Environment, error) {
	f := environments[name]
	if f == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownEnvironment, name)
	}
	return f(), nil
}

// Environments lists the names accepted by NewEnvironment.
func Environments() []string {
	return sortedKeys(environments)
}

// unary applies a prefix operator. Strings and booleans have no prefix
// operators other than not, which the evaluator handles itself.
func unary(env Environment, op string, x Number) (Number, error) {
	switch x.(type) {
	case String, Bool:
		return nil, typeError(op, x)
	}
	return env.Unary(op, x)
}

// binary applies an infix operator, handling the kinds shared by all
// environments before deferring to env.
func binary(env Environment, op string, x, y Number) (Number, error) {
	xs, xstr := x.(String)
	ys, ystr := y.(String)
	xb, xbool := x.(Bool)
	yb, ybool := y.(Bool)
	switch {
	case xstr && ystr:
		if op == "+" {
			return xs + ys, nil
		}
		if r, ok := compare(op, cmp.Compare(xs, ys)); ok {
			return r, nil
		}
		return nil, typeError(op, x, y)
	case xbool && ybool:
		switch op {
		case "==":
			return Bool(xb == yb), nil
		case "!=":
			return Bool(xb != yb), nil
		}
		return nil, typeError(op, x, y)
	case xstr, ystr, xbool, ybool:
		return nil, typeError(op, x, y)
	}
	return env.Binary(op, x, y)
}

// truth interprets a value as a condition.
func truth(env Environment, x Number) (bool, error) {
	switch x := x.(type) {
	case Bool:
		return bool(x), nil
	case String:
		return false, &TypeError{Op: "condition", Operands: []Kind{StringKind}, Reason: "a string is not a condition"}
	}
	return env.Truth(x)
}

// compare converts the result of a three-way comparison into the result of a
// comparison operator. ok is false if op is not a comparison.
func compare(op string, c int) (r Number, ok bool) {
	switch op {
	case "==":
		return Bool(c == 0), true
	case "!=":
		return Bool(c != 0), true
	case "<":
		return Bool(c < 0), true
	case "<=":
		return Bool(c <= 0), true
	case ">":
		return Bool(c > 0), true
	case ">=":
		return Bool(c >= 0), true
	}
	return nil, false
}

// isOrdering reports whether op is an ordering comparison.
func isOrdering(op string) bool {
	switch op {
	case "<", "<=", ">", ">=":
		return true
	}
	return false
}

// intOf extracts a machine integer from a value through its scalar form.
func intOf(env Environment, x Number) (int, bool) {
	s, err := env.Scalar(x)
	if err != nil {
		return 0, false
	}
	r, ok := s.Rat()
	if !ok || !r.IsInt() || !r.Num().IsInt64() {
		return 0, false
	}
	n := r.Num().Int64()
	if int64(int(n)) != n {
		return 0, false
	}
	return int(n), true
}

// noCompose is the Compose error for environments without bracketed literals.
func noCompose(env Environment) error {
	return &TypeError{Op: "[]", Reason: "bracketed literals are not supported in the " + env.Name() + " environment"}
}
