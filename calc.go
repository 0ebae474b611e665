package calculator

import (
	"context"
	"log/slog"
)

// Calculator evaluates expressions in one environment against one symbol
// table. Assignments persist across evaluations. It is not safe to use a
// Calculator concurrently.
type Calculator struct {
	env      Environment
	vars     *Symbols
	cache    map[string]*Expr
	maxDepth int
	log      *slog.Logger
}

// Option is an option used when creating a calculator.
type Option interface {
	calcOption()
}

type (
	varopt struct {
		name string
		val  Number
	}
	varsopt  map[string]Number
	depthopt int
	logopt   struct{ l *slog.Logger }
)

func (varopt) calcOption()   {}
func (varsopt) calcOption()  {}
func (depthopt) calcOption() {}
func (logopt) calcOption()   {}

// SetVar sets the value of a variable in the calculator.
func SetVar(name string, val Number) Option {
	return varopt{name, val}
}

// SetVars sets the values of any number of variables in the calculator.
func SetVars(vars map[string]Number) Option {
	return varsopt(vars)
}

// MaxDepth sets the deepest nesting of string executions. Values below 1 are
// treated as 1.
func MaxDepth(n int) Option {
	return depthopt(n)
}

// Logger sets the logger for debug records about evaluation.
func Logger(l *slog.Logger) Option {
	return logopt{l}
}

// DefaultMaxDepth is the maximum depth of string executions if no MaxDepth
// option is given.
const DefaultMaxDepth = 32

// maxCache is the number of parsed string expressions a calculator keeps.
const maxCache = 256

// New creates a calculator evaluating in env.
func New(env Environment, opts ...Option) *Calculator {
	c := Calculator{
		env:      env,
		vars:     NewSymbols(),
		cache:    make(map[string]*Expr),
		maxDepth: DefaultMaxDepth,
		log:      slog.New(discard{}),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			c.vars.Set(opt.name, opt.val)
		case varsopt:
			for k, v := range opt {
				c.vars.Set(k, v)
			}
		case depthopt:
			c.maxDepth = max(int(opt), 1)
		case logopt:
			if opt.l != nil {
				c.log = opt.l
			}
		default:
			panic("calculator: unknown option type")
		}
	}
	return &c
}

// Result is the outcome of a successful evaluation.
type Result struct {
	// Value is the value of the expression.
	Value Number
	// Text is Value rendered in the environment the expression was evaluated
	// in.
	Text string
	// Assigned is the variable assigned by the final statement of the
	// expression, if it was an assignment.
	Assigned string
}

// Eval parses and evaluates src. If evaluation fails, assignments completed
// before the failure remain in effect.
func (c *Calculator) Eval(src string) (*Result, error) {
	e, err := c.parse(src)
	if err != nil {
		c.log.Debug("parse failed", "source", src, "kind", ErrorKindOf(err), "err", err)
		return nil, err
	}
	return c.EvalExpr(e)
}

// EvalExpr evaluates a parsed expression.
func (c *Calculator) EvalExpr(e *Expr) (*Result, error) {
	ctx := Context{
		calc:   c,
		env:    c.env,
		active: map[*node]bool{e.n: true},
	}
	v, err := e.n.eval(&ctx)
	if err != nil {
		c.log.Debug("evaluation failed", "kind", ErrorKindOf(err), "err", err)
		return nil, err
	}
	return &Result{Value: v, Text: format(c.env, v), Assigned: e.assigned()}, nil
}

// Parse parses src for later evaluation with EvalExpr.
func (c *Calculator) Parse(src string) (*Expr, error) {
	return c.parse(src)
}

// parse parses src, reusing earlier parses of the same text.
func (c *Calculator) parse(src string) (*Expr, error) {
	if e := c.cache[src]; e != nil {
		return e, nil
	}
	e, err := ParseString(src)
	if err != nil {
		return nil, err
	}
	if len(c.cache) >= maxCache {
		clear(c.cache)
	}
	c.cache[src] = e
	return e, nil
}

// Environment returns the active environment.
func (c *Calculator) Environment() Environment {
	return c.env
}

// SetEnvironment changes the active environment. Variables keep their
// values; using one that the new environment cannot handle is a TypeError at
// the point of use.
func (c *Calculator) SetEnvironment(env Environment) {
	c.log.Debug("switch environment", "from", c.env.Name(), "to", env.Name())
	c.env = env
}

// Vars returns the symbol table.
func (c *Calculator) Vars() *Symbols {
	return c.vars
}

// Define defines a function in the active environment.
func (c *Calculator) Define(name string, f Func) {
	c.env.Define(name, f)
}

// DefineConst defines a constant in the active environment.
func (c *Calculator) DefineConst(name string, x Number) {
	c.env.SetConst(name, x)
}

// Format renders a value in the active environment.
func (c *Calculator) Format(x Number) string {
	return format(c.env, x)
}

func format(env Environment, x Number) string {
	switch x := x.(type) {
	case nil:
		return ""
	case String, Bool:
		return x.String()
	}
	return env.Format(x)
}

// Symbols is a table of variables.
type Symbols struct {
	m map[string]Number
}

// NewSymbols creates an empty symbol table.
func NewSymbols() *Symbols {
	return &Symbols{m: make(map[string]Number)}
}

// Get returns the value of a variable.
func (s *Symbols) Get(name string) (Number, bool) {
	v, ok := s.m[name]
	return v, ok
}

// Set sets a variable, replacing any previous value of any kind.
func (s *Symbols) Set(name string, x Number) {
	s.m[name] = x
}

// Delete removes a variable and reports whether it existed.
func (s *Symbols) Delete(name string) bool {
	_, ok := s.m[name]
	delete(s.m, name)
	return ok
}

// Names lists the variable names in sorted order.
func (s *Symbols) Names() []string {
	return sortedKeys(s.m)
}

// Clear removes all variables and returns how many there were.
func (s *Symbols) Clear() int {
	n := len(s.m)
	clear(s.m)
	return n
}

// Len returns the number of variables.
func (s *Symbols) Len() int {
	return len(s.m)
}

// discard is a slog.Handler that drops every record.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }
