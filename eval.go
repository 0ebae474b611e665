package calculator

// Context is the state of one top-level evaluation by a Calculator. Functions
// receive it to inspect the environment and variables or to execute strings.
// A Context is only valid during the call it is passed to.
type Context struct {
	calc *Calculator
	env  Environment
	// depth is the number of string executions in progress.
	depth int
	// active is the set of expression roots being evaluated.
	active map[*node]bool
	// pos is the position of the innermost call being evaluated.
	pos int
}

// Env returns the active environment.
func (ctx *Context) Env() Environment {
	return ctx.env
}

// Vars returns the calculator's symbol table.
func (ctx *Context) Vars() *Symbols {
	return ctx.calc.vars
}

// Pos returns the position of the innermost call being evaluated.
func (ctx *Context) Pos() int {
	return ctx.pos
}

// Format renders a value in the active environment.
func (ctx *Context) Format(x Number) string {
	return format(ctx.env, x)
}

// Exec tokenizes, parses, and evaluates src within the current evaluation.
// Nested executions share the symbol table and are bounded by the
// calculator's maximum depth. Executing a string that is already being
// executed is a CycleError.
func (ctx *Context) Exec(src string) (Number, error) {
	return ctx.exec(src, ctx.pos)
}

func (ctx *Context) exec(src string, pos int) (Number, error) {
	if ctx.depth >= ctx.calc.maxDepth {
		return nil, &LimitError{Col: pos, What: "recursion depth", Limit: ctx.calc.maxDepth}
	}
	e, err := ctx.calc.parse(src)
	if err != nil {
		return nil, err
	}
	if ctx.active[e.n] {
		return nil, &CycleError{Col: pos, Source: src}
	}
	ctx.active[e.n] = true
	ctx.depth++
	ctx.calc.log.Debug("exec", "source", src, "depth", ctx.depth)
	defer func() {
		delete(ctx.active, e.n)
		ctx.depth--
	}()
	return e.n.eval(ctx)
}

// eval evaluates the node.
func (n *node) eval(ctx *Context) (Number, error) {
	switch n.kind {
	case nodeNum:
		x, err := ctx.env.Parse(n.name)
		if err != nil {
			return nil, blame(err, n.pos, "")
		}
		return x, nil
	case nodeStr:
		return String(n.name), nil
	case nodeBool:
		return Bool(n.name == "true"), nil
	case nodeName:
		if v, ok := ctx.calc.vars.Get(n.name); ok {
			return v, nil
		}
		if v, ok := ctx.env.Const(n.name); ok {
			return v, nil
		}
		return nil, &NameError{Col: n.pos, Name: n.name}
	case nodeCall:
		return n.call(ctx)
	case nodeNeg, nodeNop, nodeRev:
		x, err := n.left.eval(ctx)
		if err != nil {
			return nil, err
		}
		r, err := unary(ctx.env, n.kind.op(), x)
		if err != nil {
			return nil, blame(err, n.pos, n.kind.op())
		}
		return r, nil
	case nodeNot:
		x, err := n.left.eval(ctx)
		if err != nil {
			return nil, err
		}
		t, err := truth(ctx.env, x)
		if err != nil {
			return nil, blame(err, n.pos, "not")
		}
		return Bool(!t), nil
	case nodeExec:
		x, err := n.left.eval(ctx)
		if err != nil {
			return nil, err
		}
		s, ok := x.(String)
		if !ok {
			return nil, &TypeError{Col: n.pos, Op: "$", Operands: []Kind{KindOf(x)}}
		}
		return ctx.exec(string(s), n.pos)
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow, nodeDot, nodeEq, nodeNe, nodeLt, nodeLe, nodeGt, nodeGe:
		l, err := n.left.eval(ctx)
		if err != nil {
			return nil, err
		}
		r, err := n.right.eval(ctx)
		if err != nil {
			return nil, err
		}
		v, err := binary(ctx.env, n.kind.op(), l, r)
		if err != nil {
			return nil, blame(err, n.pos, n.kind.op())
		}
		return v, nil
	case nodeAnd, nodeOr:
		l, err := n.left.eval(ctx)
		if err != nil {
			return nil, err
		}
		t, err := truth(ctx.env, l)
		if err != nil {
			return nil, blame(err, n.pos, n.kind.op())
		}
		if t == (n.kind == nodeOr) {
			// Short circuit.
			return Bool(t), nil
		}
		r, err := n.right.eval(ctx)
		if err != nil {
			return nil, err
		}
		t, err = truth(ctx.env, r)
		if err != nil {
			return nil, blame(err, n.pos, n.kind.op())
		}
		return Bool(t), nil
	case nodeAssign:
		v, err := n.right.eval(ctx)
		if err != nil {
			return nil, err
		}
		ctx.calc.vars.Set(n.left.name, v)
		return v, nil
	case nodeIndex:
		x, err := n.left.eval(ctx)
		if err != nil {
			return nil, err
		}
		idx, err := evalall(ctx, n.kids)
		if err != nil {
			return nil, err
		}
		switch x.(type) {
		case String, Bool:
			return nil, &TypeError{Col: n.pos, Op: "[]", Operands: []Kind{KindOf(x)}}
		}
		v, err := ctx.env.Index(x, idx)
		if err != nil {
			return nil, blame(err, n.pos, "[]")
		}
		return v, nil
	case nodeMatrix:
		rows := make([][]Number, len(n.kids))
		for i, row := range n.kids {
			r, err := evalall(ctx, row.kids)
			if err != nil {
				return nil, err
			}
			rows[i] = r
		}
		v, err := ctx.env.Compose(rows)
		if err != nil {
			return nil, blame(err, n.pos, "[]")
		}
		return v, nil
	case nodeBlock:
		var v Number
		for _, k := range n.kids {
			var err error
			v, err = k.eval(ctx)
			if err != nil {
				return nil, err
			}
		}
		return v, nil
	case nodeIf:
		t, err := n.cond(ctx, n.kids[0])
		if err != nil {
			return nil, err
		}
		switch {
		case t:
			return n.kids[1].eval(ctx)
		case len(n.kids) > 2:
			return n.kids[2].eval(ctx)
		}
		return Bool(false), nil
	case nodeWhile:
		return n.loop(ctx, nil, n.kids[0], nil, n.kids[1])
	case nodeFor:
		return n.loop(ctx, n.kids[0], n.kids[1], n.kids[2], n.kids[3])
	default:
		panic("calculator: invalid AST node " + n.kind.String())
	}
}

// call evaluates a function call.
func (n *node) call(ctx *Context) (Number, error) {
	args, err := evalall(ctx, n.kids)
	if err != nil {
		return nil, err
	}
	f, ok := ctx.env.Func(n.name)
	if !ok {
		f, ok = builtins[n.name]
	}
	if !ok {
		return nil, &FuncError{Col: n.pos, Name: n.name}
	}
	if !f.CanCall(len(args)) {
		return nil, &ArityError{Col: n.pos, Func: n.name, Len: len(args)}
	}
	prev := ctx.pos
	ctx.pos = n.pos
	r, err := f.Call(ctx, args)
	ctx.pos = prev
	if err != nil {
		return nil, blame(err, n.pos, n.name)
	}
	return r, nil
}

// cond evaluates c as the condition of n.
func (n *node) cond(ctx *Context, c *node) (bool, error) {
	x, err := c.eval(ctx)
	if err != nil {
		return false, err
	}
	t, err := truth(ctx.env, x)
	if err != nil {
		return false, blame(err, c.pos, "condition")
	}
	return t, nil
}

// loop evaluates a loop with optional init and step nodes. A missing
// condition is always true. The result is the value of the last body
// evaluation, or false if the body never runs.
func (n *node) loop(ctx *Context, init, cond, step, body *node) (Number, error) {
	if init != nil {
		if _, err := init.eval(ctx); err != nil {
			return nil, err
		}
	}
	limit := ctx.env.IterationLimit()
	var v Number = Bool(false)
	for i := 0; ; i++ {
		if cond != nil {
			t, err := n.cond(ctx, cond)
			if err != nil {
				return nil, err
			}
			if !t {
				return v, nil
			}
		}
		if i >= limit {
			return nil, &LimitError{Col: n.pos, What: "loop iterations", Limit: limit}
		}
		var err error
		v, err = body.eval(ctx)
		if err != nil {
			return nil, err
		}
		if step != nil {
			if _, err := step.eval(ctx); err != nil {
				return nil, err
			}
		}
	}
}

// evalall evaluates nodes left to right.
func evalall(ctx *Context, kids []*node) ([]Number, error) {
	r := make([]Number, len(kids))
	for i, k := range kids {
		v, err := k.eval(ctx)
		if err != nil {
			return nil, err
		}
		r[i] = v
	}
	return r, nil
}
