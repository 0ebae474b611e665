package calculator

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Expr = Seq
// Seq = Stmt { ';' Stmt } [ ';' ]
// Stmt = name '=' Stmt | Or
// Or = And { ('or' | '||') And }
// And = Cmp { ('and' | '&&') Cmp }
// Cmp = Sum { ('==' | '!=' | '<' | '<=' | '>' | '>=') Sum }
// Sum = Prod { ('+' | '-') Prod }
// Prod = Unary { ('*' | '/' | '×' | '÷') Unary }
// Unary = ('-' | '+' | '!' | 'not' | '~' | '$') Unary | Pow
// Pow = Post { ('^' | '.') Unary }
// Post = Primary { '[' Stmt { ',' Stmt } ']' }
// Primary = num | string | 'true' | 'false' | name | name '(' [ Stmt { ',' Stmt } ] ')'
//	| '(' Expr ')' | '{' Expr '}' | '[' Row { ';' Row } ']'
//	| 'if' '(' Expr ')' Stmt [ 'else' Stmt ]
//	| 'while' '(' Expr ')' Stmt
//	| 'for' '(' [Stmt] ';' [Stmt] ';' [Stmt] ')' Stmt
// Row = Stmt { ',' Stmt }

// Expr is a parsed expression that can be evaluated by a Calculator.
type Expr struct {
	// n is the root node of the expression.
	n *node
	// names is the list of variable names used in the expression.
	names []string
}

// parsectx holds general data for parsing.
type parsectx struct {
	// names is the set of variable names that have been seen this parse.
	names map[string]bool
	// depth is the current nesting depth.
	depth int
}

// maxNesting is the deepest nesting of subexpressions the parser accepts.
const maxNesting = 512

// Parse parses an expression.
func Parse(src io.RuneScanner) (*Expr, error) {
	scan := lex(src)
	p := parsectx{
		names: make(map[string]bool),
	}
	n, err := parseterm(scan, &p, exprprec)
	if err != nil {
		return nil, err
	}
	tok := scan.must()
	if n == nil {
		if tok.Kind == TokenEOF {
			return nil, &EmptyExpressionError{Col: tok.Pos, End: ""}
		}
		return nil, itShouldNotHaveEndedThisWay(tok, -1)
	}
	if tok.Kind != TokenEOF {
		return nil, itShouldNotHaveEndedThisWay(tok, -1)
	}
	ex := Expr{
		n:     n,
		names: make([]string, 0, len(p.names)),
	}
	for k := range p.names {
		ex.names = append(ex.names, k)
	}
	sortstrs(ex.names)
	return &ex, nil
}

// ParseString is a shortcut to parse an expression from a string.
func ParseString(src string) (*Expr, error) {
	return Parse(strings.NewReader(src))
}

// sortstrs sorts a string slice without using package sort because that has
// reflection and allocation problems.
func sortstrs(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}

// parseterm parses a single term. If there is no error, then parseterm pushes
// the last token it scans, including EOF. If the input is an empty
// subexpression, the result is nil with no error; callers must create an error
// in contexts where empty subexpressions are illegal.
func parseterm(scan *lexer, p *parsectx, until operator) (*node, error) {
	n, err := parselhs(scan, p, until)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	for {
		tok, err := scan.next()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case TokenOp, TokenSep, TokenKeyword:
			prec := binop(tok)
			if prec.op == nodeNone {
				switch {
				case tok.Kind == TokenSep, tok.Text == "else":
					// Separators other than ; at this precedence and else
					// end the term for the caller.
					scan.push(tok)
					return n, nil
				case tok.Kind == TokenKeyword:
					return nil, &SyntaxError{Col: tok.Pos, Token: tok.Text, Msg: "unexpected keyword"}
				}
				return nil, &OperatorError{Col: tok.Pos, Operator: tok.Text, Unary: false}
			}
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			rhs, err := parseterm(scan, p, prec)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				if prec.op == nodeBlock {
					// Trailing semicolon.
					return n, nil
				}
				end := scan.must()
				scan.push(end)
				return nil, &EmptyExpressionError{Col: end.Pos, End: end.Text}
			}
			n, err = combine(tok, prec.op, n, rhs)
			if err != nil {
				return nil, err
			}
		case TokenClose, TokenEOF:
			// End of expression.
			scan.push(tok)
			return n, nil
		default:
			// Two operands in a row. There is no implicit multiplication.
			return nil, &SyntaxError{Col: tok.Pos, Token: tok.Text, Msg: "missing operator before"}
		}
	}
}

// combine builds the node for a binary operator.
func combine(tok Token, op nodeKind, l, r *node) (*node, error) {
	switch op {
	case nodeBlock:
		if l.kind == nodeBlock && l.name == "" {
			l.kids = append(l.kids, r)
			return l, nil
		}
		return &node{kind: nodeBlock, pos: tok.Pos, kids: []*node{l, r}}, nil
	case nodeAssign:
		if l.kind != nodeName {
			return nil, &SyntaxError{Col: tok.Pos, Token: tok.Text, Msg: "left side must be a variable name for"}
		}
	}
	return &node{kind: op, pos: tok.Pos, name: tok.Text, left: l, right: r}, nil
}

// parselhs parses the first component of a term. I.e., operators are unary,
// and any encountered token must be valid as the start of a subexpression.
func parselhs(scan *lexer, p *parsectx, until operator) (*node, error) {
	tok, err := scan.next()
	if err != nil {
		return nil, err
	}
	if p.depth++; p.depth > maxNesting {
		return nil, &SyntaxError{Col: tok.Pos, Msg: "expression nested too deeply"}
	}
	defer func() { p.depth-- }()
	var n *node
	switch tok.Kind {
	case TokenNum:
		n = &node{kind: nodeNum, pos: tok.Pos, name: tok.Text}
	case TokenString:
		n = &node{kind: nodeStr, pos: tok.Pos, name: tok.Text}
	case TokenIdent:
		next, err := scan.next()
		if err != nil {
			return nil, err
		}
		if next.Kind == TokenOpen && next.Text == "(" {
			args, err := parselist(scan, p, next, true)
			if err != nil {
				return nil, err
			}
			n = &node{kind: nodeCall, pos: tok.Pos, name: tok.Text, kids: args}
		} else {
			scan.push(next)
			p.names[tok.Text] = true
			n = &node{kind: nodeName, pos: tok.Pos, name: tok.Text}
		}
	case TokenKeyword:
		switch tok.Text {
		case "true", "false":
			n = &node{kind: nodeBool, pos: tok.Pos, name: tok.Text}
		case "not":
			return parseunary(scan, p, until, tok)
		case "if":
			return parseif(scan, p, tok)
		case "while":
			return parsewhile(scan, p, tok)
		case "for":
			return parsefor(scan, p, tok)
		case "else":
			// Let the caller decide what an empty branch means.
			scan.push(tok)
			return nil, nil
		default:
			return nil, &SyntaxError{Col: tok.Pos, Token: tok.Text, Msg: "unexpected keyword"}
		}
	case TokenOp:
		return parseunary(scan, p, until, tok)
	case TokenOpen:
		switch tok.Text {
		case "(":
			rhs, err := parsegroup(scan, p, tok)
			if err != nil {
				return nil, err
			}
			n = rhs
		case "{":
			rhs, err := parsegroup(scan, p, tok)
			if err != nil {
				return nil, err
			}
			if rhs.kind == nodeBlock && rhs.name == "" {
				rhs.name = "{"
				n = rhs
			} else {
				n = &node{kind: nodeBlock, pos: tok.Pos, name: "{", kids: []*node{rhs}}
			}
		case "[":
			rhs, err := parsematrix(scan, p, tok)
			if err != nil {
				return nil, err
			}
			n = rhs
		default:
			panic("calculator: unknown bracket: " + tok.String())
		}
	case TokenClose, TokenSep, TokenEOF:
		scan.push(tok)
		return nil, nil
	default:
		panic("calculator: unknown token: " + tok.String())
	}
	return parsepostfix(scan, p, n)
}

// parseunary parses a prefix operator and its operand.
func parseunary(scan *lexer, p *parsectx, until operator, tok Token) (*node, error) {
	prec := unop(tok)
	if prec.op == nodeNone {
		return nil, &OperatorError{Col: tok.Pos, Operator: tok.Text, Unary: true}
	}
	if !prec.moreBinding(until) {
		// x^-y -> x^(-y)
		// Just use the new operator's precedence to simplify.
		prec.prec, prec.right = until.prec, until.right
	}
	rhs, err := parseterm(scan, p, prec)
	if err != nil {
		return nil, err
	}
	if rhs == nil {
		end := scan.must()
		scan.push(end)
		return nil, &EmptyExpressionError{Col: end.Pos, End: end.Text}
	}
	return &node{kind: prec.op, pos: tok.Pos, name: tok.Text, left: rhs}, nil
}

// parsegroup parses a bracketed subexpression after its open bracket.
func parsegroup(scan *lexer, p *parsectx, open Token) (*node, error) {
	match := rightbracket(open.Text)
	rhs, err := parseterm(scan, p, exprprec)
	if err != nil {
		return nil, err
	}
	end := scan.must()
	if end.Kind != TokenClose || end.Text != closebrackets[match] {
		return nil, itShouldNotHaveEndedThisWay(end, match)
	}
	if rhs == nil {
		return nil, &EmptyExpressionError{Col: end.Pos, End: end.Text}
	}
	return rhs, nil
}

// parselist parses a comma-separated list up to the close bracket matching
// open. Only call argument lists may be empty.
func parselist(scan *lexer, p *parsectx, open Token, empty bool) ([]*node, error) {
	match := rightbracket(open.Text)
	var args []*node
	for {
		arg, err := parseterm(scan, p, listprec)
		if err != nil {
			return nil, err
		}
		end := scan.must()
		closed := end.Kind == TokenClose && end.Text == closebrackets[match]
		if arg == nil {
			if closed && empty && len(args) == 0 {
				return nil, nil
			}
			if closed || end.Kind == TokenSep && end.Text == "," {
				return nil, &EmptyExpressionError{Col: end.Pos, End: end.Text}
			}
			return nil, itShouldNotHaveEndedThisWay(end, match)
		}
		args = append(args, arg)
		switch {
		case closed:
			return args, nil
		case end.Kind == TokenSep && end.Text == ",":
			// next argument
		default:
			return nil, itShouldNotHaveEndedThisWay(end, match)
		}
	}
}

// parsematrix parses a bracketed literal [a, b; c, d] after its open bracket.
func parsematrix(scan *lexer, p *parsectx, open Token) (*node, error) {
	match := rightbracket(open.Text)
	m := &node{kind: nodeMatrix, pos: open.Pos}
	row := &node{kind: nodeRow, pos: open.Pos}
	for {
		el, err := parseterm(scan, p, listprec)
		if err != nil {
			return nil, err
		}
		end := scan.must()
		sep := end.Kind == TokenSep
		closed := end.Kind == TokenClose && end.Text == closebrackets[match]
		if el == nil {
			if sep || closed {
				return nil, &EmptyExpressionError{Col: end.Pos, End: end.Text}
			}
			return nil, itShouldNotHaveEndedThisWay(end, match)
		}
		row.kids = append(row.kids, el)
		switch {
		case sep && end.Text == ",":
			// next element
		case sep && end.Text == ";":
			m.kids = append(m.kids, row)
			row = &node{kind: nodeRow, pos: end.Pos}
		case closed:
			m.kids = append(m.kids, row)
			return m, nil
		default:
			return nil, itShouldNotHaveEndedThisWay(end, match)
		}
	}
}

// parsepostfix applies any index brackets following a primary expression.
func parsepostfix(scan *lexer, p *parsectx, n *node) (*node, error) {
	for {
		tok, err := scan.next()
		if err != nil {
			return nil, err
		}
		if tok.Kind != TokenOpen || tok.Text != "[" {
			scan.push(tok)
			return n, nil
		}
		idx, err := parselist(scan, p, tok, false)
		if err != nil {
			return nil, err
		}
		n = &node{kind: nodeIndex, pos: tok.Pos, left: n, kids: idx}
	}
}

// parsecond parses the parenthesized condition of a control structure.
func parsecond(scan *lexer, p *parsectx, kw Token) (*node, error) {
	open, err := scan.next()
	if err != nil {
		return nil, err
	}
	if open.Kind != TokenOpen || open.Text != "(" {
		return nil, &SyntaxError{Col: open.Pos, Token: open.Text, Msg: "expected ( after " + kw.Text + ", found"}
	}
	return parsegroup(scan, p, open)
}

// parsebranch parses the body of a control structure.
func parsebranch(scan *lexer, p *parsectx) (*node, error) {
	n, err := parseterm(scan, p, listprec)
	if err != nil {
		return nil, err
	}
	if n == nil {
		end := scan.must()
		scan.push(end)
		return nil, &EmptyExpressionError{Col: end.Pos, End: end.Text}
	}
	return n, nil
}

func parseif(scan *lexer, p *parsectx, tok Token) (*node, error) {
	cond, err := parsecond(scan, p, tok)
	if err != nil {
		return nil, err
	}
	then, err := parsebranch(scan, p)
	if err != nil {
		return nil, err
	}
	n := &node{kind: nodeIf, pos: tok.Pos, kids: []*node{cond, then}}
	next, err := scan.next()
	if err != nil {
		return nil, err
	}
	if next.Kind != TokenKeyword || next.Text != "else" {
		scan.push(next)
		return n, nil
	}
	els, err := parsebranch(scan, p)
	if err != nil {
		return nil, err
	}
	n.kids = append(n.kids, els)
	return n, nil
}

func parsewhile(scan *lexer, p *parsectx, tok Token) (*node, error) {
	cond, err := parsecond(scan, p, tok)
	if err != nil {
		return nil, err
	}
	body, err := parsebranch(scan, p)
	if err != nil {
		return nil, err
	}
	return &node{kind: nodeWhile, pos: tok.Pos, kids: []*node{cond, body}}, nil
}

func parsefor(scan *lexer, p *parsectx, tok Token) (*node, error) {
	open, err := scan.next()
	if err != nil {
		return nil, err
	}
	if open.Kind != TokenOpen || open.Text != "(" {
		return nil, &SyntaxError{Col: open.Pos, Token: open.Text, Msg: "expected ( after for, found"}
	}
	n := &node{kind: nodeFor, pos: tok.Pos, kids: make([]*node, 4)}
	for i, want := range [...]string{";", ";", ")"} {
		part, err := parseterm(scan, p, listprec)
		if err != nil {
			return nil, err
		}
		end := scan.must()
		if end.Text != want || end.Kind != TokenSep && end.Kind != TokenClose {
			if end.Kind == TokenSep || end.Kind == TokenEOF || end.Kind == TokenClose {
				return nil, itShouldNotHaveEndedThisWay(end, 0)
			}
			return nil, &SyntaxError{Col: end.Pos, Token: end.Text, Msg: "unexpected"}
		}
		n.kids[i] = part
	}
	body, err := parsebranch(scan, p)
	if err != nil {
		return nil, err
	}
	n.kids[3] = body
	return n, nil
}

// rightbracket gets the closing bracket index for an opening bracket.
func rightbracket(left string) int {
	r, sz := utf8.DecodeRuneInString(left)
	k := strings.IndexRune(OpenBrackets, r)
	if k < 0 || sz != len(left) {
		panic("calculator: invalid bracket " + left)
	}
	return k
}

// leftbracket gets the opening bracket matching right. If right is no bracket,
// then the result is the empty string.
func leftbracket(right int) string {
	if right == -1 {
		return ""
	}
	return openbrackets[right]
}

// itShouldNotHaveEndedThisWay returns an error appropriate for an unexpected
// token at the end of a subexpression. match is the bracket rune index that
// the expression should have matched, or -1 if none.
func itShouldNotHaveEndedThisWay(tok Token, match int) error {
	switch tok.Kind {
	case TokenEOF:
		// Unexpected EOF implies an open bracket that was not closed.
		return &BracketError{Col: tok.Pos, Left: leftbracket(match), Right: ""}
	case TokenClose:
		// A bracket could be the wrong bracket for the opening brace or any
		// bracket at the end of an input.
		return &BracketError{Col: tok.Pos, Left: leftbracket(match), Right: tok.Text}
	case TokenSep:
		// Separator where a list does not allow one.
		return &SeparatorError{Col: tok.Pos, Sep: tok.Text}
	default:
		return &SyntaxError{Col: tok.Pos, Token: tok.Text, Msg: "unexpected"}
	}
}

// Vars returns the variable names used when evaluating the expression.
func (e *Expr) Vars() []string {
	return append(([]string)(nil), e.names...)
}

// String creates a string representation of the parsed expression, with
// alternating round and square brackets grouping each term.
func (e *Expr) String() string {
	var b strings.Builder
	e.n.fmt(&b, false, true)
	return b.String()
}

// assigned returns the name of the variable the expression assigns last at
// its top level, if its final statement is an assignment.
func (e *Expr) assigned() string {
	n := e.n
	for n.kind == nodeBlock && len(n.kids) > 0 {
		n = n.kids[len(n.kids)-1]
	}
	if n.kind == nodeAssign {
		return n.left.name
	}
	return ""
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the node kind to use when this operator is selected.
	op nodeKind
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets a binary operator for a token. If there is no such binary
// operator, then the result has an op of nodeNone.
func binop(tok Token) operator {
	switch tok.Kind {
	case TokenSep:
		if tok.Text == ";" {
			return operator{1, false, nodeBlock}
		}
		return operator{}
	case TokenKeyword:
		switch tok.Text {
		case "or":
			return operator{3, false, nodeOr}
		case "and":
			return operator{4, false, nodeAnd}
		}
		return operator{}
	}
	switch tok.Text {
	case "=":
		return operator{2, true, nodeAssign}
	case "||":
		return operator{3, false, nodeOr}
	case "&&":
		return operator{4, false, nodeAnd}
	case "==":
		return operator{5, false, nodeEq}
	case "!=":
		return operator{5, false, nodeNe}
	case "<":
		return operator{5, false, nodeLt}
	case "<=":
		return operator{5, false, nodeLe}
	case ">":
		return operator{5, false, nodeGt}
	case ">=":
		return operator{5, false, nodeGe}
	case "+":
		return operator{6, false, nodeAdd}
	case "-":
		return operator{6, false, nodeSub}
	case "*", "×":
		return operator{7, false, nodeMul}
	case "/", "÷":
		return operator{7, false, nodeDiv}
	case "^":
		return operator{9, true, nodePow}
	case ".":
		return operator{9, false, nodeDot}
	default:
		return operator{}
	}
}

// unop gets a unary operator for a token. If there is no such unary operator,
// then the result has an op of nodeNone.
func unop(tok Token) operator {
	switch tok.Text {
	case "+":
		return operator{8, true, nodeNop}
	case "-":
		return operator{8, true, nodeNeg}
	case "!", "not":
		return operator{8, true, nodeNot}
	case "~":
		return operator{8, true, nodeRev}
	case "$":
		return operator{8, true, nodeExec}
	default:
		return operator{}
	}
}

var (
	// listprec is the precedence for parsing elements of lists and the
	// statements of control structures. Semicolons and commas end them.
	listprec = operator{1, false, nodeBlock}
	// exprprec is the precedence required to parse an entire subexpression.
	exprprec = operator{-128, true, nodeNone}
)
