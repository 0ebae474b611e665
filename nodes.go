package calculator

import (
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression.
type node struct {
	kind nodeKind
	// pos is the column of the token that created the node.
	pos int
	// name is the literal text, variable name, or function name.
	name string

	left  *node
	right *node
	// kids are call arguments, indices, statements, matrix rows or elements,
	// or the parts of a control structure, depending on kind.
	kids []*node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum  // parse name in the environment
	nodeStr  // string literal name
	nodeBool // name is true or false
	nodeName // lookup(name)
	nodeCall // call name with kids as arguments

	nodeNeg  // evaluate left, then negate
	nodeNop  // evaluate left
	nodeRev  // evaluate left, then apply ~
	nodeNot  // evaluate left as a condition, then invert
	nodeExec // evaluate left as a string, then execute it

	nodeAdd // evaluate left, add right
	nodeSub // evaluate left, sub right
	nodeMul // evaluate left, mul right
	nodeDiv // evaluate left, div by right
	nodePow // evaluate left, ^ right
	nodeDot // evaluate left, . right
	nodeEq  // evaluate left, compare right
	nodeNe
	nodeLt
	nodeLe
	nodeGt
	nodeGe

	nodeAnd    // evaluate left, and right only if left is true
	nodeOr     // evaluate left, and right only if left is false
	nodeAssign // evaluate right, store in left.name
	nodeIndex  // evaluate left, index by kids
	nodeMatrix // kids are nodeRow
	nodeRow    // kids are elements
	nodeBlock  // evaluate kids in order; name is "{" if braced
	nodeIf     // kids are condition, then, and optionally else
	nodeWhile  // kids are condition and body
	nodeFor    // kids are init, condition, step, and body; any but body may be nil
)

var nodeKindNames = [...]string{
	nodeNone:   "None",
	nodeNum:    "Num",
	nodeStr:    "Str",
	nodeBool:   "Bool",
	nodeName:   "Name",
	nodeCall:   "Call",
	nodeNeg:    "Neg",
	nodeNop:    "Nop",
	nodeRev:    "Rev",
	nodeNot:    "Not",
	nodeExec:   "Exec",
	nodeAdd:    "Add",
	nodeSub:    "Sub",
	nodeMul:    "Mul",
	nodeDiv:    "Div",
	nodePow:    "Pow",
	nodeDot:    "Dot",
	nodeEq:     "Eq",
	nodeNe:     "Ne",
	nodeLt:     "Lt",
	nodeLe:     "Le",
	nodeGt:     "Gt",
	nodeGe:     "Ge",
	nodeAnd:    "And",
	nodeOr:     "Or",
	nodeAssign: "Assign",
	nodeIndex:  "Index",
	nodeMatrix: "Matrix",
	nodeRow:    "Row",
	nodeBlock:  "Block",
	nodeIf:     "If",
	nodeWhile:  "While",
	nodeFor:    "For",
}

func (k nodeKind) String() string {
	if k < 0 || int(k) >= len(nodeKindNames) {
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return nodeKindNames[k]
}

// ops is the operator text environments receive for each operator node.
var ops = [...]string{
	nodeNeg:  "-",
	nodeNop:  "+",
	nodeRev:  "~",
	nodeNot:  "not",
	nodeExec: "$",
	nodeAdd:  "+",
	nodeSub:  "-",
	nodeMul:  "*",
	nodeDiv:  "/",
	nodePow:  "^",
	nodeDot:  ".",
	nodeEq:   "==",
	nodeNe:   "!=",
	nodeLt:   "<",
	nodeLe:   "<=",
	nodeGt:   ">",
	nodeGe:   ">=",
	nodeAnd:  "and",
	nodeOr:   "or",
}

func (k nodeKind) op() string {
	if k < 0 || int(k) >= len(ops) {
		return ""
	}
	return ops[k]
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b, false, false)
	return b.String()
}

func (n *node) fmt(b *strings.Builder, square, alt bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	if n == nil {
		// Omitted parts of a for loop.
		b.WriteByte(l)
		b.WriteByte(r)
		return
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	switch n.kind {
	case nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteString("$#$")
	case nodeNum, nodeName, nodeBool:
		b.WriteString(n.name)
	case nodeStr:
		b.WriteString(strconv.Quote(n.name))
	case nodeCall:
		b.WriteString(n.name)
		fmtlist(b, n.kids, "(", ")", !square, alt)
	case nodeNeg, nodeNop, nodeRev, nodeExec:
		b.WriteString(n.kind.op())
		n.left.fmt(b, !square, alt)
	case nodeNot:
		b.WriteString("not ")
		n.left.fmt(b, !square, alt)
	case nodeMul:
		n.left.fmt(b, !square, alt)
		if !alt {
			b.WriteString(" * ")
		} else {
			b.WriteString(" × ")
		}
		n.right.fmt(b, !square, alt)
	case nodeDiv:
		n.left.fmt(b, !square, alt)
		if !alt {
			b.WriteString(" / ")
		} else {
			b.WriteString(" ÷ ")
		}
		n.right.fmt(b, !square, alt)
	case nodeAdd, nodeSub, nodePow, nodeDot, nodeEq, nodeNe, nodeLt, nodeLe, nodeGt, nodeGe, nodeAnd, nodeOr:
		n.left.fmt(b, !square, alt)
		b.WriteByte(' ')
		b.WriteString(n.kind.op())
		b.WriteByte(' ')
		n.right.fmt(b, !square, alt)
	case nodeAssign:
		n.left.fmt(b, !square, alt)
		b.WriteString(" = ")
		n.right.fmt(b, !square, alt)
	case nodeIndex:
		n.left.fmt(b, !square, alt)
		fmtlist(b, n.kids, "[", "]", !square, alt)
	case nodeMatrix:
		b.WriteByte('[')
		for i, row := range n.kids {
			if i > 0 {
				b.WriteString("; ")
			}
			for j, el := range row.kids {
				if j > 0 {
					b.WriteString(", ")
				}
				el.fmt(b, !square, alt)
			}
		}
		b.WriteByte(']')
	case nodeRow:
		fmtlist(b, n.kids, "", "", !square, alt)
	case nodeBlock:
		if n.name != "" {
			b.WriteByte('{')
		}
		for i, k := range n.kids {
			if i > 0 {
				b.WriteString("; ")
			}
			k.fmt(b, !square, alt)
		}
		if n.name != "" {
			b.WriteByte('}')
		}
	case nodeIf:
		b.WriteString("if ")
		n.kids[0].fmt(b, !square, alt)
		b.WriteByte(' ')
		n.kids[1].fmt(b, !square, alt)
		if len(n.kids) > 2 {
			b.WriteString(" else ")
			n.kids[2].fmt(b, !square, alt)
		}
	case nodeWhile:
		b.WriteString("while ")
		n.kids[0].fmt(b, !square, alt)
		b.WriteByte(' ')
		n.kids[1].fmt(b, !square, alt)
	case nodeFor:
		b.WriteString("for (")
		for i, k := range n.kids[:3] {
			if i > 0 {
				b.WriteString("; ")
			}
			k.fmt(b, !square, alt)
		}
		b.WriteString(") ")
		n.kids[3].fmt(b, !square, alt)
	default:
		panic("calculator: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

// fmtlist writes a bracketed, comma-separated list of nodes.
func fmtlist(b *strings.Builder, kids []*node, open, close string, square, alt bool) {
	b.WriteString(open)
	for i, k := range kids {
		if i > 0 {
			b.WriteString(", ")
		}
		k.fmt(b, square, alt)
	}
	b.WriteString(close)
}
