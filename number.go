package calculator

import "strconv"

// Number is a value produced by evaluating an expression. The set of
// implementations is closed: each environment contributes one numeric variant,
// and String and Bool are shared by all environments.
type Number interface {
	// Kind identifies the variant.
	Kind() Kind
	// String renders the value independently of any environment settings.
	String() string

	number()
}

// Kind identifies a variant of Number.
type Kind uint8

const (
	// NoKind is the kind of a nil Number.
	NoKind Kind = iota
	FloatKind
	RationalKind
	ComplexKind
	FractionKind
	MultivectorKind
	MatrixKind
	StringKind
	BoolKind
)

var kindNames = [...]string{
	NoKind:          "none",
	FloatKind:       "float",
	RationalKind:    "rational",
	ComplexKind:     "complex",
	FractionKind:    "fraction",
	MultivectorKind: "multivector",
	MatrixKind:      "matrix",
	StringKind:      "string",
	BoolKind:        "bool",
}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// KindOf returns the kind of x, or NoKind if x is nil.
func KindOf(x Number) Kind {
	if x == nil {
		return NoKind
	}
	return x.Kind()
}

// Is reports whether x is of kind k.
func Is(x Number, k Kind) bool {
	return KindOf(x) == k
}

// As converts x to the concrete variant T, reporting whether x has that
// variant. It never panics, including for nil x.
func As[T Number](x Number) (T, bool) {
	t, ok := x.(T)
	return t, ok
}

// String is a string value. Strings can be concatenated, compared for
// equality, and executed as expressions.
type String string

func (String) Kind() Kind       { return StringKind }
func (s String) String() string { return strconv.Quote(string(s)) }
func (String) number()          {}

// Bool is a truth value, produced by comparisons and logical operators.
type Bool bool

func (Bool) Kind() Kind       { return BoolKind }
func (b Bool) String() string { return strconv.FormatBool(bool(b)) }
func (Bool) number()          {}
