package calculator

import (
	"errors"
	"strconv"

	"github.com/spencerparkin/GAVisTool-sub000/ga"
	"github.com/spencerparkin/GAVisTool-sub000/linalg"
	"github.com/spencerparkin/GAVisTool-sub000/scalar"
)

// ErrorKind classifies errors for hosts that display or react to them.
type ErrorKind int

const (
	// ErrorNone is the kind of a nil error.
	ErrorNone ErrorKind = iota
	ErrorLex
	ErrorSyntax
	ErrorUndefinedName
	ErrorUndefinedFunction
	ErrorArity
	ErrorTypeMismatch
	ErrorDimension
	ErrorSingular
	ErrorDivideByZero
	ErrorIndex
	ErrorCycle
	ErrorLimit
	ErrorDomain
	// ErrorOther is the kind of errors not raised by the calculator, e.g. I/O
	// errors from a reader.
	ErrorOther
)

var errorKindNames = [...]string{
	ErrorNone:              "None",
	ErrorLex:               "LexError",
	ErrorSyntax:            "SyntaxError",
	ErrorUndefinedName:     "UndefinedNameError",
	ErrorUndefinedFunction: "UndefinedFunctionError",
	ErrorArity:             "ArityError",
	ErrorTypeMismatch:      "TypeMismatch",
	ErrorDimension:         "DimensionMismatchError",
	ErrorSingular:          "SingularMatrixError",
	ErrorDivideByZero:      "DivideByZeroError",
	ErrorIndex:             "IndexError",
	ErrorCycle:             "CycleError",
	ErrorLimit:             "RuntimeLimitError",
	ErrorDomain:            "DomainError",
	ErrorOther:             "Error",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(errorKindNames) {
		return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
	return errorKindNames[k]
}

type kinded interface {
	Kind() ErrorKind
}

// ErrorKindOf returns the kind of err.
func ErrorKindOf(err error) ErrorKind {
	if err == nil {
		return ErrorNone
	}
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return ErrorOther
}

// PosOf returns the source position of err, or 0 if it has none.
func PosOf(err error) int {
	var ie InputError
	if errors.As(err, &ie) {
		return ie.Pos()
	}
	return 0
}

// NameError is an error from a lookup for a variable that is neither set nor
// an environment constant.
type NameError struct {
	// Col is the position of the name.
	Col int
	// Name is the name that was missing.
	Name string
}

func (err *NameError) Error() string {
	return errpos(err.Col, "undefined variable: "+strconv.Quote(err.Name))
}

func (err *NameError) Pos() int        { return err.Col }
func (err *NameError) Kind() ErrorKind { return ErrorUndefinedName }

// FuncError is an error from a call to a function that the active
// environment does not define.
type FuncError struct {
	// Col is the position of the call.
	Col int
	// Name is the function name.
	Name string
}

func (err *FuncError) Error() string {
	return errpos(err.Col, "undefined function: "+strconv.Quote(err.Name))
}

func (err *FuncError) Pos() int        { return err.Col }
func (err *FuncError) Kind() ErrorKind { return ErrorUndefinedFunction }

// ArityError is an error indicating a function call with the wrong number of
// arguments.
type ArityError struct {
	// Col is the position of the call.
	Col int
	// Func is the function name that was called.
	Func string
	// Len is the number of arguments in the call.
	Len int
}

func (err *ArityError) Error() string {
	return errpos(err.Col, "cannot call "+err.Func+" with "+strconv.Itoa(err.Len)+" arguments")
}

func (err *ArityError) Pos() int        { return err.Col }
func (err *ArityError) Kind() ErrorKind { return ErrorArity }

// TypeError is an error indicating an operation on values whose kinds the
// active environment cannot combine.
type TypeError struct {
	// Col is the position of the operator or call.
	Col int
	// Op is the operator or function name.
	Op string
	// Operands are the kinds of the operands.
	Operands []Kind
	// Reason optionally explains the mismatch.
	Reason string
}

func (err *TypeError) Error() string {
	if err.Reason != "" {
		return errpos(err.Col, err.Op+": "+err.Reason)
	}
	s := "cannot apply " + err.Op
	for i, k := range err.Operands {
		switch i {
		case 0:
			s += " to "
		case len(err.Operands) - 1:
			s += " and "
		default:
			s += ", "
		}
		s += k.String()
	}
	return errpos(err.Col, s)
}

func (err *TypeError) Pos() int        { return err.Col }
func (err *TypeError) Kind() ErrorKind { return ErrorTypeMismatch }

func typeError(op string, xs ...Number) *TypeError {
	ks := make([]Kind, len(xs))
	for i, x := range xs {
		ks[i] = KindOf(x)
	}
	return &TypeError{Op: op, Operands: ks}
}

// DimensionError is an error indicating operands whose shapes do not fit an
// operation.
type DimensionError struct {
	// Col is the position of the operator or call.
	Col int
	// Msg describes the mismatch when Err is nil.
	Msg string
	// Err is the underlying linear algebra error, if any.
	Err error
}

func (err *DimensionError) Error() string {
	if err.Err != nil {
		return errpos(err.Col, err.Err.Error())
	}
	return errpos(err.Col, err.Msg)
}

func (err *DimensionError) Unwrap() error   { return err.Err }
func (err *DimensionError) Pos() int        { return err.Col }
func (err *DimensionError) Kind() ErrorKind { return ErrorDimension }

// SingularError is an error from inverting a singular matrix.
type SingularError struct {
	// Col is the position of the operator or call.
	Col int
}

func (err *SingularError) Error() string {
	return errpos(err.Col, "singular matrix")
}

func (err *SingularError) Pos() int        { return err.Col }
func (err *SingularError) Kind() ErrorKind { return ErrorSingular }

// ZeroDivisionError is an error from dividing by zero or by a value with no
// inverse.
type ZeroDivisionError struct {
	// Col is the position of the operator or call.
	Col int
}

func (err *ZeroDivisionError) Error() string {
	return errpos(err.Col, "division by zero")
}

func (err *ZeroDivisionError) Pos() int        { return err.Col }
func (err *ZeroDivisionError) Kind() ErrorKind { return ErrorDivideByZero }

// IndexError is an error from indexing a value with an index that is out of
// range or not an integer.
type IndexError struct {
	// Col is the position of the index expression.
	Col int
	// Index is the rendered index.
	Index string
	// Len is the length of the indexed dimension, or -1 if the index is not a
	// valid integer.
	Len int
}

func (err *IndexError) Error() string {
	if err.Len < 0 {
		return errpos(err.Col, "invalid index "+err.Index)
	}
	return errpos(err.Col, "index "+err.Index+" out of range for length "+strconv.Itoa(err.Len))
}

func (err *IndexError) Pos() int        { return err.Col }
func (err *IndexError) Kind() ErrorKind { return ErrorIndex }

// CycleError is an error from executing a string expression while the same
// expression is already being executed.
type CycleError struct {
	// Col is the position of the execution.
	Col int
	// Source is the text of the expression.
	Source string
}

func (err *CycleError) Error() string {
	return errpos(err.Col, "cyclic evaluation of "+strconv.Quote(err.Source))
}

func (err *CycleError) Pos() int        { return err.Col }
func (err *CycleError) Kind() ErrorKind { return ErrorCycle }

// LimitError is an error indicating that evaluation exceeded a recursion or
// iteration ceiling.
type LimitError struct {
	// Col is the position of the loop or execution.
	Col int
	// What names the exceeded resource.
	What string
	// Limit is the ceiling.
	Limit int
}

func (err *LimitError) Error() string {
	return errpos(err.Col, err.What+" exceeded limit of "+strconv.Itoa(err.Limit))
}

func (err *LimitError) Pos() int        { return err.Col }
func (err *LimitError) Kind() ErrorKind { return ErrorLimit }

// DomainError is an error returned when a function is called on arguments
// outside its domain.
type DomainError struct {
	// Col is the position of the operator or call.
	Col int
	// X is the rendered out-of-domain argument, if known.
	X string
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function.
	Func string
	// Reason explains the failure when X is empty.
	Reason string
}

func (err *DomainError) Error() string {
	r := err.X + " outside domain"
	if err.X == "" {
		r = err.Reason
	}
	if err.Func != "" {
		if err.X == "" {
			r = err.Func + ": " + r
		} else {
			r += " of " + err.Func
		}
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return errpos(err.Col, r)
}

func (err *DomainError) Pos() int        { return err.Col }
func (err *DomainError) Kind() ErrorKind { return ErrorDomain }

// blame fills in the position and operation of an error raised while
// evaluating an operator or call, without overwriting what the raiser set.
func blame(err error, col int, op string) error {
	switch e := err.(type) {
	case *NameError:
		if e.Col == 0 {
			e.Col = col
		}
	case *FuncError:
		if e.Col == 0 {
			e.Col = col
		}
	case *ArityError:
		if e.Col == 0 {
			e.Col = col
		}
		if e.Func == "" {
			e.Func = op
		}
	case *TypeError:
		if e.Col == 0 {
			e.Col = col
		}
		if e.Op == "" {
			e.Op = op
		}
	case *DimensionError:
		if e.Col == 0 {
			e.Col = col
		}
	case *SingularError:
		if e.Col == 0 {
			e.Col = col
		}
	case *ZeroDivisionError:
		if e.Col == 0 {
			e.Col = col
		}
	case *IndexError:
		if e.Col == 0 {
			e.Col = col
		}
	case *CycleError:
		if e.Col == 0 {
			e.Col = col
		}
	case *LimitError:
		if e.Col == 0 {
			e.Col = col
		}
	case *DomainError:
		if e.Col == 0 {
			e.Col = col
		}
		if e.Func == "" {
			e.Func = op
		}
	}
	return err
}

// algebraError maps errors from the algebra packages into the calculator's
// error taxonomy.
func algebraError(err error) error {
	if err == nil {
		return nil
	}
	var de *linalg.DimensionError
	switch {
	case errors.Is(err, linalg.ErrSingular):
		return &SingularError{}
	case errors.Is(err, linalg.ErrExponentRange):
		return &LimitError{What: "bits in exact power", Limit: maxPowBits}
	case errors.As(err, &de):
		return &DimensionError{Err: de}
	case errors.Is(err, scalar.ErrDivideByZero), errors.Is(err, ga.ErrNotInvertible):
		return &ZeroDivisionError{}
	}
	var k kinded
	if errors.As(err, &k) {
		return err
	}
	return &DomainError{Reason: err.Error()}
}
