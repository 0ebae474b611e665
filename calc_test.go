package calculator_test

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"testing"

	calculator "github.com/spencerparkin/GAVisTool-sub000"
)

type evalCase struct {
	name string
	src  string
	want string
}

// runCases evaluates each case in a fresh calculator and compares the
// rendered result.
func runCases(t *testing.T, env func() calculator.Environment, cases []evalCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			calc := calculator.New(env())
			r, err := calc.Eval(c.src)
			if err != nil {
				t.Fatalf("%q failed: %v", c.src, err)
			}
			if r.Text != c.want {
				t.Errorf("%q: want %s, got %s", c.src, c.want, r.Text)
			}
		})
	}
}

type errCase struct {
	name string
	src  string
	kind calculator.ErrorKind
}

func runErrors(t *testing.T, env func() calculator.Environment, cases []errCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			calc := calculator.New(env())
			r, err := calc.Eval(c.src)
			if err == nil {
				t.Fatalf("%q: expected %v, got result %s", c.src, c.kind, r.Text)
			}
			if k := calculator.ErrorKindOf(err); k != c.kind {
				t.Errorf("%q: want %v, got %v (%v)", c.src, c.kind, k, err)
			}
		})
	}
}

func float() calculator.Environment { return calculator.NewFloat() }

func TestEvalFloat(t *testing.T) {
	runCases(t, float, []evalCase{
		{"num", "1", "1"},
		{"precedence", "2 + 3 * 4", "14"},
		{"parens", "(2 + 3) * 4", "20"},
		{"sub", "4-5-6", "-7"},
		{"div", "1/4", "0.25"},
		{"pow", "2^10", "1024"},
		{"powright", "2^3^2", "512"},
		{"negpow", "-2^2", "-4"},
		{"assign", "x = 2 + 3 * 4", "14"},
		{"seq", "x = 3; y = 4; x * y", "12"},
		{"chain", "x = y = 2; x + y", "4"},
		{"const", "pi", strconv.FormatFloat(3.141592653589793, 'g', -1, 64)},
		{"func", "sqrt(16)", "4"},
		{"func-nested", "abs(floor(-2.5))", "3"},
		{"min", "min(3, 1, 2)", "1"},
		{"max", "max(3, 1, 2)", "3"},
		{"cmp", "1 < 2", "true"},
		{"cmp-eq", "2 == 2.0", "true"},
		{"and", "1 < 2 and 2 < 3", "true"},
		{"or", "1 > 2 || 2 > 3", "false"},
		{"not", "not (1 > 2)", "true"},
		{"bang", "!0", "true"},
		{"short-and", "false and nosuch", "false"},
		{"short-or", "true or 1/0", "true"},
		{"number-truth", "1 and 2", "true"},
		{"if", "if (1 > 2) 10 else 20", "20"},
		{"if-then", "if (2 > 1) 10 else 20", "10"},
		{"if-no-else", "if (1 > 2) 10", "false"},
		{"while", "x = 0; while (x < 5) x = x + 1; x", "5"},
		{"while-value", "x = 0; while (x < 3) x = x + 1", "3"},
		{"while-never", "while (false) 1", "false"},
		{"for", "s = 0; for (i = 0; i < 10; i = i + 1) s = s + i; s", "45"},
		{"for-block", "s = 0; for (i = 1; i <= 4; i = i + 1) { t = i * i; s = s + t }; s", "30"},
		{"string", `"a" + "b"`, `"ab"`},
		{"string-eq", `"a" == "a"`, "true"},
		{"string-lt", `"a" < "b"`, "true"},
		{"bool-eq", "true != false", "true"},
		{"exec", `s = "1 + 2"; $s * 2`, "6"},
		{"exec-func", `exec("2 * 3")`, "6"},
		{"exec-assign", `exec("z = 7"); z`, "7"},
		{"env", "env()", `"float"`},
		{"kind", "kind(1)", `"float"`},
		{"kind-str", `kind("x")`, `"string"`},
		{"str", "str(1.5)", `"1.5"`},
		{"vars", "b = 2; a = 1; vars()", `"a = 1; b = 2"`},
		{"clear", "a = 1; b = 2; clear()", "2"},
	})
}

func TestEvalFloatErrors(t *testing.T) {
	runErrors(t, float, []errCase{
		{"lex", "2a", calculator.ErrorLex},
		{"syntax", "2 3", calculator.ErrorSyntax},
		{"name", "y + 1", calculator.ErrorUndefinedName},
		{"func", "nosuch(1)", calculator.ErrorUndefinedFunction},
		{"arity", "sin(1, 2)", calculator.ErrorArity},
		{"arity-builtin", "env(1)", calculator.ErrorArity},
		{"divzero", "1/0", calculator.ErrorDivideByZero},
		{"domain", "sqrt(-1)", calculator.ErrorDomain},
		{"domain-log", "log(0)", calculator.ErrorDomain},
		{"mixed", `1 + "a"`, calculator.ErrorTypeMismatch},
		{"mixed-eq", `1 == "a"`, calculator.ErrorTypeMismatch},
		{"bool-arith", "true + 1", calculator.ErrorTypeMismatch},
		{"string-cond", `if ("a") 1`, calculator.ErrorTypeMismatch},
		{"string-neg", `-"a"`, calculator.ErrorTypeMismatch},
		{"exec-number", "$1", calculator.ErrorTypeMismatch},
		{"index", "x = 1; x[0]", calculator.ErrorTypeMismatch},
		{"matrix-literal", "[1, 2]", calculator.ErrorTypeMismatch},
		{"loop", "while (true) 1", calculator.ErrorLimit},
		{"cycle", `s = "$s"; $s`, calculator.ErrorCycle},
		{"exec-syntax", `exec("1 +")`, calculator.ErrorSyntax},
	})
}

func TestErrorPositions(t *testing.T) {
	cases := []struct {
		src string
		pos int
	}{
		{"1 + y", 5},
		{"1 + 1/0", 6},
		{"2 * nosuch(1)", 5},
		{"x = sqrt(-1)", 5},
		{"1 +\t\"a\"", 3},
	}
	for _, c := range cases {
		_, err := calculator.New(calculator.NewFloat()).Eval(c.src)
		if err == nil {
			t.Errorf("%q: no error", c.src)
			continue
		}
		if got := calculator.PosOf(err); got != c.pos {
			t.Errorf("%q: want position %d, got %d (%v)", c.src, c.pos, got, err)
		}
	}
}

func TestDivideByZeroEveryEnv(t *testing.T) {
	for _, name := range calculator.Environments() {
		t.Run(name, func(t *testing.T) {
			env, err := calculator.NewEnvironment(name)
			if err != nil {
				t.Fatal(err)
			}
			calc := calculator.New(env)
			if _, err := calc.Eval("y = 1"); err != nil {
				t.Fatal(err)
			}
			_, err = calc.Eval("y = 1/0")
			if k := calculator.ErrorKindOf(err); k != calculator.ErrorDivideByZero {
				t.Errorf("want DivideByZeroError, got %v (%v)", k, err)
			}
			r, err := calc.Eval("y")
			if err != nil {
				t.Fatal(err)
			}
			if r.Text != "1" {
				t.Errorf("y changed to %s", r.Text)
			}
		})
	}
}

func TestAssignmentsBeforeFailureRemain(t *testing.T) {
	calc := calculator.New(calculator.NewFloat())
	if _, err := calc.Eval("x = 5; y = x / 0; z = 1"); err == nil {
		t.Fatal("expected error")
	}
	if v, ok := calc.Vars().Get("x"); !ok || v != calculator.Float(5) {
		t.Errorf("x should be 5, got %v", v)
	}
	if _, ok := calc.Vars().Get("y"); ok {
		t.Error("y should not be set")
	}
	if _, ok := calc.Vars().Get("z"); ok {
		t.Error("z should not be set")
	}
}

func TestShortCircuitSkipsRight(t *testing.T) {
	cases := []struct {
		src  string
		want string
		set  bool
	}{
		{"false and (x = 1)", "false", false},
		{"true or (x = 1)", "true", false},
		{"false && (x = 1)", "false", false},
		{"true || (x = 1)", "true", false},
		{"true and (x = 1)", "true", true},
		{"false or (x = 1)", "true", true},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			calc := calculator.New(calculator.NewFloat())
			r, err := calc.Eval(c.src)
			if err != nil {
				t.Fatal(err)
			}
			if r.Text != c.want {
				t.Errorf("want %s, got %s", c.want, r.Text)
			}
			if _, ok := calc.Vars().Get("x"); ok != c.set {
				t.Errorf("x assigned: want %t, got %t", c.set, ok)
			}
		})
	}
}

func TestAssignmentReplacesKind(t *testing.T) {
	calc := calculator.New(calculator.NewFloat())
	r, err := calc.Eval(`x = 1; x = "one"; x`)
	if err != nil {
		t.Fatal(err)
	}
	if r.Value != calculator.String("one") {
		t.Errorf("want string, got %#v", r.Value)
	}
	if r.Assigned != "" {
		t.Errorf("final statement is no assignment, got %q", r.Assigned)
	}
	r, err = calc.Eval("x = 2")
	if err != nil {
		t.Fatal(err)
	}
	if r.Assigned != "x" {
		t.Errorf("want assigned x, got %q", r.Assigned)
	}
}

func TestIterationLimit(t *testing.T) {
	env := calculator.NewFloat()
	env.SetIterationLimit(10)
	calc := calculator.New(env)
	r, err := calc.Eval("i = 0; while (i < 10) i = i + 1")
	if err != nil {
		t.Fatalf("ten iterations should be allowed: %v", err)
	}
	if r.Text != "10" {
		t.Errorf("want 10, got %s", r.Text)
	}
	_, err = calc.Eval("i = 0; while (i < 11) i = i + 1")
	var le *calculator.LimitError
	if !errors.As(err, &le) {
		t.Fatalf("want LimitError, got %v", err)
	}
	if le.Limit != 10 {
		t.Errorf("wrong limit %d", le.Limit)
	}
	if _, err := calc.Eval("for (;;) 1"); calculator.ErrorKindOf(err) != calculator.ErrorLimit {
		t.Errorf("for (;;) should hit the limit, got %v", err)
	}
}

// chain creates variables s0 = "$s1", s1 = "$s2", ..., sn = "1".
func chain(n int) calculator.Option {
	vars := make(map[string]calculator.Number, n+1)
	for i := 0; i < n; i++ {
		vars["s"+strconv.Itoa(i)] = calculator.String("$s" + strconv.Itoa(i+1))
	}
	vars["s"+strconv.Itoa(n)] = calculator.String("1")
	return calculator.SetVars(vars)
}

func TestExecDepth(t *testing.T) {
	calc := calculator.New(calculator.NewFloat(), chain(40), calculator.MaxDepth(50))
	r, err := calc.Eval("$s0")
	if err != nil {
		t.Fatalf("forty nested executions under limit 50 failed: %v", err)
	}
	if r.Text != "1" {
		t.Errorf("want 1, got %s", r.Text)
	}

	calc = calculator.New(calculator.NewFloat(), chain(40), calculator.MaxDepth(20))
	_, err = calc.Eval("$s0")
	var le *calculator.LimitError
	if !errors.As(err, &le) {
		t.Fatalf("want LimitError, got %v", err)
	}
	if le.Limit != 20 {
		t.Errorf("wrong limit %d", le.Limit)
	}
	// The failure aborts only that call.
	if r, err := calc.Eval("1 + 1"); err != nil || r.Text != "2" {
		t.Errorf("calculator unusable after limit: %v %v", r, err)
	}
}

func TestExecCycle(t *testing.T) {
	calc := calculator.New(calculator.NewFloat(),
		calculator.SetVar("a", calculator.String("$b")),
		calculator.SetVar("b", calculator.String("$a")),
	)
	_, err := calc.Eval("$a")
	var ce *calculator.CycleError
	if !errors.As(err, &ce) {
		t.Fatalf("want CycleError, got %v", err)
	}
	// Executing the same string twice in sequence is not a cycle.
	calc.Vars().Set("s", calculator.String("1 + 1"))
	r, err := calc.Eval("$s + $s")
	if err != nil {
		t.Fatal(err)
	}
	if r.Text != "4" {
		t.Errorf("want 4, got %s", r.Text)
	}
}

func TestExecSharesVariables(t *testing.T) {
	calc := calculator.New(calculator.NewFloat())
	r, err := calc.Eval(`n = 0; inc = "n = n + 1"; $inc; $inc; n`)
	if err != nil {
		t.Fatal(err)
	}
	if r.Text != "2" {
		t.Errorf("want 2, got %s", r.Text)
	}
}

func TestDeterminism(t *testing.T) {
	srcs := []string{
		"x = 3; y = x^2 + 1/3; y * 3",
		`s = "x * 2"; x = 4; $s + $s`,
		"for (i = 0; i < 100; i = i + 1) z = sin(i)",
	}
	for _, src := range srcs {
		a, err := calculator.New(calculator.NewFloat()).Eval(src)
		if err != nil {
			t.Fatalf("%q: %v", src, err)
		}
		b, err := calculator.New(calculator.NewFloat()).Eval(src)
		if err != nil {
			t.Fatalf("%q: %v", src, err)
		}
		if a.Text != b.Text {
			t.Errorf("%q: results differ: %s and %s", src, a.Text, b.Text)
		}
	}
}

func TestSetEnvironment(t *testing.T) {
	calc := calculator.New(calculator.NewRational(calculator.DefaultDigits, false))
	if _, err := calc.Eval("x = 1/3"); err != nil {
		t.Fatal(err)
	}
	calc.SetEnvironment(calculator.NewFloat())
	if calc.Environment().Name() != "float" {
		t.Fatalf("environment not switched")
	}
	// The rational variable is kept but cannot mix with floats.
	if _, err := calc.Eval("x + 1"); calculator.ErrorKindOf(err) != calculator.ErrorTypeMismatch {
		t.Errorf("want TypeMismatch, got %v", err)
	}
	r, err := calc.Eval("x = 1; x + 1")
	if err != nil {
		t.Fatal(err)
	}
	if r.Text != "2" {
		t.Errorf("want 2, got %s", r.Text)
	}
}

func TestNewEnvironment(t *testing.T) {
	for _, name := range calculator.Environments() {
		env, err := calculator.NewEnvironment(name)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if env.Name() != name {
			t.Errorf("%s: environment calls itself %s", name, env.Name())
		}
	}
	_, err := calculator.NewEnvironment("quaternion")
	if !errors.Is(err, calculator.ErrUnknownEnvironment) {
		t.Errorf("want ErrUnknownEnvironment, got %v", err)
	}
}

func TestDefine(t *testing.T) {
	calc := calculator.New(calculator.NewFloat())
	calc.Define("twice", calculator.Typed(func(x calculator.Float) (calculator.Number, error) {
		return 2 * x, nil
	}))
	calc.DefineConst("answer", calculator.Float(42))
	r, err := calc.Eval("twice(answer)")
	if err != nil {
		t.Fatal(err)
	}
	if r.Text != "84" {
		t.Errorf("want 84, got %s", r.Text)
	}
	// Variables shadow constants.
	r, err = calc.Eval("answer = 1; answer")
	if err != nil {
		t.Fatal(err)
	}
	if r.Text != "1" {
		t.Errorf("want 1, got %s", r.Text)
	}
	// Environment functions shadow builtins.
	calc.Define("env", calculator.Niladic(func(ctx *calculator.Context) (calculator.Number, error) {
		return calculator.String("mine"), nil
	}))
	r, err = calc.Eval("env()")
	if err != nil {
		t.Fatal(err)
	}
	if r.Text != `"mine"` {
		t.Errorf("want mine, got %s", r.Text)
	}
	if _, err := calc.Eval(`twice("x")`); calculator.ErrorKindOf(err) != calculator.ErrorTypeMismatch {
		t.Errorf("want TypeMismatch, got %v", err)
	}
	calc.Define("twice", nil)
	if _, err := calc.Eval("twice(1)"); calculator.ErrorKindOf(err) != calculator.ErrorUndefinedFunction {
		t.Errorf("want UndefinedFunctionError after removal, got %v", err)
	}
}

func TestSymbols(t *testing.T) {
	s := calculator.NewSymbols()
	s.Set("b", calculator.Float(2))
	s.Set("a", calculator.Bool(true))
	if got := strings.Join(s.Names(), ","); got != "a,b" {
		t.Errorf("wrong names %s", got)
	}
	if !s.Delete("a") || s.Delete("a") {
		t.Error("Delete should report existence")
	}
	if s.Len() != 1 {
		t.Errorf("wrong length %d", s.Len())
	}
	if n := s.Clear(); n != 1 || s.Len() != 0 {
		t.Errorf("Clear removed %d, left %d", n, s.Len())
	}
}

func TestAs(t *testing.T) {
	var x calculator.Number = calculator.Float(1)
	if f, ok := calculator.As[calculator.Float](x); !ok || f != 1 {
		t.Errorf("As failed on a float")
	}
	if _, ok := calculator.As[calculator.String](x); ok {
		t.Errorf("As converted a float to a string")
	}
	if _, ok := calculator.As[calculator.Float](nil); ok {
		t.Errorf("As converted nil")
	}
	if calculator.KindOf(nil) != calculator.NoKind || !calculator.Is(x, calculator.FloatKind) {
		t.Errorf("wrong kinds")
	}
}

func TestParseThenEval(t *testing.T) {
	calc := calculator.New(calculator.NewFloat())
	e, err := calc.Parse("y = x / 4")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := calc.EvalExpr(e); calculator.ErrorKindOf(err) != calculator.ErrorUndefinedName {
		t.Errorf("unset x: want UndefinedNameError, got %v", err)
	}
	calc.Vars().Set("x", calculator.Float(2))
	r, err := calc.EvalExpr(e)
	if err != nil {
		t.Fatal(err)
	}
	if r.Text != "0.5" || r.Assigned != "y" {
		t.Errorf("want y = 0.5, got %s = %s", r.Assigned, r.Text)
	}
	calc.SetEnvironment(calculator.NewFraction())
	calc.Vars().Set("x", calculator.NewFrac(big.NewInt(2), big.NewInt(1)))
	r, err = calc.EvalExpr(e)
	if err != nil {
		t.Fatal(err)
	}
	if r.Text != "2/4" {
		t.Errorf("same tree in the fraction environment: want 2/4, got %s", r.Text)
	}
	if _, err := calc.Parse("1 +"); calculator.ErrorKindOf(err) != calculator.ErrorSyntax {
		t.Errorf("want SyntaxError, got %v", err)
	}
}

func ExampleCalculator_Eval() {
	calc := calculator.New(calculator.NewRational(calculator.DefaultDigits, false))
	for _, src := range []string{"x = 1/3 + 1/6", "x * 4", "2^100", "x > 1"} {
		r, err := calc.Eval(src)
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Println(r.Text)
	}
	_, err := calc.Eval("1/0")
	fmt.Println(calculator.ErrorKindOf(err), err)
	// Output:
	// 1/2
	// 2
	// 1267650600228229401496703205376
	// false
	// DivideByZeroError 2: division by zero
}

func ExampleVariadic() {
	calc := calculator.New(calculator.NewRational(calculator.DefaultDigits, false))
	calc.Define("nargs", calculator.Variadic(0, -1, func(ctx *calculator.Context, args []calculator.Number) (calculator.Number, error) {
		return ctx.Env().FromInt(int64(len(args))), nil
	}))
	for _, src := range []string{"nargs()", "nargs(100)", "nargs(3, 2, 1) / 2"} {
		r, _ := calc.Eval(src)
		fmt.Println(r.Text)
	}
	// Output:
	// 0
	// 1
	// 3/2
}
