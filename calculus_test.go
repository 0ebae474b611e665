package calculator_test

import (
	"strings"
	"testing"

	calculator "github.com/spencerparkin/GAVisTool-sub000"
)

func TestDiff(t *testing.T) {
	runCases(t, float, []evalCase{
		{"symbolic", `diff("x*x", "x")`, `"2*x"`},
		{"at", `diff("x*x", "x", 3)`, "6"},
		{"bound", `a = 5; diff("a*x", "x", 1)`, "5"},
		{"const", `diff("7", "x", 1)`, "0"},
	})
	runCases(t, rational, []evalCase{
		{"rational", `diff("x*x + 3*x", "x", 1/2)`, "4"},
	})
	runErrors(t, float, []errCase{
		{"free", `diff("y*x", "x", 1)`, calculator.ErrorDomain},
		{"not-string", `diff(1, "x")`, calculator.ErrorTypeMismatch},
		{"no-form", `diff("x < 1", "x")`, calculator.ErrorTypeMismatch},
		{"syntax", `diff("x +", "x")`, calculator.ErrorSyntax},
		{"arity", `diff("x")`, calculator.ErrorArity},
	})
}

func TestTaylor(t *testing.T) {
	calc := calculator.New(calculator.NewRational(calculator.DefaultDigits, false))
	r, err := calc.Eval(`taylor("x*x", "x", 1, 2)`)
	if err != nil {
		t.Fatal(err)
	}
	if calculator.KindOf(r.Value) != calculator.StringKind {
		t.Errorf("expansion should be a string, got %s", r.Text)
	}
	r, err = calc.Eval(`taylor("exp(x)", "x", 0, 3)`)
	if err != nil {
		t.Fatal(err)
	}
	s, ok := calculator.As[calculator.String](r.Value)
	if !ok || !strings.Contains(string(s), "x") {
		t.Errorf("expansion of exp should be a polynomial in x, got %s", r.Text)
	}
	if _, err := calc.Eval(`taylor("x", "x", 0, 100)`); calculator.ErrorKindOf(err) != calculator.ErrorDomain {
		t.Errorf("order 100 should be out of domain, got %v", err)
	}
}
