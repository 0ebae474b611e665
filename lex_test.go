package calculator

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLex(t *testing.T) {
	cases := []struct {
		src    string
		tokens []Token
		errs   int
	}{
		// spaces
		{"", nil, 0},
		{" \t \r\n ", nil, 0},
		// numbers
		{"0", []Token{{Text: "0", Kind: TokenNum, Pos: 1}}, 0},
		{"9876543210", []Token{{Text: "9876543210", Kind: TokenNum, Pos: 1}}, 0},
		{"1 0", []Token{{Text: "1", Kind: TokenNum, Pos: 1}, {Text: "0", Kind: TokenNum, Pos: 3}}, 0},
		{"1.0", []Token{{Text: "1.0", Kind: TokenNum, Pos: 1}}, 0},
		{"-1", []Token{{Text: "-", Kind: TokenOp, Pos: 1}, {Text: "1", Kind: TokenNum, Pos: 2}}, 0},
		{"1e1", []Token{{Text: "1e1", Kind: TokenNum, Pos: 1}}, 0},
		{"1e", []Token{{Pos: 1}}, 1},
		{"1e+1", []Token{{Text: "1e+1", Kind: TokenNum, Pos: 1}}, 0},
		{"1e-1", []Token{{Text: "1e-1", Kind: TokenNum, Pos: 1}}, 0},
		{"1.0e1", []Token{{Text: "1.0e1", Kind: TokenNum, Pos: 1}}, 0},
		{".1", []Token{{Text: ".1", Kind: TokenNum, Pos: 1}}, 0},
		{"1+0", []Token{{Text: "1", Kind: TokenNum, Pos: 1}, {Text: "+", Kind: TokenOp, Pos: 2}, {Text: "0", Kind: TokenNum, Pos: 3}}, 0},
		{"(1)", []Token{{Text: "(", Kind: TokenOpen, Pos: 1}, {Text: "1", Kind: TokenNum, Pos: 2}, {Text: ")", Kind: TokenClose, Pos: 3}}, 0},
		{"1a", []Token{{Pos: 1}}, 1},
		{"2_", []Token{{Pos: 1}}, 1},
		// identifiers and keywords
		{"e", []Token{{Text: "e", Kind: TokenIdent, Pos: 1}}, 0},
		{"e1", []Token{{Text: "e1", Kind: TokenIdent, Pos: 1}}, 0},
		{"π", []Token{{Text: "π", Kind: TokenIdent, Pos: 1}}, 0},
		{"_1234_", []Token{{Text: "_1234_", Kind: TokenIdent, Pos: 1}}, 0},
		{"e(", []Token{{Text: "e", Kind: TokenIdent, Pos: 1}, {Text: "(", Kind: TokenOpen, Pos: 2}}, 0},
		{"if", []Token{{Text: "if", Kind: TokenKeyword, Pos: 1}}, 0},
		{"iffy", []Token{{Text: "iffy", Kind: TokenIdent, Pos: 1}}, 0},
		{"not true", []Token{{Text: "not", Kind: TokenKeyword, Pos: 1}, {Text: "true", Kind: TokenKeyword, Pos: 5}}, 0},
		// strings
		{`"abc"`, []Token{{Text: "abc", Kind: TokenString, Pos: 1}}, 0},
		{`"a\"b"`, []Token{{Text: `a"b`, Kind: TokenString, Pos: 1}}, 0},
		{`"a\nb"`, []Token{{Text: "a\nb", Kind: TokenString, Pos: 1}}, 0},
		{`"abc`, []Token{{Pos: 1}}, 1},
		// operators
		{"+", []Token{{Text: "+", Kind: TokenOp, Pos: 1}}, 0},
		{"++", []Token{{Text: "+", Kind: TokenOp, Pos: 1}, {Text: "+", Kind: TokenOp, Pos: 2}}, 0},
		{"a--b", []Token{{Text: "a", Kind: TokenIdent, Pos: 1}, {Text: "-", Kind: TokenOp, Pos: 2}, {Text: "-", Kind: TokenOp, Pos: 3}, {Text: "b", Kind: TokenIdent, Pos: 4}}, 0},
		{"a==b", []Token{{Text: "a", Kind: TokenIdent, Pos: 1}, {Text: "==", Kind: TokenOp, Pos: 2}, {Text: "b", Kind: TokenIdent, Pos: 4}}, 0},
		{"<=>=", []Token{{Text: "<=", Kind: TokenOp, Pos: 1}, {Text: ">=", Kind: TokenOp, Pos: 3}}, 0},
		{"!x", []Token{{Text: "!", Kind: TokenOp, Pos: 1}, {Text: "x", Kind: TokenIdent, Pos: 2}}, 0},
		{"&&||", []Token{{Text: "&&", Kind: TokenOp, Pos: 1}, {Text: "||", Kind: TokenOp, Pos: 3}}, 0},
		{"&", []Token{{Pos: 1}}, 1},
		{"a.b", []Token{{Text: "a", Kind: TokenIdent, Pos: 1}, {Text: ".", Kind: TokenOp, Pos: 2}, {Text: "b", Kind: TokenIdent, Pos: 3}}, 0},
		{"$s", []Token{{Text: "$", Kind: TokenOp, Pos: 1}, {Text: "s", Kind: TokenIdent, Pos: 2}}, 0},
		{"×÷", []Token{{Text: "×", Kind: TokenOp, Pos: 1}, {Text: "÷", Kind: TokenOp, Pos: 2}}, 0},
		// brackets and separators
		{"()", []Token{{Text: "(", Kind: TokenOpen, Pos: 1}, {Text: ")", Kind: TokenClose, Pos: 2}}, 0},
		{"[]", []Token{{Text: "[", Kind: TokenOpen, Pos: 1}, {Text: "]", Kind: TokenClose, Pos: 2}}, 0},
		{"{}", []Token{{Text: "{", Kind: TokenOpen, Pos: 1}, {Text: "}", Kind: TokenClose, Pos: 2}}, 0},
		{",;", []Token{{Text: ",", Kind: TokenSep, Pos: 1}, {Text: ";", Kind: TokenSep, Pos: 2}}, 0},
		// erroneous symbols
		{"@", []Token{{Pos: 1}}, 1},
		{"a@", []Token{{Text: "a", Kind: TokenIdent, Pos: 1}, {Pos: 2}}, 1},
	}

	for _, c := range cases {
		scan := lex(strings.NewReader(c.src))
		for _, want := range c.tokens {
			got, err := scan.next()
			if err == io.EOF {
				t.Errorf("scanning %q: expected token %v but got EOF", c.src, want)
				continue
			}
			if got != want {
				t.Errorf("scanning %q: want %v, got %v", c.src, want, got)
			}
			if err != nil {
				if c.errs > 0 {
					c.errs--
					continue
				}
				t.Errorf("scanning %q: unexpected error %v", c.src, err)
			}
		}
		if c.errs > 0 {
			t.Errorf("scanning %q: not enough errors", c.src)
			continue
		}
		got, err := scan.next()
		if err != nil || got.Kind != TokenEOF {
			t.Errorf("scanning %q: expected EOF, got %v with error %v", c.src, got, err)
		}
	}
}

func TestTokenize(t *testing.T) {
	toks, err := Tokenize(`x = "a" + 2.5e3; f(x)[0]`)
	if err != nil {
		t.Fatal(err)
	}
	want := []TokenKind{TokenIdent, TokenOp, TokenString, TokenOp, TokenNum, TokenSep, TokenIdent, TokenOpen, TokenIdent, TokenClose, TokenOpen, TokenNum, TokenClose}
	if len(toks) != len(want) {
		t.Fatalf("wrong number of tokens: want %d, got %v", len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: want kind %v, got %v", i, k, toks[i])
		}
	}
}

func TestTokenizeError(t *testing.T) {
	cases := []struct {
		src string
		col int
	}{
		{"2a", 1},
		{"x + 3q", 5},
		{`x + "open`, 5},
		{"1 # 2", 3},
		{"a & b", 3},
	}
	for _, c := range cases {
		_, err := Tokenize(c.src)
		var le *LexError
		if !errors.As(err, &le) {
			t.Errorf("%q: expected LexError, got %v", c.src, err)
			continue
		}
		if le.Pos() != c.col {
			t.Errorf("%q: want column %d, got %d", c.src, c.col, le.Pos())
		}
		if ErrorKindOf(err) != ErrorLex {
			t.Errorf("%q: wrong kind %v", c.src, ErrorKindOf(err))
		}
	}
}
