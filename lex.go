package calculator

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// Token is a classified lexical unit of an expression.
type Token struct {
	// Text is the literal text of the token. For string tokens, it is the
	// value with quotes removed and escapes interpreted.
	Text string
	// Kind is the token's class.
	Kind TokenKind
	// Pos is the 1-based rune column at which the token begins.
	Pos int
}

func (t Token) String() string {
	return t.Kind.String() + ":" + t.Text + "@" + strconv.Itoa(t.Pos)
}

// TokenKind is the class of a token.
type TokenKind int

const (
	tokenNone TokenKind = iota
	// TokenEOF indicates the end of the input.
	TokenEOF
	// TokenNum is a numeric literal. Its meaning is decided by the
	// environment that evaluates it.
	TokenNum
	// TokenIdent is a variable or function name.
	TokenIdent
	// TokenString is a double-quoted string literal.
	TokenString
	// TokenKeyword is a reserved word, e.g. if or and.
	TokenKeyword
	// TokenOp is an operator.
	TokenOp
	// TokenOpen is an open bracket, e.g. (.
	TokenOpen
	// TokenClose is a close bracket, e.g. ).
	TokenClose
	// TokenSep is a separator, either , or ;.
	TokenSep
)

var tokenKindNames = [...]string{
	tokenNone:    "None",
	TokenEOF:     "EOF",
	TokenNum:     "Num",
	TokenIdent:   "Ident",
	TokenString:  "String",
	TokenKeyword: "Keyword",
	TokenOp:      "Op",
	TokenOpen:    "Open",
	TokenClose:   "Close",
	TokenSep:     "Sep",
}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return "TokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenKindNames[k]
}

// Operators contains the runes which begin operators. The two-rune operators
// are ==, !=, <=, >=, &&, and ||.
const Operators = "+-*/^.~$=<>!&|×÷"

// OpenBrackets and CloseBrackets contain the runes which group expressions.
// The parser checks that a bracket in byte position k in OpenBrackets is
// matched with the bracket in byte position k in ClosedBrackets.
const (
	OpenBrackets  = "([{"
	CloseBrackets = ")]}"
)

// Keywords lists the reserved words.
var Keywords = []string{"if", "else", "while", "for", "and", "or", "not", "true", "false"}

func byteidcs(s string) []string {
	v := make([]string, len(s))
	for i, r := range s {
		v[i] = string(r)
	}
	return v
}

var (
	openbrackets  = byteidcs(OpenBrackets)
	closebrackets = byteidcs(CloseBrackets)
)

func iskeyword(s string) bool {
	for _, k := range Keywords {
		if s == k {
			return true
		}
	}
	return false
}

type lexer struct {
	src  io.RuneScanner
	buf  strings.Builder
	rune int
	p    Token
	eof  bool
}

func lex(src io.RuneScanner) *lexer {
	return &lexer{
		src:  src,
		rune: 1,
	}
}

// Tokenize scans all tokens of src. The final EOF token is not included.
func Tokenize(src string) ([]Token, error) {
	l := lex(strings.NewReader(src))
	var toks []Token
	for {
		tok, err := l.next()
		if err != nil {
			return toks, err
		}
		if tok.Kind == TokenEOF {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

// push unreads a token so that it is the next token returned from next. Panics
// if there is already a pushed token.
func (l *lexer) push(tok Token) {
	if l.p.Kind != tokenNone {
		panic("calculator: double push")
	}
	l.p = tok
}

// must scans the pushed token. Panics if there is no pushed token.
func (l *lexer) must() Token {
	tok := l.p
	if tok.Kind == tokenNone {
		panic("calculator: no pushed token")
	}
	l.p = Token{}
	return tok
}

// readRune reads a rune from the src and updates the lexer's position info.
func (l *lexer) readRune() (r rune, err error) {
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.rune++
	}
	return r, err
}

// unreadRune unreads a rune from the src and updates the lexer's position
// info. Panics if unreading returns an error.
func (l *lexer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.rune--
}

// peek reports whether the next rune is want, consuming it if so.
func (l *lexer) peek(want rune) bool {
	r, err := l.readRune()
	if err != nil {
		return false
	}
	if r != want {
		l.unreadRune()
		return false
	}
	return true
}

// next scans the next token from the input. The first time EOF is
// encountered, the result is an EOF token with a nil error. Subsequent times,
// if the EOF token is not pushed, the result is an empty token with io.EOF.
func (l *lexer) next() (Token, error) {
	if l.p.Kind != tokenNone {
		tok := l.p
		l.p = Token{}
		return tok, nil
	}
	if l.eof {
		return Token{}, io.EOF
	}
	defer l.buf.Reset()
	for {
		tok := Token{Pos: l.rune}
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				tok.Kind = TokenEOF
				l.eof = true
				return tok, nil
			}
			return tok, err
		}
		switch {
		case unicode.IsSpace(r):
			continue
		case '0' <= r && r <= '9':
			l.buf.WriteRune(r)
			if err := l.scanNum(tok.Pos, false); err != nil {
				return tok, err
			}
			tok.Text = l.buf.String()
			tok.Kind = TokenNum
			return tok, nil
		case r == '.':
			// A dot begins a number only when a digit follows it.
			d, err := l.readRune()
			if err == nil {
				l.unreadRune()
			}
			if err == nil && '0' <= d && d <= '9' {
				l.buf.WriteRune(r)
				if err := l.scanNum(tok.Pos, true); err != nil {
					return tok, err
				}
				tok.Text = l.buf.String()
				tok.Kind = TokenNum
				return tok, nil
			}
			tok.Text = "."
			tok.Kind = TokenOp
			return tok, nil
		case r == '_', unicode.IsLetter(r):
			l.buf.WriteRune(r)
			l.scanIdent()
			tok.Text = l.buf.String()
			tok.Kind = TokenIdent
			if iskeyword(tok.Text) {
				tok.Kind = TokenKeyword
			}
			return tok, nil
		case r == '"':
			l.buf.WriteRune(r)
			s, err := l.scanString(tok.Pos)
			if err != nil {
				return tok, err
			}
			tok.Text = s
			tok.Kind = TokenString
			return tok, nil
		case r == ',' || r == ';':
			tok.Text = string(r)
			tok.Kind = TokenSep
			return tok, nil
		case r == '=' || r == '!' || r == '<' || r == '>':
			tok.Text = string(r)
			if l.peek('=') {
				tok.Text += "="
			}
			tok.Kind = TokenOp
			return tok, nil
		case r == '&' || r == '|':
			if !l.peek(r) {
				l.buf.WriteRune(r)
				return tok, l.error("operator", tok.Pos)
			}
			tok.Text = string(r) + string(r)
			tok.Kind = TokenOp
			return tok, nil
		default:
			if strings.ContainsRune(Operators, r) {
				tok.Text = string(r)
				tok.Kind = TokenOp
				return tok, nil
			}
			if k := strings.IndexRune(OpenBrackets, r); k >= 0 {
				tok.Text = openbrackets[k]
				tok.Kind = TokenOpen
				return tok, nil
			}
			if k := strings.IndexRune(CloseBrackets, r); k >= 0 {
				tok.Text = closebrackets[k]
				tok.Kind = TokenClose
				return tok, nil
			}
			// Write the rune so that it shows up in the error message.
			l.buf.WriteRune(r)
			return tok, l.error("", tok.Pos)
		}
	}
}

// scanNum scans the remainder of a numeric literal whose first rune is
// already in the buffer. A literal running directly into a letter, e.g. 2a, is
// malformed rather than split.
func (l *lexer) scanNum(start int, dot bool) error {
	dig, e, le, ed := !dot, false, false, false
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if r == '+' || r == '-' {
			// + or - anywhere other than immediately following an exponent
			// marker means a new token, as it is an operator.
			if !le {
				l.unreadRune()
				break
			}
			le = false
			l.buf.WriteRune(r)
			continue
		}
		switch {
		case '0' <= r && r <= '9':
			if e {
				ed = true
			} else {
				dig = true
			}
			le = false
		case r == '.':
			if dot || e {
				l.buf.WriteRune(r)
				return l.error("number", start)
			}
			dot = true
		case r == 'e' || r == 'E':
			if !dig || e {
				l.buf.WriteRune(r)
				return l.error("number", start)
			}
			e = true
			le = true
		case r == '_', unicode.IsLetter(r), unicode.IsDigit(r):
			l.buf.WriteRune(r)
			return l.error("number", start)
		default:
			l.unreadRune()
			if e && !ed {
				return l.error("number", start)
			}
			return nil
		}
		l.buf.WriteRune(r)
	}
	if e && !ed {
		return l.error("number", start)
	}
	return nil
}

func (l *lexer) scanIdent() {
	for {
		r, err := l.readRune()
		if err != nil {
			return
		}
		switch {
		case r == '_', unicode.IsLetter(r), unicode.IsDigit(r):
			l.buf.WriteRune(r)
		default:
			l.unreadRune()
			return
		}
	}
}

// scanString scans the remainder of a string literal whose opening quote is
// already in the buffer and returns its unquoted value.
func (l *lexer) scanString(start int) (string, error) {
	esc := false
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", l.error("string", start)
			}
			return "", err
		}
		l.buf.WriteRune(r)
		switch {
		case esc:
			esc = false
		case r == '\\':
			esc = true
		case r == '"':
			s, err := strconv.Unquote(l.buf.String())
			if err != nil {
				return "", l.error("string", start)
			}
			return s, nil
		}
	}
}

func (l *lexer) error(scanning string, start int) error {
	return &LexError{
		Text:     l.buf.String(),
		Scanning: scanning,
		Col:      start,
	}
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the token the lexer was scanning when the invalid rune was
	// encountered, plus the invalid rune.
	Text string
	// Scanning is the type of token the lexer was scanning. This may be
	// "number", "string", "operator", or the empty string (if a token kind
	// hadn't been decided).
	Scanning string
	// Col is the position at which the invalid token begins.
	Col int
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	if err.Scanning == "" {
		return "invalid token at " + pos + ": " + err.Text
	}
	return "invalid " + err.Scanning + " token at " + pos + ": " + err.Text
}

func (err *LexError) Pos() int {
	return err.Col
}

func (err *LexError) Kind() ErrorKind {
	return ErrorLex
}
