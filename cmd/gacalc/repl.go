package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	calculator "github.com/spencerparkin/GAVisTool-sub000"
)

const (
	promptMain = "> "
	promptCont = ". "
)

const replHelp = `Enter an expression to evaluate it. Commands:
  :env           show the environment
  :env NAME      switch environments
  :vars          list variables
  :funcs         list functions of the environment
  :help          show this message
  :quit          exit`

// repl runs an interactive session on the terminal.
type repl struct {
	calc *calculator.Calculator
	cfg  *Config
	out  io.Writer
	// dump prints parse trees before evaluating.
	dump bool
}

func historyPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, name)
}

func (r *repl) run() error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(r.complete)

	hist := historyPath(r.cfg.History)
	if hist != "" {
		if f, err := os.Open(hist); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(hist); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	fmt.Fprintf(r.out, "gacalc (%s). Type :help for help.\n", r.calc.Environment().Name())
	for {
		src, ok := readExpr(ln)
		if !ok {
			fmt.Fprintln(r.out)
			return nil
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if quit := r.line(src); quit {
			return nil
		}
	}
}

// line handles one complete input and reports whether the session should
// end.
func (r *repl) line(src string) bool {
	if cmd := strings.TrimSpace(src); strings.HasPrefix(cmd, ":") {
		return r.command(strings.Fields(cmd))
	}
	if r.dump {
		e, err := r.calc.Parse(src)
		if err == nil {
			dumpExpr(r.out, e)
		}
	}
	res, err := r.calc.Eval(src)
	if err != nil {
		fmt.Fprintf(r.out, "%v: %v\n", calculator.ErrorKindOf(err), err)
		return false
	}
	if res.Assigned != "" {
		fmt.Fprintf(r.out, "%s = %s\n", res.Assigned, res.Text)
		return false
	}
	fmt.Fprintln(r.out, res.Text)
	return false
}

func (r *repl) command(args []string) bool {
	switch args[0] {
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		fmt.Fprintln(r.out, replHelp)
	case ":env":
		if len(args) == 1 {
			fmt.Fprintf(r.out, "%s (available: %s)\n", r.calc.Environment().Name(), strings.Join(calculator.Environments(), ", "))
			return false
		}
		env, err := r.cfg.newEnvironment(args[1])
		if err != nil {
			fmt.Fprintln(r.out, err)
			return false
		}
		r.calc.SetEnvironment(env)
	case ":vars":
		vars := r.calc.Vars()
		for _, name := range vars.Names() {
			v, _ := vars.Get(name)
			fmt.Fprintf(r.out, "%s = %s\n", name, r.calc.Format(v))
		}
	case ":funcs":
		fmt.Fprintln(r.out, strings.Join(r.calc.Environment().Funcs(), ", "))
	default:
		fmt.Fprintf(r.out, "unknown command %s. Type :help for help.\n", args[0])
	}
	return false
}

// complete completes the identifier at the end of line from variables,
// constants, and functions.
func (r *repl) complete(line string) []string {
	i := strings.LastIndexFunc(line, func(c rune) bool {
		return !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9')
	})
	head, word := line[:i+1], line[i+1:]
	if word == "" {
		return nil
	}
	env := r.calc.Environment()
	var names []string
	names = append(names, r.calc.Vars().Names()...)
	names = append(names, env.Consts()...)
	for _, f := range env.Funcs() {
		names = append(names, f+"(")
	}
	var matches []string
	for _, n := range names {
		if strings.HasPrefix(n, word) {
			matches = append(matches, head+n)
		}
	}
	sort.Strings(matches)
	return matches
}

// readExpr reads lines until they form an expression that is complete, in
// that it either parses or fails for a reason other than ending early.
func readExpr(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			b.Reset()
			continue
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if src := b.String(); !incomplete(src) {
			return src, true
		}
	}
}

// incomplete reports whether src fails to parse only because it ends too
// soon.
func incomplete(src string) bool {
	if strings.HasPrefix(strings.TrimSpace(src), ":") {
		return false
	}
	_, err := calculator.ParseString(src)
	var be *calculator.BracketError
	if errors.As(err, &be) {
		return be.Right == ""
	}
	var ee *calculator.EmptyExpressionError
	if errors.As(err, &ee) {
		return ee.End == "" && strings.TrimSpace(src) != ""
	}
	return false
}
