// Command gacalc evaluates calculator expressions from arguments, standard
// input, an interactive prompt, or HTTP requests.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	calculator "github.com/spencerparkin/GAVisTool-sub000"
)

// Set via -ldflags at build time.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "gacalc [expression...]",
	Short: "Multi-environment expression calculator",
	Long: `gacalc evaluates expressions in one of several number environments:
float, rational, complex, fraction, multivector, conformal, and matrix.

With arguments, each argument is evaluated in turn. Without arguments,
expressions are read one per line from standard input, or interactively
when standard input is a terminal.`,
	RunE:         runEval,
	SilenceUsage: true,
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	Args:  cobra.NoArgs,
	RunE:  runRepl,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a calculator over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.Version = version

	pf := rootCmd.PersistentFlags()
	pf.String("env", "", "environment (default float, env GACALC_ENV)")
	pf.String("config", "", "YAML configuration file (env GACALC_CONFIG)")
	pf.Int("digits", 0, "significant digits of rational approximations")
	pf.Bool("decimal", false, "display rationals as decimals")
	pf.Int("max-depth", 0, "maximum nesting of string executions")
	pf.Int("max-iterations", 0, "maximum iterations of a single loop")
	pf.Bool("debug", false, "log evaluation details to stderr")
	pf.Bool("dump", false, "print parse trees before evaluating")

	serveCmd.Flags().String("addr", "", "listen address (default 127.0.0.1:8790, env GACALC_ADDR)")

	rootCmd.AddCommand(replCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if v, _ := cmd.Flags().GetBool("debug"); v {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// setup loads the configuration with flags and environment variables
// applied over it.
func setup(cmd *cobra.Command) (*Config, *slog.Logger, error) {
	log := newLogger(cmd)
	path := envOrDefault("GACALC_CONFIG", "")
	if v, _ := cmd.Flags().GetString("config"); v != "" {
		path = v
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	cfg.Environment = envOrDefault("GACALC_ENV", cfg.Environment)
	flags := cmd.Flags()
	if v, _ := flags.GetString("env"); v != "" {
		cfg.Environment = v
	}
	if v, _ := flags.GetInt("digits"); v > 0 {
		cfg.Digits = v
	}
	if flags.Changed("decimal") {
		cfg.Decimal, _ = flags.GetBool("decimal")
	}
	if v, _ := flags.GetInt("max-depth"); v > 0 {
		cfg.MaxDepth = v
	}
	if v, _ := flags.GetInt("max-iterations"); v > 0 {
		cfg.MaxIterations = v
	}
	log.Debug("configured", "env", cfg.Environment, "digits", cfg.Digits, "config", path)
	return cfg, log, nil
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	calc, err := cfg.newCalculator(log)
	if err != nil {
		return err
	}
	dump, _ := cmd.Flags().GetBool("dump")
	if len(args) == 0 {
		if isTerminal(os.Stdin) {
			r := repl{calc: calc, cfg: cfg, out: cmd.OutOrStdout(), dump: dump}
			return r.run()
		}
		return evalLines(calc, cmd.InOrStdin(), cmd.OutOrStdout(), dump)
	}
	failed := false
	for _, src := range args {
		if !evalOne(calc, src, cmd.OutOrStdout(), dump) {
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("some expressions failed")
	}
	return nil
}

func runRepl(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	calc, err := cfg.newCalculator(log)
	if err != nil {
		return err
	}
	dump, _ := cmd.Flags().GetBool("dump")
	r := repl{calc: calc, cfg: cfg, out: cmd.OutOrStdout(), dump: dump}
	return r.run()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	calc, err := cfg.newCalculator(log)
	if err != nil {
		return err
	}
	addr := envOrDefault("GACALC_ADDR", "127.0.0.1:8790")
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		addr = v
	}
	srv := NewServer(calc, cfg, log)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down")
		if err := srv.Shutdown(); err != nil {
			log.Error("shutdown", "err", err)
		}
	}()

	log.Info("listening", "addr", addr, "env", calc.Environment().Name())
	return srv.Listen(addr)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// evalLines evaluates each line of in as a separate expression.
func evalLines(calc *calculator.Calculator, in io.Reader, out io.Writer, dump bool) error {
	sc := bufio.NewScanner(in)
	failed := false
	for sc.Scan() {
		if sc.Text() == "" {
			continue
		}
		if !evalOne(calc, sc.Text(), out, dump) {
			failed = true
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if failed {
		return fmt.Errorf("some expressions failed")
	}
	return nil
}

// evalOne evaluates src and prints the result or error, reporting success.
func evalOne(calc *calculator.Calculator, src string, out io.Writer, dump bool) bool {
	if dump {
		if e, err := calc.Parse(src); err == nil {
			dumpExpr(out, e)
		}
	}
	r, err := calc.Eval(src)
	if err != nil {
		fmt.Fprintf(out, "%v: %v\n", calculator.ErrorKindOf(err), err)
		return false
	}
	fmt.Fprintln(out, r.Text)
	return true
}

var spewConf = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// dumpExpr prints the parse tree of e.
func dumpExpr(w io.Writer, e *calculator.Expr) {
	fmt.Fprintf(w, "%v\n", e)
	spewConf.Fdump(w, e)
}
