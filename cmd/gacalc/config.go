package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	calculator "github.com/spencerparkin/GAVisTool-sub000"
)

// Config is the contents of a gacalc configuration file.
type Config struct {
	Environment   string `yaml:"environment"`
	Digits        int    `yaml:"digits"`
	Decimal       bool   `yaml:"decimal"`
	MaxDepth      int    `yaml:"max_depth"`
	MaxIterations int    `yaml:"max_iterations"`
	// Variables are evaluated in order when the calculator starts, so later
	// ones may refer to earlier ones.
	Variables []Variable `yaml:"variables"`
	History   string     `yaml:"history"`
}

// Variable is a variable definition in a configuration file.
type Variable struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`
}

func defaultConfig() *Config {
	return &Config{
		Environment: "float",
		Digits:      calculator.DefaultDigits,
		MaxDepth:    calculator.DefaultMaxDepth,
		History:     ".gacalc_history",
	}
}

// loadConfig reads a configuration file over the defaults. An empty path
// gives the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := parseConfig(b, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func parseConfig(b []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if cfg.Digits < 1 {
		return fmt.Errorf("digits must be positive, not %d", cfg.Digits)
	}
	if cfg.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must not be negative, not %d", cfg.MaxIterations)
	}
	for i, v := range cfg.Variables {
		if v.Name == "" {
			return fmt.Errorf("variable %d has no name", i+1)
		}
	}
	return nil
}

type iterationLimiter interface {
	SetIterationLimit(int)
}

// newEnvironment creates the named environment with the configured settings.
func (cfg *Config) newEnvironment(name string) (calculator.Environment, error) {
	var env calculator.Environment
	if name == "rational" {
		env = calculator.NewRational(cfg.Digits, cfg.Decimal)
	} else {
		var err error
		env, err = calculator.NewEnvironment(name)
		if err != nil {
			return nil, err
		}
	}
	if cfg.MaxIterations > 0 {
		if l, ok := env.(iterationLimiter); ok {
			l.SetIterationLimit(cfg.MaxIterations)
		}
	}
	return env, nil
}

// newCalculator creates a calculator from the configuration and evaluates its
// variable definitions.
func (cfg *Config) newCalculator(log *slog.Logger) (*calculator.Calculator, error) {
	env, err := cfg.newEnvironment(cfg.Environment)
	if err != nil {
		return nil, err
	}
	calc := calculator.New(env, calculator.MaxDepth(cfg.MaxDepth), calculator.Logger(log))
	for _, v := range cfg.Variables {
		r, err := calc.Eval(v.Expr)
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", v.Name, err)
		}
		calc.Vars().Set(v.Name, r.Value)
	}
	return calc, nil
}
