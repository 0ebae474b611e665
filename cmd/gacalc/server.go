package main

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	calculator "github.com/spencerparkin/GAVisTool-sub000"
)

// Server serves one calculator over HTTP. Requests are evaluated one at a
// time.
type Server struct {
	app *fiber.App
	cfg *Config
	log *slog.Logger

	mu   sync.Mutex
	calc *calculator.Calculator
}

// NewServer creates a server evaluating with calc.
func NewServer(calc *calculator.Calculator, cfg *Config, log *slog.Logger) *Server {
	srv := &Server{cfg: cfg, log: log, calc: calc}
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	app.Post("/eval", srv.eval)
	app.Get("/vars", srv.listVars)
	app.Put("/vars/:name", srv.setVar)
	app.Delete("/vars/:name", srv.deleteVar)
	app.Delete("/vars", srv.clearVars)
	app.Get("/env", srv.getEnv)
	app.Put("/env", srv.setEnv)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

type exprRequest struct {
	Expr string `json:"expr"`
}

type envRequest struct {
	Name string `json:"name"`
}

func badRequest(c *fiber.Ctx, kind, msg string, pos int) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": fiber.Map{
			"kind":    kind,
			"message": msg,
			"pos":     pos,
		},
	})
}

func evalError(c *fiber.Ctx, err error) error {
	return badRequest(c, calculator.ErrorKindOf(err).String(), err.Error(), calculator.PosOf(err))
}

func (s *Server) eval(c *fiber.Ctx) error {
	var req exprRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "RequestError", "invalid request body: "+err.Error(), 0)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.calc.Eval(req.Expr)
	if err != nil {
		s.log.Debug("eval failed", "expr", req.Expr, "err", err)
		return evalError(c, err)
	}
	return c.JSON(fiber.Map{
		"result":   r.Text,
		"kind":     calculator.KindOf(r.Value).String(),
		"assigned": r.Assigned,
	})
}

func (s *Server) listVars(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	vars := s.calc.Vars()
	m := make(map[string]string, vars.Len())
	for _, name := range vars.Names() {
		v, _ := vars.Get(name)
		m[name] = s.calc.Format(v)
	}
	return c.JSON(fiber.Map{"vars": m})
}

// validName reports whether name is a single identifier token.
func validName(name string) bool {
	toks, err := calculator.Tokenize(name)
	return err == nil && len(toks) == 1 && toks[0].Kind == calculator.TokenIdent
}

func (s *Server) setVar(c *fiber.Ctx) error {
	name := c.Params("name")
	if !validName(name) {
		return badRequest(c, "RequestError", "invalid variable name "+name, 0)
	}
	var req exprRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "RequestError", "invalid request body: "+err.Error(), 0)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.calc.Eval(req.Expr)
	if err != nil {
		return evalError(c, err)
	}
	s.calc.Vars().Set(name, r.Value)
	return c.JSON(fiber.Map{"name": name, "result": r.Text})
}

func (s *Server) deleteVar(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.calc.Vars().Delete(c.Params("name")) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fiber.Map{"kind": calculator.ErrorUndefinedName.String(), "message": "no variable " + c.Params("name")},
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) clearVars(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(fiber.Map{"cleared": s.calc.Vars().Clear()})
}

func (s *Server) getEnv(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	env := s.calc.Environment()
	return c.JSON(fiber.Map{
		"name":         env.Name(),
		"consts":       env.Consts(),
		"funcs":        env.Funcs(),
		"environments": calculator.Environments(),
	})
}

func (s *Server) setEnv(c *fiber.Ctx) error {
	var req envRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "RequestError", "invalid request body: "+err.Error(), 0)
	}
	env, err := s.cfg.newEnvironment(req.Name)
	if errors.Is(err, calculator.ErrUnknownEnvironment) {
		return badRequest(c, "RequestError", err.Error(), 0)
	}
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calc.SetEnvironment(env)
	s.log.Info("environment changed", "name", env.Name())
	return c.JSON(fiber.Map{"name": env.Name()})
}
