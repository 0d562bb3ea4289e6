// Package api implements the REST API for the calculator: stateless
// expression evaluation plus key-by-key calculator sessions.
package api

import (
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lemonberrylabs/calculator/pkg/accumulator"
	"github.com/lemonberrylabs/calculator/pkg/expr"
	"github.com/lemonberrylabs/calculator/pkg/store"
	"github.com/lemonberrylabs/calculator/pkg/types"
)

// Server is the HTTP API server.
type Server struct {
	app    *fiber.App
	store  *store.Store
	logger *slog.Logger
}

// New creates a new API server backed by the given session store.
func New(s *store.Store, logger *slog.Logger) *Server {
	srv := &Server{
		store:  s,
		logger: logger,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})
	app.Use(recover.New())
	app.Use(srv.logRequests)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Expressions API
	app.Post("/v1/calculate", srv.calculate)
	app.Post("/v1/expressions\\:explain", srv.explain)
	app.Post("/v1/expressions\\:postfix", srv.postfix)

	// Sessions API
	app.Post("/v1/sessions", srv.createSession)
	app.Get("/v1/sessions", srv.listSessions)
	app.Get("/v1/sessions/:session", srv.getSession)
	app.Delete("/v1/sessions/:session", srv.deleteSession)
	app.Post("/v1/sessions/:session\\:press", srv.press)
	app.Get("/v1/sessions/:session/history", srv.history)

	srv.app = app
	return srv
}

// Serve serves HTTP on ln until Shutdown is called or ln is closed.
func (s *Server) Serve(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug("http request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
	)
	return err
}

// --- Expression Handlers ---

type expressionRequest struct {
	Expression string `json:"expression"`
}

func (s *Server) calculate(c *fiber.Ctx) error {
	var req expressionRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", "invalid request body: "+err.Error())
	}
	return c.JSON(fiber.Map{
		"expression": req.Expression,
		"result":     expr.Calculate(req.Expression),
	})
}

func (s *Server) explain(c *fiber.Ctx) error {
	var req expressionRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", "invalid request body: "+err.Error())
	}
	res := expr.Explain(req.Expression)
	return c.JSON(resultToJSON(res))
}

func (s *Server) postfix(c *fiber.Ctx) error {
	var req expressionRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", "invalid request body: "+err.Error())
	}
	pf, err := expr.ToPostfix(req.Expression)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
	}
	return c.JSON(fiber.Map{
		"expression": req.Expression,
		"postfix":    pf,
	})
}

// --- Session Handlers ---

type pressRequest struct {
	Inputs []string `json:"inputs"`
}

func (s *Server) createSession(c *fiber.Ctx) error {
	sess := s.store.CreateSession()
	s.logger.Info("session created", "session", sess.Name)
	return c.Status(fiber.StatusOK).JSON(sess)
}

func (s *Server) listSessions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"sessions": s.store.ListSessions(),
	})
}

func (s *Server) getSession(c *fiber.Ctx) error {
	sess, err := s.store.GetSession(sessionName(c))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(sess)
}

func (s *Server) deleteSession(c *fiber.Ctx) error {
	name := sessionName(c)
	if err := s.store.DeleteSession(name); err != nil {
		return storeError(c, err)
	}
	s.logger.Info("session deleted", "session", name)
	return c.JSON(fiber.Map{})
}

func (s *Server) press(c *fiber.Ctx) error {
	var req pressRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", "invalid request body: "+err.Error())
	}
	if len(req.Inputs) == 0 {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", "inputs is required")
	}
	sess, err := s.store.Press(sessionName(c), req.Inputs)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(sess)
}

func (s *Server) history(c *fiber.Ctx) error {
	hist, err := s.store.History(sessionName(c))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{
		"calculations": hist,
	})
}

// --- Helpers ---

func sessionName(c *fiber.Ctx) string {
	return "sessions/" + c.Params("session")
}

func errorResponse(c *fiber.Ctx, code int, status, message string) error {
	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
			"status":  status,
		},
	})
}

func storeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return errorResponse(c, fiber.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, accumulator.ErrUnknownCommand):
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
	default:
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

func resultToJSON(res expr.Result) fiber.Map {
	m := fiber.Map{
		"expression": res.Expression,
		"postfix":    res.Postfix,
		"result":     res.Display,
	}
	if res.Err != nil {
		e := fiber.Map{"message": res.Err.Error()}
		if ce, ok := types.AsCalcError(res.Err); ok {
			e["tags"] = ce.Tags
			if ce.Pos >= 0 {
				e["position"] = ce.Pos
			}
		}
		m["error"] = e
	}
	return m
}
