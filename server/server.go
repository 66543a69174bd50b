// Package server exposes a service.Service over HTTP with fiber.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/meikuraledutech/chatflow"
	"github.com/meikuraledutech/chatflow/service"
	"go.uber.org/zap"
)

type handler struct {
	svc    *service.Service
	logger *zap.Logger
}

type config struct {
	logger  *zap.Logger
	metrics http.Handler
}

// Option configures the app built by New.
type Option func(*config)

// WithLogger logs every request. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics serves h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(c *config) {
		c.metrics = h
	}
}

// New builds the fiber app with every route registered.
func New(svc *service.Service, opts ...Option) *fiber.App {
	cfg := config{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	h := &handler{svc: svc, logger: cfg.logger}

	app := fiber.New()
	app.Use(h.logRequests)

	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if cfg.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.metrics))
	}

	// ── Examples ──────────────────────────────────────────────────────
	app.Get("/examples", h.listExamples)
	app.Get("/examples/:id", h.getExample)

	// ── Flows ─────────────────────────────────────────────────────────
	app.Post("/flows", h.createFlow)
	app.Get("/flows", h.listFlows)
	app.Get("/flows/:id", h.getFlow)
	app.Put("/flows/:id", h.replaceFlow)
	app.Delete("/flows/:id", h.deleteFlow)
	app.Post("/flows/:id/examples/:exampleId", h.loadExample)

	// ── Nodes ─────────────────────────────────────────────────────────
	app.Post("/flows/:id/nodes", h.addNode)
	app.Patch("/flows/:id/nodes/:nodeId", h.updateNode)
	app.Put("/flows/:id/nodes/:nodeId/position", h.moveNode)
	app.Delete("/flows/:id/nodes/:nodeId", h.deleteNode)
	app.Post("/flows/:id/nodes/:nodeId/duplicate", h.duplicateNode)
	app.Get("/flows/:id/nodes/:nodeId/ports", h.ports)

	// ── Edges ─────────────────────────────────────────────────────────
	app.Post("/flows/:id/edges", h.connect)
	app.Delete("/flows/:id/edges/:edgeId", h.deleteEdge)

	// ── Checks ────────────────────────────────────────────────────────
	app.Get("/flows/:id/validate", h.validate)
	app.Get("/flows/:id/export", h.export)
	app.Get("/flows/:id/mermaid", h.mermaid)

	return app
}

func (h *handler) logRequests(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	h.logger.Info("request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("took", time.Since(start)),
	)
	return err
}

// fail maps a service error to its status code and writes {"error": ...}.
func (h *handler) fail(c fiber.Ctx, err error) error {
	status := statusOf(err)
	if status == fiber.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badBody(c fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
}

func statusOf(err error) int {
	var connErr *chatflow.ConnectionError
	switch {
	case errors.Is(err, chatflow.ErrFlowNotFound),
		errors.Is(err, service.ErrExampleNotFound),
		errors.Is(err, service.ErrNodeNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, chatflow.ErrInvalidPatch):
		return fiber.StatusBadRequest
	case errors.As(err, &connErr),
		errors.Is(err, chatflow.ErrStartProtected),
		errors.Is(err, service.ErrFlowExists):
		return fiber.StatusConflict
	case errors.Is(err, chatflow.ErrInvalidFlow):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}
