package server

import (
	"s3-utils/core/logger"
	"s3-utils/core/render"
	"s3-utils/feature/report"
	"s3-utils/feature/snapshot"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Server is the read-only snapshot viewer. It exposes the snapshot index
// and the change report over HTTP; it never talks to object storage
// itself, only to the snapshot store on disk.
type Server struct {
	app   *fiber.App
	cfg   Config
	log   *zap.Logger
	store *snapshot.Store
}

// New creates the viewer over the given snapshot store.
func New(cfg Config, l *zap.Logger, store *snapshot.Store) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		}),
		cfg:   cfg,
		log:   l,
		store: store,
	}

	// Request ID (must be first to trace everything)
	s.app.Use(func(c *fiber.Ctx) error {
		rid := c.Get(fiber.HeaderXRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals("request_id", rid)
		c.Set(fiber.HeaderXRequestID, rid)
		return c.Next()
	})

	// Logging middleware (Zap + request ID)
	s.app.Use(func(c *fiber.Ctx) error {
		rl := logger.WithRequestID(l, c)
		rl.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			rl.Error("Request error", zap.Error(err))
		}
		return err
	})

	s.app.Get("/healthz", s.handleHealth)
	s.app.Get("/api/snapshots", s.handleSnapshotIndex)
	s.app.Get("/api/report", s.handleReportJSON)
	s.app.Get("/report", s.handleReportHTML)

	return s
}

// Listen blocks serving HTTP on the configured port.
func (s *Server) Listen() error {
	s.log.Info("Starting server", zap.String("port", s.cfg.Port))
	return s.app.Listen(":" + s.cfg.Port)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleSnapshotIndex(c *fiber.Ctx) error {
	names, err := s.store.List()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(fiber.Map{"snapshots": names})
}

// latestReport compares the two most recent snapshots. A single snapshot
// yields a report with zero deltas for everything but new buckets.
func (s *Server) latestReport() (*snapshot.Report, error) {
	snaps, err := s.store.LoadLatest(2)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, fiber.NewError(fiber.StatusNotFound, "no snapshots available")
	}

	var previous *snapshot.Snapshot
	if len(snaps) > 1 {
		previous = snaps[1]
	}
	return snapshot.Compare(snaps[0], previous), nil
}

func (s *Server) handleReportJSON(c *fiber.Ctx) error {
	rep, err := s.latestReport()
	if err != nil {
		return err
	}
	return c.JSON(rep)
}

func (s *Server) handleReportHTML(c *fiber.Ctx) error {
	rep, err := s.latestReport()
	if err != nil {
		return err
	}

	html, err := report.HTML(rep, render.UnitsBinary)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(html)
}
