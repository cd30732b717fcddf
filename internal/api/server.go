// Package api exposes the ingestion pipeline over HTTP: trigger endpoints
// for manual and scheduled runs plus small read endpoints for the catalog.
package api

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/skrooge/skrooge/internal/ingest"
	"github.com/skrooge/skrooge/internal/logging"
	"github.com/skrooge/skrooge/internal/models"
)

// Runner triggers ingestion runs. The ingest.Coordinator satisfies it.
type Runner interface {
	RunOne(ctx context.Context, name string) (ingest.RunReport, error)
	RunAll(ctx context.Context) ([]ingest.RunReport, ingest.Summary)
}

// DealReader serves the read endpoints. The SQLite store satisfies it.
type DealReader interface {
	RecentDeals(ctx context.Context, limit int) ([]models.Deal, error)
	CountDeals(ctx context.Context) (int, error)
}

// Options configures the HTTP surface.
type Options struct {
	Sources       []string
	DefaultSource string
	// APIKey guards the trigger endpoints when non-empty. Read endpoints
	// stay open.
	APIKey string
}

// Server bundles the fiber app with its dependencies.
type Server struct {
	app    *fiber.App
	runner Runner
	deals  DealReader
	opts   Options
	log    *logging.Logger
}

// New builds the fiber app with all routes registered.
func New(runner Runner, deals DealReader, opts Options, log *logging.Logger) *Server {
	s := &Server{
		runner: runner,
		deals:  deals,
		opts:   opts,
		log:    log,
	}

	app := fiber.New(fiber.Config{
		AppName:               "skrooge",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		// Scrape runs walk several feed pages with rate-limit gaps.
		WriteTimeout: 5 * time.Minute,
	})

	app.Use(requestid.New())
	app.Use(fiberlogger.New())

	app.Get("/healthz", s.handleHealth)
	app.Get("/api/sources", s.handleSources)
	app.Get("/api/deals", s.handleDeals)

	trigger := app.Group("", s.auth)
	scrapeLimiter := limiter.New(limiter.Config{Max: 10, Expiration: time.Minute})
	trigger.Post("/api/scrape", scrapeLimiter, s.handleScrape)
	trigger.Get("/api/cron/scrape", scrapeLimiter, s.handleCronScrape)

	s.app = app
	return s
}

// Listen blocks serving on addr.
func (s *Server) Listen(addr string) error {
	s.log.Info("[api] listening on %s", addr)
	return s.app.Listen(addr)
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App { return s.app }

// auth enforces Bearer token auth on trigger endpoints when an API key is
// configured.
func (s *Server) auth(c *fiber.Ctx) error {
	if s.opts.APIKey == "" {
		return c.Next()
	}
	authHeader := c.Get(fiber.HeaderAuthorization)
	token, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found || subtle.ConstantTimeCompare([]byte(token), []byte(s.opts.APIKey)) != 1 {
		c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="api"`)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
	}
	return c.Next()
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleSources(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"sources": s.opts.Sources,
		"default": s.opts.DefaultSource,
	})
}

func (s *Server) handleDeals(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit > 100 {
		limit = 100
	}
	deals, err := s.deals.RecentDeals(c.UserContext(), limit)
	if err != nil {
		s.log.Error("[api] list deals: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list deals")
	}
	total, err := s.deals.CountDeals(c.UserContext())
	if err != nil {
		s.log.Error("[api] count deals: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to count deals")
	}
	return c.JSON(fiber.Map{"total": total, "deals": deals})
}

type scrapeRequest struct {
	Source string `json:"source"`
}

func (s *Server) handleScrape(c *fiber.Ctx) error {
	var req scrapeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}
	name := req.Source
	if name == "" {
		name = s.opts.DefaultSource
	}

	report, err := s.runner.RunOne(c.UserContext(), name)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(report)
}

func (s *Server) handleCronScrape(c *fiber.Ctx) error {
	reports, sum := s.runner.RunAll(c.UserContext())
	return c.JSON(fiber.Map{"summary": sum, "reports": reports})
}
