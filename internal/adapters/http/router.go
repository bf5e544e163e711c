package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/fairwage/fairwage/internal/core/domain"
	"github.com/fairwage/fairwage/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // Balance speed vs compression ratio
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// Deprecated aliases get sunset headers
	app.Use(DeprecationMiddleware([]DeprecatedRoute{
		{
			Path:        "/v1/stats",
			SunsetDate:  time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
			Alternative: "/v1/statistics",
		},
	}))

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1 with 15s per-request timeout
	v1 := app.Group("/v1")
	v1.Get("/locations/search", timeout.NewWithContext(SearchLocationsHandler(deps), 15*time.Second))
	v1.Get("/locations/nearby", timeout.NewWithContext(NearbyLocationsHandler(deps), 15*time.Second))
	v1.Post("/locations", timeout.NewWithContext(CreateLocationHandler(deps), 15*time.Second))
	v1.Get("/locations/:id", timeout.NewWithContext(GetLocationHandler(deps), 15*time.Second))
	v1.Get("/locations/:id/wage-reports", timeout.NewWithContext(LocationReportsHandler(deps), 15*time.Second))
	v1.Get("/locations/:id/statistics", timeout.NewWithContext(LocationStatisticsHandler(deps), 15*time.Second))

	v1.Get("/organizations", timeout.NewWithContext(ListOrganizationsHandler(deps), 15*time.Second))
	v1.Get("/organizations/:slug", timeout.NewWithContext(GetOrganizationHandler(deps), 15*time.Second))
	v1.Get("/organizations/:slug/locations", timeout.NewWithContext(OrganizationLocationsHandler(deps), 15*time.Second))
	v1.Get("/organizations/:slug/statistics", timeout.NewWithContext(OrganizationStatisticsHandler(deps), 15*time.Second))

	v1.Post("/wage-reports", timeout.NewWithContext(SubmitReportHandler(deps), 15*time.Second))
	v1.Get("/wage-reports", timeout.NewWithContext(ListReportsHandler(deps), 15*time.Second))
	v1.Get("/wage-reports/:id", timeout.NewWithContext(GetReportHandler(deps), 15*time.Second))
	v1.Post("/wage-reports/:id/approve", timeout.NewWithContext(ModerateReportHandler(deps, domain.StatusApproved), 15*time.Second))
	v1.Post("/wage-reports/:id/reject", timeout.NewWithContext(ModerateReportHandler(deps, domain.StatusRejected), 15*time.Second))
	v1.Post("/wage-reports/:id/flag", timeout.NewWithContext(ModerateReportHandler(deps, domain.StatusFlagged), 15*time.Second))

	v1.Get("/statistics", timeout.NewWithContext(GlobalStatisticsHandler(deps), 15*time.Second))
	// Pre-rename alias, kept until the sunset date above.
	v1.Get("/stats", timeout.NewWithContext(GlobalStatisticsHandler(deps), 15*time.Second))

	v1.Get("/coverage", timeout.NewWithContext(CoverageHandler(deps), 15*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
