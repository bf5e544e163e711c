package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/fairwage/fairwage/internal/adapters/http"
	natsadapter "github.com/fairwage/fairwage/internal/adapters/nats"
	"github.com/fairwage/fairwage/internal/adapters/overpass"
	"github.com/fairwage/fairwage/internal/adapters/postgres"
	"github.com/fairwage/fairwage/internal/adapters/valkey"
	"github.com/fairwage/fairwage/internal/core/domain"
	"github.com/fairwage/fairwage/internal/core/ports"
	"github.com/fairwage/fairwage/internal/core/usecases"
	"github.com/fairwage/fairwage/internal/pkg/config"
	"github.com/fairwage/fairwage/internal/pkg/logging"
	"github.com/fairwage/fairwage/internal/pkg/metrics"
	"github.com/fairwage/fairwage/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("fairwage-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("fairwage-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache. The API degrades to uncached reads when valkey is down.
	var cacheSvc ports.CacheService
	cache, err := valkey.New(ctx, cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, running uncached", "error", err)
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// NATS. Event publishing is best-effort.
	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	// Raw NATS connection for the WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Export pool stats to Prometheus
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			}
		}
	}()

	// External POI gateway
	poi := overpass.New(cfg.Overpass.Endpoint, cfg.Overpass.Enabled, cfg.Overpass.Timeout())

	// Repos
	orgRepo := postgres.NewOrganizationRepo(db)
	locationRepo := postgres.NewLocationRepo(db)
	reportRepo := postgres.NewWageReportRepo(db)

	// Use cases
	weights := domain.RelevanceWeights{
		Text:      cfg.Search.TextWeight,
		Proximity: cfg.Search.ProximityWeight,
	}
	bounds := domain.WageBounds{
		MinHourlyCents: cfg.Wage.MinHourlyCents,
		MaxHourlyCents: cfg.Wage.MaxHourlyCents,
	}
	searchSvc := usecases.NewSearchService(locationRepo, orgRepo, poi, weights,
		cfg.Search.DefaultRadiusKm, cfg.Search.MaxRadiusKm)
	locationSvc := usecases.NewLocationService(locationRepo, cacheSvc)
	orgSvc := usecases.NewOrganizationService(orgRepo)
	statsSvc := usecases.NewStatsService(reportRepo, cacheSvc, cfg.Stats.CacheTTL())
	reportSvc := usecases.NewReportService(reportRepo, locationRepo, statsSvc, events, bounds)

	deps := &http.Dependencies{
		Search:        searchSvc,
		Locations:     locationSvc,
		Organizations: orgSvc,
		Reports:       reportSvc,
		Stats:         statsSvc,
		NATS:          natsConn,
		DB:            db,
		Cache:         cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "FairWage API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.fairwage.dev",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
