package http

import (
	"github.com/fairwage/fairwage/internal/adapters/postgres"
	"github.com/fairwage/fairwage/internal/adapters/valkey"
	"github.com/fairwage/fairwage/internal/core/usecases"
	"github.com/nats-io/nats.go"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Search        *usecases.SearchService
	Locations     *usecases.LocationService
	Organizations *usecases.OrganizationService
	Reports       *usecases.ReportService
	Stats         *usecases.StatsService
	NATS          *nats.Conn
	DB            *postgres.DB
	Cache         *valkey.Cache
}
