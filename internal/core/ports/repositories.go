package ports

import (
	"context"

	"github.com/fairwage/fairwage/internal/core/domain"
)

// OrganizationRepository persists employers.
type OrganizationRepository interface {
	Upsert(ctx context.Context, org *domain.Organization) error
	GetBySlug(ctx context.Context, slug string) (*domain.Organization, error)
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	List(ctx context.Context) ([]domain.Organization, error)
}

// LocationQuery narrows a full-text location search.
type LocationQuery struct {
	Text       string
	Center     *domain.GeoPoint
	RadiusKm   float64
	MinReports int
	Limit      int
}

// LocationRepository persists business locations.
type LocationRepository interface {
	Create(ctx context.Context, loc *domain.Location) error
	UpsertBatch(ctx context.Context, locs []domain.Location) error
	GetByID(ctx context.Context, id string) (*domain.Location, error)
	ListByOrganization(ctx context.Context, orgID string) ([]domain.Location, error)
	// FindNearby returns active locations within radiusMeters, annotated with
	// distance_meters, ordered nearest first.
	FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Location, error)
	// SearchText returns active locations matching every term of the query
	// against name, address line, and city, annotated with a text_rank in
	// [0,1). Rows that do not match at all are excluded, not ranked zero.
	SearchText(ctx context.Context, q LocationQuery) ([]domain.Location, error)
}

// ReportFilters narrows wage report listings.
type ReportFilters struct {
	LocationID     string
	OrganizationID string
	Status         domain.ReportStatus
	EmploymentType string
	Offset         int
	Limit          int
}

// WageReportRepository persists wage reports.
type WageReportRepository interface {
	Create(ctx context.Context, r *domain.WageReport) error
	GetByID(ctx context.Context, id string) (*domain.WageReport, error)
	List(ctx context.Context, f ReportFilters) ([]domain.WageReport, int, error)
	// UpdateStatus flips the moderation status; only the status column moves.
	UpdateStatus(ctx context.Context, id string, status domain.ReportStatus) error
	// ApprovedHourlyCents returns the approved normalized rates at a location,
	// for sanity scoring of new submissions.
	ApprovedHourlyCents(ctx context.Context, locationID string) ([]int64, error)
	// Observations returns the approved, filtered observations for a
	// statistics scope.
	Observations(ctx context.Context, scope domain.StatsScope, scopeID string, f domain.StatsFilters) ([]domain.WageObservation, error)
}
