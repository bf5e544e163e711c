package ports

import (
	"context"
	"time"

	"github.com/fairwage/fairwage/internal/core/domain"
)

// CacheService provides read-through caching. Entries are replaced wholesale,
// never partially mutated, so no locking beyond the store's own atomicity is
// needed.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// POIProvider searches an external geodata source for named places around a
// point. A disabled provider returns an empty list without any network call.
type POIProvider interface {
	Search(ctx context.Context, query string, lat, lon, radiusKm float64) ([]domain.OSMLocation, error)
	Enabled() bool
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishReportSubmitted(ctx context.Context, r *domain.WageReport) error
	PublishReportApproved(ctx context.Context, r *domain.WageReport) error
}
