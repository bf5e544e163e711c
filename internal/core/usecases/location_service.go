package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fairwage/fairwage/internal/core/domain"
	"github.com/fairwage/fairwage/internal/core/ports"
	"github.com/fairwage/fairwage/internal/pkg/metrics"
)

// LocationService handles catalog location reads and creation.
type LocationService struct {
	locations ports.LocationRepository
	cache     ports.CacheService
}

// NewLocationService creates a new LocationService.
func NewLocationService(locations ports.LocationRepository, cache ports.CacheService) *LocationService {
	return &LocationService{locations: locations, cache: cache}
}

// CreateLocationInput is the input for registering a new location.
type CreateLocationInput struct {
	OrganizationID string
	Name           string
	AddressLine    string
	City           string
	State          string
	PostalCode     string
	CountryCode    string
	Latitude       float64
	Longitude      float64
}

// Create registers a new active, unverified location. The coordinate
// invariant (decimal fields and spatial position moving together) is
// enforced through SetCoordinates before anything is persisted.
func (s *LocationService) Create(ctx context.Context, in CreateLocationInput) (*domain.Location, error) {
	if in.OrganizationID == "" {
		return nil, fmt.Errorf("organization id is required")
	}
	if in.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	loc := &domain.Location{
		OrganizationID: in.OrganizationID,
		Name:           in.Name,
		AddressLine:    in.AddressLine,
		City:           in.City,
		State:          in.State,
		PostalCode:     in.PostalCode,
		CountryCode:    in.CountryCode,
		Active:         true,
	}
	if err := loc.SetCoordinates(in.Latitude, in.Longitude); err != nil {
		return nil, err
	}

	if err := s.locations.Create(ctx, loc); err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	return loc, nil
}

// FindNearby returns locations within radiusMeters of the given point.
func (s *LocationService) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Location, error) {
	if err := domain.ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	cacheKey := fmt.Sprintf("locations:nearby:%.4f:%.4f:%.0f:%d", lat, lon, radiusMeters, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var locs []domain.Location
			if err := json.Unmarshal(data, &locs); err == nil {
				metrics.CacheHits.WithLabelValues("nearby").Inc()
				return locs, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("nearby").Inc()
	}

	locs, err := s.locations.FindNearby(ctx, lat, lon, radiusMeters, limit)
	if err != nil {
		return nil, err
	}

	// The catalog changes slowly; 5 minutes is plenty.
	if s.cache != nil {
		if data, err := json.Marshal(locs); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 5*time.Minute)
		}
	}

	return locs, nil
}

// GetByID returns a single location.
func (s *LocationService) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	cacheKey := "locations:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var loc domain.Location
			if err := json.Unmarshal(data, &loc); err == nil {
				return &loc, nil
			}
		}
	}

	loc, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(loc); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 10*time.Minute)
		}
	}

	return loc, nil
}

// ListByOrganization returns an organization's locations.
func (s *LocationService) ListByOrganization(ctx context.Context, orgID string) ([]domain.Location, error) {
	return s.locations.ListByOrganization(ctx, orgID)
}
