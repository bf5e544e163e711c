package usecases_test

import (
	"context"
	"sync"
	"time"

	"github.com/fairwage/fairwage/internal/core/domain"
	"github.com/fairwage/fairwage/internal/core/ports"
)

// --- Mock LocationRepository ---

type mockLocationRepo struct {
	createFn     func(ctx context.Context, loc *domain.Location) error
	getByIDFn    func(ctx context.Context, id string) (*domain.Location, error)
	findNearbyFn func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Location, error)
	searchTextFn func(ctx context.Context, q ports.LocationQuery) ([]domain.Location, error)
}

func (m *mockLocationRepo) Create(ctx context.Context, loc *domain.Location) error {
	if m.createFn != nil {
		return m.createFn(ctx, loc)
	}
	return nil
}
func (m *mockLocationRepo) UpsertBatch(ctx context.Context, locs []domain.Location) error {
	return nil
}
func (m *mockLocationRepo) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &domain.Location{ID: id, OrganizationID: "org-1", Active: true}, nil
}
func (m *mockLocationRepo) ListByOrganization(ctx context.Context, orgID string) ([]domain.Location, error) {
	return nil, nil
}
func (m *mockLocationRepo) FindNearby(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Location, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, lat, lon, radius, limit)
	}
	return nil, nil
}
func (m *mockLocationRepo) SearchText(ctx context.Context, q ports.LocationQuery) ([]domain.Location, error) {
	if m.searchTextFn != nil {
		return m.searchTextFn(ctx, q)
	}
	return nil, nil
}

// --- Mock OrganizationRepository ---

type mockOrgRepo struct {
	getByIDFn func(ctx context.Context, id string) (*domain.Organization, error)
}

func (m *mockOrgRepo) Upsert(ctx context.Context, org *domain.Organization) error { return nil }
func (m *mockOrgRepo) GetBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	return nil, nil
}
func (m *mockOrgRepo) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &domain.Organization{ID: id, Slug: "org", Name: "Org"}, nil
}
func (m *mockOrgRepo) List(ctx context.Context) ([]domain.Organization, error) { return nil, nil }

// --- Mock WageReportRepository ---

type mockReportRepo struct {
	createFn       func(ctx context.Context, r *domain.WageReport) error
	getByIDFn      func(ctx context.Context, id string) (*domain.WageReport, error)
	updateStatusFn func(ctx context.Context, id string, status domain.ReportStatus) error
	approvedFn     func(ctx context.Context, locationID string) ([]int64, error)
	observationsFn func(ctx context.Context, scope domain.StatsScope, scopeID string, f domain.StatsFilters) ([]domain.WageObservation, error)
}

func (m *mockReportRepo) Create(ctx context.Context, r *domain.WageReport) error {
	if m.createFn != nil {
		return m.createFn(ctx, r)
	}
	r.ID = "report-1"
	return nil
}
func (m *mockReportRepo) GetByID(ctx context.Context, id string) (*domain.WageReport, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &domain.WageReport{ID: id, Status: domain.StatusPending}, nil
}
func (m *mockReportRepo) List(ctx context.Context, f ports.ReportFilters) ([]domain.WageReport, int, error) {
	return nil, 0, nil
}
func (m *mockReportRepo) UpdateStatus(ctx context.Context, id string, status domain.ReportStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil
}
func (m *mockReportRepo) ApprovedHourlyCents(ctx context.Context, locationID string) ([]int64, error) {
	if m.approvedFn != nil {
		return m.approvedFn(ctx, locationID)
	}
	return nil, nil
}
func (m *mockReportRepo) Observations(ctx context.Context, scope domain.StatsScope, scopeID string, f domain.StatsFilters) ([]domain.WageObservation, error) {
	if m.observationsFn != nil {
		return m.observationsFn(ctx, scope, scopeID, f)
	}
	return nil, nil
}

// --- Mock POIProvider ---

type mockPOIProvider struct {
	enabled  bool
	searchFn func(ctx context.Context, query string, lat, lon, radiusKm float64) ([]domain.OSMLocation, error)
	calls    int
}

func (m *mockPOIProvider) Enabled() bool { return m.enabled }
func (m *mockPOIProvider) Search(ctx context.Context, query string, lat, lon, radiusKm float64) ([]domain.OSMLocation, error) {
	m.calls++
	if m.searchFn != nil {
		return m.searchFn(ctx, query, lat, lon, radiusKm)
	}
	return nil, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	submitted []string
	approved  []string
}

func (m *mockPublisher) PublishReportSubmitted(ctx context.Context, r *domain.WageReport) error {
	m.submitted = append(m.submitted, r.ID)
	return nil
}
func (m *mockPublisher) PublishReportApproved(ctx context.Context, r *domain.WageReport) error {
	m.approved = append(m.approved, r.ID)
	return nil
}

// --- In-memory CacheService ---

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
	deletes int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

type errCacheMiss struct{}

func (errCacheMiss) Error() string { return "cache miss" }

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.entries[key]; ok {
		return v, nil
	}
	return nil, errCacheMiss{}
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.sets++
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.deletes++
	return nil
}
