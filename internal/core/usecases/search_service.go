package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/fairwage/fairwage/internal/core/domain"
	"github.com/fairwage/fairwage/internal/core/ports"
	"github.com/fairwage/fairwage/internal/pkg/metrics"
)

// SearchParams is the input to a unified location search.
type SearchParams struct {
	Query      string
	Lat        float64
	Lon        float64
	RadiusKm   float64
	IncludeOSM bool
	MinReports int
	Limit      int
}

// SearchService merges the local location catalog with the external POI
// provider into one relevance-ranked result list.
type SearchService struct {
	locations ports.LocationRepository
	orgs      ports.OrganizationRepository
	poi       ports.POIProvider
	weights   domain.RelevanceWeights
	maxRadius float64
	defRadius float64
}

// NewSearchService creates a SearchService. poi may be nil when the external
// integration is not configured at all.
func NewSearchService(locations ports.LocationRepository, orgs ports.OrganizationRepository, poi ports.POIProvider, weights domain.RelevanceWeights, defaultRadiusKm, maxRadiusKm float64) *SearchService {
	return &SearchService{
		locations: locations,
		orgs:      orgs,
		poi:       poi,
		weights:   weights,
		defRadius: defaultRadiusKm,
		maxRadius: maxRadiusKm,
	}
}

// Search runs the unified search. An empty query yields an empty result set:
// search is opt-in, never a backdoor full listing. A gateway failure while
// OSM results were merely opted in degrades to internal-only results; the
// failure is logged and counted, not surfaced.
func (s *SearchService) Search(ctx context.Context, p SearchParams) (domain.SearchResults, error) {
	if strings.TrimSpace(p.Query) == "" {
		return domain.SearchResults{}, nil
	}
	if err := domain.ValidateCoordinates(p.Lat, p.Lon); err != nil {
		return nil, err
	}
	if p.RadiusKm <= 0 {
		p.RadiusKm = s.defRadius
	}
	if p.RadiusKm > s.maxRadius {
		p.RadiusKm = s.maxRadius
	}
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 50
	}

	metrics.SearchesTotal.Inc()

	locs, err := s.locations.SearchText(ctx, ports.LocationQuery{
		Text:       p.Query,
		Center:     &domain.GeoPoint{Lat: p.Lat, Lon: p.Lon},
		RadiusKm:   p.RadiusKm,
		MinReports: p.MinReports,
		Limit:      p.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("local search: %w", err)
	}

	results := make(domain.SearchResults, 0, len(locs))
	for _, l := range locs {
		r := domain.ResultFromLocation(l)
		r.Organization = s.orgSummary(ctx, l.OrganizationID)
		results = append(results, r)
	}
	metrics.SearchResultsReturned.WithLabelValues(string(domain.SourceInternal)).Add(float64(len(results)))

	if p.IncludeOSM && s.poi != nil && s.poi.Enabled() {
		pois, err := s.poi.Search(ctx, p.Query, p.Lat, p.Lon, p.RadiusKm)
		if err != nil {
			slog.WarnContext(ctx, "poi gateway failed, serving internal results only",
				"query", p.Query, "error", err)
		} else {
			merged := s.mergeExternal(results, pois)
			metrics.SearchResultsReturned.WithLabelValues(string(domain.SourceExternal)).Add(float64(len(merged) - len(results)))
			results = merged
		}
	}

	results, err = results.WithDistance(p.Lat, p.Lon)
	if err != nil {
		return nil, err
	}

	for i := range results {
		score := domain.RelevanceScore(results[i].TextRank, results[i].DistanceMeters, p.RadiusKm, s.weights)
		results[i].RelevanceScore = &score
	}

	results = results.OrderByRelevance()
	if len(results) > p.Limit {
		results = results[:p.Limit]
	}
	return results, nil
}

// mergeExternal appends external POIs that do not duplicate an internal
// location. A POI is a duplicate when an internal row links its OSM id, or
// when a row with the same (case-folded) name sits within 100m.
func (s *SearchService) mergeExternal(internal domain.SearchResults, pois []domain.OSMLocation) domain.SearchResults {
	linked := make(map[domain.OSMID]bool, len(internal))
	for _, r := range internal {
		if r.OSMID != nil {
			linked[*r.OSMID] = true
		}
	}

	out := internal
	for _, poi := range pois {
		if linked[poi.ID] {
			continue
		}
		dup := false
		for _, r := range internal {
			if strings.EqualFold(r.Name, poi.Name) && nearlySamePlace(r.Latitude, r.Longitude, poi.Latitude, poi.Longitude) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, domain.ResultFromOSM(poi))
		}
	}
	return out
}

func nearlySamePlace(lat1, lon1, lat2, lon2 float64) bool {
	// ~100m in degrees at mid latitudes; close enough for dedup purposes.
	return math.Abs(lat1-lat2) < 0.001 && math.Abs(lon1-lon2) < 0.0015
}

func (s *SearchService) orgSummary(ctx context.Context, orgID string) *domain.OrganizationSummary {
	if orgID == "" {
		return nil
	}
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil || org == nil {
		return nil
	}
	return &domain.OrganizationSummary{ID: org.ID, Slug: org.Slug, Name: org.Name, Verified: org.Verified}
}
