package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/fairwage/fairwage/internal/core/domain"
	"github.com/fairwage/fairwage/internal/core/ports"
	"github.com/fairwage/fairwage/internal/pkg/metrics"
	"github.com/fairwage/fairwage/internal/pkg/stats"
)

const (
	topJobTitles  = 10
	topGeoBuckets = 15
)

// StatsService computes descriptive wage statistics per scope, memoized in
// the cache for a bounded TTL. Entries may go stale up to the TTL; statistics
// are observational, so eventual consistency is cheaper than synchronous
// invalidation on every approval.
type StatsService struct {
	reports  ports.WageReportRepository
	cache    ports.CacheService
	cacheTTL time.Duration
}

// NewStatsService creates a StatsService. cache may be nil (tests, degraded
// deployments); computation then happens on every call.
func NewStatsService(reports ports.WageReportRepository, cache ports.CacheService, cacheTTL time.Duration) *StatsService {
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	return &StatsService{reports: reports, cache: cache, cacheTTL: cacheTTL}
}

// Compute returns the statistics for a scope. Zero approved reports yields
// the explicit empty result, never an error: "no data" is renderable.
func (s *StatsService) Compute(ctx context.Context, scope domain.StatsScope, scopeID string, f domain.StatsFilters) (*domain.WageStatistics, error) {
	switch scope {
	case domain.ScopeGlobal:
		scopeID = ""
	case domain.ScopeLocation, domain.ScopeOrganization:
		if scopeID == "" {
			return nil, fmt.Errorf("scope %s requires a scope id", scope)
		}
	default:
		return nil, fmt.Errorf("unknown statistics scope %q", scope)
	}

	key := cacheKey(scope, scopeID, f)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var cached domain.WageStatistics
			if err := json.Unmarshal(data, &cached); err == nil {
				metrics.CacheHits.WithLabelValues("stats").Inc()
				return &cached, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("stats").Inc()
	}

	obs, err := s.reports.Observations(ctx, scope, scopeID, f)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}

	result := Calculate(obs, scope == domain.ScopeGlobal)

	if s.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			_ = s.cache.Set(ctx, key, data, s.cacheTTL)
		}
	}
	return &result, nil
}

// ClearCache drops the memoized entries for a scope. Filter-variant keys are
// left to expire by TTL; only the unfiltered default is dropped eagerly.
func (s *StatsService) ClearCache(ctx context.Context, scope domain.StatsScope, scopeID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, cacheKey(scope, scopeID, domain.StatsFilters{}))
}

func cacheKey(scope domain.StatsScope, scopeID string, f domain.StatsFilters) string {
	return fmt.Sprintf("stats:%s:%s:%s", scope, scopeID, f.Hash())
}

// Calculate runs the aggregate computation over a set of observations. Pure;
// exposed for direct testing.
func Calculate(obs []domain.WageObservation, includeGeo bool) domain.WageStatistics {
	if len(obs) == 0 {
		return domain.EmptyWageStatistics(includeGeo)
	}

	values := make([]int64, len(obs))
	for i, o := range obs {
		values[i] = o.HourlyCents
	}

	lo, hi := stats.MinMax(values)
	result := domain.WageStatistics{
		Count:             len(values),
		AverageCents:      int64(math.Round(stats.Mean(values))),
		MedianCents:       int64(math.Round(stats.Median(values))),
		MinCents:          lo,
		MaxCents:          hi,
		StdDeviationCents: math.Round(stats.StdDevPopulation(values)*100) / 100,
		Percentiles: domain.Percentiles{
			P25: int64(math.Round(stats.Percentile(values, 0.25))),
			P50: int64(math.Round(stats.Percentile(values, 0.50))),
			P75: int64(math.Round(stats.Percentile(values, 0.75))),
			P90: int64(math.Round(stats.Percentile(values, 0.90))),
		},
		EmploymentTypes: employmentBreakdown(obs),
		JobTitles:       titleBreakdown(obs),
	}
	if includeGeo {
		result.GeographicDistribution = geoBreakdown(obs)
	}
	return result
}

type bucket struct {
	count int
	sum   int64
}

func employmentBreakdown(obs []domain.WageObservation) []domain.TypeBreakdown {
	buckets := map[string]*bucket{}
	for _, o := range obs {
		b, ok := buckets[o.EmploymentType]
		if !ok {
			b = &bucket{}
			buckets[o.EmploymentType] = b
		}
		b.count++
		b.sum += o.HourlyCents
	}

	out := make([]domain.TypeBreakdown, 0, len(buckets))
	for typ, b := range buckets {
		out = append(out, domain.TypeBreakdown{
			Type:         typ,
			Count:        b.count,
			AverageCents: b.sum / int64(b.count),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out
}

func titleBreakdown(obs []domain.WageObservation) []domain.TitleBreakdown {
	buckets := map[string]*bucket{}
	for _, o := range obs {
		b, ok := buckets[o.JobTitle]
		if !ok {
			b = &bucket{}
			buckets[o.JobTitle] = b
		}
		b.count++
		b.sum += o.HourlyCents
	}

	out := make([]domain.TitleBreakdown, 0, len(buckets))
	for title, b := range buckets {
		out = append(out, domain.TitleBreakdown{
			Title:        title,
			Count:        b.count,
			AverageCents: b.sum / int64(b.count),
		})
	}
	// Count dominates; alphabetical order breaks ties deterministically.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Title < out[j].Title
	})
	if len(out) > topJobTitles {
		out = out[:topJobTitles]
	}
	return out
}

func geoBreakdown(obs []domain.WageObservation) []domain.GeoBreakdown {
	type geoKey struct{ city, state string }
	buckets := map[geoKey]*bucket{}
	for _, o := range obs {
		if o.City == "" {
			continue
		}
		k := geoKey{o.City, o.State}
		b, ok := buckets[k]
		if !ok {
			b = &bucket{}
			buckets[k] = b
		}
		b.count++
		b.sum += o.HourlyCents
	}

	out := make([]domain.GeoBreakdown, 0, len(buckets))
	for k, b := range buckets {
		out = append(out, domain.GeoBreakdown{
			City:         k.city,
			State:        k.state,
			Count:        b.count,
			AverageCents: b.sum / int64(b.count),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].City != out[j].City {
			return out[i].City < out[j].City
		}
		return out[i].State < out[j].State
	})
	if len(out) > topGeoBuckets {
		out = out[:topGeoBuckets]
	}
	return out
}
