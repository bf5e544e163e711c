package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"
)

// StatsScope selects what set of wage reports a statistics query covers.
type StatsScope string

const (
	ScopeGlobal       StatsScope = "global"
	ScopeLocation     StatsScope = "location"
	ScopeOrganization StatsScope = "organization"
)

// StatsFilters narrows the approved reports included in a statistics query.
// Zero values mean "no constraint".
type StatsFilters struct {
	From           *time.Time `json:"from,omitempty"`
	To             *time.Time `json:"to,omitempty"`
	EmploymentType string     `json:"employment_type,omitempty"`
	JobTitle       string     `json:"job_title,omitempty"`
	Currency       string     `json:"currency,omitempty"`
	MinHourlyCents int64      `json:"min_hourly_cents,omitempty"`
	MaxHourlyCents int64      `json:"max_hourly_cents,omitempty"`
	Unionized      *bool      `json:"unionized,omitempty"`
	TipsIncluded   *bool      `json:"tips_included,omitempty"`
}

// Hash returns a deterministic digest of the filter set for cache keying.
// Fields are serialized in a fixed sorted order so logically equal filters
// always produce the same key.
func (f StatsFilters) Hash() string {
	pairs := make([]string, 0, 9)
	add := func(k, v string) {
		if v != "" {
			pairs = append(pairs, k+"="+v)
		}
	}
	if f.From != nil {
		add("from", f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		add("to", f.To.UTC().Format(time.RFC3339))
	}
	add("employment_type", f.EmploymentType)
	add("job_title", f.JobTitle)
	add("currency", f.Currency)
	if f.MinHourlyCents > 0 {
		add("min", fmt.Sprintf("%d", f.MinHourlyCents))
	}
	if f.MaxHourlyCents > 0 {
		add("max", fmt.Sprintf("%d", f.MaxHourlyCents))
	}
	if f.Unionized != nil {
		add("union", fmt.Sprintf("%t", *f.Unionized))
	}
	if f.TipsIncluded != nil {
		add("tips", fmt.Sprintf("%t", *f.TipsIncluded))
	}
	sort.Strings(pairs)

	h := sha256.New()
	for _, p := range pairs {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// WageObservation is one normalized data point fed to the statistics
// calculator, with the grouping dimensions breakdowns need.
type WageObservation struct {
	HourlyCents    int64  `json:"hourly_cents"`
	EmploymentType string `json:"employment_type"`
	JobTitle       string `json:"job_title"`
	City           string `json:"city"`
	State          string `json:"state"`
}

// Percentiles holds the interpolated wage percentiles in minor units.
type Percentiles struct {
	P25 int64 `json:"p25"`
	P50 int64 `json:"p50"`
	P75 int64 `json:"p75"`
	P90 int64 `json:"p90"`
}

// TypeBreakdown is a per-employment-type aggregate.
type TypeBreakdown struct {
	Type         string `json:"type"`
	Count        int    `json:"count"`
	AverageCents int64  `json:"average_cents"`
}

// TitleBreakdown is a per-job-title aggregate.
type TitleBreakdown struct {
	Title        string `json:"title"`
	Count        int    `json:"count"`
	AverageCents int64  `json:"average_cents"`
}

// GeoBreakdown is a per-(city,state) aggregate; global scope only.
type GeoBreakdown struct {
	City         string `json:"city"`
	State        string `json:"state"`
	Count        int    `json:"count"`
	AverageCents int64  `json:"average_cents"`
}

// WageStatistics is the full aggregate result. All money is in minor units;
// formatting is a presentation concern. An empty scope yields the zero value
// with non-nil empty breakdown slices, never an error.
type WageStatistics struct {
	Count                  int              `json:"count"`
	AverageCents           int64            `json:"average_cents"`
	MedianCents            int64            `json:"median_cents"`
	MinCents               int64            `json:"min_cents"`
	MaxCents               int64            `json:"max_cents"`
	StdDeviationCents      float64          `json:"std_deviation_cents"`
	Percentiles            Percentiles      `json:"percentiles"`
	EmploymentTypes        []TypeBreakdown  `json:"employment_types"`
	JobTitles              []TitleBreakdown `json:"job_titles"`
	GeographicDistribution []GeoBreakdown   `json:"geographic_distribution"`
}

// EmptyWageStatistics is the explicit "no data" result. Breakdowns the scope
// carries serialize as empty arrays, never as absent keys.
func EmptyWageStatistics(includeGeo bool) WageStatistics {
	s := WageStatistics{
		EmploymentTypes: []TypeBreakdown{},
		JobTitles:       []TitleBreakdown{},
	}
	if includeGeo {
		s.GeographicDistribution = []GeoBreakdown{}
	}
	return s
}
