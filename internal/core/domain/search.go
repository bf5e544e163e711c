package domain

import (
	"math"
	"sort"

	"github.com/fairwage/fairwage/internal/pkg/geospatial"
)

// ResultSource tags which store a search result came from.
type ResultSource string

const (
	SourceInternal ResultSource = "internal"
	SourceExternal ResultSource = "external"
)

// SearchResult is the unified row returned by location search, regardless of
// whether it came from the local catalog or the external POI provider. The
// two variants share this structural contract instead of a common base type.
type SearchResult struct {
	Source           ResultSource         `json:"source"`
	LocationID       string               `json:"location_id,omitempty"`
	OSMID            *OSMID               `json:"osm_id,omitempty"`
	Name             string               `json:"name"`
	Latitude         float64              `json:"latitude"`
	Longitude        float64              `json:"longitude"`
	FormattedAddress string               `json:"formatted_address,omitempty"`
	HasWageData      bool                 `json:"has_wage_data"`
	WageReportCount  int                  `json:"wage_report_count"`
	Organization     *OrganizationSummary `json:"organization,omitempty"`

	DistanceMeters *float64 `json:"distance_meters,omitempty"`
	TextRank       *float64 `json:"text_rank,omitempty"`
	RelevanceScore *float64 `json:"relevance_score,omitempty"`
}

// ResultFromLocation converts a catalog location into the unified shape.
func ResultFromLocation(l Location) SearchResult {
	r := SearchResult{
		Source:           SourceInternal,
		LocationID:       l.ID,
		OSMID:            l.OSMID,
		Name:             l.Name,
		Latitude:         l.Latitude,
		Longitude:        l.Longitude,
		FormattedAddress: l.FormattedAddress(),
		HasWageData:      l.WageReportCount > 0,
		WageReportCount:  l.WageReportCount,
		DistanceMeters:   l.DistanceMeters,
		TextRank:         l.TextRank,
	}
	return r
}

// ResultFromOSM converts an external POI into the unified shape.
func ResultFromOSM(o OSMLocation) SearchResult {
	rank := o.TextRank
	return SearchResult{
		Source:           SourceExternal,
		OSMID:            &o.ID,
		Name:             o.Name,
		Latitude:         o.Latitude,
		Longitude:        o.Longitude,
		FormattedAddress: o.FormattedAddress(),
		DistanceMeters:   o.DistanceMeters,
		TextRank:         &rank,
	}
}

// SearchResults supports chainable spatial operations over a merged result
// set. Filtering, annotation, and ordering are independent and compose in
// any combination.
type SearchResults []SearchResult

// Near keeps results within radiusKm great-circle distance of the point.
func (rs SearchResults) Near(lat, lon, radiusKm float64) (SearchResults, error) {
	if err := ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	radiusMeters := radiusKm * 1000
	// Cheap box rejection before the exact great-circle check.
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusMeters)
	out := make(SearchResults, 0, len(rs))
	for _, r := range rs {
		if r.Latitude < minLat || r.Latitude > maxLat ||
			r.Longitude < minLon || r.Longitude > maxLon {
			continue
		}
		if geospatial.WithinRadius(lat, lon, r.Latitude, r.Longitude, radiusMeters) {
			out = append(out, r)
		}
	}
	return out, nil
}

// WithDistance annotates every result with its distance from the point. It
// does not filter.
func (rs SearchResults) WithDistance(lat, lon float64) (SearchResults, error) {
	if err := ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	out := make(SearchResults, len(rs))
	for i, r := range rs {
		d := math.Round(geospatial.Haversine(lat, lon, r.Latitude, r.Longitude))
		r.DistanceMeters = &d
		out[i] = r
	}
	return out, nil
}

// OrderByDistance sorts ascending by great-circle distance from the point.
// The sort is stable so equidistant results keep their merge order.
func (rs SearchResults) OrderByDistance(lat, lon float64) (SearchResults, error) {
	if err := ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	out := make(SearchResults, len(rs))
	copy(out, rs)
	sort.SliceStable(out, func(i, j int) bool {
		di := geospatial.Haversine(lat, lon, out[i].Latitude, out[i].Longitude)
		dj := geospatial.Haversine(lat, lon, out[j].Latitude, out[j].Longitude)
		return di < dj
	})
	return out, nil
}

// OrderByRelevance sorts descending by relevance score, stable.
func (rs SearchResults) OrderByRelevance() SearchResults {
	out := make(SearchResults, len(rs))
	copy(out, rs)
	sort.SliceStable(out, func(i, j int) bool {
		var si, sj float64
		if out[i].RelevanceScore != nil {
			si = *out[i].RelevanceScore
		}
		if out[j].RelevanceScore != nil {
			sj = *out[j].RelevanceScore
		}
		return si > sj
	})
	return out
}
