package overpass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/fairwage/fairwage/internal/core/domain"
	"github.com/fairwage/fairwage/internal/pkg/metrics"
)

// Sentinel errors for gateway failure modes. Callers treat them identically
// (degrade to internal results); they exist for logs and metrics.
var (
	ErrTimeout   = errors.New("overpass: request timed out")
	ErrStatus    = errors.New("overpass: non-200 response")
	ErrMalformed = errors.New("overpass: malformed response")
)

// categoryTags maps common search words to OSM tag selectors. A query word
// found here searches by category; anything else falls back to a name match.
var categoryTags = map[string]string{
	"restaurant":  `["amenity"="restaurant"]`,
	"cafe":        `["amenity"="cafe"]`,
	"coffee":      `["amenity"="cafe"]`,
	"bar":         `["amenity"="bar"]`,
	"pub":         `["amenity"="pub"]`,
	"bakery":      `["shop"="bakery"]`,
	"supermarket": `["shop"="supermarket"]`,
	"grocery":     `["shop"="supermarket"]`,
	"retail":      `["shop"]`,
	"shop":        `["shop"]`,
	"store":       `["shop"]`,
	"hotel":       `["tourism"="hotel"]`,
	"pharmacy":    `["amenity"="pharmacy"]`,
	"hospital":    `["amenity"="hospital"]`,
	"gym":         `["leisure"="fitness_centre"]`,
	"bank":        `["amenity"="bank"]`,
}

const maxElements = 50

// Client queries the Overpass API for named places. It implements
// ports.POIProvider.
type Client struct {
	endpoint string
	enabled  bool
	http     *http.Client
}

// New creates an Overpass client. A disabled client never touches the
// network.
func New(endpoint string, enabled bool, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		enabled:  enabled,
		http:     &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether the external integration is configured on.
func (c *Client) Enabled() bool { return c.enabled }

// Search returns named POIs around a point matching the query, either by
// mapped category or by case-insensitive name. Elements without a name or
// resolvable coordinates are dropped rather than failing the batch.
func (c *Client) Search(ctx context.Context, query string, lat, lon, radiusKm float64) ([]domain.OSMLocation, error) {
	if !c.enabled {
		return nil, nil
	}

	metrics.GatewayRequests.Inc()
	start := time.Now()
	defer func() {
		metrics.GatewayDuration.Observe(time.Since(start).Seconds())
	}()

	body, err := c.post(ctx, buildQuery(query, lat, lon, radiusKm))
	if err != nil {
		return nil, err
	}

	var resp overpassResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		metrics.GatewayErrors.WithLabelValues("malformed").Inc()
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	out := make([]domain.OSMLocation, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		poi, ok := el.toLocation()
		if !ok {
			continue
		}
		out = append(out, poi)
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, ql string) ([]byte, error) {
	form := url.Values{"data": {ql}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &uerr) && uerr.Timeout()) {
			metrics.GatewayErrors.WithLabelValues("timeout").Inc()
			return nil, ErrTimeout
		}
		metrics.GatewayErrors.WithLabelValues("network").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.GatewayErrors.WithLabelValues("status").Inc()
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// buildQuery assembles an Overpass QL union over nodes and ways. Ways get
// "out center" so areas resolve to a representative point.
func buildQuery(query string, lat, lon, radiusKm float64) string {
	around := fmt.Sprintf("(around:%.0f,%.6f,%.6f)", radiusKm*1000, lat, lon)

	var selectors []string
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if tag, ok := categoryTags[word]; ok {
			selectors = append(selectors, tag+`["name"]`)
		}
	}
	if len(selectors) == 0 {
		selectors = []string{fmt.Sprintf(`["name"~"%s",i]`, escapeRegex(query))}
	}

	var b strings.Builder
	b.WriteString("[out:json][timeout:10];\n(\n")
	for _, sel := range selectors {
		fmt.Fprintf(&b, "  node%s%s;\n", sel, around)
		fmt.Fprintf(&b, "  way%s%s;\n", sel, around)
	}
	fmt.Fprintf(&b, ");\nout center %d;\n", maxElements)
	return b.String()
}

func escapeRegex(s string) string {
	return strings.ReplaceAll(regexp.QuoteMeta(s), `"`, `\"`)
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *overpassCenter   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// toLocation converts one raw element, reporting false for unusable ones:
// unnamed places, unsupported element types, or geometry we cannot resolve to
// a point.
func (el overpassElement) toLocation() (domain.OSMLocation, bool) {
	name := el.Tags["name"]
	if name == "" {
		return domain.OSMLocation{}, false
	}

	var kind domain.OSMElementKind
	switch el.Type {
	case "node":
		kind = domain.OSMNode
	case "way":
		kind = domain.OSMWay
	default:
		return domain.OSMLocation{}, false
	}

	var lat, lon float64
	switch {
	case el.Lat != nil && el.Lon != nil:
		lat, lon = *el.Lat, *el.Lon
	case el.Center != nil:
		lat, lon = el.Center.Lat, el.Center.Lon
	default:
		return domain.OSMLocation{}, false
	}
	if err := domain.ValidateCoordinates(lat, lon); err != nil {
		return domain.OSMLocation{}, false
	}

	return domain.NewOSMLocation(kind, el.ID, name, lat, lon, el.Tags), true
}
