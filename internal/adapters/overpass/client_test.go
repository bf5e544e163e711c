package overpass

import (
	"context"
	"testing"
	"time"

	"github.com/fairwage/fairwage/internal/core/domain"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEndpoint = "https://overpass.test/api/interpreter"

func newTestClient(t *testing.T, enabled bool) *Client {
	t.Helper()
	c := New(testEndpoint, enabled, 5*time.Second)
	httpmock.ActivateNonDefault(c.http)
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestSearchDisabledMakesNoRequest(t *testing.T) {
	c := newTestClient(t, false)

	pois, err := c.Search(context.Background(), "cafe", 43.263, -2.935, 5)
	require.NoError(t, err)
	assert.Empty(t, pois)
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestSearchParsesNodesAndWays(t *testing.T) {
	c := newTestClient(t, true)
	httpmock.RegisterResponder("POST", testEndpoint,
		httpmock.NewStringResponder(200, `{
			"elements": [
				{"type": "node", "id": 101, "lat": 43.2630, "lon": -2.9350,
				 "tags": {"name": "Cafe Iruna", "amenity": "cafe", "addr:street": "Jardines de Albia", "addr:city": "Bilbao"}},
				{"type": "way", "id": 202, "center": {"lat": 43.2601, "lon": -2.9470},
				 "tags": {"name": "Mercado de la Ribera", "shop": "mall"}},
				{"type": "node", "id": 303, "lat": 43.2640, "lon": -2.9340,
				 "tags": {"amenity": "cafe"}},
				{"type": "node", "id": 404,
				 "tags": {"name": "No Coordinates Cafe"}},
				{"type": "node", "id": 505, "lat": 95.0, "lon": -2.9340,
				 "tags": {"name": "Impossible Latitude"}},
				{"type": "relation", "id": 606,
				 "tags": {"name": "Casco Viejo"}}
			]
		}`))

	pois, err := c.Search(context.Background(), "cafe", 43.263, -2.935, 5)
	require.NoError(t, err)

	// The unnamed node, the node without coordinates, the out-of-range
	// latitude, and the relation are all dropped.
	require.Len(t, pois, 2)

	node := pois[0]
	assert.Equal(t, domain.OSMID{Kind: domain.OSMNode, ID: 101}, node.ID)
	assert.Equal(t, "Cafe Iruna", node.Name)
	assert.Equal(t, "Jardines de Albia, Bilbao", node.FormattedAddress())
	assert.InDelta(t, 43.2630, node.Latitude, 1e-9)

	way := pois[1]
	assert.Equal(t, domain.OSMID{Kind: domain.OSMWay, ID: 202}, way.ID)
	assert.InDelta(t, 43.2601, way.Latitude, 1e-9)
	assert.InDelta(t, -2.9470, way.Longitude, 1e-9)
}

func TestSearchStatusError(t *testing.T) {
	c := newTestClient(t, true)
	httpmock.RegisterResponder("POST", testEndpoint,
		httpmock.NewStringResponder(504, "gateway timeout"))

	_, err := c.Search(context.Background(), "cafe", 43.263, -2.935, 5)
	require.ErrorIs(t, err, ErrStatus)
}

func TestSearchTimeout(t *testing.T) {
	c := newTestClient(t, true)
	httpmock.RegisterResponder("POST", testEndpoint,
		httpmock.NewErrorResponder(context.DeadlineExceeded))

	_, err := c.Search(context.Background(), "cafe", 43.263, -2.935, 5)
	require.ErrorIs(t, err, ErrTimeout)
}

func TestSearchMalformedBody(t *testing.T) {
	c := newTestClient(t, true)
	httpmock.RegisterResponder("POST", testEndpoint,
		httpmock.NewStringResponder(200, `<html>rate limited</html>`))

	_, err := c.Search(context.Background(), "cafe", 43.263, -2.935, 5)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestBuildQueryCategoryAndFallback(t *testing.T) {
	byCategory := buildQuery("restaurant", 43.263, -2.935, 5)
	assert.Contains(t, byCategory, `node["amenity"="restaurant"]["name"](around:5000,43.263000,-2.935000);`)
	assert.Contains(t, byCategory, `way["amenity"="restaurant"]["name"](around:5000,43.263000,-2.935000);`)
	assert.Contains(t, byCategory, "out center 50;")

	byName := buildQuery("Iruna Taberna", 43.263, -2.935, 5)
	assert.Contains(t, byName, `["name"~"Iruna Taberna",i]`)

	// Regex metacharacters in the query must not leak into the selector.
	escaped := buildQuery("Taberna (Plaza)", 43.263, -2.935, 5)
	assert.Contains(t, escaped, `\(Plaza\)`)
}

func TestBuildQueryMixedWordsPreferCategories(t *testing.T) {
	q := buildQuery("coffee shop", 43.263, -2.935, 10)
	assert.Contains(t, q, `["amenity"="cafe"]["name"]`)
	assert.Contains(t, q, `["shop"]["name"]`)
	assert.NotContains(t, q, `~`)
}
