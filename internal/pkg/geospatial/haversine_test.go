package geospatial_test

import (
	"math"
	"testing"

	"github.com/fairwage/fairwage/internal/pkg/geospatial"
)

func TestHaversine_KnownDistance(t *testing.T) {
	// Bilbao Abando to Moyua is roughly 400m.
	d := geospatial.Haversine(43.2610, -2.9266, 43.2627, -2.9312)
	if d < 300 || d > 500 {
		t.Errorf("got %v m, expected roughly 400m", d)
	}
}

func TestHaversine_ZeroForSamePoint(t *testing.T) {
	if d := geospatial.Haversine(43.263, -2.935, 43.263, -2.935); d != 0 {
		t.Errorf("got %v, want 0", d)
	}
}

func TestHaversine_MonotoneWithTrueDistance(t *testing.T) {
	refLat, refLon := 43.263, -2.935
	near := geospatial.Haversine(refLat, refLon, 43.264, -2.934)
	mid := geospatial.Haversine(refLat, refLon, 43.30, -2.90)
	far := geospatial.Haversine(refLat, refLon, 43.40, -2.80)

	if !(near < mid && mid < far) {
		t.Errorf("distances not monotone: near=%v mid=%v far=%v", near, mid, far)
	}
}

func TestWithinRadius(t *testing.T) {
	if !geospatial.WithinRadius(43.263, -2.935, 43.264, -2.934, 500) {
		t.Error("adjacent points should be within 500m")
	}
	if geospatial.WithinRadius(43.263, -2.935, 43.40, -2.80, 500) {
		t.Error("distant points should not be within 500m")
	}
}

func TestBoundingBox_ContainsRadius(t *testing.T) {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(43.263, -2.935, 1000)
	if minLat >= 43.263 || maxLat <= 43.263 || minLon >= -2.935 || maxLon <= -2.935 {
		t.Fatal("box must surround the center")
	}
	// The box must be at least as wide as the radius in each direction.
	if d := geospatial.Haversine(43.263, -2.935, maxLat, -2.935); d < 1000-1 {
		t.Errorf("north edge only %v m away", d)
	}
	if d := geospatial.Haversine(43.263, -2.935, 43.263, maxLon); math.Abs(d-1000) > 50 {
		t.Errorf("east edge %v m away, want ~1000", d)
	}
}
