package domain_test

import (
	"errors"
	"testing"

	"github.com/fairwage/fairwage/internal/core/domain"
)

// Three points at strictly increasing distance from the Bilbao city center.
func testResults() domain.SearchResults {
	return domain.SearchResults{
		{Name: "far", Latitude: 43.40, Longitude: -2.80},
		{Name: "near", Latitude: 43.264, Longitude: -2.935},
		{Name: "mid", Latitude: 43.30, Longitude: -2.90},
	}
}

func TestSearchResults_OrderByDistance(t *testing.T) {
	ordered, err := testResults().OrderByDistance(43.263, -2.935)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"near", "mid", "far"}
	for i, name := range want {
		if ordered[i].Name != name {
			t.Errorf("position %d: got %s, want %s", i, ordered[i].Name, name)
		}
	}
}

func TestSearchResults_NearFiltersbyRadius(t *testing.T) {
	// "near" is ~100m away, "mid" ~5km, "far" ~18km.
	within, err := testResults().Near(43.263, -2.935, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(within) != 2 {
		t.Fatalf("expected 2 results within 6km, got %d", len(within))
	}
	for _, r := range within {
		if r.Name == "far" {
			t.Error("far result should be excluded")
		}
	}
}

func TestSearchResults_WithDistanceAnnotatesAll(t *testing.T) {
	annotated, err := testResults().WithDistance(43.263, -2.935)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(annotated) != 3 {
		t.Fatalf("annotation must not filter: got %d rows", len(annotated))
	}
	for _, r := range annotated {
		if r.DistanceMeters == nil {
			t.Errorf("%s: missing distance annotation", r.Name)
		}
	}
}

func TestSearchResults_InvalidCoordinatesRejected(t *testing.T) {
	if _, err := testResults().Near(91, 0, 5); !errors.Is(err, domain.ErrInvalidCoordinates) {
		t.Errorf("lat 91: want ErrInvalidCoordinates, got %v", err)
	}
	if _, err := testResults().WithDistance(0, -181); !errors.Is(err, domain.ErrInvalidCoordinates) {
		t.Errorf("lon -181: want ErrInvalidCoordinates, got %v", err)
	}
}

func TestResultFromLocation_CarriesOSMLink(t *testing.T) {
	loc := domain.Location{ID: "loc-1", Name: "Cafe Iruna", WageReportCount: 3}
	if err := loc.SetCoordinates(43.263, -2.935); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loc.OSMID = &domain.OSMID{Kind: domain.OSMNode, ID: 42}

	r := domain.ResultFromLocation(loc)
	if r.Source != domain.SourceInternal {
		t.Errorf("source: got %s, want internal", r.Source)
	}
	// The OSM link must survive conversion so merged search can dedup an
	// external element already claimed by a catalog row.
	if r.OSMID == nil || r.OSMID.Kind != domain.OSMNode || r.OSMID.ID != 42 {
		t.Errorf("OSM id not carried over: %+v", r.OSMID)
	}
	if !r.HasWageData || r.WageReportCount != 3 {
		t.Error("wage report count not carried over")
	}
}

func TestSetCoordinates_SyncsPosition(t *testing.T) {
	loc := domain.Location{}
	if err := loc.SetCoordinates(43.263, -2.935); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Position.Lat != loc.Latitude || loc.Position.Lon != loc.Longitude {
		t.Error("derived position out of sync with decimal coordinates")
	}

	if err := loc.SetCoordinates(120, 0); !errors.Is(err, domain.ErrInvalidCoordinates) {
		t.Fatalf("want ErrInvalidCoordinates, got %v", err)
	}
	// Failed mutation must leave the previous coordinates intact.
	if loc.Latitude != 43.263 {
		t.Error("failed SetCoordinates mutated latitude")
	}
}

func TestReportStatus_Transitions(t *testing.T) {
	if !domain.StatusPending.ValidTransition(domain.StatusApproved) {
		t.Error("pending -> approved should be allowed")
	}
	if domain.StatusRejected.ValidTransition(domain.StatusApproved) {
		t.Error("rejected is terminal")
	}
	if !domain.StatusApproved.ValidTransition(domain.StatusFlagged) {
		t.Error("approved -> flagged should be allowed for re-review")
	}
}
