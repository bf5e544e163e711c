package domain

import "errors"

// ErrInvalidCoordinates is returned when a latitude/longitude pair falls
// outside the valid WGS 84 ranges.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// ValidateCoordinates rejects out-of-range lat/lon before any distance math
// sees them.
func ValidateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}
