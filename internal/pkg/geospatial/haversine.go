package geospatial

import "math"

const earthRadiusKm = 6371.0

// Meters per degree of latitude on the same sphere Haversine uses. Keeping
// the two derived from one radius means the box can never undercut the
// exact distance check.
const metersPerDegree = earthRadiusKm * 1000 * math.Pi / 180

// Haversine calculates the great-circle distance in meters between two
// points. A planar approximation is deliberately avoided: it misorders
// results at higher latitudes, which matters for cross-region queries.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// WithinRadius reports whether two points are within radiusMeters of each
// other.
func WithinRadius(lat1, lon1, lat2, lon2, radiusMeters float64) bool {
	return Haversine(lat1, lon1, lat2, lon2) <= radiusMeters
}

// BoundingBox returns a box around a point with the given radius in meters.
// Used as a cheap pre-filter before exact distance checks.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / metersPerDegree
	lonDelta := radiusMeters / (metersPerDegree * math.Cos(toRad(lat)))

	return lat - latDelta, lon - lonDelta, lat + latDelta, lon + lonDelta
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
