package domain

import "fmt"

// OSMElementKind is the OpenStreetMap element type an external POI came from.
type OSMElementKind string

const (
	OSMNode OSMElementKind = "node"
	OSMWay  OSMElementKind = "way"
)

// OSMID identifies an OpenStreetMap element. Numeric ids are only unique per
// element kind, so the kind is part of the identity.
type OSMID struct {
	Kind OSMElementKind `json:"kind"`
	ID   int64          `json:"id"`
}

func (id OSMID) String() string {
	return fmt.Sprintf("%s/%d", id.Kind, id.ID)
}

// neutralTextRank is assumed for external results; the provider gives no
// ranking signal.
const neutralTextRank = 0.5

// OSMLocation is an immutable point-of-interest fetched from the external
// geodata provider. It is constructed per search call and never persisted.
type OSMLocation struct {
	ID        OSMID             `json:"id"`
	Name      string            `json:"name"`
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	Tags      map[string]string `json:"tags,omitempty"`

	DistanceMeters *float64 `json:"distance_meters,omitempty"`
	TextRank       float64  `json:"text_rank"`
}

// NewOSMLocation builds a POI value with the neutral text rank applied.
func NewOSMLocation(kind OSMElementKind, id int64, name string, lat, lon float64, tags map[string]string) OSMLocation {
	return OSMLocation{
		ID:        OSMID{Kind: kind, ID: id},
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
		Tags:      tags,
		TextRank:  neutralTextRank,
	}
}

// FormattedAddress assembles a best-effort address from OSM addr:* tags.
func (o OSMLocation) FormattedAddress() string {
	street := o.Tags["addr:street"]
	if n := o.Tags["addr:housenumber"]; n != "" && street != "" {
		street = street + " " + n
	}
	city := o.Tags["addr:city"]
	switch {
	case street != "" && city != "":
		return street + ", " + city
	case street != "":
		return street
	default:
		return city
	}
}
