package domain

import (
	"time"
)

// Organization represents an employer (e.g. a restaurant chain, a retailer).
type Organization struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Website   string    `json:"website,omitempty"`
	Industry  string    `json:"industry,omitempty"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

// OrganizationSummary is the embedded organization view on search results.
type OrganizationSummary struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
}

// Location represents a physical business location wage reports attach to.
//
// Position is the authoritative spatial representation and is re-derived from
// Latitude/Longitude on every coordinate mutation; use SetCoordinates rather
// than assigning the fields directly.
type Location struct {
	ID              string    `json:"id"`
	OrganizationID  string    `json:"organization_id"`
	Name            string    `json:"name"`
	AddressLine     string    `json:"address_line,omitempty"`
	City            string    `json:"city,omitempty"`
	State           string    `json:"state,omitempty"`
	PostalCode      string    `json:"postal_code,omitempty"`
	CountryCode     string    `json:"country_code,omitempty"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	Position        GeoPoint  `json:"-"`
	Active          bool      `json:"active"`
	Verified        bool      `json:"verified"`
	OSMID           *OSMID    `json:"osm_id,omitempty"`
	WageReportCount int       `json:"wage_report_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Query-scoped, never persisted.
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
	TextRank       *float64 `json:"text_rank,omitempty"`
}

// SetCoordinates validates lat/lon and updates both the decimal fields and
// the derived spatial position as a single step.
func (l *Location) SetCoordinates(lat, lon float64) error {
	if err := ValidateCoordinates(lat, lon); err != nil {
		return err
	}
	l.Latitude = lat
	l.Longitude = lon
	l.Position = GeoPoint{Lat: lat, Lon: lon}
	return nil
}

// FormattedAddress joins the address parts that are present.
func (l *Location) FormattedAddress() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{l.AddressLine, l.City, l.State, l.PostalCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

// ReportStatus is the moderation state of a wage report.
type ReportStatus string

const (
	StatusPending  ReportStatus = "pending"
	StatusApproved ReportStatus = "approved"
	StatusRejected ReportStatus = "rejected"
	StatusFlagged  ReportStatus = "flagged"
)

// ValidTransition reports whether a moderation transition is allowed.
// Reports only ever move out of pending or flagged; approved/rejected are
// terminal except for flagging an approved report for re-review.
func (s ReportStatus) ValidTransition(to ReportStatus) bool {
	switch s {
	case StatusPending, StatusFlagged:
		return to == StatusApproved || to == StatusRejected || to == StatusFlagged
	case StatusApproved:
		return to == StatusFlagged
	default:
		return false
	}
}

// WageReport is a single submitted wage observation.
//
// HourlyCents is derived once at submission via NormalizeToHourly and is
// immutable afterwards; statistics and search read it as-is.
type WageReport struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id,omitempty"`
	OrganizationID string       `json:"organization_id"`
	LocationID     string       `json:"location_id"`
	JobTitle       string       `json:"job_title"`
	EmploymentType string       `json:"employment_type"`
	PayPeriod      PayPeriod    `json:"pay_period"`
	Currency       string       `json:"currency"`
	AmountCents    int64        `json:"amount_cents"`
	HourlyCents    int64        `json:"hourly_cents"`
	Status         ReportStatus `json:"status"`
	SanityScore    int          `json:"sanity_score"`
	TipsIncluded   bool         `json:"tips_included"`
	Unionized      bool         `json:"unionized"`
	EffectiveDate  time.Time    `json:"effective_date"`
	CreatedAt      time.Time    `json:"created_at"`
}
