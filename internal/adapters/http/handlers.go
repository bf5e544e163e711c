package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fairwage/fairwage/internal/core/domain"
	"github.com/fairwage/fairwage/internal/core/ports"
	"github.com/fairwage/fairwage/internal/core/usecases"
)

// CoverageStats holds row counts across the wage data tables.
type CoverageStats struct {
	Organizations int    `json:"organizations"`
	Locations     int    `json:"locations"`
	WageReports   int    `json:"wage_reports"`
	Approved      int    `json:"approved_reports"`
	LastReport    string `json:"last_report,omitempty"`
}

// CoverageHandler returns row counts from the wage tables.
func CoverageHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats CoverageStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM organizations),
				(SELECT count(*) FROM locations),
				(SELECT count(*) FROM wage_reports),
				(SELECT count(*) FROM wage_reports WHERE status = 'approved'),
				COALESCE((SELECT max(created_at)::text FROM wage_reports), '')
		`)
		if err := row.Scan(&stats.Organizations, &stats.Locations,
			&stats.WageReports, &stats.Approved, &stats.LastReport); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}

// SearchLocationsHandler runs the unified internal + OpenStreetMap search.
func SearchLocationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}

		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}

		params := usecases.SearchParams{
			Query:      query,
			Lat:        lat,
			Lon:        lon,
			RadiusKm:   c.QueryFloat("radius_km", 0),
			IncludeOSM: c.QueryBool("include_osm", true),
			MinReports: c.QueryInt("min_reports", 0),
			Limit:      c.QueryInt("limit", 0),
		}

		results, err := deps.Search.Search(c.Context(), params)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCoordinates) {
				return errBadRequest(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		return c.JSON(fiber.Map{
			"results": results,
			"count":   len(results),
		})
	}
}

// NearbyLocationsHandler returns catalog locations within a radius of a point.
func NearbyLocationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 1000)
		limit := c.QueryInt("limit", 50)

		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		if radius <= 0 || radius > 50000 {
			return errBadRequest(c, "radius must be between 1 and 50000 meters")
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		locs, err := deps.Locations.FindNearby(c.Context(), lat, lon, radius, limit)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCoordinates) {
				return errBadRequest(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(locs)
	}
}

// GetLocationHandler returns a single location by ID.
func GetLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "location id is required")
		}
		loc, err := deps.Locations.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "location not found")
		}
		return c.JSON(loc)
	}
}

// createLocationRequest is the POST /v1/locations body.
type createLocationRequest struct {
	OrganizationID string  `json:"organization_id"`
	Name           string  `json:"name"`
	AddressLine    string  `json:"address_line"`
	City           string  `json:"city"`
	State          string  `json:"state"`
	PostalCode     string  `json:"postal_code"`
	CountryCode    string  `json:"country_code"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
}

// CreateLocationHandler registers a new business location.
func CreateLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createLocationRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		loc, err := deps.Locations.Create(c.Context(), usecases.CreateLocationInput{
			OrganizationID: req.OrganizationID,
			Name:           req.Name,
			AddressLine:    req.AddressLine,
			City:           req.City,
			State:          req.State,
			PostalCode:     req.PostalCode,
			CountryCode:    req.CountryCode,
			Latitude:       req.Latitude,
			Longitude:      req.Longitude,
		})
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCoordinates) {
				return errBadRequest(c, err.Error())
			}
			return errBadRequest(c, err.Error())
		}
		return c.Status(201).JSON(loc)
	}
}

// LocationReportsHandler lists the wage reports at a location.
func LocationReportsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "location id is required")
		}

		f := reportFiltersFromQuery(c)
		f.LocationID = id
		// Public view exposes approved data only unless asked otherwise.
		if f.Status == "" {
			f.Status = domain.StatusApproved
		}

		reports, total, err := deps.Reports.List(c.Context(), f)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: f.Offset, Limit: f.Limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: reports, Pagination: pg})
	}
}

// LocationStatisticsHandler returns wage statistics for a single location.
func LocationStatisticsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "location id is required")
		}
		return writeStatistics(c, deps, domain.ScopeLocation, id)
	}
}

// ListOrganizationsHandler returns all organizations, paginated.
func ListOrganizationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orgs, err := deps.Organizations.List(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}

		// Apply offset/limit pagination on the full list
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(orgs)
		if offset >= total {
			orgs = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			orgs = orgs[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: orgs, Pagination: pg})
	}
}

// GetOrganizationHandler returns a single organization by slug.
func GetOrganizationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := c.Params("slug")
		if slug == "" {
			return errBadRequest(c, "organization slug is required")
		}
		org, err := deps.Organizations.GetBySlug(c.Context(), slug)
		if err != nil {
			return errNotFound(c, "organization not found")
		}
		return c.JSON(org)
	}
}

// OrganizationLocationsHandler returns the locations of an organization.
func OrganizationLocationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := c.Params("slug")
		if slug == "" {
			return errBadRequest(c, "organization slug is required")
		}

		// Resolve slug -> organization ID
		org, err := deps.Organizations.GetBySlug(c.Context(), slug)
		if err != nil {
			return errNotFound(c, "organization not found")
		}

		locs, err := deps.Locations.ListByOrganization(c.Context(), org.ID)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(locs)
	}
}

// OrganizationStatisticsHandler returns wage statistics across an
// organization's locations. The slug is resolved to an ID first.
func OrganizationStatisticsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := c.Params("slug")
		if slug == "" {
			return errBadRequest(c, "organization slug is required")
		}
		org, err := deps.Organizations.GetBySlug(c.Context(), slug)
		if err != nil {
			return errNotFound(c, "organization not found")
		}
		return writeStatistics(c, deps, domain.ScopeOrganization, org.ID)
	}
}

// GlobalStatisticsHandler returns wage statistics across all data.
func GlobalStatisticsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return writeStatistics(c, deps, domain.ScopeGlobal, "")
	}
}

// writeStatistics is the shared statistics endpoint body once the scope is
// resolved.
func writeStatistics(c *fiber.Ctx, deps *Dependencies, scope domain.StatsScope, scopeID string) error {
	filters, ferr := statsFiltersFromQuery(c)
	if ferr != "" {
		return errBadRequest(c, ferr)
	}

	stats, err := deps.Stats.Compute(c.Context(), scope, scopeID, filters)
	if err != nil {
		return errInternal(c, err.Error())
	}

	c.Set("Cache-Control", "public, max-age=300")
	return c.JSON(stats)
}

// statsFiltersFromQuery parses the optional statistics filters. The second
// return value is a non-empty message on a malformed filter.
func statsFiltersFromQuery(c *fiber.Ctx) (domain.StatsFilters, string) {
	var f domain.StatsFilters
	f.EmploymentType = c.Query("employment_type")
	f.JobTitle = c.Query("job_title")
	f.Currency = c.Query("currency")
	f.MinHourlyCents = int64(c.QueryInt("min_hourly_cents", 0))
	f.MaxHourlyCents = int64(c.QueryInt("max_hourly_cents", 0))

	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, "from must be RFC3339"
		}
		f.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, "to must be RFC3339"
		}
		f.To = &t
	}
	if raw := c.Query("unionized"); raw != "" {
		v := c.QueryBool("unionized")
		f.Unionized = &v
	}
	if raw := c.Query("tips_included"); raw != "" {
		v := c.QueryBool("tips_included")
		f.TipsIncluded = &v
	}
	return f, ""
}

// submitReportRequest is the POST /v1/wage-reports body.
type submitReportRequest struct {
	UserID         string  `json:"user_id"`
	LocationID     string  `json:"location_id"`
	JobTitle       string  `json:"job_title"`
	EmploymentType string  `json:"employment_type"`
	PayPeriod      string  `json:"pay_period"`
	Currency       string  `json:"currency"`
	AmountCents    int64   `json:"amount_cents"`
	HoursPerWeek   float64 `json:"hours_per_week"`
	ShiftHours     float64 `json:"shift_hours"`
	TipsIncluded   bool    `json:"tips_included"`
	Unionized      bool    `json:"unionized"`
	EffectiveDate  string  `json:"effective_date"`
}

// SubmitReportHandler accepts a new wage report. Normalization failures map
// to 422 with a machine-readable code so clients can distinguish an unknown
// pay period from an implausible amount.
func SubmitReportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req submitReportRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		var effective time.Time
		if req.EffectiveDate != "" {
			t, err := time.Parse("2006-01-02", req.EffectiveDate)
			if err != nil {
				return errBadRequest(c, "effective_date must be YYYY-MM-DD")
			}
			effective = t
		}

		report, err := deps.Reports.Submit(c.Context(), usecases.SubmitReportInput{
			UserID:         req.UserID,
			LocationID:     req.LocationID,
			JobTitle:       req.JobTitle,
			EmploymentType: req.EmploymentType,
			PayPeriod:      domain.PayPeriod(req.PayPeriod),
			Currency:       req.Currency,
			AmountCents:    req.AmountCents,
			HoursPerWeek:   req.HoursPerWeek,
			ShiftHours:     req.ShiftHours,
			TipsIncluded:   req.TipsIncluded,
			Unionized:      req.Unionized,
			EffectiveDate:  effective,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidPeriod):
				return errUnprocessable(c, "invalid_period", err.Error())
			case errors.Is(err, domain.ErrOutOfRange):
				return errUnprocessable(c, "out_of_range", err.Error())
			default:
				return errBadRequest(c, err.Error())
			}
		}
		return c.Status(201).JSON(report)
	}
}

// ListReportsHandler lists wage reports with filters, for moderation views.
func ListReportsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := reportFiltersFromQuery(c)

		reports, total, err := deps.Reports.List(c.Context(), f)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: f.Offset, Limit: f.Limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: reports, Pagination: pg})
	}
}

// GetReportHandler returns a single wage report by ID.
func GetReportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "report id is required")
		}
		report, err := deps.Reports.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "wage report not found")
		}
		return c.JSON(report)
	}
}

// ModerateReportHandler builds the approve/reject/flag transition endpoints.
func ModerateReportHandler(deps *Dependencies, to domain.ReportStatus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "report id is required")
		}
		report, err := deps.Reports.Transition(c.Context(), id, to)
		if err != nil {
			// An illegal transition is a conflict with current state, not a
			// malformed request.
			return errConflict(c, err.Error())
		}
		return c.JSON(report)
	}
}

func reportFiltersFromQuery(c *fiber.Ctx) ports.ReportFilters {
	f := ports.ReportFilters{
		LocationID:     c.Query("location_id"),
		OrganizationID: c.Query("organization_id"),
		Status:         domain.ReportStatus(c.Query("status")),
		EmploymentType: c.Query("employment_type"),
		Offset:         c.QueryInt("offset", 0),
		Limit:          c.QueryInt("limit", 50),
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	return f
}
