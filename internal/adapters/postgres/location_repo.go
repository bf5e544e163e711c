package postgres

import (
	"context"
	"fmt"

	"github.com/fairwage/fairwage/internal/core/domain"
	"github.com/fairwage/fairwage/internal/core/ports"
	"github.com/jackc/pgx/v5"
)

// LocationRepo implements ports.LocationRepository with pgx and PostGIS.
type LocationRepo struct {
	db *DB
}

// NewLocationRepo creates a new LocationRepo.
func NewLocationRepo(db *DB) *LocationRepo {
	return &LocationRepo{db: db}
}

const locationColumns = `
	id, organization_id, name,
	COALESCE(address_line, ''), COALESCE(city, ''), COALESCE(state, ''),
	COALESCE(postal_code, ''), COALESCE(country_code, ''),
	ST_Y(position::geometry) as lat,
	ST_X(position::geometry) as lon,
	active, verified, osm_kind, osm_ref, wage_report_count, created_at, updated_at`

// Create inserts a single location.
func (r *LocationRepo) Create(ctx context.Context, l *domain.Location) error {
	var osmKind, osmRef any
	if l.OSMID != nil {
		osmKind, osmRef = string(l.OSMID.Kind), l.OSMID.ID
	}
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO locations (organization_id, name, address_line, city, state, postal_code, country_code,
		                       position, active, verified, osm_kind, osm_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7,
		        ST_SetSRID(ST_MakePoint($8, $9), 4326)::geography, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`, l.OrganizationID, l.Name, l.AddressLine, l.City, l.State, l.PostalCode, l.CountryCode,
		l.Longitude, l.Latitude, l.Active, l.Verified, osmKind, osmRef,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

// UpsertBatch inserts many locations using pgx.Batch, keyed by their OSM
// element when present. Used by the bulk importer.
func (r *LocationRepo) UpsertBatch(ctx context.Context, locs []domain.Location) error {
	batch := &pgx.Batch{}
	for _, l := range locs {
		var osmKind, osmRef any
		if l.OSMID != nil {
			osmKind, osmRef = string(l.OSMID.Kind), l.OSMID.ID
		}
		batch.Queue(`
			INSERT INTO locations (organization_id, name, address_line, city, state, postal_code, country_code,
			                       position, active, verified, osm_kind, osm_ref)
			VALUES ($1, $2, $3, $4, $5, $6, $7,
			        ST_SetSRID(ST_MakePoint($8, $9), 4326)::geography, $10, $11, $12, $13)
			ON CONFLICT (osm_kind, osm_ref) WHERE osm_kind IS NOT NULL DO UPDATE
			SET name = EXCLUDED.name, address_line = EXCLUDED.address_line,
			    city = EXCLUDED.city, state = EXCLUDED.state,
			    postal_code = EXCLUDED.postal_code, country_code = EXCLUDED.country_code,
			    position = EXCLUDED.position, updated_at = now()
		`, l.OrganizationID, l.Name, l.AddressLine, l.City, l.State, l.PostalCode, l.CountryCode,
			l.Longitude, l.Latitude, l.Active, l.Verified, osmKind, osmRef)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range locs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// GetByID returns a location by UUID.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id)
	return scanLocation(row)
}

// ListByOrganization returns the active locations of an organization.
func (r *LocationRepo) ListByOrganization(ctx context.Context, orgID string) ([]domain.Location, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+locationColumns+`
		FROM locations
		WHERE organization_id = $1 AND active
		ORDER BY name
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLocations(rows, false, false)
}

// FindNearby returns active locations within radiusMeters using PostGIS
// ST_DWithin, nearest first.
func (r *LocationRepo) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Location, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+locationColumns+`,
		       ST_Distance(position, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) as distance
		FROM locations
		WHERE active
		  AND ST_DWithin(position, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		ORDER BY distance
		LIMIT $4
	`, lon, lat, radiusMeters, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLocations(rows, true, false)
}

// SearchText performs ranked full-text search on location names and
// addresses. The raw ts_rank is squashed to [0,1) with rank/(rank+1) so the
// relevance formula upstream can treat it as a normalized signal.
// plainto_tsquery ANDs the words of a multi-word query, so every word must
// match.
func (r *LocationRepo) SearchText(ctx context.Context, q ports.LocationQuery) ([]domain.Location, error) {
	args := []any{q.Text}
	where := `active AND search_vector @@ plainto_tsquery('english', $1)`

	if q.Center != nil && q.RadiusKm > 0 {
		args = append(args, q.Center.Lon, q.Center.Lat, q.RadiusKm*1000)
		where += fmt.Sprintf(` AND ST_DWithin(position, ST_SetSRID(ST_MakePoint($%d, $%d), 4326)::geography, $%d)`,
			len(args)-2, len(args)-1, len(args))
	}
	if q.MinReports > 0 {
		args = append(args, q.MinReports)
		where += fmt.Sprintf(` AND wage_report_count >= $%d`, len(args))
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)

	rows, err := r.db.Pool.Query(ctx, fmt.Sprintf(`
		SELECT %s,
		       ts_rank(search_vector, plainto_tsquery('english', $1)) /
		       (ts_rank(search_vector, plainto_tsquery('english', $1)) + 1) as rank
		FROM locations
		WHERE %s
		ORDER BY rank DESC
		LIMIT $%d
	`, locationColumns, where, len(args)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLocations(rows, false, true)
}

func scanLocation(row pgx.Row) (*domain.Location, error) {
	var l domain.Location
	var osmKind *string
	var osmRef *int64
	err := row.Scan(
		&l.ID, &l.OrganizationID, &l.Name,
		&l.AddressLine, &l.City, &l.State, &l.PostalCode, &l.CountryCode,
		&l.Latitude, &l.Longitude,
		&l.Active, &l.Verified, &osmKind, &osmRef, &l.WageReportCount, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	finishLocation(&l, osmKind, osmRef)
	return &l, nil
}

func collectLocations(rows pgx.Rows, withDistance, withRank bool) ([]domain.Location, error) {
	var locs []domain.Location
	for rows.Next() {
		var l domain.Location
		var osmKind *string
		var osmRef *int64
		dest := []any{
			&l.ID, &l.OrganizationID, &l.Name,
			&l.AddressLine, &l.City, &l.State, &l.PostalCode, &l.CountryCode,
			&l.Latitude, &l.Longitude,
			&l.Active, &l.Verified, &osmKind, &osmRef, &l.WageReportCount, &l.CreatedAt, &l.UpdatedAt,
		}
		var dist, rank float64
		if withDistance {
			dest = append(dest, &dist)
		}
		if withRank {
			dest = append(dest, &rank)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if withDistance {
			l.DistanceMeters = &dist
		}
		if withRank {
			l.TextRank = &rank
		}
		finishLocation(&l, osmKind, osmRef)
		locs = append(locs, l)
	}
	return locs, rows.Err()
}

func finishLocation(l *domain.Location, osmKind *string, osmRef *int64) {
	l.Position = domain.GeoPoint{Lat: l.Latitude, Lon: l.Longitude}
	if osmKind != nil && osmRef != nil {
		l.OSMID = &domain.OSMID{Kind: domain.OSMElementKind(*osmKind), ID: *osmRef}
	}
}
