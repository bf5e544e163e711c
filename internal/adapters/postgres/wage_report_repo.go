package postgres

import (
	"context"
	"fmt"

	"github.com/fairwage/fairwage/internal/core/domain"
	"github.com/fairwage/fairwage/internal/core/ports"
	"github.com/jackc/pgx/v5"
)

// WageReportRepo implements ports.WageReportRepository with pgx.
type WageReportRepo struct {
	db *DB
}

// NewWageReportRepo creates a new WageReportRepo.
func NewWageReportRepo(db *DB) *WageReportRepo {
	return &WageReportRepo{db: db}
}

const reportColumns = `
	id, COALESCE(user_id, ''), organization_id, location_id,
	job_title, COALESCE(employment_type, ''), pay_period, currency,
	amount_cents, hourly_cents, status, sanity_score,
	tips_included, unionized, effective_date, created_at`

// Create inserts a wage report.
func (r *WageReportRepo) Create(ctx context.Context, w *domain.WageReport) error {
	var userID any
	if w.UserID != "" {
		userID = w.UserID
	}
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO wage_reports (user_id, organization_id, location_id, job_title, employment_type,
		                          pay_period, currency, amount_cents, hourly_cents, status,
		                          sanity_score, tips_included, unionized, effective_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at
	`, userID, w.OrganizationID, w.LocationID, w.JobTitle, w.EmploymentType,
		w.PayPeriod, w.Currency, w.AmountCents, w.HourlyCents, w.Status,
		w.SanityScore, w.TipsIncluded, w.Unionized, w.EffectiveDate,
	).Scan(&w.ID, &w.CreatedAt)
}

// GetByID returns a wage report by UUID.
func (r *WageReportRepo) GetByID(ctx context.Context, id string) (*domain.WageReport, error) {
	var w domain.WageReport
	err := r.db.Pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM wage_reports WHERE id = $1`, id).Scan(
		&w.ID, &w.UserID, &w.OrganizationID, &w.LocationID,
		&w.JobTitle, &w.EmploymentType, &w.PayPeriod, &w.Currency,
		&w.AmountCents, &w.HourlyCents, &w.Status, &w.SanityScore,
		&w.TipsIncluded, &w.Unionized, &w.EffectiveDate, &w.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// List returns filtered wage reports newest first, plus the total count
// before pagination.
func (r *WageReportRepo) List(ctx context.Context, f ports.ReportFilters) ([]domain.WageReport, int, error) {
	where := `TRUE`
	var args []any
	add := func(clause string, v any) {
		args = append(args, v)
		where += fmt.Sprintf(" AND "+clause, len(args))
	}
	if f.LocationID != "" {
		add("location_id = $%d", f.LocationID)
	}
	if f.OrganizationID != "" {
		add("organization_id = $%d", f.OrganizationID)
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.EmploymentType != "" {
		add("employment_type = $%d", f.EmploymentType)
	}

	var total int
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM wage_reports WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := r.db.Pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM wage_reports
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, reportColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reports []domain.WageReport
	for rows.Next() {
		var w domain.WageReport
		if err := rows.Scan(
			&w.ID, &w.UserID, &w.OrganizationID, &w.LocationID,
			&w.JobTitle, &w.EmploymentType, &w.PayPeriod, &w.Currency,
			&w.AmountCents, &w.HourlyCents, &w.Status, &w.SanityScore,
			&w.TipsIncluded, &w.Unionized, &w.EffectiveDate, &w.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		reports = append(reports, w)
	}
	return reports, total, rows.Err()
}

// UpdateStatus flips the moderation status and keeps the location's approved
// report counter in sync, in one transaction.
func (r *WageReportRepo) UpdateStatus(ctx context.Context, id string, status domain.ReportStatus) error {
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		var locationID string
		if err := tx.QueryRow(ctx, `
			UPDATE wage_reports SET status = $2 WHERE id = $1
			RETURNING location_id
		`, id, status).Scan(&locationID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			UPDATE locations SET wage_report_count = (
				SELECT count(*) FROM wage_reports
				WHERE location_id = $1 AND status = 'approved'
			), updated_at = now()
			WHERE id = $1
		`, locationID)
		return err
	})
}

// ApprovedHourlyCents returns the approved normalized hourly rates at a
// location.
func (r *WageReportRepo) ApprovedHourlyCents(ctx context.Context, locationID string) ([]int64, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT hourly_cents FROM wage_reports
		WHERE location_id = $1 AND status = 'approved'
	`, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cents []int64
	for rows.Next() {
		var c int64
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cents = append(cents, c)
	}
	return cents, rows.Err()
}

// Observations returns the approved observations for a statistics scope,
// joined with the location for the geographic dimensions.
func (r *WageReportRepo) Observations(ctx context.Context, scope domain.StatsScope, scopeID string, f domain.StatsFilters) ([]domain.WageObservation, error) {
	where := `w.status = 'approved'`
	var args []any
	add := func(clause string, v any) {
		args = append(args, v)
		where += fmt.Sprintf(" AND "+clause, len(args))
	}

	switch scope {
	case domain.ScopeLocation:
		add("w.location_id = $%d", scopeID)
	case domain.ScopeOrganization:
		add("w.organization_id = $%d", scopeID)
	}

	if f.From != nil {
		add("w.effective_date >= $%d", *f.From)
	}
	if f.To != nil {
		add("w.effective_date <= $%d", *f.To)
	}
	if f.EmploymentType != "" {
		add("w.employment_type = $%d", f.EmploymentType)
	}
	if f.JobTitle != "" {
		add("w.job_title ILIKE $%d", f.JobTitle)
	}
	if f.Currency != "" {
		add("w.currency = $%d", f.Currency)
	}
	if f.MinHourlyCents > 0 {
		add("w.hourly_cents >= $%d", f.MinHourlyCents)
	}
	if f.MaxHourlyCents > 0 {
		add("w.hourly_cents <= $%d", f.MaxHourlyCents)
	}
	if f.Unionized != nil {
		add("w.unionized = $%d", *f.Unionized)
	}
	if f.TipsIncluded != nil {
		add("w.tips_included = $%d", *f.TipsIncluded)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT w.hourly_cents, COALESCE(w.employment_type, ''), w.job_title,
		       COALESCE(l.city, ''), COALESCE(l.state, '')
		FROM wage_reports w
		JOIN locations l ON l.id = w.location_id
		WHERE `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var obs []domain.WageObservation
	for rows.Next() {
		var o domain.WageObservation
		if err := rows.Scan(&o.HourlyCents, &o.EmploymentType, &o.JobTitle, &o.City, &o.State); err != nil {
			return nil, err
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}
