package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/fairwage/fairwage/internal/core/domain"
	"github.com/fairwage/fairwage/internal/core/ports"
	"github.com/fairwage/fairwage/internal/pkg/metrics"
	"github.com/fairwage/fairwage/internal/pkg/stats"
)

// SubmitReportInput is a raw wage report submission before normalization.
type SubmitReportInput struct {
	UserID         string
	LocationID     string
	JobTitle       string
	EmploymentType string
	PayPeriod      domain.PayPeriod
	Currency       string
	AmountCents    int64
	HoursPerWeek   float64
	ShiftHours     float64
	TipsIncluded   bool
	Unionized      bool
	EffectiveDate  time.Time
}

// ReportService handles wage report submission and moderation transitions.
type ReportService struct {
	reports   ports.WageReportRepository
	locations ports.LocationRepository
	statsSvc  *StatsService
	events    ports.EventPublisher
	bounds    domain.WageBounds
}

// NewReportService creates a ReportService. events may be nil (broker down);
// publishing is best-effort either way.
func NewReportService(reports ports.WageReportRepository, locations ports.LocationRepository, statsSvc *StatsService, events ports.EventPublisher, bounds domain.WageBounds) *ReportService {
	if bounds.MinHourlyCents == 0 && bounds.MaxHourlyCents == 0 {
		bounds = domain.DefaultWageBounds
	}
	return &ReportService{
		reports:   reports,
		locations: locations,
		statsSvc:  statsSvc,
		events:    events,
		bounds:    bounds,
	}
}

// Submit normalizes and stores a new wage report in pending status. The
// normalized hourly rate is computed exactly once, here; it is never
// recomputed downstream. Normalization failures propagate unwrapped so the
// boundary can map ErrInvalidPeriod/ErrOutOfRange to rejection reasons.
func (s *ReportService) Submit(ctx context.Context, in SubmitReportInput) (*domain.WageReport, error) {
	if in.LocationID == "" {
		return nil, fmt.Errorf("location id is required")
	}
	if in.JobTitle == "" {
		return nil, fmt.Errorf("job title is required")
	}

	loc, err := s.locations.GetByID(ctx, in.LocationID)
	if err != nil {
		return nil, fmt.Errorf("location lookup: %w", err)
	}

	hourly, err := domain.NormalizeToHourly(in.AmountCents, in.PayPeriod, in.HoursPerWeek, in.ShiftHours, s.bounds)
	if err != nil {
		metrics.ReportsRejected.WithLabelValues(rejectionReason(err)).Inc()
		return nil, err
	}

	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}
	effective := in.EffectiveDate
	if effective.IsZero() {
		effective = time.Now().UTC()
	}

	report := &domain.WageReport{
		UserID:         in.UserID,
		OrganizationID: loc.OrganizationID,
		LocationID:     loc.ID,
		JobTitle:       in.JobTitle,
		EmploymentType: in.EmploymentType,
		PayPeriod:      in.PayPeriod,
		Currency:       currency,
		AmountCents:    in.AmountCents,
		HourlyCents:    hourly,
		Status:         domain.StatusPending,
		SanityScore:    s.sanityScore(ctx, loc.ID, hourly),
		TipsIncluded:   in.TipsIncluded,
		Unionized:      in.Unionized,
		EffectiveDate:  effective,
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	metrics.ReportsSubmitted.Inc()

	if s.events != nil {
		if err := s.events.PublishReportSubmitted(ctx, report); err != nil {
			slog.WarnContext(ctx, "publish submitted event failed", "report_id", report.ID, "error", err)
		}
	}
	return report, nil
}

// Transition applies a moderation status change and invalidates the affected
// statistics scopes. Approved reports additionally fan out an event for live
// consumers.
func (s *ReportService) Transition(ctx context.Context, id string, to domain.ReportStatus) (*domain.WageReport, error) {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("report lookup: %w", err)
	}
	if !report.Status.ValidTransition(to) {
		return nil, fmt.Errorf("cannot transition report from %s to %s", report.Status, to)
	}

	if err := s.reports.UpdateStatus(ctx, id, to); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	report.Status = to
	metrics.ReportsModerated.WithLabelValues(string(to)).Inc()

	if s.statsSvc != nil {
		// Stale entries are tolerated up to the TTL; this just shortens the
		// window for the common unfiltered views.
		_ = s.statsSvc.ClearCache(ctx, domain.ScopeLocation, report.LocationID)
		_ = s.statsSvc.ClearCache(ctx, domain.ScopeOrganization, report.OrganizationID)
		_ = s.statsSvc.ClearCache(ctx, domain.ScopeGlobal, "")
	}

	if to == domain.StatusApproved && s.events != nil {
		if err := s.events.PublishReportApproved(ctx, report); err != nil {
			slog.WarnContext(ctx, "publish approved event failed", "report_id", report.ID, "error", err)
		}
	}
	return report, nil
}

// GetByID returns a single wage report.
func (s *ReportService) GetByID(ctx context.Context, id string) (*domain.WageReport, error) {
	return s.reports.GetByID(ctx, id)
}

// List returns filtered, paginated wage reports plus the total count.
func (s *ReportService) List(ctx context.Context, f ports.ReportFilters) ([]domain.WageReport, int, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.reports.List(ctx, f)
}

// sanityScore grades a new submission against the location's approved rates:
// the z-score rounded and clamped to [-5, 5]. Too few prior observations, or
// a degenerate spread, score 0.
func (s *ReportService) sanityScore(ctx context.Context, locationID string, hourlyCents int64) int {
	prior, err := s.reports.ApprovedHourlyCents(ctx, locationID)
	if err != nil || len(prior) < 2 {
		return 0
	}
	sd := stats.StdDevPopulation(prior)
	if sd == 0 {
		return 0
	}
	z := (float64(hourlyCents) - stats.Mean(prior)) / sd
	score := int(math.Round(z))
	if score > 5 {
		score = 5
	}
	if score < -5 {
		score = -5
	}
	return score
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidPeriod):
		return "invalid_period"
	case errors.Is(err, domain.ErrOutOfRange):
		return "out_of_range"
	default:
		return "other"
	}
}
