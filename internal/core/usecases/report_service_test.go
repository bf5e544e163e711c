package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fairwage/fairwage/internal/core/domain"
	"github.com/fairwage/fairwage/internal/core/usecases"
)

func TestSubmitNormalizesAndStoresPending(t *testing.T) {
	var created *domain.WageReport
	reports := &mockReportRepo{
		createFn: func(ctx context.Context, r *domain.WageReport) error {
			r.ID = "report-1"
			created = r
			return nil
		},
	}
	locs := &mockLocationRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Location, error) {
			return &domain.Location{ID: id, OrganizationID: "org-1"}, nil
		},
	}
	events := &mockPublisher{}
	svc := usecases.NewReportService(reports, locs, nil, events, domain.DefaultWageBounds)

	got, err := svc.Submit(context.Background(), usecases.SubmitReportInput{
		LocationID:   "loc-1",
		JobTitle:     "Server",
		PayPeriod:    domain.PeriodWeekly,
		AmountCents:  60000,
		HoursPerWeek: 40,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if created == nil {
		t.Fatal("expected report to be persisted")
	}
	if got.HourlyCents != 1500 {
		t.Errorf("HourlyCents = %d, want 1500", got.HourlyCents)
	}
	if got.AmountCents != 60000 {
		t.Errorf("AmountCents = %d, want original 60000", got.AmountCents)
	}
	if got.Status != domain.StatusPending {
		t.Errorf("Status = %s, want pending", got.Status)
	}
	if got.Currency != "USD" {
		t.Errorf("Currency = %s, want USD default", got.Currency)
	}
	if got.OrganizationID != "org-1" {
		t.Errorf("OrganizationID = %s, want org-1 from the location", got.OrganizationID)
	}
	if got.EffectiveDate.IsZero() {
		t.Error("expected a defaulted effective date")
	}
	if len(events.submitted) != 1 || events.submitted[0] != "report-1" {
		t.Errorf("expected submitted event for report-1, got %v", events.submitted)
	}
}

func TestSubmitRejectsBadInput(t *testing.T) {
	createCalls := 0
	reports := &mockReportRepo{
		createFn: func(ctx context.Context, r *domain.WageReport) error {
			createCalls++
			return nil
		},
	}
	svc := usecases.NewReportService(reports, &mockLocationRepo{}, nil, nil, domain.DefaultWageBounds)

	cases := []struct {
		name    string
		input   usecases.SubmitReportInput
		wantErr error
	}{
		{
			name:    "unknown pay period",
			input:   usecases.SubmitReportInput{LocationID: "loc-1", JobTitle: "Server", PayPeriod: "fortnightly", AmountCents: 1500},
			wantErr: domain.ErrInvalidPeriod,
		},
		{
			name:    "below plausibility band",
			input:   usecases.SubmitReportInput{LocationID: "loc-1", JobTitle: "Server", PayPeriod: domain.PeriodHourly, AmountCents: 100},
			wantErr: domain.ErrOutOfRange,
		},
		{
			name:    "above plausibility band",
			input:   usecases.SubmitReportInput{LocationID: "loc-1", JobTitle: "Server", PayPeriod: domain.PeriodHourly, AmountCents: 25000},
			wantErr: domain.ErrOutOfRange,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Submit: got %v, want %v", err, tc.wantErr)
			}
		})
	}
	if createCalls != 0 {
		t.Errorf("expected no persistence on rejection, got %d creates", createCalls)
	}

	if _, err := svc.Submit(context.Background(), usecases.SubmitReportInput{JobTitle: "Server", PayPeriod: domain.PeriodHourly, AmountCents: 1500}); err == nil {
		t.Error("expected error for missing location id")
	}
	if _, err := svc.Submit(context.Background(), usecases.SubmitReportInput{LocationID: "loc-1", PayPeriod: domain.PeriodHourly, AmountCents: 1500}); err == nil {
		t.Error("expected error for missing job title")
	}
}

func TestSubmitScoresAgainstApprovedRates(t *testing.T) {
	reports := &mockReportRepo{
		approvedFn: func(ctx context.Context, locationID string) ([]int64, error) {
			return []int64{1000, 1000, 2000, 2000}, nil
		},
	}
	svc := usecases.NewReportService(reports, &mockLocationRepo{}, nil, nil, domain.DefaultWageBounds)

	// Mean 1500, population stddev 500; 3000 sits three deviations out.
	got, err := svc.Submit(context.Background(), usecases.SubmitReportInput{
		LocationID: "loc-1", JobTitle: "Server", PayPeriod: domain.PeriodHourly, AmountCents: 3000,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got.SanityScore != 3 {
		t.Errorf("SanityScore = %d, want 3", got.SanityScore)
	}
}

func TestSubmitScoreNeutralWithFewPriors(t *testing.T) {
	reports := &mockReportRepo{
		approvedFn: func(ctx context.Context, locationID string) ([]int64, error) {
			return []int64{1500}, nil
		},
	}
	svc := usecases.NewReportService(reports, &mockLocationRepo{}, nil, nil, domain.DefaultWageBounds)

	got, err := svc.Submit(context.Background(), usecases.SubmitReportInput{
		LocationID: "loc-1", JobTitle: "Server", PayPeriod: domain.PeriodHourly, AmountCents: 9000,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got.SanityScore != 0 {
		t.Errorf("SanityScore = %d, want 0 with a single prior", got.SanityScore)
	}
}

func TestTransitionApproveInvalidatesAndPublishes(t *testing.T) {
	var updatedTo domain.ReportStatus
	reports := &mockReportRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.WageReport, error) {
			return &domain.WageReport{ID: id, LocationID: "loc-1", OrganizationID: "org-1", Status: domain.StatusPending}, nil
		},
		updateStatusFn: func(ctx context.Context, id string, status domain.ReportStatus) error {
			updatedTo = status
			return nil
		},
	}
	cache := newMemCache()
	statsSvc := usecases.NewStatsService(reports, cache, time.Minute)
	events := &mockPublisher{}
	svc := usecases.NewReportService(reports, &mockLocationRepo{}, statsSvc, events, domain.DefaultWageBounds)

	got, err := svc.Transition(context.Background(), "report-1", domain.StatusApproved)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if updatedTo != domain.StatusApproved || got.Status != domain.StatusApproved {
		t.Errorf("status = %s/%s, want approved", updatedTo, got.Status)
	}
	// Location, organization, and global scopes each get invalidated.
	if cache.deletes != 3 {
		t.Errorf("expected 3 cache invalidations, got %d", cache.deletes)
	}
	if len(events.approved) != 1 {
		t.Errorf("expected approved event, got %v", events.approved)
	}
}

func TestTransitionRejectDoesNotPublishApproval(t *testing.T) {
	reports := &mockReportRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.WageReport, error) {
			return &domain.WageReport{ID: id, Status: domain.StatusFlagged}, nil
		},
	}
	events := &mockPublisher{}
	svc := usecases.NewReportService(reports, &mockLocationRepo{}, nil, events, domain.DefaultWageBounds)

	got, err := svc.Transition(context.Background(), "report-1", domain.StatusRejected)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if got.Status != domain.StatusRejected {
		t.Errorf("status = %s, want rejected", got.Status)
	}
	if len(events.approved) != 0 {
		t.Errorf("expected no approved event, got %v", events.approved)
	}
}

func TestTransitionRefusesIllegalMoves(t *testing.T) {
	cases := []struct {
		from domain.ReportStatus
		to   domain.ReportStatus
	}{
		{domain.StatusRejected, domain.StatusApproved},
		{domain.StatusApproved, domain.StatusPending},
		{domain.StatusApproved, domain.StatusRejected},
		{domain.StatusPending, domain.StatusPending},
	}
	for _, tc := range cases {
		reports := &mockReportRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.WageReport, error) {
				return &domain.WageReport{ID: id, Status: tc.from}, nil
			},
			updateStatusFn: func(ctx context.Context, id string, status domain.ReportStatus) error {
				t.Errorf("%s -> %s: status must not be written", tc.from, tc.to)
				return nil
			},
		}
		svc := usecases.NewReportService(reports, &mockLocationRepo{}, nil, nil, domain.DefaultWageBounds)
		if _, err := svc.Transition(context.Background(), "report-1", tc.to); err == nil {
			t.Errorf("%s -> %s: expected transition to be refused", tc.from, tc.to)
		}
	}
}
