package domain_test

import (
	"errors"
	"testing"

	"github.com/fairwage/fairwage/internal/core/domain"
)

func TestNormalizeToHourly_ConversionTable(t *testing.T) {
	tests := []struct {
		name         string
		amount       int64
		period       domain.PayPeriod
		hoursPerWeek float64
		shiftHours   float64
		want         int64
	}{
		{"hourly identity", 1500, domain.PeriodHourly, 0, 0, 1500},
		{"weekly 40h", 60000, domain.PeriodWeekly, 40, 0, 1500},
		{"biweekly 40h", 120000, domain.PeriodBiweekly, 40, 0, 1500},
		{"monthly annualized", 520000, domain.PeriodMonthly, 40, 0, 3000},
		{"yearly 52 weeks", 3120000, domain.PeriodYearly, 40, 0, 1500},
		{"per shift 8h", 12000, domain.PeriodPerShift, 0, 8, 1500},
		{"weekly default hours", 60000, domain.PeriodWeekly, 0, 0, 1500},
		{"per shift default hours", 12000, domain.PeriodPerShift, 0, 0, 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.NormalizeToHourly(tt.amount, tt.period, tt.hoursPerWeek, tt.shiftHours, domain.DefaultWageBounds)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNormalizeToHourly_Idempotent(t *testing.T) {
	// Normalizing twice with identical inputs must yield identical output.
	for _, amount := range []int64{500, 1500, 4250, 19999} {
		a, err := domain.NormalizeToHourly(amount, domain.PeriodHourly, 0, 0, domain.DefaultWageBounds)
		if err != nil {
			t.Fatalf("first call: %v", err)
		}
		b, err := domain.NormalizeToHourly(amount, domain.PeriodHourly, 0, 0, domain.DefaultWageBounds)
		if err != nil {
			t.Fatalf("second call: %v", err)
		}
		if a != b {
			t.Errorf("amount %d: %d != %d", amount, a, b)
		}
	}
}

func TestNormalizeToHourly_OutOfRange(t *testing.T) {
	if _, err := domain.NormalizeToHourly(100, domain.PeriodHourly, 0, 0, domain.DefaultWageBounds); !errors.Is(err, domain.ErrOutOfRange) {
		t.Errorf("below band: want ErrOutOfRange, got %v", err)
	}
	if _, err := domain.NormalizeToHourly(25000, domain.PeriodHourly, 0, 0, domain.DefaultWageBounds); !errors.Is(err, domain.ErrOutOfRange) {
		t.Errorf("above band: want ErrOutOfRange, got %v", err)
	}
}

func TestNormalizeToHourly_InvalidPeriod(t *testing.T) {
	_, err := domain.NormalizeToHourly(1500, domain.PayPeriod("fortnightly"), 0, 0, domain.DefaultWageBounds)
	if !errors.Is(err, domain.ErrInvalidPeriod) {
		t.Errorf("want ErrInvalidPeriod, got %v", err)
	}
}

func TestNormalizeToHourly_ConfigurableBounds(t *testing.T) {
	bounds := domain.WageBounds{MinHourlyCents: 50, MaxHourlyCents: 100000}
	got, err := domain.NormalizeToHourly(100, domain.PeriodHourly, 0, 0, bounds)
	if err != nil {
		t.Fatalf("unexpected error with widened band: %v", err)
	}
	if got != 100 {
		t.Errorf("got %d, want 100", got)
	}
}
