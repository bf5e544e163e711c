package domain

import (
	"errors"
	"fmt"
	"math"
)

// PayPeriod is the reporting period a raw wage amount refers to.
type PayPeriod string

const (
	PeriodHourly   PayPeriod = "hourly"
	PeriodWeekly   PayPeriod = "weekly"
	PeriodBiweekly PayPeriod = "biweekly"
	PeriodMonthly  PayPeriod = "monthly"
	PeriodYearly   PayPeriod = "yearly"
	PeriodPerShift PayPeriod = "per_shift"
)

var (
	// ErrInvalidPeriod is returned for an unrecognized pay period tag.
	ErrInvalidPeriod = errors.New("invalid pay period")
	// ErrOutOfRange is returned when a normalized hourly rate falls outside
	// the plausibility band. A period-unit mixup is off by 40x or more, so
	// this is a hard gate, not a flag.
	ErrOutOfRange = errors.New("hourly rate out of range")
)

// WageBounds is the absolute plausibility band for normalized hourly rates,
// in minor units.
type WageBounds struct {
	MinHourlyCents int64
	MaxHourlyCents int64
}

// DefaultWageBounds spans $2.00/hr to $200.00/hr.
var DefaultWageBounds = WageBounds{MinHourlyCents: 200, MaxHourlyCents: 20000}

// Defaults applied when the submitter leaves hours unspecified.
const (
	DefaultHoursPerWeek = 40.0
	DefaultShiftHours   = 8.0
)

// NormalizeToHourly converts a reported amount in minor units for the given
// pay period into an hourly rate in minor units. hoursPerWeek and shiftHours
// may be zero to take the defaults. The function is pure: same inputs, same
// output.
//
// Monthly amounts are annualized (x12) and divided across 52 working weeks
// rather than divided by a flat 4.33, matching how yearly amounts convert.
func NormalizeToHourly(amountCents int64, period PayPeriod, hoursPerWeek, shiftHours float64, bounds WageBounds) (int64, error) {
	if hoursPerWeek <= 0 {
		hoursPerWeek = DefaultHoursPerWeek
	}
	if shiftHours <= 0 {
		shiftHours = DefaultShiftHours
	}

	var hourly float64
	switch period {
	case PeriodHourly:
		hourly = float64(amountCents)
	case PeriodWeekly:
		hourly = float64(amountCents) / hoursPerWeek
	case PeriodBiweekly:
		hourly = float64(amountCents) / (2 * hoursPerWeek)
	case PeriodMonthly:
		hourly = float64(amountCents) * 12 / 52 / hoursPerWeek
	case PeriodYearly:
		hourly = float64(amountCents) / 52 / hoursPerWeek
	case PeriodPerShift:
		hourly = float64(amountCents) / shiftHours
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	cents := int64(math.Round(hourly))
	if cents < bounds.MinHourlyCents || cents > bounds.MaxHourlyCents {
		return 0, fmt.Errorf("%w: %d cents/hr (allowed %d-%d)",
			ErrOutOfRange, cents, bounds.MinHourlyCents, bounds.MaxHourlyCents)
	}
	return cents, nil
}
