package models

import (
	"fmt"
	"time"
)

// DayCountConvention is the rule for converting a date range into a fraction
// of a year for interest math.
type DayCountConvention string

const (
	DayCountThirty360 DayCountConvention = "30/360"
	DayCountActual365 DayCountConvention = "actual/365"
)

// ParseDayCount converts a config string into a DayCountConvention.
func ParseDayCount(s string) (DayCountConvention, error) {
	switch DayCountConvention(s) {
	case DayCountThirty360:
		return DayCountThirty360, nil
	case DayCountActual365:
		return DayCountActual365, nil
	}
	return "", fmt.Errorf("unknown day count convention %q", s)
}

// YearDays returns the denominator the convention uses for a full year.
func (c DayCountConvention) YearDays() int64 {
	if c == DayCountThirty360 {
		return 360
	}
	return 365
}

// AccrualPeriod is a closed-open interval [Start, End) over which interest is
// computed. Both bounds are dates at UTC midnight; End is excluded so adjacent
// periods never double-count a boundary day.
type AccrualPeriod struct {
	Start time.Time
	End   time.Time
}

// MonthPeriod returns the accrual period covering one calendar month.
func MonthPeriod(year int, month time.Month) AccrualPeriod {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return AccrualPeriod{Start: start, End: start.AddDate(0, 1, 0)}
}

// PreviousMonthPeriod returns the most recent fully completed calendar month
// relative to now. A run triggered any time during August credits July.
// Derived from the first of the current month: AddDate on an end-of-month
// date would normalize forward (Jul 31 minus one month is Jul 1) and hand
// back the still-running month.
func PreviousMonthPeriod(now time.Time) AccrualPeriod {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := first.AddDate(0, -1, 0)
	return MonthPeriod(prev.Year(), prev.Month())
}

// Validate checks the interval is well formed and date-aligned.
func (p AccrualPeriod) Validate() error {
	if !p.End.After(p.Start) {
		return fmt.Errorf("period end %s must be after start %s",
			p.End.Format("2006-01-02"), p.Start.Format("2006-01-02"))
	}
	for _, t := range []time.Time{p.Start, p.End} {
		if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
			return fmt.Errorf("period bounds must be at UTC midnight, got %s", t)
		}
	}
	return nil
}

// Days returns the number of interest-bearing days in the period under the
// given convention. The end date is excluded.
func (p AccrualPeriod) Days(convention DayCountConvention) int64 {
	if convention == DayCountThirty360 {
		return thirty360Days(p.Start, p.End)
	}
	return int64(p.End.Sub(p.Start).Hours() / 24)
}

// thirty360Days implements the US 30/360 convention: every month counts as 30
// days, day-of-month 31 is clamped to 30.
func thirty360Days(start, end time.Time) int64 {
	d1, d2 := start.Day(), end.Day()
	if d1 == 31 {
		d1 = 30
	}
	if d2 == 31 && d1 == 30 {
		d2 = 30
	}
	years := int64(end.Year() - start.Year())
	months := int64(end.Month() - start.Month())
	return 360*years + 30*months + int64(d2-d1)
}

// CoveredBy reports whether a last-interest-credited watermark already covers
// this period, i.e. the account was credited up to or beyond the period end.
func (p AccrualPeriod) CoveredBy(lastCredited *time.Time) bool {
	return lastCredited != nil && !lastCredited.Before(p.End)
}

func (p AccrualPeriod) String() string {
	return fmt.Sprintf("[%s, %s)", p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
}
