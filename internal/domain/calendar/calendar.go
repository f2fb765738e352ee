// Package calendar holds the day-based date arithmetic used across the herd
// records: gestation projection, ages, countdowns and expiry windows.
//
// All functions work on UTC calendar days. Callers normalize inputs with Day
// before comparing so results do not depend on the server time zone.
package calendar

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// GestationDays is the average cattle pregnancy length.
	GestationDays = 283

	// ExpiryWarningDays is the window in which a medicine counts as expiring soon.
	ExpiryWarningDays = 30

	// DayLayout is the wire format for dates.
	DayLayout = "2006-01-02"

	day  = 24 * time.Hour
	year = 36525 * day / 100
)

// Day truncates t to midnight UTC of its UTC calendar day.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// LocalDay returns the calendar day t falls on in loc, as the canonical UTC
// midnight of that date.
func LocalDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a UTC day. Full RFC3339
// timestamps are accepted and truncated.
func ParseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(DayLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: expected %s", value, DayLayout)
	}
	return Day(t), nil
}

// FormatDay renders t as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// AddDays moves t by n calendar days without leap-year adjustments beyond
// what the calendar itself provides.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// ExpectedCalvingDate projects the calving date from a conception date.
func ExpectedCalvingDate(conception time.Time) time.Time {
	return AddDays(conception, GestationDays)
}

// AgeYears returns the whole number of 365.25-day years between birth and now.
// Future birth dates produce negative ages.
func AgeYears(birth, now time.Time) int {
	return int(math.Floor(float64(now.Sub(birth)) / float64(year)))
}

// DaysUntil returns the number of days from now to target, rounded up.
// Negative values mean the target is overdue.
func DaysUntil(target, now time.Time) int {
	return int(math.Ceil(float64(target.Sub(now)) / float64(day)))
}

// IsExpiringSoon reports whether expiry falls within the warning window but
// has not passed yet.
func IsExpiringSoon(expiry, now time.Time) bool {
	d := DaysUntil(expiry, now)
	return d > 0 && d <= ExpiryWarningDays
}

// IsExpired reports whether expiry is strictly before now.
func IsExpired(expiry, now time.Time) bool {
	return expiry.Before(now)
}

// WithdrawalEndDate returns the end of the withdrawal period, or nil when the
// treatment has none.
func WithdrawalEndDate(treatment time.Time, withdrawalDays int) *time.Time {
	if withdrawalDays <= 0 {
		return nil
	}
	end := AddDays(treatment, withdrawalDays)
	return &end
}
