// Package fields converts raw request values into domain values, reporting
// problems as *models.ValidationError.
package fields

import (
	"math"
	"strings"
	"time"

	"github.com/mamadbah2/herdbook/internal/domain/calendar"
	"github.com/mamadbah2/herdbook/internal/domain/models"
)

// Required trims value and rejects it when empty.
func Required(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", models.MissingField(field)
	}
	return value, nil
}

// RequiredDay parses a mandatory YYYY-MM-DD date.
func RequiredDay(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, models.MissingField(field)
	}
	day, err := calendar.ParseDay(value)
	if err != nil {
		return time.Time{}, &models.ValidationError{Field: field, Value: value, Reason: "expected " + calendar.DayLayout}
	}
	return day, nil
}

// OptionalDay parses a date that may be left blank.
func OptionalDay(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	day, err := RequiredDay(field, value)
	if err != nil {
		return nil, err
	}
	return &day, nil
}

// OptionalID returns nil for a blank reference.
func OptionalID(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// NonNegative rejects negative or non-finite numbers.
func NonNegative(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return models.Invalid(field, "must be zero or greater")
	}
	return nil
}

// OptionalNonNegative is NonNegative for nullable numbers.
func OptionalNonNegative(field string, value *float64) error {
	if value == nil {
		return nil
	}
	return NonNegative(field, *value)
}

// Enum lower-cases value, applies fallback when blank, and checks it against
// allowed.
func Enum(field, value, fallback string, allowed []string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		value = fallback
	}
	if value == "" {
		return "", models.MissingField(field)
	}
	if err := models.ValidateEnum(field, value, allowed); err != nil {
		return "", err
	}
	return value, nil
}
