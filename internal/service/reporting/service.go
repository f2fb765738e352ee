// Package reporting builds the dashboard summary and the daily digest text
// pushed to farmers.
package reporting

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/service/breeding"
	"github.com/mamadbah2/herdbook/internal/service/herd"
	"github.com/mamadbah2/herdbook/internal/service/medicine"
	"github.com/mamadbah2/herdbook/internal/service/reminders"
)

// CalvingWindowDays is how far ahead the digest looks for calvings.
const CalvingWindowDays = 30

// HerdReader is the part of the herd service reporting reads from.
type HerdReader interface {
	ListCows(ctx context.Context, owner, status string) ([]herd.CowView, error)
	DailySummary(ctx context.Context, owner string, day time.Time) (*models.MilkingSummary, error)
}

// PregnancyReader lists confirmed pregnancies.
type PregnancyReader interface {
	ListPregnancies(ctx context.Context, owner, cowID string) ([]breeding.PregnancyView, error)
}

// MedicineReader reports inventory alerts.
type MedicineReader interface {
	Alerts(ctx context.Context, owner string) (*medicine.Alerts, error)
}

// ReminderReader lists open reminders.
type ReminderReader interface {
	Pending(ctx context.Context, owner string, horizonDays int) ([]reminders.View, error)
}

// Sources bundles the readers the reporting service aggregates.
type Sources struct {
	Herd      HerdReader
	Breeding  PregnancyReader
	Medicine  MedicineReader
	Reminders ReminderReader
}

// Service exposes the dashboard and digest builders.
type Service struct {
	src    Sources
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(src Sources, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{src: src, logger: logger, now: time.Now}
}

// WithClock overrides the clock. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
