package medicine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/calendar"
	"github.com/mamadbah2/herdbook/internal/domain/inventory"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/metrics"
	"github.com/mamadbah2/herdbook/internal/repository"
	"github.com/mamadbah2/herdbook/internal/service/fields"
)

// DefaultTreatmentLimit caps the recent treatment list.
const DefaultTreatmentLimit = 5

const (
	StepCreateTreatment = "create_treatment"
	StepDecrementStock  = "decrement_stock"
)

// TreatmentInput records a dose given to a cow.
type TreatmentInput struct {
	CowID                string  `json:"cow_id"`
	MedicineID           string  `json:"medicine_id"`
	TreatmentDate        string  `json:"treatment_date"`
	Dosage               float64 `json:"dosage"`
	Reason               string  `json:"reason"`
	WithdrawalPeriodDays int     `json:"withdrawal_period_days"`
	AdministeredBy       string  `json:"administered_by"`
	Notes                string  `json:"notes"`
}

// TreatmentResult is the stored treatment and the stock left afterwards.
// Clamped is set when the dose exceeded the stock and the quantity was
// floored at zero.
type TreatmentResult struct {
	Treatment         models.MedicineTreatment `json:"treatment"`
	QuantityRemaining float64                  `json:"quantity_remaining"`
	Clamped           bool                     `json:"clamped"`
}

// RecordTreatment stores the treatment and decrements the medicine stock.
// A dose larger than the stock is still recorded; the stock stops at zero.
func (s *Service) RecordTreatment(ctx context.Context, owner string, in TreatmentInput) (*TreatmentResult, error) {
	cowID, err := fields.Required("cow_id", in.CowID)
	if err != nil {
		return nil, err
	}
	medicineID, err := fields.Required("medicine_id", in.MedicineID)
	if err != nil {
		return nil, err
	}
	date, err := fields.RequiredDay("treatment_date", in.TreatmentDate)
	if err != nil {
		return nil, err
	}
	reason, err := fields.Required("reason", in.Reason)
	if err != nil {
		return nil, err
	}
	if err := inventory.ValidateDosage(in.Dosage); err != nil {
		return nil, err
	}
	if in.WithdrawalPeriodDays < 0 {
		return nil, models.Invalid("withdrawal_period_days", "must be zero or greater")
	}

	now := s.now().UTC()
	result := &TreatmentResult{}
	var completed []string

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := tx.GetCow(ctx, owner, cowID); err != nil {
			return reference(err, "cow_id", cowID)
		}
		stock, err := tx.GetMedicine(ctx, owner, medicineID)
		if err != nil {
			return reference(err, "medicine_id", medicineID)
		}

		result.Treatment = models.MedicineTreatment{
			UserID:               owner,
			CowID:                cowID,
			MedicineID:           medicineID,
			TreatmentDate:        date,
			Dosage:               in.Dosage,
			Unit:                 stock.Unit,
			Reason:               reason,
			WithdrawalPeriodDays: in.WithdrawalPeriodDays,
			WithdrawalEndDate:    calendar.WithdrawalEndDate(date, in.WithdrawalPeriodDays),
			AdministeredBy:       in.AdministeredBy,
			Notes:                in.Notes,
			CreatedAt:            now,
		}
		if err := tx.CreateTreatment(ctx, &result.Treatment); err != nil {
			return fmt.Errorf("create treatment: %w", err)
		}
		completed = append(completed, StepCreateTreatment)

		remaining, err := tx.DecrementMedicine(ctx, owner, medicineID, in.Dosage, now)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		result.QuantityRemaining = remaining
		result.Clamped = inventory.Overdraws(stock.QuantityRemaining, in.Dosage)
		if expected := inventory.ApplyTreatment(stock.QuantityRemaining, in.Dosage); expected != remaining {
			s.logger.Debug("stock changed by a concurrent treatment",
				zap.String("medicine_id", medicineID),
				zap.Float64("expected", expected),
				zap.Float64("remaining", remaining))
		}
		return nil
	})
	if err != nil {
		if !s.store.Atomic() && len(completed) > 0 {
			s.recorder.RecordEvent(metrics.EventPartialCompletion)
			return nil, &models.PartialCompletionError{
				Operation: "record treatment",
				RecordID:  result.Treatment.ID,
				Completed: completed,
				Pending:   []string{StepDecrementStock},
				Err:       err,
			}
		}
		return nil, err
	}

	s.recorder.RecordEvent(metrics.EventTreatmentRecorded)
	if result.Clamped {
		s.recorder.RecordEvent(metrics.EventInventoryClamped)
		s.logger.Warn("treatment exceeded stock, quantity clamped at zero",
			zap.String("medicine_id", medicineID),
			zap.Float64("dosage", in.Dosage))
	}
	s.logger.Info("treatment recorded",
		zap.String("treatment_id", result.Treatment.ID),
		zap.String("cow_id", cowID),
		zap.Float64("remaining", result.QuantityRemaining))
	return result, nil
}

// ListTreatments returns the most recent treatments, optionally for one cow.
func (s *Service) ListTreatments(ctx context.Context, owner, cowID string, limit int) ([]models.MedicineTreatment, error) {
	if limit <= 0 {
		limit = DefaultTreatmentLimit
	}
	return s.store.ListTreatments(ctx, owner, repository.TreatmentFilter{CowID: cowID, Limit: limit})
}

func reference(err error, field, id string) error {
	if errors.Is(err, models.ErrNotFound) {
		return &models.ValidationError{Field: field, Value: id, Reason: "unknown record"}
	}
	return err
}
