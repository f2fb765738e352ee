package breeding

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/calendar"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/metrics"
	"github.com/mamadbah2/herdbook/internal/repository"
	"github.com/mamadbah2/herdbook/internal/service/fields"
)

const opConfirmPregnancy = "confirm pregnancy"

// Steps of the pregnancy confirmation, in order.
const (
	StepCreatePregnancy = "create_pregnancy"
	StepMarkCowPregnant = "mark_cow_pregnant"
	StepMarkBreeding    = "mark_breeding_success"
)

// PregnancyInput confirms a pregnancy. ExpectedCalvingDate defaults to
// conception plus the gestation period.
type PregnancyInput struct {
	CowID               string `json:"cow_id"`
	BreedingRecordID    string `json:"breeding_record_id"`
	ConceptionDate      string `json:"conception_date"`
	ExpectedCalvingDate string `json:"expected_calving_date"`
	Notes               string `json:"notes"`
}

// ConfirmPregnancy creates the pregnancy, marks the cow pregnant and, when a
// breeding record is linked, marks it successful. The writes share one
// transaction. On a store without transactions a failure after the
// pregnancy exists is reported as *models.PartialCompletionError; call
// ReconcilePregnancy to finish the remaining steps.
func (s *Service) ConfirmPregnancy(ctx context.Context, owner string, in PregnancyInput) (*PregnancyView, error) {
	cowID, err := fields.Required("cow_id", in.CowID)
	if err != nil {
		return nil, err
	}
	conception, err := fields.RequiredDay("conception_date", in.ConceptionDate)
	if err != nil {
		return nil, err
	}
	expected, err := fields.OptionalDay("expected_calving_date", in.ExpectedCalvingDate)
	if err != nil {
		return nil, err
	}
	if expected == nil {
		projected := calendar.ExpectedCalvingDate(conception)
		expected = &projected
	}
	if expected.Before(conception) {
		return nil, models.Invalid("expected_calving_date", "must not be before the conception date")
	}
	breedingID := fields.OptionalID(in.BreedingRecordID)

	now := s.now().UTC()
	pregnancy := &models.Pregnancy{
		UserID:              owner,
		CowID:               cowID,
		BreedingRecordID:    breedingID,
		ConceptionDate:      conception,
		ExpectedCalvingDate: *expected,
		PregnancyStatus:     models.PregnancyConfirmed,
		Notes:               in.Notes,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	var completed []string
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := s.checkReferences(ctx, tx, owner, cowID, breedingID); err != nil {
			return err
		}
		if err := tx.CreatePregnancy(ctx, pregnancy); err != nil {
			return fmt.Errorf("create pregnancy: %w", err)
		}
		completed = append(completed, StepCreatePregnancy)

		if err := tx.SetCowStatus(ctx, owner, cowID, models.CowPregnant, now); err != nil {
			return fmt.Errorf("mark cow pregnant: %w", err)
		}
		completed = append(completed, StepMarkCowPregnant)

		if breedingID != nil {
			if err := tx.MarkBreedingSuccess(ctx, owner, *breedingID, now); err != nil {
				return fmt.Errorf("mark breeding success: %w", err)
			}
			completed = append(completed, StepMarkBreeding)
		}
		return nil
	})
	if err != nil {
		return nil, s.partial(err, pregnancy, completed)
	}

	s.recorder.RecordEvent(metrics.EventPregnancyConfirmed)
	s.logger.Info("pregnancy confirmed",
		zap.String("pregnancy_id", pregnancy.ID),
		zap.String("cow_id", cowID),
		zap.String("expected_calving", calendar.FormatDay(pregnancy.ExpectedCalvingDate)))
	return &PregnancyView{Pregnancy: *pregnancy, DaysUntilCalving: calendar.DaysUntil(pregnancy.ExpectedCalvingDate, s.now())}, nil
}

func (s *Service) checkReferences(ctx context.Context, tx repository.Store, owner, cowID string, breedingID *string) error {
	if err := s.ownedReference(ctx, "cow_id", cowID, func() error {
		_, err := tx.GetCow(ctx, owner, cowID)
		return err
	}); err != nil {
		return err
	}
	if breedingID == nil {
		return nil
	}
	var record *models.BreedingRecord
	if err := s.ownedReference(ctx, "breeding_record_id", *breedingID, func() error {
		var err error
		record, err = tx.GetBreeding(ctx, owner, *breedingID)
		return err
	}); err != nil {
		return err
	}
	if record.CowID != cowID {
		return &models.ValidationError{Field: "breeding_record_id", Value: *breedingID, Reason: "belongs to a different cow"}
	}
	return nil
}

// partial converts a failure into a PartialCompletionError when writes
// survived it, which only happens on non-atomic stores.
func (s *Service) partial(err error, pregnancy *models.Pregnancy, completed []string) error {
	if s.store.Atomic() || len(completed) == 0 {
		return err
	}

	pending := []string{StepMarkCowPregnant}
	if pregnancy.BreedingRecordID != nil {
		pending = append(pending, StepMarkBreeding)
	}
	pending = pending[len(completed)-1:]

	s.recorder.RecordEvent(metrics.EventPartialCompletion)
	s.logger.Error("pregnancy confirmation partially applied",
		zap.String("pregnancy_id", pregnancy.ID),
		zap.Strings("completed", completed),
		zap.Strings("pending", pending),
		zap.Error(err))
	return &models.PartialCompletionError{
		Operation: opConfirmPregnancy,
		RecordID:  pregnancy.ID,
		Completed: completed,
		Pending:   pending,
		Err:       err,
	}
}

// ReconcilePregnancy re-applies the cow and breeding updates of a confirmed
// pregnancy. Both updates are idempotent.
func (s *Service) ReconcilePregnancy(ctx context.Context, owner, id string) (*PregnancyView, error) {
	var pregnancy *models.Pregnancy
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		pregnancy, err = tx.GetPregnancy(ctx, owner, id)
		if err != nil {
			return err
		}
		if pregnancy.PregnancyStatus != models.PregnancyConfirmed {
			return nil
		}
		now := s.now().UTC()
		if err := tx.SetCowStatus(ctx, owner, pregnancy.CowID, models.CowPregnant, now); err != nil {
			return fmt.Errorf("mark cow pregnant: %w", err)
		}
		if pregnancy.BreedingRecordID != nil {
			if err := tx.MarkBreedingSuccess(ctx, owner, *pregnancy.BreedingRecordID, now); err != nil {
				return fmt.Errorf("mark breeding success: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.recorder.RecordEvent(metrics.EventPregnancyReconciled)
	s.logger.Info("pregnancy reconciled", zap.String("pregnancy_id", id))
	return &PregnancyView{Pregnancy: *pregnancy, DaysUntilCalving: calendar.DaysUntil(pregnancy.ExpectedCalvingDate, s.now())}, nil
}

// EndPregnancy would close a pregnancy by calving or loss. No such
// transition is modelled, so after checking the pregnancy exists it always
// returns models.ErrTransitionNotImplemented.
func (s *Service) EndPregnancy(ctx context.Context, owner, id string) error {
	if _, err := s.store.GetPregnancy(ctx, owner, id); err != nil {
		return err
	}
	return fmt.Errorf("end pregnancy %s: %w", id, models.ErrTransitionNotImplemented)
}
