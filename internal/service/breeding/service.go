// Package breeding records services of cows and confirms the resulting
// pregnancies.
package breeding

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/calendar"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/metrics"
	"github.com/mamadbah2/herdbook/internal/repository"
	"github.com/mamadbah2/herdbook/internal/service/fields"
)

// Service implements breeding records and the pregnancy transition.
type Service struct {
	store    repository.Store
	recorder metrics.Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a breeding service.
func NewService(store repository.Store, recorder metrics.Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, recorder: metrics.OrNop(recorder), logger: logger, now: time.Now}
}

// WithClock overrides the clock. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// BreedingInput describes one service of a cow.
type BreedingInput struct {
	CowID          string `json:"cow_id"`
	BreedingDate   string `json:"breeding_date"`
	BreedingType   string `json:"breeding_type"`
	BullID         string `json:"bull_id"`
	SemenBatch     string `json:"semen_batch"`
	TechnicianName string `json:"technician_name"`
	Notes          string `json:"notes"`
}

// CreateBreeding stores a breeding record. Natural service keeps only the
// bull; artificial insemination keeps only the semen batch and technician.
func (s *Service) CreateBreeding(ctx context.Context, owner string, in BreedingInput) (*models.BreedingRecord, error) {
	cowID, err := fields.Required("cow_id", in.CowID)
	if err != nil {
		return nil, err
	}
	date, err := fields.RequiredDay("breeding_date", in.BreedingDate)
	if err != nil {
		return nil, err
	}
	kind, err := fields.Enum("breeding_type", in.BreedingType, "", models.BreedingTypes)
	if err != nil {
		return nil, err
	}
	if err := s.ownedReference(ctx, "cow_id", cowID, func() error {
		_, err := s.store.GetCow(ctx, owner, cowID)
		return err
	}); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	record := &models.BreedingRecord{
		UserID:       owner,
		CowID:        cowID,
		BreedingDate: date,
		BreedingType: models.BreedingType(kind),
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	switch record.BreedingType {
	case models.BreedingNatural:
		if bullID := fields.OptionalID(in.BullID); bullID != nil {
			if err := s.ownedReference(ctx, "bull_id", *bullID, func() error {
				_, err := s.store.GetBull(ctx, owner, *bullID)
				return err
			}); err != nil {
				return nil, err
			}
			record.BullID = bullID
		}
	case models.BreedingArtificial:
		record.SemenBatch = in.SemenBatch
		record.TechnicianName = in.TechnicianName
	}

	if err := s.store.CreateBreeding(ctx, record); err != nil {
		return nil, err
	}
	s.logger.Info("breeding recorded",
		zap.String("breeding_id", record.ID),
		zap.String("cow_id", cowID),
		zap.String("type", kind))
	return record, nil
}

func (s *Service) GetBreeding(ctx context.Context, owner, id string) (*models.BreedingRecord, error) {
	return s.store.GetBreeding(ctx, owner, id)
}

// ListBreeding returns breeding records, most recent first.
func (s *Service) ListBreeding(ctx context.Context, owner string) ([]models.BreedingRecord, error) {
	return s.store.ListBreeding(ctx, owner)
}

func (s *Service) DeleteBreeding(ctx context.Context, owner, id string) error {
	return s.store.DeleteBreeding(ctx, owner, id)
}

// ownedReference turns a not-found lookup of a referenced record into a
// validation error on field.
func (s *Service) ownedReference(ctx context.Context, field, id string, lookup func() error) error {
	err := lookup()
	if errors.Is(err, models.ErrNotFound) {
		return &models.ValidationError{Field: field, Value: id, Reason: "unknown record"}
	}
	return err
}

// PregnancyView decorates a pregnancy with its countdown.
type PregnancyView struct {
	models.Pregnancy
	DaysUntilCalving int `json:"days_until_calving"`
}

// ListPregnancies returns confirmed pregnancies ordered by expected calving.
func (s *Service) ListPregnancies(ctx context.Context, owner, cowID string) ([]PregnancyView, error) {
	pregnancies, err := s.store.ListPregnancies(ctx, owner, repository.PregnancyFilter{
		CowID:  cowID,
		Status: models.PregnancyConfirmed,
	})
	if err != nil {
		return nil, err
	}
	now := s.now()
	views := make([]PregnancyView, 0, len(pregnancies))
	for _, p := range pregnancies {
		views = append(views, PregnancyView{Pregnancy: p, DaysUntilCalving: calendar.DaysUntil(p.ExpectedCalvingDate, now)})
	}
	return views, nil
}

func (s *Service) GetPregnancy(ctx context.Context, owner, id string) (*PregnancyView, error) {
	p, err := s.store.GetPregnancy(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	return &PregnancyView{Pregnancy: *p, DaysUntilCalving: calendar.DaysUntil(p.ExpectedCalvingDate, s.now())}, nil
}
