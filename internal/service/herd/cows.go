package herd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/calendar"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
	"github.com/mamadbah2/herdbook/internal/service/fields"
)

// CalvingGraceDays is how long past its expected calving date a confirmed
// pregnancy still marks the cow pregnant.
const CalvingGraceDays = 60

// CowInput is the writable part of a cow.
type CowInput struct {
	TagNumber   string   `json:"tag_number"`
	Name        string   `json:"name"`
	Breed       string   `json:"breed"`
	DateOfBirth string   `json:"date_of_birth"`
	Status      string   `json:"status"`
	Color       string   `json:"color"`
	WeightKg    *float64 `json:"weight_kg"`
	Notes       string   `json:"notes"`
}

// CowView is a cow as readers see it.
type CowView struct {
	models.Cow
	EffectiveStatus models.CowStatus `json:"effective_status"`
	AgeYears        *int             `json:"age_years,omitempty"`
}

func (in CowInput) apply(cow *models.Cow) error {
	tag, err := fields.Required("tag_number", in.TagNumber)
	if err != nil {
		return err
	}
	fallback := models.CowActive
	if cow.Status != "" {
		fallback = cow.Status
	}
	status, err := fields.Enum("status", in.Status, string(fallback), models.CowStatuses)
	if err != nil {
		return err
	}
	dob, err := fields.OptionalDay("date_of_birth", in.DateOfBirth)
	if err != nil {
		return err
	}
	if err := fields.OptionalNonNegative("weight_kg", in.WeightKg); err != nil {
		return err
	}

	cow.TagNumber = tag
	cow.Name = in.Name
	cow.Breed = in.Breed
	cow.DateOfBirth = dob
	cow.Status = models.CowStatus(status)
	cow.Color = in.Color
	cow.WeightKg = in.WeightKg
	cow.Notes = in.Notes
	return nil
}

// CreateCow registers a cow for owner.
func (s *Service) CreateCow(ctx context.Context, owner string, in CowInput) (*CowView, error) {
	now := s.now().UTC()
	cow := &models.Cow{UserID: owner, CreatedAt: now, UpdatedAt: now}
	if err := in.apply(cow); err != nil {
		return nil, err
	}
	if err := s.store.CreateCow(ctx, cow); err != nil {
		return nil, duplicateTag(err, cow.TagNumber)
	}
	s.logger.Info("cow registered", zap.String("cow_id", cow.ID), zap.String("tag", cow.TagNumber))
	return s.view(*cow, false), nil
}

// GetCow returns one cow with its derived status.
func (s *Service) GetCow(ctx context.Context, owner, id string) (*CowView, error) {
	cow, err := s.store.GetCow(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	pregnancies, err := s.store.ListPregnancies(ctx, owner, repository.PregnancyFilter{CowID: id, Status: models.PregnancyConfirmed})
	if err != nil {
		return nil, fmt.Errorf("load pregnancies: %w", err)
	}
	carrying := false
	for _, p := range pregnancies {
		carrying = carrying || s.carrying(p)
	}
	return s.view(*cow, carrying), nil
}

// ListCows returns the herd ordered by tag. A non-empty status filters on
// the effective status.
func (s *Service) ListCows(ctx context.Context, owner, status string) ([]CowView, error) {
	if status != "" {
		if err := models.ValidateEnum("status", status, models.CowStatuses); err != nil {
			return nil, err
		}
	}

	cows, err := s.store.ListCows(ctx, owner, repository.CowFilter{})
	if err != nil {
		return nil, err
	}
	pregnant, err := s.pregnantCows(ctx, owner)
	if err != nil {
		return nil, err
	}

	views := make([]CowView, 0, len(cows))
	for _, cow := range cows {
		v := s.view(cow, pregnant[cow.ID])
		if status != "" && string(v.EffectiveStatus) != status {
			continue
		}
		views = append(views, *v)
	}
	return views, nil
}

// UpdateCow replaces the writable fields of a cow.
func (s *Service) UpdateCow(ctx context.Context, owner, id string, in CowInput) (*CowView, error) {
	cow, err := s.store.GetCow(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(cow); err != nil {
		return nil, err
	}
	cow.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateCow(ctx, cow); err != nil {
		return nil, duplicateTag(err, cow.TagNumber)
	}
	return s.GetCow(ctx, owner, id)
}

// DeleteCow removes a cow and its dependent records.
func (s *Service) DeleteCow(ctx context.Context, owner, id string) error {
	if err := s.store.DeleteCow(ctx, owner, id); err != nil {
		return err
	}
	s.logger.Info("cow deleted", zap.String("cow_id", id))
	return nil
}

func (s *Service) pregnantCows(ctx context.Context, owner string) (map[string]bool, error) {
	pregnancies, err := s.store.ListPregnancies(ctx, owner, repository.PregnancyFilter{Status: models.PregnancyConfirmed})
	if err != nil {
		return nil, fmt.Errorf("load pregnancies: %w", err)
	}
	out := make(map[string]bool, len(pregnancies))
	for _, p := range pregnancies {
		if s.carrying(p) {
			out[p.CowID] = true
		}
	}
	return out, nil
}

// carrying reports whether a confirmed pregnancy still counts. Pregnancies
// are never closed, so one whose calving date is more than CalvingGraceDays
// in the past is treated as over.
func (s *Service) carrying(p models.Pregnancy) bool {
	return !calendar.AddDays(p.ExpectedCalvingDate, CalvingGraceDays).Before(calendar.Day(s.now()))
}

func (s *Service) view(cow models.Cow, pregnant bool) *CowView {
	v := &CowView{Cow: cow, EffectiveStatus: models.EffectiveStatus(cow.Status, pregnant)}
	if cow.DateOfBirth != nil {
		age := calendar.AgeYears(*cow.DateOfBirth, s.now())
		v.AgeYears = &age
	}
	return v
}
