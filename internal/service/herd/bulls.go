package herd

import (
	"context"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/service/fields"
)

// BullInput is the writable part of a bull.
type BullInput struct {
	Name               string `json:"name"`
	Breed              string `json:"breed"`
	RegistrationNumber string `json:"registration_number"`
	DateOfBirth        string `json:"date_of_birth"`
	Status             string `json:"status"`
	Notes              string `json:"notes"`
}

func (in BullInput) apply(bull *models.Bull) error {
	name, err := fields.Required("name", in.Name)
	if err != nil {
		return err
	}
	fallback := models.BullActive
	if bull.Status != "" {
		fallback = bull.Status
	}
	status, err := fields.Enum("status", in.Status, string(fallback), models.BullStatuses)
	if err != nil {
		return err
	}
	dob, err := fields.OptionalDay("date_of_birth", in.DateOfBirth)
	if err != nil {
		return err
	}
	bull.Name = name
	bull.Breed = in.Breed
	bull.RegistrationNumber = in.RegistrationNumber
	bull.DateOfBirth = dob
	bull.Status = models.BullStatus(status)
	bull.Notes = in.Notes
	return nil
}

func (s *Service) CreateBull(ctx context.Context, owner string, in BullInput) (*models.Bull, error) {
	now := s.now().UTC()
	bull := &models.Bull{UserID: owner, CreatedAt: now, UpdatedAt: now}
	if err := in.apply(bull); err != nil {
		return nil, err
	}
	if err := s.store.CreateBull(ctx, bull); err != nil {
		return nil, err
	}
	return bull, nil
}

func (s *Service) GetBull(ctx context.Context, owner, id string) (*models.Bull, error) {
	return s.store.GetBull(ctx, owner, id)
}

func (s *Service) ListBulls(ctx context.Context, owner string) ([]models.Bull, error) {
	return s.store.ListBulls(ctx, owner)
}

func (s *Service) UpdateBull(ctx context.Context, owner, id string, in BullInput) (*models.Bull, error) {
	bull, err := s.store.GetBull(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(bull); err != nil {
		return nil, err
	}
	bull.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateBull(ctx, bull); err != nil {
		return nil, err
	}
	return bull, nil
}

// DeleteBull removes the bull; breeding records keep their history without
// the bull reference.
func (s *Service) DeleteBull(ctx context.Context, owner, id string) error {
	return s.store.DeleteBull(ctx, owner, id)
}
