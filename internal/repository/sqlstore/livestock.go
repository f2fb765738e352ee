package sqlstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

// CreateCow inserts a cow. The tag number must be unique for the owner.
func (s *Store) CreateCow(ctx context.Context, cow *models.Cow) error {
	if err := requireOwner(cow.UserID); err != nil {
		return err
	}
	if cow.ID == "" {
		cow.ID = newID()
	}
	return create(ctx, s.db, "insert cow", cow)
}

func (s *Store) GetCow(ctx context.Context, owner, id string) (*models.Cow, error) {
	return getScoped[models.Cow](ctx, s.db, "get cow", owner, id)
}

func (s *Store) ListCows(ctx context.Context, owner string, filter repository.CowFilter) ([]models.Cow, error) {
	return listOwned[models.Cow](ctx, s.db, "list cows", owner, func(q *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		return q.Order("tag_number asc")
	})
}

func (s *Store) UpdateCow(ctx context.Context, cow *models.Cow) error {
	return updateScoped[models.Cow](ctx, s.db, "update cow", cow.UserID, cow.ID, map[string]interface{}{
		"tag_number":    cow.TagNumber,
		"name":          cow.Name,
		"breed":         cow.Breed,
		"date_of_birth": cow.DateOfBirth,
		"status":        cow.Status,
		"color":         cow.Color,
		"weight_kg":     cow.WeightKg,
		"notes":         cow.Notes,
		"updated_at":    cow.UpdatedAt,
	})
}

func (s *Store) SetCowStatus(ctx context.Context, owner, id string, status models.CowStatus, at time.Time) error {
	return updateScoped[models.Cow](ctx, s.db, "set cow status", owner, id, map[string]interface{}{
		"status":     status,
		"updated_at": at,
	})
}

// DeleteCow removes the cow together with the records that only make sense
// for it. Reminders survive with their cow reference cleared.
func (s *Store) DeleteCow(ctx context.Context, owner, id string) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteScoped[models.Cow](ctx, tx, "delete cow", owner, id); err != nil {
			return err
		}
		for _, dependent := range []interface{}{
			&models.BreedingRecord{},
			&models.Pregnancy{},
			&models.MedicineTreatment{},
			&models.MilkingRecord{},
		} {
			if err := tx.Where("cow_id = ? AND user_id = ?", id, owner).Delete(dependent).Error; err != nil {
				return translate("delete cow records", err)
			}
		}
		err := tx.Model(&models.Reminder{}).
			Where("cow_id = ? AND user_id = ?", id, owner).
			Update("cow_id", nil).Error
		return translate("detach cow reminders", err)
	})
}

func (s *Store) CreateBull(ctx context.Context, bull *models.Bull) error {
	if err := requireOwner(bull.UserID); err != nil {
		return err
	}
	if bull.ID == "" {
		bull.ID = newID()
	}
	return create(ctx, s.db, "insert bull", bull)
}

func (s *Store) GetBull(ctx context.Context, owner, id string) (*models.Bull, error) {
	return getScoped[models.Bull](ctx, s.db, "get bull", owner, id)
}

func (s *Store) ListBulls(ctx context.Context, owner string) ([]models.Bull, error) {
	return listOwned[models.Bull](ctx, s.db, "list bulls", owner, func(q *gorm.DB) *gorm.DB {
		return q.Order("name asc")
	})
}

func (s *Store) UpdateBull(ctx context.Context, bull *models.Bull) error {
	return updateScoped[models.Bull](ctx, s.db, "update bull", bull.UserID, bull.ID, map[string]interface{}{
		"name":                bull.Name,
		"breed":               bull.Breed,
		"registration_number": bull.RegistrationNumber,
		"date_of_birth":       bull.DateOfBirth,
		"status":              bull.Status,
		"notes":               bull.Notes,
		"updated_at":          bull.UpdatedAt,
	})
}

// DeleteBull removes the bull and clears it from breeding records.
func (s *Store) DeleteBull(ctx context.Context, owner, id string) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteScoped[models.Bull](ctx, tx, "delete bull", owner, id); err != nil {
			return err
		}
		err := tx.Model(&models.BreedingRecord{}).
			Where("bull_id = ? AND user_id = ?", id, owner).
			Update("bull_id", nil).Error
		return translate("detach bull breeding", err)
	})
}
