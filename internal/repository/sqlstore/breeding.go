package sqlstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

func (s *Store) CreateBreeding(ctx context.Context, record *models.BreedingRecord) error {
	if err := requireOwner(record.UserID); err != nil {
		return err
	}
	if record.ID == "" {
		record.ID = newID()
	}
	return create(ctx, s.db, "insert breeding record", record)
}

func (s *Store) GetBreeding(ctx context.Context, owner, id string) (*models.BreedingRecord, error) {
	return getScoped[models.BreedingRecord](ctx, s.db, "get breeding record", owner, id)
}

func (s *Store) ListBreeding(ctx context.Context, owner string) ([]models.BreedingRecord, error) {
	return listOwned[models.BreedingRecord](ctx, s.db, "list breeding records", owner, func(q *gorm.DB) *gorm.DB {
		return q.Order("breeding_date desc").Order("created_at desc")
	})
}

// MarkBreedingSuccess sets success to true. It is the only write path for
// that column.
func (s *Store) MarkBreedingSuccess(ctx context.Context, owner, id string, at time.Time) error {
	return updateScoped[models.BreedingRecord](ctx, s.db, "mark breeding success", owner, id, map[string]interface{}{
		"success":    true,
		"updated_at": at,
	})
}

func (s *Store) DeleteBreeding(ctx context.Context, owner, id string) error {
	return deleteScoped[models.BreedingRecord](ctx, s.db, "delete breeding record", owner, id)
}

func (s *Store) CreatePregnancy(ctx context.Context, pregnancy *models.Pregnancy) error {
	if err := requireOwner(pregnancy.UserID); err != nil {
		return err
	}
	if pregnancy.ID == "" {
		pregnancy.ID = newID()
	}
	return create(ctx, s.db, "insert pregnancy", pregnancy)
}

func (s *Store) GetPregnancy(ctx context.Context, owner, id string) (*models.Pregnancy, error) {
	return getScoped[models.Pregnancy](ctx, s.db, "get pregnancy", owner, id)
}

func (s *Store) ListPregnancies(ctx context.Context, owner string, filter repository.PregnancyFilter) ([]models.Pregnancy, error) {
	return listOwned[models.Pregnancy](ctx, s.db, "list pregnancies", owner, func(q *gorm.DB) *gorm.DB {
		if filter.CowID != "" {
			q = q.Where("cow_id = ?", filter.CowID)
		}
		if filter.Status != "" {
			q = q.Where("pregnancy_status = ?", filter.Status)
		}
		return q.Order("expected_calving_date asc")
	})
}
