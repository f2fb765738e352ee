package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

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
	return s.insert(ctx, collBreeding, "insert breeding record", record)
}

func (s *Store) GetBreeding(ctx context.Context, owner, id string) (*models.BreedingRecord, error) {
	return getScoped[models.BreedingRecord](ctx, s, collBreeding, "get breeding record", owner, id)
}

func (s *Store) ListBreeding(ctx context.Context, owner string) ([]models.BreedingRecord, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	return findAll[models.BreedingRecord](ctx, s, collBreeding, "list breeding records", ownerFilter(owner),
		sortBy(bson.E{Key: "breeding_date", Value: -1}, bson.E{Key: "created_at", Value: -1}))
}

func (s *Store) MarkBreedingSuccess(ctx context.Context, owner, id string, at time.Time) error {
	return s.updateScoped(ctx, collBreeding, "mark breeding success", owner, id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "success", Value: true},
		{Key: "updated_at", Value: at},
	}}})
}

func (s *Store) DeleteBreeding(ctx context.Context, owner, id string) error {
	return s.deleteScoped(ctx, collBreeding, "delete breeding record", owner, id)
}

func (s *Store) CreatePregnancy(ctx context.Context, pregnancy *models.Pregnancy) error {
	if err := requireOwner(pregnancy.UserID); err != nil {
		return err
	}
	if pregnancy.ID == "" {
		pregnancy.ID = newID()
	}
	return s.insert(ctx, collPregnancy, "insert pregnancy", pregnancy)
}

func (s *Store) GetPregnancy(ctx context.Context, owner, id string) (*models.Pregnancy, error) {
	return getScoped[models.Pregnancy](ctx, s, collPregnancy, "get pregnancy", owner, id)
}

func (s *Store) ListPregnancies(ctx context.Context, owner string, filter repository.PregnancyFilter) ([]models.Pregnancy, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	return findAll[models.Pregnancy](ctx, s, collPregnancy, "list pregnancies", pregnancyQuery(owner, filter),
		sortBy(bson.E{Key: "expected_calving_date", Value: 1}))
}

func pregnancyQuery(owner string, filter repository.PregnancyFilter) bson.D {
	query := ownerFilter(owner)
	if filter.CowID != "" {
		query = append(query, bson.E{Key: "cow_id", Value: filter.CowID})
	}
	if filter.Status != "" {
		query = append(query, bson.E{Key: "pregnancy_status", Value: filter.Status})
	}
	return query
}
