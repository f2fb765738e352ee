package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

// CreateCow inserts a cow. The unique index rejects a tag already used by
// the same owner.
func (s *Store) CreateCow(ctx context.Context, cow *models.Cow) error {
	if err := requireOwner(cow.UserID); err != nil {
		return err
	}
	if cow.ID == "" {
		cow.ID = newID()
	}
	return s.insert(ctx, collCows, "insert cow", cow)
}

func (s *Store) GetCow(ctx context.Context, owner, id string) (*models.Cow, error) {
	return getScoped[models.Cow](ctx, s, collCows, "get cow", owner, id)
}

func (s *Store) ListCows(ctx context.Context, owner string, filter repository.CowFilter) ([]models.Cow, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	query := ownerFilter(owner)
	if filter.Status != "" {
		query = append(query, bson.E{Key: "status", Value: filter.Status})
	}
	return findAll[models.Cow](ctx, s, collCows, "list cows", query, sortBy(bson.E{Key: "tag_number", Value: 1}))
}

func (s *Store) UpdateCow(ctx context.Context, cow *models.Cow) error {
	set := bson.D{
		{Key: "tag_number", Value: cow.TagNumber},
		{Key: "name", Value: cow.Name},
		{Key: "breed", Value: cow.Breed},
		{Key: "status", Value: cow.Status},
		{Key: "color", Value: cow.Color},
		{Key: "notes", Value: cow.Notes},
		{Key: "updated_at", Value: cow.UpdatedAt},
	}
	var unset bson.D
	set, unset = optional(set, unset, "date_of_birth", cow.DateOfBirth)
	set, unset = optional(set, unset, "weight_kg", cow.WeightKg)
	return s.updateScoped(ctx, collCows, "update cow", cow.UserID, cow.ID, setUnset(set, unset))
}

func (s *Store) SetCowStatus(ctx context.Context, owner, id string, status models.CowStatus, at time.Time) error {
	return s.updateScoped(ctx, collCows, "set cow status", owner, id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: status},
		{Key: "updated_at", Value: at},
	}}})
}

// DeleteCow removes the cow and its dependent records, and detaches its
// reminders.
func (s *Store) DeleteCow(ctx context.Context, owner, id string) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	return s.InTx(ctx, func(txStore repository.Store) error {
		tx := txStore.(*Store)
		if err := tx.deleteScoped(ctx, collCows, "delete cow", owner, id); err != nil {
			return err
		}
		byCow := bson.D{{Key: "cow_id", Value: id}, {Key: "user_id", Value: owner}}
		for _, coll := range []string{collBreeding, collPregnancy, collTreatments, collMilking} {
			if _, err := tx.coll(coll).DeleteMany(tx.bind(ctx), byCow); err != nil {
				return translate("delete cow records", err)
			}
		}
		_, err := tx.coll(collReminders).UpdateMany(tx.bind(ctx), byCow, bson.D{{Key: "$unset", Value: bson.D{{Key: "cow_id", Value: ""}}}})
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
	return s.insert(ctx, collBulls, "insert bull", bull)
}

func (s *Store) GetBull(ctx context.Context, owner, id string) (*models.Bull, error) {
	return getScoped[models.Bull](ctx, s, collBulls, "get bull", owner, id)
}

func (s *Store) ListBulls(ctx context.Context, owner string) ([]models.Bull, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	return findAll[models.Bull](ctx, s, collBulls, "list bulls", ownerFilter(owner), sortBy(bson.E{Key: "name", Value: 1}))
}

func (s *Store) UpdateBull(ctx context.Context, bull *models.Bull) error {
	set := bson.D{
		{Key: "name", Value: bull.Name},
		{Key: "breed", Value: bull.Breed},
		{Key: "registration_number", Value: bull.RegistrationNumber},
		{Key: "status", Value: bull.Status},
		{Key: "notes", Value: bull.Notes},
		{Key: "updated_at", Value: bull.UpdatedAt},
	}
	var unset bson.D
	set, unset = optional(set, unset, "date_of_birth", bull.DateOfBirth)
	return s.updateScoped(ctx, collBulls, "update bull", bull.UserID, bull.ID, setUnset(set, unset))
}

// DeleteBull removes the bull and clears it from breeding records.
func (s *Store) DeleteBull(ctx context.Context, owner, id string) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	return s.InTx(ctx, func(txStore repository.Store) error {
		tx := txStore.(*Store)
		if err := tx.deleteScoped(ctx, collBulls, "delete bull", owner, id); err != nil {
			return err
		}
		_, err := tx.coll(collBreeding).UpdateMany(tx.bind(ctx),
			bson.D{{Key: "bull_id", Value: id}, {Key: "user_id", Value: owner}},
			bson.D{{Key: "$unset", Value: bson.D{{Key: "bull_id", Value: ""}}}})
		return translate("detach bull breeding", err)
	})
}

// optional routes a nullable field to $set or $unset.
func optional[T any](set, unset bson.D, key string, value *T) (bson.D, bson.D) {
	if value == nil {
		return set, append(unset, bson.E{Key: key, Value: ""})
	}
	return append(set, bson.E{Key: key, Value: *value}), unset
}

func setUnset(set, unset bson.D) bson.D {
	update := bson.D{{Key: "$set", Value: set}}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}
	return update
}
