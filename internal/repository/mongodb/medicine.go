package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

func (s *Store) CreateMedicine(ctx context.Context, medicine *models.MedicineInventory) error {
	if err := requireOwner(medicine.UserID); err != nil {
		return err
	}
	if medicine.ID == "" {
		medicine.ID = newID()
	}
	return s.insert(ctx, collMedicine, "insert medicine", medicine)
}

func (s *Store) GetMedicine(ctx context.Context, owner, id string) (*models.MedicineInventory, error) {
	return getScoped[models.MedicineInventory](ctx, s, collMedicine, "get medicine", owner, id)
}

func (s *Store) ListMedicines(ctx context.Context, owner string) ([]models.MedicineInventory, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	return findAll[models.MedicineInventory](ctx, s, collMedicine, "list medicines", ownerFilter(owner), sortBy(bson.E{Key: "name", Value: 1}))
}

func (s *Store) UpdateMedicine(ctx context.Context, medicine *models.MedicineInventory) error {
	set := bson.D{
		{Key: "name", Value: medicine.Name},
		{Key: "type", Value: medicine.Type},
		{Key: "manufacturer", Value: medicine.Manufacturer},
		{Key: "batch_number", Value: medicine.BatchNumber},
		{Key: "quantity_remaining", Value: medicine.QuantityRemaining},
		{Key: "unit", Value: medicine.Unit},
		{Key: "storage_location", Value: medicine.StorageLocation},
		{Key: "notes", Value: medicine.Notes},
		{Key: "updated_at", Value: medicine.UpdatedAt},
	}
	var unset bson.D
	set, unset = optional(set, unset, "expiry_date", medicine.ExpiryDate)
	set, unset = optional(set, unset, "cost_per_unit", medicine.CostPerUnit)
	return s.updateScoped(ctx, collMedicine, "update medicine", medicine.UserID, medicine.ID, setUnset(set, unset))
}

func (s *Store) DeleteMedicine(ctx context.Context, owner, id string) error {
	return s.deleteScoped(ctx, collMedicine, "delete medicine", owner, id)
}

// DecrementMedicine lowers the stock with a single pipeline update so the
// read and the write happen in one server-side step.
func (s *Store) DecrementMedicine(ctx context.Context, owner, id string, amount float64, at time.Time) (float64, error) {
	if err := requireOwner(owner); err != nil {
		return 0, err
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.D{{Key: "quantity_remaining", Value: 1}})

	var updated models.MedicineInventory
	err := s.coll(collMedicine).
		FindOneAndUpdate(s.bind(ctx), scopedFilter(owner, id), decrementPipeline(amount, at), opts).
		Decode(&updated)
	if err != nil {
		return 0, translate("decrement medicine", err)
	}
	return updated.QuantityRemaining, nil
}

func decrementPipeline(amount float64, at time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "quantity_remaining", Value: bson.D{{Key: "$max", Value: bson.A{
				0.0,
				bson.D{{Key: "$subtract", Value: bson.A{"$quantity_remaining", amount}}},
			}}}},
			{Key: "updated_at", Value: at},
		}}},
	}
}

func (s *Store) CreateTreatment(ctx context.Context, treatment *models.MedicineTreatment) error {
	if err := requireOwner(treatment.UserID); err != nil {
		return err
	}
	if treatment.ID == "" {
		treatment.ID = newID()
	}
	return s.insert(ctx, collTreatments, "insert treatment", treatment)
}

func (s *Store) ListTreatments(ctx context.Context, owner string, filter repository.TreatmentFilter) ([]models.MedicineTreatment, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	query := ownerFilter(owner)
	if filter.CowID != "" {
		query = append(query, bson.E{Key: "cow_id", Value: filter.CowID})
	}
	opts := sortBy(bson.E{Key: "treatment_date", Value: -1}, bson.E{Key: "created_at", Value: -1})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	return findAll[models.MedicineTreatment](ctx, s, collTreatments, "list treatments", query, opts)
}
