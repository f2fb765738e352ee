package sqlstore

import (
	"context"
	"time"

	"gorm.io/gorm"

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
	return create(ctx, s.db, "insert medicine", medicine)
}

func (s *Store) GetMedicine(ctx context.Context, owner, id string) (*models.MedicineInventory, error) {
	return getScoped[models.MedicineInventory](ctx, s.db, "get medicine", owner, id)
}

func (s *Store) ListMedicines(ctx context.Context, owner string) ([]models.MedicineInventory, error) {
	return listOwned[models.MedicineInventory](ctx, s.db, "list medicines", owner, func(q *gorm.DB) *gorm.DB {
		return q.Order("name asc")
	})
}

func (s *Store) UpdateMedicine(ctx context.Context, medicine *models.MedicineInventory) error {
	return updateScoped[models.MedicineInventory](ctx, s.db, "update medicine", medicine.UserID, medicine.ID, map[string]interface{}{
		"name":               medicine.Name,
		"type":               medicine.Type,
		"manufacturer":       medicine.Manufacturer,
		"batch_number":       medicine.BatchNumber,
		"expiry_date":        medicine.ExpiryDate,
		"quantity_remaining": medicine.QuantityRemaining,
		"unit":               medicine.Unit,
		"cost_per_unit":      medicine.CostPerUnit,
		"storage_location":   medicine.StorageLocation,
		"notes":              medicine.Notes,
		"updated_at":         medicine.UpdatedAt,
	})
}

func (s *Store) DeleteMedicine(ctx context.Context, owner, id string) error {
	return deleteScoped[models.MedicineInventory](ctx, s.db, "delete medicine", owner, id)
}

// DecrementMedicine lowers the stock with one conditional UPDATE so two
// concurrent treatments cannot both read the old quantity.
func (s *Store) DecrementMedicine(ctx context.Context, owner, id string, amount float64, at time.Time) (float64, error) {
	var remaining float64
	err := s.InTx(ctx, func(txStore repository.Store) error {
		tx := txStore.(*Store).db
		err := updateScoped[models.MedicineInventory](ctx, tx, "decrement medicine", owner, id, map[string]interface{}{
			"quantity_remaining": gorm.Expr("CASE WHEN quantity_remaining > ? THEN quantity_remaining - ? ELSE 0 END", amount, amount),
			"updated_at":         at,
		})
		if err != nil {
			return err
		}
		var medicine models.MedicineInventory
		if err := scoped(tx.WithContext(ctx), owner, id).Select("quantity_remaining").First(&medicine).Error; err != nil {
			return translate("read medicine stock", err)
		}
		remaining = medicine.QuantityRemaining
		return nil
	})
	return remaining, err
}

func (s *Store) CreateTreatment(ctx context.Context, treatment *models.MedicineTreatment) error {
	if err := requireOwner(treatment.UserID); err != nil {
		return err
	}
	if treatment.ID == "" {
		treatment.ID = newID()
	}
	return create(ctx, s.db, "insert treatment", treatment)
}

func (s *Store) ListTreatments(ctx context.Context, owner string, filter repository.TreatmentFilter) ([]models.MedicineTreatment, error) {
	return listOwned[models.MedicineTreatment](ctx, s.db, "list treatments", owner, func(q *gorm.DB) *gorm.DB {
		if filter.CowID != "" {
			q = q.Where("cow_id = ?", filter.CowID)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		return q.Order("treatment_date desc").Order("created_at desc")
	})
}
