// Package medicine manages the medicine inventory and the treatments that
// draw it down.
package medicine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/calendar"
	"github.com/mamadbah2/herdbook/internal/domain/inventory"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/metrics"
	"github.com/mamadbah2/herdbook/internal/repository"
	"github.com/mamadbah2/herdbook/internal/service/fields"
)

// Service implements inventory and treatment operations.
type Service struct {
	store    repository.Store
	recorder metrics.Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a medicine service.
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

// MedicineInput is the writable part of an inventory item.
type MedicineInput struct {
	Name              string   `json:"name"`
	Type              string   `json:"type"`
	Manufacturer      string   `json:"manufacturer"`
	BatchNumber       string   `json:"batch_number"`
	ExpiryDate        string   `json:"expiry_date"`
	QuantityRemaining *float64 `json:"quantity_remaining"`
	Unit              string   `json:"unit"`
	CostPerUnit       *float64 `json:"cost_per_unit"`
	StorageLocation   string   `json:"storage_location"`
	Notes             string   `json:"notes"`
}

// MedicineView decorates an inventory item with its stock and expiry state.
type MedicineView struct {
	models.MedicineInventory
	DaysUntilExpiry *int `json:"days_until_expiry,omitempty"`
	ExpiringSoon    bool `json:"expiring_soon"`
	Expired         bool `json:"expired"`
	LowStock        bool `json:"low_stock"`
}

// Alerts groups the inventory items that need attention.
type Alerts struct {
	LowStock     []MedicineView `json:"low_stock"`
	ExpiringSoon []MedicineView `json:"expiring_soon"`
	Expired      []MedicineView `json:"expired"`
}

// Empty reports whether no item needs attention.
func (a Alerts) Empty() bool {
	return len(a.LowStock) == 0 && len(a.ExpiringSoon) == 0 && len(a.Expired) == 0
}

func (in MedicineInput) apply(m *models.MedicineInventory) error {
	name, err := fields.Required("name", in.Name)
	if err != nil {
		return err
	}
	kind, err := fields.Enum("type", in.Type, "", models.MedicineTypes)
	if err != nil {
		return err
	}
	unit, err := fields.Enum("unit", in.Unit, "", models.MedicineUnits)
	if err != nil {
		return err
	}
	expiry, err := fields.OptionalDay("expiry_date", in.ExpiryDate)
	if err != nil {
		return err
	}
	if in.QuantityRemaining == nil {
		return models.MissingField("quantity_remaining")
	}
	if err := inventory.ValidateQuantity(*in.QuantityRemaining); err != nil {
		return err
	}
	if err := fields.OptionalNonNegative("cost_per_unit", in.CostPerUnit); err != nil {
		return err
	}

	m.Name = name
	m.Type = models.MedicineType(kind)
	m.Manufacturer = in.Manufacturer
	m.BatchNumber = in.BatchNumber
	m.ExpiryDate = expiry
	m.QuantityRemaining = *in.QuantityRemaining
	m.Unit = unit
	m.CostPerUnit = in.CostPerUnit
	m.StorageLocation = in.StorageLocation
	m.Notes = in.Notes
	return nil
}

func (s *Service) CreateMedicine(ctx context.Context, owner string, in MedicineInput) (*MedicineView, error) {
	now := s.now().UTC()
	m := &models.MedicineInventory{UserID: owner, CreatedAt: now, UpdatedAt: now}
	if err := in.apply(m); err != nil {
		return nil, err
	}
	if err := s.store.CreateMedicine(ctx, m); err != nil {
		return nil, err
	}
	s.logger.Info("medicine stocked", zap.String("medicine_id", m.ID), zap.String("name", m.Name))
	return s.view(*m), nil
}

func (s *Service) GetMedicine(ctx context.Context, owner, id string) (*MedicineView, error) {
	m, err := s.store.GetMedicine(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	return s.view(*m), nil
}

// ListMedicines returns the inventory ordered by name.
func (s *Service) ListMedicines(ctx context.Context, owner string) ([]MedicineView, error) {
	items, err := s.store.ListMedicines(ctx, owner)
	if err != nil {
		return nil, err
	}
	views := make([]MedicineView, 0, len(items))
	for _, m := range items {
		views = append(views, *s.view(m))
	}
	return views, nil
}

func (s *Service) UpdateMedicine(ctx context.Context, owner, id string, in MedicineInput) (*MedicineView, error) {
	m, err := s.store.GetMedicine(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(m); err != nil {
		return nil, err
	}
	m.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateMedicine(ctx, m); err != nil {
		return nil, err
	}
	return s.view(*m), nil
}

func (s *Service) DeleteMedicine(ctx context.Context, owner, id string) error {
	return s.store.DeleteMedicine(ctx, owner, id)
}

// Alerts lists low-stock, expiring and expired items. An item can appear in
// the stock list and one of the expiry lists at the same time.
func (s *Service) Alerts(ctx context.Context, owner string) (*Alerts, error) {
	items, err := s.ListMedicines(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	alerts := &Alerts{LowStock: []MedicineView{}, ExpiringSoon: []MedicineView{}, Expired: []MedicineView{}}
	for _, item := range items {
		if item.LowStock {
			alerts.LowStock = append(alerts.LowStock, item)
		}
		switch {
		case item.Expired:
			alerts.Expired = append(alerts.Expired, item)
		case item.ExpiringSoon:
			alerts.ExpiringSoon = append(alerts.ExpiringSoon, item)
		}
	}
	return alerts, nil
}

func (s *Service) view(m models.MedicineInventory) *MedicineView {
	v := &MedicineView{MedicineInventory: m, LowStock: inventory.IsLowStock(m.QuantityRemaining)}
	if m.ExpiryDate != nil {
		now := s.now()
		days := calendar.DaysUntil(*m.ExpiryDate, now)
		v.DaysUntilExpiry = &days
		v.Expired = calendar.IsExpired(*m.ExpiryDate, now)
		v.ExpiringSoon = calendar.IsExpiringSoon(*m.ExpiryDate, now)
	}
	return v
}
