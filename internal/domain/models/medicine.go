package models

import "time"

// MedicineInventory is a stocked medicine. QuantityRemaining never drops
// below zero.
type MedicineInventory struct {
	ID                string       `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	UserID            string       `gorm:"size:64;not null;index" bson:"user_id" json:"-"`
	Name              string       `gorm:"size:128;not null" bson:"name" json:"name"`
	Type              MedicineType `gorm:"size:16;not null" bson:"type" json:"type"`
	Manufacturer      string       `gorm:"size:128" bson:"manufacturer,omitempty" json:"manufacturer,omitempty"`
	BatchNumber       string       `gorm:"size:64" bson:"batch_number,omitempty" json:"batch_number,omitempty"`
	ExpiryDate        *time.Time   `bson:"expiry_date,omitempty" json:"expiry_date,omitempty"`
	QuantityRemaining float64      `gorm:"not null" bson:"quantity_remaining" json:"quantity_remaining"`
	Unit              string       `gorm:"size:16;not null" bson:"unit" json:"unit"`
	CostPerUnit       *float64     `bson:"cost_per_unit,omitempty" json:"cost_per_unit,omitempty"`
	StorageLocation   string       `gorm:"size:128" bson:"storage_location,omitempty" json:"storage_location,omitempty"`
	Notes             string       `gorm:"type:text" bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt         time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time    `bson:"updated_at" json:"updated_at"`
}

func (MedicineInventory) TableName() string { return "medicine_inventory" }

// MedicineTreatment records a dose given to a cow.
type MedicineTreatment struct {
	ID                   string     `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	UserID               string     `gorm:"size:64;not null;index" bson:"user_id" json:"-"`
	CowID                string     `gorm:"size:36;not null;index" bson:"cow_id" json:"cow_id"`
	MedicineID           string     `gorm:"size:36;not null;index" bson:"medicine_id" json:"medicine_id"`
	TreatmentDate        time.Time  `gorm:"not null" bson:"treatment_date" json:"treatment_date"`
	Dosage               float64    `gorm:"not null" bson:"dosage" json:"dosage"`
	Unit                 string     `gorm:"size:16;not null" bson:"unit" json:"unit"`
	Reason               string     `gorm:"size:255;not null" bson:"reason" json:"reason"`
	WithdrawalPeriodDays int        `gorm:"not null;default:0" bson:"withdrawal_period_days" json:"withdrawal_period_days"`
	WithdrawalEndDate    *time.Time `bson:"withdrawal_end_date,omitempty" json:"withdrawal_end_date"`
	AdministeredBy       string     `gorm:"size:128" bson:"administered_by,omitempty" json:"administered_by,omitempty"`
	Notes                string     `gorm:"type:text" bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt            time.Time  `bson:"created_at" json:"created_at"`
}

func (MedicineTreatment) TableName() string { return "medicine_treatments" }
