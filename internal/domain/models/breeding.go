package models

import "time"

// BreedingRecord captures one service of a cow, natural or artificial.
// Success stays nil until a pregnancy referencing the record is confirmed.
type BreedingRecord struct {
	ID             string       `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	UserID         string       `gorm:"size:64;not null;index" bson:"user_id" json:"-"`
	CowID          string       `gorm:"size:36;not null;index" bson:"cow_id" json:"cow_id"`
	BreedingDate   time.Time    `gorm:"not null" bson:"breeding_date" json:"breeding_date"`
	BreedingType   BreedingType `gorm:"size:32;not null" bson:"breeding_type" json:"breeding_type"`
	BullID         *string      `gorm:"size:36" bson:"bull_id,omitempty" json:"bull_id,omitempty"`
	SemenBatch     string       `gorm:"size:64" bson:"semen_batch,omitempty" json:"semen_batch,omitempty"`
	TechnicianName string       `gorm:"size:128" bson:"technician_name,omitempty" json:"technician_name,omitempty"`
	Success        *bool        `bson:"success" json:"success"`
	Notes          string       `gorm:"type:text" bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt      time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `bson:"updated_at" json:"updated_at"`
}

func (BreedingRecord) TableName() string { return "breeding_records" }

// Pregnancy is created once per confirmed pregnancy.
type Pregnancy struct {
	ID                  string          `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	UserID              string          `gorm:"size:64;not null;index" bson:"user_id" json:"-"`
	CowID               string          `gorm:"size:36;not null;index" bson:"cow_id" json:"cow_id"`
	BreedingRecordID    *string         `gorm:"size:36" bson:"breeding_record_id,omitempty" json:"breeding_record_id,omitempty"`
	ConceptionDate      time.Time       `gorm:"not null" bson:"conception_date" json:"conception_date"`
	ExpectedCalvingDate time.Time       `gorm:"not null;index" bson:"expected_calving_date" json:"expected_calving_date"`
	PregnancyStatus     PregnancyStatus `gorm:"size:16;not null" bson:"pregnancy_status" json:"pregnancy_status"`
	Notes               string          `gorm:"type:text" bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt           time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time       `bson:"updated_at" json:"updated_at"`
}

func (Pregnancy) TableName() string { return "pregnancies" }
