package models

import "time"

// Cow is a dairy or breeding cow owned by one user.
type Cow struct {
	ID          string     `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	UserID      string     `gorm:"size:64;not null;uniqueIndex:idx_cows_owner_tag,priority:1" bson:"user_id" json:"-"`
	TagNumber   string     `gorm:"size:64;not null;uniqueIndex:idx_cows_owner_tag,priority:2" bson:"tag_number" json:"tag_number"`
	Name        string     `gorm:"size:128" bson:"name,omitempty" json:"name,omitempty"`
	Breed       string     `gorm:"size:64" bson:"breed,omitempty" json:"breed,omitempty"`
	DateOfBirth *time.Time `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	Status      CowStatus  `gorm:"size:16;not null;index" bson:"status" json:"status"`
	Color       string     `gorm:"size:64" bson:"color,omitempty" json:"color,omitempty"`
	WeightKg    *float64   `bson:"weight_kg,omitempty" json:"weight_kg,omitempty"`
	Notes       string     `gorm:"type:text" bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

func (Cow) TableName() string { return "cows" }

// DisplayName returns the cow name, or its tag when unnamed.
func (c Cow) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return "Cow #" + c.TagNumber
}

// EffectiveStatus derives the status readers should see from the stored
// status and whether the cow is carrying a confirmed pregnancy. Sold and
// deceased are terminal; otherwise the pregnancy table wins over the stored
// field. Callers decide when an unclosed pregnancy stops counting.
func EffectiveStatus(stored CowStatus, hasConfirmedPregnancy bool) CowStatus {
	switch {
	case stored.Terminal():
		return stored
	case hasConfirmedPregnancy:
		return CowPregnant
	case stored == CowPregnant:
		return CowActive
	default:
		return stored
	}
}

// Bull is a breeding bull.
type Bull struct {
	ID                 string     `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	UserID             string     `gorm:"size:64;not null;index" bson:"user_id" json:"-"`
	Name               string     `gorm:"size:128;not null" bson:"name" json:"name"`
	Breed              string     `gorm:"size:64" bson:"breed,omitempty" json:"breed,omitempty"`
	RegistrationNumber string     `gorm:"size:64" bson:"registration_number,omitempty" json:"registration_number,omitempty"`
	DateOfBirth        *time.Time `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	Status             BullStatus `gorm:"size:16;not null" bson:"status" json:"status"`
	Notes              string     `gorm:"type:text" bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt          time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `bson:"updated_at" json:"updated_at"`
}

func (Bull) TableName() string { return "bulls" }
