package models

import "time"

// MilkingRecord captures one milking session of a cow.
type MilkingRecord struct {
	ID              string      `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	UserID          string      `gorm:"size:64;not null;index:idx_milking_owner_date,priority:1" bson:"user_id" json:"-"`
	CowID           string      `gorm:"size:36;not null;index" bson:"cow_id" json:"cow_id"`
	MilkingDate     time.Time   `gorm:"not null;index:idx_milking_owner_date,priority:2" bson:"milking_date" json:"milking_date"`
	MilkingTime     MilkingTime `gorm:"size:16;not null" bson:"milking_time" json:"milking_time"`
	MilkYieldLiters float64     `gorm:"not null" bson:"milk_yield_liters" json:"milk_yield_liters"`
	MilkQuality     MilkQuality `gorm:"size:16;not null" bson:"milk_quality" json:"milk_quality"`
	Notes           string      `gorm:"type:text" bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time   `bson:"created_at" json:"created_at"`
}

func (MilkingRecord) TableName() string { return "milking_records" }

// MilkingSummary aggregates the yield of one day.
type MilkingSummary struct {
	Date        time.Time               `json:"date"`
	TotalLiters float64                 `json:"total_liters"`
	Records     int                     `json:"records"`
	ByTime      map[MilkingTime]float64 `json:"by_time"`
}

// Reminder is a farm task with a due date.
type Reminder struct {
	ID            string     `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	UserID        string     `gorm:"size:64;not null;index" bson:"user_id" json:"-"`
	Title         string     `gorm:"size:255;not null" bson:"title" json:"title"`
	Description   string     `gorm:"type:text" bson:"description,omitempty" json:"description,omitempty"`
	DueDate       time.Time  `gorm:"not null;index" bson:"due_date" json:"due_date"`
	Priority      Priority   `gorm:"size:16;not null" bson:"priority" json:"priority"`
	ReminderType  string     `gorm:"size:32;not null" bson:"reminder_type" json:"reminder_type"`
	CowID         *string    `gorm:"size:36" bson:"cow_id,omitempty" json:"cow_id,omitempty"`
	Completed     bool       `gorm:"not null;default:false" bson:"completed" json:"completed"`
	CompletedDate *time.Time `bson:"completed_date,omitempty" json:"completed_date,omitempty"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `bson:"updated_at" json:"updated_at"`
}

func (Reminder) TableName() string { return "reminders" }

// User is an account allowed to keep records. Email is stored lower-cased.
type User struct {
	ID            string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Email         string    `gorm:"size:255;not null;uniqueIndex" bson:"email" json:"email"`
	PasswordHash  string    `gorm:"size:255;not null" bson:"password_hash" json:"-"`
	FullName      string    `gorm:"size:128" bson:"full_name,omitempty" json:"full_name,omitempty"`
	FarmName      string    `gorm:"size:128" bson:"farm_name,omitempty" json:"farm_name,omitempty"`
	WhatsAppPhone string    `gorm:"column:whatsapp_phone;size:32;index" bson:"whatsapp_phone,omitempty" json:"whatsapp_phone,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

func (User) TableName() string { return "users" }

// AllowedEmail is one entry of the sign-up allow-list.
type AllowedEmail struct {
	Email     string    `gorm:"primaryKey;size:255" bson:"_id" json:"email"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func (AllowedEmail) TableName() string { return "allowed_emails" }
