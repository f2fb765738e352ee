// Package repository defines the persistence contract shared by the SQL and
// MongoDB stores.
//
// Every record method takes the owner key as its first argument after the
// context and filters on it. A record owned by someone else is reported as
// models.ErrNotFound.
package repository

import (
	"context"
	"time"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

// CowFilter narrows cow listings.
type CowFilter struct {
	Status models.CowStatus
}

// PregnancyFilter narrows pregnancy listings.
type PregnancyFilter struct {
	CowID  string
	Status models.PregnancyStatus
}

// TreatmentFilter narrows treatment listings. Zero Limit means no limit.
type TreatmentFilter struct {
	CowID string
	Limit int
}

// MilkingFilter narrows milking listings by cow and by day range (inclusive).
type MilkingFilter struct {
	CowID string
	From  *time.Time
	To    *time.Time
	Limit int
}

// ReminderFilter narrows reminder listings.
type ReminderFilter struct {
	Completed *bool
	DueBefore *time.Time
}

// CowStore persists cows.
type CowStore interface {
	CreateCow(ctx context.Context, cow *models.Cow) error
	GetCow(ctx context.Context, owner, id string) (*models.Cow, error)
	ListCows(ctx context.Context, owner string, filter CowFilter) ([]models.Cow, error)
	UpdateCow(ctx context.Context, cow *models.Cow) error
	SetCowStatus(ctx context.Context, owner, id string, status models.CowStatus, at time.Time) error
	DeleteCow(ctx context.Context, owner, id string) error
}

// BullStore persists bulls.
type BullStore interface {
	CreateBull(ctx context.Context, bull *models.Bull) error
	GetBull(ctx context.Context, owner, id string) (*models.Bull, error)
	ListBulls(ctx context.Context, owner string) ([]models.Bull, error)
	UpdateBull(ctx context.Context, bull *models.Bull) error
	DeleteBull(ctx context.Context, owner, id string) error
}

// BreedingStore persists breeding records and pregnancies.
type BreedingStore interface {
	CreateBreeding(ctx context.Context, record *models.BreedingRecord) error
	GetBreeding(ctx context.Context, owner, id string) (*models.BreedingRecord, error)
	ListBreeding(ctx context.Context, owner string) ([]models.BreedingRecord, error)
	MarkBreedingSuccess(ctx context.Context, owner, id string, at time.Time) error
	DeleteBreeding(ctx context.Context, owner, id string) error

	CreatePregnancy(ctx context.Context, pregnancy *models.Pregnancy) error
	GetPregnancy(ctx context.Context, owner, id string) (*models.Pregnancy, error)
	ListPregnancies(ctx context.Context, owner string, filter PregnancyFilter) ([]models.Pregnancy, error)
}

// MedicineStore persists the medicine inventory and treatments.
type MedicineStore interface {
	CreateMedicine(ctx context.Context, medicine *models.MedicineInventory) error
	GetMedicine(ctx context.Context, owner, id string) (*models.MedicineInventory, error)
	ListMedicines(ctx context.Context, owner string) ([]models.MedicineInventory, error)
	UpdateMedicine(ctx context.Context, medicine *models.MedicineInventory) error
	DeleteMedicine(ctx context.Context, owner, id string) error
	// DecrementMedicine subtracts amount from the stock in a single atomic
	// store operation, flooring at zero, and returns the new quantity.
	DecrementMedicine(ctx context.Context, owner, id string, amount float64, at time.Time) (float64, error)

	CreateTreatment(ctx context.Context, treatment *models.MedicineTreatment) error
	ListTreatments(ctx context.Context, owner string, filter TreatmentFilter) ([]models.MedicineTreatment, error)
}

// MilkingStore persists milking records.
type MilkingStore interface {
	CreateMilking(ctx context.Context, record *models.MilkingRecord) error
	ListMilking(ctx context.Context, owner string, filter MilkingFilter) ([]models.MilkingRecord, error)
	DeleteMilking(ctx context.Context, owner, id string) error
}

// ReminderStore persists reminders.
type ReminderStore interface {
	CreateReminder(ctx context.Context, reminder *models.Reminder) error
	GetReminder(ctx context.Context, owner, id string) (*models.Reminder, error)
	ListReminders(ctx context.Context, owner string, filter ReminderFilter) ([]models.Reminder, error)
	UpdateReminder(ctx context.Context, reminder *models.Reminder) error
	CompleteReminder(ctx context.Context, owner, id string, at time.Time) error
	DeleteReminder(ctx context.Context, owner, id string) error
}

// AccountStore persists users and the sign-up allow-list. These are the
// only unscoped methods; they resolve the owner key itself.
type AccountStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	IsEmailAllowed(ctx context.Context, email string) (bool, error)
	AddAllowedEmail(ctx context.Context, email string) error
	RemoveAllowedEmail(ctx context.Context, email string) error
	ListAllowedEmails(ctx context.Context) ([]models.AllowedEmail, error)
}

// Store is the full persistence surface.
type Store interface {
	CowStore
	BullStore
	BreedingStore
	MedicineStore
	MilkingStore
	ReminderStore
	AccountStore

	// InTx runs fn against a store bound to one transaction when the backend
	// supports it. Atomic reports whether InTx actually rolls back.
	InTx(ctx context.Context, fn func(tx Store) error) error
	Atomic() bool

	Migrate(ctx context.Context) error
	Close(ctx context.Context) error
}
