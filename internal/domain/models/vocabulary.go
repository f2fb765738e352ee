package models

import (
	"regexp"
	"strings"
)

// CowStatus enumerates the lifecycle states of a cow.
type CowStatus string

const (
	CowActive   CowStatus = "active"
	CowPregnant CowStatus = "pregnant"
	CowDry      CowStatus = "dry"
	CowSold     CowStatus = "sold"
	CowDeceased CowStatus = "deceased"
)

// BullStatus enumerates the states of a breeding bull.
type BullStatus string

const (
	BullActive  BullStatus = "active"
	BullRetired BullStatus = "retired"
	BullSold    BullStatus = "sold"
)

// BreedingType distinguishes natural service from artificial insemination.
type BreedingType string

const (
	BreedingNatural    BreedingType = "natural"
	BreedingArtificial BreedingType = "artificial_insemination"
)

// PregnancyStatus is the state of a pregnancy record. Only confirmation is
// modelled; see ErrTransitionNotImplemented.
type PregnancyStatus string

const PregnancyConfirmed PregnancyStatus = "confirmed"

// MedicineType classifies an inventory item.
type MedicineType string

const (
	MedicineAntibiotic MedicineType = "antibiotic"
	MedicineVaccine    MedicineType = "vaccine"
	MedicineVitamin    MedicineType = "vitamin"
	MedicineHormone    MedicineType = "hormone"
	MedicineDewormer   MedicineType = "dewormer"
	MedicineOther      MedicineType = "other"
)

// MilkingTime is the session of the day a cow was milked.
type MilkingTime string

const (
	MilkingMorning   MilkingTime = "morning"
	MilkingAfternoon MilkingTime = "afternoon"
	MilkingEvening   MilkingTime = "evening"
)

// MilkQuality records the visual quality check of a milking.
type MilkQuality string

const (
	QualityNormal   MilkQuality = "normal"
	QualityAbnormal MilkQuality = "abnormal"
	QualityBloody   MilkQuality = "bloody"
	QualityWatery   MilkQuality = "watery"
)

// Priority ranks reminders.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ReminderTypeOther is used when a reminder is created without a type.
const ReminderTypeOther = "other"

var (
	CowStatuses     = []string{string(CowActive), string(CowPregnant), string(CowDry), string(CowSold), string(CowDeceased)}
	BullStatuses    = []string{string(BullActive), string(BullRetired), string(BullSold)}
	BreedingTypes   = []string{string(BreedingNatural), string(BreedingArtificial)}
	MedicineTypes   = []string{string(MedicineAntibiotic), string(MedicineVaccine), string(MedicineVitamin), string(MedicineHormone), string(MedicineDewormer), string(MedicineOther)}
	MedicineUnits   = []string{"ml", "g", "kg", "tablets", "doses"}
	MilkingTimes    = []string{string(MilkingMorning), string(MilkingAfternoon), string(MilkingEvening)}
	MilkQualities   = []string{string(QualityNormal), string(QualityAbnormal), string(QualityBloody), string(QualityWatery)}
	Priorities      = []string{string(PriorityLow), string(PriorityMedium), string(PriorityHigh)}
	KnownReminders  = []string{"breeding", "vaccination", "health_check", "dry_off", "calving", "medicine", "milking", "feeding", "maintenance", ReminderTypeOther}
	reminderTypeRex = regexp.MustCompile(`^[a-z][a-z0-9_]{0,31}$`)
)

// ValidateEnum rejects value when it is not one of allowed.
func ValidateEnum(field, value string, allowed []string) error {
	for _, candidate := range allowed {
		if value == candidate {
			return nil
		}
	}
	return InvalidEnumValue(field, value)
}

// Valid reports whether s belongs to the cow status vocabulary.
func (s CowStatus) Valid() bool { return ValidateEnum("status", string(s), CowStatuses) == nil }

// Terminal reports whether the cow has left the herd.
func (s CowStatus) Terminal() bool { return s == CowSold || s == CowDeceased }

func (s BullStatus) Valid() bool { return ValidateEnum("status", string(s), BullStatuses) == nil }

func (t BreedingType) Valid() bool { return ValidateEnum("breeding_type", string(t), BreedingTypes) == nil }

func (t MedicineType) Valid() bool { return ValidateEnum("type", string(t), MedicineTypes) == nil }

func (t MilkingTime) Valid() bool { return ValidateEnum("milking_time", string(t), MilkingTimes) == nil }

func (q MilkQuality) Valid() bool { return ValidateEnum("milk_quality", string(q), MilkQualities) == nil }

func (p Priority) Valid() bool { return ValidateEnum("priority", string(p), Priorities) == nil }

// NormalizeReminderType lower-cases the reminder type and falls back to
// "other" when empty. Reminder types are an open set, so any short snake_case
// token is accepted.
func NormalizeReminderType(value string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return ReminderTypeOther, nil
	}
	if !reminderTypeRex.MatchString(normalized) {
		return "", InvalidEnumValue("reminder_type", value)
	}
	return normalized, nil
}

// Vocabulary is the full set of enumerations exposed to clients.
func Vocabulary() map[string][]string {
	return map[string][]string{
		"cow_status":    CowStatuses,
		"bull_status":   BullStatuses,
		"breeding_type": BreedingTypes,
		"medicine_type": MedicineTypes,
		"medicine_unit": MedicineUnits,
		"milking_time":  MilkingTimes,
		"milk_quality":  MilkQualities,
		"priority":      Priorities,
		"reminder_type": KnownReminders,
	}
}
