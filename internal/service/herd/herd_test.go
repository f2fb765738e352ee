package herd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository/sqlstore"
	"github.com/mamadbah2/herdbook/internal/repository/sqlstore/sqlstoretest"
)

var (
	ctx   = context.Background()
	clock = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)
)

func newService(t *testing.T) (*Service, *sqlstore.Store) {
	t.Helper()
	store := sqlstoretest.New(t)
	return NewService(store, nil).WithClock(func() time.Time { return clock }), store
}

func TestCreateCow_DefaultsAndAge(t *testing.T) {
	svc, _ := newService(t)
	cow, err := svc.CreateCow(ctx, "u", CowInput{TagNumber: " 007 ", Name: "Bella", DateOfBirth: "2020-05-11"})
	if err != nil {
		t.Fatalf("CreateCow: %v", err)
	}
	if cow.TagNumber != "007" || cow.Status != models.CowActive || cow.EffectiveStatus != models.CowActive {
		t.Errorf("cow = %+v", cow)
	}
	if cow.AgeYears == nil || *cow.AgeYears != 3 {
		t.Errorf("age = %v, want 3", cow.AgeYears)
	}
}

func TestCreateCow_Validation(t *testing.T) {
	svc, _ := newService(t)
	tests := []struct {
		name  string
		in    CowInput
		field string
	}{
		{"missing tag", CowInput{}, "tag_number"},
		{"bad status", CowInput{TagNumber: "1", Status: "missing"}, "status"},
		{"bad birth date", CowInput{TagNumber: "1", DateOfBirth: "yesterday"}, "date_of_birth"},
		{"negative weight", CowInput{TagNumber: "1", WeightKg: func() *float64 { w := -3.0; return &w }()}, "weight_kg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCow(ctx, "u", tt.in)
			var verr *models.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("error = %v, want validation on %s", err, tt.field)
			}
		})
	}
}

func TestCreateCow_DuplicateTagIsValidationError(t *testing.T) {
	svc, _ := newService(t)
	if _, err := svc.CreateCow(ctx, "u", CowInput{TagNumber: "007"}); err != nil {
		t.Fatalf("CreateCow: %v", err)
	}
	_, err := svc.CreateCow(ctx, "u", CowInput{TagNumber: "007"})
	var verr *models.ValidationError
	if !errors.As(err, &verr) || verr.Field != "tag_number" {
		t.Fatalf("error = %v, want tag_number validation", err)
	}
}

func TestEffectiveStatusFollowsPregnancies(t *testing.T) {
	svc, store := newService(t)
	pregnant, _ := svc.CreateCow(ctx, "u", CowInput{TagNumber: "001"})
	stale, _ := svc.CreateCow(ctx, "u", CowInput{TagNumber: "002", Status: "pregnant"})
	sold, _ := svc.CreateCow(ctx, "u", CowInput{TagNumber: "003", Status: "sold"})

	for _, id := range []string{pregnant.ID, sold.ID} {
		p := &models.Pregnancy{UserID: "u", CowID: id, ConceptionDate: clock, ExpectedCalvingDate: clock.AddDate(0, 9, 0), PregnancyStatus: models.PregnancyConfirmed}
		if err := store.CreatePregnancy(ctx, p); err != nil {
			t.Fatalf("CreatePregnancy: %v", err)
		}
	}

	got, err := svc.GetCow(ctx, "u", pregnant.ID)
	if err != nil {
		t.Fatalf("GetCow: %v", err)
	}
	if got.EffectiveStatus != models.CowPregnant {
		t.Errorf("cow with pregnancy = %s, want pregnant", got.EffectiveStatus)
	}

	got, _ = svc.GetCow(ctx, "u", stale.ID)
	if got.EffectiveStatus != models.CowActive {
		t.Errorf("stored pregnant without pregnancy = %s, want active", got.EffectiveStatus)
	}

	got, _ = svc.GetCow(ctx, "u", sold.ID)
	if got.EffectiveStatus != models.CowSold {
		t.Errorf("sold cow = %s, want sold", got.EffectiveStatus)
	}

	list, err := svc.ListCows(ctx, "u", "pregnant")
	if err != nil {
		t.Fatalf("ListCows: %v", err)
	}
	if len(list) != 1 || list[0].ID != pregnant.ID {
		t.Errorf("pregnant filter = %+v", list)
	}

	if _, err := svc.ListCows(ctx, "u", "flying"); err == nil {
		t.Error("unknown status filter accepted")
	}
}

func TestEffectiveStatus_StalePregnancyStopsCounting(t *testing.T) {
	svc, store := newService(t)
	calved, _ := svc.CreateCow(ctx, "u", CowInput{TagNumber: "010", Status: "dry"})
	late, _ := svc.CreateCow(ctx, "u", CowInput{TagNumber: "011"})

	pregnancies := map[string]time.Time{
		calved.ID: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		late.ID:   time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), // exactly CalvingGraceDays ago
	}
	for id, calving := range pregnancies {
		p := &models.Pregnancy{UserID: "u", CowID: id, ConceptionDate: calving.AddDate(0, 0, -283), ExpectedCalvingDate: calving, PregnancyStatus: models.PregnancyConfirmed}
		if err := store.CreatePregnancy(ctx, p); err != nil {
			t.Fatalf("CreatePregnancy: %v", err)
		}
	}

	got, err := svc.GetCow(ctx, "u", calved.ID)
	if err != nil {
		t.Fatalf("GetCow: %v", err)
	}
	if got.EffectiveStatus != models.CowDry {
		t.Errorf("cow past calving = %s, want dry", got.EffectiveStatus)
	}
	got, _ = svc.GetCow(ctx, "u", late.ID)
	if got.EffectiveStatus != models.CowPregnant {
		t.Errorf("cow within grace = %s, want pregnant", got.EffectiveStatus)
	}

	dry, err := svc.ListCows(ctx, "u", "dry")
	if err != nil {
		t.Fatalf("ListCows: %v", err)
	}
	if len(dry) != 1 || dry[0].ID != calved.ID {
		t.Errorf("dry filter = %+v", dry)
	}
}

func TestUpdateCow_KeepsStatusWhenBlank(t *testing.T) {
	svc, _ := newService(t)
	cow, _ := svc.CreateCow(ctx, "u", CowInput{TagNumber: "001", Status: "dry"})

	updated, err := svc.UpdateCow(ctx, "u", cow.ID, CowInput{TagNumber: "001", Name: "Daisy"})
	if err != nil {
		t.Fatalf("UpdateCow: %v", err)
	}
	if updated.Status != models.CowDry || updated.Name != "Daisy" {
		t.Errorf("updated = %+v", updated)
	}

	if _, err := svc.UpdateCow(ctx, "intruder", cow.ID, CowInput{TagNumber: "001"}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("foreign update error = %v, want ErrNotFound", err)
	}
}

func TestBulls(t *testing.T) {
	svc, _ := newService(t)
	bull, err := svc.CreateBull(ctx, "u", BullInput{Name: "Thunder"})
	if err != nil {
		t.Fatalf("CreateBull: %v", err)
	}
	if bull.Status != models.BullActive {
		t.Errorf("status = %s", bull.Status)
	}
	if _, err := svc.CreateBull(ctx, "u", BullInput{}); err == nil {
		t.Error("nameless bull accepted")
	}

	retired, err := svc.UpdateBull(ctx, "u", bull.ID, BullInput{Name: "Thunder", Status: "retired"})
	if err != nil || retired.Status != models.BullRetired {
		t.Fatalf("UpdateBull = %+v, %v", retired, err)
	}
	if err := svc.DeleteBull(ctx, "u", bull.ID); err != nil {
		t.Fatalf("DeleteBull: %v", err)
	}
	if _, err := svc.GetBull(ctx, "u", bull.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("deleted bull error = %v", err)
	}
}

func TestMilkingAndDailySummary(t *testing.T) {
	svc, _ := newService(t)
	cow, _ := svc.CreateCow(ctx, "u", CowInput{TagNumber: "001"})

	inputs := []MilkingInput{
		{CowID: cow.ID, MilkingDate: "2024-05-10", MilkingTime: "morning", MilkYieldLiters: 8.5},
		{CowID: cow.ID, MilkingDate: "2024-05-10", MilkingTime: "evening", MilkYieldLiters: 6},
		{CowID: cow.ID, MilkingDate: "2024-05-09", MilkingTime: "morning", MilkYieldLiters: 7},
	}
	for _, in := range inputs {
		if _, err := svc.RecordMilking(ctx, "u", in); err != nil {
			t.Fatalf("RecordMilking: %v", err)
		}
	}

	summary, err := svc.Today(ctx, "u")
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	if summary.TotalLiters != 14.5 || summary.Records != 2 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.ByTime[models.MilkingMorning] != 8.5 || summary.ByTime[models.MilkingAfternoon] != 0 {
		t.Errorf("by time = %v", summary.ByTime)
	}

	recent, err := svc.ListMilking(ctx, "u", MilkingQuery{Limit: 2})
	if err != nil {
		t.Fatalf("ListMilking: %v", err)
	}
	if len(recent) != 2 || recent[0].MilkingDate.Day() != 10 {
		t.Errorf("recent = %+v", recent)
	}
}

func TestRecordMilking_Validation(t *testing.T) {
	svc, _ := newService(t)
	cow, _ := svc.CreateCow(ctx, "u", CowInput{TagNumber: "001"})

	tests := []struct {
		name  string
		in    MilkingInput
		field string
	}{
		{"foreign cow", MilkingInput{CowID: "nope", MilkingDate: "2024-05-10", MilkingTime: "morning"}, "cow_id"},
		{"bad session", MilkingInput{CowID: cow.ID, MilkingDate: "2024-05-10", MilkingTime: "midnight"}, "milking_time"},
		{"missing session", MilkingInput{CowID: cow.ID, MilkingDate: "2024-05-10"}, "milking_time"},
		{"bad quality", MilkingInput{CowID: cow.ID, MilkingDate: "2024-05-10", MilkingTime: "morning", MilkQuality: "green"}, "milk_quality"},
		{"negative yield", MilkingInput{CowID: cow.ID, MilkingDate: "2024-05-10", MilkingTime: "morning", MilkYieldLiters: -1}, "milk_yield_liters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordMilking(ctx, "u", tt.in)
			var verr *models.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("error = %v, want validation on %s", err, tt.field)
			}
		})
	}
}
