package breeding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
	"github.com/mamadbah2/herdbook/internal/repository/sqlstore"
	"github.com/mamadbah2/herdbook/internal/repository/sqlstore/sqlstoretest"
)

var (
	ctx   = context.Background()
	clock = time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc   *Service
	store repository.Store
	cow   *models.Cow
	bull  *models.Bull
}

func setup(t *testing.T, wrap func(*sqlstore.Store) repository.Store) fixture {
	t.Helper()
	base := sqlstoretest.New(t)
	var store repository.Store = base
	if wrap != nil {
		store = wrap(base)
	}

	cow := &models.Cow{UserID: "u", TagNumber: "007", Status: models.CowActive}
	if err := base.CreateCow(ctx, cow); err != nil {
		t.Fatalf("CreateCow: %v", err)
	}
	bull := &models.Bull{UserID: "u", Name: "Thunder", Status: models.BullActive}
	if err := base.CreateBull(ctx, bull); err != nil {
		t.Fatalf("CreateBull: %v", err)
	}
	svc := NewService(store, nil, nil).WithClock(func() time.Time { return clock })
	return fixture{svc: svc, store: store, cow: cow, bull: bull}
}

// nonAtomic behaves like a store without transactions and can fail the cow
// status write.
type nonAtomic struct {
	*sqlstore.Store
	failCowStatus bool
}

func (n *nonAtomic) InTx(_ context.Context, fn func(tx repository.Store) error) error { return fn(n) }

func (n *nonAtomic) Atomic() bool { return false }

func (n *nonAtomic) SetCowStatus(ctx context.Context, owner, id string, status models.CowStatus, at time.Time) error {
	if n.failCowStatus {
		return models.WrapStore("set cow status", errors.New("connection reset"))
	}
	return n.Store.SetCowStatus(ctx, owner, id, status, at)
}

func TestConfirmPregnancy_EndToEnd(t *testing.T) {
	f := setup(t, nil)

	record, err := f.svc.CreateBreeding(ctx, "u", BreedingInput{
		CowID:        f.cow.ID,
		BreedingDate: "2024-01-10",
		BreedingType: "natural",
		BullID:       f.bull.ID,
	})
	if err != nil {
		t.Fatalf("CreateBreeding: %v", err)
	}
	if record.Success != nil {
		t.Fatalf("new breeding success = %v, want nil", *record.Success)
	}

	pregnancy, err := f.svc.ConfirmPregnancy(ctx, "u", PregnancyInput{
		CowID:            f.cow.ID,
		BreedingRecordID: record.ID,
		ConceptionDate:   "2024-01-10",
	})
	if err != nil {
		t.Fatalf("ConfirmPregnancy: %v", err)
	}

	want := time.Date(2024, 10, 19, 0, 0, 0, 0, time.UTC)
	if !pregnancy.ExpectedCalvingDate.Equal(want) {
		t.Errorf("expected calving = %v, want %v", pregnancy.ExpectedCalvingDate, want)
	}
	if pregnancy.PregnancyStatus != models.PregnancyConfirmed {
		t.Errorf("status = %s", pregnancy.PregnancyStatus)
	}

	cow, _ := f.store.GetCow(ctx, "u", f.cow.ID)
	if cow.Status != models.CowPregnant {
		t.Errorf("cow status = %s, want pregnant", cow.Status)
	}
	got, _ := f.store.GetBreeding(ctx, "u", record.ID)
	if got.Success == nil || !*got.Success {
		t.Errorf("breeding success = %v, want true", got.Success)
	}
}

func TestConfirmPregnancy_WithoutBreedingLeavesRecordsUntouched(t *testing.T) {
	f := setup(t, nil)
	record, _ := f.svc.CreateBreeding(ctx, "u", BreedingInput{CowID: f.cow.ID, BreedingDate: "2024-01-10", BreedingType: "natural"})

	if err := f.store.SetCowStatus(ctx, "u", f.cow.ID, models.CowDry, clock); err != nil {
		t.Fatalf("SetCowStatus: %v", err)
	}

	if _, err := f.svc.ConfirmPregnancy(ctx, "u", PregnancyInput{CowID: f.cow.ID, ConceptionDate: "2024-01-12", ExpectedCalvingDate: "2024-10-01"}); err != nil {
		t.Fatalf("ConfirmPregnancy: %v", err)
	}

	cow, _ := f.store.GetCow(ctx, "u", f.cow.ID)
	if cow.Status != models.CowPregnant {
		t.Errorf("dry cow status = %s, want pregnant", cow.Status)
	}
	got, _ := f.store.GetBreeding(ctx, "u", record.ID)
	if got.Success != nil {
		t.Errorf("unlinked breeding success = %v, want nil", *got.Success)
	}

	list, err := f.svc.ListPregnancies(ctx, "u", "")
	if err != nil {
		t.Fatalf("ListPregnancies: %v", err)
	}
	if len(list) != 1 || list[0].DaysUntilCalving != 243 {
		t.Errorf("pregnancies = %+v", list)
	}
}

func TestConfirmPregnancy_RejectsMismatchedBreeding(t *testing.T) {
	f := setup(t, nil)
	other := &models.Cow{UserID: "u", TagNumber: "008", Status: models.CowActive}
	if err := f.store.CreateCow(ctx, other); err != nil {
		t.Fatalf("CreateCow: %v", err)
	}
	record, _ := f.svc.CreateBreeding(ctx, "u", BreedingInput{CowID: other.ID, BreedingDate: "2024-01-10", BreedingType: "artificial_insemination"})

	_, err := f.svc.ConfirmPregnancy(ctx, "u", PregnancyInput{CowID: f.cow.ID, BreedingRecordID: record.ID, ConceptionDate: "2024-01-10"})
	var verr *models.ValidationError
	if !errors.As(err, &verr) || verr.Field != "breeding_record_id" {
		t.Fatalf("error = %v, want breeding_record_id validation", err)
	}

	pregnancies, _ := f.store.ListPregnancies(ctx, "u", repository.PregnancyFilter{})
	if len(pregnancies) != 0 {
		t.Errorf("pregnancies created = %d, want 0", len(pregnancies))
	}
}

func TestConfirmPregnancy_ForeignCow(t *testing.T) {
	f := setup(t, nil)
	_, err := f.svc.ConfirmPregnancy(ctx, "intruder", PregnancyInput{CowID: f.cow.ID, ConceptionDate: "2024-01-10"})
	var verr *models.ValidationError
	if !errors.As(err, &verr) || verr.Field != "cow_id" {
		t.Fatalf("error = %v, want cow_id validation", err)
	}
}

func TestConfirmPregnancy_CalvingBeforeConception(t *testing.T) {
	f := setup(t, nil)
	_, err := f.svc.ConfirmPregnancy(ctx, "u", PregnancyInput{CowID: f.cow.ID, ConceptionDate: "2024-01-10", ExpectedCalvingDate: "2023-12-01"})
	var verr *models.ValidationError
	if !errors.As(err, &verr) || verr.Field != "expected_calving_date" {
		t.Fatalf("error = %v, want expected_calving_date validation", err)
	}
}

func TestConfirmPregnancy_AtomicStoreRollsBack(t *testing.T) {
	f := setup(t, nil)
	_, err := f.svc.ConfirmPregnancy(ctx, "u", PregnancyInput{CowID: f.cow.ID, BreedingRecordID: "missing", ConceptionDate: "2024-01-10"})
	if err == nil {
		t.Fatal("expected an error for a missing breeding record")
	}
	var partial *models.PartialCompletionError
	if errors.As(err, &partial) {
		t.Fatalf("atomic store reported partial completion: %v", err)
	}
	cow, _ := f.store.GetCow(ctx, "u", f.cow.ID)
	if cow.Status != models.CowActive {
		t.Errorf("cow status = %s, want active", cow.Status)
	}
}

func TestConfirmPregnancy_PartialCompletionAndReconcile(t *testing.T) {
	var flaky *nonAtomic
	f := setup(t, func(s *sqlstore.Store) repository.Store {
		flaky = &nonAtomic{Store: s, failCowStatus: true}
		return flaky
	})
	record, err := f.svc.CreateBreeding(ctx, "u", BreedingInput{CowID: f.cow.ID, BreedingDate: "2024-01-10", BreedingType: "natural", BullID: f.bull.ID})
	if err != nil {
		t.Fatalf("CreateBreeding: %v", err)
	}

	_, err = f.svc.ConfirmPregnancy(ctx, "u", PregnancyInput{CowID: f.cow.ID, BreedingRecordID: record.ID, ConceptionDate: "2024-01-10"})
	var partial *models.PartialCompletionError
	if !errors.As(err, &partial) {
		t.Fatalf("error = %v, want PartialCompletionError", err)
	}
	if len(partial.Completed) != 1 || partial.Completed[0] != StepCreatePregnancy {
		t.Errorf("completed = %v", partial.Completed)
	}
	if len(partial.Pending) != 2 || partial.Pending[0] != StepMarkCowPregnant || partial.Pending[1] != StepMarkBreeding {
		t.Errorf("pending = %v", partial.Pending)
	}
	var storeErr *models.StoreError
	if !errors.As(err, &storeErr) {
		t.Errorf("cause must stay reachable: %v", err)
	}

	flaky.failCowStatus = false
	if _, err := f.svc.ReconcilePregnancy(ctx, "u", partial.RecordID); err != nil {
		t.Fatalf("ReconcilePregnancy: %v", err)
	}
	cow, _ := f.store.GetCow(ctx, "u", f.cow.ID)
	if cow.Status != models.CowPregnant {
		t.Errorf("cow status after reconcile = %s", cow.Status)
	}
	got, _ := f.store.GetBreeding(ctx, "u", record.ID)
	if got.Success == nil || !*got.Success {
		t.Errorf("breeding success after reconcile = %v", got.Success)
	}

	if _, err := f.svc.ReconcilePregnancy(ctx, "u", partial.RecordID); err != nil {
		t.Fatalf("second reconcile must be a no-op: %v", err)
	}
}

func TestCreateBreeding_TypeSpecificFields(t *testing.T) {
	f := setup(t, nil)

	ai, err := f.svc.CreateBreeding(ctx, "u", BreedingInput{
		CowID:          f.cow.ID,
		BreedingDate:   "2024-01-10",
		BreedingType:   "artificial_insemination",
		BullID:         f.bull.ID,
		SemenBatch:     "HX-42",
		TechnicianName: "Mariama",
	})
	if err != nil {
		t.Fatalf("CreateBreeding: %v", err)
	}
	if ai.BullID != nil || ai.SemenBatch != "HX-42" {
		t.Errorf("AI record = %+v", ai)
	}

	natural, err := f.svc.CreateBreeding(ctx, "u", BreedingInput{
		CowID:        f.cow.ID,
		BreedingDate: "2024-01-11",
		BreedingType: "natural",
		BullID:       f.bull.ID,
		SemenBatch:   "ignored",
	})
	if err != nil {
		t.Fatalf("CreateBreeding: %v", err)
	}
	if natural.BullID == nil || *natural.BullID != f.bull.ID || natural.SemenBatch != "" {
		t.Errorf("natural record = %+v", natural)
	}

	_, err = f.svc.CreateBreeding(ctx, "u", BreedingInput{CowID: f.cow.ID, BreedingDate: "2024-01-11", BreedingType: "natural", BullID: "ghost"})
	var verr *models.ValidationError
	if !errors.As(err, &verr) || verr.Field != "bull_id" {
		t.Errorf("unknown bull error = %v", err)
	}

	_, err = f.svc.CreateBreeding(ctx, "u", BreedingInput{CowID: f.cow.ID, BreedingDate: "2024-01-11", BreedingType: "embryo"})
	if !errors.As(err, &verr) || verr.Field != "breeding_type" {
		t.Errorf("unknown type error = %v", err)
	}

	list, _ := f.svc.ListBreeding(ctx, "u")
	if len(list) != 2 || list[0].ID != natural.ID {
		t.Errorf("breeding list must be newest first: %+v", list)
	}
}

func TestEndPregnancy_NotImplemented(t *testing.T) {
	f := setup(t, nil)
	p, err := f.svc.ConfirmPregnancy(ctx, "u", PregnancyInput{CowID: f.cow.ID, ConceptionDate: "2024-01-10"})
	if err != nil {
		t.Fatalf("ConfirmPregnancy: %v", err)
	}
	if err := f.svc.EndPregnancy(ctx, "u", p.ID); !errors.Is(err, models.ErrTransitionNotImplemented) {
		t.Errorf("EndPregnancy error = %v, want ErrTransitionNotImplemented", err)
	}
	if err := f.svc.EndPregnancy(ctx, "intruder", p.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("foreign EndPregnancy error = %v, want ErrNotFound", err)
	}
}
