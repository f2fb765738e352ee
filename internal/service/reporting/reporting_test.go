package reporting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository/sqlstore/sqlstoretest"
	"github.com/mamadbah2/herdbook/internal/service/breeding"
	"github.com/mamadbah2/herdbook/internal/service/herd"
	"github.com/mamadbah2/herdbook/internal/service/medicine"
	"github.com/mamadbah2/herdbook/internal/service/reminders"
)

var (
	ctx   = context.Background()
	clock = time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	owner = models.User{ID: "u", Email: "awa@example.com", FullName: "Awa Diallo", FarmName: "Kindia Dairy"}
)

func now() time.Time { return clock }

func qty(v float64) *float64 { return &v }

// seededFarm builds a farm with one pregnant cow, stock alerts, an overdue
// reminder and two days of milk.
func seededFarm(t *testing.T) *Service {
	t.Helper()
	store := sqlstoretest.New(t)
	herdSvc := herd.NewService(store, nil).WithClock(now)
	breedingSvc := breeding.NewService(store, nil, nil).WithClock(now)
	medicineSvc := medicine.NewService(store, nil, nil).WithClock(now)
	reminderSvc := reminders.NewService(store, nil, nil).WithClock(now)

	bella, err := herdSvc.CreateCow(ctx, "u", herd.CowInput{TagNumber: "001", Name: "Bella"})
	if err != nil {
		t.Fatalf("CreateCow: %v", err)
	}
	second, err := herdSvc.CreateCow(ctx, "u", herd.CowInput{TagNumber: "002"})
	if err != nil {
		t.Fatalf("CreateCow: %v", err)
	}
	if _, err := breedingSvc.ConfirmPregnancy(ctx, "u", breeding.PregnancyInput{
		CowID: second.ID, ConceptionDate: "2023-08-11", ExpectedCalvingDate: "2024-05-20",
	}); err != nil {
		t.Fatalf("ConfirmPregnancy: %v", err)
	}

	for _, in := range []medicine.MedicineInput{
		{Name: "Oxytet", Type: "antibiotic", Unit: "ml", QuantityRemaining: qty(5)},
		{Name: "Ivermec", Type: "dewormer", Unit: "ml", QuantityRemaining: qty(50), ExpiryDate: "2024-05-01"},
	} {
		if _, err := medicineSvc.CreateMedicine(ctx, "u", in); err != nil {
			t.Fatalf("CreateMedicine: %v", err)
		}
	}

	for _, in := range []reminders.Input{
		{Title: "Deworm", DueDate: "2024-05-08", Priority: "high"},
		{Title: "Vaccinate", DueDate: "2024-06-01"},
	} {
		if _, err := reminderSvc.Create(ctx, "u", in); err != nil {
			t.Fatalf("Create reminder: %v", err)
		}
	}

	for _, in := range []herd.MilkingInput{
		{CowID: bella.ID, MilkingDate: "2024-05-10", MilkingTime: "morning", MilkYieldLiters: 8},
		{CowID: bella.ID, MilkingDate: "2024-05-09", MilkingTime: "morning", MilkYieldLiters: 7},
		{CowID: bella.ID, MilkingDate: "2024-05-09", MilkingTime: "evening", MilkYieldLiters: 5},
	} {
		if _, err := herdSvc.RecordMilking(ctx, "u", in); err != nil {
			t.Fatalf("RecordMilking: %v", err)
		}
	}

	return NewService(Sources{
		Herd:      herdSvc,
		Breeding:  breedingSvc,
		Medicine:  medicineSvc,
		Reminders: reminderSvc,
	}, nil).WithClock(now)
}

func TestDashboard(t *testing.T) {
	svc := seededFarm(t)

	d, err := svc.Dashboard(ctx, "u")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.TotalCows != 2 || d.ActiveCows != 1 || d.PregnantCows != 1 || d.ActivePregnancies != 1 {
		t.Errorf("herd counts = %+v", d)
	}
	if d.PendingReminders != 2 || d.OverdueReminders != 1 {
		t.Errorf("reminder counts = %+v", d)
	}
	if d.LowStock != 1 || d.Expired != 1 {
		t.Errorf("stock counts = %+v", d)
	}
	if d.MilkToday.TotalLiters != 8 || d.MilkToday.Records != 1 {
		t.Errorf("milk today = %+v", d.MilkToday)
	}
}

func TestDashboard_EmptyFarm(t *testing.T) {
	svc := seededFarm(t)

	d, err := svc.Dashboard(ctx, "someone-else")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.TotalCows != 0 || d.PendingReminders != 0 || d.MilkToday.TotalLiters != 0 {
		t.Errorf("foreign records leaked: %+v", d)
	}
}

func TestDailyDigest(t *testing.T) {
	svc := seededFarm(t)

	digest, err := svc.DailyDigest(ctx, owner, clock)
	if err != nil {
		t.Fatalf("DailyDigest: %v", err)
	}
	for _, want := range []string{
		"Good morning Awa. Herd digest for 2024-05-10",
		"Reminders: 1 due.\n- [high] Deworm (overdue 2d)",
		"- Cow #002: 2024-05-20 (in 10d)",
		"- low: Oxytet 5.0 ml left",
		"- expired: Ivermec (2024-05-01)",
		"Milk 2024-05-09: 12.0 L from 2 milkings (morning 7.0 L, evening 5.0 L).",
	} {
		if !strings.Contains(digest, want) {
			t.Errorf("digest missing %q:\n%s", want, digest)
		}
	}
	if strings.Contains(digest, "Vaccinate") {
		t.Errorf("digest lists a reminder due next month:\n%s", digest)
	}
}

func TestDigestSections_QuietFarm(t *testing.T) {
	svc := seededFarm(t)

	tests := []struct {
		name  string
		build func() (string, error)
		want  string
	}{
		{"reminders", func() (string, error) { return svc.RemindersDigest(ctx, "quiet") }, "Reminders: nothing due today."},
		{"calvings", func() (string, error) { return svc.CalvingsDigest(ctx, "quiet") }, "Calvings: none expected in the next 30 days."},
		{"stock", func() (string, error) { return svc.StockDigest(ctx, "quiet") }, "Stock: all medicines fine."},
		{"milk", func() (string, error) { return svc.MilkDigest(ctx, "quiet", clock) }, "Milk 2024-05-10: no records."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.build()
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

type brokenReminders struct{}

func (brokenReminders) Pending(context.Context, string, int) ([]reminders.View, error) {
	return nil, errors.New("connection reset")
}

func TestDailyDigest_SkipsFailingSection(t *testing.T) {
	svc := seededFarm(t)
	svc.src.Reminders = brokenReminders{}

	digest, err := svc.DailyDigest(ctx, owner, clock)
	if err != nil {
		t.Fatalf("DailyDigest: %v", err)
	}
	if strings.Contains(digest, "Reminders") || !strings.Contains(digest, "Stock alerts:") {
		t.Errorf("digest = %s", digest)
	}
}

func TestDailyDigest_UsesGivenDay(t *testing.T) {
	svc := seededFarm(t)

	// The clock already reads 2024-05-10 UTC; a farm west of UTC is still on the 9th.
	digest, err := svc.DailyDigest(ctx, owner, time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DailyDigest: %v", err)
	}
	if !strings.Contains(digest, "Herd digest for 2024-05-09") || !strings.Contains(digest, "Milk 2024-05-08: no records.") {
		t.Errorf("digest = %s", digest)
	}
}

func TestMilkingExportRow(t *testing.T) {
	svc := seededFarm(t)

	row, err := svc.MilkingExportRow(ctx, owner, time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("MilkingExportRow: %v", err)
	}
	want := []interface{}{"2024-05-09", "Kindia Dairy", 12.0, 7.0, 0.0, 5.0}
	if len(row) != len(want) {
		t.Fatalf("row = %v", row)
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("row[%d] = %v, want %v", i, row[i], want[i])
		}
	}
}

func TestSortedUsers(t *testing.T) {
	in := []models.User{{Email: "b@x"}, {Email: "a@x"}}
	out := SortedUsers(in)
	if out[0].Email != "a@x" || in[0].Email != "b@x" {
		t.Errorf("out = %v, in = %v", out, in)
	}
}
