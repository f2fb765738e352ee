package calendar

import (
	"testing"
	"time"
)

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDay(s)
	if err != nil {
		t.Fatalf("ParseDay(%q): %v", s, err)
	}
	return d
}

func TestExpectedCalvingDate(t *testing.T) {
	tests := []struct {
		conception string
		want       string
	}{
		{"2024-01-10", "2024-10-19"},
		{"2023-01-10", "2023-10-20"},
		{"2024-03-01", "2024-12-09"},
		{"2023-12-31", "2024-10-09"},
	}
	for _, tt := range tests {
		t.Run(tt.conception, func(t *testing.T) {
			got := ExpectedCalvingDate(mustDay(t, tt.conception))
			if FormatDay(got) != tt.want {
				t.Errorf("ExpectedCalvingDate(%s) = %s, want %s", tt.conception, FormatDay(got), tt.want)
			}
		})
	}
}

func TestExpectedCalvingDate_IsExactly283Days(t *testing.T) {
	start := mustDay(t, "2020-01-01")
	for i := 0; i < 1500; i += 7 {
		d := start.AddDate(0, 0, i)
		got := ExpectedCalvingDate(d)
		if diff := got.Sub(d); diff != GestationDays*24*time.Hour {
			t.Fatalf("conception %s: diff = %v, want %d days", FormatDay(d), diff, GestationDays)
		}
	}
}

func TestAgeYears(t *testing.T) {
	now := mustDay(t, "2024-06-15")
	tests := []struct {
		name  string
		birth string
		want  int
	}{
		{"newborn", "2024-06-01", 0},
		{"just under two", "2022-06-20", 1},
		{"two", "2022-06-01", 2},
		{"future birth", "2025-06-15", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AgeYears(mustDay(t, tt.birth), now); got != tt.want {
				t.Errorf("AgeYears() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		target time.Time
		want   int
	}{
		{"later today", time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC), 1},
		{"same instant", now, 0},
		{"tomorrow midnight", mustDay(t, "2024-05-11"), 1},
		{"in twenty days", mustDay(t, "2024-05-30"), 20},
		{"this morning", mustDay(t, "2024-05-10"), 0},
		{"two days ago", mustDay(t, "2024-05-08"), -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysUntil(tt.target, now); got != tt.want {
				t.Errorf("DaysUntil() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExpiryPredicates(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)
	tests := []struct {
		name        string
		expiry      time.Time
		wantSoon    bool
		wantExpired bool
	}{
		{"twenty days ahead", now.AddDate(0, 0, 20), true, false},
		{"five days ago", now.AddDate(0, 0, -5), false, true},
		{"thirty days ahead", now.AddDate(0, 0, 30), true, false},
		{"thirty one days ahead", now.AddDate(0, 0, 31), false, false},
		{"exactly now", now, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			soon := IsExpiringSoon(tt.expiry, now)
			expired := IsExpired(tt.expiry, now)
			if soon != tt.wantSoon {
				t.Errorf("IsExpiringSoon() = %v, want %v", soon, tt.wantSoon)
			}
			if expired != tt.wantExpired {
				t.Errorf("IsExpired() = %v, want %v", expired, tt.wantExpired)
			}
		})
	}
}

func TestExpiryPredicates_MutuallyExclusive(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)
	for h := -24 * 40; h <= 24*40; h += 5 {
		expiry := now.Add(time.Duration(h) * time.Hour)
		if IsExpired(expiry, now) && IsExpiringSoon(expiry, now) {
			t.Fatalf("expiry %v is both expired and expiring soon", expiry)
		}
	}
}

func TestWithdrawalEndDate(t *testing.T) {
	treated := mustDay(t, "2024-02-25")
	if got := WithdrawalEndDate(treated, 0); got != nil {
		t.Errorf("WithdrawalEndDate(0) = %v, want nil", got)
	}
	if got := WithdrawalEndDate(treated, -3); got != nil {
		t.Errorf("WithdrawalEndDate(-3) = %v, want nil", got)
	}
	got := WithdrawalEndDate(treated, 7)
	if got == nil || FormatDay(*got) != "2024-03-03" {
		t.Errorf("WithdrawalEndDate(7) = %v, want 2024-03-03", got)
	}
}

func TestParseDay(t *testing.T) {
	got, err := ParseDay("2024-01-10T23:30:00+02:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if FormatDay(got) != "2024-01-10" {
		t.Errorf("ParseDay(rfc3339) = %s, want 2024-01-10", FormatDay(got))
	}
	if _, err := ParseDay("10/01/2024"); err == nil {
		t.Error("expected error for unsupported layout")
	}
	if _, err := ParseDay("  "); err == nil {
		t.Error("expected error for empty date")
	}
}

func TestLocalDay(t *testing.T) {
	instant := time.Date(2024, 5, 10, 2, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		loc  *time.Location
		want string
	}{
		{"utc", time.UTC, "2024-05-10"},
		{"nil is utc", nil, "2024-05-10"},
		{"behind utc keeps previous date", time.FixedZone("UTC-5", -5*3600), "2024-05-09"},
		{"ahead of utc", time.FixedZone("UTC+3", 3*3600), "2024-05-10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LocalDay(instant, tt.loc)
			if !got.Equal(mustDay(t, tt.want)) || got.Location() != time.UTC {
				t.Errorf("LocalDay = %v, want %s UTC", got, tt.want)
			}
		})
	}
}
