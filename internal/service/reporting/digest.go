package reporting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/calendar"
	"github.com/mamadbah2/herdbook/internal/domain/models"
)

// RemindersDigest lists open reminders that are overdue or due today.
func (s *Service) RemindersDigest(ctx context.Context, owner string) (string, error) {
	due, err := s.src.Reminders.Pending(ctx, owner, 0)
	if err != nil {
		return "", fmt.Errorf("load reminders: %w", err)
	}
	if len(due) == 0 {
		return "Reminders: nothing due today.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Reminders: %d due.", len(due))
	for _, r := range due {
		fmt.Fprintf(&b, "\n- [%s] %s", r.Priority, r.Title)
		if r.Overdue {
			fmt.Fprintf(&b, " (overdue %dd)", -r.DaysUntil)
		}
	}
	return b.String(), nil
}

// CalvingsDigest lists confirmed pregnancies expected to calve within the
// calving window.
func (s *Service) CalvingsDigest(ctx context.Context, owner string) (string, error) {
	pregnancies, err := s.src.Breeding.ListPregnancies(ctx, owner, "")
	if err != nil {
		return "", fmt.Errorf("load pregnancies: %w", err)
	}
	names, err := s.cowNames(ctx, owner)
	if err != nil {
		return "", err
	}

	var lines []string
	for _, p := range pregnancies {
		if p.DaysUntilCalving > CalvingWindowDays {
			continue
		}
		when := fmt.Sprintf("in %dd", p.DaysUntilCalving)
		if p.DaysUntilCalving < 0 {
			when = fmt.Sprintf("%dd past due", -p.DaysUntilCalving)
		}
		lines = append(lines, fmt.Sprintf("- %s: %s (%s)", names[p.CowID], calendar.FormatDay(p.ExpectedCalvingDate), when))
	}
	if len(lines) == 0 {
		return fmt.Sprintf("Calvings: none expected in the next %d days.", CalvingWindowDays), nil
	}
	return fmt.Sprintf("Calvings: %d expected within %d days.\n%s", len(lines), CalvingWindowDays, strings.Join(lines, "\n")), nil
}

// StockDigest summarises the medicine alerts.
func (s *Service) StockDigest(ctx context.Context, owner string) (string, error) {
	alerts, err := s.src.Medicine.Alerts(ctx, owner)
	if err != nil {
		return "", fmt.Errorf("load medicine alerts: %w", err)
	}
	if alerts.Empty() {
		return "Stock: all medicines fine.", nil
	}

	var b strings.Builder
	b.WriteString("Stock alerts:")
	for _, m := range alerts.LowStock {
		fmt.Fprintf(&b, "\n- low: %s %.1f %s left", m.Name, m.QuantityRemaining, m.Unit)
	}
	for _, m := range alerts.Expired {
		fmt.Fprintf(&b, "\n- expired: %s (%s)", m.Name, calendar.FormatDay(*m.ExpiryDate))
	}
	for _, m := range alerts.ExpiringSoon {
		fmt.Fprintf(&b, "\n- expiring: %s in %dd", m.Name, *m.DaysUntilExpiry)
	}
	return b.String(), nil
}

// MilkDigest reports the milk of day.
func (s *Service) MilkDigest(ctx context.Context, owner string, day time.Time) (string, error) {
	summary, err := s.src.Herd.DailySummary(ctx, owner, day)
	if err != nil {
		return "", fmt.Errorf("load milking summary: %w", err)
	}
	label := calendar.FormatDay(summary.Date)
	if summary.Records == 0 {
		return fmt.Sprintf("Milk %s: no records.", label), nil
	}

	times := make([]string, 0, len(summary.ByTime))
	for _, t := range models.MilkingTimes {
		if liters := summary.ByTime[models.MilkingTime(t)]; liters > 0 {
			times = append(times, fmt.Sprintf("%s %.1f L", t, liters))
		}
	}
	return fmt.Sprintf("Milk %s: %.1f L from %d milkings (%s).", label, summary.TotalLiters, summary.Records, strings.Join(times, ", ")), nil
}

// DailyDigest assembles the morning message for one farmer on the given farm
// day; milk is reported for the day before. A failing section is logged and
// skipped so one bad query does not block the rest.
func (s *Service) DailyDigest(ctx context.Context, user models.User, day time.Time) (string, error) {
	day = calendar.Day(day)
	yesterday := calendar.AddDays(day, -1)

	header := fmt.Sprintf("Good morning %s. Herd digest for %s", greetingName(user), calendar.FormatDay(day))
	sections := []struct {
		name  string
		build func(context.Context) (string, error)
	}{
		{"reminders", func(ctx context.Context) (string, error) { return s.RemindersDigest(ctx, user.ID) }},
		{"calvings", func(ctx context.Context) (string, error) { return s.CalvingsDigest(ctx, user.ID) }},
		{"stock", func(ctx context.Context) (string, error) { return s.StockDigest(ctx, user.ID) }},
		{"milk", func(ctx context.Context) (string, error) { return s.MilkDigest(ctx, user.ID, yesterday) }},
	}

	parts := []string{header}
	var failures int
	for _, section := range sections {
		text, err := section.build(ctx)
		if err != nil {
			failures++
			s.logger.Warn("digest section failed", zap.String("section", section.name), zap.String("user_id", user.ID), zap.Error(err))
			continue
		}
		parts = append(parts, text)
	}
	if failures == len(sections) {
		return "", fmt.Errorf("build digest for %s: every section failed", user.ID)
	}
	return strings.Join(parts, "\n\n"), nil
}

// MilkingExportRow is the spreadsheet row for one farm and day:
// date, farm, total, then liters per milking time.
func (s *Service) MilkingExportRow(ctx context.Context, user models.User, day time.Time) ([]interface{}, error) {
	summary, err := s.src.Herd.DailySummary(ctx, user.ID, day)
	if err != nil {
		return nil, fmt.Errorf("load milking summary: %w", err)
	}
	row := []interface{}{calendar.FormatDay(summary.Date), farmLabel(user), summary.TotalLiters}
	for _, t := range models.MilkingTimes {
		row = append(row, summary.ByTime[models.MilkingTime(t)])
	}
	return row, nil
}

func (s *Service) cowNames(ctx context.Context, owner string) (map[string]string, error) {
	cows, err := s.src.Herd.ListCows(ctx, owner, "")
	if err != nil {
		return nil, fmt.Errorf("load cows: %w", err)
	}
	names := make(map[string]string, len(cows))
	for _, c := range cows {
		names[c.ID] = c.DisplayName()
	}
	return names, nil
}

func greetingName(u models.User) string {
	if u.FullName != "" {
		return strings.Fields(u.FullName)[0]
	}
	return u.Email
}

func farmLabel(u models.User) string {
	if u.FarmName != "" {
		return u.FarmName
	}
	return u.Email
}

// SortedUsers orders users by email so exports are stable.
func SortedUsers(users []models.User) []models.User {
	out := append([]models.User(nil), users...)
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}
