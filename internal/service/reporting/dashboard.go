package reporting

import (
	"context"
	"fmt"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

// Dashboard is the landing page summary of one farm.
type Dashboard struct {
	TotalCows         int                   `json:"total_cows"`
	ActiveCows        int                   `json:"active_cows"`
	PregnantCows      int                   `json:"pregnant_cows"`
	ActivePregnancies int                   `json:"active_pregnancies"`
	PendingReminders  int                   `json:"pending_reminders"`
	OverdueReminders  int                   `json:"overdue_reminders"`
	LowStock          int                   `json:"low_stock_medicines"`
	ExpiringSoon      int                   `json:"expiring_medicines"`
	Expired           int                   `json:"expired_medicines"`
	MilkToday         models.MilkingSummary `json:"milk_today"`
}

// Dashboard counts the herd, open work and today's milk for owner.
func (s *Service) Dashboard(ctx context.Context, owner string) (*Dashboard, error) {
	cows, err := s.src.Herd.ListCows(ctx, owner, "")
	if err != nil {
		return nil, fmt.Errorf("list cows: %w", err)
	}
	pregnancies, err := s.src.Breeding.ListPregnancies(ctx, owner, "")
	if err != nil {
		return nil, fmt.Errorf("list pregnancies: %w", err)
	}
	pending, err := s.src.Reminders.Pending(ctx, owner, openEnded)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	alerts, err := s.src.Medicine.Alerts(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("medicine alerts: %w", err)
	}
	milk, err := s.src.Herd.DailySummary(ctx, owner, s.now())
	if err != nil {
		return nil, fmt.Errorf("milking summary: %w", err)
	}

	d := &Dashboard{
		TotalCows:         len(cows),
		ActivePregnancies: len(pregnancies),
		PendingReminders:  len(pending),
		LowStock:          len(alerts.LowStock),
		ExpiringSoon:      len(alerts.ExpiringSoon),
		Expired:           len(alerts.Expired),
		MilkToday:         *milk,
	}
	for _, c := range cows {
		switch c.EffectiveStatus {
		case models.CowActive:
			d.ActiveCows++
		case models.CowPregnant:
			d.PregnantCows++
		}
	}
	for _, r := range pending {
		if r.Overdue {
			d.OverdueReminders++
		}
	}
	return d, nil
}

// openEnded is a horizon far enough out to include every open reminder.
const openEnded = 100 * 365
