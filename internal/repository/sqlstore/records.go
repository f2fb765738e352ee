package sqlstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

func (s *Store) CreateMilking(ctx context.Context, record *models.MilkingRecord) error {
	if err := requireOwner(record.UserID); err != nil {
		return err
	}
	if record.ID == "" {
		record.ID = newID()
	}
	return create(ctx, s.db, "insert milking record", record)
}

func (s *Store) ListMilking(ctx context.Context, owner string, filter repository.MilkingFilter) ([]models.MilkingRecord, error) {
	return listOwned[models.MilkingRecord](ctx, s.db, "list milking records", owner, func(q *gorm.DB) *gorm.DB {
		if filter.CowID != "" {
			q = q.Where("cow_id = ?", filter.CowID)
		}
		if filter.From != nil {
			q = q.Where("milking_date >= ?", *filter.From)
		}
		if filter.To != nil {
			q = q.Where("milking_date <= ?", *filter.To)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		return q.Order("milking_date desc").Order("milking_time desc").Order("created_at desc")
	})
}

func (s *Store) DeleteMilking(ctx context.Context, owner, id string) error {
	return deleteScoped[models.MilkingRecord](ctx, s.db, "delete milking record", owner, id)
}

func (s *Store) CreateReminder(ctx context.Context, reminder *models.Reminder) error {
	if err := requireOwner(reminder.UserID); err != nil {
		return err
	}
	if reminder.ID == "" {
		reminder.ID = newID()
	}
	return create(ctx, s.db, "insert reminder", reminder)
}

func (s *Store) GetReminder(ctx context.Context, owner, id string) (*models.Reminder, error) {
	return getScoped[models.Reminder](ctx, s.db, "get reminder", owner, id)
}

func (s *Store) ListReminders(ctx context.Context, owner string, filter repository.ReminderFilter) ([]models.Reminder, error) {
	return listOwned[models.Reminder](ctx, s.db, "list reminders", owner, func(q *gorm.DB) *gorm.DB {
		if filter.Completed != nil {
			q = q.Where("completed = ?", *filter.Completed)
		}
		if filter.DueBefore != nil {
			q = q.Where("due_date <= ?", *filter.DueBefore)
		}
		return q.Order("due_date asc").Order("created_at asc")
	})
}

func (s *Store) UpdateReminder(ctx context.Context, reminder *models.Reminder) error {
	return updateScoped[models.Reminder](ctx, s.db, "update reminder", reminder.UserID, reminder.ID, map[string]interface{}{
		"title":         reminder.Title,
		"description":   reminder.Description,
		"due_date":      reminder.DueDate,
		"priority":      reminder.Priority,
		"reminder_type": reminder.ReminderType,
		"cow_id":        reminder.CowID,
		"updated_at":    reminder.UpdatedAt,
	})
}

func (s *Store) CompleteReminder(ctx context.Context, owner, id string, at time.Time) error {
	return updateScoped[models.Reminder](ctx, s.db, "complete reminder", owner, id, map[string]interface{}{
		"completed":      true,
		"completed_date": at,
		"updated_at":     at,
	})
}

func (s *Store) DeleteReminder(ctx context.Context, owner, id string) error {
	return deleteScoped[models.Reminder](ctx, s.db, "delete reminder", owner, id)
}
