package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

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
	return s.insert(ctx, collMilking, "insert milking record", record)
}

func (s *Store) ListMilking(ctx context.Context, owner string, filter repository.MilkingFilter) ([]models.MilkingRecord, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	opts := sortBy(
		bson.E{Key: "milking_date", Value: -1},
		bson.E{Key: "milking_time", Value: -1},
		bson.E{Key: "created_at", Value: -1},
	)
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	return findAll[models.MilkingRecord](ctx, s, collMilking, "list milking records", milkingQuery(owner, filter), opts)
}

func milkingQuery(owner string, filter repository.MilkingFilter) bson.D {
	query := ownerFilter(owner)
	if filter.CowID != "" {
		query = append(query, bson.E{Key: "cow_id", Value: filter.CowID})
	}
	var dateRange bson.D
	if filter.From != nil {
		dateRange = append(dateRange, bson.E{Key: "$gte", Value: *filter.From})
	}
	if filter.To != nil {
		dateRange = append(dateRange, bson.E{Key: "$lte", Value: *filter.To})
	}
	if len(dateRange) > 0 {
		query = append(query, bson.E{Key: "milking_date", Value: dateRange})
	}
	return query
}

func (s *Store) DeleteMilking(ctx context.Context, owner, id string) error {
	return s.deleteScoped(ctx, collMilking, "delete milking record", owner, id)
}

func (s *Store) CreateReminder(ctx context.Context, reminder *models.Reminder) error {
	if err := requireOwner(reminder.UserID); err != nil {
		return err
	}
	if reminder.ID == "" {
		reminder.ID = newID()
	}
	return s.insert(ctx, collReminders, "insert reminder", reminder)
}

func (s *Store) GetReminder(ctx context.Context, owner, id string) (*models.Reminder, error) {
	return getScoped[models.Reminder](ctx, s, collReminders, "get reminder", owner, id)
}

func (s *Store) ListReminders(ctx context.Context, owner string, filter repository.ReminderFilter) ([]models.Reminder, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	return findAll[models.Reminder](ctx, s, collReminders, "list reminders", reminderQuery(owner, filter),
		sortBy(bson.E{Key: "due_date", Value: 1}, bson.E{Key: "created_at", Value: 1}))
}

func reminderQuery(owner string, filter repository.ReminderFilter) bson.D {
	query := ownerFilter(owner)
	if filter.Completed != nil {
		query = append(query, bson.E{Key: "completed", Value: *filter.Completed})
	}
	if filter.DueBefore != nil {
		query = append(query, bson.E{Key: "due_date", Value: bson.D{{Key: "$lte", Value: *filter.DueBefore}}})
	}
	return query
}

func (s *Store) UpdateReminder(ctx context.Context, reminder *models.Reminder) error {
	set := bson.D{
		{Key: "title", Value: reminder.Title},
		{Key: "description", Value: reminder.Description},
		{Key: "due_date", Value: reminder.DueDate},
		{Key: "priority", Value: reminder.Priority},
		{Key: "reminder_type", Value: reminder.ReminderType},
		{Key: "updated_at", Value: reminder.UpdatedAt},
	}
	var unset bson.D
	set, unset = optional(set, unset, "cow_id", reminder.CowID)
	return s.updateScoped(ctx, collReminders, "update reminder", reminder.UserID, reminder.ID, setUnset(set, unset))
}

func (s *Store) CompleteReminder(ctx context.Context, owner, id string, at time.Time) error {
	return s.updateScoped(ctx, collReminders, "complete reminder", owner, id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "completed", Value: true},
		{Key: "completed_date", Value: at},
		{Key: "updated_at", Value: at},
	}}})
}

func (s *Store) DeleteReminder(ctx context.Context, owner, id string) error {
	return s.deleteScoped(ctx, collReminders, "delete reminder", owner, id)
}
