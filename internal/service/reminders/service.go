// Package reminders manages farm tasks with due dates.
package reminders

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/calendar"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/metrics"
	"github.com/mamadbah2/herdbook/internal/repository"
	"github.com/mamadbah2/herdbook/internal/service/fields"
)

// Service implements reminder operations.
type Service struct {
	store    repository.Store
	recorder metrics.Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a reminder service.
func NewService(store repository.Store, recorder metrics.Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, recorder: metrics.OrNop(recorder), logger: logger, now: time.Now}
}

// WithClock overrides the clock. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Input is the writable part of a reminder.
type Input struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	DueDate      string `json:"due_date"`
	Priority     string `json:"priority"`
	ReminderType string `json:"reminder_type"`
	CowID        string `json:"cow_id"`
}

// View decorates a reminder with its countdown.
type View struct {
	models.Reminder
	DaysUntil int  `json:"days_until"`
	Overdue   bool `json:"overdue"`
}

func (s *Service) apply(ctx context.Context, owner string, in Input, r *models.Reminder) error {
	title, err := fields.Required("title", in.Title)
	if err != nil {
		return err
	}
	due, err := fields.RequiredDay("due_date", in.DueDate)
	if err != nil {
		return err
	}
	priority, err := fields.Enum("priority", in.Priority, string(models.PriorityMedium), models.Priorities)
	if err != nil {
		return err
	}
	kind, err := models.NormalizeReminderType(in.ReminderType)
	if err != nil {
		return err
	}
	cowID := fields.OptionalID(in.CowID)
	if cowID != nil {
		if _, err := s.store.GetCow(ctx, owner, *cowID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return &models.ValidationError{Field: "cow_id", Value: *cowID, Reason: "unknown record"}
			}
			return err
		}
	}

	r.Title = title
	r.Description = in.Description
	r.DueDate = due
	r.Priority = models.Priority(priority)
	r.ReminderType = kind
	r.CowID = cowID
	return nil
}

func (s *Service) Create(ctx context.Context, owner string, in Input) (*View, error) {
	now := s.now().UTC()
	r := &models.Reminder{UserID: owner, CreatedAt: now, UpdatedAt: now}
	if err := s.apply(ctx, owner, in, r); err != nil {
		return nil, err
	}
	if err := s.store.CreateReminder(ctx, r); err != nil {
		return nil, err
	}
	return s.view(*r), nil
}

func (s *Service) Get(ctx context.Context, owner, id string) (*View, error) {
	r, err := s.store.GetReminder(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	return s.view(*r), nil
}

// List returns reminders by due date. A nil completed lists all of them.
func (s *Service) List(ctx context.Context, owner string, completed *bool) ([]View, error) {
	items, err := s.store.ListReminders(ctx, owner, repository.ReminderFilter{Completed: completed})
	if err != nil {
		return nil, err
	}
	return s.views(items), nil
}

// Pending lists open reminders due on or before the end of horizonDays from
// today. Overdue reminders are included.
func (s *Service) Pending(ctx context.Context, owner string, horizonDays int) ([]View, error) {
	open := false
	until := calendar.AddDays(s.now(), horizonDays)
	items, err := s.store.ListReminders(ctx, owner, repository.ReminderFilter{Completed: &open, DueBefore: &until})
	if err != nil {
		return nil, err
	}
	return s.views(items), nil
}

func (s *Service) Update(ctx context.Context, owner, id string, in Input) (*View, error) {
	r, err := s.store.GetReminder(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, owner, in, r); err != nil {
		return nil, err
	}
	r.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateReminder(ctx, r); err != nil {
		return nil, err
	}
	return s.view(*r), nil
}

// Complete marks the reminder done as of now. Completing twice moves the
// completion date forward.
func (s *Service) Complete(ctx context.Context, owner, id string) (*View, error) {
	if err := s.store.CompleteReminder(ctx, owner, id, s.now().UTC()); err != nil {
		return nil, err
	}
	s.recorder.RecordEvent(metrics.EventReminderCompleted)
	return s.Get(ctx, owner, id)
}

func (s *Service) Delete(ctx context.Context, owner, id string) error {
	return s.store.DeleteReminder(ctx, owner, id)
}

func (s *Service) views(items []models.Reminder) []View {
	out := make([]View, 0, len(items))
	for _, r := range items {
		out = append(out, *s.view(r))
	}
	return out
}

func (s *Service) view(r models.Reminder) *View {
	days := calendar.DaysUntil(r.DueDate, calendar.Day(s.now()))
	return &View{Reminder: r, DaysUntil: days, Overdue: !r.Completed && days < 0}
}
