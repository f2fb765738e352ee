// Package scheduler runs the daily digest and milking export jobs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/calendar"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/service/reporting"
)

const defaultJobTimeout = 2 * time.Minute

// UserLister lists every account.
type UserLister interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Reporter builds the per-user job payloads.
type Reporter interface {
	DailyDigest(ctx context.Context, user models.User, day time.Time) (string, error)
	MilkingExportRow(ctx context.Context, user models.User, day time.Time) ([]interface{}, error)
}

// DigestSender delivers a digest to a user.
type DigestSender interface {
	SendDigest(ctx context.Context, user models.User, digest string) error
}

// Exporter writes milking rows to the spreadsheet.
type Exporter interface {
	Export(ctx context.Context, rows [][]interface{}) error
}

// Options holds the cron schedules. An empty schedule disables its job, as
// does a nil sender or exporter.
type Options struct {
	DigestSchedule string
	ExportSchedule string
	Location       *time.Location
	JobTimeout     time.Duration
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	opts     Options
	users    UserLister
	reporter Reporter
	sender   DigestSender
	exporter Exporter
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(opts Options, users UserLister, reporter Reporter, sender DigestSender, exporter Exporter, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = defaultJobTimeout
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(opts.Location)),
		opts:     opts,
		users:    users,
		reporter: reporter,
		sender:   sender,
		exporter: exporter,
		logger:   logger,
		now:      time.Now,
	}
}

// Start registers the enabled jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("timezone", s.opts.Location.String()))

	if s.sender != nil && s.opts.DigestSchedule != "" {
		if _, err := s.cron.AddFunc(s.opts.DigestSchedule, s.job("daily digest", s.RunDigest)); err != nil {
			return fmt.Errorf("schedule daily digest %q: %w", s.opts.DigestSchedule, err)
		}
	}
	if s.exporter != nil && s.opts.ExportSchedule != "" {
		if _, err := s.cron.AddFunc(s.opts.ExportSchedule, s.job("milking export", s.RunExport)); err != nil {
			return fmt.Errorf("schedule milking export %q: %w", s.opts.ExportSchedule, err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// Jobs reports how many jobs are registered.
func (s *Scheduler) Jobs() int { return len(s.cron.Entries()) }

func (s *Scheduler) job(name string, run func(context.Context) error) func() {
	return func() {
		s.logger.Info("job started", zap.String("job", name))
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.JobTimeout)
		defer cancel()

		if err := run(ctx); err != nil {
			s.logger.Error("job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.logger.Info("job finished", zap.String("job", name))
	}
}

// today is the current date in the farm's timezone, as a UTC day.
func (s *Scheduler) today() time.Time {
	return calendar.LocalDay(s.now(), s.opts.Location)
}

// RunDigest sends the daily digest to every user with a linked phone.
// Failures for one user do not stop the others.
func (s *Scheduler) RunDigest(ctx context.Context) error {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	today := s.today()
	var errs []error
	sent := 0
	for _, user := range users {
		if user.WhatsAppPhone == "" {
			continue
		}
		digest, err := s.reporter.DailyDigest(ctx, user, today)
		if err != nil {
			errs = append(errs, fmt.Errorf("digest for %s: %w", user.ID, err))
			continue
		}
		if err := s.sender.SendDigest(ctx, user, digest); err != nil {
			errs = append(errs, err)
			continue
		}
		sent++
	}

	s.logger.Info("daily digest delivered", zap.Int("sent", sent), zap.Int("failed", len(errs)))
	return errors.Join(errs...)
}

// RunExport appends today's milking totals of every farm that recorded milk.
func (s *Scheduler) RunExport(ctx context.Context) error {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	today := s.today()
	var (
		rows [][]interface{}
		errs []error
	)
	for _, user := range reporting.SortedUsers(users) {
		row, err := s.reporter.MilkingExportRow(ctx, user, today)
		if err != nil {
			errs = append(errs, fmt.Errorf("export row for %s: %w", user.ID, err))
			continue
		}
		if total, ok := row[2].(float64); ok && total == 0 {
			continue
		}
		rows = append(rows, row)
	}

	if err := s.exporter.Export(ctx, rows); err != nil {
		errs = append(errs, err)
	}
	s.logger.Info("milking export written", zap.Int("rows", len(rows)))
	return errors.Join(errs...)
}
