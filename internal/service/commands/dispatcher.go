// Package commands answers the herd queries farmers send over WhatsApp.
package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/calendar"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/metrics"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates the requested command does not exist.
var ErrUnsupportedCommand = errors.New("unsupported command")

// HelpText lists the supported commands.
const HelpText = "Herdbook commands:\n" +
	"/reminders - tasks due today or overdue\n" +
	"/stock - low, expiring and expired medicines\n" +
	"/calvings - calvings expected within 30 days\n" +
	"/milk [today|yesterday|YYYY-MM-DD] - milk totals for a day\n" +
	"/help - this message"

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	RemindersDigest(ctx context.Context, owner string) (string, error)
	StockDigest(ctx context.Context, owner string) (string, error)
	CalvingsDigest(ctx context.Context, owner string) (string, error)
	MilkDigest(ctx context.Context, owner string, day time.Time) (string, error)
}

// Dispatcher answers a parsed command on behalf of owner.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, owner string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	reporting ReportingAdapter
	recorder  metrics.Recorder
	logger    *zap.Logger
	now       func() time.Time
}

// NewService constructs a command dispatcher.
func NewService(reporting ReportingAdapter, recorder metrics.Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		reporting: reporting,
		recorder:  metrics.OrNop(recorder),
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the clock. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// HandleCommand runs the query behind cmd and returns the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, owner string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("user_id", owner), zap.Strings("args", cmd.Args))

	var (
		reply string
		err   error
	)
	switch cmd.Type {
	case models.CommandHelp:
		reply = HelpText
	case models.CommandReminders:
		reply, err = s.reporting.RemindersDigest(ctx, owner)
	case models.CommandStock:
		reply, err = s.reporting.StockDigest(ctx, owner)
	case models.CommandCalvings:
		reply, err = s.reporting.CalvingsDigest(ctx, owner)
	case models.CommandMilk:
		var day time.Time
		day, err = s.milkDay(cmd.Args)
		if err == nil {
			reply, err = s.reporting.MilkDigest(ctx, owner, day)
		}
	default:
		return "", ErrUnsupportedCommand
	}
	if err != nil {
		return "", fmt.Errorf("answer /%s: %w", cmd.Type, err)
	}

	s.recorder.RecordEvent(metrics.EventCommandAnswered)
	return reply, nil
}

func (s *Service) milkDay(args []string) (time.Time, error) {
	now := s.now()
	if len(args) == 0 {
		return calendar.Day(now), nil
	}
	switch args[0] {
	case "today":
		return calendar.Day(now), nil
	case "yesterday":
		return calendar.AddDays(now, -1), nil
	}
	day, err := calendar.ParseDay(args[0])
	if err != nil {
		return time.Time{}, ErrInvalidArguments
	}
	return day, nil
}
