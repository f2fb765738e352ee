// Package herd manages cows, bulls and milking records.
package herd

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

// Service implements the herd record operations on top of a store.
type Service struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a herd service.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// WithClock overrides the clock. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func duplicateTag(err error, tag string) error {
	if errors.Is(err, models.ErrDuplicate) {
		return &models.ValidationError{Field: "tag_number", Value: tag, Reason: "already used by another cow"}
	}
	return err
}
