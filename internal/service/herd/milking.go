package herd

import (
	"context"
	"errors"
	"time"

	"github.com/mamadbah2/herdbook/internal/domain/calendar"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
	"github.com/mamadbah2/herdbook/internal/service/fields"
)

// DefaultMilkingLimit caps milking listings when no limit is given.
const DefaultMilkingLimit = 10

// MilkingInput describes one milking session.
type MilkingInput struct {
	CowID           string  `json:"cow_id"`
	MilkingDate     string  `json:"milking_date"`
	MilkingTime     string  `json:"milking_time"`
	MilkYieldLiters float64 `json:"milk_yield_liters"`
	MilkQuality     string  `json:"milk_quality"`
	Notes           string  `json:"notes"`
}

// MilkingQuery narrows milking listings. Dates are YYYY-MM-DD.
type MilkingQuery struct {
	CowID string
	From  string
	To    string
	Limit int
}

// RecordMilking stores a milking session for an owned cow.
func (s *Service) RecordMilking(ctx context.Context, owner string, in MilkingInput) (*models.MilkingRecord, error) {
	cowID, err := fields.Required("cow_id", in.CowID)
	if err != nil {
		return nil, err
	}
	date, err := fields.RequiredDay("milking_date", in.MilkingDate)
	if err != nil {
		return nil, err
	}
	session, err := fields.Enum("milking_time", in.MilkingTime, "", models.MilkingTimes)
	if err != nil {
		return nil, err
	}
	quality, err := fields.Enum("milk_quality", in.MilkQuality, string(models.QualityNormal), models.MilkQualities)
	if err != nil {
		return nil, err
	}
	if err := fields.NonNegative("milk_yield_liters", in.MilkYieldLiters); err != nil {
		return nil, err
	}
	if _, err := s.store.GetCow(ctx, owner, cowID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, &models.ValidationError{Field: "cow_id", Value: cowID, Reason: "unknown cow"}
		}
		return nil, err
	}

	record := &models.MilkingRecord{
		UserID:          owner,
		CowID:           cowID,
		MilkingDate:     date,
		MilkingTime:     models.MilkingTime(session),
		MilkYieldLiters: in.MilkYieldLiters,
		MilkQuality:     models.MilkQuality(quality),
		Notes:           in.Notes,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.store.CreateMilking(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ListMilking returns the most recent milking sessions first.
func (s *Service) ListMilking(ctx context.Context, owner string, q MilkingQuery) ([]models.MilkingRecord, error) {
	from, err := fields.OptionalDay("from", q.From)
	if err != nil {
		return nil, err
	}
	to, err := fields.OptionalDay("to", q.To)
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultMilkingLimit
	}
	return s.store.ListMilking(ctx, owner, repository.MilkingFilter{CowID: q.CowID, From: from, To: to, Limit: limit})
}

func (s *Service) DeleteMilking(ctx context.Context, owner, id string) error {
	return s.store.DeleteMilking(ctx, owner, id)
}

// DailySummary totals the milk of one day, overall and per session.
func (s *Service) DailySummary(ctx context.Context, owner string, day time.Time) (*models.MilkingSummary, error) {
	day = calendar.Day(day)
	records, err := s.store.ListMilking(ctx, owner, repository.MilkingFilter{From: &day, To: &day})
	if err != nil {
		return nil, err
	}
	return Summarize(day, records), nil
}

// Today is DailySummary for the current day.
func (s *Service) Today(ctx context.Context, owner string) (*models.MilkingSummary, error) {
	return s.DailySummary(ctx, owner, s.now())
}

// Summarize aggregates records that all belong to day.
func Summarize(day time.Time, records []models.MilkingRecord) *models.MilkingSummary {
	summary := &models.MilkingSummary{
		Date:   calendar.Day(day),
		ByTime: make(map[models.MilkingTime]float64, len(models.MilkingTimes)),
	}
	for _, t := range models.MilkingTimes {
		summary.ByTime[models.MilkingTime(t)] = 0
	}
	for _, r := range records {
		summary.TotalLiters += r.MilkYieldLiters
		summary.ByTime[r.MilkingTime] += r.MilkYieldLiters
		summary.Records++
	}
	return summary
}
