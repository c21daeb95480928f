// Package food implements the food diary operations and calorie aggregation.
package food

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/ornge/orange-services/internal/domain/food"
	svcerrors "github.com/ornge/orange-services/internal/errors"
	"github.com/ornge/orange-services/internal/storage"
	"github.com/ornge/orange-services/pkg/logger"
)

// Service manages food diary entries for one client at a time.
type Service struct {
	store storage.FoodStore
	log   *logger.Logger
	now   func() time.Time
}

// New constructs a food service.
func New(store storage.FoodStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("food")
	}
	return &Service{store: store, log: log, now: time.Now}
}

// WithClock overrides the service clock; tests use it to pin the week window.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func validDate(date string) bool {
	_, err := time.Parse(food.DateLayout, date)
	return err == nil
}

// EntriesByDate returns the client's entries for one calendar day, optionally
// filtered to a meal type.
func (s *Service) EntriesByDate(ctx context.Context, clientID, date, mealType string) ([]food.Entry, error) {
	if !validDate(date) {
		return nil, svcerrors.Validation("date must be formatted YYYY-MM-DD")
	}

	var (
		entries []food.Entry
		err     error
	)
	if mealType != "" {
		entries, err = s.store.EntriesByDateAndMeal(ctx, clientID, date, mealType)
	} else {
		entries, err = s.store.EntriesByDate(ctx, clientID, date)
	}
	if err != nil {
		return nil, svcerrors.Internal("error fetching food entries by date", err)
	}
	return entries, nil
}

// EntriesByDateRange returns the client's entries between two dates inclusive.
func (s *Service) EntriesByDateRange(ctx context.Context, clientID, startDate, endDate string) ([]food.Entry, error) {
	if !validDate(startDate) || !validDate(endDate) {
		return nil, svcerrors.Validation("start_date and end_date must be formatted YYYY-MM-DD")
	}

	entries, err := s.store.EntriesByDateRange(ctx, clientID, startDate, endDate)
	if err != nil {
		return nil, svcerrors.Internal("error fetching food entries by date range", err)
	}
	return entries, nil
}

// CreateEntry logs a meal.
func (s *Service) CreateEntry(ctx context.Context, entry food.Entry) (food.Entry, error) {
	if !validDate(entry.Date) {
		return food.Entry{}, svcerrors.Validation("date must be formatted YYYY-MM-DD")
	}
	if strings.TrimSpace(entry.MealType) == "" ||
		strings.TrimSpace(entry.FoodCategory) == "" ||
		strings.TrimSpace(entry.FoodName) == "" {
		return food.Entry{}, svcerrors.Validation("required fields: date, meal_type, food_category, food_name, calories")
	}
	if entry.Calories < 0 {
		return food.Entry{}, svcerrors.Validation("calories must not be negative")
	}

	created, err := s.store.CreateEntry(ctx, entry)
	if err != nil {
		return food.Entry{}, svcerrors.Internal("error creating food entry", err)
	}
	return created, nil
}

// UpdateEntry applies a partial update to one of the client's entries.
func (s *Service) UpdateEntry(ctx context.Context, id, clientID string, patch food.EntryPatch) (food.Entry, error) {
	if patch.IsEmpty() {
		return food.Entry{}, svcerrors.Validation("update data is required")
	}
	if patch.Date != nil && !validDate(*patch.Date) {
		return food.Entry{}, svcerrors.Validation("date must be formatted YYYY-MM-DD")
	}

	updated, err := s.store.UpdateEntry(ctx, id, clientID, patch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return food.Entry{}, svcerrors.NotFound("food entry not found or unauthorized")
		}
		return food.Entry{}, svcerrors.Internal("error updating food entry", err)
	}
	return updated, nil
}

// DeleteEntry removes one of the client's entries.
func (s *Service) DeleteEntry(ctx context.Context, id, clientID string) error {
	if err := s.store.DeleteEntry(ctx, id, clientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return svcerrors.NotFound("food entry not found or unauthorized")
		}
		return svcerrors.Internal("error deleting food entry", err)
	}
	return nil
}

// weekWindow returns the trailing seven day range ending today.
func (s *Service) weekWindow() (string, string) {
	end := s.now().UTC()
	start := end.AddDate(0, 0, -6)
	return start.Format(food.DateLayout), end.Format(food.DateLayout)
}

// DayEntries groups the trailing week's entries into per-day summaries.
func (s *Service) DayEntries(ctx context.Context, clientID string) ([]food.DayEntry, error) {
	startDate, endDate := s.weekWindow()
	entries, err := s.store.EntriesByDateRange(ctx, clientID, startDate, endDate)
	if err != nil {
		return nil, svcerrors.Internal("error fetching food entries by date range", err)
	}
	return food.GroupByDay(entries), nil
}

// WeeklyStats averages daily calories over the trailing week.
func (s *Service) WeeklyStats(ctx context.Context, clientID string) (food.WeeklyStats, error) {
	startDate, endDate := s.weekWindow()
	entries, err := s.store.EntriesByDateRange(ctx, clientID, startDate, endDate)
	if err != nil {
		return food.WeeklyStats{}, svcerrors.Internal("error fetching food entries by date range", err)
	}
	return food.ComputeWeeklyStats(entries), nil
}
