// Package user implements Orange user profile operations.
package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/ornge/orange-services/internal/domain/user"
	svcerrors "github.com/ornge/orange-services/internal/errors"
	"github.com/ornge/orange-services/internal/storage"
	"github.com/ornge/orange-services/pkg/logger"
)

// Service manages user profiles, push subscriptions and expense counters.
type Service struct {
	store storage.UserStore
	log   *logger.Logger
}

// New constructs a user service.
func New(store storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("user")
	}
	return &Service{store: store, log: log}
}

// List returns every registered user.
func (s *Service) List(ctx context.Context) ([]user.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, svcerrors.Internal("error fetching users", err)
	}
	return users, nil
}

// GetByID returns one user by primary key.
func (s *Service) GetByID(ctx context.Context, id string) (user.User, error) {
	u, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, svcerrors.NotFound("user not found")
		}
		return user.User{}, svcerrors.Internal("error fetching user", err)
	}
	return u, nil
}

// GetByClientID returns the profile owned by a client.
func (s *Service) GetByClientID(ctx context.Context, clientID string) (user.User, error) {
	u, err := s.store.GetUserByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, svcerrors.NotFound("user not found")
		}
		return user.User{}, svcerrors.Internal("error fetching user", err)
	}
	return u, nil
}

// Update applies a partial profile update for the client.
func (s *Service) Update(ctx context.Context, clientID string, patch user.Patch) (user.User, error) {
	if patch.IsEmpty() {
		return user.User{}, svcerrors.Validation("update data is required")
	}

	u, err := s.store.UpdateUserByClientID(ctx, clientID, patch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, svcerrors.NotFound("user not found")
		}
		return user.User{}, svcerrors.Internal("error updating user", err)
	}
	return u, nil
}

// SaveSubscription stores the client's web push subscription.
func (s *Service) SaveSubscription(ctx context.Context, clientID string, subscription json.RawMessage) (user.User, error) {
	if len(subscription) == 0 {
		return user.User{}, svcerrors.Validation("subscription is required")
	}
	if !json.Valid(subscription) {
		return user.User{}, svcerrors.Validation("subscription must be a JSON object")
	}

	u, err := s.store.SaveSubscription(ctx, clientID, subscription)
	if err != nil {
		return user.User{}, svcerrors.Internal("error saving push subscription", err)
	}
	return u, nil
}

// Expenses returns the finance counters for the client.
func (s *Service) Expenses(ctx context.Context, clientID string) (user.Expenses, error) {
	u, err := s.GetByClientID(ctx, clientID)
	if err != nil {
		return user.Expenses{}, err
	}
	return user.Expenses{
		ClientID:     u.ClientID,
		TodayExpense: u.TodayExpense,
		WeeklySpends: u.WeeklySpends,
	}, nil
}

// UpdateExpenses overwrites the finance counters for the client. Nil fields
// are left unchanged.
func (s *Service) UpdateExpenses(ctx context.Context, clientID string, todayExpense, weeklySpends *float64) (user.Expenses, error) {
	if todayExpense == nil && weeklySpends == nil {
		return user.Expenses{}, svcerrors.Validation("today_expense or weekly_spends is required")
	}
	if todayExpense != nil && *todayExpense < 0 {
		return user.Expenses{}, svcerrors.Validation("today_expense must not be negative")
	}
	if weeklySpends != nil && *weeklySpends < 0 {
		return user.Expenses{}, svcerrors.Validation("weekly_spends must not be negative")
	}

	u, err := s.Update(ctx, clientID, user.Patch{TodayExpense: todayExpense, WeeklySpends: weeklySpends})
	if err != nil {
		return user.Expenses{}, err
	}
	return user.Expenses{
		ClientID:     u.ClientID,
		TodayExpense: u.TodayExpense,
		WeeklySpends: u.WeeklySpends,
	}, nil
}
