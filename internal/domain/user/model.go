// Package user holds the Orange user profile model.
package user

import (
	"encoding/json"
	"time"
)

// User is one orange_users row. Gameplay counters live on the same row the
// way the original schema keeps them.
type User struct {
	ID                        string          `db:"id" json:"id"`
	ClientID                  string          `db:"client_id" json:"client_id"`
	Name                      *string         `db:"name" json:"name"`
	Streak                    int             `db:"streak" json:"streak"`
	Actions                   int             `db:"actions" json:"actions"`
	Level                     int             `db:"level" json:"level"`
	DailyQuoteCount           int             `db:"daily_quote_count" json:"daily_quote_count"`
	GamesPlayed               int             `db:"games_played" json:"games_played"`
	TarotDraws                int             `db:"tarot_draws" json:"tarot_draws"`
	LastLogin                 *time.Time      `db:"last_login" json:"last_login"`
	FoodPoints                int             `db:"food_points" json:"food_points"`
	FoodStreak                int             `db:"food_streak" json:"food_streak"`
	Gender                    *string         `db:"gender" json:"gender"`
	IsSpecialMoodboardAllowed bool            `db:"is_special_moodboard_allowed" json:"is_special_moodboard_allowed"`
	WeeklySpends              float64         `db:"weekly_spends" json:"weekly_spends"`
	TodayExpense              float64         `db:"today_expense" json:"today_expense"`
	PushSubscription          json.RawMessage `db:"push_subscription" json:"push_subscription,omitempty"`
	CreatedAt                 time.Time       `db:"created_at" json:"created_at"`
}

// Patch is a partial profile update; nil fields are left unchanged.
type Patch struct {
	Name                      *string    `json:"name"`
	Streak                    *int       `json:"streak"`
	Actions                   *int       `json:"actions"`
	Level                     *int       `json:"level"`
	DailyQuoteCount           *int       `json:"daily_quote_count"`
	GamesPlayed               *int       `json:"games_played"`
	TarotDraws                *int       `json:"tarot_draws"`
	LastLogin                 *time.Time `json:"last_login"`
	FoodPoints                *int       `json:"food_points"`
	FoodStreak                *int       `json:"food_streak"`
	Gender                    *string    `json:"gender"`
	IsSpecialMoodboardAllowed *bool      `json:"is_special_moodboard_allowed"`
	WeeklySpends              *float64   `json:"weekly_spends"`
	TodayExpense              *float64   `json:"today_expense"`
}

// IsEmpty reports whether the patch carries no changes.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Streak == nil && p.Actions == nil && p.Level == nil &&
		p.DailyQuoteCount == nil && p.GamesPlayed == nil && p.TarotDraws == nil &&
		p.LastLogin == nil && p.FoodPoints == nil && p.FoodStreak == nil &&
		p.Gender == nil && p.IsSpecialMoodboardAllowed == nil &&
		p.WeeklySpends == nil && p.TodayExpense == nil
}

// Expenses is the finance view of a user row.
type Expenses struct {
	ClientID     string  `json:"client_id"`
	TodayExpense float64 `json:"today_expense"`
	WeeklySpends float64 `json:"weekly_spends"`
}
