// Package migrations applies the shared database schema at startup. Every
// statement is idempotent so all four services can race to apply it.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

	`CREATE TABLE IF NOT EXISTS fridges (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		client_ids JSONB NOT NULL,
		created_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS fridge_items (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		fridge_id UUID NOT NULL REFERENCES fridges(id),
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		expiry_date TIMESTAMPTZ,
		added_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		is_shopping_item BOOLEAN NOT NULL DEFAULT FALSE,
		score INTEGER NOT NULL DEFAULT 100 CHECK (score >= 0),
		scanner_id TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS food_entries (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		client_id TEXT NOT NULL,
		date DATE NOT NULL,
		meal_type TEXT NOT NULL,
		food_category TEXT NOT NULL,
		food_name TEXT NOT NULL,
		calories INTEGER NOT NULL DEFAULT 0,
		mood_tag TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS orange_users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		client_id TEXT NOT NULL UNIQUE,
		name TEXT,
		streak INTEGER NOT NULL DEFAULT 0,
		actions INTEGER NOT NULL DEFAULT 0,
		level INTEGER NOT NULL DEFAULT 0,
		daily_quote_count INTEGER NOT NULL DEFAULT 0,
		games_played INTEGER NOT NULL DEFAULT 0,
		tarot_draws INTEGER NOT NULL DEFAULT 0,
		last_login TIMESTAMPTZ,
		food_points INTEGER NOT NULL DEFAULT 0,
		food_streak INTEGER NOT NULL DEFAULT 0,
		gender TEXT,
		is_special_moodboard_allowed BOOLEAN NOT NULL DEFAULT FALSE,
		weekly_spends DOUBLE PRECISION NOT NULL DEFAULT 0,
		today_expense DOUBLE PRECISION NOT NULL DEFAULT 0,
		push_subscription JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_fridge_items_fridge_id ON fridge_items (fridge_id)`,

	`CREATE INDEX IF NOT EXISTS idx_food_entries_client_date ON food_entries (client_id, date)`,
}

// Apply executes every schema statement in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
	}
	return nil
}
