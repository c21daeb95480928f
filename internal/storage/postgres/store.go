// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/ornge/orange-services/internal/config"
	"github.com/ornge/orange-services/internal/domain/food"
	"github.com/ornge/orange-services/internal/domain/fridge"
	"github.com/ornge/orange-services/internal/domain/user"
	"github.com/ornge/orange-services/internal/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sqlx.DB
}

var _ storage.FridgeStore = (*Store)(nil)
var _ storage.FoodStore = (*Store)(nil)
var _ storage.UserStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open connects to Postgres with the configured pool limits and verifies the
// connection with a bounded ping.
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if cfg.Driver == "" {
		return nil, fmt.Errorf("database driver not configured")
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database dsn not configured")
	}

	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// --- FridgeStore ------------------------------------------------------------

const fridgeColumns = `id, name, client_ids #>> '{}' AS client_id, created_date`

func (s *Store) CreateFridge(ctx context.Context, clientID, name string) (fridge.Fridge, error) {
	clientJSON, err := json.Marshal(clientID)
	if err != nil {
		return fridge.Fridge{}, err
	}

	var f fridge.Fridge
	err = s.db.GetContext(ctx, &f, `
		INSERT INTO fridges (client_ids, name, created_date)
		VALUES ($1::jsonb, $2, NOW())
		RETURNING `+fridgeColumns+`
	`, clientJSON, name)
	if err != nil {
		return fridge.Fridge{}, err
	}
	return f, nil
}

func (s *Store) GetFridge(ctx context.Context, clientID string) (fridge.Fridge, error) {
	var f fridge.Fridge
	err := s.db.GetContext(ctx, &f, `
		SELECT `+fridgeColumns+` FROM fridges
		WHERE client_ids #>> '{}' = $1
		ORDER BY created_date DESC
		LIMIT 1
	`, clientID)
	if err != nil {
		return fridge.Fridge{}, err
	}
	return f, nil
}

// fridgeID resolves the owning fridge. Lookups assume at most one match,
// preferring the most recently created fridge.
func (s *Store) fridgeID(ctx context.Context, clientID string) (string, error) {
	var id string
	err := s.db.GetContext(ctx, &id, `
		SELECT id FROM fridges
		WHERE client_ids #>> '{}' = $1
		ORDER BY created_date DESC
		LIMIT 1
	`, clientID)
	if err != nil {
		return "", err
	}
	return id, nil
}

const itemColumns = `id, fridge_id, name, category, quantity, expiry_date, added_date, is_shopping_item, score, scanner_id`

func (s *Store) ListItems(ctx context.Context, clientID string) ([]fridge.Item, error) {
	fridgeID, err := s.fridgeID(ctx, clientID)
	if err != nil {
		if err == sql.ErrNoRows {
			return []fridge.Item{}, nil
		}
		return nil, err
	}

	items := []fridge.Item{}
	err = s.db.SelectContext(ctx, &items, `
		SELECT `+itemColumns+`
		FROM fridge_items
		WHERE fridge_id = $1
		ORDER BY added_date DESC
	`, fridgeID)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) AddItem(ctx context.Context, clientID string, item fridge.Item) (fridge.Item, error) {
	fridgeID, err := s.fridgeID(ctx, clientID)
	if err != nil {
		return fridge.Item{}, err
	}

	var created fridge.Item
	err = s.db.GetContext(ctx, &created, `
		INSERT INTO fridge_items (fridge_id, name, category, quantity, expiry_date, added_date, is_shopping_item, score, scanner_id)
		VALUES ($1, $2, $3, $4, $5, NOW(), $6, $7, $8)
		RETURNING `+itemColumns+`
	`, fridgeID, item.Name, item.Category, item.Quantity, item.ExpiryDate, item.IsShoppingItem, item.Score, item.ScannerID)
	if err != nil {
		return fridge.Item{}, err
	}
	return created, nil
}

func (s *Store) GetItem(ctx context.Context, clientID, itemID string) (fridge.Item, error) {
	fridgeID, err := s.fridgeID(ctx, clientID)
	if err != nil {
		return fridge.Item{}, err
	}

	var item fridge.Item
	err = s.db.GetContext(ctx, &item, `
		SELECT `+itemColumns+`
		FROM fridge_items
		WHERE fridge_id = $1 AND id = $2
	`, fridgeID, itemID)
	if err != nil {
		return fridge.Item{}, err
	}
	return item, nil
}

func (s *Store) SaveItemState(ctx context.Context, item fridge.Item) (fridge.Item, error) {
	var updated fridge.Item
	err := s.db.GetContext(ctx, &updated, `
		UPDATE fridge_items
		SET
			quantity = $2,
			score = $3,
			is_shopping_item = $4,
			expiry_date = COALESCE($5, expiry_date),
			scanner_id = COALESCE($6, scanner_id)
		WHERE id = $1
		RETURNING `+itemColumns+`
	`, item.ID, item.Quantity, item.Score, item.IsShoppingItem, item.ExpiryDate, item.ScannerID)
	if err != nil {
		return fridge.Item{}, err
	}
	return updated, nil
}

const alertColumns = `f.client_ids #>> '{}' AS client_id, fi.name, fi.quantity, fi.expiry_date`

func (s *Store) ExpiringItems(ctx context.Context, withinDays int) ([]fridge.AlertItem, error) {
	items := []fridge.AlertItem{}
	err := s.db.SelectContext(ctx, &items, `
		SELECT `+alertColumns+`
		FROM fridge_items fi
		JOIN fridges f ON f.id = fi.fridge_id
		WHERE fi.expiry_date IS NOT NULL
		  AND fi.expiry_date > NOW()
		  AND fi.expiry_date <= NOW() + make_interval(days => $1)
		  AND fi.quantity > 0
		ORDER BY f.client_ids #>> '{}', fi.expiry_date
	`, withinDays)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) LowStockItems(ctx context.Context, maxQuantity int) ([]fridge.AlertItem, error) {
	items := []fridge.AlertItem{}
	err := s.db.SelectContext(ctx, &items, `
		SELECT `+alertColumns+`
		FROM fridge_items fi
		JOIN fridges f ON f.id = fi.fridge_id
		WHERE fi.quantity > 0 AND fi.quantity <= $1
		ORDER BY f.client_ids #>> '{}', fi.name
	`, maxQuantity)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ExpiredItems(ctx context.Context) ([]fridge.AlertItem, error) {
	items := []fridge.AlertItem{}
	err := s.db.SelectContext(ctx, &items, `
		SELECT `+alertColumns+`
		FROM fridge_items fi
		JOIN fridges f ON f.id = fi.fridge_id
		WHERE fi.expiry_date IS NOT NULL
		  AND fi.expiry_date < NOW()
		  AND fi.quantity > 0
		ORDER BY f.client_ids #>> '{}', fi.expiry_date
	`)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- FoodStore --------------------------------------------------------------

const foodColumns = `id, client_id, to_char(date, 'YYYY-MM-DD') AS date, meal_type, food_category, food_name, calories, mood_tag`

func (s *Store) EntriesByDate(ctx context.Context, clientID, date string) ([]food.Entry, error) {
	entries := []food.Entry{}
	err := s.db.SelectContext(ctx, &entries, `
		SELECT `+foodColumns+`
		FROM food_entries
		WHERE client_id = $1 AND date = $2
		ORDER BY meal_type
	`, clientID, date)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) EntriesByDateAndMeal(ctx context.Context, clientID, date, mealType string) ([]food.Entry, error) {
	entries := []food.Entry{}
	err := s.db.SelectContext(ctx, &entries, `
		SELECT `+foodColumns+`
		FROM food_entries
		WHERE client_id = $1 AND date = $2 AND meal_type = $3
		ORDER BY meal_type
	`, clientID, date, mealType)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) EntriesByDateRange(ctx context.Context, clientID, startDate, endDate string) ([]food.Entry, error) {
	entries := []food.Entry{}
	err := s.db.SelectContext(ctx, &entries, `
		SELECT `+foodColumns+`
		FROM food_entries
		WHERE client_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date, meal_type
	`, clientID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) CreateEntry(ctx context.Context, entry food.Entry) (food.Entry, error) {
	var created food.Entry
	err := s.db.GetContext(ctx, &created, `
		INSERT INTO food_entries (client_id, date, meal_type, food_category, food_name, calories, mood_tag)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+foodColumns+`
	`, entry.ClientID, entry.Date, entry.MealType, entry.FoodCategory, entry.FoodName, entry.Calories, entry.MoodTag)
	if err != nil {
		return food.Entry{}, err
	}
	return created, nil
}

func (s *Store) UpdateEntry(ctx context.Context, id, clientID string, patch food.EntryPatch) (food.Entry, error) {
	setClauses := []string{}
	args := []interface{}{}
	addClause := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Date != nil {
		addClause("date", *patch.Date)
	}
	if patch.MealType != nil {
		addClause("meal_type", *patch.MealType)
	}
	if patch.FoodCategory != nil {
		addClause("food_category", *patch.FoodCategory)
	}
	if patch.FoodName != nil {
		addClause("food_name", *patch.FoodName)
	}
	if patch.Calories != nil {
		addClause("calories", *patch.Calories)
	}
	if patch.MoodTag != nil {
		addClause("mood_tag", *patch.MoodTag)
	}

	if len(setClauses) == 0 {
		return food.Entry{}, fmt.Errorf("no fields provided for update")
	}

	args = append(args, id, clientID)
	query := fmt.Sprintf(`
		UPDATE food_entries
		SET %s
		WHERE id = $%d AND client_id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), len(args)-1, len(args), foodColumns)

	var updated food.Entry
	if err := s.db.GetContext(ctx, &updated, query, args...); err != nil {
		return food.Entry{}, err
	}
	return updated, nil
}

func (s *Store) DeleteEntry(ctx context.Context, id, clientID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM food_entries
		WHERE id = $1 AND client_id = $2
	`, id, clientID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- UserStore --------------------------------------------------------------

const userColumns = `id, client_id, name, streak, actions, level, daily_quote_count,
	games_played, tarot_draws, last_login, food_points, food_streak, gender,
	is_special_moodboard_allowed, weekly_spends, today_expense, push_subscription, created_at`

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	users := []user.User{}
	err := s.db.SelectContext(ctx, &users, `
		SELECT `+userColumns+`
		FROM orange_users
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var u user.User
	err := s.db.GetContext(ctx, &u, `
		SELECT `+userColumns+`
		FROM orange_users
		WHERE id = $1
	`, id)
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUserByClientID(ctx context.Context, clientID string) (user.User, error) {
	var u user.User
	err := s.db.GetContext(ctx, &u, `
		SELECT `+userColumns+`
		FROM orange_users
		WHERE client_id = $1
	`, clientID)
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) UpdateUserByClientID(ctx context.Context, clientID string, patch user.Patch) (user.User, error) {
	setClauses := []string{}
	args := []interface{}{clientID}
	addClause := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		addClause("name", *patch.Name)
	}
	if patch.Streak != nil {
		addClause("streak", *patch.Streak)
	}
	if patch.Actions != nil {
		addClause("actions", *patch.Actions)
	}
	if patch.Level != nil {
		addClause("level", *patch.Level)
	}
	if patch.DailyQuoteCount != nil {
		addClause("daily_quote_count", *patch.DailyQuoteCount)
	}
	if patch.GamesPlayed != nil {
		addClause("games_played", *patch.GamesPlayed)
	}
	if patch.TarotDraws != nil {
		addClause("tarot_draws", *patch.TarotDraws)
	}
	if patch.LastLogin != nil {
		addClause("last_login", *patch.LastLogin)
	}
	if patch.FoodPoints != nil {
		addClause("food_points", *patch.FoodPoints)
	}
	if patch.FoodStreak != nil {
		addClause("food_streak", *patch.FoodStreak)
	}
	if patch.Gender != nil {
		addClause("gender", *patch.Gender)
	}
	if patch.IsSpecialMoodboardAllowed != nil {
		addClause("is_special_moodboard_allowed", *patch.IsSpecialMoodboardAllowed)
	}
	if patch.WeeklySpends != nil {
		addClause("weekly_spends", *patch.WeeklySpends)
	}
	if patch.TodayExpense != nil {
		addClause("today_expense", *patch.TodayExpense)
	}

	if len(setClauses) == 0 {
		return user.User{}, fmt.Errorf("no fields provided for update")
	}

	query := fmt.Sprintf(`
		UPDATE orange_users
		SET %s
		WHERE client_id = $1
		RETURNING %s
	`, strings.Join(setClauses, ", "), userColumns)

	var updated user.User
	if err := s.db.GetContext(ctx, &updated, query, args...); err != nil {
		return user.User{}, err
	}
	return updated, nil
}

func (s *Store) GetSubscription(ctx context.Context, clientID string) (json.RawMessage, error) {
	var sub []byte
	err := s.db.GetContext(ctx, &sub, `
		SELECT push_subscription FROM orange_users WHERE client_id = $1
	`, clientID)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(sub), nil
}

func (s *Store) SaveSubscription(ctx context.Context, clientID string, subscription json.RawMessage) (user.User, error) {
	var updated user.User
	err := s.db.GetContext(ctx, &updated, `
		UPDATE orange_users
		SET push_subscription = $2
		WHERE client_id = $1
		RETURNING `+userColumns+`
	`, clientID, []byte(subscription))
	if err == sql.ErrNoRows {
		// First contact from this client: create the row with the subscription.
		err = s.db.GetContext(ctx, &updated, `
			INSERT INTO orange_users (client_id, push_subscription, created_at)
			VALUES ($1, $2, NOW())
			RETURNING `+userColumns+`
		`, clientID, []byte(subscription))
	}
	if err != nil {
		return user.User{}, err
	}
	return updated, nil
}

func (s *Store) ClearSubscription(ctx context.Context, clientID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE orange_users SET push_subscription = NULL WHERE client_id = $1
	`, clientID)
	return err
}
