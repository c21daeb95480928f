package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/ornge/orange-services/internal/domain/food"
	"github.com/ornge/orange-services/internal/domain/fridge"
	"github.com/ornge/orange-services/internal/domain/user"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "sqlmock")), mock
}

var itemRowColumns = []string{
	"id", "fridge_id", "name", "category", "quantity",
	"expiry_date", "added_date", "is_shopping_item", "score", "scanner_id",
}

func TestGetFridgeResolvesClientFromJSONB(t *testing.T) {
	store, mock := newMockStore(t)

	created := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`client_ids #>> '{}' = $1`)).
		WithArgs("client-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "client_id", "created_date"}).
			AddRow("f-1", "Kitchen", "client-1", created))

	f, err := store.GetFridge(context.Background(), "client-1")
	if err != nil {
		t.Fatalf("get fridge: %v", err)
	}
	if f.ID != "f-1" || f.ClientID != "client-1" {
		t.Fatalf("unexpected fridge: %+v", f)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSaveItemStateCoalescesExpiry(t *testing.T) {
	store, mock := newMockStore(t)

	added := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`expiry_date = COALESCE($5, expiry_date)`)).
		WithArgs("item-1", 3, 85, false, nil, nil).
		WillReturnRows(sqlmock.NewRows(itemRowColumns).
			AddRow("item-1", "f-1", "Milk", "dairy", 3, nil, added, false, 85, nil))

	updated, err := store.SaveItemState(context.Background(), fridge.Item{
		ID:       "item-1",
		FridgeID: "f-1",
		Quantity: 3,
		Score:    85,
	})
	if err != nil {
		t.Fatalf("save item state: %v", err)
	}
	if updated.Score != 85 || updated.Quantity != 3 {
		t.Fatalf("unexpected item: %+v", updated)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestExpiringItemsQueryWindow(t *testing.T) {
	store, mock := newMockStore(t)

	expiry := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`NOW() + make_interval(days => $1)`)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"client_id", "name", "quantity", "expiry_date"}).
			AddRow("client-1", "Milk", 2, expiry).
			AddRow("client-2", "Eggs", 6, expiry))

	items, err := store.ExpiringItems(context.Background(), 3)
	if err != nil {
		t.Fatalf("expiring items: %v", err)
	}
	if len(items) != 2 || items[0].ClientID != "client-1" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateEntryBuildsTypedSet(t *testing.T) {
	store, mock := newMockStore(t)

	calories := 450
	mood := "happy"
	mock.ExpectQuery(regexp.QuoteMeta(`SET calories = $1, mood_tag = $2`)).
		WithArgs(450, "happy", "entry-1", "client-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "client_id", "date", "meal_type", "food_category", "food_name", "calories", "mood_tag",
		}).AddRow("entry-1", "client-1", "2026-08-30", "lunch", "grain", "rice", 450, "happy"))

	updated, err := store.UpdateEntry(context.Background(), "entry-1", "client-1", food.EntryPatch{
		Calories: &calories,
		MoodTag:  &mood,
	})
	if err != nil {
		t.Fatalf("update entry: %v", err)
	}
	if updated.Calories != 450 {
		t.Fatalf("unexpected entry: %+v", updated)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteEntryMissingRow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM food_entries`)).
		WithArgs("entry-1", "client-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteEntry(context.Background(), "entry-1", "client-1")
	if err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestUpdateUserPatchParameterOrder(t *testing.T) {
	store, mock := newMockStore(t)

	streak := 4
	spends := 99.5
	mock.ExpectQuery(regexp.QuoteMeta(`SET streak = $2, weekly_spends = $3`)).
		WithArgs("client-1", 4, 99.5).
		WillReturnRows(userRow("u-1", "client-1"))

	updated, err := store.UpdateUserByClientID(context.Background(), "client-1", user.Patch{
		Streak:       &streak,
		WeeklySpends: &spends,
	})
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if updated.ID != "u-1" {
		t.Fatalf("unexpected user: %+v", updated)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSaveSubscriptionInsertsOnMissingRow(t *testing.T) {
	store, mock := newMockStore(t)

	sub := []byte(`{"endpoint":"https://push.example/abc"}`)
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE orange_users`)).
		WithArgs("client-1", sub).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO orange_users`)).
		WithArgs("client-1", sub).
		WillReturnRows(userRow("u-1", "client-1"))

	created, err := store.SaveSubscription(context.Background(), "client-1", sub)
	if err != nil {
		t.Fatalf("save subscription: %v", err)
	}
	if created.ClientID != "client-1" {
		t.Fatalf("unexpected user: %+v", created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func userRow(id, clientID string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "client_id", "name", "streak", "actions", "level", "daily_quote_count",
		"games_played", "tarot_draws", "last_login", "food_points", "food_streak",
		"gender", "is_special_moodboard_allowed", "weekly_spends", "today_expense",
		"push_subscription", "created_at",
	}).AddRow(id, clientID, nil, 0, 0, 1, 0, 0, 0, nil, 0, 0, nil, false, 0.0, 0.0, nil, time.Now())
}
