package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ornge/orange-services/internal/domain/fridge"
	"github.com/ornge/orange-services/internal/platform/migrations"
)

// openTestDB connects to the database named by TEST_POSTGRES_DSN, skipping
// the test when it is unset.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Apply(context.Background(), db.DB); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func TestFridgeRoundTripIntegration(t *testing.T) {
	db := openTestDB(t)
	store := New(db)
	ctx := context.Background()

	clientID := "it-client-" + time.Now().Format("20060102150405.000")

	created, err := store.CreateFridge(ctx, clientID, "Integration Kitchen")
	if err != nil {
		t.Fatalf("create fridge: %v", err)
	}
	if created.ClientID != clientID {
		t.Fatalf("client id not round-tripped: %+v", created)
	}

	expiry := time.Now().AddDate(0, 0, 5).Truncate(24 * time.Hour)
	item, err := store.AddItem(ctx, clientID, fridge.Item{
		Name:       "Milk",
		Category:   "dairy",
		Quantity:   4,
		Score:      100,
		ExpiryDate: &expiry,
	})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	item.Quantity = 3
	item.Score = 85
	updated, err := store.SaveItemState(ctx, item)
	if err != nil {
		t.Fatalf("save item state: %v", err)
	}
	if updated.Quantity != 3 || updated.Score != 85 {
		t.Fatalf("unexpected state: %+v", updated)
	}
	if updated.ExpiryDate == nil {
		t.Fatal("expiry date dropped by COALESCE update")
	}

	items, err := store.ListItems(ctx, clientID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
}
