// Package storage defines the persistence interfaces shared by the services.
package storage

import (
	"context"
	"encoding/json"

	"github.com/ornge/orange-services/internal/domain/food"
	"github.com/ornge/orange-services/internal/domain/fridge"
	"github.com/ornge/orange-services/internal/domain/user"
)

// FridgeStore persists fridges and fridge items.
type FridgeStore interface {
	CreateFridge(ctx context.Context, clientID, name string) (fridge.Fridge, error)
	GetFridge(ctx context.Context, clientID string) (fridge.Fridge, error)

	ListItems(ctx context.Context, clientID string) ([]fridge.Item, error)
	AddItem(ctx context.Context, clientID string, item fridge.Item) (fridge.Item, error)
	GetItem(ctx context.Context, clientID, itemID string) (fridge.Item, error)
	SaveItemState(ctx context.Context, item fridge.Item) (fridge.Item, error)

	ExpiringItems(ctx context.Context, withinDays int) ([]fridge.AlertItem, error)
	LowStockItems(ctx context.Context, maxQuantity int) ([]fridge.AlertItem, error)
	ExpiredItems(ctx context.Context) ([]fridge.AlertItem, error)
}

// FoodStore persists food diary entries.
type FoodStore interface {
	EntriesByDate(ctx context.Context, clientID, date string) ([]food.Entry, error)
	EntriesByDateAndMeal(ctx context.Context, clientID, date, mealType string) ([]food.Entry, error)
	EntriesByDateRange(ctx context.Context, clientID, startDate, endDate string) ([]food.Entry, error)
	CreateEntry(ctx context.Context, entry food.Entry) (food.Entry, error)
	UpdateEntry(ctx context.Context, id, clientID string, patch food.EntryPatch) (food.Entry, error)
	DeleteEntry(ctx context.Context, id, clientID string) error
}

// UserStore persists Orange user profiles and push subscriptions.
type UserStore interface {
	ListUsers(ctx context.Context) ([]user.User, error)
	GetUserByID(ctx context.Context, id string) (user.User, error)
	GetUserByClientID(ctx context.Context, clientID string) (user.User, error)
	UpdateUserByClientID(ctx context.Context, clientID string, patch user.Patch) (user.User, error)

	GetSubscription(ctx context.Context, clientID string) (json.RawMessage, error)
	SaveSubscription(ctx context.Context, clientID string, subscription json.RawMessage) (user.User, error)
	ClearSubscription(ctx context.Context, clientID string) error
}
