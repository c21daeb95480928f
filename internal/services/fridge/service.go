// Package fridge implements fridge and fridge item operations on top of the
// storage layer.
package fridge

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/ornge/orange-services/internal/domain/fridge"
	svcerrors "github.com/ornge/orange-services/internal/errors"
	"github.com/ornge/orange-services/internal/storage"
	"github.com/ornge/orange-services/pkg/logger"
)

// DefaultInitialScore is the score a freshly added item starts with.
const DefaultInitialScore = 100

// Service manages fridges and fridge items for one client at a time.
type Service struct {
	store storage.FridgeStore
	log   *logger.Logger
}

// New constructs a fridge service.
func New(store storage.FridgeStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("fridge")
	}
	return &Service{store: store, log: log}
}

// CreateFridge registers a fridge for a client.
func (s *Service) CreateFridge(ctx context.Context, clientID, name string) (fridge.Fridge, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return fridge.Fridge{}, svcerrors.Validation("fridge name is required")
	}

	created, err := s.store.CreateFridge(ctx, clientID, name)
	if err != nil {
		return fridge.Fridge{}, svcerrors.Internal("error creating fridge", err)
	}
	s.log.WithField("client_id", clientID).Infof("fridge %s created", created.ID)
	return created, nil
}

// GetFridge returns the client's fridge.
func (s *Service) GetFridge(ctx context.Context, clientID string) (fridge.Fridge, error) {
	f, err := s.store.GetFridge(ctx, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fridge.Fridge{}, svcerrors.NotFound("fridge not found for the given client ID")
		}
		return fridge.Fridge{}, svcerrors.Internal("error fetching fridge", err)
	}
	return f, nil
}

// ListItems returns all items in the client's fridge. A client without a
// fridge gets an empty list, not an error.
func (s *Service) ListItems(ctx context.Context, clientID string) ([]fridge.Item, error) {
	items, err := s.store.ListItems(ctx, clientID)
	if err != nil {
		return nil, svcerrors.Internal("error fetching fridge items", err)
	}
	return items, nil
}

// NewItem carries the caller-supplied fields for an add-item request.
type NewItem struct {
	Name           string
	Category       string
	Quantity       int
	ExpiryDate     *time.Time
	Score          *int
	IsShoppingItem bool
	ScannerID      *string
}

// AddItem creates a fridge item for the client's fridge.
func (s *Service) AddItem(ctx context.Context, clientID string, in NewItem) (fridge.Item, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Category) == "" {
		return fridge.Item{}, svcerrors.Validation("item details are incomplete")
	}
	if in.Quantity <= 0 {
		return fridge.Item{}, svcerrors.Validation("item quantity must be positive")
	}
	if in.ExpiryDate == nil {
		return fridge.Item{}, svcerrors.Validation("item expiry date is required")
	}

	score := DefaultInitialScore
	if in.Score != nil {
		score = *in.Score
		if score < 0 {
			score = 0
		}
	}

	item := fridge.Item{
		Name:           in.Name,
		Category:       in.Category,
		Quantity:       in.Quantity,
		ExpiryDate:     in.ExpiryDate,
		IsShoppingItem: in.IsShoppingItem,
		Score:          score,
		ScannerID:      in.ScannerID,
	}

	created, err := s.store.AddItem(ctx, clientID, item)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fridge.Item{}, svcerrors.NotFound("fridge not found for the given client ID")
		}
		return fridge.Item{}, svcerrors.Internal("error adding fridge item", err)
	}
	return created, nil
}

// UpdateItem reads the item's current state, applies the operation and
// persists the result. Nothing is mutated when the fridge or item is missing.
func (s *Service) UpdateItem(ctx context.Context, clientID, itemID string, op fridge.Operation) (fridge.Item, error) {
	if _, err := s.store.GetFridge(ctx, clientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fridge.Item{}, svcerrors.NotFound("fridge not found for the given client ID")
		}
		return fridge.Item{}, svcerrors.Internal("error fetching fridge", err)
	}

	current, err := s.store.GetItem(ctx, clientID, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fridge.Item{}, svcerrors.NotFound("item not found in fridge")
		}
		return fridge.Item{}, svcerrors.Internal("error fetching fridge item", err)
	}

	next := op.Apply(current)
	updated, err := s.store.SaveItemState(ctx, next)
	if err != nil {
		return fridge.Item{}, svcerrors.Internal("error updating fridge item", err)
	}

	s.log.WithFields(map[string]interface{}{
		"client_id": clientID,
		"item_id":   itemID,
		"operation": string(op.Kind),
		"score":     updated.Score,
	}).Debug("fridge item updated")

	return updated, nil
}

// ExpiringItems lists items expiring within the window, joined to owners.
func (s *Service) ExpiringItems(ctx context.Context, withinDays int) ([]fridge.AlertItem, error) {
	items, err := s.store.ExpiringItems(ctx, withinDays)
	if err != nil {
		return nil, svcerrors.Internal("error getting expiring items", err)
	}
	return items, nil
}

// LowStockItems lists items at or below the stock floor, joined to owners.
func (s *Service) LowStockItems(ctx context.Context, maxQuantity int) ([]fridge.AlertItem, error) {
	items, err := s.store.LowStockItems(ctx, maxQuantity)
	if err != nil {
		return nil, svcerrors.Internal("error getting low stock items", err)
	}
	return items, nil
}

// ExpiredItems lists items past their expiry date, joined to owners.
func (s *Service) ExpiredItems(ctx context.Context) ([]fridge.AlertItem, error) {
	items, err := s.store.ExpiredItems(ctx)
	if err != nil {
		return nil, svcerrors.Internal("error getting expired items", err)
	}
	return items, nil
}
