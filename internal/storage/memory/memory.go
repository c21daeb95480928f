// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development.
package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ornge/orange-services/internal/domain/food"
	"github.com/ornge/orange-services/internal/domain/fridge"
	"github.com/ornge/orange-services/internal/domain/user"
	"github.com/ornge/orange-services/internal/storage"
)

// Store is the in-memory implementation of the storage interfaces.
type Store struct {
	mu          sync.RWMutex
	nextID      int64
	fridges     map[string]fridge.Fridge // fridge id -> fridge
	items       map[string][]fridge.Item // fridge id -> items
	foodEntries map[string]food.Entry    // entry id -> entry
	users       map[string]user.User     // client id -> user
	now         func() time.Time
}

var _ storage.FridgeStore = (*Store)(nil)
var _ storage.FoodStore = (*Store)(nil)
var _ storage.UserStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:      1,
		fridges:     make(map[string]fridge.Fridge),
		items:       make(map[string][]fridge.Item),
		foodEntries: make(map[string]food.Entry),
		users:       make(map[string]user.User),
		now:         time.Now,
	}
}

// WithClock overrides the store clock; tests use it to pin expiry windows.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

// --- FridgeStore ------------------------------------------------------------

func (s *Store) CreateFridge(ctx context.Context, clientID, name string) (fridge.Fridge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := fridge.Fridge{
		ID:          s.nextIDLocked(),
		Name:        name,
		ClientID:    clientID,
		CreatedDate: s.now().UTC(),
	}
	s.fridges[f.ID] = f
	return f, nil
}

func (s *Store) GetFridge(ctx context.Context, clientID string) (fridge.Fridge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fridgeForClientLocked(clientID)
}

func (s *Store) fridgeForClientLocked(clientID string) (fridge.Fridge, error) {
	var newest fridge.Fridge
	found := false
	for _, f := range s.fridges {
		if f.ClientID != clientID {
			continue
		}
		if !found || f.CreatedDate.After(newest.CreatedDate) {
			newest = f
			found = true
		}
	}
	if !found {
		return fridge.Fridge{}, sql.ErrNoRows
	}
	return newest, nil
}

func (s *Store) ListItems(ctx context.Context, clientID string) ([]fridge.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := s.fridgeForClientLocked(clientID)
	if err != nil {
		return []fridge.Item{}, nil
	}
	return append([]fridge.Item(nil), s.items[f.ID]...), nil
}

func (s *Store) AddItem(ctx context.Context, clientID string, item fridge.Item) (fridge.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.fridgeForClientLocked(clientID)
	if err != nil {
		return fridge.Item{}, err
	}

	item.ID = s.nextIDLocked()
	item.FridgeID = f.ID
	item.AddedDate = s.now().UTC()
	s.items[f.ID] = append(s.items[f.ID], item)
	return item, nil
}

func (s *Store) GetItem(ctx context.Context, clientID, itemID string) (fridge.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := s.fridgeForClientLocked(clientID)
	if err != nil {
		return fridge.Item{}, err
	}
	for _, item := range s.items[f.ID] {
		if item.ID == itemID {
			return item, nil
		}
	}
	return fridge.Item{}, sql.ErrNoRows
}

func (s *Store) SaveItemState(ctx context.Context, item fridge.Item) (fridge.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.items[item.FridgeID]
	for i := range items {
		if items[i].ID == item.ID {
			// Preserve immutable columns the way the UPDATE statement does.
			item.AddedDate = items[i].AddedDate
			items[i] = item
			return item, nil
		}
	}
	return fridge.Item{}, sql.ErrNoRows
}

func (s *Store) ExpiringItems(ctx context.Context, withinDays int) ([]fridge.AlertItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	cutoff := now.AddDate(0, 0, withinDays)
	out := []fridge.AlertItem{}
	s.eachItemLocked(func(clientID string, item fridge.Item) {
		if item.ExpiryDate == nil || item.Quantity <= 0 {
			return
		}
		if item.ExpiryDate.After(now) && !item.ExpiryDate.After(cutoff) {
			out = append(out, alertItem(clientID, item))
		}
	})
	return out, nil
}

func (s *Store) LowStockItems(ctx context.Context, maxQuantity int) ([]fridge.AlertItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []fridge.AlertItem{}
	s.eachItemLocked(func(clientID string, item fridge.Item) {
		if item.Quantity > 0 && item.Quantity <= maxQuantity {
			out = append(out, alertItem(clientID, item))
		}
	})
	return out, nil
}

func (s *Store) ExpiredItems(ctx context.Context) ([]fridge.AlertItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	out := []fridge.AlertItem{}
	s.eachItemLocked(func(clientID string, item fridge.Item) {
		if item.ExpiryDate == nil || item.Quantity <= 0 {
			return
		}
		if item.ExpiryDate.Before(now) {
			out = append(out, alertItem(clientID, item))
		}
	})
	return out, nil
}

func (s *Store) eachItemLocked(fn func(clientID string, item fridge.Item)) {
	for fridgeID, items := range s.items {
		f, ok := s.fridges[fridgeID]
		if !ok {
			continue
		}
		for _, item := range items {
			fn(f.ClientID, item)
		}
	}
}

func alertItem(clientID string, item fridge.Item) fridge.AlertItem {
	return fridge.AlertItem{
		ClientID:   clientID,
		Name:       item.Name,
		Quantity:   item.Quantity,
		ExpiryDate: item.ExpiryDate,
	}
}

// --- FoodStore --------------------------------------------------------------

func (s *Store) EntriesByDate(ctx context.Context, clientID, date string) ([]food.Entry, error) {
	return s.filterEntries(func(e food.Entry) bool {
		return e.ClientID == clientID && e.Date == date
	}), nil
}

func (s *Store) EntriesByDateAndMeal(ctx context.Context, clientID, date, mealType string) ([]food.Entry, error) {
	return s.filterEntries(func(e food.Entry) bool {
		return e.ClientID == clientID && e.Date == date && e.MealType == mealType
	}), nil
}

func (s *Store) EntriesByDateRange(ctx context.Context, clientID, startDate, endDate string) ([]food.Entry, error) {
	return s.filterEntries(func(e food.Entry) bool {
		return e.ClientID == clientID && e.Date >= startDate && e.Date <= endDate
	}), nil
}

func (s *Store) filterEntries(match func(food.Entry) bool) []food.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []food.Entry{}
	for _, entry := range s.foodEntries {
		if match(entry) {
			out = append(out, entry)
		}
	}
	sortEntries(out)
	return out
}

func sortEntries(entries []food.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		if entries[i].MealType != entries[j].MealType {
			return entries[i].MealType < entries[j].MealType
		}
		return entries[i].ID < entries[j].ID
	})
}

func (s *Store) CreateEntry(ctx context.Context, entry food.Entry) (food.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = s.nextIDLocked()
	s.foodEntries[entry.ID] = entry
	return entry, nil
}

func (s *Store) UpdateEntry(ctx context.Context, id, clientID string, patch food.EntryPatch) (food.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.foodEntries[id]
	if !ok || entry.ClientID != clientID {
		return food.Entry{}, sql.ErrNoRows
	}

	if patch.Date != nil {
		entry.Date = *patch.Date
	}
	if patch.MealType != nil {
		entry.MealType = *patch.MealType
	}
	if patch.FoodCategory != nil {
		entry.FoodCategory = *patch.FoodCategory
	}
	if patch.FoodName != nil {
		entry.FoodName = *patch.FoodName
	}
	if patch.Calories != nil {
		entry.Calories = *patch.Calories
	}
	if patch.MoodTag != nil {
		entry.MoodTag = patch.MoodTag
	}

	s.foodEntries[id] = entry
	return entry, nil
}

func (s *Store) DeleteEntry(ctx context.Context, id, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.foodEntries[id]
	if !ok || entry.ClientID != clientID {
		return sql.ErrNoRows
	}
	delete(s.foodEntries, id)
	return nil
}

// --- UserStore --------------------------------------------------------------

// AddUser seeds a user row; tests and local bootstrap use it.
func (s *Store) AddUser(u user.User) user.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = s.nextIDLocked()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}
	s.users[u.ClientID] = u
	return u
}

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, sql.ErrNoRows
}

func (s *Store) GetUserByClientID(ctx context.Context, clientID string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[clientID]
	if !ok {
		return user.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *Store) UpdateUserByClientID(ctx context.Context, clientID string, patch user.Patch) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[clientID]
	if !ok {
		return user.User{}, sql.ErrNoRows
	}

	if patch.Name != nil {
		u.Name = patch.Name
	}
	if patch.Streak != nil {
		u.Streak = *patch.Streak
	}
	if patch.Actions != nil {
		u.Actions = *patch.Actions
	}
	if patch.Level != nil {
		u.Level = *patch.Level
	}
	if patch.DailyQuoteCount != nil {
		u.DailyQuoteCount = *patch.DailyQuoteCount
	}
	if patch.GamesPlayed != nil {
		u.GamesPlayed = *patch.GamesPlayed
	}
	if patch.TarotDraws != nil {
		u.TarotDraws = *patch.TarotDraws
	}
	if patch.LastLogin != nil {
		u.LastLogin = patch.LastLogin
	}
	if patch.FoodPoints != nil {
		u.FoodPoints = *patch.FoodPoints
	}
	if patch.FoodStreak != nil {
		u.FoodStreak = *patch.FoodStreak
	}
	if patch.Gender != nil {
		u.Gender = patch.Gender
	}
	if patch.IsSpecialMoodboardAllowed != nil {
		u.IsSpecialMoodboardAllowed = *patch.IsSpecialMoodboardAllowed
	}
	if patch.WeeklySpends != nil {
		u.WeeklySpends = *patch.WeeklySpends
	}
	if patch.TodayExpense != nil {
		u.TodayExpense = *patch.TodayExpense
	}

	s.users[clientID] = u
	return u, nil
}

func (s *Store) GetSubscription(ctx context.Context, clientID string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[clientID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u.PushSubscription, nil
}

func (s *Store) SaveSubscription(ctx context.Context, clientID string, subscription json.RawMessage) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[clientID]
	if !ok {
		u = user.User{
			ID:        s.nextIDLocked(),
			ClientID:  clientID,
			CreatedAt: s.now().UTC(),
		}
	}
	u.PushSubscription = subscription
	s.users[clientID] = u
	return u, nil
}

func (s *Store) ClearSubscription(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[clientID]
	if !ok {
		return nil
	}
	u.PushSubscription = nil
	s.users[clientID] = u
	return nil
}
