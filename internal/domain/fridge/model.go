// Package fridge holds the fridge domain model and the item state
// transition logic.
package fridge

import "time"

// DefaultRestockThreshold is the score at or below which an item is flagged
// for the shopping list.
const DefaultRestockThreshold = 30

// Fridge is a client's fridge. A fridge logically belongs to a single client
// id even though the column is stored as a JSON document.
type Fridge struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	ClientID    string    `db:"client_id" json:"client_id"`
	CreatedDate time.Time `db:"created_date" json:"created_date"`
}

// Item is one tracked fridge item.
type Item struct {
	ID             string     `db:"id" json:"id"`
	FridgeID       string     `db:"fridge_id" json:"fridge_id"`
	Name           string     `db:"name" json:"name"`
	Category       string     `db:"category" json:"category"`
	Quantity       int        `db:"quantity" json:"quantity"`
	ExpiryDate     *time.Time `db:"expiry_date" json:"expiry_date"`
	AddedDate      time.Time  `db:"added_date" json:"added_date"`
	IsShoppingItem bool       `db:"is_shopping_item" json:"is_shopping_item"`
	Score          int        `db:"score" json:"score"`
	ScannerID      *string    `db:"scanner_id" json:"scanner_id,omitempty"`
}

// OperationKind enumerates the supported item update operations.
type OperationKind string

const (
	OpAdd     OperationKind = "add"
	OpRestock OperationKind = "restock"
	OpRemove  OperationKind = "remove"
	OpConsume OperationKind = "consume"
)

// Operation describes one item update. Optional fields are pointers so the
// update logic is a pure function over a typed struct rather than a runtime
// field-presence scan.
type Operation struct {
	Kind       OperationKind
	Quantity   *int
	Threshold  *int
	ExpiryDate *time.Time
	ScannerID  *string
}

// scoreDelta returns the score adjustment for an operation kind.
//
// Remove and consume both decrement the current quantity and carry the same
// -15 penalty; the alternative replace-quantity variant was rejected because
// it does not compose under repeated operations.
func (op Operation) scoreDelta() int {
	switch op.Kind {
	case OpAdd:
		return 20
	case OpRestock:
		return 100
	case OpRemove, OpConsume:
		return -15
	default:
		return 0
	}
}

// Apply computes the item's next state for an operation. The input item is
// not mutated. Quantity and score never go below zero, and the shopping flag
// always reflects the new score against the threshold.
func (op Operation) Apply(item Item) Item {
	delta := 0
	if op.Quantity != nil {
		delta = *op.Quantity
	}

	next := item
	switch op.Kind {
	case OpAdd, OpRestock:
		next.Quantity = item.Quantity + delta
	case OpRemove, OpConsume:
		next.Quantity = item.Quantity - delta
		if next.Quantity < 0 {
			next.Quantity = 0
		}
	default:
		if op.Quantity != nil {
			next.Quantity = *op.Quantity
		}
	}

	next.Score = item.Score + op.scoreDelta()
	if next.Score < 0 {
		next.Score = 0
	}

	threshold := DefaultRestockThreshold
	if op.Threshold != nil {
		threshold = *op.Threshold
	}
	next.IsShoppingItem = next.Score <= threshold

	// Coalesce-on-null: only caller-supplied values replace stored ones.
	if op.ExpiryDate != nil {
		next.ExpiryDate = op.ExpiryDate
	}
	if op.ScannerID != nil {
		next.ScannerID = op.ScannerID
	}

	return next
}

// AlertItem is the owner-joined row shape the notification sweeps work on.
type AlertItem struct {
	ClientID   string     `db:"client_id" json:"client_id"`
	Name       string     `db:"name" json:"name"`
	Quantity   int        `db:"quantity" json:"quantity"`
	ExpiryDate *time.Time `db:"expiry_date" json:"expiry_date"`
}
