package notification

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ornge/orange-services/internal/domain/fridge"
)

// Push titles for the fridge sweeps.
const (
	TitleExpiring = "Items Expiring Soon! 🕒"
	TitleLowStock = "Low Stock Alert! 📦"
	TitleExpired  = "Items Expired! ⚠️"
)

// DaysUntil counts the days from now until the expiry date, rounding partial
// days up so an item expiring tomorrow morning still reads as one day.
func DaysUntil(now time.Time, expiry time.Time) int {
	return int(math.Ceil(expiry.Sub(now).Hours() / 24))
}

func joinNames(items []fridge.AlertItem) string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return strings.Join(names, ", ")
}

// FormatExpiring composes the body of an expiring-items push for one owner.
func FormatExpiring(now time.Time, items []fridge.AlertItem) string {
	if len(items) == 1 {
		item := items[0]
		days := 0
		if item.ExpiryDate != nil {
			days = DaysUntil(now, *item.ExpiryDate)
		}
		return fmt.Sprintf("%s expires in %d days", item.Name, days)
	}
	return fmt.Sprintf("%d items are expiring soon: %s", len(items), joinNames(items))
}

// FormatLowStock composes the body of a low-stock push for one owner.
func FormatLowStock(items []fridge.AlertItem) string {
	if len(items) == 1 {
		item := items[0]
		return fmt.Sprintf("%s is running low (%d left)", item.Name, item.Quantity)
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("%s (%d)", item.Name, item.Quantity)
	}
	return fmt.Sprintf("%d items are running low: %s", len(items), strings.Join(parts, ", "))
}

// FormatExpired composes the body of an expired-items push for one owner.
func FormatExpired(items []fridge.AlertItem) string {
	if len(items) == 1 {
		return fmt.Sprintf("%s has expired and should be removed", items[0].Name)
	}
	return fmt.Sprintf("%d items have expired: %s", len(items), joinNames(items))
}
