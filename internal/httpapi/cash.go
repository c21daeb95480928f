package httpapi

import (
	"net/http"

	usersvc "github.com/ornge/orange-services/internal/services/user"
	"github.com/ornge/orange-services/pkg/logger"
)

// CashAPI serves the expense counters stored on the user row.
type CashAPI struct {
	users *usersvc.Service
	log   *logger.Logger
}

// NewCashRouter mounts the cash-kundi-service HTTP surface.
func NewCashRouter(users *usersvc.Service, opts Options) http.Handler {
	r := newRouter(&opts)
	c := &CashAPI{users: users, log: opts.Log}

	r.HandleFunc("/api/expenses", c.getExpenses).Methods(http.MethodGet)
	r.HandleFunc("/api/expenses", c.updateExpenses).Methods(http.MethodPut)

	return finalize(r, opts)
}

func (c *CashAPI) getExpenses(w http.ResponseWriter, r *http.Request) {
	clientID, okID := requireClientID(w, r, http.StatusBadRequest)
	if !okID {
		return
	}

	expenses, err := c.users.Expenses(r.Context(), clientID)
	if err != nil {
		writeError(w, c.log, err)
		return
	}
	ok(w, map[string]interface{}{"expenses": expenses})
}

func (c *CashAPI) updateExpenses(w http.ResponseWriter, r *http.Request) {
	clientID, okID := requireClientID(w, r, http.StatusBadRequest)
	if !okID {
		return
	}

	var body struct {
		TodayExpense *float64 `json:"today_expense"`
		WeeklySpends *float64 `json:"weekly_spends"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, c.log, err)
		return
	}

	expenses, err := c.users.UpdateExpenses(r.Context(), clientID, body.TodayExpense, body.WeeklySpends)
	if err != nil {
		writeError(w, c.log, err)
		return
	}
	ok(w, map[string]interface{}{"expenses": expenses})
}
