package httpapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	userdomain "github.com/ornge/orange-services/internal/domain/user"
	usersvc "github.com/ornge/orange-services/internal/services/user"
	"github.com/ornge/orange-services/internal/storage/memory"
)

func newCashHandler(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()
	store := memory.New()
	handler := NewCashRouter(
		usersvc.New(store, nil),
		Options{Service: "cash-kundi-service", Title: "Orange Finance Service API"},
	)
	return handler, store
}

func TestExpensesRequireClientID(t *testing.T) {
	handler, _ := newCashHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/expenses", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeEnvelope(t, rec)
	require.Equal(t, "Client ID is required", body["error"])
}

func TestExpensesRoundTripOverHTTP(t *testing.T) {
	handler, store := newCashHandler(t)
	store.AddUser(userdomain.User{ClientID: "client-1", TodayExpense: 12.5, WeeklySpends: 80})

	rec := doJSON(t, handler, http.MethodGet, "/api/expenses", "client-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	expenses := body["expenses"].(map[string]interface{})
	require.Equal(t, 12.5, expenses["today_expense"])
	require.Equal(t, float64(80), expenses["weekly_spends"])

	rec = doJSON(t, handler, http.MethodPut, "/api/expenses", "client-1", map[string]interface{}{
		"today_expense": 20.0,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeEnvelope(t, rec)
	expenses = body["expenses"].(map[string]interface{})
	require.Equal(t, float64(20), expenses["today_expense"])
	require.Equal(t, float64(80), expenses["weekly_spends"])

	rec = doJSON(t, handler, http.MethodPut, "/api/expenses", "client-1", map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodPut, "/api/expenses", "client-missing", map[string]interface{}{
		"today_expense": 5.0,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}
