package httpapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	userdomain "github.com/ornge/orange-services/internal/domain/user"
	usersvc "github.com/ornge/orange-services/internal/services/user"
	"github.com/ornge/orange-services/internal/storage/memory"
)

func newUserHandler(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()
	store := memory.New()
	handler := NewUserRouter(
		usersvc.New(store, nil),
		Options{Service: "user-service", Title: "Orange User Service API"},
	)
	return handler, store
}

func TestUserEndpointsRequireIdentity(t *testing.T) {
	handler, _ := newUserHandler(t)

	for _, path := range []string{"/api/me", "/api/users/abc", "/api/me/subscription"} {
		rec := doJSON(t, handler, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
		body := decodeEnvelope(t, rec)
		require.Equal(t, false, body["success"])
	}
}

func TestMeReturnsProfile(t *testing.T) {
	handler, store := newUserHandler(t)
	name := "Asha"
	seeded := store.AddUser(userdomain.User{ClientID: "client-1", Name: &name, Streak: 7})

	rec := doJSON(t, handler, http.MethodGet, "/api/me", "client-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	profile := body["user"].(map[string]interface{})
	require.Equal(t, seeded.ID, profile["id"])
	require.Equal(t, float64(7), profile["streak"])

	rec = doJSON(t, handler, http.MethodGet, "/api/me", "client-unknown", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateMeOverHTTP(t *testing.T) {
	handler, store := newUserHandler(t)
	name := "Asha"
	store.AddUser(userdomain.User{ClientID: "client-1", Name: &name, Streak: 7, FoodPoints: 10})

	rec := doJSON(t, handler, http.MethodPost, "/api/me", "client-1", map[string]interface{}{
		"streak":      8,
		"food_points": 25,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	profile := body["user"].(map[string]interface{})
	require.Equal(t, float64(8), profile["streak"])
	require.Equal(t, float64(25), profile["food_points"])
	require.Equal(t, "Asha", profile["name"])

	rec = doJSON(t, handler, http.MethodPost, "/api/me", "client-1", map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/me", "client-unknown", map[string]interface{}{
		"streak": 1,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/me", "", map[string]interface{}{
		"streak": 1,
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserByIDForbidsOtherProfiles(t *testing.T) {
	handler, store := newUserHandler(t)
	me := store.AddUser(userdomain.User{ClientID: "client-1"})
	other := store.AddUser(userdomain.User{ClientID: "client-2"})

	rec := doJSON(t, handler, http.MethodGet, "/api/users/"+other.ID, "client-1", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeEnvelope(t, rec)
	require.Equal(t, "Unauthorized access", body["error"])

	rec = doJSON(t, handler, http.MethodGet, "/api/users/"+me.ID, "client-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSubscriptionRoundTripOverHTTP(t *testing.T) {
	handler, store := newUserHandler(t)
	store.AddUser(userdomain.User{ClientID: "client-1"})

	rec := doJSON(t, handler, http.MethodGet, "/api/me/subscription", "client-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	require.Nil(t, body["subscription"])

	rec = doJSON(t, handler, http.MethodPost, "/api/me/subscription", "client-1", map[string]interface{}{
		"subscription": map[string]interface{}{"endpoint": "https://push.example/abc"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/me/subscription", "client-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeEnvelope(t, rec)
	sub := body["subscription"].(map[string]interface{})
	require.Equal(t, "https://push.example/abc", sub["endpoint"])

	rec = doJSON(t, handler, http.MethodPost, "/api/me/subscription", "client-1", map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
