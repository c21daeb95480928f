package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ornge/orange-services/internal/domain/user"
	usersvc "github.com/ornge/orange-services/internal/services/user"
	"github.com/ornge/orange-services/pkg/logger"
)

// UserAPI serves the profile and push-subscription endpoints. Identity is the
// client id; a missing identity is an authentication failure here, unlike on
// the resource services.
type UserAPI struct {
	users *usersvc.Service
	log   *logger.Logger
}

// NewUserRouter mounts the user-service HTTP surface.
func NewUserRouter(users *usersvc.Service, opts Options) http.Handler {
	r := newRouter(&opts)
	u := &UserAPI{users: users, log: opts.Log}

	r.HandleFunc("/api/me", u.me).Methods(http.MethodGet)
	r.HandleFunc("/api/me", u.updateMe).Methods(http.MethodPost)
	r.HandleFunc("/api/users/{id}", u.userByID).Methods(http.MethodGet)
	r.HandleFunc("/api/me/subscription", u.getSubscription).Methods(http.MethodGet)
	r.HandleFunc("/api/me/subscription", u.saveSubscription).Methods(http.MethodPost)

	return finalize(r, opts)
}

func (u *UserAPI) me(w http.ResponseWriter, r *http.Request) {
	clientID, okID := requireClientID(w, r, http.StatusUnauthorized)
	if !okID {
		return
	}

	profile, err := u.users.GetByClientID(r.Context(), clientID)
	if err != nil {
		writeError(w, u.log, err)
		return
	}
	ok(w, map[string]interface{}{"user": profile})
}

func (u *UserAPI) updateMe(w http.ResponseWriter, r *http.Request) {
	clientID, okID := requireClientID(w, r, http.StatusUnauthorized)
	if !okID {
		return
	}

	var patch user.Patch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, u.log, err)
		return
	}

	profile, err := u.users.Update(r.Context(), clientID, patch)
	if err != nil {
		writeError(w, u.log, err)
		return
	}
	ok(w, map[string]interface{}{"user": profile})
}

func (u *UserAPI) userByID(w http.ResponseWriter, r *http.Request) {
	clientID, okID := requireClientID(w, r, http.StatusUnauthorized)
	if !okID {
		return
	}

	caller, err := u.users.GetByClientID(r.Context(), clientID)
	if err != nil {
		writeError(w, u.log, err)
		return
	}

	id := mux.Vars(r)["id"]
	if id != caller.ID {
		fail(w, http.StatusForbidden, "Unauthorized access")
		return
	}

	profile, err := u.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, u.log, err)
		return
	}
	ok(w, map[string]interface{}{"user": profile})
}

func (u *UserAPI) getSubscription(w http.ResponseWriter, r *http.Request) {
	clientID, okID := requireClientID(w, r, http.StatusUnauthorized)
	if !okID {
		return
	}

	profile, err := u.users.GetByClientID(r.Context(), clientID)
	if err != nil {
		writeError(w, u.log, err)
		return
	}

	var subscription interface{}
	if len(profile.PushSubscription) > 0 {
		subscription = profile.PushSubscription
	}
	ok(w, map[string]interface{}{"subscription": subscription})
}

func (u *UserAPI) saveSubscription(w http.ResponseWriter, r *http.Request) {
	clientID, okID := requireClientID(w, r, http.StatusUnauthorized)
	if !okID {
		return
	}

	var body struct {
		Subscription json.RawMessage `json:"subscription"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, u.log, err)
		return
	}

	profile, err := u.users.SaveSubscription(r.Context(), clientID, body.Subscription)
	if err != nil {
		writeError(w, u.log, err)
		return
	}
	ok(w, map[string]interface{}{"user": profile})
}
