package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/solskiinventar/internal/model"
	"github.com/erazemk/solskiinventar/internal/store"
)

// UsersHandler handles borrower endpoints.
type UsersHandler struct {
	DB  *sql.DB
	Now func() time.Time
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserInput
	if !decodeValid(w, r, &req) {
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req, h.Now())
	if err != nil {
		storeError(w, err, "failed to create user")
		return
	}

	slog.Info("user created", "admin", GetClaims(r.Context()).Username, "user_id", user.ID, "role", user.Role)
	jsonResponse(w, http.StatusCreated, user)
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user")
	if !ok {
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get user")
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}
	jsonResponse(w, http.StatusOK, user)
}
