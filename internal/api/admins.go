package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/solskiinventar/internal/auth"
	"github.com/erazemk/solskiinventar/internal/model"
)

// AdminsHandler handles admin account endpoints.
type AdminsHandler struct {
	DB  *sql.DB
	Now func() time.Time
}

// Create handles POST /api/admins.
func (h *AdminsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAdminInput
	if !decodeValid(w, r, &req) {
		return
	}

	admin, err := auth.CreateAdmin(r.Context(), h.DB, req, h.Now())
	if err != nil {
		storeError(w, err, "failed to create admin")
		return
	}

	slog.Info("admin created", "admin", GetClaims(r.Context()).Username, "new_admin", admin.Username)
	jsonResponse(w, http.StatusCreated, admin)
}
