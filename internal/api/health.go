package api

import (
	"database/sql"
	"net/http"
	"time"
)

// HealthHandler reports whether the server can reach its database.
type HealthHandler struct {
	DB  *sql.DB
	Now func() time.Time
}

// Check handles GET /healthz.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.PingContext(r.Context()); err != nil {
		jsonResponse(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unavailable",
			"timestamp": h.Now().UTC(),
		})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": h.Now().UTC(),
	})
}
