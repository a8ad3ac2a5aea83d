package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/solskiinventar/internal/auth"
	"github.com/erazemk/solskiinventar/internal/model"
	"github.com/erazemk/solskiinventar/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
	Now       func() time.Time
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Admin *model.Admin `json:"admin"`
	Token string       `json:"token"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeValid(w, r, &req) {
		return
	}

	admin, token, err := auth.Login(r.Context(), h.DB, h.JWTSecret, req.Username, req.Password, h.Now())
	if err != nil {
		storeError(w, err, "login failed")
		return
	}
	if admin == nil {
		slog.Warn("login failed", "username", req.Username, "remote", r.RemoteAddr)
		storeError(w, store.ErrAuth, "login failed")
		return
	}

	slog.Info("admin logged in", "admin", admin.Username)
	jsonResponse(w, http.StatusOK, loginResponse{Admin: admin, Token: token})
}

// Logout handles POST /api/auth/logout. The presented token stays revoked
// until it would have expired.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	expires := h.Now().Add(auth.TokenExpiry)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, expires); err != nil {
		storeError(w, err, "failed to log out")
		return
	}

	slog.Info("admin logged out", "admin", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}
