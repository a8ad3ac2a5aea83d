package auth

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/erazemk/solskiinventar/internal/model"
	"github.com/erazemk/solskiinventar/internal/store"
)

// Login checks an admin's credentials and issues a token. A wrong username
// or password yields a nil admin and no error.
func Login(ctx context.Context, db *sql.DB, secret, username, password string, now time.Time) (*model.Admin, string, error) {
	admin, err := store.GetAdminByUsername(ctx, db, username)
	if err != nil {
		return nil, "", err
	}
	if admin == nil || !CheckPassword(admin.PasswordHash, password) {
		return nil, "", nil
	}

	token, err := GenerateToken(secret, admin.ID, admin.Username, now)
	if err != nil {
		return nil, "", err
	}
	return admin, token, nil
}

// CreateAdmin validates the password policy, hashes the password and
// stores the new admin.
func CreateAdmin(ctx context.Context, db *sql.DB, in model.CreateAdminInput, now time.Time) (*model.Admin, error) {
	if err := model.ValidatePassword(in.Password); err != nil {
		return nil, &store.Error{Kind: store.ErrValidation, Msg: err.Error()}
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	return store.CreateAdmin(ctx, db, in.Username, in.Email, hash, now)
}

// SeedResult describes what EnsureDefaultAdmin did.
type SeedResult struct {
	Created  bool
	Username string
	Password string // only set when the password was generated
}

// EnsureDefaultAdmin creates the default admin unless an admin with that
// username already exists. An empty password is replaced by a random one,
// which is returned so it can be shown once.
func EnsureDefaultAdmin(ctx context.Context, db *sql.DB, username, email, password string, now time.Time) (*SeedResult, error) {
	existing, err := store.GetAdminByUsername(ctx, db, username)
	if err != nil {
		return nil, fmt.Errorf("checking default admin: %w", err)
	}
	if existing != nil {
		return &SeedResult{Username: username}, nil
	}

	result := &SeedResult{Created: true, Username: username}
	if password == "" {
		password, err = GeneratePassword(16)
		if err != nil {
			return nil, err
		}
		result.Password = password
	}

	if _, err := CreateAdmin(ctx, db, model.CreateAdminInput{
		Username: username,
		Email:    email,
		Password: password,
	}, now); err != nil {
		return nil, fmt.Errorf("creating default admin: %w", err)
	}

	slog.Info("created default admin", "username", username)
	return result, nil
}
