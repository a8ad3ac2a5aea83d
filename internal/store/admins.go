package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/solskiinventar/internal/model"
)

// CreateAdmin creates a new admin account with an already hashed password.
func CreateAdmin(ctx context.Context, db *sql.DB, username, email, passwordHash string, now time.Time) (*model.Admin, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || passwordHash == "" {
		return nil, validationf("username, email and password are required")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO admins (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		username, email, passwordHash, now.UTC(),
	)
	if isUniqueViolation(err) {
		return nil, conflictf("admin with this username or email already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("creating admin: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting admin id: %w", err)
	}

	return GetAdmin(ctx, db, id)
}

// GetAdmin returns an admin by ID.
func GetAdmin(ctx context.Context, db *sql.DB, id int64) (*model.Admin, error) {
	return scanAdmin(db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM admins WHERE id = ?`, id,
	))
}

// GetAdminByUsername returns an admin by username.
func GetAdminByUsername(ctx context.Context, db *sql.DB, username string) (*model.Admin, error) {
	return scanAdmin(db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM admins WHERE username = ?`, username,
	))
}

func scanAdmin(row *sql.Row) (*model.Admin, error) {
	a := &model.Admin{}
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting admin: %w", err)
	}
	return a, nil
}
