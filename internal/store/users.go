package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/solskiinventar/internal/model"
)

const userColumns = `id, name, email, role, student_id, department, created_at`

// CreateUser registers a borrower.
func CreateUser(ctx context.Context, db *sql.DB, in model.CreateUserInput, now time.Time) (*model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" {
		return nil, validationf("name and email are required")
	}
	if in.Role != model.RoleAdmin && in.Role != model.RoleTeacher && in.Role != model.RoleStudent {
		return nil, validationf("invalid role %q", in.Role)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO users (name, email, role, student_id, department, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		in.Name, in.Email, in.Role, in.StudentID, in.Department, now.UTC(),
	)
	if isUniqueViolation(err) {
		return nil, conflictf("user with email %s already exists", in.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID, or nil if there is none.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	return getUser(ctx, db, id)
}

func getUser(ctx context.Context, q dbtx, id int64) (*model.User, error) {
	u := &model.User{}
	err := q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.StudentID, &u.Department, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// ListUsers returns all users in creation order.
func ListUsers(ctx context.Context, db *sql.DB) ([]model.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.StudentID, &u.Department, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
