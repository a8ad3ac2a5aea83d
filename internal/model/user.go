package model

import "time"

// Admin is an account allowed to log in to the application.
type Admin struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// User is a borrower: a student, a teacher or a staff administrator.
type User struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	StudentID  *string   `json:"student_id"`
	Department *string   `json:"department"`
	CreatedAt  time.Time `json:"created_at"`
}

// Roles.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// MinPasswordLength is the shortest accepted admin password.
const MinPasswordLength = 6

// ValidatePassword checks the admin password policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// CreateAdminInput holds the fields of a new admin account.
type CreateAdminInput struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateUserInput holds the fields of a new user.
type CreateUserInput struct {
	Name       string  `json:"name" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Role       string  `json:"role" validate:"required,oneof=admin teacher student"`
	StudentID  *string `json:"student_id"`
	Department *string `json:"department"`
}
