package model

import "time"

// BorrowingRecord is a single loan of some quantity of an item to a user.
type BorrowingRecord struct {
	ID               int64      `json:"id"`
	ItemID           int64      `json:"item_id"`
	UserID           int64      `json:"user_id"`
	QuantityBorrowed int        `json:"quantity_borrowed"`
	BorrowedDate     time.Time  `json:"borrowed_date"`
	DueDate          time.Time  `json:"due_date"`
	ReturnedDate     *time.Time `json:"returned_date"`
	Status           string     `json:"status"`
	Notes            *string    `json:"notes"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Joined fields (not always populated).
	ItemName  string `json:"item_name,omitempty"`
	LabelCode string `json:"label_code,omitempty"`
	UserName  string `json:"user_name,omitempty"`
}

// Borrowing statuses.
const (
	StatusActive   = "active"
	StatusReturned = "returned"
	StatusOverdue  = "overdue"
)

// Outstanding reports whether the loan still holds item units.
func (b *BorrowingRecord) Outstanding() bool {
	return b.Status == StatusActive || b.Status == StatusOverdue
}

// BorrowInput holds the fields of a new loan.
type BorrowInput struct {
	ItemID       int64   `json:"item_id" validate:"gt=0"`
	UserID       int64   `json:"user_id" validate:"gt=0"`
	Quantity     int     `json:"quantity_borrowed" validate:"gte=1"`
	DurationDays int     `json:"borrowing_duration_days" validate:"gte=1"`
	Notes        *string `json:"notes"`
}

// ReturnInput identifies the loan being returned.
type ReturnInput struct {
	BorrowingRecordID int64   `json:"borrowing_record_id" validate:"gt=0"`
	Notes             *string `json:"notes"`
}
