package model

import "time"

// DashboardStats is the summary shown on the dashboard.
type DashboardStats struct {
	TotalItems      int `json:"total_items"`
	TotalBorrowed   int `json:"total_borrowed"`
	OverdueItems    int `json:"overdue_items"`
	AvailableItems  int `json:"available_items"`
	ActiveBorrowers int `json:"active_borrowers"`
}

// ItemUsage is one row of the item usage report.
type ItemUsage struct {
	ItemID           int64      `json:"item_id"`
	ItemName         string     `json:"item_name"`
	LabelCode        string     `json:"label_code"`
	TotalBorrows     int        `json:"total_borrows"`
	CurrentBorrowed  int        `json:"current_borrowed"`
	LastBorrowedDate *time.Time `json:"last_borrowed_date"`
}

// OverdueItem is a loan in overdue status with display fields.
type OverdueItem struct {
	BorrowingRecordID int64     `json:"borrowing_record_id"`
	ItemName          string    `json:"item_name"`
	LabelCode         string    `json:"label_code"`
	UserName          string    `json:"user_name"`
	UserEmail         string    `json:"user_email"`
	BorrowedDate      time.Time `json:"borrowed_date"`
	DueDate           time.Time `json:"due_date"`
	DaysOverdue       int       `json:"days_overdue"`
}

// DaysBetween returns the number of whole days from since to now, floored.
func DaysBetween(since, now time.Time) int {
	d := now.Sub(since)
	days := int(d / (24 * time.Hour))
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return days
}
