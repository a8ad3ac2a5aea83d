package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sqldb "github.com/erazemk/solskiinventar/internal/db"
	"github.com/erazemk/solskiinventar/internal/model"
)

const borrowingSelect = `SELECT b.id, b.item_id, b.user_id, b.quantity_borrowed, b.borrowed_date, b.due_date,
	        b.returned_date, b.status, b.notes, b.created_at, b.updated_at,
	        i.name AS item_name, i.label_code, u.name AS user_name
	 FROM borrowing_records b
	 JOIN items i ON i.id = b.item_id
	 JOIN users u ON u.id = b.user_id`

// Borrow lends quantity units of an item to a user. The availability
// decrement and the new record are written in one transaction; the
// decrement only succeeds while enough units are available, so concurrent
// borrows cannot oversubscribe an item.
func Borrow(ctx context.Context, db *sql.DB, in model.BorrowInput, now time.Time) (*model.BorrowingRecord, error) {
	if in.Quantity < 1 {
		return nil, validationf("quantity must be at least 1")
	}
	if in.DurationDays < 1 {
		return nil, validationf("borrowing duration must be at least 1 day")
	}

	now = now.UTC()
	due := now.AddDate(0, 0, in.DurationDays)

	var record *model.BorrowingRecord
	err := sqldb.RunInTx(ctx, db, func(tx *sql.Tx) error {
		user, err := getUser(ctx, tx, in.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return notFoundf("user %d not found", in.UserID)
		}

		if err := AdjustAvailability(ctx, tx, in.ItemID, -in.Quantity, now); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO borrowing_records (item_id, user_id, quantity_borrowed, borrowed_date, due_date,
			                                status, notes, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			in.ItemID, in.UserID, in.Quantity, now, due, model.StatusActive, in.Notes, now, now,
		)
		if err != nil {
			return fmt.Errorf("recording borrowing: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting borrowing id: %w", err)
		}

		record, err = getBorrowingRecord(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Return closes an active or overdue loan and puts its units back.
// The notes of the record are replaced by the given notes.
func Return(ctx context.Context, db *sql.DB, in model.ReturnInput, now time.Time) (*model.BorrowingRecord, error) {
	now = now.UTC()

	var record *model.BorrowingRecord
	err := sqldb.RunInTx(ctx, db, func(tx *sql.Tx) error {
		existing, err := getBorrowingRecord(ctx, tx, in.BorrowingRecordID)
		if err != nil {
			return err
		}
		if existing == nil {
			return notFoundf("borrowing record %d not found", in.BorrowingRecordID)
		}
		if existing.Status == model.StatusReturned {
			return validationf("item has already been returned")
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE borrowing_records SET status = ?, returned_date = ?, notes = ?, updated_at = ?
			 WHERE id = ? AND status IN ('active', 'overdue')`,
			model.StatusReturned, now, in.Notes, now, in.BorrowingRecordID,
		)
		if err != nil {
			return fmt.Errorf("returning item: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return validationf("item has already been returned")
		}

		if err := AdjustAvailability(ctx, tx, existing.ItemID, existing.QuantityBorrowed, now); err != nil {
			return err
		}

		record, err = getBorrowingRecord(ctx, tx, in.BorrowingRecordID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// SweepOverdue moves every active loan whose due date has passed to overdue
// and returns how many were moved. Quantities are not touched.
func SweepOverdue(ctx context.Context, db *sql.DB, now time.Time) (int, error) {
	now = now.UTC()
	result, err := db.ExecContext(ctx,
		`UPDATE borrowing_records SET status = ?, updated_at = ?
		 WHERE status = ? AND due_date < ?`,
		model.StatusOverdue, now, model.StatusActive, now,
	)
	if err != nil {
		return 0, fmt.Errorf("sweeping overdue borrowings: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweeping overdue borrowings: %w", err)
	}
	return int(n), nil
}

// GetBorrowingRecord returns a borrowing record by ID, or nil if there is none.
func GetBorrowingRecord(ctx context.Context, db *sql.DB, id int64) (*model.BorrowingRecord, error) {
	return getBorrowingRecord(ctx, db, id)
}

func getBorrowingRecord(ctx context.Context, q dbtx, id int64) (*model.BorrowingRecord, error) {
	b, err := scanBorrowing(q.QueryRowContext(ctx, borrowingSelect+` WHERE b.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting borrowing record: %w", err)
	}
	return b, nil
}

// ListBorrowingRecords returns every borrowing record in creation order.
func ListBorrowingRecords(ctx context.Context, db *sql.DB) ([]model.BorrowingRecord, error) {
	return listBorrowings(ctx, db, borrowingSelect+` ORDER BY b.id`)
}

// ListActiveBorrowings returns the loans that are still out, overdue ones included.
func ListActiveBorrowings(ctx context.Context, db *sql.DB) ([]model.BorrowingRecord, error) {
	return listBorrowings(ctx, db,
		borrowingSelect+` WHERE b.status IN ('active', 'overdue') ORDER BY b.id`)
}

// ListUserBorrowings returns the loans of one user in creation order.
func ListUserBorrowings(ctx context.Context, db *sql.DB, userID int64) ([]model.BorrowingRecord, error) {
	return listBorrowings(ctx, db, borrowingSelect+` WHERE b.user_id = ? ORDER BY b.id`, userID)
}

func listBorrowings(ctx context.Context, db *sql.DB, query string, args ...any) ([]model.BorrowingRecord, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing borrowing records: %w", err)
	}
	defer rows.Close()

	var records []model.BorrowingRecord
	for rows.Next() {
		b, err := scanBorrowing(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning borrowing record: %w", err)
		}
		records = append(records, *b)
	}
	return records, rows.Err()
}

func scanBorrowing(row rowScanner) (*model.BorrowingRecord, error) {
	b := &model.BorrowingRecord{}
	err := row.Scan(&b.ID, &b.ItemID, &b.UserID, &b.QuantityBorrowed, &b.BorrowedDate, &b.DueDate,
		&b.ReturnedDate, &b.Status, &b.Notes, &b.CreatedAt, &b.UpdatedAt,
		&b.ItemName, &b.LabelCode, &b.UserName)
	if err != nil {
		return nil, err
	}
	return b, nil
}
