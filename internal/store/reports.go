package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/solskiinventar/internal/model"
)

// DashboardStats computes the dashboard summary in a single statement so
// that all figures come from the same snapshot.
//
// total_borrowed and active_borrowers count active loans only, and
// overdue_items counts active loans already past their due date, i.e. loans
// the sweep has not moved yet.
func DashboardStats(ctx context.Context, db *sql.DB, now time.Time) (*model.DashboardStats, error) {
	s := &model.DashboardStats{}
	err := db.QueryRowContext(ctx,
		`SELECT
		    (SELECT COUNT(*) FROM items),
		    (SELECT COALESCE(SUM(quantity_borrowed), 0) FROM borrowing_records WHERE status = 'active'),
		    (SELECT COUNT(*) FROM borrowing_records WHERE status = 'active' AND due_date < ?),
		    (SELECT COALESCE(SUM(quantity_available), 0) FROM items),
		    (SELECT COUNT(DISTINCT user_id) FROM borrowing_records WHERE status = 'active')`,
		now.UTC(),
	).Scan(&s.TotalItems, &s.TotalBorrowed, &s.OverdueItems, &s.AvailableItems, &s.ActiveBorrowers)
	if err != nil {
		return nil, fmt.Errorf("computing dashboard stats: %w", err)
	}
	return s, nil
}

// ItemUsageReport returns one row per item, most borrowed first.
func ItemUsageReport(ctx context.Context, db *sql.DB) ([]model.ItemUsage, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT i.id, i.name, i.label_code, COUNT(b.id) AS total_borrows,
		        i.quantity_total - i.quantity_available AS current_borrowed,
		        MAX(b.borrowed_date) AS last_borrowed_date
		 FROM items i
		 LEFT JOIN borrowing_records b ON b.item_id = i.id
		 GROUP BY i.id
		 ORDER BY total_borrows DESC, i.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("building usage report: %w", err)
	}
	defer rows.Close()

	var report []model.ItemUsage
	for rows.Next() {
		var u model.ItemUsage
		var last sql.NullString
		if err := rows.Scan(&u.ItemID, &u.ItemName, &u.LabelCode, &u.TotalBorrows, &u.CurrentBorrowed, &last); err != nil {
			return nil, fmt.Errorf("scanning usage row: %w", err)
		}
		if u.LastBorrowedDate, err = parseDBTime(last); err != nil {
			return nil, err
		}
		report = append(report, u)
	}
	return report, rows.Err()
}

// OverdueItems lists loans in overdue status. Days overdue are computed
// against now, so they keep growing between sweeps.
func OverdueItems(ctx context.Context, db *sql.DB, now time.Time) ([]model.OverdueItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT b.id, i.name, i.label_code, u.name, u.email, b.borrowed_date, b.due_date
		 FROM borrowing_records b
		 JOIN items i ON i.id = b.item_id
		 JOIN users u ON u.id = b.user_id
		 WHERE b.status = ?
		 ORDER BY b.due_date, b.id`, model.StatusOverdue,
	)
	if err != nil {
		return nil, fmt.Errorf("listing overdue items: %w", err)
	}
	defer rows.Close()

	var items []model.OverdueItem
	for rows.Next() {
		var o model.OverdueItem
		if err := rows.Scan(&o.BorrowingRecordID, &o.ItemName, &o.LabelCode, &o.UserName, &o.UserEmail,
			&o.BorrowedDate, &o.DueDate); err != nil {
			return nil, fmt.Errorf("scanning overdue item: %w", err)
		}
		o.DaysOverdue = model.DaysBetween(o.DueDate, now)
		items = append(items, o)
	}
	return items, rows.Err()
}
