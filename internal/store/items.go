package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	sqldb "github.com/erazemk/solskiinventar/internal/db"
	"github.com/erazemk/solskiinventar/internal/model"
)

const itemColumns = `id, name, description, item_type, label_code, quantity_total, quantity_available,
	location, purchase_date, purchase_price, condition_notes, image IS NOT NULL, created_at, updated_at`

// LabelKey folds a label code for uniqueness checks and searching.
func LabelKey(label string) string {
	return cases.Fold().String(strings.TrimSpace(label))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var price sql.NullString
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.ItemType, &item.LabelCode,
		&item.QuantityTotal, &item.QuantityAvailable, &item.Location, &item.PurchaseDate,
		&price, &item.ConditionNotes, &item.HasImage, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if price.Valid {
		m, err := model.NewMoney(price.String)
		if err != nil {
			return nil, err
		}
		item.PurchasePrice = &m
	}
	return item, nil
}

func validatePrice(p *model.Money) error {
	if p != nil && p.IsNegative() {
		return validationf("purchase price cannot be negative")
	}
	return nil
}

// CreateItem adds a new item with its full quantity available.
func CreateItem(ctx context.Context, db *sql.DB, in model.CreateItemInput, now time.Time) (*model.Item, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.LabelCode = strings.TrimSpace(in.LabelCode)
	if in.Name == "" {
		return nil, validationf("name is required")
	}
	if !model.ValidItemType(in.ItemType) {
		return nil, validationf("invalid item type %q", in.ItemType)
	}
	if in.LabelCode == "" {
		return nil, validationf("label code is required")
	}
	if in.QuantityTotal < 1 {
		return nil, validationf("total quantity must be at least 1")
	}
	if err := validatePrice(in.PurchasePrice); err != nil {
		return nil, err
	}

	now = now.UTC()
	var item *model.Item
	err := sqldb.RunInTx(ctx, db, func(tx *sql.Tx) error {
		taken, err := labelTaken(ctx, tx, in.LabelCode, 0)
		if err != nil {
			return err
		}
		if taken {
			return conflictf("label code %s is already in use", in.LabelCode)
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO items (name, description, item_type, label_code, label_key, quantity_total,
			                    quantity_available, location, purchase_date, purchase_price, condition_notes,
			                    created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			in.Name, in.Description, in.ItemType, in.LabelCode, LabelKey(in.LabelCode), in.QuantityTotal,
			in.QuantityTotal, in.Location, utcPtr(in.PurchaseDate), in.PurchasePrice, in.ConditionNotes,
			now, now,
		)
		if isUniqueViolation(err) {
			return conflictf("label code %s is already in use", in.LabelCode)
		}
		if err != nil {
			return fmt.Errorf("creating item: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting item id: %w", err)
		}

		item, err = getItem(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem returns an item by ID, or nil if there is none.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	return getItem(ctx, db, id)
}

func getItem(ctx context.Context, q dbtx, id int64) (*model.Item, error) {
	item, err := scanItem(q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// GetItemByLabel returns the item with the given label code, ignoring case.
func GetItemByLabel(ctx context.Context, db *sql.DB, label string) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE label_key = ?`, LabelKey(label),
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item by label: %w", err)
	}
	return item, nil
}

// ListItems returns all items in creation order.
func ListItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+itemColumns+` FROM items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// SearchItemsByLabel returns items whose label code contains query,
// ignoring case, in creation order.
func SearchItemsByLabel(ctx context.Context, db *sql.DB, query string) ([]model.Item, error) {
	pattern := "%" + escapeLike(LabelKey(query)) + "%"
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE label_key LIKE ? ESCAPE '\' ORDER BY id`, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// UpdateItem applies a partial update. Changing the total quantity
// recomputes the available quantity from the outstanding loans and fails
// if the new total is below what is currently out.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, in model.UpdateItemInput, now time.Time) (*model.Item, error) {
	now = now.UTC()
	var item *model.Item
	err := sqldb.RunInTx(ctx, db, func(tx *sql.Tx) error {
		existing, err := getItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return notFoundf("item %d not found", id)
		}

		sets := []string{"updated_at = ?"}
		args := []any{now}
		set := func(column string, value any) {
			sets = append(sets, column+" = ?")
			args = append(args, value)
		}

		if in.Name.Set {
			name := strings.TrimSpace(in.Name.Value)
			if in.Name.Null || name == "" {
				return validationf("name cannot be empty")
			}
			set("name", name)
		}
		if in.Description.Set {
			set("description", in.Description.Ptr())
		}
		if in.ItemType.Set {
			if in.ItemType.Null || !model.ValidItemType(in.ItemType.Value) {
				return validationf("invalid item type %q", in.ItemType.Value)
			}
			set("item_type", in.ItemType.Value)
		}
		if in.LabelCode.Set {
			label := strings.TrimSpace(in.LabelCode.Value)
			if in.LabelCode.Null || label == "" {
				return validationf("label code cannot be empty")
			}
			taken, err := labelTaken(ctx, tx, label, id)
			if err != nil {
				return err
			}
			if taken {
				return conflictf("label code %s is already in use", label)
			}
			set("label_code", label)
			set("label_key", LabelKey(label))
		}
		if in.QuantityTotal.Set {
			if in.QuantityTotal.Null || in.QuantityTotal.Value < 1 {
				return validationf("total quantity must be at least 1")
			}
			borrowed, err := outstandingQuantity(ctx, tx, id)
			if err != nil {
				return err
			}
			available := in.QuantityTotal.Value - borrowed
			if available < 0 {
				return validationf("cannot reduce total below currently borrowed quantity")
			}
			set("quantity_total", in.QuantityTotal.Value)
			set("quantity_available", available)
		}
		if in.Location.Set {
			set("location", in.Location.Ptr())
		}
		if in.PurchaseDate.Set {
			set("purchase_date", utcPtr(in.PurchaseDate.Ptr()))
		}
		if in.PurchasePrice.Set {
			price := in.PurchasePrice.Ptr()
			if err := validatePrice(price); err != nil {
				return err
			}
			set("purchase_price", price)
		}
		if in.ConditionNotes.Set {
			set("condition_notes", in.ConditionNotes.Ptr())
		}

		args = append(args, id)
		_, err = tx.ExecContext(ctx,
			`UPDATE items SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
		)
		if isUniqueViolation(err) {
			return conflictf("label code %s is already in use", in.LabelCode.Value)
		}
		if err != nil {
			return fmt.Errorf("updating item: %w", err)
		}

		item, err = getItem(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an item. It fails while any loan of the item is
// outstanding; returned loans are removed with it.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	return sqldb.RunInTx(ctx, db, func(tx *sql.Tx) error {
		existing, err := getItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return notFoundf("item %d not found", id)
		}

		var count int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM borrowing_records WHERE item_id = ? AND status IN ('active', 'overdue')`, id,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("checking item borrowings: %w", err)
		}
		if count > 0 {
			return conflictf("cannot delete item with active borrowings")
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting item: %w", err)
		}
		return nil
	})
}

// AdjustAvailability changes an item's available quantity by delta within
// the caller's transaction. The result must stay within [0, total].
func AdjustAvailability(ctx context.Context, tx dbtx, id int64, delta int, now time.Time) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE items SET quantity_available = quantity_available + ?, updated_at = ?
		 WHERE id = ? AND quantity_available + ? BETWEEN 0 AND quantity_total`,
		delta, now.UTC(), id, delta,
	)
	if err != nil {
		return fmt.Errorf("adjusting availability: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjusting availability: %w", err)
	}
	if n == 1 {
		return nil
	}

	item, err := getItem(ctx, tx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return notFoundf("item %d not found", id)
	}
	if delta < 0 {
		return validationf("insufficient quantity available")
	}
	return validationf("available quantity cannot exceed total quantity")
}

// outstandingQuantity sums the units of an item held by active and overdue loans.
func outstandingQuantity(ctx context.Context, q dbtx, itemID int64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity_borrowed), 0) FROM borrowing_records
		 WHERE item_id = ? AND status IN ('active', 'overdue')`, itemID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("summing borrowed quantity: %w", err)
	}
	return n, nil
}

func labelTaken(ctx context.Context, q dbtx, label string, exceptID int64) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE label_key = ? AND id != ?`, LabelKey(label), exceptID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking label code: %w", err)
	}
	return count > 0, nil
}

// SetItemImage stores an item's photo.
func SetItemImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string, now time.Time) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = ? WHERE id = ?`,
		image, mime, now.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFoundf("item %d not found", id)
	}
	return nil
}

// GetItemImage returns an item's photo and its MIME type.
func GetItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
