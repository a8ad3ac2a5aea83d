package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/erazemk/solskiinventar/internal/model"
)

var testNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func mustCreateItem(t *testing.T, db *sql.DB, label string, total int) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), db, model.CreateItemInput{
		Name:          "Item " + label,
		ItemType:      model.ItemTypeLaboratoryEquipment,
		LabelCode:     label,
		QuantityTotal: total,
	}, testNow)
	if err != nil {
		t.Fatalf("CreateItem(%s): %v", label, err)
	}
	return item
}

var userSeq int

func mustCreateUser(t *testing.T, db *sql.DB, name string) *model.User {
	t.Helper()
	userSeq++
	user, err := CreateUser(context.Background(), db, model.CreateUserInput{
		Name:  name,
		Email: fmt.Sprintf("user%d@school.test", userSeq),
		Role:  model.RoleStudent,
	}, testNow)
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", name, err)
	}
	return user
}

func mustBorrow(t *testing.T, db *sql.DB, itemID, userID int64, qty, days int, now time.Time) *model.BorrowingRecord {
	t.Helper()
	rec, err := Borrow(context.Background(), db, model.BorrowInput{
		ItemID: itemID, UserID: userID, Quantity: qty, DurationDays: days,
	}, now)
	if err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	return rec
}

func available(t *testing.T, db *sql.DB, id int64) int {
	t.Helper()
	item, err := GetItem(context.Background(), db, id)
	if err != nil || item == nil {
		t.Fatalf("GetItem(%d): %v, %v", id, item, err)
	}
	return item.QuantityAvailable
}

// checkAccounting verifies that every item's borrowed units match its
// outstanding loans and stay within bounds.
func checkAccounting(t *testing.T, db *sql.DB) {
	t.Helper()
	ctx := context.Background()
	items, err := ListItems(ctx, db)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	for _, it := range items {
		if it.QuantityAvailable < 0 || it.QuantityAvailable > it.QuantityTotal {
			t.Errorf("item %s: available %d outside [0, %d]", it.LabelCode, it.QuantityAvailable, it.QuantityTotal)
		}
		out, err := outstandingQuantity(ctx, db, it.ID)
		if err != nil {
			t.Fatalf("outstandingQuantity: %v", err)
		}
		if it.QuantityTotal-it.QuantityAvailable != out {
			t.Errorf("item %s: total-available = %d, outstanding loans = %d",
				it.LabelCode, it.QuantityTotal-it.QuantityAvailable, out)
		}
	}
}

func wantKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v error, got %v", kind, err)
	}
}
