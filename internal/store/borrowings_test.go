package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/erazemk/solskiinventar/internal/db"
	"github.com/erazemk/solskiinventar/internal/model"
)

func TestBorrowAndReturn(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := mustCreateItem(t, database, "LAB-001", 10)
	user := mustCreateUser(t, database, "Ana")

	rec := mustBorrow(t, database, item.ID, user.ID, 4, 7, testNow)
	if rec.Status != model.StatusActive {
		t.Errorf("expected status active, got %s", rec.Status)
	}
	if !rec.BorrowedDate.Equal(testNow) {
		t.Errorf("expected borrowed_date %v, got %v", testNow, rec.BorrowedDate)
	}
	if want := testNow.AddDate(0, 0, 7); !rec.DueDate.Equal(want) {
		t.Errorf("expected due_date %v, got %v", want, rec.DueDate)
	}
	if rec.ReturnedDate != nil {
		t.Errorf("expected no returned_date, got %v", rec.ReturnedDate)
	}
	if rec.ItemName != item.Name || rec.UserName != "Ana" || rec.LabelCode != "LAB-001" {
		t.Errorf("joined fields not populated: %+v", rec)
	}
	if got := available(t, database, item.ID); got != 6 {
		t.Errorf("expected 6 available after borrow, got %d", got)
	}
	checkAccounting(t, database)

	later := testNow.Add(48 * time.Hour)
	notes := "returned in good condition"
	returned, err := Return(ctx, database, model.ReturnInput{BorrowingRecordID: rec.ID, Notes: &notes}, later)
	if err != nil {
		t.Fatalf("Return: %v", err)
	}
	if returned.Status != model.StatusReturned {
		t.Errorf("expected status returned, got %s", returned.Status)
	}
	if returned.ReturnedDate == nil || !returned.ReturnedDate.Equal(later) {
		t.Errorf("expected returned_date %v, got %v", later, returned.ReturnedDate)
	}
	if returned.Notes == nil || *returned.Notes != notes {
		t.Errorf("expected notes %q, got %v", notes, returned.Notes)
	}
	if got := available(t, database, item.ID); got != 10 {
		t.Errorf("expected 10 available after return, got %d", got)
	}
	checkAccounting(t, database)
}

func TestBorrowValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := mustCreateItem(t, database, "LAB-001", 3)
	user := mustCreateUser(t, database, "Ana")

	tests := []struct {
		name string
		in   model.BorrowInput
		kind error
	}{
		{"zero quantity", model.BorrowInput{ItemID: item.ID, UserID: user.ID, Quantity: 0, DurationDays: 7}, ErrValidation},
		{"zero duration", model.BorrowInput{ItemID: item.ID, UserID: user.ID, Quantity: 1, DurationDays: 0}, ErrValidation},
		{"too many", model.BorrowInput{ItemID: item.ID, UserID: user.ID, Quantity: 4, DurationDays: 7}, ErrValidation},
		{"missing item", model.BorrowInput{ItemID: 99, UserID: user.ID, Quantity: 1, DurationDays: 7}, ErrNotFound},
		{"missing user", model.BorrowInput{ItemID: item.ID, UserID: 99, Quantity: 1, DurationDays: 7}, ErrNotFound},
	}
	for _, tt := range tests {
		_, err := Borrow(ctx, database, tt.in, testNow)
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		wantKind(t, err, tt.kind)
	}

	if got := available(t, database, item.ID); got != 3 {
		t.Errorf("failed borrows changed availability to %d", got)
	}
	records, _ := ListBorrowingRecords(ctx, database)
	if len(records) != 0 {
		t.Errorf("failed borrows left %d records", len(records))
	}
}

func TestBorrowInsufficientQuantity(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := mustCreateItem(t, database, "LAB-001", 5)
	user := mustCreateUser(t, database, "Ana")
	mustBorrow(t, database, item.ID, user.ID, 3, 7, testNow)

	_, err := Borrow(ctx, database, model.BorrowInput{
		ItemID: item.ID, UserID: user.ID, Quantity: 3, DurationDays: 7,
	}, testNow)
	wantKind(t, err, ErrValidation)
	if err.Error() != "insufficient quantity available" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	// Borrowing exactly what is left succeeds.
	mustBorrow(t, database, item.ID, user.ID, 2, 7, testNow)
	if got := available(t, database, item.ID); got != 0 {
		t.Errorf("expected 0 available, got %d", got)
	}
	checkAccounting(t, database)
}

func TestReturnTwice(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := mustCreateItem(t, database, "LAB-001", 2)
	user := mustCreateUser(t, database, "Ana")
	rec := mustBorrow(t, database, item.ID, user.ID, 2, 7, testNow)

	if _, err := Return(ctx, database, model.ReturnInput{BorrowingRecordID: rec.ID}, testNow); err != nil {
		t.Fatalf("Return: %v", err)
	}
	_, err := Return(ctx, database, model.ReturnInput{BorrowingRecordID: rec.ID}, testNow)
	wantKind(t, err, ErrValidation)
	if err.Error() != "item has already been returned" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if got := available(t, database, item.ID); got != 2 {
		t.Errorf("expected 2 available, got %d", got)
	}

	_, err = Return(ctx, database, model.ReturnInput{BorrowingRecordID: 99}, testNow)
	wantKind(t, err, ErrNotFound)
}

func TestSweepOverdue(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := mustCreateItem(t, database, "LAB-001", 10)
	user := mustCreateUser(t, database, "Ana")
	late := mustBorrow(t, database, item.ID, user.ID, 1, 1, testNow.AddDate(0, 0, -3))
	onTime := mustBorrow(t, database, item.ID, user.ID, 1, 7, testNow)
	returned := mustBorrow(t, database, item.ID, user.ID, 1, 1, testNow.AddDate(0, 0, -3))
	if _, err := Return(ctx, database, model.ReturnInput{BorrowingRecordID: returned.ID}, testNow.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("Return: %v", err)
	}

	n, err := SweepOverdue(ctx, database, testNow)
	if err != nil {
		t.Fatalf("SweepOverdue: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 record swept, got %d", n)
	}

	got, _ := GetBorrowingRecord(ctx, database, late.ID)
	if got.Status != model.StatusOverdue {
		t.Errorf("expected late loan overdue, got %s", got.Status)
	}
	got, _ = GetBorrowingRecord(ctx, database, onTime.ID)
	if got.Status != model.StatusActive {
		t.Errorf("expected on-time loan active, got %s", got.Status)
	}
	got, _ = GetBorrowingRecord(ctx, database, returned.ID)
	if got.Status != model.StatusReturned {
		t.Errorf("expected returned loan untouched, got %s", got.Status)
	}

	// Quantities are untouched by the sweep.
	if got := available(t, database, item.ID); got != 8 {
		t.Errorf("expected 8 available, got %d", got)
	}

	n, err = SweepOverdue(ctx, database, testNow)
	if err != nil {
		t.Fatalf("SweepOverdue: %v", err)
	}
	if n != 0 {
		t.Errorf("expected second sweep to move nothing, got %d", n)
	}
	checkAccounting(t, database)
}

func TestReturnOverdueLoan(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := mustCreateItem(t, database, "LAB-001", 4)
	user := mustCreateUser(t, database, "Ana")
	rec := mustBorrow(t, database, item.ID, user.ID, 3, 1, testNow.AddDate(0, 0, -5))
	SweepOverdue(ctx, database, testNow)

	returned, err := Return(ctx, database, model.ReturnInput{BorrowingRecordID: rec.ID}, testNow)
	if err != nil {
		t.Fatalf("Return: %v", err)
	}
	if returned.Status != model.StatusReturned {
		t.Errorf("expected returned, got %s", returned.Status)
	}
	if got := available(t, database, item.ID); got != 4 {
		t.Errorf("expected 4 available, got %d", got)
	}
}

func TestListBorrowings(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := mustCreateItem(t, database, "LAB-001", 10)
	ana := mustCreateUser(t, database, "Ana")
	bor := mustCreateUser(t, database, "Bor")

	r1 := mustBorrow(t, database, item.ID, ana.ID, 1, 1, testNow.AddDate(0, 0, -3))
	r2 := mustBorrow(t, database, item.ID, bor.ID, 1, 7, testNow)
	r3 := mustBorrow(t, database, item.ID, ana.ID, 1, 7, testNow)
	Return(ctx, database, model.ReturnInput{BorrowingRecordID: r3.ID}, testNow)
	SweepOverdue(ctx, database, testNow)

	all, err := ListBorrowingRecords(ctx, database)
	if err != nil {
		t.Fatalf("ListBorrowingRecords: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 records, got %d", len(all))
	}

	active, err := ListActiveBorrowings(ctx, database)
	if err != nil {
		t.Fatalf("ListActiveBorrowings: %v", err)
	}
	if len(active) != 2 || active[0].ID != r1.ID || active[1].ID != r2.ID {
		t.Errorf("unexpected active borrowings: %+v", active)
	}

	mine, err := ListUserBorrowings(ctx, database, ana.ID)
	if err != nil {
		t.Fatalf("ListUserBorrowings: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != r1.ID || mine[1].ID != r3.ID {
		t.Errorf("unexpected user borrowings: %+v", mine)
	}
}

func TestConcurrentBorrowsDoNotOversubscribe(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := db.Migrate(database); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	ctx := context.Background()

	item := mustCreateItem(t, database, "LAB-001", 5)
	user := mustCreateUser(t, database, "Ana")

	const workers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Borrow(ctx, database, model.BorrowInput{
				ItemID: item.ID, UserID: user.ID, Quantity: 1, DurationDays: 7,
			}, testNow)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 5 {
		t.Errorf("expected exactly 5 successful borrows, got %d", succeeded)
	}
	if got := available(t, database, item.ID); got != 0 {
		t.Errorf("expected 0 available, got %d", got)
	}
	checkAccounting(t, database)
}
