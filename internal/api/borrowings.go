package api

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/solskiinventar/internal/metrics"
	"github.com/erazemk/solskiinventar/internal/model"
	"github.com/erazemk/solskiinventar/internal/store"
	"github.com/erazemk/solskiinventar/internal/sweeper"
)

// BorrowingsHandler handles loan endpoints.
type BorrowingsHandler struct {
	DB      *sql.DB
	Now     func() time.Time
	Metrics *metrics.Metrics
	Sweeper *sweeper.Sweeper
}

type returnRequest struct {
	Notes *string `json:"notes"`
}

func emptyIfNil(records []model.BorrowingRecord) []model.BorrowingRecord {
	if records == nil {
		return []model.BorrowingRecord{}
	}
	return records
}

// List handles GET /api/borrowings.
func (h *BorrowingsHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := store.ListBorrowingRecords(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to list borrowing records")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(records))
}

// ListActive handles GET /api/borrowings/active.
func (h *BorrowingsHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	records, err := store.ListActiveBorrowings(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to list active borrowings")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(records))
}

// ListForUser handles GET /api/users/{id}/borrowings.
func (h *BorrowingsHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user")
	if !ok {
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get user")
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	records, err := store.ListUserBorrowings(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to list user borrowings")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(records))
}

// ListOverdue handles GET /api/borrowings/overdue.
func (h *BorrowingsHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	items, err := store.OverdueItems(r.Context(), h.DB, h.Now())
	if err != nil {
		storeError(w, err, "failed to list overdue items")
		return
	}
	if items == nil {
		items = []model.OverdueItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/borrowings/{id}.
func (h *BorrowingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "borrowing record")
	if !ok {
		return
	}

	record, err := store.GetBorrowingRecord(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get borrowing record")
		return
	}
	if record == nil {
		jsonError(w, http.StatusNotFound, "borrowing record not found")
		return
	}
	jsonResponse(w, http.StatusOK, record)
}

// Borrow handles POST /api/borrowings.
func (h *BorrowingsHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	var req model.BorrowInput
	if !decodeValid(w, r, &req) {
		return
	}

	record, err := store.Borrow(r.Context(), h.DB, req, h.Now())
	if err != nil {
		storeError(w, err, "failed to record borrowing")
		return
	}
	h.Metrics.Borrowings.Inc()

	slog.Info("item borrowed",
		"admin", GetClaims(r.Context()).Username,
		"record_id", record.ID,
		"item_id", record.ItemID,
		"user_id", record.UserID,
		"quantity", record.QuantityBorrowed,
	)
	jsonResponse(w, http.StatusCreated, record)
}

// Return handles POST /api/borrowings/{id}/return.
func (h *BorrowingsHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "borrowing record")
	if !ok {
		return
	}

	// The body is optional.
	var req returnRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := store.Return(r.Context(), h.DB, model.ReturnInput{
		BorrowingRecordID: id,
		Notes:             req.Notes,
	}, h.Now())
	if err != nil {
		storeError(w, err, "failed to return item")
		return
	}
	h.Metrics.Returns.Inc()

	slog.Info("item returned", "admin", GetClaims(r.Context()).Username, "record_id", id)
	jsonResponse(w, http.StatusOK, record)
}

// Sweep handles POST /api/borrowings/sweep.
func (h *BorrowingsHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	n, err := h.Sweeper.RunOnce(r.Context())
	if err != nil {
		storeError(w, err, "failed to sweep overdue borrowings")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"updated": n})
}
