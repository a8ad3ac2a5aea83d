package api

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/solskiinventar/internal/imaging"
	"github.com/erazemk/solskiinventar/internal/model"
	"github.com/erazemk/solskiinventar/internal/store"
)

// maxImageUpload bounds the multipart body of a photo upload.
const maxImageUpload = 10 << 20

// ItemsHandler handles inventory item endpoints.
type ItemsHandler struct {
	DB     *sql.DB
	Now    func() time.Time
	Images *imaging.Processor
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Search handles GET /api/items/search?q=.
func (h *ItemsHandler) Search(w http.ResponseWriter, r *http.Request) {
	items, err := store.SearchItemsByLabel(r.Context(), h.DB, r.URL.Query().Get("q"))
	if err != nil {
		storeError(w, err, "failed to search items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateItemInput
	if !decodeValid(w, r, &req) {
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, req, h.Now())
	if err != nil {
		storeError(w, err, "failed to create item")
		return
	}

	slog.Info("item created", "admin", GetClaims(r.Context()).Username, "item_id", item.ID, "label", item.LabelCode)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item")
	if !ok {
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// GetByLabel handles GET /api/labels/{code}.
func (h *ItemsHandler) GetByLabel(w http.ResponseWriter, r *http.Request) {
	item, err := store.GetItemByLabel(r.Context(), h.DB, r.PathValue("code"))
	if err != nil {
		storeError(w, err, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PATCH /api/items/{id}. Absent fields are left alone and
// fields sent as null are cleared.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item")
	if !ok {
		return
	}

	var req model.UpdateItemInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := store.UpdateItem(r.Context(), h.DB, id, req, h.Now())
	if err != nil {
		storeError(w, err, "failed to update item")
		return
	}

	slog.Info("item updated", "admin", GetClaims(r.Context()).Username, "item_id", id)
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item")
	if !ok {
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "failed to delete item")
		return
	}

	slog.Info("item deleted", "admin", GetClaims(r.Context()).Username, "item_id", id)
	jsonResponse(w, http.StatusOK, map[string]bool{"deleted": true})
}

// UploadImage handles PUT /api/items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUpload)
	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "failed to read image")
		return
	}

	photo, err := h.Images.Process(data)
	if errors.Is(err, imaging.ErrUnsupportedFormat) {
		jsonError(w, http.StatusBadRequest, "image must be JPEG, PNG or WebP")
		return
	}
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid image")
		return
	}

	if err := store.SetItemImage(r.Context(), h.DB, id, photo.Data, photo.MIME, h.Now()); err != nil {
		storeError(w, err, "failed to save image")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "image uploaded",
		"width":   photo.Width,
		"height":  photo.Height,
	})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item")
	if !ok {
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get image")
		return
	}
	if len(data) == 0 {
		jsonError(w, http.StatusNotFound, "image not found")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Write(data)
}
