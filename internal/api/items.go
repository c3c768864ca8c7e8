package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/regali/internal/model"
	"github.com/erazemk/regali/internal/store"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

type createItemRequest struct {
	SKU      string `json:"sku" validate:"required,max=64"`
	Name     string `json:"name" validate:"required,max=256"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
	BinID    *int64 `json:"binId" validate:"omitempty,gt=0"`
}

// moveItemRequest places an item in a bin; a null binId takes it out of
// storage.
type moveItemRequest struct {
	BinID *int64 `json:"binId" validate:"omitempty,gt=0"`
}

// List handles GET /api/items?binId=&zoneId=&sku=.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	binID, ok := queryID(w, r, "binId")
	if !ok {
		return
	}
	zoneID, ok := queryID(w, r, "zoneId")
	if !ok {
		return
	}

	tenant, _, _ := actor(r)
	items, err := store.ListItems(r.Context(), h.DB, tenant, store.ItemFilter{
		BinID:  binID,
		ZoneID: zoneID,
		SKU:    r.URL.Query().Get("sku"),
	})
	if err != nil {
		writeError(w, r, err, "list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if !bind(w, r, &req) {
		return
	}

	tenant, userID, name := actor(r)
	item, err := store.CreateItem(r.Context(), h.DB, tenant, req.SKU, req.Name, req.Quantity, req.BinID, userID)
	if err != nil {
		writeError(w, r, err, "create item")
		return
	}

	slog.Info("item created", "user", name, "sku", item.SKU, "bin", item.BinAddress)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	tenant, _, _ := actor(r)
	item, err := store.GetItem(r.Context(), h.DB, tenant, id)
	if err != nil {
		writeError(w, r, err, "get item")
		return
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Move handles PUT /api/items/{id}/bin.
func (h *ItemsHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req moveItemRequest
	if !bind(w, r, &req) {
		return
	}

	tenant, userID, name := actor(r)
	item, err := store.MoveItem(r.Context(), h.DB, tenant, id, req.BinID, userID)
	if err != nil {
		writeError(w, r, err, "move item")
		return
	}

	slog.Info("item moved", "user", name, "sku", item.SKU, "bin", item.BinAddress)
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	tenant, userID, name := actor(r)
	if err := store.DeleteItem(r.Context(), h.DB, tenant, id, userID); err != nil {
		writeError(w, r, err, "delete item")
		return
	}

	slog.Info("item deleted", "user", name, "item_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// GetHistory handles GET /api/items/{id}/history.
func (h *ItemsHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	tenant, _, _ := actor(r)
	history, err := store.GetItemHistory(r.Context(), h.DB, tenant, id)
	if err != nil {
		writeError(w, r, err, "get item history")
		return
	}
	if history == nil {
		history = []model.Movement{}
	}
	jsonResponse(w, http.StatusOK, history)
}
