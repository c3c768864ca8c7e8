package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/regali/internal/model"
	"github.com/erazemk/regali/internal/store"
)

// WarehousesHandler handles warehouse endpoints.
type WarehousesHandler struct {
	DB *sql.DB
}

type createWarehouseRequest struct {
	Code string `json:"code" validate:"required,max=16,bincode"`
	Name string `json:"name" validate:"required,max=128"`
}

// List handles GET /api/warehouses.
func (h *WarehousesHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant, _, _ := actor(r)
	warehouses, err := store.ListWarehouses(r.Context(), h.DB, tenant)
	if err != nil {
		writeError(w, r, err, "list warehouses")
		return
	}
	if warehouses == nil {
		warehouses = []model.Warehouse{}
	}
	jsonResponse(w, http.StatusOK, warehouses)
}

// Create handles POST /api/warehouses.
func (h *WarehousesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createWarehouseRequest
	if !bind(w, r, &req) {
		return
	}

	tenant, _, name := actor(r)
	warehouse, err := store.CreateWarehouse(r.Context(), h.DB, tenant, strings.ToUpper(req.Code), req.Name)
	if err != nil {
		writeError(w, r, err, "create warehouse")
		return
	}

	slog.Info("warehouse created", "user", name, "warehouse", warehouse.Code)
	jsonResponse(w, http.StatusCreated, warehouse)
}

// Get handles GET /api/warehouses/{id}.
func (h *WarehousesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	tenant, _, _ := actor(r)
	warehouse, err := store.GetWarehouse(r.Context(), h.DB, tenant, id)
	if err != nil {
		writeError(w, r, err, "get warehouse")
		return
	}
	if warehouse == nil {
		jsonError(w, http.StatusNotFound, "warehouse not found")
		return
	}
	jsonResponse(w, http.StatusOK, warehouse)
}
