package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/regali/internal/model"
	"github.com/erazemk/regali/internal/occupancy"
	"github.com/erazemk/regali/internal/reconcile"
	"github.com/erazemk/regali/internal/store"
)

// ZonesHandler handles zone endpoints, including structure reconciliation
// and zone deletion.
type ZonesHandler struct {
	DB *sql.DB
}

type createZoneRequest struct {
	WarehouseID int64  `json:"warehouseId" validate:"required,gt=0"`
	Code        string `json:"code" validate:"required,max=16,bincode"`
	Name        string `json:"name" validate:"required,max=128"`
}

type updateZoneRequest struct {
	Code   string `json:"code" validate:"required,max=16,bincode"`
	Name   string `json:"name" validate:"required,max=128"`
	Active *bool  `json:"active"`
}

// structureRequest is the body of apply and preview. An absent
// regenerateBins means full reconciliation.
type structureRequest struct {
	Structure               *model.StructureDefinition `json:"structure" validate:"required"`
	RegenerateBins          *bool                      `json:"regenerateBins"`
	ForceRemoveOccupiedBins bool                       `json:"forceRemoveOccupiedBins"`
}

func (req structureRequest) options() reconcile.Options {
	opts := reconcile.Options{RegenerateBins: true, ForceRemoveOccupied: req.ForceRemoveOccupiedBins}
	if req.RegenerateBins != nil {
		opts.RegenerateBins = *req.RegenerateBins
	}
	return opts
}

type layoutRequest struct {
	Layout *model.ZoneLayout `json:"layout" validate:"required"`
}

// List handles GET /api/zones?warehouseId=.
func (h *ZonesHandler) List(w http.ResponseWriter, r *http.Request) {
	warehouseID, ok := queryID(w, r, "warehouseId")
	if !ok {
		return
	}

	tenant, _, _ := actor(r)
	zones, err := store.ListZones(r.Context(), h.DB, tenant, warehouseID)
	if err != nil {
		writeError(w, r, err, "list zones")
		return
	}
	if zones == nil {
		zones = []model.Zone{}
	}
	jsonResponse(w, http.StatusOK, zones)
}

// Create handles POST /api/zones.
func (h *ZonesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createZoneRequest
	if !bind(w, r, &req) {
		return
	}

	tenant, _, name := actor(r)
	zone, err := store.CreateZone(r.Context(), h.DB, tenant, req.WarehouseID, strings.ToUpper(req.Code), req.Name)
	if err != nil {
		writeError(w, r, err, "create zone")
		return
	}

	slog.Info("zone created", "user", name, "zone", zone.Code, "warehouse_id", zone.WarehouseID)
	jsonResponse(w, http.StatusCreated, zone)
}

// Get handles GET /api/zones/{id}.
func (h *ZonesHandler) Get(w http.ResponseWriter, r *http.Request) {
	zone, ok := h.zone(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, zone)
}

// Update handles PUT /api/zones/{id}.
func (h *ZonesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateZoneRequest
	if !bind(w, r, &req) {
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	tenant, _, name := actor(r)
	zone, err := store.UpdateZone(r.Context(), h.DB, tenant, id, strings.ToUpper(req.Code), req.Name, active)
	if err != nil {
		writeError(w, r, err, "update zone")
		return
	}

	slog.Info("zone updated", "user", name, "zone", zone.Code, "active", zone.Active)
	jsonResponse(w, http.StatusOK, zone)
}

// Delete handles DELETE /api/zones/{id}?forceDeleteBins=.
func (h *ZonesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	force, ok := queryBool(w, r, "forceDeleteBins")
	if !ok {
		return
	}

	tenant, userID, name := actor(r)
	res, err := store.DeleteZone(r.Context(), h.DB, tenant, id, force, userID)
	if err != nil {
		writeError(w, r, err, "delete zone")
		return
	}

	slog.Info("zone deleted", "user", name, "zone_id", id,
		"bins_deleted", res.DeletedBinsCount, "items_detached", res.ItemsDetached)
	jsonResponse(w, http.StatusOK, res)
}

// GetStructure handles GET /api/zones/{id}/structure.
func (h *ZonesHandler) GetStructure(w http.ResponseWriter, r *http.Request) {
	zone, ok := h.zone(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, zone.Structure)
}

// ApplyStructure handles POST /api/zones/{id}/structure. Occupied bins that
// cannot be removed are reported in blockedBins of a 200 response.
func (h *ZonesHandler) ApplyStructure(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req structureRequest
	if !bind(w, r, &req) {
		return
	}

	tenant, userID, name := actor(r)
	res, err := store.ApplyStructure(r.Context(), h.DB, tenant, id, *req.Structure, req.options(), userID)
	if err != nil {
		writeError(w, r, err, "apply zone structure")
		return
	}

	slog.Info("zone structure applied", "user", name, "zone", res.Zone.Code,
		"created", res.BinsCreated, "updated", res.BinsUpdated, "deleted", res.BinsDeleted,
		"blocked", res.BinsBlocked, "detached", res.ItemsDetached)
	if res.BinsBlocked > 0 {
		slog.Warn("occupied bins kept as blocked", "zone", res.Zone.Code, "count", res.BinsBlocked)
	}
	jsonResponse(w, http.StatusOK, res)
}

// PreviewStructure handles POST /api/zones/{id}/structure/preview.
func (h *ZonesHandler) PreviewStructure(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req structureRequest
	if !bind(w, r, &req) {
		return
	}

	tenant, _, _ := actor(r)
	res, err := store.PreviewStructure(r.Context(), h.DB, tenant, id, *req.Structure, req.options())
	if err != nil {
		writeError(w, r, err, "preview zone structure")
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

// SetLayout handles PUT /api/zones/{id}/layout.
func (h *ZonesHandler) SetLayout(w http.ResponseWriter, r *http.Request) {
	zone, ok := h.zone(w, r)
	if !ok {
		return
	}
	var req layoutRequest
	if !bind(w, r, &req) {
		return
	}

	layout, err := occupancy.ValidateLayout(zone.Structure, *req.Layout)
	if err != nil {
		writeError(w, r, err, "set zone layout")
		return
	}

	tenant, _, name := actor(r)
	zone, err = store.SetZoneLayout(r.Context(), h.DB, tenant, zone.ID, &layout)
	if err != nil {
		writeError(w, r, err, "set zone layout")
		return
	}

	slog.Info("zone layout set", "user", name, "zone", zone.Code, "cells", len(layout.Cells))
	jsonResponse(w, http.StatusOK, map[string]any{"zone": zone})
}

// ResetLayout handles POST /api/zones/{id}/layout/reset.
func (h *ZonesHandler) ResetLayout(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	tenant, _, name := actor(r)
	zone, err := store.ResetZoneLayout(r.Context(), h.DB, tenant, id)
	if err != nil {
		writeError(w, r, err, "reset zone layout")
		return
	}

	slog.Info("zone layout reset", "user", name, "zone", zone.Code)
	jsonResponse(w, http.StatusOK, map[string]any{"zone": zone})
}

// zone loads the zone named by the id path parameter, writing the error
// response itself.
func (h *ZonesHandler) zone(w http.ResponseWriter, r *http.Request) (*model.Zone, bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return nil, false
	}

	tenant, _, _ := actor(r)
	zone, err := store.GetZone(r.Context(), h.DB, tenant, id)
	if err != nil {
		writeError(w, r, err, "get zone")
		return nil, false
	}
	if zone == nil {
		jsonError(w, http.StatusNotFound, "zone not found")
		return nil, false
	}
	return zone, true
}
