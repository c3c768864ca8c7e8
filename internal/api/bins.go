package api

import (
	"bytes"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/regali/internal/imaging"
	"github.com/erazemk/regali/internal/model"
	"github.com/erazemk/regali/internal/occupancy"
	"github.com/erazemk/regali/internal/store"
)

// BinsHandler handles bin lookups, bin layout overrides and the occupancy map.
type BinsHandler struct {
	DB *sql.DB
}

type binLayoutRequest struct {
	X *int `json:"x" validate:"required,min=0"`
	Y *int `json:"y" validate:"required,min=0"`
}

// List handles GET /api/bins?zoneId=&status=.
func (h *BinsHandler) List(w http.ResponseWriter, r *http.Request) {
	zoneID, ok := queryID(w, r, "zoneId")
	if !ok {
		return
	}
	if zoneID == 0 {
		jsonError(w, http.StatusBadRequest, "zoneId required")
		return
	}

	status := model.BinStatus(r.URL.Query().Get("status"))
	if status != "" && status != model.BinStatusActive && status != model.BinStatusBlocked {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	tenant, _, _ := actor(r)
	bins, err := store.ListBins(r.Context(), h.DB, tenant, zoneID, status)
	if err != nil {
		writeError(w, r, err, "list bins")
		return
	}
	if bins == nil {
		bins = []model.Bin{}
	}
	jsonResponse(w, http.StatusOK, bins)
}

// Get handles GET /api/bins/{id}.
func (h *BinsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	tenant, _, _ := actor(r)
	bin, err := store.GetBin(r.Context(), h.DB, tenant, id)
	if err != nil {
		writeError(w, r, err, "get bin")
		return
	}
	if bin == nil {
		jsonError(w, http.StatusNotFound, "bin not found")
		return
	}
	jsonResponse(w, http.StatusOK, bin)
}

// Lookup handles GET /api/bins/lookup?address=&zoneId=. Without zoneId the
// address must be unique across the tenant's zones.
func (h *BinsHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	address := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("address")))
	if address == "" {
		jsonError(w, http.StatusBadRequest, "address required")
		return
	}
	zoneID, ok := queryID(w, r, "zoneId")
	if !ok {
		return
	}

	tenant, _, _ := actor(r)
	if zoneID > 0 {
		bin, err := store.GetBinByAddress(r.Context(), h.DB, tenant, zoneID, address)
		if err != nil {
			writeError(w, r, err, "look up bin")
			return
		}
		if bin == nil {
			jsonError(w, http.StatusNotFound, "bin not found")
			return
		}
		jsonResponse(w, http.StatusOK, bin)
		return
	}

	bins, err := store.FindBinsByAddress(r.Context(), h.DB, tenant, address)
	if err != nil {
		writeError(w, r, err, "look up bin")
		return
	}
	switch len(bins) {
	case 0:
		jsonError(w, http.StatusNotFound, "bin not found")
	case 1:
		jsonResponse(w, http.StatusOK, bins[0])
	default:
		jsonError(w, http.StatusConflict, fmt.Sprintf("address %s exists in %d zones; pass zoneId", address, len(bins)))
	}
}

// SetLayout handles PUT /api/bins/{id}/layout.
func (h *BinsHandler) SetLayout(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req binLayoutRequest
	if !bind(w, r, &req) {
		return
	}

	tenant, _, name := actor(r)
	bin, err := store.SetBinLayout(r.Context(), h.DB, tenant, id, &model.BinLayout{X: *req.X, Y: *req.Y})
	if err != nil {
		writeError(w, r, err, "set bin layout")
		return
	}

	slog.Info("bin layout set", "user", name, "bin", bin.Address, "x", *req.X, "y", *req.Y)
	jsonResponse(w, http.StatusOK, bin)
}

// ClearLayout handles DELETE /api/bins/{id}/layout.
func (h *BinsHandler) ClearLayout(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	tenant, _, _ := actor(r)
	bin, err := store.ClearBinLayout(r.Context(), h.DB, tenant, id)
	if err != nil {
		writeError(w, r, err, "clear bin layout")
		return
	}
	jsonResponse(w, http.StatusOK, bin)
}

// Occupancy handles GET /api/bins/occupancy?zoneId=.
func (h *BinsHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	m, ok := h.occupancyMap(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, m)
}

// OccupancyPNG handles GET /api/bins/occupancy.png?zoneId=&cellSize=.
func (h *BinsHandler) OccupancyPNG(w http.ResponseWriter, r *http.Request) {
	cellSize := imaging.DefaultCellSize
	if v := r.URL.Query().Get("cellSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, http.StatusBadRequest, "invalid cellSize")
			return
		}
		cellSize = n
	}

	m, ok := h.occupancyMap(w, r)
	if !ok {
		return
	}

	data, err := imaging.RenderOccupancy(m, cellSize)
	if err != nil {
		writeError(w, r, err, "render occupancy map")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

// OccupancyXLSX handles GET /api/bins/occupancy.xlsx?zoneId=.
func (h *BinsHandler) OccupancyXLSX(w http.ResponseWriter, r *http.Request) {
	m, ok := h.occupancyMap(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := occupancy.WriteXLSX(m, &buf); err != nil {
		writeError(w, r, err, "export occupancy map")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="occupancy-%s.xlsx"`, m.ZoneCode))
	buf.WriteTo(w)
}

func (h *BinsHandler) occupancyMap(w http.ResponseWriter, r *http.Request) (*occupancy.Map, bool) {
	zoneID, ok := queryID(w, r, "zoneId")
	if !ok {
		return nil, false
	}
	if zoneID == 0 {
		jsonError(w, http.StatusBadRequest, "zoneId required")
		return nil, false
	}

	tenant, _, _ := actor(r)
	zone, err := store.GetZone(r.Context(), h.DB, tenant, zoneID)
	if err != nil {
		writeError(w, r, err, "build occupancy map")
		return nil, false
	}
	if zone == nil {
		jsonError(w, http.StatusNotFound, "zone not found")
		return nil, false
	}

	bins, err := store.ListBins(r.Context(), h.DB, tenant, zoneID, "")
	if err != nil {
		writeError(w, r, err, "build occupancy map")
		return nil, false
	}
	return occupancy.Build(zone, bins), true
}
