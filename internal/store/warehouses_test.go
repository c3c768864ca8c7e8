package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/regali/internal/db"
	"github.com/erazemk/regali/internal/model"
)

func TestWarehousesAreTenantScoped(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	w, err := CreateWarehouse(ctx, database, "acme", "MAIN", "Main")
	if err != nil {
		t.Fatalf("CreateWarehouse: %v", err)
	}
	if _, err := CreateWarehouse(ctx, database, "other", "MAIN", "Main"); err != nil {
		t.Fatalf("same code in another tenant: %v", err)
	}
	if _, err := CreateWarehouse(ctx, database, "acme", "MAIN", "Again"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	got, err := GetWarehouse(ctx, database, "other", w.ID)
	if err != nil {
		t.Fatalf("GetWarehouse: %v", err)
	}
	if got != nil {
		t.Error("expected warehouse to be invisible to another tenant")
	}

	list, _ := ListWarehouses(ctx, database, "acme")
	if len(list) != 1 {
		t.Errorf("expected 1 warehouse, got %d", len(list))
	}
}

func TestZoneLifecycle(t *testing.T) {
	database, zone := setupZone(t)
	ctx := context.Background()

	if zone.Structure.PositionCount() != 0 || zone.Version != 0 || !zone.Active {
		t.Errorf("unexpected new zone %+v", zone)
	}
	if _, err := CreateZone(ctx, database, testTenant, zone.WarehouseID, "Z1", "Dup"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
	if _, err := CreateZone(ctx, database, testTenant, 999, "Z2", "Nowhere"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing warehouse, got %v", err)
	}

	updated, err := UpdateZone(ctx, database, testTenant, zone.ID, "Z1", "Bulk", false)
	if err != nil {
		t.Fatalf("UpdateZone: %v", err)
	}
	if updated.Name != "Bulk" || updated.Active || updated.Version != 1 {
		t.Errorf("unexpected updated zone %+v", updated)
	}

	zones, _ := ListZones(ctx, database, testTenant, zone.WarehouseID)
	if len(zones) != 1 {
		t.Errorf("expected 1 zone, got %d", len(zones))
	}
}

func TestZoneLayoutRoundTrip(t *testing.T) {
	database, zone := setupZone(t)
	ctx := context.Background()

	layout := &model.ZoneLayout{Columns: 4, Cells: []model.LayoutCell{{Corridor: "A", Shelf: "1", Position: "1", X: 3, Y: 0}}}
	got, err := SetZoneLayout(ctx, database, testTenant, zone.ID, layout)
	if err != nil {
		t.Fatalf("SetZoneLayout: %v", err)
	}
	if got.Layout == nil || got.Layout.Cells[0].X != 3 {
		t.Fatalf("expected stored layout, got %+v", got.Layout)
	}

	reset, err := ResetZoneLayout(ctx, database, testTenant, zone.ID)
	if err != nil {
		t.Fatalf("ResetZoneLayout: %v", err)
	}
	if reset.Layout != nil {
		t.Errorf("expected layout to be cleared, got %+v", reset.Layout)
	}
}

func TestBinLayoutAndLookup(t *testing.T) {
	database, zone := setupZone(t)
	ctx := context.Background()
	mustApply(t, database, zone.ID, grid(1, 1, 2), regenerate)
	b := binAt(t, database, zone.ID, "Z1-A-1-2")

	got, err := SetBinLayout(ctx, database, testTenant, b.ID, &model.BinLayout{X: 5, Y: 6})
	if err != nil {
		t.Fatalf("SetBinLayout: %v", err)
	}
	if got.Layout == nil || got.Layout.X != 5 || got.Layout.Y != 6 {
		t.Errorf("expected layout (5,6), got %+v", got.Layout)
	}
	if got, _ = ClearBinLayout(ctx, database, testTenant, b.ID); got.Layout != nil {
		t.Errorf("expected layout to be cleared, got %+v", got.Layout)
	}

	found, err := FindBinsByAddress(ctx, database, testTenant, "Z1-A-1-2")
	if err != nil {
		t.Fatalf("FindBinsByAddress: %v", err)
	}
	if len(found) != 1 || found[0].ID != b.ID {
		t.Errorf("expected bin %d, got %+v", b.ID, found)
	}

	if _, err := SetBinLayout(ctx, database, "other", b.ID, &model.BinLayout{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound across tenants, got %v", err)
	}
}

func TestMoveItem(t *testing.T) {
	database, zone := setupZone(t)
	ctx := context.Background()
	mustApply(t, database, zone.ID, grid(1, 1, 2), regenerate)
	first := binAt(t, database, zone.ID, "Z1-A-1-1")
	second := binAt(t, database, zone.ID, "Z1-A-1-2")

	item, err := CreateItem(ctx, database, testTenant, "SKU-1", "Bolts", 500, nil, nil)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	// Capacity is 10 but only reported, never enforced.
	moved, err := MoveItem(ctx, database, testTenant, item.ID, &first.ID, nil)
	if err != nil {
		t.Fatalf("MoveItem: %v", err)
	}
	if moved.BinAddress != "Z1-A-1-1" {
		t.Errorf("expected item in Z1-A-1-1, got %q", moved.BinAddress)
	}

	moved, err = MoveItem(ctx, database, testTenant, item.ID, &second.ID, nil)
	if err != nil {
		t.Fatalf("MoveItem: %v", err)
	}
	if moved.LastKnownAddress != "Z1-A-1-2" {
		t.Errorf("expected last known address Z1-A-1-2, got %q", moved.LastKnownAddress)
	}

	items, _ := ListItems(ctx, database, testTenant, ItemFilter{ZoneID: zone.ID})
	if len(items) != 1 {
		t.Errorf("expected 1 item in zone, got %d", len(items))
	}

	if err := DeleteItem(ctx, database, testTenant, item.ID, nil); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	history, _ := GetItemHistory(ctx, database, testTenant, item.ID)
	reasons := []string{}
	for _, m := range history {
		reasons = append(reasons, m.Reason)
	}
	want := []string{model.MovementRemoved, model.MovementMoved, model.MovementStored}
	if len(reasons) != len(want) {
		t.Fatalf("expected movements %v, got %v", want, reasons)
	}
	for i := range want {
		if reasons[i] != want[i] {
			t.Errorf("movement %d: expected %s, got %s", i, want[i], reasons[i])
		}
	}

	b := binAt(t, database, zone.ID, "Z1-A-1-2")
	if b.Occupancy != 0 {
		t.Errorf("expected released bin, got occupancy %d", b.Occupancy)
	}
}

func TestMoveItemIntoBlockedBin(t *testing.T) {
	database, zone := setupZone(t)
	ctx := context.Background()
	mustApply(t, database, zone.ID, grid(1, 2, 1), regenerate)
	held := binAt(t, database, zone.ID, "Z1-A-2-1")
	stock(t, database, held.ID, "SKU-1", 1)

	shrunk := grid(1, 2, 1)
	shrunk.Corridors[0].Shelves = shrunk.Corridors[0].Shelves[:1]
	mustApply(t, database, zone.ID, shrunk, regenerate)

	item, _ := CreateItem(ctx, database, testTenant, "SKU-2", "Nuts", 1, nil, nil)
	if _, err := MoveItem(ctx, database, testTenant, item.ID, &held.ID, nil); !errors.Is(err, ErrBinBlocked) {
		t.Errorf("expected ErrBinBlocked, got %v", err)
	}
}
