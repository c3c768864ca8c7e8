package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/regali/internal/model"
)

func TestDeleteZoneRefusesOccupiedBins(t *testing.T) {
	database, zone := setupZone(t)
	ctx := context.Background()
	mustApply(t, database, zone.ID, grid(1, 1, 5), regenerate)
	first := binAt(t, database, zone.ID, "Z1-A-1-2")
	second := binAt(t, database, zone.ID, "Z1-A-1-4")
	stock(t, database, first.ID, "SKU-1", 1)
	stock(t, database, second.ID, "SKU-2", 3)

	_, err := DeleteZone(ctx, database, testTenant, zone.ID, false, nil)
	var occupied *ZoneOccupiedError
	if !errors.As(err, &occupied) {
		t.Fatalf("expected ZoneOccupiedError, got %v", err)
	}
	if len(occupied.Blocking) != 2 {
		t.Fatalf("expected 2 blocking bins, got %d", len(occupied.Blocking))
	}
	if occupied.Blocking[0].Address != "Z1-A-1-2" || occupied.Blocking[1].Address != "Z1-A-1-4" {
		t.Errorf("unexpected blocking bins %+v", occupied.Blocking)
	}

	stored, _ := GetZone(ctx, database, testTenant, zone.ID)
	if stored == nil {
		t.Fatal("expected zone to survive a refused deletion")
	}
	bins, _ := ListBins(ctx, database, testTenant, zone.ID, "")
	if len(bins) != 5 {
		t.Errorf("expected all 5 bins to survive, got %d", len(bins))
	}
}

func TestDeleteZoneForce(t *testing.T) {
	database, zone := setupZone(t)
	ctx := context.Background()
	mustApply(t, database, zone.ID, grid(1, 1, 5), regenerate)
	first := binAt(t, database, zone.ID, "Z1-A-1-2")
	second := binAt(t, database, zone.ID, "Z1-A-1-4")
	a := stock(t, database, first.ID, "SKU-1", 1)
	stock(t, database, second.ID, "SKU-2", 3)
	stock(t, database, second.ID, "SKU-3", 2)

	res, err := DeleteZone(ctx, database, testTenant, zone.ID, true, nil)
	if err != nil {
		t.Fatalf("DeleteZone: %v", err)
	}
	if !res.Success || res.DeletedBinsCount != 5 || res.ItemsDetached != 3 {
		t.Errorf("unexpected deletion result %+v", res)
	}

	if z, _ := GetZone(ctx, database, testTenant, zone.ID); z != nil {
		t.Error("expected zone to be deleted")
	}
	got, _ := GetItem(ctx, database, testTenant, a.ID)
	if got.BinID != nil || got.LastKnownAddress != "Z1-A-1-2" {
		t.Errorf("expected detached item with last known address, got %+v", got)
	}

	// The code is free again.
	if _, err := CreateZone(ctx, database, testTenant, zone.WarehouseID, "Z1", "Again"); err != nil {
		t.Errorf("recreating zone code: %v", err)
	}
}

func TestDeleteZoneEmpty(t *testing.T) {
	database, zone := setupZone(t)

	res, err := DeleteZone(context.Background(), database, testTenant, zone.ID, false, nil)
	if err != nil {
		t.Fatalf("DeleteZone: %v", err)
	}
	if res.DeletedBinsCount != 0 {
		t.Errorf("expected no bins deleted, got %d", res.DeletedBinsCount)
	}

	_, err = DeleteZone(context.Background(), database, testTenant, zone.ID, false, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for a deleted zone, got %v", err)
	}
}

var zoneMockColumns = []string{
	"id", "tenant", "warehouse_id", "code", "name", "active", "structure", "layout",
	"version", "created_at", "updated_at", "deleted_at",
}

var binMockColumns = []string{
	"id", "zone_id", "corridor", "shelf", "position", "address",
	"corridor_label", "shelf_label", "position_label", "capacity",
	"status", "blocked_reason", "layout_x", "layout_y", "created_at", "updated_at",
	"occupancy", "item_count",
}

func TestDeleteZoneRollsBackOnFailure(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM zones`).
		WithArgs(int64(41), testTenant).
		WillReturnRows(sqlmock.NewRows(zoneMockColumns).
			AddRow(41, testTenant, 1, "Z1", "Picking", true, `{"corridors":[]}`, nil, 3, now, now, nil))
	mock.ExpectQuery(`FROM bins`).
		WillReturnRows(sqlmock.NewRows(binMockColumns).
			AddRow(9, 41, "A", "1", "1", "Z1-A-1-1", "", "", "", 0, "active", nil, nil, nil, now, now, 0, 0))
	mock.ExpectExec(`DELETE FROM bins`).
		WithArgs(int64(9)).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	res, err := DeleteZone(context.Background(), database, testTenant, 41, false, nil)

	assert.Nil(t, res)
	assert.ErrorContains(t, err, "deleting bin Z1-A-1-1")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyStructureDetectsConcurrentChange(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM zones`).
		WillReturnRows(sqlmock.NewRows(zoneMockColumns).
			AddRow(42, testTenant, 1, "Z1", "Picking", true, `{"corridors":[]}`, nil, 5, now, now, nil))
	mock.ExpectQuery(`FROM bins`).
		WillReturnRows(sqlmock.NewRows(binMockColumns))
	mock.ExpectExec(`INSERT INTO bins`).
		WithArgs(int64(42), "A", "1", "1", "Z1-A-1-1", "A", "1", "1", 10).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE zones SET structure`).
		WithArgs(sqlmock.AnyArg(), int64(42), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	res, err := ApplyStructure(context.Background(), database, testTenant, 42, grid(1, 1, 1), regenerate, nil)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrConcurrentModification)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteZoneReportsRowsAffectedFailure(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM zones`).
		WithArgs(int64(43), testTenant).
		WillReturnRows(sqlmock.NewRows(zoneMockColumns).
			AddRow(43, testTenant, 1, "Z1", "Picking", true, `{"corridors":[]}`, nil, 2, now, now, nil))
	mock.ExpectQuery(`FROM bins`).
		WillReturnRows(sqlmock.NewRows(binMockColumns))
	mock.ExpectExec(`UPDATE zones SET deleted_at`).
		WithArgs(int64(43), int64(2)).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("result unavailable")))
	mock.ExpectRollback()

	res, err := DeleteZone(context.Background(), database, testTenant, 43, false, nil)

	assert.Nil(t, res)
	assert.ErrorContains(t, err, "result unavailable")
	assert.NotErrorIs(t, err, ErrConcurrentModification)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPreviewStructureReadsInOneTransaction(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM zones`).
		WithArgs(int64(44), testTenant).
		WillReturnRows(sqlmock.NewRows(zoneMockColumns).
			AddRow(44, testTenant, 1, "Z1", "Picking", true, `{"corridors":[]}`, nil, 1, now, now, nil))
	mock.ExpectQuery(`FROM bins`).
		WillReturnRows(sqlmock.NewRows(binMockColumns))
	mock.ExpectRollback()

	res, err := PreviewStructure(context.Background(), database, testTenant, 44, grid(1, 1, 2), regenerate)

	require.NoError(t, err)
	assert.True(t, res.Preview)
	assert.Equal(t, 2, res.BinsCreated)
	assert.Equal(t, int64(1), res.Zone.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestZoneOccupiedErrorMessage(t *testing.T) {
	err := &ZoneOccupiedError{ZoneID: 3, Blocking: []model.BlockedBin{{Address: "Z1-A-1-1"}, {Address: "Z1-A-1-2"}}}
	assert.Equal(t, "zone 3 has 2 occupied bin(s): Z1-A-1-1, Z1-A-1-2", err.Error())
}
