package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/erazemk/regali/internal/model"
	"github.com/erazemk/regali/internal/reconcile"
	"github.com/erazemk/regali/internal/structure"
)

// ApplyStructure reconciles a zone's bins with a new structure definition
// and stores the definition on the zone. Every bin and item change commits
// in one transaction; occupied bins that cannot be removed are reported as
// blocked rather than failing the call.
func ApplyStructure(ctx context.Context, db *sql.DB, tenant string, zoneID int64, def model.StructureDefinition, opts reconcile.Options, userID *int64) (*model.StructureResult, error) {
	norm, err := structure.Normalize(def)
	if err != nil {
		return nil, err
	}

	unlock, err := zoneLocks.Lock(ctx, zoneID)
	if err != nil {
		return nil, fmt.Errorf("waiting for zone lock: %w", err)
	}
	defer unlock()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	zone, plan, err := planStructure(ctx, tx, tenant, zoneID, norm, opts)
	if err != nil {
		return nil, err
	}

	detached, err := executePlan(ctx, tx, zone.ID, plan, userID)
	if err != nil {
		return nil, err
	}
	if detached != plan.ItemsDetached() {
		return nil, fmt.Errorf("detached %d items, expected %d: %w", detached, plan.ItemsDetached(), ErrConcurrentModification)
	}

	if err := storeStructure(ctx, tx, zone, norm); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing structure: %w", err)
	}

	zone.Structure = norm
	zone.Version++
	return plan.Result(zone), nil
}

// PreviewStructure computes what ApplyStructure would do with the same
// inputs without writing anything and without taking the zone lock. The
// zone and its bins are read in one read-only transaction.
func PreviewStructure(ctx context.Context, db *sql.DB, tenant string, zoneID int64, def model.StructureDefinition, opts reconcile.Options) (*model.StructureResult, error) {
	norm, err := structure.Normalize(def)
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	zone, plan, err := planStructure(ctx, tx, tenant, zoneID, norm, opts)
	if err != nil {
		return nil, err
	}

	zone.Structure = norm
	res := plan.Result(zone)
	res.Preview = true
	return res, nil
}

func planStructure(ctx context.Context, q querier, tenant string, zoneID int64, norm model.StructureDefinition, opts reconcile.Options) (*model.Zone, *reconcile.BinPlan, error) {
	zone, err := getZone(ctx, q, tenant, zoneID)
	if err != nil {
		return nil, nil, err
	}
	if zone == nil {
		return nil, nil, fmt.Errorf("zone %d: %w", zoneID, ErrNotFound)
	}

	bins, err := listBins(ctx, q, tenant, zoneID, "")
	if err != nil {
		return nil, nil, err
	}

	slots := structure.Expand(zone.Code, norm)
	plan := reconcile.Plan(slots, bins, opts)
	plan.Readdress(zone.Code)
	return zone, plan, nil
}

// executePlan applies a plan's bin changes. Items leave a bin before the bin
// row goes, and removals run before inserts so no address is ever taken twice.
// Blocked bins take the address the plan gives them, so they follow a zone
// code change like every preserved bin.
func executePlan(ctx context.Context, tx *sql.Tx, zoneID int64, plan *reconcile.BinPlan, userID *int64) (int, error) {
	detached := 0
	for _, d := range plan.Deletes {
		if d.Detaches() {
			n, err := detachItems(ctx, tx, d.Bin, userID)
			if err != nil {
				return 0, err
			}
			detached += n
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM bins WHERE id = ?`, d.Bin.ID); err != nil {
			return 0, fmt.Errorf("deleting bin %s: %w", d.Bin.Address, err)
		}
	}

	for _, b := range plan.Blocks {
		_, err := tx.ExecContext(ctx,
			`UPDATE bins SET address = ?, status = ?, blocked_reason = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			b.Bin.Address, model.BinStatusBlocked, b.Reason, b.Bin.ID,
		)
		if err != nil {
			return 0, fmt.Errorf("blocking bin %s: %w", b.Bin.Address, err)
		}
	}

	for _, u := range plan.Updates {
		_, err := tx.ExecContext(ctx,
			`UPDATE bins SET address = ?, corridor_label = ?, shelf_label = ?, position_label = ?,
			        capacity = ?, status = ?, blocked_reason = NULL, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`,
			u.Slot.Address, u.Slot.CorridorLabel, u.Slot.ShelfLabel, u.Slot.PositionLabel,
			u.Slot.Capacity, model.BinStatusActive, u.Bin.ID,
		)
		if err != nil {
			return 0, fmt.Errorf("updating bin %s: %w", u.Bin.Address, err)
		}
	}

	for _, s := range plan.Creates {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO bins (zone_id, corridor, shelf, position, address,
			                   corridor_label, shelf_label, position_label, capacity)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			zoneID, s.Coordinate.Corridor, s.Coordinate.Shelf, s.Coordinate.Position, s.Address,
			s.CorridorLabel, s.ShelfLabel, s.PositionLabel, s.Capacity,
		)
		if err != nil {
			return 0, fmt.Errorf("creating bin %s: %w", s.Address, err)
		}
	}

	return detached, nil
}

// storeStructure replaces the zone's definition, guarded by its version.
func storeStructure(ctx context.Context, tx *sql.Tx, zone *model.Zone, norm model.StructureDefinition) error {
	data, err := json.Marshal(norm)
	if err != nil {
		return fmt.Errorf("encoding structure: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE zones SET structure = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND version = ? AND deleted_at IS NULL`,
		string(data), zone.ID, zone.Version,
	)
	if err != nil {
		return fmt.Errorf("storing structure: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("storing structure: %w", err)
	}
	if n == 0 {
		return ErrConcurrentModification
	}
	return nil
}
