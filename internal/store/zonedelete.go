package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/regali/internal/model"
	"github.com/erazemk/regali/internal/reconcile"
)

// DeleteZone removes a zone and all of its bins. Occupied bins refuse the
// deletion with a *ZoneOccupiedError unless force is set, in which case
// their items are detached first. The zone itself is soft-deleted.
func DeleteZone(ctx context.Context, db *sql.DB, tenant string, zoneID int64, force bool, userID *int64) (*model.ZoneDeletion, error) {
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

	zone, err := getZone(ctx, tx, tenant, zoneID)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, fmt.Errorf("zone %d: %w", zoneID, ErrNotFound)
	}

	bins, err := listBins(ctx, tx, tenant, zoneID, "")
	if err != nil {
		return nil, err
	}

	deletes, blocks := reconcile.PlanRemoval(bins, force, "forceDeleteBins")
	if len(blocks) > 0 {
		return nil, &ZoneOccupiedError{ZoneID: zoneID, Blocking: reconcile.BlockedList(blocks)}
	}

	plan := &reconcile.BinPlan{Deletes: deletes}
	detached, err := executePlan(ctx, tx, zoneID, plan, userID)
	if err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE zones SET deleted_at = CURRENT_TIMESTAMP, version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND version = ? AND deleted_at IS NULL`,
		zoneID, zone.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("deleting zone: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("deleting zone: %w", err)
	}
	if n == 0 {
		return nil, ErrConcurrentModification
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing zone deletion: %w", err)
	}

	return &model.ZoneDeletion{
		Success:          true,
		DeletedBinsCount: len(deletes),
		ItemsDetached:    detached,
	}, nil
}
