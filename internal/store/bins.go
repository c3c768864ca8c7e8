package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/regali/internal/model"
)

// binSelect reads bins with their occupancy derived from attached items.
const binSelect = `SELECT b.id, b.zone_id, b.corridor, b.shelf, b.position, b.address,
        b.corridor_label, b.shelf_label, b.position_label, b.capacity,
        b.status, b.blocked_reason, b.layout_x, b.layout_y, b.created_at, b.updated_at,
        COALESCE(SUM(i.quantity), 0) AS occupancy, COUNT(i.id) AS item_count
 FROM bins b
 JOIN zones z ON z.id = b.zone_id
 LEFT JOIN items i ON i.bin_id = b.id AND i.deleted_at IS NULL`

const binGroup = ` GROUP BY b.id`

// ListBins returns the bins of a zone ordered by address, optionally
// filtered by status.
func ListBins(ctx context.Context, db *sql.DB, tenant string, zoneID int64, status model.BinStatus) ([]model.Bin, error) {
	return listBins(ctx, db, tenant, zoneID, status)
}

func listBins(ctx context.Context, q querier, tenant string, zoneID int64, status model.BinStatus) ([]model.Bin, error) {
	query := binSelect + ` WHERE b.zone_id = ? AND z.tenant = ? AND z.deleted_at IS NULL`
	args := []any{zoneID, tenant}
	if status != "" {
		query += ` AND b.status = ?`
		args = append(args, status)
	}
	query += binGroup + ` ORDER BY b.address`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing bins: %w", err)
	}
	defer rows.Close()

	var bins []model.Bin
	for rows.Next() {
		b, err := scanBin(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bin: %w", err)
		}
		bins = append(bins, *b)
	}
	return bins, rows.Err()
}

// GetBin returns a bin of the tenant, or nil.
func GetBin(ctx context.Context, db *sql.DB, tenant string, id int64) (*model.Bin, error) {
	return getBin(ctx, db, tenant, `b.id = ?`, id)
}

// GetBinByAddress looks a bin up by its address within a zone.
func GetBinByAddress(ctx context.Context, db *sql.DB, tenant string, zoneID int64, address string) (*model.Bin, error) {
	return getBin(ctx, db, tenant, `b.zone_id = ? AND b.address = ?`, zoneID, address)
}

// FindBinsByAddress returns the tenant's bins with the given address. Zone
// codes are unique per warehouse only, so more than one bin may match.
func FindBinsByAddress(ctx context.Context, db *sql.DB, tenant, address string) ([]model.Bin, error) {
	rows, err := db.QueryContext(ctx,
		binSelect+` WHERE b.address = ? AND z.tenant = ? AND z.deleted_at IS NULL`+binGroup+` ORDER BY b.id`,
		address, tenant,
	)
	if err != nil {
		return nil, fmt.Errorf("finding bins: %w", err)
	}
	defer rows.Close()

	var bins []model.Bin
	for rows.Next() {
		b, err := scanBin(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bin: %w", err)
		}
		bins = append(bins, *b)
	}
	return bins, rows.Err()
}

func getBin(ctx context.Context, q querier, tenant, where string, args ...any) (*model.Bin, error) {
	row := q.QueryRowContext(ctx,
		binSelect+` WHERE `+where+` AND z.tenant = ? AND z.deleted_at IS NULL`+binGroup,
		append(args, tenant)...,
	)
	b, err := scanBin(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting bin: %w", err)
	}
	return b, nil
}

// SetBinLayout overrides the grid placement of one bin.
func SetBinLayout(ctx context.Context, db *sql.DB, tenant string, id int64, layout *model.BinLayout) (*model.Bin, error) {
	var x, y any
	if layout != nil {
		x, y = layout.X, layout.Y
	}

	result, err := db.ExecContext(ctx,
		`UPDATE bins SET layout_x = ?, layout_y = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND zone_id IN (SELECT id FROM zones WHERE tenant = ? AND deleted_at IS NULL)`,
		x, y, id, tenant,
	)
	if err != nil {
		return nil, fmt.Errorf("setting bin layout: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return GetBin(ctx, db, tenant, id)
}

// ClearBinLayout removes a bin's placement override.
func ClearBinLayout(ctx context.Context, db *sql.DB, tenant string, id int64) (*model.Bin, error) {
	return SetBinLayout(ctx, db, tenant, id, nil)
}

func scanBin(row rowScanner) (*model.Bin, error) {
	b := &model.Bin{}
	var reason sql.NullString
	var x, y sql.NullInt64
	if err := row.Scan(&b.ID, &b.ZoneID, &b.Coordinate.Corridor, &b.Coordinate.Shelf, &b.Coordinate.Position,
		&b.Address, &b.CorridorLabel, &b.ShelfLabel, &b.PositionLabel, &b.Capacity,
		&b.Status, &reason, &x, &y, &b.CreatedAt, &b.UpdatedAt,
		&b.Occupancy, &b.ItemCount); err != nil {
		return nil, err
	}
	b.BlockedReason = reason.String
	if x.Valid && y.Valid {
		b.Layout = &model.BinLayout{X: int(x.Int64), Y: int(y.Int64)}
	}
	return b, nil
}
