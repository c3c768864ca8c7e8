package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/erazemk/regali/internal/model"
)

const zoneColumns = `id, tenant, warehouse_id, code, name, active, structure, layout, version, created_at, updated_at, deleted_at`

// CreateZone creates an empty zone in a warehouse of the tenant.
func CreateZone(ctx context.Context, db *sql.DB, tenant string, warehouseID int64, code, name string) (*model.Zone, error) {
	w, err := GetWarehouse(ctx, db, tenant, warehouseID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("warehouse %d: %w", warehouseID, ErrNotFound)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO zones (tenant, warehouse_id, code, name) VALUES (?, ?, ?, ?)`,
		tenant, warehouseID, code, name,
	)
	if err != nil {
		return nil, fmt.Errorf("creating zone: %w", uniqueViolation(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting zone id: %w", err)
	}

	return GetZone(ctx, db, tenant, id)
}

// GetZone returns a non-deleted zone of the tenant, or nil.
func GetZone(ctx context.Context, db *sql.DB, tenant string, id int64) (*model.Zone, error) {
	return getZone(ctx, db, tenant, id)
}

func getZone(ctx context.Context, q querier, tenant string, id int64) (*model.Zone, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+zoneColumns+`
		 FROM zones WHERE id = ? AND tenant = ? AND deleted_at IS NULL`, id, tenant,
	)
	z, err := scanZone(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting zone: %w", err)
	}
	return z, nil
}

// ListZones returns the tenant's zones, optionally limited to one warehouse.
func ListZones(ctx context.Context, db *sql.DB, tenant string, warehouseID int64) ([]model.Zone, error) {
	query := `SELECT ` + zoneColumns + ` FROM zones WHERE tenant = ? AND deleted_at IS NULL`
	args := []any{tenant}
	if warehouseID > 0 {
		query += ` AND warehouse_id = ?`
		args = append(args, warehouseID)
	}
	query += ` ORDER BY code`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing zones: %w", err)
	}
	defer rows.Close()

	var zones []model.Zone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning zone: %w", err)
		}
		zones = append(zones, *z)
	}
	return zones, rows.Err()
}

// UpdateZone changes a zone's code, name and active flag. Bin addresses
// follow a code change on the next structure apply.
func UpdateZone(ctx context.Context, db *sql.DB, tenant string, id int64, code, name string, active bool) (*model.Zone, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE zones SET code = ?, name = ?, active = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND tenant = ? AND deleted_at IS NULL`,
		code, name, active, id, tenant,
	)
	if err != nil {
		return nil, fmt.Errorf("updating zone: %w", uniqueViolation(err))
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return GetZone(ctx, db, tenant, id)
}

// SetZoneLayout stores a custom visualization layout for the zone.
func SetZoneLayout(ctx context.Context, db *sql.DB, tenant string, id int64, layout *model.ZoneLayout) (*model.Zone, error) {
	var encoded any
	if layout != nil {
		data, err := json.Marshal(layout)
		if err != nil {
			return nil, fmt.Errorf("encoding zone layout: %w", err)
		}
		encoded = string(data)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE zones SET layout = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND tenant = ? AND deleted_at IS NULL`,
		encoded, id, tenant,
	)
	if err != nil {
		return nil, fmt.Errorf("setting zone layout: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return GetZone(ctx, db, tenant, id)
}

// ResetZoneLayout reverts the zone to the automatic layout.
func ResetZoneLayout(ctx context.Context, db *sql.DB, tenant string, id int64) (*model.Zone, error) {
	return SetZoneLayout(ctx, db, tenant, id, nil)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanZone(row rowScanner) (*model.Zone, error) {
	z := &model.Zone{}
	var structure string
	var layout sql.NullString
	if err := row.Scan(&z.ID, &z.Tenant, &z.WarehouseID, &z.Code, &z.Name, &z.Active,
		&structure, &layout, &z.Version, &z.CreatedAt, &z.UpdatedAt, &z.DeletedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(structure), &z.Structure); err != nil {
		return nil, fmt.Errorf("decoding zone %d structure: %w", z.ID, err)
	}
	if layout.Valid && layout.String != "" {
		z.Layout = &model.ZoneLayout{}
		if err := json.Unmarshal([]byte(layout.String), z.Layout); err != nil {
			return nil, fmt.Errorf("decoding zone %d layout: %w", z.ID, err)
		}
	}
	return z, nil
}
