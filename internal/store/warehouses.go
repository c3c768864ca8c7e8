package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/regali/internal/model"
)

// CreateWarehouse creates a new warehouse for a tenant.
func CreateWarehouse(ctx context.Context, db *sql.DB, tenant, code, name string) (*model.Warehouse, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO warehouses (tenant, code, name) VALUES (?, ?, ?)`,
		tenant, code, name,
	)
	if err != nil {
		return nil, fmt.Errorf("creating warehouse: %w", uniqueViolation(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting warehouse id: %w", err)
	}

	return GetWarehouse(ctx, db, tenant, id)
}

// GetWarehouse returns a non-deleted warehouse of the tenant, or nil.
func GetWarehouse(ctx context.Context, db *sql.DB, tenant string, id int64) (*model.Warehouse, error) {
	w := &model.Warehouse{}
	err := db.QueryRowContext(ctx,
		`SELECT id, tenant, code, name, created_at, deleted_at
		 FROM warehouses WHERE id = ? AND tenant = ? AND deleted_at IS NULL`, id, tenant,
	).Scan(&w.ID, &w.Tenant, &w.Code, &w.Name, &w.CreatedAt, &w.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting warehouse: %w", err)
	}
	return w, nil
}

// ListWarehouses returns the tenant's non-deleted warehouses.
func ListWarehouses(ctx context.Context, db *sql.DB, tenant string) ([]model.Warehouse, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, tenant, code, name, created_at, deleted_at
		 FROM warehouses WHERE tenant = ? AND deleted_at IS NULL ORDER BY code`, tenant,
	)
	if err != nil {
		return nil, fmt.Errorf("listing warehouses: %w", err)
	}
	defer rows.Close()

	var warehouses []model.Warehouse
	for rows.Next() {
		var w model.Warehouse
		if err := rows.Scan(&w.ID, &w.Tenant, &w.Code, &w.Name, &w.CreatedAt, &w.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning warehouse: %w", err)
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, rows.Err()
}
