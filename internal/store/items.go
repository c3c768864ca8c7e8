package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/regali/internal/model"
)

const itemSelect = `SELECT i.id, i.tenant, i.sku, i.name, i.quantity, i.bin_id, i.last_known_address,
        i.created_at, i.updated_at, i.deleted_at, COALESCE(b.address, '')
 FROM items i
 LEFT JOIN bins b ON b.id = i.bin_id`

// CreateItem creates a new item, optionally stored straight into a bin.
func CreateItem(ctx context.Context, db *sql.DB, tenant, sku, name string, quantity int, binID *int64, userID *int64) (*model.Item, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO items (tenant, sku, name, quantity) VALUES (?, ?, ?, ?)`,
		tenant, sku, name, quantity,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	if binID != nil {
		if err := moveItem(ctx, tx, tenant, id, binID, userID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item: %w", err)
	}
	return GetItem(ctx, db, tenant, id)
}

// GetItem returns an item of the tenant by ID, including soft-deleted ones.
func GetItem(ctx context.Context, db *sql.DB, tenant string, id int64) (*model.Item, error) {
	return getItem(ctx, db, tenant, id)
}

func getItem(ctx context.Context, q querier, tenant string, id int64) (*model.Item, error) {
	row := q.QueryRowContext(ctx, itemSelect+` WHERE i.id = ? AND i.tenant = ?`, id, tenant)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ItemFilter narrows ListItems. Zero values do not filter.
type ItemFilter struct {
	BinID  int64
	ZoneID int64
	SKU    string
}

// ListItems returns the tenant's non-deleted items.
func ListItems(ctx context.Context, db *sql.DB, tenant string, f ItemFilter) ([]model.Item, error) {
	query := itemSelect + ` WHERE i.tenant = ? AND i.deleted_at IS NULL`
	args := []any{tenant}
	if f.BinID > 0 {
		query += ` AND i.bin_id = ?`
		args = append(args, f.BinID)
	}
	if f.ZoneID > 0 {
		query += ` AND b.zone_id = ?`
		args = append(args, f.ZoneID)
	}
	if f.SKU != "" {
		query += ` AND i.sku = ?`
		args = append(args, f.SKU)
	}
	query += ` ORDER BY i.sku, i.id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// MoveItem stores an item in a bin, moves it to another bin, or takes it
// out of storage when binID is nil. Blocked bins refuse new stock; capacity
// is informational and never enforced.
func MoveItem(ctx context.Context, db *sql.DB, tenant string, itemID int64, binID *int64, userID *int64) (*model.Item, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := moveItem(ctx, tx, tenant, itemID, binID, userID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item move: %w", err)
	}
	return GetItem(ctx, db, tenant, itemID)
}

func moveItem(ctx context.Context, tx *sql.Tx, tenant string, itemID int64, binID *int64, userID *int64) error {
	item, err := getItem(ctx, tx, tenant, itemID)
	if err != nil {
		return err
	}
	if item == nil || item.DeletedAt != nil {
		return fmt.Errorf("item %d: %w", itemID, ErrNotFound)
	}

	var to *model.Bin
	if binID != nil {
		to, err = getBin(ctx, tx, tenant, `b.id = ?`, *binID)
		if err != nil {
			return err
		}
		if to == nil {
			return fmt.Errorf("bin %d: %w", *binID, ErrNotFound)
		}
		if to.Blocked() {
			return fmt.Errorf("bin %s: %w", to.Address, ErrBinBlocked)
		}
	}

	switch {
	case item.BinID == nil && to == nil:
		return nil
	case item.BinID != nil && to != nil && *item.BinID == to.ID:
		return nil
	}

	m := model.Movement{ItemID: itemID, FromBinID: item.BinID, FromAddress: item.BinAddress, MovedBy: userID}
	lastKnown := item.LastKnownAddress
	switch {
	case to == nil:
		m.Reason = model.MovementRemoved
		lastKnown = item.BinAddress
	case item.BinID == nil:
		m.Reason = model.MovementStored
	default:
		m.Reason = model.MovementMoved
	}

	var newBin any
	if to != nil {
		newBin = to.ID
		m.ToBinID = &to.ID
		m.ToAddress = to.Address
		lastKnown = to.Address
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET bin_id = ?, last_known_address = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		newBin, nullString(lastKnown), itemID,
	)
	if err != nil {
		return fmt.Errorf("moving item: %w", err)
	}

	return recordMovement(ctx, tx, m)
}

// DeleteItem soft-deletes an item and releases its bin.
func DeleteItem(ctx context.Context, db *sql.DB, tenant string, id int64, userID *int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := getItem(ctx, tx, tenant, id)
	if err != nil {
		return err
	}
	if item == nil || item.DeletedAt != nil {
		return fmt.Errorf("item %d: %w", id, ErrNotFound)
	}

	if item.BinID != nil {
		if err := moveItem(ctx, tx, tenant, id, nil, userID); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing item deletion: %w", err)
	}
	return nil
}

// detachItems clears the bin reference of every item stored in the given
// bin and records the bin's address as their last known address. It runs
// inside the transaction that deletes the bin.
func detachItems(ctx context.Context, tx *sql.Tx, bin model.Bin, userID *int64) (int, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM items WHERE bin_id = ? ORDER BY id`, bin.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("listing items of bin %s: %w", bin.Address, err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning item id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("listing items of bin %s: %w", bin.Address, err)
	}

	for _, id := range ids {
		_, err := tx.ExecContext(ctx,
			`UPDATE items SET bin_id = NULL, last_known_address = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			bin.Address, id,
		)
		if err != nil {
			return 0, fmt.Errorf("detaching item %d: %w", id, err)
		}

		binID := bin.ID
		if err := recordMovement(ctx, tx, model.Movement{
			ItemID:      id,
			FromBinID:   &binID,
			FromAddress: bin.Address,
			Reason:      model.MovementDetached,
			MovedBy:     userID,
		}); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var lastKnown sql.NullString
	if err := row.Scan(&item.ID, &item.Tenant, &item.SKU, &item.Name, &item.Quantity, &item.BinID,
		&lastKnown, &item.CreatedAt, &item.UpdatedAt, &item.DeletedAt, &item.BinAddress); err != nil {
		return nil, err
	}
	item.LastKnownAddress = lastKnown.String
	return item, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
