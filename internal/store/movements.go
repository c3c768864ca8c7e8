package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/regali/internal/model"
)

func recordMovement(ctx context.Context, tx *sql.Tx, m model.Movement) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO movements (item_id, from_bin_id, to_bin_id, from_address, to_address, reason, moved_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ItemID, m.FromBinID, m.ToBinID, nullString(m.FromAddress), nullString(m.ToAddress), m.Reason, m.MovedBy,
	)
	if err != nil {
		return fmt.Errorf("recording movement: %w", err)
	}
	return nil
}

// GetItemHistory returns the movements of an item, newest first.
func GetItemHistory(ctx context.Context, db *sql.DB, tenant string, itemID int64) ([]model.Movement, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT m.id, m.item_id, m.from_bin_id, m.to_bin_id, m.from_address, m.to_address,
		        m.reason, m.moved_at, m.moved_by
		 FROM movements m
		 JOIN items i ON i.id = m.item_id
		 WHERE m.item_id = ? AND i.tenant = ?
		 ORDER BY m.id DESC`, itemID, tenant,
	)
	if err != nil {
		return nil, fmt.Errorf("getting item history: %w", err)
	}
	defer rows.Close()

	var movements []model.Movement
	for rows.Next() {
		var m model.Movement
		var from, to sql.NullString
		if err := rows.Scan(&m.ID, &m.ItemID, &m.FromBinID, &m.ToBinID, &from, &to,
			&m.Reason, &m.MovedAt, &m.MovedBy); err != nil {
			return nil, fmt.Errorf("scanning movement: %w", err)
		}
		m.FromAddress = from.String
		m.ToAddress = to.String
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
