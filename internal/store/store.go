// Package store persists warehouses, zones, bins and items in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/erazemk/regali/internal/model"
)

// ErrNotFound is returned when a referenced record does not exist, is
// deleted, or belongs to another tenant.
var ErrNotFound = errors.New("not found")

// ErrConcurrentModification is returned when a zone changed between reading
// and writing it inside one operation.
var ErrConcurrentModification = errors.New("zone was modified concurrently")

// ErrBinBlocked is returned when stock is moved into a blocked bin.
var ErrBinBlocked = errors.New("bin is blocked")

// ErrDuplicate is returned when a code or username is already taken.
var ErrDuplicate = errors.New("already exists")

// uniqueViolation maps SQLite unique constraint failures to ErrDuplicate.
func uniqueViolation(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicate
	}
	return err
}

// ZoneOccupiedError is returned when a zone cannot be deleted because some of
// its bins still hold items.
type ZoneOccupiedError struct {
	ZoneID   int64
	Blocking []model.BlockedBin
}

func (e *ZoneOccupiedError) Error() string {
	addrs := make([]string, 0, len(e.Blocking))
	for _, b := range e.Blocking {
		addrs = append(addrs, b.Address)
	}
	return fmt.Sprintf("zone %d has %d occupied bin(s): %s", e.ZoneID, len(e.Blocking), strings.Join(addrs, ", "))
}

// querier is implemented by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
