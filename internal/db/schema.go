package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'manager', 'user')),
    tenant        TEXT NOT NULL DEFAULT 'default',
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS warehouses (
    id         INTEGER PRIMARY KEY,
    tenant     TEXT NOT NULL,
    code       TEXT NOT NULL,
    name       TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_warehouses_code_active
    ON warehouses(tenant, code) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS zones (
    id           INTEGER PRIMARY KEY,
    tenant       TEXT NOT NULL,
    warehouse_id INTEGER NOT NULL REFERENCES warehouses(id),
    code         TEXT NOT NULL,
    name         TEXT NOT NULL,
    active       INTEGER NOT NULL DEFAULT 1,
    structure    TEXT NOT NULL DEFAULT '{"corridors":[]}',
    layout       TEXT,
    version      INTEGER NOT NULL DEFAULT 0,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at   DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_zones_code_active
    ON zones(warehouse_id, code) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS bins (
    id             INTEGER PRIMARY KEY,
    zone_id        INTEGER NOT NULL REFERENCES zones(id),
    corridor       TEXT NOT NULL,
    shelf          TEXT NOT NULL,
    position       TEXT NOT NULL,
    address        TEXT NOT NULL,
    corridor_label TEXT NOT NULL,
    shelf_label    TEXT NOT NULL,
    position_label TEXT NOT NULL,
    capacity       INTEGER NOT NULL DEFAULT 0 CHECK (capacity >= 0),
    status         TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'blocked')),
    blocked_reason TEXT,
    layout_x       INTEGER,
    layout_y       INTEGER,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (zone_id, corridor, shelf, position),
    UNIQUE (zone_id, address)
);

CREATE TABLE IF NOT EXISTS items (
    id                 INTEGER PRIMARY KEY,
    tenant             TEXT NOT NULL,
    sku                TEXT NOT NULL,
    name               TEXT NOT NULL,
    quantity           INTEGER NOT NULL CHECK (quantity > 0),
    bin_id             INTEGER REFERENCES bins(id),
    last_known_address TEXT,
    created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at         DATETIME
);

CREATE INDEX IF NOT EXISTS idx_items_bin ON items(bin_id);

CREATE TABLE IF NOT EXISTS movements (
    id           INTEGER PRIMARY KEY,
    item_id      INTEGER NOT NULL REFERENCES items(id),
    from_bin_id  INTEGER,
    to_bin_id    INTEGER,
    from_address TEXT,
    to_address   TEXT,
    reason       TEXT NOT NULL CHECK (reason IN ('stored', 'moved', 'removed', 'detached')),
    moved_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    moved_by     INTEGER REFERENCES users(id)
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
