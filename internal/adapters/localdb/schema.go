// internal/adapters/localdb/schema.go
package localdb

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema for a fresh replica. Items carry no
// stored quantity constraint; the non-negative invariant is enforced at the
// point of applying a transaction.
const schema = `
CREATE TABLE IF NOT EXISTS items (
    id          TEXT PRIMARY KEY,
    barcode     TEXT NOT NULL DEFAULT '',
    name        TEXT NOT NULL,
    category    TEXT NOT NULL DEFAULT 'other',
    quantity    INTEGER NOT NULL DEFAULT 0,
    unit        TEXT NOT NULL DEFAULT 'pcs',
    condition   TEXT NOT NULL DEFAULT 'unknown',
    min_stock   INTEGER NOT NULL DEFAULT 0,
    location    TEXT NOT NULL DEFAULT '',
    notes       TEXT NOT NULL DEFAULT '',
    image_ref   TEXT,
    org_id      TEXT NOT NULL DEFAULT '',
    created_at  DATETIME NOT NULL,
    updated_at  DATETIME NOT NULL,
    sync_status TEXT NOT NULL DEFAULT 'pending'
        CHECK (sync_status IN ('synced', 'pending', 'failed'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_items_barcode_org
    ON items(barcode, org_id) WHERE barcode <> '';
CREATE INDEX IF NOT EXISTS idx_items_category ON items(category);
CREATE INDEX IF NOT EXISTS idx_items_sync_status ON items(sync_status);
CREATE INDEX IF NOT EXISTS idx_items_org ON items(org_id);

CREATE TABLE IF NOT EXISTS transactions (
    id           TEXT PRIMARY KEY,
    item_id      TEXT NOT NULL,
    direction    TEXT NOT NULL CHECK (direction IN ('in', 'out')),
    quantity     INTEGER NOT NULL CHECK (quantity > 0),
    reason       TEXT NOT NULL DEFAULT 'other',
    recipient    TEXT NOT NULL DEFAULT '',
    performed_by TEXT NOT NULL DEFAULT '',
    occurred_at  DATETIME NOT NULL,
    notes        TEXT NOT NULL DEFAULT '',
    org_id       TEXT NOT NULL DEFAULT '',
    sync_status  TEXT NOT NULL DEFAULT 'pending'
        CHECK (sync_status IN ('synced', 'pending', 'failed'))
);

CREATE INDEX IF NOT EXISTS idx_transactions_item ON transactions(item_id);
CREATE INDEX IF NOT EXISTS idx_transactions_occurred ON transactions(occurred_at);
CREATE INDEX IF NOT EXISTS idx_transactions_sync_status ON transactions(sync_status);
CREATE INDEX IF NOT EXISTS idx_transactions_org ON transactions(org_id);

CREATE TABLE IF NOT EXISTS pending_operations (
    id         TEXT PRIMARY KEY,
    op         TEXT NOT NULL CHECK (op IN ('create', 'update', 'delete')),
    entity     TEXT NOT NULL CHECK (entity IN ('item', 'transaction')),
    payload    TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    retries    INTEGER NOT NULL DEFAULT 0,
    last_error TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_pending_created ON pending_operations(created_at);

CREATE TABLE IF NOT EXISTS settings (
    id               INTEGER PRIMARY KEY CHECK (id = 1),
    language         TEXT NOT NULL DEFAULT 'en',
    theme            TEXT NOT NULL DEFAULT 'system',
    low_stock_alerts INTEGER NOT NULL DEFAULT 1,
    autosync         INTEGER NOT NULL DEFAULT 1,
    last_sync_at     DATETIME,
    org_id           TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS organizations (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    description   TEXT NOT NULL DEFAULT '',
    type          TEXT NOT NULL DEFAULT 'other',
    icon          TEXT NOT NULL DEFAULT '',
    color         TEXT NOT NULL DEFAULT '',
    contact_email TEXT NOT NULL DEFAULT '',
    contact_phone TEXT NOT NULL DEFAULT '',
    address       TEXT NOT NULL DEFAULT '',
    is_default    INTEGER NOT NULL DEFAULT 0,
    created_at    DATETIME NOT NULL,
    updated_at    DATETIME NOT NULL
);
`

// migrations is a list of idempotent SQL statements applied in order after
// schema creation. Append new migrations at the end.
var migrations = []string{
	`CREATE INDEX IF NOT EXISTS idx_transactions_performed_by
	     ON transactions(performed_by)`,
}

// Migrate creates the schema and applies migrations. Upgrades are additive:
// databases created before a column existed are altered in place, and rows
// persisted before an indexed field existed simply stay absent from the
// index.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	// Columns added after the initial release.
	if err := addColumnIfMissing(db, "items", "image_ref", "TEXT"); err != nil {
		return err
	}
	if err := addColumnIfMissing(db, "pending_operations", "last_error", "TEXT NOT NULL DEFAULT ''"); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}

func addColumnIfMissing(db *sql.DB, table, column, ddl string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("inspecting table %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid, notNull, pk int
			name, colType    string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("scanning table info for %s: %w", table, err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if _, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, ddl)); err != nil {
		return fmt.Errorf("adding column %s.%s: %w", table, column, err)
	}
	return nil
}
