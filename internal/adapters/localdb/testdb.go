// internal/adapters/localdb/testdb.go
package localdb

import (
	"io"
	"log/slog"
	"testing"
)

// NewTestStore creates a fresh in-memory SQLite store with the schema
// applied.
func NewTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := openDB(":memory:", 0)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrating test database: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return NewStore(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}
