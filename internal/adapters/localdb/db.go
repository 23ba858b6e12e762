// internal/adapters/localdb/db.go
package localdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pklemenc/shelfsync/internal/core/ports"
)

// querier is satisfied by both *sql.DB and *sql.Tx, so every collection store
// works unchanged inside Transact.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the durable local store backed by an embedded SQLite database.
// All collections share one database file; write serialization comes from
// the single-writer connection, not from application-level locks.
type Store struct {
	db     *sql.DB // nil when transaction-bound
	q      querier
	logger *slog.Logger

	items    *itemStore
	txs      *transactionStore
	pending  *pendingQueue
	settings *settingsStore
	orgs     *organizationStore
}

// Statically assert that *Store implements the Store port.
var _ ports.Store = (*Store)(nil)

// Open opens (or creates) the local database at path, configures pragmas and
// applies schema migrations.
func Open(path string, busyTimeout time.Duration, logger *slog.Logger) (*Store, error) {
	db, err := openDB(path, busyTimeout)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return NewStore(db, logger), nil
}

func openDB(path string, busyTimeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One writer connection. Mutating operations against the same entity are
	// serialized here rather than by application locks.
	db.SetMaxOpenConns(1)

	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout.Milliseconds()),
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	return db, nil
}

// NewStore wraps an already opened database handle.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return newStore(db, db, logger.With(slog.String("component", "localdb")))
}

func newStore(db *sql.DB, q querier, logger *slog.Logger) *Store {
	s := &Store{db: db, q: q, logger: logger}
	s.items = &itemStore{q: q, logger: logger}
	s.txs = &transactionStore{q: q, logger: logger}
	s.pending = &pendingQueue{q: q, logger: logger}
	s.settings = &settingsStore{q: q, logger: logger}
	s.orgs = &organizationStore{q: q, logger: logger}
	return s
}

// Items returns the item collection store.
func (s *Store) Items() ports.ItemStore { return s.items }

// Transactions returns the transaction collection store.
func (s *Store) Transactions() ports.TransactionStore { return s.txs }

// Pending returns the pending-operation queue.
func (s *Store) Pending() ports.PendingQueue { return s.pending }

// Settings returns the settings store.
func (s *Store) Settings() ports.SettingsStore { return s.settings }

// Organizations returns the organization store.
func (s *Store) Organizations() ports.OrganizationStore { return s.orgs }

// Transact runs fn against transaction-bound collection stores. Nested calls
// reuse the surrounding transaction.
func (s *Store) Transact(ctx context.Context, fn func(ports.Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	bound := newStore(nil, tx, s.logger)
	if err := fn(bound); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.ErrorContext(ctx, "rollback failed",
				slog.String("error", rbErr.Error()))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Ping verifies the database handle is usable.
func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
