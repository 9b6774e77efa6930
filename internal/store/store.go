package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/giddr/aectransparencyreader/internal/dialect"
	"github.com/giddr/aectransparencyreader/internal/schema"
)

// Config selects and configures a storage backend.
//
// When to use:
//   - Use Config when constructing a Repository via Open, or an Executor.
//
// Edge cases:
//   - Kind must be non-empty and must match a registered backend kind.
//   - DSN is passed through to the backend factory; validation is backend-specific.
type Config struct {
	Kind string
	DSN  string
}

// Dialect returns the SQL dialect corresponding to the configured kind.
func (c Config) Dialect() dialect.Dialect {
	if c.Kind == "postgres" {
		return dialect.Postgres
	}
	return dialect.SQLite
}

// Repository is a backend-agnostic interface over one open connection.
//
// IMPORTANT: This interface is intentionally minimal and focused on the
// operations the report executor and the ingester need. Each backend
// implements these semantics in its own idiomatic way (pgx native queries,
// database/sql for SQLite, etc).
type Repository interface {
	// Query runs one read statement and materializes the full result.
	// The SQL is engine-native: placeholders and identifier quoting must
	// already match the backend (see dialect.Adapter).
	Query(ctx context.Context, sql string, args ...any) (columns []string, rows [][]any, err error)

	// Exec runs one statement that returns no rows (DDL, DELETE, index creation).
	Exec(ctx context.Context, sql string, args ...any) error

	// CreateTable creates a table with the given columns, quoting identifiers
	// and mapping column types per the backend.
	CreateTable(ctx context.Context, table string, columns []schema.Column) error

	// DropTable drops a table if it exists.
	DropTable(ctx context.Context, table string) error

	// InsertRows bulk-inserts rows for the given columns. Backends batch as
	// their placeholder limits require; all batches run in one transaction.
	InsertRows(ctx context.Context, table string, columns []schema.Column, rows [][]any) (int64, error)

	// Close releases the connection. Treat as "call once".
	Close() error
}

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend under a kind (e.g. "postgres", "sqlite").
//
// When to use:
//   - Call Register from an init() function in a backend package.
//   - The `kind` string becomes the lookup key used by Open.
//
// Panics:
//   - If kind is empty.
//   - If f is nil.
//   - If kind is already registered. This is intentional to fail fast and
//     avoid ambiguous backend selection.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("store: Register called with empty kind")
	}
	if f == nil {
		panic("store: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("store: factory already registered for kind=%q", kind))
	}

	factories[kind] = f
}

// Open constructs a Repository using the registered backend factory.
//
// Edge cases:
//   - If cfg.Kind is empty, Open returns an error.
//   - If cfg.Kind is not registered, Open returns an error.
//
// Concurrency:
//   - Safe for concurrent use with Register. Open takes a read lock while
//     selecting the factory.
func Open(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("store: missing Kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("unsupported store.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}
