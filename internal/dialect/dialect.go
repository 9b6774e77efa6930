// Package dialect translates canonical SQL, meaning query text written
// against the mixed-case logical schema, into the literal text each supported
// engine requires.
//
// SQLite folds nothing: unquoted identifiers match the declared mixed-case
// names, so canonical text runs as-is. PostgreSQL folds unquoted identifiers
// to lower case, so every known mixed-case identifier must be double-quoted to
// resolve against the migrated schema. The two engines also disagree on
// parameter placeholders (? vs $n); the adapter rewrites those too.
package dialect

import "fmt"

// Dialect identifies a supported SQL engine's identifier-folding and
// placeholder behavior.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// TablesSQL returns the canonical query listing all user tables, written
// against the engine's own metadata catalog.
func (d Dialect) TablesSQL() string {
	if d == Postgres {
		return "SELECT tablename as name FROM pg_tables WHERE schemaname='public' ORDER BY tablename"
	}
	return "SELECT name FROM sqlite_master WHERE type='table' ORDER BY name"
}

// TableSchemaSQL returns the query describing a single table's columns, plus
// its bind arguments. The table name must already be validated by the caller:
// SQLite's PRAGMA cannot take a placeholder, so the name is interpolated
// there.
func (d Dialect) TableSchemaSQL(table string) (string, []any) {
	if d == Postgres {
		return "SELECT column_name, data_type, is_nullable FROM information_schema.columns WHERE table_name = ? ORDER BY ordinal_position",
			[]any{table}
	}
	return fmt.Sprintf("PRAGMA table_info(%s)", table), nil
}
