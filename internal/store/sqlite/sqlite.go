// Package sqlite implements store.Repository on a SQLite database file via
// modernc.org/sqlite (no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/giddr/aectransparencyreader/internal/schema"
	"github.com/giddr/aectransparencyreader/internal/store"
)

// maxInsertArgs caps placeholders per INSERT statement. SQLite's historical
// bound variable limit is 999; staying under it keeps old builds working.
const maxInsertArgs = 900

type Repo struct {
	db *sql.DB
}

func init() {
	store.Register("sqlite", New)
}

func New(ctx context.Context, cfg store.Config) (store.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) Query(ctx context.Context, query string, args ...any) ([]string, [][]any, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]any
	for rows.Next() {
		vals := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		for i, v := range vals {
			// database/sql hands TEXT back as []byte for untyped scans.
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		out = append(out, vals)
	}
	return columns, out, rows.Err()
}

func (r *Repo) Exec(ctx context.Context, query string, args ...any) error {
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *Repo) CreateTable(ctx context.Context, table string, columns []schema.Column) error {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(sqlIdent(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqlIdent(c.Name))
		b.WriteByte(' ')
		b.WriteString(string(c.Type))
	}
	b.WriteString(")")

	_, err := r.db.ExecContext(ctx, b.String())
	return err
}

func (r *Repo) DropTable(ctx context.Context, table string) error {
	_, err := r.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+sqlIdent(table))
	return err
}

// InsertRows bulk-inserts rows in one transaction, batching statements to
// stay under the SQLite bound variable limit.
func (r *Repo) InsertRows(ctx context.Context, table string, columns []schema.Column, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	colList := make([]string, 0, len(columns))
	for _, c := range columns {
		colList = append(colList, sqlIdent(c.Name))
	}
	placeholders := "(" + strings.TrimRight(strings.Repeat("?,", len(columns)), ",") + ")"
	prefix := "INSERT INTO " + sqlIdent(table) + " (" + strings.Join(colList, ", ") + ") VALUES "

	rowsPerBatch := maxInsertArgs / len(columns)
	if rowsPerBatch < 1 {
		rowsPerBatch = 1
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var total int64
	for start := 0; start < len(rows); start += rowsPerBatch {
		end := start + rowsPerBatch
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		var b strings.Builder
		b.WriteString(prefix)
		args := make([]any, 0, len(batch)*len(columns))
		for i, row := range batch {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(placeholders)
			args = append(args, row...)
		}

		res, err := tx.ExecContext(ctx, b.String(), args...)
		if err != nil {
			return 0, err
		}
		n, _ := res.RowsAffected()
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return total, nil
}

func sqlIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
