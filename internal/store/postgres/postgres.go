// Package postgres implements store.Repository on PostgreSQL via pgx.
//
// One Open is one pgx connection: the executor opens and closes a repository
// per statement, so there is no pool here.
package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/giddr/aectransparencyreader/internal/schema"
	"github.com/giddr/aectransparencyreader/internal/store"
)

type Repo struct {
	conn *pgx.Conn
}

func init() {
	store.Register("postgres", New)
}

func New(ctx context.Context, cfg store.Config) (store.Repository, error) {
	conn, err := pgx.Connect(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	return &Repo{conn: conn}, nil
}

func (r *Repo) Close() error { return r.conn.Close(context.Background()) }

func (r *Repo) Query(ctx context.Context, query string, args ...any) ([]string, [][]any, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	var out [][]any
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, nil, err
		}
		out = append(out, vals)
	}
	return columns, out, rows.Err()
}

func (r *Repo) Exec(ctx context.Context, query string, args ...any) error {
	_, err := r.conn.Exec(ctx, query, args...)
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
		b.WriteString(typeFor(c.Type))
	}
	b.WriteString(")")

	_, err := r.conn.Exec(ctx, b.String())
	return err
}

func (r *Repo) DropTable(ctx context.Context, table string) error {
	_, err := r.conn.Exec(ctx, "DROP TABLE IF EXISTS "+sqlIdent(table))
	return err
}

// InsertRows bulk-loads rows with COPY, which is the fast path in Postgres
// and sidesteps multi-VALUES placeholder limits entirely.
func (r *Repo) InsertRows(ctx context.Context, table string, columns []schema.Column, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	names := make([]string, 0, len(columns))
	for _, c := range columns {
		names = append(names, c.Name)
	}

	return r.conn.CopyFrom(ctx, pgx.Identifier{table}, names, pgx.CopyFromRows(rows))
}

// typeFor maps inferred column types onto Postgres types. BIGINT and DOUBLE
// PRECISION match what inference guarantees about the column's values.
func typeFor(t schema.ColumnType) string {
	switch t {
	case schema.TypeInteger:
		return "BIGINT"
	case schema.TypeReal:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

func sqlIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
