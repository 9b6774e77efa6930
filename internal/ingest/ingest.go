// Package ingest loads one CSV stream into one database table.
//
// The pipeline is: decode (BOM, Windows-1252 fallback) -> header cleaning ->
// type inference over a bounded sample -> cell coercion -> create table ->
// bulk insert. Coercion never aborts an import: a cell that does not fit its
// column's inferred type becomes NULL and is counted in Summary.CellsNulled.
package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/giddr/aectransparencyreader/internal/metrics"
	"github.com/giddr/aectransparencyreader/internal/schema"
	"github.com/giddr/aectransparencyreader/internal/store"
)

// now is a test seam. Production uses time.Now.
var now = time.Now

var (
	// ErrEmptyDataset means the CSV had no data rows.
	ErrEmptyDataset = errors.New("ingest: csv has no data rows")

	// ErrEmptyHeader means the CSV had no header row at all.
	ErrEmptyHeader = errors.New("ingest: csv has no header row")
)

// DuplicateColumnError means two raw headers cleaned to the same identifier.
// Proceeding would silently merge columns, so the import is rejected.
type DuplicateColumnError struct {
	Name string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("ingest: duplicate column %q after cleaning", e.Name)
}

// EmptyColumnError means a raw header cleaned to the empty string.
type EmptyColumnError struct {
	Index int
	Raw   string
}

func (e *EmptyColumnError) Error() string {
	return fmt.Sprintf("ingest: column %d (%q) cleaned to an empty identifier", e.Index, e.Raw)
}

// Options configures one import.
type Options struct {
	// TableName is the destination table. When empty, the name is derived
	// from SourceName (see Prefix and Timestamped).
	TableName string

	// SourceName is the original file name, e.g. "Donations Made.csv".
	// Used only when TableName is empty.
	SourceName string

	// Prefix is prepended to derived names: <prefix>_<cleaned base>.
	Prefix string

	// Timestamped derives upload-style names:
	// uploaded_<cleaned base>_<YYYYMMDD_HHMMSS>.
	Timestamped bool

	// Replace drops an existing table of the same name before creating.
	Replace bool
}

// Summary reports what one import did.
type Summary struct {
	TableName    string
	Columns      []schema.Column
	RowsImported int64

	// CellsNulled counts cells that failed coercion to their column's
	// inferred type and were stored as NULL.
	CellsNulled int64
}

// TableNameFor derives the destination table name for the options. Exposed
// so callers can report the name before running an import.
func TableNameFor(opts Options) string {
	if opts.TableName != "" {
		return opts.TableName
	}
	base := filepath.Base(opts.SourceName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	cleaned := schema.Clean(base)

	if opts.Timestamped {
		return "uploaded_" + cleaned + "_" + now().Format("20060102_150405")
	}
	if opts.Prefix != "" {
		return opts.Prefix + "_" + cleaned
	}
	return cleaned
}

// Ingest imports one CSV stream into repo.
//
// Edge cases:
//   - Ragged rows are tolerated: short rows are padded with NULL, long rows
//     are truncated to the header width.
//   - A CSV with headers but zero data rows fails with ErrEmptyDataset.
//   - Header cleaning failures (empty or duplicate identifiers) fail the
//     import before any table is touched.
func Ingest(ctx context.Context, repo store.Repository, r io.Reader, opts Options) (*Summary, error) {
	data, err := decode(r)
	if err != nil {
		return nil, fmt.Errorf("ingest: decode: %w", err)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1

	rawHeader, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyHeader
	}
	if err != nil {
		return nil, fmt.Errorf("ingest: read header: %w", err)
	}

	names, err := cleanHeader(rawHeader)
	if err != nil {
		return nil, err
	}

	records, err := readRecords(cr, len(names))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	columns := inferColumns(names, records)

	rows := make([][]any, len(records))
	var nulled int64
	for i, rec := range records {
		row := make([]any, len(columns))
		for j, col := range columns {
			v, ok := coerce(rec[j], col.Type)
			if !ok {
				nulled++
			}
			row[j] = v
		}
		rows[i] = row
	}

	table := TableNameFor(opts)
	if opts.Replace {
		if err := repo.DropTable(ctx, table); err != nil {
			return nil, fmt.Errorf("ingest: drop %s: %w", table, err)
		}
	}
	if err := repo.CreateTable(ctx, table, columns); err != nil {
		return nil, fmt.Errorf("ingest: create %s: %w", table, err)
	}
	n, err := repo.InsertRows(ctx, table, columns, rows)
	if err != nil {
		return nil, fmt.Errorf("ingest: insert into %s: %w", table, err)
	}

	metrics.IncCounter("rows_ingested", float64(n), metrics.Labels{"table": table})
	return &Summary{
		TableName:    table,
		Columns:      columns,
		RowsImported: n,
		CellsNulled:  nulled,
	}, nil
}

func cleanHeader(raw []string) ([]string, error) {
	names := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		name := schema.Clean(h)
		if name == "" {
			return nil, &EmptyColumnError{Index: i, Raw: h}
		}
		if seen[name] {
			return nil, &DuplicateColumnError{Name: name}
		}
		seen[name] = true
		names[i] = name
	}
	return names, nil
}

// readRecords materializes all data rows normalized to the header width.
func readRecords(cr *csv.Reader, width int) ([][]string, error) {
	var out [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: read row %d: %w", len(out)+2, err)
		}

		row := make([]string, width)
		for i := 0; i < width && i < len(rec); i++ {
			row[i] = strings.TrimSpace(rec[i])
		}
		out = append(out, row)
	}
}

func inferColumns(names []string, records [][]string) []schema.Column {
	columns := make([]schema.Column, len(names))
	values := make([]string, 0, len(records))
	for j, name := range names {
		values = values[:0]
		for _, rec := range records {
			values = append(values, rec[j])
		}
		columns[j] = schema.Column{Name: name, Type: schema.Infer(values)}
	}
	return columns
}

// coerce converts one cell to its column type. The second return is false
// when a non-empty cell failed to parse and was nulled.
func coerce(v string, t schema.ColumnType) (any, bool) {
	if v == "" {
		return nil, true
	}
	switch t {
	case schema.TypeInteger:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, false
		}
		return n, true
	case schema.TypeReal:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, false
		}
		return f, true
	default:
		return v, true
	}
}
