package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/giddr/aectransparencyreader/internal/schema"
	"github.com/giddr/aectransparencyreader/internal/store"
	_ "github.com/giddr/aectransparencyreader/internal/store/sqlite"
)

// fakeRepo records DDL and inserts without a real database.
type fakeRepo struct {
	dropped   []string
	created   string
	columns   []schema.Column
	rows      [][]any
	createErr error
}

func (f *fakeRepo) Query(ctx context.Context, sql string, args ...any) ([]string, [][]any, error) {
	return nil, nil, nil
}

func (f *fakeRepo) Exec(ctx context.Context, sql string, args ...any) error { return nil }

func (f *fakeRepo) CreateTable(ctx context.Context, table string, columns []schema.Column) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = table
	f.columns = columns
	return nil
}

func (f *fakeRepo) DropTable(ctx context.Context, table string) error {
	f.dropped = append(f.dropped, table)
	return nil
}

func (f *fakeRepo) InsertRows(ctx context.Context, table string, columns []schema.Column, rows [][]any) (int64, error) {
	f.rows = rows
	return int64(len(rows)), nil
}

func (f *fakeRepo) Close() error { return nil }

func fixedNow(t *testing.T, at time.Time) {
	t.Helper()
	old := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = old })
}

func TestIngestInfersAndCoerces(t *testing.T) {
	csvData := "Donor Name,Amount ($),Year\nAlpha Pty Ltd,1500.0,2023\nBeta Holdings,2500.5,2024\n"
	repo := &fakeRepo{}

	sum, err := Ingest(context.Background(), repo, strings.NewReader(csvData), Options{TableName: "donations"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	wantCols := []schema.Column{
		{Name: "Donor_Name", Type: schema.TypeText},
		{Name: "Amount", Type: schema.TypeReal},
		{Name: "Year", Type: schema.TypeInteger},
	}
	if !reflect.DeepEqual(repo.columns, wantCols) {
		t.Fatalf("columns=%+v, want %+v", repo.columns, wantCols)
	}
	if sum.RowsImported != 2 || sum.CellsNulled != 0 {
		t.Fatalf("summary=%+v", sum)
	}
	if repo.rows[0][1] != 1500.0 || repo.rows[1][1] != 2500.5 {
		t.Fatalf("amounts=%v %v", repo.rows[0][1], repo.rows[1][1])
	}
	if repo.rows[0][2] != int64(2023) {
		t.Fatalf("year=%T %v", repo.rows[0][2], repo.rows[0][2])
	}
}

func TestIngestNullsUncoercibleCells(t *testing.T) {
	// Year infers INTEGER from the first rows; the sample cap means a late
	// outlier no longer changes the type, it just nulls out.
	var b strings.Builder
	b.WriteString("Name,Year\n")
	for i := 0; i < 150; i++ {
		b.WriteString("x,2020\n")
	}
	b.WriteString("y,unknown\n")

	repo := &fakeRepo{}
	sum, err := Ingest(context.Background(), repo, strings.NewReader(b.String()), Options{TableName: "t"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if sum.CellsNulled != 1 {
		t.Fatalf("CellsNulled=%d, want 1", sum.CellsNulled)
	}
	last := repo.rows[len(repo.rows)-1]
	if last[1] != nil {
		t.Fatalf("outlier cell=%v, want nil", last[1])
	}
}

func TestIngestRaggedRows(t *testing.T) {
	csvData := "A,B,C\n1,2\n4,5,6,7\n"
	repo := &fakeRepo{}

	sum, err := Ingest(context.Background(), repo, strings.NewReader(csvData), Options{TableName: "t"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if sum.RowsImported != 2 {
		t.Fatalf("rows=%d", sum.RowsImported)
	}
	if repo.rows[0][2] != nil {
		t.Fatalf("short row must pad with nil, got %v", repo.rows[0][2])
	}
	if got := len(repo.rows[1]); got != 3 {
		t.Fatalf("long row must truncate to 3, got %d", got)
	}
}

func TestIngestHeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want error
	}{
		{name: "no_header", csv: "", want: ErrEmptyHeader},
		{name: "no_data", csv: "A,B\n", want: ErrEmptyDataset},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Ingest(context.Background(), &fakeRepo{}, strings.NewReader(tc.csv), Options{TableName: "t"})
			if !errors.Is(err, tc.want) {
				t.Fatalf("err=%v, want %v", err, tc.want)
			}
		})
	}

	var dup *DuplicateColumnError
	_, err := Ingest(context.Background(), &fakeRepo{}, strings.NewReader("Amount ($),Amount\n1,2\n"), Options{TableName: "t"})
	if !errors.As(err, &dup) || dup.Name != "Amount" {
		t.Fatalf("err=%v, want DuplicateColumnError{Amount}", err)
	}

	var empty *EmptyColumnError
	_, err = Ingest(context.Background(), &fakeRepo{}, strings.NewReader("A,!!!\n1,2\n"), Options{TableName: "t"})
	if !errors.As(err, &empty) || empty.Index != 1 {
		t.Fatalf("err=%v, want EmptyColumnError at index 1", err)
	}
}

func TestIngestReplaceDropsFirst(t *testing.T) {
	repo := &fakeRepo{}
	_, err := Ingest(context.Background(), repo, strings.NewReader("A\n1\n"), Options{TableName: "t", Replace: true})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(repo.dropped) != 1 || repo.dropped[0] != "t" {
		t.Fatalf("dropped=%v", repo.dropped)
	}
}

func TestTableNameFor(t *testing.T) {
	fixedNow(t, time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC))

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{
			name: "explicit_wins",
			opts: Options{TableName: "donations", SourceName: "x.csv", Prefix: "annual"},
			want: "donations",
		},
		{
			name: "prefixed",
			opts: Options{SourceName: "/data/Donations Made.csv", Prefix: "annual"},
			want: "annual_Donations_Made",
		},
		{
			name: "timestamped_upload",
			opts: Options{SourceName: "My Data (new).csv", Timestamped: true},
			want: "uploaded_My_Data_new_20240309_143005",
		},
		{
			name: "bare",
			opts: Options{SourceName: "returns.csv"},
			want: "returns",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := TableNameFor(tc.opts); got != tc.want {
				t.Fatalf("TableNameFor=%q, want %q", got, tc.want)
			}
		})
	}
}

func TestIngestWindows1252Fallback(t *testing.T) {
	// 0xE9 is é in Windows-1252 and invalid as standalone UTF-8.
	raw := append([]byte("Name\nCaf"), 0xE9, '\n')
	repo := &fakeRepo{}

	_, err := Ingest(context.Background(), repo, strings.NewReader(string(raw)), Options{TableName: "t"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if got := repo.rows[0][0]; got != "Café" {
		t.Fatalf("cell=%q, want Café", got)
	}
}

func TestIngestBOMStripped(t *testing.T) {
	csvData := "\uFEFFName,Amount\nAlpha,5\n"
	repo := &fakeRepo{}

	_, err := Ingest(context.Background(), repo, strings.NewReader(csvData), Options{TableName: "t"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if repo.columns[0].Name != "Name" {
		t.Fatalf("first column=%q, want Name", repo.columns[0].Name)
	}
}

func TestIngestRoundTripSQLite(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "ingest.db")
	repo, err := store.Open(ctx, store.Config{Kind: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer repo.Close()

	csvData := "Donor Name,Amount ($)\nAlpha Pty Ltd,1500.0\nBeta Holdings,2500.5\n"
	sum, err := Ingest(ctx, repo, strings.NewReader(csvData), Options{TableName: "donations"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if sum.RowsImported != 2 {
		t.Fatalf("RowsImported=%d", sum.RowsImported)
	}

	cols, rows, err := repo.Query(ctx, `SELECT Donor_Name, Amount FROM donations ORDER BY Amount`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if cols[0] != "Donor_Name" || cols[1] != "Amount" {
		t.Fatalf("columns=%v", cols)
	}
	if rows[0][0] != "Alpha Pty Ltd" || rows[0][1] != 1500.0 {
		t.Fatalf("row0=%v", rows[0])
	}
	if rows[1][1] != 2500.5 {
		t.Fatalf("row1=%v", rows[1])
	}
}
