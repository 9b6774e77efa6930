// Command import bulk-loads disclosure CSV exports into the database.
//
// Each positional argument is a prefix=directory pair; every *.csv in the
// directory becomes a table named <prefix>_<cleaned file name>, replacing
// any table of that name from a previous run:
//
//	import -db election_data.db election=./AllElectionsData annual=./AllAnnualData
//
// POSTGRES_URL in the environment (or a .env file) switches the target to
// Postgres.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/giddr/aectransparencyreader/internal/ingest"
	"github.com/giddr/aectransparencyreader/internal/store"

	_ "github.com/giddr/aectransparencyreader/internal/store/all"
)

// indexedColumns get an index on every imported table that has them. They
// are the columns the report catalog filters and joins on.
var indexedColumns = []string{"Financial_Year", "Event", "Name", "Date", "Donor_Name", "Party_Name"}

func main() {
	_ = godotenv.Load()

	var dbPath string
	flag.StringVar(&dbPath, "db", "election_data.db", "SQLite database path (ignored when POSTGRES_URL is set)")
	flag.Parse()

	if flag.NArg() == 0 {
		fatalf("usage: import [-db path] prefix=dir [prefix=dir ...]")
	}

	cfg := store.Config{Kind: "sqlite", DSN: dbPath}
	if pgURL := os.Getenv("POSTGRES_URL"); pgURL != "" {
		cfg = store.Config{Kind: "postgres", DSN: pgURL}
	}

	ctx := context.Background()
	repo, err := store.Open(ctx, cfg)
	if err != nil {
		fatalf("open %s: %v", cfg.Kind, err)
	}
	defer repo.Close()

	var summaries []*ingest.Summary
	var totalRows int64
	for _, arg := range flag.Args() {
		prefix, dir, ok := strings.Cut(arg, "=")
		if !ok || prefix == "" || dir == "" {
			fatalf("bad argument %q: want prefix=dir", arg)
		}

		files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
		if err != nil {
			fatalf("glob %s: %v", dir, err)
		}
		if len(files) == 0 {
			log.Printf("%s: no csv files", dir)
			continue
		}
		sort.Strings(files)

		for _, path := range files {
			sum, err := importFile(ctx, repo, path, prefix)
			if err != nil {
				log.Printf("  ERROR %s: %v", filepath.Base(path), err)
				continue
			}
			log.Printf("  %s: %d rows into %s (%d cells nulled)",
				filepath.Base(path), sum.RowsImported, sum.TableName, sum.CellsNulled)
			summaries = append(summaries, sum)
			totalRows += sum.RowsImported
		}
	}

	createIndexes(ctx, repo, summaries)
	log.Printf("imported %d tables, %d rows", len(summaries), totalRows)
}

func importFile(ctx context.Context, repo store.Repository, path, prefix string) (*ingest.Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ingest.Ingest(ctx, repo, f, ingest.Options{
		SourceName: path,
		Prefix:     prefix,
		Replace:    true,
	})
}

func createIndexes(ctx context.Context, repo store.Repository, summaries []*ingest.Summary) {
	for _, sum := range summaries {
		for _, col := range sum.Columns {
			if !isIndexed(col.Name) {
				continue
			}
			stmt := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (%s)`,
				quoteIdent("idx_"+sum.TableName+"_"+col.Name),
				quoteIdent(sum.TableName), quoteIdent(col.Name))
			if err := repo.Exec(ctx, stmt); err != nil {
				log.Printf("  index %s.%s: %v", sum.TableName, col.Name, err)
			}
		}
	}
}

func isIndexed(name string) bool {
	for _, c := range indexedColumns {
		if c == name {
			return true
		}
	}
	return false
}

// quoteIdent double-quotes an identifier, which both engines accept.
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
