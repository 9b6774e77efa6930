// Command server runs the disclosure reporting web app.
//
// The backend is selected by environment: POSTGRES_URL switches to Postgres,
// otherwise the SQLite file given by -db is used. A .env file in the working
// directory is loaded first, so local setups can keep POSTGRES_URL out of
// the shell.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/giddr/aectransparencyreader/internal/dialect"
	"github.com/giddr/aectransparencyreader/internal/metrics"
	"github.com/giddr/aectransparencyreader/internal/metrics/datadog"
	"github.com/giddr/aectransparencyreader/internal/server"
	"github.com/giddr/aectransparencyreader/internal/store"

	// register all backends with the store factory.
	_ "github.com/giddr/aectransparencyreader/internal/store/all"
)

func main() {
	_ = godotenv.Load()

	var (
		addr              string
		dbPath            string
		metricsBackendFlg string
	)
	flag.StringVar(&addr, "addr", ":5001", "listen address")
	flag.StringVar(&dbPath, "db", "election_data.db", "SQLite database path (ignored when POSTGRES_URL is set)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (datadog, none)")
	flag.Parse()

	cfg := store.Config{Kind: "sqlite", DSN: dbPath}
	if pgURL := os.Getenv("POSTGRES_URL"); pgURL != "" {
		cfg = store.Config{Kind: "postgres", DSN: pgURL}
	} else if _, err := os.Stat(dbPath); err != nil {
		fatalf("database %s not found; run the import command first", dbPath)
	}

	// Decide metrics backend: flag → env → default (none).
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "datadog":
		b, err := datadog.NewBackend(context.Background(), datadog.Options{
			ServiceName: "disclosure-reader",
			Tags:        datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS")),
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			log.Printf("metrics: backend=%v", backendName)
			metrics.SetBackend(b)
			defer func() {
				if err := b.Close(); err != nil {
					log.Printf("metrics: datadog close/flush error: %v", err)
				}
			}()
		}
	case "", "none":
		// metrics disabled; nop backend remains
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ex := store.NewExecutor(cfg, dialect.NewAdapter(cfg.Dialect(), dialect.Default()))
	srv := server.NewServer(ex, log.Default())

	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	log.Printf("serving on %s (backend=%s)", addr, cfg.Kind)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("%v", err)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
