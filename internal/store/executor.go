package store

import (
	"context"
	"time"

	"github.com/giddr/aectransparencyreader/internal/dialect"
	"github.com/giddr/aectransparencyreader/internal/metrics"
)

// Executor runs canonical SQL against the configured backend.
//
// Each Execute call opens its own connection and fully closes it before
// returning, so a failed statement can never poison later ones with
// transaction or session state.
type Executor struct {
	cfg     Config
	adapter dialect.Adapter
}

// NewExecutor builds an executor for a backend config. The adapter's catalog
// decides which identifiers get quoted on Postgres; pass the live catalog so
// uploaded tables resolve too.
func NewExecutor(cfg Config, adapter dialect.Adapter) *Executor {
	return &Executor{cfg: cfg, adapter: adapter}
}

// Adapter exposes the executor's dialect adapter, for callers that need to
// register uploaded identifiers or inspect the dialect.
func (e *Executor) Adapter() dialect.Adapter { return e.adapter }

// Config exposes the executor's backend config.
func (e *Executor) Config() Config { return e.cfg }

// Execute rewrites the canonical SQL for the active dialect, runs it, and
// materializes the result. It never returns an error: every failure comes
// back as a QueryResult with Success=false carrying the engine's message.
func (e *Executor) Execute(ctx context.Context, canonical string, args ...any) QueryResult {
	start := time.Now()
	native := e.adapter.Rewrite(canonical)

	repo, err := Open(ctx, e.cfg)
	if err != nil {
		metrics.IncCounter("queries_executed", 1, metrics.Labels{"status": "error"})
		return Fail(err)
	}
	defer repo.Close()

	columns, rows, err := repo.Query(ctx, native, args...)
	if err != nil {
		metrics.IncCounter("queries_executed", 1, metrics.Labels{"status": "error"})
		return Fail(err)
	}

	metrics.IncCounter("queries_executed", 1, metrics.Labels{"status": "ok"})
	metrics.ObserveHistogram("query_duration_ms", float64(time.Since(start).Milliseconds()), nil)
	return Ok(columns, rows)
}
