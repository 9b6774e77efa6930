// Package server exposes the reporting web app: raw SELECT queries, the
// report catalog, dashboard aggregates, search, and CSV upload.
//
// Every data endpoint answers HTTP 200 with the store envelope; failures are
// {"success":false,"error":...} rather than error status codes, so clients
// branch on one field regardless of what went wrong.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/giddr/aectransparencyreader/internal/catalog"
	"github.com/giddr/aectransparencyreader/internal/metrics"
	"github.com/giddr/aectransparencyreader/internal/store"
)

//go:embed index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "index.html"))

const requestTimeout = 30 * time.Second

type Server struct {
	ex     *store.Executor
	router *mux.Router
	logger *log.Logger

	// now is a test seam for timestamped responses. Production uses time.Now.
	now func() time.Time
}

func NewServer(ex *store.Executor, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		ex:     ex,
		router: mux.NewRouter(),
		logger: logger,
		now:    time.Now,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	// CORS middleware
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Request metrics
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			metrics.IncCounter("http_requests", 1, metrics.Labels{"route": route, "method": r.Method})
			metrics.ObserveHistogram("http_request_duration_ms", float64(time.Since(start).Milliseconds()), metrics.Labels{"route": route})
		})
	})
}

func (s *Server) setupRoutes() {
	// CORS preflight must match a route or the middleware never runs.
	s.router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodOptions)

	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/query", s.handleQuery).Methods(http.MethodPost)
	s.router.HandleFunc("/example/{id}", s.handleExample).Methods(http.MethodGet)
	s.router.HandleFunc("/tables", s.handleTables).Methods(http.MethodGet)
	s.router.HandleFunc("/schema/{table}", s.handleSchema).Methods(http.MethodGet)

	s.router.HandleFunc("/api/dashboard/stats", s.handleDashboardStats).Methods(http.MethodGet)
	s.router.HandleFunc("/api/dashboard/{section}", s.handleDashboardSection).Methods(http.MethodGet)
	s.router.HandleFunc("/api/insights", s.handleInsights).Methods(http.MethodGet)
	s.router.HandleFunc("/api/search", s.handleSearch).Methods(http.MethodGet)
	s.router.HandleFunc("/api/explore", s.handleExplore).Methods(http.MethodGet)
	s.router.HandleFunc("/api/top-stories", s.handleTopStories).Methods(http.MethodGet)
	s.router.HandleFunc("/api/upload", s.handleUpload).Methods(http.MethodPost)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		Reports []catalog.Report
	}{Reports: catalog.All(s.ex.Adapter().Dialect)}
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Printf("render index: %v", err)
	}
}

// execute runs one canonical statement with the shared request timeout.
func (s *Server) execute(r *http.Request, sql string, args ...any) store.QueryResult {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	return s.ex.Execute(ctx, sql, args...)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("write response: %v", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, msg string) {
	s.writeJSON(w, store.Failf(msg))
}

// scalar runs a single-row aggregate and returns its first value as a
// float64, or fallback when the query fails or returns nothing.
func (s *Server) scalar(r *http.Request, fallback float64, sql string, args ...any) float64 {
	qr := s.execute(r, sql, args...)
	if !qr.Success || len(qr.Data) == 0 {
		return fallback
	}
	v, ok := asFloat(qr.Data[0].Values()[0])
	if !ok {
		return fallback
	}
	return v
}

// asFloat normalizes the numeric types the drivers hand back.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case int32:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// formatDollars renders an amount the way the UI shows money: "$1,234,567",
// rounded to whole dollars.
func formatDollars(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	n := int64(v + 0.5)
	digits := strconv.FormatInt(n, 10)

	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, d)
	}
	if neg {
		return "-$" + string(out)
	}
	return "$" + string(out)
}
