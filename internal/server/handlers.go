package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/giddr/aectransparencyreader/internal/catalog"
)

// dangerousKeywords rejects statements that could modify data. The check is
// a plain substring scan over the upper-cased SQL, so a SELECT mentioning
// "created_at" is also rejected; that strictness is accepted.
var dangerousKeywords = []string{"DROP", "DELETE", "UPDATE", "INSERT", "ALTER", "CREATE", "TRUNCATE"}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SQL string `json:"sql"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, "Invalid request body")
		return
	}
	if req.SQL == "" {
		s.fail(w, "No SQL query provided")
		return
	}

	sqlUpper := strings.ToUpper(strings.TrimSpace(req.SQL))
	if !strings.HasPrefix(sqlUpper, "SELECT") {
		s.fail(w, "Only SELECT queries are allowed")
		return
	}
	for _, keyword := range dangerousKeywords {
		if strings.Contains(sqlUpper, keyword) {
			s.fail(w, fmt.Sprintf("Keyword %s is not allowed", keyword))
			return
		}
	}

	s.writeJSON(w, s.execute(r, req.SQL))
}

func (s *Server) handleExample(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	report, ok := catalog.Get(s.ex.Adapter().Dialect, id)
	if !ok {
		s.fail(w, "Example not found")
		return
	}
	s.writeJSON(w, struct {
		Success bool           `json:"success"`
		Query   catalog.Report `json:"query"`
	}{true, report})
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.execute(r, s.ex.Adapter().Dialect.TablesSQL()))
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	table := mux.Vars(r)["table"]
	if !validIdent(table) {
		s.fail(w, "Invalid table name")
		return
	}

	sql, args := s.ex.Adapter().Dialect.TableSchemaSQL(table)
	s.writeJSON(w, s.execute(r, sql, args...))
}

// validIdent accepts names made of letters, digits, and underscores, with at
// least one non-underscore character. Schema queries interpolate the table
// name (SQLite's PRAGMA cannot bind it), so this is the injection gate.
func validIdent(name string) bool {
	hasAlnum := false
	for _, r := range name {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			hasAlnum = true
		default:
			return false
		}
	}
	return hasAlnum
}
