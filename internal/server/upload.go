package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/giddr/aectransparencyreader/internal/ingest"
	"github.com/giddr/aectransparencyreader/internal/store"
)

// maxUploadBytes bounds the multipart form held in memory.
const maxUploadBytes = 64 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.fail(w, "No file provided")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.fail(w, "No file provided")
		return
	}
	defer file.Close()

	filename := r.FormValue("filename")
	if filename == "" {
		filename = header.Filename
	}
	if !strings.HasSuffix(filename, ".csv") {
		s.fail(w, "File must be a CSV")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	repo, err := store.Open(ctx, s.ex.Config())
	if err != nil {
		s.fail(w, err.Error())
		return
	}
	defer repo.Close()

	sum, err := ingest.Ingest(ctx, repo, file, ingest.Options{
		SourceName:  filename,
		Timestamped: true,
	})
	if err != nil {
		s.fail(w, err.Error())
		return
	}

	// Register the new identifiers so the adapter can quote them for
	// Postgres in later queries.
	cat := s.ex.Adapter().Catalog
	cat.AddTable(sum.TableName)
	for _, c := range sum.Columns {
		cat.AddColumns(c.Name)
	}

	s.logger.Printf("uploaded %s: %d rows into %s (%d cells nulled)",
		filename, sum.RowsImported, sum.TableName, sum.CellsNulled)

	s.writeJSON(w, struct {
		Success      bool   `json:"success"`
		TableName    string `json:"table_name"`
		RowsImported int64  `json:"rows_imported"`
		Columns      int    `json:"columns"`
		Message      string `json:"message"`
	}{
		Success:      true,
		TableName:    sum.TableName,
		RowsImported: sum.RowsImported,
		Columns:      len(sum.Columns),
		Message:      fmt.Sprintf("Successfully imported %d rows into %s", sum.RowsImported, sum.TableName),
	})
}
