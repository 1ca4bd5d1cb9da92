package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// handleDownloadCSV serves the full transaction export as a file
// attachment named after the export date.
func (s *Server) handleDownloadCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	data, err := s.reporter.ExportCSV(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "CSV export failed", "error", err)
		s.renderFailure(w, r)
		return
	}

	filename := s.reporter.Filename(time.Now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		slog.WarnContext(r.Context(), "CSV write interrupted", "error", err)
	}

	slog.InfoContext(r.Context(), "CSV export served", "filename", filename, "bytes", len(data))
}
