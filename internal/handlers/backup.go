package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"dialin/internal/export"

	"github.com/rs/zerolog/log"
)

// HandleExportBackup downloads the full backup file.
func (h *Handler) HandleExportBackup(w http.ResponseWriter, r *http.Request) {
	backup := h.app.ExportBackup()
	data, err := backup.Encode()
	if err != nil {
		http.Error(w, "Failed to export backup", http.StatusInternalServerError)
		log.Error().Err(err).Msg("Failed to encode backup")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename="+export.BackupFilename(backup.ExportedAt))
	w.Write(data)
}

// HandleExportCSV downloads the shot log as CSV.
func (h *Handler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+export.CSVFilename(time.Now()))
	if err := h.app.ExportCSV(w); err != nil {
		log.Error().Err(err).Msg("Failed to write CSV export")
	}
}

type importResponse struct {
	Shots     int `json:"shots"`
	Favorites int `json:"favorites"`
	Recipes   int `json:"recipes"`
	Beans     int `json:"beans"`
}

// HandleImport replaces the log with an uploaded backup. The body is the raw
// backup file.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Backup file too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	backup, err := h.app.ImportBackup(r.Context(), data)
	if err != nil {
		writeError(w, err, "import backup")
		return
	}

	writeJSON(w, importResponse{
		Shots:     len(backup.Shots),
		Favorites: len(backup.Favorites),
		Recipes:   len(backup.Recipes),
		Beans:     len(backup.Beans),
	}, "import")
}
