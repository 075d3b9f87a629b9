package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"solardryer/internal/export"
	"solardryer/internal/repository"
)

// NewSessionExportHandler returns the GET /sessions/{id}/export handler
// producing the CSV download.
func NewSessionExportHandler(sessions SessionReader, samples SampleReader, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		sess, err := sessions.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				writeError(w, http.StatusNotFound, "session not found")
				return
			}
			logger.Error("failed to load session for export", zap.String("session_id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to export session")
			return
		}

		items, err := samples.ListBySession(r.Context(), id)
		if err != nil {
			logger.Error("failed to load samples for export", zap.String("session_id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to export session")
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(sess.Name)))
		if err := export.WriteSessionCSV(w, items); err != nil {
			logger.Error("failed to write csv", zap.String("session_id", id), zap.Error(err))
		}
	}
}
