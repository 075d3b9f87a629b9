package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"solardryer/internal/http/middleware"
	"solardryer/internal/notify"
	"solardryer/internal/repository"
)

// confirmWord is the literal the user must type to delete an experiment.
// There is no undo.
const confirmWord = "experiment"

// SessionDeleter removes a session and its samples.
type SessionDeleter interface {
	Delete(ctx context.Context, id string) error
}

// ChangeAnnouncer signals session writes to live-query watchers.
type ChangeAnnouncer interface {
	PublishSessionChange(ctx context.Context)
}

// NewSessionDeleteHandler returns the DELETE /sessions/{id} handler. Any
// confirmation text other than the literal word aborts without issuing a
// delete. A successful delete is announced on the change feed so the
// reconciler drops the session if it was the running one.
func NewSessionDeleteHandler(sessions SessionDeleter, feed ChangeAnnouncer, notifier notify.Notifier, logger *zap.Logger) http.HandlerFunc {
	type request struct {
		Confirm string `json:"confirm"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		var req request
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}
		if !strings.EqualFold(req.Confirm, confirmWord) {
			notifier.Push("Failed to delete the experiment.")
			writeError(w, http.StatusBadRequest, "confirmation text did not match")
			return
		}

		if err := sessions.Delete(r.Context(), id); err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				writeError(w, http.StatusNotFound, "session not found")
				return
			}
			logger.Error("failed to delete session", zap.String("session_id", id), zap.Error(err))
			notifier.Push("Failed to delete the experiment.")
			writeError(w, http.StatusInternalServerError, "failed to delete session")
			return
		}

		if feed != nil {
			feed.PublishSessionChange(r.Context())
		}

		fields := []zap.Field{zap.String("session_id", id)}
		if operator, ok := middleware.OperatorFromContext(r.Context()); ok {
			fields = append(fields, zap.String("operator", operator))
		}
		logger.Info("session deleted", fields...)

		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
