package handlers

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"go.uber.org/zap"

	"solardryer/internal/models"
	"solardryer/internal/repository"
	"solardryer/internal/session"
)

// SessionReader serves history queries.
type SessionReader interface {
	List(ctx context.Context) ([]models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
}

// SampleReader lists a session's samples in capture order.
type SampleReader interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.Sample, error)
}

// CounterSync raises the experiment counter to an observed maximum.
type CounterSync interface {
	SyncCounter(max int)
}

// NewSessionsHandler returns the GET /sessions history handler. Sessions
// are ordered by experiment number, then creation time, and the stored
// experiment counter is resynced to the observed maximum so numbering stays
// ahead of records created elsewhere.
func NewSessionsHandler(sessions SessionReader, counter CounterSync, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := sessions.List(r.Context())
		if err != nil {
			logger.Error("failed to list sessions", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load history sessions")
			return
		}

		sort.SliceStable(list, func(i, j int) bool {
			ni := experimentSortKey(list[i].Name)
			nj := experimentSortKey(list[j].Name)
			if ni != nj {
				return ni < nj
			}
			return createdMs(list[i]) < createdMs(list[j])
		})

		maxNumber := 0
		for _, s := range list {
			if n, ok := session.ExperimentNumber(s.Name); ok && n > maxNumber {
				maxNumber = n
			}
		}
		if maxNumber > 0 && counter != nil {
			counter.SyncCounter(maxNumber)
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": list})
	}
}

// NewSessionDetailHandler returns the GET /sessions/{id} handler.
func NewSessionDetailHandler(sessions SessionReader, samples SampleReader, logger *zap.Logger) http.HandlerFunc {
	type response struct {
		Session *models.Session `json:"session"`
		Samples []models.Sample `json:"samples"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		sess, err := sessions.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				writeError(w, http.StatusNotFound, "session not found")
				return
			}
			logger.Error("failed to load session", zap.String("session_id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load session details")
			return
		}

		items, err := samples.ListBySession(r.Context(), id)
		if err != nil {
			logger.Error("failed to load samples", zap.String("session_id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load session samples")
			return
		}

		writeJSON(w, http.StatusOK, response{Session: sess, Samples: items})
	}
}

func experimentSortKey(name string) int {
	if n, ok := session.ExperimentNumber(name); ok {
		return n
	}
	return int(^uint(0) >> 1)
}

func createdMs(s models.Session) int64 {
	if s.CreatedAt != nil {
		return s.CreatedAt.UnixMilli()
	}
	if s.CreatedAtClient != 0 {
		return s.CreatedAtClient
	}
	return 0
}
