package handlers

import (
	"net/http"

	"solardryer/internal/models"
	"solardryer/internal/session"
)

// NewActiveSessionHandler returns the GET /sessions/active handler.
func NewActiveSessionHandler(rec *session.Reconciler) http.HandlerFunc {
	type response struct {
		Active  *models.ActiveSession `json:"active"`
		Elapsed string                `json:"elapsed"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, response{
			Active:  rec.Active(),
			Elapsed: rec.ElapsedLabel(),
		})
	}
}

// NewSessionStartHandler returns the POST /sessions/start handler. The
// dispatcher answers immediately with its optimistic view; guards make a
// double start a no-op.
func NewSessionStartHandler(dispatcher *session.Dispatcher, rec *session.Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dispatcher.TurnOn()
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"active": rec.Active(),
		})
	}
}

// NewSessionStopHandler returns the POST /sessions/stop handler.
func NewSessionStopHandler(dispatcher *session.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dispatcher.TurnOff()
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "ok"})
	}
}
