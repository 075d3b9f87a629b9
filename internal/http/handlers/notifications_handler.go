package handlers

import (
	"net/http"

	"solardryer/internal/notify"
)

// NewNotificationsHandler returns the GET /notifications handler. Draining
// is destructive; each notice is delivered once.
func NewNotificationsHandler(hub *notify.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notices := hub.Drain()
		if notices == nil {
			notices = []notify.Notice{}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": notices})
	}
}
