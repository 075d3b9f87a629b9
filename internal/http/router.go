package httpserver

import "net/http"

// Routes groups handlers.
type Routes struct {
	Live          http.HandlerFunc
	ActiveSession http.HandlerFunc
	SessionStart  http.HandlerFunc
	SessionStop   http.HandlerFunc
	Sessions      http.HandlerFunc
	SessionDetail http.HandlerFunc
	SessionExport http.HandlerFunc
	SessionDelete http.HandlerFunc
	Notifications http.HandlerFunc
	Login         http.HandlerFunc
	DeviceWS      http.HandlerFunc
	Health        http.HandlerFunc
}

// Middleware wraps a handler.
type Middleware func(http.HandlerFunc) http.HandlerFunc

// NewRouter registers endpoints. Mutating session endpoints go through the
// guard middleware.
func NewRouter(routes Routes, guard Middleware) http.Handler {
	if guard == nil {
		guard = func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	mux := http.NewServeMux()
	register := func(pattern string, handler http.HandlerFunc) {
		if handler != nil {
			mux.Handle(pattern, handler)
		}
	}

	register("GET /live", routes.Live)
	register("GET /sessions/active", routes.ActiveSession)
	register("POST /sessions/start", guardIf(guard, routes.SessionStart))
	register("POST /sessions/stop", guardIf(guard, routes.SessionStop))
	register("GET /sessions", routes.Sessions)
	register("GET /sessions/{id}", routes.SessionDetail)
	register("GET /sessions/{id}/export", routes.SessionExport)
	register("DELETE /sessions/{id}", guardIf(guard, routes.SessionDelete))
	register("GET /notifications", routes.Notifications)
	register("POST /auth/login", routes.Login)
	register("GET /device/ws", routes.DeviceWS)
	register("GET /health", routes.Health)

	return mux
}

func guardIf(guard Middleware, handler http.HandlerFunc) http.HandlerFunc {
	if handler == nil {
		return nil
	}
	return guard(handler)
}
