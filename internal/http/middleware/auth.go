package middleware

import (
	"context"
	"net/http"
	"strings"

	"solardryer/internal/auth"
)

type contextKey string

const operatorKey contextKey = "operator"

// RequireAuth validates Bearer tokens and stores the operator name in the
// request context.
func RequireAuth(tokens *auth.TokenService) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}
			claims, err := tokens.ValidateToken(strings.TrimSpace(parts[1]))
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), operatorKey, claims.Operator)
			next(w, r.WithContext(ctx))
		}
	}
}

// OperatorFromContext retrieves the authenticated operator, if any.
func OperatorFromContext(ctx context.Context) (string, bool) {
	operator, ok := ctx.Value(operatorKey).(string)
	return operator, ok
}
