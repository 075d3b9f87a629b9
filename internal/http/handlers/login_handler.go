package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"solardryer/internal/auth"
)

// NewLoginHandler handles POST /auth/login.
func NewLoginHandler(authService *auth.Service) http.HandlerFunc {
	type request struct {
		Operator string `json:"operator"`
		Password string `json:"password"`
	}
	type response struct {
		Token     string `json:"token"`
		TokenType string `json:"token_type"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		req.Operator = strings.TrimSpace(req.Operator)
		if req.Operator == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "operator and password are required")
			return
		}

		token, err := authService.Login(req.Operator, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to login")
			return
		}

		writeJSON(w, http.StatusOK, response{Token: token, TokenType: "Bearer"})
	}
}
