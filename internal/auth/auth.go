package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for a wrong operator name or password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service authenticates the single configured dashboard operator and issues
// tokens for them.
type Service struct {
	operator     string
	passwordHash string
	tokens       *TokenService
}

// NewService builds the auth service.
func NewService(operator, passwordHash string, tokens *TokenService) *Service {
	return &Service{operator: operator, passwordHash: passwordHash, tokens: tokens}
}

// Login verifies credentials and returns a bearer token.
func (s *Service) Login(operator, password string) (string, error) {
	if operator != s.operator {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.tokens.GenerateToken(operator)
}

// Tokens exposes the token service for middleware.
func (s *Service) Tokens() *TokenService {
	return s.tokens
}

// HashPassword produces a bcrypt hash for configuration bootstrap.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("auth: empty password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
