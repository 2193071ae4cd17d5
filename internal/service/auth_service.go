package service

import (
	"context"
	"log/slog"

	"github.com/splitbook/splitbook/internal/auth"
	"github.com/splitbook/splitbook/internal/models"
)

// AuthService handles registration and login. It exists so the HTTP layer
// can hand the ledger an authenticated, opaque user id; the ledger core
// itself performs no credential checks.
type AuthService struct {
	authenticator *auth.PasswordAuthenticator
	jwtManager    *auth.JWTManager
}

// NewAuthService creates an AuthService.
func NewAuthService(authenticator *auth.PasswordAuthenticator, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{authenticator: authenticator, jwtManager: jwtManager}
}

// Register creates an account and returns the user with a session token.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*models.User, string, error) {
	slog.Info("Register request received", "email", email)

	user, err := s.authenticator.Register(ctx, email, name, password)
	if err != nil {
		slog.Error("Register failed", "email", email, "error", err)
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		slog.Error("Register token generation failed", "user_id", user.ID, "error", err)
		return nil, "", err
	}

	slog.Info("User registered", "user_id", user.ID)
	return user, token, nil
}

// Login verifies credentials and returns the user with a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	slog.Info("Login request received", "email", email)

	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		slog.Warn("Login failed", "email", email, "error", err)
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		slog.Error("Login token generation failed", "user_id", user.ID, "error", err)
		return nil, "", err
	}

	slog.Info("User logged in", "user_id", user.ID)
	return user, token, nil
}
