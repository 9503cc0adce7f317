package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driving"
	"github.com/custodia-labs/omniq-cli/internal/logger"
)

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

// AuthService signs the client in and applies the issued token.
type AuthService struct {
	backend   driven.BackendClient
	tokens    driven.TokenHolder
	inspector driven.TokenInspector
}

// NewAuthService creates a new auth service.
// inspector may be nil, in which case Claims is unavailable.
func NewAuthService(
	backend driven.BackendClient,
	tokens driven.TokenHolder,
	inspector driven.TokenInspector,
) *AuthService {
	return &AuthService{
		backend:   backend,
		tokens:    tokens,
		inspector: inspector,
	}
}

// Login exchanges credentials for a token and applies it to the client.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthToken, error) {
	if !creds.IsComplete() {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}
	if s.backend == nil {
		return nil, fmt.Errorf("auth backend: %w", domain.ErrNotConfigured)
	}

	token := s.backend.Authenticate(ctx, creds)
	if token == nil || token.AccessToken == "" {
		logger.Warn("Login rejected for %q", creds.Username)
		return nil, domain.ErrUnauthorized
	}

	if s.tokens != nil {
		s.tokens.SetToken(token.AccessToken)
	}
	logger.Debug("Logged in as %q", creds.Username)
	return token, nil
}

// Logout clears the applied token.
func (s *AuthService) Logout() {
	if s.tokens != nil {
		s.tokens.SetToken("")
	}
}

// Claims returns the claims of the applied token, or nil when signed out.
func (s *AuthService) Claims() (*domain.TokenClaims, error) {
	if s.tokens == nil {
		return nil, nil
	}
	token := s.tokens.Token()
	if token == "" {
		return nil, nil
	}
	if s.inspector == nil {
		return nil, fmt.Errorf("token inspector: %w", domain.ErrNotConfigured)
	}
	return s.inspector.Inspect(token)
}

// LogoutVisible reports whether the backend wants a logout action shown.
func (s *AuthService) LogoutVisible(ctx context.Context) (bool, error) {
	if s.backend == nil {
		return false, fmt.Errorf("auth backend: %w", domain.ErrNotConfigured)
	}
	return s.backend.ShowLogout(ctx)
}
