package driving

import (
	"context"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
)

// AuthService signs the client in against the backend.
type AuthService interface {
	// Login exchanges credentials for a token and applies it to the client.
	// Returns domain.ErrUnauthorized when the backend rejects them.
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthToken, error)

	// Logout clears the applied token.
	Logout()

	// Claims returns the claims of the applied token, or nil when signed out.
	Claims() (*domain.TokenClaims, error)

	// LogoutVisible reports whether the backend wants a logout action shown.
	LogoutVisible(ctx context.Context) (bool, error)
}
