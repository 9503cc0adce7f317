package driven

import "github.com/custodia-labs/omniq-cli/internal/core/domain"

// TokenInspector reads claims from an access token without verifying it.
// The backend is the authority on validity.
type TokenInspector interface {
	Inspect(token string) (*domain.TokenClaims, error)
}
