package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driven"
)

// Ensure JWTInspector implements the TokenInspector interface.
var _ driven.TokenInspector = (*JWTInspector)(nil)

// subjectFallbacks are consulted in order when "sub" is absent.
var subjectFallbacks = []string{"preferred_username", "user_id", "name"}

// JWTInspector decodes JWT access tokens without verifying signatures.
// The client never holds the signing key; it only displays who is signed
// in and until when.
type JWTInspector struct {
	parser *jwt.Parser
}

// NewJWTInspector creates a token inspector.
func NewJWTInspector() *JWTInspector {
	return &JWTInspector{parser: jwt.NewParser()}
}

// Inspect returns the subject and expiry of token.
func (i *JWTInspector) Inspect(token string) (*domain.TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := i.parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: parse token: %v", domain.ErrInvalidInput, err)
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("%w: token subject: %v", domain.ErrInvalidInput, err)
	}
	if subject == "" {
		for _, key := range subjectFallbacks {
			if v, ok := claims[key].(string); ok && v != "" {
				subject = v
				break
			}
		}
	}

	result := &domain.TokenClaims{Subject: subject}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: token expiry: %v", domain.ErrInvalidInput, err)
	}
	if exp != nil {
		t := exp.Time
		result.ExpiresAt = &t
	}
	return result, nil
}
