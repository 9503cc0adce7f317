package domain

import "time"

// Credentials are what the login form collects.
type Credentials struct {
	Username string
	Password string
}

// IsComplete returns true if both fields are set.
func (c Credentials) IsComplete() bool {
	return c.Username != "" && c.Password != ""
}

// AuthToken is the bearer token issued by the login endpoint.
type AuthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// TokenClaims holds the display-relevant claims of an access token.
type TokenClaims struct {
	Subject   string
	ExpiresAt *time.Time
}

// Expired reports whether the claims carry an expiry before now.
func (c TokenClaims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}
