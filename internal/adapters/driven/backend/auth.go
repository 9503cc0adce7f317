package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/logger"
)

// Authenticate exchanges credentials for a token. Returns nil when rejected.
func (c *Client) Authenticate(ctx context.Context, creds domain.Credentials) *domain.AuthToken {
	body, contentType, err := buildLoginBody(creds)
	if err != nil {
		logger.Warn("Login: %v", err)
		return nil
	}

	resp, err := c.do(ctx, http.MethodPost, pathLogin, body, contentType)
	if err != nil {
		return nil
	}
	defer drain(resp)

	if !isSuccess(resp.StatusCode) {
		logger.Warn("Login: HTTP %d", resp.StatusCode)
		return nil
	}

	var token domain.AuthToken
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		logger.Warn("Login: decode: %v", err)
		return nil
	}
	return &token
}

// buildLoginBody writes the form for one login attempt.
func buildLoginBody(creds domain.Credentials) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("username", creds.Username); err != nil {
		return nil, "", fmt.Errorf("write username: %w", err)
	}
	if err := w.WriteField("password", creds.Password); err != nil {
		return nil, "", fmt.Errorf("write password: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// ShowLogout reports whether the backend wants a logout action shown.
// Failures are returned to the caller.
func (c *Client) ShowLogout(ctx context.Context) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, pathEnableLogout, nil, "")
	if err != nil {
		return false, fmt.Errorf("enable logout: %w", err)
	}
	defer drain(resp)

	if !isSuccess(resp.StatusCode) {
		return false, &domain.HTTPError{StatusCode: resp.StatusCode, Status: reasonPhrase(resp)}
	}

	var show bool
	if err := json.NewDecoder(resp.Body).Decode(&show); err != nil {
		return false, fmt.Errorf("enable logout: decode: %w", err)
	}
	return show, nil
}
