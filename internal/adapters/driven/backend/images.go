package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
)

// RequestImage asks for generated images. Failures are returned to the caller.
func (c *Client) RequestImage(ctx context.Context, req domain.PromptRequest) (*domain.ImageResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("images: encode: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, pathImages, bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, fmt.Errorf("images: %w", err)
	}
	defer drain(resp)

	if !isSuccess(resp.StatusCode) {
		return nil, &domain.HTTPError{StatusCode: resp.StatusCode, Status: reasonPhrase(resp)}
	}

	var images domain.ImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&images); err != nil {
		return nil, fmt.Errorf("images: decode: %w", err)
	}
	return &images, nil
}
