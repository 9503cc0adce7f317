package driving

import (
	"context"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
)

// ImageService generates images from a text prompt.
type ImageService interface {
	// Generate returns the generated image URLs.
	// Transport failures are returned as errors.
	Generate(ctx context.Context, prompt string) (*domain.ImageResponse, error)
}
