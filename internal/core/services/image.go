package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driving"
)

// Ensure ImageService implements the interface.
var _ driving.ImageService = (*ImageService)(nil)

// ImageService requests generated images from the backend.
type ImageService struct {
	backend driven.BackendClient
}

// NewImageService creates a new image service.
func NewImageService(backend driven.BackendClient) *ImageService {
	return &ImageService{backend: backend}
}

// Generate returns the generated image URLs.
func (s *ImageService) Generate(ctx context.Context, prompt string) (*domain.ImageResponse, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is empty", domain.ErrInvalidInput)
	}
	if s.backend == nil {
		return nil, fmt.Errorf("image backend: %w", domain.ErrNotConfigured)
	}

	resp, err := s.backend.RequestImage(ctx, domain.PromptRequest{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}
	return resp, nil
}
