package driven

import (
	"context"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
)

// BackendClient is the single boundary between the client and the backend API.
//
// Expected failures (non-2xx statuses, malformed bodies, network errors) are
// folded into the returned values. Only RequestImage and ShowLogout return
// errors, and callers must handle them.
type BackendClient interface {
	// SendChat posts a chat request. The result is never nil; on failure
	// IsSuccessful is false and Response holds a synthesized answer.
	SendChat(ctx context.Context, req domain.ChatRequest) domain.ChatResult

	// ListDocuments returns the known documents.
	// ok is false when the list could not be fetched, which is distinct
	// from an empty list.
	ListDocuments(ctx context.Context) (docs []domain.DocumentDescriptor, ok bool)

	// UploadDocuments streams files as one multipart request.
	// Each file is limited to maxSizePerFile bytes. Never returns nil.
	UploadDocuments(ctx context.Context, files []domain.UploadFile, maxSizePerFile int64) *domain.UploadResult

	// Authenticate exchanges credentials for a token.
	// Returns nil when the backend rejects them.
	Authenticate(ctx context.Context, creds domain.Credentials) *domain.AuthToken

	// RequestImage asks for generated images.
	RequestImage(ctx context.Context, req domain.PromptRequest) (*domain.ImageResponse, error)

	// ShowLogout reports whether the backend wants a logout action shown.
	ShowLogout(ctx context.Context) (bool, error)
}

// TokenHolder accepts the bearer token used for subsequent requests.
type TokenHolder interface {
	// SetToken replaces the bearer token. Empty clears it.
	SetToken(token string)

	// Token returns the current bearer token.
	Token() string
}
