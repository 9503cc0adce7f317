package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured indicates a required collaborator is missing.
	ErrNotConfigured = errors.New("not configured")

	// ErrSessionBusy indicates a question is already awaiting its answer.
	// Only one pending turn is allowed per conversation.
	ErrSessionBusy = errors.New("a question is already awaiting a response")

	// ErrConversationCleared indicates the conversation was cleared while
	// a question was in flight. The late answer is discarded.
	ErrConversationCleared = errors.New("conversation cleared before the answer arrived")

	// ErrDocumentsUnavailable indicates the document list could not be fetched.
	ErrDocumentsUnavailable = errors.New("document list unavailable")

	// ErrCoordinatorClosed indicates the owning surface was torn down.
	ErrCoordinatorClosed = errors.New("document coordinator closed")

	// ErrUnauthorized indicates the backend rejected the credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrFileTooLarge indicates an upload exceeded the per-file ceiling.
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
)

// HTTPError is returned by operations that do not fold transport failures.
type HTTPError struct {
	StatusCode int
	Status     string
}

// Error implements error.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend returned HTTP %d: %s", e.StatusCode, e.Status)
}
