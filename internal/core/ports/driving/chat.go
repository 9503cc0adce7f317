package driving

import (
	"context"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
)

// ChatSession is one conversation thread with the backend.
//
// At most one question is in flight at a time; Submit returns
// domain.ErrSessionBusy while a previous one is awaiting its answer.
type ChatSession interface {
	// Submit asks a question with the full prior history.
	// A blank question is a no-op and returns nil, nil.
	// The returned exchange holds the recorded answer, which is a
	// synthesized error answer when the backend call failed.
	Submit(ctx context.Context, question string) (*domain.Exchange, error)

	// Clear resets history, pending state and input. Always legal.
	// An answer arriving for a cleared question is discarded.
	Clear()

	// History returns a copy of the conversation.
	History() []domain.Exchange

	// State returns whether a question is in flight.
	State() domain.SessionState

	// Input returns the text being edited.
	Input() string

	// SetInput replaces the text being edited.
	SetInput(text string)

	// LastQuestion returns the most recently submitted question.
	LastQuestion() string

	// Settings returns the approach and overrides used for requests.
	Settings() domain.RequestSettings

	// SetSettings replaces the approach and overrides for later requests.
	SetSettings(settings domain.RequestSettings) error
}
