package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driving"
	"github.com/custodia-labs/omniq-cli/internal/logger"
)

// Ensure ConversationSession implements the interface.
var _ driving.ChatSession = (*ConversationSession)(nil)

// ConversationSession owns the history of one chat thread.
//
// The history holds at most one pending exchange and it is always last.
// Submit releases the lock while the backend call is in flight, so Clear
// and the read-side accessors stay responsive.
type ConversationSession struct {
	backend driven.BackendClient
	now     func() time.Time

	mu           sync.Mutex
	history      []domain.Exchange
	state        domain.SessionState
	input        string
	lastQuestion string
	settings     domain.RequestSettings

	// generation is bumped by Clear so late answers can be recognised.
	generation uint64
}

// NewConversationSession creates an idle session with the given request settings.
func NewConversationSession(backend driven.BackendClient, settings domain.RequestSettings) *ConversationSession {
	return &ConversationSession{
		backend:  backend,
		now:      time.Now,
		settings: settings,
	}
}

// Submit asks a question with the full prior history.
func (s *ConversationSession) Submit(ctx context.Context, question string) (*domain.Exchange, error) {
	if strings.TrimSpace(question) == "" {
		return nil, nil
	}
	if s.backend == nil {
		return nil, fmt.Errorf("chat backend: %w", domain.ErrNotConfigured)
	}

	s.mu.Lock()
	if s.state == domain.SessionAwaitingResponse {
		s.mu.Unlock()
		return nil, domain.ErrSessionBusy
	}
	req := s.buildRequest(question)
	s.history = append(s.history, domain.Exchange{Question: question, AskedAt: s.now()})
	s.state = domain.SessionAwaitingResponse
	s.lastQuestion = question
	gen := s.generation
	s.mu.Unlock()

	logger.Section("Chat")
	logger.Debug("Question: %q", question)
	logger.Debug("Prior turns: %d, approach: %s", len(req.History)-1, req.Approach)

	result := s.backend.SendChat(ctx, req)
	resp := result.Response
	if resp == nil {
		resp = domain.NewFailureResponse("The server returned an empty response.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		logger.Debug("Discarding answer for cleared conversation")
		return nil, domain.ErrConversationCleared
	}

	last := len(s.history) - 1
	s.history[last].Answer = resp
	s.state = domain.SessionIdle
	if result.IsSuccessful {
		s.input = ""
	} else {
		logger.Warn("Chat failed: %s", resp.Answer)
	}

	exchange := s.history[last]
	return &exchange, nil
}

// buildRequest maps every completed exchange to a turn and appends the
// new user-only turn (caller must hold lock).
func (s *ConversationSession) buildRequest(question string) domain.ChatRequest {
	turns := make([]domain.ChatTurn, 0, len(s.history)+1)
	for _, e := range s.history {
		turns = append(turns, e.Turn())
	}
	turns = append(turns, domain.ChatTurn{User: question})

	overrides := s.settings.Overrides
	return domain.ChatRequest{
		History:   turns,
		Approach:  s.settings.Approach,
		Overrides: &overrides,
	}
}

// Clear resets history, pending state and input.
func (s *ConversationSession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = nil
	s.state = domain.SessionIdle
	s.input = ""
	s.lastQuestion = ""
	s.generation++
}

// History returns a copy of the conversation.
func (s *ConversationSession) History() []domain.Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Exchange, len(s.history))
	copy(out, s.history)
	return out
}

// State returns whether a question is in flight.
func (s *ConversationSession) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Input returns the text being edited.
func (s *ConversationSession) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// SetInput replaces the text being edited.
func (s *ConversationSession) SetInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = text
}

// LastQuestion returns the most recently submitted question.
func (s *ConversationSession) LastQuestion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuestion
}

// Settings returns the approach and overrides used for requests.
func (s *ConversationSession) Settings() domain.RequestSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetSettings replaces the approach and overrides for later requests.
func (s *ConversationSession) SetSettings(settings domain.RequestSettings) error {
	if !settings.Approach.IsValid() {
		return fmt.Errorf("%w: unknown approach %q", domain.ErrInvalidInput, settings.Approach)
	}
	if !settings.Overrides.RetrievalMode.IsValid() {
		return fmt.Errorf("%w: unknown retrieval mode %q", domain.ErrInvalidInput, settings.Overrides.RetrievalMode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}
