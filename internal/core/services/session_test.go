package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
)

func newTestSession(backend *mockBackend) *ConversationSession {
	return NewConversationSession(backend, domain.DefaultRequestSettings())
}

// pendingCount returns the number of exchanges still awaiting an answer.
func pendingCount(history []domain.Exchange) int {
	n := 0
	for _, e := range history {
		if e.Pending() {
			n++
		}
	}
	return n
}

func TestConversationSession_SubmitBuildsFullHistory(t *testing.T) {
	backend := &mockBackend{}
	session := newTestSession(backend)
	ctx := context.Background()

	questions := []string{"first?", "second?", "third?"}
	for _, q := range questions {
		_, err := session.Submit(ctx, q)
		require.NoError(t, err)
	}

	reqs := backend.requests()
	require.Len(t, reqs, len(questions))

	for i, req := range reqs {
		// i completed prior turns followed by one user-only turn.
		require.Len(t, req.History, i+1)
		for j, turn := range req.History[:i] {
			assert.Equal(t, questions[j], turn.User)
			require.NotNil(t, turn.Bot, "completed turn %d must carry an answer", j)
			assert.Equal(t, "ok", *turn.Bot)
		}
		last := req.History[i]
		assert.Equal(t, questions[i], last.User)
		assert.Nil(t, last.Bot)
		assert.Equal(t, domain.ApproachReadRetrieveRead, req.Approach)
		require.NotNil(t, req.Overrides)
	}
}

func TestConversationSession_AtMostOnePendingLast(t *testing.T) {
	release := make(chan struct{})
	inFlight := make(chan struct{})
	backend := &mockBackend{
		chatFn: func(_ context.Context, req domain.ChatRequest) domain.ChatResult {
			if req.LastUserQuestion() == "slow" {
				close(inFlight)
				<-release
			}
			return answered(req, "ok")
		},
	}
	session := newTestSession(backend)
	ctx := context.Background()

	_, err := session.Submit(ctx, "fast")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := session.Submit(ctx, "slow")
		done <- err
	}()
	<-inFlight

	history := session.History()
	require.Len(t, history, 2)
	assert.Equal(t, 1, pendingCount(history))
	assert.True(t, history[len(history)-1].Pending())
	assert.Equal(t, domain.SessionAwaitingResponse, session.State())

	_, err = session.Submit(ctx, "impatient")
	require.ErrorIs(t, err, domain.ErrSessionBusy)
	assert.Len(t, session.History(), 2)

	close(release)
	require.NoError(t, <-done)

	history = session.History()
	assert.Equal(t, 0, pendingCount(history))
	assert.Equal(t, domain.SessionIdle, session.State())
}

func TestConversationSession_SubmitBlankIsNoOp(t *testing.T) {
	backend := &mockBackend{}
	session := newTestSession(backend)
	ctx := context.Background()

	_, err := session.Submit(ctx, "hello")
	require.NoError(t, err)
	before := session.History()

	for _, q := range []string{"", "   ", "\t\n"} {
		exchange, err := session.Submit(ctx, q)
		require.NoError(t, err)
		assert.Nil(t, exchange)
	}

	assert.Equal(t, before, session.History())
	assert.Equal(t, domain.SessionIdle, session.State())
	assert.Len(t, backend.requests(), 1)
}

func TestConversationSession_ClearFromAnyState(t *testing.T) {
	t.Run("idle", func(t *testing.T) {
		session := newTestSession(&mockBackend{})
		_, err := session.Submit(context.Background(), "q")
		require.NoError(t, err)
		session.SetInput("draft")

		session.Clear()

		assert.Empty(t, session.History())
		assert.Equal(t, domain.SessionIdle, session.State())
		assert.Empty(t, session.Input())
		assert.Empty(t, session.LastQuestion())
	})

	t.Run("awaiting response", func(t *testing.T) {
		release := make(chan struct{})
		inFlight := make(chan struct{})
		backend := &mockBackend{
			chatFn: func(_ context.Context, req domain.ChatRequest) domain.ChatResult {
				close(inFlight)
				<-release
				return answered(req, "late")
			},
		}
		session := newTestSession(backend)

		done := make(chan error, 1)
		go func() {
			_, err := session.Submit(context.Background(), "q")
			done <- err
		}()
		<-inFlight

		session.Clear()
		assert.Empty(t, session.History())
		assert.Equal(t, domain.SessionIdle, session.State())

		close(release)
		assert.ErrorIs(t, <-done, domain.ErrConversationCleared)
		assert.Empty(t, session.History(), "late answer must not reappear")
	})
}

func TestConversationSession_FailureKeepsInput(t *testing.T) {
	backend := &mockBackend{
		chatFn: func(_ context.Context, req domain.ChatRequest) domain.ChatResult {
			return domain.ChatResult{
				Response: domain.NewHTTPFailureResponse(500, "Internal Server Error"),
				Approach: req.Approach,
				Request:  req,
			}
		},
	}
	session := newTestSession(backend)
	session.SetInput("why?")

	exchange, err := session.Submit(context.Background(), "why?")
	require.NoError(t, err)
	require.NotNil(t, exchange.Answer)
	assert.True(t, exchange.Answer.IsError())
	assert.Equal(t, "HTTP 500 : Internal Server Error", exchange.Answer.Answer)
	assert.Equal(t, "why?", session.Input())
	assert.Equal(t, "why?", session.LastQuestion())
	assert.Equal(t, domain.SessionIdle, session.State())
}

func TestConversationSession_SuccessClearsInput(t *testing.T) {
	session := newTestSession(&mockBackend{})
	session.SetInput("hi")

	exchange, err := session.Submit(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", exchange.Answer.Answer)
	assert.Empty(t, session.Input())
	assert.Equal(t, "hi", session.LastQuestion())
}

func TestConversationSession_NilResponseIsSynthesized(t *testing.T) {
	backend := &mockBackend{
		chatFn: func(_ context.Context, req domain.ChatRequest) domain.ChatResult {
			return domain.ChatResult{IsSuccessful: false, Request: req}
		},
	}
	session := newTestSession(backend)

	exchange, err := session.Submit(context.Background(), "q")
	require.NoError(t, err)
	require.NotNil(t, exchange.Answer)
	assert.True(t, exchange.Answer.IsError())
	assert.Equal(t, 0, pendingCount(session.History()))
}

func TestConversationSession_NoBackend(t *testing.T) {
	session := NewConversationSession(nil, domain.DefaultRequestSettings())

	_, err := session.Submit(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.Empty(t, session.History())
}

func TestConversationSession_AskedAt(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	session := newTestSession(&mockBackend{})
	session.now = func() time.Time { return fixed }

	exchange, err := session.Submit(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, fixed, exchange.AskedAt)
}

func TestConversationSession_SetSettings(t *testing.T) {
	backend := &mockBackend{}
	session := newTestSession(backend)

	top := 7
	settings := domain.RequestSettings{
		Approach: domain.ApproachRetrieveThenRead,
		Overrides: domain.RequestOverrides{
			RetrievalMode: domain.RetrievalModeHybrid,
			Top:           &top,
		},
	}
	require.NoError(t, session.SetSettings(settings))
	assert.Equal(t, settings, session.Settings())

	_, err := session.Submit(context.Background(), "q")
	require.NoError(t, err)
	req := backend.requests()[0]
	assert.Equal(t, domain.ApproachRetrieveThenRead, req.Approach)
	assert.Equal(t, domain.RetrievalModeHybrid, req.Overrides.RetrievalMode)
	assert.Equal(t, 7, *req.Overrides.Top)

	tests := []struct {
		name     string
		settings domain.RequestSettings
	}{
		{"unknown approach", domain.RequestSettings{Approach: "Guess", Overrides: domain.DefaultRequestOverrides()}},
		{"unknown mode", domain.RequestSettings{
			Approach:  domain.ApproachReadRetrieveRead,
			Overrides: domain.RequestOverrides{RetrievalMode: "Psychic"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := session.SetSettings(tt.settings)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Equal(t, settings, session.Settings())
		})
	}
}
