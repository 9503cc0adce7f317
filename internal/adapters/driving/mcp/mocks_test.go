package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/omniq-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driving"
)

// mockChatSession is a mock implementation of driving.ChatSession.
type mockChatSession struct {
	answer  *domain.ApproachResponse
	err     error
	history []domain.Exchange
	cleared int
}

func (m *mockChatSession) Submit(_ context.Context, question string) (*domain.Exchange, error) {
	if m.err != nil {
		return nil, m.err
	}
	ex := domain.Exchange{Question: question, Answer: m.answer, AskedAt: time.Now()}
	m.history = append(m.history, ex)
	return &ex, nil
}

func (m *mockChatSession) Clear() {
	m.cleared++
	m.history = nil
}

func (m *mockChatSession) History() []domain.Exchange {
	return append([]domain.Exchange(nil), m.history...)
}

func (m *mockChatSession) State() domain.SessionState {
	return domain.SessionIdle
}

func (m *mockChatSession) Input() string {
	return ""
}

func (m *mockChatSession) SetInput(string) {}

func (m *mockChatSession) LastQuestion() string {
	if len(m.history) == 0 {
		return ""
	}
	return m.history[len(m.history)-1].Question
}

func (m *mockChatSession) Settings() domain.RequestSettings {
	return domain.DefaultRequestSettings()
}

func (m *mockChatSession) SetSettings(domain.RequestSettings) error {
	return nil
}

// mockDocumentCoordinator is a mock implementation of driving.DocumentCoordinator.
type mockDocumentCoordinator struct {
	docs       []domain.DocumentDescriptor
	refreshErr error
}

func (m *mockDocumentCoordinator) Refresh(context.Context) error {
	return m.refreshErr
}

func (m *mockDocumentCoordinator) Documents() []domain.DocumentDescriptor {
	return m.docs
}

func (m *mockDocumentCoordinator) Filter(query string) []domain.DocumentDescriptor {
	var out []domain.DocumentDescriptor
	for _, d := range m.docs {
		if d.MatchesName(query) {
			out = append(out, d)
		}
	}
	return out
}

func (m *mockDocumentCoordinator) SubmitUpload(context.Context, []domain.UploadFile) (*domain.UploadResult, error) {
	return nil, nil
}

func (m *mockDocumentCoordinator) OpenDocument(context.Context, string) error {
	return nil
}

func (m *mockDocumentCoordinator) OpenCitation(context.Context, domain.CitationDetails) error {
	return nil
}

func (m *mockDocumentCoordinator) Close() {}

// testPorts builds ports whose factory hands out sessions answering with answer.
// created collects every session the factory made.
func testPorts(answer *domain.ApproachResponse, created *[]*mockChatSession) *Ports {
	return &Ports{
		NewSession: func() driving.ChatSession {
			s := &mockChatSession{answer: answer}
			if created != nil {
				*created = append(*created, s)
			}
			return s
		},
		Sessions: memory.NewSessionRegistry[driving.ChatSession](time.Hour, 0),
	}
}
