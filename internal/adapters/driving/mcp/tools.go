package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driving"
	"github.com/custodia-labs/omniq-cli/internal/logger"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question  string `json:"question" jsonschema:"the question to ask about the uploaded documents"`
	SessionID string `json:"session_id,omitempty" jsonschema:"conversation to continue; omit to start a new one"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	SessionID         string           `json:"session_id"`
	Answer            string           `json:"answer"`
	Citations         []CitationOutput `json:"citations,omitempty"`
	FollowupQuestions []string         `json:"followup_questions,omitempty"`
	Thoughts          string           `json:"thoughts,omitempty"`
	Error             string           `json:"error,omitempty"`
}

// CitationOutput is one source document referenced by an answer.
type CitationOutput struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	URL    string `json:"url"`
}

// ClearInput is the input schema for the clear_conversation tool.
type ClearInput struct {
	SessionID string `json:"session_id" jsonschema:"conversation to clear"`
}

// ClearOutput is the output schema for the clear_conversation tool.
type ClearOutput struct {
	SessionID string `json:"session_id"`
	Cleared   bool   `json:"cleared"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"case-insensitive part of a document name"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput describes one uploaded document.
type DocumentOutput struct {
	Name         string `json:"name"`
	ContentType  string `json:"content_type,omitempty"`
	Size         int64  `json:"size"`
	Status       string `json:"status"`
	LastModified string `json:"last_modified,omitempty"`
	URL          string `json:"url,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question answered from the uploaded documents, with citations",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_conversation",
		Description: "Forget the history of a conversation",
	}, s.handleClear)

	if s.ports.Documents != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List the documents the backend answers from",
		}, s.handleListDocuments)
	}
}

// session returns the conversation for id, starting a new one when id is
// empty or has expired.
func (s *Server) session(id string) (string, driving.ChatSession) {
	if id != "" {
		if session, ok := s.ports.Sessions.Get(id); ok {
			return id, session
		}
		logger.Debug("mcp session %s expired, starting a new one", id)
	}
	id = uuid.NewString()
	session := s.ports.NewSession()
	s.ports.Sessions.Put(id, session)
	logger.Debug("mcp session %s started, %d live", id, s.ports.Sessions.Len())
	return id, session
}

// release drops the history of a conversation leaving the store.
func (s *Server) release(id string, session driving.ChatSession) {
	if session == nil {
		return
	}
	session.Clear()
	logger.Debug("mcp session %s released", id)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	id, session := s.session(input.SessionID)
	exchange, err := session.Submit(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{SessionID: id}
	if exchange == nil || exchange.Answer == nil {
		return nil, output, nil
	}

	resp := exchange.Answer
	if resp.IsError() {
		output.Error = resp.Answer
		return nil, output, nil
	}

	parsed := domain.ParseAnswer(resp.Answer, resp.CitationBaseURL, resp.DataPoints)
	output.Answer = parsed.PlainText()
	output.FollowupQuestions = parsed.FollowupQuestions
	if resp.Thoughts != nil {
		output.Thoughts = *resp.Thoughts
	}
	for _, c := range parsed.Citations {
		output.Citations = append(output.Citations, CitationOutput{
			Number: c.Number,
			Name:   c.Name,
			URL:    c.URL(),
		})
	}
	return nil, output, nil
}

// handleClear handles the clear_conversation tool invocation.
func (s *Server) handleClear(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ClearInput,
) (*mcp.CallToolResult, ClearOutput, error) {
	session, ok := s.ports.Sessions.Get(input.SessionID)
	if !ok {
		return nil, ClearOutput{SessionID: input.SessionID}, nil
	}
	session.Clear()
	return nil, ClearOutput{SessionID: input.SessionID, Cleared: true}, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.listDocuments(ctx, input.Filter)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i, d := range docs {
		output.Documents[i] = DocumentOutput{
			Name:        d.Name,
			ContentType: d.ContentType,
			Size:        d.Size,
			Status:      d.Status.String(),
			URL:         d.URL,
		}
		if d.LastModified != nil {
			output.Documents[i].LastModified = d.LastModified.UTC().Format(time.RFC3339)
		}
	}
	return nil, output, nil
}

func (s *Server) listDocuments(ctx context.Context, filter string) ([]domain.DocumentDescriptor, error) {
	if s.ports.Documents == nil {
		return nil, domain.ErrDocumentsUnavailable
	}
	if err := s.ports.Documents.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("refreshing documents: %w", err)
	}
	return s.ports.Documents.Filter(filter), nil
}
