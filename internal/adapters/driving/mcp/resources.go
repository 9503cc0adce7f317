package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for omniq resources.
	uriScheme = "omniq://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Documents != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "documents",
			Name:        "documents",
			Description: "Documents uploaded to the backend",
			MIMEType:    "application/json",
		}, s.handleDocumentsResource)
	}

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "conversations/{sessionId}",
		Name:        "conversation",
		Description: "Questions and answers of an ask session",
		MIMEType:    "application/json",
	}, s.handleConversationResource)
}

// handleDocumentsResource returns the document list as JSON.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	_, output, err := s.handleListDocuments(ctx, nil, ListDocumentsInput{})
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, output.Documents)
}

// handleConversationResource returns the history of one session.
func (s *Server) handleConversationResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractSessionID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	session, ok := s.ports.Sessions.Get(id)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	type turn struct {
		Question string    `json:"question"`
		Answer   string    `json:"answer,omitempty"`
		Error    bool      `json:"error,omitempty"`
		AskedAt  time.Time `json:"asked_at"`
	}

	history := session.History()
	turns := make([]turn, len(history))
	for i, ex := range history {
		turns[i] = turn{Question: ex.Question, AskedAt: ex.AskedAt}
		if ex.Answer != nil {
			turns[i].Answer = ex.Answer.Answer
			turns[i].Error = ex.Answer.IsError()
		}
	}
	return jsonResource(req.Params.URI, turns)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSessionID extracts the session ID from a URI like omniq://conversations/{sessionId}.
func extractSessionID(uri string) string {
	const prefix = uriScheme + "conversations/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
