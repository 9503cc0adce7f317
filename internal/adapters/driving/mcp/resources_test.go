package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
)

func TestExtractSessionID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid conversation URI",
			uri:      "omniq://conversations/0b6c3f2e",
			expected: "0b6c3f2e",
		},
		{
			name:     "invalid prefix",
			uri:      "file://conversations/0b6c3f2e",
			expected: "",
		},
		{
			name:     "documents URI",
			uri:      "omniq://documents",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractSessionID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	ports := testPorts(nil, nil)
	ports.Documents = &mockDocumentCoordinator{docs: []domain.DocumentDescriptor{
		{Name: "Benefits.pdf", Size: 1024},
	}}
	server, err := NewServer(ports)
	require.NoError(t, err)

	result, err := server.handleDocumentsResource(ctx, readRequest("omniq://documents"))
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)

	var docs []DocumentOutput
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "Benefits.pdf", docs[0].Name)
	assert.Equal(t, int64(1024), docs[0].Size)
}

func TestServer_handleConversationResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the session history", func(t *testing.T) {
		server, err := NewServer(testPorts(&domain.ApproachResponse{Answer: "Yes."}, nil))
		require.NoError(t, err)

		_, asked, err := server.handleAsk(ctx, nil, AskInput{Question: "Is dental covered?"})
		require.NoError(t, err)

		result, err := server.handleConversationResource(ctx, readRequest("omniq://conversations/"+asked.SessionID))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)

		var turns []struct {
			Question string `json:"question"`
			Answer   string `json:"answer"`
			Error    bool   `json:"error"`
		}
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &turns))
		require.Len(t, turns, 1)
		assert.Equal(t, "Is dental covered?", turns[0].Question)
		assert.Equal(t, "Yes.", turns[0].Answer)
		assert.False(t, turns[0].Error)
	})

	t.Run("unknown session is not found", func(t *testing.T) {
		server, err := NewServer(testPorts(nil, nil))
		require.NoError(t, err)

		_, err = server.handleConversationResource(ctx, readRequest("omniq://conversations/missing"))

		assert.Error(t, err)
	})

	t.Run("malformed URI is not found", func(t *testing.T) {
		server, err := NewServer(testPorts(nil, nil))
		require.NoError(t, err)

		_, err = server.handleConversationResource(ctx, readRequest("omniq://other"))

		assert.Error(t, err)
	})
}
