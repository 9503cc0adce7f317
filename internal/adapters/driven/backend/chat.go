package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
)

// SendChat posts a chat request and wraps every outcome in a ChatResult.
func (c *Client) SendChat(ctx context.Context, req domain.ChatRequest) domain.ChatResult {
	return postApproach(ctx, c, pathChat, req)
}

// postApproach posts any approach request and folds failures into a
// synthesized response, so callers never see transport errors.
func postApproach[T domain.ApproachRequest](ctx context.Context, c *Client, path string, req T) domain.AnswerResult[T] {
	result := domain.AnswerResult[T]{
		IsSuccessful: false,
		Approach:     req.RequestApproach(),
		Request:      req,
	}

	body, err := json.Marshal(req)
	if err != nil {
		result.Response = domain.NewFailureResponse(fmt.Sprintf("Unable to encode the request: %v", err))
		return result
	}

	resp, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(body), "application/json")
	if err != nil {
		result.Response = domain.NewFailureResponse(fmt.Sprintf("Unable to reach the server: %v", err))
		return result
	}
	defer drain(resp)

	if !isSuccess(resp.StatusCode) {
		result.Response = domain.NewHTTPFailureResponse(resp.StatusCode, reasonPhrase(resp))
		return result
	}

	var answer *domain.ApproachResponse
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		result.Response = domain.NewFailureResponse(fmt.Sprintf("Unable to read the server response: %v", err))
		return result
	}

	result.Response = answer
	result.IsSuccessful = answer != nil
	return result
}
