package domain

import "fmt"

// ChatFailureMessage is recorded as the error of a synthesized answer.
const ChatFailureMessage = "Unable to retrieve valid response from the server."

// SupportingContent is one retrieved text source.
type SupportingContent struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SupportingImage is one retrieved image source.
type SupportingImage struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ApproachResponse is the backend answer to an approach request.
type ApproachResponse struct {
	Answer          string              `json:"answer"`
	Thoughts        *string             `json:"thoughts,omitempty"`
	DataPoints      []SupportingContent `json:"data_points"`
	Images          []SupportingImage   `json:"images,omitempty"`
	CitationBaseURL string              `json:"citation_base_url"`
	Error           *string             `json:"error,omitempty"`
}

// IsError returns true if the response carries an error.
func (r *ApproachResponse) IsError() bool {
	return r != nil && r.Error != nil
}

// NewFailureResponse synthesizes the client-side answer shown when the
// backend could not produce one. DataPoints is empty, never nil.
func NewFailureResponse(answer string) *ApproachResponse {
	msg := ChatFailureMessage
	return &ApproachResponse{
		Answer:     answer,
		DataPoints: []SupportingContent{},
		Error:      &msg,
	}
}

// NewHTTPFailureResponse synthesizes the answer for a non-2xx status.
func NewHTTPFailureResponse(status int, reason string) *ApproachResponse {
	if reason == "" {
		reason = "Unknown error..."
	}
	return NewFailureResponse(fmt.Sprintf("HTTP %d : %s", status, reason))
}

// AnswerResult wraps every transport outcome of an approach request.
type AnswerResult[T ApproachRequest] struct {
	IsSuccessful bool
	Response     *ApproachResponse
	Approach     Approach
	Request      T
}

// ChatResult is the outcome of a chat request.
type ChatResult = AnswerResult[ChatRequest]
