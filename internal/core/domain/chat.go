package domain

import "time"

const unknownDescription = "Unknown"

// Approach selects the backend retrieval/answering strategy for a request.
type Approach string

// Available approaches.
const (
	// ApproachRetrieveThenRead retrieves sources once and answers from them.
	ApproachRetrieveThenRead Approach = "RetrieveThenRead"

	// ApproachReadRetrieveRead rewrites the question before retrieval.
	ApproachReadRetrieveRead Approach = "ReadRetrieveRead"

	// ApproachReadDecomposeAsk decomposes the question into sub-questions.
	ApproachReadDecomposeAsk Approach = "ReadDecomposeAsk"
)

// IsValid returns true if the approach is recognised.
func (a Approach) IsValid() bool {
	switch a {
	case ApproachRetrieveThenRead, ApproachReadRetrieveRead, ApproachReadDecomposeAsk:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (a Approach) String() string {
	return string(a)
}

// Description returns a human-readable description of the approach.
func (a Approach) Description() string {
	switch a {
	case ApproachRetrieveThenRead:
		return "Retrieve-Then-Read"
	case ApproachReadRetrieveRead:
		return "Read-Retrieve-Read"
	case ApproachReadDecomposeAsk:
		return "Read-Decompose-Ask"
	default:
		return unknownDescription
	}
}

// RetrievalMode defines how source documents are searched.
type RetrievalMode string

// Available retrieval modes.
const (
	// RetrievalModeText uses only the query text to retrieve results.
	RetrievalModeText RetrievalMode = "Text"

	// RetrievalModeVector uses only embeddings to retrieve results.
	RetrievalModeVector RetrievalMode = "Vector"

	// RetrievalModeHybrid uses both query text and embeddings.
	RetrievalModeHybrid RetrievalMode = "Hybrid"
)

// IsValid returns true if the retrieval mode is recognised.
func (m RetrievalMode) IsValid() bool {
	switch m {
	case RetrievalModeText, RetrievalModeVector, RetrievalModeHybrid:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m RetrievalMode) String() string {
	return string(m)
}

// RequestOverrides controls retrieval behaviour for a request.
// Nil pointer fields are omitted and left to the backend.
type RequestOverrides struct {
	RetrievalMode            RetrievalMode `json:"retrievalMode"`
	SemanticRanker           bool          `json:"semanticRanker"`
	SemanticCaptions         *bool         `json:"semanticCaptions,omitempty"`
	ExcludeCategory          *string       `json:"excludeCategory,omitempty"`
	Top                      *int          `json:"top,omitempty"`
	Temperature              *int          `json:"temperature,omitempty"`
	PromptTemplate           *string       `json:"promptTemplate,omitempty"`
	PromptTemplatePrefix     *string       `json:"promptTemplatePrefix,omitempty"`
	PromptTemplateSuffix     *string       `json:"promptTemplateSuffix,omitempty"`
	SuggestFollowupQuestions bool          `json:"suggestFollowupQuestions"`
}

// DefaultRequestOverrides returns the overrides used when nothing is configured.
func DefaultRequestOverrides() RequestOverrides {
	top := 3
	return RequestOverrides{
		RetrievalMode:            RetrievalModeVector,
		SemanticRanker:           false,
		Top:                      &top,
		SuggestFollowupQuestions: true,
	}
}

// RequestSettings is the approach plus overrides applied to every request
// of a conversation.
type RequestSettings struct {
	Approach  Approach
	Overrides RequestOverrides
}

// DefaultRequestSettings returns the settings a new session starts with.
func DefaultRequestSettings() RequestSettings {
	return RequestSettings{
		Approach:  ApproachReadRetrieveRead,
		Overrides: DefaultRequestOverrides(),
	}
}

// ChatTurn is one exchange as sent to the backend.
// Bot is nil for the turn being asked.
type ChatTurn struct {
	User string  `json:"user"`
	Bot  *string `json:"bot"`
}

// NewChatTurn creates a completed turn.
func NewChatTurn(user, bot string) ChatTurn {
	return ChatTurn{User: user, Bot: &bot}
}

// ApproachRequest is satisfied by every request shape that carries an approach.
type ApproachRequest interface {
	RequestApproach() Approach
}

// ChatRequest is the body of a chat call. It is sent verbatim.
type ChatRequest struct {
	History   []ChatTurn        `json:"history"`
	Approach  Approach          `json:"approach"`
	Overrides *RequestOverrides `json:"overrides,omitempty"`
}

// RequestApproach returns the approach the request was built with.
func (r ChatRequest) RequestApproach() Approach {
	return r.Approach
}

// LastUserQuestion returns the user text of the last turn, or empty.
func (r ChatRequest) LastUserQuestion() string {
	if len(r.History) == 0 {
		return ""
	}
	return r.History[len(r.History)-1].User
}

// Exchange is one entry of a conversation held by a session.
// Answer is nil while the question is in flight.
type Exchange struct {
	Question string
	Answer   *ApproachResponse
	AskedAt  time.Time
}

// Pending returns true if the exchange is still awaiting its answer.
func (e Exchange) Pending() bool {
	return e.Answer == nil
}

// Turn converts a completed exchange into the wire form.
// A pending exchange becomes a user-only turn.
func (e Exchange) Turn() ChatTurn {
	if e.Answer == nil {
		return ChatTurn{User: e.Question}
	}
	return NewChatTurn(e.Question, e.Answer.Answer)
}

// SessionState is the state of a conversation session.
type SessionState int

// Session states.
const (
	SessionIdle SessionState = iota
	SessionAwaitingResponse
)

// String returns a human-readable state.
func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "Idle"
	case SessionAwaitingResponse:
		return "AwaitingResponse"
	default:
		return unknownDescription
	}
}
