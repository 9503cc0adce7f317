// Package domain defines the core entities for omniq.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ChatRequest / ChatTurn: What is sent to the backend for one question
//   - ApproachResponse / AnswerResult: What comes back, success or failure
//   - Exchange: One entry of a conversation held by a session
//   - DocumentDescriptor / UploadResult: The document library
//   - ParsedAnswer: An answer split into text and resolved citations
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
