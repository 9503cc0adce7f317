// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - BackendClient: Talks to the chat and document backend
//   - ConfigStore: Application configuration
//   - Notifier: Transient user-visible success and failure messages
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - DocumentViewer: Opens documents and citations. Without it, opening is an error.
//   - TokenInspector: Reads token claims for display. Without it, claims are not shown.
//   - FileWatcher: Reports changed files for watched uploads.
//   - SessionStore: Keeps conversations for surfaces that serve many clients.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
