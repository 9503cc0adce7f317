package driven

// Notifier shows transient user-visible messages.
type Notifier interface {
	// Success reports a completed action.
	Success(message string)

	// Error reports a failed action.
	Error(message string)
}
