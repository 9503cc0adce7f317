package driven

// SessionStore keeps values keyed by session id.
// Entries may expire when idle.
type SessionStore[T any] interface {
	// Get returns the value and refreshes its expiry.
	Get(id string) (T, bool)

	// Put stores or replaces a value.
	Put(id string, value T)

	// Delete removes a value. Missing ids are ignored.
	Delete(id string)

	// Len returns the number of live entries.
	Len() int

	// OnEvicted registers fn to run when an entry expires or is deleted.
	OnEvicted(fn func(id string, value T))
}
