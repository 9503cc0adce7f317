package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/custodia-labs/omniq-cli/internal/core/ports/driven"
)

// Ensure SessionRegistry implements the interface.
var _ driven.SessionStore[any] = (*SessionRegistry[any])(nil)

// Default session lifetimes.
const (
	DefaultSessionIdle    = 1 * time.Hour
	DefaultSessionCleanup = 10 * time.Minute
)

// SessionRegistry keeps values keyed by session id and expires idle ones.
type SessionRegistry[T any] struct {
	cache *cache.Cache
}

// NewSessionRegistry creates a registry. Entries untouched for idle are
// dropped; the janitor runs every cleanup.
func NewSessionRegistry[T any](idle, cleanup time.Duration) *SessionRegistry[T] {
	return &SessionRegistry[T]{
		cache: cache.New(idle, cleanup),
	}
}

// Get returns the value and refreshes its expiry.
func (r *SessionRegistry[T]) Get(id string) (T, bool) {
	var zero T
	v, ok := r.cache.Get(id)
	if !ok {
		return zero, false
	}
	value, ok := v.(T)
	if !ok {
		return zero, false
	}
	r.cache.Set(id, value, cache.DefaultExpiration)
	return value, true
}

// Put stores or replaces a value.
func (r *SessionRegistry[T]) Put(id string, value T) {
	r.cache.Set(id, value, cache.DefaultExpiration)
}

// Delete removes a value.
func (r *SessionRegistry[T]) Delete(id string) {
	r.cache.Delete(id)
}

// Len returns the number of live entries.
func (r *SessionRegistry[T]) Len() int {
	return r.cache.ItemCount()
}

// OnEvicted registers fn to run when an entry expires or is deleted.
func (r *SessionRegistry[T]) OnEvicted(fn func(id string, value T)) {
	r.cache.OnEvicted(func(id string, v any) {
		if value, ok := v.(T); ok {
			fn(id, value)
		}
	})
}
