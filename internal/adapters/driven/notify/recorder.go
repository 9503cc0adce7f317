package notify

import (
	"sync"
	"time"

	"github.com/custodia-labs/omniq-cli/internal/core/ports/driven"
)

// Ensure Recorder implements the Notifier interface.
var _ driven.Notifier = (*Recorder)(nil)

// Notification is one recorded message.
type Notification struct {
	Message string
	IsError bool
	At      time.Time
}

// Recorder keeps notifications until they are drained.
type Recorder struct {
	mu      sync.Mutex
	pending []Notification
	now     func() time.Time
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Success implements driven.Notifier.
func (r *Recorder) Success(message string) {
	r.add(message, false)
}

// Error implements driven.Notifier.
func (r *Recorder) Error(message string) {
	r.add(message, true)
}

func (r *Recorder) add(message string, isError bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, Notification{Message: message, IsError: isError, At: r.now()})
}

// Drain returns and forgets every recorded notification, oldest first.
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.pending
	r.pending = nil
	return out
}

// Latest returns the most recent notification without draining.
func (r *Recorder) Latest() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pending) == 0 {
		return Notification{}, false
	}
	return r.pending[len(r.pending)-1], true
}
