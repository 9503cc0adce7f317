package domain

import (
	"fmt"
	"time"
)

// Default backend configuration.
const (
	DefaultBaseURL        = "http://localhost:8080/"
	DefaultTimeoutSeconds = 120
	DefaultUploadPattern  = "**/*.pdf"
)

// BackendSettings holds how the client reaches the backend.
type BackendSettings struct {
	// BaseURL is the root every API path is resolved against.
	BaseURL string

	// TimeoutSeconds bounds each request. Zero disables the timeout.
	TimeoutSeconds int

	// RequestsPerSecond throttles outgoing requests. Zero is unlimited.
	RequestsPerSecond float64

	// Token is the bearer token attached to requests, if any.
	Token string
}

// Timeout returns the request timeout as a duration.
func (b BackendSettings) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// UploadSettings holds document upload behaviour.
type UploadSettings struct {
	// MaxFileSize is the per-file ceiling in bytes.
	MaxFileSize int64

	// Patterns select files for directory uploads and watching.
	Patterns []string
}

// Ceiling returns the effective per-file ceiling.
func (u UploadSettings) Ceiling() int64 {
	if u.MaxFileSize <= 0 {
		return DefaultMaxUploadFileSize
	}
	return u.MaxFileSize
}

// AppSettings is the full client configuration.
type AppSettings struct {
	Backend BackendSettings
	Chat    RequestSettings
	Upload  UploadSettings

	// LogFile receives a JSON copy of every log line when set.
	LogFile string
}

// DefaultAppSettings returns settings with every default applied.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Backend: BackendSettings{
			BaseURL:        DefaultBaseURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Chat: DefaultRequestSettings(),
		Upload: UploadSettings{
			MaxFileSize: DefaultMaxUploadFileSize,
			Patterns:    []string{DefaultUploadPattern},
		},
	}
}

// Validate checks the settings for values the client cannot work with.
func (s AppSettings) Validate() error {
	if s.Backend.BaseURL == "" {
		return fmt.Errorf("%w: backend base URL is empty", ErrInvalidInput)
	}
	if s.Backend.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidInput)
	}
	if s.Backend.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests per second must not be negative", ErrInvalidInput)
	}
	if !s.Chat.Approach.IsValid() {
		return fmt.Errorf("%w: unknown approach %q", ErrInvalidInput, s.Chat.Approach)
	}
	if !s.Chat.Overrides.RetrievalMode.IsValid() {
		return fmt.Errorf("%w: unknown retrieval mode %q", ErrInvalidInput, s.Chat.Overrides.RetrievalMode)
	}
	if s.Chat.Overrides.Top != nil && *s.Chat.Overrides.Top < 1 {
		return fmt.Errorf("%w: top must be at least 1", ErrInvalidInput)
	}
	if s.Upload.MaxFileSize < 0 {
		return fmt.Errorf("%w: max file size must not be negative", ErrInvalidInput)
	}
	return nil
}
