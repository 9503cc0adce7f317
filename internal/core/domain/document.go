package domain

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// DefaultMaxUploadFileSize is the per-file ceiling applied to uploads (1 MiB).
const DefaultMaxUploadFileSize int64 = 1024 * 1024

// ProcessingStatus reports how far the backend got with a document.
type ProcessingStatus int

// Processing states as reported by the backend.
const (
	StatusNotProcessed ProcessingStatus = iota
	StatusSucceeded
	StatusFailed
)

// String returns a human-readable status.
func (s ProcessingStatus) String() string {
	switch s {
	case StatusNotProcessed:
		return "Not processed"
	case StatusSucceeded:
		return "Succeeded"
	case StatusFailed:
		return "Failed"
	default:
		return unknownDescription
	}
}

// UnmarshalJSON accepts the numeric status and its name.
func (s *ProcessingStatus) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = ProcessingStatus(n)
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("processing status: %w", err)
	}
	switch strings.ToLower(name) {
	case "notprocessed":
		*s = StatusNotProcessed
	case "succeeded":
		*s = StatusSucceeded
	case "failed":
		*s = StatusFailed
	default:
		return fmt.Errorf("%w: unknown processing status %q", ErrInvalidInput, name)
	}
	return nil
}

// DocumentDescriptor describes one document known to the backend.
// Documents are unique by Name.
type DocumentDescriptor struct {
	// Name is the file name and the identity of the document.
	Name string `json:"name"`

	// ContentType is the MIME type reported at upload.
	ContentType string `json:"content_type"`

	// Size is the document size in bytes.
	Size int64 `json:"size"`

	// LastModified is when the backend last saw the document change.
	LastModified *time.Time `json:"last_modified,omitempty"`

	// Status is the processing status.
	Status ProcessingStatus `json:"status"`

	// URL is where the document can be fetched from, if published.
	URL string `json:"url,omitempty"`
}

// MatchesName reports whether the name contains filter, ignoring case.
// A blank filter matches everything.
func (d DocumentDescriptor) MatchesName(filter string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(d.Name), strings.ToLower(filter))
}

// UploadFile is one file picked for upload.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// UploadResult is the outcome of an upload call.
type UploadResult struct {
	UploadedFiles []string `json:"uploaded_files"`
	IsSuccessful  bool     `json:"is_successful"`
	Error         string   `json:"error,omitempty"`
}

// UploadFailedMessage is reported when an upload fails without detail.
const UploadFailedMessage = "Unable to upload files, unknown error."

// NewUploadFailure builds a failed upload result with the given error.
func NewUploadFailure(err string) *UploadResult {
	return &UploadResult{
		UploadedFiles: []string{},
		IsSuccessful:  false,
		Error:         err,
	}
}
