// Package anthropic provides the client for the external document-analysis
// collaborator (the Anthropic Messages API). The gateway treats it as an
// opaque dependency: a call either returns a result or fails with
// ErrUpstream.
package anthropic

import (
	"errors"
	"fmt"
)

// ErrUpstream is returned for any collaborator failure, regardless of the
// upstream status code. Upstream semantics never leak to API callers.
var ErrUpstream = errors.New("upstream provider failure")

// UpstreamError carries the upstream status for server-side logging.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("anthropic: status %d: %s", e.StatusCode, e.Message)
}

// Unwrap makes errors.Is(err, ErrUpstream) hold for all upstream failures.
func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// Task is one actionable item extracted from a document image.
type Task struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	DueDate     *int64   `json:"due_date"`
	Priority    string   `json:"priority,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	AISummary   string   `json:"ai_summary,omitempty"`
	NeedsRetake bool     `json:"needs_retake,omitempty"`
}

// DraftType identifies a supported draft variant.
type DraftType string

const (
	DraftEmail  DraftType = "email"
	DraftLetter DraftType = "letter"
	DraftForm   DraftType = "form"
	DraftAppeal DraftType = "appeal"
)

// Valid reports whether t is a supported draft type.
func (t DraftType) Valid() bool {
	switch t {
	case DraftEmail, DraftLetter, DraftForm, DraftAppeal:
		return true
	}
	return false
}

// SupportedMimeType reports whether the image media type is accepted for
// document analysis.
func SupportedMimeType(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/png", "image/webp", "image/gif":
		return true
	}
	return false
}
