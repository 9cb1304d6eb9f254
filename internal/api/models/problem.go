package models

import (
	"encoding/json"
	"net/http"
)

// Problem represents an RFC7807 error response.
// This is used for all API error responses with Content-Type: application/problem+json.
type Problem struct {
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type"`

	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`

	// Status is the HTTP status code for this occurrence of the problem.
	Status int `json:"status"`

	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`

	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`

	// TraceID is the request trace identifier for debugging.
	TraceID string `json:"traceId"`

	// Errors contains structured field validation errors.
	Errors []FieldError `json:"errors,omitempty"`

	// Usage carries the device's quota standing on quota rejections.
	Usage *Usage `json:"usage,omitempty"`

	// UpgradeURL points the client at the upgrade flow on quota rejections.
	UpgradeURL string `json:"upgradeUrl,omitempty"`
}

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ProblemType constants for standard error types.
const (
	ProblemTypeValidation      = "https://api.papertrail.app/problems/validation-error"
	ProblemTypeUnauthorized    = "https://api.papertrail.app/problems/unauthorized"
	ProblemTypeNotFound        = "https://api.papertrail.app/problems/not-found"
	ProblemTypePayloadTooLarge = "https://api.papertrail.app/problems/payload-too-large"
	ProblemTypeTooManyRequests = "https://api.papertrail.app/problems/too-many-requests"
	ProblemTypeQuotaExceeded   = "https://api.papertrail.app/problems/quota-exceeded"
	ProblemTypeUpstream        = "https://api.papertrail.app/problems/upstream-error"
	ProblemTypeInternal        = "https://api.papertrail.app/problems/internal-error"
)

// NewProblem creates a new Problem with the given parameters.
func NewProblem(problemType, title string, status int, traceID string) *Problem {
	return &Problem{
		Type:    problemType,
		Title:   title,
		Status:  status,
		TraceID: traceID,
	}
}

// Write writes the Problem as JSON to the ResponseWriter.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.Header().Set("X-Request-Id", p.TraceID)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewBadRequest creates a 400 Bad Request problem.
func NewBadRequest(traceID, detail string, errors []FieldError) *Problem {
	p := NewProblem(ProblemTypeValidation, "Validation error", http.StatusBadRequest, traceID)
	p.Detail = detail
	p.Errors = errors
	return p
}

// NewUnauthorized creates a 401 Unauthorized problem.
func NewUnauthorized(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeUnauthorized, "Unauthorized", http.StatusUnauthorized, traceID)
	p.Detail = detail
	return p
}

// NewNotFound creates a 404 Not Found problem.
func NewNotFound(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeNotFound, "Not found", http.StatusNotFound, traceID)
	p.Detail = detail
	return p
}

// NewPayloadTooLarge creates a 413 Payload Too Large problem.
func NewPayloadTooLarge(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypePayloadTooLarge, "Payload too large", http.StatusRequestEntityTooLarge, traceID)
	p.Detail = detail
	return p
}

// NewTooManyRequests creates a 429 Too Many Requests problem for the request
// rate limiter.
func NewTooManyRequests(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests, traceID)
	p.Detail = detail
	return p
}

// NewQuotaExceeded creates a 429 problem for an exhausted monthly quota,
// carrying the device's quota standing.
func NewQuotaExceeded(traceID string, usage *Usage) *Problem {
	p := NewProblem(ProblemTypeQuotaExceeded, "Monthly action limit reached", http.StatusTooManyRequests, traceID)
	p.Detail = "Monthly action limit reached. Upgrade to pro for unlimited actions."
	p.Usage = usage
	p.UpgradeURL = "papertrail://upgrade"
	return p
}

// NewBadGateway creates a 502 problem for a collaborator failure.
func NewBadGateway(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeUpstream, "Upstream error", http.StatusBadGateway, traceID)
	p.Detail = detail
	return p
}

// NewInternalError creates a 500 Internal Server Error problem.
func NewInternalError(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeInternal, "Internal server error", http.StatusInternalServerError, traceID)
	p.Detail = detail
	return p
}
