package models

import "github.com/papertrail/papertrail-api/internal/anthropic"

// MaxImageBase64Length bounds the base64 document image (~10 MB binary).
const MaxImageBase64Length = 14_000_000

// AnalyzeRequest is the body for POST /api/analyze.
type AnalyzeRequest struct {
	Image    string `json:"image"`
	Filename string `json:"filename,omitempty"`
	MimeType string `json:"mimeType"`
}

// AnalyzeResponse is returned on successful document analysis.
type AnalyzeResponse struct {
	Tasks []anthropic.Task `json:"tasks"`
	Usage Usage            `json:"usage"`
}

// DraftRequest is the body for POST /api/draft.
type DraftRequest struct {
	Task      anthropic.Task `json:"task"`
	DraftType string         `json:"draftType"`
}

// DraftResponse is returned on successful draft generation.
type DraftResponse struct {
	Draft string `json:"draft"`
	Usage Usage  `json:"usage"`
}
