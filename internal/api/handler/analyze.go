package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/papertrail/papertrail-api/internal/anthropic"
	"github.com/papertrail/papertrail-api/internal/api/middleware"
	"github.com/papertrail/papertrail-api/internal/api/models"
	"github.com/papertrail/papertrail-api/internal/api/response"
	"github.com/papertrail/papertrail-api/internal/device"
	"github.com/papertrail/papertrail-api/internal/events"
	"github.com/papertrail/papertrail-api/internal/quota"
	"github.com/papertrail/papertrail-api/internal/usage"
)

// AnalyzeHandler handles the metered document-analysis endpoint.
type AnalyzeHandler struct {
	collaborator Collaborator
	quotas       *quota.Service
	publisher    ActionPublisher
	metrics      *middleware.Metrics
}

// NewAnalyzeHandler creates a new AnalyzeHandler. publisher and metrics may
// be nil.
func NewAnalyzeHandler(collaborator Collaborator, quotas *quota.Service, publisher ActionPublisher, metrics *middleware.Metrics) *AnalyzeHandler {
	return &AnalyzeHandler{
		collaborator: collaborator,
		quotas:       quotas,
		publisher:    publisher,
		metrics:      metrics,
	}
}

// Analyze handles POST /api/analyze. Rate limit, authentication, and quota
// have already been checked by the middleware chain; usage is accounted only
// after the collaborator call succeeds.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Image == "" {
		response.BadRequest(w, r, "image (base64 string) is required", []models.FieldError{
			{Field: "image", Message: "required", Code: "required"},
		})
		return
	}
	if !anthropic.SupportedMimeType(req.MimeType) {
		response.BadRequest(w, r, "mimeType must be image/jpeg, image/png, image/webp, or image/gif", []models.FieldError{
			{Field: "mimeType", Message: "unsupported media type", Code: "invalid"},
		})
		return
	}
	if len(req.Image) > models.MaxImageBase64Length {
		response.PayloadTooLarge(w, r, "Image too large. Max 10MB.")
		return
	}

	tasks, err := h.collaborator.AnalyzeDocument(r.Context(), req.Image, req.MimeType)
	if err != nil {
		response.BadGateway(w, r, "document analysis failed")
		return
	}

	d := GetDevice(r.Context())
	snap, err := h.quotas.Commit(r.Context(), d)
	if err != nil {
		response.InternalError(w, r, "usage accounting failed")
		return
	}

	recordAction(r, h.publisher, h.metrics, d, snap, "analyze")

	response.JSON(w, r, http.StatusOK, models.AnalyzeResponse{
		Tasks: tasks,
		Usage: toUsage(snap),
	})
}

// decodeBody decodes a JSON request body, mapping an oversized body to 413
// and malformed JSON to 400. Returns false when a response has been written.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			response.PayloadTooLarge(w, r, "request body too large")
			return false
		}
		response.BadRequest(w, r, "invalid JSON body", nil)
		return false
	}
	return true
}

func toUsage(snap quota.Snapshot) models.Usage {
	return models.Usage{
		Plan:             string(snap.Plan),
		ActionsUsed:      snap.ActionsUsed,
		ActionsRemaining: snap.ActionsRemaining,
	}
}

// recordAction emits the accounting event and metric for one successful
// metered action.
func recordAction(r *http.Request, publisher ActionPublisher, metrics *middleware.Metrics, d *device.Device, snap quota.Snapshot, action string) {
	if metrics != nil {
		metrics.RecordAction(action, string(d.Plan))
	}
	if publisher != nil {
		now := time.Now().UTC()
		publisher.Publish(r.Context(), events.ActionEvent{
			DeviceID:    d.DeviceID,
			Plan:        string(d.Plan),
			Action:      action,
			ActionsUsed: snap.ActionsUsed,
			PeriodKey:   usage.PeriodKey(now).Format("2006-01-02"),
			OccurredAt:  now,
		})
	}
}
