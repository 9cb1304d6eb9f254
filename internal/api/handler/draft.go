package handler

import (
	"net/http"

	"github.com/papertrail/papertrail-api/internal/anthropic"
	"github.com/papertrail/papertrail-api/internal/api/middleware"
	"github.com/papertrail/papertrail-api/internal/api/models"
	"github.com/papertrail/papertrail-api/internal/api/response"
	"github.com/papertrail/papertrail-api/internal/quota"
)

// DraftHandler handles the metered draft-generation endpoint.
type DraftHandler struct {
	collaborator Collaborator
	quotas       *quota.Service
	publisher    ActionPublisher
	metrics      *middleware.Metrics
}

// NewDraftHandler creates a new DraftHandler. publisher and metrics may be nil.
func NewDraftHandler(collaborator Collaborator, quotas *quota.Service, publisher ActionPublisher, metrics *middleware.Metrics) *DraftHandler {
	return &DraftHandler{
		collaborator: collaborator,
		quotas:       quotas,
		publisher:    publisher,
		metrics:      metrics,
	}
}

// Draft handles POST /api/draft.
func (h *DraftHandler) Draft(w http.ResponseWriter, r *http.Request) {
	var req models.DraftRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Task.Title == "" {
		response.BadRequest(w, r, "task object with at least a title is required", []models.FieldError{
			{Field: "task.title", Message: "required", Code: "required"},
		})
		return
	}
	draftType := anthropic.DraftType(req.DraftType)
	if !draftType.Valid() {
		response.BadRequest(w, r, "draftType must be one of: email, letter, form, appeal", []models.FieldError{
			{Field: "draftType", Message: "unsupported draft type", Code: "invalid"},
		})
		return
	}

	draft, err := h.collaborator.GenerateDraft(r.Context(), req.Task, draftType)
	if err != nil {
		response.BadGateway(w, r, "draft generation failed")
		return
	}

	d := GetDevice(r.Context())
	snap, err := h.quotas.Commit(r.Context(), d)
	if err != nil {
		response.InternalError(w, r, "usage accounting failed")
		return
	}

	recordAction(r, h.publisher, h.metrics, d, snap, "draft")

	response.JSON(w, r, http.StatusOK, models.DraftResponse{
		Draft: draft,
		Usage: toUsage(snap),
	})
}
