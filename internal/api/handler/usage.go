package handler

import (
	"net/http"
	"time"

	"github.com/papertrail/papertrail-api/internal/api/models"
	"github.com/papertrail/papertrail-api/internal/api/response"
	"github.com/papertrail/papertrail-api/internal/quota"
)

// UsageHandler handles the usage stats endpoint.
type UsageHandler struct {
	quotas *quota.Service
}

// NewUsageHandler creates a new UsageHandler.
func NewUsageHandler(quotas *quota.Service) *UsageHandler {
	return &UsageHandler{quotas: quotas}
}

// GetUsage handles GET /api/usage. Not metered: reading the counter never
// consumes an action.
func (h *UsageHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	d := GetDevice(r.Context())
	if d == nil {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	snap, err := h.quotas.Current(r.Context(), d)
	if err != nil {
		response.InternalError(w, r, "usage lookup failed")
		return
	}

	response.JSON(w, r, http.StatusOK, models.UsageResponse{
		Plan:             string(snap.Plan),
		ActionsUsed:      snap.ActionsUsed,
		ActionsRemaining: snap.ActionsRemaining,
		ResetDate:        snap.ResetAt.UTC().Format(time.RFC3339),
	})
}
