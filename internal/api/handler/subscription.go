package handler

import (
	"errors"
	"net/http"

	"github.com/papertrail/papertrail-api/internal/api/models"
	"github.com/papertrail/papertrail-api/internal/api/response"
	"github.com/papertrail/papertrail-api/internal/device"
)

// SubscriptionHandler handles the plan-mutation hook for the billing
// integration. Receipt verification itself is a placeholder.
type SubscriptionHandler struct {
	devices *device.Service
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(devices *device.Service) *SubscriptionHandler {
	return &SubscriptionHandler{devices: devices}
}

// Verify handles POST /api/subscription/verify.
func (h *SubscriptionHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req models.VerifySubscriptionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Receipt == "" {
		response.BadRequest(w, r, "receipt string is required", []models.FieldError{
			{Field: "receipt", Message: "required", Code: "required"},
		})
		return
	}

	d := GetDevice(r.Context())
	if d == nil {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	// Placeholder: real IAP validation comes later.
	updated, err := h.devices.SetPlan(r.Context(), d.DeviceID, device.PlanPro)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			response.NotFound(w, r, "device not found")
			return
		}
		response.InternalError(w, r, "subscription update failed")
		return
	}

	response.JSON(w, r, http.StatusOK, models.VerifySubscriptionResponse{
		Success: true,
		Plan:    string(updated.Plan),
		Message: "Subscription verified (placeholder)",
	})
}
