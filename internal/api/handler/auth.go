package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/papertrail/papertrail-api/internal/api/models"
	"github.com/papertrail/papertrail-api/internal/api/response"
	"github.com/papertrail/papertrail-api/internal/device"
	"github.com/papertrail/papertrail-api/internal/quota"
)

// AuthHandler handles device registration.
type AuthHandler struct {
	devices *device.Service
	quotas  *quota.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(devices *device.Service, quotas *quota.Service) *AuthHandler {
	return &AuthHandler{devices: devices, quotas: quotas}
}

// Register handles POST /api/auth/register. Registration is idempotent: the
// same deviceId always maps to the same token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	d, err := h.devices.Register(r.Context(), req.DeviceID)
	if err != nil {
		if errors.Is(err, device.ErrInvalidDeviceID) {
			response.BadRequest(w, r, err.Error(), []models.FieldError{
				{Field: "deviceId", Message: "required string, max 256 chars", Code: "invalid"},
			})
			return
		}
		response.InternalError(w, r, "registration failed")
		return
	}

	snap, err := h.quotas.Current(r.Context(), d)
	if err != nil {
		response.InternalError(w, r, "usage lookup failed")
		return
	}

	response.JSON(w, r, http.StatusOK, models.RegisterResponse{
		Token:            d.Token,
		Plan:             string(d.Plan),
		ActionsRemaining: snap.ActionsRemaining,
	})
}
