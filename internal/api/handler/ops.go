package handler

import (
	"net/http"
	"time"

	"github.com/papertrail/papertrail-api/internal/api/models"
	"github.com/papertrail/papertrail-api/internal/api/response"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version string
	env     string
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, env string) *OpsHandler {
	return &OpsHandler{version: version, env: env}
}

// HealthCheck handles GET /health.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status:    "ok",
		Version:   h.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Env:       h.env,
	})
}
