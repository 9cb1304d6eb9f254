package models

// Usage is the quota snapshot attached to metered responses and quota
// rejections. ActionsRemaining is -1 for plans without a monthly cap.
type Usage struct {
	Plan             string `json:"plan"`
	ActionsUsed      int    `json:"actionsUsed"`
	ActionsRemaining int    `json:"actionsRemaining"`
}

// UsageResponse is returned by GET /api/usage. ResetDate is the RFC3339 UTC
// timestamp of the first day of the next period.
type UsageResponse struct {
	Plan             string `json:"plan"`
	ActionsUsed      int    `json:"actionsUsed"`
	ActionsRemaining int    `json:"actionsRemaining"`
	ResetDate        string `json:"resetDate"`
}
