package models

// RegisterRequest is the body for POST /api/auth/register.
type RegisterRequest struct {
	DeviceID string `json:"deviceId"`
}

// RegisterResponse is returned on successful registration. Re-registering an
// existing deviceId returns the original token unchanged.
type RegisterResponse struct {
	Token            string `json:"token"`
	Plan             string `json:"plan"`
	ActionsRemaining int    `json:"actionsRemaining"`
}

// VerifySubscriptionRequest is the body for POST /api/subscription/verify.
type VerifySubscriptionRequest struct {
	Receipt string `json:"receipt"`
}

// VerifySubscriptionResponse is returned after the plan mutation.
type VerifySubscriptionResponse struct {
	Success bool   `json:"success"`
	Plan    string `json:"plan"`
	Message string `json:"message"`
}
