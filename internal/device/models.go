// Package device provides device registration and token-based identity for the
// PaperTrail API. A device is a client installation identified by a
// caller-chosen deviceId and authenticated with an opaque bearer token minted
// at registration.
package device

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrDeviceNotFound  = errors.New("device not found")
	ErrInvalidDeviceID = errors.New("deviceId is required (string, max 256 chars)")
	ErrInvalidPlan     = errors.New("invalid plan")
)

// MaxDeviceIDLength bounds the caller-chosen device identifier.
const MaxDeviceIDLength = 256

// Plan represents a subscription tier.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// Valid reports whether p is a known plan.
func (p Plan) Valid() bool {
	return p == PlanFree || p == PlanPro
}

// Device represents a registered client installation.
type Device struct {
	DeviceID  string
	Token     string
	Plan      Plan
	CreatedAt time.Time
}
