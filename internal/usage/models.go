// Package usage provides the per-device monthly action ledger. Each device
// accumulates actions in a calendar-month period keyed by the first of the
// month. Period boundaries are computed in UTC so accounting does not depend
// on server-local time.
package usage

import (
	"errors"
	"time"
)

// ErrStoreUnavailable is returned when the ledger backend cannot be reached.
var ErrStoreUnavailable = errors.New("usage store unavailable")

// Period is one device's action counter for one calendar month.
type Period struct {
	DeviceID    string
	PeriodKey   time.Time
	ActionsUsed int
}

// PeriodKey returns the ledger key for the instant now: midnight UTC on the
// first day of that month.
func PeriodKey(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NextReset returns the start of the period following the one containing now,
// i.e. when the current counter stops applying.
func NextReset(now time.Time) time.Time {
	return PeriodKey(now).AddDate(0, 1, 0)
}
