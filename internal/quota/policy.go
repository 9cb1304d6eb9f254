// Package quota derives allow/deny decisions and remaining-action counts from
// a device's plan and its current-period ledger state.
package quota

import "github.com/papertrail/papertrail-api/internal/device"

// Unlimited is the remaining-actions sentinel reported for plans without a
// monthly cap. It is distinct from every real count, which is never negative.
const Unlimited = -1

// DefaultFreeTierLimit is the monthly action cap for the free plan when no
// limit is configured.
const DefaultFreeTierLimit = 10

// Decision is the outcome of evaluating quota policy.
type Decision struct {
	Allowed   bool
	Remaining int
}

// Evaluate applies quota policy to (plan, used, limit). It is a pure function
// with no I/O: pro devices are always allowed with Unlimited remaining; free
// devices are allowed while used < limit.
func Evaluate(plan device.Plan, used, limit int) Decision {
	if plan == device.PlanPro {
		return Decision{Allowed: true, Remaining: Unlimited}
	}

	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: used < limit, Remaining: remaining}
}
