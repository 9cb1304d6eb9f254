package quota

import (
	"context"
	"errors"
	"time"

	"github.com/papertrail/papertrail-api/internal/device"
	"github.com/papertrail/papertrail-api/internal/usage"
)

// ErrQuotaExceeded is returned when a free-plan device has used up its
// monthly action quota.
var ErrQuotaExceeded = errors.New("monthly action limit reached")

// Snapshot describes a device's quota state at one point in time.
type Snapshot struct {
	Plan             device.Plan
	ActionsUsed      int
	ActionsRemaining int
	ResetAt          time.Time
}

// ServiceConfig holds configuration for the quota service.
type ServiceConfig struct {
	Ledger usage.Ledger

	// FreeTierLimit is the monthly action cap for free-plan devices.
	// Defaults to DefaultFreeTierLimit.
	FreeTierLimit int

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Service combines the usage ledger with quota policy. It owns the
// current-period lookup so every caller sees the same UTC period boundary for
// the whole request.
type Service struct {
	ledger usage.Ledger
	limit  int
	now    func() time.Time
}

// NewService creates a new quota service.
func NewService(cfg ServiceConfig) *Service {
	limit := cfg.FreeTierLimit
	if limit <= 0 {
		limit = DefaultFreeTierLimit
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{ledger: cfg.Ledger, limit: limit, now: now}
}

// Limit returns the configured free-tier monthly cap.
func (s *Service) Limit() int {
	return s.limit
}

// Check evaluates whether d may perform another metered action in the current
// period. The returned snapshot reflects pre-action state; when the quota is
// exhausted it is returned together with ErrQuotaExceeded so callers can
// report the device's standing.
func (s *Service) Check(ctx context.Context, d *device.Device) (Snapshot, error) {
	now := s.now()
	p, err := s.ledger.GetOrCreate(ctx, d.DeviceID, usage.PeriodKey(now))
	if err != nil {
		return Snapshot{}, err
	}

	snap := s.snapshot(d, p, now)
	if decision := Evaluate(d.Plan, p.ActionsUsed, s.limit); !decision.Allowed {
		return snap, ErrQuotaExceeded
	}
	return snap, nil
}

// Commit accounts one completed action for d and returns the post-increment
// snapshot. Called only after the protected operation has succeeded.
func (s *Service) Commit(ctx context.Context, d *device.Device) (Snapshot, error) {
	now := s.now()
	p, err := s.ledger.Increment(ctx, d.DeviceID, usage.PeriodKey(now))
	if err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(d, p, now), nil
}

// Current returns the device's quota state without consuming anything.
func (s *Service) Current(ctx context.Context, d *device.Device) (Snapshot, error) {
	now := s.now()
	p, err := s.ledger.GetOrCreate(ctx, d.DeviceID, usage.PeriodKey(now))
	if err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(d, p, now), nil
}

func (s *Service) snapshot(d *device.Device, p *usage.Period, now time.Time) Snapshot {
	decision := Evaluate(d.Plan, p.ActionsUsed, s.limit)
	return Snapshot{
		Plan:             d.Plan,
		ActionsUsed:      p.ActionsUsed,
		ActionsRemaining: decision.Remaining,
		ResetAt:          usage.NextReset(now),
	}
}
