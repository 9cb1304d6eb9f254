package device

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Service provides device registry operations.
type Service struct {
	repo Repository
}

// NewService creates a new device service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register returns the existing device for deviceID, or creates a new one on
// the free plan with a freshly minted token. Registration is idempotent: an
// existing device is returned unchanged, token included.
func (s *Service) Register(ctx context.Context, deviceID string) (*Device, error) {
	if deviceID == "" || len(deviceID) > MaxDeviceIDLength {
		return nil, ErrInvalidDeviceID
	}

	existing, err := s.repo.GetByDeviceID(ctx, deviceID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrDeviceNotFound) {
		return nil, err
	}

	d := &Device{
		DeviceID:  deviceID,
		Token:     uuid.NewString(),
		Plan:      PlanFree,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, d)
	if err != nil {
		return nil, err
	}
	if !created {
		// Lost a registration race; the first writer's record wins.
		return s.repo.GetByDeviceID(ctx, deviceID)
	}
	return d, nil
}

// ResolveByToken authenticates a bearer token by exact match.
func (s *Service) ResolveByToken(ctx context.Context, token string) (*Device, error) {
	if token == "" {
		return nil, ErrDeviceNotFound
	}
	return s.repo.GetByToken(ctx, token)
}

// SetPlan unconditionally overwrites the plan for an existing device. Called
// by the billing integration after receipt verification.
func (s *Service) SetPlan(ctx context.Context, deviceID string, plan Plan) (*Device, error) {
	if !plan.Valid() {
		return nil, ErrInvalidPlan
	}
	return s.repo.UpdatePlan(ctx, deviceID, plan)
}
