package device

import (
	"context"
	"sync"
)

// Repository defines the interface for device persistence.
type Repository interface {
	// GetByDeviceID retrieves a device by its caller-chosen identifier.
	GetByDeviceID(ctx context.Context, deviceID string) (*Device, error)

	// GetByToken retrieves a device by its bearer token.
	GetByToken(ctx context.Context, token string) (*Device, error)

	// Create inserts a new device. Returns false without error when a device
	// with the same deviceId already exists (registration race).
	Create(ctx context.Context, d *Device) (bool, error)

	// UpdatePlan overwrites the plan for an existing device.
	UpdatePlan(ctx context.Context, deviceID string, plan Plan) (*Device, error)
}

// InMemoryRepository is an in-memory implementation of Repository used in
// tests and local development.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*Device
	byToken map[string]*Device
}

// NewInMemoryRepository creates a new in-memory device repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:    make(map[string]*Device),
		byToken: make(map[string]*Device),
	}
}

// GetByDeviceID retrieves a device by its identifier.
func (r *InMemoryRepository) GetByDeviceID(_ context.Context, deviceID string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byID[deviceID]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return copyDevice(d), nil
}

// GetByToken retrieves a device by its bearer token.
func (r *InMemoryRepository) GetByToken(_ context.Context, token string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byToken[token]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return copyDevice(d), nil
}

// Create inserts a new device unless the deviceId is already taken.
func (r *InMemoryRepository) Create(_ context.Context, d *Device) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[d.DeviceID]; ok {
		return false, nil
	}

	stored := copyDevice(d)
	r.byID[stored.DeviceID] = stored
	r.byToken[stored.Token] = stored
	return true, nil
}

// UpdatePlan overwrites the plan for an existing device.
func (r *InMemoryRepository) UpdatePlan(_ context.Context, deviceID string, plan Plan) (*Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.byID[deviceID]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	d.Plan = plan
	return copyDevice(d), nil
}

func copyDevice(d *Device) *Device {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

// Ensure InMemoryRepository implements Repository.
var _ Repository = (*InMemoryRepository)(nil)
