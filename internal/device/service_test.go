package device_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papertrail/papertrail-api/internal/device"
)

func TestService_Register(t *testing.T) {
	service := device.NewService(device.NewInMemoryRepository())
	ctx := context.Background()

	d, err := service.Register(ctx, "iphone-abc123")
	require.NoError(t, err)

	assert.Equal(t, "iphone-abc123", d.DeviceID)
	assert.NotEmpty(t, d.Token)
	assert.Equal(t, device.PlanFree, d.Plan)
	assert.False(t, d.CreatedAt.IsZero())
}

func TestService_Register_Idempotent(t *testing.T) {
	service := device.NewService(device.NewInMemoryRepository())
	ctx := context.Background()

	first, err := service.Register(ctx, "iphone-abc123")
	require.NoError(t, err)

	second, err := service.Register(ctx, "iphone-abc123")
	require.NoError(t, err)

	assert.Equal(t, first.Token, second.Token, "re-registration must return the original token")
	assert.Equal(t, first.Plan, second.Plan)
}

func TestService_Register_PreservesPlan(t *testing.T) {
	service := device.NewService(device.NewInMemoryRepository())
	ctx := context.Background()

	_, err := service.Register(ctx, "iphone-abc123")
	require.NoError(t, err)

	_, err = service.SetPlan(ctx, "iphone-abc123", device.PlanPro)
	require.NoError(t, err)

	d, err := service.Register(ctx, "iphone-abc123")
	require.NoError(t, err)
	assert.Equal(t, device.PlanPro, d.Plan)
}

func TestService_Register_ValidationErrors(t *testing.T) {
	service := device.NewService(device.NewInMemoryRepository())
	ctx := context.Background()

	tests := []struct {
		name     string
		deviceID string
	}{
		{name: "empty", deviceID: ""},
		{name: "too long", deviceID: strings.Repeat("a", device.MaxDeviceIDLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(ctx, tt.deviceID)
			assert.ErrorIs(t, err, device.ErrInvalidDeviceID)
		})
	}
}

func TestService_Register_DistinctDevicesGetDistinctTokens(t *testing.T) {
	service := device.NewService(device.NewInMemoryRepository())
	ctx := context.Background()

	d1, err := service.Register(ctx, "device-1")
	require.NoError(t, err)
	d2, err := service.Register(ctx, "device-2")
	require.NoError(t, err)

	assert.NotEqual(t, d1.Token, d2.Token)
}

func TestService_ResolveByToken(t *testing.T) {
	service := device.NewService(device.NewInMemoryRepository())
	ctx := context.Background()

	registered, err := service.Register(ctx, "iphone-abc123")
	require.NoError(t, err)

	d, err := service.ResolveByToken(ctx, registered.Token)
	require.NoError(t, err)
	assert.Equal(t, "iphone-abc123", d.DeviceID)

	_, err = service.ResolveByToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, device.ErrDeviceNotFound)

	_, err = service.ResolveByToken(ctx, "")
	assert.ErrorIs(t, err, device.ErrDeviceNotFound)
}

func TestService_SetPlan(t *testing.T) {
	service := device.NewService(device.NewInMemoryRepository())
	ctx := context.Background()

	_, err := service.Register(ctx, "iphone-abc123")
	require.NoError(t, err)

	updated, err := service.SetPlan(ctx, "iphone-abc123", device.PlanPro)
	require.NoError(t, err)
	assert.Equal(t, device.PlanPro, updated.Plan)

	// Downgrade works the same way
	updated, err = service.SetPlan(ctx, "iphone-abc123", device.PlanFree)
	require.NoError(t, err)
	assert.Equal(t, device.PlanFree, updated.Plan)
}

func TestService_SetPlan_Errors(t *testing.T) {
	service := device.NewService(device.NewInMemoryRepository())
	ctx := context.Background()

	_, err := service.SetPlan(ctx, "ghost", device.PlanPro)
	assert.ErrorIs(t, err, device.ErrDeviceNotFound)

	_, err = service.Register(ctx, "iphone-abc123")
	require.NoError(t, err)

	_, err = service.SetPlan(ctx, "iphone-abc123", device.Plan("enterprise"))
	assert.ErrorIs(t, err, device.ErrInvalidPlan)
}
