package quota_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papertrail/papertrail-api/internal/device"
	"github.com/papertrail/papertrail-api/internal/quota"
	"github.com/papertrail/papertrail-api/internal/usage"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func freeDevice(id string) *device.Device {
	return &device.Device{DeviceID: id, Token: "tok-" + id, Plan: device.PlanFree}
}

func TestService_CheckAndCommit(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	service := quota.NewService(quota.ServiceConfig{
		Ledger:        usage.NewInMemoryLedger(),
		FreeTierLimit: 3,
		Now:           fixedClock(now),
	})
	ctx := context.Background()
	d := freeDevice("dev1")

	snap, err := service.Check(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.ActionsUsed)
	assert.Equal(t, 3, snap.ActionsRemaining)
	assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), snap.ResetAt)

	snap, err = service.Commit(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.ActionsUsed)
	assert.Equal(t, 2, snap.ActionsRemaining)
}

func TestService_CheckExhaustedReturnsSnapshot(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	service := quota.NewService(quota.ServiceConfig{
		Ledger:        usage.NewInMemoryLedger(),
		FreeTierLimit: 2,
		Now:           fixedClock(now),
	})
	ctx := context.Background()
	d := freeDevice("dev2")

	for i := 0; i < 2; i++ {
		_, err := service.Check(ctx, d)
		require.NoError(t, err)
		_, err = service.Commit(ctx, d)
		require.NoError(t, err)
	}

	snap, err := service.Check(ctx, d)
	assert.ErrorIs(t, err, quota.ErrQuotaExceeded)
	assert.Equal(t, 2, snap.ActionsUsed)
	assert.Equal(t, 0, snap.ActionsRemaining)
}

func TestService_ProPlanNeverExceeds(t *testing.T) {
	service := quota.NewService(quota.ServiceConfig{
		Ledger:        usage.NewInMemoryLedger(),
		FreeTierLimit: 1,
	})
	ctx := context.Background()
	d := &device.Device{DeviceID: "pro1", Token: "tok-pro1", Plan: device.PlanPro}

	for i := 0; i < 5; i++ {
		snap, err := service.Check(ctx, d)
		require.NoError(t, err)
		assert.Equal(t, quota.Unlimited, snap.ActionsRemaining)
		_, err = service.Commit(ctx, d)
		require.NoError(t, err)
	}

	snap, err := service.Current(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, 5, snap.ActionsUsed)
}

func TestService_PeriodRolloverResetsCount(t *testing.T) {
	ledger := usage.NewInMemoryLedger()
	ctx := context.Background()
	d := freeDevice("dev3")

	march := quota.NewService(quota.ServiceConfig{
		Ledger: ledger,
		Now:    fixedClock(time.Date(2026, time.March, 31, 23, 59, 0, 0, time.UTC)),
	})
	april := quota.NewService(quota.ServiceConfig{
		Ledger: ledger,
		Now:    fixedClock(time.Date(2026, time.April, 1, 0, 1, 0, 0, time.UTC)),
	})

	_, err := march.Commit(ctx, d)
	require.NoError(t, err)

	snap, err := april.Current(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.ActionsUsed, "new period starts at zero")

	snap, err = march.Current(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.ActionsUsed, "old period retains its count")
}

func TestService_DefaultLimit(t *testing.T) {
	service := quota.NewService(quota.ServiceConfig{Ledger: usage.NewInMemoryLedger()})
	assert.Equal(t, quota.DefaultFreeTierLimit, service.Limit())
}
