package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papertrail/papertrail-api/internal/api/middleware"
	"github.com/papertrail/papertrail-api/internal/api/models"
	"github.com/papertrail/papertrail-api/internal/device"
	"github.com/papertrail/papertrail-api/internal/quota"
	"github.com/papertrail/papertrail-api/internal/usage"
)

func quotaChain(t *testing.T, limit int) (http.Handler, string, *quota.Service, *device.Device) {
	t.Helper()

	devices := device.NewService(device.NewInMemoryRepository())
	registered, err := devices.Register(context.Background(), "iphone-abc123")
	require.NoError(t, err)

	quotas := quota.NewService(quota.ServiceConfig{
		Ledger:        usage.NewInMemoryLedger(),
		FreeTierLimit: limit,
	})

	handler := middleware.Auth(devices)(
		middleware.Quota(quotas, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})),
	)

	return handler, registered.Token, quotas, registered
}

func TestQuota_AllowsUnderLimit(t *testing.T) {
	handler, token, _, _ := quotaChain(t, 3)

	req := httptest.NewRequest(http.MethodPost, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestQuota_RejectsWhenExhausted(t *testing.T) {
	handler, token, quotas, d := quotaChain(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := quotas.Commit(ctx, d)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodPost, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeQuotaExceeded, problem.Type)
	assert.Equal(t, "papertrail://upgrade", problem.UpgradeURL)
	require.NotNil(t, problem.Usage)
	assert.Equal(t, "free", problem.Usage.Plan)
	assert.Equal(t, 2, problem.Usage.ActionsUsed)
	assert.Equal(t, 0, problem.Usage.ActionsRemaining)
}

func TestQuota_RejectionDoesNotConsume(t *testing.T) {
	handler, token, quotas, d := quotaChain(t, 1)
	ctx := context.Background()

	_, err := quotas.Commit(ctx, d)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/test", http.NoBody)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	}

	snap, err := quotas.Current(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.ActionsUsed, "rejected requests must not be accounted")
}
