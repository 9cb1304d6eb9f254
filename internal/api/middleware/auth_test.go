package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papertrail/papertrail-api/internal/api/middleware"
	"github.com/papertrail/papertrail-api/internal/device"
)

func authHandler(t *testing.T) (http.Handler, string) {
	t.Helper()

	devices := device.NewService(device.NewInMemoryRepository())
	registered, err := devices.Register(context.Background(), "iphone-abc123")
	require.NoError(t, err)

	handler := middleware.Auth(devices)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := middleware.GetDevice(r.Context())
		require.NotNil(t, d)
		assert.Equal(t, "iphone-abc123", d.DeviceID)
		w.WriteHeader(http.StatusOK)
	}))

	return handler, registered.Token
}

func TestAuth_ValidToken(t *testing.T) {
	handler, token := authHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_Rejections(t *testing.T) {
	handler, _ := authHandler(t)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz"},
		{name: "empty credential", header: "Bearer "},
		{name: "unknown token", header: "Bearer not-a-real-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestAuth_CaseInsensitiveBearerScheme(t *testing.T) {
	handler, token := authHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetDevice_Unauthenticated(t *testing.T) {
	assert.Nil(t, middleware.GetDevice(context.Background()))
}
