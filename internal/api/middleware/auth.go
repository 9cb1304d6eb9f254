package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/papertrail/papertrail-api/internal/api/models"
	"github.com/papertrail/papertrail-api/internal/device"
)

// deviceKey is the context key for the authenticated device.
type deviceKey struct{}

// Auth creates authentication middleware that resolves opaque bearer tokens
// against the device registry. A missing or malformed Authorization header is
// rejected before any other check runs.
func Auth(devices *device.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeUnauthorized(w, r, "missing or invalid authorization header")
				return
			}

			d, err := devices.ResolveByToken(r.Context(), token)
			if err != nil {
				if errors.Is(err, device.ErrDeviceNotFound) {
					writeUnauthorized(w, r, "invalid device token")
					return
				}
				requestID := GetRequestID(r.Context())
				problem := models.NewInternalError(requestID, "authentication failed")
				problem.Instance = r.URL.Path
				problem.Write(w)
				return
			}

			ctx := context.WithValue(r.Context(), deviceKey{}, d)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeUnauthorized writes a 401 Unauthorized response.
// Implemented directly here to avoid an import cycle with the response package.
func writeUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := GetRequestID(r.Context())
	problem := models.NewUnauthorized(traceID, detail)
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// GetDevice retrieves the authenticated device from the context.
// Returns nil if not authenticated.
func GetDevice(ctx context.Context) *device.Device {
	if d, ok := ctx.Value(deviceKey{}).(*device.Device); ok {
		return d
	}
	return nil
}
