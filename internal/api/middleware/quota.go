package middleware

import (
	"errors"
	"net/http"

	"github.com/papertrail/papertrail-api/internal/api/models"
	"github.com/papertrail/papertrail-api/internal/quota"
)

// Quota creates middleware that gates metered endpoints on the device's
// monthly action quota. It runs after Auth and before the protected
// operation; accounting itself happens in the handler, only once the
// operation has succeeded. metrics may be nil.
func Quota(quotas *quota.Service, metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := GetDevice(r.Context())
			if d == nil {
				writeUnauthorized(w, r, "authentication required")
				return
			}

			snap, err := quotas.Check(r.Context(), d)
			if err != nil {
				traceID := GetRequestID(r.Context())
				if errors.Is(err, quota.ErrQuotaExceeded) {
					if metrics != nil {
						metrics.RecordQuotaRejection(string(snap.Plan))
					}
					problem := models.NewQuotaExceeded(traceID, &models.Usage{
						Plan:             string(snap.Plan),
						ActionsUsed:      snap.ActionsUsed,
						ActionsRemaining: snap.ActionsRemaining,
					})
					problem.Instance = r.URL.Path
					problem.Write(w)
					return
				}

				problem := models.NewInternalError(traceID, "usage lookup failed")
				problem.Instance = r.URL.Path
				problem.Write(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
