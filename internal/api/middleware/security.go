package middleware

import (
	"net/http"
	"os"

	"github.com/papertrail/papertrail-api/internal/api/models"
)

// SecurityHeaders adds standard security headers to all HTTP responses.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// RequireTLS enforces HTTPS connections behind a proxy or load balancer by
// checking the X-Forwarded-Proto header. Enable with REQUIRE_TLS=true.
func RequireTLS(next http.Handler) http.Handler {
	requireTLS := os.Getenv("REQUIRE_TLS") == "true"

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requireTLS {
			proto := r.Header.Get("X-Forwarded-Proto")
			if proto != "" && proto != "https" {
				traceID := GetRequestID(r.Context())
				problem := models.NewProblem(
					"https://api.papertrail.app/problems/tls-required",
					"TLS required",
					http.StatusForbidden,
					traceID,
				)
				problem.Detail = "This endpoint requires HTTPS"
				problem.Instance = r.URL.Path
				problem.Write(w)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
