package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/httprate"

	"github.com/papertrail/papertrail-api/internal/api/models"
)

// RateLimitConfig holds configuration for the fixed-window rate limiter.
type RateLimitConfig struct {
	// RequestLimit is the per-window request cap.
	RequestLimit int
	// WindowLength is the window duration.
	WindowLength time.Duration
}

// DefaultRateLimit caps each caller at 10 requests per minute. The limiter
// runs ahead of authentication, so the cap also binds unauthenticated abuse.
var DefaultRateLimit = RateLimitConfig{
	RequestLimit: 10,
	WindowLength: time.Minute,
}

// RateLimit creates a rate limiter middleware keyed by caller identity: the
// bearer token when present, otherwise the normalized client IP. Counters
// live in memory per key with fixed windows; X-RateLimit-* headers reflect
// the window state.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(keyByTokenOrIP),
		httprate.WithLimitHandler(rateLimitExceededHandler),
	)
}

// keyByTokenOrIP returns the bearer credential if the request carries one,
// otherwise the client IP with IPv6-mapped IPv4 forms collapsed.
func keyByTokenOrIP(r *http.Request) (string, error) {
	if token := bearerToken(r); token != "" {
		return "token:" + token, nil
	}
	return "ip:" + clientIP(r), nil
}

// bearerToken extracts the credential from the Authorization header, or
// returns "" when the header is absent or not a Bearer scheme.
func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return auth[len(prefix):]
}

// clientIP normalizes the request's remote address: the port is dropped and
// IPv6-mapped IPv4 addresses (::ffff:a.b.c.d) collapse to their IPv4 form.
func clientIP(r *http.Request) string {
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.Unmap().String()
	}
	return host
}

// rateLimitExceededHandler writes an RFC7807 Problem response when the
// window cap is exceeded. httprate has already set the X-RateLimit-* headers.
func rateLimitExceededHandler(w http.ResponseWriter, r *http.Request) {
	traceID := GetRequestID(r.Context())

	problem := models.NewTooManyRequests(traceID, "Too many requests. Please wait a minute.")
	problem.Instance = r.URL.Path

	w.Header().Set("Retry-After", strconv.Itoa(60))

	problem.Write(w)
}
