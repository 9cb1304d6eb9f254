// Package api provides the HTTP API for the PaperTrail gateway.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/papertrail/papertrail-api/internal/api/handler"
	"github.com/papertrail/papertrail-api/internal/api/middleware"
	"github.com/papertrail/papertrail-api/internal/device"
	"github.com/papertrail/papertrail-api/internal/quota"
)

// maxRequestBody caps JSON bodies on /api routes: a 10 MB image as base64
// plus envelope overhead. Kept above MaxImageBase64Length so the image-size
// check produces the specific error message.
const maxRequestBody = 15 << 20

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version       string
	Environment   string
	Logger        zerolog.Logger
	ServiceName   string
	Metrics       *middleware.Metrics
	DeviceService *device.Service
	QuotaService  *quota.Service
	Collaborator  handler.Collaborator
	Publisher     handler.ActionPublisher
	RateLimit     middleware.RateLimitConfig
}

// NewRouter creates a new chi router with all API routes configured. Metered
// requests pass through the pipeline in fixed order: rate limiter first (so
// omitting a credential cannot bypass the cap), then authentication, then
// quota, then the protected operation.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "papertrail-api"
	}
	rateLimit := cfg.RateLimit
	if rateLimit.RequestLimit == 0 {
		rateLimit = middleware.DefaultRateLimit
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS)
	r.Use(middleware.ContentTypeJSON)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.Environment)
	authHandler := handler.NewAuthHandler(cfg.DeviceService, cfg.QuotaService)
	analyzeHandler := handler.NewAnalyzeHandler(cfg.Collaborator, cfg.QuotaService, cfg.Publisher, cfg.Metrics)
	draftHandler := handler.NewDraftHandler(cfg.Collaborator, cfg.QuotaService, cfg.Publisher, cfg.Metrics)
	usageHandler := handler.NewUsageHandler(cfg.QuotaService)
	subscriptionHandler := handler.NewSubscriptionHandler(cfg.DeviceService)

	authMiddleware := middleware.Auth(cfg.DeviceService)
	quotaMiddleware := middleware.Quota(cfg.QuotaService, cfg.Metrics)

	r.Get("/health", opsHandler.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.MaxBody(maxRequestBody))
		r.Use(middleware.RateLimit(rateLimit))

		r.Post("/auth/register", authHandler.Register)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)

			r.Get("/usage", usageHandler.GetUsage)
			r.Post("/subscription/verify", subscriptionHandler.Verify)

			// Metered endpoints
			r.Group(func(r chi.Router) {
				r.Use(quotaMiddleware)
				r.Post("/analyze", analyzeHandler.Analyze)
				r.Post("/draft", draftHandler.Draft)
			})
		})
	})

	return r
}
