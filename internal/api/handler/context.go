package handler

import (
	"context"

	"github.com/papertrail/papertrail-api/internal/anthropic"
	"github.com/papertrail/papertrail-api/internal/api/middleware"
	"github.com/papertrail/papertrail-api/internal/device"
	"github.com/papertrail/papertrail-api/internal/events"
)

// Collaborator is the external document-analysis service. A call either
// returns a result or fails; the gateway never inspects upstream semantics.
type Collaborator interface {
	AnalyzeDocument(ctx context.Context, image, mimeType string) ([]anthropic.Task, error)
	GenerateDraft(ctx context.Context, task anthropic.Task, draftType anthropic.DraftType) (string, error)
}

// ActionPublisher publishes accounting events for successful metered actions.
type ActionPublisher interface {
	Publish(ctx context.Context, event events.ActionEvent)
}

// GetDevice retrieves the authenticated device from the context.
// This is a convenience wrapper around middleware.GetDevice.
func GetDevice(ctx context.Context) *device.Device {
	return middleware.GetDevice(ctx)
}
