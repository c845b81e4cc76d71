package audit

import (
	"context"

	"github.com/campushq/internship-portal/internal/core/events"
)

// BusRecorder publishes audit actions onto the event bus. Publication is
// fire-and-forget: the workflow services never wait on, or fail because of,
// the audit pipeline. Persistence failures are handled inside the
// subscriber's own error boundary.
type BusRecorder struct {
	bus *events.EventBus
}

func NewBusRecorder(bus *events.EventBus) *BusRecorder {
	return &BusRecorder{bus: bus}
}

func (r *BusRecorder) Record(ctx context.Context, actorID int64, action, targetType string, targetID int64, details map[string]interface{}) {
	event := events.NewAuditActionEvent(actorID, action, targetType, targetID, details)
	// Publish never blocks on handlers and its error path is unused for the
	// async case, so the return value carries no information here.
	_ = r.bus.Publish(ctx, event)
}
