package events

import (
	"time"

	"github.com/google/uuid"
)

// EventTypeAuditAction is published for every privileged state transition in
// the approval workflow. The audit recorder is its only subscriber.
const EventTypeAuditAction = "audit.action"

// AuditActionEvent carries everything the audit recorder needs to persist
// one log entry.
type AuditActionEvent struct {
	BaseEvent
	ActorID    int64
	Action     string
	TargetType string
	TargetID   int64
	Details    map[string]interface{}
}

func NewAuditActionEvent(actorID int64, action, targetType string, targetID int64, details map[string]interface{}) *AuditActionEvent {
	return &AuditActionEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAuditAction,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"actor_id":    actorID,
				"action":      action,
				"target_type": targetType,
				"target_id":   targetID,
			},
		},
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
	}
}
