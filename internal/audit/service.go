package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/campushq/internship-portal/internal"
	"github.com/campushq/internship-portal/internal/core/events"
	"github.com/campushq/internship-portal/internal/telemetry"
)

// Repository is the append-only audit store.
type Repository interface {
	Create(entry *Entry) error
	List(limit, offset int) ([]*EntryWithActor, error)
	Count() (int64, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// RegisterSubscriber attaches the persistence handler to the bus. This is
// the audit pipeline's error boundary: a failed write is logged and counted
// but never propagates back into the workflow that triggered it.
func (s *Service) RegisterSubscriber(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeAuditAction, s.handleAuditEvent)
}

func (s *Service) handleAuditEvent(ctx context.Context, event events.Event) error {
	actionEvent, ok := event.(*events.AuditActionEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload type %T", event)
	}

	entry := &Entry{
		ActorID:    actionEvent.ActorID,
		Action:     actionEvent.Action,
		TargetType: actionEvent.TargetType,
		TargetID:   actionEvent.TargetID,
		CreatedAt:  actionEvent.OccurredAt(),
	}

	if len(actionEvent.Details) > 0 {
		raw, err := json.Marshal(actionEvent.Details)
		if err != nil {
			s.logger.Error("failed to encode audit details, recording entry without them",
				"action", actionEvent.Action, "error", err)
		} else {
			detail := string(raw)
			entry.Details = &detail
		}
	}

	if err := s.repo.Create(entry); err != nil {
		telemetry.AuditWriteFailures.Inc()
		s.logger.Error("failed to persist audit entry",
			"action", actionEvent.Action,
			"actor_id", actionEvent.ActorID,
			"target_type", actionEvent.TargetType,
			"target_id", actionEvent.TargetID,
			"error", err)
		return err
	}

	return nil
}

// ListResult is one page of audit entries, newest first.
type ListResult struct {
	Entries []*EntryWithActor `json:"entries"`
	Total   int64             `json:"total"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
}

func (s *Service) List(ctx context.Context, limit, offset int) (*ListResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.repo.List(limit, offset)
	if err != nil {
		return nil, internal.NewInternalError("failed to list audit entries", err)
	}
	total, err := s.repo.Count()
	if err != nil {
		return nil, internal.NewInternalError("failed to count audit entries", err)
	}

	return &ListResult{Entries: entries, Total: total, Limit: limit, Offset: offset}, nil
}
