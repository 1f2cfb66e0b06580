package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/fieldops/attendance-service/internal/events"
)

// AuditService writes security-relevant events to the audit log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventSessionsRevoked, a.handle)
	a.dispatcher.Subscribe(events.EventEmployeeDisabled, a.handle)
	a.dispatcher.Subscribe(events.EventWeChatBound, a.handle)
	a.dispatcher.Subscribe(events.EventCheckInRecorded, a.handle)
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("actor_role", event.Actor.Role.String()),
		zap.Int64("actor_id", event.Actor.SubjectID),
		zap.Time("at", event.Timestamp),
		zap.Any("payload", event.Payload))
	return nil
}
