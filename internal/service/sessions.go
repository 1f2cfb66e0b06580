package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fieldops/attendance-service/internal/auth"
	"github.com/fieldops/attendance-service/internal/domain"
	"github.com/fieldops/attendance-service/internal/events"
	"github.com/fieldops/attendance-service/internal/observability"
	apperrors "github.com/fieldops/attendance-service/pkg/util"
)

// Revocation triggers, used as metric labels and in audit payloads.
const (
	TriggerDisabled        = "disabled"
	TriggerDeleted         = "deleted"
	TriggerPasswordReset   = "password_reset"
	TriggerPasswordChanged = "password_changed"
)

// sessionRevoker forces every session of a subject to log out.
type sessionRevoker struct {
	registry   *auth.SessionRegistry
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

func (r sessionRevoker) revoke(ctx context.Context, actor events.Actor, subjectID int64, role domain.Role, trigger string) int {
	n := r.registry.ClearFor(subjectID, role)
	observability.SessionsRevokedTotal.WithLabelValues(role.String(), trigger).Add(float64(n))
	r.logger.Info("sessions revoked",
		zap.String("role", role.String()),
		zap.Int64("subject_id", subjectID),
		zap.String("trigger", trigger),
		zap.Int("sessions", n))
	publish(ctx, r.dispatcher, events.New(events.EventSessionsRevoked, actor, events.SessionsRevokedPayload{
		Role:      role.String(),
		SubjectID: subjectID,
		Trigger:   trigger,
		Count:     n,
	}))
	return n
}

func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	dispatcher.Publish(ctx, event)
}

func employeeActor(id int64) events.Actor {
	return events.Actor{Role: domain.RoleEmployee, SubjectID: id}
}

func adminActor(id int64) events.Actor {
	return events.Actor{Role: domain.RoleAdmin, SubjectID: id}
}

// notFound maps a missing row to a NOT_FOUND error naming the resource.
func notFound(err error, resource string, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return apperrors.MapError(err)
}
