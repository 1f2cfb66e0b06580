package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/fieldops/attendance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionsRevoked  EventType = "sessions_revoked"
	EventEmployeeDisabled EventType = "employee_disabled"
	EventWeChatBound      EventType = "wechat_bound"
	EventCheckInRecorded  EventType = "checkin_recorded"
)

// Actor identifies who caused an event. A zero Actor means the system.
type Actor struct {
	Role      domain.Role `json:"role"`
	SubjectID int64       `json:"subject_id"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, actor Actor, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// SessionsRevokedPayload payload.
type SessionsRevokedPayload struct {
	Role      string `json:"role"`
	SubjectID int64  `json:"subject_id"`
	Trigger   string `json:"trigger"`
	Count     int    `json:"count"`
}

// EmployeeDisabledPayload payload.
type EmployeeDisabledPayload struct {
	EmployeeID int64 `json:"employee_id"`
}

// WeChatBoundPayload payload.
type WeChatBoundPayload struct {
	EmployeeID int64 `json:"employee_id"`
}

// CheckInRecordedPayload payload.
type CheckInRecordedPayload struct {
	RecordID       int64   `json:"record_id"`
	EmployeeID     int64   `json:"employee_id"`
	PointID        int64   `json:"point_id"`
	DistanceMeters float64 `json:"distance_meters"`
}
