package events

import (
	"time"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAssignmentCreated       EventType = "assignment_created"
	EventAssignmentStatusChanged EventType = "assignment_status_changed"
	EventAssignmentEvaluated     EventType = "assignment_evaluated"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	EmployeeID string              `json:"employee_id"`
	Role       domain.EmployeeRole `json:"role"`
}

// ActorFrom converts an authenticated actor to event metadata.
func ActorFrom(actor domain.Actor) Actor {
	return Actor{EmployeeID: actor.EmployeeID, Role: actor.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	AssignmentID string      `json:"assignment_id"`
	Actor        Actor       `json:"actor"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload"`
}

// AssignmentCreatedPayload payload.
type AssignmentCreatedPayload struct {
	Title       string    `json:"title"`
	AssigneeIDs []string  `json:"assignee_ids"`
	EndDate     time.Time `json:"end_date"`
}

// AssignmentStatusChangedPayload payload.
type AssignmentStatusChangedPayload struct {
	Action    string                  `json:"action"`
	OldStatus domain.AssignmentStatus `json:"old_status"`
	NewStatus domain.AssignmentStatus `json:"new_status"`
}

// AssignmentEvaluatedPayload payload.
type AssignmentEvaluatedPayload struct {
	EvaluationID string `json:"evaluation_id"`
	Score        int    `json:"score"`
}
