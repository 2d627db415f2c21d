package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/assignment-service/internal/events"
)

// NotificationService reacts to assignment events. Delivery to people is out
// of scope; every event is recorded in the structured log.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventAssignmentCreated, n.handleAssignmentCreated)
	n.dispatcher.Subscribe(events.EventAssignmentStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventAssignmentEvaluated, n.handleEvaluated)
}

func (n *NotificationService) handleAssignmentCreated(ctx context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("assignment_id", event.AssignmentID), zap.String("actor_id", event.Actor.EmployeeID)}
	if payload, ok := event.Payload.(events.AssignmentCreatedPayload); ok {
		fields = append(fields, zap.Strings("assignee_ids", payload.AssigneeIDs), zap.Time("end_date", payload.EndDate))
	}
	n.logger.Info("AssignmentCreated", fields...)
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("assignment_id", event.AssignmentID), zap.String("actor_id", event.Actor.EmployeeID)}
	if payload, ok := event.Payload.(events.AssignmentStatusChangedPayload); ok {
		fields = append(fields,
			zap.String("action", payload.Action),
			zap.String("old_status", string(payload.OldStatus)),
			zap.String("new_status", string(payload.NewStatus)))
	}
	n.logger.Info("AssignmentStatusChanged", fields...)
	return nil
}

func (n *NotificationService) handleEvaluated(ctx context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("assignment_id", event.AssignmentID), zap.String("actor_id", event.Actor.EmployeeID)}
	if payload, ok := event.Payload.(events.AssignmentEvaluatedPayload); ok {
		fields = append(fields, zap.String("evaluation_id", payload.EvaluationID), zap.Int("score", payload.Score))
	}
	n.logger.Info("AssignmentEvaluated", fields...)
	return nil
}
