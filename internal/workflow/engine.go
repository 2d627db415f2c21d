package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/events"
	"github.com/spec-kit/assignment-service/internal/observability"
	"github.com/spec-kit/assignment-service/internal/repository"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

// EvaluationInput is required when the target status is EVALUATED.
type EvaluationInput struct {
	Score    int
	Feedback string `validate:"required"`
}

// TransitionOptions carries the optional payload of a transition.
type TransitionOptions struct {
	SubmissionText *string
	Evaluation     *EvaluationInput
}

// TransitionResult is the store-confirmed outcome of a transition.
type TransitionResult struct {
	Action     Action
	Assignment *domain.Assignment
	// Evaluation is set only for the evaluate action.
	Evaluation *domain.Evaluation
}

// Engine validates transitions and delegates status writes to the backing
// store. It holds no assignment state of its own.
type Engine struct {
	assignments repository.AssignmentRepository
	evaluations repository.EvaluationRepository
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	validate    *validator.Validate
	logger      *zap.Logger
}

// EngineDependencies bundles collaborators.
type EngineDependencies struct {
	AssignmentRepo repository.AssignmentRepository
	EvaluationRepo repository.EvaluationRepository
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Validator      *validator.Validate
	Logger         *zap.Logger
}

// NewEngine creates the engine.
func NewEngine(deps EngineDependencies) *Engine {
	validate := deps.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		assignments: deps.AssignmentRepo,
		evaluations: deps.EvaluationRepo,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		validate:    validate,
		logger:      logger,
	}
}

// RequestTransition moves an assignment to target on behalf of actor.
//
// Checks run in order: the assignment must exist, the edge must be in the
// transition table, the actor must hold the relation the action requires and
// the evaluate payload must be valid. Only then is the write delegated to the
// store, whose returned assignment is the result. Evaluate is a single store
// write covering both the evaluation and the status. Nothing is retried here.
func (e *Engine) RequestTransition(ctx context.Context, actor domain.Actor, assignmentID string, target domain.AssignmentStatus, opts TransitionOptions) (*TransitionResult, error) {
	result, action, err := e.requestTransition(ctx, actor, assignmentID, target, opts)
	outcome := "ok"
	if err != nil {
		outcome = apperrors.ToDomainError(err).Code
		e.logger.Debug("transition rejected",
			zap.String("assignment_id", assignmentID),
			zap.String("actor_id", actor.EmployeeID),
			zap.String("target", string(target)),
			zap.Error(err))
	}
	label := string(action)
	if label == "" {
		label = "none"
	}
	e.metrics.RecordTransition(label, outcome)
	return result, err
}

func (e *Engine) requestTransition(ctx context.Context, actor domain.Actor, assignmentID string, target domain.AssignmentStatus, opts TransitionOptions) (*TransitionResult, Action, error) {
	if strings.TrimSpace(actor.EmployeeID) == "" {
		return nil, "", apperrors.NewUnauthenticated("actor required")
	}

	assignment, err := e.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, "", storeError(err, "assignment", assignmentID)
	}

	action, err := resolveAction(assignment.Status, target)
	if err != nil {
		return nil, "", err
	}
	if err := authorize(actor, assignment, action); err != nil {
		return nil, action, err
	}

	var (
		updated    *domain.Assignment
		evaluation *domain.Evaluation
	)
	if action == ActionEvaluate {
		evaluation, err = e.newEvaluation(assignment.ID, opts.Evaluation)
		if err != nil {
			return nil, action, err
		}
		updated, err = e.evaluations.Evaluate(ctx, evaluation, actor.EmployeeID)
	} else {
		update := repository.StatusUpdate{ActorID: actor.EmployeeID, Status: target}
		if action == ActionSubmit {
			update.SubmissionText = opts.SubmissionText
		}
		updated, err = e.assignments.UpdateStatus(ctx, assignment.ID, update)
	}
	if err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, action, apperrors.NewInvalidTransition(string(assignment.Status), string(target),
				"assignment status changed before the write")
		}
		return nil, action, storeError(err, "assignment", assignmentID)
	}

	e.publish(ctx, actor, assignment.Status, updated, action, evaluation)
	e.logger.Info("assignment transitioned",
		zap.String("assignment_id", updated.ID),
		zap.String("actor_id", actor.EmployeeID),
		zap.String("action", string(action)),
		zap.String("status", string(updated.Status)))

	return &TransitionResult{Action: action, Assignment: updated, Evaluation: evaluation}, action, nil
}

func resolveAction(from, to domain.AssignmentStatus) (Action, error) {
	if action, ok := ActionFor(from, to); ok {
		return action, nil
	}
	var message string
	switch from {
	case domain.AssignmentStatusPending:
		message = "cannot act on a not-yet-started assignment"
	case domain.AssignmentStatusEvaluated:
		message = "assignment is evaluated and can no longer change"
	default:
		message = fmt.Sprintf("cannot move assignment from %s to %s", from, to)
	}
	return "", apperrors.NewInvalidTransition(string(from), string(to), message)
}

func authorize(actor domain.Actor, assignment *domain.Assignment, action Action) error {
	details := map[string]any{
		"assignment_id": assignment.ID,
		"actor_id":      actor.EmployeeID,
		"action":        string(action),
	}
	if action.requiresAssignee() && !assignment.HasAssignee(actor.EmployeeID) {
		return apperrors.NewUnauthorized("actor is not assigned to this assignment", details)
	}
	if action == ActionEvaluate && !actor.CanEvaluate(*assignment) {
		return apperrors.NewUnauthorized("only the admin who created the assignment can evaluate it", details)
	}
	return nil
}

func (e *Engine) newEvaluation(assignmentID string, input *EvaluationInput) (*domain.Evaluation, error) {
	if input == nil {
		return nil, apperrors.NewValidationError("evaluation required to evaluate an assignment", nil)
	}
	trimmed := EvaluationInput{Score: input.Score, Feedback: strings.TrimSpace(input.Feedback)}
	if err := e.validate.Struct(trimmed); err != nil {
		return nil, apperrors.NewValidationError("invalid evaluation", validationDetails(err))
	}
	if !domain.ValidScore(trimmed.Score) {
		return nil, apperrors.NewValidationError("invalid evaluation", map[string]any{
			"score": fmt.Sprintf("must be between %d and %d", domain.MinEvaluationScore, domain.MaxEvaluationScore),
		})
	}
	return &domain.Evaluation{
		AssignmentID: assignmentID,
		Score:        trimmed.Score,
		Feedback:     trimmed.Feedback,
		EvaluatedAt:  time.Now().UTC(),
	}, nil
}

func (e *Engine) publish(ctx context.Context, actor domain.Actor, oldStatus domain.AssignmentStatus, updated *domain.Assignment, action Action, evaluation *domain.Evaluation) {
	if e.dispatcher == nil {
		return
	}
	now := time.Now()
	publish := func(event events.Event) {
		if err := e.dispatcher.Publish(ctx, event); err != nil {
			e.logger.Warn("event handler failed",
				zap.String("event_type", string(event.Type)),
				zap.String("assignment_id", event.AssignmentID),
				zap.Error(err))
		}
	}
	publish(events.Event{
		ID:           uuid.NewString(),
		Type:         events.EventAssignmentStatusChanged,
		AssignmentID: updated.ID,
		Actor:        events.ActorFrom(actor),
		Timestamp:    now,
		Payload: events.AssignmentStatusChangedPayload{
			Action:    string(action),
			OldStatus: oldStatus,
			NewStatus: updated.Status,
		},
	})
	if evaluation != nil {
		publish(events.Event{
			ID:           uuid.NewString(),
			Type:         events.EventAssignmentEvaluated,
			AssignmentID: updated.ID,
			Actor:        events.ActorFrom(actor),
			Timestamp:    now,
			Payload: events.AssignmentEvaluatedPayload{
				EvaluationID: evaluation.ID,
				Score:        evaluation.Score,
			},
		})
	}
}

// storeError classifies a backing-store failure. Missing records become
// NOT_FOUND; everything else is passed through opaquely.
func storeError(err error, resource, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{resource + "_id": id})
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return apperrors.NewTransportError(err)
}

func validationDetails(err error) map[string]any {
	details := map[string]any{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			details[strings.ToLower(fe.Field())] = fe.Tag()
		}
	}
	return details
}
