package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/events"
	"github.com/spec-kit/assignment-service/internal/repository"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

// DeadlineWindow is how far ahead DeadlineApproaching looks.
const DeadlineWindow = 72 * time.Hour

// openStatuses are the statuses in which work is still outstanding.
var openStatuses = []domain.AssignmentStatus{
	domain.AssignmentStatusPending,
	domain.AssignmentStatusInProgress,
}

// AssignmentService handles assignment creation and read queries. Status
// changes go through the workflow engine instead.
type AssignmentService struct {
	assignments repository.AssignmentRepository
	employees   repository.EmployeeRepository
	evaluations repository.EvaluationRepository
	dispatcher  events.Dispatcher
	validate    *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	AssignmentRepo repository.AssignmentRepository
	EmployeeRepo   repository.EmployeeRepository
	EvaluationRepo repository.EvaluationRepository
	Dispatcher     events.Dispatcher
	Validator      *validator.Validate
	Logger         *zap.Logger
	Clock          func() time.Time
}

// CreateAssignmentInput is the payload for a new assignment.
type CreateAssignmentInput struct {
	Title          string    `validate:"required,max=200"`
	Description    string    `validate:"max=5000"`
	OrganizationID string
	AssigneeIDs    []string  `validate:"required,min=1,dive,required"`
	StartDate      time.Time `validate:"required"`
	EndDate        time.Time `validate:"required,gtefield=StartDate"`
}

// AssignmentListFilters define listing parameters.
type AssignmentListFilters struct {
	AssignedTo string
	Status     string
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	validate := deps.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &AssignmentService{
		assignments: deps.AssignmentRepo,
		employees:   deps.EmployeeRepo,
		evaluations: deps.EvaluationRepo,
		dispatcher:  deps.Dispatcher,
		validate:    validate,
		logger:      logger,
		now:         clock,
	}
}

// Now returns the service clock, shared with the presentation layer so derived
// fields agree with the queries.
func (s *AssignmentService) Now() time.Time {
	return s.now()
}

// CreateAssignment stores a new PENDING assignment. Only admins may create
// assignments and every assignee must exist.
func (s *AssignmentService) CreateAssignment(ctx context.Context, actor domain.Actor, input CreateAssignmentInput) (*domain.Assignment, error) {
	if strings.TrimSpace(actor.EmployeeID) == "" {
		return nil, apperrors.NewUnauthenticated("actor required")
	}
	if !actor.IsEvaluator() {
		return nil, apperrors.NewUnauthorized("only admins can create assignments", map[string]any{"actor_id": actor.EmployeeID})
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.AssigneeIDs = dedupe(input.AssigneeIDs)
	if err := s.validate.Struct(input); err != nil {
		return nil, apperrors.NewValidationError("invalid assignment", validationDetails(err))
	}

	creator, err := s.employees.GetByID(ctx, actor.EmployeeID)
	if err != nil {
		return nil, mapStoreError(err, "employee", actor.EmployeeID)
	}
	for _, assigneeID := range input.AssigneeIDs {
		if _, err := s.employees.GetByID(ctx, assigneeID); err != nil {
			if apperrors.HasCode(mapStoreError(err, "employee", assigneeID), apperrors.CodeNotFound) {
				return nil, apperrors.NewValidationError("unknown assignee", map[string]any{"assignee_id": assigneeID})
			}
			return nil, mapStoreError(err, "employee", assigneeID)
		}
	}

	orgID := strings.TrimSpace(input.OrganizationID)
	if orgID == "" {
		orgID = creator.OrganizationID
	}
	assignment := &domain.Assignment{
		Title:          input.Title,
		Description:    input.Description,
		OrganizationID: orgID,
		CreatedByID:    creator.ID,
		AssigneeIDs:    input.AssigneeIDs,
		StartDate:      input.StartDate.UTC(),
		EndDate:        input.EndDate.UTC(),
		Status:         domain.AssignmentStatusPending,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, mapStoreError(err, "assignment", "")
	}

	s.publishCreated(ctx, actor, assignment)
	s.logger.Info("assignment created",
		zap.String("assignment_id", assignment.ID),
		zap.String("actor_id", actor.EmployeeID),
		zap.Int("assignees", len(assignment.AssigneeIDs)))
	return assignment, nil
}

// ListAssignments returns assignments matching the filters in store order.
func (s *AssignmentService) ListAssignments(ctx context.Context, filters AssignmentListFilters) ([]domain.Assignment, error) {
	var filter repository.AssignmentFilter
	if assignee := strings.TrimSpace(filters.AssignedTo); assignee != "" {
		filter.AssignedTo = &assignee
	}
	if raw := strings.TrimSpace(filters.Status); raw != "" {
		status := domain.AssignmentStatus(strings.ToUpper(raw))
		if !status.Valid() {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": raw})
		}
		filter.Statuses = []domain.AssignmentStatus{status}
	}
	return s.list(ctx, filter)
}

// GetAssignment returns a single assignment.
func (s *AssignmentService) GetAssignment(ctx context.Context, id string) (*domain.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "assignment", id)
	}
	return assignment, nil
}

// GetEvaluation returns the evaluation attached to an assignment. An
// assignment that has not been evaluated yet yields NOT_FOUND.
func (s *AssignmentService) GetEvaluation(ctx context.Context, assignmentID string) (*domain.Evaluation, error) {
	if _, err := s.GetAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}
	evaluation, err := s.evaluations.GetByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, mapStoreError(err, "evaluation", assignmentID)
	}
	return evaluation, nil
}

// ListOverdue returns open assignments whose end date has passed.
func (s *AssignmentService) ListOverdue(ctx context.Context) ([]domain.Assignment, error) {
	now := s.now()
	candidates, err := s.list(ctx, repository.AssignmentFilter{Statuses: openStatuses, EndBefore: &now})
	if err != nil {
		return nil, err
	}
	overdue := make([]domain.Assignment, 0, len(candidates))
	for _, a := range candidates {
		if a.IsOverdue(now) {
			overdue = append(overdue, a)
		}
	}
	return overdue, nil
}

// ListDeadlineApproaching returns open assignments ending within DeadlineWindow.
func (s *AssignmentService) ListDeadlineApproaching(ctx context.Context) ([]domain.Assignment, error) {
	now := s.now()
	until := now.Add(DeadlineWindow)
	return s.list(ctx, repository.AssignmentFilter{Statuses: openStatuses, EndAfter: &now, EndBefore: &until})
}

func (s *AssignmentService) list(ctx context.Context, filter repository.AssignmentFilter) ([]domain.Assignment, error) {
	assignments, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, mapStoreError(err, "assignment", "")
	}
	if assignments == nil {
		assignments = []domain.Assignment{}
	}
	return assignments, nil
}

func (s *AssignmentService) publishCreated(ctx context.Context, actor domain.Actor, assignment *domain.Assignment) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:           uuid.NewString(),
		Type:         events.EventAssignmentCreated,
		AssignmentID: assignment.ID,
		Actor:        events.ActorFrom(actor),
		Timestamp:    s.now(),
		Payload: events.AssignmentCreatedPayload{
			Title:       assignment.Title,
			AssigneeIDs: assignment.AssigneeIDs,
			EndDate:     assignment.EndDate,
		},
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("assignment_id", assignment.ID),
			zap.Error(err))
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			out = append(out, id)
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
