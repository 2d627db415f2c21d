package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/events"
	"github.com/spec-kit/assignment-service/internal/repository"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

type assignmentStoreStub struct {
	items     map[string]*domain.Assignment
	getErr    error
	updateErr error
	updates   []repository.StatusUpdate
}

func newAssignmentStoreStub(items ...domain.Assignment) *assignmentStoreStub {
	s := &assignmentStoreStub{items: map[string]*domain.Assignment{}}
	for i := range items {
		item := items[i]
		s.items[item.ID] = &item
	}
	return s
}

func (s *assignmentStoreStub) List(ctx context.Context, filter repository.AssignmentFilter) ([]domain.Assignment, error) {
	return nil, nil
}

func (s *assignmentStoreStub) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if item, ok := s.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (s *assignmentStoreStub) Create(ctx context.Context, assignment *domain.Assignment) error {
	return nil
}

func (s *assignmentStoreStub) UpdateStatus(ctx context.Context, id string, update repository.StatusUpdate) (*domain.Assignment, error) {
	s.updates = append(s.updates, update)
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	item, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	item.Status = update.Status
	if update.Status == domain.AssignmentStatusSubmitted {
		item.SubmissionText = update.SubmissionText
	}
	cp := *item
	return &cp, nil
}

// evaluationStoreStub shares state with an assignmentStoreStub and, like the
// database, keeps at most one evaluation per assignment.
type evaluationStoreStub struct {
	assignments *assignmentStoreStub
	created     []domain.Evaluation
	actors      []string
	err         error
	failNext    error
}

func (s *evaluationStoreStub) Evaluate(ctx context.Context, evaluation *domain.Evaluation, actorID string) (*domain.Assignment, error) {
	s.actors = append(s.actors, actorID)
	if s.err != nil {
		return nil, s.err
	}
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return nil, err
	}
	for _, existing := range s.created {
		if existing.AssignmentID == evaluation.AssignmentID {
			return nil, errors.New("duplicate key value violates unique constraint")
		}
	}
	item, ok := s.assignments.items[evaluation.AssignmentID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if item.Status != domain.AssignmentStatusSubmitted {
		return nil, repository.ErrStatusChanged
	}
	item.Status = domain.AssignmentStatusEvaluated
	evaluation.ID = fmt.Sprintf("eval-%d", len(s.created)+1)
	s.created = append(s.created, *evaluation)
	cp := *item
	return &cp, nil
}

func (s *evaluationStoreStub) GetByAssignment(ctx context.Context, assignmentID string) (*domain.Evaluation, error) {
	for _, e := range s.created {
		if e.AssignmentID == assignmentID {
			cp := e
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *evaluationStoreStub) List(ctx context.Context, filter repository.EvaluationFilter) ([]domain.Evaluation, error) {
	return s.created, nil
}

var (
	intern  = domain.Actor{EmployeeID: "emp-intern", Role: domain.EmployeeRoleIntern}
	outside = domain.Actor{EmployeeID: "emp-outside", Role: domain.EmployeeRoleIntern}
	admin   = domain.Actor{EmployeeID: "emp-admin", Role: domain.EmployeeRoleAdmin}
)

func pendingAssignment() domain.Assignment {
	return domain.Assignment{
		ID:          "asg-1",
		Title:       "Build onboarding checklist",
		CreatedByID: admin.EmployeeID,
		AssigneeIDs: []string{intern.EmployeeID},
		StartDate:   time.Now().Add(-48 * time.Hour),
		EndDate:     time.Now().Add(48 * time.Hour),
		Status:      domain.AssignmentStatusPending,
	}
}

func newTestEngine(assignments *assignmentStoreStub, evaluations *evaluationStoreStub, dispatcher events.Dispatcher) *Engine {
	evaluations.assignments = assignments
	return NewEngine(EngineDependencies{
		AssignmentRepo: assignments,
		EvaluationRepo: evaluations,
		Dispatcher:     dispatcher,
	})
}

func TestEngineFullLifecycle(t *testing.T) {
	ctx := context.Background()
	assignments := newAssignmentStoreStub(pendingAssignment())
	evaluations := &evaluationStoreStub{}
	dispatcher := events.NewInMemoryDispatcher()
	var published []events.EventType
	record := func(ctx context.Context, e events.Event) error {
		published = append(published, e.Type)
		return nil
	}
	dispatcher.Subscribe(events.EventAssignmentStatusChanged, record)
	dispatcher.Subscribe(events.EventAssignmentEvaluated, record)
	engine := newTestEngine(assignments, evaluations, dispatcher)

	steps := []struct {
		actor  domain.Actor
		target domain.AssignmentStatus
		action Action
	}{
		{intern, domain.AssignmentStatusInProgress, ActionStart},
		{intern, domain.AssignmentStatusSubmitted, ActionSubmit},
		{intern, domain.AssignmentStatusInProgress, ActionUnsubmit},
		{intern, domain.AssignmentStatusSubmitted, ActionSubmit},
	}
	for _, step := range steps {
		result, err := engine.RequestTransition(ctx, step.actor, "asg-1", step.target, TransitionOptions{})
		require.NoError(t, err, "action %s", step.action)
		assert.Equal(t, step.action, result.Action)
		assert.Equal(t, step.target, result.Assignment.Status)
		assert.Nil(t, result.Evaluation)
	}

	result, err := engine.RequestTransition(ctx, admin, "asg-1", domain.AssignmentStatusEvaluated, TransitionOptions{
		Evaluation: &EvaluationInput{Score: 85, Feedback: "Good work"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusEvaluated, result.Assignment.Status)
	require.NotNil(t, result.Evaluation)
	assert.Equal(t, 85, result.Evaluation.Score)
	assert.Equal(t, "Good work", result.Evaluation.Feedback)
	assert.Equal(t, "asg-1", result.Evaluation.AssignmentID)
	assert.Len(t, evaluations.created, 1)

	_, err = engine.RequestTransition(ctx, intern, "asg-1", domain.AssignmentStatusInProgress, TransitionOptions{})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeInvalidTransition, domainErr.Code)
	assert.Equal(t, "EVALUATED", domainErr.Details["from"])
	assert.Equal(t, "IN_PROGRESS", domainErr.Details["to"])

	assert.Len(t, assignments.updates, 4)
	assert.Equal(t, []string{admin.EmployeeID}, evaluations.actors)
	assert.Equal(t, []events.EventType{
		events.EventAssignmentStatusChanged,
		events.EventAssignmentStatusChanged,
		events.EventAssignmentStatusChanged,
		events.EventAssignmentStatusChanged,
		events.EventAssignmentStatusChanged,
		events.EventAssignmentEvaluated,
	}, published)
}

func TestEngineRejectsEdgesOutsideTable(t *testing.T) {
	ctx := context.Background()
	for _, from := range domain.AssignmentStatuses {
		for _, to := range domain.AssignmentStatuses {
			if _, ok := ActionFor(from, to); ok {
				continue
			}
			a := pendingAssignment()
			a.Status = from
			assignments := newAssignmentStoreStub(a)
			engine := newTestEngine(assignments, &evaluationStoreStub{}, nil)

			_, err := engine.RequestTransition(ctx, admin, a.ID, to, TransitionOptions{
				Evaluation: &EvaluationInput{Score: 50, Feedback: "ok"},
			})
			assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition), "%s -> %s", from, to)
			assert.Empty(t, assignments.updates, "%s -> %s must not reach the store", from, to)
		}
	}
}

func TestEnginePendingRejectionMessage(t *testing.T) {
	engine := newTestEngine(newAssignmentStoreStub(pendingAssignment()), &evaluationStoreStub{}, nil)

	_, err := engine.RequestTransition(context.Background(), intern, "asg-1", domain.AssignmentStatusSubmitted, TransitionOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot act on a not-yet-started assignment")
}

func TestEngineRejectsUnknownTarget(t *testing.T) {
	engine := newTestEngine(newAssignmentStoreStub(pendingAssignment()), &evaluationStoreStub{}, nil)

	_, err := engine.RequestTransition(context.Background(), intern, "asg-1", domain.AssignmentStatus("ARCHIVED"), TransitionOptions{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
}

func TestEngineNonAssigneeIsUnauthorized(t *testing.T) {
	assignments := newAssignmentStoreStub(pendingAssignment())
	engine := newTestEngine(assignments, &evaluationStoreStub{}, nil)

	_, err := engine.RequestTransition(context.Background(), outside, "asg-1", domain.AssignmentStatusInProgress, TransitionOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
	assert.False(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
	assert.Empty(t, assignments.updates)
}

func TestEngineEvaluateRequiresEvaluator(t *testing.T) {
	a := pendingAssignment()
	a.Status = domain.AssignmentStatusSubmitted
	assignments := newAssignmentStoreStub(a)
	evaluations := &evaluationStoreStub{}
	engine := newTestEngine(assignments, evaluations, nil)

	_, err := engine.RequestTransition(context.Background(), intern, a.ID, domain.AssignmentStatusEvaluated, TransitionOptions{
		Evaluation: &EvaluationInput{Score: 90, Feedback: "self review"},
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
	assert.Empty(t, evaluations.created)
	assert.Empty(t, assignments.updates)
}

func TestEngineEvaluateOnlyByCreatingAdmin(t *testing.T) {
	a := pendingAssignment()
	a.Status = domain.AssignmentStatusSubmitted
	assignments := newAssignmentStoreStub(a)
	evaluations := &evaluationStoreStub{}
	engine := newTestEngine(assignments, evaluations, nil)
	otherAdmin := domain.Actor{EmployeeID: "emp-admin-2", Role: domain.EmployeeRoleAdmin}

	_, err := engine.RequestTransition(context.Background(), otherAdmin, a.ID, domain.AssignmentStatusEvaluated, TransitionOptions{
		Evaluation: &EvaluationInput{Score: 90, Feedback: "looks fine"},
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
	assert.Empty(t, evaluations.actors)
	assert.Equal(t, domain.AssignmentStatusSubmitted, assignments.items[a.ID].Status)
}

func TestEngineEvaluateFailureLeavesNoEvaluation(t *testing.T) {
	ctx := context.Background()
	a := pendingAssignment()
	a.Status = domain.AssignmentStatusSubmitted
	assignments := newAssignmentStoreStub(a)
	evaluations := &evaluationStoreStub{failNext: errors.New("connection reset")}
	engine := newTestEngine(assignments, evaluations, nil)
	input := TransitionOptions{Evaluation: &EvaluationInput{Score: 85, Feedback: "Good work"}}

	_, err := engine.RequestTransition(ctx, admin, a.ID, domain.AssignmentStatusEvaluated, input)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeTransport))
	assert.Empty(t, evaluations.created)
	assert.Equal(t, domain.AssignmentStatusSubmitted, assignments.items[a.ID].Status)

	result, err := engine.RequestTransition(ctx, admin, a.ID, domain.AssignmentStatusEvaluated, input)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusEvaluated, result.Assignment.Status)
	require.Len(t, evaluations.created, 1)
	assert.Equal(t, result.Evaluation.ID, evaluations.created[0].ID)

	_, err = engine.RequestTransition(ctx, intern, a.ID, domain.AssignmentStatusInProgress, TransitionOptions{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
	assert.Empty(t, assignments.updates)
}

func TestEngineEvaluateLosesRaceWithUnsubmit(t *testing.T) {
	a := pendingAssignment()
	a.Status = domain.AssignmentStatusSubmitted
	assignments := newAssignmentStoreStub(a)
	evaluations := &evaluationStoreStub{err: repository.ErrStatusChanged}
	engine := newTestEngine(assignments, evaluations, nil)

	_, err := engine.RequestTransition(context.Background(), admin, a.ID, domain.AssignmentStatusEvaluated, TransitionOptions{
		Evaluation: &EvaluationInput{Score: 85, Feedback: "Good work"},
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
	assert.Empty(t, evaluations.created)
}

func TestEngineEvaluateValidatesInput(t *testing.T) {
	a := pendingAssignment()
	a.Status = domain.AssignmentStatusSubmitted

	cases := map[string]*EvaluationInput{
		"missing":     nil,
		"score high":  {Score: 101, Feedback: "x"},
		"score low":   {Score: -1, Feedback: "x"},
		"no feedback": {Score: 70},
		"blank":       {Score: 70, Feedback: "   "},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			assignments := newAssignmentStoreStub(a)
			evaluations := &evaluationStoreStub{}
			engine := newTestEngine(assignments, evaluations, nil)

			_, err := engine.RequestTransition(context.Background(), admin, a.ID, domain.AssignmentStatusEvaluated, TransitionOptions{Evaluation: input})
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
			assert.Empty(t, evaluations.actors)
		})
	}
}

func TestEngineScoreBoundsAccepted(t *testing.T) {
	for _, score := range []int{0, 100} {
		a := pendingAssignment()
		a.Status = domain.AssignmentStatusSubmitted
		engine := newTestEngine(newAssignmentStoreStub(a), &evaluationStoreStub{}, nil)

		result, err := engine.RequestTransition(context.Background(), admin, a.ID, domain.AssignmentStatusEvaluated, TransitionOptions{
			Evaluation: &EvaluationInput{Score: score, Feedback: "boundary"},
		})
		require.NoError(t, err)
		assert.Equal(t, score, result.Evaluation.Score)
	}
}

func TestEngineSubmitRecordsSubmissionText(t *testing.T) {
	a := pendingAssignment()
	a.Status = domain.AssignmentStatusInProgress
	assignments := newAssignmentStoreStub(a)
	engine := newTestEngine(assignments, &evaluationStoreStub{}, nil)
	text := "see attached repo"

	result, err := engine.RequestTransition(context.Background(), intern, a.ID, domain.AssignmentStatusSubmitted, TransitionOptions{SubmissionText: &text})
	require.NoError(t, err)
	require.NotNil(t, result.Assignment.SubmissionText)
	assert.Equal(t, text, *result.Assignment.SubmissionText)
	assert.Equal(t, intern.EmployeeID, assignments.updates[0].ActorID)
}

func TestEngineNotFoundAndTransportErrors(t *testing.T) {
	ctx := context.Background()

	engine := newTestEngine(newAssignmentStoreStub(), &evaluationStoreStub{}, nil)
	_, err := engine.RequestTransition(ctx, intern, "missing", domain.AssignmentStatusInProgress, TransitionOptions{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	down := errors.New("connection refused")
	assignments := newAssignmentStoreStub(pendingAssignment())
	assignments.getErr = down
	engine = newTestEngine(assignments, &evaluationStoreStub{}, nil)
	_, err = engine.RequestTransition(ctx, intern, "asg-1", domain.AssignmentStatusInProgress, TransitionOptions{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeTransport))
	assert.ErrorIs(t, err, down)
}

func TestEngineFailedWriteLeavesStatusUnchanged(t *testing.T) {
	assignments := newAssignmentStoreStub(pendingAssignment())
	assignments.updateErr = errors.New("timeout")
	engine := newTestEngine(assignments, &evaluationStoreStub{}, nil)

	result, err := engine.RequestTransition(context.Background(), intern, "asg-1", domain.AssignmentStatusInProgress, TransitionOptions{})
	assert.Nil(t, result)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeTransport))
	assert.Len(t, assignments.updates, 1, "no retry inside the engine")

	stored, getErr := assignments.GetByID(context.Background(), "asg-1")
	require.NoError(t, getErr)
	assert.Equal(t, domain.AssignmentStatusPending, stored.Status)
}

func TestEngineRequiresActor(t *testing.T) {
	engine := newTestEngine(newAssignmentStoreStub(pendingAssignment()), &evaluationStoreStub{}, nil)

	_, err := engine.RequestTransition(context.Background(), domain.Actor{}, "asg-1", domain.AssignmentStatusInProgress, TransitionOptions{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))
}

func TestOverdueAfterSubmit(t *testing.T) {
	a := pendingAssignment()
	a.Status = domain.AssignmentStatusInProgress
	a.EndDate = time.Now().Add(-24 * time.Hour)
	assignments := newAssignmentStoreStub(a)
	engine := newTestEngine(assignments, &evaluationStoreStub{}, nil)

	assert.True(t, IsOverdue(a, time.Now()))

	result, err := engine.RequestTransition(context.Background(), intern, a.ID, domain.AssignmentStatusSubmitted, TransitionOptions{})
	require.NoError(t, err)
	assert.Equal(t, a.EndDate, result.Assignment.EndDate)
	assert.False(t, IsOverdue(*result.Assignment, time.Now()))
}
