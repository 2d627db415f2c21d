package profile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/repository"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

// barrier blocks each fetch until all three have started, proving they run
// concurrently. It gives up after a timeout instead of hanging the test.
type barrier struct {
	wg      sync.WaitGroup
	release chan struct{}
	once    sync.Once
}

func newBarrier(n int) *barrier {
	b := &barrier{release: make(chan struct{})}
	b.wg.Add(n)
	go func() {
		b.wg.Wait()
		b.once.Do(func() { close(b.release) })
	}()
	return b
}

func (b *barrier) arrive() error {
	if b == nil {
		return nil
	}
	b.wg.Done()
	select {
	case <-b.release:
		return nil
	case <-time.After(2 * time.Second):
		return errors.New("fetches did not run concurrently")
	}
}

type employeeRepoStub struct {
	barrier *barrier
	items   map[string]*domain.Employee
	err     error
	delay   time.Duration
	done    atomic.Bool
}

func (s *employeeRepoStub) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	defer s.done.Store(true)
	if err := s.barrier.arrive(); err != nil {
		return nil, err
	}
	time.Sleep(s.delay)
	if s.err != nil {
		return nil, s.err
	}
	if e, ok := s.items[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (s *employeeRepoStub) List(ctx context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	return nil, nil
}

type assignmentRepoStub struct {
	barrier *barrier
	items   []domain.Assignment
	err     error
	delay   time.Duration
	filters []repository.AssignmentFilter
	done    atomic.Bool
}

func (s *assignmentRepoStub) List(ctx context.Context, filter repository.AssignmentFilter) ([]domain.Assignment, error) {
	defer s.done.Store(true)
	s.filters = append(s.filters, filter)
	if err := s.barrier.arrive(); err != nil {
		return nil, err
	}
	time.Sleep(s.delay)
	return s.items, s.err
}

func (s *assignmentRepoStub) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	return nil, repository.ErrNotFound
}

func (s *assignmentRepoStub) Create(ctx context.Context, assignment *domain.Assignment) error {
	return nil
}

func (s *assignmentRepoStub) UpdateStatus(ctx context.Context, id string, update repository.StatusUpdate) (*domain.Assignment, error) {
	return nil, repository.ErrNotFound
}

type evaluationRepoStub struct {
	barrier *barrier
	items   []domain.Evaluation
	err     error
	delay   time.Duration
	calls   atomic.Int32
	done    atomic.Bool
}

func (s *evaluationRepoStub) List(ctx context.Context, filter repository.EvaluationFilter) ([]domain.Evaluation, error) {
	defer s.done.Store(true)
	s.calls.Add(1)
	if err := s.barrier.arrive(); err != nil {
		return nil, err
	}
	time.Sleep(s.delay)
	return s.items, s.err
}

func (s *evaluationRepoStub) Evaluate(ctx context.Context, evaluation *domain.Evaluation, actorID string) (*domain.Assignment, error) {
	return nil, errors.New("not used")
}

func (s *evaluationRepoStub) GetByAssignment(ctx context.Context, assignmentID string) (*domain.Evaluation, error) {
	return nil, repository.ErrNotFound
}

type fixture struct {
	employees   *employeeRepoStub
	assignments *assignmentRepoStub
	evaluations *evaluationRepoStub
	aggregator  *Aggregator
}

func newFixture(b *barrier) *fixture {
	f := &fixture{
		employees: &employeeRepoStub{
			barrier: b,
			items: map[string]*domain.Employee{
				"emp-1": {ID: "emp-1", FirstName: "Grace", LastName: "Hopper", Role: domain.EmployeeRoleIntern},
			},
		},
		assignments: &assignmentRepoStub{
			barrier: b,
			items: []domain.Assignment{
				{ID: "asg-3", Title: "third", Status: domain.AssignmentStatusPending},
				{ID: "asg-1", Title: "first", Status: domain.AssignmentStatusEvaluated},
				{ID: "asg-2", Title: "second", Status: domain.AssignmentStatusSubmitted},
			},
		},
		evaluations: &evaluationRepoStub{
			barrier: b,
			items: []domain.Evaluation{
				{ID: "ev-9", AssignmentID: "asg-1", Score: 85, Feedback: "Good work"},
			},
		},
	}
	f.aggregator = NewAggregator(AggregatorDependencies{
		EmployeeRepo:   f.employees,
		AssignmentRepo: f.assignments,
		EvaluationRepo: f.evaluations,
	})
	return f
}

func TestLoadProfileComposesAllThree(t *testing.T) {
	f := newFixture(newBarrier(3))

	profile, err := f.aggregator.LoadProfile(context.Background(), "emp-1")
	require.NoError(t, err)

	assert.Equal(t, "emp-1", profile.Employee.ID)
	require.Len(t, profile.Assignments, 3)
	assert.Equal(t, []string{"asg-3", "asg-1", "asg-2"}, []string{
		profile.Assignments[0].ID, profile.Assignments[1].ID, profile.Assignments[2].ID,
	})
	require.Len(t, profile.Evaluations, 1)
	assert.Equal(t, 85, profile.Evaluations[0].Score)

	require.Len(t, f.assignments.filters, 1)
	require.NotNil(t, f.assignments.filters[0].AssignedTo)
	assert.Equal(t, "emp-1", *f.assignments.filters[0].AssignedTo)
}

func TestLoadProfileEmptyListsAreNotNil(t *testing.T) {
	f := newFixture(nil)
	f.assignments.items = nil
	f.evaluations.items = nil

	profile, err := f.aggregator.LoadProfile(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.NotNil(t, profile.Assignments)
	assert.NotNil(t, profile.Evaluations)
}

func TestLoadProfileFailsWhenAnyFetchFails(t *testing.T) {
	down := errors.New("connection reset")
	cases := map[string]func(f *fixture){
		"employee":    func(f *fixture) { f.employees.err = down },
		"assignments": func(f *fixture) { f.assignments.err = down },
		"evaluations": func(f *fixture) { f.evaluations.err = down },
	}
	for name, breakFetch := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(newBarrier(3))
			breakFetch(f)

			profile, err := f.aggregator.LoadProfile(context.Background(), "emp-1")
			assert.Nil(t, profile)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeProfileLoad))
			assert.ErrorIs(t, err, down)
		})
	}
}

func TestLoadProfileMissingEmployee(t *testing.T) {
	f := newFixture(nil)

	profile, err := f.aggregator.LoadProfile(context.Background(), "emp-404")
	assert.Nil(t, profile)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeProfileLoad))

	var inner *apperrors.DomainError
	require.ErrorAs(t, apperrors.ToDomainError(err).Err, &inner)
	assert.Equal(t, apperrors.CodeNotFound, inner.Code)
}

func TestLoadProfileWaitsForEveryFetch(t *testing.T) {
	f := newFixture(nil)
	f.employees.err = errors.New("fast failure")
	f.assignments.delay = 50 * time.Millisecond
	f.evaluations.delay = 80 * time.Millisecond

	_, err := f.aggregator.LoadProfile(context.Background(), "emp-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fast failure")
	assert.True(t, f.assignments.done.Load(), "assignments fetch still in flight")
	assert.True(t, f.evaluations.done.Load(), "evaluations fetch still in flight")
}

func TestLoadProfileReturnsFirstFailure(t *testing.T) {
	f := newFixture(nil)
	f.assignments.err = errors.New("late failure")
	f.assignments.delay = 60 * time.Millisecond
	f.evaluations.err = errors.New("early failure")

	_, err := f.aggregator.LoadProfile(context.Background(), "emp-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "early failure")
	assert.NotContains(t, err.Error(), "late failure")
}

func TestLoadProfileFetchesFreshEveryCall(t *testing.T) {
	f := newFixture(nil)

	_, err := f.aggregator.LoadProfile(context.Background(), "emp-1")
	require.NoError(t, err)
	_, err = f.aggregator.LoadProfile(context.Background(), "emp-1")
	require.NoError(t, err)

	assert.Equal(t, int32(2), f.evaluations.calls.Load())
	assert.Len(t, f.assignments.filters, 2)
}

func TestLoadProfileRejectsBlankID(t *testing.T) {
	f := newFixture(nil)

	_, err := f.aggregator.LoadProfile(context.Background(), "  ")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeProfileLoad))
	assert.Zero(t, f.evaluations.calls.Load())
}
