// Package profile joins an employee with their assignments and evaluations.
package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/observability"
	"github.com/spec-kit/assignment-service/internal/repository"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

// Aggregator composes a Profile from three independent store reads. It keeps
// no state between calls, so every load is a fresh fetch.
type Aggregator struct {
	employees   repository.EmployeeRepository
	assignments repository.AssignmentRepository
	evaluations repository.EvaluationRepository
	metrics     *observability.Metrics
	logger      *zap.Logger
	timeout     time.Duration
}

// AggregatorDependencies bundles collaborators.
type AggregatorDependencies struct {
	EmployeeRepo   repository.EmployeeRepository
	AssignmentRepo repository.AssignmentRepository
	EvaluationRepo repository.EvaluationRepository
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	// Timeout bounds a whole load when positive.
	Timeout time.Duration
}

// NewAggregator creates the aggregator.
func NewAggregator(deps AggregatorDependencies) *Aggregator {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		employees:   deps.EmployeeRepo,
		assignments: deps.AssignmentRepo,
		evaluations: deps.EvaluationRepo,
		metrics:     deps.Metrics,
		logger:      logger,
		timeout:     deps.Timeout,
	}
}

// LoadProfile fetches the employee record, the assignments the employee is
// assigned to and the evaluations of those assignments concurrently.
//
// The call waits for all three fetches to settle. If any failed, it returns a
// PROFILE_LOAD_FAILED error wrapping the first failure and no profile.
func (a *Aggregator) LoadProfile(ctx context.Context, employeeID string) (*domain.Profile, error) {
	start := time.Now()
	profile, err := a.load(ctx, employeeID)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		a.logger.Warn("profile load failed", zap.String("employee_id", employeeID), zap.Error(err))
	}
	a.metrics.ObserveProfileLoad(outcome, time.Since(start))
	return profile, err
}

func (a *Aggregator) load(ctx context.Context, employeeID string) (*domain.Profile, error) {
	if strings.TrimSpace(employeeID) == "" {
		return nil, apperrors.NewProfileLoadError(employeeID,
			apperrors.NewValidationError("employee id required", nil))
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	var (
		employee    *domain.Employee
		assignments []domain.Assignment
		evaluations []domain.Evaluation
	)

	// A plain Group, not WithContext: one failure must not cancel the other
	// fetches, the join waits for every result.
	var g errgroup.Group
	g.Go(func() error {
		result, err := a.employees.GetByID(ctx, employeeID)
		if err != nil {
			return classify(err, "employee", employeeID)
		}
		employee = result
		return nil
	})
	g.Go(func() error {
		result, err := a.assignments.List(ctx, repository.AssignmentFilter{AssignedTo: &employeeID})
		if err != nil {
			return classify(err, "assignments", employeeID)
		}
		assignments = result
		return nil
	})
	g.Go(func() error {
		result, err := a.evaluations.List(ctx, repository.EvaluationFilter{Employee: employeeID})
		if err != nil {
			return classify(err, "evaluations", employeeID)
		}
		evaluations = result
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, apperrors.NewProfileLoadError(employeeID, err)
	}

	if assignments == nil {
		assignments = []domain.Assignment{}
	}
	if evaluations == nil {
		evaluations = []domain.Evaluation{}
	}
	return &domain.Profile{
		Employee:    *employee,
		Assignments: assignments,
		Evaluations: evaluations,
	}, nil
}

func classify(err error, resource, employeeID string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"employee_id": employeeID})
	}
	return apperrors.NewTransportError(err)
}
