package service

import (
	"context"
	"strings"

	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/repository"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

// EmployeeService exposes read access to employees.
type EmployeeService struct {
	employees repository.EmployeeRepository
}

// EmployeeListFilters define listing parameters.
type EmployeeListFilters struct {
	Role           string
	OrganizationID string
}

// NewEmployeeService constructs the service.
func NewEmployeeService(employees repository.EmployeeRepository) *EmployeeService {
	return &EmployeeService{employees: employees}
}

// ListEmployees returns employees, optionally narrowed by role and organization.
func (s *EmployeeService) ListEmployees(ctx context.Context, filters EmployeeListFilters) ([]domain.Employee, error) {
	var filter repository.EmployeeFilter
	if role := strings.ToUpper(strings.TrimSpace(filters.Role)); role != "" {
		r := domain.EmployeeRole(role)
		if !r.Valid() {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": filters.Role})
		}
		filter.Role = &r
	}
	if org := strings.TrimSpace(filters.OrganizationID); org != "" {
		filter.OrganizationID = &org
	}
	employees, err := s.employees.List(ctx, filter)
	if err != nil {
		return nil, mapStoreError(err, "employee", "")
	}
	if employees == nil {
		employees = []domain.Employee{}
	}
	return employees, nil
}

// GetEmployee returns a single employee.
func (s *EmployeeService) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "employee", id)
	}
	return employee, nil
}
