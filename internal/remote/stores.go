package remote

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/repository"
)

type employeeStore struct {
	client *Client
}

func (s *employeeStore) GetByID(ctx context.Context, employeeID string) (*domain.Employee, error) {
	var dto employeeDTO
	if err := s.client.get(ctx, "/employees/"+url.PathEscape(employeeID)+"/", nil, &dto); err != nil {
		return nil, err
	}
	employee := dto.toDomain()
	return &employee, nil
}

func (s *employeeStore) List(ctx context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	query := url.Values{}
	if filter.Role != nil {
		query.Set("role", string(*filter.Role))
	}
	if filter.OrganizationID != nil {
		query.Set("organization_id", *filter.OrganizationID)
	}
	var dtos []employeeDTO
	if err := s.client.get(ctx, "/employees/", query, &dtos); err != nil {
		return nil, err
	}
	employees := make([]domain.Employee, 0, len(dtos))
	for _, dto := range dtos {
		employee := dto.toDomain()
		if filter.Role != nil && employee.Role != *filter.Role {
			continue
		}
		if filter.OrganizationID != nil && employee.OrganizationID != *filter.OrganizationID {
			continue
		}
		employees = append(employees, employee)
	}
	return employees, nil
}

type assignmentStore struct {
	client *Client
}

func (s *assignmentStore) GetByID(ctx context.Context, assignmentID string) (*domain.Assignment, error) {
	var dto assignmentDTO
	if err := s.client.get(ctx, assignmentPath(assignmentID), nil, &dto); err != nil {
		return nil, err
	}
	assignment := dto.toDomain()
	return &assignment, nil
}

// List forwards the filter as query parameters and applies it again locally,
// since older API versions ignore parameters they do not know.
func (s *assignmentStore) List(ctx context.Context, filter repository.AssignmentFilter) ([]domain.Assignment, error) {
	query := url.Values{}
	if filter.AssignedTo != nil {
		query.Set("assigned_to", *filter.AssignedTo)
	}
	for _, status := range filter.Statuses {
		query.Add("status", string(status))
	}
	var dtos []assignmentDTO
	if err := s.client.get(ctx, "/assignments/", query, &dtos); err != nil {
		return nil, err
	}
	assignments := make([]domain.Assignment, 0, len(dtos))
	for _, dto := range dtos {
		assignment := dto.toDomain()
		if matches(assignment, filter) {
			assignments = append(assignments, assignment)
		}
	}
	return assignments, nil
}

func (s *assignmentStore) Create(ctx context.Context, assignment *domain.Assignment) error {
	req := createAssignmentRequest{
		Title:        assignment.Title,
		Description:  assignment.Description,
		Organization: id(assignment.OrganizationID),
		CreatedByID:  id(assignment.CreatedByID),
		EmployeeIDs:  make([]id, 0, len(assignment.AssigneeIDs)),
		StartDate:    assignment.StartDate.UTC(),
		EndDate:      assignment.EndDate.UTC(),
		Status:       string(assignment.Status),
	}
	for _, assignee := range assignment.AssigneeIDs {
		req.EmployeeIDs = append(req.EmployeeIDs, id(assignee))
	}
	var dto assignmentDTO
	if err := s.client.post(ctx, "/assignments/", req, &dto); err != nil {
		return err
	}
	created := dto.toDomain()
	// The create response may omit the write-only assignee list.
	if len(created.AssigneeIDs) == 0 {
		created.AssigneeIDs = assignment.AssigneeIDs
	}
	*assignment = created
	return nil
}

func (s *assignmentStore) UpdateStatus(ctx context.Context, assignmentID string, update repository.StatusUpdate) (*domain.Assignment, error) {
	req := updateStatusRequest{
		EmployeeID: id(update.ActorID),
		Status:     string(update.Status),
	}
	if update.Status == domain.AssignmentStatusSubmitted {
		req.SubmissionText = update.SubmissionText
	}
	var dto assignmentDTO
	if err := s.client.post(ctx, assignmentPath(assignmentID)+"update_status/", req, &dto); err != nil {
		return nil, err
	}
	updated := dto.toDomain()
	return &updated, nil
}

func assignmentPath(assignmentID string) string {
	return "/assignments/" + url.PathEscape(assignmentID) + "/"
}

func matches(a domain.Assignment, filter repository.AssignmentFilter) bool {
	if filter.AssignedTo != nil && !a.HasAssignee(*filter.AssignedTo) {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if a.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.EndAfter != nil && a.EndDate.Before(*filter.EndAfter) {
		return false
	}
	if filter.EndBefore != nil && a.EndDate.After(*filter.EndBefore) {
		return false
	}
	return true
}

type evaluationStore struct {
	client *Client
}

// Evaluate posts the evaluation and reads the assignment back. The backend
// moves the assignment to EVALUATED when it saves the evaluation, so
// update_status is not called: it only accepts assignee-driven changes.
func (s *evaluationStore) Evaluate(ctx context.Context, evaluation *domain.Evaluation, actorID string) (*domain.Assignment, error) {
	req := createEvaluationRequest{
		Assignment: id(evaluation.AssignmentID),
		Score:      evaluation.Score,
		Feedback:   evaluation.Feedback,
	}
	var dto evaluationDTO
	if err := s.client.post(ctx, "/evaluations/", req, &dto); err != nil {
		return nil, err
	}
	created := dto.toDomain()
	if created.AssignmentID == "" {
		created.AssignmentID = evaluation.AssignmentID
	}
	if created.EvaluatedAt.IsZero() {
		created.EvaluatedAt = evaluation.EvaluatedAt
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	*evaluation = created

	var assignment assignmentDTO
	if err := s.client.get(ctx, assignmentPath(evaluation.AssignmentID), nil, &assignment); err != nil {
		return nil, err
	}
	updated := assignment.toDomain()
	return &updated, nil
}

func (s *evaluationStore) GetByAssignment(ctx context.Context, assignmentID string) (*domain.Evaluation, error) {
	var dto evaluationDTO
	err := s.client.get(ctx, "/evaluations/by_assignment/", url.Values{"assignment_id": {assignmentID}}, &dto)
	if err != nil {
		return nil, err
	}
	evaluation := dto.toDomain()
	return &evaluation, nil
}

// List relies on the server for the employee filter: an evaluation only
// references its assignment, so it cannot be re-checked here.
func (s *evaluationStore) List(ctx context.Context, filter repository.EvaluationFilter) ([]domain.Evaluation, error) {
	query := url.Values{}
	if employee := strings.TrimSpace(filter.Employee); employee != "" {
		query.Set("employee", employee)
	}
	var dtos []evaluationDTO
	if err := s.client.get(ctx, "/evaluations/", query, &dtos); err != nil {
		return nil, err
	}
	evaluations := make([]domain.Evaluation, 0, len(dtos))
	for _, dto := range dtos {
		evaluations = append(evaluations, dto.toDomain())
	}
	return evaluations, nil
}
