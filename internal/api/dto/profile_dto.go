package dto

import (
	"time"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// EvaluationResponse is the public view of an evaluation.
type EvaluationResponse struct {
	ID           string    `json:"id"`
	AssignmentID string    `json:"assignment_id"`
	Score        int       `json:"score"`
	Feedback     string    `json:"feedback"`
	EvaluatedAt  time.Time `json:"evaluated_at"`
}

// NewEvaluationResponse maps the domain evaluation.
func NewEvaluationResponse(e domain.Evaluation) EvaluationResponse {
	return EvaluationResponse{
		ID:           e.ID,
		AssignmentID: e.AssignmentID,
		Score:        e.Score,
		Feedback:     e.Feedback,
		EvaluatedAt:  e.EvaluatedAt,
	}
}

// ProfileResponse joins an employee with their work.
type ProfileResponse struct {
	Employee    EmployeeResponse     `json:"employee"`
	Assignments []AssignmentResponse `json:"assignments"`
	Evaluations []EvaluationResponse `json:"evaluations"`
}

// NewProfileResponse maps a loaded profile as seen at now.
func NewProfileResponse(p domain.Profile, now time.Time) ProfileResponse {
	evaluations := make([]EvaluationResponse, 0, len(p.Evaluations))
	for _, e := range p.Evaluations {
		evaluations = append(evaluations, NewEvaluationResponse(e))
	}
	return ProfileResponse{
		Employee:    NewEmployeeResponse(p.Employee),
		Assignments: NewAssignmentList(p.Assignments, now),
		Evaluations: evaluations,
	}
}
