package dto

import (
	"time"

	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/workflow"
)

// CreateAssignmentRequest payload.
type CreateAssignmentRequest struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	OrganizationID string    `json:"organization_id"`
	AssigneeIDs    []string  `json:"assignee_ids"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
}

// TransitionRequest asks for a status change. Score and feedback are only
// read when the target is EVALUATED.
type TransitionRequest struct {
	Status         domain.AssignmentStatus `json:"status"`
	SubmissionText *string                 `json:"submission_text"`
	Score          *int                    `json:"score"`
	Feedback       *string                 `json:"feedback"`
}

// AssignmentResponse is the assignment view. IsOverdue, TimeRemainingSeconds
// and Actions are derived at response time and never stored.
type AssignmentResponse struct {
	ID                   string                  `json:"id"`
	Title                string                  `json:"title"`
	Description          string                  `json:"description"`
	OrganizationID       string                  `json:"organization_id"`
	CreatedByID          string                  `json:"created_by_id"`
	AssigneeIDs          []string                `json:"assignee_ids"`
	StartDate            time.Time               `json:"start_date"`
	EndDate              time.Time               `json:"end_date"`
	Status               domain.AssignmentStatus `json:"status"`
	SubmissionText       *string                 `json:"submission_text"`
	SubmissionDate       *time.Time              `json:"submission_date"`
	IsOverdue            bool                    `json:"is_overdue"`
	TimeRemainingSeconds int64                   `json:"time_remaining_seconds"`
	Actions              []workflow.Action       `json:"actions"`
	CreatedAt            time.Time               `json:"created_at"`
	UpdatedAt            time.Time               `json:"updated_at"`
}

// NewAssignmentResponse maps the domain assignment as seen at now.
func NewAssignmentResponse(a domain.Assignment, now time.Time) AssignmentResponse {
	assignees := a.AssigneeIDs
	if assignees == nil {
		assignees = []string{}
	}
	return AssignmentResponse{
		ID:                   a.ID,
		Title:                a.Title,
		Description:          a.Description,
		OrganizationID:       a.OrganizationID,
		CreatedByID:          a.CreatedByID,
		AssigneeIDs:          assignees,
		StartDate:            a.StartDate,
		EndDate:              a.EndDate,
		Status:               a.Status,
		SubmissionText:       a.SubmissionText,
		SubmissionDate:       a.SubmissionDate,
		IsOverdue:            workflow.IsOverdue(a, now),
		TimeRemainingSeconds: int64(a.TimeRemaining(now) / time.Second),
		Actions:              workflow.ActionsFor(a),
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

// NewAssignmentList maps a slice, never returning nil.
func NewAssignmentList(items []domain.Assignment, now time.Time) []AssignmentResponse {
	out := make([]AssignmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, NewAssignmentResponse(a, now))
	}
	return out
}

// TransitionResponse reports the store-confirmed result of a transition.
type TransitionResponse struct {
	Action     workflow.Action     `json:"action"`
	Assignment AssignmentResponse  `json:"assignment"`
	Evaluation *EvaluationResponse `json:"evaluation,omitempty"`
}
