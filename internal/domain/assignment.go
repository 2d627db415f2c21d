package domain

import "time"

// AssignmentStatus enumerates lifecycle states for assignments.
type AssignmentStatus string

const (
	AssignmentStatusPending    AssignmentStatus = "PENDING"
	AssignmentStatusInProgress AssignmentStatus = "IN_PROGRESS"
	AssignmentStatusSubmitted  AssignmentStatus = "SUBMITTED"
	AssignmentStatusEvaluated  AssignmentStatus = "EVALUATED"
)

// AssignmentStatuses lists every status in lifecycle order.
var AssignmentStatuses = []AssignmentStatus{
	AssignmentStatusPending,
	AssignmentStatusInProgress,
	AssignmentStatusSubmitted,
	AssignmentStatusEvaluated,
}

// Valid reports whether s is a known status.
func (s AssignmentStatus) Valid() bool {
	for _, candidate := range AssignmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// WorkDone reports whether the assignees have handed the work in.
func (s AssignmentStatus) WorkDone() bool {
	return s == AssignmentStatusSubmitted || s == AssignmentStatusEvaluated
}

// Assignment is a unit of work handed to one or more employees.
type Assignment struct {
	ID             string
	Title          string
	Description    string
	OrganizationID string
	CreatedByID    string
	AssigneeIDs    []string
	StartDate      time.Time
	EndDate        time.Time
	Status         AssignmentStatus
	SubmissionText *string
	SubmissionDate *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasAssignee reports whether employeeID is in the assignee set.
func (a Assignment) HasAssignee(employeeID string) bool {
	for _, id := range a.AssigneeIDs {
		if id == employeeID {
			return true
		}
	}
	return false
}

// IsOverdue is true iff now is past the end date and the work is not handed in.
// It is derived on every call and never stored.
func (a Assignment) IsOverdue(now time.Time) bool {
	if a.Status.WorkDone() {
		return false
	}
	return now.After(a.EndDate)
}

// TimeRemaining returns the time left before the deadline, or zero when the
// deadline has passed or the work is handed in.
func (a Assignment) TimeRemaining(now time.Time) time.Duration {
	if a.Status.WorkDone() || !now.Before(a.EndDate) {
		return 0
	}
	return a.EndDate.Sub(now)
}
