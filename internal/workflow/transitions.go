// Package workflow owns the assignment status state machine.
package workflow

import (
	"time"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// Action labels a status edge.
type Action string

const (
	ActionStart    Action = "start"
	ActionSubmit   Action = "submit"
	ActionUnsubmit Action = "unsubmit"
	ActionEvaluate Action = "evaluate"
)

type edge struct {
	action Action
	to     domain.AssignmentStatus
}

// EVALUATED has no outgoing edge.
var allowedTransitions = map[domain.AssignmentStatus][]edge{
	domain.AssignmentStatusPending: {
		{action: ActionStart, to: domain.AssignmentStatusInProgress},
	},
	domain.AssignmentStatusInProgress: {
		{action: ActionSubmit, to: domain.AssignmentStatusSubmitted},
	},
	domain.AssignmentStatusSubmitted: {
		{action: ActionUnsubmit, to: domain.AssignmentStatusInProgress},
		{action: ActionEvaluate, to: domain.AssignmentStatusEvaluated},
	},
	domain.AssignmentStatusEvaluated: {},
}

// ActionFor returns the action that moves an assignment from one status to
// another, and false when the edge is not in the table.
func ActionFor(from, to domain.AssignmentStatus) (Action, bool) {
	for _, candidate := range allowedTransitions[from] {
		if candidate.to == to {
			return candidate.action, true
		}
	}
	return "", false
}

// TargetOf returns the status an action leads to from the given status.
func TargetOf(from domain.AssignmentStatus, action Action) (domain.AssignmentStatus, bool) {
	for _, candidate := range allowedTransitions[from] {
		if candidate.action == action {
			return candidate.to, true
		}
	}
	return "", false
}

// ActionsFor lists the actions valid from the assignment's current status.
// The result is never nil.
func ActionsFor(assignment domain.Assignment) []Action {
	edges := allowedTransitions[assignment.Status]
	actions := make([]Action, 0, len(edges))
	for _, e := range edges {
		actions = append(actions, e.action)
	}
	return actions
}

// IsOverdue reports whether now is past the deadline while work is not handed in.
func IsOverdue(assignment domain.Assignment, now time.Time) bool {
	return assignment.IsOverdue(now)
}

func (a Action) requiresAssignee() bool {
	return a == ActionStart || a == ActionSubmit || a == ActionUnsubmit
}
