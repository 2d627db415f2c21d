package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/assignment-service/internal/domain"
)

func TestActionsFor(t *testing.T) {
	cases := map[domain.AssignmentStatus][]Action{
		domain.AssignmentStatusPending:    {ActionStart},
		domain.AssignmentStatusInProgress: {ActionSubmit},
		domain.AssignmentStatusSubmitted:  {ActionUnsubmit, ActionEvaluate},
		domain.AssignmentStatusEvaluated:  {},
	}
	for status, want := range cases {
		got := ActionsFor(domain.Assignment{Status: status})
		assert.Equal(t, want, got, "status %s", status)
	}
}

func TestActionsForUnknownStatusIsEmpty(t *testing.T) {
	got := ActionsFor(domain.Assignment{Status: "ARCHIVED"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestActionsForAgreesWithTargetOf(t *testing.T) {
	for _, status := range domain.AssignmentStatuses {
		for _, action := range ActionsFor(domain.Assignment{Status: status}) {
			to, ok := TargetOf(status, action)
			assert.True(t, ok)
			back, ok := ActionFor(status, to)
			assert.True(t, ok)
			assert.Equal(t, action, back)
		}
	}
}

func TestNoSelfLoopsOrExitFromEvaluated(t *testing.T) {
	for _, status := range domain.AssignmentStatuses {
		_, ok := ActionFor(status, status)
		assert.False(t, ok, "self loop on %s", status)
		_, ok = ActionFor(domain.AssignmentStatusEvaluated, status)
		assert.False(t, ok, "EVALUATED -> %s", status)
		_, ok = ActionFor(status, domain.AssignmentStatusPending)
		assert.False(t, ok, "%s -> PENDING", status)
	}
}
