package domain

import "time"

// Score bounds for evaluations.
const (
	MinEvaluationScore = 0
	MaxEvaluationScore = 100
)

// Evaluation is the immutable scored review of a submitted assignment.
type Evaluation struct {
	ID           string
	AssignmentID string
	Score        int
	Feedback     string
	EvaluatedAt  time.Time
	CreatedAt    time.Time
}

// ValidScore reports whether score lies within the inclusive bounds.
func ValidScore(score int) bool {
	return score >= MinEvaluationScore && score <= MaxEvaluationScore
}
