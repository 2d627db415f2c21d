// Package export renders employee profiles as downloadable reports.
package export

import (
	"strconv"
	"time"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// Table is the tabular part of a report.
type Table struct {
	Headers []string
	Rows    [][]string
}

var profileHeaders = []string{"Assignment", "Status", "Start", "End", "Overdue", "Score", "Feedback"}

const dateLayout = "2006-01-02"

// ProfileTable lists each assignment of the profile with its evaluation, if any.
func ProfileTable(profile domain.Profile, now time.Time) Table {
	byAssignment := make(map[string]domain.Evaluation, len(profile.Evaluations))
	for _, ev := range profile.Evaluations {
		byAssignment[ev.AssignmentID] = ev
	}

	table := Table{Headers: profileHeaders, Rows: make([][]string, 0, len(profile.Assignments))}
	for _, a := range profile.Assignments {
		score, feedback := "", ""
		if ev, ok := byAssignment[a.ID]; ok {
			score = strconv.Itoa(ev.Score)
			feedback = ev.Feedback
		}
		overdue := "no"
		if a.IsOverdue(now) {
			overdue = "yes"
		}
		table.Rows = append(table.Rows, []string{
			a.Title,
			string(a.Status),
			a.StartDate.Format(dateLayout),
			a.EndDate.Format(dateLayout),
			overdue,
			score,
			feedback,
		})
	}
	return table
}

// AverageScore returns the mean evaluation score and whether there was any.
func AverageScore(profile domain.Profile) (float64, bool) {
	if len(profile.Evaluations) == 0 {
		return 0, false
	}
	total := 0
	for _, ev := range profile.Evaluations {
		total += ev.Score
	}
	return float64(total) / float64(len(profile.Evaluations)), true
}
