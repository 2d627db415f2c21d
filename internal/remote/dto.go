package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// id accepts both numeric and string identifiers and always renders as text.
type id string

func (i *id) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*i = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*i = id(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*i = id(n.String())
	return nil
}

// MarshalJSON writes numeric ids as numbers, which the API expects for foreign keys.
func (i id) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(i), 10, 64); err == nil {
		return []byte(i), nil
	}
	return json.Marshal(string(i))
}

// date accepts YYYY-MM-DD as well as RFC 3339 timestamps.
type date struct {
	time.Time
}

func (d *date) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("unrecognised date %q", raw)
}

type employeeDTO struct {
	ID               id     `json:"id"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Role             string `json:"role"`
	Organization     id     `json:"organization"`
	OrganizationName string `json:"organization_name"`
	JoiningDate      date   `json:"joining_date"`
	IsActive         bool   `json:"is_active"`
	CreatedAt        date   `json:"created_at"`
	UpdatedAt        date   `json:"updated_at"`
}

func (d employeeDTO) toDomain() domain.Employee {
	return domain.Employee{
		ID:               string(d.ID),
		FirstName:        d.FirstName,
		LastName:         d.LastName,
		Email:            d.Email,
		Phone:            d.Phone,
		Role:             domain.EmployeeRole(strings.ToUpper(d.Role)),
		OrganizationID:   string(d.Organization),
		OrganizationName: d.OrganizationName,
		JoiningDate:      d.JoiningDate.Time,
		IsActive:         d.IsActive,
		CreatedAt:        d.CreatedAt.Time,
		UpdatedAt:        d.UpdatedAt.Time,
	}
}

type employeeRef struct {
	ID       id     `json:"id"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type assignmentDTO struct {
	ID             id            `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Organization   id            `json:"organization"`
	CreatedBy      *employeeRef  `json:"created_by"`
	AssignedTo     []employeeRef `json:"assigned_to"`
	StartDate      date          `json:"start_date"`
	EndDate        date          `json:"end_date"`
	Status         string        `json:"status"`
	SubmissionText *string       `json:"submission_text"`
	SubmissionDate *date         `json:"submission_date"`
	CreatedAt      date          `json:"created_at"`
	UpdatedAt      date          `json:"updated_at"`
}

func (d assignmentDTO) toDomain() domain.Assignment {
	a := domain.Assignment{
		ID:             string(d.ID),
		Title:          d.Title,
		Description:    d.Description,
		OrganizationID: string(d.Organization),
		AssigneeIDs:    make([]string, 0, len(d.AssignedTo)),
		StartDate:      d.StartDate.Time,
		EndDate:        d.EndDate.Time,
		Status:         domain.AssignmentStatus(d.Status),
		CreatedAt:      d.CreatedAt.Time,
		UpdatedAt:      d.UpdatedAt.Time,
	}
	if d.CreatedBy != nil {
		a.CreatedByID = string(d.CreatedBy.ID)
	}
	for _, ref := range d.AssignedTo {
		a.AssigneeIDs = append(a.AssigneeIDs, string(ref.ID))
	}
	if d.SubmissionText != nil && *d.SubmissionText != "" {
		text := *d.SubmissionText
		a.SubmissionText = &text
	}
	if d.SubmissionDate != nil && !d.SubmissionDate.IsZero() {
		t := d.SubmissionDate.Time
		a.SubmissionDate = &t
	}
	return a
}

type createAssignmentRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Organization id        `json:"organization"`
	CreatedByID  id        `json:"created_by_id"`
	EmployeeIDs  []id      `json:"employee_ids"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Status       string    `json:"status"`
}

type updateStatusRequest struct {
	EmployeeID     id      `json:"employee_id"`
	Status         string  `json:"status"`
	SubmissionText *string `json:"submission_text,omitempty"`
}

type evaluationDTO struct {
	ID             id     `json:"id"`
	Assignment     id     `json:"assignment"`
	Score          int    `json:"score"`
	Feedback       string `json:"feedback"`
	EvaluationDate date   `json:"evaluation_date"`
	CreatedAt      date   `json:"created_at"`
}

func (d evaluationDTO) toDomain() domain.Evaluation {
	return domain.Evaluation{
		ID:           string(d.ID),
		AssignmentID: string(d.Assignment),
		Score:        d.Score,
		Feedback:     d.Feedback,
		EvaluatedAt:  d.EvaluationDate.Time,
		CreatedAt:    d.CreatedAt.Time,
	}
}

type createEvaluationRequest struct {
	Assignment id     `json:"assignment"`
	Score      int    `json:"score"`
	Feedback   string `json:"feedback"`
}
