package dto

import (
	"time"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// EmployeeResponse is the public view of an employee.
type EmployeeResponse struct {
	ID               string              `json:"id"`
	FirstName        string              `json:"first_name"`
	LastName         string              `json:"last_name"`
	FullName         string              `json:"full_name"`
	Email            string              `json:"email"`
	Phone            string              `json:"phone,omitempty"`
	Role             domain.EmployeeRole `json:"role"`
	OrganizationID   string              `json:"organization_id"`
	OrganizationName string              `json:"organization_name,omitempty"`
	JoiningDate      string              `json:"joining_date,omitempty"`
	IsActive         bool                `json:"is_active"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// NewEmployeeResponse maps the domain employee.
func NewEmployeeResponse(e domain.Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:               e.ID,
		FirstName:        e.FirstName,
		LastName:         e.LastName,
		FullName:         e.FullName(),
		Email:            e.Email,
		Phone:            e.Phone,
		Role:             e.Role,
		OrganizationID:   e.OrganizationID,
		OrganizationName: e.OrganizationName,
		IsActive:         e.IsActive,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
	if !e.JoiningDate.IsZero() {
		resp.JoiningDate = e.JoiningDate.Format("2006-01-02")
	}
	return resp
}
