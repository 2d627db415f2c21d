package domain

import "time"

// EmployeeRole enumerates the closed set of employee roles.
type EmployeeRole string

const (
	EmployeeRoleIntern EmployeeRole = "INTERN"
	EmployeeRoleAdmin  EmployeeRole = "ADMIN"
)

// Valid reports whether the role belongs to the closed set.
func (r EmployeeRole) Valid() bool {
	return r == EmployeeRoleIntern || r == EmployeeRoleAdmin
}

// Employee is a read-only copy of a person owned by the backing store.
type Employee struct {
	ID               string
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Role             EmployeeRole
	OrganizationID   string
	OrganizationName string
	JoiningDate      time.Time
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FullName joins first and last name.
func (e Employee) FullName() string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// IsAdmin reports whether the employee holds the ADMIN role.
func (e Employee) IsAdmin() bool {
	return e.Role == EmployeeRoleAdmin
}
