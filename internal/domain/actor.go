package domain

// Actor is the authenticated employee driving a mutation.
type Actor struct {
	EmployeeID string
	Role       EmployeeRole
}

// IsEvaluator reports whether the actor holds the admin role.
func (a Actor) IsEvaluator() bool {
	return a.Role == EmployeeRoleAdmin
}

// CanEvaluate reports whether the actor may evaluate the assignment: only the
// admin who created it.
func (a Actor) CanEvaluate(assignment Assignment) bool {
	return a.IsEvaluator() && a.EmployeeID != "" && assignment.CreatedByID == a.EmployeeID
}
