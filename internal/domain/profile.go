package domain

// Profile is the joined view of one employee with its assignments and evaluations.
// Slice order is the order returned by the backing store.
type Profile struct {
	Employee    Employee
	Assignments []Assignment
	Evaluations []Evaluation
}
