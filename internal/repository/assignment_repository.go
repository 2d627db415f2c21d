package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// AssignmentFilter narrows assignment listings. The zero value lists everything.
type AssignmentFilter struct {
	AssignedTo *string
	Statuses   []domain.AssignmentStatus
	EndAfter   *time.Time
	EndBefore  *time.Time
}

// StatusUpdate is the payload of a delegated status write.
type StatusUpdate struct {
	ActorID        string
	Status         domain.AssignmentStatus
	SubmissionText *string
}

// AssignmentRepository encapsulates assignment persistence.
type AssignmentRepository interface {
	List(ctx context.Context, filter AssignmentFilter) ([]domain.Assignment, error)
	GetByID(ctx context.Context, id string) (*domain.Assignment, error)
	Create(ctx context.Context, assignment *domain.Assignment) error
	UpdateStatus(ctx context.Context, id string, update StatusUpdate) (*domain.Assignment, error)
}

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository instantiates repository.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

const assignmentColumns = `a.id, a.title, a.description, a.organization_id, a.created_by_id,
               ARRAY(SELECT aa.employee_id FROM assignment_assignees aa
                     WHERE aa.assignment_id = a.id ORDER BY aa.position) AS assignee_ids,
               a.start_date, a.end_date, a.status, a.submission_text, a.submission_date,
               a.created_at, a.updated_at`

func (r *assignmentRepository) Create(ctx context.Context, assignment *domain.Assignment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertAssignment = `
        INSERT INTO assignments (title, description, organization_id, created_by_id, start_date, end_date, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertAssignment,
		assignment.Title,
		assignment.Description,
		assignment.OrganizationID,
		assignment.CreatedByID,
		assignment.StartDate,
		assignment.EndDate,
		assignment.Status,
	).Scan(&assignment.ID, &assignment.CreatedAt, &assignment.UpdatedAt); err != nil {
		return err
	}

	const insertAssignee = `
        INSERT INTO assignment_assignees (assignment_id, employee_id, position)
        VALUES ($1,$2,$3)`
	for i, employeeID := range assignment.AssigneeIDs {
		if _, err := tx.Exec(ctx, insertAssignee, assignment.ID, employeeID, i); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *assignmentRepository) UpdateStatus(ctx context.Context, id string, update StatusUpdate) (*domain.Assignment, error) {
	query := `
        UPDATE assignments SET status=$1, status_changed_by=$2, updated_at=NOW()`
	args := []any{update.Status, update.ActorID}
	if update.Status == domain.AssignmentStatusSubmitted {
		args = append(args, update.SubmissionText)
		query += fmt.Sprintf(", submission_text=$%d, submission_date=NOW()", len(args))
	}
	args = append(args, id)
	query += fmt.Sprintf(" WHERE id=$%d", len(args))

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments a WHERE a.id=$1`
	assignment, err := scanAssignment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateNoRows(err)
	}
	return assignment, nil
}

func (r *assignmentRepository) List(ctx context.Context, filter AssignmentFilter) ([]domain.Assignment, error) {
	query, args := buildAssignmentQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Assignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *assignment)
	}
	return result, rows.Err()
}

func buildAssignmentQuery(filter AssignmentFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM assignment_assignees f WHERE f.assignment_id = a.id AND f.employee_id=$%d)", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("a.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.EndAfter != nil {
		args = append(args, *filter.EndAfter)
		clauses = append(clauses, fmt.Sprintf("a.end_date >= $%d", len(args)))
	}
	if filter.EndBefore != nil {
		args = append(args, *filter.EndBefore)
		clauses = append(clauses, fmt.Sprintf("a.end_date <= $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM assignments a WHERE %s ORDER BY a.created_at, a.id`,
		assignmentColumns, strings.Join(clauses, " AND "))
	return query, args
}

func scanAssignment(row pgx.Row) (*domain.Assignment, error) {
	var assignment domain.Assignment
	if err := row.Scan(
		&assignment.ID,
		&assignment.Title,
		&assignment.Description,
		&assignment.OrganizationID,
		&assignment.CreatedByID,
		&assignment.AssigneeIDs,
		&assignment.StartDate,
		&assignment.EndDate,
		&assignment.Status,
		&assignment.SubmissionText,
		&assignment.SubmissionDate,
		&assignment.CreatedAt,
		&assignment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &assignment, nil
}
