package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// EvaluationFilter narrows evaluation listings.
type EvaluationFilter struct {
	// Employee selects evaluations of assignments the employee is assigned to.
	Employee string
}

// EvaluationRepository persists evaluations. Evaluations are never updated.
type EvaluationRepository interface {
	// Evaluate stores the evaluation and moves its assignment from SUBMITTED
	// to EVALUATED as a single write. On error neither change is visible.
	Evaluate(ctx context.Context, evaluation *domain.Evaluation, actorID string) (*domain.Assignment, error)
	GetByAssignment(ctx context.Context, assignmentID string) (*domain.Evaluation, error)
	List(ctx context.Context, filter EvaluationFilter) ([]domain.Evaluation, error)
}

type evaluationRepository struct {
	pool *pgxpool.Pool
}

// NewEvaluationRepository instantiates repository.
func NewEvaluationRepository(pool *pgxpool.Pool) EvaluationRepository {
	return &evaluationRepository{pool: pool}
}

func (r *evaluationRepository) Evaluate(ctx context.Context, evaluation *domain.Evaluation, actorID string) (*domain.Assignment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const markEvaluated = `
        UPDATE assignments SET status=$1, status_changed_by=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4`
	cmd, err := tx.Exec(ctx, markEvaluated,
		domain.AssignmentStatusEvaluated,
		actorID,
		evaluation.AssignmentID,
		domain.AssignmentStatusSubmitted,
	)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM assignments WHERE id=$1)`,
			evaluation.AssignmentID).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrNotFound
		}
		return nil, ErrStatusChanged
	}

	const insertEvaluation = `
        INSERT INTO evaluations (assignment_id, score, feedback, evaluated_at)
        VALUES ($1,$2,$3,COALESCE($4, NOW()))
        RETURNING id, evaluated_at, created_at`
	var evaluatedAt any
	if !evaluation.EvaluatedAt.IsZero() {
		evaluatedAt = evaluation.EvaluatedAt
	}
	if err := tx.QueryRow(ctx, insertEvaluation,
		evaluation.AssignmentID,
		evaluation.Score,
		evaluation.Feedback,
		evaluatedAt,
	).Scan(&evaluation.ID, &evaluation.EvaluatedAt, &evaluation.CreatedAt); err != nil {
		return nil, err
	}

	query := `SELECT ` + assignmentColumns + ` FROM assignments a WHERE a.id=$1`
	assignment, err := scanAssignment(tx.QueryRow(ctx, query, evaluation.AssignmentID))
	if err != nil {
		return nil, translateNoRows(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (r *evaluationRepository) GetByAssignment(ctx context.Context, assignmentID string) (*domain.Evaluation, error) {
	const query = `
        SELECT id, assignment_id, score, feedback, evaluated_at, created_at
        FROM evaluations WHERE assignment_id=$1`

	var evaluation domain.Evaluation
	if err := r.pool.QueryRow(ctx, query, assignmentID).Scan(
		&evaluation.ID,
		&evaluation.AssignmentID,
		&evaluation.Score,
		&evaluation.Feedback,
		&evaluation.EvaluatedAt,
		&evaluation.CreatedAt,
	); err != nil {
		return nil, translateNoRows(err)
	}
	return &evaluation, nil
}

func (r *evaluationRepository) List(ctx context.Context, filter EvaluationFilter) ([]domain.Evaluation, error) {
	const query = `
        SELECT ev.id, ev.assignment_id, ev.score, ev.feedback, ev.evaluated_at, ev.created_at
        FROM evaluations ev
        WHERE $1 = '' OR EXISTS (
            SELECT 1 FROM assignment_assignees aa
            WHERE aa.assignment_id = ev.assignment_id AND aa.employee_id = $1)
        ORDER BY ev.evaluated_at, ev.id`

	rows, err := r.pool.Query(ctx, query, filter.Employee)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Evaluation
	for rows.Next() {
		var evaluation domain.Evaluation
		if err := rows.Scan(
			&evaluation.ID,
			&evaluation.AssignmentID,
			&evaluation.Score,
			&evaluation.Feedback,
			&evaluation.EvaluatedAt,
			&evaluation.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, evaluation)
	}
	return result, rows.Err()
}
