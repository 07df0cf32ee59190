package tasks

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamtrack/backend/internal/models"
)

// TaskDetail is a task with its assignee's display name resolved.
type TaskDetail struct {
	models.Task
	AssigneeName *string `json:"assigneeName,omitempty"`
}

// Repository handles task persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a tasks repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const taskDetailColumns = `t.id, t.project_id, t.title, t.description, t.status, t.assigned_to,
		t.created_at, t.updated_at, u.name`

func scanTaskDetail(row interface{ Scan(...any) error }) (*TaskDetail, error) {
	var d TaskDetail
	err := row.Scan(&d.ID, &d.ProjectID, &d.Title, &d.Description, &d.Status, &d.AssignedTo,
		&d.CreatedAt, &d.UpdatedAt, &d.AssigneeName)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByProject returns all tasks of a project with assignee names resolved.
func (r *Repository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]TaskDetail, error) {
	const q = `SELECT ` + taskDetailColumns + `
		FROM tasks t
		LEFT JOIN users u ON u.id = t.assigned_to
		WHERE t.project_id = $1
		ORDER BY t.created_at`
	rows, err := r.pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []TaskDetail
	for rows.Next() {
		d, err := scanTaskDetail(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *d)
	}
	return list, rows.Err()
}

// RecentByTeam returns the team's most recently updated tasks (newest first,
// capped at limit) for the activity feed. A task's team is reached through
// its project.
func (r *Repository) RecentByTeam(ctx context.Context, teamID uuid.UUID, limit int) ([]TaskDetail, error) {
	const q = `SELECT ` + taskDetailColumns + `
		FROM tasks t
		INNER JOIN projects p ON p.id = t.project_id
		LEFT JOIN users u ON u.id = t.assigned_to
		WHERE p.team_id = $1
		ORDER BY t.updated_at DESC
		LIMIT $2`
	rows, err := r.pool.Query(ctx, q, teamID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []TaskDetail
	for rows.Next() {
		d, err := scanTaskDetail(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *d)
	}
	return list, rows.Err()
}

// Create inserts a new task.
func (r *Repository) Create(ctx context.Context, t *models.Task) error {
	const q = `INSERT INTO tasks (project_id, title, description, status, assigned_to)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, t.ProjectID, t.Title, t.Description, t.Status, t.AssignedTo).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID returns a task by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	const q = `SELECT id, project_id, title, description, status, assigned_to, created_at, updated_at
		FROM tasks WHERE id = $1`
	var t models.Task
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.AssignedTo, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Update applies a partial update; nil fields keep their current value.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, title, description, status *string, assignedTo *uuid.UUID) (*models.Task, error) {
	const q = `UPDATE tasks SET
			title = COALESCE($1, title),
			description = COALESCE($2, description),
			status = COALESCE($3, status),
			assigned_to = COALESCE($4, assigned_to),
			updated_at = NOW()
		WHERE id = $5
		RETURNING id, project_id, title, description, status, assigned_to, created_at, updated_at`
	var t models.Task
	err := r.pool.QueryRow(ctx, q, title, description, status, assignedTo, id).
		Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.AssignedTo, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Assign sets (or clears) the task's assignee and returns the task with the
// assignee name resolved.
func (r *Repository) Assign(ctx context.Context, taskID uuid.UUID, assignedTo *uuid.UUID) (*TaskDetail, error) {
	const q = `WITH updated AS (
			UPDATE tasks SET assigned_to = $1, updated_at = NOW()
			WHERE id = $2
			RETURNING id, project_id, title, description, status, assigned_to, created_at, updated_at
		)
		SELECT ` + taskDetailColumns + `
		FROM updated t
		LEFT JOIN users u ON u.id = t.assigned_to`
	return scanTaskDetail(r.pool.QueryRow(ctx, q, assignedTo, taskID))
}

// Delete removes a task by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM tasks WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}
