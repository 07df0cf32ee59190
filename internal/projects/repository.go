package projects

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamtrack/backend/internal/models"
)

// Repository handles project persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a projects repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all projects.
func (r *Repository) List(ctx context.Context) ([]models.Project, error) {
	const q = `SELECT id, name, description, team_id, created_at, updated_at
		FROM projects ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.TeamID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Create inserts a new project.
func (r *Repository) Create(ctx context.Context, p *models.Project) error {
	const q = `INSERT INTO projects (name, description, team_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, p.Name, p.Description, p.TeamID).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// GetByID returns a project by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	const q = `SELECT id, name, description, team_id, created_at, updated_at
		FROM projects WHERE id = $1`
	var p models.Project
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.TeamID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update applies a partial update; nil fields keep their current value.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name, description *string) (*models.Project, error) {
	const q = `UPDATE projects SET
			name = COALESCE($1, name),
			description = COALESCE($2, description),
			updated_at = NOW()
		WHERE id = $3
		RETURNING id, name, description, team_id, created_at, updated_at`
	var p models.Project
	err := r.pool.QueryRow(ctx, q, name, description, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.TeamID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a project and returns the deleted record.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	const q = `DELETE FROM projects WHERE id = $1
		RETURNING id, name, description, team_id, created_at, updated_at`
	var p models.Project
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.TeamID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
