package teams

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamtrack/backend/internal/models"
)

// TeamDetail is a team with its admin's display fields resolved.
type TeamDetail struct {
	models.Team
	AdminName  string `json:"adminName"`
	AdminEmail string `json:"adminEmail"`
}

// Repository handles team persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a teams repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new team.
func (r *Repository) Create(ctx context.Context, t *models.Team) error {
	const q = `INSERT INTO teams (name, description, admin_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, t.Name, t.Description, t.AdminID).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetDetail returns a team with admin name and email resolved.
func (r *Repository) GetDetail(ctx context.Context, id uuid.UUID) (*TeamDetail, error) {
	const q = `SELECT t.id, t.name, t.description, t.admin_id, t.created_at, t.updated_at, u.name, u.email
		FROM teams t
		INNER JOIN users u ON u.id = t.admin_id
		WHERE t.id = $1`
	var d TeamDetail
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&d.ID, &d.Name, &d.Description, &d.AdminID, &d.CreatedAt, &d.UpdatedAt, &d.AdminName, &d.AdminEmail)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Member is a team member's public row for GET /api/team/:teamId/members.
type Member struct {
	ID    uuid.UUID   `json:"id"`
	Name  string      `json:"name"`
	Role  models.Role `json:"role"`
	Email string      `json:"email"`
}

// ListMembers returns users whose team reference matches the team.
func (r *Repository) ListMembers(ctx context.Context, teamID uuid.UUID) ([]Member, error) {
	const q = `SELECT id, name, role, email FROM users WHERE team_id = $1 ORDER BY name`
	rows, err := r.pool.Query(ctx, q, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Role, &m.Email); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
