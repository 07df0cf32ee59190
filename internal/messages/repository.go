package messages

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamtrack/backend/internal/models"
)

// MessageDetail is a message with the sender's display name resolved.
type MessageDetail struct {
	models.Message
	SenderName string `json:"senderName"`
}

// Repository handles message persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a messages repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new message.
func (r *Repository) Create(ctx context.Context, m *models.Message) error {
	const q = `INSERT INTO messages (content, sender_id, team_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, m.Content, m.SenderID, m.TeamID).
		Scan(&m.ID, &m.CreatedAt)
}

// RecentByTeam returns the team's newest messages (descending by creation
// time, capped at limit) for the activity feed.
func (r *Repository) RecentByTeam(ctx context.Context, teamID uuid.UUID, limit int) ([]MessageDetail, error) {
	const q = `SELECT m.id, m.content, m.sender_id, m.team_id, m.created_at, u.name
		FROM messages m
		INNER JOIN users u ON u.id = m.sender_id
		WHERE m.team_id = $1
		ORDER BY m.created_at DESC
		LIMIT $2`
	rows, err := r.pool.Query(ctx, q, teamID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []MessageDetail
	for rows.Next() {
		var d MessageDetail
		if err := rows.Scan(&d.ID, &d.Content, &d.SenderID, &d.TeamID, &d.CreatedAt, &d.SenderName); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// ListByTeam returns a team's chat history ascending by creation time, with
// sender names resolved.
func (r *Repository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]MessageDetail, error) {
	const q = `SELECT m.id, m.content, m.sender_id, m.team_id, m.created_at, u.name
		FROM messages m
		INNER JOIN users u ON u.id = m.sender_id
		WHERE m.team_id = $1
		ORDER BY m.created_at ASC`
	rows, err := r.pool.Query(ctx, q, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []MessageDetail
	for rows.Next() {
		var d MessageDetail
		if err := rows.Scan(&d.ID, &d.Content, &d.SenderID, &d.TeamID, &d.CreatedAt, &d.SenderName); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}
