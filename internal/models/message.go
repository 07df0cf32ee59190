package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a team-scoped chat message. Immutable once created;
// TeamID always equals the sender's team at creation time.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	SenderID  uuid.UUID `json:"senderId"`
	TeamID    uuid.UUID `json:"teamId"`
	CreatedAt time.Time `json:"createdAt"`
}
