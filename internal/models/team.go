package models

import (
	"time"

	"github.com/google/uuid"
)

// Team groups users; chat messages and team-scoped projects hang off it.
// Exactly one admin owns a team.
type Team struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	AdminID     uuid.UUID `json:"adminId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
