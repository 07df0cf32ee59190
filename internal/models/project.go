package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is a container for tasks. TeamID is optional; a project
// without a team is mutable by any admin.
type Project struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	TeamID      *uuid.UUID `json:"teamId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
