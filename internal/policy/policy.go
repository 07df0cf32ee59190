// Package policy centralizes role/team authorization decisions. Every rule is
// a pure function over the actor and the target resource: nil means allow, a
// *Forbidden carries the client-visible denial reason. Handlers evaluate the
// rule before any mutation so a denial never leaves a partial write.
//
// Deliberately outside policy (long-standing client-visible behavior):
// project read/create, task create/read, and task assignment are open to any
// caller.
package policy

import (
	"github.com/teamtrack/backend/internal/models"
)

// Forbidden is a denial with a reason safe to return to the client.
type Forbidden struct {
	Reason string
}

func (f *Forbidden) Error() string { return f.Reason }

func deny(reason string) error { return &Forbidden{Reason: reason} }

// CreateTeam allows only admins that do not already belong to a team.
func CreateTeam(actor *models.User) error {
	if actor.Role != models.RoleAdmin {
		return deny("Only admins can create a team")
	}
	if actor.TeamID != nil {
		return deny("User already belongs to a team")
	}
	return nil
}

// MutateProject gates project update and delete: admins only, and when the
// project is team-scoped, only admins of that same team.
func MutateProject(actor *models.User, project *models.Project) error {
	if actor.Role != models.RoleAdmin {
		return deny("Forbidden: insufficient permissions")
	}
	if project.TeamID == nil {
		return nil
	}
	if actor.TeamID == nil || *actor.TeamID != *project.TeamID {
		return deny("Forbidden: project not in your team")
	}
	return nil
}

// UpdateTask allows admins and the task's current assignee.
func UpdateTask(actor *models.User, task *models.Task) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if task.AssignedTo != nil && *task.AssignedTo == actor.ID {
		return nil
	}
	return deny("Forbidden: insufficient permissions")
}

// DeleteTask allows admins and same-team actors. The task's team is reached
// through its project; a project with no team fails closed for non-admins.
func DeleteTask(actor *models.User, project *models.Project) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if project.TeamID == nil {
		return deny("Access denied: task's project has no team")
	}
	if actor.TeamID == nil || *actor.TeamID != *project.TeamID {
		return deny("Access denied")
	}
	return nil
}

// UseChat gates message create and read: the actor must belong to a team.
// Callers map this denial to a validation error (400), matching the API's
// long-standing "User has no team" response.
func UseChat(actor *models.User) error {
	if actor.TeamID == nil {
		return deny("User has no team")
	}
	return nil
}
