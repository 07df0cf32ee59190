package teams

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/teamtrack/backend/internal/messages"
	"github.com/teamtrack/backend/internal/middleware"
	"github.com/teamtrack/backend/internal/models"
	"github.com/teamtrack/backend/internal/policy"
	"github.com/teamtrack/backend/internal/tasks"
	"github.com/teamtrack/backend/pkg/response"
)

// activityLimit caps each side of the activity feed.
const activityLimit = 50

// CreateRequest is the body for POST /api/team.
type CreateRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=50"`
	Description string `json:"description"`
}

// Store is the persistence surface the handler needs.
type Store interface {
	Create(ctx context.Context, t *models.Team) error
	GetDetail(ctx context.Context, id uuid.UUID) (*TeamDetail, error)
	ListMembers(ctx context.Context, teamID uuid.UUID) ([]Member, error)
}

// UserTeamSetter updates a user's team reference after team creation.
type UserTeamSetter interface {
	SetTeam(ctx context.Context, userID, teamID uuid.UUID) error
}

// TaskActivity supplies the recent-tasks half of the activity feed.
type TaskActivity interface {
	RecentByTeam(ctx context.Context, teamID uuid.UUID, limit int) ([]tasks.TaskDetail, error)
}

// MessageActivity supplies the recent-messages half of the activity feed.
type MessageActivity interface {
	RecentByTeam(ctx context.Context, teamID uuid.UUID, limit int) ([]messages.MessageDetail, error)
}

// Handler handles team HTTP endpoints.
type Handler struct {
	store    Store
	users    UserTeamSetter
	tasks    TaskActivity
	messages MessageActivity
	logger   *zap.Logger
}

// NewHandler creates a teams handler.
func NewHandler(store Store, users UserTeamSetter, tasks TaskActivity, messages MessageActivity, logger *zap.Logger) *Handler {
	return &Handler{store: store, users: users, tasks: tasks, messages: messages, logger: logger}
}

// Create handles POST /api/team. Only an admin with no current team may
// create one; the admin's team reference is pointed at the new team.
func (h *Handler) Create(c *gin.Context) {
	actor := middleware.Actor(c)
	if err := policy.CreateTeam(actor); err != nil {
		if actor.Role != models.RoleAdmin {
			response.Forbidden(c, err.Error())
		} else {
			response.BadRequest(c, err.Error())
		}
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	team := &models.Team{
		Name:        req.Name,
		Description: req.Description,
		AdminID:     actor.ID,
	}
	if err := h.store.Create(c.Request.Context(), team); err != nil {
		h.logger.Error("create team", zap.Error(err))
		response.Internal(c, "Failed to create team")
		return
	}
	if err := h.users.SetTeam(c.Request.Context(), actor.ID, team.ID); err != nil {
		h.logger.Error("assign team to admin", zap.Error(err))
		response.Internal(c, "Failed to create team")
		return
	}

	detail, err := h.store.GetDetail(c.Request.Context(), team.ID)
	if err != nil {
		// Team exists; fall back to the bare record.
		response.Created(c, team)
		return
	}
	response.Created(c, detail)
}

// Members handles GET /api/team/:teamId/members.
func (h *Handler) Members(c *gin.Context) {
	teamID, err := uuid.Parse(c.Param("teamId"))
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return
	}

	team, err := h.store.GetDetail(c.Request.Context(), teamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "Team not found")
			return
		}
		h.logger.Error("load team", zap.Error(err))
		response.Internal(c, "Failed to get team members")
		return
	}

	members, err := h.store.ListMembers(c.Request.Context(), teamID)
	if err != nil {
		h.logger.Error("list team members", zap.Error(err))
		response.Internal(c, "Failed to get team members")
		return
	}
	response.OK(c, gin.H{"team": team, "members": members})
}

// Activity handles GET /api/team/:teamId/activity: the newest tasks and
// messages for the team, each capped at 50 and ordered newest first.
func (h *Handler) Activity(c *gin.Context) {
	teamID, err := uuid.Parse(c.Param("teamId"))
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return
	}

	recentTasks, err := h.tasks.RecentByTeam(c.Request.Context(), teamID, activityLimit)
	if err != nil {
		h.logger.Error("load team tasks", zap.Error(err))
		response.Internal(c, "Failed to get activity logs")
		return
	}
	recentMessages, err := h.messages.RecentByTeam(c.Request.Context(), teamID, activityLimit)
	if err != nil {
		h.logger.Error("load team messages", zap.Error(err))
		response.Internal(c, "Failed to get activity logs")
		return
	}
	response.OK(c, gin.H{"tasks": recentTasks, "messages": recentMessages})
}
