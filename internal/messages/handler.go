package messages

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teamtrack/backend/internal/middleware"
	"github.com/teamtrack/backend/internal/models"
	"github.com/teamtrack/backend/internal/policy"
	"github.com/teamtrack/backend/pkg/response"
)

// CreateRequest is the body for POST /api/messages.
type CreateRequest struct {
	Content string `json:"content" binding:"required"`
}

// Store is the persistence surface the handler needs.
type Store interface {
	Create(ctx context.Context, m *models.Message) error
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]MessageDetail, error)
}

// Handler handles chat message HTTP endpoints. Persistence here is
// independent of the realtime broadcast path; clients emit the websocket
// event separately and the two writes are not linked.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a messages handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Create handles POST /api/messages. The message is scoped to the actor's
// current team; an actor with no team gets a validation error, not a
// permission error.
func (h *Handler) Create(c *gin.Context) {
	actor := middleware.Actor(c)
	if err := policy.UseChat(actor); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	m := &models.Message{
		Content:  req.Content,
		SenderID: actor.ID,
		TeamID:   *actor.TeamID,
	}
	if err := h.store.Create(c.Request.Context(), m); err != nil {
		h.logger.Error("create message", zap.Error(err))
		response.Internal(c, "Failed to save message")
		return
	}
	response.Created(c, m)
}

// List handles GET /api/messages: the actor's team history, ascending by
// creation time.
func (h *Handler) List(c *gin.Context) {
	actor := middleware.Actor(c)
	if err := policy.UseChat(actor); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	list, err := h.store.ListByTeam(c.Request.Context(), *actor.TeamID)
	if err != nil {
		h.logger.Error("list messages", zap.Error(err))
		response.Internal(c, "failed to load messages")
		return
	}
	response.OK(c, list)
}
