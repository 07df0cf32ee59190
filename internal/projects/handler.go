package projects

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/teamtrack/backend/internal/middleware"
	"github.com/teamtrack/backend/internal/models"
	"github.com/teamtrack/backend/internal/policy"
	"github.com/teamtrack/backend/pkg/response"
)

// CreateRequest is the body for POST /api/projects.
type CreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateRequest is the body for PUT /api/projects/:id. Omitted fields are untouched.
type UpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Store is the persistence surface the handler needs.
type Store interface {
	List(ctx context.Context) ([]models.Project, error)
	Create(ctx context.Context, p *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	Update(ctx context.Context, id uuid.UUID, name, description *string) (*models.Project, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

// Handler handles project HTTP endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a projects handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// List handles GET /api/projects. Deliberately unauthenticated.
func (h *Handler) List(c *gin.Context) {
	list, err := h.store.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list projects", zap.Error(err))
		response.Internal(c, "Internal Server Error")
		return
	}
	response.OK(c, list)
}

// Create handles POST /api/projects. Deliberately unauthenticated.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Name is required")
		return
	}
	p := &models.Project{Name: req.Name, Description: req.Description}
	if err := h.store.Create(c.Request.Context(), p); err != nil {
		h.logger.Error("create project", zap.Error(err))
		response.Internal(c, "Internal Server Error")
		return
	}
	response.Created(c, p)
}

// Update handles PUT /api/projects/:id (admin, same team when project is team-scoped).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	actor := middleware.Actor(c)

	project, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "Project not found")
		return
	}
	if err := policy.MutateProject(actor, project); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Name != nil && *req.Name == "" {
		response.BadRequest(c, "Name is required")
		return
	}

	updated, err := h.store.Update(c.Request.Context(), id, req.Name, req.Description)
	if err != nil {
		h.logger.Error("update project", zap.Error(err))
		response.Internal(c, "failed to update project")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /api/projects/:id (admin only; route also carries a
// role gate). Returns the deleted record.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	actor := middleware.Actor(c)

	project, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "Project not found")
			return
		}
		h.logger.Error("load project", zap.Error(err))
		response.Internal(c, "failed to delete project")
		return
	}
	if err := policy.MutateProject(actor, project); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	deleted, err := h.store.Delete(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "Project not found")
			return
		}
		h.logger.Error("delete project", zap.Error(err))
		response.Internal(c, "failed to delete project")
		return
	}
	response.OK(c, gin.H{"message": "Project deleted", "project": deleted})
}
