package tasks

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

// CreateRequest is the body for POST /api/tasks.
type CreateRequest struct {
	Title       string     `json:"title" binding:"required"`
	ProjectID   uuid.UUID  `json:"projectId" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	AssignedTo  *uuid.UUID `json:"assignedTo"`
}

// UpdateRequest is the body for PUT /api/tasks/:id. Omitted fields are untouched.
type UpdateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	AssignedTo  *uuid.UUID `json:"assignedTo"`
}

// AssignRequest is the body for PUT /api/tasks/:taskId/assign.
type AssignRequest struct {
	AssignedTo *uuid.UUID `json:"assignedTo"`
}

// Store is the persistence surface the handler needs.
type Store interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]TaskDetail, error)
	Create(ctx context.Context, t *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	Update(ctx context.Context, id uuid.UUID, title, description, status *string, assignedTo *uuid.UUID) (*models.Task, error)
	Assign(ctx context.Context, taskID uuid.UUID, assignedTo *uuid.UUID) (*TaskDetail, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectSource resolves a task's project for existence checks and team-scope
// policy decisions.
type ProjectSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

// Handler handles task HTTP endpoints.
type Handler struct {
	store    Store
	projects ProjectSource
	logger   *zap.Logger
}

// NewHandler creates a tasks handler.
func NewHandler(store Store, projects ProjectSource, logger *zap.Logger) *Handler {
	return &Handler{store: store, projects: projects, logger: logger}
}

// List handles GET /api/tasks?projectId= (any authenticated actor).
func (h *Handler) List(c *gin.Context) {
	projectIDStr := c.Query("projectId")
	if projectIDStr == "" {
		response.BadRequest(c, "projectId query parameter is required")
		return
	}
	projectID, err := uuid.Parse(projectIDStr)
	if err != nil {
		response.BadRequest(c, "invalid projectId")
		return
	}
	if _, err := h.projects.GetByID(c.Request.Context(), projectID); err != nil {
		response.NotFound(c, "Project not found")
		return
	}
	list, err := h.store.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		h.logger.Error("list tasks", zap.Error(err))
		response.Internal(c, "failed to list tasks")
		return
	}
	response.OK(c, list)
}

// Create handles POST /api/tasks (any authenticated actor). The referenced
// project must exist; the status is normalized before it is validated.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if _, err := h.projects.GetByID(c.Request.Context(), req.ProjectID); err != nil {
		response.NotFound(c, "Project not found")
		return
	}

	status := models.StatusTodo
	if req.Status != "" {
		status = NormalizeStatus(req.Status)
		if !ValidStatus(status) {
			response.BadRequest(c, "Invalid status value")
			return
		}
	}

	t := &models.Task{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		AssignedTo:  req.AssignedTo,
	}
	if err := h.store.Create(c.Request.Context(), t); err != nil {
		h.logger.Error("create task", zap.Error(err))
		response.Internal(c, "Failed to create task")
		return
	}
	response.Created(c, t)
}

// Update handles PUT /api/tasks/:id (admin or current assignee).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}
	actor := middleware.Actor(c)

	task, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "Task not found")
		return
	}
	if err := policy.UpdateTask(actor, task); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Status != nil {
		normalized := NormalizeStatus(*req.Status)
		if !ValidStatus(normalized) {
			response.BadRequest(c, "Invalid status value")
			return
		}
		req.Status = &normalized
	}

	updated, err := h.store.Update(c.Request.Context(), id, req.Title, req.Description, req.Status, req.AssignedTo)
	if err != nil {
		h.logger.Error("update task", zap.Error(err))
		response.Internal(c, "failed to update task")
		return
	}
	response.OK(c, updated)
}

// Assign handles PUT /api/tasks/:taskId/assign. Reassigns unconditionally
// with no credential or policy check; a long-standing gap kept for client
// compatibility rather than silently closed.
func (h *Handler) Assign(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	detail, err := h.store.Assign(c.Request.Context(), taskID, req.AssignedTo)
	if err != nil {
		h.logger.Error("assign task", zap.Error(err))
		response.Internal(c, "Failed to assign task")
		return
	}
	response.OK(c, detail)
}

// Delete handles DELETE /api/tasks/:id (admin or same-team actor).
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}
	actor := middleware.Actor(c)

	task, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "Task not found")
			return
		}
		h.logger.Error("load task", zap.Error(err))
		response.Internal(c, "failed to delete task")
		return
	}
	project, err := h.projects.GetByID(c.Request.Context(), task.ProjectID)
	if err != nil {
		h.logger.Error("load task project", zap.Error(err))
		response.Internal(c, "failed to delete task")
		return
	}
	if err := policy.DeleteTask(actor, project); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete task", zap.Error(err))
		response.Internal(c, "failed to delete task")
		return
	}
	response.OK(c, gin.H{"message": "Task deleted"})
}
