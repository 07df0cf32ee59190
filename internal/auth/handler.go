package auth

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/teamtrack/backend/internal/identity"
	"github.com/teamtrack/backend/internal/models"
	"github.com/teamtrack/backend/pkg/response"
	"github.com/teamtrack/backend/pkg/utils"
)

// RegisterRequest is the body for POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=ADMIN MANAGER MEMBER"`
}

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is the register/login response with JWT.
type AuthResponse struct {
	Message string            `json:"message"`
	User    models.UserPublic `json:"user"`
	Token   string            `json:"token"`
}

// UserStore is the persistence surface the handler needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, name, email, passwordHash string, role models.Role) (*models.User, error)
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	store    UserStore
	identity identity.Provider
	jwt      *JWTService
	logger   *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(store UserStore, provider identity.Provider, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{store: store, identity: provider, jwt: jwt, logger: logger}
}

// Register handles POST /api/auth/register. Creates the user with the upstream
// identity issuer (when configured), stores the bcrypt-hashed record, and
// returns a backend JWT.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	role := models.RoleMember
	if req.Role != "" {
		role = models.Role(req.Role)
	}

	if _, err := h.store.GetByEmail(c.Request.Context(), req.Email); err == nil {
		response.BadRequest(c, "User already exists")
		return
	}

	if h.identity != nil {
		if err := h.identity.EnsureUser(c.Request.Context(), req.Email, req.Password, req.Name); err != nil {
			if errors.Is(err, identity.ErrEmailExists) {
				response.Conflict(c, "Email already in use")
				return
			}
			h.logger.Error("identity provider", zap.Error(err))
			response.Internal(c, "Server error")
			return
		}
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.store.Create(c.Request.Context(), req.Name, req.Email, hash, role)
	if err != nil {
		h.logger.Error("create user", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	token, err := h.jwt.Generate(user.ID, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.Created(c, AuthResponse{Message: "Registered", User: user.ToPublic(), Token: token})
}

// Login handles POST /api/auth/login. Verifies the bcrypt hash and returns a
// backend JWT. An unknown email yields 404 while a wrong password yields 400;
// the asymmetry is long-standing client-visible behavior, kept as-is.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.store.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "User not found")
			return
		}
		h.logger.Error("lookup user", zap.Error(err))
		response.Internal(c, "Server error")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		response.BadRequest(c, "Invalid credentials")
		return
	}

	token, err := h.jwt.Generate(user.ID, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.OK(c, AuthResponse{Message: "Logged in", User: user.ToPublic(), Token: token})
}
