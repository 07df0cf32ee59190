package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/teamtrack/backend/internal/auth"
	"github.com/teamtrack/backend/internal/models"
	"github.com/teamtrack/backend/pkg/response"
)

// ContextActor is the gin context key for the authenticated user.
const ContextActor = "actor"

// ActorSource resolves a user ID to the live user record.
type ActorSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Authenticate validates the Authorization bearer token and loads the actor
// from persistence on every request, so role/team changes take effect without
// re-issuing tokens. The token only pins the user's identity.
func Authenticate(jwtService *auth.JWTService, users ActorSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "No token provided")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "Invalid token format")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			// Token decoded but the user record is gone (deleted after issuance).
			response.Unauthorized(c, "User not found")
			c.Abort()
			return
		}
		c.Set(ContextActor, user)
		c.Next()
	}
}

// Actor returns the authenticated user set by Authenticate. Panics when the
// middleware did not run; only call from routes behind it.
func Actor(c *gin.Context) *models.User {
	return c.MustGet(ContextActor).(*models.User)
}

// RequireRole returns a middleware that allows only the given roles.
// Must run after Authenticate.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{})
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		actorVal, ok := c.Get(ContextActor)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		actor := actorVal.(*models.User)
		if _, ok := allowed[actor.Role]; !ok {
			response.Forbidden(c, "Forbidden: insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
