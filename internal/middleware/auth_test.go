package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamtrack/backend/internal/auth"
	"github.com/teamtrack/backend/internal/models"
)

type stubActorSource struct {
	users map[uuid.UUID]*models.User
}

func (s *stubActorSource) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func protectedRouter(jwtService *auth.JWTService, source ActorSource, roles ...models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{Authenticate(jwtService, source)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"actor": Actor(c).ID})
	})
	r.GET("/secure", handlers...)
	return r
}

func TestAuthenticate(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 1)
	userID := uuid.New()
	source := &stubActorSource{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, Name: "Alice", Role: models.RoleMember},
	}}

	token, err := jwtService.Generate(userID, string(models.RoleMember))
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/secure", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			protectedRouter(jwtService, source).ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthenticateUserDeletedAfterIssuance(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 1)
	token, err := jwtService.Generate(uuid.New(), string(models.RoleAdmin))
	require.NoError(t, err)

	// Empty store: the token is valid but the record no longer exists.
	source := &stubActorSource{users: map[uuid.UUID]*models.User{}}

	req, _ := http.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protectedRouter(jwtService, source).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 1)
	adminID, memberID := uuid.New(), uuid.New()
	source := &stubActorSource{users: map[uuid.UUID]*models.User{
		adminID:  {ID: adminID, Role: models.RoleAdmin},
		memberID: {ID: memberID, Role: models.RoleMember},
	}}

	tests := []struct {
		name       string
		userID     uuid.UUID
		role       models.Role
		wantStatus int
	}{
		{"admin allowed", adminID, models.RoleAdmin, http.StatusOK},
		{"member rejected", memberID, models.RoleMember, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwtService.Generate(tt.userID, string(tt.role))
			require.NoError(t, err)

			req, _ := http.NewRequest(http.MethodGet, "/secure", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			protectedRouter(jwtService, source, models.RoleAdmin).ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRoleCheckedLiveNotFromToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 1)
	userID := uuid.New()

	// Token was minted while the user was an admin; the record has since been
	// demoted. The live fetch must win.
	token, err := jwtService.Generate(userID, string(models.RoleAdmin))
	require.NoError(t, err)
	source := &stubActorSource{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, Role: models.RoleMember},
	}}

	req, _ := http.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protectedRouter(jwtService, source, models.RoleAdmin).ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
