package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teamtrack/backend/internal/models"
	"github.com/teamtrack/backend/pkg/utils"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, name, email, passwordHash string, role models.Role) (*models.User, error) {
	args := m.Called(ctx, name, email, passwordHash, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newAuthRouter(store UserStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, nil, NewJWTService("test-secret", 1), zap.NewNop())
	r := gin.New()
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	return r
}

func postJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name       string
		body       gin.H
		mockSetup  func(*MockUserStore)
		wantStatus int
	}{
		{
			name: "successful registration defaults to MEMBER",
			body: gin.H{"name": "Alice", "email": "alice@example.com", "password": "secret123"},
			mockSetup: func(m *MockUserStore) {
				m.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, pgx.ErrNoRows)
				m.On("Create", mock.Anything, "Alice", "alice@example.com", mock.AnythingOfType("string"), models.RoleMember).
					Return(&models.User{Name: "Alice", Email: "alice@example.com", Role: models.RoleMember}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "duplicate email",
			body: gin.H{"name": "Alice", "email": "alice@example.com", "password": "secret123"},
			mockSetup: func(m *MockUserStore) {
				m.On("GetByEmail", mock.Anything, "alice@example.com").
					Return(&models.User{Email: "alice@example.com"}, nil)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "short password rejected before any lookup",
			body:       gin.H{"name": "Alice", "email": "alice@example.com", "password": "123"},
			mockSetup:  func(m *MockUserStore) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown role rejected",
			body:       gin.H{"name": "Alice", "email": "alice@example.com", "password": "secret123", "role": "OVERLORD"},
			mockSetup:  func(m *MockUserStore) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "explicit ADMIN role kept",
			body: gin.H{"name": "Root", "email": "root@example.com", "password": "secret123", "role": "ADMIN"},
			mockSetup: func(m *MockUserStore) {
				m.On("GetByEmail", mock.Anything, "root@example.com").Return(nil, pgx.ErrNoRows)
				m.On("Create", mock.Anything, "Root", "root@example.com", mock.AnythingOfType("string"), models.RoleAdmin).
					Return(&models.User{Name: "Root", Email: "root@example.com", Role: models.RoleAdmin}, nil)
			},
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockUserStore{}
			tt.mockSetup(store)

			w := postJSON(newAuthRouter(store), "/api/auth/register", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusCreated {
				var body struct {
					Data AuthResponse `json:"data"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.NotEmpty(t, body.Data.Token)
				assert.Equal(t, "Registered", body.Data.Message)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestLogin(t *testing.T) {
	hash, err := utils.HashPassword("correct-horse")
	require.NoError(t, err)
	known := &models.User{Email: "bob@example.com", Password: hash, Role: models.RoleMember}

	tests := []struct {
		name       string
		body       gin.H
		mockSetup  func(*MockUserStore)
		wantStatus int
	}{
		{
			name: "success",
			body: gin.H{"email": "bob@example.com", "password": "correct-horse"},
			mockSetup: func(m *MockUserStore) {
				m.On("GetByEmail", mock.Anything, "bob@example.com").Return(known, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "wrong password",
			body: gin.H{"email": "bob@example.com", "password": "battery-staple"},
			mockSetup: func(m *MockUserStore) {
				m.On("GetByEmail", mock.Anything, "bob@example.com").Return(known, nil)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			// The endpoint reveals whether an email is registered: unknown
			// emails 404 while bad passwords 400. Kept behavior; this test
			// documents it.
			name: "unknown email",
			body: gin.H{"email": "nobody@example.com", "password": "whatever"},
			mockSetup: func(m *MockUserStore) {
				m.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, pgx.ErrNoRows)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockUserStore{}
			tt.mockSetup(store)

			w := postJSON(newAuthRouter(store), "/api/auth/login", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			store.AssertExpectations(t)
		})
	}
}
