package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/models"
	_ "github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/validation"
)

// setupAdminRouter registers the user-administration routes with callerID
// injected into the request context, standing in for the JWT middleware.
func setupAdminRouter(repo *mockAdminRepository, callerID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)

	service := NewService(repo)
	handler := NewHandler(service)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", callerID)
		c.Next()
	})
	api := router.Group("/api/admin/users")
	{
		api.GET("", handler.ListUsers)
		api.POST("", handler.CreateUser)
		api.GET("/:id", handler.GetUser)
		api.PUT("/:id", handler.UpdateUser)
		api.DELETE("/:id", handler.DeactivateUser)
	}
	return router
}

func TestHandlerListUsers(t *testing.T) {
	repo := new(mockAdminRepository)
	active := true
	repo.On("ListUsers", mock.Anything, ListUsersFilter{
		Q:      "ana",
		Role:   models.RoleAnalista,
		Active: &active,
	}).Return([]models.User{{ID: uuid.New(), Email: "ana@safedata.pe"}}, nil).Once()

	router := setupAdminRouter(repo, uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users?q=ana&role=Analista&active=true", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ana@safedata.pe")
	repo.AssertExpectations(t)
}

func TestHandlerListUsers_BadActiveFlag(t *testing.T) {
	router := setupAdminRouter(new(mockAdminRepository), uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users?active=maybe", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "active must be true or false")
}

func TestHandlerCreateUser(t *testing.T) {
	repo := new(mockAdminRepository)
	repo.On("GetUserByEmail", mock.Anything, "nuevo@safedata.pe").Return(nil, pgx.ErrNoRows).Once()
	repo.On("CreateUser", mock.Anything, mock.Anything).Return(&models.User{
		ID:    uuid.New(),
		Email: "nuevo@safedata.pe",
		Role:  models.RoleEncargadoSipCop,
	}, nil).Once()

	router := setupAdminRouter(repo, uuid.New())

	payload, err := json.Marshal(gin.H{
		"email":     "nuevo@safedata.pe",
		"password":  "s3cret-pass",
		"full_name": "Encargado SipCop",
		"role":      "EncargadoSipCop",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/users", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	repo.AssertExpectations(t)
}

func TestHandlerGetUser_BadID(t *testing.T) {
	router := setupAdminRouter(new(mockAdminRepository), uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users/not-a-uuid", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerUpdateUser(t *testing.T) {
	repo := new(mockAdminRepository)
	userID := uuid.New()
	existing := &models.User{ID: userID, Email: "ana@safedata.pe", FullName: "Ana", Role: models.RoleAnalista, IsActive: true}
	repo.On("GetUser", mock.Anything, userID).Return(existing, nil).Once()
	repo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.ID == userID && u.Role == models.RoleGerente
	})).Return(&models.User{ID: userID, Role: models.RoleGerente}, nil).Once()

	router := setupAdminRouter(repo, uuid.New())

	payload, err := json.Marshal(gin.H{"role": "Gerente"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/admin/users/"+userID.String(), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestHandlerDeactivateUser(t *testing.T) {
	repo := new(mockAdminRepository)
	userID := uuid.New()
	repo.On("DeactivateUser", mock.Anything, userID).Return(nil).Once()

	router := setupAdminRouter(repo, uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/admin/users/"+userID.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestHandlerDeactivateUser_Self(t *testing.T) {
	repo := new(mockAdminRepository)
	callerID := uuid.New()

	router := setupAdminRouter(repo, callerID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/admin/users/"+callerID.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "DeactivateUser", mock.Anything, mock.Anything)
}
