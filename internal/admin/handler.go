package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/common"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/middleware"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/models"
)

// Handler handles HTTP requests for user administration
type Handler struct {
	service *Service
}

// NewHandler creates a new admin handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListUsers returns users filtered by q, role and active
func (h *Handler) ListUsers(c *gin.Context) {
	filter := ListUsersFilter{
		Q:    c.Query("q"),
		Role: models.UserRole(c.Query("role")),
	}
	if activeStr := c.Query("active"); activeStr != "" {
		active, err := strconv.ParseBool(activeStr)
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "active must be true or false")
			return
		}
		filter.Active = &active
	}

	users, err := h.service.ListUsers(c.Request.Context(), filter)
	if common.HandleServiceError(c, err, "failed to list users") {
		return
	}

	common.SuccessResponse(c, users)
}

// GetUser returns one user
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "user id")
	if !ok {
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), id)
	if common.HandleServiceError(c, err, "failed to get user") {
		return
	}

	common.SuccessResponse(c, user)
}

// CreateUser registers a staff user
func (h *Handler) CreateUser(c *gin.Context) {
	var req models.RegisterRequest
	if !common.BindJSON(c, &req) {
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), &req)
	if common.HandleServiceError(c, err, "failed to create user") {
		return
	}

	common.CreatedResponse(c, user)
}

// UpdateUser applies a partial update to a user
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "user id")
	if !ok {
		return
	}

	var req models.UpdateUserRequest
	if !common.BindJSON(c, &req) {
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), id, &req)
	if common.HandleServiceError(c, err, "failed to update user") {
		return
	}

	common.SuccessResponse(c, user)
}

// DeactivateUser logically deletes a user
func (h *Handler) DeactivateUser(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "user id")
	if !ok {
		return
	}

	callerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	err = h.service.DeactivateUser(c.Request.Context(), id, callerID)
	if common.HandleServiceError(c, err, "failed to deactivate user") {
		return
	}

	common.SuccessResponse(c, gin.H{"message": "user deactivated"})
}
