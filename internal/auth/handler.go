package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/common"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/middleware"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/models"
)

// Handler handles HTTP requests for authentication
type Handler struct {
	service *Service
}

// NewHandler creates a new auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// UpdateProfileRequest changes the caller's display name
type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"required"`
}

func requestMeta(c *gin.Context) RequestMeta {
	return RequestMeta{
		Path:      c.Request.URL.Path,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// Login authenticates a user and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !common.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req, requestMeta(c))
	if common.HandleServiceError(c, err, "failed to login") {
		return
	}

	common.SuccessResponse(c, resp)
}

// Register creates a new staff user
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !common.BindJSON(c, &req) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), &req)
	if common.HandleServiceError(c, err, "failed to register") {
		return
	}

	common.CreatedResponse(c, user)
}

// Logout records the logout event
func (h *Handler) Logout(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	h.service.Logout(c.Request.Context(), userID, requestMeta(c))
	common.SuccessResponse(c, gin.H{"message": "logged out"})
}

// GetProfile returns the caller's own user record
func (h *Handler) GetProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if common.HandleServiceError(c, err, "failed to get profile") {
		return
	}

	common.SuccessResponse(c, user)
}

// UpdateProfile changes the caller's display name
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req UpdateProfileRequest
	if !common.BindJSON(c, &req) {
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, req.FullName)
	if common.HandleServiceError(c, err, "failed to update profile") {
		return
	}

	common.SuccessResponse(c, user)
}

// ForgotPassword requests a reset link. The response never reveals
// whether the account exists.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req models.PasswordResetRequest
	if !common.BindJSON(c, &req) {
		return
	}

	err := h.service.RequestPasswordReset(c.Request.Context(), req.Email, requestMeta(c))
	if common.HandleServiceError(c, err, "failed to request password reset") {
		return
	}

	common.SuccessResponse(c, gin.H{"message": "if the account exists, a reset link was sent"})
}

// ResetPassword redeems a reset token
func (h *Handler) ResetPassword(c *gin.Context) {
	var req models.PasswordResetConfirm
	if !common.BindJSON(c, &req) {
		return
	}

	err := h.service.ConfirmPasswordReset(c.Request.Context(), &req, requestMeta(c))
	if common.HandleServiceError(c, err, "failed to reset password") {
		return
	}

	common.SuccessResponse(c, gin.H{"message": "password updated"})
}
