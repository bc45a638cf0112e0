package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/common"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/config"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/logger"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/middleware"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/models"
)

// Audit trail actions
const (
	auditLoginFail    = "login_fail"
	auditLoginSuccess = "login_success"
	auditLogout       = "logout"
	auditResetRequest = "reset_request"
	auditResetOK      = "reset_ok"
)

// AuthRepository defines the persistence operations required by the service.
type AuthRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, fullName string) (*models.User, error)
	CreateResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	GetResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	MarkResetTokenUsed(ctx context.Context, id uuid.UUID) error
	RecordAccess(ctx context.Context, entry *models.AuditAccess) error
}

// RequestMeta carries the caller details recorded in the audit trail.
type RequestMeta struct {
	Path      string
	IP        string
	UserAgent string
}

// Service handles authentication business logic
type Service struct {
	repo   AuthRepository
	mailer Mailer
	jwtCfg config.JWTConfig
	base   string
	now    func() time.Time
}

// NewService creates a new auth service
func NewService(repo AuthRepository, mailer Mailer, jwtCfg config.JWTConfig, baseURL string) *Service {
	return &Service{
		repo:   repo,
		mailer: mailer,
		jwtCfg: jwtCfg,
		base:   baseURL,
		now:    time.Now,
	}
}

// Login checks credentials and issues a signed JWT. Failures are audited
// without revealing which check failed.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest, meta RequestMeta) (*models.LoginResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.audit(ctx, auditLoginFail, nil, meta)
			return nil, common.NewUnauthorizedError("invalid credentials")
		}
		return nil, common.NewInternalError("failed to load user", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil || !user.IsActive {
		s.audit(ctx, auditLoginFail, nil, meta)
		return nil, common.NewUnauthorizedError("invalid credentials")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, common.NewInternalError("failed to generate token", err)
	}

	s.audit(ctx, auditLoginSuccess, &user.ID, meta)
	return &models.LoginResponse{User: user, Token: token}, nil
}

// Register creates a new staff user.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if _, err := s.repo.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, common.NewConflictError("email already registered")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewInternalError("failed to check existing user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.NewInternalError("failed to hash password", err)
	}

	user, err := s.repo.CreateUser(ctx, &models.User{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
		Role:         req.Role,
		IsActive:     true,
	})
	if err != nil {
		return nil, common.NewInternalError("failed to create user", err)
	}
	return user, nil
}

// Logout records the event. Tokens are stateless, so there is nothing to
// revoke server-side.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID, meta RequestMeta) {
	s.audit(ctx, auditLogout, &userID, meta)
}

// GetProfile returns the caller's own user record.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("user not found")
		}
		return nil, common.NewInternalError("failed to load user", err)
	}
	return user, nil
}

// UpdateProfile changes the caller's display name.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, fullName string) (*models.User, error) {
	user, err := s.repo.UpdateProfile(ctx, userID, fullName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("user not found")
		}
		return nil, common.NewInternalError("failed to update profile", err)
	}
	return user, nil
}

// RequestPasswordReset mails a one-time reset link. The response is the
// same whether or not the email exists, so accounts cannot be enumerated.
// SMTP failures are logged and swallowed.
func (s *Service) RequestPasswordReset(ctx context.Context, email string, meta RequestMeta) error {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.audit(ctx, auditResetRequest, nil, meta)
			return nil
		}
		return common.NewInternalError("failed to load user", err)
	}
	if !user.IsActive {
		s.audit(ctx, auditResetRequest, nil, meta)
		return nil
	}

	token, err := generateResetToken()
	if err != nil {
		return common.NewInternalError("failed to generate reset token", err)
	}

	expires := s.now().Add(time.Duration(s.jwtCfg.ResetTTL) * time.Hour)
	if err := s.repo.CreateResetToken(ctx, user.ID, token, expires); err != nil {
		return common.NewInternalError("failed to store reset token", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.base, token)
	if err := s.mailer.SendPasswordResetEmail(user.Email, resetURL); err != nil {
		logger.WarnContext(ctx, "failed to send password reset email",
			zap.String("email", user.Email), zap.Error(err))
	}

	s.audit(ctx, auditResetRequest, &user.ID, meta)
	return nil
}

// ConfirmPasswordReset redeems a token and sets the new password.
func (s *Service) ConfirmPasswordReset(ctx context.Context, req *models.PasswordResetConfirm, meta RequestMeta) error {
	token, err := s.repo.GetResetToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewBadRequestError("invalid or expired token", nil)
		}
		return common.NewInternalError("failed to load reset token", err)
	}
	if token.ExpiresAt.Before(s.now()) {
		return common.NewBadRequestError("invalid or expired token", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return common.NewInternalError("failed to hash password", err)
	}

	if err := s.repo.UpdatePassword(ctx, token.UserID, string(hash)); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewBadRequestError("user not found", nil)
		}
		return common.NewInternalError("failed to update password", err)
	}

	if err := s.repo.MarkResetTokenUsed(ctx, token.ID); err != nil {
		return common.NewInternalError("failed to mark token used", err)
	}

	s.audit(ctx, auditResetOK, &token.UserID, meta)
	return nil
}

func (s *Service) generateToken(user *models.User) (string, error) {
	now := s.now()
	claims := middleware.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.jwtCfg.Expiration) * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.Secret))
}

// audit writes one trail entry; a failed write is logged, never surfaced.
func (s *Service) audit(ctx context.Context, action string, userID *uuid.UUID, meta RequestMeta) {
	entry := &models.AuditAccess{
		UserID:    userID,
		Action:    action,
		Path:      meta.Path,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	}
	if err := s.repo.RecordAccess(ctx, entry); err != nil {
		logger.WarnContext(ctx, "failed to record audit access",
			zap.String("action", action), zap.Error(err))
	}
}

// generateResetToken returns a 48-byte URL-safe random token.
func generateResetToken() (string, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
