package admin

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/common"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/models"
)

// AdminRepository defines the persistence operations required by the service.
type AdminRepository interface {
	ListUsers(ctx context.Context, filter ListUsersFilter) ([]models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) (*models.User, error)
	DeactivateUser(ctx context.Context, id uuid.UUID) error
}

// ListUsersFilter narrows the user listing
type ListUsersFilter struct {
	Q      string
	Role   models.UserRole
	Active *bool
}

// Service handles user administration business logic
type Service struct {
	repo AdminRepository
}

// NewService creates a new admin service
func NewService(repo AdminRepository) *Service {
	return &Service{repo: repo}
}

// ListUsers returns users matching the filter.
func (s *Service) ListUsers(ctx context.Context, filter ListUsersFilter) ([]models.User, error) {
	if filter.Role != "" && !models.ValidRole(filter.Role) {
		return nil, common.NewBadRequestError("unknown role", nil)
	}

	users, err := s.repo.ListUsers(ctx, filter)
	if err != nil {
		return nil, common.NewInternalError("failed to list users", err)
	}
	return users, nil
}

// GetUser returns one user.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("user not found")
		}
		return nil, common.NewInternalError("failed to get user", err)
	}
	return user, nil
}

// CreateUser registers a staff user with a hashed password.
func (s *Service) CreateUser(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
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

// UpdateUser applies the provided fields to an existing user.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("user not found")
		}
		return nil, common.NewInternalError("failed to get user", err)
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, common.NewInternalError("failed to hash password", err)
		}
		user.PasswordHash = string(hash)
	}

	updated, err := s.repo.UpdateUser(ctx, user)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("user not found")
		}
		return nil, common.NewInternalError("failed to update user", err)
	}
	return updated, nil
}

// DeactivateUser logically deletes a user. Self-deactivation is blocked
// so the last manager cannot lock everyone out mid-session.
func (s *Service) DeactivateUser(ctx context.Context, id, callerID uuid.UUID) error {
	if id == callerID {
		return common.NewBadRequestError("cannot deactivate your own account", nil)
	}

	if err := s.repo.DeactivateUser(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewNotFoundError("user not found")
		}
		return common.NewInternalError("failed to deactivate user", err)
	}
	return nil
}
