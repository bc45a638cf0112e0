package admin

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/common"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/models"
)

type mockAdminRepository struct {
	mock.Mock
}

func (m *mockAdminRepository) ListUsers(ctx context.Context, filter ListUsersFilter) ([]models.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *mockAdminRepository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAdminRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAdminRepository) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAdminRepository) UpdateUser(ctx context.Context, u *models.User) (*models.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAdminRepository) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func TestListUsers_UnknownRoleRejected(t *testing.T) {
	svc := NewService(new(mockAdminRepository))

	_, err := svc.ListUsers(context.Background(), ListUsersFilter{Role: "SuperAdmin"})
	require.Error(t, err)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestListUsers_PassesFilter(t *testing.T) {
	repo := new(mockAdminRepository)
	active := true
	filter := ListUsersFilter{Q: "safedata", Role: models.RoleAnalista, Active: &active}

	repo.On("ListUsers", mock.Anything, filter).Return([]models.User{{Email: "a@safedata.pe"}}, nil).Once()

	svc := NewService(repo)
	users, err := svc.ListUsers(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	repo.AssertExpectations(t)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	repo := new(mockAdminRepository)
	repo.On("GetUserByEmail", mock.Anything, "dup@safedata.pe").
		Return(&models.User{ID: uuid.New()}, nil).Once()

	svc := NewService(repo)
	_, err := svc.CreateUser(context.Background(), &models.RegisterRequest{
		Email:    "dup@safedata.pe",
		Password: "super-secreta",
		FullName: "Dup",
		Role:     models.RoleAnalista,
	})
	require.Error(t, err)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.Code)
	repo.AssertExpectations(t)
}

func TestUpdateUser_AppliesPartialFields(t *testing.T) {
	repo := new(mockAdminRepository)
	id := uuid.New()
	existing := &models.User{
		ID:           id,
		Email:        "ana@safedata.pe",
		FullName:     "Ana",
		PasswordHash: "old-hash",
		Role:         models.RoleAnalista,
		IsActive:     true,
	}

	repo.On("GetUser", mock.Anything, id).Return(existing, nil).Once()

	var updated *models.User
	repo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		updated = u
		return u.ID == id
	})).Return(existing, nil).Once()

	newRole := models.RoleGerente
	inactive := false
	password := "nueva-clave-larga"

	svc := NewService(repo)
	_, err := svc.UpdateUser(context.Background(), id, &models.UpdateUserRequest{
		Role:     &newRole,
		IsActive: &inactive,
		Password: &password,
	})
	require.NoError(t, err)

	require.NotNil(t, updated)
	// untouched fields keep their values
	assert.Equal(t, "Ana", updated.FullName)
	assert.Equal(t, models.RoleGerente, updated.Role)
	assert.False(t, updated.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(password)))
	repo.AssertExpectations(t)
}

func TestUpdateUser_NotFound(t *testing.T) {
	repo := new(mockAdminRepository)
	id := uuid.New()
	repo.On("GetUser", mock.Anything, id).Return(nil, pgx.ErrNoRows).Once()

	svc := NewService(repo)
	_, err := svc.UpdateUser(context.Background(), id, &models.UpdateUserRequest{})
	require.Error(t, err)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Code)
	repo.AssertExpectations(t)
}

func TestDeactivateUser_SelfBlocked(t *testing.T) {
	repo := new(mockAdminRepository)
	id := uuid.New()

	svc := NewService(repo)
	err := svc.DeactivateUser(context.Background(), id, id)
	require.Error(t, err)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
	repo.AssertNotCalled(t, "DeactivateUser")
}

func TestDeactivateUser_Success(t *testing.T) {
	repo := new(mockAdminRepository)
	id := uuid.New()
	repo.On("DeactivateUser", mock.Anything, id).Return(nil).Once()

	svc := NewService(repo)
	err := svc.DeactivateUser(context.Background(), id, uuid.New())
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDeactivateUser_NotFound(t *testing.T) {
	repo := new(mockAdminRepository)
	id := uuid.New()
	repo.On("DeactivateUser", mock.Anything, id).Return(pgx.ErrNoRows).Once()

	svc := NewService(repo)
	err := svc.DeactivateUser(context.Background(), id, uuid.New())
	require.Error(t, err)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Code)
	repo.AssertExpectations(t)
}
