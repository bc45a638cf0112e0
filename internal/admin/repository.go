package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/models"
)

// Repository handles database operations for user administration
type Repository struct {
	db *pgxpool.Pool
}

var _ AdminRepository = (*Repository)(nil)

// NewRepository creates a new admin repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const userColumns = `
	id, email, full_name, password_hash, role, is_active,
	created_at, updated_at, deleted_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt, &u.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns non-deleted users, newest first, narrowed by the
// optional email substring, role and active filters.
func (r *Repository) ListUsers(ctx context.Context, filter ListUsersFilter) ([]models.User, error) {
	query := strings.Builder{}
	query.WriteString("SELECT" + userColumns + " FROM users WHERE deleted_at IS NULL")

	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Q != "" {
		query.WriteString(" AND email ILIKE " + arg("%"+filter.Q+"%"))
	}
	if filter.Role != "" {
		query.WriteString(" AND role = " + arg(filter.Role))
	}
	if filter.Active != nil {
		query.WriteString(" AND is_active = " + arg(*filter.Active))
	}

	query.WriteString(" ORDER BY created_at DESC")

	rows, err := r.db.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// GetUser returns a non-deleted user by id, or pgx.ErrNoRows.
func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		"SELECT"+userColumns+" FROM users WHERE id = $1 AND deleted_at IS NULL", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns a non-deleted user by email, or pgx.ErrNoRows.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		"SELECT"+userColumns+" FROM users WHERE email = $1 AND deleted_at IS NULL", email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// CreateUser inserts a user and returns the stored record.
func (r *Repository) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	created, err := scanUser(r.db.QueryRow(ctx, `
		INSERT INTO users (email, full_name, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING`+userColumns,
		u.Email, u.FullName, u.PasswordHash, u.Role, u.IsActive))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

// UpdateUser persists the mutated fields of a loaded user record.
func (r *Repository) UpdateUser(ctx context.Context, u *models.User) (*models.User, error) {
	updated, err := scanUser(r.db.QueryRow(ctx, `
		UPDATE users
		SET full_name = $1, role = $2, is_active = $3, password_hash = $4, updated_at = NOW()
		WHERE id = $5 AND deleted_at IS NULL
		RETURNING`+userColumns,
		u.FullName, u.Role, u.IsActive, u.PasswordHash, u.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return updated, nil
}

// DeactivateUser performs the logical delete used by the admin screens.
func (r *Repository) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET is_active = FALSE, deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
