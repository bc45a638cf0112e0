package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/models"
)

// Repository handles database operations for authentication
type Repository struct {
	db *pgxpool.Pool
}

var _ AuthRepository = (*Repository)(nil)

// NewRepository creates a new auth repository
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

// GetUserByID returns a non-deleted user by id, or pgx.ErrNoRows.
func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		"SELECT"+userColumns+" FROM users WHERE id = $1 AND deleted_at IS NULL", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
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

// UpdatePassword replaces a user's password hash.
func (r *Repository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdateProfile changes the user's display name.
func (r *Repository) UpdateProfile(ctx context.Context, userID uuid.UUID, fullName string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `
		UPDATE users SET full_name = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
		RETURNING`+userColumns,
		fullName, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

// CreateResetToken stores a password reset token.
func (r *Repository) CreateResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO password_reset_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
	`, userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}
	return nil
}

// GetResetToken returns an unused reset token, or pgx.ErrNoRows.
func (r *Repository) GetResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, token, expires_at, used_at, created_at
		FROM password_reset_tokens
		WHERE token = $1 AND used_at IS NULL
	`, token).Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}
	return &t, nil
}

// MarkResetTokenUsed burns a reset token.
func (r *Repository) MarkResetTokenUsed(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE password_reset_tokens SET used_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark reset token used: %w", err)
	}
	return nil
}

// RecordAccess appends one entry to the audit trail.
func (r *Repository) RecordAccess(ctx context.Context, entry *models.AuditAccess) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO audit_accesses (user_id, action, path, ip, user_agent)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.UserID, entry.Action, entry.Path, entry.IP, entry.UserAgent)
	if err != nil {
		return fmt.Errorf("failed to record access: %w", err)
	}
	return nil
}
