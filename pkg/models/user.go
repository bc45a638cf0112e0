package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents user role type
type UserRole string

const (
	RoleGerente         UserRole = "Gerente"
	RoleJefeOperaciones UserRole = "JefeOperaciones"
	RoleAnalista        UserRole = "Analista"
	RoleEncargadoSipCop UserRole = "EncargadoSipCop"
)

// MapRoles lists the roles allowed to use the heat-map module.
var MapRoles = []UserRole{RoleGerente, RoleJefeOperaciones, RoleAnalista, RoleEncargadoSipCop}

// ValidRole reports whether the role is one of the known roles.
func ValidRole(role UserRole) bool {
	switch role {
	case RoleGerente, RoleJefeOperaciones, RoleAnalista, RoleEncargadoSipCop:
		return true
	}
	return false
}

// User represents a platform user
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	FullName     string     `json:"full_name" db:"full_name"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         UserRole   `json:"role" db:"role"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=8"`
	FullName string   `json:"full_name" binding:"required"`
	Role     UserRole `json:"role" binding:"required,user_role"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents login response
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// PasswordResetRequest asks for a reset link to be mailed
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordResetConfirm redeems a reset token
type PasswordResetConfirm struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// PasswordResetToken is a one-time token mailed to the user
type PasswordResetToken struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Token     string     `json:"-" db:"token"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty" db:"used_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// AuditAccess records an authentication-related event
type AuditAccess struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	Action    string     `json:"action" db:"action"`
	Path      string     `json:"path" db:"path"`
	IP        string     `json:"ip" db:"ip"`
	UserAgent string     `json:"user_agent" db:"user_agent"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// UpdateUserRequest represents an admin user update
type UpdateUserRequest struct {
	FullName *string   `json:"full_name,omitempty"`
	Role     *UserRole `json:"role,omitempty" binding:"omitempty,user_role"`
	IsActive *bool     `json:"is_active,omitempty"`
	Password *string   `json:"password,omitempty" binding:"omitempty,min=8"`
}
