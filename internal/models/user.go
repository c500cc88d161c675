package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRole represents the role of a platform user
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleCustomer UserRole = "CUSTOMER"
	RoleAgent    UserRole = "AGENT"
)

// IsStaff is true for roles allowed to act on other users' bookings
func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleAgent
}

// User represents a user in the system
type User struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	Email          string     `json:"email" db:"email"`
	PasswordHash   string     `json:"-" db:"password_hash"` // Never expose
	Role           UserRole   `json:"role" db:"role"`
	Phone          NullString `json:"phone,omitempty" db:"phone"`
	Address        NullString `json:"address,omitempty" db:"address"`
	ProfilePicture NullString `json:"profile_picture,omitempty" db:"profile_picture"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	LastLoginAt    NullTime   `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

type RegisterRequest struct {
	Name     string `json:"name" form:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" form:"email" validate:"required,email,max=255"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=72"`
	Phone    string `json:"phone" form:"phone" validate:"omitempty,phone"`
	Address  string `json:"address" form:"address" validate:"max=255"`
}

// CreateUserRequest is the admin variant of registration with an explicit role
type CreateUserRequest struct {
	RegisterRequest
	Role UserRole `json:"role" form:"role" validate:"required,oneof=ADMIN CUSTOMER AGENT"`
}

type UpdateUserRequest struct {
	Name     *string   `json:"name" form:"name" validate:"omitempty,min=2,max=100"`
	Email    *string   `json:"email" form:"email" validate:"omitempty,email,max=255"`
	Password *string   `json:"password" form:"password" validate:"omitempty,min=8,max=72"`
	Phone    *string   `json:"phone" form:"phone" validate:"omitempty,phone"`
	Address  *string   `json:"address" form:"address" validate:"omitempty,max=255"`
	Role     *UserRole `json:"role" form:"role" validate:"omitempty,oneof=ADMIN CUSTOMER AGENT"`
	IsActive *bool     `json:"is_active" form:"is_active"`
}

// ApplyTo merges profile fields. Password is hashed by the caller.
func (r UpdateUserRequest) ApplyTo(u *User) {
	if r.Name != nil {
		u.Name = *r.Name
	}
	if r.Email != nil {
		u.Email = NormalizeEmail(*r.Email)
	}
	if r.Phone != nil {
		u.Phone = NewNullString(*r.Phone)
	}
	if r.Address != nil {
		u.Address = NewNullString(*r.Address)
	}
	if r.Role != nil {
		u.Role = *r.Role
	}
	if r.IsActive != nil {
		u.IsActive = *r.IsActive
	}
}

// NormalizeEmail lowercases and trims an email for storage and lookups
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse is returned by login, register and refresh
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"`
	User         *User     `json:"user"`
}

// UserFilter holds the typed list filters for users
type UserFilter struct {
	ListParams
	Role   string `form:"role"`
	Search string `form:"search"`
}

// RefreshToken represents a JWT refresh token
type RefreshToken struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	TokenHash  string     `json:"-" db:"token_hash"` // Never expose
	IPAddress  NullString `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  NullString `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at" db:"expires_at"`
	LastUsedAt NullTime   `json:"last_used_at,omitempty" db:"last_used_at"`
	Revoked    bool       `json:"revoked" db:"revoked"`
	RevokedAt  NullTime   `json:"revoked_at,omitempty" db:"revoked_at"`
}

// AuditLog represents an audit log entry
type AuditLog struct {
	ID         int64         `json:"id" db:"id"`
	UserID     uuid.NullUUID `json:"user_id,omitempty" db:"user_id"`
	Action     string        `json:"action" db:"action"`
	EntityType NullString    `json:"entity_type,omitempty" db:"entity_type"`
	EntityID   uuid.NullUUID `json:"entity_id,omitempty" db:"entity_id"`
	IPAddress  NullString    `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  NullString    `json:"user_agent,omitempty" db:"user_agent"`
	Details    JSONB         `json:"details,omitempty" db:"details"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
}
