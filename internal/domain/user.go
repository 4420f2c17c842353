package domain

import "time"

// AuthProvider represents the way a user signs in.
type AuthProvider string

const (
	AuthProviderPassword AuthProvider = "password"
	AuthProviderGoogle   AuthProvider = "google"
	AuthProviderGitHub   AuthProvider = "github"
)

// SystemRole is the instance-wide role of a user, independent of any project.
type SystemRole string

const (
	SystemRoleAdmin          SystemRole = "admin"
	SystemRoleUser           SystemRole = "user"
	SystemRoleProjectManager SystemRole = "project_manager"
)

// Valid reports whether r is a known system role.
func (r SystemRole) Valid() bool {
	switch r {
	case SystemRoleAdmin, SystemRoleUser, SystemRoleProjectManager:
		return true
	}
	return false
}

// User represents an authenticated user.
type User struct {
	ID           int64        `json:"id" db:"id"`
	Provider     AuthProvider `json:"provider" db:"provider"`
	ProviderID   string       `json:"-" db:"provider_id"`
	Email        string       `json:"email" db:"email"`
	DisplayName  string       `json:"display_name" db:"display_name"`
	AvatarURL    *string      `json:"avatar_url,omitempty" db:"avatar_url"`
	PasswordHash *string      `json:"-" db:"password_hash"`
	SystemRole   SystemRole   `json:"system_role" db:"system_role"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// UserSummary is the public slice of a user embedded in other resources.
type UserSummary struct {
	ID          int64   `json:"id" db:"id"`
	DisplayName string  `json:"display_name" db:"display_name"`
	AvatarURL   *string `json:"avatar_url,omitempty" db:"avatar_url"`
}
