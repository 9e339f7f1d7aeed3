package domain

import "time"

// Role enumerates principal roles.
type Role string

const (
	RoleCitizen Role = "CITIZEN"
	RoleSupport Role = "SUPPORT"
	RoleManager Role = "MANAGER"
)

// IsStaff reports whether the role belongs to municipal staff.
func (r Role) IsStaff() bool {
	return r == RoleSupport || r == RoleManager
}

// User is an authenticated principal. TeamID is set for SUPPORT only.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	TeamID       *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
