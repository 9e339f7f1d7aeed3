package dto

import (
	"time"

	"github.com/spec-kit/civic-report-service/internal/domain"
)

// CreateUserRequest registers a principal.
type CreateUserRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
	TeamID   *string `json:"team_id"`
}

// UpdateUserRequest changes a principal's profile, role or team.
type UpdateUserRequest struct {
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Role   string  `json:"role"`
	TeamID *string `json:"team_id"`
}

// UserResponse is the wire shape of a user. The password hash never
// leaves the service.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	TeamID    *string     `json:"team_id"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"created_at"`
}

// CategoryRequest creates or updates a category.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

// CategoryResponse is the wire shape of a category.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// DistrictResponse is the wire shape of a district.
type DistrictResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

// NotificationResponse is one inbox entry.
type NotificationResponse struct {
	ID        string                  `json:"id"`
	TicketID  *string                 `json:"ticket_id"`
	Type      domain.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	IsRead    bool                    `json:"is_read"`
	CreatedAt time.Time               `json:"created_at"`
}
