package domain

import "time"

// Category classifies the kind of infrastructure issue.
type Category struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// District is a named neighborhood within the city.
type District struct {
	ID        string
	Name      string
	City      string
	CreatedAt time.Time
}
