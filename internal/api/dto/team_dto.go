package dto

import "time"

// TeamRequest creates or updates a team.
type TeamRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CategoryIDs []string `json:"category_ids"`
	DistrictIDs []string `json:"district_ids"`
}

// ReassignTicketRequest moves a ticket to another team.
type ReassignTicketRequest struct {
	TeamID string `json:"team_id"`
}

// TeamResponse is the wire shape of a team.
type TeamResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsFallback  bool      `json:"is_fallback"`
	CategoryIDs []string  `json:"category_ids"`
	DistrictIDs []string  `json:"district_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
