package dto

import (
	"time"

	"github.com/spec-kit/civic-report-service/internal/domain"
)

// CreateTicketRequest is the report-an-issue payload.
type CreateTicketRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	CategoryID  string  `json:"category_id"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Address     string  `json:"address"`
	DistrictID  string  `json:"district_id"`
}

// TransitionRequest moves a ticket along its lifecycle.
type TransitionRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// CreateCommentRequest appends to the ticket thread.
type CreateCommentRequest struct {
	Body       string `json:"body"`
	IsInternal bool   `json:"is_internal"`
}

// AddPhotoRequest records photo metadata.
type AddPhotoRequest struct {
	StorageKey string `json:"storage_key"`
	MimeType   string `json:"mime_type"`
	Type       string `json:"type"`
}

// SubmitFeedbackRequest rates a resolved ticket.
type SubmitFeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// LocationResponse echoes the reported position.
type LocationResponse struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Address    string  `json:"address"`
	DistrictID string  `json:"district_id"`
	City       string  `json:"city"`
}

// TicketResponse is the wire shape of a ticket.
type TicketResponse struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Status        domain.TicketStatus `json:"status"`
	CategoryID    string              `json:"category_id"`
	Location      LocationResponse    `json:"location"`
	ReporterID    string              `json:"reporter_id"`
	TeamID        *string             `json:"team_id"`
	ResolvedAt    *time.Time          `json:"resolved_at"`
	PhotoCount    int                 `json:"photo_count"`
	CommentCount  int                 `json:"comment_count"`
	FollowerCount int                 `json:"follower_count"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// NearbyTicketResponse pairs a ticket with its distance in meters.
type NearbyTicketResponse struct {
	Ticket         TicketResponse `json:"ticket"`
	DistanceMeters float64        `json:"distance_meters"`
}

// StatusLogResponse is one audit trail entry.
type StatusLogResponse struct {
	ID        string               `json:"id"`
	OldStatus *domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus  `json:"new_status"`
	ActorID   *string              `json:"actor_id"`
	Comment   string               `json:"comment,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// CommentResponse is one thread message.
type CommentResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	AuthorID   string    `json:"author_id"`
	Body       string    `json:"body"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// PhotoResponse is one photo metadata record.
type PhotoResponse struct {
	ID         string           `json:"id"`
	TicketID   string           `json:"ticket_id"`
	UploaderID string           `json:"uploader_id"`
	StorageKey string           `json:"storage_key"`
	MimeType   string           `json:"mime_type"`
	Type       domain.PhotoType `json:"type"`
	CreatedAt  time.Time        `json:"created_at"`
}

// FeedbackResponse is the rating attached to a ticket.
type FeedbackResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	AuthorID  string    `json:"author_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
