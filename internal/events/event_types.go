package events

import (
	"time"

	"github.com/spec-kit/civic-report-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventCommentAdded        EventType = "comment_added"
	EventEscalationRequested EventType = "escalation_requested"
	EventEscalationApproved  EventType = "escalation_approved"
	EventEscalationRejected  EventType = "escalation_rejected"
)

// Event represents a domain event emitted by services. ActorID is nil
// for system-initiated changes such as escalation reverts.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   *string     `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title      string  `json:"title"`
	CategoryID string  `json:"category_id"`
	DistrictID string  `json:"district_id"`
	ReporterID string  `json:"reporter_id"`
	TeamID     *string `json:"team_id,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus  domain.TicketStatus `json:"old_status"`
	NewStatus  domain.TicketStatus `json:"new_status"`
	ReporterID string              `json:"reporter_id"`
	Comment    string              `json:"comment,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	TeamID string `json:"team_id"`
	Title  string `json:"title"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID  string `json:"comment_id"`
	ReporterID string `json:"reporter_id"`
	IsInternal bool   `json:"is_internal"`
	Preview    string `json:"preview"`
}

// EscalationPayload covers request/approve/reject events.
type EscalationPayload struct {
	EscalationID string `json:"escalation_id"`
	RequesterID  string `json:"requester_id"`
	Reason       string `json:"reason,omitempty"`
	Comment      string `json:"comment,omitempty"`
}
