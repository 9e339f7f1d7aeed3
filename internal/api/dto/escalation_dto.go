package dto

import (
	"time"

	"github.com/spec-kit/civic-report-service/internal/domain"
)

// RequestEscalationRequest opens an escalation on a ticket.
type RequestEscalationRequest struct {
	TicketID string `json:"ticket_id"`
	Reason   string `json:"reason"`
}

// ReviewEscalationRequest resolves a pending escalation.
type ReviewEscalationRequest struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

// EscalationResponse is the wire shape of an escalation.
type EscalationResponse struct {
	ID             string                  `json:"id"`
	TicketID       string                  `json:"ticket_id"`
	RequesterID    string                  `json:"requester_id"`
	Reason         string                  `json:"reason"`
	Status         domain.EscalationStatus `json:"status"`
	PreviousStatus domain.TicketStatus     `json:"previous_status"`
	ReviewerID     *string                 `json:"reviewer_id"`
	ReviewComment  *string                 `json:"review_comment"`
	CreatedAt      time.Time               `json:"created_at"`
	ReviewedAt     *time.Time              `json:"reviewed_at"`
}
