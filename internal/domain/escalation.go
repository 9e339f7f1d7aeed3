package domain

import "time"

// EscalationStatus enumerates review outcomes.
type EscalationStatus string

const (
	EscalationStatusPending  EscalationStatus = "PENDING"
	EscalationStatusApproved EscalationStatus = "APPROVED"
	EscalationStatusRejected EscalationStatus = "REJECTED"
)

// Escalation is a request to pull a ticket in front of a manager.
// PreviousStatus is captured at request time so a rejection can restore
// the ticket to exactly where it was.
type Escalation struct {
	ID             string
	TicketID       string
	RequesterID    string
	Reason         string
	Status         EscalationStatus
	PreviousStatus TicketStatus
	ReviewerID     *string
	ReviewComment  *string
	CreatedAt      time.Time
	ReviewedAt     *time.Time
}
