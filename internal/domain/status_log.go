package domain

import "time"

// StatusLog is an immutable audit entry for a single ticket transition.
// The creation entry has a nil OldStatus; system-initiated transitions
// (escalation reverts) have a nil ActorID.
type StatusLog struct {
	ID        string
	TicketID  string
	OldStatus *TicketStatus
	NewStatus TicketStatus
	ActorID   *string
	Comment   string
	CreatedAt time.Time
}
