package domain

import "time"

// TicketStatus enumerates lifecycle states for reported issues.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEW"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusEscalated  TicketStatus = "ESCALATED"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// OpenStatuses are the states counted as "open" in reports.
var OpenStatuses = []TicketStatus{TicketStatusNew, TicketStatusInProgress, TicketStatusEscalated}

// IsTerminal reports whether no transition leaves the status.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusClosed
}

// IsResolvedLike reports whether resolved_at must be set for the status.
func (s TicketStatus) IsResolvedLike() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// Location is the reported position of an issue.
type Location struct {
	Latitude   float64
	Longitude  float64
	Address    string
	DistrictID string
	City       string
}

// Ticket is the aggregate for a resident-reported infrastructure issue.
type Ticket struct {
	ID            string
	Title         string
	Description   string
	Status        TicketStatus
	CategoryID    string
	Location      Location
	ReporterID    string
	TeamID        *string
	ResolvedAt    *time.Time
	PhotoCount    int
	CommentCount  int
	FollowerCount int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsOpen reports whether the ticket still needs work.
func (t *Ticket) IsOpen() bool {
	return !t.Status.IsResolvedLike()
}
