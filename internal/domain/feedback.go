package domain

import "time"

// Feedback is the reporter's one-time rating of a resolved ticket.
type Feedback struct {
	ID        string
	TicketID  string
	AuthorID  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// RatingMin and RatingMax bound valid feedback ratings.
const (
	RatingMin = 1
	RatingMax = 5
)
