package domain

import "time"

// Comment is a message in a ticket thread. Internal comments are only
// visible to staff.
type Comment struct {
	ID         string
	TicketID   string
	AuthorID   string
	Body       string
	IsInternal bool
	CreatedAt  time.Time
}

// PhotoType tags what a photo documents.
type PhotoType string

const (
	PhotoTypeReport     PhotoType = "REPORT"
	PhotoTypeResolution PhotoType = "RESOLUTION"
)

// TicketPhoto stores photo metadata; the binary lives in external storage.
type TicketPhoto struct {
	ID         string
	TicketID   string
	UploaderID string
	StorageKey string
	MimeType   string
	Type       PhotoType
	CreatedAt  time.Time
}
