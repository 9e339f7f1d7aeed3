package domain

import "time"

// NotificationType enumerates the domain events that produce notifications.
type NotificationType string

const (
	NotificationTicketCreated       NotificationType = "TICKET_CREATED"
	NotificationTicketStatusChanged NotificationType = "TICKET_STATUS_CHANGED"
	NotificationTicketAssigned      NotificationType = "TICKET_ASSIGNED"
	NotificationCommentAdded        NotificationType = "COMMENT_ADDED"
	NotificationEscalationRequested NotificationType = "ESCALATION_REQUESTED"
	NotificationEscalationApproved  NotificationType = "ESCALATION_APPROVED"
	NotificationEscalationRejected  NotificationType = "ESCALATION_REJECTED"
)

// Notification is a persisted record of a domain event for one recipient.
// Delivery (push/email/SMS) is an external collaborator that reads these.
type Notification struct {
	ID          string
	RecipientID string
	TicketID    *string
	Type        NotificationType
	Title       string
	Message     string
	IsRead      bool
	CreatedAt   time.Time
}
