package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/civic-report-service/internal/domain"
	"github.com/spec-kit/civic-report-service/internal/events"
	"github.com/spec-kit/civic-report-service/internal/observability"
	"github.com/spec-kit/civic-report-service/internal/repository"
	apperrors "github.com/spec-kit/civic-report-service/pkg/util"
)

// NotificationService turns domain events into persisted notification
// records, one row per recipient. It never delivers anything; an
// external collaborator reads unread rows.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	tickets       repository.TicketRepository
	dispatcher    events.Dispatcher
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NotificationDependencies bundles collaborators. Metrics may be nil.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	UserRepo         repository.UserRepository
	TicketRepo       repository.TicketRepository
	Dispatcher       events.Dispatcher
	Metrics          *observability.Metrics
	Logger           *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		notifications: deps.NotificationRepo,
		users:         deps.UserRepo,
		tickets:       deps.TicketRepo,
		dispatcher:    deps.Dispatcher,
		metrics:       deps.Metrics,
		logger:        deps.Logger,
	}
}

// RegisterHandlers subscribes to all notification-producing events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventCommentAdded, n.handleCommentAdded)
	n.dispatcher.Subscribe(events.EventEscalationRequested, n.handleEscalationRequested)
	n.dispatcher.Subscribe(events.EventEscalationApproved, n.handleEscalationReviewed)
	n.dispatcher.Subscribe(events.EventEscalationRejected, n.handleEscalationReviewed)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok || payload.TeamID == nil {
		return nil
	}
	members, err := n.users.ListByTeam(ctx, *payload.TeamID)
	if err != nil {
		n.logger.Error("list team members", zap.Error(err))
		return err
	}
	title := "New ticket in your queue"
	message := fmt.Sprintf("A new issue was reported: %s", payload.Title)
	return n.fanOut(ctx, event, domain.NotificationTicketCreated, title, message, userIDs(members))
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	recipients, err := n.reporterAndFollowers(ctx, event.TicketID, payload.ReporterID)
	if err != nil {
		return err
	}
	title := "Ticket status updated"
	message := fmt.Sprintf("Your ticket moved from %s to %s", payload.OldStatus, payload.NewStatus)
	return n.fanOut(ctx, event, domain.NotificationTicketStatusChanged, title, message, recipients)
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil
	}
	members, err := n.users.ListByTeam(ctx, payload.TeamID)
	if err != nil {
		n.logger.Error("list team members", zap.Error(err))
		return err
	}
	title := "Ticket assigned to your team"
	message := fmt.Sprintf("Ticket reassigned to your team: %s", payload.Title)
	return n.fanOut(ctx, event, domain.NotificationTicketAssigned, title, message, userIDs(members))
}

func (n *NotificationService) handleCommentAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CommentAddedPayload)
	if !ok || payload.IsInternal {
		// internal notes never reach citizens
		return nil
	}
	recipients, err := n.reporterAndFollowers(ctx, event.TicketID, payload.ReporterID)
	if err != nil {
		return err
	}
	recipients = exclude(recipients, event.ActorID)
	title := "New comment on ticket"
	return n.fanOut(ctx, event, domain.NotificationCommentAdded, title, payload.Preview, recipients)
}

func (n *NotificationService) handleEscalationRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.EscalationPayload)
	if !ok {
		return nil
	}
	managers, err := n.users.ListByRole(ctx, domain.RoleManager)
	if err != nil {
		n.logger.Error("list managers", zap.Error(err))
		return err
	}
	title := "Escalation awaiting review"
	message := fmt.Sprintf("Escalation requested: %s", payload.Reason)
	return n.fanOut(ctx, event, domain.NotificationEscalationRequested, title, message, userIDs(managers))
}

func (n *NotificationService) handleEscalationReviewed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.EscalationPayload)
	if !ok {
		return nil
	}
	notificationType := domain.NotificationEscalationApproved
	title := "Escalation approved"
	if event.Type == events.EventEscalationRejected {
		notificationType = domain.NotificationEscalationRejected
		title = "Escalation rejected"
	}
	message := title
	if payload.Comment != "" {
		message = fmt.Sprintf("%s: %s", title, payload.Comment)
	}
	return n.fanOut(ctx, event, notificationType, title, message, []string{payload.RequesterID})
}

// ListForUser returns a recipient's notifications.
func (n *NotificationService) ListForUser(ctx context.Context, actor *domain.User, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	items, err := n.notifications.ListByRecipient(ctx, actor.ID, unreadOnly, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// CountUnread returns the unread badge count.
func (n *NotificationService) CountUnread(ctx context.Context, actor *domain.User) (int64, error) {
	count, err := n.notifications.CountUnread(ctx, actor.ID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// MarkRead marks one of the actor's notifications as read.
func (n *NotificationService) MarkRead(ctx context.Context, actor *domain.User, notificationID string) error {
	return apperrors.MapError(n.notifications.MarkRead(ctx, notificationID, actor.ID))
}

// MarkAllRead marks all of the actor's notifications as read.
func (n *NotificationService) MarkAllRead(ctx context.Context, actor *domain.User) error {
	return apperrors.MapError(n.notifications.MarkAllRead(ctx, actor.ID))
}

func (n *NotificationService) reporterAndFollowers(ctx context.Context, ticketID, reporterID string) ([]string, error) {
	followers, err := n.tickets.ListFollowerIDs(ctx, ticketID)
	if err != nil {
		n.logger.Error("list followers", zap.Error(err))
		return nil, err
	}
	recipients := append([]string{reporterID}, followers...)
	return dedupe(recipients), nil
}

func (n *NotificationService) fanOut(ctx context.Context, event events.Event, notificationType domain.NotificationType, title, message string, recipientIDs []string) error {
	if len(recipientIDs) == 0 {
		return nil
	}
	ticketID := event.TicketID
	records := make([]domain.Notification, 0, len(recipientIDs))
	for _, recipientID := range recipientIDs {
		records = append(records, domain.Notification{
			RecipientID: recipientID,
			TicketID:    &ticketID,
			Type:        notificationType,
			Title:       title,
			Message:     message,
		})
	}
	if err := n.notifications.CreateBatch(ctx, records); err != nil {
		n.logger.Error("persist notifications", zap.Error(err), zap.String("event_type", string(event.Type)))
		return err
	}
	n.metrics.RecordEvent(string(event.Type))
	n.metrics.RecordNotifications(len(records))
	return nil
}

func userIDs(users []domain.User) []string {
	ids := make([]string, 0, len(users))
	for i := range users {
		ids = append(ids, users[i].ID)
	}
	return ids
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func exclude(ids []string, skip *string) []string {
	if skip == nil {
		return ids
	}
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == *skip {
			continue
		}
		result = append(result, id)
	}
	return result
}
