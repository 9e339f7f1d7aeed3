package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/civic-report-service/internal/authz"
	"github.com/spec-kit/civic-report-service/internal/domain"
	"github.com/spec-kit/civic-report-service/internal/events"
	"github.com/spec-kit/civic-report-service/internal/repository"
	apperrors "github.com/spec-kit/civic-report-service/pkg/util"
)

// EscalationService runs the request/approve/reject workflow. The first
// reviewer wins: the review write is conditional on PENDING status.
type EscalationService struct {
	escalations repository.EscalationRepository
	tickets     repository.TicketRepository
	ticketSvc   *TicketService
	dispatcher  events.Dispatcher
	now         func() time.Time
}

// EscalationDependencies bundles collaborators.
type EscalationDependencies struct {
	EscalationRepo repository.EscalationRepository
	TicketRepo     repository.TicketRepository
	TicketService  *TicketService
	Dispatcher     events.Dispatcher
}

// NewEscalationService constructs the service.
func NewEscalationService(deps EscalationDependencies) *EscalationService {
	return &EscalationService{
		escalations: deps.EscalationRepo,
		tickets:     deps.TicketRepo,
		ticketSvc:   deps.TicketService,
		dispatcher:  deps.Dispatcher,
		now:         time.Now,
	}
}

// Request opens an escalation and moves the ticket to ESCALATED. The
// ticket's current status is captured so a rejection can restore it.
func (s *EscalationService) Request(ctx context.Context, actor *domain.User, ticketID, reason string) (*domain.Escalation, error) {
	if err := authz.Authorize(actor, authz.ActionRequestEscalation, authz.Resource{}); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("escalation reason required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewValidationError("closed tickets cannot be escalated", map[string]any{"ticket_id": ticket.ID})
	}
	if _, err := s.escalations.FindPendingByTicket(ctx, ticket.ID); err == nil {
		return nil, apperrors.NewDuplicateEscalation(ticket.ID)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if !isValidTransition(ticket.Status, domain.TicketStatusEscalated) {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusEscalated))
	}

	escalation := &domain.Escalation{
		TicketID:       ticket.ID,
		RequesterID:    actor.ID,
		Reason:         reason,
		Status:         domain.EscalationStatusPending,
		PreviousStatus: ticket.Status,
	}
	if err := s.escalations.Create(ctx, escalation); err != nil {
		return nil, apperrors.MapError(err)
	}

	if _, err := s.ticketSvc.ApplyReviewedTransition(ctx, ticket.ID, domain.TicketStatusEscalated, &actor.ID, "escalation requested"); err != nil {
		// roll back the pending record so the ticket is never left
		// un-escalated with an open escalation attached
		_ = s.escalations.Delete(ctx, escalation.ID)
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventEscalationRequested,
		TicketID: ticket.ID,
		ActorID:  &actor.ID,
		Payload: events.EscalationPayload{
			EscalationID: escalation.ID,
			RequesterID:  escalation.RequesterID,
			Reason:       escalation.Reason,
		},
	})
	return escalation, nil
}

// Review resolves a pending escalation. Concurrent reviewers race on a
// conditional update; the loser observes AlreadyReviewed and the record
// stays exactly as the winner left it. Approval keeps the ticket
// ESCALATED; rejection restores the captured previous status.
func (s *EscalationService) Review(ctx context.Context, actor *domain.User, escalationID string, decision domain.EscalationStatus, comment string) (*domain.Escalation, error) {
	if err := authz.Authorize(actor, authz.ActionReviewEscalation, authz.Resource{}); err != nil {
		return nil, err
	}
	if decision != domain.EscalationStatusApproved && decision != domain.EscalationStatusRejected {
		return nil, apperrors.NewValidationError("decision must be APPROVED or REJECTED", map[string]any{"decision": decision})
	}

	escalation, err := s.escalations.GetByID(ctx, escalationID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if escalation.Status != domain.EscalationStatusPending {
		return nil, apperrors.NewAlreadyReviewed(escalation.ID)
	}

	var reviewComment *string
	if trimmed := strings.TrimSpace(comment); trimmed != "" {
		reviewComment = &trimmed
	}
	reviewedAt := s.now()

	won, err := s.escalations.Review(ctx, escalation.ID, decision, actor.ID, reviewComment, reviewedAt)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !won {
		return nil, apperrors.NewAlreadyReviewed(escalation.ID)
	}

	escalation.Status = decision
	escalation.ReviewerID = &actor.ID
	escalation.ReviewComment = reviewComment
	escalation.ReviewedAt = &reviewedAt

	eventType := events.EventEscalationApproved
	if decision == domain.EscalationStatusRejected {
		eventType = events.EventEscalationRejected
		// system revert: the ticket returns to where it was before the request
		if _, err := s.ticketSvc.ApplyReviewedTransition(ctx, escalation.TicketID, escalation.PreviousStatus, nil, "escalation rejected"); err != nil {
			return nil, err
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:     eventType,
		TicketID: escalation.TicketID,
		ActorID:  &actor.ID,
		Payload: events.EscalationPayload{
			EscalationID: escalation.ID,
			RequesterID:  escalation.RequesterID,
			Comment:      strings.TrimSpace(comment),
		},
	})
	return escalation, nil
}

// Get fetches one escalation.
func (s *EscalationService) Get(ctx context.Context, escalationID string) (*domain.Escalation, error) {
	escalation, err := s.escalations.GetByID(ctx, escalationID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return escalation, nil
}

// ListPending returns pending escalations for manager review.
func (s *EscalationService) ListPending(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.Escalation, error) {
	if err := authz.Authorize(actor, authz.ActionReviewEscalation, authz.Resource{}); err != nil {
		return nil, err
	}
	escalations, err := s.escalations.ListPending(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return escalations, nil
}

// ListByTicket returns a ticket's escalation history.
func (s *EscalationService) ListByTicket(ctx context.Context, ticketID string) ([]domain.Escalation, error) {
	escalations, err := s.escalations.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return escalations, nil
}

func (s *EscalationService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
