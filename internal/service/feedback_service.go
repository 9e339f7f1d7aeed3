package service

import (
	"context"
	"strings"

	"github.com/spec-kit/civic-report-service/internal/authz"
	"github.com/spec-kit/civic-report-service/internal/domain"
	"github.com/spec-kit/civic-report-service/internal/repository"
	apperrors "github.com/spec-kit/civic-report-service/pkg/util"
)

// FeedbackService records the reporter's one-time rating of a resolved
// ticket.
type FeedbackService struct {
	feedback repository.FeedbackRepository
	tickets  repository.TicketRepository
}

// NewFeedbackService constructs the service.
func NewFeedbackService(feedback repository.FeedbackRepository, tickets repository.TicketRepository) *FeedbackService {
	return &FeedbackService{feedback: feedback, tickets: tickets}
}

// Submit stores feedback. Only the original reporter may rate, only a
// RESOLVED ticket qualifies, and only one rating per ticket exists.
func (s *FeedbackService) Submit(ctx context.Context, actor *domain.User, ticketID string, rating int, comment string) (*domain.Feedback, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := authz.Authorize(actor, authz.ActionSubmitFeedback, authz.TicketResource(ticket)); err != nil {
		return nil, err
	}
	if rating < domain.RatingMin || rating > domain.RatingMax {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": rating})
	}
	if ticket.Status != domain.TicketStatusResolved {
		return nil, apperrors.NewValidationError("feedback requires a resolved ticket", map[string]any{"status": ticket.Status})
	}
	exists, err := s.feedback.ExistsForTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if exists {
		return nil, apperrors.NewValidationError("ticket already has feedback", map[string]any{"ticket_id": ticket.ID})
	}

	feedback := &domain.Feedback{
		TicketID: ticket.ID,
		AuthorID: actor.ID,
		Rating:   rating,
		Comment:  strings.TrimSpace(comment),
	}
	if err := s.feedback.Create(ctx, feedback); err != nil {
		return nil, apperrors.MapError(err)
	}
	return feedback, nil
}

// GetForTicket returns the feedback attached to a ticket, if any.
func (s *FeedbackService) GetForTicket(ctx context.Context, ticketID string) (*domain.Feedback, error) {
	feedback, err := s.feedback.GetByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return feedback, nil
}
