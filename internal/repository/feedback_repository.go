package repository

import (
	"context"
	"time"

	"github.com/spec-kit/civic-report-service/internal/domain"
)

// FeedbackRepository stores the one-per-ticket rating records.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	GetByTicket(ctx context.Context, ticketID string) (*domain.Feedback, error)
	ExistsForTicket(ctx context.Context, ticketID string) (bool, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]domain.Feedback, error)
}

type feedbackRepository struct {
	db DB
}

// NewFeedbackRepository constructs repository.
func NewFeedbackRepository(db DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	const query = `
        INSERT INTO feedback (ticket_id, author_id, rating, comment)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		feedback.TicketID,
		feedback.AuthorID,
		feedback.Rating,
		feedback.Comment,
	).Scan(&feedback.ID, &feedback.CreatedAt)
}

func (r *feedbackRepository) GetByTicket(ctx context.Context, ticketID string) (*domain.Feedback, error) {
	const query = `
        SELECT id, ticket_id, author_id, rating, comment, created_at
        FROM feedback WHERE ticket_id=$1`
	var feedback domain.Feedback
	if err := r.db.QueryRow(ctx, query, ticketID).Scan(
		&feedback.ID,
		&feedback.TicketID,
		&feedback.AuthorID,
		&feedback.Rating,
		&feedback.Comment,
		&feedback.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (r *feedbackRepository) ExistsForTicket(ctx context.Context, ticketID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM feedback WHERE ticket_id=$1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, ticketID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *feedbackRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]domain.Feedback, error) {
	const query = `
        SELECT id, ticket_id, author_id, rating, comment, created_at
        FROM feedback WHERE created_at >= $1`
	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Feedback
	for rows.Next() {
		var feedback domain.Feedback
		if err := rows.Scan(
			&feedback.ID,
			&feedback.TicketID,
			&feedback.AuthorID,
			&feedback.Rating,
			&feedback.Comment,
			&feedback.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, feedback)
	}
	return result, rows.Err()
}
