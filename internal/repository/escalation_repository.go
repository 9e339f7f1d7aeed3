package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/civic-report-service/internal/domain"
)

const escalationColumns = `id, ticket_id, requester_id, reason, status, previous_status,
               reviewer_id, review_comment, created_at, reviewed_at`

// EscalationRepository manages escalation persistence. Review applies a
// conditional write so the first reviewer wins under concurrency.
type EscalationRepository interface {
	Create(ctx context.Context, escalation *domain.Escalation) error
	GetByID(ctx context.Context, id string) (*domain.Escalation, error)
	FindPendingByTicket(ctx context.Context, ticketID string) (*domain.Escalation, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Escalation, error)
	ListPending(ctx context.Context, limit, offset int) ([]domain.Escalation, error)
	// Review sets the outcome iff the escalation is still PENDING.
	// Returns false when another reviewer already resolved it.
	Review(ctx context.Context, id string, status domain.EscalationStatus, reviewerID string, comment *string, reviewedAt time.Time) (bool, error)
	Delete(ctx context.Context, id string) error
}

type escalationRepository struct {
	db DB
}

// NewEscalationRepository constructs repository.
func NewEscalationRepository(db DB) EscalationRepository {
	return &escalationRepository{db: db}
}

func (r *escalationRepository) Create(ctx context.Context, escalation *domain.Escalation) error {
	const query = `
        INSERT INTO escalations (ticket_id, requester_id, reason, status, previous_status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		escalation.TicketID,
		escalation.RequesterID,
		escalation.Reason,
		escalation.Status,
		escalation.PreviousStatus,
	).Scan(&escalation.ID, &escalation.CreatedAt)
}

func (r *escalationRepository) GetByID(ctx context.Context, id string) (*domain.Escalation, error) {
	query := `SELECT ` + escalationColumns + ` FROM escalations WHERE id=$1`
	var escalation domain.Escalation
	if err := scanEscalation(r.db.QueryRow(ctx, query, id), &escalation); err != nil {
		return nil, err
	}
	return &escalation, nil
}

func (r *escalationRepository) FindPendingByTicket(ctx context.Context, ticketID string) (*domain.Escalation, error) {
	query := `SELECT ` + escalationColumns + ` FROM escalations WHERE ticket_id=$1 AND status=$2`
	var escalation domain.Escalation
	if err := scanEscalation(r.db.QueryRow(ctx, query, ticketID, domain.EscalationStatusPending), &escalation); err != nil {
		return nil, err
	}
	return &escalation, nil
}

func (r *escalationRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Escalation, error) {
	query := `SELECT ` + escalationColumns + ` FROM escalations WHERE ticket_id=$1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEscalations(rows)
}

func (r *escalationRepository) ListPending(ctx context.Context, limit, offset int) ([]domain.Escalation, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + escalationColumns + ` FROM escalations WHERE status=$1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, domain.EscalationStatusPending, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEscalations(rows)
}

func (r *escalationRepository) Review(ctx context.Context, id string, status domain.EscalationStatus, reviewerID string, comment *string, reviewedAt time.Time) (bool, error) {
	const query = `
        UPDATE escalations SET status=$1, reviewer_id=$2, review_comment=$3, reviewed_at=$4
        WHERE id=$5 AND status=$6`
	cmd, err := r.db.Exec(ctx, query, status, reviewerID, comment, reviewedAt, id, domain.EscalationStatusPending)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *escalationRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM escalations WHERE id=$1`, id)
	return err
}

func scanEscalation(row pgx.Row, escalation *domain.Escalation) error {
	return row.Scan(
		&escalation.ID,
		&escalation.TicketID,
		&escalation.RequesterID,
		&escalation.Reason,
		&escalation.Status,
		&escalation.PreviousStatus,
		&escalation.ReviewerID,
		&escalation.ReviewComment,
		&escalation.CreatedAt,
		&escalation.ReviewedAt,
	)
}

func scanEscalations(rows pgx.Rows) ([]domain.Escalation, error) {
	var result []domain.Escalation
	for rows.Next() {
		var escalation domain.Escalation
		if err := scanEscalation(rows, &escalation); err != nil {
			return nil, err
		}
		result = append(result, escalation)
	}
	return result, rows.Err()
}
