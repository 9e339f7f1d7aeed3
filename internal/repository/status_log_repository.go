package repository

import (
	"context"

	"github.com/spec-kit/civic-report-service/internal/domain"
)

// StatusLogRepository stores the append-only transition audit trail.
type StatusLogRepository interface {
	Create(ctx context.Context, entry *domain.StatusLog) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.StatusLog, error)
}

type statusLogRepository struct {
	db DB
}

// NewStatusLogRepository builds repository.
func NewStatusLogRepository(db DB) StatusLogRepository {
	return &statusLogRepository{db: db}
}

func (r *statusLogRepository) Create(ctx context.Context, entry *domain.StatusLog) error {
	const query = `
        INSERT INTO status_logs (ticket_id, old_status, new_status, actor_id, comment)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		entry.TicketID,
		entry.OldStatus,
		entry.NewStatus,
		entry.ActorID,
		entry.Comment,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *statusLogRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.StatusLog, error) {
	const query = `
        SELECT id, ticket_id, old_status, new_status, actor_id, comment, created_at
        FROM status_logs WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusLog
	for rows.Next() {
		var entry domain.StatusLog
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.ActorID,
			&entry.Comment,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
