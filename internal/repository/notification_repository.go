package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/spec-kit/civic-report-service/internal/domain"
)

// NotificationRepository persists notification records. Delivery is an
// external collaborator that reads unread rows.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	CreateBatch(ctx context.Context, notifications []domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) error
}

type notificationRepository struct {
	db DB
}

// NewNotificationRepository constructs repository.
func NewNotificationRepository(db DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (recipient_id, ticket_id, type, title, message, is_read)
        VALUES ($1,$2,$3,$4,$5,FALSE)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		notification.RecipientID,
		notification.TicketID,
		notification.Type,
		notification.Title,
		notification.Message,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []domain.Notification) error {
	for i := range notifications {
		if err := r.Create(ctx, &notifications[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	builder := sq.Select("id", "recipient_id", "ticket_id", "type", "title", "message", "is_read", "created_at").
		From("notifications").
		PlaceholderFormat(sq.Dollar).
		Where(sq.Eq{"recipient_id": recipientID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	if unreadOnly {
		builder = builder.Where(sq.Eq{"is_read": false})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var notification domain.Notification
		if err := rows.Scan(
			&notification.ID,
			&notification.RecipientID,
			&notification.TicketID,
			&notification.Type,
			&notification.Title,
			&notification.Message,
			&notification.IsRead,
			&notification.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, notification)
	}
	return result, rows.Err()
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE recipient_id=$1 AND is_read=FALSE`
	var count int64
	if err := r.db.QueryRow(ctx, query, recipientID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	const query = `UPDATE notifications SET is_read=TRUE WHERE id=$1 AND recipient_id=$2`
	_, err := r.db.Exec(ctx, query, id, recipientID)
	return err
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) error {
	const query = `UPDATE notifications SET is_read=TRUE WHERE recipient_id=$1 AND is_read=FALSE`
	_, err := r.db.Exec(ctx, query, recipientID)
	return err
}
