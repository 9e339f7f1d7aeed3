package repository

import (
	"context"

	"github.com/spec-kit/civic-report-service/internal/domain"
)

// PhotoRepository stores photo metadata; binaries live in external storage.
type PhotoRepository interface {
	Create(ctx context.Context, photo *domain.TicketPhoto) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketPhoto, error)
}

type photoRepository struct {
	db DB
}

// NewPhotoRepository constructs repository.
func NewPhotoRepository(db DB) PhotoRepository {
	return &photoRepository{db: db}
}

func (r *photoRepository) Create(ctx context.Context, photo *domain.TicketPhoto) error {
	const query = `
        INSERT INTO ticket_photos (ticket_id, uploader_id, storage_key, mime_type, photo_type)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		photo.TicketID,
		photo.UploaderID,
		photo.StorageKey,
		photo.MimeType,
		photo.Type,
	).Scan(&photo.ID, &photo.CreatedAt)
}

func (r *photoRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketPhoto, error) {
	const query = `
        SELECT id, ticket_id, uploader_id, storage_key, mime_type, photo_type, created_at
        FROM ticket_photos WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketPhoto
	for rows.Next() {
		var photo domain.TicketPhoto
		if err := rows.Scan(
			&photo.ID,
			&photo.TicketID,
			&photo.UploaderID,
			&photo.StorageKey,
			&photo.MimeType,
			&photo.Type,
			&photo.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, photo)
	}
	return result, rows.Err()
}
