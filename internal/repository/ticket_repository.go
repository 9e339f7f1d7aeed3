package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/civic-report-service/internal/domain"
	"github.com/spec-kit/civic-report-service/internal/geo"
)

const ticketColumns = `id, title, description, status, category_id, latitude, longitude, address,
               district_id, city, reporter_id, team_id, resolved_at,
               photo_count, comment_count, follower_count, created_at, updated_at`

// TicketFilter captures listing parameters.
type TicketFilter struct {
	ReporterID  *string
	TeamID      *string
	CategoryID  *string
	DistrictID  *string
	Statuses    []domain.TicketStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]domain.Ticket, error)
	ListOpenInBox(ctx context.Context, box geo.BoundingBox, categoryID *string) ([]domain.Ticket, error)
	ReassignTeam(ctx context.Context, fromTeamID, toTeamID string) (int64, error)
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
	AddFollower(ctx context.Context, ticketID, userID string) error
	RemoveFollower(ctx context.Context, ticketID, userID string) error
	ListFollowerIDs(ctx context.Context, ticketID string) ([]string, error)
	IsFollower(ctx context.Context, ticketID, userID string) (bool, error)
	IncrementCommentCount(ctx context.Context, ticketID string) error
	IncrementPhotoCount(ctx context.Context, ticketID string) error
}

type ticketRepository struct {
	db DB
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, category_id, latitude, longitude, address,
                             district_id, city, reporter_id, team_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.CategoryID,
		ticket.Location.Latitude,
		ticket.Location.Longitude,
		ticket.Location.Address,
		ticket.Location.DistrictID,
		ticket.Location.City,
		ticket.ReporterID,
		ticket.TeamID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, category_id=$4, team_id=$5,
            resolved_at=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.db.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.CategoryID,
		ticket.TeamID,
		ticket.ResolvedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := scanTicket(r.db.QueryRow(ctx, query, id), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	builder := sq.Select(ticketColumns).
		From("tickets").
		PlaceholderFormat(sq.Dollar).
		OrderBy("created_at DESC")

	if filter.ReporterID != nil {
		builder = builder.Where(sq.Eq{"reporter_id": *filter.ReporterID})
	}
	if filter.TeamID != nil {
		builder = builder.Where(sq.Eq{"team_id": *filter.TeamID})
	}
	if filter.CategoryID != nil {
		builder = builder.Where(sq.Eq{"category_id": *filter.CategoryID})
	}
	if filter.DistrictID != nil {
		builder = builder.Where(sq.Eq{"district_id": *filter.DistrictID})
	}
	if len(filter.Statuses) > 0 {
		builder = builder.Where(sq.Eq{"status": filter.Statuses})
	}
	if filter.CreatedFrom != nil {
		builder = builder.Where(sq.GtOrEq{"created_at": *filter.CreatedFrom})
	}
	if filter.CreatedTo != nil {
		builder = builder.Where(sq.LtOrEq{"created_at": *filter.CreatedTo})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder = builder.Limit(uint64(limit)).Offset(uint64(offset))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE created_at >= $1`
	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListOpenInBox(ctx context.Context, box geo.BoundingBox, categoryID *string) ([]domain.Ticket, error) {
	builder := sq.Select(ticketColumns).
		From("tickets").
		PlaceholderFormat(sq.Dollar).
		Where(sq.NotEq{"status": domain.TicketStatusClosed}).
		Where(sq.GtOrEq{"latitude": box.MinLat}).
		Where(sq.LtOrEq{"latitude": box.MaxLat}).
		Where(sq.GtOrEq{"longitude": box.MinLon}).
		Where(sq.LtOrEq{"longitude": box.MaxLon})
	if categoryID != nil {
		builder = builder.Where(sq.Eq{"category_id": *categoryID})
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
	return scanTickets(rows)
}

func (r *ticketRepository) ReassignTeam(ctx context.Context, fromTeamID, toTeamID string) (int64, error) {
	const query = `UPDATE tickets SET team_id=$1, updated_at=NOW() WHERE team_id=$2`
	cmd, err := r.db.Exec(ctx, query, toTeamID, fromTeamID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *ticketRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM tickets WHERE category_id=$1`
	var count int64
	if err := r.db.QueryRow(ctx, query, categoryID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ticketRepository) AddFollower(ctx context.Context, ticketID, userID string) error {
	const insert = `INSERT INTO ticket_followers (ticket_id, user_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`
	cmd, err := r.db.Exec(ctx, insert, ticketID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return nil
	}
	const bump = `UPDATE tickets SET follower_count=follower_count+1 WHERE id=$1`
	_, err = r.db.Exec(ctx, bump, ticketID)
	return err
}

func (r *ticketRepository) RemoveFollower(ctx context.Context, ticketID, userID string) error {
	const remove = `DELETE FROM ticket_followers WHERE ticket_id=$1 AND user_id=$2`
	cmd, err := r.db.Exec(ctx, remove, ticketID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return nil
	}
	const drop = `UPDATE tickets SET follower_count=GREATEST(follower_count-1, 0) WHERE id=$1`
	_, err = r.db.Exec(ctx, drop, ticketID)
	return err
}

func (r *ticketRepository) ListFollowerIDs(ctx context.Context, ticketID string) ([]string, error) {
	const query = `SELECT user_id FROM ticket_followers WHERE ticket_id=$1`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ticketRepository) IsFollower(ctx context.Context, ticketID, userID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM ticket_followers WHERE ticket_id=$1 AND user_id=$2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, ticketID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *ticketRepository) IncrementCommentCount(ctx context.Context, ticketID string) error {
	const query = `UPDATE tickets SET comment_count=comment_count+1 WHERE id=$1`
	_, err := r.db.Exec(ctx, query, ticketID)
	return err
}

func (r *ticketRepository) IncrementPhotoCount(ctx context.Context, ticketID string) error {
	const query = `UPDATE tickets SET photo_count=photo_count+1 WHERE id=$1`
	_, err := r.db.Exec(ctx, query, ticketID)
	return err
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.CategoryID,
		&ticket.Location.Latitude,
		&ticket.Location.Longitude,
		&ticket.Location.Address,
		&ticket.Location.DistrictID,
		&ticket.Location.City,
		&ticket.ReporterID,
		&ticket.TeamID,
		&ticket.ResolvedAt,
		&ticket.PhotoCount,
		&ticket.CommentCount,
		&ticket.FollowerCount,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
