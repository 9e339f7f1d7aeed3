package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/civic-report-service/internal/domain"
)

// TeamRepository manages persistence for teams. Exactly one row carries
// is_fallback=true; the repository refuses to delete it.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	Update(ctx context.Context, team *domain.Team) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	GetFallback(ctx context.Context) (*domain.Team, error)
	List(ctx context.Context) ([]domain.Team, error)
}

type teamRepository struct {
	db DB
}

// NewTeamRepository constructs repository.
func NewTeamRepository(db DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	const query = `
        INSERT INTO teams (name, description, is_fallback, category_ids, district_ids)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		team.Name,
		team.Description,
		team.IsFallback,
		team.CategoryIDs,
		team.DistrictIDs,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
}

func (r *teamRepository) Update(ctx context.Context, team *domain.Team) error {
	const query = `
        UPDATE teams SET name=$1, description=$2, category_ids=$3, district_ids=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.db.Exec(ctx, query,
		team.Name,
		team.Description,
		team.CategoryIDs,
		team.DistrictIDs,
		team.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *teamRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM teams WHERE id=$1 AND is_fallback=FALSE`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	const query = `
        SELECT id, name, description, is_fallback, category_ids, district_ids, created_at, updated_at
        FROM teams WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *teamRepository) GetFallback(ctx context.Context) (*domain.Team, error) {
	const query = `
        SELECT id, name, description, is_fallback, category_ids, district_ids, created_at, updated_at
        FROM teams WHERE is_fallback=TRUE`
	return r.fetchSingle(ctx, query)
}

func (r *teamRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Team, error) {
	var team domain.Team
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&team.ID,
		&team.Name,
		&team.Description,
		&team.IsFallback,
		&team.CategoryIDs,
		&team.DistrictIDs,
		&team.CreatedAt,
		&team.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) List(ctx context.Context) ([]domain.Team, error) {
	const query = `
        SELECT id, name, description, is_fallback, category_ids, district_ids, created_at, updated_at
        FROM teams ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Team
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(
			&team.ID,
			&team.Name,
			&team.Description,
			&team.IsFallback,
			&team.CategoryIDs,
			&team.DistrictIDs,
			&team.CreatedAt,
			&team.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, team)
	}
	return result, rows.Err()
}
