package repository

import (
	"context"

	"github.com/spec-kit/civic-report-service/internal/domain"
)

// DistrictRepository reads the district reference data.
type DistrictRepository interface {
	GetByID(ctx context.Context, id string) (*domain.District, error)
	List(ctx context.Context) ([]domain.District, error)
}

type districtRepository struct {
	db DB
}

// NewDistrictRepository constructs repository.
func NewDistrictRepository(db DB) DistrictRepository {
	return &districtRepository{db: db}
}

func (r *districtRepository) GetByID(ctx context.Context, id string) (*domain.District, error) {
	const query = `SELECT id, name, city, created_at FROM districts WHERE id=$1`
	var district domain.District
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&district.ID,
		&district.Name,
		&district.City,
		&district.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &district, nil
}

func (r *districtRepository) List(ctx context.Context) ([]domain.District, error) {
	const query = `SELECT id, name, city, created_at FROM districts ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.District
	for rows.Next() {
		var district domain.District
		if err := rows.Scan(&district.ID, &district.Name, &district.City, &district.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, district)
	}
	return result, rows.Err()
}
