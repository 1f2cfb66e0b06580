package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldops/attendance-service/internal/domain"
)

// CheckInRepository stores append-only check-in records.
type CheckInRepository interface {
	Create(ctx context.Context, record *domain.CheckInRecord) error
	List(ctx context.Context, filter CheckInFilter) ([]domain.CheckInRecord, error)
	CountDistinctEmployeesSince(ctx context.Context, since time.Time) (int, error)
}

// CheckInFilter narrows record listings. Zero values are ignored.
type CheckInFilter struct {
	EmployeeID int64
	PointID    int64
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

type checkInRepository struct {
	pool *pgxpool.Pool
}

// NewCheckInRepository constructs the repository.
func NewCheckInRepository(pool *pgxpool.Pool) CheckInRepository {
	return &checkInRepository{pool: pool}
}

func (r *checkInRepository) Create(ctx context.Context, record *domain.CheckInRecord) error {
	const query = `
        INSERT INTO check_in_records (employee_id, point_id, photo_key, latitude, longitude, location_name)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		record.EmployeeID,
		record.PointID,
		record.PhotoKey,
		record.Latitude,
		record.Longitude,
		record.LocationName,
	).Scan(&record.ID, &record.CreatedAt)
}

func (r *checkInRepository) List(ctx context.Context, filter CheckInFilter) ([]domain.CheckInRecord, error) {
	query := `
        SELECT id, employee_id, point_id, photo_key, latitude, longitude, location_name, created_at
        FROM check_in_records`
	args := []any{}
	clauses := []string{}

	if filter.EmployeeID > 0 {
		args = append(args, filter.EmployeeID)
		clauses = append(clauses, fmt.Sprintf("employee_id=$%d", len(args)))
	}
	if filter.PointID > 0 {
		args = append(args, filter.PointID)
		clauses = append(clauses, fmt.Sprintf("point_id=$%d", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		clauses = append(clauses, fmt.Sprintf("created_at < $%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC" + limitOffset(filter.Limit, filter.Offset, 50)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CheckInRecord
	for rows.Next() {
		var rec domain.CheckInRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.EmployeeID,
			&rec.PointID,
			&rec.PhotoKey,
			&rec.Latitude,
			&rec.Longitude,
			&rec.LocationName,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

func (r *checkInRepository) CountDistinctEmployeesSince(ctx context.Context, since time.Time) (int, error) {
	const query = `SELECT COUNT(DISTINCT employee_id) FROM check_in_records WHERE created_at >= $1`
	var n int
	err := r.pool.QueryRow(ctx, query, since).Scan(&n)
	return n, err
}
