package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldops/attendance-service/internal/domain"
)

// PointRepository persists check-in points and their employee assignments.
type PointRepository interface {
	Create(ctx context.Context, point *domain.CheckInPoint) error
	Update(ctx context.Context, point *domain.CheckInPoint) error
	GetByID(ctx context.Context, id int64) (*domain.CheckInPoint, error)
	List(ctx context.Context, filter PointFilter) ([]domain.CheckInPoint, error)
	ListForEmployee(ctx context.Context, employeeID int64) ([]domain.CheckInPoint, error)
	IsAssigned(ctx context.Context, pointID, employeeID int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

// PointFilter defines query params for point listing.
type PointFilter struct {
	Keyword string
	Limit   int
	Offset  int
}

type pointRepository struct {
	pool *pgxpool.Pool
}

// NewPointRepository constructs the repository.
func NewPointRepository(pool *pgxpool.Pool) PointRepository {
	return &pointRepository{pool: pool}
}

// Create inserts the point and its assignment rows in one transaction.
func (r *pointRepository) Create(ctx context.Context, point *domain.CheckInPoint) error {
	const query = `
        INSERT INTO check_in_points (title, address, latitude, longitude, radius_meters)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query,
			point.Title,
			point.Address,
			point.Latitude,
			point.Longitude,
			point.RadiusMeters,
		).Scan(&point.ID, &point.CreatedAt, &point.UpdatedAt); err != nil {
			return err
		}
		return replaceAssignments(ctx, tx, point.ID, point.EmployeeIDs)
	})
}

// Update rewrites the point and replaces its assignment set.
func (r *pointRepository) Update(ctx context.Context, point *domain.CheckInPoint) error {
	const query = `
        UPDATE check_in_points
        SET title=$1, address=$2, latitude=$3, longitude=$4, radius_meters=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query,
			point.Title,
			point.Address,
			point.Latitude,
			point.Longitude,
			point.RadiusMeters,
			point.ID,
		).Scan(&point.UpdatedAt); err != nil {
			return err
		}
		return replaceAssignments(ctx, tx, point.ID, point.EmployeeIDs)
	})
}

func (r *pointRepository) GetByID(ctx context.Context, id int64) (*domain.CheckInPoint, error) {
	const query = `
        SELECT p.id, p.title, p.address, p.latitude, p.longitude, p.radius_meters,
               COALESCE(ARRAY_AGG(pe.employee_id ORDER BY pe.employee_id) FILTER (WHERE pe.employee_id IS NOT NULL), '{}'),
               p.created_at, p.updated_at
        FROM check_in_points p
        LEFT JOIN point_employees pe ON pe.point_id = p.id
        WHERE p.id=$1
        GROUP BY p.id`

	return scanPoint(r.pool.QueryRow(ctx, query, id))
}

func (r *pointRepository) List(ctx context.Context, filter PointFilter) ([]domain.CheckInPoint, error) {
	query := `
        SELECT p.id, p.title, p.address, p.latitude, p.longitude, p.radius_meters,
               COALESCE(ARRAY_AGG(pe.employee_id ORDER BY pe.employee_id) FILTER (WHERE pe.employee_id IS NOT NULL), '{}'),
               p.created_at, p.updated_at
        FROM check_in_points p
        LEFT JOIN point_employees pe ON pe.point_id = p.id`
	args := []any{}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		args = append(args, "%"+kw+"%")
		query += " WHERE p.title ILIKE $1 OR p.address ILIKE $1"
	}
	query += " GROUP BY p.id ORDER BY p.id" + limitOffset(filter.Limit, filter.Offset, 100)

	return r.queryPoints(ctx, query, args...)
}

// ListForEmployee returns only the points the employee is assigned to.
func (r *pointRepository) ListForEmployee(ctx context.Context, employeeID int64) ([]domain.CheckInPoint, error) {
	const query = `
        SELECT p.id, p.title, p.address, p.latitude, p.longitude, p.radius_meters,
               ARRAY[$1::BIGINT], p.created_at, p.updated_at
        FROM check_in_points p
        JOIN point_employees pe ON pe.point_id = p.id
        WHERE pe.employee_id=$1
        ORDER BY p.id`

	return r.queryPoints(ctx, query, employeeID)
}

func (r *pointRepository) IsAssigned(ctx context.Context, pointID, employeeID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM point_employees WHERE point_id=$1 AND employee_id=$2)`
	var ok bool
	err := r.pool.QueryRow(ctx, query, pointID, employeeID).Scan(&ok)
	return ok, err
}

func (r *pointRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM check_in_points WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pointRepository) queryPoints(ctx context.Context, query string, args ...any) ([]domain.CheckInPoint, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CheckInPoint
	for rows.Next() {
		point, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *point)
	}
	return result, rows.Err()
}

func replaceAssignments(ctx context.Context, tx pgx.Tx, pointID int64, employeeIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM point_employees WHERE point_id=$1`, pointID); err != nil {
		return err
	}
	if len(employeeIDs) == 0 {
		return nil
	}
	// Unknown employee ids are skipped rather than failing the write.
	const insert = `
        INSERT INTO point_employees (point_id, employee_id)
        SELECT $1, e.id FROM employees e WHERE e.id = ANY($2::BIGINT[])
        ON CONFLICT DO NOTHING`
	_, err := tx.Exec(ctx, insert, pointID, employeeIDs)
	return err
}

func scanPoint(row pgx.Row) (*domain.CheckInPoint, error) {
	var point domain.CheckInPoint
	if err := row.Scan(
		&point.ID,
		&point.Title,
		&point.Address,
		&point.Latitude,
		&point.Longitude,
		&point.RadiusMeters,
		&point.EmployeeIDs,
		&point.CreatedAt,
		&point.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &point, nil
}
