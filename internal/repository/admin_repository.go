package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldops/attendance-service/internal/domain"
)

// AdminRepository handles persistence for administrators.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) error
	Update(ctx context.Context, admin *domain.Admin) error
	GetByID(ctx context.Context, id int64) (*domain.Admin, error)
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
	List(ctx context.Context, filter AdminFilter) ([]domain.Admin, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int64) error
}

// AdminFilter defines query params for admin listing.
type AdminFilter struct {
	Username string
	Limit    int
	Offset   int
}

type adminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository instantiates the repository.
func NewAdminRepository(pool *pgxpool.Pool) AdminRepository {
	return &adminRepository{pool: pool}
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	const query = `
        INSERT INTO admins (username, password_hash)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query, admin.Username, admin.PasswordHash).
		Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
}

func (r *adminRepository) Update(ctx context.Context, admin *domain.Admin) error {
	const query = `
        UPDATE admins SET username=$1, password_hash=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`

	return r.pool.QueryRow(ctx, query, admin.Username, admin.PasswordHash, admin.ID).
		Scan(&admin.UpdatedAt)
}

func (r *adminRepository) GetByID(ctx context.Context, id int64) (*domain.Admin, error) {
	const query = `
        SELECT id, username, password_hash, created_at, updated_at
        FROM admins WHERE id=$1`

	return scanAdmin(r.pool.QueryRow(ctx, query, id))
}

func (r *adminRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	const query = `
        SELECT id, username, password_hash, created_at, updated_at
        FROM admins WHERE username=$1`

	return scanAdmin(r.pool.QueryRow(ctx, query, username))
}

func (r *adminRepository) List(ctx context.Context, filter AdminFilter) ([]domain.Admin, error) {
	query := `
        SELECT id, username, password_hash, created_at, updated_at
        FROM admins`
	args := []any{}
	if name := strings.TrimSpace(filter.Username); name != "" {
		args = append(args, "%"+name+"%")
		query += " WHERE username ILIKE $1"
	}
	query += " ORDER BY id" + limitOffset(filter.Limit, filter.Offset, 20)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Admin
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *admin)
	}
	return result, rows.Err()
}

func (r *adminRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n)
	return n, err
}

func (r *adminRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM admins WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAdmin(row pgx.Row) (*domain.Admin, error) {
	var admin domain.Admin
	if err := row.Scan(
		&admin.ID,
		&admin.Username,
		&admin.PasswordHash,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &admin, nil
}
