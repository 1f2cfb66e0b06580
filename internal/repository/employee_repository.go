package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldops/attendance-service/internal/domain"
)

// EmployeeRepository defines persistence access for employees.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	Update(ctx context.Context, employee *domain.Employee) error
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	GetByAccount(ctx context.Context, account string) (*domain.Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, error)
	Delete(ctx context.Context, id int64) error
}

// EmployeeFilter defines query params for employee listing.
type EmployeeFilter struct {
	Keyword string
	Active  *bool
	Limit   int
	Offset  int
}

const employeeColumns = `id, name, account, password_hash, wechat_openid, is_active, created_at, updated_at`

type employeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository returns a Postgres-backed implementation.
func NewEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &employeeRepository{pool: pool}
}

func (r *employeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	const query = `
        INSERT INTO employees (name, account, password_hash, wechat_openid, is_active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		employee.Name,
		employee.Account,
		employee.PasswordHash,
		employee.WeChatOpenID,
		employee.IsActive,
	).Scan(&employee.ID, &employee.CreatedAt, &employee.UpdatedAt)
}

func (r *employeeRepository) Update(ctx context.Context, employee *domain.Employee) error {
	const query = `
        UPDATE employees
        SET name=$1, account=$2, password_hash=$3, wechat_openid=$4, is_active=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`

	return r.pool.QueryRow(ctx, query,
		employee.Name,
		employee.Account,
		employee.PasswordHash,
		employee.WeChatOpenID,
		employee.IsActive,
		employee.ID,
	).Scan(&employee.UpdatedAt)
}

func (r *employeeRepository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id=$1`
	return scanEmployee(r.pool.QueryRow(ctx, query, id))
}

func (r *employeeRepository) GetByAccount(ctx context.Context, account string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE account=$1`
	return scanEmployee(r.pool.QueryRow(ctx, query, account))
}

func (r *employeeRepository) List(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees`
	args := []any{}
	clauses := []string{}

	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		args = append(args, "%"+kw+"%")
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR account ILIKE $%d)", len(args), len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id" + limitOffset(filter.Limit, filter.Offset, 100)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *employee)
	}
	return result, rows.Err()
}

func (r *employeeRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var employee domain.Employee
	if err := row.Scan(
		&employee.ID,
		&employee.Name,
		&employee.Account,
		&employee.PasswordHash,
		&employee.WeChatOpenID,
		&employee.IsActive,
		&employee.CreatedAt,
		&employee.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &employee, nil
}

func limitOffset(limit, offset, fallback int) string {
	if limit <= 0 {
		limit = fallback
	}
	if offset < 0 {
		offset = 0
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
}
