package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/sistema-bodega/internal/domain"
	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
	"github.com/jhoicas/sistema-bodega/internal/domain/repository"
)

var _ repository.DepartmentRepository = (*DepartmentRepo)(nil)

const departmentColumns = `id, name, active, created_at, updated_at`

// DepartmentRepo directorio de departamentos sobre PostgreSQL.
type DepartmentRepo struct {
	q Querier
}

// NewDepartmentRepository construye el adaptador. Acepta pool o tx (Querier).
func NewDepartmentRepository(q Querier) *DepartmentRepo {
	return &DepartmentRepo{q: q}
}

func (r *DepartmentRepo) Create(ctx context.Context, d *entity.Department) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO departments (id, name, active, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.Name, d.Active, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert department: %w", err)
	}
	return nil
}

func (r *DepartmentRepo) GetByName(ctx context.Context, name string) (*entity.Department, error) {
	var d entity.Department
	err := r.q.QueryRow(ctx, `SELECT `+departmentColumns+` FROM departments WHERE lower(name) = lower($1)`, name).
		Scan(&d.ID, &d.Name, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get department: %w", err)
	}
	return &d, nil
}

func (r *DepartmentRepo) List(ctx context.Context, activeOnly bool) ([]*entity.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments`
	if activeOnly {
		query += ` WHERE active`
	}
	rows, err := r.q.Query(ctx, query+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	var list []*entity.Department
	for rows.Next() {
		var d entity.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Active, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

func (r *DepartmentRepo) Update(ctx context.Context, d *entity.Department) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE departments SET name = $2, active = $3, updated_at = $4 WHERE id = $1`,
		d.ID, d.Name, d.Active, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DepartmentRepo) AddOfficial(ctx context.Context, o *entity.Official) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO officials (id, department_id, name, kind, created_at) VALUES ($1, $2, $3, $4, $5)`,
		o.ID, o.DepartmentID, o.Name, o.Kind, o.CreatedAt,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.NewValidationError("cargo", "cargo desconocido")
		}
		return fmt.Errorf("insert official: %w", err)
	}
	return nil
}

func (r *DepartmentRepo) UpdateOfficial(ctx context.Context, o *entity.Official) error {
	tag, err := r.q.Exec(ctx, `UPDATE officials SET name = $2, kind = $3 WHERE id = $1`, o.ID, o.Name, o.Kind)
	if err != nil {
		return fmt.Errorf("update official: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListOfficials devuelve el directorio en orden de alta: primero los cargos por defecto.
func (r *DepartmentRepo) ListOfficials(ctx context.Context, departmentID string) ([]*entity.Official, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, department_id, name, kind, created_at FROM officials WHERE department_id = $1 ORDER BY created_at, id`,
		departmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list officials: %w", err)
	}
	defer rows.Close()

	var list []*entity.Official
	for rows.Next() {
		var o entity.Official
		if err := rows.Scan(&o.ID, &o.DepartmentID, &o.Name, &o.Kind, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan official: %w", err)
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}
