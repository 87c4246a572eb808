package repository

import (
	"context"

	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
)

// DepartmentRepository puerto del directorio de departamentos y sus funcionarios.
type DepartmentRepository interface {
	Create(ctx context.Context, d *entity.Department) error
	// GetByName devuelve nil si no existe. La comparación ignora mayúsculas.
	GetByName(ctx context.Context, name string) (*entity.Department, error)
	List(ctx context.Context, activeOnly bool) ([]*entity.Department, error)
	Update(ctx context.Context, d *entity.Department) error
	AddOfficial(ctx context.Context, o *entity.Official) error
	UpdateOfficial(ctx context.Context, o *entity.Official) error
	ListOfficials(ctx context.Context, departmentID string) ([]*entity.Official, error)
}
