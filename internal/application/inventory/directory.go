package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/sistema-bodega/internal/domain"
	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
	"github.com/jhoicas/sistema-bodega/pkg/logger"
)

// DepartmentInput alta o modificación de un departamento. Officials asigna nombre por cargo; los
// cargos por defecto que falten toman un nombre genérico ("Jefatura <depto>", "Secretaria <depto>(s)").
type DepartmentInput struct {
	Name      string
	Officials map[string]string
}

// DepartmentView departamento con su directorio.
type DepartmentView struct {
	Department *entity.Department
	Officials  []*entity.Official
}

// DirectoryUseCase mantiene los departamentos y sus responsables, contra los que se validan las actas.
type DirectoryUseCase struct {
	txRunner TxRunner
	repos    Repos
	log      *logger.Logger
	now      func() time.Time
}

// NewDirectoryUseCase construye el caso de uso.
func NewDirectoryUseCase(txRunner TxRunner, repos Repos, log *logger.Logger) *DirectoryUseCase {
	return &DirectoryUseCase{txRunner: txRunner, repos: repos, log: log.Component("directory"), now: time.Now}
}

// CreateDepartment crea el departamento con sus cuatro responsables por defecto.
func (uc *DirectoryUseCase) CreateDepartment(ctx context.Context, in DepartmentInput) (*DepartmentView, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("nombre", "requerido")
	}
	if err := validateOfficials(in.Officials); err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	view := &DepartmentView{Department: &entity.Department{
		ID:        uuid.New().String(),
		Name:      name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}}
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		existing, err := r.Departments.GetByName(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		if err := r.Departments.Create(ctx, view.Department); err != nil {
			return err
		}
		for _, kind := range entity.DefaultKinds {
			o := &entity.Official{
				ID:           uuid.New().String(),
				DepartmentID: view.Department.ID,
				Name:         officialName(in.Officials, kind, name),
				Kind:         kind,
				CreatedAt:    now,
			}
			if err := r.Departments.AddOfficial(ctx, o); err != nil {
				return err
			}
			view.Officials = append(view.Officials, o)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("department", name).Msg("departamento creado")
	return view, nil
}

// UpdateDepartment renombra el departamento y reasigna sus responsables. Un cargo sin nombre vuelve
// al nombre genérico del departamento.
func (uc *DirectoryUseCase) UpdateDepartment(ctx context.Context, current string, in DepartmentInput) (*DepartmentView, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = strings.TrimSpace(current)
	}
	if err := validateOfficials(in.Officials); err != nil {
		return nil, err
	}
	var view *DepartmentView
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		d, err := activeDepartment(ctx, r, current)
		if err != nil {
			return err
		}
		if !strings.EqualFold(name, d.Name) {
			other, err := r.Departments.GetByName(ctx, name)
			if err != nil {
				return err
			}
			if other != nil && other.ID != d.ID {
				return domain.ErrDuplicate
			}
		}
		d.Name = name
		d.UpdatedAt = uc.now().UTC()
		if err := r.Departments.Update(ctx, d); err != nil {
			return err
		}
		officials, err := r.Departments.ListOfficials(ctx, d.ID)
		if err != nil {
			return err
		}
		for _, o := range officials {
			if o.Kind == entity.KindFuncionario {
				continue
			}
			o.Name = officialName(in.Officials, o.Kind, name)
			if err := r.Departments.UpdateOfficial(ctx, o); err != nil {
				return err
			}
		}
		view = &DepartmentView{Department: d, Officials: officials}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// DeactivateDepartment deshabilita el departamento. Las actas antiguas lo conservan.
func (uc *DirectoryUseCase) DeactivateDepartment(ctx context.Context, name string) error {
	return uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		d, err := activeDepartment(ctx, r, name)
		if err != nil {
			return err
		}
		d.Active = false
		d.UpdatedAt = uc.now().UTC()
		return r.Departments.Update(ctx, d)
	})
}

// AddOfficial agrega un funcionario al directorio del departamento.
func (uc *DirectoryUseCase) AddOfficial(ctx context.Context, department, name string) (*entity.Official, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("nombre", "requerido")
	}
	var out *entity.Official
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		d, err := activeDepartment(ctx, r, department)
		if err != nil {
			return err
		}
		officials, err := r.Departments.ListOfficials(ctx, d.ID)
		if err != nil {
			return err
		}
		if findOfficial(officials, name) != nil {
			return domain.ErrDuplicate
		}
		out = &entity.Official{
			ID:           uuid.New().String(),
			DepartmentID: d.ID,
			Name:         name,
			Kind:         entity.KindFuncionario,
			CreatedAt:    uc.now().UTC(),
		}
		return r.Departments.AddOfficial(ctx, out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListDepartments lista los departamentos con su directorio, por nombre.
func (uc *DirectoryUseCase) ListDepartments(ctx context.Context, includeInactive bool) ([]DepartmentView, error) {
	deps, err := uc.repos.Departments.List(ctx, !includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]DepartmentView, 0, len(deps))
	for _, d := range deps {
		officials, err := uc.repos.Departments.ListOfficials(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, DepartmentView{Department: d, Officials: officials})
	}
	return out, nil
}

// Officials devuelve el directorio de un departamento (responsables y funcionarios).
func (uc *DirectoryUseCase) Officials(ctx context.Context, department string) ([]*entity.Official, error) {
	if strings.TrimSpace(department) == "" {
		return nil, domain.NewValidationError("departamento", "requerido")
	}
	d, err := uc.repos.Departments.GetByName(ctx, strings.TrimSpace(department))
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	return uc.repos.Departments.ListOfficials(ctx, d.ID)
}

func activeDepartment(ctx context.Context, r Repos, name string) (*entity.Department, error) {
	d, err := r.Departments.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if d == nil || !d.Active {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

func validateOfficials(m map[string]string) error {
	for kind := range m {
		if !entity.ValidKind(kind) || kind == entity.KindFuncionario {
			return domain.NewValidationError("responsables", fmt.Sprintf("cargo desconocido %q", kind))
		}
	}
	return nil
}

func officialName(m map[string]string, kind, department string) string {
	if n := strings.TrimSpace(m[kind]); n != "" {
		return n
	}
	switch kind {
	case entity.KindJefatura:
		return "Jefatura " + department
	case entity.KindJefaturaSubrogante:
		return "Jefatura " + department + "(s)"
	case entity.KindSecretaria:
		return "Secretaria " + department
	default:
		return "Secretaria " + department + "(s)"
	}
}

func findOfficial(list []*entity.Official, name string) *entity.Official {
	name = strings.TrimSpace(name)
	for _, o := range list {
		if strings.EqualFold(o.Name, name) {
			return o
		}
	}
	return nil
}

func findKind(list []*entity.Official, kind string) *entity.Official {
	for _, o := range list {
		if o.Kind == kind {
			return o
		}
	}
	return nil
}
