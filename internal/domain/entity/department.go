package entity

import "time"

// Cargos del directorio de un departamento.
const (
	KindJefatura             = "Jefatura"
	KindJefaturaSubrogante   = "Jefatura Subrogante"
	KindSecretaria           = "Secretaria"
	KindSecretariaSubrogante = "Secretaria Subrogante"
	KindFuncionario          = "Funcionario"
)

// DefaultKinds cargos que todo departamento tiene desde su creación.
var DefaultKinds = []string{KindJefatura, KindJefaturaSubrogante, KindSecretaria, KindSecretariaSubrogante}

// ValidKind indica si k es un cargo conocido.
func ValidKind(k string) bool {
	switch k {
	case KindJefatura, KindJefaturaSubrogante, KindSecretaria, KindSecretariaSubrogante, KindFuncionario:
		return true
	}
	return false
}

// Department departamento que recibe actas de entrega. Un departamento inactivo no recibe actas
// nuevas pero sigue apareciendo en las antiguas.
type Department struct {
	ID        string
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Official persona del directorio de un departamento.
type Official struct {
	ID           string
	DepartmentID string
	Name         string
	Kind         string
	CreatedAt    time.Time
}
