package dto

// DepartmentRequest body para crear o modificar un departamento. Responsables asigna nombre por
// cargo (Jefatura, Jefatura Subrogante, Secretaria, Secretaria Subrogante).
type DepartmentRequest struct {
	Name      string            `json:"nombre" validate:"max=100"`
	Officials map[string]string `json:"responsables" validate:"omitempty,dive,max=100"`
}

// OfficialRequest body para agregar un funcionario.
type OfficialRequest struct {
	Name string `json:"nombre" validate:"required,max=100"`
}

// OfficialResponse persona del directorio.
type OfficialResponse struct {
	ID   string `json:"id"`
	Name string `json:"nombre"`
	Kind string `json:"cargo"`
}

// DepartmentResponse departamento con su directorio.
type DepartmentResponse struct {
	ID        string             `json:"id"`
	Name      string             `json:"nombre"`
	Active    bool               `json:"activo"`
	Officials []OfficialResponse `json:"funcionarios"`
}

// OfficialListResponse respuesta de GET /api/departments/:name/officials.
type OfficialListResponse struct {
	Department string             `json:"departamento"`
	Officials  []OfficialResponse `json:"funcionarios"`
}
