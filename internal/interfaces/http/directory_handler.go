package http

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sistema-bodega/internal/application/dto"
	"github.com/jhoicas/sistema-bodega/internal/application/inventory"
)

// DirectoryHandler departamentos y responsables que reciben actas.
type DirectoryHandler struct {
	uc  *inventory.DirectoryUseCase
	err errorMapper
}

// NewDirectoryHandler construye el handler.
func NewDirectoryHandler(uc *inventory.DirectoryUseCase, m errorMapper) *DirectoryHandler {
	return &DirectoryHandler{uc: uc, err: m}
}

// List godoc
// @Summary      Listar departamentos
// @Tags         departments
// @Produce      json
// @Security     Bearer
// @Param        inactivos  query     bool  false  "Incluir deshabilitados"
// @Success      200        {array}   dto.DepartmentResponse
// @Router       /api/departments [get]
func (h *DirectoryHandler) List(c *fiber.Ctx) error {
	views, err := h.uc.ListDepartments(c.UserContext(), c.QueryBool("inactivos"))
	if err != nil {
		return h.err.respond(c, err)
	}
	out := make([]dto.DepartmentResponse, 0, len(views))
	for i := range views {
		out = append(out, toDepartmentResponse(&views[i]))
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear departamento
// @Description  Crea el departamento con Jefatura, Jefatura Subrogante, Secretaria y Secretaria Subrogante.
// @Tags         departments
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        body  body      dto.DepartmentRequest  true  "Departamento"
// @Success      201   {object}  dto.DepartmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/departments [post]
func (h *DirectoryHandler) Create(c *fiber.Ctx) error {
	var req dto.DepartmentRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	view, err := h.uc.CreateDepartment(c.UserContext(), inventory.DepartmentInput{Name: req.Name, Officials: req.Officials})
	if err != nil {
		return h.err.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toDepartmentResponse(view))
}

// Update godoc
// @Summary      Modificar departamento
// @Tags         departments
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        name  path      string                 true  "Departamento"
// @Param        body  body      dto.DepartmentRequest  true  "Cambios"
// @Success      200   {object}  dto.DepartmentResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/departments/{name} [put]
func (h *DirectoryHandler) Update(c *fiber.Ctx) error {
	var req dto.DepartmentRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	view, err := h.uc.UpdateDepartment(c.UserContext(), departmentParam(c), inventory.DepartmentInput{Name: req.Name, Officials: req.Officials})
	if err != nil {
		return h.err.respond(c, err)
	}
	return c.JSON(toDepartmentResponse(view))
}

// Deactivate godoc
// @Summary      Deshabilitar departamento
// @Tags         departments
// @Security     Bearer
// @Param        name  path  string  true  "Departamento"
// @Success      204
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/departments/{name} [delete]
func (h *DirectoryHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.uc.DeactivateDepartment(c.UserContext(), departmentParam(c)); err != nil {
		return h.err.respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Officials godoc
// @Summary      Funcionarios por departamento
// @Tags         departments
// @Produce      json
// @Security     Bearer
// @Param        name  path      string  true  "Departamento"
// @Success      200   {object}  dto.OfficialListResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/departments/{name}/officials [get]
func (h *DirectoryHandler) Officials(c *fiber.Ctx) error {
	name := departmentParam(c)
	list, err := h.uc.Officials(c.UserContext(), name)
	if err != nil {
		return h.err.respond(c, err)
	}
	return c.JSON(dto.OfficialListResponse{Department: name, Officials: toOfficialResponses(list)})
}

// AddOfficial godoc
// @Summary      Agregar funcionario
// @Tags         departments
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        name  path      string               true  "Departamento"
// @Param        body  body      dto.OfficialRequest  true  "Funcionario"
// @Success      201   {object}  dto.OfficialResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/departments/{name}/officials [post]
func (h *DirectoryHandler) AddOfficial(c *fiber.Ctx) error {
	var req dto.OfficialRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	o, err := h.uc.AddOfficial(c.UserContext(), departmentParam(c), req.Name)
	if err != nil {
		return h.err.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OfficialResponse{ID: o.ID, Name: o.Name, Kind: o.Kind})
}

// departmentParam los nombres llevan espacios y tildes; fiber entrega el segmento sin decodificar.
func departmentParam(c *fiber.Ctx) string {
	raw := c.Params("name")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}
