package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sistema-bodega/internal/application/dto"
	"github.com/jhoicas/sistema-bodega/internal/application/usecase"
)

// ProductHandler maneja las peticiones HTTP del catálogo.
type ProductHandler struct {
	uc  *usecase.ProductUseCase
	err errorMapper
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase, m errorMapper) *ProductHandler {
	return &ProductHandler{uc: uc, err: m}
}

// Create godoc
// @Summary      Crear producto
// @Description  Crea un producto con stock 0. Si trae stock_inicial se registra como entrada del libro.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        body  body      dto.CreateProductRequest  true  "Producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateProductRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), req)
	if err != nil {
		return h.err.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByBarcode godoc
// @Summary      Obtener producto
// @Tags         products
// @Produce      json
// @Security     Bearer
// @Param        barcode  path      string  true  "Código de barra"
// @Success      200      {object}  dto.ProductResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/products/{barcode} [get]
func (h *ProductHandler) GetByBarcode(c *fiber.Ctx) error {
	out, err := h.uc.GetByBarcode(c.UserContext(), c.Params("barcode"))
	if err != nil {
		return h.err.respond(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar producto
// @Description  Descripción, categoría o control de vencimiento. El stock no es editable.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        barcode  path      string                    true  "Código de barra"
// @Param        body     body      dto.UpdateProductRequest  true  "Campos"
// @Success      200      {object}  dto.ProductResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/products/{barcode} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateProductRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("barcode"), req)
	if err != nil {
		return h.err.respond(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Produce      json
// @Security     Bearer
// @Param        busqueda   query     string  false  "Texto (sin distinguir tildes)"
// @Param        categoria  query     string  false  "Categoría"
// @Param        con_stock  query     bool    false  "Solo con stock"
// @Param        limit      query     int     false  "Límite (máx 100)"
// @Param        offset     query     int     false  "Desplazamiento"
// @Success      200        {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var req dto.ProductListRequest
	if ok, err := bindQuery(c, &req); !ok {
		return err
	}
	out, err := h.uc.List(c.UserContext(), req)
	if err != nil {
		return h.err.respond(c, err)
	}
	return c.JSON(out)
}
