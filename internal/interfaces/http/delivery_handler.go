package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sistema-bodega/internal/application/dto"
	"github.com/jhoicas/sistema-bodega/internal/application/inventory"
	"github.com/jhoicas/sistema-bodega/internal/domain"
)

// DeliveryHandler actas de entrega.
type DeliveryHandler struct {
	uc  *inventory.DeliveryUseCase
	err errorMapper
}

// NewDeliveryHandler construye el handler.
func NewDeliveryHandler(uc *inventory.DeliveryUseCase, m errorMapper) *DeliveryHandler {
	return &DeliveryHandler{uc: uc, err: m}
}

// Create godoc
// @Summary      Registrar acta de entrega
// @Description  Descuenta cada producto por FIFO bajo un mismo número de acta. Si un producto no alcanza se rechaza el acta completa.
// @Tags         deliveries
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        body  body      dto.CreateDeliveryRequest  true  "Acta"
// @Success      201   {object}  dto.DeliveryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/deliveries [post]
func (h *DeliveryHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateDeliveryRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	in := inventory.DeliveryInput{
		Department:        req.Department,
		Official:          req.Official,
		SubdepartmentHead: req.SubdepartmentHead,
		Responsible:       req.Responsible,
		Note:              req.Note,
		UserID:            GetUserID(c),
		Items:             make([]inventory.DeliveryItem, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, inventory.DeliveryItem{Barcode: it.Barcode, Quantity: it.Quantity})
	}
	res, err := h.uc.Register(c.UserContext(), in)
	if err != nil {
		return h.err.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toDeliveryResponse(res))
}

// GetByNumber godoc
// @Summary      Obtener acta
// @Tags         deliveries
// @Produce      json
// @Security     Bearer
// @Param        number  path      int  true  "Número de acta"
// @Success      200     {object}  dto.DeliveryResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/deliveries/{number} [get]
func (h *DeliveryHandler) GetByNumber(c *fiber.Ctx) error {
	number, err := strconv.Atoi(c.Params("number"))
	if err != nil || number <= 0 {
		return h.err.respond(c, domain.NewValidationError("numero_acta", "debe ser un entero positivo"))
	}
	res, err := h.uc.Get(c.UserContext(), number)
	if err != nil {
		return h.err.respond(c, err)
	}
	return c.JSON(toDeliveryResponse(res))
}

// List godoc
// @Summary      Listar actas
// @Description  Una fila por acta, de la más reciente a la más antigua. numero_acta filtra por prefijo.
// @Tags         deliveries
// @Produce      json
// @Security     Bearer
// @Param        numero_acta   query     string  false  "Prefijo del número"
// @Param        departamento  query     string  false  "Departamento"
// @Param        responsable   query     string  false  "Responsable (contiene)"
// @Param        limit         query     int     false  "Límite (máx 100)"
// @Param        offset        query     int     false  "Desplazamiento"
// @Success      200           {object}  dto.DeliveryListResponse
// @Failure      400           {object}  dto.ErrorResponse
// @Router       /api/deliveries [get]
func (h *DeliveryHandler) List(c *fiber.Ctx) error {
	var req dto.DeliveryListRequest
	if ok, err := bindQuery(c, &req); !ok {
		return err
	}
	req.DefaultPage()
	headers, total, err := h.uc.List(c.UserContext(), inventory.DeliveryListInput{
		Number:      req.Number,
		Department:  req.Department,
		Responsible: req.Responsible,
		Limit:       req.Limit,
		Offset:      req.Offset,
	})
	if err != nil {
		return h.err.respond(c, err)
	}
	return c.JSON(dto.DeliveryListResponse{
		Items: toDeliveryHeaderResponses(headers),
		Page:  dto.PageResponse{Limit: req.Limit, Offset: req.Offset, Total: total},
	})
}
