package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sistema-bodega/internal/application/inventory"
)

// ReportHandler consultas de solo lectura: Bincard y control de vencimientos.
type ReportHandler struct {
	bincard *inventory.BincardUseCase
	expiry  *inventory.ExpiryUseCase
	err     errorMapper
}

// NewReportHandler construye el handler.
func NewReportHandler(bincard *inventory.BincardUseCase, expiry *inventory.ExpiryUseCase, m errorMapper) *ReportHandler {
	return &ReportHandler{bincard: bincard, expiry: expiry, err: m}
}

// Bincard godoc
// @Summary      Bincard
// @Description  Historial del producto con saldo acumulado e indicadores de desfase.
// @Tags         reports
// @Produce      json
// @Security     Bearer
// @Param        barcode  path      string  true  "Código de barra"
// @Success      200      {object}  dto.BincardResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/products/{barcode}/bincard [get]
func (h *ReportHandler) Bincard(c *fiber.Ctx) error {
	card, err := h.bincard.History(c.UserContext(), c.Params("barcode"))
	if err != nil {
		return h.err.respond(c, err)
	}
	return c.JSON(toBincardResponse(card))
}

// ExpiryControl godoc
// @Summary      Control de vencimientos
// @Tags         reports
// @Produce      json
// @Security     Bearer
// @Param        estado    query     string  false  "todos|vencidos|criticos|precaucion"
// @Param        busqueda  query     string  false  "Código o descripción"
// @Success      200       {object}  dto.ExpiryControlResponse
// @Failure      400       {object}  dto.ErrorResponse
// @Router       /api/expiry-control [get]
func (h *ReportHandler) ExpiryControl(c *fiber.Ctx) error {
	report, err := h.expiry.Control(c.UserContext(), c.Query("estado", inventory.FilterAll), c.Query("busqueda"))
	if err != nil {
		return h.err.respond(c, err)
	}
	return c.JSON(toExpiryResponse(report))
}
