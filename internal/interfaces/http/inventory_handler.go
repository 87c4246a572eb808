package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sistema-bodega/internal/application/dto"
	"github.com/jhoicas/sistema-bodega/internal/application/inventory"
	"github.com/jhoicas/sistema-bodega/internal/domain"
)

// InventoryHandler entradas, salidas, lotes, reversiones y reconciliación.
type InventoryHandler struct {
	engine  *inventory.StockEngine
	bincard *inventory.BincardUseCase
	err     errorMapper
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(engine *inventory.StockEngine, bincard *inventory.BincardUseCase, m errorMapper) *InventoryHandler {
	return &InventoryHandler{engine: engine, bincard: bincard, err: m}
}

// RecordEntry godoc
// @Summary      Registrar entrada
// @Description  Suma stock. En productos con vencimiento crea siempre un lote nuevo.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        barcode  path      string            true  "Código de barra"
// @Param        body     body      dto.EntryRequest  true  "Entrada"
// @Success      201      {object}  dto.StockResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/products/{barcode}/entries [post]
func (h *InventoryHandler) RecordEntry(c *fiber.Ctx) error {
	var req dto.EntryRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	expiry, err := parseDate("fecha_vencimiento", req.ExpiryDate)
	if err != nil {
		return h.err.respond(c, err)
	}
	res, err := h.engine.RecordEntry(c.UserContext(), inventory.EntryInput{
		Barcode:    c.Params("barcode"),
		Quantity:   req.Quantity,
		ExpiryDate: expiry,
		LotNumber:  req.LotNumber,
		Note:       req.Note,
		Supplier:   req.SupplierDocs(),
		UserID:     GetUserID(c),
	})
	if err != nil {
		return h.err.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toStockResponse(res))
}

// ReduceStock godoc
// @Summary      Registrar salida (FIFO)
// @Description  Descuenta del lote que vence primero. Si no alcanza responde 409 sin modificar nada.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        barcode  path      string           true  "Código de barra"
// @Param        body     body      dto.ExitRequest  true  "Salida"
// @Success      201      {object}  dto.StockResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      409      {object}  dto.ErrorResponse
// @Router       /api/products/{barcode}/exits [post]
func (h *InventoryHandler) ReduceStock(c *fiber.Ctx) error {
	var req dto.ExitRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	res, err := h.engine.ReduceStockFIFO(c.UserContext(), inventory.ExitInput{
		Barcode:  c.Params("barcode"),
		Quantity: req.Quantity,
		Note:     req.Note,
		UserID:   GetUserID(c),
	})
	if err != nil {
		return h.err.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toStockResponse(res))
}

// Reconcile godoc
// @Summary      Reconciliar stock
// @Description  Recalcula el stock como la suma de lotes activos. Idempotente.
// @Tags         inventory
// @Produce      json
// @Security     Bearer
// @Param        barcode  path      string  true  "Código de barra"
// @Success      200      {object}  dto.ReconcileResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/products/{barcode}/reconcile [post]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	res, err := h.engine.Reconcile(c.UserContext(), c.Params("barcode"))
	if err != nil {
		return h.err.respond(c, err)
	}
	return c.JSON(dto.ReconcileResponse{
		Barcode:       res.Barcode,
		Tracked:       res.Tracked,
		PreviousStock: res.PreviousStock,
		LotSum:        res.LotSum,
		Stock:         res.Stock,
		Corrected:     res.Corrected,
	})
}

// ListLots godoc
// @Summary      Lotes de un producto
// @Tags         inventory
// @Produce      json
// @Security     Bearer
// @Param        barcode  path      string  true  "Código de barra"
// @Success      200      {object}  dto.LotListResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/products/{barcode}/lots [get]
func (h *InventoryHandler) ListLots(c *fiber.Ctx) error {
	product, lots, err := h.bincard.Lots(c.UserContext(), c.Params("barcode"))
	if err != nil {
		return h.err.respond(c, err)
	}
	return c.JSON(dto.LotListResponse{
		Barcode: product.Barcode,
		Stock:   product.Stock,
		Items:   toLotResponses(lots),
	})
}

// ChangeLotExpiry godoc
// @Summary      Corregir vencimiento de un lote
// @Description  Solo cambia la fecha; el stock no se toca.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        barcode  path      string                   true  "Código de barra"
// @Param        number   path      int                      true  "Número de lote"
// @Param        body     body      dto.ChangeExpiryRequest  true  "Fecha"
// @Success      200      {object}  dto.LotResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/products/{barcode}/lots/{number}/expiry [put]
func (h *InventoryHandler) ChangeLotExpiry(c *fiber.Ctx) error {
	number, err := strconv.Atoi(c.Params("number"))
	if err != nil || number <= 0 {
		return h.err.respond(c, domain.NewValidationError("numero_lote", "debe ser un entero positivo"))
	}
	var req dto.ChangeExpiryRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	expiry, err := parseDate("fecha_vencimiento", req.ExpiryDate)
	if err != nil {
		return h.err.respond(c, err)
	}
	lot, err := h.engine.ChangeLotExpiry(c.UserContext(), c.Params("barcode"), number, *expiry)
	if err != nil {
		return h.err.respond(c, err)
	}
	return c.JSON(toLotResponse(lot))
}

// Reverse godoc
// @Summary      Revertir movimiento
// @Description  Agrega un movimiento compensatorio. El original no se modifica.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id    path      string               true  "ID del movimiento"
// @Param        body  body      dto.ReversalRequest  true  "Motivo"
// @Success      201   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/reversal [post]
func (h *InventoryHandler) Reverse(c *fiber.Ctx) error {
	var req dto.ReversalRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	expiry, err := parseDate("fecha_vencimiento", req.ExpiryDate)
	if err != nil {
		return h.err.respond(c, err)
	}
	res, err := h.engine.CorrectEntry(c.UserContext(), inventory.CorrectionInput{
		TransactionID: c.Params("id"),
		Reason:        req.Reason,
		ExpiryDate:    expiry,
		UserID:        GetUserID(c),
	})
	if err != nil {
		return h.err.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toStockResponse(res))
}

// Audit godoc
// @Summary      Auditoría de stock
// @Description  Compara stock con suma de lotes y saldo del libro. apply=true corrige el desfase de lotes.
// @Tags         inventory
// @Produce      json
// @Security     Bearer
// @Param        apply  query     bool  false  "Corregir desfase de lotes"
// @Success      200    {object}  dto.AuditResponse
// @Router       /api/audit/stock [get]
func (h *InventoryHandler) Audit(c *fiber.Ctx) error {
	report, err := h.engine.ReconcileAll(c.UserContext(), c.QueryBool("apply", false))
	if err != nil {
		return h.err.respond(c, err)
	}
	return c.JSON(toAuditResponse(report))
}

// parseDate convierte YYYY-MM-DD; vacío devuelve nil.
func parseDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return nil, domain.NewValidationError(field, "formato YYYY-MM-DD")
	}
	return &t, nil
}
