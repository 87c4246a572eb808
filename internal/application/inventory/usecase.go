package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/sistema-bodega/internal/domain"
	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
	domaininv "github.com/jhoicas/sistema-bodega/internal/domain/inventory"
	"github.com/jhoicas/sistema-bodega/pkg/logger"
)

// StockEngine es el único componente que escribe Product.Stock, los lotes y el libro de movimientos.
// Cada operación corre en una transacción con la fila del producto bloqueada (SELECT FOR UPDATE),
// así dos salidas concurrentes del mismo producto se serializan.
type StockEngine struct {
	txRunner TxRunner
	repos    Repos
	log      *logger.Logger
	rec      Recorder
	pub      EventPublisher
	now      func() time.Time
}

// Option configura el motor.
type Option func(*StockEngine)

// WithRecorder registra métricas del motor.
func WithRecorder(r Recorder) Option {
	return func(e *StockEngine) { e.rec = r }
}

// WithPublisher publica eventos de stock tras cada commit.
func WithPublisher(p EventPublisher) Option {
	return func(e *StockEngine) { e.pub = p }
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(e *StockEngine) { e.now = now }
}

// NewStockEngine construye el motor. repos se usa solo para lecturas fuera de transacción.
func NewStockEngine(txRunner TxRunner, repos Repos, log *logger.Logger, opts ...Option) *StockEngine {
	e := &StockEngine{
		txRunner: txRunner,
		repos:    repos,
		log:      log.Component("stock-engine"),
		rec:      nopRecorder{},
		pub:      nopPublisher{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EntryInput entrada de stock. ExpiryDate es obligatoria si el producto controla vencimiento;
// LotNumber es opcional (por defecto max + 1).
type EntryInput struct {
	Barcode    string
	Quantity   int
	ExpiryDate *time.Time
	LotNumber  *int
	Note       string
	Supplier   entity.SupplierDocs
	UserID     string
}

// ExitInput salida de stock por FIFO.
type ExitInput struct {
	Barcode  string
	Quantity int
	Note     string
	UserID   string
}

// StockResult resultado de una operación: el stock autoritativo después del commit.
type StockResult struct {
	ProductID     string
	Barcode       string
	PreviousStock int
	Stock         int
	TransactionID string
	Lot           *entity.Lot      // lote creado por una entrada
	Draws         []domaininv.Draw // descuentos por lote de una salida
	Corrected     bool             // se corrigió un desfase stock/lotes durante la operación
}

// RecordEntry registra una entrada: crea un lote nuevo (productos con vencimiento), suma al stock
// y agrega un movimiento "entrada" al libro.
func (e *StockEngine) RecordEntry(ctx context.Context, in EntryInput) (*StockResult, error) {
	if err := validateEntry(in); err != nil {
		return nil, err
	}
	var res *StockResult
	err := e.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		product, err := lockProduct(ctx, r, in.Barcode)
		if err != nil {
			return err
		}
		res, err = e.applyEntry(ctx, r, product, in, nil)
		return err
	})
	if err != nil {
		e.rejected(err)
		return nil, err
	}
	e.committed(ctx, res, entity.DirectionEntrada, in.Quantity)
	return res, nil
}

// RecordEntryTx aplica una entrada dentro de una transacción abierta por el llamador, sobre un
// producto ya bloqueado o recién insertado en esa misma transacción. Después del commit el llamador
// debe invocar EntryCommitted con el resultado.
func (e *StockEngine) RecordEntryTx(ctx context.Context, r Repos, product *entity.Product, in EntryInput) (*StockResult, error) {
	if err := validateEntry(in); err != nil {
		return nil, err
	}
	if in.Barcode != product.Barcode {
		return nil, domain.NewValidationError("codigo_barra", "no corresponde al producto")
	}
	return e.applyEntry(ctx, r, product, in, nil)
}

// EntryCommitted registra métricas y publica el evento de una entrada confirmada por RecordEntryTx.
// Con err distinto de nil solo cuenta el rechazo.
func (e *StockEngine) EntryCommitted(ctx context.Context, res *StockResult, quantity int, err error) {
	if err != nil {
		e.rejected(err)
		return
	}
	if res != nil {
		e.committed(ctx, res, entity.DirectionEntrada, quantity)
	}
}

// ReduceStockFIFO registra una salida descontando primero del lote que vence antes (a igual fecha,
// el de menor número). Todo o nada: si no alcanza el stock no se modifica nada.
func (e *StockEngine) ReduceStockFIFO(ctx context.Context, in ExitInput) (*StockResult, error) {
	if in.Barcode == "" {
		return nil, domain.NewValidationError("codigo_barra", "requerido")
	}
	if in.Quantity <= 0 {
		return nil, domain.NewValidationError("cantidad", "debe ser mayor a cero")
	}
	var res *StockResult
	err := e.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		product, err := lockProduct(ctx, r, in.Barcode)
		if err != nil {
			return err
		}
		res, err = e.applyExit(ctx, r, product, exitSpec{
			quantity: in.Quantity,
			note:     in.Note,
			userID:   in.UserID,
		})
		return err
	})
	if err != nil {
		e.rejected(err)
		return nil, err
	}
	e.committed(ctx, res, entity.DirectionSalida, in.Quantity)
	return res, nil
}

// ReconcileResult resultado de Reconcile.
type ReconcileResult struct {
	ProductID     string
	Barcode       string
	Tracked       bool
	PreviousStock int
	LotSum        int
	Stock         int
	Corrected     bool
}

// Reconcile recalcula el stock de un producto con vencimiento como la suma de sus lotes activos y
// lo guarda solo si difiere. Es idempotente y nunca borra lotes agotados. En productos sin
// vencimiento el stock es autoritativo y no se toca.
func (e *StockEngine) Reconcile(ctx context.Context, barcode string) (*ReconcileResult, error) {
	if barcode == "" {
		return nil, domain.NewValidationError("codigo_barra", "requerido")
	}
	var res *ReconcileResult
	err := e.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		product, err := lockProduct(ctx, r, barcode)
		if err != nil {
			return err
		}
		res, err = reconcileInTx(ctx, r, product)
		return err
	})
	if err != nil {
		return nil, err
	}
	if res.Corrected {
		e.drift(res.Barcode, res.PreviousStock, res.LotSum)
		e.publish(ctx, StockEvent{
			Type:          EventStockReconciled,
			ProductID:     res.ProductID,
			Barcode:       res.Barcode,
			PreviousStock: res.PreviousStock,
			Stock:         res.Stock,
			At:            e.now().UTC(),
		})
	}
	return res, nil
}

func reconcileInTx(ctx context.Context, r Repos, product *entity.Product) (*ReconcileResult, error) {
	res := &ReconcileResult{
		ProductID:     product.ID,
		Barcode:       product.Barcode,
		Tracked:       product.TracksExpiry,
		PreviousStock: product.Stock,
		LotSum:        product.Stock,
		Stock:         product.Stock,
	}
	if !product.TracksExpiry {
		return res, nil
	}
	lots, err := r.Lots.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	res.LotSum = domaininv.ActiveStock(lots)
	if res.LotSum == product.Stock {
		return res, nil
	}
	if err := r.Products.UpdateStock(ctx, product.ID, res.LotSum); err != nil {
		return nil, err
	}
	product.Stock = res.LotSum
	res.Stock = res.LotSum
	res.Corrected = true
	return res, nil
}

func validateEntry(in EntryInput) error {
	if in.Barcode == "" {
		return domain.NewValidationError("codigo_barra", "requerido")
	}
	if in.Quantity <= 0 {
		return domain.NewValidationError("cantidad", "debe ser mayor a cero")
	}
	if in.LotNumber != nil && *in.LotNumber <= 0 {
		return domain.NewValidationError("numero_lote", "debe ser mayor a cero")
	}
	return validateSupplier(in.Supplier)
}

// largos máximos de los documentos del proveedor
const (
	maxRUTLen = 12
	maxDocLen = 50
)

func validateSupplier(s entity.SupplierDocs) error {
	if len(s.RUT) > maxRUTLen {
		return domain.NewValidationError("rut_proveedor", fmt.Sprintf("máximo %d caracteres", maxRUTLen))
	}
	docs := []struct{ field, value string }{
		{"guia_despacho", s.DispatchGuide},
		{"numero_factura", s.Invoice},
		{"orden_compra", s.PurchaseOrder},
	}
	for _, d := range docs {
		if len(d.value) > maxDocLen {
			return domain.NewValidationError(d.field, fmt.Sprintf("máximo %d caracteres", maxDocLen))
		}
	}
	return nil
}

func lockProduct(ctx context.Context, r Repos, barcode string) (*entity.Product, error) {
	product, err := r.Products.GetByBarcodeForUpdate(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// trackedLots carga los lotes de un producto con vencimiento. Si el stock guardado no coincide
// con la suma de lotes, lo corrige dentro de la misma transacción antes de operar.
func (e *StockEngine) trackedLots(ctx context.Context, r Repos, product *entity.Product) ([]*entity.Lot, bool, error) {
	lots, err := r.Lots.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, false, err
	}
	sum := domaininv.ActiveStock(lots)
	if sum == product.Stock {
		return lots, false, nil
	}
	e.drift(product.Barcode, product.Stock, sum)
	if err := r.Products.UpdateStock(ctx, product.ID, sum); err != nil {
		return nil, false, err
	}
	product.Stock = sum
	return lots, true, nil
}

// applyEntry aplica una entrada sobre un producto ya bloqueado.
func (e *StockEngine) applyEntry(ctx context.Context, r Repos, product *entity.Product, in EntryInput, reverses *string) (*StockResult, error) {
	now := e.now().UTC()
	res := &StockResult{ProductID: product.ID, Barcode: product.Barcode, PreviousStock: product.Stock}

	var lotID *string
	if product.TracksExpiry {
		if in.ExpiryDate == nil {
			return nil, domain.NewValidationError("fecha_vencimiento", "requerida para productos con vencimiento")
		}
		lots, corrected, err := e.trackedLots(ctx, r, product)
		if err != nil {
			return nil, err
		}
		res.Corrected = corrected

		number := domaininv.NextLotNumber(lots)
		if in.LotNumber != nil {
			for _, l := range lots {
				if l.Number == *in.LotNumber {
					return nil, domain.NewValidationError("numero_lote",
						fmt.Sprintf("el lote #%d ya existe para %s", l.Number, product.Barcode))
				}
			}
			number = *in.LotNumber
		}
		lot := &entity.Lot{
			ID:         uuid.New().String(),
			ProductID:  product.ID,
			Number:     number,
			ExpiryDate: dateOnly(*in.ExpiryDate),
			Stock:      in.Quantity,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := r.Lots.Create(ctx, lot); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return nil, domain.NewValidationError("numero_lote",
					fmt.Sprintf("el lote #%d ya existe para %s", number, product.Barcode))
			}
			return nil, err
		}
		res.Lot = lot
		lotID = &lot.ID
	} else if in.ExpiryDate != nil || in.LotNumber != nil {
		return nil, domain.NewValidationError("fecha_vencimiento", "el producto no controla vencimiento")
	}

	newStock := product.Stock + in.Quantity
	if err := r.Products.UpdateStock(ctx, product.ID, newStock); err != nil {
		return nil, err
	}
	product.Stock = newStock

	mov := &entity.Transaction{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		Direction: entity.DirectionEntrada,
		Quantity:  in.Quantity,
		Note:      in.Note,
		LotID:     lotID,
		Reverses:  reverses,
		Supplier:  in.Supplier,
		CreatedBy: in.UserID,
		CreatedAt: now,
	}
	if err := r.Transactions.Create(ctx, mov); err != nil {
		return nil, err
	}
	res.Stock = newStock
	res.TransactionID = mov.ID
	return res, nil
}

type exitSpec struct {
	quantity   int
	note       string
	userID     string
	deliveryID *string
	reverses   *string
}

// applyExit aplica una salida FIFO sobre un producto ya bloqueado.
func (e *StockEngine) applyExit(ctx context.Context, r Repos, product *entity.Product, req exitSpec) (*StockResult, error) {
	res := &StockResult{ProductID: product.ID, Barcode: product.Barcode, PreviousStock: product.Stock}

	if product.TracksExpiry {
		lots, corrected, err := e.trackedLots(ctx, r, product)
		if err != nil {
			return nil, err
		}
		res.Corrected = corrected

		draws, err := domaininv.PlanFIFO(lots, req.quantity)
		if err != nil {
			var insufficient *domain.InsufficientStockError
			if errors.As(err, &insufficient) {
				insufficient.Barcode = product.Barcode
			}
			return nil, err
		}
		for _, d := range draws {
			if err := r.Lots.UpdateStock(ctx, d.LotID, d.Remaining); err != nil {
				return nil, err
			}
		}
		res.Draws = draws
	} else if product.Stock < req.quantity {
		return nil, &domain.InsufficientStockError{
			Barcode:   product.Barcode,
			Available: product.Stock,
			Requested: req.quantity,
		}
	}

	newStock := product.Stock - req.quantity
	if err := r.Products.UpdateStock(ctx, product.ID, newStock); err != nil {
		return nil, err
	}
	product.Stock = newStock

	mov := &entity.Transaction{
		ID:         uuid.New().String(),
		ProductID:  product.ID,
		Direction:  entity.DirectionSalida,
		Quantity:   req.quantity,
		Note:       req.note,
		DeliveryID: req.deliveryID,
		Reverses:   req.reverses,
		CreatedBy:  req.userID,
		CreatedAt:  e.now().UTC(),
	}
	if err := r.Transactions.Create(ctx, mov); err != nil {
		return nil, err
	}
	res.Stock = newStock
	res.TransactionID = mov.ID
	return res, nil
}

func (e *StockEngine) drift(barcode string, stored, lotSum int) {
	e.log.Warn().
		Str("barcode", barcode).
		Int("stock", stored).
		Int("lot_sum", lotSum).
		Msg("desfase entre stock y lotes, se corrige con la suma de lotes")
	e.rec.ObserveCorrection("lot_sum")
}

func (e *StockEngine) rejected(err error) {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		e.rec.ObserveRejection("insufficient_stock")
	case errors.Is(err, domain.ErrInvalidInput):
		e.rec.ObserveRejection("validation")
	case errors.Is(err, domain.ErrNotFound):
		e.rec.ObserveRejection("not_found")
	case errors.Is(err, domain.ErrAlreadyReversed):
		e.rec.ObserveRejection("already_reversed")
	default:
		e.log.Error().Err(err).Msg("movimiento de stock fallido")
	}
}

func (e *StockEngine) committed(ctx context.Context, res *StockResult, direction string, quantity int) {
	e.log.Info().
		Str("barcode", res.Barcode).
		Str("direction", direction).
		Int("quantity", quantity).
		Int("stock", res.Stock).
		Str("transaction_id", res.TransactionID).
		Msg("movimiento registrado")
	e.rec.ObserveMovement(direction, quantity)
	e.publish(ctx, StockEvent{
		Type:          EventMovementRecorded,
		ProductID:     res.ProductID,
		Barcode:       res.Barcode,
		TransactionID: res.TransactionID,
		Direction:     direction,
		Quantity:      quantity,
		PreviousStock: res.PreviousStock,
		Stock:         res.Stock,
		At:            e.now().UTC(),
	})
}

func (e *StockEngine) publish(ctx context.Context, ev StockEvent) {
	if err := e.pub.Publish(ctx, ev); err != nil {
		e.log.Error().Err(err).Str("barcode", ev.Barcode).Str("type", ev.Type).Msg("publicar evento de stock")
	}
}

// dateOnly descarta la hora: los vencimientos son fechas calendario.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
