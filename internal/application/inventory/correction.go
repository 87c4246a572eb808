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
)

// CorrectionInput datos para revertir un movimiento del libro.
// ExpiryDate es obligatoria al revertir una salida de un producto con vencimiento: las unidades
// vuelven en un lote nuevo porque un lote agotado no se reactiva.
type CorrectionInput struct {
	TransactionID string
	Reason        string
	ExpiryDate    *time.Time
	UserID        string
}

// CorrectEntry agrega un movimiento compensatorio de dirección opuesta al indicado. El movimiento
// original queda intacto. Cada movimiento se puede revertir una sola vez y una reversión no se revierte.
func (e *StockEngine) CorrectEntry(ctx context.Context, in CorrectionInput) (*StockResult, error) {
	if in.TransactionID == "" {
		return nil, domain.NewValidationError("transaction_id", "requerido")
	}
	if in.Reason == "" {
		return nil, domain.NewValidationError("motivo", "requerido")
	}
	var (
		res       *StockResult
		direction string
		quantity  int
	)
	err := e.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		orig, err := r.Transactions.GetByID(ctx, in.TransactionID)
		if err != nil {
			return err
		}
		if orig == nil {
			return domain.ErrNotFound
		}
		if orig.Reverses != nil {
			return domain.NewValidationError("transaction_id", "una reversión no se puede revertir")
		}
		product, err := r.Products.GetByID(ctx, orig.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if product, err = lockProduct(ctx, r, product.Barcode); err != nil {
			return err
		}
		// se consulta con el producto bloqueado para que dos reversiones simultáneas no pasen ambas
		prev, err := r.Transactions.FindReversal(ctx, orig.ID)
		if err != nil {
			return err
		}
		if prev != nil {
			return domain.ErrAlreadyReversed
		}

		note := fmt.Sprintf("Reversión de %s: %s", orig.ID, in.Reason)
		quantity = orig.Quantity
		if orig.Direction == entity.DirectionEntrada {
			direction = entity.DirectionSalida
			res, err = e.reverseEntry(ctx, r, product, orig, note, in.UserID)
			return err
		}
		direction = entity.DirectionEntrada
		entry := EntryInput{
			Barcode:  product.Barcode,
			Quantity: orig.Quantity,
			Note:     note,
			UserID:   in.UserID,
		}
		if product.TracksExpiry {
			entry.ExpiryDate = in.ExpiryDate
		}
		res, err = e.applyEntry(ctx, r, product, entry, &orig.ID)
		return err
	})
	if err != nil {
		e.rejected(err)
		return nil, err
	}
	e.committed(ctx, res, direction, quantity)
	return res, nil
}

// reverseEntry saca las unidades de una entrada errónea. En productos con vencimiento salen del
// mismo lote que creó la entrada; si ese lote ya no las tiene, la reversión se rechaza.
func (e *StockEngine) reverseEntry(ctx context.Context, r Repos, product *entity.Product, orig *entity.Transaction, note, userID string) (*StockResult, error) {
	req := exitSpec{quantity: orig.Quantity, note: note, userID: userID, reverses: &orig.ID}
	if !product.TracksExpiry || orig.LotID == nil {
		return e.applyExit(ctx, r, product, req)
	}

	lots, corrected, err := e.trackedLots(ctx, r, product)
	if err != nil {
		return nil, err
	}
	var target *entity.Lot
	for _, l := range lots {
		if l.ID == *orig.LotID {
			target = l
			break
		}
	}
	if target == nil {
		return nil, domain.ErrNotFound
	}
	if target.Stock < orig.Quantity {
		return nil, &domain.InsufficientStockError{
			Barcode:   product.Barcode,
			Available: target.Stock,
			Requested: orig.Quantity,
		}
	}

	res := &StockResult{ProductID: product.ID, Barcode: product.Barcode, PreviousStock: product.Stock, Corrected: corrected}
	remaining := target.Stock - orig.Quantity
	if err := r.Lots.UpdateStock(ctx, target.ID, remaining); err != nil {
		return nil, err
	}
	res.Draws = []domaininv.Draw{{LotID: target.ID, LotNumber: target.Number, Quantity: orig.Quantity, Remaining: remaining}}

	newStock := product.Stock - orig.Quantity
	if err := r.Products.UpdateStock(ctx, product.ID, newStock); err != nil {
		return nil, err
	}
	product.Stock = newStock

	mov := &entity.Transaction{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		Direction: entity.DirectionSalida,
		Quantity:  orig.Quantity,
		Note:      note,
		LotID:     &target.ID,
		Reverses:  req.reverses,
		CreatedBy: userID,
		CreatedAt: e.now().UTC(),
	}
	if err := r.Transactions.Create(ctx, mov); err != nil {
		return nil, err
	}
	res.Stock = newStock
	res.TransactionID = mov.ID
	return res, nil
}

// ChangeLotExpiry corrige la fecha de vencimiento de un lote. El stock no cambia.
func (e *StockEngine) ChangeLotExpiry(ctx context.Context, barcode string, number int, expiry time.Time) (*entity.Lot, error) {
	if barcode == "" {
		return nil, domain.NewValidationError("codigo_barra", "requerido")
	}
	if expiry.IsZero() {
		return nil, domain.NewValidationError("fecha_vencimiento", "requerida")
	}
	var lot *entity.Lot
	var previous time.Time
	err := e.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		product, err := lockProduct(ctx, r, barcode)
		if err != nil {
			return err
		}
		if !product.TracksExpiry {
			return domain.NewValidationError("fecha_vencimiento", "el producto no controla vencimiento")
		}
		lot, err = r.Lots.GetByNumber(ctx, product.ID, number)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrNotFound
		}
		previous = lot.ExpiryDate
		lot.ExpiryDate = dateOnly(expiry)
		lot.UpdatedAt = e.now().UTC()
		return r.Lots.UpdateExpiry(ctx, lot.ID, lot.ExpiryDate)
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrInvalidInput) {
			e.log.Error().Err(err).Str("barcode", barcode).Int("lot", number).Msg("cambiar vencimiento de lote")
		}
		return nil, err
	}
	e.log.Info().
		Str("barcode", barcode).
		Int("lot", number).
		Time("from", previous).
		Time("to", lot.ExpiryDate).
		Msg("vencimiento de lote actualizado")
	return lot, nil
}
