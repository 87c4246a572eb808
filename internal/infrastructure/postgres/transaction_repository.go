package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/sistema-bodega/internal/domain"
	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
	"github.com/jhoicas/sistema-bodega/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `id, product_id, direction, quantity, note, delivery_id, lot_id, reverses,
	supplier_rut, dispatch_guide, invoice_number, purchase_order, created_by, created_at`

// TransactionRepo libro de movimientos sobre PostgreSQL. Solo INSERT y SELECT.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Acepta pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Create agrega un movimiento al libro.
func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	query := `
		INSERT INTO stock_transactions (id, product_id, direction, quantity, note, delivery_id, lot_id, reverses,
			supplier_rut, dispatch_guide, invoice_number, purchase_order, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.ProductID, t.Direction, t.Quantity, t.Note,
		t.DeliveryID, t.LotID, t.Reverses,
		t.Supplier.RUT, t.Supplier.DispatchGuide, t.Supplier.Invoice, t.Supplier.PurchaseOrder,
		t.CreatedBy, t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// índice único parcial sobre reverses
			return domain.ErrAlreadyReversed
		}
		if isCheckViolation(err) {
			return domain.NewValidationError("cantidad", "debe ser mayor a cero")
		}
		return fmt.Errorf("insert stock transaction: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM stock_transactions WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// FindReversal devuelve el movimiento que compensa a id.
func (r *TransactionRepo) FindReversal(ctx context.Context, id string) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM stock_transactions WHERE reverses = $1`
	return r.getOne(ctx, query, id)
}

func (r *TransactionRepo) getOne(ctx context.Context, query, arg string) (*entity.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock transaction: %w", err)
	}
	return t, nil
}

// ListByProduct devuelve el libro del producto en orden cronológico.
func (r *TransactionRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM stock_transactions WHERE product_id = $1 ORDER BY created_at, seq`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock transactions: %w", err)
	}
	defer rows.Close()

	var list []*entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	err := row.Scan(
		&t.ID, &t.ProductID, &t.Direction, &t.Quantity, &t.Note,
		&t.DeliveryID, &t.LotID, &t.Reverses,
		&t.Supplier.RUT, &t.Supplier.DispatchGuide, &t.Supplier.Invoice, &t.Supplier.PurchaseOrder,
		&t.CreatedBy, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
