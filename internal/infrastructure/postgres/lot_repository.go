package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/sistema-bodega/internal/domain"
	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
	"github.com/jhoicas/sistema-bodega/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, product_id, lot_number, expiry_date, stock, created_at, updated_at`

// LotRepo lotes sobre PostgreSQL. No existe DELETE: los lotes agotados se conservan.
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Acepta pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// Create inserta un lote. Un número repetido para el producto devuelve domain.ErrDuplicate.
func (r *LotRepo) Create(ctx context.Context, l *entity.Lot) error {
	query := `
		INSERT INTO lots (id, product_id, lot_number, expiry_date, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, l.ID, l.ProductID, l.Number, l.ExpiryDate, l.Stock, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// GetByNumber obtiene un lote por producto y número.
func (r *LotRepo) GetByNumber(ctx context.Context, productID string, number int) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE product_id = $1 AND lot_number = $2`
	l, err := scanLot(r.q.QueryRow(ctx, query, productID, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return l, nil
}

// ListByProduct lista todos los lotes del producto por número.
func (r *LotRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE product_id = $1 ORDER BY lot_number`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()

	var list []*entity.Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// UpdateStock fija el stock del lote.
func (r *LotRepo) UpdateStock(ctx context.Context, lotID string, stock int) error {
	tag, err := r.q.Exec(ctx, `UPDATE lots SET stock = $2, updated_at = now() WHERE id = $1`, lotID, stock)
	if err != nil {
		if isCheckViolation(err) {
			return domain.NewValidationError("stock", "no puede ser negativo")
		}
		return fmt.Errorf("update lot stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateExpiry cambia la fecha de vencimiento.
func (r *LotRepo) UpdateExpiry(ctx context.Context, lotID string, expiry time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE lots SET expiry_date = $2, updated_at = now() WHERE id = $1`, lotID, expiry)
	if err != nil {
		return fmt.Errorf("update lot expiry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var l entity.Lot
	if err := row.Scan(&l.ID, &l.ProductID, &l.Number, &l.ExpiryDate, &l.Stock, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}
