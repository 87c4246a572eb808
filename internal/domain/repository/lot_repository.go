package repository

import (
	"context"
	"time"

	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
)

// LotRepository puerto de persistencia de lotes. Los lotes nunca se borran.
type LotRepository interface {
	// Create devuelve domain.ErrDuplicate si el número de lote ya existe para el producto.
	Create(ctx context.Context, lot *entity.Lot) error
	GetByNumber(ctx context.Context, productID string, number int) (*entity.Lot, error)
	// ListByProduct devuelve todos los lotes (activos y agotados) ordenados por número.
	ListByProduct(ctx context.Context, productID string) ([]*entity.Lot, error)
	UpdateStock(ctx context.Context, lotID string, stock int) error
	UpdateExpiry(ctx context.Context, lotID string, expiry time.Time) error
}
