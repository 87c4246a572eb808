package repository

import (
	"context"

	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
)

// ProductFilter filtros de listado. Search ya viene normalizado (ver textsearch.Fold).
type ProductFilter struct {
	Search       string
	Category     string
	TracksExpiry *bool
	InStockOnly  bool
	Limit        int // 0 = sin límite
	Offset       int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetBy* devuelven (nil, nil) cuando no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error)
	// GetByBarcodeForUpdate bloquea la fila del producto hasta el fin de la transacción.
	GetByBarcodeForUpdate(ctx context.Context, barcode string) (*entity.Product, error)
	// Update modifica datos descriptivos; nunca el stock.
	Update(ctx context.Context, product *entity.Product) error
	// UpdateStock es de uso exclusivo del motor de stock.
	UpdateStock(ctx context.Context, productID string, stock int) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
}
