package repository

import (
	"context"

	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
)

// TransactionRepository puerto del libro de movimientos. Solo agrega: no hay Update ni Delete.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	// ListByProduct devuelve los movimientos del producto en orden cronológico.
	ListByProduct(ctx context.Context, productID string) ([]*entity.Transaction, error)
	// FindReversal devuelve el movimiento que compensa a id, o nil.
	FindReversal(ctx context.Context, id string) (*entity.Transaction, error)
}
