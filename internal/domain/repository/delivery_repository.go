package repository

import (
	"context"
	"time"

	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
)

// DeliveryRepository puerto de actas de entrega.
type DeliveryRepository interface {
	// NextNumber reserva el siguiente número de acta (max + 1). Llamar dentro de una transacción.
	NextNumber(ctx context.Context) (int, error)
	Create(ctx context.Context, d *entity.Delivery) error
	ListByNumber(ctx context.Context, number int) ([]*entity.Delivery, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.Delivery, error)
	// ListHeaders devuelve una cabecera por acta, de la más reciente a la más antigua, y el total sin paginar.
	ListHeaders(ctx context.Context, f DeliveryFilter) ([]DeliveryHeader, int, error)
}

// DeliveryFilter filtros del listado de actas. NumberPrefix compara el número como texto
// ("12" encuentra 12, 120, 1203).
type DeliveryFilter struct {
	NumberPrefix string
	Department   string
	Responsible  string // contiene, sin distinguir mayúsculas
	Limit        int
	Offset       int
}

// DeliveryHeader resumen de un acta para el listado.
type DeliveryHeader struct {
	Number            int
	Department        string
	Official          string
	SubdepartmentHead string
	Responsible       string
	Items             int
	Units             int
	CreatedAt         time.Time
}
