package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/sistema-bodega/internal/domain/repository"
)

// Repos agrupa los repositorios que el motor usa. Atados a una transacción dentro de TxRunner.Run;
// fuera de ella, atados al pool (solo lecturas).
type Repos struct {
	Products     repository.ProductRepository
	Lots         repository.LotRepository
	Transactions repository.TransactionRepository
	Deliveries   repository.DeliveryRepository
	Departments  repository.DepartmentRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y no queda ninguna escritura.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

// Tipos de evento de stock publicados después del commit.
const (
	EventMovementRecorded = "bodega.stock.movement"
	EventStockReconciled  = "bodega.stock.reconciled"
)

// StockEvent describe un cambio de stock ya confirmado.
type StockEvent struct {
	Type          string    `json:"type"`
	ProductID     string    `json:"product_id"`
	Barcode       string    `json:"barcode"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Direction     string    `json:"direction,omitempty"`
	Quantity      int       `json:"quantity,omitempty"`
	PreviousStock int       `json:"previous_stock"`
	Stock         int       `json:"stock"`
	At            time.Time `json:"at"`
}

// EventPublisher publica eventos de stock. Un fallo al publicar nunca revierte el movimiento.
type EventPublisher interface {
	Publish(ctx context.Context, ev StockEvent) error
}

// Recorder recibe métricas del motor.
type Recorder interface {
	ObserveMovement(direction string, quantity int)
	ObserveRejection(reason string)
	ObserveCorrection(kind string)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, StockEvent) error { return nil }

type nopRecorder struct{}

func (nopRecorder) ObserveMovement(string, int) {}
func (nopRecorder) ObserveRejection(string)     {}
func (nopRecorder) ObserveCorrection(string)    {}
