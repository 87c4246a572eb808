package entity

import "time"

// Estados de un lote. depleted es terminal: un lote agotado nunca vuelve a activo.
const (
	LotStateActive   = "active"
	LotStateDepleted = "depleted"
)

// Lot es un lote de un producto con una sola fecha de vencimiento.
// Los lotes agotados se conservan para la trazabilidad del Bincard.
type Lot struct {
	ID         string
	ProductID  string
	Number     int // secuencial, único por producto
	ExpiryDate time.Time
	Stock      int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// State devuelve active si el lote tiene stock, depleted si no.
func (l *Lot) State() string {
	if l.Stock > 0 {
		return LotStateActive
	}
	return LotStateDepleted
}

// Active indica si el lote aún puede consumirse.
func (l *Lot) Active() bool {
	return l.Stock > 0
}
