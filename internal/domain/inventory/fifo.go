package inventory

import (
	"sort"

	"github.com/jhoicas/sistema-bodega/internal/domain"
	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
)

// Draw es lo que una salida descuenta de un lote concreto.
type Draw struct {
	LotID     string
	LotNumber int
	Quantity  int // unidades descontadas
	Remaining int // stock del lote después de descontar
}

// SortFIFO ordena los lotes por vencimiento ascendente y, a igual fecha, por número de lote.
// Ordena en el lugar.
func SortFIFO(lots []*entity.Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]
		if !a.ExpiryDate.Equal(b.ExpiryDate) {
			return a.ExpiryDate.Before(b.ExpiryDate)
		}
		return a.Number < b.Number
	})
}

// ActiveStock suma el stock de los lotes activos.
func ActiveStock(lots []*entity.Lot) int {
	total := 0
	for _, l := range lots {
		if l.Active() {
			total += l.Stock
		}
	}
	return total
}

// PlanFIFO calcula cómo repartir quantity entre los lotes activos, vaciando primero el que
// vence antes. No modifica los lotes. Si el stock activo no alcanza devuelve
// *domain.InsufficientStockError y ningún plan.
func PlanFIFO(lots []*entity.Lot, quantity int) ([]Draw, error) {
	if quantity <= 0 {
		return nil, domain.NewValidationError("cantidad", "debe ser mayor a cero")
	}
	active := make([]*entity.Lot, 0, len(lots))
	for _, l := range lots {
		if l.Active() {
			active = append(active, l)
		}
	}
	available := ActiveStock(active)
	if available < quantity {
		return nil, &domain.InsufficientStockError{Available: available, Requested: quantity}
	}
	SortFIFO(active)

	remaining := quantity
	draws := make([]Draw, 0, len(active))
	for _, l := range active {
		if remaining == 0 {
			break
		}
		take := l.Stock
		if take > remaining {
			take = remaining
		}
		remaining -= take
		draws = append(draws, Draw{
			LotID:     l.ID,
			LotNumber: l.Number,
			Quantity:  take,
			Remaining: l.Stock - take,
		})
	}
	return draws, nil
}

// NextLotNumber devuelve max(número de lote) + 1, contando también los lotes agotados.
func NextLotNumber(lots []*entity.Lot) int {
	highest := 0
	for _, l := range lots {
		if l.Number > highest {
			highest = l.Number
		}
	}
	return highest + 1
}
