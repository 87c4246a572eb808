package inventory

import (
	"sort"

	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
)

// BalanceRow es una fila del Bincard: el movimiento y el saldo acumulado tras aplicarlo.
type BalanceRow struct {
	Entry   *entity.Transaction
	Entrada int
	Salida  int
	Saldo   int
}

// Ledger resultado de recorrer el libro de un producto en orden cronológico.
type Ledger struct {
	Rows     []BalanceRow
	TotalIn  int
	TotalOut int
	Balance  int
	// FirstNegative es el ID del primer movimiento que deja el saldo bajo cero (vacío si ninguno).
	FirstNegative string
}

// RunningBalance ordena los movimientos por fecha (a igual fecha conserva el orden recibido) y
// calcula el saldo acumulado.
// No corrige nada: un saldo negativo queda marcado en FirstNegative para revisión manual.
func RunningBalance(entries []*entity.Transaction) Ledger {
	sorted := make([]*entity.Transaction, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	var out Ledger
	out.Rows = make([]BalanceRow, 0, len(sorted))
	for _, e := range sorted {
		row := BalanceRow{Entry: e}
		if e.Direction == entity.DirectionSalida {
			row.Salida = e.Quantity
			out.TotalOut += e.Quantity
		} else {
			row.Entrada = e.Quantity
			out.TotalIn += e.Quantity
		}
		out.Balance += e.Signed()
		row.Saldo = out.Balance
		if out.Balance < 0 && out.FirstNegative == "" {
			out.FirstNegative = e.ID
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
