package inventory

import (
	"context"

	"github.com/jhoicas/sistema-bodega/internal/domain"
	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
	domaininv "github.com/jhoicas/sistema-bodega/internal/domain/inventory"
)

// BincardRow fila del Bincard. Las salidas por acta traen sus datos; las entradas, la guía o
// factura y el RUT del proveedor.
type BincardRow struct {
	domaininv.BalanceRow
	DeliveryNumber int
	Department     string
	Official       string
	DocumentRef    string
	SupplierRUT    string
}

// Bincard historial de un producto con saldo acumulado.
type Bincard struct {
	Product  *entity.Product
	Rows     []BincardRow
	TotalIn  int
	TotalOut int
	Balance  int
	LotSum   int
	// LedgerDrift y LotDrift se informan, nunca se corrigen desde aquí.
	LedgerDrift   bool
	LotDrift      bool
	FirstNegative string
	Lots          []*entity.Lot
}

// BincardUseCase consultas de solo lectura sobre el libro y los lotes.
type BincardUseCase struct {
	repos Repos
}

// NewBincardUseCase construye el caso de uso.
func NewBincardUseCase(repos Repos) *BincardUseCase {
	return &BincardUseCase{repos: repos}
}

// History arma el Bincard del producto.
func (uc *BincardUseCase) History(ctx context.Context, barcode string) (*Bincard, error) {
	product, err := uc.product(ctx, barcode)
	if err != nil {
		return nil, err
	}
	entries, err := uc.repos.Transactions.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	deliveries, err := uc.repos.Deliveries.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.Delivery, len(deliveries))
	for _, d := range deliveries {
		byID[d.ID] = d
	}

	ledger := domaininv.RunningBalance(entries)
	card := &Bincard{
		Product:       product,
		Rows:          make([]BincardRow, 0, len(ledger.Rows)),
		TotalIn:       ledger.TotalIn,
		TotalOut:      ledger.TotalOut,
		Balance:       ledger.Balance,
		LotSum:        product.Stock,
		LedgerDrift:   ledger.Balance != product.Stock,
		FirstNegative: ledger.FirstNegative,
	}
	for _, row := range ledger.Rows {
		br := BincardRow{
			BalanceRow:  row,
			DocumentRef: row.Entry.Supplier.Reference(),
			SupplierRUT: row.Entry.Supplier.RUT,
		}
		if row.Entry.DeliveryID != nil {
			if d, ok := byID[*row.Entry.DeliveryID]; ok {
				br.DeliveryNumber = d.Number
				br.Department = d.Department
				br.Official = d.Official
			}
		}
		card.Rows = append(card.Rows, br)
	}

	if product.TracksExpiry {
		lots, err := uc.repos.Lots.ListByProduct(ctx, product.ID)
		if err != nil {
			return nil, err
		}
		card.Lots = lots
		card.LotSum = domaininv.ActiveStock(lots)
		card.LotDrift = card.LotSum != product.Stock
	}
	return card, nil
}

// Lots devuelve todos los lotes del producto (activos y agotados) ordenados por número.
func (uc *BincardUseCase) Lots(ctx context.Context, barcode string) (*entity.Product, []*entity.Lot, error) {
	product, err := uc.product(ctx, barcode)
	if err != nil {
		return nil, nil, err
	}
	lots, err := uc.repos.Lots.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, nil, err
	}
	return product, lots, nil
}

func (uc *BincardUseCase) product(ctx context.Context, barcode string) (*entity.Product, error) {
	if barcode == "" {
		return nil, domain.NewValidationError("codigo_barra", "requerido")
	}
	p, err := uc.repos.Products.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}
