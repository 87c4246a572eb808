package inventory

import (
	"context"

	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
	domaininv "github.com/jhoicas/sistema-bodega/internal/domain/inventory"
	"github.com/jhoicas/sistema-bodega/internal/domain/repository"
)

// AuditLine estado de un producto en la auditoría.
type AuditLine struct {
	ProductID     string
	Barcode       string
	Description   string
	Tracked       bool
	Stock         int
	LotSum        int
	LedgerBalance int
	// LotDrift: producto con vencimiento cuyo stock no coincide con la suma de lotes.
	LotDrift bool
	// LedgerDrift: el saldo del libro no coincide con el stock. Solo se informa.
	LedgerDrift bool
	Corrected   bool
}

// AuditReport resultado de ReconcileAll.
type AuditReport struct {
	Products    int
	LotDrift    int
	LedgerDrift int
	Corrected   int
	Applied     bool
	Lines       []AuditLine // solo productos con algún desfase
}

// ReconcileAll recorre todos los productos y compara stock con suma de lotes y con el saldo del libro.
// Con apply corrige el desfase de lotes vía Reconcile; el libro nunca se reescribe.
func (e *StockEngine) ReconcileAll(ctx context.Context, apply bool) (*AuditReport, error) {
	products, _, err := e.repos.Products.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	report := &AuditReport{Products: len(products), Applied: apply, Lines: []AuditLine{}}
	for _, p := range products {
		line, err := e.auditProduct(ctx, p)
		if err != nil {
			return nil, err
		}
		if line.LotDrift && apply {
			res, err := e.Reconcile(ctx, p.Barcode)
			if err != nil {
				return nil, err
			}
			line.Corrected = res.Corrected
			line.Stock = res.Stock
			line.LedgerDrift = line.LedgerBalance != res.Stock
		}
		if !line.LotDrift && !line.LedgerDrift {
			continue
		}
		if line.LotDrift {
			report.LotDrift++
		}
		if line.LedgerDrift {
			report.LedgerDrift++
			e.log.Warn().
				Str("barcode", line.Barcode).
				Int("stock", line.Stock).
				Int("ledger_balance", line.LedgerBalance).
				Msg("saldo del libro no coincide con el stock")
		}
		if line.Corrected {
			report.Corrected++
		}
		report.Lines = append(report.Lines, line)
	}
	e.log.Info().
		Int("products", report.Products).
		Int("lot_drift", report.LotDrift).
		Int("ledger_drift", report.LedgerDrift).
		Int("corrected", report.Corrected).
		Bool("apply", apply).
		Msg("auditoría de stock")
	return report, nil
}

func (e *StockEngine) auditProduct(ctx context.Context, p *entity.Product) (AuditLine, error) {
	line := AuditLine{
		ProductID:   p.ID,
		Barcode:     p.Barcode,
		Description: p.Description,
		Tracked:     p.TracksExpiry,
		Stock:       p.Stock,
		LotSum:      p.Stock,
	}
	if p.TracksExpiry {
		lots, err := e.repos.Lots.ListByProduct(ctx, p.ID)
		if err != nil {
			return line, err
		}
		line.LotSum = domaininv.ActiveStock(lots)
		line.LotDrift = line.LotSum != p.Stock
	}
	entries, err := e.repos.Transactions.ListByProduct(ctx, p.ID)
	if err != nil {
		return line, err
	}
	line.LedgerBalance = domaininv.RunningBalance(entries).Balance
	line.LedgerDrift = line.LedgerBalance != p.Stock
	return line, nil
}
