package http

import (
	"github.com/jhoicas/sistema-bodega/internal/application/dto"
	"github.com/jhoicas/sistema-bodega/internal/application/inventory"
	"github.com/jhoicas/sistema-bodega/internal/application/usecase"
	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
	domaininv "github.com/jhoicas/sistema-bodega/internal/domain/inventory"
	"github.com/jhoicas/sistema-bodega/internal/domain/repository"
)

func toLotResponse(l *entity.Lot) dto.LotResponse {
	return dto.LotResponse{
		Number:     l.Number,
		ExpiryDate: l.ExpiryDate.Format(dto.DateLayout),
		Stock:      l.Stock,
		State:      l.State(),
	}
}

func toLotResponses(lots []*entity.Lot) []dto.LotResponse {
	out := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, toLotResponse(l))
	}
	return out
}

func toDrawResponses(draws []domaininv.Draw) []dto.DrawResponse {
	if len(draws) == 0 {
		return nil
	}
	out := make([]dto.DrawResponse, 0, len(draws))
	for _, d := range draws {
		out = append(out, dto.DrawResponse{LotNumber: d.LotNumber, Quantity: d.Quantity, Remaining: d.Remaining})
	}
	return out
}

func toStockResponse(r *inventory.StockResult) dto.StockResponse {
	out := dto.StockResponse{
		Barcode:       r.Barcode,
		PreviousStock: r.PreviousStock,
		Stock:         r.Stock,
		TransactionID: r.TransactionID,
		Draws:         toDrawResponses(r.Draws),
		Corrected:     r.Corrected,
	}
	if r.Lot != nil {
		lot := toLotResponse(r.Lot)
		out.Lot = &lot
	}
	return out
}

func toDeliveryResponse(r *inventory.DeliveryResult) dto.DeliveryResponse {
	out := dto.DeliveryResponse{
		Number:            r.Number,
		Department:        r.Department,
		Official:          r.Official,
		SubdepartmentHead: r.SubdepartmentHead,
		Responsible:       r.Responsible,
		Note:              r.Note,
		CreatedAt:         r.CreatedAt,
		Lines:             make([]dto.DeliveryLineResponse, 0, len(r.Lines)),
	}
	for _, l := range r.Lines {
		out.Lines = append(out.Lines, dto.DeliveryLineResponse{
			Barcode:       l.Barcode,
			Description:   l.Description,
			Quantity:      l.Quantity,
			Stock:         l.Stock,
			TransactionID: l.TransactionID,
			Draws:         toDrawResponses(l.Draws),
		})
	}
	return out
}

func toDeliveryHeaderResponses(list []repository.DeliveryHeader) []dto.DeliveryHeaderResponse {
	out := make([]dto.DeliveryHeaderResponse, 0, len(list))
	for _, h := range list {
		out = append(out, dto.DeliveryHeaderResponse{
			Number:            h.Number,
			Department:        h.Department,
			Official:          h.Official,
			SubdepartmentHead: h.SubdepartmentHead,
			Responsible:       h.Responsible,
			Items:             h.Items,
			Units:             h.Units,
			CreatedAt:         h.CreatedAt,
		})
	}
	return out
}

func toOfficialResponses(list []*entity.Official) []dto.OfficialResponse {
	out := make([]dto.OfficialResponse, 0, len(list))
	for _, o := range list {
		out = append(out, dto.OfficialResponse{ID: o.ID, Name: o.Name, Kind: o.Kind})
	}
	return out
}

func toDepartmentResponse(v *inventory.DepartmentView) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		ID:        v.Department.ID,
		Name:      v.Department.Name,
		Active:    v.Department.Active,
		Officials: toOfficialResponses(v.Officials),
	}
}

func toBincardResponse(b *inventory.Bincard) dto.BincardResponse {
	out := dto.BincardResponse{
		Product:       *usecase.ToProductResponse(b.Product),
		Rows:          make([]dto.BincardRowResponse, 0, len(b.Rows)),
		TotalIn:       b.TotalIn,
		TotalOut:      b.TotalOut,
		Balance:       b.Balance,
		LotSum:        b.LotSum,
		LedgerDrift:   b.LedgerDrift,
		LotDrift:      b.LotDrift,
		FirstNegative: b.FirstNegative,
	}
	if len(b.Lots) > 0 {
		out.Lots = toLotResponses(b.Lots)
	}
	for _, r := range b.Rows {
		row := dto.BincardRowResponse{
			TransactionID:  r.Entry.ID,
			Date:           r.Entry.CreatedAt,
			Entrada:        r.Entrada,
			Salida:         r.Salida,
			Saldo:          r.Saldo,
			Note:           r.Entry.Note,
			DeliveryNumber: r.DeliveryNumber,
			Department:     r.Department,
			Official:       r.Official,
			DocumentRef:    r.DocumentRef,
			SupplierRUT:    r.SupplierRUT,
			CreatedBy:      r.Entry.CreatedBy,
		}
		if r.Entry.Reverses != nil {
			row.Reverses = *r.Entry.Reverses
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func toExpiryResponse(r *inventory.ExpiryReport) dto.ExpiryControlResponse {
	out := dto.ExpiryControlResponse{
		Today:  r.Today.Format(dto.DateLayout),
		Filter: r.Filter,
		Search: r.Search,
		Stats: dto.ExpiryStatsResponse{
			Expired:  r.Stats.Expired,
			Critical: r.Stats.Critical,
			Warning:  r.Stats.Warning,
			Normal:   r.Stats.Normal,
		},
		Items: make([]dto.ExpiryItemResponse, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		item := dto.ExpiryItemResponse{
			Barcode:     it.Product.Barcode,
			Description: it.Product.Description,
			Category:    it.Product.Category,
			Stock:       it.Product.Stock,
			NextExpiry:  it.NextExpiry.Format(dto.DateLayout),
			DaysLeft:    it.DaysLeft,
			Status:      it.Status,
			Lots:        make([]dto.ExpiryLotResponse, 0, len(it.Lots)),
		}
		for _, l := range it.Lots {
			item.Lots = append(item.Lots, dto.ExpiryLotResponse{
				Number:     l.Number,
				ExpiryDate: l.ExpiryDate.Format(dto.DateLayout),
				Stock:      l.Stock,
				DaysLeft:   l.DaysLeft,
				Status:     l.Status,
			})
		}
		out.Items = append(out.Items, item)
	}
	return out
}

func toAuditResponse(r *inventory.AuditReport) dto.AuditResponse {
	out := dto.AuditResponse{
		Products:    r.Products,
		LotDrift:    r.LotDrift,
		LedgerDrift: r.LedgerDrift,
		Corrected:   r.Corrected,
		Applied:     r.Applied,
		Lines:       make([]dto.AuditLineResponse, 0, len(r.Lines)),
	}
	for _, l := range r.Lines {
		out.Lines = append(out.Lines, dto.AuditLineResponse{
			Barcode:       l.Barcode,
			Description:   l.Description,
			Tracked:       l.Tracked,
			Stock:         l.Stock,
			LotSum:        l.LotSum,
			LedgerBalance: l.LedgerBalance,
			LotDrift:      l.LotDrift,
			LedgerDrift:   l.LedgerDrift,
			Corrected:     l.Corrected,
		})
	}
	return out
}
