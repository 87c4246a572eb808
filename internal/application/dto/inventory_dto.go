package dto

import (
	"strings"

	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
)

// EntryRequest body para POST /api/products/:barcode/entries.
type EntryRequest struct {
	Quantity   int    `json:"cantidad" validate:"required,gt=0"`
	ExpiryDate string `json:"fecha_vencimiento" validate:"omitempty,datetime=2006-01-02"`
	LotNumber  *int   `json:"numero_lote" validate:"omitempty,min=1"`
	Note       string `json:"observaciones" validate:"max=500"`
	SupplierDocsRequest
}

// SupplierDocsRequest documentos del proveedor de una entrada. Todos opcionales.
type SupplierDocsRequest struct {
	SupplierRUT   string `json:"rut_proveedor" validate:"max=12"`
	DispatchGuide string `json:"guia_despacho" validate:"max=50"`
	Invoice       string `json:"numero_factura" validate:"max=50"`
	PurchaseOrder string `json:"orden_compra" validate:"max=50"`
}

// SupplierDocs convierte a la entidad, sin espacios sobrantes.
func (r SupplierDocsRequest) SupplierDocs() entity.SupplierDocs {
	return entity.SupplierDocs{
		RUT:           strings.TrimSpace(r.SupplierRUT),
		DispatchGuide: strings.TrimSpace(r.DispatchGuide),
		Invoice:       strings.TrimSpace(r.Invoice),
		PurchaseOrder: strings.TrimSpace(r.PurchaseOrder),
	}
}

// ExitRequest body para POST /api/products/:barcode/exits.
type ExitRequest struct {
	Quantity int    `json:"cantidad" validate:"required,gt=0"`
	Note     string `json:"observaciones" validate:"max=500"`
}

// DrawResponse unidades descontadas de un lote.
type DrawResponse struct {
	LotNumber int `json:"numero_lote"`
	Quantity  int `json:"cantidad"`
	Remaining int `json:"restante"`
}

// StockResponse resultado de una entrada, salida o reversión.
type StockResponse struct {
	Barcode       string         `json:"codigo_barra"`
	PreviousStock int            `json:"stock_anterior"`
	Stock         int            `json:"stock"`
	TransactionID string         `json:"transaction_id"`
	Lot           *LotResponse   `json:"lote,omitempty"`
	Draws         []DrawResponse `json:"descuentos,omitempty"`
	Corrected     bool           `json:"desfase_corregido"`
}

// LotResponse lote de un producto.
type LotResponse struct {
	Number     int    `json:"numero_lote"`
	ExpiryDate string `json:"fecha_vencimiento"`
	Stock      int    `json:"stock"`
	State      string `json:"estado"`
}

// LotListResponse lotes de un producto, activos y agotados.
type LotListResponse struct {
	Barcode string        `json:"codigo_barra"`
	Stock   int           `json:"stock"`
	Items   []LotResponse `json:"items"`
}

// ChangeExpiryRequest body para PUT /api/products/:barcode/lots/:number/expiry.
type ChangeExpiryRequest struct {
	ExpiryDate string `json:"fecha_vencimiento" validate:"required,datetime=2006-01-02"`
}

// ReconcileResponse resultado de POST /api/products/:barcode/reconcile.
type ReconcileResponse struct {
	Barcode       string `json:"codigo_barra"`
	Tracked       bool   `json:"controla_vencimiento"`
	PreviousStock int    `json:"stock_anterior"`
	LotSum        int    `json:"suma_lotes"`
	Stock         int    `json:"stock"`
	Corrected     bool   `json:"corregido"`
}

// ReversalRequest body para POST /api/transactions/:id/reversal.
type ReversalRequest struct {
	Reason     string `json:"motivo" validate:"required,min=3,max=500"`
	ExpiryDate string `json:"fecha_vencimiento" validate:"omitempty,datetime=2006-01-02"`
}

// AuditLineResponse producto con desfase en la auditoría.
type AuditLineResponse struct {
	Barcode       string `json:"codigo_barra"`
	Description   string `json:"descripcion"`
	Tracked       bool   `json:"controla_vencimiento"`
	Stock         int    `json:"stock"`
	LotSum        int    `json:"suma_lotes"`
	LedgerBalance int    `json:"saldo_libro"`
	LotDrift      bool   `json:"desfase_lotes"`
	LedgerDrift   bool   `json:"desfase_libro"`
	Corrected     bool   `json:"corregido"`
}

// AuditResponse resultado de GET /api/audit/stock.
type AuditResponse struct {
	Products    int                 `json:"productos"`
	LotDrift    int                 `json:"desfase_lotes"`
	LedgerDrift int                 `json:"desfase_libro"`
	Corrected   int                 `json:"corregidos"`
	Applied     bool                `json:"aplicado"`
	Lines       []AuditLineResponse `json:"items"`
}
