package dto

import "time"

// BincardRowResponse fila del Bincard.
type BincardRowResponse struct {
	TransactionID  string    `json:"transaction_id"`
	Date           time.Time `json:"fecha"`
	Entrada        int       `json:"entrada"`
	Salida         int       `json:"salida"`
	Saldo          int       `json:"saldo"`
	Note           string    `json:"observaciones,omitempty"`
	DeliveryNumber int       `json:"numero_acta,omitempty"`
	Department     string    `json:"departamento,omitempty"`
	Official       string    `json:"funcionario,omitempty"`
	DocumentRef    string    `json:"guia_o_factura,omitempty"`
	SupplierRUT    string    `json:"rut_proveedor,omitempty"`
	Reverses       string    `json:"revierte,omitempty"`
	CreatedBy      string    `json:"usuario,omitempty"`
}

// BincardResponse resultado de GET /api/products/:barcode/bincard.
type BincardResponse struct {
	Product       ProductResponse      `json:"producto"`
	Rows          []BincardRowResponse `json:"movimientos"`
	TotalIn       int                  `json:"total_entradas"`
	TotalOut      int                  `json:"total_salidas"`
	Balance       int                  `json:"saldo"`
	LotSum        int                  `json:"suma_lotes"`
	LedgerDrift   bool                 `json:"desfase_libro"`
	LotDrift      bool                 `json:"desfase_lotes"`
	FirstNegative string               `json:"primer_saldo_negativo,omitempty"`
	Lots          []LotResponse        `json:"lotes,omitempty"`
}

// ExpiryLotResponse lote activo en el control de vencimientos.
type ExpiryLotResponse struct {
	Number     int    `json:"numero_lote"`
	ExpiryDate string `json:"fecha_vencimiento"`
	Stock      int    `json:"stock"`
	DaysLeft   int    `json:"dias_restantes"`
	Status     string `json:"estado"`
}

// ExpiryItemResponse producto en el control de vencimientos.
type ExpiryItemResponse struct {
	Barcode     string              `json:"codigo_barra"`
	Description string              `json:"descripcion"`
	Category    string              `json:"categoria"`
	Stock       int                 `json:"stock"`
	NextExpiry  string              `json:"proximo_vencimiento"`
	DaysLeft    int                 `json:"dias_restantes"`
	Status      string              `json:"estado"`
	Lots        []ExpiryLotResponse `json:"lotes"`
}

// ExpiryStatsResponse conteo por estado.
type ExpiryStatsResponse struct {
	Expired  int `json:"vencidos"`
	Critical int `json:"criticos"`
	Warning  int `json:"precaucion"`
	Normal   int `json:"normal"`
}

// ExpiryControlResponse resultado de GET /api/expiry-control.
type ExpiryControlResponse struct {
	Today  string               `json:"hoy"`
	Filter string               `json:"estado"`
	Search string               `json:"busqueda,omitempty"`
	Stats  ExpiryStatsResponse  `json:"estadisticas"`
	Items  []ExpiryItemResponse `json:"items"`
}
