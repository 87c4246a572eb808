package dto

import "time"

// CreateProductRequest entrada para crear un producto. El stock inicia en 0; StockInicial, si viene,
// se registra como una entrada normal del libro.
type CreateProductRequest struct {
	Barcode          string `json:"codigo_barra" validate:"required,min=1,max=50"`
	Description      string `json:"descripcion" validate:"required,min=1,max=200"`
	Category         string `json:"categoria" validate:"required,oneof=Insumos_Aseo Insumos_Escritorio EPP Emergencias_y_Desastres Folletoria Otros"`
	TracksExpiry     bool   `json:"controla_vencimiento"`
	InitialStock     int    `json:"stock_inicial" validate:"min=0"`
	InitialExpiry    string `json:"fecha_vencimiento" validate:"omitempty,datetime=2006-01-02"`
	InitialLotNumber *int   `json:"numero_lote" validate:"omitempty,min=1"`
}

// UpdateProductRequest entrada para actualizar un producto. El stock no es editable.
type UpdateProductRequest struct {
	Description  *string `json:"descripcion" validate:"omitempty,min=1,max=200"`
	Category     *string `json:"categoria" validate:"omitempty,oneof=Insumos_Aseo Insumos_Escritorio EPP Emergencias_y_Desastres Folletoria Otros"`
	TracksExpiry *bool   `json:"controla_vencimiento"`
}

// ProductListRequest filtros de GET /api/products.
type ProductListRequest struct {
	PageRequest
	Search      string `query:"busqueda" validate:"max=100"`
	Category    string `query:"categoria"`
	InStockOnly bool   `query:"con_stock"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string    `json:"id"`
	Barcode      string    `json:"codigo_barra"`
	Description  string    `json:"descripcion"`
	Category     string    `json:"categoria"`
	TracksExpiry bool      `json:"controla_vencimiento"`
	Stock        int       `json:"stock"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
