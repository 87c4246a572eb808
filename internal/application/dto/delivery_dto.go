package dto

import "time"

// DeliveryItemRequest línea del acta.
type DeliveryItemRequest struct {
	Barcode  string `json:"codigo_barra" validate:"required"`
	Quantity int    `json:"cantidad" validate:"required,gt=0"`
}

// CreateDeliveryRequest body para POST /api/deliveries.
type CreateDeliveryRequest struct {
	Department        string                `json:"departamento" validate:"required,max=120"`
	Official          string                `json:"funcionario" validate:"required,max=120"`
	SubdepartmentHead string                `json:"jefe_subdepartamento" validate:"max=120"`
	Responsible       string                `json:"responsable" validate:"max=120"`
	Note              string                `json:"observaciones" validate:"max=500"`
	Items             []DeliveryItemRequest `json:"items" validate:"required,min=1,dive"`
}

// DeliveryLineResponse producto entregado.
type DeliveryLineResponse struct {
	Barcode       string         `json:"codigo_barra"`
	Description   string         `json:"descripcion"`
	Quantity      int            `json:"cantidad"`
	Stock         int            `json:"stock"`
	TransactionID string         `json:"transaction_id,omitempty"`
	Draws         []DrawResponse `json:"descuentos,omitempty"`
}

// DeliveryResponse acta de entrega.
type DeliveryResponse struct {
	Number            int                    `json:"numero_acta"`
	Department        string                 `json:"departamento"`
	Official          string                 `json:"funcionario"`
	SubdepartmentHead string                 `json:"jefe_subdepartamento,omitempty"`
	Responsible       string                 `json:"responsable,omitempty"`
	Note              string                 `json:"observaciones,omitempty"`
	CreatedAt         time.Time              `json:"fecha"`
	Lines             []DeliveryLineResponse `json:"items"`
}

// DeliveryListRequest filtros de GET /api/deliveries.
type DeliveryListRequest struct {
	PageRequest
	Number      string `query:"numero_acta" validate:"omitempty,numeric,max=10"`
	Department  string `query:"departamento" validate:"max=120"`
	Responsible string `query:"responsable" validate:"max=120"`
}

// DeliveryHeaderResponse acta en el listado.
type DeliveryHeaderResponse struct {
	Number            int       `json:"numero_acta"`
	Department        string    `json:"departamento"`
	Official          string    `json:"funcionario"`
	SubdepartmentHead string    `json:"jefe_subdepartamento,omitempty"`
	Responsible       string    `json:"responsable,omitempty"`
	Items             int       `json:"productos"`
	Units             int       `json:"unidades"`
	CreatedAt         time.Time `json:"fecha"`
}

// DeliveryListResponse listado paginado de actas.
type DeliveryListResponse struct {
	Items []DeliveryHeaderResponse `json:"items"`
	Page  PageResponse             `json:"page"`
}
