package entity

import "time"

// Direcciones de un movimiento del libro (Bincard).
const (
	DirectionEntrada = "entrada"
	DirectionSalida  = "salida"
)

// Transaction es una entrada inmutable del libro de movimientos.
// Las correcciones nunca editan una fila: se agrega un movimiento compensatorio con Reverses.
type Transaction struct {
	ID         string
	ProductID  string
	Direction  string // entrada | salida
	Quantity   int    // siempre positiva
	Note       string
	DeliveryID *string // acta de entrega asociada (solo salidas)
	LotID      *string // lote creado por una entrada
	Reverses   *string // ID del movimiento que compensa
	Supplier   SupplierDocs
	CreatedBy  string
	CreatedAt  time.Time
}

// Signed devuelve la cantidad con signo: positiva en entradas, negativa en salidas.
func (t *Transaction) Signed() int {
	if t.Direction == DirectionSalida {
		return -t.Quantity
	}
	return t.Quantity
}

// SupplierDocs documentos del proveedor que respaldan una entrada. Todos opcionales.
type SupplierDocs struct {
	RUT           string
	DispatchGuide string
	Invoice       string
	PurchaseOrder string
}

// Reference referencia corta para el Bincard: la guía de despacho tiene prioridad sobre la factura.
func (s SupplierDocs) Reference() string {
	switch {
	case s.DispatchGuide != "":
		return "Guía: " + s.DispatchGuide
	case s.Invoice != "":
		return "Factura: " + s.Invoice
	}
	return ""
}

// Empty indica que no se informó ningún documento.
func (s SupplierDocs) Empty() bool {
	return s == SupplierDocs{}
}
