package entity

import "time"

// Categorías de producto de la bodega.
const (
	CategoryInsumosAseo       = "Insumos_Aseo"
	CategoryInsumosEscritorio = "Insumos_Escritorio"
	CategoryEPP               = "EPP"
	CategoryEmergencias       = "Emergencias_y_Desastres"
	CategoryFolletoria        = "Folletoria"
	CategoryOtros             = "Otros"
)

// ValidCategory indica si la categoría es una de las admitidas.
func ValidCategory(c string) bool {
	switch c {
	case CategoryInsumosAseo, CategoryInsumosEscritorio, CategoryEPP,
		CategoryEmergencias, CategoryFolletoria, CategoryOtros:
		return true
	}
	return false
}

// Product representa un producto de la bodega identificado por su código de barra.
// Stock es una proyección: solo el motor de stock la escribe. Para productos con
// TracksExpiry es igual a la suma del stock de sus lotes.
type Product struct {
	ID           string
	Barcode      string // único
	Description  string
	Category     string
	TracksExpiry bool
	Stock        int
	ExpiryDate   *time.Time // legado; con TracksExpiry manda la fecha de cada lote
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
