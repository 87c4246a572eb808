package entity

import "time"

// Delivery es una línea de acta de entrega. Todas las líneas de un acta comparten Number.
type Delivery struct {
	ID                string
	Number            int
	ProductID         string
	Quantity          int
	Department        string
	Official          string // funcionario que recibe
	SubdepartmentHead string // jefe del subdepartamento que visa el acta
	Responsible       string // responsable del acta
	Note              string
	CreatedBy         string
	CreatedAt         time.Time
}
