package inventory

import "time"

// Estados de vencimiento mostrados en el control de vencimientos.
const (
	ExpiryExpired  = "Vencido"
	ExpiryToday    = "Vence Hoy"
	ExpiryCritical = "Crítico"
	ExpiryWarning  = "Precaución"
	ExpiryNormal   = "Normal"
)

// Thresholds umbrales en días para clasificar un vencimiento.
type Thresholds struct {
	CriticalDays int
	WarningDays  int
}

// DefaultThresholds: crítico hasta 7 días, precaución hasta 30.
func DefaultThresholds() Thresholds {
	return Thresholds{CriticalDays: 7, WarningDays: 30}
}

// DaysUntil cuenta días calendario entre today y expiry (negativo si ya venció).
// Solo se consideran año, mes y día de cada fecha.
func DaysUntil(expiry, today time.Time) int {
	e := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(t).Hours() / 24)
}

// ExpiryStatus clasifica los días restantes.
func ExpiryStatus(days int, th Thresholds) string {
	switch {
	case days < 0:
		return ExpiryExpired
	case days == 0:
		return ExpiryToday
	case days <= th.CriticalDays:
		return ExpiryCritical
	case days <= th.WarningDays:
		return ExpiryWarning
	default:
		return ExpiryNormal
	}
}

// Urgency ordena estados: menor es más urgente.
func Urgency(status string) int {
	switch status {
	case ExpiryExpired:
		return 0
	case ExpiryToday:
		return 1
	case ExpiryCritical:
		return 2
	case ExpiryWarning:
		return 3
	default:
		return 4
	}
}
