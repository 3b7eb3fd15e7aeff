package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reservation es un concepto derivado: cantidad de un material comprometida a un
// presupuesto APPROVED, que reduce el stock disponible pero no el físico.
// Se materializa en tabla para consultas rápidas, pero siempre debe poder
// reconstruirse desde los ítems de presupuestos aprobados (la tabla es caché, no verdad).
type Reservation struct {
	ID         string
	EstimateID string
	MaterialID string
	OrderID    string
	Quantity   decimal.Decimal
	CreatedAt  time.Time
}
