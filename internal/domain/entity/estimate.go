package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del presupuesto. Máquina de estados:
// DRAFT --approve--> APPROVED, DRAFT --cancel--> CANCELLED,
// APPROVED --cancel--> CANCELLED (usado por la cascada de eliminación).
// CANCELLED es terminal; de APPROVED solo se sale hacia CANCELLED.
const (
	EstimateStatusDraft     = "DRAFT"
	EstimateStatusApproved  = "APPROVED"
	EstimateStatusCancelled = "CANCELLED"
)

// Estimate representa un presupuesto de costos de un pedido.
// TotalCost = suma de quantity_needed × price_at_estimation de sus ítems.
type Estimate struct {
	ID        string
	OrderID   string
	Status    string
	TotalCost decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanApprove indica si el presupuesto admite la transición a APPROVED.
func (e *Estimate) CanApprove() bool {
	return e.Status == EstimateStatusDraft
}

// CanCancel indica si el presupuesto admite la transición a CANCELLED.
func (e *Estimate) CanCancel() bool {
	return e.Status == EstimateStatusDraft || e.Status == EstimateStatusApproved
}

// EstimateItem es una línea del presupuesto que referencia un material.
// PriceAtEstimation es un snapshot del costo del material al crear la línea;
// cambios posteriores del costo del material nunca lo actualizan retroactivamente.
type EstimateItem struct {
	ID                string
	EstimateID        string
	MaterialID        string
	QuantityNeeded    decimal.Decimal
	PriceAtEstimation decimal.Decimal
	CreatedAt         time.Time
}

// Subtotal devuelve quantity_needed × price_at_estimation.
func (i *EstimateItem) Subtotal() decimal.Decimal {
	return i.QuantityNeeded.Mul(i.PriceAtEstimation)
}
