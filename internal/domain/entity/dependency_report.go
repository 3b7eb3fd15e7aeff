package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DependencyReport es el informe efímero de referencias a un material, calculado
// bajo demanda para decidir si puede eliminarse y con qué opciones de cascada.
type DependencyReport struct {
	MaterialID   string
	MaterialName string

	// Presupuestos que referencian el material, agrupados por estado.
	DraftEstimates     []*Estimate
	ApprovedEstimates  []*Estimate
	CancelledEstimates []*Estimate

	// Cantidad total comprometida en reservas activas.
	CommittedQuantity decimal.Decimal

	// Ventana acotada de movimientos recientes (solo informativa: el historial
	// por sí solo no bloquea la eliminación, se ofrece para archivado).
	RecentMovements []*StockMovement
	MovementCount   int

	HasBlockingDependencies bool
	CanDelete               bool
	GeneratedAt             time.Time
}

// Recompute recalcula las banderas a partir del contenido del informe.
// Bloquea: cualquier presupuesto APPROVED o reserva activa (comprometido > 0).
func (r *DependencyReport) Recompute() {
	r.HasBlockingDependencies = len(r.ApprovedEstimates) > 0 || r.CommittedQuantity.GreaterThan(decimal.Zero)
	r.CanDelete = !r.HasBlockingDependencies
}
