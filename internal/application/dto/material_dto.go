package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMaterialRequest body para POST /api/materials.
type CreateMaterialRequest struct {
	Name        string           `json:"name" validate:"required,min=2,max=200"`
	Category    string           `json:"category" validate:"required,min=2,max=100"`
	UnitMeasure string           `json:"unit_measure" validate:"required"`
	MinStock    decimal.Decimal  `json:"min_stock"`
	MaxStock    *decimal.Decimal `json:"max_stock,omitempty"`
	CurrentCost decimal.Decimal  `json:"current_cost"`
}

// UpdateMaterialRequest body para PUT /api/materials/:id (edición de catálogo;
// nunca toca movimientos ni reservas).
type UpdateMaterialRequest struct {
	Name        *string          `json:"name,omitempty"`
	Category    *string          `json:"category,omitempty"`
	UnitMeasure *string          `json:"unit_measure,omitempty"`
	MinStock    *decimal.Decimal `json:"min_stock,omitempty"`
	MaxStock    *decimal.Decimal `json:"max_stock,omitempty"`
	CurrentCost *decimal.Decimal `json:"current_cost,omitempty"`
	Active      *bool            `json:"active,omitempty"`
}

// MaterialResponse representación HTTP de un material.
type MaterialResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	UnitMeasure string           `json:"unit_measure"`
	MinStock    decimal.Decimal  `json:"min_stock"`
	MaxStock    *decimal.Decimal `json:"max_stock,omitempty"`
	CurrentCost decimal.Decimal  `json:"current_cost"`
	Active      bool             `json:"active"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// MaterialListResponse listado paginado de materiales.
type MaterialListResponse struct {
	Items []MaterialResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// CascadeDeleteRequest opciones de cascada para POST /api/materials/:id/cascade-delete.
// Cada opción es un paso independiente e idempotente; se ejecutan en orden fijo.
type CascadeDeleteRequest struct {
	CancelEstimates   bool `json:"cancel_estimates"`
	ClearReservations bool `json:"clear_reservations"`
	ArchiveData       bool `json:"archive_data"`
}

// EstimateRefDTO referencia resumida a un presupuesto dentro del informe de dependencias.
type EstimateRefDTO struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	Status    string          `json:"status"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// DependencyReportResponse informe de dependencias de un material.
type DependencyReportResponse struct {
	MaterialID              string             `json:"material_id"`
	MaterialName            string             `json:"material_name"`
	DraftEstimates          []EstimateRefDTO   `json:"draft_estimates"`
	ApprovedEstimates       []EstimateRefDTO   `json:"approved_estimates"`
	CancelledEstimates      []EstimateRefDTO   `json:"cancelled_estimates"`
	CommittedQuantity       decimal.Decimal    `json:"committed_quantity"`
	RecentMovements         []MovementResponse `json:"recent_movements"`
	MovementCount           int                `json:"movement_count"`
	HasBlockingDependencies bool               `json:"has_blocking_dependencies"`
	CanDelete               bool               `json:"can_delete"`
	GeneratedAt             time.Time          `json:"generated_at"`
}
