package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordMovementRequest body para POST /api/warehouse/movements.
// La cantidad siempre es positiva; el signo del delta lo determina el tipo.
// Ubicaciones según tipo: TRANSFER exige origen y destino, RECEIPT/RETURN solo
// destino, ISSUE/ADJUSTMENT solo origen.
type RecordMovementRequest struct {
	MaterialID       string           `json:"material_id" validate:"required,uuid4"`
	Type             string           `json:"type" validate:"required,oneof=RECEIPT ISSUE TRANSFER RETURN ADJUSTMENT"`
	Quantity         decimal.Decimal  `json:"quantity"`
	SourceLocationID *string          `json:"source_location_id,omitempty"`
	DestLocationID   *string          `json:"dest_location_id,omitempty"`
	UnitCost         *decimal.Decimal `json:"unit_cost,omitempty"`
	OrderRef         *string          `json:"order_ref,omitempty"`
	SupplierRef      *string          `json:"supplier_ref,omitempty"`
	MovedAt          *time.Time       `json:"moved_at,omitempty"`
}

// AmendMovementRequest body para PUT /api/warehouse/movements/:id.
// Solo admite corrección de cantidad, costo y ubicaciones; el tipo no cambia.
type AmendMovementRequest struct {
	Quantity         *decimal.Decimal `json:"quantity,omitempty"`
	UnitCost         *decimal.Decimal `json:"unit_cost,omitempty"`
	SourceLocationID *string          `json:"source_location_id,omitempty"`
	DestLocationID   *string          `json:"dest_location_id,omitempty"`
}

// MovementResponse representación HTTP de un movimiento del ledger.
type MovementResponse struct {
	ID               string          `json:"id"`
	MaterialID       string          `json:"material_id"`
	Type             string          `json:"type"`
	Quantity         decimal.Decimal `json:"quantity"`
	SourceLocationID *string         `json:"source_location_id,omitempty"`
	DestLocationID   *string         `json:"dest_location_id,omitempty"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	OrderRef         *string         `json:"order_ref,omitempty"`
	SupplierRef      *string         `json:"supplier_ref,omitempty"`
	MovedAt          time.Time       `json:"moved_at"`
	CreatedBy        string          `json:"created_by,omitempty"`
}

// MovementListResponse listado paginado de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// StockLevelResponse nivel de stock proyectado de un material.
type StockLevelResponse struct {
	MaterialID string          `json:"material_id"`
	LocationID string          `json:"location_id,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	Status     string          `json:"status"`
}
