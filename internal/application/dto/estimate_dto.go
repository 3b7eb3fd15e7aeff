package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateEstimateRequest body para POST /api/estimates.
type CreateEstimateRequest struct {
	OrderID string `json:"order_id" validate:"required,uuid4"`
}

// AddEstimateItemRequest body para POST /api/estimates/:id/items.
// Si no se envía price, se toma snapshot del costo vigente del material.
type AddEstimateItemRequest struct {
	MaterialID string           `json:"material_id" validate:"required,uuid4"`
	Quantity   decimal.Decimal  `json:"quantity"`
	Price      *decimal.Decimal `json:"price,omitempty"`
}

// UpdateItemQuantityRequest body para PUT /api/estimates/items/:id.
type UpdateItemQuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// EstimateItemResponse línea de presupuesto.
type EstimateItemResponse struct {
	ID                string          `json:"id"`
	EstimateID        string          `json:"estimate_id"`
	MaterialID        string          `json:"material_id"`
	QuantityNeeded    decimal.Decimal `json:"quantity_needed"`
	PriceAtEstimation decimal.Decimal `json:"price_at_estimation"`
	Subtotal          decimal.Decimal `json:"subtotal"`
}

// EstimateResponse presupuesto con total recalculado.
type EstimateResponse struct {
	ID        string                 `json:"id"`
	OrderID   string                 `json:"order_id"`
	Status    string                 `json:"status"`
	TotalCost decimal.Decimal        `json:"total_cost"`
	Items     []EstimateItemResponse `json:"items,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}
