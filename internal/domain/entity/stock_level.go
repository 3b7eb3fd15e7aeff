package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del nivel de stock respecto a los umbrales del material.
const (
	StockStatusLow    = "LOW"
	StockStatusNormal = "NORMAL"
	StockStatusOver   = "OVER"
)

// StockLevel es una proyección derivada del ledger: material × ubicación → cantidad.
// Nunca es fuente de verdad; siempre debe poder re-derivarse sumando los deltas
// de los movimientos no eliminados.
type StockLevel struct {
	MaterialID string
	LocationID string // vacío = agregado global del material
	Quantity   decimal.Decimal
	Status     string
	UpdatedAt  time.Time
}
