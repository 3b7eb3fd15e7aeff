package repository

import (
	"github.com/shopspring/decimal"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
)

// StockLevelRepository mantiene la proyección materializada material × ubicación.
// La tabla es caché invalidable: siempre debe poder re-derivarse desde el ledger.
type StockLevelRepository interface {
	Get(materialID, locationID string) (*entity.StockLevel, error)
	ListByMaterial(materialID string) ([]*entity.StockLevel, error)
	// ApplyDelta suma el delta a la fila (upsert). Se invoca en la misma
	// transacción que el insert del movimiento.
	ApplyDelta(materialID, locationID string, delta decimal.Decimal) error
	// Recompute re-deriva la fila desde el ledger (usado tras amend/remove).
	Recompute(materialID, locationID string) error
	// RecomputeMaterial re-deriva todas las ubicaciones del material.
	RecomputeMaterial(materialID string) error
	DeleteByMaterial(materialID string) error
}
