package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia para el ledger de movimientos.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	// GetForUpdate bloquea la fila del movimiento para corrección/eliminación.
	GetForUpdate(id string) (*entity.StockMovement, error)
	Update(movement *entity.StockMovement) error
	// Delete devuelve las filas afectadas: 0 significa ya eliminado (idempotencia).
	Delete(id string) (int64, error)
	ListByMaterial(materialID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	CountByMaterial(materialID string) (int, error)
	// SumDeltas suma los deltas del material en una sola sentencia SQL
	// (consistente al instante del cálculo). locationID nil = agregado global.
	SumDeltas(materialID string, locationID *string) (decimal.Decimal, error)
}
