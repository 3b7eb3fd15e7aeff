package repository

import (
	"github.com/shopspring/decimal"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
)

// MaterialRepository define el puerto de persistencia para Material (DIP).
type MaterialRepository interface {
	Create(material *entity.Material) error
	GetByID(id string) (*entity.Material, error)
	// GetForUpdate bloquea la fila del material (SELECT FOR UPDATE). Es el ámbito
	// de bloqueo por agregado: la cascada de eliminación lo mantiene durante toda
	// su secuencia para serializar escrituras concurrentes sobre el mismo material.
	GetForUpdate(id string) (*entity.Material, error)
	Update(material *entity.Material) error
	UpdateCost(materialID string, cost decimal.Decimal) error
	List(limit, offset int) ([]*entity.Material, error)
	// Delete elimina la fila. Devuelve entity no encontrada vía rows affected = 0.
	Delete(id string) (int64, error)
}
