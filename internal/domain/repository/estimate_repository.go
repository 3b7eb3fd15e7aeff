package repository

import (
	"github.com/shopspring/decimal"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
)

// EstimateRepository define el puerto de persistencia para presupuestos y sus ítems
// (agregado único: los ítems pertenecen al presupuesto).
type EstimateRepository interface {
	Create(estimate *entity.Estimate) error
	GetByID(id string) (*entity.Estimate, error)
	// GetForUpdate bloquea la fila del presupuesto para transiciones de estado.
	GetForUpdate(id string) (*entity.Estimate, error)
	UpdateStatus(id, status string) error
	UpdateTotal(id string, total decimal.Decimal) error
	// ListByMaterial devuelve los presupuestos con algún ítem que referencia el material.
	ListByMaterial(materialID string) ([]*entity.Estimate, error)
	ListApprovedByMaterial(materialID string) ([]*entity.Estimate, error)

	CreateItem(item *entity.EstimateItem) error
	GetItemByID(id string) (*entity.EstimateItem, error)
	UpdateItemQuantity(itemID string, quantity decimal.Decimal) error
	DeleteItem(itemID string) (int64, error)
	ListItems(estimateID string) ([]*entity.EstimateItem, error)
	// SumItems calcula SUM(quantity_needed * price_at_estimation); 0 si no hay ítems.
	SumItems(estimateID string) (decimal.Decimal, error)
}
