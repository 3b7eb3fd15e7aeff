package warehouse

import (
	"github.com/shopspring/decimal"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
)

// MovementDelta devuelve el aporte de un movimiento al nivel de stock de una
// ubicación (servicio de dominio puro). Con locationID vacío devuelve el aporte
// al agregado global del material: un TRANSFER neto es cero (sale de una
// ubicación y entra en otra), el resto aporta su delta con signo.
func MovementDelta(m *entity.StockMovement, locationID string) decimal.Decimal {
	if m.Type == entity.MovementTypeTRANSFER {
		if locationID == "" {
			return decimal.Zero
		}
		if m.SourceLocationID != nil && *m.SourceLocationID == locationID {
			return m.Quantity.Neg()
		}
		if m.DestLocationID != nil && *m.DestLocationID == locationID {
			return m.Quantity
		}
		return decimal.Zero
	}
	if locationID != "" && !m.TouchesLocation(locationID) {
		return decimal.Zero
	}
	return m.Quantity
}

// SumDeltas suma los deltas de una secuencia de movimientos para una ubicación.
// La suma es conmutativa: el orden de los movimientos no afecta el resultado.
func SumDeltas(movements []*entity.StockMovement, locationID string) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		total = total.Add(MovementDelta(m, locationID))
	}
	return total
}

// StatusFor clasifica una cantidad frente a los umbrales del material.
// OVER solo aplica cuando el material define umbral máximo.
func StatusFor(quantity decimal.Decimal, material *entity.Material) string {
	if quantity.LessThan(material.MinStock) {
		return entity.StockStatusLow
	}
	if material.MaxStock != nil && quantity.GreaterThan(*material.MaxStock) {
		return entity.StockStatusOver
	}
	return entity.StockStatusNormal
}
