package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material representa un material del catálogo de almacén (tableros, herrajes, telas...).
// El catálogo es dueño de la fila: las ediciones de catálogo nunca tocan movimientos,
// y el borrado solo ocurre a través del orquestador de eliminación.
type Material struct {
	ID           string
	Name         string
	Category     string
	UnitMeasure  string
	MinStock     decimal.Decimal  // umbral mínimo; por debajo el estado es Low
	MaxStock     *decimal.Decimal // umbral máximo opcional; por encima el estado es Over
	CurrentCost  decimal.Decimal  // costo vigente; snapshot al crear ítems de presupuesto
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
