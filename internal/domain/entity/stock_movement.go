package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementTypeRECEIPT    = "RECEIPT"    // entrada por compra/recepción
	MovementTypeISSUE      = "ISSUE"      // salida a producción/pedido
	MovementTypeTRANSFER   = "TRANSFER"   // traslado entre ubicaciones
	MovementTypeRETURN     = "RETURN"     // devolución a almacén
	MovementTypeADJUSTMENT = "ADJUSTMENT" // ajuste por merma o conteo
)

// StockMovement representa un hecho del libro de movimientos (ledger).
// Quantity es el delta con signo: positivo para RECEIPT/RETURN, negativo para
// ISSUE/ADJUSTMENT. En TRANSFER se guarda la magnitud positiva y el signo lo
// aporta la ubicación (resta en origen, suma en destino).
// Invariante de ubicaciones por tipo:
//   TRANSFER: origen y destino; RECEIPT/RETURN: solo destino; ISSUE/ADJUSTMENT: solo origen.
type StockMovement struct {
	ID               string
	MaterialID       string
	Type             string
	Quantity         decimal.Decimal
	SourceLocationID *string
	DestLocationID   *string
	UnitCost         decimal.Decimal
	OrderRef         *string // pedido asociado (salidas)
	SupplierRef      *string // proveedor asociado (entradas)
	MovedAt          time.Time
	CreatedAt        time.Time
	CreatedBy        string // UserID
}

// TouchesLocation indica si el movimiento afecta la ubicación dada.
func (m *StockMovement) TouchesLocation(locationID string) bool {
	if m.SourceLocationID != nil && *m.SourceLocationID == locationID {
		return true
	}
	if m.DestLocationID != nil && *m.DestLocationID == locationID {
		return true
	}
	return false
}
