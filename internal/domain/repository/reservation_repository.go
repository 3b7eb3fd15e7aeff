package repository

import (
	"github.com/shopspring/decimal"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
)

// ReservationRepository define el puerto para la materialización de reservas.
type ReservationRepository interface {
	Create(reservation *entity.Reservation) error
	ListByMaterial(materialID string) ([]*entity.Reservation, error)
	// SumByMaterial devuelve la cantidad comprometida total; 0 si no hay reservas.
	SumByMaterial(materialID string) (decimal.Decimal, error)
	// DeleteByEstimate libera todas las reservas de un presupuesto.
	// 0 filas afectadas no es error (liberación idempotente).
	DeleteByEstimate(estimateID string) (int64, error)
	// DeleteByMaterial libera todas las reservas que apuntan al material
	// (paso "clear reservations" de la cascada).
	DeleteByMaterial(materialID string) (int64, error)
}
