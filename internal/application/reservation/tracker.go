package reservation

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/repository"
)

// TrackerUseCase expone la vista de reservas: cantidad comprometida por material
// y liberación por presupuesto. La tabla de reservas es una materialización de
// los ítems de presupuestos APPROVED; siempre reconstruible, nunca autoridad.
type TrackerUseCase struct {
	reservationRepo repository.ReservationRepository
}

// NewTrackerUseCase construye el caso de uso.
func NewTrackerUseCase(reservationRepo repository.ReservationRepository) *TrackerUseCase {
	return &TrackerUseCase{reservationRepo: reservationRepo}
}

// Committed devuelve la cantidad total del material comprometida en presupuestos
// aprobados. Reduce el stock disponible, no el físico.
func (uc *TrackerUseCase) Committed(ctx context.Context, materialID string) (decimal.Decimal, error) {
	return uc.reservationRepo.SumByMaterial(materialID)
}

// ListByMaterial devuelve las reservas activas que apuntan al material.
func (uc *TrackerUseCase) ListByMaterial(ctx context.Context, materialID string) ([]*entity.Reservation, error) {
	return uc.reservationRepo.ListByMaterial(materialID)
}

// Release libera todas las reservas de un presupuesto. Idempotente: liberar un
// presupuesto sin reservas es un no-op, no un error.
func (uc *TrackerUseCase) Release(ctx context.Context, estimateID string) error {
	_, err := uc.reservationRepo.DeleteByEstimate(estimateID)
	return err
}
