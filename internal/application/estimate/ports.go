package estimate

import (
	"context"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con repositorios
// atados a esa tx. La transición de estado y las reservas derivadas deben
// confirmarse o revertirse juntas.
type TxRunner interface {
	RunEstimate(ctx context.Context, fn func(
		estRepo repository.EstimateRepository,
		resRepo repository.ReservationRepository,
	) error) error
}
