package deletion

import (
	"context"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/repository"
)

// TxRunner ejecuta funciones dentro de transacciones de BD con repositorios
// atados a esa tx.
//
// RunAnalyze abre una transacción de solo lectura: el informe de dependencias
// debe observar un snapshot consistente del estado de presupuestos y reservas,
// nunca una mezcla de valores pre y post de una cascada concurrente.
//
// RunCascade abre la transacción completa de la cascada: bloquea el material
// (fila FOR UPDATE) durante toda la secuencia multi-paso para que un approve
// concurrente no re-cree una reserva que la cascada está limpiando.
type TxRunner interface {
	RunAnalyze(ctx context.Context, fn func(
		matRepo repository.MaterialRepository,
		estRepo repository.EstimateRepository,
		resRepo repository.ReservationRepository,
		movRepo repository.StockMovementRepository,
	) error) error

	RunCascade(ctx context.Context, fn func(
		matRepo repository.MaterialRepository,
		estRepo repository.EstimateRepository,
		resRepo repository.ReservationRepository,
		movRepo repository.StockMovementRepository,
		archRepo repository.MovementArchiveRepository,
		levelRepo repository.StockLevelRepository,
	) error) error
}
