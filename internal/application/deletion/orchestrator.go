package deletion

import (
	"context"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/estimate"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/repository"
)

// CascadeOptions pasos de remediación seleccionados por el usuario. Cada paso es
// independiente e idempotente; se ejecutan siempre en el mismo orden fijo.
type CascadeOptions struct {
	CancelEstimates   bool
	ClearReservations bool
	ArchiveData       bool
}

// OrchestratorUseCase ejecuta la eliminación de materiales: directa cuando no hay
// dependencias, o precedida de un plan de cascada. La secuencia completa corre en
// una sola transacción con la fila del material bloqueada: o se aplica todo
// (cascada + borrado) o nada.
//
// La verificación de sesión vive aquí, no solo en la UI: deshabilitar el botón
// de borrar es una ayuda de usabilidad, no una frontera de seguridad.
type OrchestratorUseCase struct {
	txRunner TxRunner
	resolver *ResolverUseCase
}

// NewOrchestratorUseCase construye el caso de uso.
func NewOrchestratorUseCase(txRunner TxRunner, resolver *ResolverUseCase) *OrchestratorUseCase {
	return &OrchestratorUseCase{txRunner: txRunner, resolver: resolver}
}

// Evaluate delega en el resolver: informe de dependencias del material.
func (uc *OrchestratorUseCase) Evaluate(ctx context.Context, materialID string) (*entity.DependencyReport, error) {
	return uc.resolver.Analyze(ctx, materialID)
}

// DeleteDirect elimina el material sin cascada. Solo es válido cuando el informe
// no tiene dependencias bloqueantes y no queda historial vivo de movimientos
// (el historial se resuelve con la opción de archivado de la cascada).
func (uc *OrchestratorUseCase) DeleteDirect(ctx context.Context, userID, materialID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	return uc.txRunner.RunCascade(ctx, func(
		matRepo repository.MaterialRepository,
		estRepo repository.EstimateRepository,
		resRepo repository.ReservationRepository,
		movRepo repository.StockMovementRepository,
		_ repository.MovementArchiveRepository,
		levelRepo repository.StockLevelRepository,
	) error {
		material, err := matRepo.GetForUpdate(materialID)
		if err != nil {
			return err
		}
		if material == nil {
			return domain.ErrNotFound
		}
		report, err := buildReport(matRepo, estRepo, resRepo, movRepo, materialID)
		if err != nil {
			return err
		}
		if !report.CanDelete || report.MovementCount > 0 {
			return domain.ErrPreconditionFailed
		}
		if err := levelRepo.DeleteByMaterial(materialID); err != nil {
			return err
		}
		affected, err := matRepo.Delete(materialID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// ExecuteCascade aplica los pasos seleccionados en orden fijo y elimina el
// material. Tras los pasos re-ejecuta el análisis dentro de la misma
// transacción; si aún quedan dependencias bloqueantes el caller seleccionó
// opciones insuficientes y toda la secuencia se revierte.
//
// Cancelable vía ctx antes de iniciar la transacción; una vez en fase de commit
// corre hasta el final o se revierte por completo.
func (uc *OrchestratorUseCase) ExecuteCascade(ctx context.Context, userID, materialID string, options CascadeOptions) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return uc.txRunner.RunCascade(ctx, func(
		matRepo repository.MaterialRepository,
		estRepo repository.EstimateRepository,
		resRepo repository.ReservationRepository,
		movRepo repository.StockMovementRepository,
		archRepo repository.MovementArchiveRepository,
		levelRepo repository.StockLevelRepository,
	) error {
		// Bloquea el agregado: serializa frente a record/approve/cancel concurrentes.
		material, err := matRepo.GetForUpdate(materialID)
		if err != nil {
			return err
		}
		if material == nil {
			return domain.ErrNotFound
		}

		// Paso 1: cancelar presupuestos aprobados (libera sus reservas).
		if options.CancelEstimates {
			approved, err := estRepo.ListApprovedByMaterial(materialID)
			if err != nil {
				return &CascadeError{Step: StepCancelEstimates, Err: err}
			}
			for _, est := range approved {
				if err := estimate.CancelInTx(estRepo, resRepo, est.ID); err != nil {
					return &CascadeError{Step: StepCancelEstimates, Err: err}
				}
			}
		}

		// Paso 2: liberar reservas restantes (p. ej. de presupuestos no cancelados).
		if options.ClearReservations {
			if _, err := resRepo.DeleteByMaterial(materialID); err != nil {
				return &CascadeError{Step: StepClearReservations, Err: err}
			}
		}

		// Paso 3: archivar historial de movimientos (copia, no borrado a secas).
		if options.ArchiveData {
			if _, err := archRepo.ArchiveByMaterial(materialID); err != nil {
				return &CascadeError{Step: StepArchiveMovements, Err: err}
			}
		}

		// Verificación post-pasos: nunca asumir que los pasos bastaron.
		report, err := buildReport(matRepo, estRepo, resRepo, movRepo, materialID)
		if err != nil {
			return &CascadeError{Step: StepVerify, Err: err}
		}
		if report.HasBlockingDependencies {
			return &CascadeError{Step: StepVerify, Err: domain.ErrPreconditionFailed}
		}
		if report.MovementCount > 0 {
			// Queda historial vivo sin archivar: faltó seleccionar archive_data.
			return &CascadeError{Step: StepVerify, Err: domain.ErrPreconditionFailed}
		}

		if err := levelRepo.DeleteByMaterial(materialID); err != nil {
			return &CascadeError{Step: StepDeleteMaterial, Err: err}
		}
		affected, err := matRepo.Delete(materialID)
		if err != nil {
			return &CascadeError{Step: StepDeleteMaterial, Err: err}
		}
		if affected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
