package deletion

import (
	"context"
	"time"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/repository"
)

// Tamaño de la ventana de movimientos recientes incluida en el informe.
const recentMovementsWindow = 20

// ResolverUseCase agrega en un único informe todas las referencias que bloquean
// (o acompañan) la eliminación de un material: presupuestos por estado, reservas
// activas y una ventana acotada de movimientos recientes.
type ResolverUseCase struct {
	txRunner TxRunner
}

// NewResolverUseCase construye el caso de uso.
func NewResolverUseCase(txRunner TxRunner) *ResolverUseCase {
	return &ResolverUseCase{txRunner: txRunner}
}

// Analyze calcula el informe de dependencias bajo una transacción de solo
// lectura. Operación sin efectos secundarios, segura para llamadas repetidas
// y concurrentes.
func (uc *ResolverUseCase) Analyze(ctx context.Context, materialID string) (*entity.DependencyReport, error) {
	var report *entity.DependencyReport
	err := uc.txRunner.RunAnalyze(ctx, func(
		matRepo repository.MaterialRepository,
		estRepo repository.EstimateRepository,
		resRepo repository.ReservationRepository,
		movRepo repository.StockMovementRepository,
	) error {
		var err error
		report, err = buildReport(matRepo, estRepo, resRepo, movRepo, materialID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// buildReport arma el informe con los repositorios dados. La cascada lo reutiliza
// dentro de su propia transacción para la verificación post-pasos.
func buildReport(
	matRepo repository.MaterialRepository,
	estRepo repository.EstimateRepository,
	resRepo repository.ReservationRepository,
	movRepo repository.StockMovementRepository,
	materialID string,
) (*entity.DependencyReport, error) {
	material, err := matRepo.GetByID(materialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.ErrNotFound
	}

	estimates, err := estRepo.ListByMaterial(materialID)
	if err != nil {
		return nil, err
	}
	committed, err := resRepo.SumByMaterial(materialID)
	if err != nil {
		return nil, err
	}
	recent, err := movRepo.ListByMaterial(materialID, nil, nil, recentMovementsWindow, 0)
	if err != nil {
		return nil, err
	}
	count, err := movRepo.CountByMaterial(materialID)
	if err != nil {
		return nil, err
	}

	report := &entity.DependencyReport{
		MaterialID:        materialID,
		MaterialName:      material.Name,
		CommittedQuantity: committed,
		RecentMovements:   recent,
		MovementCount:     count,
		GeneratedAt:       time.Now(),
	}
	for _, e := range estimates {
		switch e.Status {
		case entity.EstimateStatusApproved:
			report.ApprovedEstimates = append(report.ApprovedEstimates, e)
		case entity.EstimateStatusCancelled:
			report.CancelledEstimates = append(report.CancelledEstimates, e)
		default:
			report.DraftEstimates = append(report.DraftEstimates, e)
		}
	}
	report.Recompute()
	return report, nil
}
