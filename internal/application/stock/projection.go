package stock

import (
	"context"
	"time"

	"go.uber.org/multierr"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/repository"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/warehouse"
)

// ProjectionUseCase calcula niveles de stock como proyección del ledger.
// La suma se ejecuta en una sola sentencia SQL, por lo que refleja el estado
// pre o post de cada Record concurrente, nunca un delta parcial.
type ProjectionUseCase struct {
	materialRepo repository.MaterialRepository
	movementRepo repository.StockMovementRepository
	levelRepo    repository.StockLevelRepository
}

// NewProjectionUseCase construye el caso de uso.
func NewProjectionUseCase(
	materialRepo repository.MaterialRepository,
	movementRepo repository.StockMovementRepository,
	levelRepo repository.StockLevelRepository,
) *ProjectionUseCase {
	return &ProjectionUseCase{
		materialRepo: materialRepo,
		movementRepo: movementRepo,
		levelRepo:    levelRepo,
	}
}

// CurrentLevel devuelve el nivel actual del material sumando los deltas del
// ledger (locationID nil = agregado global) y lo clasifica frente a los umbrales.
func (uc *ProjectionUseCase) CurrentLevel(ctx context.Context, materialID string, locationID *string) (*entity.StockLevel, error) {
	material, err := uc.materialRepo.GetByID(materialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.ErrNotFound
	}
	qty, err := uc.movementRepo.SumDeltas(materialID, locationID)
	if err != nil {
		return nil, err
	}
	loc := ""
	if locationID != nil {
		loc = *locationID
	}
	return &entity.StockLevel{
		MaterialID: materialID,
		LocationID: loc,
		Quantity:   qty,
		Status:     warehouse.StatusFor(qty, material),
		UpdatedAt:  time.Now(),
	}, nil
}

// Levels devuelve las filas materializadas del material con su estado calculado.
func (uc *ProjectionUseCase) Levels(ctx context.Context, materialID string) ([]*entity.StockLevel, error) {
	material, err := uc.materialRepo.GetByID(materialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.ErrNotFound
	}
	levels, err := uc.levelRepo.ListByMaterial(materialID)
	if err != nil {
		return nil, err
	}
	for _, l := range levels {
		l.Status = warehouse.StatusFor(l.Quantity, material)
	}
	return levels, nil
}

// Reconcile re-deriva la proyección materializada de un material desde el ledger.
// La tabla stock_levels es caché invalidable, nunca autoridad.
func (uc *ProjectionUseCase) Reconcile(ctx context.Context, materialID string) error {
	material, err := uc.materialRepo.GetByID(materialID)
	if err != nil {
		return err
	}
	if material == nil {
		return domain.ErrNotFound
	}
	return uc.levelRepo.RecomputeMaterial(materialID)
}

// ReconcileAll recorre el catálogo y re-deriva la proyección de cada material.
// Acumula los errores por material en lugar de abortar en el primero.
func (uc *ProjectionUseCase) ReconcileAll(ctx context.Context) error {
	const pageSize = 200
	var errs []error
	for offset := 0; ; offset += pageSize {
		materials, err := uc.materialRepo.List(pageSize, offset)
		if err != nil {
			return err
		}
		if len(materials) == 0 {
			break
		}
		for _, m := range materials {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := uc.levelRepo.RecomputeMaterial(m.ID); err != nil {
				errs = append(errs, err)
			}
		}
		if len(materials) < pageSize {
			break
		}
	}
	return multierr.Combine(errs...)
}
