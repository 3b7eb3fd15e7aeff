package estimate

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/repository"
)

// EngineUseCase mantiene presupuestos de costos y su ciclo de aprobación.
// Máquina de estados: DRAFT --approve--> APPROVED, DRAFT/APPROVED --cancel--> CANCELLED.
// Aprobar materializa las reservas del presupuesto; cancelar desde APPROVED las libera.
type EngineUseCase struct {
	txRunner     TxRunner
	estimateRepo repository.EstimateRepository
	materialRepo repository.MaterialRepository
}

// NewEngineUseCase construye el caso de uso.
func NewEngineUseCase(
	txRunner TxRunner,
	estimateRepo repository.EstimateRepository,
	materialRepo repository.MaterialRepository,
) *EngineUseCase {
	return &EngineUseCase{
		txRunner:     txRunner,
		estimateRepo: estimateRepo,
		materialRepo: materialRepo,
	}
}

// Create abre un presupuesto en DRAFT con total 0 para un pedido.
func (uc *EngineUseCase) Create(ctx context.Context, userID, orderID string) (*entity.Estimate, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if orderID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	est := &entity.Estimate{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		Status:    entity.EstimateStatusDraft,
		TotalCost: decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.estimateRepo.Create(est); err != nil {
		return nil, err
	}
	return est, nil
}

// GetByID devuelve el presupuesto con sus ítems.
func (uc *EngineUseCase) GetByID(ctx context.Context, id string) (*entity.Estimate, []*entity.EstimateItem, error) {
	est, err := uc.estimateRepo.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	if est == nil {
		return nil, nil, domain.ErrNotFound
	}
	items, err := uc.estimateRepo.ListItems(id)
	if err != nil {
		return nil, nil, err
	}
	return est, items, nil
}

// AddItem agrega una línea al presupuesto. Si no se indica precio, toma snapshot
// del costo vigente del material; ese snapshot nunca se actualiza retroactivamente.
// Recalcula el total en la misma transacción.
func (uc *EngineUseCase) AddItem(ctx context.Context, userID, estimateID, materialID string, quantity decimal.Decimal, price *decimal.Decimal) (*entity.EstimateItem, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if !quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	material, err := uc.materialRepo.GetByID(materialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.ErrInvalidInput // material desconocido = entrada inválida
	}

	snapshot := material.CurrentCost
	if price != nil {
		if price.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		snapshot = *price
	}

	item := &entity.EstimateItem{
		ID:                uuid.New().String(),
		EstimateID:        estimateID,
		MaterialID:        materialID,
		QuantityNeeded:    quantity,
		PriceAtEstimation: snapshot,
		CreatedAt:         time.Now(),
	}

	err = uc.txRunner.RunEstimate(ctx, func(
		estRepo repository.EstimateRepository,
		_ repository.ReservationRepository,
	) error {
		est, err := estRepo.GetForUpdate(estimateID)
		if err != nil {
			return err
		}
		if est == nil {
			return domain.ErrNotFound
		}
		// Solo los borradores son editables: un APPROVED ya tiene reservas derivadas.
		if est.Status != entity.EstimateStatusDraft {
			return domain.ErrStateConflict
		}
		if err := estRepo.CreateItem(item); err != nil {
			return err
		}
		return recomputeTotal(estRepo, estimateID)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItemQuantity cambia la cantidad de una línea y recalcula el total.
func (uc *EngineUseCase) UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity decimal.Decimal) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	if !quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.RunEstimate(ctx, func(
		estRepo repository.EstimateRepository,
		_ repository.ReservationRepository,
	) error {
		item, err := estRepo.GetItemByID(itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		est, err := estRepo.GetForUpdate(item.EstimateID)
		if err != nil {
			return err
		}
		if est == nil {
			return domain.ErrNotFound
		}
		if est.Status != entity.EstimateStatusDraft {
			return domain.ErrStateConflict
		}
		if err := estRepo.UpdateItemQuantity(itemID, quantity); err != nil {
			return err
		}
		return recomputeTotal(estRepo, item.EstimateID)
	})
}

// RemoveItem elimina una línea y recalcula el total. Si el presupuesto queda
// vacío, el total pasa a 0 (no null).
func (uc *EngineUseCase) RemoveItem(ctx context.Context, userID, itemID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	return uc.txRunner.RunEstimate(ctx, func(
		estRepo repository.EstimateRepository,
		_ repository.ReservationRepository,
	) error {
		item, err := estRepo.GetItemByID(itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		est, err := estRepo.GetForUpdate(item.EstimateID)
		if err != nil {
			return err
		}
		if est == nil {
			return domain.ErrNotFound
		}
		if est.Status != entity.EstimateStatusDraft {
			return domain.ErrStateConflict
		}
		affected, err := estRepo.DeleteItem(itemID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrNotFound
		}
		return recomputeTotal(estRepo, item.EstimateID)
	})
}

// recomputeTotal re-deriva el total del presupuesto desde sus ítems.
func recomputeTotal(estRepo repository.EstimateRepository, estimateID string) error {
	total, err := estRepo.SumItems(estimateID)
	if err != nil {
		return err
	}
	return estRepo.UpdateTotal(estimateID, total)
}

// Approve transiciona DRAFT → APPROVED y crea una reserva por cada material
// referenciado (suma de quantity_needed de sus ítems), todo en la misma transacción.
func (uc *EngineUseCase) Approve(ctx context.Context, userID, estimateID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	return uc.txRunner.RunEstimate(ctx, func(
		estRepo repository.EstimateRepository,
		resRepo repository.ReservationRepository,
	) error {
		est, err := estRepo.GetForUpdate(estimateID)
		if err != nil {
			return err
		}
		if est == nil {
			return domain.ErrNotFound
		}
		if !est.CanApprove() {
			return domain.ErrStateConflict
		}
		items, err := estRepo.ListItems(estimateID)
		if err != nil {
			return err
		}
		// Una reserva por material: ítems repetidos del mismo material se agregan
		// (la tabla exige unicidad estimate × material).
		perMaterial := make(map[string]decimal.Decimal)
		var order []string
		for _, it := range items {
			if _, ok := perMaterial[it.MaterialID]; !ok {
				order = append(order, it.MaterialID)
			}
			perMaterial[it.MaterialID] = perMaterial[it.MaterialID].Add(it.QuantityNeeded)
		}
		now := time.Now()
		for _, materialID := range order {
			res := &entity.Reservation{
				ID:         uuid.New().String(),
				EstimateID: estimateID,
				MaterialID: materialID,
				OrderID:    est.OrderID,
				Quantity:   perMaterial[materialID],
				CreatedAt:  now,
			}
			if err := resRepo.Create(res); err != nil {
				return err
			}
		}
		return estRepo.UpdateStatus(estimateID, entity.EstimateStatusApproved)
	})
}

// Cancel transiciona DRAFT/APPROVED → CANCELLED. Si venía de APPROVED libera
// todas sus reservas en la misma transacción.
func (uc *EngineUseCase) Cancel(ctx context.Context, userID, estimateID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	return uc.txRunner.RunEstimate(ctx, func(
		estRepo repository.EstimateRepository,
		resRepo repository.ReservationRepository,
	) error {
		return CancelInTx(estRepo, resRepo, estimateID)
	})
}

// CancelInTx ejecuta la cancelación usando los repositorios proporcionados
// (misma transacción del caller). Lo reutiliza la cascada de eliminación para
// cancelar presupuestos dentro de su propia transacción.
func CancelInTx(
	estRepo repository.EstimateRepository,
	resRepo repository.ReservationRepository,
	estimateID string,
) error {
	est, err := estRepo.GetForUpdate(estimateID)
	if err != nil {
		return err
	}
	if est == nil {
		return domain.ErrNotFound
	}
	if !est.CanCancel() {
		return domain.ErrStateConflict
	}
	if est.Status == entity.EstimateStatusApproved {
		if _, err := resRepo.DeleteByEstimate(estimateID); err != nil {
			return err
		}
	}
	return estRepo.UpdateStatus(estimateID, entity.EstimateStatusCancelled)
}
