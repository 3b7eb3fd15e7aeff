package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/repository"
)

// MovementLedgerUseCase registra, corrige y elimina movimientos de stock de forma
// transaccional. El ledger es la fuente de verdad; la tabla stock_levels es una
// proyección que se actualiza en la misma transacción que cada escritura.
type MovementLedgerUseCase struct {
	txRunner     TxRunner
	materialRepo repository.MaterialRepository
	movementRepo repository.StockMovementRepository
}

// NewMovementLedgerUseCase construye el caso de uso.
func NewMovementLedgerUseCase(
	txRunner TxRunner,
	materialRepo repository.MaterialRepository,
	movementRepo repository.StockMovementRepository,
) *MovementLedgerUseCase {
	return &MovementLedgerUseCase{
		txRunner:     txRunner,
		materialRepo: materialRepo,
		movementRepo: movementRepo,
	}
}

// RecordMovementInput entrada para registrar un movimiento. Quantity siempre
// positiva; el signo del delta lo determina el tipo.
type RecordMovementInput struct {
	UserID           string
	MaterialID       string
	Type             string
	Quantity         decimal.Decimal
	SourceLocationID *string
	DestLocationID   *string
	UnitCost         *decimal.Decimal
	OrderRef         *string
	SupplierRef      *string
	MovedAt          *time.Time
}

// AmendMovementInput corrección in-place de un movimiento existente.
type AmendMovementInput struct {
	Quantity         *decimal.Decimal
	UnitCost         *decimal.Decimal
	SourceLocationID *string
	DestLocationID   *string
}

// validateLocations verifica el invariante tipo ↔ par de ubicaciones:
// TRANSFER exige origen y destino distintos; RECEIPT/RETURN solo destino;
// ISSUE/ADJUSTMENT solo origen.
func validateLocations(movType string, source, dest *string) error {
	has := func(p *string) bool { return p != nil && *p != "" }
	switch movType {
	case entity.MovementTypeTRANSFER:
		if !has(source) || !has(dest) || *source == *dest {
			return domain.ErrInvalidInput
		}
	case entity.MovementTypeRECEIPT, entity.MovementTypeRETURN:
		if !has(dest) || has(source) {
			return domain.ErrInvalidInput
		}
	case entity.MovementTypeISSUE, entity.MovementTypeADJUSTMENT:
		if !has(source) || has(dest) {
			return domain.ErrInvalidInput
		}
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

// signedDelta convierte la cantidad positiva del request en el delta almacenado:
// negativo para ISSUE/ADJUSTMENT, positivo para el resto (en TRANSFER el signo
// lo aporta la ubicación al proyectar).
func signedDelta(movType string, quantity decimal.Decimal) decimal.Decimal {
	if movType == entity.MovementTypeISSUE || movType == entity.MovementTypeADJUSTMENT {
		return quantity.Neg()
	}
	return quantity
}

// Record valida el invariante de tipo/ubicaciones y cantidad > 0, y persiste el
// hecho junto con la actualización de stock_levels en una sola transacción.
// Devuelve el ID del movimiento creado.
func (uc *MovementLedgerUseCase) Record(ctx context.Context, input RecordMovementInput) (string, error) {
	if input.UserID == "" {
		return "", domain.ErrUnauthorized
	}
	if !input.Quantity.GreaterThan(decimal.Zero) {
		return "", domain.ErrInvalidInput
	}
	if err := validateLocations(input.Type, input.SourceLocationID, input.DestLocationID); err != nil {
		return "", err
	}

	material, err := uc.materialRepo.GetByID(input.MaterialID)
	if err != nil {
		return "", err
	}
	if material == nil {
		return "", domain.ErrNotFound
	}

	now := time.Now()
	movedAt := now
	if input.MovedAt != nil {
		movedAt = *input.MovedAt
	}
	unitCost := material.CurrentCost
	if input.UnitCost != nil {
		if input.UnitCost.LessThan(decimal.Zero) {
			return "", domain.ErrInvalidInput
		}
		unitCost = *input.UnitCost
	}

	mov := &entity.StockMovement{
		ID:               uuid.New().String(),
		MaterialID:       input.MaterialID,
		Type:             input.Type,
		Quantity:         signedDelta(input.Type, input.Quantity),
		SourceLocationID: input.SourceLocationID,
		DestLocationID:   input.DestLocationID,
		UnitCost:         unitCost,
		OrderRef:         input.OrderRef,
		SupplierRef:      input.SupplierRef,
		MovedAt:          movedAt,
		CreatedAt:        now,
		CreatedBy:        input.UserID,
	}

	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		levelRepo repository.StockLevelRepository,
	) error {
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		return applyToLevels(levelRepo, mov)
	})
	if err != nil {
		return "", err
	}
	return mov.ID, nil
}

// applyToLevels suma el delta del movimiento a la(s) fila(s) materializadas.
// TRANSFER toca dos ubicaciones en la misma transacción.
func applyToLevels(levelRepo repository.StockLevelRepository, mov *entity.StockMovement) error {
	if mov.Type == entity.MovementTypeTRANSFER {
		if err := levelRepo.ApplyDelta(mov.MaterialID, *mov.SourceLocationID, mov.Quantity.Neg()); err != nil {
			return err
		}
		return levelRepo.ApplyDelta(mov.MaterialID, *mov.DestLocationID, mov.Quantity)
	}
	loc := ""
	if mov.SourceLocationID != nil {
		loc = *mov.SourceLocationID
	}
	if mov.DestLocationID != nil {
		loc = *mov.DestLocationID
	}
	return levelRepo.ApplyDelta(mov.MaterialID, loc, mov.Quantity)
}

// Amend corrige cantidad/costo/ubicaciones de un movimiento histórico.
// La edición in-place obliga a recomputar por completo la proyección del
// material (pares viejos y nuevos) en la misma transacción; saltarse esa
// recomputación dejaría el stock derivado a la deriva.
func (uc *MovementLedgerUseCase) Amend(ctx context.Context, userID, movementID string, input AmendMovementInput) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	return uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		levelRepo repository.StockLevelRepository,
	) error {
		mov, err := movRepo.GetForUpdate(movementID)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrNotFound
		}

		if input.Quantity != nil {
			if !input.Quantity.GreaterThan(decimal.Zero) {
				return domain.ErrInvalidInput
			}
			mov.Quantity = signedDelta(mov.Type, *input.Quantity)
		}
		if input.UnitCost != nil {
			if input.UnitCost.LessThan(decimal.Zero) {
				return domain.ErrInvalidInput
			}
			mov.UnitCost = *input.UnitCost
		}
		if input.SourceLocationID != nil {
			mov.SourceLocationID = input.SourceLocationID
		}
		if input.DestLocationID != nil {
			mov.DestLocationID = input.DestLocationID
		}
		if err := validateLocations(mov.Type, mov.SourceLocationID, mov.DestLocationID); err != nil {
			return err
		}

		if err := movRepo.Update(mov); err != nil {
			return err
		}
		return levelRepo.RecomputeMaterial(mov.MaterialID)
	})
}

// Remove elimina un movimiento del ledger. Requiere sesión válida antes de
// cualquier mutación. La eliminación y la recomputación de stock son una sola
// operación atómica; un retry tras éxito encuentra la fila ausente y devuelve
// ErrNotFound sin efectos secundarios adicionales.
func (uc *MovementLedgerUseCase) Remove(ctx context.Context, userID, movementID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	return uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		levelRepo repository.StockLevelRepository,
	) error {
		mov, err := movRepo.GetForUpdate(movementID)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrNotFound
		}
		affected, err := movRepo.Delete(movementID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrNotFound
		}
		return levelRepo.RecomputeMaterial(mov.MaterialID)
	})
}

// ListByMaterial lista los movimientos de un material ordenados por fecha
// descendente. Cada llamada relee el ledger (lectura finita, no reiniciable).
func (uc *MovementLedgerUseCase) ListByMaterial(ctx context.Context, materialID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	material, err := uc.materialRepo.GetByID(materialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.ErrNotFound
	}
	return uc.movementRepo.ListByMaterial(materialID, from, to, limit, offset)
}
