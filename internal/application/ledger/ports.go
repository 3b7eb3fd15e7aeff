package ledger

import (
	"context"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza que el alta en el ledger y la actualización de la
// proyección materializada sean atómicas: nunca queda un movimiento aplicado sin
// su stock reconciliado.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		levelRepo repository.StockLevelRepository,
	) error) error
}
