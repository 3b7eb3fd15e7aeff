package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// derivedLevelsQuery deriva las filas material × ubicación desde el ledger.
// Cada movimiento aporta hasta dos filas: en origen el delta invertido para
// TRANSFER (la cantidad firmada para el resto) y en destino la cantidad tal cual.
const derivedLevelsQuery = `
	SELECT loc, COALESCE(SUM(delta), 0) AS quantity FROM (
		SELECT source_location_id AS loc,
		       CASE WHEN type = 'TRANSFER' THEN -quantity ELSE quantity END AS delta
		FROM stock_movements
		WHERE material_id = $1 AND source_location_id IS NOT NULL
		UNION ALL
		SELECT dest_location_id, quantity
		FROM stock_movements
		WHERE material_id = $1 AND dest_location_id IS NOT NULL
	) d GROUP BY loc`

// StockLevelRepo mantiene la tabla stock_levels, proyección materializada del
// ledger. Es caché invalidable: Recompute/RecomputeMaterial la re-derivan por
// completo desde stock_movements.
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

// Get obtiene la fila materializada material × ubicación; nil si no existe.
func (r *StockLevelRepo) Get(materialID, locationID string) (*entity.StockLevel, error) {
	var lvl entity.StockLevel
	err := r.q.QueryRow(context.Background(), `
		SELECT material_id, location_id, quantity, updated_at
		FROM stock_levels WHERE material_id = $1 AND location_id = $2`,
		materialID, locationID,
	).Scan(&lvl.MaterialID, &lvl.LocationID, &lvl.Quantity, &lvl.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get stock level", err)
	}
	return &lvl, nil
}

// ListByMaterial lista las filas materializadas del material.
func (r *StockLevelRepo) ListByMaterial(materialID string) ([]*entity.StockLevel, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT material_id, location_id, quantity, updated_at
		FROM stock_levels WHERE material_id = $1 ORDER BY location_id`,
		materialID,
	)
	if err != nil {
		return nil, wrapErr("list stock levels", err)
	}
	defer rows.Close()
	var list []*entity.StockLevel
	for rows.Next() {
		var lvl entity.StockLevel
		if err := rows.Scan(&lvl.MaterialID, &lvl.LocationID, &lvl.Quantity, &lvl.UpdatedAt); err != nil {
			return nil, wrapErr("scan stock level", err)
		}
		list = append(list, &lvl)
	}
	return list, rows.Err()
}

// ApplyDelta suma el delta a la fila material × ubicación (upsert). Se invoca en
// la misma transacción que el insert del movimiento.
func (r *StockLevelRepo) ApplyDelta(materialID, locationID string, delta decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(), `
		INSERT INTO stock_levels (material_id, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (material_id, location_id)
		DO UPDATE SET quantity = stock_levels.quantity + EXCLUDED.quantity, updated_at = now()`,
		materialID, locationID, delta,
	)
	if err != nil {
		return wrapErr("apply stock delta", err)
	}
	return nil
}

// Recompute re-deriva una fila desde el ledger y la sobreescribe. Si ningún
// movimiento toca ya la ubicación, la fila queda en cero.
func (r *StockLevelRepo) Recompute(materialID, locationID string) error {
	_, err := r.q.Exec(context.Background(), `
		INSERT INTO stock_levels (material_id, location_id, quantity, updated_at)
		SELECT $1, $2, COALESCE((
			SELECT q.quantity FROM (`+derivedLevelsQuery+`) q WHERE q.loc = $2
		), 0), now()
		ON CONFLICT (material_id, location_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`,
		materialID, locationID,
	)
	if err != nil {
		return wrapErr("recompute stock level", err)
	}
	return nil
}

// RecomputeMaterial descarta todas las filas del material y las re-deriva desde
// el ledger. Se usa tras amend/remove, donde el par de ubicaciones afectado pudo
// cambiar y el delta incremental ya no es confiable.
func (r *StockLevelRepo) RecomputeMaterial(materialID string) error {
	ctx := context.Background()
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_levels WHERE material_id = $1`, materialID); err != nil {
		return wrapErr("clear stock levels", err)
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_levels (material_id, location_id, quantity, updated_at)
		SELECT $1, q.loc, q.quantity, now() FROM (`+derivedLevelsQuery+`) q`,
		materialID,
	)
	if err != nil {
		return wrapErr("rebuild stock levels", err)
	}
	return nil
}

// DeleteByMaterial elimina las filas materializadas del material (paso final de
// la eliminación del material).
func (r *StockLevelRepo) DeleteByMaterial(materialID string) error {
	if _, err := r.q.Exec(context.Background(), `DELETE FROM stock_levels WHERE material_id = $1`, materialID); err != nil {
		return wrapErr("delete stock levels", err)
	}
	return nil
}
