package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, material_id, type, quantity, source_location_id, dest_location_id, unit_cost, order_ref, supplier_ref, moved_at, created_at, created_by`

// StockMovementRepo implementación del puerto StockMovementRepository sobre
// PostgreSQL (usable con pool o tx). La tabla stock_movements es el ledger:
// fuente de verdad de la que se deriva todo nivel de stock.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta un movimiento en el ledger. Quantity llega ya con signo.
func (r *StockMovementRepo) Create(mov *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		mov.ID, mov.MaterialID, mov.Type, mov.Quantity,
		mov.SourceLocationID, mov.DestLocationID, mov.UnitCost,
		mov.OrderRef, mov.SupplierRef, mov.MovedAt, mov.CreatedAt, mov.CreatedBy,
	)
	if err != nil {
		return wrapErr("insert movement", err)
	}
	return nil
}

func (r *StockMovementRepo) scanOne(query, id string) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&m.ID, &m.MaterialID, &m.Type, &m.Quantity, &m.SourceLocationID,
		&m.DestLocationID, &m.UnitCost, &m.OrderRef, &m.SupplierRef,
		&m.MovedAt, &m.CreatedAt, &m.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get movement", err)
	}
	return &m, nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	return r.scanOne(`SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id)
}

// GetForUpdate obtiene el movimiento bloqueando su fila para corrección o eliminación.
func (r *StockMovementRepo) GetForUpdate(id string) (*entity.StockMovement, error) {
	return r.scanOne(`SELECT `+movementColumns+` FROM stock_movements WHERE id = $1 FOR UPDATE`, id)
}

// Update corrige in-place cantidad, costo y ubicaciones del movimiento.
func (r *StockMovementRepo) Update(mov *entity.StockMovement) error {
	query := `
		UPDATE stock_movements
		SET quantity = $2, unit_cost = $3, source_location_id = $4, dest_location_id = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		mov.ID, mov.Quantity, mov.UnitCost, mov.SourceLocationID, mov.DestLocationID,
	)
	if err != nil {
		return wrapErr("update movement", err)
	}
	return nil
}

// Delete elimina el movimiento. 0 filas afectadas significa ya eliminado.
func (r *StockMovementRepo) Delete(id string) (int64, error) {
	cmd, err := r.q.Exec(context.Background(), `DELETE FROM stock_movements WHERE id = $1`, id)
	if err != nil {
		return 0, wrapErr("delete movement", err)
	}
	return cmd.RowsAffected(), nil
}

// ListByMaterial lista movimientos del material, más recientes primero, con
// filtro opcional de rango de fechas sobre moved_at.
func (r *StockMovementRepo) ListByMaterial(materialID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE material_id = $1
		  AND ($2::timestamptz IS NULL OR moved_at >= $2)
		  AND ($3::timestamptz IS NULL OR moved_at <= $3)
		ORDER BY moved_at DESC, created_at DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(context.Background(), query, materialID, from, to, limit, offset)
	if err != nil {
		return nil, wrapErr("list movements", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.MaterialID, &m.Type, &m.Quantity, &m.SourceLocationID,
			&m.DestLocationID, &m.UnitCost, &m.OrderRef, &m.SupplierRef,
			&m.MovedAt, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, wrapErr("scan movement", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// CountByMaterial cuenta los movimientos vivos (no archivados) del material.
func (r *StockMovementRepo) CountByMaterial(materialID string) (int, error) {
	var count int
	err := r.q.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM stock_movements WHERE material_id = $1`, materialID,
	).Scan(&count)
	if err != nil {
		return 0, wrapErr("count movements", err)
	}
	return count, nil
}

// SumDeltas suma los deltas del material en una sola sentencia SQL, consistente
// al instante del cálculo. Con locationID nil devuelve el agregado global, donde
// un TRANSFER aporta cero (mueve stock, no lo crea ni destruye). Con ubicación,
// el TRANSFER resta en origen y suma en destino; el resto de tipos aporta su
// cantidad firmada si tocan la ubicación.
func (r *StockMovementRepo) SumDeltas(materialID string, locationID *string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	var err error
	if locationID == nil {
		err = r.q.QueryRow(context.Background(), `
			SELECT COALESCE(SUM(CASE WHEN type = 'TRANSFER' THEN 0 ELSE quantity END), 0)
			FROM stock_movements WHERE material_id = $1`, materialID,
		).Scan(&sum)
	} else {
		err = r.q.QueryRow(context.Background(), `
			SELECT COALESCE(SUM(CASE
				WHEN type = 'TRANSFER' AND source_location_id = $2 THEN -quantity
				WHEN type = 'TRANSFER' AND dest_location_id = $2 THEN quantity
				WHEN type <> 'TRANSFER' AND (source_location_id = $2 OR dest_location_id = $2) THEN quantity
				ELSE 0
			END), 0)
			FROM stock_movements WHERE material_id = $1`, materialID, *locationID,
		).Scan(&sum)
	}
	if err != nil {
		return decimal.Zero, wrapErr("sum movement deltas", err)
	}
	return sum, nil
}
