package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/repository"
)

var _ repository.EstimateRepository = (*EstimateRepo)(nil)

const estimateColumns = `id, order_id, status, total_cost, created_at, updated_at`
const estimateItemColumns = `id, estimate_id, material_id, quantity_needed, price_at_estimation, created_at`

// material_id admite NULL tras eliminar el material referenciado; se proyecta
// como cadena vacía para las líneas históricas huérfanas.
const estimateItemSelect = `id, estimate_id, COALESCE(material_id, ''), quantity_needed, price_at_estimation, created_at`

// EstimateRepo implementación del puerto EstimateRepository sobre PostgreSQL
// (usable con pool o tx). Presupuestos e ítems forman un solo agregado.
type EstimateRepo struct {
	q Querier
}

// NewEstimateRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEstimateRepository(q Querier) *EstimateRepo {
	return &EstimateRepo{q: q}
}

// Create persiste un presupuesto nuevo (estado DRAFT, total 0).
func (r *EstimateRepo) Create(est *entity.Estimate) error {
	query := `INSERT INTO estimates (` + estimateColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		est.ID, est.OrderID, est.Status, est.TotalCost, est.CreatedAt, est.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert estimate", err)
	}
	return nil
}

func (r *EstimateRepo) scanOne(query, id string) (*entity.Estimate, error) {
	var e entity.Estimate
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&e.ID, &e.OrderID, &e.Status, &e.TotalCost, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get estimate", err)
	}
	return &e, nil
}

// GetByID obtiene un presupuesto por ID.
func (r *EstimateRepo) GetByID(id string) (*entity.Estimate, error) {
	return r.scanOne(`SELECT `+estimateColumns+` FROM estimates WHERE id = $1`, id)
}

// GetForUpdate obtiene el presupuesto bloqueando su fila para transiciones de estado.
func (r *EstimateRepo) GetForUpdate(id string) (*entity.Estimate, error) {
	return r.scanOne(`SELECT `+estimateColumns+` FROM estimates WHERE id = $1 FOR UPDATE`, id)
}

// UpdateStatus actualiza el estado del presupuesto.
func (r *EstimateRepo) UpdateStatus(id, status string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE estimates SET status = $2, updated_at = now() WHERE id = $1`, id, status,
	)
	if err != nil {
		return wrapErr("update estimate status", err)
	}
	return nil
}

// UpdateTotal actualiza el costo total del presupuesto.
func (r *EstimateRepo) UpdateTotal(id string, total decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE estimates SET total_cost = $2, updated_at = now() WHERE id = $1`, id, total,
	)
	if err != nil {
		return wrapErr("update estimate total", err)
	}
	return nil
}

func (r *EstimateRepo) list(query string, args ...any) ([]*entity.Estimate, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, wrapErr("list estimates", err)
	}
	defer rows.Close()
	var list []*entity.Estimate
	for rows.Next() {
		var e entity.Estimate
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Status, &e.TotalCost, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, wrapErr("scan estimate", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// ListByMaterial devuelve los presupuestos con algún ítem que referencia el material.
func (r *EstimateRepo) ListByMaterial(materialID string) ([]*entity.Estimate, error) {
	query := `
		SELECT DISTINCT e.id, e.order_id, e.status, e.total_cost, e.created_at, e.updated_at
		FROM estimates e
		JOIN estimate_items i ON i.estimate_id = e.id
		WHERE i.material_id = $1
		ORDER BY e.created_at DESC`
	return r.list(query, materialID)
}

// ListApprovedByMaterial devuelve solo los presupuestos APPROVED que referencian el material.
func (r *EstimateRepo) ListApprovedByMaterial(materialID string) ([]*entity.Estimate, error) {
	query := `
		SELECT DISTINCT e.id, e.order_id, e.status, e.total_cost, e.created_at, e.updated_at
		FROM estimates e
		JOIN estimate_items i ON i.estimate_id = e.id
		WHERE i.material_id = $1 AND e.status = 'APPROVED'
		ORDER BY e.created_at DESC`
	return r.list(query, materialID)
}

// CreateItem persiste una línea del presupuesto con su snapshot de precio.
func (r *EstimateRepo) CreateItem(item *entity.EstimateItem) error {
	query := `INSERT INTO estimate_items (` + estimateItemColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.EstimateID, item.MaterialID, item.QuantityNeeded,
		item.PriceAtEstimation, item.CreatedAt,
	)
	if err != nil {
		return wrapErr("insert estimate item", err)
	}
	return nil
}

// GetItemByID obtiene una línea por ID; nil si no existe.
func (r *EstimateRepo) GetItemByID(id string) (*entity.EstimateItem, error) {
	var it entity.EstimateItem
	err := r.q.QueryRow(context.Background(),
		`SELECT `+estimateItemSelect+` FROM estimate_items WHERE id = $1`, id,
	).Scan(&it.ID, &it.EstimateID, &it.MaterialID, &it.QuantityNeeded, &it.PriceAtEstimation, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get estimate item", err)
	}
	return &it, nil
}

// UpdateItemQuantity actualiza la cantidad de una línea. El snapshot de precio
// nunca se toca.
func (r *EstimateRepo) UpdateItemQuantity(itemID string, quantity decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE estimate_items SET quantity_needed = $2 WHERE id = $1`, itemID, quantity,
	)
	if err != nil {
		return wrapErr("update estimate item", err)
	}
	return nil
}

// DeleteItem elimina una línea. Devuelve las filas afectadas.
func (r *EstimateRepo) DeleteItem(itemID string) (int64, error) {
	cmd, err := r.q.Exec(context.Background(), `DELETE FROM estimate_items WHERE id = $1`, itemID)
	if err != nil {
		return 0, wrapErr("delete estimate item", err)
	}
	return cmd.RowsAffected(), nil
}

// ListItems lista las líneas del presupuesto en orden de creación.
func (r *EstimateRepo) ListItems(estimateID string) ([]*entity.EstimateItem, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT `+estimateItemSelect+` FROM estimate_items WHERE estimate_id = $1 ORDER BY created_at`,
		estimateID,
	)
	if err != nil {
		return nil, wrapErr("list estimate items", err)
	}
	defer rows.Close()
	var list []*entity.EstimateItem
	for rows.Next() {
		var it entity.EstimateItem
		if err := rows.Scan(&it.ID, &it.EstimateID, &it.MaterialID, &it.QuantityNeeded,
			&it.PriceAtEstimation, &it.CreatedAt); err != nil {
			return nil, wrapErr("scan estimate item", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// SumItems calcula SUM(quantity_needed * price_at_estimation) en una sola
// sentencia; 0 si el presupuesto no tiene ítems.
func (r *EstimateRepo) SumItems(estimateID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(SUM(quantity_needed * price_at_estimation), 0)
		 FROM estimate_items WHERE estimate_id = $1`, estimateID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, wrapErr("sum estimate items", err)
	}
	return sum, nil
}
