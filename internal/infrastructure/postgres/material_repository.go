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

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

const materialColumns = `id, name, category, unit_measure, min_stock, max_stock, current_cost, active, created_at, updated_at`

// MaterialRepo implementación del puerto MaterialRepository sobre PostgreSQL (usable con pool o tx).
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

// Create persiste un nuevo material de catálogo.
func (r *MaterialRepo) Create(material *entity.Material) error {
	query := `
		INSERT INTO materials (` + materialColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		material.ID, material.Name, material.Category, material.UnitMeasure,
		material.MinStock, material.MaxStock, material.CurrentCost, material.Active,
		material.CreatedAt, material.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert material", err)
	}
	return nil
}

func (r *MaterialRepo) scanOne(query, id string) (*entity.Material, error) {
	var m entity.Material
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&m.ID, &m.Name, &m.Category, &m.UnitMeasure, &m.MinStock, &m.MaxStock,
		&m.CurrentCost, &m.Active, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get material", err)
	}
	return &m, nil
}

// GetByID obtiene un material por ID.
func (r *MaterialRepo) GetByID(id string) (*entity.Material, error) {
	return r.scanOne(`SELECT `+materialColumns+` FROM materials WHERE id = $1`, id)
}

// GetForUpdate obtiene el material bloqueando su fila hasta el fin de la
// transacción. Es el ámbito de bloqueo por agregado del material.
func (r *MaterialRepo) GetForUpdate(id string) (*entity.Material, error) {
	return r.scanOne(`SELECT `+materialColumns+` FROM materials WHERE id = $1 FOR UPDATE`, id)
}

// Update actualiza los atributos de catálogo del material.
func (r *MaterialRepo) Update(material *entity.Material) error {
	query := `
		UPDATE materials
		SET name = $2, category = $3, unit_measure = $4, min_stock = $5,
		    max_stock = $6, current_cost = $7, active = $8, updated_at = $9
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		material.ID, material.Name, material.Category, material.UnitMeasure,
		material.MinStock, material.MaxStock, material.CurrentCost, material.Active,
		material.UpdatedAt,
	)
	if err != nil {
		return wrapErr("update material", err)
	}
	return nil
}

// UpdateCost actualiza solo el costo vigente del material.
func (r *MaterialRepo) UpdateCost(materialID string, cost decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE materials SET current_cost = $2, updated_at = now() WHERE id = $1`,
		materialID, cost,
	)
	if err != nil {
		return wrapErr("update material cost", err)
	}
	return nil
}

// List lista materiales con paginación, más recientes primero.
func (r *MaterialRepo) List(limit, offset int) ([]*entity.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, wrapErr("list materials", err)
	}
	defer rows.Close()
	var list []*entity.Material
	for rows.Next() {
		var m entity.Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Category, &m.UnitMeasure, &m.MinStock,
			&m.MaxStock, &m.CurrentCost, &m.Active, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, wrapErr("scan material", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// Delete elimina la fila del material. Devuelve las filas afectadas; 0 indica
// que el material ya no existía.
func (r *MaterialRepo) Delete(id string) (int64, error) {
	cmd, err := r.q.Exec(context.Background(), `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return 0, wrapErr("delete material", err)
	}
	return cmd.RowsAffected(), nil
}
