package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

const reservationColumns = `id, estimate_id, material_id, order_id, quantity, created_at`

// ReservationRepo materializa las reservas derivadas de presupuestos APPROVED
// (usable con pool o tx). La tabla es caché: la verdad son los ítems de los
// presupuestos aprobados.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

// Create materializa una reserva (una por ítem aprobado).
func (r *ReservationRepo) Create(res *entity.Reservation) error {
	query := `INSERT INTO reservations (` + reservationColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		res.ID, res.EstimateID, res.MaterialID, res.OrderID, res.Quantity, res.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert reservation", err)
	}
	return nil
}

// ListByMaterial lista las reservas activas del material.
func (r *ReservationRepo) ListByMaterial(materialID string) ([]*entity.Reservation, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT `+reservationColumns+` FROM reservations WHERE material_id = $1 ORDER BY created_at`,
		materialID,
	)
	if err != nil {
		return nil, wrapErr("list reservations", err)
	}
	defer rows.Close()
	var list []*entity.Reservation
	for rows.Next() {
		var res entity.Reservation
		if err := rows.Scan(&res.ID, &res.EstimateID, &res.MaterialID, &res.OrderID,
			&res.Quantity, &res.CreatedAt); err != nil {
			return nil, wrapErr("scan reservation", err)
		}
		list = append(list, &res)
	}
	return list, rows.Err()
}

// SumByMaterial devuelve la cantidad comprometida total del material; 0 sin reservas.
func (r *ReservationRepo) SumByMaterial(materialID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(SUM(quantity), 0) FROM reservations WHERE material_id = $1`, materialID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, wrapErr("sum reservations", err)
	}
	return sum, nil
}

// DeleteByEstimate libera todas las reservas del presupuesto. 0 filas afectadas
// no es error: la liberación es idempotente.
func (r *ReservationRepo) DeleteByEstimate(estimateID string) (int64, error) {
	cmd, err := r.q.Exec(context.Background(), `DELETE FROM reservations WHERE estimate_id = $1`, estimateID)
	if err != nil {
		return 0, wrapErr("delete reservations by estimate", err)
	}
	return cmd.RowsAffected(), nil
}

// DeleteByMaterial libera todas las reservas que apuntan al material.
func (r *ReservationRepo) DeleteByMaterial(materialID string) (int64, error) {
	cmd, err := r.q.Exec(context.Background(), `DELETE FROM reservations WHERE material_id = $1`, materialID)
	if err != nil {
		return 0, wrapErr("delete reservations by material", err)
	}
	return cmd.RowsAffected(), nil
}
