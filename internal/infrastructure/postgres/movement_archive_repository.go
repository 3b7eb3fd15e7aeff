package postgres

import (
	"context"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/repository"
)

var _ repository.MovementArchiveRepository = (*MovementArchiveRepo)(nil)

// MovementArchiveRepo gestiona el archivo de historial de movimientos
// (usable con pool o tx). Archivar copia las filas vivas a
// stock_movements_archive y las retira del ledger en la misma transacción:
// el historial se conserva pero deja de bloquear la eliminación del material.
type MovementArchiveRepo struct {
	q Querier
}

// NewMovementArchiveRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementArchiveRepository(q Querier) *MovementArchiveRepo {
	return &MovementArchiveRepo{q: q}
}

// ArchiveByMaterial copia los movimientos del material al archivo y elimina los
// originales. Devuelve cuántas filas se archivaron.
func (r *MovementArchiveRepo) ArchiveByMaterial(materialID string) (int64, error) {
	ctx := context.Background()
	cmd, err := r.q.Exec(ctx, `
		INSERT INTO stock_movements_archive
			(id, material_id, type, quantity, source_location_id, dest_location_id,
			 unit_cost, order_ref, supplier_ref, moved_at, created_at, created_by, archived_at)
		SELECT id, material_id, type, quantity, source_location_id, dest_location_id,
		       unit_cost, order_ref, supplier_ref, moved_at, created_at, created_by, now()
		FROM stock_movements WHERE material_id = $1
		ON CONFLICT (id) DO NOTHING`,
		materialID,
	)
	if err != nil {
		return 0, wrapErr("archive movements", err)
	}
	archived := cmd.RowsAffected()
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_movements WHERE material_id = $1`, materialID); err != nil {
		return 0, wrapErr("purge archived movements", err)
	}
	return archived, nil
}

// CountByMaterial cuenta las filas archivadas del material.
func (r *MovementArchiveRepo) CountByMaterial(materialID string) (int, error) {
	var count int
	err := r.q.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM stock_movements_archive WHERE material_id = $1`, materialID,
	).Scan(&count)
	if err != nil {
		return 0, wrapErr("count archived movements", err)
	}
	return count, nil
}
