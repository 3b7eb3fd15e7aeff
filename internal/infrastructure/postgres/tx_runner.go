package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/deletion"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/estimate"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/ledger"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/repository"
)

// Ensure TxRunner implements every application transaction port.
var _ ledger.TxRunner = (*TxRunner)(nil)
var _ estimate.TxRunner = (*TxRunner)(nil)
var _ deletion.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL, pasando
// repositorios atados a esa tx. Commit solo si fn devuelve nil; cualquier error
// revierte todo lo hecho dentro del callback.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) run(ctx context.Context, opts pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, opts)
	if err != nil {
		return wrapErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapErr("commit transaction", err)
	}
	return nil
}

// Run transacción del ledger: movimiento + proyección de stock, atómicos.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	levelRepo repository.StockLevelRepository,
) error) error {
	return r.run(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(NewStockMovementRepository(tx), NewStockLevelRepository(tx))
	})
}

// RunEstimate transacción de presupuestos: transición de estado + reservas derivadas.
func (r *TxRunner) RunEstimate(ctx context.Context, fn func(
	estRepo repository.EstimateRepository,
	resRepo repository.ReservationRepository,
) error) error {
	return r.run(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(NewEstimateRepository(tx), NewReservationRepository(tx))
	})
}

// RunAnalyze transacción de solo lectura para el informe de dependencias:
// snapshot consistente de presupuestos, reservas y movimientos.
func (r *TxRunner) RunAnalyze(ctx context.Context, fn func(
	matRepo repository.MaterialRepository,
	estRepo repository.EstimateRepository,
	resRepo repository.ReservationRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return r.run(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		return fn(
			NewMaterialRepository(tx),
			NewEstimateRepository(tx),
			NewReservationRepository(tx),
			NewStockMovementRepository(tx),
		)
	})
}

// RunCascade transacción completa de la cascada de eliminación. El callback
// bloquea la fila del material (FOR UPDATE) como primer paso; ese lock vive
// hasta el commit y serializa escrituras concurrentes sobre el material.
func (r *TxRunner) RunCascade(ctx context.Context, fn func(
	matRepo repository.MaterialRepository,
	estRepo repository.EstimateRepository,
	resRepo repository.ReservationRepository,
	movRepo repository.StockMovementRepository,
	archRepo repository.MovementArchiveRepository,
	levelRepo repository.StockLevelRepository,
) error) error {
	return r.run(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(
			NewMaterialRepository(tx),
			NewEstimateRepository(tx),
			NewReservationRepository(tx),
			NewStockMovementRepository(tx),
			NewMovementArchiveRepository(tx),
			NewStockLevelRepository(tx),
		)
	})
}
