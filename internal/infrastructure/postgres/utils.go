package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isTransientPG clasifica fallos de infraestructura reintentables: errores de
// conexión (clase 08), serialización (40001) y deadlock (40P01), además de los
// que pgconn marca como seguros de reintentar y los timeouts de contexto.
func isTransientPG(err error) bool {
	if err == nil {
		return false
	}
	if pgconn.SafeToRetry(err) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, "08") {
			return true
		}
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// wrapErr envuelve el error de una operación SQL conservando el contexto y
// marcando los fallos transitorios con domain.ErrTransient para que las capas
// superiores decidan si reintentar.
func wrapErr(op string, err error) error {
	if isTransientPG(err) {
		return fmt.Errorf("%s: %w: %s", op, domain.ErrTransient, err.Error())
	}
	return fmt.Errorf("%s: %w", op, err)
}
