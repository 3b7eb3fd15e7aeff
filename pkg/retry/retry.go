package retry

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Options parámetros del reintento con backoff exponencial.
type Options struct {
	MaxAttempts int           // intentos adicionales tras el primero
	BackoffBase time.Duration // espera inicial; se duplica en cada intento
}

// Do ejecuta fn reintentando con backoff exponencial acotado los errores que
// isRetryable clasifica como transitorios. Los errores de negocio (validación,
// estado, precondición, auth) se devuelven al primer intento sin reintentar.
func Do(ctx context.Context, opts Options, isRetryable func(error) bool, fn func(ctx context.Context) error) error {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = 100 * time.Millisecond
	}
	b := retry.WithMaxRetries(uint64(opts.MaxAttempts), retry.NewExponential(opts.BackoffBase))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && isRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
