package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/pkg/retry"
)

var errTransitorio = errors.New("transitorio")
var errNegocio = errors.New("validación")

func opts() retry.Options {
	return retry.Options{MaxAttempts: 3, BackoffBase: time.Millisecond}
}

func esTransitorio(err error) bool { return errors.Is(err, errTransitorio) }

func TestDo_ReintentaSoloTransitorios(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), opts(), esTransitorio, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errTransitorio
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls, "debe reintentar hasta que la operación tenga éxito")
}

func TestDo_ErrorDeNegocioNoSeReintenta(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), opts(), esTransitorio, func(ctx context.Context) error {
		calls++
		return errNegocio
	})
	require.ErrorIs(t, err, errNegocio)
	assert.Equal(t, 1, calls, "los errores de negocio se devuelven al primer intento")
}

func TestDo_AgotaIntentosYDevuelveElError(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), opts(), esTransitorio, func(ctx context.Context) error {
		calls++
		return errTransitorio
	})
	require.ErrorIs(t, err, errTransitorio)
	assert.Equal(t, 4, calls, "primer intento + MaxAttempts reintentos")
}
