package circuit_breaker_test

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/Opnex/Ai-Developer-Library/pkg/circuit_breaker"
)

func TestCircuitBreaker_Call(t *testing.T) {
	failing := func() error { return errors.New("service error") }
	ok := func() error { return nil }

	t.Run("stays closed while calls succeed", func(t *testing.T) {
		cb := circuit_breaker.New(10, time.Second, 0.3, 2)
		for i := 0; i < 50; i++ {
			require.NoError(t, cb.Call(ok))
		}
	})

	t.Run("opens after failure percentile exceeded", func(t *testing.T) {
		cb := circuit_breaker.New(10, time.Minute, 0.3, 2)
		for i := 0; i < 3; i++ {
			require.Error(t, cb.Call(failing))
		}
		err := cb.Call(ok)
		require.ErrorIs(t, err, circuit_breaker.ErrOpenCB)
	})

	t.Run("recovers through half-open probes", func(t *testing.T) {
		cb := circuit_breaker.New(10, time.Millisecond, 0.3, 1)
		for i := 0; i < 3; i++ {
			require.Error(t, cb.Call(failing))
		}
		require.ErrorIs(t, cb.Call(ok), circuit_breaker.ErrOpenCB)

		time.Sleep(5 * time.Millisecond)
		require.NoError(t, cb.Call(ok)) // half-open probe
		require.NoError(t, cb.Call(ok)) // closes the breaker
		require.NoError(t, cb.Call(ok))
	})

	t.Run("reset closes an open breaker", func(t *testing.T) {
		cb := circuit_breaker.New(4, time.Minute, 0.25, 1)
		require.Error(t, cb.Call(failing))
		require.ErrorIs(t, cb.Call(ok), circuit_breaker.ErrOpenCB)
		cb.Reset()
		require.NoError(t, cb.Call(ok))
	})
}
