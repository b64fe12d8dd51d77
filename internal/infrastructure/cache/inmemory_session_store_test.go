package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySessionStore_Touch(t *testing.T) {
	t.Run("accumulates dwell time across beacons", func(t *testing.T) {
		store := NewInMemorySessionStore()
		estimateID := uuid.New()

		require.NoError(t, store.Touch(context.Background(), estimateID, "sess-1", 30*time.Second))
		require.NoError(t, store.Touch(context.Background(), estimateID, "sess-1", 45*time.Second))

		dwell, err := store.DwellTime(context.Background(), estimateID, "sess-1")
		require.NoError(t, err)
		assert.Equal(t, 75*time.Second, dwell)
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		store := NewInMemorySessionStore()
		estimateID := uuid.New()

		require.NoError(t, store.Touch(context.Background(), estimateID, "sess-1", 30*time.Second))
		require.NoError(t, store.Touch(context.Background(), estimateID, "sess-2", 10*time.Second))

		dwell, err := store.DwellTime(context.Background(), estimateID, "sess-2")
		require.NoError(t, err)
		assert.Equal(t, 10*time.Second, dwell)
	})

	t.Run("unknown session has zero dwell", func(t *testing.T) {
		store := NewInMemorySessionStore()

		dwell, err := store.DwellTime(context.Background(), uuid.New(), "nope")
		require.NoError(t, err)
		assert.Zero(t, dwell)
	})

	t.Run("concurrent beacons do not race", func(t *testing.T) {
		store := NewInMemorySessionStore()
		estimateID := uuid.New()

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = store.Touch(context.Background(), estimateID, "sess-1", time.Second)
			}()
		}
		wg.Wait()

		dwell, err := store.DwellTime(context.Background(), estimateID, "sess-1")
		require.NoError(t, err)
		assert.Equal(t, 50*time.Second, dwell)
	})
}
