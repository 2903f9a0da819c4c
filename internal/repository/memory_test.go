package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPresenceRepository(t *testing.T) {
	repo := NewMemoryPresenceRepository(time.Hour)
	ctx := context.Background()

	t.Run("OnlineOffline", func(t *testing.T) {
		online, err := repo.IsOnline(ctx, 1)
		require.NoError(t, err)
		assert.False(t, online)

		require.NoError(t, repo.SetOnline(ctx, 1))
		online, err = repo.IsOnline(ctx, 1)
		require.NoError(t, err)
		assert.True(t, online)

		require.NoError(t, repo.SetOffline(ctx, 1))
		online, err = repo.IsOnline(ctx, 1)
		require.NoError(t, err)
		assert.False(t, online)
	})

	t.Run("PresenceExpires", func(t *testing.T) {
		short := NewMemoryPresenceRepository(-time.Second)
		require.NoError(t, short.SetOnline(ctx, 2))

		online, err := short.IsOnline(ctx, 2)
		require.NoError(t, err)
		assert.False(t, online)
	})

	t.Run("RateLimitConcurrent", func(t *testing.T) {
		userID := int64(42)
		limit := 100
		window := time.Minute

		const goroutines = 8
		const callsEach = 100

		allowedCount := make(chan int, goroutines)
		var wg sync.WaitGroup
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				n := 0
				for j := 0; j < callsEach; j++ {
					allowed, err := repo.CheckRateLimit(ctx, userID, limit, window)
					assert.NoError(t, err)
					if allowed {
						n++
					}
				}
				allowedCount <- n
			}()
		}
		wg.Wait()
		close(allowedCount)

		// 800 calls against a limit of 100: exactly 100 may pass.
		total := 0
		for n := range allowedCount {
			total += n
		}
		assert.Equal(t, limit, total)
	})

	t.Run("RateLimit", func(t *testing.T) {
		userID := int64(3)
		limit := 2
		window := 50 * time.Millisecond

		allowed, err := repo.CheckRateLimit(ctx, userID, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, userID, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, userID, limit, window)
		require.NoError(t, err)
		assert.False(t, allowed)

		time.Sleep(window + 10*time.Millisecond)

		allowed, err = repo.CheckRateLimit(ctx, userID, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}
