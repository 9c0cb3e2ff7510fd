package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, window time.Duration, max int) (*Memory, *time.Time) {
	t.Helper()
	current := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	store := NewMemory(window, max)
	store.now = func() time.Time { return current }
	return store, &current
}

func TestAllowsUpToMaxPerWindow(t *testing.T) {
	store, _ := newTestStore(t, time.Minute, 10)

	for i := 0; i < 10; i++ {
		d, err := store.Take(context.Background(), "1.2.3.4")
		require.NoError(t, err)
		require.True(t, d.Allowed, "request %d should be allowed", i+1)
	}

	d, err := store.Take(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.LessOrEqual(t, d.RetryAfter, 60)
	require.Greater(t, d.RetryAfter, 0)
}

func TestRetryAfterTracksWindowRemainder(t *testing.T) {
	store, current := newTestStore(t, time.Minute, 1)

	_, err := store.Take(context.Background(), "c")
	require.NoError(t, err)

	*current = current.Add(45 * time.Second)
	d, err := store.Take(context.Background(), "c")
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, 15, d.RetryAfter)
}

func TestWindowResetsAfterExpiry(t *testing.T) {
	store, current := newTestStore(t, time.Minute, 2)

	for i := 0; i < 3; i++ {
		_, err := store.Take(context.Background(), "c")
		require.NoError(t, err)
	}

	*current = current.Add(time.Minute)
	d, err := store.Take(context.Background(), "c")
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestClientsAreCountedIndependently(t *testing.T) {
	store, _ := newTestStore(t, time.Minute, 1)

	d, err := store.Take(context.Background(), "a")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = store.Take(context.Background(), "b")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = store.Take(context.Background(), "a")
	require.NoError(t, err)
	require.False(t, d.Allowed)
}

func TestStaleRecordsAreSwept(t *testing.T) {
	store, current := newTestStore(t, time.Minute, 10)

	_, err := store.Take(context.Background(), "old")
	require.NoError(t, err)

	*current = current.Add(2 * time.Minute)
	_, err = store.Take(context.Background(), "fresh")
	require.NoError(t, err)

	store.mu.Lock()
	_, ok := store.records["old"]
	store.mu.Unlock()
	require.False(t, ok, "stale record should be dropped during bookkeeping")
}

func TestConcurrentTakesDoNotExceedBudget(t *testing.T) {
	store := NewMemory(time.Minute, 10)

	var wg sync.WaitGroup
	allowed := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := store.Take(context.Background(), "shared")
			require.NoError(t, err)
			allowed <- d.Allowed
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for ok := range allowed {
		if ok {
			count++
		}
	}
	require.Equal(t, 10, count)
}
