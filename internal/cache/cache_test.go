package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCachesValue(t *testing.T) {
	c := NewTTL[string](time.Minute)
	var calls atomic.Int32
	fn := func() (string, error) {
		calls.Add(1)
		return "v", nil
	}

	for range 3 {
		v, err := c.Get("k", fn)
		require.NoError(t, err)
		assert.Equal(t, "v", v)
	}
	assert.Equal(t, int32(1), calls.Load())

	c.Invalidate("k")
	_, err := c.Get("k", fn)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTTLDoesNotCacheErrors(t *testing.T) {
	c := NewTTL[int](time.Minute)
	boom := errors.New("boom")

	_, err := c.Get("k", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	v, err := c.Get("k", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestTTLServesStaleWhileRefreshing(t *testing.T) {
	c := NewTTL[int](time.Second)
	now := time.Unix(1000, 0)
	var mu sync.Mutex
	c.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	v, err := c.Get("k", func() (int, error) { return 1, nil })
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	mu.Lock()
	now = now.Add(2 * time.Second)
	mu.Unlock()

	refreshed := make(chan struct{})
	v, err = c.Get("k", func() (int, error) {
		defer close(refreshed)
		return 2, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	<-refreshed
	assert.Eventually(t, func() bool {
		v, _ := c.Get("k", func() (int, error) { return 2, nil })
		return v == 2
	}, time.Second, 5*time.Millisecond)
}

func TestTTLZeroDisablesStorage(t *testing.T) {
	c := NewTTL[int](0)
	var calls atomic.Int32
	for range 3 {
		_, err := c.Get("k", func() (int, error) {
			return int(calls.Add(1)), nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), calls.Load())
}
