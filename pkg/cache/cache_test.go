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

func TestCache_SetAndGet(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.Set("key", "value", time.Minute)

	value, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value", value)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_Expiration(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.Set("key", "value", 50*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get("key")
	assert.False(t, ok, "expired entries should not be returned")
}

func TestCache_GetOrSet(t *testing.T) {
	t.Run("ComputesOnce", func(t *testing.T) {
		c := New(time.Minute)
		defer c.Stop()

		var calls int32
		compute := func() (interface{}, error) {
			atomic.AddInt32(&calls, 1)
			return "computed", nil
		}

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				value, err := c.GetOrSet("key", time.Minute, compute)
				assert.NoError(t, err)
				assert.Equal(t, "computed", value)
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "concurrent callers should compute once")
	})

	t.Run("ErrorsAreNotCached", func(t *testing.T) {
		c := New(time.Minute)
		defer c.Stop()

		_, err := c.GetOrSet("key", time.Minute, func() (interface{}, error) {
			return nil, errors.New("backend down")
		})
		require.Error(t, err)

		value, err := c.GetOrSet("key", time.Minute, func() (interface{}, error) {
			return "recovered", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "recovered", value)
	})
}

func TestCache_Clear(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	assert.Equal(t, 2, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCache_SweepRemovesExpiredEntries(t *testing.T) {
	c := New(50 * time.Millisecond)
	defer c.Stop()

	c.Set("short", "v", 10*time.Millisecond)
	c.Set("long", "v", time.Minute)

	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, 1, c.Len(), "sweep should drop the expired entry")
	_, ok := c.Get("long")
	assert.True(t, ok)
}

func TestCache_StopIsIdempotent(t *testing.T) {
	c := New(time.Minute)
	c.Set("key", "value", time.Minute)

	assert.NotPanics(t, func() { c.Stop() })
	assert.NotPanics(t, func() { c.Stop() })
}
