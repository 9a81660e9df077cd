package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Unix(1_700_000_000, 0)}
}

func TestMemoryCache_TTLBoundary(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	c := NewMemoryCache(50, WithClock(clock.Now))

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 5*time.Minute))

	clock.Advance(5*time.Minute - time.Nanosecond)
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	clock.Advance(time.Nanosecond)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_EvictsOldestInsert(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	c := NewMemoryCache(50, WithClock(clock.Now))

	for i := 0; i < 51; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("key%d", i), []byte("v"), time.Hour))
		clock.Advance(time.Second)
	}

	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, n)

	_, err = c.Get(ctx, "key0")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "key1")
	assert.NoError(t, err)
	_, err = c.Get(ctx, "key50")
	assert.NoError(t, err)
}

func TestMemoryCache_EvictionTieBreaksOnInsertOrder(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	c := NewMemoryCache(2, WithClock(clock.Now))

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Hour))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Hour))
	require.NoError(t, c.Set(ctx, "c", []byte("3"), time.Hour))

	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestMemoryCache_SetSweepsExpired(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	c := NewMemoryCache(50, WithClock(clock.Now))

	require.NoError(t, c.Set(ctx, "short", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "long", []byte("2"), time.Hour))
	clock.Advance(2 * time.Minute)

	require.NoError(t, c.Set(ctx, "fresh", []byte("3"), time.Hour))

	c.mu.RLock()
	_, stillStored := c.entries["short"]
	size := len(c.entries)
	c.mu.RUnlock()
	assert.False(t, stillStored)
	assert.Equal(t, 2, size)
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10)

	value := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", value, time.Minute))
	value[0] = 'z'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'z'
	again, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Minute))

	require.NoError(t, c.Delete(ctx, "a"))
	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Clear(ctx))
	n, _ := c.Len(ctx)
	assert.Zero(t, n)
}
