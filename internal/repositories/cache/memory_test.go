package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type payload struct {
	Count int    `json:"count"`
	Name  string `json:"name"`
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(clock)

	require.NoError(t, store.SetWithTTL(ctx, "stats", payload{Count: 3, Name: "a"}, time.Minute))

	var got payload
	found, err := store.Get(ctx, "stats", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Count: 3, Name: "a"}, got)

	clock.Advance(59 * time.Second)
	found, err = store.Get(ctx, "stats", &got)
	require.NoError(t, err)
	assert.True(t, found)

	clock.Advance(time.Second)
	found, err = store.Get(ctx, "stats", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(nil)

	value := &payload{Count: 1}
	require.NoError(t, store.SetWithTTL(ctx, "k", value, time.Hour))
	value.Count = 99

	var got payload
	found, err := store.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, got.Count)
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(nil)

	require.NoError(t, store.SetWithTTL(ctx, "a", 1, time.Hour))
	require.NoError(t, store.SetWithTTL(ctx, "b", 2, time.Hour))
	require.NoError(t, store.Delete(ctx, "a", "b"))

	var n int
	found, err := store.Get(ctx, "a", &n)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, store.Len())
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, "user:id:42", GenerateKey("user", "id", uint(42)))
}
