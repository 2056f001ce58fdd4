package cache

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisConfigAddr(t *testing.T) {
	assert.Equal(t, "cache.internal:6379", RedisConfig{Host: "cache.internal", Port: "6379"}.Addr())
	assert.Equal(t, "[::1]:6380", RedisConfig{Host: "::1", Port: "6380"}.Addr())
}

func TestDialFailsWhenRedisIsUnreachable(t *testing.T) {
	// Reserve a port, then free it so nothing is listening there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	svc, err := Dial(ctx, RedisConfig{Host: host, Port: port, DialTimeout: 200 * time.Millisecond}, time.Minute)
	require.Error(t, err)
	assert.Nil(t, svc)
	assert.Contains(t, err.Error(), "redis connection failed")
}
